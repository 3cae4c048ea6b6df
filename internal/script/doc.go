// Package script turns a job into a VapourSynth script.
//
// Templates mark optional regions as {{#NAME}}...{{/NAME}} and values as
// {{NAME}}. Rendering walks a fixed table of fields per restoration stage:
// a present field strips its markers and fills its placeholders, an absent
// field cuts every region it guards. Method choices are expressed the same
// way, by keeping one alternative region and cutting the rest.
//
// Templates are read once from the configured directories, the directories
// around the executable, or the copies embedded in the binary.
package script
