// Package pipeline runs the two-process chain that turns a generated script
// into an encoded file:
//
//	vspipe -c y4m <script> - | ffmpeg -f yuv4mpegpipe -i - ... <output>
//
// The Controller owns both processes for the duration of a run. The frame
// engine's diagnostic stream is read on a background goroutine that
// forwards every line as a debug log event and captures the INPUT_INFO
// frame count; the encoder's diagnostic stream is read on the calling
// goroutine, which parses progress, emits throttled progress events and
// observes cancellation.
//
// Preview runs the same chain against a short extracted clip and returns a
// single PNG frame.
package pipeline
