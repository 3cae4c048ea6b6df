// Command vapourbox-worker processes VapourSynth restoration jobs.
//
// A host application writes a job file, runs `vapourbox-worker run --job
// FILE`, and reads newline-delimited JSON events from stdout until a
// complete event arrives. Diagnostics go to stderr. The exit status is 0 on
// success, 130 when the job was cancelled with SIGINT or SIGTERM, and 1 on
// any other failure.
//
// The remaining commands support the host and manual debugging: preview
// renders a single processed frame as PNG, script prints the generated
// VapourSynth script, deps reports the bundled binaries, and history lists
// recent runs.
package main
