// Package progress implements the worker's stdout event channel.
//
// Every event is a single JSON object on its own line. A host application
// reads the stream line by line and dispatches on the "type" field:
//
//	{"type":"progress","frame":500,"totalFrames":2000,"fps":25.0,"eta":60.0}
//	{"type":"log","level":"info","message":"Starting processing"}
//	{"type":"error","message":"vspipe not found"}
//	{"type":"complete","success":true,"outputPath":"/videos/out.mp4"}
//
// Log events are mirrored to the structured logger so the same messages
// reach stderr and the optional log file.
package progress
