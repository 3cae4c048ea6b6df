// Package services defines the error taxonomy shared by the worker's
// components.
//
// Failures are tagged with sentinel markers through Wrap so callers can
// classify them with errors.Is: missing binaries (ErrNotFound), spawn and
// stream failures, abnormal process exits, and user cancellation. The CLI
// uses ExitCode and FailureStatus to turn a run error into the process exit
// code and the recorded history status.
package services
