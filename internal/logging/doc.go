// Package logging assembles structured slog loggers for the worker.
//
// Logs go to stderr because stdout carries the progress event protocol (and
// raw PNG bytes in preview mode). The console handler prints compact
// single-line records, optionally coloured; the JSON handler is used for
// machine consumption and for the optional log file, which is teed from the
// primary handler. A no-op logger is provided for tests and wiring code that
// has no logger to hand.
package logging
