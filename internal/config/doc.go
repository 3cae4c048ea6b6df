// Package config loads, normalizes, and validates worker configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours VAPOURBOX_DEPS_DIR as a fallback
// for the bundled dependency directory. The Config type centralizes the
// knobs the CLI needs: template search paths, the scratch directory, log
// output, progress throttling, preview extraction, and the run history.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
