// Package config loads, normalizes, and validates vtplay configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the decoder
// binaries, rendering knobs, terminal fallbacks, and logging settings so the
// CLI can resolve everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
