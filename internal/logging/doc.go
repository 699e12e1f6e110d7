// Package logging assembles structured slog loggers and formatting helpers used
// across vtplay.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so playback code can tag log
// lines with the session identifier. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
//
// Log output never goes to stdout while a video is playing: the terminal is
// the display. NewFromConfig therefore routes to the configured log file and
// falls back to stderr.
package logging
