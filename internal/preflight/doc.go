// Package preflight verifies the environment before playback: that the
// configured ffmpeg and ffprobe binaries resolve and answer, and that the log
// directory is writable.
package preflight
