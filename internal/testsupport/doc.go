// Package testsupport builds throwaway configurations for CLI tests, including
// stub ffmpeg and ffprobe scripts that stand in for the real decoders.
package testsupport
