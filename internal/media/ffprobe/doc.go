// Package ffprobe provides a typed wrapper around ffprobe's key=value output
// for the first video stream of a file.
//
// Key types:
//   - VideoInfo: width, height, display duration and optional frame rate
//   - FrameRate: the avg_frame_rate ratio as reported by ffprobe
//
// Primary entry points:
//   - Probe: executes ffprobe and returns the parsed VideoInfo
//   - ParseInfo: parses an already captured ffprobe output stream
package ffprobe
