// Package ffmpeg runs the external decoder that turns a media file into a raw
// BGRA byte stream at a requested resolution.
//
// A Decoder owns one ffmpeg process. Its stdout carries width*height 4-byte
// quads per frame in blue, green, red, alpha order; its stderr carries the
// level-tagged diagnostic lines that include the current playback time.
// Replacing a decoder (seek, resize) means starting a new one and closing the
// old, which kills and reaps the process.
package ffmpeg
