// Package render converts a raw BGRA pixel stream into true-color terminal
// frames.
//
// Key pieces:
//   - Resolve: fits a source resolution into a terminal cell budget while
//     preserving aspect ratio under a vertical cell correction factor
//   - Composite / AppendCell: alpha blending against black and the
//     background-color escape emitted for each pixel
//   - Parser: the byte-level state machine that assembles pixels into rows
//     and rows into frames, exposed as a one-shot Scan/Frame iterator
//
// The parser cannot tell a clean end of stream from a truncated pipe. Both end
// the scan and, when an unfinished frame was in progress, produce one final
// frame flagged as Partial. Err reports the underlying read error, if any, for
// diagnostics only.
package render
