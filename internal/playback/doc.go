// Package playback drives a render session: it owns the decoder feed, the
// render loop, FPS instrumentation, and the decoder progress tracker.
//
// The session coordinates decoder replacement (seek, resize) with the render
// loop through two independent handshake signals. The Feed owns
// sourceActive and clears it while swapping decoders; the render.Parser owns
// parserIdle and clears it while a byte is being applied. Replace always
// waits for parserIdle before tearing down the old decoder.
//
// Cancellation is by closing sources: cancelling the Run context closes the
// feed, the parser observes end-of-stream, and the stderr trackers drain.
package playback
