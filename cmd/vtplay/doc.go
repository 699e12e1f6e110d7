// Package main hosts the vtplay CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, probes
// the input with ffprobe, and hands playback to internal/playback. Terminal
// signals are translated here: interrupts cancel the session, SIGWINCH
// resizes it, and SIGUSR1/SIGUSR2 seek backwards and forwards.
package main
