// Package handshake provides the manual-reset signal used to coordinate the
// frame source manager with the render loop.
//
// Two independent signals are used during playback: sourceActive, owned by the
// component that replaces decoders, and parserIdle, owned by the render loop.
// Neither owner ever touches the other's signal except to wait on it.
package handshake
