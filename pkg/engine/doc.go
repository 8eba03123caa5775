// ABOUTME: Voice engine package
// ABOUTME: Tracks playing voices and enforces the voice budget
// Package engine allocates backend voices for playback requests.
//
// The engine keeps at most MaxVoices voices. When the pool is full a
// request may steal the lowest-priority non-looping voice if it ranks
// strictly higher; otherwise the request is dropped and Play returns a nil
// handle without an error. Only backend resource failures are errors.
//
// Call Update once per frame after the mixer so channel fades reach
// playing voices in the same tick.
package engine
