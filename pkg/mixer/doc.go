// ABOUTME: Mixer package documentation
// ABOUTME: Channel buses, fades and volume composition
// Package mixer implements the channel buses and volume composition.
//
// Each channel owns a Bus with volume, mute, pause and a linear fade. The
// Mixer computes the volume a sound should be played at:
//
//	final = master × channel × source
//
// and collapses to zero when the master or the channel is muted.
//
// Everything runs on the caller's goroutine; call Update once per frame.
package mixer
