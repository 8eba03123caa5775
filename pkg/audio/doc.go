// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines channels, clips, PCM data and playback requests
// Package audio provides the data model shared by the voicemix packages.
//
// This package defines:
//   - Channel: the fixed set of mixer channels (master, music, sfx, ...)
//   - PCM and Clip: decoded audio and its backend-bound counterpart
//   - Request: an immutable description of one playback, built fluently
//   - Vec3: positions for 3D sounds and the listener
//
// It also keeps the sample helpers for 16-bit, 24-bit and float conversion.
//
// Example:
//
//	req := audio.NewRequest().
//	    Channel(audio.ChannelSFX).
//	    Volume(0.8).
//	    At(audio.Vec3{X: 4}).
//	    Priority(10).
//	    Build()
package audio
