// ABOUTME: Platform backend package
// ABOUTME: Buffers, voices and listener state behind one interface
// Package backend provides the platform playback layer driven by the
// voice engine.
//
// Implementations:
//   - Oto: one oto player per voice
//   - Beep: voices mixed by the beep speaker
//   - Null: headless, with a virtual clock for tests
//
// Only mono voices are positioned. Stereo voices ignore SetPosition
// beyond distance attenuation.
package backend
