// ABOUTME: Audio decoder package for clip loading
// ABOUTME: Provides Decoder interface and implementations for MP3, WAV, Vorbis, FLAC
// Package decode turns encoded audio files into audio.PCM clips.
//
// Supports: MP3, WAV (8/16/24/32-bit), Ogg Vorbis, FLAC and raw PCM.
//
// All decoders read the whole clip and output int32 samples in 24-bit
// range, ready for backend.CreateBuffer.
//
// Example:
//
//	pcm, err := decode.File("sounds/hit.wav")
//	buf, err := b.CreateBuffer(pcm)
package decode
