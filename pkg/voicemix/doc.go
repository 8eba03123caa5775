// ABOUTME: Audio context package for game code
// ABOUTME: Single entry point tying backend, mixer and voice engine together
// Package voicemix provides the Context used by game code to play sounds.
//
// A Context owns a backend, a mixer and a voice engine. Create it with New,
// call Initialize once, call Update every frame and Destroy on shutdown:
//
//	ctx := voicemix.New(cfg, b, voicemix.WithLogger(logger))
//	if err := ctx.Initialize(); err != nil {
//	    return err
//	}
//	defer ctx.Destroy()
//
//	hit, _ := ctx.LoadClip("sfx/hit.wav")
//	ctx.PlayAt(hit, audio.Vec3{X: 3}, audio.ChannelSFX, 1.0)
//
//	for running {
//	    ctx.Update(frameTime)
//	}
//
// Pausing a channel pauses its voices; the channel flag alone is advisory
// in the mixer.
package voicemix
