// Package soundbox is a thin binding layer over a voice-mixing playback
// engine and an audio capture device.
//
// The heavy lifting (sample mixing, device I/O) is delegated to the oto
// playback context and to PortAudio. What lives here is bookkeeping: a
// registry of loaded sounds keyed by content hash, the mapping from live
// playback handles to their owning sound, parameter forwarding, and a relay
// copying captured frames into a session buffer.
//
// # Playback
//
//	mixer, err := engine.NewMixer(engine.DefaultConfig())
//	player := soundbox.NewPlayer(mixer)
//	defer player.Dispose()
//
//	hash, err := player.LoadFile("jingle.ogg")
//	handle := player.Play(hash, 1.0, 0.0, false)
//	player.FadeVolume(handle, 0, 2*time.Second)
//
// # Capture
//
//	rec := soundbox.NewCapture(soundbox.DefaultCaptureConfig())
//	err := rec.Init(-1) // default device
//	err = rec.Start()
//	// ... device callback fills the session buffer frame by frame
//	samples := rec.Samples()
//	rec.Stop()
//
// All calls are synchronous and return promptly; nothing here blocks on
// audio time. The capture callback runs on a device-owned thread and hands
// frames over through an atomic frame cursor, so readers only ever observe
// completed frames.
package soundbox
