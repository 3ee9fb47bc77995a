package soundbox

import (
	"soundbox/engine"
)

// SourceKind classifies how a registered sound was produced.
type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceMemory
	SourceWaveform
)

func (k SourceKind) String() string {
	switch k {
	case SourceFile:
		return "file"
	case SourceMemory:
		return "memory"
	case SourceWaveform:
		return "waveform"
	}
	return "unknown"
}

// Sound is one registry entry: a loaded or synthesized resource plus the
// playback handles currently referencing it. Handle tracking follows the
// registry's own Stop/Dispose calls; a voice that plays to its natural end
// stays listed until one of those runs.
type Sound struct {
	Hash   uint32
	Kind   SourceKind
	Name   string // source path for files, empty otherwise
	Source engine.Source

	handles []engine.Handle
}

// Handles returns a copy of the live playback handles for this sound.
func (s *Sound) Handles() []engine.Handle {
	out := make([]engine.Handle, len(s.handles))
	copy(out, s.handles)
	return out
}

func (s *Sound) addHandle(h engine.Handle) {
	s.handles = append(s.handles, h)
}

func (s *Sound) removeHandle(h engine.Handle) bool {
	for i, have := range s.handles {
		if have == h {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return true
		}
	}
	return false
}
