package soundbox

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var (
	paInitMu    sync.Mutex
	paInitCount int
)

// paAcquire initializes PortAudio on the first call; later calls only bump
// the refcount. Capture sessions and device enumeration share the library.
func paAcquire() error {
	paInitMu.Lock()
	defer paInitMu.Unlock()

	if paInitCount == 0 {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("portaudio initialization failed: %w", err)
		}
	}
	paInitCount++
	return nil
}

// paRelease terminates PortAudio when the last user lets go.
func paRelease() {
	paInitMu.Lock()
	defer paInitMu.Unlock()

	paInitCount--
	if paInitCount <= 0 {
		portaudio.Terminate()
		paInitCount = 0
	}
}
