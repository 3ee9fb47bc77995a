package soundbox

import "errors"

// Error values mirror the wrapped engine's own error taxonomy. Operations
// validate locally first (initialization, hash presence) and short-circuit;
// failures reported by the engine or the device layer are wrapped onto the
// matching value so callers can test them with errors.Is.
var (
	ErrInvalidParameter    = errors.New("some parameter is invalid")
	ErrFileNotFound        = errors.New("file not found")
	ErrFileLoadFailed      = errors.New("file found, but could not be loaded")
	ErrFileAlreadyLoaded   = errors.New("file already loaded")
	ErrBackendNotInited    = errors.New("player not yet initialized")
	ErrFilterNotFound      = errors.New("filter not found")
	ErrOutOfMemory         = errors.New("out of memory")
	ErrNotImplemented      = errors.New("feature not implemented")
	ErrUnknown             = errors.New("unknown error")
	ErrCaptureInitFailed   = errors.New("failed to initialize capture device")
	ErrCaptureNotInited    = errors.New("capture not yet initialized")
	ErrFailedToStartDevice = errors.New("failed to start device")
)
