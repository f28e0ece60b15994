package texture

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTexFormat is returned when a TEX code, DDS tag or DXGI code is
	// not in the registry.
	ErrUnknownTexFormat = errors.New("unknown tex format")

	// ErrInvalidHeader is returned when a header field breaks a container
	// invariant (mip count, dimensions, offset range).
	ErrInvalidHeader = errors.New("invalid header")
)

// BadMagicError reports a container signature mismatch.
type BadMagicError struct {
	Expected uint32
	Actual   uint32
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("invalid magic number: expected %#x, got %#x", e.Expected, e.Actual)
}

// IsBadMagic reports whether err is or wraps a *BadMagicError.
func IsBadMagic(err error) bool {
	var bm *BadMagicError
	return errors.As(err, &bm)
}
