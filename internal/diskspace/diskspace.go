// Package diskspace checks available disk space before writes, so a
// nearly-full target volume fails a measurement with a clear error
// instead of a truncated file.
package diskspace

import (
	"errors"
	"fmt"
)

// safetyMargin leaves headroom beyond the payload itself for the
// metadata file and filesystem overhead.
const safetyMargin = 1.1

// InsufficientSpaceError indicates the target volume cannot hold the
// measurement about to be written.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space for %s: need %.2f MB, have %.2f MB available",
		e.Path, float64(e.RequiredBytes)/(1024*1024), float64(e.AvailableBytes)/(1024*1024))
}

// IsInsufficientSpaceError reports whether err is a disk space failure.
func IsInsufficientSpaceError(err error) bool {
	var target *InsufficientSpaceError
	return errors.As(err, &target)
}

// Check verifies that dir's volume has room for requiredBytes plus a
// safety margin. When the volume cannot be inspected (network mounts,
// virtual filesystems) the check passes and the write fails naturally
// if space truly runs out.
func Check(dir string, requiredBytes int64) error {
	available := Available(dir)
	if available == 0 {
		return nil
	}

	required := int64(float64(requiredBytes) * safetyMargin)
	if available < required {
		return &InsufficientSpaceError{
			Path:           dir,
			RequiredBytes:  required,
			AvailableBytes: available,
		}
	}
	return nil
}
