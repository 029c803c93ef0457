package icopack

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for out of range icon sizes, non-positive
	// resize dimensions, malformed size lists and missing rasters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEnvironment is returned when a raster surface cannot be acquired.
	ErrEnvironment = errors.New("environment error")
)

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func environmentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEnvironment, fmt.Sprintf(format, args...))
}
