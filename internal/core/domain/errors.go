package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrTemporary             = errors.New("temporary failure")
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrDecodeFailure         = errors.New("decode failure")
	ErrDirectoryNotFound     = errors.New("directory not found")
	ErrDegenerateTrainingSet = errors.New("degenerate training set")
	ErrUploadFailure         = errors.New("upload failure")
	ErrAuthentication        = errors.New("authentication failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
