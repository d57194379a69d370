package field

import (
	"errors"
	"path/filepath"

	"github.com/pthm-cable/pointfield/pixels"
)

// Source supplies one image to the field controller.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	// Decode returns the pixels at native resolution, or a *pixels.DecodeError.
	Decode() (*pixels.Field, error)
}

// FileSource decodes an image file.
type FileSource string

func (s FileSource) Name() string {
	return filepath.Base(string(s))
}

func (s FileSource) Decode() (*pixels.Field, error) {
	return pixels.DecodeFile(string(s))
}

// BytesSource decodes an in-memory image.
type BytesSource struct {
	Label string
	Data  []byte
}

func (s BytesSource) Name() string {
	return s.Label
}

func (s BytesSource) Decode() (*pixels.Field, error) {
	f, err := pixels.DecodeBytes(s.Data)
	var de *pixels.DecodeError
	if errors.As(err, &de) && de.Source == "" {
		de.Source = s.Label
	}
	return f, err
}

// FieldSource wraps already-decoded pixels.
type FieldSource struct {
	Label  string
	Pixels *pixels.Field
}

func (s FieldSource) Name() string {
	return s.Label
}

func (s FieldSource) Decode() (*pixels.Field, error) {
	if s.Pixels == nil || s.Pixels.Len() == 0 {
		return nil, &pixels.DecodeError{Source: s.Label, Err: pixels.ErrEmptyImage}
	}
	return s.Pixels, nil
}
