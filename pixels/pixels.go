// Package pixels decodes images into immutable RGBA pixel fields and derives
// brightness-based visibility from them.
package pixels

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	// Decoders registered with image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultThreshold is the red-channel cutoff used when none is configured.
const DefaultThreshold = 34

// ErrEmptyImage is wrapped by DecodeError when an image has zero area.
var ErrEmptyImage = errors.New("image has zero area")

// DecodeError reports an image that could not be turned into a Field.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Field is a width×height RGBA pixel buffer, origin top-left, row-major.
// A Field is never modified after Decode returns it.
type Field struct {
	Width  int
	Height int
	Pix    []uint8 // 4 bytes per pixel
}

// Len returns the number of pixels.
func (f *Field) Len() int {
	return f.Width * f.Height
}

// Red returns the red channel of pixel i.
func (f *Field) Red(i int) uint8 {
	return f.Pix[i*4]
}

// RGBA returns all four channels of pixel i.
func (f *Field) RGBA(i int) (r, g, b, a uint8) {
	p := f.Pix[i*4 : i*4+4 : i*4+4]
	return p[0], p[1], p[2], p[3]
}

// Coord converts a pixel index to grid coordinates.
func (f *Field) Coord(i int) (x, y int) {
	return i % f.Width, i / f.Width
}

// FromImage copies img into a new Field at native resolution.
func FromImage(img image.Image) (*Field, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Err: ErrEmptyImage}
	}

	// Non-premultiplied so dark translucent pixels keep their red channel
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return &Field{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    dst.Pix,
	}, nil
}

// Decode reads an encoded image from r.
func Decode(r io.Reader) (*Field, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return FromImage(img)
}

// DecodeBytes decodes an in-memory encoded image.
func DecodeBytes(data []byte) (*Field, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeFile decodes the image at path.
func DecodeFile(path string) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}
	defer f.Close()

	field, err := Decode(f)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Source = path
		}
		return nil, err
	}
	return field, nil
}
