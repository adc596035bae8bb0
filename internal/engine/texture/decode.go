// Package texture provides image decoding for texture uploads.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

var (
	// ErrNotImage is returned when the file content is not a recognized image.
	ErrNotImage = errors.New("not an image")
	// ErrUnsupportedImage is returned for image types without a decoder.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// decoders maps sniffed file extensions to their decoder. The tga package
// registers itself with image.RegisterFormat under an empty magic string and
// would claim every input, so image.Decode is never used.
var decoders = map[string]func(io.Reader) (image.Image, error){
	"png":  png.Decode,
	"jpg":  jpeg.Decode,
	"gif":  gif.Decode,
	"bmp":  bmp.Decode,
	"tif":  tiff.Decode,
	"webp": webp.Decode,
}

// tgaFooterSize is how far from the end tga.Decode seeks for the footer.
const tgaFooterSize = 26

// Image is decoded pixel data: tightly packed rows, top row first,
// Components bytes per pixel (1 gray, 3 RGB, 4 RGBA).
type Image struct {
	Pix        []byte
	Width      int
	Height     int
	Components int
}

// Decode reads and decodes the image file at path.
func Decode(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, err
	}
	return DecodeBytes(filepath.Base(path), data)
}

// DecodeBytes decodes image data. TGA has no magic number and is selected
// by the extension of name; every other format is sniffed from content.
func DecodeBytes(name string, data []byte) (Image, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = decodeTGA(data)
	} else {
		kind, _ := filetype.Image(data)
		if kind == filetype.Unknown {
			other, _ := filetype.Match(data)
			return Image{}, fmt.Errorf("%w: %s (%s)", ErrNotImage, name, other.Extension)
		}
		decode, ok := decoders[kind.Extension]
		if !ok {
			return Image{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedImage, name, kind.Extension)
		}
		img, err = decode(bytes.NewReader(data))
	}
	if err != nil {
		return Image{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return FromImage(img), nil
}

// decodeTGA pads files shorter than the footer with zeros so the footer
// lookup misses instead of seeking before the start.
func decodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaFooterSize {
		padded := make([]byte, tgaFooterSize)
		copy(padded, data)
		data = padded
	}
	return tga.Decode(bytes.NewReader(data))
}

// FromImage converts an image to packed bytes. Gray images keep a single
// channel and fully opaque images drop alpha.
func FromImage(img image.Image) Image {
	b := img.Bounds()
	out := Image{Width: b.Dx(), Height: b.Dy(), Components: Components(img)}
	out.Pix = make([]byte, 0, out.Width*out.Height*out.Components)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.At(x, y)
			switch out.Components {
			case 1:
				g := color.GrayModel.Convert(c).(color.Gray)
				out.Pix = append(out.Pix, g.Y)
			case 3:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				out.Pix = append(out.Pix, n.R, n.G, n.B)
			default:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				out.Pix = append(out.Pix, n.R, n.G, n.B, n.A)
			}
		}
	}
	return out
}

// Components returns the channel count an image decodes to.
func Components(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}
