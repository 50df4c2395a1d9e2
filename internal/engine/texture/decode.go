package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Channel selects which colour channel of an image a texture keeps.
type Channel int

const (
	// ChannelAll keeps the image as is.
	ChannelAll Channel = iota
	ChannelR
	ChannelG
	ChannelB
	ChannelA
)

func (c Channel) String() string {
	switch c {
	case ChannelR:
		return "r"
	case ChannelG:
		return "g"
	case ChannelB:
		return "b"
	case ChannelA:
		return "a"
	}
	return ""
}

// ParseChannel parses a reference fragment. The empty fragment selects all
// channels.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(s) {
	case "":
		return ChannelAll, nil
	case "r":
		return ChannelR, nil
	case "g":
		return ChannelG, nil
	case "b":
		return ChannelB, nil
	case "a":
		return ChannelA, nil
	}
	return ChannelAll, fmt.Errorf("unknown channel %q", s)
}

// DecodeFile reads and decodes the image at path. TGA is detected by
// extension; every other format by its signature (png, jpeg, gif, bmp, tiff,
// webp).
func DecodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// ToRGBA converts img to a zero-origin *image.RGBA. When ch selects a single
// channel, that channel is copied to red, green and blue with opaque alpha.
func ToRGBA(img image.Image, ch Channel) *image.RGBA {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if ok && b.Min == (image.Point{}) && ch == ChannelAll {
		return rgba
	}
	// Copy so the caller's image is never modified.
	rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	if ch == ChannelAll {
		return rgba
	}

	off := int(ch - ChannelR)
	for i := 0; i+3 < len(rgba.Pix); i += 4 {
		v := rgba.Pix[i+off]
		rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2], rgba.Pix[i+3] = v, v, v, 0xFF
	}
	return rgba
}
