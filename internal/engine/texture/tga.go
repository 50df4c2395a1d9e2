package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	tgaTypeTrueColor    = 2
	tgaTypeTrueColorRLE = 10
)

const tgaHeaderSize = 18

var errTGATruncated = errors.New("tga: pixel data truncated")

type tgaHeader struct {
	idLength     int
	colorMapType byte
	imageType    byte
	width        int
	height       int
	bpp          int
	topToBottom  bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, errors.New("tga: header too short")
	}
	h := tgaHeader{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		bpp:          int(data[16]),
		topToBottom:  data[17]&0x20 != 0,
	}
	if h.colorMapType != 0 {
		return h, errors.New("tga: color-mapped images not supported")
	}
	if h.imageType != tgaTypeTrueColor && h.imageType != tgaTypeTrueColorRLE {
		return h, fmt.Errorf("tga: unsupported image type %d", h.imageType)
	}
	if h.bpp != 24 && h.bpp != 32 {
		return h, fmt.Errorf("tga: unsupported bit depth %d", h.bpp)
	}
	return h, nil
}

// DecodeTGA decodes an uncompressed or RLE compressed true-colour TGA image
// with 24 or 32 bits per pixel. Rows are returned top to bottom regardless
// of the file's origin.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	d := tgaDecoder{
		hdr: h,
		src: data[offset:],
		img: image.NewRGBA(image.Rect(0, 0, h.width, h.height)),
		bpp: h.bpp / 8,
	}
	if h.imageType == tgaTypeTrueColor {
		err = d.raw()
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	hdr tgaHeader
	src []byte
	pos int
	img *image.RGBA
	bpp int
	n   int // pixels written
}

// pixel reads one BGR(A) pixel.
func (d *tgaDecoder) pixel() (color.RGBA, bool) {
	if d.pos+d.bpp > len(d.src) {
		return color.RGBA{}, false
	}
	p := d.src[d.pos : d.pos+d.bpp]
	d.pos += d.bpp
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 0xFF}
	if d.bpp == 4 {
		c.A = p[3]
	}
	return c, true
}

func (d *tgaDecoder) put(c color.RGBA) {
	x := d.n % d.hdr.width
	y := d.n / d.hdr.width
	if !d.hdr.topToBottom {
		y = d.hdr.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
	d.n++
}

func (d *tgaDecoder) total() int { return d.hdr.width * d.hdr.height }

func (d *tgaDecoder) raw() error {
	if len(d.src) < d.total()*d.bpp {
		return errTGATruncated
	}
	for d.n < d.total() {
		c, _ := d.pixel()
		d.put(c)
	}
	return nil
}

// rle decodes run-length packets. A truncated stream leaves the remaining
// pixels transparent.
func (d *tgaDecoder) rle() error {
	for d.n < d.total() && d.pos < len(d.src) {
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, ok := d.pixel()
			if !ok {
				return nil
			}
			for i := 0; i < count && d.n < d.total(); i++ {
				d.put(c)
			}
			continue
		}
		for i := 0; i < count && d.n < d.total(); i++ {
			c, ok := d.pixel()
			if !ok {
				return nil
			}
			d.put(c)
		}
	}
	return nil
}
