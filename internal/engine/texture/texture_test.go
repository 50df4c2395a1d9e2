package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 255})
	img.Set(0, 1, color.NRGBA{R: 70, G: 80, B: 90, A: 255})
	img.Set(1, 1, color.NRGBA{R: 100, G: 110, B: 120, A: 255})
	return img
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, testImage()))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		ref  string
		want Reference
	}{
		{"relative path", "/assets/gold", "albedo.png", Reference{Path: "/assets/gold/albedo.png"}},
		{"nested relative", "/assets/gold", "tex/albedo.png", Reference{Path: "/assets/gold/tex/albedo.png"}},
		{"absolute path", "/assets/gold", "/tex/albedo.png", Reference{Path: "/tex/albedo.png"}},
		{"file url", "/assets/gold", "file:///tex/albedo.png", Reference{Path: "/tex/albedo.png"}},
		{"file url channel", "", "file:///tex/mr.png#b", Reference{Path: "/tex/mr.png", Channel: ChannelB}},
		{"path channel", "/a", "mr.png#g", Reference{Path: "/a/mr.png", Channel: ChannelG}},
		{"escaped url", "", "file:///tex/my%20albedo.png", Reference{Path: "/tex/my albedo.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.dir, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	for _, ref := range []string{"", "albedo.png#x", "#r"} {
		_, err := Resolve("/assets", ref)
		assert.Error(t, err, ref)
	}
}

func TestReferenceKey(t *testing.T) {
	assert.Equal(t, "/a/mr.png", Reference{Path: "/a/mr.png"}.Key())
	assert.Equal(t, "/a/mr.png#g", Reference{Path: "/a/mr.png", Channel: ChannelG}.Key())
}

func TestToRGBAChannel(t *testing.T) {
	src := testImage()

	all := ToRGBA(src, ChannelAll)
	assert.Equal(t, color.RGBA{R: 40, G: 50, B: 60, A: 255}, all.RGBAAt(1, 0))

	green := ToRGBA(src, ChannelG)
	assert.Equal(t, color.RGBA{R: 50, G: 50, B: 50, A: 255}, green.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{R: 110, G: 110, B: 110, A: 255}, green.RGBAAt(1, 1))

	blue := ToRGBA(src, ChannelB)
	assert.Equal(t, color.RGBA{R: 90, G: 90, B: 90, A: 255}, blue.RGBAAt(0, 1))
}

func TestToRGBADoesNotModifySource(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	assert.Same(t, src, ToRGBA(src, ChannelAll))

	red := ToRGBA(src, ChannelR)
	assert.Equal(t, color.RGBA{R: 1, G: 1, B: 1, A: 255}, red.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, src.RGBAAt(0, 0))
}

func TestToRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.SetRGBA(6, 5, color.RGBA{R: 9, A: 255})

	got := ToRGBA(src, ChannelAll)
	assert.Equal(t, image.Rect(0, 0, 2, 1), got.Bounds())
	assert.Equal(t, color.RGBA{R: 9, A: 255}, got.RGBAAt(1, 0))
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// 2x1, 24 bpp, bottom-up origin.
	data := make([]byte, tgaHeaderSize)
	data[2] = tgaTypeTrueColor
	data[12], data[14] = 2, 1
	data[16] = 24
	data = append(data,
		0x30, 0x20, 0x10, // BGR
		0x60, 0x50, 0x40,
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 0x40, G: 0x50, B: 0x60, A: 0xFF}, img.RGBAAt(1, 0))
}

func TestDecodeTGABottomUp(t *testing.T) {
	// 1x2, 32 bpp, first stored row is the bottom row.
	data := make([]byte, tgaHeaderSize)
	data[2] = tgaTypeTrueColor
	data[12], data[14] = 1, 2
	data[16] = 32
	data = append(data,
		0, 0, 0xFF, 0xFF, // red, bottom
		0xFF, 0, 0, 0x80, // blue, top
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), img.RGBAAt(0, 1).R)
	assert.Equal(t, uint8(0xFF), img.RGBAAt(0, 0).B)
	assert.Equal(t, uint8(0x80), img.RGBAAt(0, 0).A)
}

func TestDecodeTGARLE(t *testing.T) {
	// 3x1 top-down: one run of two green pixels, one raw blue pixel.
	data := make([]byte, tgaHeaderSize)
	data[2] = tgaTypeTrueColorRLE
	data[12], data[14] = 3, 1
	data[16] = 24
	data[17] = 0x20
	data = append(data,
		0x81, 0x00, 0xFF, 0x00,
		0x00, 0xFF, 0x00, 0x00,
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	green := color.RGBA{G: 0xFF, A: 0xFF}
	assert.Equal(t, green, img.RGBAAt(0, 0))
	assert.Equal(t, green, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{B: 0xFF, A: 0xFF}, img.RGBAAt(2, 0))
}

func TestDecodeTGAErrors(t *testing.T) {
	header := func(imageType, bpp byte) []byte {
		h := make([]byte, tgaHeaderSize)
		h[2] = imageType
		h[12], h[14] = 2, 2
		h[16] = bpp
		return h
	}
	cmap := header(tgaTypeTrueColor, 24)
	cmap[1] = 1

	tests := map[string][]byte{
		"short":     {0, 0, 2},
		"colormap":  cmap,
		"grayscale": header(3, 24),
		"16bpp":     header(tgaTypeTrueColor, 16),
		"truncated": header(tgaTypeTrueColor, 24),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTGA(data)
			assert.Error(t, err)
		})
	}
}

func TestDecodeFileBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albedo.bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, testImage()))
	require.NoError(t, f.Close())

	img, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
}

func TestDecodeFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := DecodeFile(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0644))
	_, err = DecodeFile(garbage)
	assert.Error(t, err)
}

func TestLoaderCachesAndReleasesOnce(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "mr.png"))

	rec := gpu.NewRecorder()
	l := NewLoader(rec)

	full, err := l.Load(dir, "mr.png")
	require.NoError(t, err)
	again, err := l.Load(dir, "file://"+filepath.ToSlash(filepath.Join(dir, "mr.png")))
	require.NoError(t, err)
	assert.Equal(t, full, again, "same file must hit the cache")

	metallic, err := l.Load(dir, "mr.png#b")
	require.NoError(t, err)
	roughness, err := l.Load(dir, "mr.png#g")
	require.NoError(t, err)
	assert.NotEqual(t, metallic, roughness)
	assert.NotEqual(t, full, metallic)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 3, rec.Count(gpu.OpTexImage2D))
	for _, c := range rec.Filter(gpu.OpTexImage2D) {
		assert.Equal(t, 2*2*4, c.Bytes)
	}

	l.Release()
	l.Release()
	assert.Equal(t, 3, rec.Count(gpu.OpDeleteTexture))
	assert.Equal(t, 0, rec.Live())
	assert.Equal(t, 0, l.Len())
}

func TestLoaderFailureNotCached(t *testing.T) {
	dir := t.TempDir()
	rec := gpu.NewRecorder()
	l := NewLoader(rec)

	_, err := l.Load(dir, "albedo.png")
	require.Error(t, err)
	assert.Equal(t, 0, rec.Count(gpu.OpGenTexture))

	writePNG(t, filepath.Join(dir, "albedo.png"))
	tex, err := l.Load(dir, "albedo.png")
	require.NoError(t, err)
	assert.NotZero(t, tex)
}
