package texture

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
	"github.com/Faultbox/pbr-viewer/internal/logger"
)

// Loader decodes and uploads textures, caching them by resolved path and
// channel. It owns every texture it uploads until Release.
type Loader struct {
	dev   gpu.Device
	cache map[string]uint32
	order []uint32
	log   *zap.Logger
}

// NewLoader creates a loader uploading through dev.
func NewLoader(dev gpu.Device) *Loader {
	return &Loader{
		dev:   dev,
		cache: make(map[string]uint32),
		log:   logger.Named("texture"),
	}
}

// Load resolves ref against dir and returns its texture, uploading it on
// first use. Failed loads are not cached.
func (l *Loader) Load(dir, ref string) (uint32, error) {
	r, err := Resolve(dir, ref)
	if err != nil {
		return 0, err
	}
	key := r.Key()
	if tex, ok := l.cache[key]; ok {
		return tex, nil
	}

	img, err := DecodeFile(r.Path)
	if err != nil {
		return 0, fmt.Errorf("loading texture %s: %w", key, err)
	}
	rgba := ToRGBA(img, r.Channel)

	tex := l.dev.GenTexture()
	l.dev.BindTexture(tex)
	l.dev.TexImage2D(rgba)

	l.cache[key] = tex
	l.order = append(l.order, tex)
	l.log.Debug("texture uploaded",
		zap.String("key", key),
		zap.Int("width", rgba.Rect.Dx()),
		zap.Int("height", rgba.Rect.Dy()),
		zap.Uint32("handle", tex))
	return tex, nil
}

// Len returns the number of cached textures.
func (l *Loader) Len() int {
	return len(l.order)
}

// Release deletes every uploaded texture once and empties the cache.
func (l *Loader) Release() {
	for _, tex := range l.order {
		l.dev.DeleteTexture(tex)
	}
	l.order = nil
	l.cache = make(map[string]uint32)
}
