package texture

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Reference is a resolved texture reference.
type Reference struct {
	Path    string
	Channel Channel
}

// Key identifies the texture in the loader cache.
func (r Reference) Key() string {
	if r.Channel == ChannelAll {
		return r.Path
	}
	return r.Path + "#" + r.Channel.String()
}

// Resolve turns a material texture reference into a file path. ref is a
// file:// URL or a path; relative paths resolve against dir. A trailing
// "#r", "#g", "#b" or "#a" selects a single channel.
func Resolve(dir, ref string) (Reference, error) {
	if ref == "" {
		return Reference{}, fmt.Errorf("empty texture reference")
	}

	path, fragment := ref, ""
	if strings.HasPrefix(ref, "file:") {
		u, err := url.Parse(ref)
		if err != nil {
			return Reference{}, fmt.Errorf("parsing texture url %q: %w", ref, err)
		}
		path, fragment = u.Path, u.Fragment
		if u.Host != "" && u.Host != "localhost" {
			// file://textures/a.png names a relative path.
			path = u.Host + u.Path
		}
		if path == "" {
			path = u.Opaque
		}
	} else if i := strings.LastIndexByte(ref, '#'); i >= 0 {
		path, fragment = ref[:i], ref[i+1:]
	}

	ch, err := ParseChannel(fragment)
	if err != nil {
		return Reference{}, fmt.Errorf("texture reference %q: %w", ref, err)
	}
	if path == "" {
		return Reference{}, fmt.Errorf("texture reference %q has no path", ref)
	}

	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	return Reference{Path: filepath.Clean(path), Channel: ch}, nil
}
