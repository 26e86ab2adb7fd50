package graphics

import "fmt"

// Texture is a shared-ownership handle to a GPU texture. The producing node
// holds one reference; consumers that need the texture beyond the current
// frame call Retain. The GPU resource is freed when the last reference is
// released. Handles are not safe for concurrent use; all retain/release
// traffic happens on the render thread.
type Texture struct {
	backend Backend
	id      TextureID
	width   int
	height  int
	format  TextureFormat
	oneD    bool
	refs    int
}

// NewTexture2D allocates a 2-D texture and returns a handle with one reference.
func NewTexture2D(b Backend, width, height int, format TextureFormat) (*Texture, error) {
	id, err := b.NewTexture2D(width, height, format)
	if err != nil {
		return nil, fmt.Errorf("allocate %dx%d texture: %w", width, height, err)
	}
	return &Texture{backend: b, id: id, width: width, height: height, format: format, refs: 1}, nil
}

// NewTexture1D allocates a 1-D texture and returns a handle with one reference.
func NewTexture1D(b Backend, length int, format TextureFormat) (*Texture, error) {
	id, err := b.NewTexture1D(length, format)
	if err != nil {
		return nil, fmt.Errorf("allocate 1-D texture of length %d: %w", length, err)
	}
	return &Texture{backend: b, id: id, width: length, height: 1, format: format, oneD: true, refs: 1}, nil
}

func (t *Texture) ID() TextureID         { return t.id }
func (t *Texture) Width() int            { return t.width }
func (t *Texture) Height() int           { return t.height }
func (t *Texture) Format() TextureFormat { return t.format }
func (t *Texture) OneD() bool            { return t.oneD }

// Retain adds a reference and returns the same handle for chaining.
func (t *Texture) Retain() *Texture {
	t.refs++
	return t
}

// Release drops a reference, freeing the GPU texture when none remain.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	t.refs--
	if t.refs == 0 {
		t.backend.DeleteTexture(t.id)
	}
}

// Upload replaces the rectangle r with pixels.
func (t *Texture) Upload(r Rect, pixels []byte) error {
	return t.backend.UploadTexture2D(t.id, r, pixels)
}
