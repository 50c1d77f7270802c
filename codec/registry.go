package codec

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/c360studio/spdxld/document"
)

// Registry manages codecs keyed by file extension.
type Registry struct {
	mu     sync.RWMutex
	byExt  map[string]Codec
	byName map[string]Codec
}

// DefaultRegistry is the global registry with the JSON and YAML codecs.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new registry with the default codecs.
func NewRegistry() *Registry {
	r := &Registry{
		byExt:  make(map[string]Codec),
		byName: make(map[string]Codec),
	}
	r.Register(NewJSON())
	r.Register(NewYAML())
	return r
}

// Register adds a codec for all of its extensions, replacing any codec
// previously registered for them.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[c.Name()] = c
	for _, ext := range c.Extensions() {
		r.byExt[strings.ToLower(ext)] = c
	}
}

// ForPath returns the codec for a file name based on its extension.
func (r *Registry) ForPath(path string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return c, ok
}

// ByName returns the codec registered under an encoding name.
func (r *Registry) ByName(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.ForPath(path)
	return ok
}

// Decode decodes a document, choosing the codec by the extension of name.
func (r *Registry) Decode(name string, data []byte) (*document.Document, error) {
	c, ok := r.ForPath(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
	}
	var doc document.Document
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &doc, nil
}

// Load reads and decodes the document at path.
func (r *Registry) Load(path string) (*document.Document, error) {
	if !r.Supports(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return r.Decode(path, data)
}

// Probe loads path if it exists. A missing file is reported as (nil, nil);
// an existing file with an unregistered extension is ErrUnsupportedEncoding.
func (r *Registry) Probe(path string) (*document.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return r.Load(path)
}

// Encode writes v using the codec registered under format.
func (r *Registry) Encode(w io.Writer, format string, v any) error {
	c, ok := r.ByName(format)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, format)
	}
	data, err := c.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}

// Load reads a document with the default registry.
func Load(path string) (*document.Document, error) { return DefaultRegistry.Load(path) }

// Probe probes a document path with the default registry.
func Probe(path string) (*document.Document, error) { return DefaultRegistry.Probe(path) }

// Decode decodes a document with the default registry.
func Decode(name string, data []byte) (*document.Document, error) {
	return DefaultRegistry.Decode(name, data)
}

// EncodeDocument writes a whole document in the named encoding.
func EncodeDocument(w io.Writer, format string, doc *document.Document) error {
	return DefaultRegistry.Encode(w, format, doc)
}

// EncodeElements writes an element list in the named encoding.
func EncodeElements(w io.Writer, format string, elements []document.Element) error {
	if elements == nil {
		elements = []document.Element{}
	}
	return DefaultRegistry.Encode(w, format, elements)
}
