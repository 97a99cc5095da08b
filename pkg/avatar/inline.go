package avatar

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotFound is returned by a [Loader] when the reference names no image.
	ErrNotFound = errors.New("avatar not found")

	// ErrUnsupportedRef is returned when no loader handles a reference.
	ErrUnsupportedRef = errors.New("unsupported avatar reference")
)

// maxImageBytes caps a single avatar download.
const maxImageBytes = 8 << 20

// Loader fetches the raw bytes of an avatar reference.
type Loader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// =============================================================================
// Directory loader
// =============================================================================

// DirLoader serves root-relative references from local directories, keyed
// by URL prefix. With {"/uploads/": "data/uploads"} the reference
// "/uploads/7.png" is read from data/uploads/7.png.
type DirLoader map[string]string

// Load implements [Loader].
func (d DirLoader) Load(_ context.Context, ref string) ([]byte, error) {
	for prefix, dir := range d {
		if !strings.HasPrefix(ref, prefix) {
			continue
		}
		name := path.Clean("/" + strings.TrimPrefix(ref, prefix))
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return data, err
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
}

// =============================================================================
// HTTP loader
// =============================================================================

// HTTPLoader fetches absolute http(s) references.
type HTTPLoader struct {
	Client *http.Client
}

// NewHTTPLoader returns an HTTPLoader with a short request timeout.
func NewHTTPLoader() *HTTPLoader {
	return &HTTPLoader{Client: &http.Client{Timeout: 10 * time.Second}}
}

// Load implements [Loader].
func (h *HTTPLoader) Load(ctx context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// =============================================================================
// Chained loaders
// =============================================================================

// Chain tries each loader in turn, skipping those that report
// [ErrUnsupportedRef].
type Chain []Loader

// Load implements [Loader].
func (c Chain) Load(ctx context.Context, ref string) ([]byte, error) {
	for _, l := range c {
		data, err := l.Load(ctx, ref)
		if errors.Is(err, ErrUnsupportedRef) {
			continue
		}
		return data, err
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
}

// =============================================================================
// Inliner
// =============================================================================

// Inliner converts avatar references into data URIs so that an SVG can be
// rasterized without network access.
type Inliner struct {
	loader   Loader
	fallback string
	logger   *log.Logger
}

// NewInliner creates an Inliner. An empty fallback uses [DefaultFallback];
// a nil logger discards warnings.
func NewInliner(loader Loader, fallback string, logger *log.Logger) *Inliner {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Inliner{loader: loader, fallback: fallback, logger: logger}
}

// Inline returns ref as a data URI. References that are already data URIs
// pass through. When ref cannot be loaded the fallback image is used and a
// warning is logged; if that fails too the error is returned.
func (i *Inliner) Inline(ctx context.Context, ref string) (string, error) {
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	data, err := i.loader.Load(ctx, ref)
	if err == nil {
		return DataURI(ref, data), nil
	}

	i.logger.Warn("avatar load failed, using fallback", "ref", ref, "fallback", i.fallback, "err", err)
	data, ferr := i.loader.Load(ctx, i.fallback)
	if ferr != nil {
		return "", fmt.Errorf("load fallback %s: %w", i.fallback, ferr)
	}
	return DataURI(i.fallback, data), nil
}

// InlineAll inlines every distinct reference in refs and returns a map from
// the original reference to its data URI. References that fail even with the
// fallback are left out, so the renderer draws the plain circle for them.
func (i *Inliner) InlineAll(ctx context.Context, refs []string) map[string]string {
	out := make(map[string]string, len(refs))
	for _, ref := range refs {
		if _, done := out[ref]; done || ref == "" {
			continue
		}
		uri, err := i.Inline(ctx, ref)
		if err != nil {
			i.logger.Warn("avatar dropped", "ref", ref, "err", err)
			continue
		}
		out[ref] = uri
	}
	return out
}

// DataURI encodes data as a base64 data URI. The media type comes from the
// reference's extension, or from content sniffing when that is unknown.
func DataURI(ref string, data []byte) string {
	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(stripQuery(ref))))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if i := strings.IndexByte(ctype, ';'); i >= 0 {
		ctype = ctype[:i]
	}
	return "data:" + ctype + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func stripQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}
