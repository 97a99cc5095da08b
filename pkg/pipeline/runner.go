package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/avatar"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/graph"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/persona"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner serves concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Inliner embeds avatars before rasterizing. When nil, PNG and PDF
	// output of the tree renderer is drawn without images.
	Inliner *avatar.Inliner
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// uses the default keyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// WithInliner sets the avatar inliner used for raster output.
func (r *Runner) WithInliner(i *avatar.Inliner) *Runner {
	r.Inliner = i
	return r
}

// Execute computes the layout of people and renders every requested format.
func (r *Runner) Execute(ctx context.Context, people []persona.Person, opts Options) (*Result, error) {
	r.prepare(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	res := &Result{People: people, Artifacts: make(map[string][]byte, len(opts.Formats))}

	start := time.Now()
	l, hit, err := r.LayoutWithCacheInfo(ctx, people, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = l
	res.Stats = Stats{
		People:     len(people),
		Nodes:      len(l.Nodes),
		Links:      len(l.Links),
		LayoutTime: time.Since(start),
	}
	res.CacheInfo.LayoutHit = hit
	r.Logger.Info("computed layout",
		"people", len(people),
		"nodes", len(l.Nodes),
		"links", len(l.Links),
		"cached", hit,
		"duration", res.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, people, l, opts)
	if err != nil {
		return nil, err
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(start)
	res.CacheInfo.RenderHit = hit
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// Layout is LayoutWithCacheInfo without the hit flag.
func (r *Runner) Layout(ctx context.Context, people []persona.Person, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, people, opts)
	return l, err
}

// LayoutWithCacheInfo computes the layout of people, reading and writing the
// cache. The boolean reports a cache hit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, people []persona.Person, opts Options) (graph.Layout, bool, error) {
	r.prepare(&opts)
	if err := opts.Validate(); err != nil {
		return graph.Layout{}, false, err
	}

	data, err := kio.MarshalJSON(people)
	if err != nil {
		return graph.Layout{}, false, fmt.Errorf("hash people: %w", err)
	}
	key := r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := graph.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return l, true, nil
			}
			r.Logger.Debug("discarding unreadable cached layout", "key", key)
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(people))
	start := time.Now()
	res, err := layout.Compute(people, opts.Layout)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
		return graph.Layout{}, false, err
	}
	l := graph.FromResult(res, opts.Presets)
	hooks.OnLayoutComplete(ctx, len(l.Nodes), time.Since(start), nil)

	r.store(ctx, key, "layout", func() ([]byte, error) { return graph.MarshalLayout(l) }, cache.TTLLayout)
	return l, false, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, people []persona.Person, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, people, l, opts)
	return artifacts, err
}

// RenderWithCacheInfo renders every format in opts. Record formats are
// built from people; the others from the layout and cached by its hash. The
// boolean reports that every cacheable artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, people []persona.Person, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.prepare(&opts)
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Avatars are loaded before the keys are built so that a replaced image
	// yields a new raster key.
	var inlined map[string]string
	var avatarsHash string
	if r.inlines(opts) {
		inlined = r.Inliner.InlineAll(ctx, l.Avatars())
		avatarsHash = inlinedHash(inlined)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	for _, format := range opts.Formats {
		if format == FormatJSON || format == FormatCSV {
			data, err := RenderRecords(people, format)
			if err != nil {
				return nil, false, err
			}
			artifacts[format] = data
			continue
		}

		keyOpts := opts.ArtifactKeyOpts(format)
		if isRaster(format) {
			keyOpts.AvatarsHash = avatarsHash
		}
		key := r.Keyer.ArtifactKey(layoutHash, keyOpts)
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allHit = false

		data, err := r.renderFormat(ctx, l, format, opts, inlined)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		r.store(ctx, key, "artifact", func() ([]byte, error) { return data, nil }, cache.TTLArtifact)
	}
	return artifacts, allHit, nil
}

func (r *Runner) renderFormat(ctx context.Context, l graph.Layout, format string, opts Options, inlined map[string]string) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	if !isRaster(format) {
		inlined = nil
	}
	data, err := RenderLayout(ctx, l, format, opts, inlined)

	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

// store writes to the cache, logging failures instead of returning them.
func (r *Runner) store(ctx context.Context, key, keyType string, encode func() ([]byte, error), ttl time.Duration) {
	data, err := encode()
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// prepare applies defaults and the runner's logger.
func (r *Runner) prepare(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts.SetDefaults()
}

// inlines reports whether a run draws avatars from inlined data: the tree
// renderer with an inliner and at least one raster format.
func (r *Runner) inlines(opts Options) bool {
	if r.Inliner == nil || opts.Renderer != RendererTree {
		return false
	}
	return slices.ContainsFunc(opts.Formats, isRaster)
}

func isRaster(format string) bool {
	return format == FormatPNG || format == FormatPDF
}

func inlinedHash(m map[string]string) string {
	data, _ := json.Marshal(m)
	return cache.Hash(data)
}

func presetsHash(p avatar.Presets) string {
	data, _ := json.Marshal(p)
	return cache.Hash(data)
}
