// detector.go

// Package fakenews classifies news articles as FAKE or REAL with a
// pre-trained TF-IDF vectorizer and linear classifier.
//
// The pipeline is: normalize (lowercase, drop digits, drop ASCII punctuation)
// -> vectorize -> predict label and class probabilities -> derive the
// confidence percentage and its tier:
//
//	confidence = max(p_fake, p_real) * 100
//	tier       = HIGH if confidence >= 80, MEDIUM if >= 60, LOW otherwise
//
// A Detector is configured with functional options and is safe for
// concurrent use once constructed.
package fakenews

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_fakenews/internal/adapters/artifact"
	"github.com/baditaflorin/go_fakenews/internal/adapters/cache"
	"github.com/baditaflorin/go_fakenews/internal/adapters/logger"
	"github.com/baditaflorin/go_fakenews/internal/adapters/normalizer"
	"github.com/baditaflorin/go_fakenews/internal/adapters/stream"
	"github.com/baditaflorin/go_fakenews/internal/batch"
	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"github.com/baditaflorin/go_fakenews/internal/core/inference"
	"github.com/baditaflorin/go_fakenews/internal/ports"
	"github.com/baditaflorin/go_fakenews/internal/warmup"
	"github.com/baditaflorin/l"
)

// DefaultCacheTTL is how long cached results live when a cache is configured.
const DefaultCacheTTL = time.Hour

// ErrNoArtifacts is the load error of a detector built without artifacts.
var ErrNoArtifacts = errors.New("no artifacts or artifact source configured")

// Detector classifies articles. When the artifacts could not be loaded the
// detector still works as a normalizer, and every classification reports
// the load error.
type Detector struct {
	engine     *inference.Engine
	loadErr    error
	artifacts  ports.Artifacts
	location   string
	normalizer ports.Normalizer
	logger     ports.Logger
	ownsLogger bool

	cache    ports.ResultCache
	cacheTTL time.Duration

	batchConcurrency int

	warmMu sync.Mutex
	warmed bool
}

// Option defines a functional option for configuring a Detector.
type Option func(*detectorConfig)

type detectorConfig struct {
	Logger           ports.Logger
	Normalizer       ports.Normalizer
	Artifacts        ports.Artifacts
	Source           ports.ArtifactSource
	Strict           bool
	Cache            ports.ResultCache
	CacheTTL         time.Duration
	BatchConcurrency int
	WarmUp           bool
	WarmUpConfig     warmup.WarmupConfig
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *detectorConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithPortLogger sets a logger that already implements the logging port.
// The detector does not close it.
func WithPortLogger(lg ports.Logger) Option {
	return func(cfg *detectorConfig) {
		cfg.Logger = lg
	}
}

// WithNormalizer sets a custom normalizer.
func WithNormalizer(n ports.Normalizer) Option {
	return func(cfg *detectorConfig) {
		cfg.Normalizer = n
	}
}

// WithOptimizedNormalizer selects the allocation-efficient normalizer.
func WithOptimizedNormalizer() Option {
	return func(cfg *detectorConfig) {
		cfg.Normalizer = normalizer.NewNormalizerFactory().CreateNormalizer(normalizer.OptimizedNormalizerType)
	}
}

// WithArtifacts uses an already loaded vectorizer/classifier pair.
func WithArtifacts(a ports.Artifacts) Option {
	return func(cfg *detectorConfig) {
		cfg.Artifacts = a
	}
}

// WithArtifactSource loads the artifacts from src during New.
func WithArtifactSource(src ports.ArtifactSource) Option {
	return func(cfg *detectorConfig) {
		cfg.Source = src
	}
}

// WithArtifactDir loads the default artifact files from dir.
func WithArtifactDir(dir string) Option {
	return WithArtifactSource(artifact.NewFileSource(dir, "", ""))
}

// WithStrictArtifacts controls whether a vectorizer/classifier dimension
// mismatch fails the load (the default) or only logs a warning.
func WithStrictArtifacts(strict bool) Option {
	return func(cfg *detectorConfig) {
		cfg.Strict = strict
	}
}

// WithResultCache caches results by model fingerprint and normalized text.
func WithResultCache(c ports.ResultCache) Option {
	return func(cfg *detectorConfig) {
		cfg.Cache = c
	}
}

// WithCacheTTL sets the lifetime of cached results.
func WithCacheTTL(ttl time.Duration) Option {
	return func(cfg *detectorConfig) {
		cfg.CacheTTL = ttl
	}
}

// WithBatchConcurrency bounds the classifications in flight during a batch.
func WithBatchConcurrency(n int) Option {
	return func(cfg *detectorConfig) {
		cfg.BatchConcurrency = n
	}
}

// WithWarmUp enables warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *detectorConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration and enables warm-up.
func WithWarmUpConfig(config warmup.WarmupConfig) Option {
	return func(cfg *detectorConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a Detector. It only fails when the logger cannot be created;
// an artifact load failure is kept and reported by LoadErr and by every
// classification.
func New(ctx context.Context, opts ...Option) (*Detector, error) {
	config := &detectorConfig{
		Strict:       true,
		CacheTTL:     DefaultCacheTTL,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}
	for _, opt := range opts {
		opt(config)
	}

	ownsLogger := false
	if config.Logger == nil {
		var err error
		config.Logger, err = createDefaultLogger()
		if err != nil {
			return nil, err
		}
		ownsLogger = true
	}

	if config.Normalizer == nil {
		config.Normalizer = normalizer.NewDefaultNormalizer()
	}

	d := &Detector{
		normalizer:       config.Normalizer,
		logger:           config.Logger,
		ownsLogger:       ownsLogger,
		cache:            config.Cache,
		cacheTTL:         config.CacheTTL,
		batchConcurrency: config.BatchConcurrency,
	}

	d.artifacts, d.location, d.loadErr = resolveArtifacts(ctx, config)
	if d.loadErr == nil {
		d.engine, d.loadErr = inference.NewEngine(d.artifacts, d.normalizer, d.logger)
	}
	if d.loadErr != nil {
		d.logger.Error("Detector unavailable", "error", d.loadErr)
	} else {
		d.logger.Info("Detector ready",
			"location", d.location,
			"fingerprint", d.artifacts.Fingerprint(),
			"features", d.artifacts.Vectorizer().Dim(),
		)
	}

	if config.WarmUp {
		d.WarmUp(ctx, config.WarmUpConfig)
	}

	return d, nil
}

func resolveArtifacts(ctx context.Context, config *detectorConfig) (ports.Artifacts, string, error) {
	switch {
	case config.Artifacts != nil:
		return config.Artifacts, "memory", nil
	case config.Source != nil:
		bundle, err := artifact.Load(ctx, config.Source, config.Logger, artifact.WithStrict(config.Strict))
		if err != nil {
			return nil, config.Source.Location(), err
		}
		return bundle, bundle.Location(), nil
	default:
		return nil, "", domain.NewArtifactLoadError("new detector", ErrNoArtifacts)
	}
}

// Ready reports whether the artifacts are loaded.
func (d *Detector) Ready() bool {
	return d.loadErr == nil
}

// LoadErr returns the artifact load error, or nil when the detector is ready.
func (d *Detector) LoadErr() error {
	return d.loadErr
}

// Fingerprint identifies the loaded model; it is empty when not ready.
func (d *Detector) Fingerprint() string {
	if d.artifacts == nil {
		return ""
	}
	return d.artifacts.Fingerprint()
}

// Location describes where the artifacts were loaded from.
func (d *Detector) Location() string {
	return d.location
}

// Normalize returns the normalized form of text. It works even when the
// artifacts are unavailable.
func (d *Detector) Normalize(text string) string {
	return d.normalizer.Normalize(text)
}

// Classify classifies one article.
func (d *Detector) Classify(ctx context.Context, text string) (domain.Result, error) {
	if d.loadErr != nil {
		return domain.Result{}, d.loadErr
	}
	if d.cache == nil {
		return d.engine.Classify(text)
	}

	if strings.TrimSpace(text) == "" {
		return domain.Result{}, domain.NewEmptyInputError("classify")
	}

	normalized := d.normalizer.Normalize(text)
	key := cache.Key(d.artifacts.Fingerprint(), normalized)

	if result, ok, err := d.cache.Get(ctx, key); err != nil {
		d.logger.Warn("Result cache lookup failed", "error", err)
	} else if ok {
		d.logger.Debug("Result cache hit", "key", key)
		return result, nil
	}

	result, err := d.engine.ClassifyNormalized(normalized)
	if err != nil {
		return domain.Result{}, err
	}

	if err := d.cache.Set(ctx, key, result, d.cacheTTL); err != nil {
		d.logger.Warn("Result cache store failed", "error", err)
	}
	return result, nil
}

// Evaluate classifies one article and reports the result as an Outcome.
func (d *Detector) Evaluate(ctx context.Context, text string) Outcome {
	return OutcomeOf(d.Classify(ctx, text))
}

// Explain classifies one article and returns the normalized text and the
// feature vector along with the result. It bypasses the result cache.
func (d *Detector) Explain(text string) (inference.Explanation, error) {
	if d.loadErr != nil {
		return inference.Explanation{}, d.loadErr
	}
	return d.engine.Explain(text)
}

// ClassifyBatch classifies articles concurrently. Items keep the input
// order and carry their own error; the returned error is only set when ctx
// is cancelled.
func (d *Detector) ClassifyBatch(ctx context.Context, articles []ports.Article) ([]batch.Item, error) {
	d.logger.Info("Classifying batch", "articles", len(articles), "concurrency", d.batchConcurrency)
	start := time.Now()

	items, err := batch.Run(ctx, d.Classify, articles, d.batchConcurrency)

	summary := batch.Summarize(items)
	d.logger.Info("Batch classified",
		"total", summary.Total,
		"real", summary.Real,
		"fake", summary.Fake,
		"failed", summary.Failed,
		"duration", time.Since(start),
	)
	return items, err
}

// ClassifyStream classifies one article per line of in and calls emit for
// each in input order, without holding the whole input in memory.
func (d *Detector) ClassifyStream(ctx context.Context, in io.Reader, format stream.Format, emit func(batch.Item) error) (batch.Summary, error) {
	if d.loadErr != nil {
		return batch.Summary{}, d.loadErr
	}

	start := time.Now()
	pipeline := stream.NewPipeline(d.logger, stream.PipelineConfig{
		Reader:  stream.ReaderConfig{Format: format},
		Workers: d.batchConcurrency,
	})
	summary, err := pipeline.Run(ctx, in, d.Classify, emit)

	d.logger.Info("Stream classified",
		"total", summary.Total,
		"real", summary.Real,
		"fake", summary.Fake,
		"failed", summary.Failed,
		"duration", time.Since(start),
	)
	return summary, err
}

// WarmUp runs the normalizer and the engine over the sample articles.
func (d *Detector) WarmUp(ctx context.Context, config warmup.WarmupConfig) warmup.Stats {
	d.warmMu.Lock()
	defer d.warmMu.Unlock()

	if d.warmed {
		d.logger.Debug("System already warmed up, skipping")
		return warmup.Stats{}
	}

	warmupMgr := warmup.NewManager(d.logger, config)
	warmupMgr.RegisterNormalizer(d.normalizer)
	if d.engine != nil {
		engine := d.engine
		warmupMgr.RegisterClassifier(ports.ClassifierFunc(func(_ context.Context, text string) (domain.Result, error) {
			return engine.Classify(text)
		}))
	}

	stats := warmupMgr.WarmUp(ctx)
	d.warmed = true
	return stats
}

// Close releases the result cache and, when the detector created it, the
// logger.
func (d *Detector) Close() error {
	var errs []error
	if d.cache != nil {
		if err := d.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.ownsLogger {
		if err := d.logger.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
