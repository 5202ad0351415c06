package warmup

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/baditaflorin/go_fakenews/internal/ports"
	"github.com/baditaflorin/go_fakenews/internal/samples"
)

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency: runtime.NumCPU(),
		Iterations:  200,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// Stats reports what a warm-up run did.
type Stats struct {
	Normalizations  int64
	Classifications int64
	Failures        int64
	Duration        time.Duration
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	classifiers []ports.ArticleClassifier
	normalizers []ports.Normalizer
	config      WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterClassifier adds a classifier to be warmed up
func (wm *Manager) RegisterClassifier(c ports.ArticleClassifier) {
	wm.classifiers = append(wm.classifiers, c)
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// WarmUp runs the warmup process for all registered components
func (wm *Manager) WarmUp(ctx context.Context) Stats {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.classifiers)+len(wm.normalizers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	var warmupCtx context.Context
	var cancel context.CancelFunc
	if wm.config.Duration > 0 {
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	} else {
		warmupCtx = ctx
	}

	var stats Stats
	stats.Normalizations = wm.warmUpNormalizers(warmupCtx)
	stats.Classifications, stats.Failures = wm.warmUpClassifiers(warmupCtx)

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	stats.Duration = time.Since(startTime)
	wm.logger.Info("System warmup completed",
		"duration", stats.Duration,
		"normalizations", stats.Normalizations,
		"classifications", stats.Classifications,
		"failures", stats.Failures,
	)
	return stats
}

func sampleTexts() []string {
	texts := []string{samples.SmokeArticle}
	for _, s := range samples.All() {
		texts = append(texts, s.Text)
	}
	return texts
}

// warmUpNormalizers runs warmup for all registered normalizers
func (wm *Manager) warmUpNormalizers(ctx context.Context) int64 {
	if len(wm.normalizers) == 0 {
		return 0
	}

	wm.logger.Debug("Warming up normalizers", "count", len(wm.normalizers))
	texts := sampleTexts()

	var mu sync.Mutex
	var total int64
	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var n int64
			for j := 0; j < wm.config.Iterations && ctx.Err() == nil; j++ {
				for _, normalizer := range wm.normalizers {
					_ = normalizer.Normalize(texts[j%len(texts)])
					n++
				}
			}

			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}

	wg.Wait()
	return total
}

// warmUpClassifiers runs warmup for all registered classifiers
func (wm *Manager) warmUpClassifiers(ctx context.Context) (int64, int64) {
	if len(wm.classifiers) == 0 {
		return 0, 0
	}

	wm.logger.Debug("Warming up classifiers", "count", len(wm.classifiers))
	texts := sampleTexts()

	var mu sync.Mutex
	var total, failures int64
	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var n, failed int64
			for j := 0; j < wm.config.Iterations && ctx.Err() == nil; j++ {
				for _, classifier := range wm.classifiers {
					if _, err := classifier.Classify(ctx, texts[j%len(texts)]); err != nil {
						failed++
					}
					n++
				}
			}

			mu.Lock()
			total += n
			failures += failed
			mu.Unlock()
		}()
	}

	wg.Wait()
	return total, failures
}
