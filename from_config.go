package fakenews

import (
	"context"
	"fmt"

	"fortio.org/safecast"
	"github.com/baditaflorin/go_fakenews/internal/adapters/artifact"
	"github.com/baditaflorin/go_fakenews/internal/adapters/cache"
	"github.com/baditaflorin/go_fakenews/internal/adapters/normalizer"
	"github.com/baditaflorin/go_fakenews/internal/config"
	"github.com/baditaflorin/go_fakenews/internal/ports"
	"github.com/baditaflorin/go_fakenews/internal/warmup"
)

// SourceFromConfig builds the artifact source described by cfg.
func SourceFromConfig(cfg config.ArtifactsConfig) (ports.ArtifactSource, error) {
	if !cfg.IsS3() {
		return artifact.NewFileSource(cfg.Dir, cfg.Vectorizer, cfg.Classifier), nil
	}

	retries, err := safecast.Conv[uint64](cfg.S3.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("artifacts.s3.max_retries: %w", err)
	}
	s3cfg := artifact.S3Config{
		Bucket:     cfg.S3.Bucket,
		Prefix:     cfg.S3.Prefix,
		Region:     cfg.S3.Region,
		Endpoint:   cfg.S3.Endpoint,
		AccessKey:  cfg.S3.AccessKey,
		SecretKey:  cfg.S3.SecretKey,
		MaxRetries: retries,
		BaseDelay:  cfg.S3.BaseDelay(),
	}
	return artifact.NewS3Source(artifact.NewS3Client(s3cfg), s3cfg, cfg.Vectorizer, cfg.Classifier), nil
}

// OptionsFromConfig translates cfg into detector options. A Redis cache
// that cannot be reached is logged and skipped.
func OptionsFromConfig(ctx context.Context, cfg *config.Config, logger ports.Logger) ([]Option, error) {
	src, err := SourceFromConfig(cfg.Artifacts)
	if err != nil {
		return nil, err
	}

	normType, err := normalizer.ParseType(cfg.Normalizer.Type)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithPortLogger(logger),
		WithArtifactSource(src),
		WithStrictArtifacts(cfg.Artifacts.Strict),
		WithNormalizer(normalizer.NewNormalizerFactory().CreateNormalizer(normType)),
		WithBatchConcurrency(cfg.Batch.Concurrency),
	}

	if cfg.Cache.Enabled {
		rc, err := cache.NewRedis(ctx, cache.RedisOptions{
			Address:  cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			logger.Warn("Result cache disabled", "error", err)
		} else {
			opts = append(opts, WithResultCache(rc), WithCacheTTL(cfg.Cache.TTL()))
		}
	}

	if cfg.Warmup.Enabled {
		wc := warmup.DefaultWarmupConfig()
		if cfg.Warmup.Concurrency > 0 {
			wc.Concurrency = cfg.Warmup.Concurrency
		}
		if cfg.Warmup.Iterations > 0 {
			wc.Iterations = cfg.Warmup.Iterations
		}
		wc.Duration = cfg.Warmup.Duration()
		opts = append(opts, WithWarmUpConfig(wc))
	}

	return opts, nil
}

// NewFromConfig creates a Detector from a loaded configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger ports.Logger) (*Detector, error) {
	opts, err := OptionsFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(ctx, opts...)
}
