package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/baditaflorin/go_fakenews/internal/batch"
	"github.com/baditaflorin/go_fakenews/internal/ports"
)

// Constants for parallel processing
const (
	// DefaultWorkers is the default number of worker goroutines
	DefaultWorkers = 0 // 0 means use runtime.NumCPU()

	// MaxJobQueueSize limits the number of pending jobs
	MaxJobQueueSize = 32

	// DefaultArticlesPerJob is how many articles a worker takes at once
	DefaultArticlesPerJob = 16
)

// ErrEmitFailed wraps the error returned by the emit callback.
var ErrEmitFailed = errors.New("emit failed")

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Reader         ReaderConfig
	Workers        int
	ArticlesPerJob int
}

// Pipeline classifies an article stream of any length with a fixed set of
// workers. Memory is bounded by the job queue, not by the input size.
type Pipeline struct {
	reader *Reader
	logger ports.Logger
	config PipelineConfig
}

// NewPipeline creates a streaming classification pipeline.
func NewPipeline(logger ports.Logger, config PipelineConfig) *Pipeline {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.ArticlesPerJob <= 0 {
		config.ArticlesPerJob = DefaultArticlesPerJob
	}
	return &Pipeline{
		reader: NewReader(logger, config.Reader),
		logger: logger,
		config: config,
	}
}

// articleJob is a chunk of consecutive articles handed to one worker.
type articleJob struct {
	Articles []ports.Article
	ChunkID  int
}

// jobResult holds the items of one chunk, in article order.
type jobResult struct {
	Items   []batch.Item
	ChunkID int
}

// Run reads articles from in, classifies them and calls emit once per
// article in input order. A failed article is emitted with its error and
// does not stop the stream. Run stops early on a read error, on a decode
// error, on context cancellation or when emit fails. Articles read before a
// read or decode error are still classified and emitted.
func (p *Pipeline) Run(
	ctx context.Context,
	in io.Reader,
	classify batch.ClassifyFunc,
	emit func(batch.Item) error,
) (batch.Summary, error) {
	startTime := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan articleJob, MaxJobQueueSize)
	results := make(chan jobResult, p.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < p.config.Workers; i++ {
		wg.Add(1)
		go p.worker(ctx, jobs, results, classify, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// The producer always sends exactly one value.
	readErr := make(chan error, 1)
	go func() {
		readErr <- p.produce(ctx, in, jobs)
	}()

	var summary batch.Summary
	var emitErr error
	pending := make(map[int]jobResult)
	nextChunkID := 0

	// Results are drained to the end so workers never block on send.
	for result := range results {
		if emitErr != nil {
			continue
		}
		pending[result.ChunkID] = result

		for {
			next, ok := pending[nextChunkID]
			if !ok {
				break
			}
			delete(pending, nextChunkID)
			nextChunkID++

			for _, item := range next.Items {
				if err := emit(item); err != nil {
					emitErr = fmt.Errorf("%w: %w", ErrEmitFailed, err)
					cancel()
					break
				}
				summary.Add(item)
			}
			if emitErr != nil {
				break
			}
		}
	}

	err := <-readErr
	if emitErr != nil {
		err = emitErr
	}

	p.logger.Debug("Streaming classification completed",
		"total", summary.Total,
		"failed", summary.Failed,
		"workers", p.config.Workers,
		"duration", time.Since(startTime),
	)
	return summary, err
}

// produce splits the input into jobs and closes jobs when done.
func (p *Pipeline) produce(ctx context.Context, in io.Reader, jobs chan<- articleJob) error {
	defer close(jobs)

	chunkID := 0
	pendingArticles := make([]ports.Article, 0, p.config.ArticlesPerJob)

	sendBatch := func() error {
		if len(pendingArticles) == 0 {
			return nil
		}
		select {
		case jobs <- articleJob{Articles: pendingArticles, ChunkID: chunkID}:
			chunkID++
			pendingArticles = make([]ports.Article, 0, p.config.ArticlesPerJob)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	scanner := p.reader.newScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		article, ok, err := p.reader.parseLine(lineNo, scanner.Bytes())
		if err != nil {
			if flushErr := sendBatch(); flushErr != nil {
				return flushErr
			}
			return err
		}
		if !ok {
			continue
		}

		pendingArticles = append(pendingArticles, article)
		if len(pendingArticles) >= p.config.ArticlesPerJob {
			if err := sendBatch(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		if flushErr := sendBatch(); flushErr != nil {
			return flushErr
		}
		return fmt.Errorf("read articles: %w", err)
	}
	return sendBatch()
}

// worker classifies jobs until the job channel is closed.
func (p *Pipeline) worker(
	ctx context.Context,
	jobs <-chan articleJob,
	results chan<- jobResult,
	classify batch.ClassifyFunc,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for job := range jobs {
		items := make([]batch.Item, len(job.Articles))
		for i, article := range job.Articles {
			if err := ctx.Err(); err != nil {
				items[i] = batch.Item{ID: article.ID, Err: err}
				continue
			}
			result, err := classify(ctx, article.Text)
			items[i] = batch.Item{ID: article.ID, Result: result, Err: err}
		}
		results <- jobResult{Items: items, ChunkID: job.ChunkID}
	}
}
