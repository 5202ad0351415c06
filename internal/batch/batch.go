// Package batch classifies many articles concurrently.
package batch

import (
	"context"
	"runtime"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"github.com/baditaflorin/go_fakenews/internal/ports"
	"golang.org/x/sync/errgroup"
)

// Item is the outcome for one article of a batch.
type Item struct {
	ID     string
	Result domain.Result
	Err    error
}

// ClassifyFunc classifies one article.
type ClassifyFunc func(ctx context.Context, text string) (domain.Result, error)

// Run classifies articles with at most concurrency calls in flight
// (GOMAXPROCS when concurrency <= 0). Items keep the input order. A failing
// item does not stop the batch; only context cancellation does, in which
// case the context error is returned together with the items completed so far.
func Run(ctx context.Context, classify ClassifyFunc, articles []ports.Article, concurrency int) ([]Item, error) {
	items := make([]Item, len(articles))
	if len(articles) == 0 {
		return items, nil
	}

	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(concurrency, len(articles)))

	for i, article := range articles {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				items[i] = Item{ID: article.ID, Err: gctx.Err()}
				return gctx.Err()
			default:
			}

			// Each goroutine owns exactly one slot, so no mutex is needed.
			result, err := classify(gctx, article.Text)
			items[i] = Item{ID: article.ID, Result: result, Err: err}
			return nil
		})
	}

	err := g.Wait()
	return items, err
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total  int `json:"total"`
	Real   int `json:"real"`
	Fake   int `json:"fake"`
	Failed int `json:"failed"`
}

// Add counts one item.
func (s *Summary) Add(item Item) {
	s.Total++
	switch {
	case item.Err != nil:
		s.Failed++
	case item.Result.Label == domain.Real:
		s.Real++
	default:
		s.Fake++
	}
}

// Summarize counts labels and failures.
func Summarize(items []Item) Summary {
	var s Summary
	for _, item := range items {
		s.Add(item)
	}
	return s
}
