package ports

import (
	"context"
	"io"
)

// Article is one item of a batch input.
type Article struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ArticleReader decodes a batch of articles from a stream.
type ArticleReader interface {
	ReadArticles(ctx context.Context, r io.Reader) ([]Article, error)
}
