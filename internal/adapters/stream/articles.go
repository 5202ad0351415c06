// Package stream decodes batches of articles from line-oriented input.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/baditaflorin/go_fakenews/internal/ports"
)

const (
	// DefaultMaxLineSize bounds a single input line (one article).
	DefaultMaxLineSize = 4 * 1024 * 1024 // 4MB

	// ContextCheckFrequency defines how often to check for context cancellation
	ContextCheckFrequency = 500 // lines
)

// Format selects how each input line is interpreted.
type Format int

const (
	// FormatAuto treats lines starting with '{' as JSON and others as text.
	FormatAuto Format = iota
	// FormatJSONL requires every line to be a JSON object {"id","text"}.
	FormatJSONL
	// FormatLines treats every line as the text of one article.
	FormatLines
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "auto":
		return FormatAuto, nil
	case "jsonl", "json":
		return FormatJSONL, nil
	case "lines", "text":
		return FormatLines, nil
	default:
		return FormatAuto, fmt.Errorf("unknown input format %q", s)
	}
}

// ReaderConfig configures the article reader.
type ReaderConfig struct {
	Format      Format
	MaxLineSize int
}

// Reader reads one article per line.
type Reader struct {
	logger ports.Logger
	config ReaderConfig
}

// NewReader creates an article reader.
func NewReader(logger ports.Logger, config ReaderConfig) *Reader {
	if config.MaxLineSize <= 0 {
		config.MaxLineSize = DefaultMaxLineSize
	}
	return &Reader{logger: logger, config: config}
}

var _ ports.ArticleReader = (*Reader)(nil)

// ReadArticles reads all articles from in. Blank lines are skipped; articles
// without an id get "line-N" where N is the 1-based line number.
func (r *Reader) ReadArticles(ctx context.Context, in io.Reader) ([]ports.Article, error) {
	scanner := r.newScanner(in)

	var articles []ports.Article
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%ContextCheckFrequency == 0 {
			select {
			case <-ctx.Done():
				r.logger.Warn("Reading cancelled by context", "error", ctx.Err(), "line", lineNo)
				return nil, ctx.Err()
			default:
			}
		}

		article, ok, err := r.parseLine(lineNo, scanner.Bytes())
		if err != nil {
			return nil, err
		}
		if ok {
			articles = append(articles, article)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}

	r.logger.Debug("Read articles", "count", len(articles), "lines", lineNo)
	return articles, nil
}

func (r *Reader) newScanner(in io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, min(64*1024, r.config.MaxLineSize)), r.config.MaxLineSize)
	return scanner
}

// parseLine decodes one input line. ok is false for blank lines.
func (r *Reader) parseLine(lineNo int, raw []byte) (article ports.Article, ok bool, err error) {
	line := bytes.TrimSpace(raw)
	if len(line) == 0 {
		return article, false, nil
	}

	article, err = r.decodeLine(line)
	if err != nil {
		return article, false, fmt.Errorf("line %d: %w", lineNo, err)
	}
	if article.ID == "" {
		article.ID = "line-" + strconv.Itoa(lineNo)
	}
	return article, true, nil
}

func (r *Reader) decodeLine(line []byte) (ports.Article, error) {
	asJSON := r.config.Format == FormatJSONL ||
		(r.config.Format == FormatAuto && line[0] == '{')
	if !asJSON {
		return ports.Article{Text: string(line)}, nil
	}

	var article ports.Article
	if err := json.Unmarshal(line, &article); err != nil {
		return ports.Article{}, fmt.Errorf("invalid JSON article: %w", err)
	}
	return article, nil
}
