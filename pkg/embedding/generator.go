// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package embedding

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabrielekarra/neurocode/pkg/embedtext"
)

// maxChars bounds the text sent to a provider; embedding models have token
// limits and code tokenizes poorly (operators and punctuation cost extra
// tokens), so texts are truncated conservatively rather than rejected.
const maxChars = 2000

// Item is one embedding document paired with its generated vector. The
// vector is empty when generation failed after retries.
type Item struct {
	embedtext.Document
	Embedding []float32
}

// Result summarizes a batch embedding run.
type Result struct {
	Items          []Item
	ErrorCount     int
	TruncatedCount int
}

// Generator drives a Provider over a batch of documents with bounded
// concurrency and classified retry.
type Generator struct {
	provider Provider
	workers  int
	logger   *slog.Logger
	retry    RetryConfig
}

// NewGenerator creates a Generator. workers <= 1 processes sequentially.
func NewGenerator(provider Provider, workers int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		provider: provider,
		workers:  workers,
		logger:   logger,
		retry:    DefaultRetryConfig(),
	}
}

// SetRetryConfig overrides the retry configuration, sanitizing zero values.
func (g *Generator) SetRetryConfig(cfg RetryConfig) {
	g.retry = cfg.sanitize()
}

// EmbedDocuments generates an embedding for each document. It never returns
// a fatal error for individual embedding failures: a failed document keeps
// an empty Embedding and is counted in Result.ErrorCount.
func (g *Generator) EmbedDocuments(ctx context.Context, docs []embedtext.Document) (*Result, error) {
	if len(docs) == 0 {
		return &Result{}, nil
	}
	if g.workers <= 1 {
		return g.embedSequential(ctx, docs)
	}
	return g.embedParallel(ctx, docs)
}

func (g *Generator) embedSequential(ctx context.Context, docs []embedtext.Document) (*Result, error) {
	items := make([]Item, len(docs))
	errorCount, truncatedCount := 0, 0

	for i, doc := range docs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		vec, truncated, err := g.embedOne(ctx, doc)
		if err != nil {
			errorCount++
		}
		if truncated {
			truncatedCount++
		}
		items[i] = Item{Document: doc, Embedding: vec}
	}

	if errorCount > 0 || truncatedCount > 0 {
		g.logger.Info("embedding.summary", "total", len(docs), "errors", errorCount, "truncated", truncatedCount)
	}
	return &Result{Items: items, ErrorCount: errorCount, TruncatedCount: truncatedCount}, nil
}

func (g *Generator) embedParallel(ctx context.Context, docs []embedtext.Document) (*Result, error) {
	items := make([]Item, len(docs))
	var errorCount, truncatedCount int32

	jobs := make(chan int, len(docs))
	type jobResult struct {
		index     int
		item      Item
		err       bool
		truncated bool
	}
	resultsChan := make(chan jobResult, len(docs))

	var wg sync.WaitGroup
	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				vec, truncated, err := g.embedOne(ctx, docs[i])
				if err != nil {
					atomic.AddInt32(&errorCount, 1)
				}
				if truncated {
					atomic.AddInt32(&truncatedCount, 1)
				}
				resultsChan <- jobResult{index: i, item: Item{Document: docs[i], Embedding: vec}, err: err != nil, truncated: truncated}
			}
		}()
	}

	for i := range docs {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for r := range resultsChan {
		items[r.index] = r.item
	}

	errCount := int(atomic.LoadInt32(&errorCount))
	truncCount := int(atomic.LoadInt32(&truncatedCount))
	if errCount > 0 || truncCount > 0 {
		g.logger.Info("embedding.summary", "total", len(docs), "errors", errCount, "truncated", truncCount, "workers", g.workers)
	}
	return &Result{Items: items, ErrorCount: errCount, TruncatedCount: truncCount}, nil
}

func (g *Generator) embedOne(ctx context.Context, doc embedtext.Document) ([]float32, bool, error) {
	text := doc.Text
	truncated := false
	if len(text) > maxChars {
		text = text[:maxChars]
		truncated = true
	}

	var vec []float32
	var err error
	for attempt := 0; attempt < g.retry.MaxRetries; attempt++ {
		vec, err = g.provider.Embed(ctx, text)
		if err == nil {
			break
		}
		if !isRetryableError(err) || attempt == g.retry.MaxRetries-1 {
			break
		}
		sleep := computeBackoffWithJitter(g.retry.InitialBackoff, attempt, g.retry.Multiplier, g.retry.MaxBackoff)
		g.logger.Warn("embedding.retry", "document_id", doc.ID, "attempt", attempt+1, "sleep_ms", sleep.Milliseconds(), "err", err)
		select {
		case <-ctx.Done():
			return nil, truncated, ctx.Err()
		case <-time.After(sleep):
		}
	}

	if err != nil {
		g.logger.Error("embedding.document.failed", "document_id", doc.ID, "text_len", len(doc.Text), "error", err)
		vec = []float32{}
	}
	return vec, truncated, err
}
