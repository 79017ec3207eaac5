// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gabrielekarra/neurocode/pkg/embedding"
)

// Result is one ranked match.
type Result struct {
	ID        string
	Kind      string
	Module    string
	Name      string
	File      string
	Line      int
	Signature string
	Score     float64
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func filterItems(items []embedding.StoreItem, moduleFilter string) []embedding.StoreItem {
	if moduleFilter == "" {
		return items
	}
	var out []embedding.StoreItem
	for _, item := range items {
		if item.Module == moduleFilter || strings.HasPrefix(item.Module, moduleFilter+".") {
			out = append(out, item)
		}
	}
	return out
}

// Options configures a Run call.
type Options struct {
	ModuleFilter string
	K            int
}

// Run ranks every function-kind item in store against queryEmbedding by
// cosine similarity, restricted to opts.ModuleFilter (if set) and
// truncated to the top opts.K (default 10).
func Run(store *embedding.Store, queryEmbedding []float32, opts Options) []Result {
	k := opts.K
	if k <= 0 {
		k = 10
	}

	var candidates []embedding.StoreItem
	for _, item := range store.Items {
		if item.Kind == embedding.KindFunction {
			candidates = append(candidates, item)
		}
	}
	candidates = filterItems(candidates, opts.ModuleFilter)

	results := make([]Result, 0, len(candidates))
	for _, item := range candidates {
		results = append(results, Result{
			ID:        item.ID,
			Kind:      item.Kind,
			Module:    item.Module,
			Name:      item.Name,
			File:      item.File,
			Line:      item.Line,
			Signature: item.Signature,
			Score:     cosineSimilarity(queryEmbedding, item.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// QueryFromText embeds free text into a query vector using provider.
func QueryFromText(ctx context.Context, provider embedding.Provider, text string) ([]float32, error) {
	return provider.Embed(ctx, text)
}

// QueryFromSymbol returns the stored embedding for an already-embedded
// symbol, so callers can search for "things similar to X". Stored ids are
// symbol ids (module:qualname); symbol is matched against them both as
// given and with every `:` replaced by `.`.
func QueryFromSymbol(store *embedding.Store, symbol string) ([]float32, error) {
	normalized := strings.ReplaceAll(symbol, ":", ".")
	for _, item := range store.Items {
		if item.ID == normalized || item.ID == symbol {
			if len(item.Embedding) == 0 {
				return nil, fmt.Errorf("no embedding available for symbol: %s", symbol)
			}
			return item.Embedding, nil
		}
	}
	return nil, fmt.Errorf("symbol not found in embeddings: %s", symbol)
}
