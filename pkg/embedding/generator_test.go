// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielekarra/neurocode/pkg/embedtext"
)

func sampleDocs(n int) []embedtext.Document {
	docs := make([]embedtext.Document, n)
	for i := range docs {
		docs[i] = embedtext.Document{ID: "doc", Text: "module: app\nfunction: app.main"}
	}
	return docs
}

func TestMockProvider_DeterministicAndNormalized(t *testing.T) {
	p := NewMockProvider(16, nil)
	v1, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	v2, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	var norm float32
	for _, v := range v1 {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 0.01)
}

func TestGenerator_EmbedDocuments_Sequential(t *testing.T) {
	gen := NewGenerator(NewMockProvider(8, nil), 1, nil)
	result, err := gen.EmbedDocuments(context.Background(), sampleDocs(3))
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, 0, result.ErrorCount)
	for _, item := range result.Items {
		assert.Len(t, item.Embedding, 8)
	}
}

func TestGenerator_EmbedDocuments_Parallel(t *testing.T) {
	gen := NewGenerator(NewMockProvider(8, nil), 4, nil)
	result, err := gen.EmbedDocuments(context.Background(), sampleDocs(10))
	require.NoError(t, err)
	assert.Len(t, result.Items, 10)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestGenerator_EmbedDocuments_Empty(t *testing.T) {
	gen := NewGenerator(NewMockProvider(8, nil), 1, nil)
	result, err := gen.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

type failingProvider struct {
	err error
}

func (f *failingProvider) Embed(context.Context, string) ([]float32, error) {
	return nil, f.err
}

func TestGenerator_NonRetryableErrorCountedOnce(t *testing.T) {
	gen := NewGenerator(&failingProvider{err: errors.New("invalid request")}, 1, nil)
	gen.SetRetryConfig(RetryConfig{MaxRetries: 5, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, Multiplier: 2})
	result, err := gen.EmbedDocuments(context.Background(), sampleDocs(1))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Empty(t, result.Items[0].Embedding)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("request timeout")))
	assert.True(t, isRetryableError(errors.New("server error 503 ")))
	assert.False(t, isRetryableError(errors.New("invalid api key")))
	assert.False(t, isRetryableError(nil))
}

func TestComputeBackoffWithJitter_BoundedByCap(t *testing.T) {
	for i := 0; i < 20; i++ {
		d := computeBackoffWithJitter(100*time.Millisecond, 10, 2.0, time.Second)
		assert.LessOrEqual(t, d, time.Second)
		assert.GreaterOrEqual(t, d, time.Duration(0))
	}
}

func TestRetryConfig_SanitizeFillsDefaults(t *testing.T) {
	cfg := RetryConfig{}.sanitize()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 2*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 2.0, cfg.Multiplier)
}
