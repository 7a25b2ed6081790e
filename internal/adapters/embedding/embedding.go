// Package embedding talks to an OpenAI-compatible /embeddings endpoint
package embedding

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"contextual/internal/platform/config"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/logger"

	"github.com/sashabaranov/go-openai"
)

// Embedder turns texts into fixed-dimension vectors, one per input and in input order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds provider settings
type Config struct {
	BaseURL string // e.g. http://host.docker.internal:1234/v1
	APIKey  string
	Model   string
	Dim     int
	Timeout time.Duration
}

// FromConf reads EMBED_* style keys from an already prefixed view
func FromConf(c config.Conf) Config {
	return Config{
		BaseURL: c.MayString("API_BASE", "http://host.docker.internal:1234/v1"),
		APIKey:  c.MayString("API_KEY", "lm-studio"),
		Model:   c.MayString("MODEL", "Qwen3-Embedding-0.6B-GGUF"),
		Dim:     c.MayInt("DIM", 1024),
		Timeout: c.MayDuration("TIMEOUT", 30*time.Second),
	}
}

// Client is the go-openai backed Embedder
type Client struct {
	api   *openai.Client
	model string
	dim   int
	log   *logger.Logger
}

// New builds a client; an empty BaseURL or Model is rejected
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, perr.InvalidArgf("embedding base url is required")
	}
	if cfg.Model == "" {
		return nil, perr.InvalidArgf("embedding model is required")
	}
	if cfg.Dim <= 0 {
		return nil, perr.InvalidArgf("embedding dim must be positive, got %d", cfg.Dim)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.Model,
		dim:   cfg.Dim,
		log:   logger.Named("embedding"),
	}, nil
}

// Dim returns the expected vector length
func (c *Client) Dim() int { return c.dim }

// Embed requests one vector per text. Transport and provider failures are upstream errors,
// a vector of the wrong length is a dimension mismatch
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: texts,
	})
	if err != nil {
		c.log.Warn().Err(err).Int("inputs", len(texts)).Dur("elapsed", time.Since(start)).Msg("embedding request failed")
		return nil, perr.WithOp(perr.Wrap(err, perr.ErrorCodeUpstream, "embedding request"), "embedding.create")
	}
	if len(resp.Data) != len(texts) {
		return nil, perr.WithOp(perr.Upstreamf("embedding provider returned %d vectors for %d inputs", len(resp.Data), len(texts)), "embedding.create")
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([][]float32, len(data))
	for i, d := range data {
		if len(d.Embedding) != c.dim {
			return nil, perr.WithOp(perr.DimensionMismatch(len(d.Embedding), c.dim), "embedding.create")
		}
		out[i] = d.Embedding
	}
	c.log.Debug().Int("inputs", len(texts)).Dur("elapsed", time.Since(start)).Msg("embedded")
	return out, nil
}

// EmbedOne is Embed for a single text
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}
