package encoder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// DefaultModel is the Ollama name of all-MiniLM-L6-v2.
const DefaultModel = "all-minilm"

// OllamaConfig holds configuration for the Ollama backend.
type OllamaConfig struct {
	Host  string // e.g. "http://localhost:11434"; empty uses OLLAMA_HOST.
	Model string
}

// OllamaEncoder embeds sentences with a model served by Ollama.
type OllamaEncoder struct {
	client *api.Client
	model  string
}

// NewOllamaEncoder creates an encoder talking to the configured Ollama host.
func NewOllamaEncoder(cfg OllamaConfig) (*OllamaEncoder, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	var client *api.Client
	if cfg.Host != "" {
		u, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host: %w", err)
		}
		client = api.NewClient(u, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("create ollama client from environment: %w", err)
		}
	}

	return &OllamaEncoder{client: client, model: cfg.Model}, nil
}

// Model returns the model name.
func (e *OllamaEncoder) Model() string {
	return e.model
}

// Encode embeds all sentences in one request.
func (e *OllamaEncoder) Encode(ctx context.Context, sentences []string) ([][]float32, error) {
	if len(sentences) == 0 {
		return nil, ErrEmptyInput
	}

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: sentences,
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) && isTransient(statusErr.StatusCode) {
			return nil, &RetryableError{StatusCode: statusErr.StatusCode, Message: statusErr.ErrorMessage}
		}
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, ErrNoEmbeddings
	}
	if err := checkResult(sentences, resp.Embeddings); err != nil {
		return nil, err
	}
	return resp.Embeddings[:len(sentences)], nil
}

func isTransient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
