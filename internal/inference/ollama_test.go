package inference

import (
	"context"
	"errors"
	"testing"

	ollama "github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	chunks []string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, req *ollama.GenerateRequest, fn ollama.GenerateResponseFunc) error {
	f.prompt = req.Prompt
	if f.err != nil {
		return f.err
	}
	for _, chunk := range f.chunks {
		if err := fn(ollama.GenerateResponse{Response: chunk}); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGenerator) List(context.Context) (*ollama.ListResponse, error) {
	return &ollama.ListResponse{Models: []ollama.ListModelResponse{{Name: "gemma3:4b"}, {Name: "qwen3:8b"}}}, nil
}

func TestOllamaRaterParsesStars(t *testing.T) {
	generator := &fakeGenerator{chunks: []string{"<think>the user seems happy</think>", "\n4"}}
	rater := &OllamaRater{ModelName: "qwen3:8b", Prompt: DefaultStarPrompt, Client: generator}

	rating, err := rater.Rate(context.Background(), "gostei muito")
	require.NoError(t, err)
	assert.Equal(t, "4 stars", rating.Label)
	assert.Contains(t, generator.prompt, "gostei muito")
	assert.NotContains(t, generator.prompt, TEMPLATE_TEXT)
}

func TestOllamaRaterErrors(t *testing.T) {
	rater := &OllamaRater{Prompt: DefaultStarPrompt, Client: &fakeGenerator{chunks: []string{"I cannot rate this"}}}
	_, err := rater.Rate(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUnknownLabel)

	rater.Client = &fakeGenerator{err: errors.New("connection refused")}
	_, err = rater.Rate(context.Background(), "text")
	assert.ErrorContains(t, err, "connection refused")
}

func TestOllamaRaterThroughClassifier(t *testing.T) {
	rater := &OllamaRater{Prompt: DefaultStarPrompt, Client: &fakeGenerator{chunks: []string{"1"}}}
	result := NewClassifier(rater, nil).Classify(context.Background(), "horrible")
	assert.Equal(t, -1.0, result.Polarity)
	assert.False(t, result.Degraded)
}

func TestListModels(t *testing.T) {
	rater := &OllamaRater{Client: &fakeGenerator{}}
	names, err := rater.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemma3:4b", "qwen3:8b"}, names)
}

func TestRemoveThinkBlock(t *testing.T) {
	assert.Equal(t, "5", removeThinkBlock("<think>\nmulti\nline\n</think>  5 "))
}
