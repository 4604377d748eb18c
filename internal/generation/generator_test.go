package generation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/skincare-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextGeneratorFunc(t *testing.T) {
	var got string
	var gen generation.TextGenerator = generation.TextGeneratorFunc(
		func(ctx context.Context, prompt string) (string, error) {
			got = prompt
			return "answer", nil
		},
	)

	text, err := gen.GenerateText(context.Background(), "question")

	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Equal(t, "question", got)
}

func TestTextGeneratorFuncPropagatesError(t *testing.T) {
	gen := generation.TextGeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.Join(generation.ErrContentBlocked, errors.New("safety"))
	})

	_, err := gen.GenerateText(context.Background(), "question")

	assert.ErrorIs(t, err, generation.ErrContentBlocked)
}
