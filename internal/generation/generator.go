package generation

import "context"

// TextGenerator defines the boundary between the application core and an
// external text generation service. Implementations send a single prompt and
// return the model's free-text answer unchanged; interpreting that text is the
// caller's job.
type TextGenerator interface {
	// GenerateText sends prompt to the model and returns its text output.
	// It returns an error wrapping one of the sentinel errors in errors.go
	// when the call fails or the response carries no usable text.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// TextGeneratorFunc adapts a plain function to the TextGenerator interface.
type TextGeneratorFunc func(ctx context.Context, prompt string) (string, error)

// GenerateText calls f(ctx, prompt).
func (f TextGeneratorFunc) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
