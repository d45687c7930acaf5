package dashboard

import "context"

// Generator turns a prompt and its source images into an artifact reference.
type Generator interface {
	Generate(ctx context.Context, prompt string, sourceImageRefs []string) (string, error)
}

// PlaceholderImage is what PlaceholderGenerator returns.
const PlaceholderImage = "/placeholder.svg?height=512&width=512"

// PlaceholderGenerator stands in for the real image model.
type PlaceholderGenerator struct{}

func (PlaceholderGenerator) Generate(ctx context.Context, _ string, _ []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return PlaceholderImage, nil
}
