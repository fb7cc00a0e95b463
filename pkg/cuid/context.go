package cuid

import "context"

type generatorKeyType int

const generatorKey generatorKeyType = iota

// WithGenerator returns a copy of ctx carrying g.
func WithGenerator(ctx context.Context, g *Generator) context.Context {
	return context.WithValue(ctx, generatorKey, g)
}

// FromContext returns the Generator injected by WithGenerator, or the
// process default when none is present.
func FromContext(ctx context.Context) *Generator {
	if ctx == nil {
		return Default()
	}
	if g, ok := ctx.Value(generatorKey).(*Generator); ok && g != nil {
		return g
	}
	return Default()
}
