package repository

import "context"

type originKey struct{}

// WithOrigin tags writes made with ctx as coming from origin
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom returns the writer origin carried by ctx, or ""
func OriginFrom(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}
