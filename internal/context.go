package internal

import (
	"context"
	"time"
)

// DefaultOperationTimeout bounds CLI work that has no request deadline.
const DefaultOperationTimeout = 30 * time.Second

type subjectKey struct{}

// ContextWithSubject records the authenticated token subject.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext returns the token subject, or "" when auth is off.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	subject, _ := ctx.Value(subjectKey{}).(string)
	return subject
}

// WithTimeout bounds ctx by d. A non-positive d means DefaultOperationTimeout.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultOperationTimeout
	}
	return context.WithTimeout(ctx, d)
}
