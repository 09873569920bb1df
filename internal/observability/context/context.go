// Package context carries call-scoped logging fields through a
// context.Context.
package context

import (
	"context"
	"strings"

	"github.com/smallbiznis/onclick/pkg/telemetry/correlation"
)

type operationKey struct{}
type callerKey struct{}

// WithCall attaches the call id, operation name and caller identity.
func WithCall(ctx context.Context, callID, operation, caller string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = correlation.ContextWithCorrelationID(ctx, strings.TrimSpace(callID))
	if operation = strings.TrimSpace(operation); operation != "" {
		ctx = context.WithValue(ctx, operationKey{}, operation)
	}
	if caller = strings.TrimSpace(caller); caller != "" {
		ctx = context.WithValue(ctx, callerKey{}, caller)
	}
	return ctx
}

func CallIDFromContext(ctx context.Context) string {
	return correlation.ExtractCorrelationID(ctx)
}

func OperationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(operationKey{}).(string)
	return v
}

func CallerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(callerKey{}).(string)
	return v
}
