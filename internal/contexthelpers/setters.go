package contexthelpers

import (
	"context"
	"net/http"
)

func SetTraceID(r *http.Request, traceID string) *http.Request {
	ctx := context.WithValue(r.Context(), TraceIDContextKey, traceID)
	return r.WithContext(ctx)
}

func AuthorizeAdmin(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), IsAdminContextKey, true)
	return r.WithContext(ctx)
}
