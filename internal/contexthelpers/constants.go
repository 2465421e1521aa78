package contexthelpers

type contextKey string

const TraceIDContextKey = contextKey("traceID")
const IsAdminContextKey = contextKey("isAdmin")
