package middleware

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// StartTimeKey stores the request start time for latency calculation.
	StartTimeKey contextKey = "start_time"

	// routeKey stores the *routeHolder filled in by Route.
	routeKey contextKey = "route"
)

// routeHolder carries the matched mux pattern back out to the logging
// middleware, which runs before the mux has matched anything.
type routeHolder struct {
	pattern string
}

func withRouteHolder(ctx context.Context) (context.Context, *routeHolder) {
	h := &routeHolder{}
	return context.WithValue(ctx, routeKey, h), h
}

// routeFrom returns the route matched so far, or "" outside LoggingMiddleware.
func routeFrom(ctx context.Context) string {
	if h, ok := ctx.Value(routeKey).(*routeHolder); ok {
		return h.pattern
	}
	return ""
}
