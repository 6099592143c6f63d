package source

import (
	"log/slog"
	"net/http"
)

// PushServerBuilderOption is a functional option for configuring a PushServer.
type PushServerBuilderOption func(*pushServer)

// WithAddr sets the listen address. Defaults to 127.0.0.1:7777.
func WithAddr(addr string) PushServerBuilderOption {
	return func(ps *pushServer) {
		if addr != "" {
			ps.addr = addr
		}
	}
}

// WithPath sets the endpoint path used by ListenAndServe. Defaults to DefaultPushPath.
func WithPath(path string) PushServerBuilderOption {
	return func(ps *pushServer) {
		if path != "" {
			ps.path = path
		}
	}
}

// WithReadLimit caps the size of a pushed message in bytes.
func WithReadLimit(n int64) PushServerBuilderOption {
	return func(ps *pushServer) {
		if n > 0 {
			ps.readLimit = n
		}
	}
}

// WithCheckOrigin sets the origin check applied to upgrade requests. The default accepts only
// same-origin requests.
func WithCheckOrigin(fn func(r *http.Request) bool) PushServerBuilderOption {
	return func(ps *pushServer) {
		ps.upgrader.CheckOrigin = fn
	}
}

// WithServerLogger sets the logger of a PushServer.
func WithServerLogger(logger *slog.Logger) PushServerBuilderOption {
	return func(ps *pushServer) {
		if logger != nil {
			ps.logger = logger
		}
	}
}
