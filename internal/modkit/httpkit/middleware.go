package httpkit

import (
	"net/http"
	"time"

	"contextual/internal/platform/config"
	"contextual/internal/platform/net/middleware"
)

// CommonStack is the baseline every service mounts at the root
// HTTP_TIMEOUT (30s) and HTTP_CORS_ORIGINS (empty, CORS off) are read from cfg
func CommonStack(cfg config.Conf) []func(http.Handler) http.Handler {
	stack := middleware.Defaults(cfg.MayDuration("HTTP_TIMEOUT", 30*time.Second))
	stack = append(stack, middleware.AccessLogZerolog(middleware.AccessLogOptions{
		Slow: cfg.MayDuration("HTTP_SLOW", time.Second),
		Skip: []string{"/health"},
	}))
	if origins := cfg.MayCSV("HTTP_CORS_ORIGINS", nil); len(origins) > 0 {
		stack = append(stack, middleware.CORS(middleware.CORSOptions{AllowedOrigins: origins, MaxAge: 300}))
	}
	return stack
}
