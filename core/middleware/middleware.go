// Package middleware ships stock pre-handler hooks in the chain-runner
// contract: each returns true to continue the chain, false to stop it.
package middleware

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/supranim/supranim-sub001/core/http"
	"github.com/supranim/supranim-sub001/core/router"
)

// Logger logs every request passing through the chain.
func Logger(log zerolog.Logger) router.MiddlewareFunc {
	return func(req *http.Request, res *http.Response) bool {
		log.Info().
			Str("method", req.MethodToken()).
			Str("path", req.Path()).
			Msg("request")
		return true
	}
}

// CORS adds permissive cross-origin headers and answers OPTIONS
// preflights directly, stopping the chain before the handler.
func CORS() router.MiddlewareFunc {
	return func(req *http.Request, res *http.Response) bool {
		res.AddHeader("Access-Control-Allow-Origin", "*")
		res.AddHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		res.AddHeader("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if req.MethodToken() == "OPTIONS" {
			res.SetStatus(204)
			return false
		}
		return true
	}
}

// RateLimit refuses requests beyond requestsPerSecond with a 429.
// Token bucket refilled once a second; shared across workers, so the
// counter state is the one locked thing here.
func RateLimit(requestsPerSecond int) router.MiddlewareFunc {
	var (
		mu         sync.Mutex
		tokens     = requestsPerSecond
		lastRefill = time.Now()
	)
	return func(req *http.Request, res *http.Response) bool {
		mu.Lock()
		now := time.Now()
		if now.Sub(lastRefill) > time.Second {
			tokens = requestsPerSecond
			lastRefill = now
		}
		if tokens > 0 {
			tokens--
			mu.Unlock()
			return true
		}
		mu.Unlock()

		res.JSON(429, map[string]any{"status": 429, "message": "Too Many Requests"})
		return false
	}
}

// RequestID stamps each response with a unique id header.
func RequestID() router.MiddlewareFunc {
	var counter uint64
	return func(req *http.Request, res *http.Response) bool {
		id := atomic.AddUint64(&counter, 1)
		res.AddHeader("X-Request-ID", strconv.FormatUint(id, 10))
		return true
	}
}

// RedirectTo defers a redirect to target and stops the chain; the
// dispatch cycle resolves it to a 302 after middleware ran.
func RedirectTo(target string) router.MiddlewareFunc {
	return func(req *http.Request, res *http.Response) bool {
		res.DeferRedirect(target)
		return false
	}
}
