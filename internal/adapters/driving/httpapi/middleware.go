package httpapi

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// requestLogger logs each request once it has been served.
func requestLogger(log *zerolog.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		start := time.Now()
		chain.ProcessFilter(req, resp)

		event := log.Info()
		if resp.StatusCode() >= 500 {
			event = log.Error()
		}
		event.
			Str("method", req.Request.Method).
			Str("path", req.Request.URL.Path).
			Int("status", resp.StatusCode()).
			Int64("elapsed_ms", time.Since(start).Milliseconds()).
			Msg("Request served")
	}
}

// recoverPanic turns a panicking handler into a 500 response.
func recoverPanic(log *zerolog.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("path", req.Request.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("Handler panicked")
				writeError(resp, fmt.Errorf("%s %s: %v: %w", req.Request.Method, req.Request.URL.Path, r, domain.ErrUnexpected))
			}
		}()
		chain.ProcessFilter(req, resp)
	}
}
