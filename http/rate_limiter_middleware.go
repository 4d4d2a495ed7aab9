package http

import (
	"log"
	"net"
	"net/http"
)

func RateLimitMiddleware(
	limiter *RateLimiter,
	next http.Handler,
) http.Handler {

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		caller, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// a portless RemoteAddr still gets its own bucket
			caller = r.RemoteAddr
		}

		if !limiter.Allow(caller) {
			log.Printf("Warning: rate limit exceeded for %s %s %s", caller, r.Method, r.URL.Path)
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
