package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"grandaura/internal/pkg/cache"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/metrics"
)

// RateLimiter limita pedidos por IP e rota numa janela fixa, com contadores no cache.
// Aplicado às submissões de login e registro.
func RateLimiter(client cache.Client, limit int, duration time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr // RealIP já pode ter removido a porta
			}
			key := "rate-limit:" + r.URL.Path + ":" + ip
			ctx := r.Context()

			count, err := client.GetInt(ctx, key)
			if errors.Is(err, cache.ErrCacheMiss) {
				if err := client.Set(ctx, key, 1, duration); err != nil {
					log.Error("Falha ao iniciar contador de rate limit.", err)
				}
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-1))
				next.ServeHTTP(w, r)
				return
			} else if err != nil {
				log.Error("Falha ao ler contador de rate limit.", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if count >= limit {
				metrics.RateLimited.Inc()
				log.Warn("Rate limit excedido.", map[string]interface{}{"ip": ip, "path": r.URL.Path})
				w.Header().Set("Retry-After", strconv.Itoa(int(duration.Seconds())))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			if _, err := client.Incr(ctx, key); err != nil {
				log.Error("Falha ao incrementar contador de rate limit.", err)
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
			next.ServeHTTP(w, r)
		})
	}
}
