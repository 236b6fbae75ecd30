package handlers

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"toyWholesale/models"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ctxKey int

const callerKey ctxKey = iota

const sessionCookie = "sessionId"

func withCaller(ctx context.Context, u models.SessionUser) context.Context {
	return context.WithValue(ctx, callerKey, u)
}

// CallerFrom returns the authenticated user stored by the auth middleware.
func CallerFrom(ctx context.Context) (models.SessionUser, bool) {
	u, ok := ctx.Value(callerKey).(models.SessionUser)
	return u, ok
}

// requestToken reads the session token from the Authorization header or the
// session cookie.
func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			WriteErrorResponse(w, models.ErrUnauthorized)
			return
		}
		user, err := h.us.Authenticate(r.Context(), token)
		if err != nil {
			WriteErrorResponse(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), user)))
	})
}

// OptionalAuthMiddleware attaches the caller when a valid token is present and
// lets anonymous requests through.
func (h *Handler) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := requestToken(r); token != "" {
			if user, err := h.us.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(withCaller(r.Context(), user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware must run after AuthMiddleware.
func (h *Handler) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CallerFrom(r.Context())
		if !ok {
			WriteErrorResponse(w, models.ErrUnauthorized)
			return
		}
		if !user.IsAdmin {
			WriteErrorResponse(w, models.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) ErrorHandleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.log.Error("panic occurred",
					zap.Any("panic", rec),
					zap.String("requestId", middleware.GetReqID(r.Context())),
					zap.String("stacktrace", string(debug.Stack())))
				WriteErrorResponse(w, models.ErrServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.String("remote", r.RemoteAddr),
		}
		switch {
		case status >= 500:
			h.log.Error("request", fields...)
		case status >= 400:
			h.log.Warn("request", fields...)
		default:
			h.log.Info("request", fields...)
		}
	})
}

// LoginRateLimitMiddleware throttles login attempts per client IP.
func (h *Handler) LoginRateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.login.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "5")
			WriteErrorResponse(w, models.ErrTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ipLimiter keeps one token bucket per client address. Idle buckets are
// dropped after limiterIdle.
type ipLimiter struct {
	mu      sync.Mutex
	r       rate.Limit
	burst   int
	buckets map[string]*bucket
	sweep   time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

const limiterIdle = 10 * time.Minute

func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiter{
		r:       rate.Limit(perSecond),
		burst:   burst,
		buckets: make(map[string]*bucket),
		sweep:   time.Now(),
	}
}

// allow reports whether ip may proceed; a nil limiter allows everything.
func (l *ipLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.sweep) > limiterIdle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > limiterIdle {
				delete(l.buckets, k)
			}
		}
		l.sweep = now
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.r, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}
