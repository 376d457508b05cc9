package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"classifiedsBack/internal/models"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "deny")
		next.ServeHTTP(w, r)
	})
}

func makeResponseJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.infoLog.Printf("%s - %s %s %s", r.RemoteAddr, r.Proto, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// JWTMiddleware validates the bearer access token and puts user_id and role
// into the request context.
func (app *application) JWTMiddleware(next http.Handler, requiredRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			app.clientError(w, http.StatusUnauthorized, "Authorization header missing or invalid")
			return
		}
		accessToken := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := app.tokens.Parse(accessToken)
		if err != nil {
			app.clientError(w, http.StatusUnauthorized, "Invalid or expired access token")
			return
		}

		if requiredRole == models.RoleAdmin && claims.Role != models.RoleAdmin {
			app.clientError(w, http.StatusForbidden, "Forbidden: only admins allowed")
			return
		}

		ctx := context.WithValue(r.Context(), "user_id", int(claims.UserID))
		ctx = context.WithValue(ctx, "role", claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

// limitPayments throttles payment endpoints per authenticated user. It must
// run after JWTMiddleware.
func (app *application) limitPayments(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.cfg.Payments.DisableRateLimit {
			next.ServeHTTP(w, r)
			return
		}
		userID, _ := r.Context().Value("user_id").(int)
		if !app.limiterFor(userID).Allow() {
			w.Header().Set("Retry-After", "60")
			app.clientError(w, http.StatusTooManyRequests, "Too many payment requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type paymentLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (app *application) limiterFor(userID int) *rate.Limiter {
	return app.limiterAt(userID, time.Now())
}

// limiterAt returns the user's limiter and drops limiters idle for longer than
// limiterIdleTTL, at most once per limiterSweepInterval.
func (app *application) limiterAt(userID int, now time.Time) *rate.Limiter {
	app.limiterMu.Lock()
	defer app.limiterMu.Unlock()

	if now.Sub(app.limiterSweptAt) >= limiterSweepInterval {
		for id, l := range app.limiters {
			if now.Sub(l.lastSeen) > limiterIdleTTL {
				delete(app.limiters, id)
			}
		}
		app.limiterSweptAt = now
	}

	l, ok := app.limiters[userID]
	if !ok {
		perMinute := app.cfg.Payments.RatePerMinute
		if perMinute <= 0 {
			perMinute = 30
		}
		l = &paymentLimiter{limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute)}
		app.limiters[userID] = l
	}
	l.lastSeen = now
	return l.limiter
}
