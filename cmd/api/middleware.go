// cmd/api/middleware.go
package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"GopherStarter/internal/ratelimiter"
	"GopherStarter/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

type userKey string

const userCtxKey userKey = "user"

// AuthTokenMiddleware valida el Bearer token y deja el usuario en el
// contexto de la petición, pasando primero por la caché.
func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.unauthorizedErrorResponse(w, r)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			app.unauthorizedErrorResponse(w, r)
			return
		}

		token, err := app.authenticator.ValidateToken(parts[1])
		if err != nil || !token.Valid {
			app.unauthorizedErrorResponse(w, r)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			app.unauthorizedErrorResponse(w, r)
			return
		}

		userIDStr, err := claims.GetSubject()
		if err != nil {
			app.unauthorizedErrorResponse(w, r)
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			app.unauthorizedErrorResponse(w, r)
			return
		}

		user, err := app.getUser(r.Context(), userID)
		if err != nil {
			app.unauthorizedErrorResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getUser busca primero en la caché y solo va a la base de datos si hay
// un cache miss, guardando el resultado para la próxima vez.
func (app *application) getUser(ctx context.Context, userID int64) (*store.User, error) {
	user, err := app.cacheStorage.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user, err = app.store.Users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := app.cacheStorage.Users.Set(ctx, user); err != nil {
			app.logger.Warnw("no se pudo cachear el usuario", "user_id", userID, "error", err)
		}
	}

	return user, nil
}

func getUserFromContext(r *http.Request) (*store.User, bool) {
	user, ok := r.Context().Value(userCtxKey).(*store.User)
	return user, ok
}

// userIDFromRequest alimenta la clave por usuario del rate limiter.
func userIDFromRequest(r *http.Request) (string, bool) {
	user, ok := getUserFromContext(r)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(user.ID, 10), true
}

// skipForAdmins exime del rate limiting a los administradores.
func skipForAdmins(r *http.Request) bool {
	user, ok := getUserFromContext(r)
	return ok && user.Role.Name == "admin"
}

// rateLimit completa la Config con las piezas compartidas de la app (el
// store y el logger) y devuelve el middleware listo para montar.
func (app *application) rateLimit(cfg ratelimiter.Config) func(http.Handler) http.Handler {
	cfg.Store = app.rateStore
	cfg.Logger = app.logger
	return ratelimiter.Middleware(cfg)
}

// checkRoleLevel deja pasar solo a usuarios con un nivel de rol igual o
// superior al del rol indicado.
func (app *application) checkRoleLevel(roleName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := getUserFromContext(r)
			if !ok {
				app.unauthorizedErrorResponse(w, r)
				return
			}

			role, err := app.store.Roles.GetByName(r.Context(), roleName)
			if err != nil {
				app.internalServerError(w, r, err)
				return
			}

			if user.Role.Level < role.Level {
				app.forbiddenResponse(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// redactedHeaders es la lista fija de cabeceras que nunca se loguean.
var redactedHeaders = []string{"Authorization", "Cookie", "Set-Cookie"}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// RequestLoggerMiddleware loguea cada petición con un conjunto fijo de
// campos, redactando las cabeceras sensibles.
func (app *application) RequestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		headers := make(map[string]string, len(redactedHeaders))
		for _, h := range redactedHeaders {
			if r.Header.Get(h) != "" {
				headers[h] = "[REDACTED]"
			}
		}

		next.ServeHTTP(rec, r)

		app.logger.Infow("petición atendida",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
			"remote_addr", r.RemoteAddr,
			"headers", headers,
		)
	})
}
