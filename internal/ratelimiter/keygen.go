// internal/ratelimiter/keygen.go
package ratelimiter

import (
	"net/http"
	"strings"
)

// KeyGenerator decide bajo qué clave se cuenta cada petición.
type KeyGenerator func(r *http.Request) string

const keyPrefix = "ratelimit:"

// IPKey es el generador por defecto: toma el primer salto de
// X-Forwarded-For (el cliente original detrás del proxy), después
// X-Real-IP, y si no hay ninguno usa el literal "unknown".
func IPKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return keyPrefix + ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return keyPrefix + ip
	}

	return keyPrefix + "unknown"
}

// UserKey prefiere el identificador del usuario autenticado sobre la IP:
// userID lo extrae del contexto de la petición (quien arma el middleware
// sabe dónde lo dejó el guardián de auth). Si no hay usuario, cae al
// generador base.
func UserKey(userID func(r *http.Request) (string, bool), base KeyGenerator) KeyGenerator {
	if base == nil {
		base = IPKey
	}
	return func(r *http.Request) string {
		if id, ok := userID(r); ok && id != "" {
			return keyPrefix + "user:" + id
		}
		return base(r)
	}
}

// RouteKey añade un discriminador de ruta a la clave base, de modo que el
// mismo cliente tenga un presupuesto independiente por cada ruta.
func RouteKey(base KeyGenerator) KeyGenerator {
	if base == nil {
		base = IPKey
	}
	return func(r *http.Request) string {
		return base(r) + ":" + r.Method + ":" + r.URL.Path
	}
}
