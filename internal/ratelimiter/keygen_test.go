// internal/ratelimiter/keygen_test.go
package ratelimiter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIPKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "usa el primer salto de X-Forwarded-For",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1, 10.0.0.2"},
			want:    "ratelimit:1.2.3.4",
		},
		{
			name:    "recorta espacios del primer salto",
			headers: map[string]string{"X-Forwarded-For": "  1.2.3.4  "},
			want:    "ratelimit:1.2.3.4",
		},
		{
			name:    "cae a X-Real-IP si no hay forwarded-for",
			headers: map[string]string{"X-Real-IP": "5.6.7.8"},
			want:    "ratelimit:5.6.7.8",
		},
		{
			name: "X-Forwarded-For gana sobre X-Real-IP",
			headers: map[string]string{
				"X-Forwarded-For": "1.2.3.4",
				"X-Real-IP":       "5.6.7.8",
			},
			want: "ratelimit:1.2.3.4",
		},
		{
			name:    "sin cabeceras devuelve unknown",
			headers: nil,
			want:    "ratelimit:unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/health", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, IPKey(r))
		})
	}
}

func TestUserKey(t *testing.T) {
	fromHeader := func(r *http.Request) (string, bool) {
		id := r.Header.Get("X-Test-User")
		return id, id != ""
	}
	gen := UserKey(fromHeader, IPKey)

	r := httptest.NewRequest("GET", "/v1/users/me", nil)
	r.Header.Set("X-Test-User", "42")
	assert.Equal(t, "ratelimit:user:42", gen(r))

	// Sin usuario autenticado cae a la clave por IP.
	anon := httptest.NewRequest("GET", "/v1/users/me", nil)
	anon.Header.Set("X-Forwarded-For", "1.2.3.4")
	assert.Equal(t, "ratelimit:1.2.3.4", gen(anon))
}

func TestRouteKey(t *testing.T) {
	gen := RouteKey(IPKey)

	r := httptest.NewRequest("POST", "/v1/authentication/token", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	assert.Equal(t, "ratelimit:1.2.3.4:POST:/v1/authentication/token", gen(r))

	// La misma IP en otra ruta usa otra clave (presupuestos independientes).
	other := httptest.NewRequest("GET", "/v1/health", nil)
	other.Header.Set("X-Forwarded-For", "1.2.3.4")
	assert.NotEqual(t, gen(r), gen(other))
}
