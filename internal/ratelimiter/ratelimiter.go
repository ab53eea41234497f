// internal/ratelimiter/ratelimiter.go
package ratelimiter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultMessage es el cuerpo del 429 si no se configura otro.
const DefaultMessage = "límite de peticiones excedido, intenta de nuevo más tarde"

// Info describe la decisión que tomó el limitador para una petición.
// Es lo que recibe un Handler de rechazo personalizado.
type Info struct {
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Config contiene los ajustes del rate limiter. Todos los campos son
// opcionales: Middleware rellena los que falten con los valores por defecto
// (100 peticiones por minuto, clave por IP, store en memoria).
type Config struct {
	Limit           int
	Window          time.Duration
	KeyGenerator    KeyGenerator
	Message         string
	Handler         func(w http.ResponseWriter, r *http.Request, info Info)
	Skip            func(r *http.Request) bool
	Store           Store
	StandardHeaders bool
	LegacyHeaders   bool
	Logger          *zap.SugaredLogger
}

// DefaultConfig devuelve la configuración base: 100 peticiones por minuto
// con las cabeceras RateLimit-* estándar.
func DefaultConfig() Config {
	return Config{
		Limit:           100,
		Window:          time.Minute,
		StandardHeaders: true,
	}
}

// Presets por sensibilidad. Son pura configuración sobre el mismo evaluador.
func Strict() Config   { return preset(10) }   // credenciales, registro
func Moderate() Config { return preset(60) }   // API general
func Generous() Config { return preset(300) }  // lecturas autenticadas
func Public() Config   { return preset(1000) } // health, estáticos

func preset(limit int) Config {
	cfg := DefaultConfig()
	cfg.Limit = limit
	return cfg
}

// Middleware construye el middleware de rate limiting para la Config dada.
// Cada middleware tiene su propia referencia al store, así que pueden
// convivir varios limitadores configurados de forma independiente.
func Middleware(cfg Config) func(next http.Handler) http.Handler {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = IPKey
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				// Bypass total: sin cabeceras y sin tocar el store.
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := cfg.KeyGenerator(r)

			ent, err := cfg.Store.Get(ctx, key)
			if err != nil {
				// Fail-open: un contador roto no puede tumbar la API.
				cfg.Logger.Warnw("rate limiter: fallo al leer el store, se permite la petición", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			// La admisión se decide con la lectura PREVIA al incremento:
			// la ventana admite exactamente Limit peticiones y la
			// Limit+1-ésima es la que se rechaza.
			current := 0
			if ent != nil {
				current = ent.Count
			}

			if current == 0 {
				ent, err = cfg.Store.Set(ctx, key, 1, cfg.Window)
			} else {
				ent, err = cfg.Store.Increment(ctx, key)
			}
			if err != nil || ent == nil {
				cfg.Logger.Warnw("rate limiter: fallo al actualizar el store, se permite la petición", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := cfg.Limit - ent.Count
			if remaining < 0 {
				remaining = 0
			}

			if cfg.StandardHeaders {
				w.Header().Set("RateLimit-Limit", strconv.Itoa(cfg.Limit))
				w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
				w.Header().Set("RateLimit-Reset", strconv.FormatInt(ent.ResetAt.Unix(), 10))
			}
			if cfg.LegacyHeaders {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(ent.ResetAt.Unix(), 10))
			}

			if current >= cfg.Limit {
				retryAfter := time.Until(ent.ResetAt)
				if retryAfter < 0 {
					retryAfter = 0
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+0.999)))

				info := Info{
					Limit:      cfg.Limit,
					Remaining:  0,
					ResetAt:    ent.ResetAt,
					RetryAfter: retryAfter,
				}
				if cfg.Handler != nil {
					cfg.Handler(w, r, info)
					return
				}
				writeRejection(w, cfg.Message, info)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRejection(w http.ResponseWriter, message string, info Info) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]any{
		"error":     message,
		"limit":     info.Limit,
		"remaining": 0,
		"reset":     info.ResetAt.Unix(),
	})
}
