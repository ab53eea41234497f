// cmd/api/errors.go
package main

import (
	"net/http"
	"strconv"

	"GopherStarter/internal/ratelimiter"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("error interno", "method", r.Method, "path", r.URL.Path, "error", err)
	app.writeJSONError(w, http.StatusInternalServerError, "el servidor encontró un problema")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeJSONError(w, http.StatusUnauthorized, "credenciales inválidas o token no autorizado")
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.writeJSONError(w, http.StatusNotFound, "el recurso solicitado no fue encontrado")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.writeJSONError(w, http.StatusForbidden, "no tienes permiso para realizar esta acción")
}

// rateLimitExceededResponse es el handler de rechazo del limitador global:
// responde con el sobre de error de la app en vez del cuerpo por defecto
// del paquete ratelimiter.
func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, info ratelimiter.Info) {
	app.logger.Infow("límite de peticiones excedido",
		"method", r.Method,
		"path", r.URL.Path,
		"retry_after", info.RetryAfter.String(),
	)
	message := "límite de peticiones excedido, reintenta en " + strconv.Itoa(int(info.RetryAfter.Seconds()+0.999)) + "s"
	app.writeJSONError(w, http.StatusTooManyRequests, message)
}
