// cmd/api/auth.go
package main

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"GopherStarter/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type RegisterUserPayload struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := app.readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &store.User{
		Username: payload.Username,
		Email:    payload.Email,
	}

	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// El token de activación viaja en claro por correo; en la base de
	// datos solo guardamos su hash.
	plainToken := uuid.New().String()
	hash := sha256.Sum256([]byte(plainToken))

	err := app.store.Users.CreateAndInvite(r.Context(), user, hash[:], time.Hour*72)
	if err != nil {
		switch err {
		case store.ErrDuplicateEmail, store.ErrDuplicateUsername:
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// El correo sale en segundo plano: el usuario recibe su respuesta ya.
	go func() {
		activationURL := fmt.Sprintf("%s/v1/users/activate/%s", app.config.frontendURL, plainToken)
		data := map[string]string{
			"ActivationURL": activationURL,
			"Username":      user.Username,
		}

		if _, err := app.mailer.Send("user_invitation.tmpl", user.Username, user.Email, data); err != nil {
			app.logger.Errorw("no se pudo enviar el correo de bienvenida", "email", user.Email, "error", err)
		}
	}()

	app.jsonResponse(w, http.StatusCreated, user)
}

type CreateUserTokenPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserTokenPayload
	if err := app.readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		app.unauthorizedErrorResponse(w, r)
		return
	}

	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r)
		return
	}

	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		Issuer:    app.config.auth.iss,
		Audience:  jwt.ClaimStrings{app.config.auth.iss},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(app.config.auth.exp)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token, err := app.authenticator.GenerateToken(claims)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]string{"token": token})
}

// activateUserHandler consume el token que llegó en el enlace del correo.
func (app *application) activateUserHandler(w http.ResponseWriter, r *http.Request) {
	plainToken := chi.URLParam(r, "token")

	hash := sha256.Sum256([]byte(plainToken))

	err := app.store.Users.Activate(r.Context(), hash[:])
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "cuenta activada exitosamente"})
}
