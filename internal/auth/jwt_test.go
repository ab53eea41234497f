// internal/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func testClaims(iss string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "42",
		Issuer:    iss,
		Audience:  jwt.ClaimStrings{iss},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func TestJWTAuthenticator_GenerateAndValidate(t *testing.T) {
	a := NewJWTAuthenticator("secreto-de-prueba", "gopherstarter", "gopherstarter")

	tokenStr, err := a.GenerateToken(testClaims("gopherstarter"))
	assert.Nil(t, err)
	assert.NotEmpty(t, tokenStr)

	token, err := a.ValidateToken(tokenStr)
	assert.Nil(t, err)
	assert.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	sub, err := claims.GetSubject()
	assert.Nil(t, err)
	assert.Equal(t, "42", sub)
}

func TestJWTAuthenticator_RejectsWrongSecret(t *testing.T) {
	a := NewJWTAuthenticator("secreto-bueno", "gopherstarter", "gopherstarter")
	b := NewJWTAuthenticator("secreto-malo", "gopherstarter", "gopherstarter")

	tokenStr, err := a.GenerateToken(testClaims("gopherstarter"))
	assert.Nil(t, err)

	_, err = b.ValidateToken(tokenStr)
	assert.NotNil(t, err)
}

func TestJWTAuthenticator_RejectsWrongIssuer(t *testing.T) {
	a := NewJWTAuthenticator("secreto-de-prueba", "gopherstarter", "gopherstarter")

	tokenStr, err := a.GenerateToken(testClaims("otro-emisor"))
	assert.Nil(t, err)

	_, err = a.ValidateToken(tokenStr)
	assert.NotNil(t, err)
}

func TestJWTAuthenticator_RejectsExpiredToken(t *testing.T) {
	a := NewJWTAuthenticator("secreto-de-prueba", "gopherstarter", "gopherstarter")

	claims := testClaims("gopherstarter")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tokenStr, err := a.GenerateToken(claims)
	assert.Nil(t, err)

	_, err = a.ValidateToken(tokenStr)
	assert.NotNil(t, err)
}
