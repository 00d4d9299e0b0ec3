package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agromarket/marketplace-api/internal/core/domain"
)

func handleError(t *testing.T, method string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/produtos/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/produtos/:id")

	NewHTTPErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "incorrect email or password"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "could not validate credentials"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound, "product not found"},
		{"email taken", domain.ErrEmailTaken, http.StatusBadRequest, "email already registered"},
		{"self delete", domain.ErrSelfDelete, http.StatusBadRequest, "cannot delete your own account"},
		{"wrapped", fmt.Errorf("service: %w", domain.ErrForbidden), http.StatusForbidden, "access forbidden"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
		{"unexpected", errors.New("dial tcp 10.0.0.5:3306: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := handleError(t, http.MethodGet, tc.err)

			assert.Equal(t, tc.code, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body.Error)
			assert.Empty(t, body.Fields)
		})
	}
}

func TestHTTPErrorHandler_UnauthorizedSetsChallenge(t *testing.T) {
	rec := handleError(t, http.MethodGet, domain.ErrUnauthenticated)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	rec = handleError(t, http.MethodGet, domain.ErrForbidden)
	assert.Empty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	verr := domain.NewValidationError()
	verr.Add("preco", "must be a positive amount")
	verr.Add("nome", "is required")

	rec := handleError(t, http.MethodPost, verr)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t,
		`{"error":"validation failed","fields":{"preco":"must be a positive amount","nome":"is required"}}`,
		rec.Body.String())
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	rec := handleError(t, http.MethodHead, domain.ErrProductNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
