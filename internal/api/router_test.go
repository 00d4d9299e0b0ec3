package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agromarket/marketplace-api/internal/core/service"
	"github.com/agromarket/marketplace-api/internal/infrastructure/db/memory"
	"github.com/agromarket/marketplace-api/internal/infrastructure/http/handlers"
	"github.com/agromarket/marketplace-api/internal/infrastructure/security"
)

type testAPI struct {
	t *testing.T
	e *echo.Echo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()

	hasher, err := security.NewHasher(security.AlgorithmBcrypt, 4)
	require.NoError(t, err)
	tokens := security.NewJWTService("test-secret", time.Minute, nil)

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Auth:       service.NewAuthService(store.Users(), hasher, tokens, log),
		Users:      service.NewUserService(store.Users(), hasher, nil, log),
		Products:   service.NewProductService(store.Products(), log),
		Health:     []handlers.Dependency{{Name: "memory", Ping: store.Ping}},
		Logger:     log,
		Registerer: reg,
		Gatherer:   reg,
	})
	return &testAPI{t: t, e: e}
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) register(name, email, role string) int64 {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/usuarios/", "",
		fmt.Sprintf(`{"nome":%q,"email":%q,"senha":"senha1234","tipo":%q}`, name, email, role))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		ID int64 `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.ID
}

func (a *testAPI) login(email string) string {
	a.t.Helper()
	form := url.Values{"username": {email}, "password": {"senha1234"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(a.t, "bearer", body.TokenType)
	return body.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_RegisterLoginMe(t *testing.T) {
	api := newTestAPI(t)
	id := api.register("Maria Silva", "Maria@Farm.com", "comprador")

	token := api.login("maria@farm.com")
	rec := api.do(http.MethodGet, "/usuarios/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	me := decode(t, rec)
	assert.Equal(t, float64(id), me["id"])
	assert.Equal(t, "maria@farm.com", me["email"])
	assert.Equal(t, "comprador", me["tipo"])
	assert.NotContains(t, me, "senha")

	rec = api.do(http.MethodPost, "/usuarios", "",
		`{"nome":"Outra Maria","email":"MARIA@farm.com","senha":"senha1234","tipo":"produtor"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email already registered", decode(t, rec)["error"])
}

func TestRouter_LoginFailures(t *testing.T) {
	api := newTestAPI(t)
	api.register("Maria Silva", "maria@farm.com", "comprador")

	rec := api.do(http.MethodPost, "/token", "", `{"username":"maria@farm.com","password":"wrong1234"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	rec = api.do(http.MethodPost, "/token", "", `{"username":"nobody@farm.com","password":"senha1234"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "incorrect email or password", decode(t, rec)["error"])
}

func TestRouter_Authentication(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/usuarios/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	rec = api.do(http.MethodGet, "/usuarios/me", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := security.NewJWTService("other-secret", time.Minute, nil)
	forged, err := other.Issue("maria@farm.com")
	require.NoError(t, err)
	rec = api.do(http.MethodGet, "/usuarios/me", forged, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ProductLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.register("Carlos Souza", "carlos@farm.com", "produtor")
	api.register("Ana Lima", "ana@farm.com", "produtor")
	api.register("Bruno Costa", "bruno@farm.com", "comprador")
	carlos := api.login("carlos@farm.com")
	ana := api.login("ana@farm.com")
	bruno := api.login("bruno@farm.com")

	payload := `{"nome":"Tomate","descricao":"Orgânico","preco":"7.90","quantidade":10,"categoria":"frutas","localizacao":"MG"}`

	rec := api.do(http.MethodPost, "/produtos/", bruno, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/produtos/", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/produtos/", carlos, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "7.90", created["preco"])
	path := fmt.Sprintf("/produtos/%d", int64(created["id"].(float64)))

	rec = api.do(http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPut, path, ana, `{"quantidade":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodPut, path, bruno, `{"quantidade":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodPut, "/produtos/999", bruno, `{"quantidade":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPut, path, carlos, `{"quantidade":4,"descricao":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)
	assert.Equal(t, float64(4), updated["quantidade"])
	assert.Nil(t, updated["descricao"])
	assert.Equal(t, "Tomate", updated["nome"])
	assert.Equal(t, "7.90", updated["preco"])
	assert.Equal(t, "MG", updated["localizacao"])

	rec = api.do(http.MethodPut, path, carlos, `{"nome":null}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(http.MethodGet, "/produtos/me", carlos, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nome":"Tomate"`)
	rec = api.do(http.MethodGet, "/produtos/me", ana, "")
	assert.JSONEq(t, `[]`, rec.Body.String())
	rec = api.do(http.MethodGet, "/produtos/me", bruno, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodDelete, path, ana, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodDelete, path, carlos, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ProductListPagination(t *testing.T) {
	api := newTestAPI(t)
	api.register("Carlos Souza", "carlos@farm.com", "produtor")
	carlos := api.login("carlos@farm.com")
	for i := range 3 {
		body := fmt.Sprintf(`{"nome":"Produto %d","preco":1,"quantidade":1,"categoria":"graos"}`, i)
		require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/produtos", carlos, body).Code)
	}

	rec := api.do(http.MethodGet, "/produtos/?skip=1&limit=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 1)
	assert.Equal(t, "Produto 1", page[0]["nome"])

	rec = api.do(http.MethodGet, "/produtos?limit=0", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_AdminUserManagement(t *testing.T) {
	api := newTestAPI(t)
	adminID := api.register("Admin Geral", "admin@agro.com", "admin")
	carlosID := api.register("Carlos Souza", "carlos@farm.com", "produtor")
	admin := api.login("admin@agro.com")
	carlos := api.login("carlos@farm.com")

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/produtos/", carlos,
		`{"nome":"Queijo","preco":"30","quantidade":2,"categoria":"laticinios"}`).Code)

	rec := api.do(http.MethodGet, "/usuarios/", carlos, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/usuarios/", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)

	rec = api.do(http.MethodDelete, fmt.Sprintf("/usuarios/%d", adminID), admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodDelete, fmt.Sprintf("/usuarios/%d", carlosID), carlos, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodDelete, fmt.Sprintf("/usuarios/%d", carlosID), admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "carlos@farm.com", decode(t, rec)["email"])

	rec = api.do(http.MethodDelete, "/usuarios/999", admin, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The deleted account's products go with it and its token stops working.
	rec = api.do(http.MethodGet, "/produtos/", "", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
	rec = api.do(http.MethodGet, "/usuarios/me", carlos, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API Marketplace Agro está funcionando!", decode(t, rec)["message"])

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health/ready", "", "").Code)

	rec = api.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "requests_total")

	rec = api.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
