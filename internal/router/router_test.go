package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/phonebook/internal/config"
	"github.com/deppfellow/phonebook/internal/handler"
	"github.com/deppfellow/phonebook/internal/repository"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/deppfellow/phonebook/internal/service"
)

var columns = []string{"id", "name", "number", "created_at", "updated_at"}

type testApp struct {
	router *echo.Echo
	pool   pgxmock.PgxPoolIface
}

func newTestApp(t *testing.T, staticDir string) *testApp {
	t.Helper()

	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"*"},
				StaticDir:          staticDir,
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}

	services := &service.Services{
		Contacts: service.NewContactService(&logger, repository.NewContactRepository(pool), nil),
	}

	return &testApp{
		router: NewRouter(s, handler.NewHandlers(s, services)),
		pool:   pool,
	}
}

func (a *testApp) do(method, target, body string) *httptest.ResponseRecorder {
	return a.doWithType(method, target, body, echo.MIMEApplicationJSON)
}

func (a *testApp) doWithType(method, target, body, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, contentType)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func TestContactRoutes_List(t *testing.T) {
	app := newTestApp(t, "")
	now := time.Now()
	id := uuid.New()

	app.pool.ExpectQuery(`SELECT .* FROM contacts ORDER BY`).
		WillReturnRows(app.pool.NewRows(columns).AddRow(id, "Arto Hellas", "040-123456", now, now))

	rec := app.do(http.MethodGet, "/api/persons", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"`+id.String()+`","name":"Arto Hellas","number":"040-123456"}]`, rec.Body.String())
	assert.NoError(t, app.pool.ExpectationsWereMet())
}

func TestContactRoutes_ListEmptyIsArray(t *testing.T) {
	app := newTestApp(t, "")

	app.pool.ExpectQuery(`SELECT .* FROM contacts ORDER BY`).WillReturnRows(app.pool.NewRows(columns))

	rec := app.do(http.MethodGet, "/api/persons", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestContactRoutes_Get(t *testing.T) {
	id := uuid.New()
	now := time.Now()

	t.Run("Found", func(t *testing.T) {
		app := newTestApp(t, "")
		app.pool.ExpectQuery(`SELECT .* FROM contacts WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(app.pool.NewRows(columns).AddRow(id, "Arto Hellas", "040-123456", now, now))

		rec := app.do(http.MethodGet, "/api/persons/"+id.String(), "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"`+id.String()+`","name":"Arto Hellas","number":"040-123456"}`, rec.Body.String())
	})

	t.Run("MissingIsEmpty404", func(t *testing.T) {
		app := newTestApp(t, "")
		app.pool.ExpectQuery(`SELECT .* FROM contacts WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(app.pool.NewRows(columns))

		rec := app.do(http.MethodGet, "/api/persons/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("MalformedID", func(t *testing.T) {
		app := newTestApp(t, "")

		rec := app.do(http.MethodGet, "/api/persons/5c41c90e84d891c15dfa3431", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed ID", errorMessage(t, rec))
		assert.NoError(t, app.pool.ExpectationsWereMet())
	})
}

func TestContactRoutes_Create(t *testing.T) {
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		app := newTestApp(t, "")
		id := uuid.New()
		app.pool.ExpectQuery(`INSERT INTO contacts`).
			WithArgs("Ada Lovelace", "39-44-5323523").
			WillReturnRows(app.pool.NewRows(columns).AddRow(id, "Ada Lovelace", "39-44-5323523", now, now))

		rec := app.do(http.MethodPost, "/api/persons", `{"name":"Ada Lovelace","number":"39-44-5323523"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"`+id.String()+`","name":"Ada Lovelace","number":"39-44-5323523"}`, rec.Body.String())
		assert.NoError(t, app.pool.ExpectationsWereMet())
	})

	for name, body := range map[string]string{
		"missing number": `{"name":"Ada Lovelace"}`,
		"missing name":   `{"number":"39-44-5323523"}`,
		"empty name":     `{"name":"","number":"39-44-5323523"}`,
		"empty body":     `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			app := newTestApp(t, "")

			rec := app.do(http.MethodPost, "/api/persons", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Name and number required!", errorMessage(t, rec))
			assert.NoError(t, app.pool.ExpectationsWereMet())
		})
	}

	t.Run("TooShort", func(t *testing.T) {
		app := newTestApp(t, "")

		rec := app.do(http.MethodPost, "/api/persons", `{"name":"Al","number":"39-44-5323523"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Contact validation failed: Name must be at least 3 characters", errorMessage(t, rec))
		assert.NoError(t, app.pool.ExpectationsWereMet())
	})

	t.Run("StoreValidation", func(t *testing.T) {
		app := newTestApp(t, "")
		app.pool.ExpectQuery(`INSERT INTO contacts`).
			WithArgs("Ada Lovelace", "39-44-5323523").
			WillReturnError(&pgconn.PgError{Code: "23514", TableName: "contacts", ConstraintName: "contacts_number_check"})

		rec := app.do(http.MethodPost, "/api/persons", `{"name":"Ada Lovelace","number":"39-44-5323523"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Contact validation failed: Number does not meet required conditions", errorMessage(t, rec))
	})

	for name, body := range map[string]string{
		"truncated":  `{"name":`,
		"wrong type": `{"name":123,"number":"39-44-5323523"}`,
		"array":      `[]`,
	} {
		t.Run("UndecodableBody/"+name, func(t *testing.T) {
			app := newTestApp(t, "")

			rec := app.do(http.MethodPost, "/api/persons", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Name and number required!", errorMessage(t, rec))
			assert.NotContains(t, rec.Body.String(), "model.")
			assert.NoError(t, app.pool.ExpectationsWereMet())
		})
	}

	t.Run("NonJSONContentType", func(t *testing.T) {
		app := newTestApp(t, "")

		rec := app.doWithType(http.MethodPost, "/api/persons",
			`{"name":"Ada Lovelace","number":"39-44-5323523"}`, echo.MIMETextPlain)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Name and number required!", errorMessage(t, rec))
		assert.NoError(t, app.pool.ExpectationsWereMet())
	})

	t.Run("TrailingSlash", func(t *testing.T) {
		app := newTestApp(t, "")
		id := uuid.New()
		app.pool.ExpectQuery(`INSERT INTO contacts`).
			WithArgs("Ada Lovelace", "39-44-5323523").
			WillReturnRows(app.pool.NewRows(columns).AddRow(id, "Ada Lovelace", "39-44-5323523", now, now))

		rec := app.do(http.MethodPost, "/api/persons/", `{"name":"Ada Lovelace","number":"39-44-5323523"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, app.pool.ExpectationsWereMet())
	})
}

func TestContactRoutes_Update(t *testing.T) {
	id := uuid.New()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		app := newTestApp(t, "")
		app.pool.ExpectQuery(`UPDATE contacts`).
			WithArgs(id, "Arto Hellas", "040-654321").
			WillReturnRows(app.pool.NewRows(columns).AddRow(id, "Arto Hellas", "040-654321", now, now))

		rec := app.do(http.MethodPut, "/api/persons/"+id.String(), `{"id":"ignored","name":"Arto Hellas","number":"040-654321"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"`+id.String()+`","name":"Arto Hellas","number":"040-654321"}`, rec.Body.String())
	})

	t.Run("Missing", func(t *testing.T) {
		app := newTestApp(t, "")
		app.pool.ExpectQuery(`UPDATE contacts`).
			WithArgs(id, "Arto Hellas", "040-654321").
			WillReturnRows(app.pool.NewRows(columns))

		rec := app.do(http.MethodPut, "/api/persons/"+id.String(), `{"name":"Arto Hellas","number":"040-654321"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("MalformedIDBeforeFields", func(t *testing.T) {
		app := newTestApp(t, "")

		rec := app.do(http.MethodPut, "/api/persons/bogus", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed ID", errorMessage(t, rec))
	})

	t.Run("MalformedIDBeforeUndecodableBody", func(t *testing.T) {
		app := newTestApp(t, "")

		rec := app.doWithType(http.MethodPut, "/api/persons/bogus", `{"name":"Arto Hellas"}`, echo.MIMETextPlain)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed ID", errorMessage(t, rec))
	})

	t.Run("UndecodableBody", func(t *testing.T) {
		app := newTestApp(t, "")

		rec := app.do(http.MethodPut, "/api/persons/"+id.String(), `{"name":["Arto"],"number":"040-654321"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Name and number required!", errorMessage(t, rec))
		assert.NoError(t, app.pool.ExpectationsWereMet())
	})

	t.Run("MissingFields", func(t *testing.T) {
		app := newTestApp(t, "")

		rec := app.do(http.MethodPut, "/api/persons/"+id.String(), `{"name":"Arto Hellas"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Name and number required!", errorMessage(t, rec))
		assert.NoError(t, app.pool.ExpectationsWereMet())
	})
}

func TestContactRoutes_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("AlwaysNoContent", func(t *testing.T) {
		app := newTestApp(t, "")
		app.pool.ExpectExec(`DELETE FROM contacts WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		rec := app.do(http.MethodDelete, "/api/persons/"+id.String(), "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.NoError(t, app.pool.ExpectationsWereMet())
	})

	t.Run("MalformedID", func(t *testing.T) {
		app := newTestApp(t, "")

		rec := app.do(http.MethodDelete, "/api/persons/42", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed ID", errorMessage(t, rec))
	})
}

func TestContactRoutes_DeleteIsIdempotent(t *testing.T) {
	app := newTestApp(t, "")
	id := uuid.New()

	app.pool.ExpectExec(`DELETE FROM contacts WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	app.pool.ExpectExec(`DELETE FROM contacts WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	app.pool.ExpectQuery(`SELECT .* FROM contacts WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(app.pool.NewRows(columns))

	first := app.do(http.MethodDelete, "/api/persons/"+id.String(), "")
	second := app.do(http.MethodDelete, "/api/persons/"+id.String(), "")
	get := app.do(http.MethodGet, "/api/persons/"+id.String(), "")

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusNoContent, second.Code)
	assert.Equal(t, http.StatusNotFound, get.Code)
	assert.Empty(t, get.Body.String())
	assert.NoError(t, app.pool.ExpectationsWereMet())
}

func TestInfo(t *testing.T) {
	app := newTestApp(t, "")
	app.pool.ExpectQuery(`SELECT count\(\*\) FROM contacts`).
		WillReturnRows(app.pool.NewRows([]string{"count"}).AddRow(int64(2)))

	rec := app.do(http.MethodGet, "/info", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<p>Phonebook has info for 2 people</p><p>"))
}

func TestUnknownEndpoint(t *testing.T) {
	app := newTestApp(t, "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/notes"},
		{http.MethodPatch, "/api/persons"},
	} {
		rec := app.do(tc.method, tc.path, "")

		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
		assert.Equal(t, "Unknown endpoint", errorMessage(t, rec))
	}
}

func TestSystemRoutes(t *testing.T) {
	app := newTestApp(t, "")

	rec := app.do(http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/status/", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	rec = app.do(http.MethodGet, "/api/persons/1", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStaticBuildDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>phonebook</html>"), 0o644))

	app := newTestApp(t, dir)

	rec := app.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "phonebook")

	rec = app.do(http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Unknown endpoint", errorMessage(t, rec))
}
