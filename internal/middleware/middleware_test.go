package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/phonebook/internal/config"
	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/server"
)

func newTestServer(buf *bytes.Buffer) *server.Server {
	logger := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server:  config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
		},
		Logger: &logger,
	}
}

func serveError(t *testing.T, method string, err error) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	global := NewGlobalMiddlewares(newTestServer(&buf))

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(method, "/api/persons/1", nil), rec)
	global.GlobalErrorHandler(err, c)
	return rec
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "malformed id",
			err:        errs.NewMalformedIDError(),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Malformed ID"}`,
		},
		{
			name:       "missing contact has empty body",
			err:        errs.NewNotFoundError("", nil),
			wantStatus: http.StatusNotFound,
			wantBody:   "",
		},
		{
			name:       "no route",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Unknown endpoint"}`,
		},
		{
			name:       "method not allowed",
			err:        echo.ErrMethodNotAllowed,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Unknown endpoint"}`,
		},
		{
			name:       "other echo error keeps its status",
			err:        echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too big"),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   `{"error":"too big"}`,
		},
		{
			name:       "unclassified error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name:       "raw no rows",
			err:        pgx.ErrNoRows,
			wantStatus: http.StatusNotFound,
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveError(t, http.MethodGet, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody == "" {
				assert.Empty(t, rec.Body.String())
			} else {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestGlobalErrorHandler_FieldErrors(t *testing.T) {
	rec := serveError(t, http.MethodPost, errs.NewBadRequestError(errs.MessageFieldsRequired, nil, []errs.FieldError{
		{Field: "name", Error: "is required"},
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Name and number required!","errors":[{"field":"name","error":"is required"}]}`, rec.Body.String())
}

func TestGlobalErrorHandler_HeadHasNoBody(t *testing.T) {
	rec := serveError(t, http.MethodHead, errs.NewMalformedIDError())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("Generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, rec.Body.String())
		assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Body.String())
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("Replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Len(t, rec.Body.String(), 36)
	})
}

func TestAcceptableRequestID(t *testing.T) {
	assert.True(t, acceptableRequestID("abc-123"))
	assert.False(t, acceptableRequestID(""))
	assert.False(t, acceptableRequestID("has space"))
	assert.False(t, acceptableRequestID("line\nbreak"))
	assert.False(t, acceptableRequestID(strings.Repeat("a", maxRequestIDLength+1)))
}

func TestEnhanceContext(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(&buf)

	e := echo.New()
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	e.GET("/api/persons/:id", func(c echo.Context) error {
		GetLogger(c).Info().Msg("from echo")
		LoggerFromContext(c.Request().Context()).Info().Msg("from context")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/persons/42", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	e.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, `"request_id":"req-1"`)
		assert.Contains(t, line, `"path":"/api/persons/:id"`)
	}
}

func TestBodyDump_LogsPostBodies(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(&buf)
	global := NewGlobalMiddlewares(s)

	e := echo.New()
	e.Use(NewContextEnhancer(s).EnhanceContext(), global.BodyDump())
	e.POST("/api/persons", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/api/persons", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/persons", nil))
	assert.Empty(t, buf.String())

	req := httptest.NewRequest(http.MethodPost, "/api/persons", strings.NewReader(`{"name":"Ada"}`))
	e.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), `"body":{"name":"Ada"}`)
}

func TestJSONOrQuoted(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(jsonOrQuoted([]byte(`{"a":1}`))))
	assert.Equal(t, `"name=Ada"`, string(jsonOrQuoted([]byte(`name=Ada`))))
	assert.Equal(t, `null`, string(jsonOrQuoted(nil)))
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := NewMetricsMiddleware()

	e := echo.New()
	e.Use(metrics.Middleware())
	e.GET("/api/persons/:id", func(c echo.Context) error {
		return errs.NewMalformedIDError()
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/persons/bad", nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/persons/:id",status_code="400"} 1`)
	assert.Contains(t, rec.Body.String(), "http_request_duration_seconds")
}
