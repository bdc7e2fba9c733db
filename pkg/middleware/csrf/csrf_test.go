package csrf

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwthelp "github.com/Skotchmaster/food_delivery/pkg/jwt"
)

func run(t *testing.T, cfg Config, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := Middleware(cfg)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return rec, err
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func withSession(r *http.Request, token string) *http.Request {
	r.AddCookie(&http.Cookie{Name: jwthelp.AccessCookie, Value: "access"})
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	}
	return r
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec, err := run(t, Config{}, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.NoError(t, err)

	tok := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, tok)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "XSRF-TOKEN="+tok)
}

func TestUnsafeMethod(t *testing.T) {
	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{
			name: "anonymous passes",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/users", nil)
			},
		},
		{
			name: "bearer passes",
			req: func() *http.Request {
				r := withSession(httptest.NewRequest(http.MethodPost, "/api/cart/items", nil), "")
				r.Header.Set(echo.HeaderAuthorization, "Bearer abc")
				return r
			},
		},
		{
			name: "cookie session without header",
			req: func() *http.Request {
				return withSession(httptest.NewRequest(http.MethodPost, "/api/cart/items", nil), "tok")
			},
			status: http.StatusForbidden,
		},
		{
			name: "cookie session with wrong header",
			req: func() *http.Request {
				r := withSession(httptest.NewRequest(http.MethodPost, "/api/cart/items", nil), "tok")
				r.Header.Set("X-CSRF-Token", "other")
				return r
			},
			status: http.StatusForbidden,
		},
		{
			name: "cookie session with matching header",
			req: func() *http.Request {
				r := withSession(httptest.NewRequest(http.MethodDelete, "/api/cart", nil), "tok")
				r.Header.Set("X-CSRF-Token", "tok")
				return r
			},
		},
		{
			name: "foreign origin",
			req: func() *http.Request {
				r := withSession(httptest.NewRequest(http.MethodPost, "/api/cart/items", nil), "tok")
				r.Header.Set("X-CSRF-Token", "tok")
				r.Header.Set(echo.HeaderOrigin, "https://evil.example")
				return r
			},
			status: http.StatusForbidden,
		},
		{
			name: "trusted origin",
			req: func() *http.Request {
				r := withSession(httptest.NewRequest(http.MethodPost, "/api/cart/items", nil), "tok")
				r.Header.Set("X-CSRF-Token", "tok")
				r.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
				return r
			},
		},
		{
			name: "skipped path",
			req: func() *http.Request {
				return withSession(httptest.NewRequest(http.MethodPost, "/api/users/login", nil), "tok")
			},
		},
	}

	cfg := Config{
		TrustedOrigins: []string{"http://localhost:3000/"},
		SkipPaths:      []string{"/api/users/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := run(t, cfg, tt.req())
			if tt.status == 0 {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.Equal(t, tt.status, statusOf(err))
		})
	}
}
