package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/food_delivery/pkg/jwt"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Refresher rotates a refresh token into a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret []byte
	Refresher Refresher
}

func NewAutoRefreshMiddleware(secret []byte, r Refresher) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{JWTSecret: secret, Refresher: r}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil, true)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	}, true)
}

// OptionalAuth sets the user context when valid credentials are present and
// otherwise lets the request through anonymously.
func (m *AutoRefreshMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil, false)
}

func accessToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if ck, err := c.Cookie(jwthelp.AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc, required bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		deny := func(err *echo.HTTPError) error {
			if !required {
				return next(c)
			}
			return err
		}

		raw := accessToken(c)
		var refreshRaw string
		if ck, err := c.Cookie(jwthelp.RefreshCookie); err == nil {
			refreshRaw = ck.Value
		}
		if raw == "" && refreshRaw == "" {
			return deny(echo.NewHTTPError(http.StatusUnauthorized, "missing access token"))
		}

		var claims *tokens.AccessClaims
		var err error
		if raw != "" {
			claims, err = tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		} else {
			err = jwt.ErrTokenExpired
		}

		if err != nil {
			if !errors.Is(err, jwt.ErrTokenExpired) {
				clearAuthCookies(c)
				l.Warn("auth_error", "status", 401, "reason", "invalid access token", "error", err)
				return deny(echo.NewHTTPError(http.StatusUnauthorized, "invalid access token"))
			}
			if refreshRaw == "" || m.Refresher == nil {
				clearAuthCookies(c)
				return deny(echo.NewHTTPError(http.StatusUnauthorized, "access token expired"))
			}

			pair, rErr := m.Refresher.Refresh(c.Request().Context(), refreshRaw)
			if rErr != nil {
				clearAuthCookies(c)
				l.Warn("auth_error", "status", 401, "reason", "refresh failed", "error", rErr)
				return deny(echo.NewHTTPError(http.StatusUnauthorized, "refresh failed"))
			}
			SetAuthCookies(c, pair)

			claims, err = tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
			if err != nil {
				clearAuthCookies(c)
				return deny(echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid"))
			}
			l.Info("tokens_refreshed", "user_id", claims.Subject)
		}

		if validator != nil {
			if vErr := validator(claims); vErr != nil {
				return vErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func SetAuthCookies(c echo.Context, p *tokens.Pair) {
	c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, p.AccessToken, "/", p.AccessExp))
	c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookie, p.RefreshToken, "/", p.RefreshExp))
}

func ClearAuthCookies(c echo.Context) { clearAuthCookies(c) }

func clearAuthCookies(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(ctxUserID, claims.Subject)
	c.Set(ctxRole, claims.Role)
}

// UserID returns the authenticated account id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

func Role(c echo.Context) string {
	s, _ := c.Get(ctxRole).(string)
	return s
}

func IsAdmin(c echo.Context) bool { return Role(c) == RoleAdmin }
