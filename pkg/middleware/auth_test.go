package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleet-system/pkg/service"
)

func newAuthEcho(t *testing.T, jwtSvc service.JWTService) *echo.Echo {
	t.Helper()
	e := echo.New()
	m := NewAuthMiddleware(jwtSvc, zap.NewNop())
	e.GET("/me", func(c echo.Context) error {
		userID, err := UserIDFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]uint64{"user_id": userID})
	}, m.Auth)
	return e
}

func TestAuth(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Minute, time.Hour)
	access, refresh, err := jwtSvc.GenerateTokens(7)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"без заголовка", "", http.StatusUnauthorized},
		{"неверный формат", "Token " + access, http.StatusUnauthorized},
		{"мусор вместо токена", "Bearer abc", http.StatusUnauthorized},
		{"refresh токен", "Bearer " + refresh, http.StatusUnauthorized},
		{"access токен", "Bearer " + access, http.StatusOK},
	}

	e := newAuthEcho(t, jwtSvc)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.JSONEq(t, `{"user_id":7}`, rec.Body.String())
			}
		})
	}
}
