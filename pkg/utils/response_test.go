package utils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	apperrors "fleet-system/pkg/errors"
)

func TestErrorResponse_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"дубликат сессии", apperrors.ErrDuplicateActiveSession, http.StatusConflict},
		{"сессия изменена параллельно", apperrors.ErrSessionChanged, http.StatusConflict},
		{"неактивный техник", apperrors.ErrTechnicianInactive, http.StatusUnprocessableEntity},
		{"обёрнутая ошибка", fmt.Errorf("stop: %w", apperrors.ErrSessionNotFound), http.StatusNotFound},
		{"неверный перерыв", apperrors.ErrInvalidBreak, http.StatusBadRequest},
		{"нет ссылки", apperrors.ErrReferenceNotFound, http.StatusUnprocessableEntity},
		{"HttpError", apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID", nil), http.StatusBadRequest},
		{"echo bind", echo.NewHTTPError(http.StatusUnsupportedMediaType, "bad content type"), http.StatusUnsupportedMediaType},
		{"прочее", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			assert.NoError(t, ErrorResponse(c, tt.err, zap.NewNop()))
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"status":false`)
		})
	}
}

func TestParsePaginationParams(t *testing.T) {
	limit, offset, page := ParsePaginationParams(map[string][]string{"limit": {"20"}, "page": {"3"}})
	assert.Equal(t, uint64(20), limit)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, uint64(3), page)

	limit, offset, page = ParsePaginationParams(map[string][]string{"limit": {"10000"}, "offset": {"1000"}})
	assert.Equal(t, uint64(MaxLimit), limit)
	assert.Equal(t, uint64(1000), offset)
	assert.Equal(t, uint64(3), page)

	limit, offset, page = ParsePaginationParams(nil)
	assert.Equal(t, uint64(DefaultLimit), limit)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(1), page)
}
