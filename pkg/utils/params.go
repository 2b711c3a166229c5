package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "fleet-system/pkg/errors"
)

func ParseIDParam(ctx echo.Context, name string) (uint64, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID", err, map[string]interface{}{"param": raw})
	}
	return id, nil
}

func ParseUUIDParam(ctx echo.Context, name string) (uuid.UUID, error) {
	raw := ctx.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID сессии", err, map[string]interface{}{"param": raw})
	}
	return id, nil
}

// ParseUint64Query возвращает nil, если параметр не передан.
func ParseUint64Query(ctx echo.Context, name string) (*uint64, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверное значение параметра "+name, err)
	}
	return &v, nil
}

// ParseTimeQuery принимает RFC3339; nil, если параметр не передан.
func ParseTimeQuery(ctx echo.Context, name string) (*time.Time, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Дата "+name+" должна быть в формате RFC3339", err)
	}
	return &t, nil
}
