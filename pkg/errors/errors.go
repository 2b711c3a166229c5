package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = errors.New("неверный метод подписи токена")
	ErrInvalidToken         = errors.New("недопустимый токен")
	ErrTokenExpired         = errors.New("срок действия токена истёк")
	ErrTokenIsNotAccess     = errors.New("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader   = errors.New("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = errors.New("неверный формат заголовка авторизации")
	ErrUnauthorized      = errors.New("неавторизован")

	// Контекст
	ErrUserIDNotFoundInContext = errors.New("UserID не найден в контексте запроса")

	// Учёт рабочего времени
	ErrDuplicateActiveSession = errors.New("у техника уже есть открытая сессия")
	ErrSessionNotFound        = errors.New("открытая сессия не найдена")
	ErrInvalidBreak           = errors.New("перерыв должен быть неотрицательным и кратным 15 минутам")
	ErrReferenceNotFound      = errors.New("заказ-наряд или техник не найден")
	ErrTechnicianInactive     = errors.New("техник неактивен")
	ErrSessionChanged         = errors.New("сессия изменена параллельным запросом, повторите")

	// Общие
	ErrNotFound       = errors.New("запись не найдена")
	ErrBadRequest     = errors.New("неверный запрос")
	ErrInternalServer = errors.New("внутренняя ошибка сервера")
)

// HttpError - ошибка с HTTP-кодом и сообщением для клиента.
// Err хранит исходную причину и попадает только в лог.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details ...interface{}) *HttpError {
	httpErr := &HttpError{Code: code, Message: message, Err: err}
	if len(details) > 0 {
		httpErr.Details = details[0]
	}
	return httpErr
}

var statusBySentinel = map[error]int{
	ErrDuplicateActiveSession:  http.StatusConflict,
	ErrSessionNotFound:         http.StatusNotFound,
	ErrNotFound:                http.StatusNotFound,
	ErrReferenceNotFound:       http.StatusUnprocessableEntity,
	ErrInvalidBreak:            http.StatusBadRequest,
	ErrTechnicianInactive:      http.StatusUnprocessableEntity,
	ErrSessionChanged:          http.StatusConflict,
	ErrBadRequest:              http.StatusBadRequest,
	ErrInvalidSigningMethod:    http.StatusUnauthorized,
	ErrInvalidToken:            http.StatusUnauthorized,
	ErrTokenExpired:            http.StatusUnauthorized,
	ErrTokenIsNotAccess:        http.StatusUnauthorized,
	ErrEmptyAuthHeader:         http.StatusUnauthorized,
	ErrInvalidAuthHeader:       http.StatusUnauthorized,
	ErrUnauthorized:            http.StatusUnauthorized,
	ErrUserIDNotFoundInContext: http.StatusUnauthorized,
}

// StatusFor возвращает HTTP-код для известной ошибки и false для прочих.
func StatusFor(err error) (int, bool) {
	for sentinel, code := range statusBySentinel {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return 0, false
}
