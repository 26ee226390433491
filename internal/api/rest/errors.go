package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pribylovaa/go-blog-client/internal/api"
)

// errorBody — формат тела ошибки апстрима: {"error": {"code", "message"}}.
// Сервер может отдавать и плоский {"message": ...} — читаем оба best-effort.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// statusError конвертирует HTTP-статус >= 400 в сентинел пакета api.
//
// Маппинг (обратная сторона таблицы шлюза):
//   - 400, 422        -> ErrInvalidArgument
//   - 401             -> ErrUnauthenticated
//   - 403             -> ErrPermissionDenied
//   - 404             -> ErrNotFound
//   - 409, 412        -> ErrConflict
//   - 408, 429,
//     502, 503, 504   -> ErrUnavailable
//   - прочее          -> ErrInternal
func statusError(endpoint string, resp *http.Response) error {
	msg := readErrorMessage(resp.Body)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel = api.ErrInvalidArgument
	case http.StatusUnauthorized:
		sentinel = api.ErrUnauthenticated
	case http.StatusForbidden:
		sentinel = api.ErrPermissionDenied
	case http.StatusNotFound:
		sentinel = api.ErrNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		sentinel = api.ErrConflict
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		sentinel = api.ErrUnavailable
	default:
		sentinel = api.ErrInternal
	}

	if msg == "" {
		return fmt.Errorf("%s: http %d: %w", endpoint, resp.StatusCode, sentinel)
	}

	return fmt.Errorf("%s: http %d: %s: %w", endpoint, resp.StatusCode, msg, sentinel)
}

// transportError — ошибки до получения ответа: сеть, DNS, отмена, дедлайн.
func transportError(endpoint string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", endpoint, context.Canceled)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", endpoint, api.ErrUnavailable, context.DeadlineExceeded)
	}

	return fmt.Errorf("%s: %v: %w", endpoint, err, api.ErrUnavailable)
}

func errInternalWith(err error) error {
	return fmt.Errorf("%v: %w", err, api.ErrInternal)
}

// readErrorMessage вытаскивает человекочитаемое сообщение из тела ошибки.
// Любая проблема чтения/парсинга — пустая строка, не ошибка.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	if body.Error.Message != "" {
		return body.Error.Message
	}

	return body.Message
}
