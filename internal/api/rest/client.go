// rest — HTTP-реализация контракта internal/api поверх JSON-эндпойнтов
// блог-сервера. Клиент сам не хранит состояние предметной области:
// токен берётся у внешнего TokenSource на каждый запрос.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-blog-client/internal/api"
	"github.com/pribylovaa/go-blog-client/pkg/log"
)

var _ api.API = (*Client)(nil)

// TokenSource отдаёт текущий bearer-токен сессии.
// Второе значение false — запрос уйдёт неаутентифицированным.
type TokenSource interface {
	Token() (string, bool)
}

// Options — параметры сборки клиента.
type Options struct {
	// BaseURL — корень API, например "https://blog.example.com/api".
	BaseURL string
	// Timeout — общий таймаут одного запроса; применяется, только если
	// у входящего ctx ещё нет дедлайна (существующий не переопределяется).
	Timeout time.Duration
	// UserAgent — значение заголовка User-Agent.
	UserAgent string
	// Tokens — источник bearer-токена; nil допустим (анонимный клиент).
	Tokens TokenSource
	// HTTPClient — переопределение транспорта (прежде всего для тестов).
	HTTPClient *http.Client
	// Metrics — необязательные prometheus-метрики исходящих вызовов.
	Metrics *Metrics
}

// Client реализует api.API поверх net/http.
type Client struct {
	base      *url.URL
	http      *http.Client
	tokens    TokenSource
	userAgent string
	timeout   time.Duration
	metrics   *Metrics
}

// New создаёт клиент. Ошибка — только при невалидном BaseURL.
func New(opts Options) (*Client, error) {
	const op = "api/rest/New"

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("%s: empty base url", op)
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported scheme %q", op, u.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "blog-client"
	}

	return &Client{
		base:      u,
		http:      hc,
		tokens:    opts.Tokens,
		userAgent: ua,
		timeout:   opts.Timeout,
		metrics:   opts.Metrics,
	}, nil
}

// call — параметры одного вызова для do.
// endpoint — логическое имя операции (метка метрик, не сырой путь).
type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
	out      any
}

// do выполняет один запрос: собирает URL и заголовки, сериализует тело,
// пишет одну итоговую запись в лог и инкрементирует метрики.
//
// Заголовки каждого запроса:
//   - X-Request-Id (uuid, новый на каждый вызов);
//   - Authorization: Bearer <token>, если TokenSource отдал токен;
//   - User-Agent, Accept, Content-Type (при наличии тела).
//
// Ответ со статусом >= 400 конвертируется в сентинел internal/api
// (см. errors.go); тело ошибки читается best-effort.
func (c *Client) do(ctx context.Context, cl call) error {
	const op = "api/rest/do"

	start := time.Now()

	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + cl.path
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var reqBody io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: marshal body: %w", op, err)
		}

		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	rid := uuid.NewString()
	req.Header.Set("X-Request-Id", rid)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	lg := log.From(ctx).With(
		slog.String("request_id", rid),
		slog.String("method", cl.method),
		slog.String("endpoint", cl.endpoint),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(cl, start, outcomeTransport)
		lg.Error("api", slog.String("err", err.Error()), slog.Duration("dur", time.Since(start)))

		return transportError(cl.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	lg = lg.With(slog.Int("status", resp.StatusCode))

	if resp.StatusCode >= 400 {
		c.observe(cl, start, outcomeError)

		apiErr := statusError(cl.endpoint, resp)
		lg.Warn("api", slog.Duration("dur", time.Since(start)))

		return apiErr
	}

	if cl.out != nil {
		if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
			c.observe(cl, start, outcomeError)
			lg.Error("api", slog.String("err", err.Error()), slog.Duration("dur", time.Since(start)))

			return fmt.Errorf("%s %s: decode response: %w", cl.method, cl.endpoint, errDecode(err))
		}
	}

	c.observe(cl, start, outcomeOK)
	lg.Info("api", slog.Duration("dur", time.Since(start)))

	return nil
}

func (c *Client) observe(cl call, start time.Time, outcome string) {
	if c.metrics == nil {
		return
	}

	c.metrics.record(cl.method, cl.endpoint, outcome, time.Since(start))
}

// errDecode — усечённый/битый JSON успешного ответа считаем внутренней
// ошибкой апстрима, а не локальной: данных в снапшот не попало.
func errDecode(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return errInternalWith(err)
}
