package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pribylovaa/go-blog-client/internal/api"
)

// Обёртки над внешним auth-коллаборатором. Никакого внутреннего состояния:
// полученный токен кладёт в сессию вызывающая сторона.

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login — POST /auth/login; возвращает bearer-токен.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, call{
		endpoint: "login",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     loginBody{Email: email, Password: password},
		out:      &resp,
	}); err != nil {
		return "", err
	}

	if resp.Token == "" {
		return "", fmt.Errorf("login: empty token in response: %w", api.ErrInternal)
	}

	return resp.Token, nil
}

// Register — POST /auth/register.
func (c *Client) Register(ctx context.Context, in api.RegisterInput) error {
	return c.do(ctx, call{
		endpoint: "register",
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     registerBody{Username: in.Username, Email: in.Email, Password: in.Password},
	})
}
