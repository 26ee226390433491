package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pribylovaa/go-blog-client/internal/api"
	"github.com/pribylovaa/go-blog-client/internal/models"
)

// postBody — тело запросов создания/редактирования поста.
type postBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListPosts — GET /posts?search=&page=&limit=.
func (c *Client) ListPosts(ctx context.Context, p api.FeedParams) (*models.FeedPage, error) {
	q := url.Values{}
	q.Set("search", p.Search)
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))

	var page models.FeedPage
	if err := c.do(ctx, call{
		endpoint: "list_posts",
		method:   http.MethodGet,
		path:     "/posts",
		query:    q,
		out:      &page,
	}); err != nil {
		return nil, err
	}

	return &page, nil
}

// PostByID — GET /posts/:id.
func (c *Client) PostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, call{
		endpoint: "post_by_id",
		method:   http.MethodGet,
		path:     "/posts/" + url.PathEscape(id),
		out:      &post,
	}); err != nil {
		return nil, err
	}

	return &post, nil
}

// CreatePost — POST /posts.
func (c *Client) CreatePost(ctx context.Context, in api.CreatePostInput) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, call{
		endpoint: "create_post",
		method:   http.MethodPost,
		path:     "/posts",
		body:     postBody{Title: in.Title, Content: in.Content},
		out:      &post,
	}); err != nil {
		return nil, err
	}

	return &post, nil
}

// UpdatePost — PUT /posts/:id.
func (c *Client) UpdatePost(ctx context.Context, id string, in api.CreatePostInput) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, call{
		endpoint: "update_post",
		method:   http.MethodPut,
		path:     "/posts/" + url.PathEscape(id),
		body:     postBody{Title: in.Title, Content: in.Content},
		out:      &post,
	}); err != nil {
		return nil, err
	}

	return &post, nil
}

// DeletePost — DELETE /posts/:id.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, call{
		endpoint: "delete_post",
		method:   http.MethodDelete,
		path:     "/posts/" + url.PathEscape(id),
	})
}

// TogglePostLike — PUT /posts/:id/like. Тело ответа (ack) не читаем.
func (c *Client) TogglePostLike(ctx context.Context, id string) error {
	return c.do(ctx, call{
		endpoint: "toggle_post_like",
		method:   http.MethodPut,
		path:     fmt.Sprintf("/posts/%s/like", url.PathEscape(id)),
	})
}
