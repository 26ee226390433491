package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pribylovaa/go-blog-client/internal/models"
)

// textBody — тело создания комментария/ответа.
type textBody struct {
	Text string `json:"text"`
}

// ListComments — GET /comments/:postId.
// Каждый комментарий приходит со своими replies и likes целиком.
func (c *Client) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.do(ctx, call{
		endpoint: "list_comments",
		method:   http.MethodGet,
		path:     "/comments/" + url.PathEscape(postID),
		out:      &comments,
	}); err != nil {
		return nil, err
	}

	return comments, nil
}

// CreateComment — POST /comments/:postId.
func (c *Client) CreateComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	var comment models.Comment
	if err := c.do(ctx, call{
		endpoint: "create_comment",
		method:   http.MethodPost,
		path:     "/comments/" + url.PathEscape(postID),
		body:     textBody{Text: text},
		out:      &comment,
	}); err != nil {
		return nil, err
	}

	return &comment, nil
}

// CreateReply — POST /comments/reply/:commentId.
func (c *Client) CreateReply(ctx context.Context, commentID, text string) (*models.Reply, error) {
	var reply models.Reply
	if err := c.do(ctx, call{
		endpoint: "create_reply",
		method:   http.MethodPost,
		path:     "/comments/reply/" + url.PathEscape(commentID),
		body:     textBody{Text: text},
		out:      &reply,
	}); err != nil {
		return nil, err
	}

	return &reply, nil
}

// ToggleCommentLike — PUT /comments/like/:commentId.
func (c *Client) ToggleCommentLike(ctx context.Context, commentID string) error {
	return c.do(ctx, call{
		endpoint: "toggle_comment_like",
		method:   http.MethodPut,
		path:     "/comments/like/" + url.PathEscape(commentID),
	})
}

// DeleteComment — DELETE /comments/:commentId.
// Каскад на ответы выполняет сервер.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	return c.do(ctx, call{
		endpoint: "delete_comment",
		method:   http.MethodDelete,
		path:     "/comments/" + url.PathEscape(commentID),
	})
}

// DeleteReply — DELETE /comments/:commentId/reply/:replyId.
func (c *Client) DeleteReply(ctx context.Context, commentID, replyID string) error {
	return c.do(ctx, call{
		endpoint: "delete_reply",
		method:   http.MethodDelete,
		path: fmt.Sprintf("/comments/%s/reply/%s",
			url.PathEscape(commentID), url.PathEscape(replyID)),
	})
}
