package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pribylovaa/go-blog-client/internal/api"
	"github.com/pribylovaa/go-blog-client/internal/models"
	"github.com/pribylovaa/go-blog-client/internal/session"
	"github.com/pribylovaa/go-blog-client/pkg/log"
)

// PostManager — карточка одного поста: содержимое, лайк, owner-бейдж,
// редактирование и удаление. Лайк поста идёт через тот же LikeToggler,
// что и лайки комментариев, и так же сверяется перечиткой поста.
type PostManager struct {
	client   api.API
	identity session.Identity
	likes    *LikeToggler
	postID   string

	mu   sync.Mutex
	post *models.Post
	gen  uint64
}

// NewPostManager создаёт карточку для поста postID.
func NewPostManager(client api.API, identity session.Identity, postID string) *PostManager {
	m := &PostManager{
		client:   client,
		identity: identity,
		postID:   postID,
	}
	m.likes = NewLikeToggler(client.TogglePostLike)

	return m
}

// Load заменяет локальную копию поста серверной.
func (m *PostManager) Load(ctx context.Context) error {
	const op = "service/posts/Load"

	m.mu.Lock()
	m.gen++
	my := m.gen
	m.mu.Unlock()

	post, err := m.client.PostByID(ctx, m.postID)
	if err != nil {
		log.From(ctx).Warn("post load failed", "op", op, "post_id", m.postID, "err", err)

		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if my == m.gen {
		m.post = post
	}

	return nil
}

// Post — копия текущей карточки (nil до первого успешного Load).
func (m *PostManager) Post() *models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.post == nil {
		return nil
	}

	out := *m.post
	out.Likes = append([]string(nil), m.post.Likes...)

	return &out
}

// ToggleLike — оптимистичный лайк поста со сверкой перечиткой карточки.
func (m *PostManager) ToggleLike(ctx context.Context) error {
	const op = "service/posts/ToggleLike"

	userID, ok := m.identity.CurrentUserID()
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNoIdentity)
	}

	m.mu.Lock()
	loaded := m.post != nil
	m.mu.Unlock()

	if !loaded {
		return fmt.Errorf("%s: post not loaded: %w", op, ErrInvalidArgument)
	}

	target := &postLikeTarget{m: m, userID: userID}
	if err := m.likes.Toggle(ctx, target); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return m.Load(ctx)
}

// IsOwner — принадлежит ли пост текущей идентичности.
func (m *PostManager) IsOwner() bool {
	userID, ok := m.identity.CurrentUserID()
	if !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.post != nil && m.post.Author.ID == userID
}

// Update заменяет title/content поста. Только для автора; пустые поля
// отклоняются локально.
func (m *PostManager) Update(ctx context.Context, title, content string) error {
	const op = "service/posts/Update"

	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyContent)
	}

	if !m.IsOwner() {
		if _, ok := m.identity.CurrentUserID(); !ok {
			return fmt.Errorf("%s: %w", op, ErrNoIdentity)
		}

		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if _, err := m.client.UpdatePost(ctx, m.postID, api.CreatePostInput{
		Title:   title,
		Content: content,
	}); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	return m.Load(ctx)
}

// Delete удаляет пост. Только для автора; проверка локальная, до запроса.
func (m *PostManager) Delete(ctx context.Context) error {
	const op = "service/posts/Delete"

	if !m.IsOwner() {
		if _, ok := m.identity.CurrentUserID(); !ok {
			return fmt.Errorf("%s: %w", op, ErrNoIdentity)
		}

		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if err := m.client.DeletePost(ctx, m.postID); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	return nil
}

// CreatePost — публикация нового поста. Пустые title/content отклоняются
// локально, без запроса.
func CreatePost(ctx context.Context, client api.API, title, content string) (*models.Post, error) {
	const op = "service/posts/CreatePost"

	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyContent)
	}

	post, err := client.CreatePost(ctx, api.CreatePostInput{Title: title, Content: content})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	return post, nil
}

// postLikeTarget — Likable поверх живой карточки поста.
type postLikeTarget struct {
	m      *PostManager
	userID string
}

func (t *postLikeTarget) LikeID() string { return t.m.postID }

func (t *postLikeTarget) Liked() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	return t.m.post != nil && t.m.post.LikedBy(t.userID)
}

func (t *postLikeTarget) LikeCount() int {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.m.post == nil {
		return 0
	}

	return t.m.post.LikeCount()
}

func (t *postLikeTarget) ApplyLike(liked bool, _ int) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.m.post == nil {
		return
	}

	t.m.post.Likes = applyMembership(t.m.post.Likes, t.userID, liked)
}
