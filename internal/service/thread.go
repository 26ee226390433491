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

// ThreadManager владеет деревом комментариев и ответов ровно одного поста.
//
// Источник истины — сервер: LoadThread заменяет локальное дерево целиком,
// частичных слияний нет. Каждая мутация (комментарий, ответ, лайк, удаление)
// завершается перечиткой дерева — так локальное состояние получает
// канонические id, серверные таймстемпы и актуальные счётчики.
//
// Видимость (развёрнутость ответов, показ панели комментариев) — сугубо
// локальное UI-состояние: на сервер не ходит и при перечитке сохраняется.
type ThreadManager struct {
	client   api.API
	identity session.Identity
	likes    *LikeToggler
	postID   string

	mu          sync.Mutex
	comments    []models.Comment
	showPanel   bool
	showReplies map[string]bool
	gen         uint64
}

// NewThreadManager создаёт менеджер дерева для поста postID.
// Панель комментариев по умолчанию открыта, ответы свёрнуты.
func NewThreadManager(client api.API, identity session.Identity, postID string) *ThreadManager {
	m := &ThreadManager{
		client:      client,
		identity:    identity,
		postID:      postID,
		showPanel:   true,
		showReplies: make(map[string]bool),
	}
	m.likes = NewLikeToggler(client.ToggleCommentLike)

	return m
}

// PostID — идентификатор поста, которым владеет менеджер.
func (m *ThreadManager) PostID() string { return m.postID }

// LoadThread заменяет локальное дерево текущим серверным списком.
// Опоздавший ответ не затирает результат более новой перечитки.
func (m *ThreadManager) LoadThread(ctx context.Context) error {
	const op = "service/thread/LoadThread"

	m.mu.Lock()
	m.gen++
	my := m.gen
	m.mu.Unlock()

	comments, err := m.client.ListComments(ctx, m.postID)
	if err != nil {
		log.From(ctx).Warn("thread load failed", "op", op, "post_id", m.postID, "err", err)

		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if my != m.gen {
		return nil
	}

	m.comments = comments

	return nil
}

// Comments — копия текущего дерева (в серверном порядке).
func (m *ThreadManager) Comments() []models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Comment, len(m.comments))
	copy(out, m.comments)

	return out
}

// PostComment создаёт корневой комментарий от текущей идентичности.
// Пустой (после TrimSpace) текст отклоняется локально, без запроса;
// буфер ввода остаётся у вызывающей стороны — при ошибке текст не теряется.
func (m *ThreadManager) PostComment(ctx context.Context, text string) error {
	const op = "service/thread/PostComment"

	lg := log.From(ctx).With("op", op, "post_id", m.postID)

	if strings.TrimSpace(text) == "" {
		lg.Warn("empty comment rejected")

		return fmt.Errorf("%s: %w", op, ErrEmptyContent)
	}

	if _, err := m.client.CreateComment(ctx, m.postID, text); err != nil {
		lg.Warn("comment create failed", "err", err)

		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	// Каноническое состояние (id, таймстемп) берём перечиткой.
	return m.LoadThread(ctx)
}

// PostReply создаёт ответ под комментарием commentID.
func (m *ThreadManager) PostReply(ctx context.Context, commentID, text string) error {
	const op = "service/thread/PostReply"

	lg := log.From(ctx).With("op", op, "comment_id", commentID)

	if strings.TrimSpace(text) == "" {
		lg.Warn("empty reply rejected")

		return fmt.Errorf("%s: %w", op, ErrEmptyContent)
	}

	if _, err := m.client.CreateReply(ctx, commentID, text); err != nil {
		lg.Warn("reply create failed", "err", err)

		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	return m.LoadThread(ctx)
}

// ToggleCommentLike — оптимистичное переключение лайка на комментарии
// с последующей сверкой всего дерева.
func (m *ThreadManager) ToggleCommentLike(ctx context.Context, commentID string) error {
	const op = "service/thread/ToggleCommentLike"

	userID, ok := m.identity.CurrentUserID()
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNoIdentity)
	}

	if !m.hasComment(commentID) {
		return fmt.Errorf("%s: comment %s: %w", op, commentID, ErrInvalidArgument)
	}

	target := &commentLikeTarget{m: m, commentID: commentID, userID: userID}
	if err := m.likes.Toggle(ctx, target); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Авторитетные счётчики — перечиткой дерева.
	return m.LoadThread(ctx)
}

// DeleteComment удаляет комментарий вместе со всеми его ответами (каскад).
// Разрешено только автору комментария; чужая попытка отклоняется локально,
// запрос не отправляется. Удаление оптимистично: ветка убирается из
// локального дерева сразу, при ошибке сервера возвращается на место.
func (m *ThreadManager) DeleteComment(ctx context.Context, commentID string) error {
	const op = "service/thread/DeleteComment"

	lg := log.From(ctx).With("op", op, "comment_id", commentID)

	m.mu.Lock()
	idx := m.commentIndexLocked(commentID)
	if idx < 0 {
		m.mu.Unlock()

		return fmt.Errorf("%s: comment %s: %w", op, commentID, ErrInvalidArgument)
	}

	if err := m.ownerGateLocked(m.comments[idx].User.ID); err != nil {
		m.mu.Unlock()
		lg.Warn("delete rejected", "err", err)

		return fmt.Errorf("%s: %w", op, err)
	}

	// Оптимистично вынимаем ветку целиком (ответы уходят вместе с корнем).
	removed := m.comments[idx]
	m.comments = append(m.comments[:idx:idx], m.comments[idx+1:]...)
	m.mu.Unlock()

	if err := m.client.DeleteComment(ctx, commentID); err != nil {
		m.restoreComment(removed, idx)
		lg.Warn("comment delete failed", "err", err)

		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	return m.LoadThread(ctx)
}

// DeleteReply удаляет один ответ replyID у комментария commentID.
// Разрешено только автору ответа.
func (m *ThreadManager) DeleteReply(ctx context.Context, commentID, replyID string) error {
	const op = "service/thread/DeleteReply"

	lg := log.From(ctx).With("op", op, "comment_id", commentID, "reply_id", replyID)

	m.mu.Lock()
	ci := m.commentIndexLocked(commentID)
	if ci < 0 {
		m.mu.Unlock()

		return fmt.Errorf("%s: comment %s: %w", op, commentID, ErrInvalidArgument)
	}

	ri := -1
	for i := range m.comments[ci].Replies {
		if m.comments[ci].Replies[i].ID == replyID {
			ri = i
			break
		}
	}

	if ri < 0 {
		m.mu.Unlock()

		return fmt.Errorf("%s: reply %s: %w", op, replyID, ErrInvalidArgument)
	}

	if err := m.ownerGateLocked(m.comments[ci].Replies[ri].User.ID); err != nil {
		m.mu.Unlock()
		lg.Warn("delete rejected", "err", err)

		return fmt.Errorf("%s: %w", op, err)
	}

	removed := m.comments[ci].Replies[ri]
	replies := m.comments[ci].Replies
	m.comments[ci].Replies = append(replies[:ri:ri], replies[ri+1:]...)
	m.mu.Unlock()

	if err := m.client.DeleteReply(ctx, commentID, replyID); err != nil {
		m.restoreReply(commentID, removed, ri)
		lg.Warn("reply delete failed", "err", err)

		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	return m.LoadThread(ctx)
}

// CanDelete сообщает, вправе ли текущая идентичность удалить сущность
// с автором authorID. Гейт для показа owner-only контролов в UI.
func (m *ThreadManager) CanDelete(authorID string) bool {
	userID, ok := m.identity.CurrentUserID()

	return ok && authorID != "" && userID == authorID
}

// ToggleReplies переключает развёрнутость ответов комментария commentID.
// Состояние каждого комментария независимо.
func (m *ThreadManager) ToggleReplies(commentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.showReplies[commentID] = !m.showReplies[commentID]
}

// RepliesShown — развёрнуты ли сейчас ответы комментария commentID.
func (m *ThreadManager) RepliesShown(commentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.showReplies[commentID]
}

// ToggleComments переключает видимость всей панели комментариев.
func (m *ThreadManager) ToggleComments() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.showPanel = !m.showPanel
}

// CommentsShown — показана ли панель комментариев.
func (m *ThreadManager) CommentsShown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.showPanel
}

// ownerGateLocked — локальная проверка владения перед мутацией.
func (m *ThreadManager) ownerGateLocked(authorID string) error {
	userID, ok := m.identity.CurrentUserID()
	if !ok {
		return ErrNoIdentity
	}

	if userID != authorID {
		return ErrNotOwner
	}

	return nil
}

func (m *ThreadManager) commentIndexLocked(commentID string) int {
	for i := range m.comments {
		if m.comments[i].ID == commentID {
			return i
		}
	}

	return -1
}

func (m *ThreadManager) hasComment(commentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.commentIndexLocked(commentID) >= 0
}

// restoreComment возвращает оптимистично удалённую ветку на прежнее место.
func (m *ThreadManager) restoreComment(c models.Comment, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx > len(m.comments) {
		idx = len(m.comments)
	}

	m.comments = append(m.comments[:idx], append([]models.Comment{c}, m.comments[idx:]...)...)
}

// restoreReply возвращает оптимистично удалённый ответ на прежнее место.
func (m *ThreadManager) restoreReply(commentID string, r models.Reply, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ci := m.commentIndexLocked(commentID)
	if ci < 0 {
		return
	}

	replies := m.comments[ci].Replies
	if idx > len(replies) {
		idx = len(replies)
	}

	m.comments[ci].Replies = append(replies[:idx], append([]models.Reply{r}, replies[idx:]...)...)
}

// commentLikeTarget — Likable поверх живого элемента дерева.
// Каждое чтение/запись ищет комментарий по id заново: между вызовами
// срез мог быть заменён перечиткой.
type commentLikeTarget struct {
	m         *ThreadManager
	commentID string
	userID    string
}

func (t *commentLikeTarget) LikeID() string { return t.commentID }

func (t *commentLikeTarget) Liked() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if i := t.m.commentIndexLocked(t.commentID); i >= 0 {
		return t.m.comments[i].LikedBy(t.userID)
	}

	return false
}

func (t *commentLikeTarget) LikeCount() int {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if i := t.m.commentIndexLocked(t.commentID); i >= 0 {
		return t.m.comments[i].LikeCount()
	}

	return 0
}

// ApplyLike правит множество лайкеров: членство t.userID следует за флагом,
// счётчик выводится из множества (каждый id — не более одного раза).
func (t *commentLikeTarget) ApplyLike(liked bool, _ int) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	i := t.m.commentIndexLocked(t.commentID)
	if i < 0 {
		return
	}

	t.m.comments[i].Likes = applyMembership(t.m.comments[i].Likes, t.userID, liked)
}

// applyMembership добавляет/убирает id в наборе лайкеров, сохраняя
// инвариант множества.
func applyMembership(likes []string, userID string, member bool) []string {
	for i, v := range likes {
		if v == userID {
			if member {
				return likes
			}

			return append(likes[:i:i], likes[i+1:]...)
		}
	}

	if member {
		return append(likes, userID)
	}

	return likes
}
