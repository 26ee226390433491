package service

// Тесты дерева комментариев (internal/service/thread.go).
//
// Проверяем:
//  - LoadThread заменяет дерево целиком;
//  - валидацию пустого текста: запрос не отправляется (ErrEmptyContent);
//  - каскад: удаление комментария уносит все его ответы, удаление ответа —
//    только его;
//  - owner-гейт: чужие комментарии/ответы не удалить, запрос не уходит;
//  - оптимистичное удаление с восстановлением ветки при ошибке сервера;
//  - лайк комментария: оптимистичное применение + сверка перечиткой,
//    точный откат при ошибке;
//  - локальность видимости: развёрнутость ответов независима по id.

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-blog-client/internal/models"
	"github.com/pribylovaa/go-blog-client/mocks"
	"github.com/stretchr/testify/require"
)

// stubIdentity — фиксированная идентичность для тестов.
type stubIdentity struct {
	id string
}

func (s stubIdentity) CurrentUserID() (string, bool) {
	return s.id, s.id != ""
}

func newThreadWithMocks(t *testing.T, userID string) (*ThreadManager, *mocks.MockAPI, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ma := mocks.NewMockAPI(ctrl)

	return NewThreadManager(ma, stubIdentity{id: userID}, "post1"), ma, ctrl
}

// sampleThread — комментарий C1 пользователя u1 с ответами R1 (u1) и R2 (u2),
// плюс комментарий C2 пользователя u2.
func sampleThread() []models.Comment {
	return []models.Comment{
		{
			ID:     "c1",
			PostID: "post1",
			User:   models.Author{ID: "u1", Username: "alice"},
			Text:   "first",
			Likes:  []string{"u2"},
			Replies: []models.Reply{
				{ID: "r1", User: models.Author{ID: "u1", Username: "alice"}, Text: "re 1"},
				{ID: "r2", User: models.Author{ID: "u2", Username: "bob"}, Text: "re 2"},
			},
		},
		{
			ID:     "c2",
			PostID: "post1",
			User:   models.Author{ID: "u2", Username: "bob"},
			Text:   "second",
		},
	}
}

func TestThreadManager_LoadThread_ReplacesTree(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))
	require.Len(t, m.Comments(), 2)

	// Повторная загрузка — замена, не слияние.
	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread()[:1], nil)
	require.NoError(t, m.LoadThread(context.Background()))
	require.Len(t, m.Comments(), 1)
}

func TestThreadManager_LoadThread_RemoteFailure(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(nil, errors.New("boom"))
	require.ErrorIs(t, m.LoadThread(context.Background()), ErrRemote)
}

// Пробельный текст отклоняется локально: ни одного сетевого вызова.
func TestThreadManager_PostComment_WhitespaceOnly(t *testing.T) {
	m, _, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	require.ErrorIs(t, m.PostComment(context.Background(), "   "), ErrEmptyContent)
	require.ErrorIs(t, m.PostComment(context.Background(), ""), ErrEmptyContent)
	require.ErrorIs(t, m.PostReply(context.Background(), "c1", "\t\n"), ErrEmptyContent)
}

// Успешный комментарий: создание + перечитка дерева за каноническим id.
func TestThreadManager_PostComment_ReloadsThread(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	created := models.Comment{ID: "c3", User: models.Author{ID: "u1"}, Text: "hi"}

	gomock.InOrder(
		ma.EXPECT().CreateComment(gomock.Any(), "post1", "hi").Return(&created, nil),
		ma.EXPECT().ListComments(gomock.Any(), "post1").
			Return(append(sampleThread(), created), nil),
	)

	require.NoError(t, m.PostComment(context.Background(), "hi"))
	require.Len(t, m.Comments(), 3)
}

// Ошибка создания: текст не теряется (движок его не трогает), ErrRemote.
func TestThreadManager_PostComment_RemoteFailure(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().CreateComment(gomock.Any(), "post1", "hi").Return(nil, errors.New("boom"))

	require.ErrorIs(t, m.PostComment(context.Background(), "hi"), ErrRemote)
}

func TestThreadManager_PostReply_ReloadsThread(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	gomock.InOrder(
		ma.EXPECT().CreateReply(gomock.Any(), "c1", "yo").
			Return(&models.Reply{ID: "r3", Text: "yo"}, nil),
		ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil),
	)

	require.NoError(t, m.PostReply(context.Background(), "c1", "yo"))
}

// Удаление своего комментария уносит ветку целиком (включая ответы).
func TestThreadManager_DeleteComment_Cascade(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	gomock.InOrder(
		ma.EXPECT().DeleteComment(gomock.Any(), "c1").Return(nil),
		// Сервер уже без c1 и его ответов.
		ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread()[1:], nil),
	)

	require.NoError(t, m.DeleteComment(context.Background(), "c1"))

	comments := m.Comments()
	require.Len(t, comments, 1)
	require.Equal(t, "c2", comments[0].ID)

	for _, c := range comments {
		for _, r := range c.Replies {
			require.NotEqual(t, "r1", r.ID)
			require.NotEqual(t, "r2", r.ID)
		}
	}
}

// Чужой комментарий: отказ локально, без запроса.
func TestThreadManager_DeleteComment_NotOwner(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	// c2 принадлежит u2.
	require.ErrorIs(t, m.DeleteComment(context.Background(), "c2"), ErrNotOwner)
	require.Len(t, m.Comments(), 2)
}

// Аноним не удаляет ничего.
func TestThreadManager_DeleteComment_NoIdentity(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	require.ErrorIs(t, m.DeleteComment(context.Background(), "c1"), ErrNoIdentity)
}

// Ошибка сервера при удалении: оптимистично снятая ветка возвращается
// на место вместе со всеми ответами.
func TestThreadManager_DeleteComment_RestoreOnFailure(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	ma.EXPECT().DeleteComment(gomock.Any(), "c1").Return(errors.New("boom"))

	require.ErrorIs(t, m.DeleteComment(context.Background(), "c1"), ErrRemote)

	comments := m.Comments()
	require.Len(t, comments, 2)
	require.Equal(t, "c1", comments[0].ID)
	require.Len(t, comments[0].Replies, 2)
}

// Удаление ответа снимает только его; владение проверяется по автору ответа.
func TestThreadManager_DeleteReply_SingleReplyOnly(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	after := sampleThread()
	after[0].Replies = after[0].Replies[1:] // остался только r2

	gomock.InOrder(
		ma.EXPECT().DeleteReply(gomock.Any(), "c1", "r1").Return(nil),
		ma.EXPECT().ListComments(gomock.Any(), "post1").Return(after, nil),
	)

	require.NoError(t, m.DeleteReply(context.Background(), "c1", "r1"))

	comments := m.Comments()
	require.Len(t, comments[0].Replies, 1)
	require.Equal(t, "r2", comments[0].Replies[0].ID)
}

func TestThreadManager_DeleteReply_NotOwner(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	// r2 принадлежит u2.
	require.ErrorIs(t, m.DeleteReply(context.Background(), "c1", "r2"), ErrNotOwner)
	require.Len(t, m.Comments()[0].Replies, 2)
}

func TestThreadManager_DeleteReply_RestoreOnFailure(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	ma.EXPECT().DeleteReply(gomock.Any(), "c1", "r1").Return(errors.New("boom"))

	require.ErrorIs(t, m.DeleteReply(context.Background(), "c1", "r1"), ErrRemote)

	replies := m.Comments()[0].Replies
	require.Len(t, replies, 2)
	require.Equal(t, "r1", replies[0].ID)
	require.Equal(t, "r2", replies[1].ID)
}

// Лайк комментария: оптимистичное применение видно до ответа сервера,
// затем сверка перечиткой дерева.
func TestThreadManager_ToggleCommentLike_OptimisticThenReload(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	// c1: likes=[u2], текущий пользователь u1 ещё не лайкал.
	var optimistic models.Comment

	reconciled := sampleThread()
	reconciled[0].Likes = []string{"u2", "u1"}

	gomock.InOrder(
		ma.EXPECT().ToggleCommentLike(gomock.Any(), "c1").
			DoAndReturn(func(ctx context.Context, id string) error {
				optimistic = m.Comments()[0]
				return nil
			}),
		ma.EXPECT().ListComments(gomock.Any(), "post1").Return(reconciled, nil),
	)

	require.NoError(t, m.ToggleCommentLike(context.Background(), "c1"))

	// В момент сетевого вызова лайк уже применён локально.
	require.True(t, optimistic.LikedBy("u1"))
	require.Equal(t, 2, optimistic.LikeCount())

	// После сверки — авторитетное состояние сервера.
	require.Equal(t, 2, m.Comments()[0].LikeCount())
}

// Ошибка сервера: лайк откатывается ровно к исходным значениям,
// перечитка не выполняется.
func TestThreadManager_ToggleCommentLike_RevertOnFailure(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	ma.EXPECT().ToggleCommentLike(gomock.Any(), "c1").Return(errors.New("boom"))

	require.ErrorIs(t, m.ToggleCommentLike(context.Background(), "c1"), ErrRemote)

	c := m.Comments()[0]
	require.False(t, c.LikedBy("u1"))
	require.Equal(t, 1, c.LikeCount())
	require.Equal(t, []string{"u2"}, c.Likes)
}

func TestThreadManager_ToggleCommentLike_NoIdentity(t *testing.T) {
	m, ma, ctrl := newThreadWithMocks(t, "")
	defer ctrl.Finish()

	ma.EXPECT().ListComments(gomock.Any(), "post1").Return(sampleThread(), nil)
	require.NoError(t, m.LoadThread(context.Background()))

	require.ErrorIs(t, m.ToggleCommentLike(context.Background(), "c1"), ErrNoIdentity)
}

// CanDelete: пользователь A (u1) не видит delete-контрол на комментарии B (u2).
func TestThreadManager_CanDelete(t *testing.T) {
	m, _, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	require.True(t, m.CanDelete("u1"))
	require.False(t, m.CanDelete("u2"))
	require.False(t, m.CanDelete(""))

	anon, _, ctrl2 := newThreadWithMocks(t, "")
	defer ctrl2.Finish()
	require.False(t, anon.CanDelete("u1"))
}

// Видимость — локальное состояние, независимое по id комментария.
func TestThreadManager_VisibilityTogglesAreLocal(t *testing.T) {
	m, _, ctrl := newThreadWithMocks(t, "u1")
	defer ctrl.Finish()

	require.True(t, m.CommentsShown())
	require.False(t, m.RepliesShown("c1"))
	require.False(t, m.RepliesShown("c2"))

	m.ToggleReplies("c1")
	require.True(t, m.RepliesShown("c1"))
	require.False(t, m.RepliesShown("c2"))

	m.ToggleReplies("c1")
	require.False(t, m.RepliesShown("c1"))

	m.ToggleComments()
	require.False(t, m.CommentsShown())
	m.ToggleComments()
	require.True(t, m.CommentsShown())
}
