package service

// Тесты ленты (internal/service/feed.go).
//
// Проверяем:
//  - арифметику пагинации: TotalPages = ceil(total/pageSize), селекторы 1..N;
//  - сброс страницы в 1 при каждой смене поискового запроса — до запроса;
//  - сохранение предыдущей успешной страницы при ошибке сети/сервера
//    (и пустую выдачу, если успешных загрузок ещё не было);
//  - сценарий total=12/limit=5: 3 селектора, на третьей странице 2 поста.
//
// Подготовка окружения:
//   mockgen -source=./internal/api/api.go -destination=./mocks/api.go -package=mocks
//   go test ./internal/service -v -race -count=1

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-blog-client/internal/api"
	"github.com/pribylovaa/go-blog-client/internal/models"
	"github.com/pribylovaa/go-blog-client/mocks"
	"github.com/stretchr/testify/require"
)

func newFeedWithMocks(t *testing.T) (*FeedEngine, *mocks.MockAPI, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ma := mocks.NewMockAPI(ctrl)

	return NewFeedEngine(ma, 5), ma, ctrl
}

// somePosts — n постов с предсказуемыми id.
func somePosts(n int) []models.Post {
	out := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Post{
			ID:     string(rune('a' + i)),
			Title:  "post",
			Author: models.Author{ID: "u1", Username: "author"},
		})
	}

	return out
}

// total=12, limit=5: ровно 3 селектора страниц, на странице 3 — 2 поста.
func TestFeedEngine_PageArithmetic(t *testing.T) {
	e, ma, ctrl := newFeedWithMocks(t)
	defer ctrl.Finish()

	ma.EXPECT().
		ListPosts(gomock.Any(), api.FeedParams{Search: "", Page: 3, Limit: 5}).
		Return(&models.FeedPage{Posts: somePosts(2), Total: 12}, nil)

	require.NoError(t, e.SetPage(context.Background(), 3))

	snap := e.Snapshot()
	require.Len(t, snap.Posts, 2)
	require.Equal(t, 12, snap.Total)
	require.Equal(t, 3, snap.Page)

	require.Equal(t, 3, e.TotalPages())
	require.Equal(t, []int{1, 2, 3}, e.PageNumbers())
}

// total=0 — ноль селекторов.
func TestFeedEngine_EmptyFeed(t *testing.T) {
	e, ma, ctrl := newFeedWithMocks(t)
	defer ctrl.Finish()

	ma.EXPECT().
		ListPosts(gomock.Any(), gomock.Any()).
		Return(&models.FeedPage{Posts: nil, Total: 0}, nil)

	require.NoError(t, e.Refresh(context.Background()))
	require.Equal(t, 0, e.TotalPages())
	require.Empty(t, e.PageNumbers())
}

// Смена запроса всегда уводит на страницу 1 — именно она уходит в запрос.
func TestFeedEngine_SearchResetsPage(t *testing.T) {
	e, ma, ctrl := newFeedWithMocks(t)
	defer ctrl.Finish()

	ma.EXPECT().
		ListPosts(gomock.Any(), api.FeedParams{Search: "", Page: 4, Limit: 5}).
		Return(&models.FeedPage{Posts: somePosts(5), Total: 40}, nil)
	require.NoError(t, e.SetPage(context.Background(), 4))

	ma.EXPECT().
		ListPosts(gomock.Any(), api.FeedParams{Search: "go", Page: 1, Limit: 5}).
		Return(&models.FeedPage{Posts: somePosts(1), Total: 1}, nil)
	require.NoError(t, e.Search(context.Background(), "go"))

	snap := e.Snapshot()
	require.Equal(t, 1, snap.Page)
	require.Equal(t, "go", snap.Search)

	// И при повторной смене — снова страница 1.
	ma.EXPECT().
		ListPosts(gomock.Any(), api.FeedParams{Search: "rust", Page: 1, Limit: 5}).
		Return(&models.FeedPage{Posts: nil, Total: 0}, nil)
	require.NoError(t, e.Search(context.Background(), "rust"))
}

// Ошибка после успешной загрузки: отображается прежняя страница.
func TestFeedEngine_FailureKeepsPreviousPage(t *testing.T) {
	e, ma, ctrl := newFeedWithMocks(t)
	defer ctrl.Finish()

	ma.EXPECT().
		ListPosts(gomock.Any(), gomock.Any()).
		Return(&models.FeedPage{Posts: somePosts(5), Total: 12}, nil)
	require.NoError(t, e.Refresh(context.Background()))

	before := e.Snapshot()

	ma.EXPECT().
		ListPosts(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("boom"))

	err := e.SetPage(context.Background(), 2)
	require.ErrorIs(t, err, ErrRemote)

	after := e.Snapshot()
	require.Equal(t, before, after)
}

// Ошибка первой загрузки: выдача пуста.
func TestFeedEngine_FirstLoadFailureShowsEmpty(t *testing.T) {
	e, ma, ctrl := newFeedWithMocks(t)
	defer ctrl.Finish()

	ma.EXPECT().
		ListPosts(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("boom"))

	require.ErrorIs(t, e.Refresh(context.Background()), ErrRemote)

	snap := e.Snapshot()
	require.Empty(t, snap.Posts)
	require.Equal(t, 0, snap.Total)
	require.Equal(t, 0, e.TotalPages())
}

// Валидация номера страницы: n < 1 отклоняется без запроса.
func TestFeedEngine_SetPageValidation(t *testing.T) {
	e, _, ctrl := newFeedWithMocks(t)
	defer ctrl.Finish()

	require.ErrorIs(t, e.SetPage(context.Background(), 0), ErrInvalidArgument)
	require.ErrorIs(t, e.SetPage(context.Background(), -3), ErrInvalidArgument)
}

// limit <= 0 при создании заменяется дефолтом.
func TestNewFeedEngine_DefaultPageSize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := NewFeedEngine(mocks.NewMockAPI(ctrl), 0)
	require.Equal(t, DefaultPageSize, e.PageSize())
}
