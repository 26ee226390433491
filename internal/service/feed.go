package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/pribylovaa/go-blog-client/internal/api"
	"github.com/pribylovaa/go-blog-client/internal/models"
	"github.com/pribylovaa/go-blog-client/pkg/log"
)

// FeedSnapshot — последняя успешно полученная страница ленты.
// Search/Page — параметры, которыми эта страница была получена.
type FeedSnapshot struct {
	Posts  []models.Post
	Total  int
	Search string
	Page   int
}

// FeedEngine — постраничная, фильтруемая поиском выдача постов.
//
// Инварианты:
//   - размер страницы фиксирован на всё время жизни движка;
//   - смена поискового запроса всегда сбрасывает страницу в 1 ещё до
//     запроса (движок владеет этим инвариантом, а не вызывающая сторона);
//   - при ошибке сети/сервера отображаемый снапшот не трогается: остаётся
//     предыдущая успешная страница (пустая, если успешных ещё не было);
//   - опоздавший ответ не затирает результат более нового запроса.
type FeedEngine struct {
	client api.API
	limit  int

	mu     sync.Mutex
	search string
	page   int
	snap   FeedSnapshot
	gen    uint64
}

// NewFeedEngine создаёт движок ленты. limit <= 0 -> DefaultPageSize.
func NewFeedEngine(client api.API, limit int) *FeedEngine {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	return &FeedEngine{
		client: client,
		limit:  limit,
		page:   1,
	}
}

// PageSize — фиксированный размер страницы.
func (e *FeedEngine) PageSize() int { return e.limit }

// Search устанавливает поисковый запрос, сбрасывает страницу в 1 и
// выполняет запрос. Сброс страницы происходит до обращения к серверу.
func (e *FeedEngine) Search(ctx context.Context, term string) error {
	e.mu.Lock()
	e.search = term
	e.page = 1
	e.mu.Unlock()

	return e.fetch(ctx)
}

// SetPage переходит на страницу n (1-индексация) текущего запроса.
func (e *FeedEngine) SetPage(ctx context.Context, n int) error {
	const op = "service/feed/SetPage"

	if n < 1 {
		return fmt.Errorf("%s: page %d: %w", op, n, ErrInvalidArgument)
	}

	e.mu.Lock()
	e.page = n
	e.mu.Unlock()

	return e.fetch(ctx)
}

// Refresh перечитывает текущую страницу текущего запроса.
func (e *FeedEngine) Refresh(ctx context.Context) error {
	return e.fetch(ctx)
}

// Snapshot — копия последней успешной страницы.
func (e *FeedEngine) Snapshot() FeedSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.snap
	out.Posts = append([]models.Post(nil), e.snap.Posts...)

	return out
}

// TotalPages = ceil(total/pageSize); 0 при пустой выдаче.
func (e *FeedEngine) TotalPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return (e.snap.Total + e.limit - 1) / e.limit
}

// PageNumbers — список селекторов страниц для UI: ровно TotalPages
// значений, 1-индексация. Пустой срез при total == 0.
func (e *FeedEngine) PageNumbers() []int {
	n := e.TotalPages()

	pages := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, i)
	}

	return pages
}

// fetch выполняет запрос с текущими параметрами и, в случае успеха,
// заменяет снапшот целиком. Сетевой вызов — вне критической секции.
func (e *FeedEngine) fetch(ctx context.Context) error {
	const op = "service/feed/fetch"

	e.mu.Lock()
	search, page := e.search, e.page
	e.gen++
	my := e.gen
	e.mu.Unlock()

	lg := log.From(ctx).With("op", op, "search", search, "page", page)

	result, err := e.client.ListPosts(ctx, api.FeedParams{
		Search: search,
		Page:   page,
		Limit:  e.limit,
	})
	if err != nil {
		// Снапшот не трогаем: продолжает отображаться прежняя страница.
		lg.Warn("feed fetch failed", "err", err)

		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Пока ходили в сеть, мог завершиться более новый запрос.
	if my != e.gen {
		return nil
	}

	e.snap = FeedSnapshot{
		Posts:  result.Posts,
		Total:  result.Total,
		Search: search,
		Page:   page,
	}

	return nil
}
