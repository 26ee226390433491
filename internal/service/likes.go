package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/pribylovaa/go-blog-client/pkg/log"
)

// Likable — любая сущность с лайком текущего пользователя и счётчиком.
//
// Контракт:
//   - Liked/LikeCount читают живое отображаемое состояние на момент вызова;
//   - ApplyLike записывает новое состояние (и флаг, и счётчик) туда же;
//   - реализация сама отвечает за свою синхронизацию (владелец снапшота
//     берёт собственный мьютекс внутри этих методов).
type Likable interface {
	LikeID() string
	Liked() bool
	LikeCount() int
	ApplyLike(liked bool, count int)
}

// LikeToggler — оптимистичное переключение лайка с откатом.
//
// Семантика:
//   - флаг и счётчик меняются немедленно, до ответа сервера;
//   - дельта применяется к живому состоянию на момент вызова, а не к
//     снапшоту: параллельные переключения сходятся;
//   - при ошибке сервера состояние возвращается ровно к значениям
//     до переключения — но только если с тех пор не было более нового
//     переключения той же сущности (монотонный счётчик на id):
//     опоздавший отказ не затирает более позднее оптимистичное состояние.
//
// Ретраев нет; каждая неудача терминальна для данной попытки.
type LikeToggler struct {
	toggle func(ctx context.Context, id string) error

	mu  sync.Mutex
	seq map[string]uint64
}

// NewLikeToggler создаёт контроллер над удалённой toggle-операцией.
func NewLikeToggler(toggle func(ctx context.Context, id string) error) *LikeToggler {
	return &LikeToggler{
		toggle: toggle,
		seq:    make(map[string]uint64),
	}
}

// Toggle — оптимистичное переключение лайка сущности target.
func (t *LikeToggler) Toggle(ctx context.Context, target Likable) error {
	const op = "service/likes/Toggle"

	id := target.LikeID()
	if id == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	lg := log.From(ctx).With("op", op, "id", id)

	prevLiked := target.Liked()
	prevCount := target.LikeCount()

	next := prevCount + 1
	if prevLiked {
		next = prevCount - 1
		if next < 0 {
			next = 0
		}
	}

	target.ApplyLike(!prevLiked, next)
	my := t.bump(id)

	if err := t.toggle(ctx, id); err != nil {
		// Откатываем, только если это всё ещё последнее переключение id.
		if t.current(id) == my {
			target.ApplyLike(prevLiked, prevCount)
		}

		lg.Warn("like toggle failed", "err", err)

		return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
	}

	return nil
}

func (t *LikeToggler) bump(id string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq[id]++

	return t.seq[id]
}

func (t *LikeToggler) current(id string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.seq[id]
}
