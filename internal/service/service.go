// service содержит контентное ядро блог-клиента: лента (feed.go),
// оптимистичные лайки (likes.go), дерево комментариев (thread.go),
// карточка поста (posts.go).
//
// Общая модель состояния: каждый движок владеет своим in-memory снапшотом
// и мьютексом к нему; сетевые вызовы выполняются вне критических секций,
// сверка с сервером — полной перечиткой (last-writer-wins).
package service

import "errors"

// DefaultPageSize — фиксированный размер страницы ленты.
const DefaultPageSize = 5

var (
	// ErrEmptyContent — пустой (после TrimSpace) текст; запрос не отправляется.
	ErrEmptyContent = errors.New("empty content")
	// ErrNotOwner — мутация сущности не её автором; запрос не отправляется.
	ErrNotOwner = errors.New("not owner")
	// ErrNoIdentity — операция требует идентичности, а сессия анонимна.
	ErrNoIdentity = errors.New("no identity")
	// ErrInvalidArgument — неверные входные параметры операции.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRemote — сетевая/серверная ошибка; оптимистичное изменение откатано.
	ErrRemote = errors.New("remote failure")
)
