// Package api описывает контракт удалённого блог-API, которым пользуется
// сервисный слой. Конкретная HTTP-реализация — в подпакете rest.
package api

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-blog-client/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует на сервере.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated — запрос без валидного bearer-токена (401).
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied — сервер отклонил операцию по правам (403).
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidArgument — сервер отклонил входные данные (400/422).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict — конфликт состояния/уникальности (409).
	ErrConflict = errors.New("conflict")
	// ErrUnavailable — сеть/апстрим недоступны, таймаут, 5xx класса 502/503/504.
	ErrUnavailable = errors.New("unavailable")
	// ErrInternal — прочие ошибки сервера/транспорта.
	ErrInternal = errors.New("internal")
)

// FeedParams — параметры запроса страницы ленты.
type FeedParams struct {
	Search string
	Page   int
	Limit  int
}

// CreatePostInput — создание поста.
type CreatePostInput struct {
	Title   string
	Content string
}

// RegisterInput — регистрация у внешнего auth-коллаборатора.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// API описывает операции удалённого блог-сервера.
//
// Все методы сетевые: блокируются до ответа либо отмены ctx и возвращают
// сентинелы пакета (через errors.Is). Ретраев нет — любая ошибка терминальна
// для данной попытки.
type API interface {
	// ListPosts возвращает страницу постов по поисковому запросу.
	// Сервер считает total по всем совпадениям, не только по странице.
	ListPosts(ctx context.Context, p FeedParams) (*models.FeedPage, error)

	// PostByID возвращает пост целиком (включая HTML-содержимое и лайки).
	// Если пост не найден — ErrNotFound.
	PostByID(ctx context.Context, id string) (*models.Post, error)

	// CreatePost создаёт пост от имени текущего пользователя.
	CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error)

	// UpdatePost заменяет title/content поста. Право редактирования
	// проверяет сервер (только автор) — клиентская проверка вспомогательная.
	UpdatePost(ctx context.Context, id string, in CreatePostInput) (*models.Post, error)

	// DeletePost удаляет пост. Если не автор — ErrPermissionDenied.
	DeletePost(ctx context.Context, id string) error

	// TogglePostLike переключает лайк текущего пользователя на посте.
	// Идемпотентной семантики нет: каждый вызов — одно переключение.
	TogglePostLike(ctx context.Context, id string) error

	// ListComments возвращает все корневые комментарии поста,
	// каждый — со своими ответами и набором лайков.
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)

	// CreateComment создаёт корневой комментарий к посту.
	CreateComment(ctx context.Context, postID, text string) (*models.Comment, error)

	// CreateReply создаёт ответ на комментарий commentID.
	CreateReply(ctx context.Context, commentID, text string) (*models.Reply, error)

	// ToggleCommentLike переключает лайк текущего пользователя на комментарии.
	ToggleCommentLike(ctx context.Context, commentID string) error

	// DeleteComment удаляет комментарий; сервер каскадно удаляет его ответы.
	DeleteComment(ctx context.Context, commentID string) error

	// DeleteReply удаляет один ответ replyID у комментария commentID.
	DeleteReply(ctx context.Context, commentID, replyID string) error

	// Login — внешний auth-коллаборатор: возвращает bearer-токен.
	Login(ctx context.Context, email, password string) (string, error)

	// Register — внешний auth-коллаборатор: создаёт учётную запись.
	Register(ctx context.Context, in RegisterInput) error
}
