// Package models содержит доменные сущности блог-клиента.
//
// Формы соответствуют JSON-контракту удалённого API (см. internal/api):
// идентификаторы — строки ("_id"), наборы лайков — списки user id,
// порядок ответов в комментарии — порядок вставки.
package models

import "time"

// Author — автор сущности в том виде, в котором его отдаёт API.
type Author struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// Post — пост ленты.
// Важно:
//   - Content — готовый HTML (рендерится сервером);
//   - Likes — множество user id (каждый id не более одного раза);
//   - единственная клиентская мутация Likes — toggle лайка.
type Post struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment — корневой комментарий поста вместе со своими ответами.
// Replies — append-only с точки зрения клиента: порядок не меняется.
type Comment struct {
	ID      string   `json:"_id"`
	PostID  string   `json:"post"`
	User    Author   `json:"user"`
	Text    string   `json:"text"`
	Likes   []string `json:"likes"`
	Replies []Reply  `json:"replies"`
}

// Reply — ответ на комментарий. Собственного состояния лайков не имеет.
type Reply struct {
	ID   string `json:"_id"`
	User Author `json:"user"`
	Text string `json:"text"`
}

// FeedPage — одна страница выдачи ленты: посты текущей страницы
// плюс общее число совпадений по поисковому запросу.
type FeedPage struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
}

// LikedBy сообщает, лайкнул ли пост пользователь userID.
func (p *Post) LikedBy(userID string) bool {
	return containsID(p.Likes, userID)
}

// LikeCount — текущее число лайков поста.
func (p *Post) LikeCount() int { return len(p.Likes) }

// LikedBy сообщает, лайкнул ли комментарий пользователь userID.
func (c *Comment) LikedBy(userID string) bool {
	return containsID(c.Likes, userID)
}

// LikeCount — текущее число лайков комментария.
func (c *Comment) LikeCount() int { return len(c.Likes) }

func containsID(ids []string, id string) bool {
	if id == "" {
		return false
	}

	for _, v := range ids {
		if v == id {
			return true
		}
	}

	return false
}
