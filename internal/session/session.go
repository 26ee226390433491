// Package session — провайдер идентичности текущего пользователя.
//
// Сессия держит bearer-токен с явным жизненным циклом (SetToken на логине,
// Clear на логауте) и отдаёт user id, декодируя payload-сегмент токена без
// криптографической проверки. Значение сугубо подсказочное — им гейтится
// только UI (показ owner-only действий); границей авторизации остаётся сервер.
package session

import (
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Identity отдаёт id текущего пользователя.
// Второе значение false — идентичности нет (нет токена или он битый).
type Identity interface {
	CurrentUserID() (string, bool)
}

// claims — типизированная форма payload-сегмента токена.
// Ожидаем {"id": "<userId>", ...}; всё прочее игнорируем.
type claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Session — конкурентно-безопасный держатель токена.
// Нулевое значение готово к использованию (анонимная сессия).
type Session struct {
	mu     sync.RWMutex
	token  string
	userID string
}

// New создаёт пустую (анонимную) сессию.
func New() *Session {
	return &Session{}
}

// SetToken устанавливает токен сессии и заново выводит идентичность.
// Битый токен не отвергается (он может быть непрозрачным для клиента),
// но идентичность при этом остаётся пустой — fail closed.
func (s *Session) SetToken(token string) {
	token = strings.TrimSpace(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.userID = decodeUserID(token)
}

// Clear сбрасывает токен и идентичность (логаут).
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.userID = ""
}

// Token отдаёт текущий bearer-токен (для Authorization-заголовка).
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.token != ""
}

// CurrentUserID отдаёт id пользователя из payload токена.
func (s *Session) CurrentUserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.userID, s.userID != ""
}

// decodeUserID — типизированный разбор payload-сегмента без проверки подписи.
// Любая некорректность формы (не JWT, битый base64, нет поля id) — пустой id.
func decodeUserID(token string) string {
	if token == "" {
		return ""
	}

	var cl claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &cl); err != nil {
		return ""
	}

	return strings.TrimSpace(cl.ID)
}
