package session

import (
	"context"
	"errors"
	"maps"
)

var ErrNotFound = errors.New("session not found")

// Store хранилище сессий
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Session набор значений одной сессии. Значения - уже сериализованные байты,
// что в них лежит решает тот, кто их записал (например, корзина).
type Session struct {
	id       string
	values   map[string][]byte
	modified bool
}

// New создаёт пустую сессию с указанным идентификатором
func New(id string) *Session {
	return &Session{id: id, values: make(map[string][]byte)}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Get(key string) ([]byte, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key string, value []byte) {
	s.values[key] = value
}

func (s *Session) Delete(key string) {
	delete(s.values, key)
}

// MarkModified сообщает владельцу сессии, что её нужно сохранить
func (s *Session) MarkModified() {
	s.modified = true
}

func (s *Session) Modified() bool { return s.modified }

// Values копия значений сессии
func (s *Session) Values() map[string][]byte {
	return maps.Clone(s.values)
}

type ctxKey struct{}

// WithSession кладёт сессию в контекст
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext достаёт сессию из контекста
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}
