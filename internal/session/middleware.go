package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const DefaultCookieName = "sessionid"

// errNotSaved - тело ответа отброшено, потому что изменённую сессию не удалось сохранить
var errNotSaved = errors.New("session not saved, response replaced")

// CookieOptions настройки cookie с идентификатором сессии
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Middleware поднимает сессию по cookie (или заводит новую) и кладёт её в контекст запроса.
// Изменённая сессия сохраняется до того, как уйдут заголовки ответа. Если сохранить не удалось,
// клиент получает 500 вместо ответа обработчика.
func Middleware(log *slog.Logger, store Store, opts CookieOptions) func(http.Handler) http.Handler {
	if opts.Name == "" {
		opts.Name = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "session.Middleware"
			logger := log.With(slog.String("op", op))

			var sess *Session
			if c, err := r.Cookie(opts.Name); err == nil && c.Value != "" {
				loaded, err := store.Load(r.Context(), c.Value)
				switch {
				case err == nil:
					sess = loaded
				case errors.Is(err, ErrNotFound):
					logger.Debug("session expired, starting new one")
				default:
					logger.Error("failed to load session", slog.Any("error", err))
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
			}
			if sess == nil {
				sess = New(uuid.NewString())
			}

			http.SetCookie(w, &http.Cookie{
				Name:     opts.Name,
				Value:    sess.ID(),
				Path:     "/",
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			sw := &saveOnWrite{
				ResponseWriter: w,
				save: func() error {
					if !sess.Modified() {
						return nil
					}
					if err := store.Save(context.WithoutCancel(r.Context()), sess); err != nil {
						logger.Error("failed to save session", slog.String("sessionID", sess.ID()), slog.Any("error", err))
						return err
					}
					return nil
				},
			}
			next.ServeHTTP(sw, r.WithContext(WithSession(r.Context(), sess)))

			// обработчик ничего не написал
			sw.commit()
		})
	}
}

// saveOnWrite сохраняет сессию при первой записи заголовков или тела
type saveOnWrite struct {
	http.ResponseWriter
	save      func() error
	committed bool
	failed    bool
}

// commit сохраняет сессию один раз; при ошибке вместо ответа обработчика уходит 500
func (w *saveOnWrite) commit() bool {
	if w.committed {
		return !w.failed
	}
	w.committed = true
	if err := w.save(); err != nil {
		w.failed = true
		http.Error(w.ResponseWriter, "internal server error", http.StatusInternalServerError)
		return false
	}
	return true
}

func (w *saveOnWrite) WriteHeader(status int) {
	if w.commit() {
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *saveOnWrite) Write(b []byte) (int, error) {
	if !w.commit() {
		return 0, errNotSaved
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap нужен http.ResponseController
func (w *saveOnWrite) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
