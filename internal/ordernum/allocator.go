package ordernum

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPrefix      = "ORD"
	DefaultMaxAttempts = 10

	dateLayout = "20060102"

	fallbackMin = 1000
	fallbackMax = 9999
)

// ErrAllocationExhausted - за отведённое число попыток свободный номер не найден.
var ErrAllocationExhausted = errors.New("order number allocation exhausted")

// Registry - хранилище уже выданных номеров заказов.
// Реальная уникальность номера обеспечивается уникальным индексом в хранилище:
// аллокатор лишь снижает вероятность конфликта и не может гарантировать её сам.
type Registry interface {
	// LastNumber возвращает наибольший номер с указанным префиксом: сначала сравнивается длина, затем строки.
	// Для номеров одной ширины это обычный лексикографический порядок, номер 10000 старше 9999.
	// Более длинный номер с мусорным хвостом тоже окажется наибольшим, и Next уйдёт на случайный старт.
	LastNumber(ctx context.Context, prefix string) (string, bool, error)
	// Exists проверяет, выдан ли уже такой номер.
	Exists(ctx context.Context, number string) (bool, error)
}

// Allocator выдаёт номера вида PREFIX-YYYYMMDD-NNNN, последовательность сбрасывается каждый день.
type Allocator struct {
	registry    Registry
	prefix      string
	maxAttempts int
	now         func() time.Time
	randIntn    func(n int) int
}

type Option func(*Allocator)

// WithPrefix задаёт префикс номера
func WithPrefix(prefix string) Option {
	return func(a *Allocator) {
		if prefix != "" {
			a.prefix = prefix
		}
	}
}

// WithMaxAttempts задаёт число проверок кандидата на занятость
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithClock подменяет текущее время
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) {
		a.now = now
	}
}

// WithRand подменяет источник случайных чисел для запасного номера
func WithRand(intn func(n int) int) Option {
	return func(a *Allocator) {
		a.randIntn = intn
	}
}

func NewAllocator(registry Registry, opts ...Option) *Allocator {
	a := &Allocator{
		registry:    registry,
		prefix:      DefaultPrefix,
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
		randIntn:    rand.IntN,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Next выдаёт следующий свободный номер на текущую дату.
// Если последний номер за день не разбирается, последовательность стартует со случайного числа из [1000, 9999].
// Кандидат проверяется на занятость и при конфликте увеличивается, не более maxAttempts раз.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	const op = "ordernum.Allocator.Next"

	datePrefix := fmt.Sprintf("%s-%s", a.prefix, a.now().Format(dateLayout))

	last, found, err := a.registry.LastNumber(ctx, datePrefix)
	if err != nil {
		return "", fmt.Errorf("%s: failed to get last order number: %w", op, err)
	}

	seq := 1
	if found {
		n, err := ParseSequence(last)
		if err != nil {
			seq = fallbackMin + a.randIntn(fallbackMax-fallbackMin+1)
		} else {
			seq = n + 1
		}
	}

	for range a.maxAttempts {
		candidate := Format(datePrefix, seq)
		exists, err := a.registry.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("%s: failed to check order number: %w", op, err)
		}
		if !exists {
			return candidate, nil
		}
		seq++
	}

	return "", fmt.Errorf("%s: %s: %w", op, datePrefix, ErrAllocationExhausted)
}

// Format собирает номер из префикса с датой и порядкового номера
func Format(datePrefix string, seq int) string {
	return fmt.Sprintf("%s-%04d", datePrefix, seq)
}

// ParseSequence достаёт порядковый номер из последнего сегмента номера заказа
func ParseSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 {
		return 0, fmt.Errorf("malformed order number %q", number)
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed order number %q: %w", number, err)
	}
	return seq, nil
}
