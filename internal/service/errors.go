package service

import "errors"

var (
	// ErrEmptyCart - оформлять нечего
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity - количество в позиции вне диапазона [1, MaxLineQuantity]
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrItemsUnavailable - в корзине есть блюда, снятые с продажи после добавления
	ErrItemsUnavailable = errors.New("some items are no longer available")
)
