package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuTag метка блюда для бейджей на витрине
type MenuTag string

const (
	MenuTagNone    MenuTag = "none"
	MenuTagPopular MenuTag = "popular"
	MenuTagNew     MenuTag = "new"
)

// MenuCategory группа блюд (завтраки, обеды и т.д.)
type MenuCategory struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	IsFeatured bool   `json:"is_featured"`
}

// MenuItem представляет блюдо, которое можно заказать
type MenuItem struct {
	ID           int64           `json:"id"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"` // заполняется через JOIN с таблицей menu_categories
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	IsAvailable  bool            `json:"is_available"`
	IsFeatured   bool            `json:"is_featured"`
	Tag          MenuTag         `json:"tag"`
	CreatedAt    time.Time       `json:"created_at"`
}
