package cart

import (
	"context"
	"encoding/json"
	"iter"
	"slices"

	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/shopspring/decimal"
)

// DefaultSessionKey ключ, под которым корзина лежит в сессии
const DefaultSessionKey = "cart"

// Session описывает хранилище сессии, в котором живёт корзина.
// Корзина сама ничего не сохраняет: она пишет значение по ключу и помечает сессию изменённой,
// а сохранением занимается владелец сессии.
type Session interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	MarkModified()
}

// Catalog - каталог блюд, из которого корзина подтягивает карточки товаров при обходе.
type Catalog interface {
	// GetByIDs возвращает найденные блюда; удалённые из каталога просто отсутствуют в ответе.
	GetByIDs(ctx context.Context, ids []int64) ([]*models.MenuItem, error)
}

// Line позиция корзины.
// UnitPrice фиксируется при первом добавлении товара и дальше не меняется,
// даже если блюдо добавляют повторно с другой ценой или цена в каталоге изменилась.
type Line struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

// Total стоимость позиции по зафиксированной цене
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Item позиция корзины вместе с карточкой блюда из каталога
type Item struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	MenuItem  *models.MenuItem
}

// Cart корзина одной сессии. Не потокобезопасна: сессия принадлежит одному клиенту.
type Cart struct {
	session Session
	key     string
	catalog Catalog
	lines   map[int64]Line
}

// New поднимает корзину из сессии. Если в сессии корзины нет или её не удалось разобрать,
// создаётся пустая и сразу записывается в сессию.
func New(session Session, key string, catalog Catalog) *Cart {
	if key == "" {
		key = DefaultSessionKey
	}
	c := &Cart{
		session: session,
		key:     key,
		catalog: catalog,
	}

	if raw, ok := session.Get(key); ok {
		var lines map[int64]Line
		if err := json.Unmarshal(raw, &lines); err == nil && lines != nil {
			c.lines = lines
			return c
		}
	}

	c.lines = make(map[int64]Line)
	c.save()
	return c
}

// Add добавляет блюдо в корзину.
// Если override - количество заменяется, иначе прибавляется к текущему.
// Проверка quantity > 0 на вызывающей стороне.
func (c *Cart) Add(productID int64, unitPrice decimal.Decimal, quantity int, override bool) {
	line, ok := c.lines[productID]
	if !ok {
		line = Line{ProductID: productID, Quantity: 0, UnitPrice: unitPrice}
	}

	if override {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}
	c.lines[productID] = line
	c.save()
}

// UpdateQuantity выставляет количество; quantity <= 0 удаляет позицию.
func (c *Cart) UpdateQuantity(productID int64, quantity int) {
	line, ok := c.lines[productID]
	if !ok {
		return
	}

	if quantity > 0 {
		line.Quantity = quantity
		c.lines[productID] = line
	} else {
		delete(c.lines, productID)
	}
	c.save()
}

// Remove удаляет позицию, если она есть
func (c *Cart) Remove(productID int64) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	c.save()
}

// Clear очищает корзину и убирает её из сессии
func (c *Cart) Clear() {
	c.lines = make(map[int64]Line)
	c.session.Delete(c.key)
	c.session.MarkModified()
}

// Line возвращает позицию по идентификатору блюда
func (c *Cart) Line(productID int64) (Line, bool) {
	line, ok := c.lines[productID]
	return line, ok
}

// Lines возвращает позиции, отсортированные по идентификатору блюда
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.lines))
	for _, id := range c.productIDs() {
		lines = append(lines, c.lines[id])
	}
	return lines
}

// Items обходит позиции корзины вместе с карточками блюд.
// Последовательность ленивая и её можно обходить повторно: каталог опрашивается при каждом обходе.
// Позиции, чьи блюда удалены из каталога, пропускаются. Ошибка каталога отдаётся один раз и обход завершается.
func (c *Cart) Items(ctx context.Context) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		ids := c.productIDs()
		if len(ids) == 0 {
			return
		}

		products, err := c.catalog.GetByIDs(ctx, ids)
		if err != nil {
			yield(Item{}, err)
			return
		}

		byID := make(map[int64]*models.MenuItem, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		for _, id := range ids {
			line, ok := c.lines[id]
			if !ok {
				continue
			}
			product, ok := byID[id]
			if !ok {
				continue
			}
			item := Item{
				ProductID: id,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				LineTotal: line.Total(),
				MenuItem:  product,
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// TotalCount сумма количеств по всем позициям
func (c *Cart) TotalCount() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// LineCount число различных позиций
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// TotalPrice стоимость корзины по зафиксированным ценам
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Total())
	}
	return total
}

func (c *Cart) productIDs() []int64 {
	ids := make([]int64, 0, len(c.lines))
	for id := range c.lines {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *Cart) save() {
	// map[int64]Line всегда сериализуется
	data, _ := json.Marshal(c.lines)
	c.session.Set(c.key, data)
	c.session.MarkModified()
}
