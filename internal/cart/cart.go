// Package cart holds the session-scoped carts. Carts live in memory only;
// stock is not reserved beyond the owning session, and nothing here is
// persisted.
package cart

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"jokersolar/backend/internal/domain"
	"jokersolar/backend/internal/store"
	"jokersolar/backend/internal/xid"
)

var one = decimal.NewFromInt(1)

// Cart is an ordered list of lines. Standard items keep at most one line per
// item id (re-adding merges); length items get a fresh line per cut so each
// cut can carry its own negotiated price.
type Cart struct {
	mu    sync.Mutex
	lines []domain.CartLine
}

// Available reports how much of the item's stock measure is still
// purchasable once every other cart line for that item is counted.
// excludeLineID is the line being edited, or empty.
func (c *Cart) Available(item *domain.InventoryItem, excludeLineID string) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.availableLocked(item, excludeLineID)
}

func (c *Cart) availableLocked(item *domain.InventoryItem, excludeLineID string) decimal.Decimal {
	avail := item.StockMeasure()
	for _, line := range c.lines {
		if line.ItemID == item.ID && line.LineID != excludeLineID {
			avail = avail.Sub(line.Quantity)
		}
	}
	return avail
}

// AddItem adds one unit of a standard item, merging into an existing line
// for the same item when present.
func (c *Cart) AddItem(item *domain.InventoryItem, selectedPrice decimal.Decimal) (domain.CartLine, error) {
	if item.MeasureType != domain.MeasureStandard {
		return domain.CartLine{}, fmt.Errorf("%w: length items are added by length", store.ErrValidation)
	}
	if err := validatePrice(item, selectedPrice); err != nil {
		return domain.CartLine{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var existing *domain.CartLine
	for i := range c.lines {
		if c.lines[i].ItemID == item.ID {
			existing = &c.lines[i]
			break
		}
	}

	if c.availableLocked(item, "").LessThan(one) {
		return domain.CartLine{}, fmt.Errorf("%w: %s", store.ErrInsufficientStock, item.Name)
	}

	if existing != nil {
		existing.Quantity = existing.Quantity.Add(one)
		existing.SelectedPrice = selectedPrice
		return *existing, nil
	}
	line := newLine(item, selectedPrice, one)
	c.lines = append(c.lines, line)
	return line, nil
}

// AddLength adds a cut of a length item as a new line.
func (c *Cart) AddLength(item *domain.InventoryItem, selectedPrice, length decimal.Decimal) (domain.CartLine, error) {
	if item.MeasureType != domain.MeasureLength {
		return domain.CartLine{}, fmt.Errorf("%w: item is not sold by length", store.ErrValidation)
	}
	if err := validatePrice(item, selectedPrice); err != nil {
		return domain.CartLine{}, err
	}
	if !length.IsPositive() {
		return domain.CartLine{}, fmt.Errorf("%w: length must be greater than zero", store.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if length.GreaterThan(c.availableLocked(item, "")) {
		return domain.CartLine{}, fmt.Errorf("%w: only %sm of %s available", store.ErrInsufficientStock, c.availableLocked(item, "").String(), item.Name)
	}
	line := newLine(item, selectedPrice, length)
	c.lines = append(c.lines, line)
	return line, nil
}

// UpdateQuantity replaces a line's quantity after validating it against the
// stock still available once the other lines are counted. A rejected update
// leaves the line untouched.
func (c *Cart) UpdateQuantity(item *domain.InventoryItem, lineID string, quantity decimal.Decimal) (domain.CartLine, error) {
	if !quantity.IsPositive() {
		return domain.CartLine{}, fmt.Errorf("%w: quantity must be greater than zero", store.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var line *domain.CartLine
	for i := range c.lines {
		if c.lines[i].LineID == lineID {
			line = &c.lines[i]
			break
		}
	}
	if line == nil {
		return domain.CartLine{}, fmt.Errorf("%w: cart line", store.ErrNotFound)
	}
	if line.ItemID != item.ID {
		return domain.CartLine{}, fmt.Errorf("%w: line does not belong to item", store.ErrValidation)
	}
	if line.MeasureType == domain.MeasureStandard && !quantity.IsInteger() {
		return domain.CartLine{}, fmt.Errorf("%w: quantity must be a whole number", store.ErrValidation)
	}
	if quantity.GreaterThan(c.availableLocked(item, lineID)) {
		return domain.CartLine{}, fmt.Errorf("%w: %s", store.ErrInsufficientStock, item.Name)
	}
	line.Quantity = quantity
	return *line, nil
}

func (c *Cart) Remove(lineID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].LineID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: cart line", store.ErrNotFound)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the cart in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is the exact decimal sum of selectedPrice x quantity over all lines.
// Rounding to two decimals happens only at display time.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (c *Cart) View() domain.CartView {
	return domain.CartView{Lines: c.Lines(), Total: c.Total()}
}

func newLine(item *domain.InventoryItem, selectedPrice, quantity decimal.Decimal) domain.CartLine {
	return domain.CartLine{
		LineID:        xid.New("line"),
		ItemID:        item.ID,
		Name:          item.Name,
		Brand:         item.Brand,
		Model:         item.Model,
		MeasureType:   item.MeasureType,
		SelectedPrice: selectedPrice,
		Quantity:      quantity,
	}
}

func validatePrice(item *domain.InventoryItem, price decimal.Decimal) error {
	if price.LessThan(item.MinPrice) || price.GreaterThan(item.MaxPrice) {
		return fmt.Errorf("%w: price %s outside [%s, %s] for %s",
			store.ErrValidation, price.String(), item.MinPrice.String(), item.MaxPrice.String(), item.Name)
	}
	return nil
}

// Manager hands out one cart per authenticated session owner.
type Manager struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewManager() *Manager {
	return &Manager{carts: map[string]*Cart{}}
}

func (m *Manager) Get(owner string) *Cart {
	owner = strings.ToLower(strings.TrimSpace(owner))
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[owner]
	if !ok {
		c = &Cart{}
		m.carts[owner] = c
	}
	return c
}

func (m *Manager) Drop(owner string) {
	owner = strings.ToLower(strings.TrimSpace(owner))
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, owner)
}
