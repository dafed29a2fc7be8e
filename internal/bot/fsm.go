package bot

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// State is the per-chat conversation state. Menu commands reset it; free
// text is interpreted by the handler registered for the current state.
type State int

const (
	StateIdle State = iota

	// shop bot
	StateAwaitingOrderLines
	StateAwaitingAddress

	// admin bot
	StateAwaitingEditName
	StateAwaitingEditField
	StateAwaitingDeleteName
	StateAwaitingNewProduct
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingOrderLines:
		return "awaiting_order_lines"
	case StateAwaitingAddress:
		return "awaiting_address"
	case StateAwaitingEditName:
		return "awaiting_edit_name"
	case StateAwaitingEditField:
		return "awaiting_edit_field"
	case StateAwaitingDeleteName:
		return "awaiting_delete_name"
	case StateAwaitingNewProduct:
		return "awaiting_new_product"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Conversation is everything a chat accumulates between messages: the state,
// the catalog snapshot from the last listing (title → product, prices frozen
// at listing time) and whatever the flow in progress has collected so far.
type Conversation struct {
	State   State
	Catalog map[string]Product

	Lines         []OrderLine
	EditProductID uint
}

// Conversations is the chat-keyed state store shared by the update loop.
type Conversations struct {
	mu    sync.Mutex
	chats map[int64]*Conversation
}

func NewConversations() *Conversations {
	return &Conversations{chats: make(map[int64]*Conversation)}
}

func (c *Conversations) Get(chatID int64) *Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv, ok := c.chats[chatID]
	if !ok {
		conv = &Conversation{}
		c.chats[chatID] = conv
	}
	return conv
}

func (c *Conversations) Reset(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.chats, chatID)
}

// parseOrderLine parses "Title - 2" or "Title - 2 pcs".
func parseOrderLine(text string) (title string, qty int, err error) {
	name, rest, ok := strings.Cut(text, " - ")
	if !ok {
		return "", 0, fmt.Errorf("expected 'Product - quantity', got %q", text)
	}
	qtyWord, _, _ := strings.Cut(strings.TrimSpace(rest), " ")
	qty, err = strconv.Atoi(qtyWord)
	if err != nil || qty <= 0 {
		return "", 0, fmt.Errorf("quantity must be a positive number, got %q", rest)
	}
	return strings.TrimSpace(name), qty, nil
}

// parseAddress parses "full name, email, street, apartment[, city[, country[, zip]]]".
func parseAddress(text string) (Shipping, error) {
	parts := strings.Split(text, ", ")
	if len(parts) < 4 {
		return Shipping{}, fmt.Errorf("expected at least 'name, email, street, apartment', got %d fields", len(parts))
	}
	addr := Shipping{
		FullName:         strings.TrimSpace(parts[0]),
		Email:            strings.TrimSpace(parts[1]),
		StreetAddress:    strings.TrimSpace(parts[2]),
		ApartmentAddress: strings.TrimSpace(parts[3]),
	}
	if len(parts) > 4 {
		addr.City = strings.TrimSpace(parts[4])
	}
	if len(parts) > 5 {
		addr.Country = strings.TrimSpace(parts[5])
	}
	if len(parts) > 6 {
		addr.Zip = strings.TrimSpace(parts[6])
	}
	return addr, nil
}

// parseFieldValue parses `field=value`; quotes around the value are stripped.
func parseFieldValue(text string) (field, value string, err error) {
	field, value, ok := strings.Cut(text, "=")
	if !ok {
		return "", "", fmt.Errorf("expected 'field=value', got %q", text)
	}
	field = strings.TrimSpace(field)
	value = strings.Trim(strings.TrimSpace(value), `"`)
	if field == "" || value == "" {
		return "", "", fmt.Errorf("expected 'field=value', got %q", text)
	}
	return field, value, nil
}

// parseNewProduct parses "title=Chanel price=999".
func parseNewProduct(text string) (title string, price decimal.Decimal, err error) {
	for _, tok := range strings.Fields(text) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		switch k {
		case "title":
			title = v
		case "price":
			price, err = decimal.NewFromString(v)
			if err != nil {
				return "", decimal.Zero, fmt.Errorf("bad price %q", v)
			}
		}
	}
	if title == "" || price.IsZero() {
		return "", decimal.Zero, fmt.Errorf("expected 'title=Name price=99', got %q", text)
	}
	return title, price, nil
}

func formatCatalog(products []Product) string {
	var b strings.Builder
	b.WriteString("Our product catalog:\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s - %s USD\n", i+1, p.Title, p.Price.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

func catalogMap(products []Product) map[string]Product {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		m[p.Title] = p
	}
	return m
}
