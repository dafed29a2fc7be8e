package bot

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/skorin/webshop/internal/logging"
)

const shopMenu = "Commands:\n" +
	"Catalog - show available products\n" +
	"Make Order - order products from the catalog\n" +
	"Back - return to the main menu"

// ShopBot is the customer-facing conversation engine. It is transport-free:
// the Telegram update loop feeds it (chatID, text) and sends back whatever
// replies it returns, so the whole flow is testable without Telegram.
type ShopBot struct {
	API   *APIClient
	Convs *Conversations
}

func NewShopBot(api *APIClient) *ShopBot {
	return &ShopBot{API: api, Convs: NewConversations()}
}

// Handle advances the chat's conversation by one message. Menu commands are
// handled in any state and reset the flow in progress.
func (b *ShopBot) Handle(ctx context.Context, chatID int64, text string) []string {
	conv := b.Convs.Get(chatID)

	switch text {
	case "/start":
		conv.State = StateIdle
		return []string{"Welcome to the shop!\n" + shopMenu}
	case "Back":
		conv.State = StateIdle
		conv.Lines = nil
		return []string{"Returning to the main menu.\n" + shopMenu}
	case "Catalog":
		return b.showCatalog(ctx, conv)
	case "Make Order":
		return b.startOrder(conv)
	}

	switch conv.State {
	case StateAwaitingOrderLines:
		return b.readOrderLines(conv, text)
	case StateAwaitingAddress:
		return b.readAddress(ctx, chatID, conv, text)
	default:
		return []string{"I didn't understand that.\n" + shopMenu}
	}
}

func (b *ShopBot) showCatalog(ctx context.Context, conv *Conversation) []string {
	products, err := b.API.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list products failed", "error", err)
		return []string{"Failed to fetch the product catalog. Please try again later."}
	}
	conv.Catalog = catalogMap(products)
	return []string{formatCatalog(products)}
}

func (b *ShopBot) startOrder(conv *Conversation) []string {
	if len(conv.Catalog) == 0 {
		return []string{"Please view the catalog first by typing 'Catalog'."}
	}
	conv.State = StateAwaitingOrderLines
	conv.Lines = nil
	return []string{"Please enter the product name and quantity (e.g., Product 1 - 2 pcs)"}
}

func (b *ShopBot) readOrderLines(conv *Conversation, text string) []string {
	title, qty, err := parseOrderLine(text)
	if err != nil {
		return []string{err.Error()}
	}
	p, ok := conv.Catalog[title]
	if !ok {
		return []string{fmt.Sprintf("Product %q is not in the catalog. Type 'Catalog' to see what's available.", title)}
	}

	conv.Lines = append(conv.Lines, OrderLine{
		ProductName: p.Title,
		Price:       p.Price,
		Quantity:    qty,
	})
	conv.State = StateAwaitingAddress

	total := decimal.Zero
	for _, l := range conv.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return []string{
		fmt.Sprintf("You ordered %d pcs of %s.\nTotal price: %s USD.", qty, p.Title, total.String()),
		"Please enter your shipping address (name, email, street, apartment).",
	}
}

func (b *ShopBot) readAddress(ctx context.Context, chatID int64, conv *Conversation, text string) []string {
	addr, err := parseAddress(text)
	if err != nil {
		return []string{err.Error()}
	}

	url, err := b.API.Checkout(ctx, addr, conv.Lines)
	if err != nil {
		logging.FromContext(ctx).Error("checkout failed", "chat_id", chatID, "error", err)
		conv.State = StateIdle
		conv.Lines = nil
		return []string{"Checkout failed. Please try again later."}
	}

	b.Convs.Reset(chatID)
	return []string{"Your order has been placed. Pay here:\n" + url}
}
