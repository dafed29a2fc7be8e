package bot

import (
	"context"
	"fmt"

	"github.com/skorin/webshop/internal/logging"
	"github.com/skorin/webshop/internal/util"
)

const adminMenu = "Commands:\n" +
	"List goods - show the catalog\n" +
	"Change - edit a product\n" +
	"Delete - remove a product\n" +
	"Add - create a product\n" +
	"Back - return to the main menu"

// AdminBot drives the catalog-management conversation against the admin
// REST endpoints. Same shape as ShopBot: transport-free, replies out.
type AdminBot struct {
	API *APIClient
	// DefaultCategoryID is assigned to products created from chat; the bot
	// flow has no category picker.
	DefaultCategoryID uint
	Convs             *Conversations
}

func NewAdminBot(api *APIClient, defaultCategoryID uint) *AdminBot {
	return &AdminBot{API: api, DefaultCategoryID: defaultCategoryID, Convs: NewConversations()}
}

func (b *AdminBot) Handle(ctx context.Context, chatID int64, text string) []string {
	conv := b.Convs.Get(chatID)

	switch text {
	case "/start":
		conv.State = StateIdle
		return []string{"Admin panel.\n" + adminMenu}
	case "Back":
		conv.State = StateIdle
		return []string{"Returning to the main menu.\n" + adminMenu}
	case "List goods":
		return b.listGoods(ctx, conv)
	case "Change":
		return b.startEdit(ctx, conv)
	case "Delete":
		return b.startDelete(ctx, conv)
	case "Add":
		conv.State = StateAwaitingNewProduct
		return []string{"Enter product details (e.g., title=Chanel price=999)."}
	}

	switch conv.State {
	case StateAwaitingEditName:
		return b.readEditName(conv, text)
	case StateAwaitingEditField:
		return b.readEditField(ctx, conv, text)
	case StateAwaitingDeleteName:
		return b.readDeleteName(ctx, conv, text)
	case StateAwaitingNewProduct:
		return b.readNewProduct(ctx, conv, text)
	default:
		return []string{"I didn't understand that.\n" + adminMenu}
	}
}

func (b *AdminBot) listGoods(ctx context.Context, conv *Conversation) []string {
	products, err := b.API.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list products failed", "error", err)
		return []string{"Failed to fetch the product catalog. Please try again later."}
	}
	conv.Catalog = catalogMap(products)
	return []string{formatCatalog(products)}
}

func (b *AdminBot) startEdit(ctx context.Context, conv *Conversation) []string {
	var replies []string
	if len(conv.Catalog) == 0 {
		replies = b.listGoods(ctx, conv)
		if len(conv.Catalog) == 0 {
			return replies
		}
	}
	conv.State = StateAwaitingEditName
	return append(replies, "Enter the name of the product you want to edit:")
}

func (b *AdminBot) startDelete(ctx context.Context, conv *Conversation) []string {
	var replies []string
	if len(conv.Catalog) == 0 {
		replies = b.listGoods(ctx, conv)
		if len(conv.Catalog) == 0 {
			return replies
		}
	}
	conv.State = StateAwaitingDeleteName
	return append(replies, "Enter the name of the product you want to delete:")
}

func (b *AdminBot) readEditName(conv *Conversation, text string) []string {
	p, ok := conv.Catalog[text]
	if !ok {
		return []string{fmt.Sprintf("Product %q not found. Type 'List goods' to refresh the catalog.", text)}
	}
	conv.EditProductID = p.ID
	conv.State = StateAwaitingEditField
	return []string{`Specify the field to update (e.g., title="Nike Air Max").`}
}

func (b *AdminBot) readEditField(ctx context.Context, conv *Conversation, text string) []string {
	field, value, err := parseFieldValue(text)
	if err != nil {
		return []string{err.Error()}
	}
	if err := b.API.UpdateProduct(ctx, conv.EditProductID, field, value); err != nil {
		logging.FromContext(ctx).Error("update product failed", "product_id", conv.EditProductID, "error", err)
		return []string{"An error occurred while updating the product."}
	}
	conv.State = StateIdle
	conv.EditProductID = 0
	return []string{"Product updated successfully."}
}

func (b *AdminBot) readDeleteName(ctx context.Context, conv *Conversation, text string) []string {
	p, ok := conv.Catalog[text]
	if !ok {
		return []string{fmt.Sprintf("Product %q not found. Type 'List goods' to refresh the catalog.", text)}
	}
	if err := b.API.DeleteProduct(ctx, p.ID); err != nil {
		logging.FromContext(ctx).Error("delete product failed", "product_id", p.ID, "error", err)
		return []string{"An error occurred while deleting the product."}
	}
	delete(conv.Catalog, text)
	conv.State = StateIdle
	return []string{"Product deleted successfully."}
}

func (b *AdminBot) readNewProduct(ctx context.Context, conv *Conversation, text string) []string {
	title, price, err := parseNewProduct(text)
	if err != nil {
		return []string{err.Error()}
	}
	if err := b.API.CreateProduct(ctx, title, util.Slugify(title), price, b.DefaultCategoryID); err != nil {
		logging.FromContext(ctx).Error("create product failed", "title", title, "error", err)
		return []string{"An error occurred while adding the product."}
	}
	conv.State = StateIdle
	return []string{"New product added successfully."}
}
