package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/skorin/webshop/internal/util"
	"gorm.io/gorm"
)

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                        json:"id"`
	Name      string    `gorm:"index;not null"                                  json:"name"`
	ParentID  *uint     `gorm:"uniqueIndex:idx_category_slug_parent"            json:"parent_id,omitempty"`
	Slug      string    `gorm:"uniqueIndex:idx_category_slug_parent;not null"   json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeSave(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = util.Slugify(c.Name)
	}
	return nil
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	Title       string          `gorm:"index;not null"                json:"title"`
	Slug        string          `gorm:"uniqueIndex;not null"          json:"slug"`
	Brand       string          `gorm:"not null"                      json:"brand"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(7,2);not null"    json:"price"`
	Image       string          `json:"image"`
	IsAvailable bool            `gorm:"default:false"                 json:"is_available"`
	CategoryID  uint            `gorm:"index;not null"                json:"category_id"`
	Discount    int             `gorm:"default:0;check:discount >= 0 AND discount <= 100" json:"discount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = util.Slugify(p.Title)
	}
	return nil
}

// DiscountedPrice applies the percent discount and rounds to two places.
func (p *Product) DiscountedPrice() decimal.Decimal {
	d := p.Price.Mul(decimal.NewFromInt(int64(p.Discount))).Div(decimal.NewFromInt(100))
	return p.Price.Sub(d).Round(2)
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"not null"                 json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type ShippingAddress struct {
	ID               uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName         string `gorm:"not null"                 json:"full_name"`
	Email            string `gorm:"not null"                 json:"email"`
	StreetAddress    string `gorm:"not null"                 json:"street_address"`
	ApartmentAddress string `gorm:"not null"                 json:"apartment_address"`
	City             string `json:"city"`
	Country          string `json:"country"`
	Zip              string `json:"zip"`
	UserID           *uint  `gorm:"index"                    json:"user_id,omitempty"`
}

type Order struct {
	ID                uint            `gorm:"primaryKey;autoIncrement"             json:"id"`
	UserID            *uint           `gorm:"index"                                json:"user_id,omitempty"`
	ShippingAddressID uint            `gorm:"not null"                             json:"shipping_address_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(9,2);not null;check:amount >= 0" json:"amount"`
	IsPaid            bool            `gorm:"default:false"                        json:"is_paid"`
	Discount          int             `gorm:"default:0;check:discount >= 0 AND discount <= 100" json:"discount"`
	CheckoutRef       string          `json:"checkout_ref,omitempty"`
	Items             []OrderItem     `gorm:"constraint:OnDelete:CASCADE"          json:"items,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"            json:"id"`
	OrderID   uint            `gorm:"index;not null"                      json:"order_id"`
	ProductID uint            `gorm:"not null"                            json:"product_id"`
	Price     decimal.Decimal `gorm:"type:decimal(9,2);not null"          json:"price"`
	Quantity  int             `gorm:"default:1;check:quantity > 0"        json:"quantity"`
	UserID    *uint           `json:"user_id,omitempty"`
}

// Cost is the snapshotted line total, price at add-time times quantity.
func (i *OrderItem) Cost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
