package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/skorin/webshop/internal/models"
)

// CreateCheckout writes the shipping address, the order and its items in one
// transaction. For an authenticated user any prior address is replaced
// (delete-then-create, unconditionally) inside the same transaction.
func (r *GormRepo) CreateCheckout(ctx context.Context, userID *uint, addr *models.ShippingAddress, order *models.Order, items []models.OrderItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if userID != nil {
			if err := tx.Where("user_id = ?", *userID).Delete(&models.ShippingAddress{}).Error; err != nil {
				return err
			}
			addr.UserID = userID
		}
		if err := tx.Create(addr).Error; err != nil {
			return err
		}

		order.ShippingAddressID = addr.ID
		order.UserID = userID
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			items[i].UserID = userID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uint, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) SetCheckoutRef(ctx context.Context, orderID uint, ref string) error {
	return r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("checkout_ref", ref).Error
}

// MarkOrderPaid flips the paid flag. The flip is idempotent: a second call for
// an already-paid order reports changed=false and no error.
func (r *GormRepo) MarkOrderPaid(ctx context.Context, orderID uint) (order *models.Order, changed bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.First(&o, orderID).Error; err != nil {
			return err
		}
		if !o.IsPaid {
			if err := tx.Model(&o).Update("is_paid", true).Error; err != nil {
				return err
			}
			o.IsPaid = true
			changed = true
		}
		order = &o
		return nil
	})
	return order, changed, err
}
