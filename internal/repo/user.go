package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/skorin/webshop/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return translateErr(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureDefaultShippingAddress creates the placeholder address a fresh account
// starts with, unless the user already has one.
func (r *GormRepo) EnsureDefaultShippingAddress(ctx context.Context, userID uint) error {
	var existing models.ShippingAddress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	addr := models.ShippingAddress{
		FullName:         "Noname",
		Email:            "email@example.com",
		StreetAddress:    "fill address",
		ApartmentAddress: "fill address",
		UserID:           &userID,
	}
	return r.DB.WithContext(ctx).Create(&addr).Error
}

func (r *GormRepo) GetShippingAddressByUser(ctx context.Context, userID uint) (*models.ShippingAddress, error) {
	var addr models.ShippingAddress
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}
