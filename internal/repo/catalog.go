package repo

import (
	"context"

	"github.com/skorin/webshop/internal/models"
)

func (r *GormRepo) ListAvailableProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("is_available = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// AvailableProductsByIDs is the catalog side of the cart join: only currently
// available products come back, vanished ones are silently absent.
func (r *GormRepo) AvailableProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Where("is_available = ? AND id IN ?", true, ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindProductByTitle returns nil without error when no product matches.
func (r *GormRepo) FindProductByTitle(ctx context.Context, title string) (*models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("title = ?", title).Limit(1).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return translateErr(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, fields map[string]any) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&p).Updates(fields).Error; err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return translateErr(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}
