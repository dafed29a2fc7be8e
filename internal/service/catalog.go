package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skorin/webshop/internal/events"
	"github.com/skorin/webshop/internal/logging"
	"github.com/skorin/webshop/internal/models"
	"github.com/skorin/webshop/internal/repo"
	"github.com/skorin/webshop/internal/search"
)

type CatalogService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Indexer *search.Indexer
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func (s *CatalogService) ListProducts(ctx context.Context, offset, limit, page int) ([]models.Product, PageMeta, error) {
	items, total, err := s.Repo.ListAvailableProducts(ctx, offset, limit)
	if err != nil {
		return nil, PageMeta{}, err
	}
	meta := PageMeta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}
	return items, meta, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, err
}

type CreateProductInput struct {
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	IsAvailable bool            `json:"is_available"`
	CategoryID  uint            `json:"category_id"`
	Discount    int             `json:"discount"`
}

func (in CreateProductInput) validate() FieldErrors {
	errs := FieldErrors{}
	if in.Title == "" {
		errs["title"] = "required"
	}
	if in.Price.IsNegative() {
		errs["price"] = "must be >= 0"
	}
	if in.Discount < 0 || in.Discount > 100 {
		errs["discount"] = "must be within [0, 100]"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if errs := in.validate(); errs != nil {
		return nil, errs
	}

	p := &models.Product{
		Title:       in.Title,
		Slug:        in.Slug,
		Brand:       in.Brand,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		IsAvailable: in.IsAvailable,
		CategoryID:  in.CategoryID,
		Discount:    in.Discount,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: slug already exists", ErrConflict)
		}
		return nil, err
	}

	s.afterWrite(ctx, p, "product_created")
	return p, nil
}

// allowed PATCH fields; anything else in the payload is ignored.
var patchable = map[string]bool{
	"title": true, "brand": true, "description": true, "price": true,
	"image": true, "is_available": true, "discount": true, "category_id": true,
	"slug": true,
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, fields map[string]any) (*models.Product, error) {
	upd := make(map[string]any, len(fields))
	for k, v := range fields {
		if patchable[k] {
			upd[k] = v
		}
	}
	if len(upd) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields", ErrValidation)
	}

	p, err := s.Repo.UpdateProduct(ctx, id, upd)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, fmt.Errorf("%w: slug already exists", ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, p, "product_updated")
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.Repo.GetProduct(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	} else if err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	l := logging.FromContext(ctx)
	if err := s.Events.Publish(ctx, events.TopicProductEvents, fmt.Sprint(id), map[string]any{
		"type": "product_deleted", "product_id": id,
	}); err != nil {
		l.Error("publish product event failed", "error", err)
	}
	if err := s.Indexer.DeleteProduct(ctx, id); err != nil {
		l.Error("deindex product failed", "error", err)
	}
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, p *models.Product, eventType string) {
	l := logging.FromContext(ctx)
	if err := s.Events.Publish(ctx, events.TopicProductEvents, fmt.Sprint(p.ID), map[string]any{
		"type": eventType, "product_id": p.ID, "title": p.Title, "price": p.Price,
	}); err != nil {
		l.Error("publish product event failed", "error", err)
	}
	if err := s.Indexer.IndexProduct(ctx, p); err != nil {
		l.Error("index product failed", "error", err)
	}
}
