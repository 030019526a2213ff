package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Fallback consults the primary catalog first and serves the static catalog
// when the primary is unreachable. Not-found answers are authoritative and
// do not trigger the fallback.
type Fallback struct {
	primary Service
	static  Service
	log     *zap.Logger
}

// NewFallback wraps primary with the static backup.
func NewFallback(primary, static Service, log *zap.Logger) *Fallback {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fallback{primary: primary, static: static, log: log}
}

// ListAll lists every product, falling back on error.
func (f *Fallback) ListAll(ctx context.Context) ([]Product, error) {
	products, err := f.primary.ListAll(ctx)
	if err != nil {
		f.log.Warn("catalog: primary list failed, serving static catalog", zap.Error(err))
		return f.static.ListAll(ctx)
	}
	return products, nil
}

// List pages the catalog, falling back on error.
func (f *Fallback) List(ctx context.Context, q Query) (*Page, error) {
	page, err := f.primary.List(ctx, q)
	if err != nil {
		f.log.Warn("catalog: primary page failed, serving static catalog", zap.Error(err))
		return f.static.List(ctx, q)
	}
	return page, nil
}

// Get fetches a product, falling back on error. A primary not-found is
// returned as-is so the static catalog cannot resurrect deleted products.
func (f *Fallback) Get(ctx context.Context, id int64) (*Product, error) {
	product, err := f.primary.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		f.log.Warn("catalog: primary get failed, serving static catalog", zap.Int64("product_id", id), zap.Error(err))
		return f.static.Get(ctx, id)
	}
	return product, nil
}

// ByCategory lists a category, falling back on error.
func (f *Fallback) ByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	products, err := f.primary.ByCategory(ctx, categoryID)
	if err != nil {
		f.log.Warn("catalog: primary category list failed, serving static catalog", zap.Int64("category_id", categoryID), zap.Error(err))
		return f.static.ByCategory(ctx, categoryID)
	}
	return products, nil
}

// Categories lists the categories, falling back on error.
func (f *Fallback) Categories(ctx context.Context) ([]Category, error) {
	categories, err := f.primary.Categories(ctx)
	if err != nil {
		f.log.Warn("catalog: primary categories failed, serving static catalog", zap.Error(err))
		return f.static.Categories(ctx)
	}
	return categories, nil
}
