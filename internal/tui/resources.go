package tui

import (
	"context"

	"github.com/kingrea/backoffice/internal/api"
	"github.com/kingrea/backoffice/internal/catalog"
	"github.com/kingrea/backoffice/internal/query"
)

// namedRecord is a record identified by id and shown by a single name.
type namedRecord interface {
	RecordID() int64
	Label() string
}

// namedResource binds one flat resource (colors or sizes) to its cache keys
// and client calls so the list and form views can stay generic.
type namedResource[T namedRecord, D any] struct {
	singular string
	plural   string
	name     resourceName
	client   *api.Resource[T, D]
	newDraft func(name string) D
}

func colorResource(c *api.Client) namedResource[catalog.Color, catalog.ColorDraft] {
	return namedResource[catalog.Color, catalog.ColorDraft]{
		singular: "Color",
		plural:   "Colors",
		name:     resColors,
		client:   c.Colors(),
		newDraft: catalog.NewColorDraft,
	}
}

func sizeResource(c *api.Client) namedResource[catalog.Size, catalog.SizeDraft] {
	return namedResource[catalog.Size, catalog.SizeDraft]{
		singular: "Size",
		plural:   "Sizes",
		name:     resSizes,
		client:   c.Sizes(),
		newDraft: catalog.NewSizeDraft,
	}
}

// listKey is the cache key of the whole collection, e.g. ["colors"].
func (r namedResource[T, D]) listKey() query.Key {
	return query.NewKey(string(r.name))
}

// recordKey is the cache key of one record, e.g. ["color", 5].
func (r namedResource[T, D]) recordKey(id int64) query.Key {
	return query.NewKey(r.recordPrefix(), id)
}

func (r namedResource[T, D]) recordPrefix() string {
	switch r.name {
	case resColors:
		return "color"
	case resSizes:
		return "size"
	default:
		return string(r.name)
	}
}

func (r namedResource[T, D]) list(svc *services) ([]T, error) {
	return query.Fetch(svc.ctx, svc.cache, r.listKey(), r.client.List)
}

func (r namedResource[T, D]) get(svc *services, id int64) (T, error) {
	return query.Fetch(svc.ctx, svc.cache, r.recordKey(id), func(ctx context.Context) (T, error) {
		return r.client.Get(ctx, id)
	})
}

func (r namedResource[T, D]) create(svc *services, draft D) (T, error) {
	return query.Mutate(svc.ctx, svc.cache, func(ctx context.Context) (T, error) {
		return r.client.Create(ctx, draft)
	}, r.listKey())
}

func (r namedResource[T, D]) update(svc *services, id int64, draft D) (T, error) {
	return query.Mutate(svc.ctx, svc.cache, func(ctx context.Context) (T, error) {
		return r.client.Update(ctx, id, draft)
	}, r.listKey(), r.recordKey(id))
}

func (r namedResource[T, D]) remove(svc *services, id int64) error {
	_, err := query.Mutate(svc.ctx, svc.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.client.Delete(ctx, id)
	}, r.listKey(), r.recordKey(id))
	return err
}

// Variant keys: ["product-variants", productID, page] per page and
// ["variant", id] per record.
func variantPagesKey(productID int64) query.Key {
	return query.NewKey("product-variants", productID)
}

func variantPageKey(productID int64, page int) query.Key {
	return query.NewKey("product-variants", productID, page)
}

func variantKey(id int64) query.Key {
	return query.NewKey("variant", id)
}
