package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/kingrea/backoffice/internal/catalog"
)

// VariantResource manages product variants. Listing and creation are scoped
// to a product; update and delete address the variant directly.
type VariantResource struct {
	client *Client
}

type variantPageEnvelope struct {
	Data        []catalog.Variant `json:"data"`
	CurrentPage int               `json:"current_page"`
	LastPage    int               `json:"last_page"`
	Meta        *struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
	} `json:"meta"`
}

func productVariantsPath(productID int64) string {
	return "/products/" + strconv.FormatInt(productID, 10) + "/variants"
}

// List returns one page of the product's variants. page is 1-based.
func (r *VariantResource) List(ctx context.Context, productID int64, page int) (catalog.VariantPage, error) {
	if page < 1 {
		page = 1
	}
	path := productVariantsPath(productID)
	query := url.Values{"page": []string{strconv.Itoa(page)}}
	var out variantPageEnvelope
	if err := r.client.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return catalog.VariantPage{}, errors.Wrapf(err, "list %s", path)
	}
	result := catalog.VariantPage{
		Items:       out.Data,
		CurrentPage: out.CurrentPage,
		LastPage:    out.LastPage,
	}
	if out.Meta != nil && result.CurrentPage == 0 {
		result.CurrentPage = out.Meta.CurrentPage
		result.LastPage = out.Meta.LastPage
	}
	if result.Items == nil {
		result.Items = []catalog.Variant{}
	}
	if result.CurrentPage < 1 {
		result.CurrentPage = page
	}
	if result.LastPage < result.CurrentPage {
		result.LastPage = result.CurrentPage
	}
	return result, nil
}

// Create adds a variant to the product.
func (r *VariantResource) Create(ctx context.Context, productID int64, draft catalog.VariantDraft) (catalog.Variant, error) {
	path := productVariantsPath(productID)
	var out record[catalog.Variant]
	if err := r.client.do(ctx, http.MethodPost, path, nil, draft, &out); err != nil {
		return catalog.Variant{}, errors.Wrapf(err, "create %s", path)
	}
	return out.value, nil
}

// Update replaces variant id with draft. Callers keep the variant's original
// color and size in draft.
func (r *VariantResource) Update(ctx context.Context, id int64, draft catalog.VariantDraft) (catalog.Variant, error) {
	path := idPath("/variants", id)
	var out record[catalog.Variant]
	if err := r.client.do(ctx, http.MethodPut, path, nil, draft, &out); err != nil {
		return catalog.Variant{}, errors.Wrapf(err, "update %s", path)
	}
	return out.value, nil
}

// Delete removes variant id.
func (r *VariantResource) Delete(ctx context.Context, id int64) error {
	path := idPath("/variants", id)
	if err := r.client.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return errors.Wrapf(err, "delete %s", path)
	}
	return nil
}
