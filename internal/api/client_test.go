package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/backoffice/internal/catalog"
	"github.com/kingrea/backoffice/internal/stubapi"
)

func newStubClient(t *testing.T, store *stubapi.Store, perPage int) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(stubapi.NewRouter(store, perPage, nil))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://example.com", "://nope"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
	c, err := New("http://example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/colors/3", c.endpoint(idPath("/colors", 3), nil))
}

func TestColorsRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newStubClient(t, stubapi.NewStore(), 0)
	colors := c.Colors()

	created, err := colors.Create(ctx, catalog.NewColorDraft("  Red "))
	require.NoError(t, err)
	assert.Equal(t, "Red", created.Name)

	list, err := colors.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	updated, err := colors.Update(ctx, created.ID, catalog.NewColorDraft("Crimson"))
	require.NoError(t, err)
	assert.Equal(t, "Crimson", updated.Name)

	got, err := colors.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, colors.Delete(ctx, created.ID))
	_, err = colors.Get(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Color not found.", Message(err))
}

func TestEmptyListIsNotNil(t *testing.T) {
	c := newStubClient(t, stubapi.NewStore(), 0)
	sizes, err := c.Sizes().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sizes)
	assert.Empty(t, sizes)
}

func TestValidationErrorCarriesServerMessage(t *testing.T) {
	c := newStubClient(t, stubapi.NewStore(), 0)
	_, err := c.Sizes().Create(context.Background(), catalog.SizeDraft{Name: "X"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "The name field must be at least 2 characters.", Message(err))

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Fields, "name")
}

func TestVariantPages(t *testing.T) {
	ctx := context.Background()
	store := stubapi.NewStore()
	red := store.CreateColor("Red")
	for _, name := range []string{"S", "M", "L"} {
		size := store.CreateSize(name)
		_, err := store.CreateVariant(5, catalog.VariantDraft{ColorID: red.ID, SizeID: size.ID, Price: decimal.NewFromInt(100000)})
		require.NoError(t, err)
	}
	c := newStubClient(t, store, 2)

	first, err := c.Variants().List(ctx, 5, 1)
	require.NoError(t, err)
	assert.Len(t, first.Items, 2)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrev())

	second, err := c.Variants().List(ctx, 5, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "Red / L", second.Items[0].Label())
	assert.True(t, second.Items[0].Price.Equal(decimal.NewFromInt(100000)))
	assert.Nil(t, second.Items[0].SalePrice)
	assert.False(t, second.HasNext())
}

func TestVariantMutations(t *testing.T) {
	ctx := context.Background()
	c := newStubClient(t, stubapi.NewSeededStore(), 0)
	variants := c.Variants()

	sale := decimal.NewFromInt(90000)
	created, err := variants.Create(ctx, 1, catalog.VariantDraft{ColorID: 3, SizeID: 6, Price: decimal.NewFromInt(100000), SalePrice: &sale})
	require.NoError(t, err)
	assert.Equal(t, "White / XL", created.Label())
	require.NotNil(t, created.SalePrice)
	assert.True(t, created.SalePrice.Equal(sale))

	draft := created.Draft()
	draft.SalePrice = nil
	updated, err := variants.Update(ctx, created.ID, draft)
	require.NoError(t, err)
	assert.Nil(t, updated.SalePrice)

	_, err = variants.Create(ctx, 1, catalog.VariantDraft{ColorID: 3, SizeID: 6, Price: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	require.NoError(t, variants.Delete(ctx, created.ID))
	err = variants.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRequestShape(t *testing.T) {
	var (
		gotMethod, gotPath, gotBody string
		gotHeaders                  http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotMethod, gotPath, gotBody, gotHeaders = r.Method, r.URL.RequestURI(), string(data), r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":9,"product_id":4,"color_id":2,"size_id":3,"price":"100000.00","sale_price":null}}`)
	}))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithHTTPClient(srv.Client()), WithToken(" secret "))
	require.NoError(t, err)

	v, err := c.Variants().Create(context.Background(), 4, catalog.VariantDraft{ColorID: 2, SizeID: 3, Price: decimal.NewFromInt(100000)})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/products/4/variants", gotPath)
	assert.JSONEq(t, `{"color_id":2,"size_id":3,"price":100000,"sale_price":null}`, gotBody)
	assert.Equal(t, "Bearer secret", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.NotEmpty(t, gotHeaders.Get("X-Request-ID"))

	assert.EqualValues(t, 9, v.ID)
	assert.True(t, v.Price.Equal(decimal.NewFromInt(100000)))
}

func TestErrorBodyFallbacks(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message", http.StatusConflict, `{"message":"Color is used by existing variants."}`, "Color is used by existing variants."},
		{"error key", http.StatusBadRequest, `{"error":"bad input"}`, "bad input"},
		{"fields only", http.StatusUnprocessableEntity, `{"errors":{"size_id":["Size is invalid"],"color_id":["Color is invalid"]}}`, "Color is invalid"},
		{"empty", http.StatusInternalServerError, ``, "Internal Server Error"},
		{"not json", http.StatusBadGateway, `<html>`, "Bad Gateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			t.Cleanup(srv.Close)
			c, err := New(srv.URL, WithHTTPClient(srv.Client()))
			require.NoError(t, err)
			_, err = c.Colors().List(context.Background())
			require.Error(t, err)
			assert.Equal(t, tc.want, Message(err))
		})
	}
}
