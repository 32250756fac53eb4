package stubapi

import (
	"sort"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kingrea/backoffice/internal/catalog"
)

var (
	errMissing  = errors.New("not found")
	errInUse    = errors.New("in use")
	errConflict = errors.New("conflict")
)

// Store is the in-memory catalog behind the stub API. It is safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	colors   map[int64]string
	sizes    map[int64]string
	variants map[int64]catalog.Variant
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		colors:   map[int64]string{},
		sizes:    map[int64]string{},
		variants: map[int64]catalog.Variant{},
	}
}

// NewSeededStore returns a store holding a few colors, sizes and variants for
// product 1.
func NewSeededStore() *Store {
	s := NewStore()
	red := s.CreateColor("Red")
	black := s.CreateColor("Black")
	s.CreateColor("White")
	m := s.CreateSize("M")
	l := s.CreateSize("L")
	s.CreateSize("XL")
	sale := decimal.NewFromInt(199000)
	_, _ = s.CreateVariant(1, catalog.VariantDraft{ColorID: red.ID, SizeID: m.ID, Price: decimal.NewFromInt(249000), SalePrice: &sale})
	_, _ = s.CreateVariant(1, catalog.VariantDraft{ColorID: red.ID, SizeID: l.ID, Price: decimal.NewFromInt(249000)})
	_, _ = s.CreateVariant(1, catalog.VariantDraft{ColorID: black.ID, SizeID: m.ID, Price: decimal.NewFromInt(259000)})
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Colors returns every color ordered by id.
func (s *Store) Colors() []catalog.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Color, 0, len(s.colors))
	for _, id := range sortedIDs(s.colors) {
		out = append(out, catalog.Color{ID: id, Name: s.colors[id]})
	}
	return out
}

// Color returns one color.
func (s *Store) Color(id int64) (catalog.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.colors[id]
	if !ok {
		return catalog.Color{}, errMissing
	}
	return catalog.Color{ID: id, Name: name}, nil
}

// CreateColor adds a color.
func (s *Store) CreateColor(name string) catalog.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.colors[id] = name
	return catalog.Color{ID: id, Name: name}
}

// UpdateColor renames a color.
func (s *Store) UpdateColor(id int64, name string) (catalog.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.colors[id]; !ok {
		return catalog.Color{}, errMissing
	}
	s.colors[id] = name
	return catalog.Color{ID: id, Name: name}, nil
}

// DeleteColor removes a color that no variant references.
func (s *Store) DeleteColor(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.colors[id]; !ok {
		return errMissing
	}
	for _, v := range s.variants {
		if v.ColorID == id {
			return errInUse
		}
	}
	delete(s.colors, id)
	return nil
}

// Sizes returns every size ordered by id.
func (s *Store) Sizes() []catalog.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Size, 0, len(s.sizes))
	for _, id := range sortedIDs(s.sizes) {
		out = append(out, catalog.Size{ID: id, Name: s.sizes[id]})
	}
	return out
}

// Size returns one size.
func (s *Store) Size(id int64) (catalog.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.sizes[id]
	if !ok {
		return catalog.Size{}, errMissing
	}
	return catalog.Size{ID: id, Name: name}, nil
}

// CreateSize adds a size.
func (s *Store) CreateSize(name string) catalog.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.sizes[id] = name
	return catalog.Size{ID: id, Name: name}
}

// UpdateSize renames a size.
func (s *Store) UpdateSize(id int64, name string) (catalog.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sizes[id]; !ok {
		return catalog.Size{}, errMissing
	}
	s.sizes[id] = name
	return catalog.Size{ID: id, Name: name}, nil
}

// DeleteSize removes a size that no variant references.
func (s *Store) DeleteSize(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sizes[id]; !ok {
		return errMissing
	}
	for _, v := range s.variants {
		if v.SizeID == id {
			return errInUse
		}
	}
	delete(s.sizes, id)
	return nil
}

// Variants returns one page of a product's variants ordered by id, the
// normalized page number and the last page number.
func (s *Store) Variants(productID int64, page, perPage int) ([]catalog.Variant, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []catalog.Variant
	for _, v := range s.variants {
		if v.ProductID == productID {
			all = append(all, s.hydrate(v))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if perPage <= 0 {
		perPage = 10
	}
	lastPage := (len(all) + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(all) {
		return []catalog.Variant{}, page, lastPage
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], page, lastPage
}

// CreateVariant adds a variant. The color and size must exist and the pair
// must be unused for the product.
func (s *Store) CreateVariant(productID int64, d catalog.VariantDraft) (catalog.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRefs(d); err != nil {
		return catalog.Variant{}, err
	}
	for _, v := range s.variants {
		if v.ProductID == productID && v.ColorID == d.ColorID && v.SizeID == d.SizeID {
			return catalog.Variant{}, errConflict
		}
	}
	v := catalog.Variant{
		ID:        s.id(),
		ProductID: productID,
		ColorID:   d.ColorID,
		SizeID:    d.SizeID,
		Price:     d.Price,
		SalePrice: d.SalePrice,
	}
	s.variants[v.ID] = v
	return s.hydrate(v), nil
}

// UpdateVariant changes a variant's prices. The color/size pair cannot change.
func (s *Store) UpdateVariant(id int64, d catalog.VariantDraft) (catalog.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[id]
	if !ok {
		return catalog.Variant{}, errMissing
	}
	if v.ColorID != d.ColorID || v.SizeID != d.SizeID {
		return catalog.Variant{}, errConflict
	}
	v.Price = d.Price
	v.SalePrice = d.SalePrice
	s.variants[id] = v
	return s.hydrate(v), nil
}

// DeleteVariant removes a variant.
func (s *Store) DeleteVariant(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.variants[id]; !ok {
		return errMissing
	}
	delete(s.variants, id)
	return nil
}

var errUnknownRef = errors.New("unknown reference")

func (s *Store) checkRefs(d catalog.VariantDraft) error {
	if _, ok := s.colors[d.ColorID]; !ok {
		return errors.Wrap(errUnknownRef, "color_id")
	}
	if _, ok := s.sizes[d.SizeID]; !ok {
		return errors.Wrap(errUnknownRef, "size_id")
	}
	return nil
}

func (s *Store) hydrate(v catalog.Variant) catalog.Variant {
	if name, ok := s.colors[v.ColorID]; ok {
		v.Color = &catalog.Color{ID: v.ColorID, Name: name}
	}
	if name, ok := s.sizes[v.SizeID]; ok {
		v.Size = &catalog.Size{ID: v.SizeID, Name: name}
	}
	return v
}

func sortedIDs(m map[int64]string) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
