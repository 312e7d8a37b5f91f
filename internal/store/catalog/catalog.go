// Package catalog holds the product set shown to shoppers and the filters
// applied to it. The filtered view is recomputed inside every mutating call.
package catalog

import (
	"context"
	"strings"
	"sync"

	"click-collect/internal/apperr"

	"go.uber.org/zap"
)

type Product struct {
	ID          string
	StoreID     string
	StoreName   string
	Name        string
	Description string
	Category    string
	Gender      string
	Price       float64
	ImageURL    string
	Colors      []string
	Sizes       []string
}

// Filters holds the active constraints; a nil field imposes none.
type Filters struct {
	Category *string
	Gender   *string
	StoreID  *string
	Search   *string
	MinPrice *float64
	MaxPrice *float64
}

// Dimension names one field of Filters.
type Dimension int

const (
	DimCategory Dimension = iota
	DimGender
	DimStore
	DimSearch
	DimMinPrice
	DimMaxPrice
)

// Fetcher loads the full active product set.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]Product, error)
}

type Store struct {
	fetcher Fetcher
	log     *zap.Logger

	mu       sync.RWMutex
	products []Product
	filters  Filters
	view     []Product
	loading  bool
	err      error
	gen      uint64
}

func New(fetcher Fetcher, log *zap.Logger) *Store {
	return &Store{
		fetcher: fetcher,
		log:     log.With(zap.String("store", "catalog")),
	}
}

// SetFilters merges patch into the current filters. Non-nil patch fields
// replace the current value; a pointer to "" clears that dimension.
func (s *Store) SetFilters(patch Filters) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := merge(s.filters, patch)
	if err := validate(next); err != nil {
		return err
	}
	s.filters = next
	s.recomputeLocked()
	return nil
}

func (s *Store) RemoveFilter(dim Dimension) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch dim {
	case DimCategory:
		s.filters.Category = nil
	case DimGender:
		s.filters.Gender = nil
	case DimStore:
		s.filters.StoreID = nil
	case DimSearch:
		s.filters.Search = nil
	case DimMinPrice:
		s.filters.MinPrice = nil
	case DimMaxPrice:
		s.filters.MaxPrice = nil
	}
	s.recomputeLocked()
}

func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = Filters{}
	s.recomputeLocked()
}

// SearchProducts sets only the search text; "" clears it.
func (s *Store) SearchProducts(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters.Search = nonEmpty(&text)
	s.recomputeLocked()
}

// SetProducts replaces the product set and reapplies the current filters.
func (s *Store) SetProducts(products []Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.setProductsLocked(products)
}

// Fetch replaces the product set with the fetcher's. On failure the previous
// set stays. A fetch overtaken by a later Fetch or SetProducts is dropped.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	products, err := s.fetcher.FetchProducts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.log.Debug("Discarding stale product fetch")
		return nil
	}
	s.loading = false
	if err != nil {
		s.err = err
		s.log.Warn("Failed to fetch products", zap.Error(err))
		return err
	}

	s.setProductsLocked(products)
	s.log.Debug("Products fetched", zap.Int("count", len(products)))
	return nil
}

func (s *Store) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Product(nil), s.products...)
}

// Filtered is the products matching the current filters, in product order.
func (s *Store) Filtered() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Product(nil), s.view...)
}

// StoreIDs lists the stores with at least one product in the set.
func (s *Store) StoreIDs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]bool)
	for _, p := range s.products {
		ids[p.StoreID] = true
	}
	return ids
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) setProductsLocked(products []Product) {
	s.products = append([]Product(nil), products...)
	s.loading = false
	s.err = nil
	s.recomputeLocked()
}

func (s *Store) recomputeLocked() {
	view := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if s.filters.Match(p) {
			view = append(view, p)
		}
	}
	s.view = view
}

// Match reports whether p satisfies every set constraint.
func (f Filters) Match(p Product) bool {
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.Gender != nil && p.Gender != *f.Gender {
		return false
	}
	if f.StoreID != nil && p.StoreID != *f.StoreID {
		return false
	}
	if f.Search != nil {
		needle := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

func merge(cur, patch Filters) Filters {
	if patch.Category != nil {
		cur.Category = nonEmpty(patch.Category)
	}
	if patch.Gender != nil {
		cur.Gender = nonEmpty(patch.Gender)
	}
	if patch.StoreID != nil {
		cur.StoreID = nonEmpty(patch.StoreID)
	}
	if patch.Search != nil {
		cur.Search = nonEmpty(patch.Search)
	}
	if patch.MinPrice != nil {
		v := *patch.MinPrice
		cur.MinPrice = &v
	}
	if patch.MaxPrice != nil {
		v := *patch.MaxPrice
		cur.MaxPrice = &v
	}
	return cur
}

func validate(f Filters) error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return apperr.Validation("minimum price must not be negative")
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return apperr.Validation("maximum price must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return apperr.Validation("minimum price %.2f exceeds maximum %.2f", *f.MinPrice, *f.MaxPrice)
	}
	return nil
}

func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	s := *v
	return &s
}
