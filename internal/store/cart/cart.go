// Package cart keeps the shopper's cart lines, merges repeated adds of the
// same variant, and persists the line set on every change.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"click-collect/internal/apperr"
	"click-collect/pkg/utils"

	"go.uber.org/zap"
)

// DefaultRecordName is the key the cart is persisted under.
const DefaultRecordName = "cart-storage"

// Line is one purchasable entry, unique per (ProductID, Color, Size).
type Line struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	StoreID   string  `json:"storeId"`
	StoreName string  `json:"storeName,omitempty"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Color     string  `json:"color,omitempty"`
	Size      string  `json:"size,omitempty"`
}

// Subtotal is Price times Quantity.
func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

func (l Line) sameVariant(in ItemInput) bool {
	return l.ProductID == in.ProductID && l.Color == in.Color && l.Size == in.Size
}

// indexVariant returns the position of the line holding the same variant as
// l, or -1.
func indexVariant(lines []Line, l Line) int {
	for i, line := range lines {
		if line.ProductID == l.ProductID && line.Color == l.Color && line.Size == l.Size {
			return i
		}
	}
	return -1
}

// ItemInput is what AddItem accepts.
type ItemInput struct {
	ProductID string  `validate:"required"`
	StoreID   string  `validate:"required"`
	StoreName string  `validate:"max=200"`
	Name      string  `validate:"required,max=200"`
	ImageURL  string  `validate:"omitempty,url"`
	Price     float64 `validate:"gte=0"`
	Quantity  int     `validate:"min=1"`
	Color     string  `validate:"max=30"`
	Size      string  `validate:"max=10"`
}

// Storage persists the serialized cart under a key. Load returns nil, nil
// when nothing was stored yet.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// record is the persisted layout. Totals are never stored.
type record struct {
	State struct {
		Items []Line `json:"items"`
	} `json:"state"`
	Version int `json:"version"`
}

const recordVersion = 0

type Store struct {
	storage Storage
	key     string
	log     *zap.Logger
	newID   func() string

	mu    sync.RWMutex
	lines []Line
	err   error
}

// New loads the persisted line set from storage. A record that cannot be
// decoded is logged and replaced by an empty cart on the next write.
func New(ctx context.Context, storage Storage, key string, log *zap.Logger) (*Store, error) {
	if key == "" {
		key = DefaultRecordName
	}
	s := &Store{
		storage: storage,
		key:     key,
		log:     log.With(zap.String("store", "cart")),
		newID:   utils.GenerateUUIDString,
	}

	payload, err := storage.Load(ctx, key)
	if err != nil {
		return nil, apperr.Transport("load cart", err)
	}
	if payload == nil {
		return s, nil
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		s.log.Warn("Discarding unreadable cart record", zap.String("key", key), zap.Error(err))
		return s, nil
	}
	for _, line := range rec.State.Items {
		if line.ID == "" || line.Quantity <= 0 {
			continue
		}
		if i := indexVariant(s.lines, line); i >= 0 {
			s.log.Warn("Merging duplicate cart line",
				zap.String("key", key), zap.String("line_id", line.ID), zap.String("kept_id", s.lines[i].ID))
			s.lines[i].Quantity += line.Quantity
			continue
		}
		s.lines = append(s.lines, line)
	}

	s.log.Debug("Cart loaded", zap.String("key", key), zap.Int("lines", len(s.lines)))
	return s, nil
}

// AddItem merges in into the line for the same variant, or appends a new
// line. Adding the same variant twice adds both quantities.
func (s *Store) AddItem(ctx context.Context, in ItemInput) (Line, error) {
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return Line{}, apperr.Validation("%s", utils.FormatValidationErrors(errs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneLocked()
	idx := -1
	for i, line := range next {
		if line.sameVariant(in) {
			idx = i
			break
		}
	}

	if idx >= 0 {
		next[idx].Quantity += in.Quantity
	} else {
		next = append(next, Line{
			ID:        s.newID(),
			ProductID: in.ProductID,
			StoreID:   in.StoreID,
			StoreName: in.StoreName,
			Name:      in.Name,
			ImageURL:  in.ImageURL,
			Price:     in.Price,
			Quantity:  in.Quantity,
			Color:     in.Color,
			Size:      in.Size,
		})
		idx = len(next) - 1
	}

	if err := s.commitLocked(ctx, next); err != nil {
		return Line{}, err
	}
	return next[idx], nil
}

// RemoveItem deletes the line. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterLocked(ctx, func(l Line) bool { return l.ID != lineID })
}

// UpdateQuantity sets the line's quantity; q <= 0 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, q int) error {
	if q <= 0 {
		return s.RemoveItem(ctx, lineID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneLocked()
	found := false
	for i := range next {
		if next[i].ID == lineID {
			next[i].Quantity = q
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	return s.commitLocked(ctx, next)
}

func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commitLocked(ctx, nil)
}

// ClearStore drops every line sold by storeID.
func (s *Store) ClearStore(ctx context.Context, storeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterLocked(ctx, func(l Line) bool { return l.StoreID != storeID })
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneLocked()
}

// Group is the lines of one store, in cart order.
type Group struct {
	StoreID   string
	StoreName string
	Lines     []Line
}

func (g Group) Subtotal() float64 {
	var sum float64
	for _, l := range g.Lines {
		sum += l.Subtotal()
	}
	return sum
}

// Groups partitions the cart by store, ordered by each store's first line.
func (s *Store) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []Group
	index := make(map[string]int)
	for _, line := range s.lines {
		i, ok := index[line.StoreID]
		if !ok {
			i = len(groups)
			index[line.StoreID] = i
			groups = append(groups, Group{StoreID: line.StoreID, StoreName: line.StoreName})
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}
	return groups
}

// ItemsByStore maps store id to its lines.
func (s *Store) ItemsByStore() map[string][]Line {
	out := make(map[string][]Line)
	for _, g := range s.Groups() {
		out[g.StoreID] = g.Lines
	}
	return out
}

// StoreIDs lists the stores that have lines in the cart.
func (s *Store) StoreIDs() []string {
	groups := s.Groups()
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.StoreID)
	}
	return ids
}

func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

func (s *Store) TotalAmount() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	return total
}

// Err is the error of the last failed mutation, cleared by the next
// successful one.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) filterLocked(ctx context.Context, keep func(Line) bool) error {
	next := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		if keep(l) {
			next = append(next, l)
		}
	}
	if len(next) == len(s.lines) {
		return nil
	}
	return s.commitLocked(ctx, next)
}

// commitLocked persists next and only then makes it the current line set.
func (s *Store) commitLocked(ctx context.Context, next []Line) error {
	var rec record
	rec.Version = recordVersion
	rec.State.Items = next
	if rec.State.Items == nil {
		rec.State.Items = []Line{}
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		s.err = fmt.Errorf("encode cart: %w", err)
		return s.err
	}

	if err := s.storage.Save(ctx, s.key, payload); err != nil {
		s.log.Error("Failed to persist cart", zap.String("key", s.key), zap.Error(err))
		s.err = apperr.Transport("save cart", err)
		return s.err
	}

	s.lines = next
	s.err = nil
	return nil
}

func (s *Store) cloneLocked() []Line {
	if len(s.lines) == 0 {
		return nil
	}
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}
