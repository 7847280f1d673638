// Package memory holds mutex-protected in-memory stores used by tests and by
// the memory storage driver.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
)

type OrderStore struct {
	mu     sync.RWMutex
	orders map[int64]*order.Order
	notes  map[int64][]order.Note
	nextID int64
	noteID int64
	now    func() time.Time
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[int64]*order.Order),
		notes:  make(map[int64][]order.Note),
		nextID: 1,
		now:    time.Now,
	}
}

// Create stores a copy of o. A zero ID is assigned the next free id.
func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == 0 {
		o.ID = s.nextID
	}
	if _, exists := s.orders[o.ID]; exists {
		return fmt.Errorf("order %d already exists", o.ID)
	}
	if o.ID >= s.nextID {
		s.nextID = o.ID + 1
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}
	now := s.now()
	o.CreatedAt, o.UpdatedAt = now, now

	s.orders[o.ID] = clone(o)
	return nil
}

func (s *OrderStore) GetByID(_ context.Context, id int64) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return clone(o), nil
}

func (s *OrderStore) GetIDByKey(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, o := range s.orders {
		if o.Key == key {
			return id, nil
		}
	}
	return 0, order.ErrNotFound
}

func (s *OrderStore) UpdateStatus(_ context.Context, id int64, status order.Status, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now()
	if note != "" {
		s.addNoteLocked(id, note)
	}
	return nil
}

func (s *OrderStore) AddNote(_ context.Context, id int64, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return order.ErrNotFound
	}
	s.addNoteLocked(id, note)
	return nil
}

func (s *OrderStore) UpdateMeta(_ context.Context, id int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	if o.Meta == nil {
		o.Meta = make(map[string]string)
	}
	o.Meta[key] = value
	return nil
}

func (s *OrderStore) PaymentComplete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = order.StatusCompleted
	o.UpdatedAt = s.now()
	return nil
}

func (s *OrderStore) Notes(_ context.Context, id int64) ([]order.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.orders[id]; !ok {
		return nil, order.ErrNotFound
	}
	out := make([]order.Note, len(s.notes[id]))
	copy(out, s.notes[id])
	return out, nil
}

func (s *OrderStore) addNoteLocked(id int64, content string) {
	s.noteID++
	s.notes[id] = append(s.notes[id], order.Note{
		ID:        s.noteID,
		OrderID:   id,
		Content:   content,
		CreatedAt: s.now(),
	})
}

func clone(o *order.Order) *order.Order {
	c := *o
	c.Meta = maps.Clone(o.Meta)
	return &c
}
