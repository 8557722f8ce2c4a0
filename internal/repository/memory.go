package repository

import (
	"sort"
	"sync"
	"time"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository doubles. They satisfy the same interfaces as the
// Postgres implementations so services can be exercised without a database;
// callers must not depend on which implementation is in use.

type MemoryProductRepo struct {
	mu       sync.RWMutex
	products map[uuid.UUID]model.Product
}

func NewMemoryProductRepo() *MemoryProductRepo {
	return &MemoryProductRepo{products: make(map[uuid.UUID]model.Product)}
}

func (r *MemoryProductRepo) Create(product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = *product
	return nil
}

func (r *MemoryProductRepo) FindAll() ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Brand != out[j].Brand {
			return out[i].Brand < out[j].Brand
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *MemoryProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepo) Update(product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes the product outright; entries referencing it are orphaned,
// mirroring the Postgres soft-delete behavior as seen through Preload.
func (r *MemoryProductRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

type MemoryStockEntryRepo struct {
	mu       sync.RWMutex
	entries  map[uuid.UUID]model.StockEntry
	products *MemoryProductRepo
}

// NewMemoryStockEntryRepo builds an entry store; products may be nil when the
// test does not care about product resolution.
func NewMemoryStockEntryRepo(products *MemoryProductRepo) *MemoryStockEntryRepo {
	return &MemoryStockEntryRepo{entries: make(map[uuid.UUID]model.StockEntry), products: products}
}

func (r *MemoryStockEntryRepo) Create(entry *model.StockEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	stored := *entry
	stored.Product = nil
	r.entries[stored.ID] = stored
	return nil
}

func (r *MemoryStockEntryRepo) FindAll() ([]model.StockEntry, error) {
	return r.FindInRange(time.Time{}, time.Time{})
}

func (r *MemoryStockEntryRepo) FindInRange(from, to time.Time) ([]model.StockEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.StockEntry
	for _, e := range r.entries {
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		out = append(out, r.resolve(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (r *MemoryStockEntryRepo) FindByID(id uuid.UUID) (*model.StockEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	resolved := r.resolve(e)
	return &resolved, nil
}

func (r *MemoryStockEntryRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, e := range r.entries {
		if e.OccurredAt.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (r *MemoryStockEntryRepo) GetDashboardStats() (*DashboardStats, error) {
	if r.products == nil {
		return &DashboardStats{}, nil
	}
	products, _ := r.products.FindAll()
	stats := &DashboardStats{}
	for _, p := range products {
		stats.TotalProducts++
		if p.Quantity < lowStockThreshold {
			stats.LowStockCount++
		}
		stats.TotalValuation += float64(p.TotalAvailable()) * p.Price
	}
	return stats, nil
}

func (r *MemoryStockEntryRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	entries, err := r.FindInRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]*StockMovementData)
	for _, e := range entries {
		day := e.OccurredAt.Format("2006-01-02")
		data, ok := byDay[day]
		if !ok {
			data = &StockMovementData{Date: day}
			byDay[day] = data
		}
		switch e.Type {
		case model.EntryAdd:
			data.Inbound += e.Quantity
		case model.EntrySale:
			data.Outbound += e.Quantity
		}
	}
	out := make([]StockMovementData, 0, len(byDay))
	for _, data := range byDay {
		out = append(out, *data)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *MemoryStockEntryRepo) resolve(e model.StockEntry) model.StockEntry {
	if r.products == nil {
		return e
	}
	if p, err := r.products.FindByID(e.ProductID); err == nil {
		e.Product = p
	}
	return e
}
