// Package ledger holds the stock-accounting rules: how each catalog or stock
// operation turns the current product state into the next state plus the
// audit entry that records it. The package performs no I/O; callers load the
// current product, invoke one operation, and persist the returned pair
// atomically.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-stock-ledger/internal/model"
)

// Actor identifies who performed an operation, as stamped onto audit entries.
type Actor struct {
	ID   string
	Name string
}

// Result is the outcome of a successful operation: the next product state and
// the audit entry to append. Both must be persisted together or not at all.
type Result struct {
	Product model.Product
	Entry   model.StockEntry
}

// futureSkew is how far ahead of the wall clock a backdated sale timestamp may
// sit before it is rejected, covering client/server clock drift.
const futureSkew = 5 * time.Minute

// Ledger computes stock mutations. It is stateless apart from its clock,
// which tests replace to get deterministic timestamps.
type Ledger struct {
	now func() time.Time
}

func New() *Ledger {
	return &Ledger{now: time.Now}
}

func NewWithClock(now func() time.Time) *Ledger {
	return &Ledger{now: now}
}

// CreateProductInput carries the fields of a new catalog item.
type CreateProductInput struct {
	Name           string
	Brand          string
	Price          float64
	Quantity       int
	BackupQuantity int
	ImageURL       string
}

// AddStockInput is an additive restock. At least one delta must be provided;
// provided deltas must be non-negative.
type AddStockInput struct {
	AddToQuantity       *int
	AddToBackupQuantity *int
}

// TransferInput moves units between the two pools. Exactly one direction must
// be provided, with a positive amount.
type TransferInput struct {
	FromBackupToStock *int
	FromStockToBackup *int
}

// EditProductInput replaces every catalog field; used for corrections, not
// for sales or restocks.
type EditProductInput struct {
	Name           string
	Brand          string
	Price          float64
	Quantity       int
	BackupQuantity int
	ImageURL       string
}

// SaleInput records units sold. OccurredAt may backdate the sale; nil means
// now. Timestamps ahead of the clock are rejected.
type SaleInput struct {
	Quantity   int
	OccurredAt *time.Time
}

// CreateProduct builds a new product and its NEW audit entry.
func (l *Ledger) CreateProduct(in CreateProductInput, actor Actor) (*Result, error) {
	if err := validateCatalogFields(in.Name, in.Brand, in.Price, in.Quantity, in.BackupQuantity); err != nil {
		return nil, err
	}

	product := model.Product{
		Name:           strings.TrimSpace(in.Name),
		Brand:          strings.TrimSpace(in.Brand),
		Price:          in.Price,
		Quantity:       in.Quantity,
		BackupQuantity: in.BackupQuantity,
		ImageURL:       in.ImageURL,
	}
	product.ID = uuid.New()

	entry := l.newEntry(model.EntryNew, product.ID, actor, l.now())
	entry.Quantity = in.Quantity
	entry.NewData = product.Snapshot()
	entry.Notes = fmt.Sprintf("Initial stock: %d units, Backup: %d units", in.Quantity, in.BackupQuantity)

	return &Result{Product: product, Entry: entry}, nil
}

// AddStock applies non-negative increments to one or both pools and records
// an ADD entry whose notes mention only the pools that were touched.
func (l *Ledger) AddStock(current model.Product, in AddStockInput, actor Actor) (*Result, error) {
	if in.AddToQuantity == nil && in.AddToBackupQuantity == nil {
		return nil, &ValidationError{Reason: "at least one quantity field is required"}
	}
	if in.AddToQuantity != nil && *in.AddToQuantity < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "increment must not be negative"}
	}
	if in.AddToBackupQuantity != nil && *in.AddToBackupQuantity < 0 {
		return nil, &ValidationError{Field: "backup_quantity", Reason: "increment must not be negative"}
	}

	next := current
	var added int
	var parts []string
	if in.AddToQuantity != nil {
		next.Quantity = current.Quantity + *in.AddToQuantity
		added += *in.AddToQuantity
		parts = append(parts, fmt.Sprintf("Stock: %d → %d", current.Quantity, next.Quantity))
	}
	if in.AddToBackupQuantity != nil {
		next.BackupQuantity = current.BackupQuantity + *in.AddToBackupQuantity
		added += *in.AddToBackupQuantity
		parts = append(parts, fmt.Sprintf("Backup: %d → %d", current.BackupQuantity, next.BackupQuantity))
	}

	entry := l.newEntry(model.EntryAdd, current.ID, actor, l.now())
	entry.Quantity = added
	entry.PreviousData = current.Snapshot()
	entry.NewData = next.Snapshot()
	entry.Notes = strings.Join(parts, ", ")

	return &Result{Product: next, Entry: entry}, nil
}

// TransferStock moves units between backup and front stock, one direction per
// call, and records a TRANSFER entry.
func (l *Ledger) TransferStock(current model.Product, in TransferInput, actor Actor) (*Result, error) {
	if (in.FromBackupToStock == nil) == (in.FromStockToBackup == nil) {
		return nil, &ValidationError{Reason: "exactly one transfer direction is required"}
	}

	next := current
	var amount int
	var direction string

	switch {
	case in.FromBackupToStock != nil:
		amount = *in.FromBackupToStock
		if amount <= 0 {
			return nil, &ValidationError{Field: "from_backup_to_stock", Reason: "amount must be a positive integer"}
		}
		if amount > current.BackupQuantity {
			return nil, &InsufficientStockError{Scope: ScopeBackup, Requested: amount, Available: current.BackupQuantity}
		}
		next.Quantity = current.Quantity + amount
		next.BackupQuantity = current.BackupQuantity - amount
		direction = "from backup to stock"

	default:
		amount = *in.FromStockToBackup
		if amount <= 0 {
			return nil, &ValidationError{Field: "from_stock_to_backup", Reason: "amount must be a positive integer"}
		}
		if amount > current.Quantity {
			return nil, &InsufficientStockError{Scope: ScopeStock, Requested: amount, Available: current.Quantity}
		}
		next.Quantity = current.Quantity - amount
		next.BackupQuantity = current.BackupQuantity + amount
		direction = "from stock to backup"
	}

	entry := l.newEntry(model.EntryTransfer, current.ID, actor, l.now())
	entry.Quantity = amount
	entry.PreviousData = current.Snapshot()
	entry.NewData = next.Snapshot()
	entry.Notes = fmt.Sprintf("Transferred %d units %s. (Stock: %d → %d, Backup: %d → %d)",
		amount, direction, current.Quantity, next.Quantity, current.BackupQuantity, next.BackupQuantity)

	return &Result{Product: next, Entry: entry}, nil
}

// EditProduct replaces all catalog fields and records an EDIT entry with full
// before/after snapshots.
func (l *Ledger) EditProduct(current model.Product, in EditProductInput, actor Actor) (*Result, error) {
	if err := validateCatalogFields(in.Name, in.Brand, in.Price, in.Quantity, in.BackupQuantity); err != nil {
		return nil, err
	}

	next := current
	next.Name = strings.TrimSpace(in.Name)
	next.Brand = strings.TrimSpace(in.Brand)
	next.Price = in.Price
	next.Quantity = in.Quantity
	next.BackupQuantity = in.BackupQuantity
	next.ImageURL = in.ImageURL

	entry := l.newEntry(model.EntryEdit, current.ID, actor, l.now())
	entry.PreviousData = current.Snapshot()
	entry.NewData = next.Snapshot()
	entry.Notes = "Product details updated"

	return &Result{Product: next, Entry: entry}, nil
}

// RecordSale deducts sold units from front stock first, drawing the remainder
// from backup only when front stock runs out. The SALE entry snapshots both
// pools after the sale.
func (l *Ledger) RecordSale(current model.Product, in SaleInput, actor Actor) (*Result, error) {
	if in.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}

	occurredAt := l.now()
	if in.OccurredAt != nil {
		if in.OccurredAt.After(l.now().Add(futureSkew)) {
			return nil, &ValidationError{Field: "occurred_at", Reason: "sale date cannot be in the future"}
		}
		occurredAt = *in.OccurredAt
	}

	if in.Quantity > current.TotalAvailable() {
		return nil, &InsufficientStockError{Scope: ScopeTotal, Requested: in.Quantity, Available: current.TotalAvailable()}
	}

	fromStock := in.Quantity
	if fromStock > current.Quantity {
		fromStock = current.Quantity
	}
	fromBackup := in.Quantity - fromStock

	next := current
	next.Quantity = current.Quantity - fromStock
	next.BackupQuantity = current.BackupQuantity - fromBackup

	remaining := next.Quantity
	backup := next.BackupQuantity

	entry := l.newEntry(model.EntrySale, current.ID, actor, occurredAt)
	entry.Quantity = in.Quantity
	entry.RemainingQuantity = &remaining
	entry.BackupQuantity = &backup
	entry.PreviousData = current.Snapshot()
	entry.NewData = next.Snapshot()
	if fromBackup > 0 {
		entry.Notes = fmt.Sprintf("Sold %d units (%d from backup)", in.Quantity, fromBackup)
	} else {
		entry.Notes = fmt.Sprintf("Sold %d units", in.Quantity)
	}

	return &Result{Product: next, Entry: entry}, nil
}

// DeleteProduct records the DELETE entry archiving the product's final state.
// The caller removes the product itself; the returned product is unchanged so
// history stays meaningful after the row is gone.
func (l *Ledger) DeleteProduct(current model.Product, actor Actor) (*Result, error) {
	entry := l.newEntry(model.EntryDelete, current.ID, actor, l.now())
	entry.PreviousData = current.Snapshot()
	entry.Notes = fmt.Sprintf("Deleted product: %s - %s (Stock: %d, Backup: %d, Price: %.2f)",
		current.Brand, current.Name, current.Quantity, current.BackupQuantity, current.Price)

	return &Result{Product: current, Entry: entry}, nil
}

func (l *Ledger) newEntry(t model.EntryType, productID uuid.UUID, actor Actor, occurredAt time.Time) model.StockEntry {
	entry := model.StockEntry{
		Type:         t,
		ProductID:    productID,
		EmployeeID:   actor.ID,
		EmployeeName: actor.Name,
		OccurredAt:   occurredAt,
	}
	entry.ID = uuid.New()
	entry.CreatedBy = actor.ID
	entry.UpdatedBy = actor.ID
	return entry
}

func validateCatalogFields(name, brand string, price float64, quantity, backupQuantity int) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(brand) == "" {
		return &ValidationError{Field: "brand", Reason: "is required"}
	}
	if price < 0 {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if backupQuantity < 0 {
		return &ValidationError{Field: "backup_quantity", Reason: "must not be negative"}
	}
	return nil
}
