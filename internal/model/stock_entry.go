package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type EntryType string

const (
	EntryNew      EntryType = "NEW"
	EntryAdd      EntryType = "ADD"
	EntryEdit     EntryType = "EDIT"
	EntryDelete   EntryType = "DELETE"
	EntryTransfer EntryType = "TRANSFER"
	EntrySale     EntryType = "SALE"
)

// ProductSnapshot is the before/after state stored on audit entries.
// It is the structured source of truth for diff rendering; Notes is only a
// derived summary and is never parsed back.
type ProductSnapshot struct {
	Name           string  `json:"name"`
	Brand          string  `json:"brand"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	BackupQuantity int     `json:"backup_quantity"`
}

func (s ProductSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ProductSnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for ProductSnapshot")
	}
}

// StockEntry is one immutable audit log record. Entries are append-only:
// they are never updated, and only removed in bulk by the retention purge.
type StockEntry struct {
	BaseModel
	Type EntryType `gorm:"type:varchar(10);not null;index" json:"type" validate:"required,oneof=NEW ADD EDIT DELETE TRANSFER SALE"`

	// ProductID survives product deletion; the product relation resolves to
	// nil for removed products and callers fall back to "Unknown Product".
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product  `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty" validate:"-"`

	EmployeeID   string `gorm:"type:varchar(255)" json:"employee_id"`
	EmployeeName string `gorm:"type:varchar(255)" json:"employee_name"`

	// Quantity meaning depends on Type: units sold (SALE), units added (ADD),
	// units moved (TRANSFER); informational otherwise.
	Quantity int `json:"quantity"`

	// Post-sale stock levels, set on SALE entries only.
	RemainingQuantity *int `json:"remaining_quantity,omitempty"`
	BackupQuantity    *int `json:"backup_quantity,omitempty"`

	PreviousData *ProductSnapshot `gorm:"type:jsonb" json:"previous_data,omitempty"`
	NewData      *ProductSnapshot `gorm:"type:jsonb" json:"new_data,omitempty"`

	Notes string `json:"notes"`

	// OccurredAt is when the change happened; sales may be backdated by the
	// caller, everything else stamps the current time.
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
}

// EntryTypes lists the closed set of audit entry types.
var EntryTypes = []EntryType{EntrySale, EntryNew, EntryAdd, EntryEdit, EntryDelete, EntryTransfer}

// ValidEntryType reports whether t is one of the known entry types.
func ValidEntryType(t EntryType) bool {
	for _, known := range EntryTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ProductLabel renders "Brand - Name" for display, falling back to
// "Unknown Product" when the referenced product no longer exists.
func (e *StockEntry) ProductLabel() string {
	if e.Product == nil || e.Product.ID == uuid.Nil {
		return "Unknown Product"
	}
	return e.Product.Brand + " - " + e.Product.Name
}
