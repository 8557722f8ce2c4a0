package ledger

import "fmt"

// ValidationError rejects an operation whose input fails a precondition.
// It always indicates a caller problem, never a transient fault.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StockScope identifies which stock pool an operation overdrew.
type StockScope string

const (
	ScopeStock  StockScope = "stock"
	ScopeBackup StockScope = "backup"
	ScopeTotal  StockScope = "total"
)

// InsufficientStockError rejects an operation that would drive a stock pool
// negative.
type InsufficientStockError struct {
	Scope     StockScope
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	switch e.Scope {
	case ScopeBackup:
		return fmt.Sprintf("cannot move more than the available backup quantity (requested %d, available %d)", e.Requested, e.Available)
	case ScopeStock:
		return fmt.Sprintf("cannot move more than the available stock quantity (requested %d, available %d)", e.Requested, e.Available)
	default:
		return fmt.Sprintf("not enough total stock available (requested %d, available %d)", e.Requested, e.Available)
	}
}
