// Package report filters and summarizes the append-only audit log for the
// history and reporting views. All functions are pure over an already-fetched
// slice; persistence-side filtering lives in the repository layer.
package report

import (
	"fmt"
	"strings"
	"time"

	"go-stock-ledger/internal/model"
)

// Filter narrows a set of entries. All predicates AND together; a zero From/To
// leaves that bound open and empty Types/Employees lists mean no restriction.
type Filter struct {
	From      time.Time
	To        time.Time
	Types     []model.EntryType
	Employees []string
	Brand     string
	Product   string
}

// Apply returns the entries matching every predicate, preserving input order.
func (f Filter) Apply(entries []model.StockEntry) []model.StockEntry {
	var out []model.StockEntry
	for _, e := range entries {
		if !f.matches(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (f Filter) matches(e model.StockEntry) bool {
	if !f.From.IsZero() && e.OccurredAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.OccurredAt.After(f.To) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, e.Type) {
		return false
	}
	if len(f.Employees) > 0 && !containsString(f.Employees, e.EmployeeName) {
		return false
	}
	if f.Brand != "" && (e.Product == nil || e.Product.Brand != f.Brand) {
		return false
	}
	if f.Product != "" && (e.Product == nil || e.Product.Name != f.Product) {
		return false
	}
	return true
}

// DayGroup is one calendar day's worth of entries, newest day first.
type DayGroup struct {
	Day     time.Time          `json:"day"`
	Entries []model.StockEntry `json:"entries"`
}

// GroupByCalendarDay splits date-descending entries into per-day buckets
// without reordering entries within a day.
func GroupByCalendarDay(entries []model.StockEntry) []DayGroup {
	var groups []DayGroup
	for _, e := range entries {
		day := truncateToDay(e.OccurredAt)
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, DayGroup{Day: day, Entries: []model.StockEntry{e}})
	}
	return groups
}

// BrandSummary aggregates one brand's inventory position and period sales.
type BrandSummary struct {
	ProductCount        int `json:"product_count"`
	TotalStockRemaining int `json:"total_stock_remaining"`
	TotalSoldInPeriod   int `json:"total_sold_in_period"`
}

// AggregateByBrand builds the per-brand summary from the period's entries and
// a current inventory snapshot. Brands present in inventory with no matching
// sales still appear, with zero sold.
func AggregateByBrand(entries []model.StockEntry, inventory []model.Product) map[string]BrandSummary {
	summary := make(map[string]BrandSummary)

	for _, p := range inventory {
		s := summary[p.Brand]
		s.ProductCount++
		s.TotalStockRemaining += p.TotalAvailable()
		summary[p.Brand] = s
	}

	for _, e := range entries {
		if e.Type != model.EntrySale || e.Product == nil {
			continue
		}
		s := summary[e.Product.Brand]
		s.TotalSoldInPeriod += e.Quantity
		summary[e.Product.Brand] = s
	}

	return summary
}

// DailySalesReport renders the plain-text sales recap for one calendar day,
// oldest sale first. Entries may arrive in any order.
func DailySalesReport(entries []model.StockEntry, day time.Time) string {
	target := truncateToDay(day)

	var sales []model.StockEntry
	for _, e := range entries {
		if e.Type == model.EntrySale && truncateToDay(e.OccurredAt).Equal(target) {
			sales = append(sales, e)
		}
	}
	for i := 1; i < len(sales); i++ {
		for j := i; j > 0 && sales[j].OccurredAt.Before(sales[j-1].OccurredAt); j-- {
			sales[j], sales[j-1] = sales[j-1], sales[j]
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sale (%s, %s):\n", target.Format("2 Jan"), target.Format("Monday"))
	if len(sales) == 0 {
		b.WriteString("No sales recorded for this date.\n")
		return b.String()
	}
	for _, sale := range sales {
		fmt.Fprintf(&b, "%s - %s - %d\n", sale.OccurredAt.Format("03:04 PM"), sale.ProductLabel(), sale.Quantity)
	}
	return b.String()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func containsType(types []model.EntryType, t model.EntryType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
