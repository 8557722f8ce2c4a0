package report_test

import (
	"strings"
	"testing"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/report"
)

func entry(t model.EntryType, employee, brand, name string, qty int, at time.Time) model.StockEntry {
	return model.StockEntry{
		Type:         t,
		EmployeeName: employee,
		Quantity:     qty,
		OccurredAt:   at,
		Product:      &model.Product{Brand: brand, Name: name},
	}
}

var (
	day1 = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	day2 = time.Date(2025, 6, 11, 14, 0, 0, 0, time.UTC)
)

func sampleEntries() []model.StockEntry {
	return []model.StockEntry{
		entry(model.EntrySale, "Sam", "Apex", "Fade Cream", 3, day2),
		entry(model.EntryAdd, "Lee", "Apex", "Fade Cream", 10, day2.Add(-2*time.Hour)),
		entry(model.EntrySale, "Lee", "Orbit", "Pomade", 2, day1),
		entry(model.EntryTransfer, "Sam", "Orbit", "Pomade", 5, day1.Add(-time.Hour)),
	}
}

func TestFilterEmptyListsMeanNoRestriction(t *testing.T) {
	got := report.Filter{}.Apply(sampleEntries())
	if len(got) != 4 {
		t.Fatalf("want all 4 entries, got %d", len(got))
	}
}

func TestFilterPredicatesANDTogether(t *testing.T) {
	entries := sampleEntries()

	got := report.Filter{Types: []model.EntryType{model.EntrySale}}.Apply(entries)
	if len(got) != 2 {
		t.Fatalf("type filter: want 2, got %d", len(got))
	}

	got = report.Filter{
		Types:     []model.EntryType{model.EntrySale},
		Employees: []string{"Lee"},
	}.Apply(entries)
	if len(got) != 1 || got[0].Product.Name != "Pomade" {
		t.Fatalf("combined filter: got %+v", got)
	}

	got = report.Filter{Brand: "Apex"}.Apply(entries)
	if len(got) != 2 {
		t.Fatalf("brand filter: want 2, got %d", len(got))
	}

	got = report.Filter{From: day2.Add(-time.Hour)}.Apply(entries)
	if len(got) != 1 {
		t.Fatalf("date filter: want 1, got %d", len(got))
	}
}

func TestFilterProductWithoutRelation(t *testing.T) {
	orphan := model.StockEntry{Type: model.EntrySale, OccurredAt: day1, Quantity: 1}
	got := report.Filter{Brand: "Apex"}.Apply([]model.StockEntry{orphan})
	if len(got) != 0 {
		t.Fatal("entries with no resolvable product must not match brand filters")
	}
}

func TestGroupByCalendarDay(t *testing.T) {
	groups := report.GroupByCalendarDay(sampleEntries())
	if len(groups) != 2 {
		t.Fatalf("want 2 day groups, got %d", len(groups))
	}
	if !groups[0].Day.After(groups[1].Day) {
		t.Fatal("groups must keep newest-first order")
	}
	if len(groups[0].Entries) != 2 || len(groups[1].Entries) != 2 {
		t.Fatalf("unexpected group sizes: %d/%d", len(groups[0].Entries), len(groups[1].Entries))
	}
	// order within a day is preserved
	if groups[0].Entries[0].Type != model.EntrySale || groups[0].Entries[1].Type != model.EntryAdd {
		t.Fatal("grouping reordered entries within a day")
	}
}

func TestAggregateByBrandIncludesZeroSaleBrands(t *testing.T) {
	inventory := []model.Product{
		{Brand: "Apex", Name: "Fade Cream", Quantity: 6, BackupQuantity: 2},
		{Brand: "Apex", Name: "Clay", Quantity: 3},
		{Brand: "Nimbus", Name: "Tonic", Quantity: 9, BackupQuantity: 1},
	}

	summary := report.AggregateByBrand(sampleEntries(), inventory)

	apex := summary["Apex"]
	if apex.ProductCount != 2 || apex.TotalStockRemaining != 11 || apex.TotalSoldInPeriod != 3 {
		t.Fatalf("unexpected Apex summary: %+v", apex)
	}
	nimbus, ok := summary["Nimbus"]
	if !ok {
		t.Fatal("brands without sales must still appear")
	}
	if nimbus.TotalSoldInPeriod != 0 || nimbus.TotalStockRemaining != 10 {
		t.Fatalf("unexpected Nimbus summary: %+v", nimbus)
	}
}

func TestDailySalesReport(t *testing.T) {
	got := report.DailySalesReport(sampleEntries(), day1)
	if !strings.Contains(got, "Orbit - Pomade - 2") {
		t.Fatalf("report missing sale line:\n%s", got)
	}
	if strings.Contains(got, "Fade Cream") {
		t.Fatalf("report leaked another day's sale:\n%s", got)
	}

	empty := report.DailySalesReport(nil, day1)
	if !strings.Contains(empty, "No sales recorded") {
		t.Fatalf("unexpected empty report:\n%s", empty)
	}
}
