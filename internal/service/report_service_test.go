package service_test

import (
	"strings"
	"testing"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/report"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"
)

func seedLedger(t *testing.T) (*repository.MemoryProductRepo, *repository.MemoryStockEntryRepo) {
	t.Helper()
	products := repository.NewMemoryProductRepo()
	entries := repository.NewMemoryStockEntryRepo(products)

	pomade := &model.Product{Name: "Pomade", Brand: "Orbit", Quantity: 8, BackupQuantity: 2, Price: 55}
	tonic := &model.Product{Name: "Hair Tonic", Brand: "Clover", Quantity: 20, Price: 30}
	for _, p := range []*model.Product{pomade, tonic} {
		if err := products.Create(p); err != nil {
			t.Fatal(err)
		}
	}

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	seed := []model.StockEntry{
		{Type: model.EntryNew, ProductID: pomade.ID, EmployeeName: "Dina", Quantity: 10, OccurredAt: base},
		{Type: model.EntrySale, ProductID: pomade.ID, EmployeeName: "Dina", Quantity: 2, OccurredAt: base.Add(3 * time.Hour)},
		{Type: model.EntrySale, ProductID: tonic.ID, EmployeeName: "Rama", Quantity: 5, OccurredAt: base.AddDate(0, 0, 1)},
	}
	for i := range seed {
		if err := entries.Create(&seed[i]); err != nil {
			t.Fatal(err)
		}
	}
	return products, entries
}

func TestGetHistoryGroupsByDay(t *testing.T) {
	products, entries := seedLedger(t)
	svc := service.NewReportService(entries, products, nil)

	groups, err := svc.GetHistory(report.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("want 2 day groups, got %d", len(groups))
	}
	// newest day first
	if !groups[0].Day.After(groups[1].Day) {
		t.Fatal("groups should be ordered newest day first")
	}
	if len(groups[1].Entries) != 2 {
		t.Fatalf("older day should hold 2 entries, got %d", len(groups[1].Entries))
	}
}

func TestGetEntriesAppliesFilter(t *testing.T) {
	products, entries := seedLedger(t)
	svc := service.NewReportService(entries, products, nil)

	got, err := svc.GetEntries(report.Filter{
		Types:     []model.EntryType{model.EntrySale},
		Employees: []string{"Dina"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 entry, got %d", len(got))
	}
	if got[0].Quantity != 2 {
		t.Fatalf("wrong entry matched: %+v", got[0])
	}
}

func TestGetBrandSummaryIncludesIdleBrands(t *testing.T) {
	products, entries := seedLedger(t)
	svc := service.NewReportService(entries, products, nil)

	summary, err := svc.GetBrandSummary(time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	orbit := summary["Orbit"]
	if orbit.TotalSoldInPeriod != 2 || orbit.TotalStockRemaining != 10 {
		t.Fatalf("unexpected Orbit summary: %+v", orbit)
	}
	if _, ok := summary["Clover"]; !ok {
		t.Fatal("Clover should appear in the summary")
	}
}

func TestGetDailySalesReport(t *testing.T) {
	products, entries := seedLedger(t)
	svc := service.NewReportService(entries, products, nil)

	text, err := svc.GetDailySalesReport(time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Sale (20 Aug, Thursday):") {
		t.Fatalf("missing header in report:\n%s", text)
	}
	if !strings.Contains(text, "Orbit - Pomade - 2") {
		t.Fatalf("missing sale line in report:\n%s", text)
	}
}

func TestPurgeOlderThanRejectsNonPositiveDays(t *testing.T) {
	products, entries := seedLedger(t)
	svc := service.NewReportService(entries, products, nil)

	if _, err := svc.PurgeOlderThan(0); err != service.ErrInvalidDayCount {
		t.Fatalf("want ErrInvalidDayCount, got %v", err)
	}
	if _, err := svc.PurgeOlderThan(-3); err != service.ErrInvalidDayCount {
		t.Fatalf("want ErrInvalidDayCount, got %v", err)
	}
}
