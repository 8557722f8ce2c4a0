package repository_test

import (
	"testing"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
)

func seedEntries(t *testing.T, repo *repository.MemoryStockEntryRepo, daysAgo ...int) {
	t.Helper()
	now := time.Now()
	for _, d := range daysAgo {
		entry := &model.StockEntry{
			Type:       model.EntrySale,
			Quantity:   1,
			OccurredAt: now.AddDate(0, 0, -d),
		}
		if err := repo.Create(entry); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDeleteOlderThan(t *testing.T) {
	repo := repository.NewMemoryStockEntryRepo(nil)
	seedEntries(t, repo, 1, 8, 30)

	removed, err := repo.DeleteOlderThan(time.Now().AddDate(0, 0, -7))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Fatalf("want 2 removed, got %d", removed)
	}

	remaining, err := repo.FindAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 {
		t.Fatalf("want 1 remaining entry, got %d", len(remaining))
	}
	if time.Since(remaining[0].OccurredAt) > 48*time.Hour {
		t.Fatal("the recent entry should have survived the purge")
	}
}

func TestMemoryEntriesResolveProducts(t *testing.T) {
	products := repository.NewMemoryProductRepo()
	entries := repository.NewMemoryStockEntryRepo(products)

	p := &model.Product{Name: "Pomade", Brand: "Orbit", Quantity: 4}
	if err := products.Create(p); err != nil {
		t.Fatal(err)
	}
	if err := entries.Create(&model.StockEntry{Type: model.EntrySale, ProductID: p.ID, Quantity: 1, OccurredAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	all, err := entries.FindAll()
	if err != nil {
		t.Fatal(err)
	}
	if all[0].Product == nil || all[0].Product.Name != "Pomade" {
		t.Fatalf("entry should resolve its product, got %+v", all[0].Product)
	}
	if all[0].ProductLabel() != "Orbit - Pomade" {
		t.Fatalf("unexpected label %q", all[0].ProductLabel())
	}

	// deleting the product orphans the entry but keeps it renderable
	if err := products.Delete(p.ID); err != nil {
		t.Fatal(err)
	}
	all, _ = entries.FindAll()
	if all[0].Product != nil {
		t.Fatal("orphaned entry must not resolve a product")
	}
	if all[0].ProductLabel() != "Unknown Product" {
		t.Fatalf("unexpected label %q", all[0].ProductLabel())
	}
}
