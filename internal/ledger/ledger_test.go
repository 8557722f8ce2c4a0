package ledger_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go-stock-ledger/internal/ledger"
	"go-stock-ledger/internal/model"
)

var testClock = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newLedger() *ledger.Ledger {
	return ledger.NewWithClock(func() time.Time { return testClock })
}

func product(quantity, backup int) model.Product {
	p := model.Product{
		Name:           "Fade Cream",
		Brand:          "Apex",
		Price:          12.50,
		Quantity:       quantity,
		BackupQuantity: backup,
	}
	return p
}

func intPtr(v int) *int { return &v }

var clerk = ledger.Actor{ID: "emp-1", Name: "Sam"}

func TestCreateProduct(t *testing.T) {
	l := newLedger()

	res, err := l.CreateProduct(ledger.CreateProductInput{
		Name: "Fade Cream", Brand: "Apex", Price: 12.50, Quantity: 10, BackupQuantity: 5,
	}, clerk)
	if err != nil {
		t.Fatal(err)
	}

	if res.Product.Quantity != 10 || res.Product.BackupQuantity != 5 {
		t.Fatalf("unexpected stock state: %+v", res.Product)
	}
	if res.Entry.Type != model.EntryNew {
		t.Fatalf("want NEW entry, got %s", res.Entry.Type)
	}
	if res.Entry.ProductID != res.Product.ID {
		t.Fatal("entry does not reference the created product")
	}
	if res.Entry.NewData == nil || res.Entry.NewData.Quantity != 10 || res.Entry.NewData.BackupQuantity != 5 {
		t.Fatalf("NEW entry must snapshot created fields, got %+v", res.Entry.NewData)
	}
	if res.Entry.Notes != "Initial stock: 10 units, Backup: 5 units" {
		t.Fatalf("unexpected notes: %q", res.Entry.Notes)
	}
}

func TestCreateProductValidation(t *testing.T) {
	l := newLedger()

	cases := []ledger.CreateProductInput{
		{Name: "", Brand: "Apex", Price: 1, Quantity: 1, BackupQuantity: 1},
		{Name: "X", Brand: "  ", Price: 1, Quantity: 1, BackupQuantity: 1},
		{Name: "X", Brand: "Apex", Price: -1, Quantity: 1, BackupQuantity: 1},
		{Name: "X", Brand: "Apex", Price: 1, Quantity: -1, BackupQuantity: 1},
		{Name: "X", Brand: "Apex", Price: 1, Quantity: 1, BackupQuantity: -1},
	}
	for i, in := range cases {
		_, err := l.CreateProduct(in, clerk)
		var ve *ledger.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d: want ValidationError, got %v", i, err)
		}
	}
}

func TestRecordSaleFromStockOnly(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	res, err := l.RecordSale(p, ledger.SaleInput{Quantity: 4}, clerk)
	if err != nil {
		t.Fatal(err)
	}

	// backup untouched when front stock covers the sale
	if res.Product.Quantity != 6 || res.Product.BackupQuantity != 5 {
		t.Fatalf("want 6/5, got %d/%d", res.Product.Quantity, res.Product.BackupQuantity)
	}
	if strings.Contains(res.Entry.Notes, "backup") {
		t.Fatalf("notes should not mention backup: %q", res.Entry.Notes)
	}
}

func TestRecordSaleDrawsFromBackup(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	res, err := l.RecordSale(p, ledger.SaleInput{Quantity: 12}, clerk)
	if err != nil {
		t.Fatal(err)
	}

	if res.Product.Quantity != 0 || res.Product.BackupQuantity != 3 {
		t.Fatalf("want 0/3, got %d/%d", res.Product.Quantity, res.Product.BackupQuantity)
	}
	e := res.Entry
	if e.Type != model.EntrySale || e.Quantity != 12 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.RemainingQuantity == nil || *e.RemainingQuantity != 0 {
		t.Fatalf("want remaining 0, got %v", e.RemainingQuantity)
	}
	if e.BackupQuantity == nil || *e.BackupQuantity != 3 {
		t.Fatalf("want backup 3, got %v", e.BackupQuantity)
	}
	if !strings.Contains(e.Notes, "2 from backup") {
		t.Fatalf("notes should mention backup draw: %q", e.Notes)
	}
}

func TestRecordSaleInsufficientTotal(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	_, err := l.RecordSale(p, ledger.SaleInput{Quantity: 20}, clerk)
	var ise *ledger.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if ise.Scope != ledger.ScopeTotal {
		t.Fatalf("want total scope, got %s", ise.Scope)
	}
	// caller's product value must be untouched
	if p.Quantity != 10 || p.BackupQuantity != 5 {
		t.Fatalf("product mutated on rejection: %+v", p)
	}
}

func TestRecordSaleValidation(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	for _, qty := range []int{0, -3} {
		_, err := l.RecordSale(p, ledger.SaleInput{Quantity: qty}, clerk)
		var ve *ledger.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("quantity %d: want ValidationError, got %v", qty, err)
		}
	}
}

func TestRecordSaleBackdated(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	yesterday := testClock.AddDate(0, 0, -1)
	res, err := l.RecordSale(p, ledger.SaleInput{Quantity: 1, OccurredAt: &yesterday}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Entry.OccurredAt.Equal(yesterday) {
		t.Fatalf("want backdated timestamp %v, got %v", yesterday, res.Entry.OccurredAt)
	}

	tomorrow := testClock.AddDate(0, 0, 1)
	_, err = l.RecordSale(p, ledger.SaleInput{Quantity: 1, OccurredAt: &tomorrow}, clerk)
	var ve *ledger.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("future sale date: want ValidationError, got %v", err)
	}
}

func TestTransferInsufficientBackup(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	_, err := l.TransferStock(p, ledger.TransferInput{FromBackupToStock: intPtr(6)}, clerk)
	var ise *ledger.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if ise.Scope != ledger.ScopeBackup {
		t.Fatalf("want backup scope, got %s", ise.Scope)
	}
}

func TestTransferBackupToStock(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	res, err := l.TransferStock(p, ledger.TransferInput{FromBackupToStock: intPtr(3)}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if res.Product.Quantity != 13 || res.Product.BackupQuantity != 2 {
		t.Fatalf("want 13/2, got %d/%d", res.Product.Quantity, res.Product.BackupQuantity)
	}
	if res.Entry.Type != model.EntryTransfer {
		t.Fatalf("want TRANSFER entry, got %s", res.Entry.Type)
	}
	if !strings.Contains(res.Entry.Notes, "3 units from backup to stock") {
		t.Fatalf("unexpected notes: %q", res.Entry.Notes)
	}
}

func TestTransferStockToBackup(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	res, err := l.TransferStock(p, ledger.TransferInput{FromStockToBackup: intPtr(4)}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if res.Product.Quantity != 6 || res.Product.BackupQuantity != 9 {
		t.Fatalf("want 6/9, got %d/%d", res.Product.Quantity, res.Product.BackupQuantity)
	}

	_, err = l.TransferStock(p, ledger.TransferInput{FromStockToBackup: intPtr(11)}, clerk)
	var ise *ledger.InsufficientStockError
	if !errors.As(err, &ise) || ise.Scope != ledger.ScopeStock {
		t.Fatalf("want stock-scope InsufficientStockError, got %v", err)
	}
}

func TestTransferValidation(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	cases := []ledger.TransferInput{
		{}, // no direction
		{FromBackupToStock: intPtr(1), FromStockToBackup: intPtr(1)}, // both
		{FromBackupToStock: intPtr(0)},
		{FromStockToBackup: intPtr(-2)},
	}
	for i, in := range cases {
		_, err := l.TransferStock(p, in, clerk)
		var ve *ledger.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d: want ValidationError, got %v", i, err)
		}
	}
}

func TestAddStockSinglePool(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	res, err := l.AddStock(p, ledger.AddStockInput{AddToQuantity: intPtr(5)}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if res.Product.Quantity != 15 || res.Product.BackupQuantity != 5 {
		t.Fatalf("want 15/5, got %d/%d", res.Product.Quantity, res.Product.BackupQuantity)
	}
	if res.Entry.Notes != "Stock: 10 → 15" {
		t.Fatalf("notes must mention only the stock change: %q", res.Entry.Notes)
	}
}

func TestAddStockBothPools(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	res, err := l.AddStock(p, ledger.AddStockInput{AddToQuantity: intPtr(5), AddToBackupQuantity: intPtr(2)}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if res.Product.Quantity != 15 || res.Product.BackupQuantity != 7 {
		t.Fatalf("want 15/7, got %d/%d", res.Product.Quantity, res.Product.BackupQuantity)
	}
	if res.Entry.Quantity != 7 {
		t.Fatalf("want 7 units added, got %d", res.Entry.Quantity)
	}
	if res.Entry.Notes != "Stock: 10 → 15, Backup: 5 → 7" {
		t.Fatalf("unexpected notes: %q", res.Entry.Notes)
	}
}

func TestAddStockValidation(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	_, err := l.AddStock(p, ledger.AddStockInput{}, clerk)
	var ve *ledger.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("no deltas: want ValidationError, got %v", err)
	}

	_, err = l.AddStock(p, ledger.AddStockInput{AddToQuantity: intPtr(-5)}, clerk)
	if !errors.As(err, &ve) {
		t.Fatalf("negative delta: want ValidationError, got %v", err)
	}
}

func TestEditProduct(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	res, err := l.EditProduct(p, ledger.EditProductInput{
		Name: "Fade Cream XL", Brand: "Apex", Price: 14.00, Quantity: 8, BackupQuantity: 6,
	}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if res.Entry.Type != model.EntryEdit {
		t.Fatalf("want EDIT entry, got %s", res.Entry.Type)
	}
	if res.Entry.PreviousData.Name != "Fade Cream" || res.Entry.NewData.Name != "Fade Cream XL" {
		t.Fatal("EDIT entry must snapshot name change")
	}
	if res.Entry.PreviousData.Price != 12.50 || res.Entry.NewData.Price != 14.00 {
		t.Fatal("EDIT entry must snapshot price change")
	}
	if res.Product.Quantity != 8 || res.Product.BackupQuantity != 6 {
		t.Fatalf("want 8/6, got %d/%d", res.Product.Quantity, res.Product.BackupQuantity)
	}
}

func TestDeleteProductArchivesState(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	res, err := l.DeleteProduct(p, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if res.Entry.Type != model.EntryDelete {
		t.Fatalf("want DELETE entry, got %s", res.Entry.Type)
	}
	snap := res.Entry.PreviousData
	if snap == nil || snap.Brand != "Apex" || snap.Name != "Fade Cream" || snap.Quantity != 10 || snap.BackupQuantity != 5 || snap.Price != 12.50 {
		t.Fatalf("DELETE entry must archive full product state, got %+v", snap)
	}
	if !strings.Contains(res.Entry.Notes, "Apex - Fade Cream") {
		t.Fatalf("unexpected notes: %q", res.Entry.Notes)
	}
}

// Conservation: add changes the combined total by exactly the amount added,
// transfer by zero, sale by exactly the amount sold.
func TestConservation(t *testing.T) {
	l := newLedger()
	p := product(10, 5)
	total := p.TotalAvailable()

	addRes, err := l.AddStock(p, ledger.AddStockInput{AddToQuantity: intPtr(3), AddToBackupQuantity: intPtr(2)}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if addRes.Product.TotalAvailable() != total+5 {
		t.Fatalf("add: want total %d, got %d", total+5, addRes.Product.TotalAvailable())
	}

	trRes, err := l.TransferStock(p, ledger.TransferInput{FromBackupToStock: intPtr(2)}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if trRes.Product.TotalAvailable() != total {
		t.Fatalf("transfer: want total %d, got %d", total, trRes.Product.TotalAvailable())
	}

	saleRes, err := l.RecordSale(p, ledger.SaleInput{Quantity: 7}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	if saleRes.Product.TotalAvailable() != total-7 {
		t.Fatalf("sale: want total %d, got %d", total-7, saleRes.Product.TotalAvailable())
	}
}

// Every successful operation pairs the product mutation with exactly one
// entry whose snapshots equal the states before and after.
func TestAuditPairing(t *testing.T) {
	l := newLedger()
	p := product(10, 5)

	res, err := l.RecordSale(p, ledger.SaleInput{Quantity: 12}, clerk)
	if err != nil {
		t.Fatal(err)
	}
	prev, next := res.Entry.PreviousData, res.Entry.NewData
	if prev.Quantity != p.Quantity || prev.BackupQuantity != p.BackupQuantity {
		t.Fatalf("previous snapshot mismatch: %+v", prev)
	}
	if next.Quantity != res.Product.Quantity || next.BackupQuantity != res.Product.BackupQuantity {
		t.Fatalf("new snapshot mismatch: %+v", next)
	}
	if res.Entry.EmployeeID != clerk.ID || res.Entry.EmployeeName != clerk.Name {
		t.Fatalf("actor not stamped: %+v", res.Entry)
	}
	if res.Entry.ID == res.Product.ID {
		t.Fatal("entry must carry its own identity")
	}
}
