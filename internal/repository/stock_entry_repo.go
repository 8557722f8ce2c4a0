package repository

import (
	"time"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockEntryRepository interface {
	Create(entry *model.StockEntry) error
	FindAll() ([]model.StockEntry, error)
	FindInRange(from, to time.Time) ([]model.StockEntry, error)
	FindByID(id uuid.UUID) (*model.StockEntry, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
	GetDashboardStats() (*DashboardStats, error)
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
}

// StockMovementData is one day's inbound/outbound totals for chart data.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats is the overview card data.
type DashboardStats struct {
	TotalProducts  int64   `json:"total_products"`
	LowStockCount  int64   `json:"low_stock_count"`
	TotalValuation float64 `json:"total_valuation"`
}

// lowStockThreshold marks products whose front stock needs a restock or a
// backup transfer.
const lowStockThreshold = 10

type stockEntryRepo struct {
	db *gorm.DB
}

func NewStockEntryRepo(db *gorm.DB) StockEntryRepository {
	return &stockEntryRepo{db}
}

func (r *stockEntryRepo) Create(entry *model.StockEntry) error {
	return r.db.Create(entry).Error
}

func (r *stockEntryRepo) FindAll() ([]model.StockEntry, error) {
	var entries []model.StockEntry
	err := r.db.Preload("Product").Order("occurred_at DESC").Find(&entries).Error
	return entries, err
}

func (r *stockEntryRepo) FindInRange(from, to time.Time) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	q := r.db.Preload("Product").Order("occurred_at DESC")
	if !from.IsZero() {
		q = q.Where("occurred_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("occurred_at <= ?", to)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *stockEntryRepo) FindByID(id uuid.UUID) (*model.StockEntry, error) {
	var entry model.StockEntry
	err := r.db.Preload("Product").First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteOlderThan permanently removes entries whose occurred_at predates the
// cutoff. Hard delete: the retention purge is irreversible.
func (r *stockEntryRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Unscoped().Where("occurred_at < ?", cutoff).Delete(&model.StockEntry{})
	return res.RowsAffected, res.Error
}

func (r *stockEntryRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).Where("quantity < ?", lowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM((quantity + backup_quantity) * price), 0)").
		Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *stockEntryRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.Model(&model.StockEntry{}).
		Select(`
			DATE(occurred_at) as date,
			COALESCE(SUM(CASE WHEN type = 'ADD' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'SALE' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("occurred_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(occurred_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
