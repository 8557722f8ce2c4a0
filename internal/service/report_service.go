package service

import (
	"errors"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/report"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEntryNotFound   = errors.New("stock entry not found")
	ErrInvalidDayCount = errors.New("day count must be a positive integer")
)

// ReportService serves the history and reporting views over the audit log.
// It reads through the repository interfaces only, so it works the same
// against Postgres and the in-memory doubles.
type ReportService interface {
	GetHistory(filter report.Filter) ([]report.DayGroup, error)
	GetEntries(filter report.Filter) ([]model.StockEntry, error)
	GetEntryByID(id uuid.UUID) (*model.StockEntry, error)
	GetBrandSummary(from, to time.Time) (map[string]report.BrandSummary, error)
	GetDailySalesReport(day time.Time) (string, error)
	PurgeOlderThan(days int) (int64, error)
}

type reportService struct {
	entryRepo   repository.StockEntryRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewReportService(entryRepo repository.StockEntryRepository, productRepo repository.ProductRepository, logger *zap.Logger) ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reportService{
		entryRepo:   entryRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// GetEntries fetches the filter's date window from storage and applies the
// remaining predicates in memory.
func (s *reportService) GetEntries(filter report.Filter) ([]model.StockEntry, error) {
	entries, err := s.entryRepo.FindInRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	return filter.Apply(entries), nil
}

func (s *reportService) GetHistory(filter report.Filter) ([]report.DayGroup, error) {
	entries, err := s.GetEntries(filter)
	if err != nil {
		return nil, err
	}
	return report.GroupByCalendarDay(entries), nil
}

func (s *reportService) GetEntryByID(id uuid.UUID) (*model.StockEntry, error) {
	entry, err := s.entryRepo.FindByID(id)
	if err != nil {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

func (s *reportService) GetBrandSummary(from, to time.Time) (map[string]report.BrandSummary, error) {
	entries, err := s.entryRepo.FindInRange(from, to)
	if err != nil {
		return nil, err
	}
	inventory, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	return report.AggregateByBrand(entries, inventory), nil
}

func (s *reportService) GetDailySalesReport(day time.Time) (string, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)

	entries, err := s.entryRepo.FindInRange(from, to)
	if err != nil {
		return "", err
	}
	return report.DailySalesReport(entries, day), nil
}

// PurgeOlderThan hard-deletes entries older than the given number of days.
// The deletion is permanent; the handler layer gates it behind an explicit
// password re-confirmation.
func (s *reportService) PurgeOlderThan(days int) (int64, error) {
	if days <= 0 {
		return 0, ErrInvalidDayCount
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed, err := s.entryRepo.DeleteOlderThan(cutoff)
	if err != nil {
		return 0, err
	}

	s.logger.Info("purged audit entries",
		zap.Int("older_than_days", days),
		zap.Time("cutoff", cutoff),
		zap.Int64("removed", removed))

	return removed, nil
}
