package service

import (
	"time"

	"go-stock-ledger/internal/repository"
)

type DashboardService interface {
	GetStockMovement(days int) ([]repository.StockMovementData, error)
	GetDashboardStats() (*repository.DashboardStats, error)
}

type dashboardService struct {
	entryRepo repository.StockEntryRepository
}

func NewDashboardService(entryRepo repository.StockEntryRepository) DashboardService {
	return &dashboardService{entryRepo: entryRepo}
}

func (s *dashboardService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.entryRepo.GetStockMovement(startDate, endDate)
}

func (s *dashboardService) GetDashboardStats() (*repository.DashboardStats, error) {
	return s.entryRepo.GetDashboardStats()
}
