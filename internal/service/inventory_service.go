package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-stock-ledger/internal/ledger"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/ws"
	"go-stock-ledger/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

type InventoryService interface {
	CreateProduct(req *CreateProductRequest, actor ledger.Actor) (*model.Product, error)
	EditProduct(id uuid.UUID, req *EditProductRequest, actor ledger.Actor) (*model.Product, error)
	AddStock(id uuid.UUID, req *AddStockRequest, actor ledger.Actor) (*model.Product, error)
	TransferStock(id uuid.UUID, req *TransferStockRequest, actor ledger.Actor) (*model.Product, error)
	RecordSale(req *RecordSaleRequest, actor ledger.Actor) (*model.Product, *model.StockEntry, error)
	DeleteProduct(id uuid.UUID, actor ledger.Actor) error
	GetAllProducts() ([]model.Product, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
}

type CreateProductRequest struct {
	Name           string  `json:"name" validate:"required"`
	Brand          string  `json:"brand" validate:"required"`
	Price          float64 `json:"price" validate:"gte=0"`
	Quantity       int     `json:"quantity" validate:"gte=0"`
	BackupQuantity int     `json:"backup_quantity" validate:"gte=0"`
	ImageURL       string  `json:"image_url"`
}

type EditProductRequest struct {
	Name           string  `json:"name" validate:"required"`
	Brand          string  `json:"brand" validate:"required"`
	Price          float64 `json:"price" validate:"gte=0"`
	Quantity       int     `json:"quantity" validate:"gte=0"`
	BackupQuantity int     `json:"backup_quantity" validate:"gte=0"`
	ImageURL       string  `json:"image_url"`
}

// AddStockRequest carries additive restock deltas; at least one must be set.
type AddStockRequest struct {
	AddToQuantity       *int `json:"quantity"`
	AddToBackupQuantity *int `json:"backup_quantity"`
}

// TransferStockRequest carries exactly one transfer direction.
type TransferStockRequest struct {
	FromBackupToStock *int `json:"from_backup_to_stock"`
	FromStockToBackup *int `json:"from_stock_to_backup"`
}

type RecordSaleRequest struct {
	ProductID  string     `json:"product_id" validate:"required"`
	Quantity   int        `json:"quantity" validate:"required,gt=0"`
	OccurredAt *time.Time `json:"occurred_at"`
}

type inventoryService struct {
	ledger      *ledger.Ledger
	productRepo repository.ProductRepository
	db          *gorm.DB
	wsHub       *ws.Hub
	logger      *zap.Logger
}

// NewInventoryService wires the write path. Audit entries are persisted inside
// the same transaction as the product row, not through the entry repository.
func NewInventoryService(l *ledger.Ledger, pRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub, logger *zap.Logger) InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inventoryService{
		ledger:      l,
		productRepo: pRepo,
		db:          db,
		wsHub:       hub,
		logger:      logger,
	}
}

func (s *inventoryService) CreateProduct(req *CreateProductRequest, actor ledger.Actor) (*model.Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	res, err := s.ledger.CreateProduct(ledger.CreateProductInput{
		Name:           req.Name,
		Brand:          req.Brand,
		Price:          req.Price,
		Quantity:       req.Quantity,
		BackupQuantity: req.BackupQuantity,
		ImageURL:       req.ImageURL,
	}, actor)
	if err != nil {
		return nil, err
	}

	stampActor(&res.Product, actor)

	// Product and its audit entry commit together or not at all.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&res.Product).Error; err != nil {
			return err
		}
		return tx.Create(&res.Entry).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", res.Product.ID.String()),
		zap.String("employee", actor.Name))
	s.broadcast("product_created", res, actor, fmt.Sprintf("%s added product '%s'", actor.Name, res.Product.Name))

	return &res.Product, nil
}

func (s *inventoryService) EditProduct(id uuid.UUID, req *EditProductRequest, actor ledger.Actor) (*model.Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.mutate(id, actor, "product_updated", func(current model.Product) (*ledger.Result, error) {
		return s.ledger.EditProduct(current, ledger.EditProductInput{
			Name:           req.Name,
			Brand:          req.Brand,
			Price:          req.Price,
			Quantity:       req.Quantity,
			BackupQuantity: req.BackupQuantity,
			ImageURL:       req.ImageURL,
		}, actor)
	})
}

func (s *inventoryService) AddStock(id uuid.UUID, req *AddStockRequest, actor ledger.Actor) (*model.Product, error) {
	return s.mutate(id, actor, "stock_added", func(current model.Product) (*ledger.Result, error) {
		return s.ledger.AddStock(current, ledger.AddStockInput{
			AddToQuantity:       req.AddToQuantity,
			AddToBackupQuantity: req.AddToBackupQuantity,
		}, actor)
	})
}

func (s *inventoryService) TransferStock(id uuid.UUID, req *TransferStockRequest, actor ledger.Actor) (*model.Product, error) {
	return s.mutate(id, actor, "stock_transferred", func(current model.Product) (*ledger.Result, error) {
		return s.ledger.TransferStock(current, ledger.TransferInput{
			FromBackupToStock: req.FromBackupToStock,
			FromStockToBackup: req.FromStockToBackup,
		}, actor)
	})
}

func (s *inventoryService) RecordSale(req *RecordSaleRequest, actor ledger.Actor) (*model.Product, *model.StockEntry, error) {
	if err := validateRequest(req); err != nil {
		return nil, nil, err
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, nil, ErrProductNotFound
	}

	var result *ledger.Result
	err = s.lockAndCommit(productID, func(current model.Product) (*ledger.Result, error) {
		res, err := s.ledger.RecordSale(current, ledger.SaleInput{
			Quantity:   req.Quantity,
			OccurredAt: req.OccurredAt,
		}, actor)
		if err == nil {
			result = res
		}
		return res, err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("sale recorded",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", req.Quantity),
		zap.Int("remaining", result.Product.Quantity),
		zap.Int("backup", result.Product.BackupQuantity),
		zap.String("employee", actor.Name))
	s.broadcast("sale_recorded", result, actor,
		fmt.Sprintf("%s sold %d units of '%s'", actor.Name, req.Quantity, result.Product.Name))

	return &result.Product, &result.Entry, nil
}

func (s *inventoryService) DeleteProduct(id uuid.UUID, actor ledger.Actor) error {
	var result *ledger.Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current model.Product
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&current, "id = ?", id).Error; err != nil {
			return ErrProductNotFound
		}

		res, err := s.ledger.DeleteProduct(current, actor)
		if err != nil {
			return err
		}

		// The DELETE entry lands first so the archive snapshot exists even if
		// the removal itself is what fails.
		if err := tx.Create(&res.Entry).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Product{}).Where("id = ?", id).Update("deleted_by", actor.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Product{}, "id = ?", id).Error; err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted",
		zap.String("product_id", id.String()),
		zap.String("employee", actor.Name))
	s.broadcast("product_deleted", result, actor,
		fmt.Sprintf("%s deleted product '%s'", actor.Name, result.Product.Name))

	return nil
}

func (s *inventoryService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *inventoryService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// mutate runs a ledger operation against the locked current product state and
// persists product + entry atomically, then broadcasts the change.
func (s *inventoryService) mutate(id uuid.UUID, actor ledger.Actor, action string, op func(model.Product) (*ledger.Result, error)) (*model.Product, error) {
	var result *ledger.Result
	err := s.lockAndCommit(id, func(current model.Product) (*ledger.Result, error) {
		res, err := op(current)
		if err == nil {
			result = res
		}
		return res, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(action,
		zap.String("product_id", id.String()),
		zap.String("employee", actor.Name))
	s.broadcast(action, result, actor, result.Entry.Notes)

	return &result.Product, nil
}

// lockAndCommit is the single-writer-per-product guarantee: the row is locked
// FOR UPDATE, the ledger computes against that snapshot, and the new state
// commits with its audit entry in the same transaction.
func (s *inventoryService) lockAndCommit(id uuid.UUID, op func(model.Product) (*ledger.Result, error)) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var current model.Product
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&current, "id = ?", id).Error; err != nil {
			return ErrProductNotFound
		}

		res, err := op(current)
		if err != nil {
			return err
		}

		if err := tx.Save(&res.Product).Error; err != nil {
			return err
		}
		return tx.Create(&res.Entry).Error
	})
}

func (s *inventoryService) broadcast(action string, res *ledger.Result, actor ledger.Actor, message string) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": action,
			"product": map[string]interface{}{
				"id":              res.Product.ID,
				"name":            res.Product.Name,
				"brand":           res.Product.Brand,
				"quantity":        res.Product.Quantity,
				"backup_quantity": res.Product.BackupQuantity,
				"price":           res.Product.Price,
			},
			"entry": map[string]interface{}{
				"id":    res.Entry.ID,
				"type":  res.Entry.Type,
				"notes": res.Entry.Notes,
			},
			"user": map[string]interface{}{
				"id":   actor.ID,
				"name": actor.Name,
			},
			"message": message,
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}

func stampActor(product *model.Product, actor ledger.Actor) {
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID
	id := actor.ID
	product.CreatedByUserID = &id
	product.UpdatedByUserID = &id
}

func validateRequest(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	return nil
}
