package model

type Product struct {
	BaseModel
	Name           string  `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Brand          string  `gorm:"type:varchar(255);not null;index" json:"brand" validate:"required"`
	Price          float64 `gorm:"type:numeric(12,2);default:0" json:"price" validate:"gte=0"`
	Quantity       int     `gorm:"default:0" json:"quantity" validate:"gte=0"`        // front stock
	BackupQuantity int     `gorm:"default:0" json:"backup_quantity" validate:"gte=0"` // reserve stock
	ImageURL       string  `gorm:"type:varchar(512)" json:"image_url,omitempty"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`
}

// TotalAvailable is the sellable total across both stock pools.
func (p *Product) TotalAvailable() int {
	return p.Quantity + p.BackupQuantity
}

// Snapshot captures the product's current catalog state for audit records.
func (p *Product) Snapshot() *ProductSnapshot {
	return &ProductSnapshot{
		Name:           p.Name,
		Brand:          p.Brand,
		Price:          p.Price,
		Quantity:       p.Quantity,
		BackupQuantity: p.BackupQuantity,
	}
}
