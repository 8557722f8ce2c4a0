package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Product catalog
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	// Sales
	{Code: "sale:create", Name: "Record Sale"},
	// Transaction history
	{Code: "transaction:view", Name: "View Transaction History"},
	{Code: "transaction:purge", Name: "Purge Old Transactions"},
	// Reporting
	{Code: "report:view", Name: "View Reports"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
}

// EmployeePrivilegeCodes are the privileges granted to the EMPLOYEE role:
// enough to sell and look things up, nothing that rewrites the catalog.
var EmployeePrivilegeCodes = []string{
	"product:view",
	"sale:create",
	"transaction:view",
	"dashboard:view",
}
