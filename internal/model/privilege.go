package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Registrar venta"
}

// Privilege codes checked by the HTTP routes.
const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"

	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"

	PrivSaleView   = "sale:view"
	PrivSaleCreate = "sale:create"

	PrivPurchaseView   = "purchase:view"
	PrivPurchaseCreate = "purchase:create"

	PrivReportView = "report:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "Ver usuarios"},
	{Code: PrivUserCreate, Name: "Crear usuarios"},
	{Code: PrivUserUpdate, Name: "Editar usuarios"},
	{Code: PrivUserDelete, Name: "Eliminar usuarios"},
	{Code: PrivUserUpdatePrivilege, Name: "Editar privilegios"},
	// Catalog
	{Code: PrivProductView, Name: "Ver productos"},
	{Code: PrivProductCreate, Name: "Crear productos"},
	{Code: PrivProductUpdate, Name: "Editar productos"},
	{Code: PrivProductDelete, Name: "Eliminar productos"},
	// Sales (caja)
	{Code: PrivSaleView, Name: "Ver ventas"},
	{Code: PrivSaleCreate, Name: "Registrar ventas"},
	// Purchases (almacén)
	{Code: PrivPurchaseView, Name: "Ver compras"},
	{Code: PrivPurchaseCreate, Name: "Registrar compras"},
	// Reports
	{Code: PrivReportView, Name: "Ver reportes"},
}
