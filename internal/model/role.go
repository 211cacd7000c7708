package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, WAREHOUSE, CASHIER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin     = "ADMIN"
	RoleWarehouse = "WAREHOUSE"
	RoleCashier   = "CASHIER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrador",
		Description: "Acceso completo al sistema",
	},
	{
		Code:        RoleWarehouse,
		Name:        "Almacén",
		Description: "Catálogo, compras y reportes",
	},
	{
		Code:        RoleCashier,
		Name:        "Caja",
		Description: "Consulta de productos y registro de ventas",
	},
}

// DefaultRolePrivileges lists the privilege codes granted to each role at seed time.
// A nil entry means every privilege.
var DefaultRolePrivileges = map[string][]string{
	RoleAdmin: nil,
	RoleWarehouse: {
		PrivProductView, PrivProductCreate, PrivProductUpdate,
		PrivPurchaseView, PrivPurchaseCreate,
		PrivSaleView, PrivReportView,
	},
	RoleCashier: {
		PrivProductView,
		PrivSaleView, PrivSaleCreate,
	},
}
