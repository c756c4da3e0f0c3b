package models

// user roles
const (
	RolePrivilege = "PRIVILEGE"
	RoleAdmin     = "ADMIN"
	RoleSales     = "SALES"
	RoleWarehouse = "WAREHOUSE"
)

// user statuses
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

// sale statuses
const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
	SaleStatusVoided    = "VOIDED"
)

// stock entry statuses
const (
	StockEntryStatusCompleted = "COMPLETED"
	StockEntryStatusCancelled = "CANCELLED"
)

// payment methods
const (
	PaymentMethodCash         = "CASH"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
	PaymentMethodCreditCard   = "CREDIT_CARD"
	PaymentMethodDebitCard    = "DEBIT_CARD"
	PaymentMethodEwallet      = "EWALLET"
	PaymentMethodOther        = "OTHER"
)

// activity log actions
const (
	ActionCreateSale          = "CREATE_SALE"
	ActionCancelSale          = "CANCEL_SALE"
	ActionCreateStockEntry    = "CREATE_STOCK_ENTRY"
	ActionCancelStockEntry    = "CANCEL_STOCK_ENTRY"
	ActionCreateUser          = "CREATE_USER"
	ActionUpdateUser          = "UPDATE_USER"
	ActionToggleUserStatus    = "TOGGLE_USER_STATUS"
	ActionUpdateCompany       = "UPDATE_COMPANY"
	ActionCreateProduct       = "CREATE_PRODUCT"
	ActionUpdateProduct       = "UPDATE_PRODUCT"
	ActionDeleteProduct       = "DELETE_PRODUCT"
	ActionCreateVariant       = "CREATE_VARIANT"
	ActionUpdateVariant       = "UPDATE_VARIANT"
	ActionDeleteVariant       = "DELETE_VARIANT"
	ActionCreateCategory      = "CREATE_CATEGORY"
	ActionUpdateCategory      = "UPDATE_CATEGORY"
	ActionDeleteCategory      = "DELETE_CATEGORY"
	ActionCreateCustomer      = "CREATE_CUSTOMER"
	ActionUpdateCustomer      = "UPDATE_CUSTOMER"
	ActionAddVariantType      = "ADD_VARIANT_TYPE"
	ActionUpdateVariantType   = "UPDATE_VARIANT_TYPE"
	ActionDeleteVariantType   = "DELETE_VARIANT_TYPE"
	ActionAddVariantOption    = "ADD_VARIANT_OPTION"
	ActionUpdateVariantOption = "UPDATE_VARIANT_OPTION"
	ActionDeleteVariantOption = "DELETE_VARIANT_OPTION"
)

func IsValidRole(role string) bool {
	switch role {
	case RolePrivilege, RoleAdmin, RoleSales, RoleWarehouse:
		return true
	}
	return false
}

func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodEwallet, PaymentMethodOther:
		return true
	}
	return false
}
