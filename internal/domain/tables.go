package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysScheduler{},
	&SysOprLog{},
	// Accounts
	&Owner{},
	&Shop{},
	// Billing
	&Product{},
	&Bill{},
	&PaymentOrder{},
}
