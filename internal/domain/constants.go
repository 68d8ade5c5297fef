package domain

// Order / Payment Statuses. Both columns share one vocabulary.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefund    = "refund"
)

// Payment Methods
const (
	PaymentMethodCard           = "card"
	PaymentMethodBankTransfer   = "bank_transfer"
	PaymentMethodVirtualAccount = "virtual_account"
)

// Lead Statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQuoted    = "quoted"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

// List Exports for API
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusCancelled,
	OrderStatusRefund,
}

var PaymentMethods = []string{
	PaymentMethodCard,
	PaymentMethodBankTransfer,
	PaymentMethodVirtualAccount,
}

var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQuoted,
	LeadStatusWon,
	LeadStatusLost,
}

func IsValidLeadStatus(status string) bool {
	for _, s := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}
