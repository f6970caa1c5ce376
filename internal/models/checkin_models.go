package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Check-in record statuses.
const (
	CheckinStatusPending   = "Pending"
	CheckinStatusConfirmed = "Confirmed"
	CheckinStatusCancelled = "Cancelled"
)

// Pending actions a record may be waiting on. Empty means none.
const (
	PendingActionPayment  = "payment"
	PendingActionUnfreeze = "unfreeze"
	PendingActionCheckin  = "check-in"
	PendingActionCheckout = "checkout"
)

// Client types on a check-in record.
const (
	CheckinTypeMember = "Member"
	CheckinTypeWalkin = "Walk-in"
)

// CheckinRecord is the daily transactional record: one row per visit or visit
// attempt, carrying the running tab for that visit. After every mutation
// Balance equals AmountDue minus AmountPaid; a record with Balance <= 0 never
// carries a BalanceDueDate.
type CheckinRecord struct {
	ID                 string           `json:"id" db:"id"`
	Timestamp          time.Time        `json:"timestamp" db:"timestamp"`
	Type               string           `json:"type" db:"type"`
	GymNumber          *string          `json:"gym_number,omitempty" db:"gym_number"`
	WalkinClientID     *int64           `json:"walkin_client_id,omitempty" db:"walkin_client_id"`
	WalkinName         *string          `json:"walkin_name,omitempty" db:"walkin_name"`
	Status             string           `json:"status" db:"status"`
	PendingAction      *string          `json:"pending_action,omitempty" db:"pending_action"`
	AmountDue          decimal.Decimal  `json:"amount_due" db:"amount_due"`
	AmountPaid         decimal.Decimal  `json:"amount_paid" db:"amount_paid"`
	Balance            decimal.Decimal  `json:"balance" db:"balance"`
	CarriedOverBalance decimal.Decimal  `json:"carried_over_balance" db:"carried_over_balance"`
	PaymentPlan        *string          `json:"payment_plan,omitempty" db:"payment_plan"`
	PaymentAmount      *decimal.Decimal `json:"payment_amount,omitempty" db:"payment_amount"`
	ProductsPurchased  []CheckinItem    `json:"products_purchased"`
	BalanceDueDate     *string          `json:"balance_due_date,omitempty" db:"balance_due_date"`
	CheckoutTimestamp  *time.Time       `json:"checkout_timestamp,omitempty" db:"checkout_timestamp"`
	CancelReason       *string          `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CoachAssigned      *string          `json:"coach_assigned,omitempty" db:"coach_assigned"`
	ClassName          *string          `json:"class_name,omitempty" db:"class_name"`
	NeedsCoach         bool             `json:"needs_coach" db:"needs_coach"`
	SessionCompleted   bool             `json:"session_completed" db:"session_completed"`
	IsNewWalkin        bool             `json:"is_new_walkin" db:"is_new_walkin"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`
}

// Line item kinds on a check-in tab.
const (
	ItemKindProduct = "product"
	ItemKindPlan    = "plan"
	ItemKindService = "service"
)

// CheckinItem is one line item attached to a check-in record's tab.
type CheckinItem struct {
	ItemID    string          `json:"item_id" db:"item_id"`
	RecordID  string          `json:"-" db:"record_id"`
	Kind      string          `json:"kind" db:"kind"`
	ProductID *int64          `json:"product_id,omitempty" db:"product_id"`
	PlanID    *int64          `json:"plan_id,omitempty" db:"plan_id"`
	Name      string          `json:"name" db:"name"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// ExtendedPrice is the line total (unit price times quantity).
func (i CheckinItem) ExtendedPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CheckinFilters defines the available filters for querying check-in records.
type CheckinFilters struct {
	Date      *string `form:"date"` // YYYY-MM-DD, matches the creation date
	Status    *string `form:"status"`
	Type      *string `form:"type"`
	GymNumber *string `form:"gym_number"`
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
