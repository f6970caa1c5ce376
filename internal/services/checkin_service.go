package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/repositories"
	"gnexgym_backend/pkg/dates"
	"gnexgym_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Check-in ---
var (
	ErrCheckinNotFound      = errors.New("check-in record not found")
	ErrAlreadyCheckedIn     = errors.New("client already has an active check-in today")
	ErrRecordClosed         = errors.New("check-in record is already checked out")
	ErrInvalidCheckinState  = errors.New("operation not allowed in the record's current state")
	ErrInvalidPaymentAmount = errors.New("payment amount must be positive and not exceed the balance")
	ErrDueDateRequired      = errors.New("a future due date is required while a balance remains")
	ErrCancelReasonRequired = errors.New("a cancellation reason is required")
	ErrProductNotFound      = errors.New("product not found")
	ErrInsufficientStock    = errors.New("insufficient stock for product")
)

// --- Check-in DTOs ---

type CreateCheckinRequest struct {
	Type           string           `json:"type" binding:"required"`
	GymNumber      *string          `json:"gym_number"`
	WalkinClientID *int64           `json:"walkin_client_id"`
	WalkinName     *string          `json:"walkin_name"`
	Status         *string          `json:"status"` // defaults to Pending; Confirmed for logging-only entries
	PendingAction  *string          `json:"pending_action"`
	AmountDue      *decimal.Decimal `json:"amount_due"`
	PaymentPlan    *string          `json:"payment_plan"`
	PaymentAmount  *decimal.Decimal `json:"payment_amount"`
	ClassName      *string          `json:"class_name"`
	NeedsCoach     bool             `json:"needs_coach"`
	IsNewWalkin    bool             `json:"is_new_walkin"`
}

type ConfirmCheckinRequest struct {
	CoachAssigned *string             `json:"coach_assigned"`
	ClassName     *string             `json:"class_name"`
	PaymentPlan   *string             `json:"payment_plan"`
	WalkinPhone   *string             `json:"walkin_phone"`
	SessionPlan   *SessionPlanRequest `json:"session_plan"` // fresh pack for a new/returning walk-in
}

type TabProductRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type TabServiceRequest struct {
	Name     string          `json:"name" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Quantity int             `json:"quantity"`
}

type RecordPaymentRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	NewDueDate *string         `json:"new_due_date"`
}

// --- CheckinService Interface ---
type CheckinService interface {
	Create(req CreateCheckinRequest) (*models.CheckinRecord, error)
	GetByID(id string) (*models.CheckinRecord, error)
	List(filters models.CheckinFilters) ([]models.CheckinRecord, int, error)
	Confirm(id string, req ConfirmCheckinRequest) (*models.CheckinRecord, error)
	Cancel(id string, reason string) (*models.CheckinRecord, error)
	RequestCheckout(id string) (bool, error)
	ConfirmCheckout(id string, balanceDueDate *string) (*models.CheckinRecord, error)
	CancelPendingCheckout(id string) (*models.CheckinRecord, error)
	AddProducts(recordID string, items []TabProductRequest) (*models.CheckinRecord, error)
	AddPlansToTab(recordID string, planIDs []int64) (*models.CheckinRecord, error)
	AddServicesToWalkin(recordID string, items []TabServiceRequest) (*models.CheckinRecord, error)
	RemoveItem(recordID, itemID string) (*models.CheckinRecord, error)
	RecordPayment(recordID string, req RecordPaymentRequest) (*models.CheckinRecord, error)
	AssignCoach(recordID, coachName string) (*models.CheckinRecord, error)
	CompleteSession(recordID string) (*SessionCompleteResult, error)
}

type checkinService struct {
	checkinRepo repositories.CheckinRepository
	memberRepo  repositories.MemberRepository
	walkinRepo  repositories.WalkinRepository
	planRepo    repositories.PricePlanRepository
	productRepo repositories.ProductRepository
	memberSvc   MemberService
	db          *sql.DB
	now         func() time.Time
}

// NewCheckinService creates a new instance of CheckinService.
func NewCheckinService(
	cr repositories.CheckinRepository,
	mr repositories.MemberRepository,
	wr repositories.WalkinRepository,
	pr repositories.PricePlanRepository,
	prod repositories.ProductRepository,
	ms MemberService,
	db *sql.DB,
) CheckinService {
	return &checkinService{
		checkinRepo: cr,
		memberRepo:  mr,
		walkinRepo:  wr,
		planRepo:    pr,
		productRepo: prod,
		memberSvc:   ms,
		db:          db,
		now:         time.Now,
	}
}

// recomputeBalance restores the ledger invariant after any monetary change:
// balance is always amountDue minus amountPaid, and a settled record never
// keeps a balance due date.
func recomputeBalance(rec *models.CheckinRecord) {
	rec.AmountDue = rec.AmountDue.Round(2)
	rec.AmountPaid = rec.AmountPaid.Round(2)
	rec.Balance = rec.AmountDue.Sub(rec.AmountPaid).Round(2)
	if !rec.Balance.IsPositive() {
		rec.BalanceDueDate = nil
	}
}

// Create inserts a new check-in record. Any positive balances left on the
// client's previously checked-out records are swept into this record as
// carried-over debt and zeroed at the source, so debt is never counted twice.
func (s *checkinService) Create(req CreateCheckinRequest) (*models.CheckinRecord, error) {
	if req.Type != models.CheckinTypeMember && req.Type != models.CheckinTypeWalkin {
		return nil, fmt.Errorf("%w: unknown check-in type %q", ErrValidation, req.Type)
	}
	if req.Type == models.CheckinTypeMember {
		if req.GymNumber == nil || *req.GymNumber == "" {
			return nil, fmt.Errorf("%w: member check-in requires a gym number", ErrValidation)
		}
		if _, err := s.memberRepo.GetByGymNumber(*req.GymNumber); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, fmt.Errorf("failed to look up member: %w", err)
		}
	} else if req.WalkinClientID == nil && (req.WalkinName == nil || strings.TrimSpace(*req.WalkinName) == "") {
		return nil, fmt.Errorf("%w: walk-in check-in requires a client or a name", ErrValidation)
	}

	status := models.CheckinStatusPending
	if req.Status != nil && *req.Status != "" {
		if *req.Status != models.CheckinStatusPending && *req.Status != models.CheckinStatusConfirmed {
			return nil, fmt.Errorf("%w: new records must be Pending or Confirmed", ErrValidation)
		}
		status = *req.Status
	}

	now := s.now()
	today := dates.Format(now)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// One active visit per client per day: a confirmed, un-checked-out record
	// must be closed before a new check-in for the same client is accepted.
	_, err = s.checkinRepo.FindActiveForClient(tx, req.Type, req.GymNumber, req.WalkinClientID, today)
	if err == nil {
		return nil, ErrAlreadyCheckedIn
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for an active check-in: %w", err)
	}

	// Carry-over sweep.
	carried := decimal.Zero
	prior, err := s.checkinRepo.ListClosedWithBalance(tx, req.Type, req.GymNumber, req.WalkinClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect carried-over balances: %w", err)
	}
	for _, p := range prior {
		carried = carried.Add(p.Balance)
		if err := s.checkinRepo.ZeroBalance(tx, p.ID); err != nil {
			return nil, fmt.Errorf("failed to zero carried-over balance on record %s: %w", p.ID, err)
		}
	}
	carried = carried.Round(2)

	amountDue := decimal.Zero
	switch {
	case req.AmountDue != nil:
		amountDue = *req.AmountDue
	case req.PaymentAmount != nil:
		amountDue = *req.PaymentAmount
	}
	if amountDue.IsNegative() {
		return nil, fmt.Errorf("%w: amount due cannot be negative", ErrValidation)
	}

	rec := &models.CheckinRecord{
		ID:                 uuid.NewString(),
		Timestamp:          now,
		Type:               req.Type,
		GymNumber:          req.GymNumber,
		WalkinClientID:     req.WalkinClientID,
		WalkinName:         req.WalkinName,
		Status:             status,
		PendingAction:      req.PendingAction,
		AmountDue:          amountDue.Add(carried),
		AmountPaid:         decimal.Zero,
		CarriedOverBalance: carried,
		PaymentPlan:        req.PaymentPlan,
		PaymentAmount:      req.PaymentAmount, // original plan amount, before carry-over
		ClassName:          req.ClassName,
		NeedsCoach:         req.NeedsCoach,
		IsNewWalkin:        req.IsNewWalkin,
		ProductsPurchased:  []models.CheckinItem{},
	}
	recomputeBalance(rec)

	if err := s.checkinRepo.Create(tx, rec); err != nil {
		return nil, fmt.Errorf("failed to create check-in record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit check-in creation: %w", err)
	}
	return rec, nil
}

func (s *checkinService) GetByID(id string) (*models.CheckinRecord, error) {
	rec, err := s.checkinRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCheckinNotFound
		}
		return nil, fmt.Errorf("failed to get check-in record: %w", err)
	}
	return rec, nil
}

func (s *checkinService) List(filters models.CheckinFilters) ([]models.CheckinRecord, int, error) {
	records, total, err := s.checkinRepo.List(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list check-in records: %w", err)
	}
	return records, total, nil
}

// Confirm finalizes a pending record. For walk-ins flagged as new, the
// corresponding walk-in client is created or refreshed in the same
// transaction, including a fresh session pack when one was sold. Coached
// member sessions are deliberately NOT consumed here; that happens only when
// the coach marks the session complete, so a session is never counted twice.
func (s *checkinService) Confirm(id string, req ConfirmCheckinRequest) (*models.CheckinRecord, error) {
	rec, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec.Status == models.CheckinStatusCancelled {
		return nil, fmt.Errorf("%w: record is cancelled", ErrInvalidCheckinState)
	}
	if rec.CheckoutTimestamp != nil {
		return nil, ErrRecordClosed
	}

	if req.CoachAssigned != nil {
		rec.CoachAssigned = req.CoachAssigned
	}
	if req.ClassName != nil {
		rec.ClassName = req.ClassName
	}
	if req.PaymentPlan != nil {
		rec.PaymentPlan = req.PaymentPlan
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if rec.IsNewWalkin && rec.Type == models.CheckinTypeWalkin {
		if err := s.upsertWalkinClient(tx, rec, req); err != nil {
			return nil, err
		}
		rec.IsNewWalkin = false
	}

	rec.Status = models.CheckinStatusConfirmed
	rec.PendingAction = nil

	if err := s.checkinRepo.Update(tx, rec); err != nil {
		return nil, fmt.Errorf("failed to confirm check-in record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}
	return rec, nil
}

func (s *checkinService) upsertWalkinClient(tx repositories.SQLExecutor, rec *models.CheckinRecord, req ConfirmCheckinRequest) error {
	today := dates.Format(s.now())

	if rec.WalkinClientID != nil {
		w, err := s.walkinRepo.GetByID(*rec.WalkinClientID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrWalkinNotFound
			}
			return fmt.Errorf("failed to look up walk-in client: %w", err)
		}
		w.LastVisitDate = &today
		if req.WalkinPhone != nil {
			w.Phone = req.WalkinPhone
		}
		if req.SessionPlan != nil {
			w.SessionPlan = &models.SessionPlan{Name: req.SessionPlan.Name, Total: req.SessionPlan.Total}
		}
		if err := s.walkinRepo.Update(tx, w); err != nil {
			return fmt.Errorf("failed to update walk-in client: %w", err)
		}
		return nil
	}

	if rec.WalkinName == nil || strings.TrimSpace(*rec.WalkinName) == "" {
		return fmt.Errorf("%w: new walk-in record has no client name", ErrValidation)
	}
	w := &models.WalkinClient{
		Name:          strings.TrimSpace(*rec.WalkinName),
		Phone:         req.WalkinPhone,
		LastVisitDate: &today,
	}
	if req.SessionPlan != nil {
		w.SessionPlan = &models.SessionPlan{Name: req.SessionPlan.Name, Total: req.SessionPlan.Total}
	}
	if _, err := s.walkinRepo.Create(tx, w); err != nil {
		return fmt.Errorf("failed to create walk-in client: %w", err)
	}
	rec.WalkinClientID = &w.ID
	return nil
}

// Cancel marks a record Cancelled. Terminal, and a reason is mandatory.
func (s *checkinService) Cancel(id string, reason string) (*models.CheckinRecord, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrCancelReasonRequired
	}
	rec, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec.CheckoutTimestamp != nil {
		return nil, ErrRecordClosed
	}
	if rec.Status == models.CheckinStatusCancelled {
		return nil, fmt.Errorf("%w: record is already cancelled", ErrInvalidCheckinState)
	}
	rec.Status = models.CheckinStatusCancelled
	rec.CancelReason = utils.NewNullString(strings.TrimSpace(reason))
	rec.PendingAction = nil
	if err := s.checkinRepo.Update(s.db, rec); err != nil {
		return nil, fmt.Errorf("failed to cancel check-in record: %w", err)
	}
	return rec, nil
}

// RequestCheckout flags a confirmed, still-open record for checkout. Returns
// false without mutation when any precondition fails.
func (s *checkinService) RequestCheckout(id string) (bool, error) {
	rec, err := s.GetByID(id)
	if err != nil {
		return false, err
	}
	if rec.Status != models.CheckinStatusConfirmed || rec.CheckoutTimestamp != nil || rec.PendingAction != nil {
		return false, nil
	}
	action := models.PendingActionCheckout
	rec.PendingAction = &action
	if err := s.checkinRepo.Update(s.db, rec); err != nil {
		return false, fmt.Errorf("failed to request checkout: %w", err)
	}
	return true, nil
}

// ConfirmCheckout closes the visit. Checkout cannot silently erase debt: with
// a positive balance a future due date must accompany the checkout.
func (s *checkinService) ConfirmCheckout(id string, balanceDueDate *string) (*models.CheckinRecord, error) {
	rec, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec.CheckoutTimestamp != nil {
		return nil, ErrRecordClosed
	}
	if rec.Status != models.CheckinStatusConfirmed {
		return nil, fmt.Errorf("%w: only confirmed records can check out", ErrInvalidCheckinState)
	}

	now := s.now()
	if rec.Balance.IsPositive() {
		if balanceDueDate == nil || *balanceDueDate == "" {
			return nil, ErrDueDateRequired
		}
		due, err := dates.Parse(*balanceDueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: balance due date: %v", ErrDateFormat, err)
		}
		if dates.IsOnOrBefore(due, now) {
			return nil, fmt.Errorf("%w: balance due date must be in the future", ErrDueDateRequired)
		}
		formatted := dates.Format(due)
		rec.BalanceDueDate = &formatted
	}

	rec.CheckoutTimestamp = &now
	rec.PendingAction = nil
	if err := s.checkinRepo.Update(s.db, rec); err != nil {
		return nil, fmt.Errorf("failed to confirm checkout: %w", err)
	}
	return rec, nil
}

// CancelPendingCheckout reverts a requested-but-unconfirmed checkout.
func (s *checkinService) CancelPendingCheckout(id string) (*models.CheckinRecord, error) {
	rec, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec.PendingAction == nil || *rec.PendingAction != models.PendingActionCheckout {
		return nil, fmt.Errorf("%w: no pending checkout to cancel", ErrInvalidCheckinState)
	}
	rec.PendingAction = nil
	if err := s.checkinRepo.Update(s.db, rec); err != nil {
		return nil, fmt.Errorf("failed to cancel pending checkout: %w", err)
	}
	return rec, nil
}

// openForCharges verifies a record's tab can still be changed.
func openForCharges(rec *models.CheckinRecord) error {
	if rec.Status != models.CheckinStatusConfirmed {
		return fmt.Errorf("%w: record must be confirmed to change the tab", ErrInvalidCheckinState)
	}
	if rec.CheckoutTimestamp != nil {
		return ErrRecordClosed
	}
	return nil
}

// AddProducts appends retail products to the tab, adjusting stock for
// tracked products.
func (s *checkinService) AddProducts(recordID string, items []TabProductRequest) (*models.CheckinRecord, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no products selected", ErrValidation)
	}
	rec, err := s.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if err := openForCharges(rec); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	total := decimal.Zero
	for _, itemReq := range items {
		if itemReq.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %d must be positive", ErrValidation, itemReq.ProductID)
		}
		product, err := s.productRepo.GetByID(itemReq.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, itemReq.ProductID)
			}
			return nil, fmt.Errorf("failed to fetch product %d: %w", itemReq.ProductID, err)
		}
		if product.Stock != nil {
			if *product.Stock < itemReq.Quantity {
				return nil, fmt.Errorf("%w: %s (requested %d, available %d)",
					ErrInsufficientStock, product.Name, itemReq.Quantity, *product.Stock)
			}
			newStock := *product.Stock - itemReq.Quantity
			product.Stock = &newStock
			if err := s.productRepo.Update(tx, product); err != nil {
				return nil, fmt.Errorf("failed to update stock for product %d: %w", product.ID, err)
			}
		}

		productID := product.ID
		item := models.CheckinItem{
			ItemID:    uuid.NewString(),
			RecordID:  rec.ID,
			Kind:      models.ItemKindProduct,
			ProductID: &productID,
			Name:      product.Name,
			Quantity:  itemReq.Quantity,
			Price:     product.Price,
		}
		if err := s.checkinRepo.AddItem(tx, &item); err != nil {
			return nil, fmt.Errorf("failed to add product line item: %w", err)
		}
		rec.ProductsPurchased = append(rec.ProductsPurchased, item)
		total = total.Add(item.ExtendedPrice())
	}

	rec.AmountDue = rec.AmountDue.Add(total)
	recomputeBalance(rec)
	if err := s.checkinRepo.Update(tx, rec); err != nil {
		return nil, fmt.Errorf("failed to update check-in record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product charge: %w", err)
	}
	return rec, nil
}

// AddPlansToTab puts plan purchases on a member's tab. The member's ledger
// state reflects the charge immediately (as an "added to tab" note) even
// though payment is deferred, and coach-typed plans flag the record as
// needing a coach.
func (s *checkinService) AddPlansToTab(recordID string, planIDs []int64) (*models.CheckinRecord, error) {
	if len(planIDs) == 0 {
		return nil, fmt.Errorf("%w: no plans selected", ErrValidation)
	}
	rec, err := s.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if err := openForCharges(rec); err != nil {
		return nil, err
	}
	if rec.Type != models.CheckinTypeMember || rec.GymNumber == nil {
		return nil, fmt.Errorf("%w: plans can only be added to a member's tab", ErrValidation)
	}
	member, err := s.memberRepo.GetByGymNumber(*rec.GymNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}
	plans, err := s.planRepo.GetByIDs(planIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price plans: %w", err)
	}
	if len(plans) != len(planIDs) {
		return nil, fmt.Errorf("%w: requested %d plans, found %d", ErrPlanNotFound, len(planIDs), len(plans))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	total := decimal.Zero
	for i := range plans {
		if plans[i].Type == models.PlanTypeCoach {
			rec.NeedsCoach = true
		}
		planID := plans[i].ID
		item := models.CheckinItem{
			ItemID:   uuid.NewString(),
			RecordID: rec.ID,
			Kind:     models.ItemKindPlan,
			PlanID:   &planID,
			Name:     plans[i].Name,
			Quantity: 1,
			Price:    plans[i].Amount,
		}
		if err := s.checkinRepo.AddItem(tx, &item); err != nil {
			return nil, fmt.Errorf("failed to add plan line item: %w", err)
		}
		rec.ProductsPurchased = append(rec.ProductsPurchased, item)
		total = total.Add(item.ExtendedPrice())
	}

	// Apply the plan effects to the member ledger now, as a deferred charge.
	if err := applyPlansInTx(tx, s.memberRepo, member, plans, false, nil, s.now()); err != nil {
		return nil, err
	}

	rec.AmountDue = rec.AmountDue.Add(total)
	recomputeBalance(rec)
	if err := s.checkinRepo.Update(tx, rec); err != nil {
		return nil, fmt.Errorf("failed to update check-in record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit plan charge: %w", err)
	}
	return rec, nil
}

// AddServicesToWalkin appends ad hoc service charges to a walk-in tab.
func (s *checkinService) AddServicesToWalkin(recordID string, items []TabServiceRequest) (*models.CheckinRecord, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no services selected", ErrValidation)
	}
	rec, err := s.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if err := openForCharges(rec); err != nil {
		return nil, err
	}
	if rec.Type != models.CheckinTypeWalkin {
		return nil, fmt.Errorf("%w: services can only be added to a walk-in tab", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	total := decimal.Zero
	for _, itemReq := range items {
		if strings.TrimSpace(itemReq.Name) == "" {
			return nil, fmt.Errorf("%w: service name cannot be empty", ErrValidation)
		}
		if itemReq.Price.IsNegative() {
			return nil, fmt.Errorf("%w: service price cannot be negative", ErrValidation)
		}
		qty := itemReq.Quantity
		if qty <= 0 {
			qty = 1
		}
		item := models.CheckinItem{
			ItemID:   uuid.NewString(),
			RecordID: rec.ID,
			Kind:     models.ItemKindService,
			Name:     strings.TrimSpace(itemReq.Name),
			Quantity: qty,
			Price:    itemReq.Price,
		}
		if err := s.checkinRepo.AddItem(tx, &item); err != nil {
			return nil, fmt.Errorf("failed to add service line item: %w", err)
		}
		rec.ProductsPurchased = append(rec.ProductsPurchased, item)
		total = total.Add(item.ExtendedPrice())
	}

	rec.AmountDue = rec.AmountDue.Add(total)
	recomputeBalance(rec)
	if err := s.checkinRepo.Update(tx, rec); err != nil {
		return nil, fmt.Errorf("failed to update check-in record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit service charge: %w", err)
	}
	return rec, nil
}

// RemoveItem takes one line item off the tab, restoring tracked product stock.
func (s *checkinService) RemoveItem(recordID, itemID string) (*models.CheckinRecord, error) {
	rec, err := s.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if err := openForCharges(rec); err != nil {
		return nil, err
	}
	item, err := s.checkinRepo.GetItem(recordID, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: line item %s", ErrCheckinNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to fetch line item: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.checkinRepo.DeleteItem(tx, recordID, itemID); err != nil {
		return nil, fmt.Errorf("failed to delete line item: %w", err)
	}
	if item.Kind == models.ItemKindProduct && item.ProductID != nil {
		product, err := s.productRepo.GetByID(*item.ProductID)
		if err == nil && product.Stock != nil {
			restored := *product.Stock + item.Quantity
			product.Stock = &restored
			if err := s.productRepo.Update(tx, product); err != nil {
				return nil, fmt.Errorf("failed to restore stock for product %d: %w", product.ID, err)
			}
		}
	}

	rec.AmountDue = rec.AmountDue.Sub(item.ExtendedPrice())
	recomputeBalance(rec)

	kept := rec.ProductsPurchased[:0]
	for _, it := range rec.ProductsPurchased {
		if it.ItemID != itemID {
			kept = append(kept, it)
		}
	}
	rec.ProductsPurchased = kept

	if err := s.checkinRepo.Update(tx, rec); err != nil {
		return nil, fmt.Errorf("failed to update check-in record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item removal: %w", err)
	}
	return rec, nil
}

// RecordPayment settles part or all of the record's balance. The payment must
// be positive and must not exceed the balance; a remaining balance requires a
// new due date.
func (s *checkinService) RecordPayment(recordID string, req RecordPaymentRequest) (*models.CheckinRecord, error) {
	rec, err := s.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status == models.CheckinStatusCancelled {
		return nil, fmt.Errorf("%w: record is cancelled", ErrInvalidCheckinState)
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() || amount.GreaterThan(rec.Balance) {
		return nil, ErrInvalidPaymentAmount
	}

	rec.AmountPaid = rec.AmountPaid.Add(amount)
	recomputeBalance(rec)

	if rec.Balance.IsPositive() {
		if req.NewDueDate == nil || *req.NewDueDate == "" {
			return nil, ErrDueDateRequired
		}
		due, err := dates.Parse(*req.NewDueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: new due date: %v", ErrDateFormat, err)
		}
		formatted := dates.Format(due)
		rec.BalanceDueDate = &formatted
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.checkinRepo.Update(tx, rec); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if rec.Type == models.CheckinTypeMember && rec.GymNumber != nil {
		if member, err := s.memberRepo.GetByGymNumber(*rec.GymNumber); err == nil {
			entry := &models.HistoryEntry{
				Type:          models.HistoryTypePayment,
				Title:         "Payment on tab",
				PaymentAmount: &amount,
			}
			if _, err := s.memberRepo.AddHistory(tx, member.ID, entry); err != nil {
				return nil, fmt.Errorf("failed to record payment history: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}
	return rec, nil
}

// AssignCoach is a pure field update with no effect on balances.
func (s *checkinService) AssignCoach(recordID, coachName string) (*models.CheckinRecord, error) {
	if strings.TrimSpace(coachName) == "" {
		return nil, fmt.Errorf("%w: coach name cannot be empty", ErrValidation)
	}
	rec, err := s.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	rec.CoachAssigned = utils.NewNullString(strings.TrimSpace(coachName))
	if err := s.checkinRepo.Update(s.db, rec); err != nil {
		return nil, fmt.Errorf("failed to assign coach: %w", err)
	}
	return rec, nil
}

// CompleteSession is the coach's confirmation on the day's record: it
// consumes the member's session (the only place that happens) and flags the
// record so the kiosk stops prompting.
func (s *checkinService) CompleteSession(recordID string) (*SessionCompleteResult, error) {
	rec, err := s.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.CheckinStatusConfirmed {
		return nil, fmt.Errorf("%w: record must be confirmed", ErrInvalidCheckinState)
	}
	if rec.Type != models.CheckinTypeMember || rec.GymNumber == nil {
		return nil, fmt.Errorf("%w: only member sessions can be completed", ErrValidation)
	}
	if rec.SessionCompleted {
		return nil, fmt.Errorf("%w: session already completed for this visit", ErrInvalidCheckinState)
	}
	member, err := s.memberRepo.GetByGymNumber(*rec.GymNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}

	result, err := s.memberSvc.MarkSessionComplete(member.ID)
	if err != nil {
		return nil, err
	}

	rec.SessionCompleted = true
	if err := s.checkinRepo.Update(s.db, rec); err != nil {
		return nil, fmt.Errorf("failed to flag session completion: %w", err)
	}
	return result, nil
}
