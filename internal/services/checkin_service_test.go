package services

import (
	"database/sql"
	"testing"
	"time"

	"gnexgym_backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type checkinFixture struct {
	svc         *checkinService
	checkinRepo *fakeCheckinRepo
	memberRepo  *fakeMemberRepo
	walkinRepo  *fakeWalkinRepo
	planRepo    *fakePlanRepo
	productRepo *fakeProductRepo
}

func newCheckinFixture(t *testing.T, db *sql.DB) *checkinFixture {
	t.Helper()
	f := &checkinFixture{
		checkinRepo: newFakeCheckinRepo(),
		memberRepo:  newFakeMemberRepo(),
		walkinRepo:  newFakeWalkinRepo(),
		planRepo:    newFakePlanRepo(),
		productRepo: newFakeProductRepo(),
	}
	memberSvc := NewMemberService(f.memberRepo, f.planRepo, db).(*memberService)
	memberSvc.now = func() time.Time { return testToday }
	f.svc = NewCheckinService(f.checkinRepo, f.memberRepo, f.walkinRepo, f.planRepo, f.productRepo, memberSvc, db).(*checkinService)
	f.svc.now = func() time.Time { return testToday }
	return f
}

func (f *checkinFixture) seedMember(t *testing.T, gymNumber string) *models.Member {
	t.Helper()
	m := &models.Member{GymNumber: gymNumber, Name: "Member " + gymNumber, Status: models.StatusActive}
	_, err := f.memberRepo.Create(nil, m)
	require.NoError(t, err)
	return m
}

func (f *checkinFixture) seedRecord(t *testing.T, rec *models.CheckinRecord) *models.CheckinRecord {
	t.Helper()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = testToday
	}
	require.NoError(t, f.checkinRepo.Create(nil, rec))
	return rec
}

func strPtr(s string) *string { return &s }

func TestCreateCheckinValidatesClient(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 0))

	_, err := f.svc.Create(CreateCheckinRequest{Type: "Alien"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(CreateCheckinRequest{Type: models.CheckinTypeMember})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(CreateCheckinRequest{Type: models.CheckinTypeMember, GymNumber: strPtr("G-0042")})
	require.ErrorIs(t, err, ErrMemberNotFound)

	_, err = f.svc.Create(CreateCheckinRequest{Type: models.CheckinTypeWalkin})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateCheckinSweepsCarriedBalances(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 2))
	f.seedMember(t, "G-0001")

	// Two checked-out visits left unpaid balances behind.
	closed := testToday.Add(-48 * time.Hour)
	first := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed, Timestamp: closed,
		AmountDue: dec("100"), AmountPaid: dec("90"), Balance: dec("10"),
		CheckoutTimestamp: &closed, BalanceDueDate: strPtr("2025-03-20"),
	})
	second := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed, Timestamp: closed,
		AmountDue: dec("5"), AmountPaid: dec("0"), Balance: dec("5"),
		CheckoutTimestamp: &closed,
	})

	amount := dec("20")
	rec, err := f.svc.Create(CreateCheckinRequest{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"), PaymentAmount: &amount,
	})
	require.NoError(t, err)
	require.True(t, rec.CarriedOverBalance.Equal(dec("15")), "carried %s", rec.CarriedOverBalance)
	require.True(t, rec.AmountDue.Equal(dec("35")))
	require.True(t, rec.Balance.Equal(dec("35")))
	require.True(t, rec.PaymentAmount.Equal(dec("20")), "original plan amount survives")

	// The swept records no longer carry debt, so a second visit carries none.
	for _, id := range []string{first.ID, second.ID} {
		stored, err := f.checkinRepo.GetByID(id)
		require.NoError(t, err)
		require.True(t, stored.Balance.IsZero())
		require.Nil(t, stored.BalanceDueDate)
	}

	again, err := f.svc.Create(CreateCheckinRequest{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
	})
	require.NoError(t, err)
	require.True(t, again.CarriedOverBalance.IsZero())
	require.True(t, again.AmountDue.IsZero())
}

func TestCreateCheckinRejectsSecondActiveVisitSameDay(t *testing.T) {
	f := newCheckinFixture(t, newRollbackDB(t, 1))
	f.seedMember(t, "G-0001")
	f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed,
	})

	_, err := f.svc.Create(CreateCheckinRequest{Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001")})
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestConfirmCreatesNewWalkinClient(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 1))
	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeWalkin, WalkinName: strPtr("Guest One"),
		Status: models.CheckinStatusPending, IsNewWalkin: true,
	})

	confirmed, err := f.svc.Confirm(rec.ID, ConfirmCheckinRequest{
		WalkinPhone: strPtr("+7 702 111 2233"),
		SessionPlan: &SessionPlanRequest{Name: "5 Sessions", Total: 5},
	})
	require.NoError(t, err)
	require.Equal(t, models.CheckinStatusConfirmed, confirmed.Status)
	require.False(t, confirmed.IsNewWalkin)
	require.NotNil(t, confirmed.WalkinClientID)

	w, err := f.walkinRepo.GetByID(*confirmed.WalkinClientID)
	require.NoError(t, err)
	require.Equal(t, "Guest One", w.Name)
	require.Equal(t, "2025-03-15", *w.LastVisitDate)
	require.Equal(t, 5, w.SessionPlan.Total)
}

func TestConfirmRejectsCancelledAndClosedRecords(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 0))
	cancelled := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusCancelled,
	})
	_, err := f.svc.Confirm(cancelled.ID, ConfirmCheckinRequest{})
	require.ErrorIs(t, err, ErrInvalidCheckinState)

	now := testToday
	closed := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed, CheckoutTimestamp: &now,
	})
	_, err = f.svc.Confirm(closed.ID, ConfirmCheckinRequest{})
	require.ErrorIs(t, err, ErrRecordClosed)
}

func TestRequestCheckoutPreconditions(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 0))

	pending := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusPending,
	})
	ok, err := f.svc.RequestCheckout(pending.ID)
	require.NoError(t, err)
	require.False(t, ok)

	stored, err := f.checkinRepo.GetByID(pending.ID)
	require.NoError(t, err)
	require.Nil(t, stored.PendingAction)

	confirmed := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0002"),
		Status: models.CheckinStatusConfirmed,
	})
	ok, err = f.svc.RequestCheckout(confirmed.ID)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err = f.checkinRepo.GetByID(confirmed.ID)
	require.NoError(t, err)
	require.Equal(t, models.PendingActionCheckout, *stored.PendingAction)

	// A second request while one is pending is refused.
	ok, err = f.svc.RequestCheckout(confirmed.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConfirmCheckoutBlocksUnsettledBalance(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 0))
	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status:    models.CheckinStatusConfirmed,
		AmountDue: dec("50"), Balance: dec("50"),
	})

	_, err := f.svc.ConfirmCheckout(rec.ID, nil)
	require.ErrorIs(t, err, ErrDueDateRequired)

	// A due date in the past does not count.
	_, err = f.svc.ConfirmCheckout(rec.ID, strPtr("2025-03-10"))
	require.ErrorIs(t, err, ErrDueDateRequired)

	closed, err := f.svc.ConfirmCheckout(rec.ID, strPtr("2025-03-25"))
	require.NoError(t, err)
	require.NotNil(t, closed.CheckoutTimestamp)
	require.Equal(t, "2025-03-25", *closed.BalanceDueDate)

	_, err = f.svc.ConfirmCheckout(rec.ID, nil)
	require.ErrorIs(t, err, ErrRecordClosed)
}

func TestCancelPendingCheckout(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 0))
	action := models.PendingActionCheckout
	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed, PendingAction: &action,
	})

	reverted, err := f.svc.CancelPendingCheckout(rec.ID)
	require.NoError(t, err)
	require.Nil(t, reverted.PendingAction)
	require.Nil(t, reverted.CheckoutTimestamp)

	_, err = f.svc.CancelPendingCheckout(rec.ID)
	require.ErrorIs(t, err, ErrInvalidCheckinState)
}

func TestCancelRequiresReason(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 0))
	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusPending,
	})

	_, err := f.svc.Cancel(rec.ID, "  ")
	require.ErrorIs(t, err, ErrCancelReasonRequired)

	cancelled, err := f.svc.Cancel(rec.ID, "front desk mistake")
	require.NoError(t, err)
	require.Equal(t, models.CheckinStatusCancelled, cancelled.Status)
	require.Equal(t, "front desk mistake", *cancelled.CancelReason)
}

func TestAddProductsAdjustsStockAndBalance(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 2))
	stock := 10
	product := &models.Product{Name: "Protein Bar", Price: dec("2.50"), Stock: &stock}
	_, err := f.productRepo.Create(nil, product)
	require.NoError(t, err)

	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed,
	})

	updated, err := f.svc.AddProducts(rec.ID, []TabProductRequest{{ProductID: product.ID, Quantity: 4}})
	require.NoError(t, err)
	require.True(t, updated.AmountDue.Equal(dec("10")))
	require.True(t, updated.Balance.Equal(dec("10")))
	require.Len(t, updated.ProductsPurchased, 1)

	stored, err := f.productRepo.GetByID(product.ID)
	require.NoError(t, err)
	require.Equal(t, 6, *stored.Stock)

	// Removing the line item restores stock and settles the balance.
	itemID := updated.ProductsPurchased[0].ItemID
	after, err := f.svc.RemoveItem(rec.ID, itemID)
	require.NoError(t, err)
	require.True(t, after.AmountDue.IsZero())
	require.True(t, after.Balance.IsZero())
	require.Nil(t, after.BalanceDueDate)

	stored, err = f.productRepo.GetByID(product.ID)
	require.NoError(t, err)
	require.Equal(t, 10, *stored.Stock)
}

func TestRemoveItemRejectsCancelledRecord(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 0))
	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeWalkin, WalkinName: strPtr("Guest"),
		Status:    models.CheckinStatusCancelled,
		AmountDue: dec("15"), Balance: dec("15"),
	})
	item := models.CheckinItem{
		ItemID: uuid.NewString(), RecordID: rec.ID,
		Kind: models.ItemKindService, Name: "Sauna", Quantity: 1, Price: dec("15"),
	}
	require.NoError(t, f.checkinRepo.AddItem(nil, &item))

	_, err := f.svc.RemoveItem(rec.ID, item.ItemID)
	require.ErrorIs(t, err, ErrInvalidCheckinState)

	// The cancelled record's amounts and tab stay frozen.
	stored, err := f.checkinRepo.GetByID(rec.ID)
	require.NoError(t, err)
	require.True(t, stored.AmountDue.Equal(dec("15")))
	require.Len(t, stored.ProductsPurchased, 1)
}

func TestAddProductsInsufficientStock(t *testing.T) {
	f := newCheckinFixture(t, newRollbackDB(t, 1))
	stock := 2
	product := &models.Product{Name: "Shaker", Price: dec("8"), Stock: &stock}
	_, err := f.productRepo.Create(nil, product)
	require.NoError(t, err)

	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed,
	})

	_, err = f.svc.AddProducts(rec.ID, []TabProductRequest{{ProductID: product.ID, Quantity: 3}})
	require.ErrorIs(t, err, ErrInsufficientStock)

	stored, err := f.productRepo.GetByID(product.ID)
	require.NoError(t, err)
	require.Equal(t, 2, *stored.Stock)
}

func TestAddPlansToTabFlagsCoachAndDefersPayment(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 1))
	member := f.seedMember(t, "G-0001")

	plan := &models.PricePlan{
		Name: "10 Sessions", Amount: dec("50000"),
		Type: models.PlanTypeCoach, Effect: DeriveEffect("10 Sessions"),
	}
	planID, err := f.planRepo.Create(nil, plan)
	require.NoError(t, err)

	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed,
	})

	updated, err := f.svc.AddPlansToTab(rec.ID, []int64{planID})
	require.NoError(t, err)
	require.True(t, updated.NeedsCoach)
	require.True(t, updated.AmountDue.Equal(dec("50000")))
	require.Len(t, updated.ProductsPurchased, 1)
	require.Equal(t, models.ItemKindPlan, updated.ProductsPurchased[0].Kind)

	// The member's ledger reflects the pack immediately, logged as a tab
	// charge rather than a settled payment.
	stored, err := f.memberRepo.GetByID(member.ID)
	require.NoError(t, err)
	require.True(t, stored.HasCoach)
	require.Equal(t, 10, stored.TotalSessions)

	entries, err := f.memberRepo.GetHistory(member.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.HistoryTypeNote, entries[0].Type)
}

func TestAddServicesToWalkinOnly(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 1))
	f.seedMember(t, "G-0001")

	memberRec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed,
	})
	_, err := f.svc.AddServicesToWalkin(memberRec.ID, []TabServiceRequest{{Name: "Sauna", Price: dec("15")}})
	require.ErrorIs(t, err, ErrValidation)

	id := int64(7)
	walkinRec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeWalkin, WalkinClientID: &id,
		Status: models.CheckinStatusConfirmed,
	})
	updated, err := f.svc.AddServicesToWalkin(walkinRec.ID, []TabServiceRequest{
		{Name: "Sauna", Price: dec("15"), Quantity: 2},
	})
	require.NoError(t, err)
	require.True(t, updated.AmountDue.Equal(dec("30")))
}

func TestRecordPaymentBoundsAndDueDate(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 2))
	f.seedMember(t, "G-0001")
	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status:    models.CheckinStatusConfirmed,
		AmountDue: dec("100"), Balance: dec("100"),
	})

	_, err := f.svc.RecordPayment(rec.ID, RecordPaymentRequest{Amount: dec("0")})
	require.ErrorIs(t, err, ErrInvalidPaymentAmount)

	_, err = f.svc.RecordPayment(rec.ID, RecordPaymentRequest{Amount: dec("150")})
	require.ErrorIs(t, err, ErrInvalidPaymentAmount)

	// A partial payment leaves a balance, so a new due date is mandatory.
	_, err = f.svc.RecordPayment(rec.ID, RecordPaymentRequest{Amount: dec("40")})
	require.ErrorIs(t, err, ErrDueDateRequired)

	stored, err := f.checkinRepo.GetByID(rec.ID)
	require.NoError(t, err)
	require.True(t, stored.AmountPaid.IsZero(), "failed payment must not mutate")

	updated, err := f.svc.RecordPayment(rec.ID, RecordPaymentRequest{Amount: dec("40"), NewDueDate: strPtr("2025-03-30")})
	require.NoError(t, err)
	require.True(t, updated.AmountPaid.Equal(dec("40")))
	require.True(t, updated.Balance.Equal(dec("60")))
	require.Equal(t, "2025-03-30", *updated.BalanceDueDate)

	// Paying off the rest clears the due date.
	updated, err = f.svc.RecordPayment(rec.ID, RecordPaymentRequest{Amount: dec("60")})
	require.NoError(t, err)
	require.True(t, updated.Balance.IsZero())
	require.Nil(t, updated.BalanceDueDate)
}

func TestCompleteSessionConsumesMemberSession(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 1))
	member := f.seedMember(t, "G-0001")
	member.HasCoach = true
	member.TotalSessions = 10
	member.SessionsUsed = 2
	require.NoError(t, f.memberRepo.Update(nil, member))

	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed,
	})

	result, err := f.svc.CompleteSession(rec.ID)
	require.NoError(t, err)
	require.Equal(t, "completed", result.Outcome)
	require.Equal(t, 3, result.Member.SessionsUsed)

	stored, err := f.checkinRepo.GetByID(rec.ID)
	require.NoError(t, err)
	require.True(t, stored.SessionCompleted)

	// A second completion on the same visit is refused.
	_, err = f.svc.CompleteSession(rec.ID)
	require.ErrorIs(t, err, ErrInvalidCheckinState)
}

func TestAssignCoach(t *testing.T) {
	f := newCheckinFixture(t, newTxDB(t, 0))
	rec := f.seedRecord(t, &models.CheckinRecord{
		Type: models.CheckinTypeMember, GymNumber: strPtr("G-0001"),
		Status: models.CheckinStatusConfirmed, NeedsCoach: true,
	})

	_, err := f.svc.AssignCoach(rec.ID, " ")
	require.ErrorIs(t, err, ErrValidation)

	updated, err := f.svc.AssignCoach(rec.ID, "Coach Marat")
	require.NoError(t, err)
	require.Equal(t, "Coach Marat", *updated.CoachAssigned)
}
