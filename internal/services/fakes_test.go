package services

import (
	"database/sql"
	"strings"
	"testing"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// In-memory repository fakes. The executor argument is ignored; transaction
// plumbing is exercised through sqlmock (newTxDB / newRollbackDB).

// newTxDB returns a *sql.DB that expects n begin/commit pairs.
func newTxDB(t *testing.T, n int) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newRollbackDB returns a *sql.DB that expects n begin/rollback pairs.
func newRollbackDB(t *testing.T, n int) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// --- member repository fake ---

type fakeMemberRepo struct {
	members map[int64]models.Member
	history map[int64][]models.HistoryEntry
	nextID  int64
	seq     int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		members: map[int64]models.Member{},
		history: map[int64][]models.HistoryEntry{},
		seq:     1,
	}
}

func (f *fakeMemberRepo) Create(_ repositories.SQLExecutor, m *models.Member) (int64, error) {
	for _, existing := range f.members {
		if existing.GymNumber == m.GymNumber {
			return 0, repositories.ErrDuplicateKey
		}
	}
	f.nextID++
	m.ID = f.nextID
	f.members[m.ID] = *m
	return m.ID, nil
}

func (f *fakeMemberRepo) GetByID(id int64) (*models.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := m
	return &copied, nil
}

func (f *fakeMemberRepo) GetByGymNumber(gymNumber string) (*models.Member, error) {
	for _, m := range f.members {
		if m.GymNumber == gymNumber {
			copied := m
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeMemberRepo) List(_ models.MemberFilters) ([]models.Member, int, error) {
	out := []models.Member{}
	for _, m := range f.members {
		out = append(out, m)
	}
	return out, len(out), nil
}

func (f *fakeMemberRepo) Update(_ repositories.SQLExecutor, m *models.Member) error {
	if _, ok := f.members[m.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.members[m.ID] = *m
	return nil
}

func (f *fakeMemberRepo) Delete(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.members[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.members, id)
	return nil
}

func (f *fakeMemberRepo) NextGymSequence(_ repositories.SQLExecutor) (int, error) {
	seq := f.seq
	f.seq++
	return seq, nil
}

func (f *fakeMemberRepo) AddHistory(_ repositories.SQLExecutor, memberID int64, e *models.HistoryEntry) (int64, error) {
	f.history[memberID] = append(f.history[memberID], *e)
	return int64(len(f.history[memberID])), nil
}

func (f *fakeMemberRepo) GetHistory(memberID int64) ([]models.HistoryEntry, error) {
	return f.history[memberID], nil
}

// --- walk-in repository fake ---

type fakeWalkinRepo struct {
	clients map[int64]models.WalkinClient
	history map[int64][]models.HistoryEntry
	nextID  int64
}

func newFakeWalkinRepo() *fakeWalkinRepo {
	return &fakeWalkinRepo{
		clients: map[int64]models.WalkinClient{},
		history: map[int64][]models.HistoryEntry{},
	}
}

func copyWalkin(w models.WalkinClient) models.WalkinClient {
	if w.SessionPlan != nil {
		plan := *w.SessionPlan
		w.SessionPlan = &plan
	}
	return w
}

func (f *fakeWalkinRepo) Create(_ repositories.SQLExecutor, w *models.WalkinClient) (int64, error) {
	f.nextID++
	w.ID = f.nextID
	f.clients[w.ID] = copyWalkin(*w)
	return w.ID, nil
}

func (f *fakeWalkinRepo) GetByID(id int64) (*models.WalkinClient, error) {
	w, ok := f.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := copyWalkin(w)
	return &copied, nil
}

func (f *fakeWalkinRepo) List(search *string, _, _ int) ([]models.WalkinClient, int, error) {
	out := []models.WalkinClient{}
	for _, w := range f.clients {
		if search != nil && !strings.Contains(strings.ToLower(w.Name), strings.ToLower(*search)) {
			continue
		}
		out = append(out, copyWalkin(w))
	}
	return out, len(out), nil
}

func (f *fakeWalkinRepo) Update(_ repositories.SQLExecutor, w *models.WalkinClient) error {
	if _, ok := f.clients[w.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.clients[w.ID] = copyWalkin(*w)
	return nil
}

func (f *fakeWalkinRepo) Delete(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.clients[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

func (f *fakeWalkinRepo) AddHistory(_ repositories.SQLExecutor, walkinID int64, e *models.HistoryEntry) (int64, error) {
	f.history[walkinID] = append(f.history[walkinID], *e)
	return int64(len(f.history[walkinID])), nil
}

func (f *fakeWalkinRepo) GetHistory(walkinID int64) ([]models.HistoryEntry, error) {
	return f.history[walkinID], nil
}

// --- check-in repository fake ---

type fakeCheckinRepo struct {
	records map[string]models.CheckinRecord
	items   map[string][]models.CheckinItem
}

func newFakeCheckinRepo() *fakeCheckinRepo {
	return &fakeCheckinRepo{
		records: map[string]models.CheckinRecord{},
		items:   map[string][]models.CheckinItem{},
	}
}

func (f *fakeCheckinRepo) Create(_ repositories.SQLExecutor, rec *models.CheckinRecord) error {
	f.records[rec.ID] = *rec
	return nil
}

func (f *fakeCheckinRepo) GetByID(id string) (*models.CheckinRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := rec
	copied.ProductsPurchased = append([]models.CheckinItem{}, f.items[id]...)
	return &copied, nil
}

func (f *fakeCheckinRepo) List(_ models.CheckinFilters) ([]models.CheckinRecord, int, error) {
	out := []models.CheckinRecord{}
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (f *fakeCheckinRepo) Update(_ repositories.SQLExecutor, rec *models.CheckinRecord) error {
	if _, ok := f.records[rec.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.records[rec.ID] = *rec
	return nil
}

func (f *fakeCheckinRepo) Delete(_ repositories.SQLExecutor, id string) error {
	if _, ok := f.records[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeCheckinRepo) matchesClient(rec models.CheckinRecord, clientType string, gymNumber *string, walkinClientID *int64) bool {
	if rec.Type != clientType {
		return false
	}
	switch {
	case gymNumber != nil:
		return rec.GymNumber != nil && *rec.GymNumber == *gymNumber
	case walkinClientID != nil:
		return rec.WalkinClientID != nil && *rec.WalkinClientID == *walkinClientID
	}
	return false
}

func (f *fakeCheckinRepo) ListClosedWithBalance(_ repositories.SQLExecutor, clientType string, gymNumber *string, walkinClientID *int64) ([]models.CheckinRecord, error) {
	out := []models.CheckinRecord{}
	for _, rec := range f.records {
		if f.matchesClient(rec, clientType, gymNumber, walkinClientID) &&
			rec.CheckoutTimestamp != nil && rec.Balance.IsPositive() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeCheckinRepo) ZeroBalance(_ repositories.SQLExecutor, id string) error {
	rec, ok := f.records[id]
	if !ok {
		return repositories.ErrNotFound
	}
	rec.Balance = rec.Balance.Sub(rec.Balance)
	rec.BalanceDueDate = nil
	f.records[id] = rec
	return nil
}

func (f *fakeCheckinRepo) FindActiveForClient(_ repositories.SQLExecutor, clientType string, gymNumber *string, walkinClientID *int64, date string) (*models.CheckinRecord, error) {
	for _, rec := range f.records {
		if f.matchesClient(rec, clientType, gymNumber, walkinClientID) &&
			rec.Status == models.CheckinStatusConfirmed &&
			rec.CheckoutTimestamp == nil &&
			rec.Timestamp.Format("2006-01-02") == date {
			copied := rec
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCheckinRepo) AddItem(_ repositories.SQLExecutor, item *models.CheckinItem) error {
	f.items[item.RecordID] = append(f.items[item.RecordID], *item)
	return nil
}

func (f *fakeCheckinRepo) GetItem(recordID, itemID string) (*models.CheckinItem, error) {
	for _, item := range f.items[recordID] {
		if item.ItemID == itemID {
			copied := item
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCheckinRepo) GetItems(recordID string) ([]models.CheckinItem, error) {
	return append([]models.CheckinItem{}, f.items[recordID]...), nil
}

func (f *fakeCheckinRepo) DeleteItem(_ repositories.SQLExecutor, recordID, itemID string) error {
	items := f.items[recordID]
	for i, item := range items {
		if item.ItemID == itemID {
			f.items[recordID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// --- price plan repository fake ---

type fakePlanRepo struct {
	plans  map[int64]models.PricePlan
	nextID int64
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[int64]models.PricePlan{}}
}

func (f *fakePlanRepo) Create(_ repositories.SQLExecutor, p *models.PricePlan) (int64, error) {
	for _, existing := range f.plans {
		if existing.Name == p.Name {
			return 0, repositories.ErrDuplicateKey
		}
	}
	f.nextID++
	p.ID = f.nextID
	f.plans[p.ID] = *p
	return p.ID, nil
}

func (f *fakePlanRepo) GetByID(id int64) (*models.PricePlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (f *fakePlanRepo) GetByIDs(ids []int64) ([]models.PricePlan, error) {
	out := []models.PricePlan{}
	for _, id := range ids {
		if p, ok := f.plans[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) List(planType *string) ([]models.PricePlan, error) {
	out := []models.PricePlan{}
	for _, p := range f.plans {
		if planType != nil && *planType != "" && p.Type != *planType {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePlanRepo) Update(_ repositories.SQLExecutor, p *models.PricePlan) error {
	if _, ok := f.plans[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.plans[p.ID] = *p
	return nil
}

func (f *fakePlanRepo) Delete(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.plans[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.plans, id)
	return nil
}

// --- class repository fake ---

type fakeClassRepo struct {
	classes    map[int64]models.Class
	attendance map[int64]map[string]models.ClassAttendance
	nextID     int64
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{
		classes:    map[int64]models.Class{},
		attendance: map[int64]map[string]models.ClassAttendance{},
	}
}

func (f *fakeClassRepo) Create(_ repositories.SQLExecutor, c *models.Class) (int64, error) {
	f.nextID++
	c.ID = f.nextID
	f.classes[c.ID] = *c
	return c.ID, nil
}

func (f *fakeClassRepo) GetByID(id int64) (*models.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := c
	return &copied, nil
}

func (f *fakeClassRepo) List() ([]models.Class, error) {
	out := []models.Class{}
	for _, c := range f.classes {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClassRepo) Update(_ repositories.SQLExecutor, c *models.Class) error {
	if _, ok := f.classes[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.classes[c.ID] = *c
	return nil
}

func (f *fakeClassRepo) Delete(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.classes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.classes, id)
	delete(f.attendance, id)
	return nil
}

func (f *fakeClassRepo) UpsertAttendance(_ repositories.SQLExecutor, a *models.ClassAttendance) error {
	if _, ok := f.classes[a.ClassID]; !ok {
		return repositories.ErrNotFound
	}
	if f.attendance[a.ClassID] == nil {
		f.attendance[a.ClassID] = map[string]models.ClassAttendance{}
	}
	f.attendance[a.ClassID][a.Date] = *a
	return nil
}

func (f *fakeClassRepo) GetAttendance(classID int64) ([]models.ClassAttendance, error) {
	out := []models.ClassAttendance{}
	for _, a := range f.attendance[classID] {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeClassRepo) GetAttendanceByDate(classID int64, date string) (*models.ClassAttendance, error) {
	a, ok := f.attendance[classID][date]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := a
	return &copied, nil
}

// --- task and settings repository fakes ---

type fakeTaskRepo struct {
	tasks  map[int64]models.Task
	nextID int64
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[int64]models.Task{}}
}

func (f *fakeTaskRepo) Create(_ repositories.SQLExecutor, t *models.Task) (int64, error) {
	f.nextID++
	t.ID = f.nextID
	f.tasks[t.ID] = *t
	return t.ID, nil
}

func (f *fakeTaskRepo) List() ([]models.Task, error) {
	out := []models.Task{}
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskRepo) Update(_ repositories.SQLExecutor, t *models.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.tasks[t.ID] = *t
	return nil
}

func (f *fakeTaskRepo) Delete(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

type fakeSettingsRepo struct {
	values map[string]string
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{values: map[string]string{}}
}

func (f *fakeSettingsRepo) Get(key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return v, nil
}

func (f *fakeSettingsRepo) Set(_ repositories.SQLExecutor, key, value string) error {
	f.values[key] = value
	return nil
}

// --- product repository fake ---

type fakeProductRepo struct {
	products map[int64]models.Product
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[int64]models.Product{}}
}

func copyProduct(p models.Product) models.Product {
	if p.Stock != nil {
		stock := *p.Stock
		p.Stock = &stock
	}
	return p
}

func (f *fakeProductRepo) Create(_ repositories.SQLExecutor, p *models.Product) (int64, error) {
	for _, existing := range f.products {
		if existing.Name == p.Name {
			return 0, repositories.ErrDuplicateKey
		}
	}
	f.nextID++
	p.ID = f.nextID
	f.products[p.ID] = copyProduct(*p)
	return p.ID, nil
}

func (f *fakeProductRepo) GetByID(id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := copyProduct(p)
	return &copied, nil
}

func (f *fakeProductRepo) List() ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.products {
		out = append(out, copyProduct(p))
	}
	return out, nil
}

func (f *fakeProductRepo) Update(_ repositories.SQLExecutor, p *models.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.products[p.ID] = copyProduct(*p)
	return nil
}

func (f *fakeProductRepo) Delete(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.products, id)
	return nil
}
