package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"police_armory_tool/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	requests map[string]*models.Request
	pools    map[string]*models.EquipmentPool
	users    map[string]*models.User
	ledgers  map[string]*models.OfficerHistory

	nextRecord string
	ledgerErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: map[string]*models.Request{},
		pools:    map[string]*models.EquipmentPool{},
		users:    map[string]*models.User{},
		ledgers:  map[string]*models.OfficerHistory{},
	}
}

var errNotFound = errors.New("not found")

func (f *fakeStore) FindRequestByID(_ context.Context, id string) (*models.Request, error) {
	if r, ok := f.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, errNotFound
}

func (f *fakeStore) SaveRequest(_ context.Context, req *models.Request) error {
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeStore) FindPoolByID(_ context.Context, id string) (*models.EquipmentPool, error) {
	if p, ok := f.pools[id]; ok {
		return p, nil
	}
	return nil, errNotFound
}

func (f *fakeStore) SavePool(_ context.Context, p *models.EquipmentPool) error {
	f.pools[p.ID] = p
	return nil
}

func (f *fakeStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (f *fakeStore) NextHistoryRecordID(context.Context) (string, error) {
	prefix := models.DailyPrefix(models.HistoryIDPrefix, time.Now())
	id := models.NextSequenceID(prefix, f.nextRecord)
	f.nextRecord = id
	return id, nil
}

func (f *fakeStore) UpsertOpenHistoryEntry(_ context.Context, officer *models.User, entry models.HistoryEntry) error {
	if f.ledgerErr != nil {
		return f.ledgerErr
	}
	h, ok := f.ledgers[officer.ID]
	if !ok {
		h = &models.OfficerHistory{UserID: officer.ID, OfficerID: officer.OfficerID}
		f.ledgers[officer.ID] = h
	}
	h.AppendEntry(entry)
	return nil
}

func (f *fakeStore) CloseOpenHistoryEntry(_ context.Context, userID, itemUniqueID string, returnedDate time.Time, returnedTo, conditionAtReturn, remarks string) error {
	if f.ledgerErr != nil {
		return f.ledgerErr
	}
	if h, ok := f.ledgers[userID]; ok {
		h.CloseEntry(itemUniqueID, returnedDate, returnedTo, conditionAtReturn, remarks)
	}
	return nil
}

func seedWorkflow(t *testing.T) (*fakeStore, *Approver) {
	t.Helper()
	f := newFakeStore()

	pool := &models.EquipmentPool{
		ID:                     "pool-1",
		PoolName:               "Glock 17 9mm",
		Category:               "Firearm",
		Model:                  "Glock 17",
		Location:               "Armory A",
		AuthorizedDesignations: []string{"Police Inspector (PI)"},
		TotalQuantity:          2,
	}
	pool.MaterializeItems("GLK")
	f.pools[pool.ID] = pool

	f.users["officer-1"] = &models.User{
		ID:          "officer-1",
		OfficerID:   "MHPI20180042",
		FullName:    "A Officer",
		Designation: "Police Inspector (PI)",
		Role:        models.RoleOfficer,
		IsActive:    true,
	}
	return f, NewApprover(f)
}

func seedRequest(f *fakeStore, requestType, uniqueID string) *models.Request {
	req := &models.Request{
		ID:               "req-1",
		RequestID:        "REQ-20260829-0001",
		RequestedBy:      "officer-1",
		PoolID:           "pool-1",
		PoolName:         "Glock 17 9mm",
		AssignedUniqueID: uniqueID,
		RequestType:      requestType,
		Status:           models.RequestPending,
		RequestedDate:    time.Now(),
		Reason:           "duty",
	}
	f.requests[req.ID] = req
	return req
}

func TestApproveIssue(t *testing.T) {
	f, a := seedWorkflow(t)
	seedRequest(f, models.RequestTypeIssue, "")

	req, err := a.Approve(context.Background(), "req-1", "admin-1", "ok", "")
	require.NoError(t, err)

	assert.Equal(t, models.RequestApproved, req.Status)
	assert.Equal(t, "GLK-001", req.AssignedUniqueID)
	assert.Equal(t, "admin-1", req.ProcessedBy)

	pool := f.pools["pool-1"]
	assert.Equal(t, 1, pool.IssuedCount)
	assert.True(t, pool.HasItemIssuedTo("officer-1"))

	ledger := f.ledgers["officer-1"]
	require.NotNil(t, ledger)
	require.Len(t, ledger.History, 1)
	assert.Equal(t, models.HistoryPendingReturn, ledger.History[0].Status)
	assert.Equal(t, "GLK-001", ledger.History[0].ItemUniqueID)
	assert.Equal(t, "admin-1", ledger.History[0].IssuedBy)
}

func TestApproveIssueLedgerFailureDoesNotRollBack(t *testing.T) {
	f, a := seedWorkflow(t)
	seedRequest(f, models.RequestTypeIssue, "")
	f.ledgerErr = errors.New("ledger down")

	req, err := a.Approve(context.Background(), "req-1", "admin-1", "", "")
	require.NoError(t, err)

	// the approval succeeds and the pool shows the issue; only the ledger is missing
	assert.Equal(t, models.RequestApproved, req.Status)
	assert.Equal(t, 1, f.pools["pool-1"].IssuedCount)
	assert.Nil(t, f.ledgers["officer-1"])
}

func TestApproveIssuePoolExhausted(t *testing.T) {
	f, a := seedWorkflow(t)
	seedRequest(f, models.RequestTypeIssue, "")
	pool := f.pools["pool-1"]
	for i := range pool.Items {
		pool.Items[i].Status = models.StatusMaintenance
	}
	pool.UpdateCounts()

	_, err := a.Approve(context.Background(), "req-1", "admin-1", "", "")
	assert.ErrorIs(t, err, models.ErrNoAvailableItems)
	assert.Equal(t, models.RequestPending, f.requests["req-1"].Status)
}

func TestApproveReturnConditionPrecedence(t *testing.T) {
	f, a := seedWorkflow(t)
	pool := f.pools["pool-1"]
	_, err := pool.IssueItem(models.Custody{
		UserID: "officer-1", OfficerID: "MHPI20180042",
		Designation: "Police Inspector (PI)",
	}, "admin-0")
	require.NoError(t, err)

	req := seedRequest(f, models.RequestTypeReturn, "GLK-001")
	req.Condition = models.ConditionFair

	// admin-confirmed condition wins over the officer's declared one
	_, err = a.Approve(context.Background(), "req-1", "admin-1", "", models.ConditionPoor)
	require.NoError(t, err)

	item := pool.FindItemByUniqueID("GLK-001")
	assert.Equal(t, models.ConditionPoor, item.Condition)
	assert.Equal(t, models.StatusMaintenance, item.Status)
}

func TestApproveMaintenance(t *testing.T) {
	f, a := seedWorkflow(t)
	pool := f.pools["pool-1"]
	_, err := pool.IssueItem(models.Custody{
		UserID: "officer-1", Designation: "Police Inspector (PI)",
	}, "admin-0")
	require.NoError(t, err)

	req := seedRequest(f, models.RequestTypeMaintenance, "GLK-001")
	req.Condition = models.ConditionGood
	req.Reason = "annual service"

	approved, err := a.Approve(context.Background(), "req-1", "admin-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)

	item := pool.FindItemByUniqueID("GLK-001")
	assert.Equal(t, models.StatusMaintenance, item.Status)
	assert.Equal(t, models.ConditionGood, item.Condition)
	require.Len(t, item.MaintenanceHistory, 1)
	assert.Equal(t, "annual service", item.MaintenanceHistory[0].Reason)
}

func TestApproveLost(t *testing.T) {
	f, a := seedWorkflow(t)
	pool := f.pools["pool-1"]
	_, err := pool.IssueItem(models.Custody{
		UserID: "officer-1", Designation: "Police Inspector (PI)",
	}, "admin-0")
	require.NoError(t, err)

	now := time.Now()
	req := seedRequest(f, models.RequestTypeLost, "GLK-001")
	req.FIRNumber = "FIR/2026/0042"
	req.FIRDate = &now
	req.Reason = "lost during patrol"

	_, err = a.Approve(context.Background(), "req-1", "admin-1", "", "")
	require.NoError(t, err)

	item := pool.FindItemByUniqueID("GLK-001")
	assert.Equal(t, models.StatusMaintenance, item.Status)
	assert.Equal(t, models.ConditionOutOfService, item.Condition)
	require.Len(t, item.LostHistory, 1)
	assert.Equal(t, "FIR/2026/0042", item.LostHistory[0].FIRNumber)
	assert.Equal(t, models.LostUnderInvestigation, item.LostHistory[0].Status)
}

func TestApproveIssueThenReturnClosesLedger(t *testing.T) {
	f, a := seedWorkflow(t)
	seedRequest(f, models.RequestTypeIssue, "")

	_, err := a.Approve(context.Background(), "req-1", "admin-1", "", "")
	require.NoError(t, err)

	f.requests["req-2"] = &models.Request{
		ID:               "req-2",
		RequestID:        "REQ-20260829-0002",
		RequestedBy:      "officer-1",
		PoolID:           "pool-1",
		AssignedUniqueID: "GLK-001",
		RequestType:      models.RequestTypeReturn,
		Status:           models.RequestPending,
		RequestedDate:    time.Now(),
		Reason:           "duty over",
	}
	_, err = a.Approve(context.Background(), "req-2", "admin-2", "", models.ConditionGood)
	require.NoError(t, err)

	ledger := f.ledgers["officer-1"]
	require.NotNil(t, ledger)
	require.Len(t, ledger.History, 1)
	entry := ledger.History[0]
	assert.Equal(t, models.HistoryCompleted, entry.Status)
	assert.Equal(t, models.ConditionGood, entry.ConditionAtReturn)
	assert.Equal(t, "admin-2", entry.ReturnedTo)
	assert.Equal(t, "duty over", entry.Remarks)
	require.NotNil(t, entry.ReturnedDate)
}

func TestApproveIssueThenLostClosesLedger(t *testing.T) {
	f, a := seedWorkflow(t)
	seedRequest(f, models.RequestTypeIssue, "")

	_, err := a.Approve(context.Background(), "req-1", "admin-1", "", "")
	require.NoError(t, err)

	now := time.Now()
	f.requests["req-2"] = &models.Request{
		ID:               "req-2",
		RequestID:        "REQ-20260829-0002",
		RequestedBy:      "officer-1",
		PoolID:           "pool-1",
		AssignedUniqueID: "GLK-001",
		RequestType:      models.RequestTypeLost,
		Status:           models.RequestPending,
		RequestedDate:    now,
		Reason:           "lost during patrol",
		FIRNumber:        "FIR/2026/0042",
		FIRDate:          &now,
	}
	_, err = a.Approve(context.Background(), "req-2", "admin-2", "", "")
	require.NoError(t, err)

	// the officer's ledger entry closes Completed with condition Poor even
	// though the item itself is parked in Maintenance as Out of Service
	ledger := f.ledgers["officer-1"]
	require.NotNil(t, ledger)
	require.Len(t, ledger.History, 1)
	entry := ledger.History[0]
	assert.Equal(t, models.HistoryCompleted, entry.Status)
	assert.Equal(t, models.ConditionPoor, entry.ConditionAtReturn)
	assert.Equal(t, "admin-2", entry.ReturnedTo)
	assert.Equal(t, "Reported Lost. FIR: FIR/2026/0042. lost during patrol", entry.Remarks)
	require.NotNil(t, entry.ReturnedDate)

	item := f.pools["pool-1"].FindItemByUniqueID("GLK-001")
	assert.Equal(t, models.StatusMaintenance, item.Status)
	assert.Equal(t, models.ConditionOutOfService, item.Condition)
}

func TestApproveNonPendingFails(t *testing.T) {
	f, a := seedWorkflow(t)
	req := seedRequest(f, models.RequestTypeIssue, "")
	req.Status = models.RequestRejected

	_, err := a.Approve(context.Background(), "req-1", "admin-1", "", "")
	assert.ErrorIs(t, err, models.ErrRequestNotPending)
}

func TestReject(t *testing.T) {
	f, a := seedWorkflow(t)
	seedRequest(f, models.RequestTypeIssue, "")

	req, err := a.Reject(context.Background(), "req-1", "admin-1", "not justified")
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, req.Status)
	assert.Equal(t, "not justified", req.AdminNotes)
	assert.Equal(t, 0, f.pools["pool-1"].IssuedCount)
}

func TestCancel(t *testing.T) {
	f, a := seedWorkflow(t)
	seedRequest(f, models.RequestTypeIssue, "")

	_, err := a.Cancel(context.Background(), "req-1", "someone-else")
	assert.ErrorIs(t, err, models.ErrNotRequester)

	req, err := a.Cancel(context.Background(), "req-1", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, req.Status)
}
