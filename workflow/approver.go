package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"police_armory_tool/metrics"
	"police_armory_tool/models"
)

// Store is the persistence surface the approval workflow needs. *db.Repo
// satisfies it; tests use an in-memory fake.
type Store interface {
	FindRequestByID(ctx context.Context, id string) (*models.Request, error)
	SaveRequest(ctx context.Context, req *models.Request) error

	FindPoolByID(ctx context.Context, id string) (*models.EquipmentPool, error)
	SavePool(ctx context.Context, p *models.EquipmentPool) error

	FindUserByID(ctx context.Context, id string) (*models.User, error)

	NextHistoryRecordID(ctx context.Context) (string, error)
	UpsertOpenHistoryEntry(ctx context.Context, officer *models.User, entry models.HistoryEntry) error
	CloseOpenHistoryEntry(ctx context.Context, userID, itemUniqueID string, returnedDate time.Time, returnedTo, conditionAtReturn, remarks string) error
}

// Approver drives the request-approval workflow: it dispatches an approved
// request to the pool aggregate, then updates the officer's ledger.
//
// The two writes are independent. The pool mutation is persisted first and
// any failure there aborts the approval; a ledger failure after that point is
// logged and swallowed, so the admin still sees success. Pool state and
// ledger can therefore diverge permanently; the reconcile sweep only repairs
// counters and malformed maintenance entries, not the ledger.
type Approver struct {
	store Store
}

func NewApprover(store Store) *Approver { return &Approver{store: store} }

// Approve processes a pending request as adminID. For Return requests the
// admin-confirmed condition wins over the officer-submitted one.
func (a *Approver) Approve(ctx context.Context, requestID, adminID, notes, condition string) (*models.Request, error) {
	req, err := a.store.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	if req.Status != models.RequestPending {
		return nil, models.ErrRequestNotPending
	}

	switch req.RequestType {
	case models.RequestTypeIssue:
		err = a.approveIssue(ctx, req, adminID)
	case models.RequestTypeReturn:
		err = a.approveReturn(ctx, req, adminID, condition)
	case models.RequestTypeMaintenance:
		err = a.approveMaintenance(ctx, req, adminID)
	case models.RequestTypeLost:
		err = a.approveLost(ctx, req, adminID)
	default:
		err = fmt.Errorf("unknown request type %q", req.RequestType)
	}
	if err != nil {
		return nil, err
	}

	if err := req.Approve(adminID, notes); err != nil {
		return nil, err
	}
	if err := a.store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("saving request: %w", err)
	}
	metrics.RequestsProcessed.WithLabelValues(req.RequestType, "approved").Inc()
	return req, nil
}

func (a *Approver) approveIssue(ctx context.Context, req *models.Request, adminID string) error {
	pool, err := a.store.FindPoolByID(ctx, req.PoolID)
	if err != nil {
		return fmt.Errorf("equipment pool: %w", err)
	}
	officer, err := a.store.FindUserByID(ctx, req.RequestedBy)
	if err != nil {
		return fmt.Errorf("requesting officer: %w", err)
	}

	pool.UpdateCounts()
	item, err := pool.IssueItem(models.Custody{
		UserID:             officer.ID,
		OfficerID:          officer.OfficerID,
		OfficerName:        officer.FullName,
		Designation:        officer.Designation,
		ExpectedReturnDate: req.ExpectedReturnDate,
		Purpose:            req.Reason,
	}, adminID)
	if err != nil {
		return err
	}
	req.AssignedUniqueID = item.UniqueID

	if err := a.store.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("saving pool: %w", err)
	}
	metrics.ItemsIssued.Inc()

	// Ledger update is best-effort from here on.
	recordID, err := a.store.NextHistoryRecordID(ctx)
	if err == nil {
		reqDate := req.RequestedDate
		err = a.store.UpsertOpenHistoryEntry(ctx, officer, models.HistoryEntry{
			RecordID:           recordID,
			RequestID:          req.RequestID,
			RequestDate:        &reqDate,
			EquipmentPoolID:    pool.ID,
			EquipmentPoolName:  pool.PoolName,
			ItemUniqueID:       item.UniqueID,
			Category:           pool.Category,
			IssuedDate:         time.Now(),
			IssuedBy:           adminID,
			Purpose:            req.Reason,
			ConditionAtIssue:   item.Condition,
			ExpectedReturnDate: req.ExpectedReturnDate,
		})
	}
	if err != nil {
		log.Printf("failed to update officer history for %s: %v", req.RequestID, err)
		metrics.LedgerWriteFailures.Inc()
	}
	return nil
}

func (a *Approver) approveReturn(ctx context.Context, req *models.Request, adminID, condition string) error {
	pool, err := a.store.FindPoolByID(ctx, req.PoolID)
	if err != nil {
		return fmt.Errorf("equipment pool: %w", err)
	}

	returnCondition := condition
	if returnCondition == "" {
		returnCondition = req.Condition
	}
	if returnCondition == "" {
		returnCondition = models.ConditionGood
	}

	if _, err := pool.ReturnItem(req.AssignedUniqueID, returnCondition, req.Reason, adminID); err != nil {
		return err
	}
	if err := a.store.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("saving pool: %w", err)
	}
	metrics.ItemsReturned.Inc()

	if err := a.store.CloseOpenHistoryEntry(ctx, req.RequestedBy, req.AssignedUniqueID,
		time.Now(), adminID, returnCondition, req.Reason); err != nil {
		log.Printf("failed to update officer history on return for %s: %v", req.RequestID, err)
		metrics.LedgerWriteFailures.Inc()
	}
	return nil
}

func (a *Approver) approveMaintenance(ctx context.Context, req *models.Request, adminID string) error {
	pool, err := a.store.FindPoolByID(ctx, req.PoolID)
	if err != nil {
		return fmt.Errorf("equipment pool: %w", err)
	}

	maintCondition := req.Condition
	if maintCondition == "" {
		maintCondition = models.ConditionPoor
	}

	if _, err := pool.SendToMaintenance(req.AssignedUniqueID, maintCondition, req.Reason, req.RequestedBy, adminID); err != nil {
		return err
	}
	if err := a.store.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("saving pool: %w", err)
	}

	if err := a.store.CloseOpenHistoryEntry(ctx, req.RequestedBy, req.AssignedUniqueID,
		time.Now(), adminID, maintCondition, "Maintenance: "+req.Reason); err != nil {
		log.Printf("failed to update officer history on maintenance for %s: %v", req.RequestID, err)
		metrics.LedgerWriteFailures.Inc()
	}
	return nil
}

func (a *Approver) approveLost(ctx context.Context, req *models.Request, adminID string) error {
	pool, err := a.store.FindPoolByID(ctx, req.PoolID)
	if err != nil {
		return fmt.Errorf("equipment pool: %w", err)
	}

	report := models.LostEntry{
		ReportedBy:          req.RequestedBy,
		FIRNumber:           req.FIRNumber,
		FIRDate:             req.FIRDate,
		PoliceStation:       req.PoliceStation,
		DateOfLoss:          req.DateOfLoss,
		PlaceOfLoss:         req.PlaceOfLoss,
		DutyAtTimeOfLoss:    req.DutyAtTimeOfLoss,
		Description:         req.Reason,
		RemedialActionTaken: req.RemedialActionTaken,
		Witnesses:           req.Witnesses,
	}
	if _, err := pool.ReportLost(req.AssignedUniqueID, report, adminID); err != nil {
		return err
	}
	if err := a.store.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("saving pool: %w", err)
	}

	fir := req.FIRNumber
	if fir == "" {
		fir = "N/A"
	}
	lostRemark := fmt.Sprintf("Reported Lost. FIR: %s. %s", fir, req.Reason)
	if err := a.store.CloseOpenHistoryEntry(ctx, req.RequestedBy, req.AssignedUniqueID,
		time.Now(), adminID, models.ConditionPoor, lostRemark); err != nil {
		log.Printf("failed to update officer history on loss for %s: %v", req.RequestID, err)
		metrics.LedgerWriteFailures.Inc()
	}
	return nil
}

// Reject declines a pending request with a mandatory reason. No pool or
// ledger side effects.
func (a *Approver) Reject(ctx context.Context, requestID, adminID, reason string) (*models.Request, error) {
	req, err := a.store.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	if err := req.Reject(adminID, reason); err != nil {
		return nil, err
	}
	if err := a.store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("saving request: %w", err)
	}
	metrics.RequestsProcessed.WithLabelValues(req.RequestType, "rejected").Inc()
	return req, nil
}

// Cancel withdraws a pending request on behalf of the requesting officer.
func (a *Approver) Cancel(ctx context.Context, requestID, officerID string) (*models.Request, error) {
	req, err := a.store.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	if err := req.Cancel(officerID); err != nil {
		return nil, err
	}
	if err := a.store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("saving request: %w", err)
	}
	metrics.RequestsProcessed.WithLabelValues(req.RequestType, "cancelled").Inc()
	return req, nil
}
