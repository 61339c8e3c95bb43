package db

import (
	"context"
	"fmt"
	"time"

	"police_armory_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Requests

// CreateRequest assigns the daily-sequence display ID and inserts the row in
// one transaction. The max-then-increment read races with concurrent creates
// on the same day; the unique index on request_id turns a collision into an
// error instead of a duplicate.
func (r *Repo) CreateRequest(ctx context.Context, req *models.Request) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prefix := models.DailyPrefix(models.RequestIDPrefix, time.Now())

		var last string
		err := tx.Model(&models.Request{}).
			Where("request_id LIKE ?", prefix+"%").
			Order("request_id DESC").
			Limit(1).
			Pluck("request_id", &last).Error
		if err != nil {
			return fmt.Errorf("finding last request id: %w", err)
		}

		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		req.RequestID = models.NextSequenceID(prefix, last)
		if req.RequestedDate.IsZero() {
			req.RequestedDate = time.Now()
		}
		if req.Status == "" {
			req.Status = models.RequestPending
		}
		return tx.Create(req).Error
	})
}

func (r *Repo) FindRequestByID(ctx context.Context, id string) (*models.Request, error) {
	var req models.Request
	if err := r.DB.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Repo) SaveRequest(ctx context.Context, req *models.Request) error {
	return r.DB.WithContext(ctx).Save(req).Error
}

type RequestQuery struct {
	RequestedBy string
	Status      string
	RequestType string
	Page        int
	Size        int
}

type ListRequestsResult struct {
	Requests []models.Request `json:"requests"`
	Total    int64            `json:"total"`
}

func (r *Repo) ListRequests(ctx context.Context, q RequestQuery) (ListRequestsResult, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 10
	}

	tx := r.DB.WithContext(ctx).Model(&models.Request{})
	if q.RequestedBy != "" {
		tx = tx.Where("requested_by = ?", q.RequestedBy)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.RequestType != "" {
		tx = tx.Where("request_type = ?", q.RequestType)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListRequestsResult{}, err
	}

	var requests []models.Request
	if err := tx.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&requests).Error; err != nil {
		return ListRequestsResult{}, err
	}
	return ListRequestsResult{Requests: requests, Total: total}, nil
}

func (r *Repo) CountRequests(ctx context.Context, q RequestQuery) (int64, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Request{})
	if q.RequestedBy != "" {
		tx = tx.Where("requested_by = ?", q.RequestedBy)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.RequestType != "" {
		tx = tx.Where("request_type = ?", q.RequestType)
	}
	var n int64
	err := tx.Count(&n).Error
	return n, err
}

func (r *Repo) CountRequestsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Request{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}

// HasPendingRequest reports whether the officer already has a pending request
// for the pool.
func (r *Repo) HasPendingRequest(ctx context.Context, userID, poolID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Request{}).
		Where("requested_by = ? AND pool_id = ? AND status = ?", userID, poolID, models.RequestPending).
		Count(&n).Error
	return n > 0, err
}

// CompleteMaintenanceRequest stamps the approved maintenance request for the
// item Completed, if one exists.
func (r *Repo) CompleteMaintenanceRequest(ctx context.Context, uniqueID, adminID string) error {
	var req models.Request
	err := r.DB.WithContext(ctx).
		Where("assigned_unique_id = ? AND status = ? AND request_type = ?",
			uniqueID, models.RequestApproved, models.RequestTypeMaintenance).
		First(&req).Error
	if IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	req.Complete(adminID, "")
	return r.DB.WithContext(ctx).Save(&req).Error
}

func (r *Repo) RecentPendingRequests(ctx context.Context, limit int) ([]models.Request, error) {
	var requests []models.Request
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.RequestPending).
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error
	return requests, err
}

func (r *Repo) RecentRequestsByUser(ctx context.Context, userID string, limit int) ([]models.Request, error) {
	var requests []models.Request
	err := r.DB.WithContext(ctx).
		Where("requested_by = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error
	return requests, err
}
