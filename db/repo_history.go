package db

import (
	"context"
	"fmt"
	"time"

	"police_armory_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Officer history ledger

func (r *Repo) FindHistoryByUserID(ctx context.Context, userID string) (*models.OfficerHistory, error) {
	var h models.OfficerHistory
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// NextHistoryRecordID derives the next UH-YYYYMMDD-NNNN by scanning the
// embedded entries for today's highest record ID. Same read-then-increment
// race as request IDs.
func (r *Repo) NextHistoryRecordID(ctx context.Context) (string, error) {
	prefix := models.DailyPrefix(models.HistoryIDPrefix, time.Now())

	var last string
	err := r.DB.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT COALESCE(MAX(e->>'recordId'), '')
		FROM %s, jsonb_array_elements(history) e
		WHERE e->>'recordId' LIKE ?
	`, models.OfficerHistoryTable), prefix+"%").Scan(&last).Error
	if err != nil {
		return "", fmt.Errorf("finding last history record id: %w", err)
	}
	return models.NextSequenceID(prefix, last), nil
}

// UpsertOpenHistoryEntry creates the officer's ledger document if absent and
// appends a Pending Return record.
func (r *Repo) UpsertOpenHistoryEntry(ctx context.Context, officer *models.User, entry models.HistoryEntry) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var h models.OfficerHistory
		err := tx.Where("user_id = ?", officer.ID).First(&h).Error
		if IsNotFound(err) {
			h = models.OfficerHistory{
				ID:          uuid.NewString(),
				UserID:      officer.ID,
				OfficerID:   officer.OfficerID,
				OfficerName: officer.FullName,
				Designation: officer.Designation,
				Posting:     officer.PoliceStation,
			}
		} else if err != nil {
			return err
		}

		// Keep the denormalized officer fields fresh.
		h.OfficerID = officer.OfficerID
		h.OfficerName = officer.FullName
		h.Designation = officer.Designation

		h.AppendEntry(entry)
		return tx.Save(&h).Error
	})
}

// CloseOpenHistoryEntry completes the officer's first Pending Return record
// for the item. A missing document or entry is not an error; the ledger is a
// best-effort view.
func (r *Repo) CloseOpenHistoryEntry(ctx context.Context, userID, itemUniqueID string, returnedDate time.Time, returnedTo, conditionAtReturn, remarks string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var h models.OfficerHistory
		err := tx.Where("user_id = ?", userID).First(&h).Error
		if IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if !h.CloseEntry(itemUniqueID, returnedDate, returnedTo, conditionAtReturn, remarks) {
			return nil
		}
		return tx.Save(&h).Error
	})
}
