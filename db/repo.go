package db

import (
	"context"
	"errors"
	"strings"

	"police_armory_tool/models"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Users

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByOfficerID(ctx context.Context, officerID string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("officer_id = ?", strings.ToUpper(officerID)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UserExists reports whether email or officer ID is already taken.
func (r *Repo) UserExists(ctx context.Context, email, officerID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ? OR officer_id = ?", strings.ToLower(email), strings.ToUpper(officerID)).
		Count(&n).Error
	return n > 0, err
}

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip, ua string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("NOW()"),
			"last_seen_at":  gorm.Expr("NOW()"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}

type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func (r *Repo) ListUsers(ctx context.Context, q, role string, page, size int) (ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(full_name) LIKE ? OR LOWER(officer_id) LIKE ? OR LOWER(email) LIKE ? OR LOWER(designation) LIKE ?",
			like, like, like, like,
		)
	}
	if role != "" {
		tx = tx.Where("role = ?", role)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

func (r *Repo) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error) {
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindUserByID(ctx, id)
}

func (r *Repo) CountActiveAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = TRUE", models.RoleAdmin).
		Count(&n).Error
	return n, err
}

func (r *Repo) CountUsers(ctx context.Context, role string, activeOnly bool) (int64, error) {
	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if role != "" {
		tx = tx.Where("role = ?", role)
	}
	if activeOnly {
		tx = tx.Where("is_active = TRUE")
	}
	var n int64
	err := tx.Count(&n).Error
	return n, err
}

// DeleteUserByID removes the account and its ledger document.
func (r *Repo) DeleteUserByID(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.OfficerHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{ID: id}).Error
	})
}

// IsNotFound reports whether err is a record-not-found from the store.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
