package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepositoryImpl implements UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User, models.UserFilter]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User, models.UserFilter](db),
	}
}

func (r *UserRepositoryImpl) applyFilter(db *gorm.DB, f models.UserFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Email != nil {
		db = db.Where("email = ?", *f.Email)
	}
	if f.Phone != nil {
		db = db.Where("phone = ?", *f.Phone)
	}
	if f.ResetToken != nil {
		db = db.Where("reset_token = ?", *f.ResetToken)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *UserRepositoryImpl) ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.User{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.User
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *UserRepositoryImpl) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.User{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepositoryImpl) Exists(ctx context.Context, filter models.UserFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByEmail retrieves a user by email address
func (r *UserRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.User, error) {
	filter := models.UserFilter{Email: &email}
	users, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// ByUUID retrieves a user by UUID
func (r *UserRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.User, error) {
	db := r.getDB(ctx)
	var user models.User
	err := db.Where("uuid = ?", uuid).Last(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ByResetToken retrieves a user by an unexpired password reset token
func (r *UserRepositoryImpl) ByResetToken(ctx context.Context, token string) (*models.User, error) {
	db := r.getDB(ctx)
	var user models.User
	err := db.Where("reset_token = ? AND reset_token_expiry > ?", token, utils.UTCNow()).Last(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Update persists changes to an existing user
func (r *UserRepositoryImpl) Update(ctx context.Context, user *models.User) error {
	db := r.getDB(ctx)
	user.UpdatedAt = utils.UTCNow()
	return db.Save(user).Error
}

// UpdatePassword updates a user's password hash
func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	db := r.getDB(ctx)
	return db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash": passwordHash,
		"updated_at":    utils.UTCNow(),
	}).Error
}

// UpdateLastLogin records a successful login
func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.User{}).Where("id = ?", userID).Update("last_login_at", at).Error
}

// SetResetToken stores a password reset token with its expiry
func (r *UserRepositoryImpl) SetResetToken(ctx context.Context, userID uint, token string, expiry time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"reset_token":        token,
		"reset_token_expiry": expiry,
		"updated_at":         utils.UTCNow(),
	}).Error
}

// ClearResetToken invalidates any outstanding reset token
func (r *UserRepositoryImpl) ClearResetToken(ctx context.Context, userID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"reset_token":        nil,
		"reset_token_expiry": nil,
		"updated_at":         utils.UTCNow(),
	}).Error
}

// lockUser loads the user row under FOR UPDATE so concurrent wallet
// mutations serialize on the row.
func (r *UserRepositoryImpl) lockUser(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// DebitSMSBalance subtracts amount from the user's wallet, failing with
// ErrInsufficientSMSBalance when the balance does not cover it. Returns
// the balance after the debit.
func (r *UserRepositoryImpl) DebitSMSBalance(ctx context.Context, userID uint, amount uint64) (uint64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	user, err := r.lockUser(db, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		err = gorm.ErrRecordNotFound
		return 0, err
	}
	if user.SMSBalance < amount {
		err = ErrInsufficientSMSBalance
		return user.SMSBalance, err
	}

	newBalance := user.SMSBalance - amount
	err = db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"sms_balance": newBalance,
		"updated_at":  utils.UTCNow(),
	}).Error
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

// DebitSMSBalanceClamped subtracts amount but clamps at zero instead of
// failing. Used by delivery-time billing where a report may arrive after
// the balance was spent elsewhere.
func (r *UserRepositoryImpl) DebitSMSBalanceClamped(ctx context.Context, userID uint, amount uint64) (uint64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	user, err := r.lockUser(db, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		err = gorm.ErrRecordNotFound
		return 0, err
	}

	var newBalance uint64
	if user.SMSBalance > amount {
		newBalance = user.SMSBalance - amount
	}

	err = db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"sms_balance": newBalance,
		"updated_at":  utils.UTCNow(),
	}).Error
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

// CreditSMSBalance adds amount to the user's wallet and returns the new balance.
func (r *UserRepositoryImpl) CreditSMSBalance(ctx context.Context, userID uint, amount uint64) (uint64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	user, err := r.lockUser(db, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		err = gorm.ErrRecordNotFound
		return 0, err
	}

	newBalance := user.SMSBalance + amount
	err = db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"sms_balance": newBalance,
		"updated_at":  utils.UTCNow(),
	}).Error
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}
