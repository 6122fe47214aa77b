package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// MessageRepositoryImpl implements MessageRepository interface
type MessageRepositoryImpl struct {
	*BaseRepository[models.Message, models.MessageFilter]
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &MessageRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Message, models.MessageFilter](db),
	}
}

func (r *MessageRepositoryImpl) applyFilter(db *gorm.DB, f models.MessageFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.BatchID != nil {
		db = db.Where("batch_id = ?", *f.BatchID)
	}
	if f.Recipient != nil {
		db = db.Where("recipient = ?", *f.Recipient)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.ProviderMessageID != nil {
		db = db.Where("provider_message_id = ?", *f.ProviderMessageID)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *MessageRepositoryImpl) ByFilter(ctx context.Context, filter models.MessageFilter, orderBy string, limit, offset int) ([]*models.Message, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Message{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Message
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, filter models.MessageFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Message{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MessageRepositoryImpl) Exists(ctx context.Context, filter models.MessageFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByProviderMessageID retrieves a message by the provider's identifier
func (r *MessageRepositoryImpl) ByProviderMessageID(ctx context.Context, providerMessageID string) (*models.Message, error) {
	db := r.getDB(ctx)
	var message models.Message
	err := db.Where("provider_message_id = ?", providerMessageID).Last(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// MarkQueued records provider acceptance of a pending message
func (r *MessageRepositoryImpl) MarkQueued(ctx context.Context, messageID uint, providerMessageID string) error {
	db := r.getDB(ctx)
	return db.Model(&models.Message{}).
		Where("id = ? AND status = ?", messageID, models.MessageStatusPending).
		Updates(map[string]any{
			"status":              models.MessageStatusQueued,
			"provider_message_id": providerMessageID,
			"updated_at":          utils.UTCNow(),
		}).Error
}

// MarkFailed records a provider rejection of a pending message
func (r *MessageRepositoryImpl) MarkFailed(ctx context.Context, messageID uint, reason string) error {
	db := r.getDB(ctx)
	return db.Model(&models.Message{}).
		Where("id = ? AND status = ?", messageID, models.MessageStatusPending).
		Updates(map[string]any{
			"status":         models.MessageStatusFailed,
			"failure_reason": reason,
			"updated_at":     utils.UTCNow(),
		}).Error
}

// ApplyDeliveryReport moves a live message to the reported terminal
// status. The WHERE clause restricts the update to live statuses so a
// replayed report can never overwrite a terminal state; callers get
// false when nothing matched and decide between not-found and
// already-processed by looking the message up.
func (r *MessageRepositoryImpl) ApplyDeliveryReport(ctx context.Context, providerMessageID, status string, reason *string, deliveredAt *time.Time) (bool, error) {
	db := r.getDB(ctx)

	updates := map[string]any{
		"status":     status,
		"updated_at": utils.UTCNow(),
	}
	if reason != nil {
		updates["failure_reason"] = *reason
	}
	if deliveredAt != nil {
		updates["delivered_at"] = *deliveredAt
	}

	result := db.Model(&models.Message{}).
		Where("provider_message_id = ? AND status IN ?", providerMessageID,
			[]string{models.MessageStatusPending, models.MessageStatusQueued}).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// CountByStatusForKey returns per-status message counts for messages
// sent with one API key
func (r *MessageRepositoryImpl) CountByStatusForKey(ctx context.Context, apiKeyID uint) (map[string]int64, error) {
	db := r.getDB(ctx)

	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := db.Model(&models.Message{}).
		Select("status, COUNT(*) AS total").
		Where("api_key_id = ?", apiKeyID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// CountByStatus returns per-status message counts for a user
func (r *MessageRepositoryImpl) CountByStatus(ctx context.Context, userID uint) (map[string]int64, error) {
	db := r.getDB(ctx)

	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := db.Model(&models.Message{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// ExpireStale transitions live messages older than the cutoff to
// expired. Delivery reports arriving afterwards are acknowledged as
// already processed.
func (r *MessageRepositoryImpl) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	db := r.getDB(ctx)

	result := db.Model(&models.Message{}).
		Where("status IN ? AND created_at < ?",
			[]string{models.MessageStatusPending, models.MessageStatusQueued}, olderThan).
		Updates(map[string]any{
			"status":         models.MessageStatusExpired,
			"failure_reason": "expired in transit",
			"updated_at":     utils.UTCNow(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
