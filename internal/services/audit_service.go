package services

import (
	"context"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditEntry is one status change to record. OldStatus is nil on creation.
type AuditEntry struct {
	OrderID   uint
	OldStatus *models.OrderStatus
	NewStatus models.OrderStatus
	Actor     Actor
	Note      string
	At        time.Time
}

// AuditService is the append-only order history.
type AuditService interface {
	// Append writes the entry inside tx (or its own transaction when tx is nil).
	// Failures are logged and rolled back to a savepoint; it reports success.
	Append(tx *gorm.DB, entry AuditEntry) bool
	History(ctx context.Context, orderID uint) ([]models.OrderHistory, error)
}

type auditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) AuditService {
	return &auditService{db: db}
}

func (s *auditService) Append(tx *gorm.DB, entry AuditEntry) bool {
	if tx == nil {
		tx = s.db
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	row := models.OrderHistory{
		OrderID:   entry.OrderID,
		OldStatus: entry.OldStatus,
		NewStatus: entry.NewStatus,
		ChangedBy: entry.Actor.UserID,
		Notes:     entry.Note,
		ChangedAt: entry.At,
	}
	err := tx.Transaction(func(inner *gorm.DB) error {
		// a deleted actor is recorded the way deletion leaves older rows: no author
		if row.ChangedBy != nil {
			var found int64
			if err := inner.Model(&models.User{}).Where("id = ?", *row.ChangedBy).Count(&found).Error; err != nil {
				return err
			}
			if found == 0 {
				log.WithFields(logrus.Fields{
					"order_id": entry.OrderID,
					"actor":    entry.Actor.Label(),
				}).Warn("Audit actor no longer exists, recording without author")
				row.ChangedBy = nil
			}
		}
		return inner.Create(&row).Error
	})
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"order_id":   entry.OrderID,
			"new_status": entry.NewStatus,
			"actor":      entry.Actor.Label(),
		}).Warn("Audit append failed")
		return false
	}
	return true
}

func (s *auditService) History(ctx context.Context, orderID uint) ([]models.OrderHistory, error) {
	var rows []models.OrderHistory
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at, id").
		Find(&rows).Error
	return rows, err
}
