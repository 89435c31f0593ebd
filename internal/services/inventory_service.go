package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InventoryAlerts lists records at or below their reorder level.
type InventoryAlerts struct {
	Alerts        []models.InventoryRecord `json:"alerts"`
	LowCount      int                      `json:"low_count"`
	TotalTracked  int                      `json:"total_tracked"`
	EfficiencyPct float64                  `json:"efficiency_pct"`
}

// InventoryAdjustment is a partial update. Quantity is absolute, Delta relative;
// when both are set Quantity wins.
type InventoryAdjustment struct {
	Name         *string `json:"name"`
	SKU          *string `json:"sku"`
	Quantity     *int    `json:"quantity"`
	Delta        *int    `json:"delta"`
	ReorderLevel *int    `json:"reorder_level" binding:"omitempty,gte=0"`
}

type InventoryService interface {
	// Decrement lowers stock linked to itemID by qty, clamping at zero, and
	// returns the updated records. It runs under a savepoint of tx.
	Decrement(ctx context.Context, tx *gorm.DB, itemID uint, qty int) ([]models.InventoryRecord, error)
	Alerts(ctx context.Context) InventoryAlerts
	List(ctx context.Context) ([]models.InventoryRecord, error)
	Create(ctx context.Context, rec *models.InventoryRecord) error
	Adjust(ctx context.Context, id uint, adj InventoryAdjustment) (*models.InventoryRecord, error)
	Count(ctx context.Context) (int64, error)
}

type inventoryService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewInventoryService(db *gorm.DB, notifier *Notifier) InventoryService {
	return &inventoryService{db: db, notifier: notifier}
}

func clampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

func (s *inventoryService) Decrement(ctx context.Context, tx *gorm.DB, itemID uint, qty int) ([]models.InventoryRecord, error) {
	if qty <= 0 {
		return nil, nil
	}
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}

	var updated []models.InventoryRecord
	err := tx.Transaction(func(inner *gorm.DB) error {
		res := inner.Model(&models.InventoryRecord{}).
			Where("item_id = ?", itemID).
			Update("quantity", gorm.Expr("CASE WHEN quantity > ? THEN quantity - ? ELSE 0 END", qty, qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return inner.Where("item_id = ?", itemID).Find(&updated).Error
	})
	if err != nil {
		return nil, fmt.Errorf("decrement stock for item %d: %w", itemID, err)
	}
	return updated, nil
}

func (s *inventoryService) Alerts(ctx context.Context) InventoryAlerts {
	result := InventoryAlerts{Alerts: []models.InventoryRecord{}, EfficiencyPct: 100}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.InventoryRecord{}).Count(&total).Error; err != nil {
		log.WithError(err).Error("Inventory alert count failed")
		return result
	}
	if err := s.db.WithContext(ctx).
		Where("quantity <= reorder_level").
		Order("quantity ASC, id ASC").
		Find(&result.Alerts).Error; err != nil {
		log.WithError(err).Error("Inventory alert query failed")
		return InventoryAlerts{Alerts: []models.InventoryRecord{}, EfficiencyPct: 100}
	}

	result.TotalTracked = int(total)
	result.LowCount = len(result.Alerts)
	if result.TotalTracked > 0 {
		result.EfficiencyPct = round1((1 - float64(result.LowCount)/float64(result.TotalTracked)) * 100)
	}
	return result
}

func (s *inventoryService) List(ctx context.Context) ([]models.InventoryRecord, error) {
	var records []models.InventoryRecord
	err := s.db.WithContext(ctx).Order("name, id").Find(&records).Error
	return records, err
}

func (s *inventoryService) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.InventoryRecord{}).Count(&count).Error
	return count, err
}

func (s *inventoryService) Create(ctx context.Context, rec *models.InventoryRecord) error {
	rec.Quantity = clampQuantity(rec.Quantity)
	rec.ReorderLevel = clampQuantity(rec.ReorderLevel)
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	s.notifier.InventoryChanged(ctx, *rec)
	return nil
}

func (s *inventoryService) Adjust(ctx context.Context, id uint, adj InventoryAdjustment) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInventoryNotFound
			}
			return err
		}

		switch {
		case adj.Quantity != nil:
			rec.Quantity = clampQuantity(*adj.Quantity)
		case adj.Delta != nil:
			rec.Quantity = clampQuantity(rec.Quantity + *adj.Delta)
		}
		if adj.ReorderLevel != nil {
			rec.ReorderLevel = clampQuantity(*adj.ReorderLevel)
		}
		if adj.Name != nil && *adj.Name != "" {
			rec.Name = *adj.Name
		}
		if adj.SKU != nil {
			rec.SKU = *adj.SKU
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"inventory_id": rec.ID,
		"quantity":     rec.Quantity,
		"status":       rec.StockStatus(),
	}).Info("Inventory adjusted")
	s.notifier.InventoryChanged(ctx, rec)
	return &rec, nil
}
