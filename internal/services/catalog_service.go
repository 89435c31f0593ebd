package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-cafe-api/internal/catalog"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService resolves item prices from the relational store, seeding
// missing rows from the authored menu on demand.
type CatalogService interface {
	// ResolvePrices returns prices for the unique ids and the ids that could not be resolved,
	// in first-requested order.
	ResolvePrices(ctx context.Context, ids []uint) (map[uint]decimal.Decimal, []uint, error)
	// SeedItem materializes an authored item. It reports whether the row is now present.
	SeedItem(ctx context.Context, id uint) (bool, error)
	// SyncFromMenu seeds every authored item missing from the store and returns how many were added.
	SyncFromMenu(ctx context.Context) (int, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	CountItems(ctx context.Context) (int64, error)
	GetMenu(ctx context.Context) (*catalog.Menu, error)
	SaveMenuItem(ctx context.Context, in catalog.ItemInput) (*models.Item, error)
	DeleteMenuItem(ctx context.Context, id uint) error
}

type catalogService struct {
	db   *gorm.DB
	menu *catalog.FileStore
}

func NewCatalogService(db *gorm.DB, menu *catalog.FileStore) CatalogService {
	return &catalogService{db: db, menu: menu}
}

func itemFromEntry(e catalog.Entry) models.Item {
	return models.Item{
		ID:          e.ID,
		Name:        e.Name,
		Category:    e.Category,
		Price:       e.UnitPrice(),
		Description: e.Description,
		Image:       e.Image,
		Tags:        datatypes.JSONSlice[string](e.Tags),
		Veg:         e.IsVeg(),
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *catalogService) ResolvePrices(ctx context.Context, ids []uint) (map[uint]decimal.Decimal, []uint, error) {
	unique := uniqueIDs(ids)
	prices := make(map[uint]decimal.Decimal, len(unique))
	if len(unique) == 0 {
		return prices, nil, nil
	}

	var items []models.Item
	if err := s.db.WithContext(ctx).Where("id IN ?", unique).Find(&items).Error; err != nil {
		return nil, nil, fmt.Errorf("lookup items: %w", err)
	}
	for _, item := range items {
		prices[item.ID] = item.Price
	}

	var missing []uint
	for _, id := range unique {
		if _, ok := prices[id]; ok {
			continue
		}

		present, err := s.SeedItem(ctx, id)
		if err != nil {
			log.WithError(err).WithField("item_id", id).Warn("Seeding item from menu failed")
		}
		if !present {
			missing = append(missing, id)
			continue
		}

		var item models.Item
		if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
			log.WithError(err).WithField("item_id", id).Warn("Seeded item not readable")
			missing = append(missing, id)
			continue
		}
		prices[id] = item.Price
	}
	return prices, missing, nil
}

func (s *catalogService) SeedItem(ctx context.Context, id uint) (bool, error) {
	if s.menu == nil {
		return false, nil
	}
	entry, err := s.menu.Find(id)
	if errors.Is(err, catalog.ErrItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := s.seed(ctx, entry); err != nil {
		return false, err
	}
	return true, nil
}

// seed inserts the entry unless a row with its id exists. A concurrent insert wins.
func (s *catalogService) seed(ctx context.Context, entry catalog.Entry) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", entry.ID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check item %d: %w", entry.ID, err)
	}
	if count > 0 {
		return false, nil
	}

	item := itemFromEntry(entry)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
	if res.Error != nil {
		return false, fmt.Errorf("insert item %d: %w", entry.ID, res.Error)
	}
	if res.RowsAffected > 0 {
		log.WithFields(logrus.Fields{
			"item_id":  item.ID,
			"name":     item.Name,
			"category": item.Category,
		}).Info("Seeded item from menu")
	}
	return res.RowsAffected > 0, nil
}

func (s *catalogService) SyncFromMenu(ctx context.Context) (int, error) {
	if s.menu == nil {
		return 0, nil
	}
	entries, err := s.menu.Entries()
	if err != nil {
		return 0, err
	}
	added := 0
	for _, entry := range entries {
		created, err := s.seed(ctx, entry)
		if err != nil {
			return added, err
		}
		if created {
			added++
		}
	}
	return added, nil
}

// ListItems prefers the authored menu and falls back to the relational store.
func (s *catalogService) ListItems(ctx context.Context) ([]models.Item, error) {
	if s.menu != nil {
		entries, err := s.menu.Entries()
		if err != nil {
			log.WithError(err).Warn("Menu file unreadable, listing items from database")
		} else if len(entries) > 0 {
			items := make([]models.Item, 0, len(entries))
			for _, e := range entries {
				items = append(items, itemFromEntry(e))
			}
			return items, nil
		}
	}

	var items []models.Item
	if err := s.db.WithContext(ctx).Order("category, id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *catalogService) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Item{}).Count(&count).Error
	return count, err
}

func (s *catalogService) GetMenu(ctx context.Context) (*catalog.Menu, error) {
	if s.menu == nil {
		return &catalog.Menu{}, nil
	}
	return s.menu.Load()
}

// SaveMenuItem edits the authored menu and refreshes the relational row so
// new orders price from the edit. Existing order lines keep their own price.
// A non-zero id must already be on the menu; new items never reuse the id of
// a stored row, including rows kept only for order history.
func (s *catalogService) SaveMenuItem(ctx context.Context, in catalog.ItemInput) (*models.Item, error) {
	if s.menu == nil {
		return nil, errors.New("no menu file configured")
	}
	if in.ID != 0 {
		if _, err := s.menu.Find(in.ID); err != nil {
			if errors.Is(err, catalog.ErrItemNotFound) {
				return nil, ErrMenuItemNotFound
			}
			return nil, err
		}
	}

	var maxID uint
	if err := s.db.WithContext(ctx).Model(&models.Item{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
		return nil, fmt.Errorf("read highest item id: %w", err)
	}
	entry, err := s.menu.Upsert(in, maxID+1)
	if err != nil {
		return nil, err
	}

	item := itemFromEntry(entry)
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "price", "description", "image", "tags", "veg", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return nil, fmt.Errorf("store item %d: %w", item.ID, err)
	}
	return &item, nil
}

// DeleteMenuItem removes the authored entry. The relational row is kept while
// order lines still reference it.
func (s *catalogService) DeleteMenuItem(ctx context.Context, id uint) error {
	if s.menu == nil {
		return ErrMenuItemNotFound
	}
	if err := s.menu.Delete(id); err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			return ErrMenuItemNotFound
		}
		return err
	}

	var refs int64
	if err := s.db.WithContext(ctx).Model(&models.OrderItem{}).Where("item_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		log.WithFields(logrus.Fields{"item_id": id, "order_lines": refs}).Info("Item removed from menu, row kept for history")
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.Item{}, id).Error
}
