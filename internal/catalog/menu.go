// Package catalog reads and edits the authored menu file, the source the
// relational item table is seeded from.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// ErrItemNotFound is returned when no authored item has the requested id.
var ErrItemNotFound = errors.New("menu item not found")

// Menu is the authored catalog document.
type Menu struct {
	GeneratedAt string     `json:"generated_at,omitempty" yaml:"generated_at,omitempty"`
	Currency    string     `json:"currency,omitempty" yaml:"currency,omitempty"`
	Categories  []Category `json:"categories" yaml:"categories" validate:"dive"`
}

type Category struct {
	ID    string     `json:"id" yaml:"id"`
	Label string     `json:"label" yaml:"label" validate:"required"`
	Items []MenuItem `json:"items" yaml:"items" validate:"dive"`
}

type MenuItem struct {
	ID          uint     `json:"id" yaml:"id" validate:"required"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Price       float64  `json:"price" yaml:"price" validate:"gte=0"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Veg         *bool    `json:"veg,omitempty" yaml:"veg,omitempty"`
}

// IsVeg defaults to true when the menu does not say otherwise.
func (m MenuItem) IsVeg() bool {
	return m.Veg == nil || *m.Veg
}

// UnitPrice is the price rounded to cents.
func (m MenuItem) UnitPrice() decimal.Decimal {
	return decimal.NewFromFloat(m.Price).Round(2)
}

// Entry is a menu item together with the label of its category.
type Entry struct {
	MenuItem
	Category string
}

// ItemInput is a manager edit. A zero ID creates a new item.
type ItemInput struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"gte=0"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
	Veg         *bool    `json:"veg"`
	Category    string   `json:"category" binding:"required"`
}

// FileStore is the authored menu on disk. JSON unless the extension is .yaml or .yml.
type FileStore struct {
	path     string
	mu       sync.Mutex
	validate *validator.Validate
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, validate: validator.New()}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads and validates the menu. A missing file is an empty menu.
func (s *FileStore) Load() (*Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (*Menu, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Menu{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read menu %s: %w", s.path, err)
	}

	var menu Menu
	if s.isYAML() {
		err = yaml.Unmarshal(data, &menu)
	} else {
		err = json.Unmarshal(data, &menu)
	}
	if err != nil {
		return nil, fmt.Errorf("decode menu %s: %w", s.path, err)
	}
	if err := s.validate.Struct(&menu); err != nil {
		return nil, fmt.Errorf("invalid menu %s: %w", s.path, err)
	}
	for i := range menu.Categories {
		if menu.Categories[i].ID == "" {
			menu.Categories[i].ID = slug.Make(menu.Categories[i].Label)
		}
	}
	return &menu, nil
}

// Save validates and atomically replaces the menu file.
func (s *FileStore) Save(menu *Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(menu)
}

func (s *FileStore) save(menu *Menu) error {
	if err := s.validate.Struct(menu); err != nil {
		return fmt.Errorf("invalid menu: %w", err)
	}
	menu.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	var (
		data []byte
		err  error
	)
	if s.isYAML() {
		data, err = yaml.Marshal(menu)
	} else {
		data, err = json.MarshalIndent(menu, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode menu: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create menu dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write menu: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Entries flattens the menu, keeping category order.
func (s *FileStore) Entries() ([]Entry, error) {
	menu, err := s.Load()
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, cat := range menu.Categories {
		for _, item := range cat.Items {
			entries = append(entries, Entry{MenuItem: item, Category: cat.Label})
		}
	}
	return entries, nil
}

// Find looks up one authored item by id.
func (s *FileStore) Find(id uint) (Entry, error) {
	entries, err := s.Entries()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrItemNotFound
}

// Upsert replaces the item with the same id or appends a new one. A new item
// gets the larger of max+1 and floor, so ids retired from the file but still
// stored elsewhere are never handed out again.
// Moving an item to another category removes it from the old one.
func (s *FileStore) Upsert(in ItemInput, floor uint) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	menu, err := s.load()
	if err != nil {
		return Entry{}, err
	}

	var item MenuItem
	if err := copier.Copy(&item, &in); err != nil {
		return Entry{}, fmt.Errorf("copy menu item: %w", err)
	}
	if item.ID == 0 {
		item.ID = nextID(menu)
		if floor > item.ID {
			item.ID = floor
		}
	}
	removeItem(menu, item.ID)

	label := strings.TrimSpace(in.Category)
	target := -1
	for i, cat := range menu.Categories {
		if strings.EqualFold(cat.Label, label) || cat.ID == slug.Make(label) {
			target = i
			break
		}
	}
	if target < 0 {
		menu.Categories = append(menu.Categories, Category{ID: slug.Make(label), Label: label})
		target = len(menu.Categories) - 1
	}
	menu.Categories[target].Items = append(menu.Categories[target].Items, item)

	if err := s.save(menu); err != nil {
		return Entry{}, err
	}
	log.WithFields(logrus.Fields{
		"item_id":  item.ID,
		"category": menu.Categories[target].Label,
	}).Info("Menu item saved")
	return Entry{MenuItem: item, Category: menu.Categories[target].Label}, nil
}

// Delete removes an item. Empty categories are kept.
func (s *FileStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	menu, err := s.load()
	if err != nil {
		return err
	}
	if !removeItem(menu, id) {
		return ErrItemNotFound
	}
	return s.save(menu)
}

func nextID(menu *Menu) uint {
	var ids []uint
	for _, cat := range menu.Categories {
		for _, item := range cat.Items {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) == 0 {
		return 1
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[len(ids)-1] + 1
}

func removeItem(menu *Menu, id uint) bool {
	removed := false
	for ci := range menu.Categories {
		items := menu.Categories[ci].Items[:0]
		for _, item := range menu.Categories[ci].Items {
			if item.ID == id {
				removed = true
				continue
			}
			items = append(items, item)
		}
		menu.Categories[ci].Items = items
	}
	return removed
}
