package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultKitchenRangeHours      = 24
	DefaultManagerRangeDays       = 30
	DefaultReceptionistRangeHours = 24
	DefaultRevenueDays            = 14
	DefaultTopItems               = 5

	// Upper bounds for caller-supplied windows. Larger values are clamped.
	MaxRangeHours = 8784
	MaxRangeDays  = 366
	MaxTopItems   = 100

	// DelayThreshold is the prep time above which an order counts as delayed.
	DelayThreshold = 20 * time.Minute
	// FoodCostRatio is the assumed share of revenue spent on ingredients.
	FoodCostRatio = 0.30

	dayLayout = "2006-01-02"
)

type KitchenKPIs struct {
	AvgPrepTimeMinutes float64 `json:"avg_prep_time_minutes"`
	OrdersCompleted    int64   `json:"orders_completed"`
	DelayedOrders      int64   `json:"delayed_orders"`
	OnTimePercent      float64 `json:"on_time_percent"`
	RangeHours         int     `json:"range_hours"`
}

type CategoryStat struct {
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type ManagerKPIs struct {
	TotalRevenue       float64                 `json:"total_revenue"`
	TotalOrders        int64                   `json:"total_orders"`
	AvgOrderValue      float64                 `json:"avg_order_value"`
	GrossMarginPercent float64                 `json:"gross_margin_percent"`
	CategoryBreakdown  map[string]CategoryStat `json:"category_breakdown"`
	RangeDays          int                     `json:"range_days"`
}

type ReceptionistKPIs struct {
	QueueLength             int64   `json:"queue_length"`
	OrdersPerHour           float64 `json:"orders_per_hour"`
	CancellationRatePercent float64 `json:"cancellation_rate_percent"`
	RangeHours              int     `json:"range_hours"`
}

// RevenueSeries is a gap-free daily revenue series for charting.
type RevenueSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

type TopItem struct {
	ItemID uint   `json:"item_id"`
	Name   string `json:"name"`
	Qty    int64  `json:"qty"`
}

// KPIOverview is the landing-page summary shared by every dashboard.
type KPIOverview struct {
	RevenueToday  float64   `json:"revenue_today"`
	QueueLength   int64     `json:"queue_length"`
	LowStockCount int64     `json:"low_stock_count"`
	TopItems      []TopItem `json:"top_items"`
}

// KPIService derives dashboard metrics from persisted orders. Read methods
// never fail: on query errors they log and return zero values.
type KPIService interface {
	Kitchen(ctx context.Context, rangeHours int) KitchenKPIs
	Manager(ctx context.Context, rangeDays int) ManagerKPIs
	Receptionist(ctx context.Context, rangeHours int) ReceptionistKPIs
	RevenueSeries(ctx context.Context, days int) RevenueSeries
	TopItems(ctx context.Context, limit int) []TopItem
	Overview(ctx context.Context) KPIOverview
	// Rollup stores the metrics of one calendar day, replacing any earlier rollup.
	Rollup(ctx context.Context, day time.Time) (*models.DailyMetric, error)
	DailyMetrics(ctx context.Context, days int) ([]models.DailyMetric, error)
}

type kpiService struct {
	db   *gorm.DB
	opts options
}

func NewKPIService(db *gorm.DB, opts ...Option) KPIService {
	return &kpiService{db: db, opts: newOptions(opts)}
}

// bounded returns def for non-positive v and caps v at max.
func bounded(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// window restricts column to [from, to); a zero to leaves it open-ended.
func window(q *gorm.DB, column string, from, to time.Time) *gorm.DB {
	q = q.Where(column+" >= ?", from)
	if !to.IsZero() {
		q = q.Where(column+" < ?", to)
	}
	return q
}

type kitchenStats struct {
	avgMinutes float64
	completed  int64
	delayed    int64
}

func (s *kpiService) kitchenStats(ctx context.Context, from, to time.Time) (kitchenStats, error) {
	var lines []models.OrderItem
	q := s.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_id, item_status, prep_start, prep_end").
		Where("prep_end IS NOT NULL")
	if err := window(q, "prep_end", from, to).Find(&lines).Error; err != nil {
		return kitchenStats{}, err
	}

	var (
		sum     time.Duration
		timed   int
		served  = map[uint]struct{}{}
		delayed = map[uint]struct{}{}
	)
	for _, l := range lines {
		if l.ItemStatus == models.StatusServed {
			served[l.OrderID] = struct{}{}
		}
		if l.PrepStart == nil {
			continue
		}
		d := l.PrepEnd.Sub(*l.PrepStart)
		sum += d
		timed++
		if d > DelayThreshold {
			delayed[l.OrderID] = struct{}{}
		}
	}

	st := kitchenStats{completed: int64(len(served)), delayed: int64(len(delayed))}
	if timed > 0 {
		st.avgMinutes = round1(sum.Minutes() / float64(timed))
	}
	return st, nil
}

func (s *kpiService) Kitchen(ctx context.Context, rangeHours int) KitchenKPIs {
	rangeHours = bounded(rangeHours, DefaultKitchenRangeHours, MaxRangeHours)
	out := KitchenKPIs{RangeHours: rangeHours}

	from := s.opts.now().UTC().Add(-time.Duration(rangeHours) * time.Hour)
	st, err := s.kitchenStats(ctx, from, time.Time{})
	if err != nil {
		log.WithError(err).Error("Kitchen KPI query failed")
		return out
	}

	out.AvgPrepTimeMinutes = st.avgMinutes
	out.OrdersCompleted = st.completed
	out.DelayedOrders = st.delayed
	if st.completed > 0 {
		out.OnTimePercent = round1(float64(st.completed-st.delayed) / float64(st.completed) * 100)
	}
	return out
}

type revenueStats struct {
	orders     int64
	revenue    float64
	categories map[string]CategoryStat
}

func (s *kpiService) revenueStats(ctx context.Context, from, to time.Time) (revenueStats, error) {
	var totals struct {
		Orders  int64
		Revenue float64
	}
	q := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue")
	if err := window(q, "order_time", from, to).Scan(&totals).Error; err != nil {
		return revenueStats{}, err
	}

	var rows []struct {
		Category string
		Count    int64
		Revenue  float64
	}
	q = s.db.WithContext(ctx).
		Table("order_items").
		Select("COALESCE(items.category, 'Uncategorized') AS category, COUNT(*) AS count, COALESCE(SUM(order_items.price * order_items.qty), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("LEFT JOIN items ON items.id = order_items.item_id")
	err := window(q, "orders.order_time", from, to).
		Group("COALESCE(items.category, 'Uncategorized')").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return revenueStats{}, err
	}

	st := revenueStats{
		orders:     totals.Orders,
		revenue:    totals.Revenue,
		categories: make(map[string]CategoryStat, len(rows)),
	}
	for _, r := range rows {
		st.categories[r.Category] = CategoryStat{Count: r.Count, Revenue: round2(r.Revenue)}
	}
	return st, nil
}

func (s *kpiService) Manager(ctx context.Context, rangeDays int) ManagerKPIs {
	rangeDays = bounded(rangeDays, DefaultManagerRangeDays, MaxRangeDays)
	out := ManagerKPIs{RangeDays: rangeDays, CategoryBreakdown: map[string]CategoryStat{}}

	from := s.opts.now().UTC().AddDate(0, 0, -rangeDays)
	st, err := s.revenueStats(ctx, from, time.Time{})
	if err != nil {
		log.WithError(err).Error("Manager KPI query failed")
		return out
	}

	out.TotalRevenue = round2(st.revenue)
	out.TotalOrders = st.orders
	out.CategoryBreakdown = st.categories
	if st.orders > 0 {
		out.AvgOrderValue = round2(st.revenue / float64(st.orders))
	}
	if st.revenue > 0 {
		out.GrossMarginPercent = round1((st.revenue - FoodCostRatio*st.revenue) / st.revenue * 100)
	}
	return out
}

func (s *kpiService) countOrders(ctx context.Context, from, to time.Time, statuses ...models.OrderStatus) (int64, error) {
	var n int64
	q := window(s.db.WithContext(ctx).Model(&models.Order{}), "order_time", from, to)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Count(&n).Error
	return n, err
}

func (s *kpiService) queueLength(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status IN ?", []models.OrderStatus{models.StatusQueued, models.StatusPreparing}).
		Count(&n).Error
	return n, err
}

func (s *kpiService) Receptionist(ctx context.Context, rangeHours int) ReceptionistKPIs {
	rangeHours = bounded(rangeHours, DefaultReceptionistRangeHours, MaxRangeHours)
	out := ReceptionistKPIs{RangeHours: rangeHours}

	from := s.opts.now().UTC().Add(-time.Duration(rangeHours) * time.Hour)
	queue, err := s.queueLength(ctx)
	if err != nil {
		log.WithError(err).Error("Receptionist queue query failed")
		return out
	}
	total, err := s.countOrders(ctx, from, time.Time{})
	if err != nil {
		log.WithError(err).Error("Receptionist order count failed")
		return out
	}
	cancelled, err := s.countOrders(ctx, from, time.Time{}, models.StatusCancelled)
	if err != nil {
		log.WithError(err).Error("Receptionist cancellation count failed")
		return out
	}

	out.QueueLength = queue
	out.OrdersPerHour = round1(float64(total) / float64(rangeHours))
	if total > 0 {
		out.CancellationRatePercent = round1(float64(cancelled) / float64(total) * 100)
	}
	return out
}

func (s *kpiService) startOfDay(t time.Time) time.Time {
	t = t.In(s.opts.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.opts.loc)
}

func (s *kpiService) RevenueSeries(ctx context.Context, days int) RevenueSeries {
	days = bounded(days, DefaultRevenueDays, MaxRangeDays)
	start := s.startOfDay(s.opts.now()).AddDate(0, 0, -(days - 1))

	out := RevenueSeries{Labels: make([]string, days), Data: make([]float64, days)}
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		label := start.AddDate(0, 0, i).Format(dayLayout)
		out.Labels[i] = label
		index[label] = i
	}

	var orders []models.Order
	err := s.db.WithContext(ctx).
		Select("order_time, total_amount").
		Where("order_time >= ?", start.UTC()).
		Find(&orders).Error
	if err != nil {
		log.WithError(err).Error("Revenue series query failed")
		return out
	}

	for _, o := range orders {
		if i, ok := index[o.OrderTime.In(s.opts.loc).Format(dayLayout)]; ok {
			out.Data[i] += o.TotalAmount.InexactFloat64()
		}
	}
	for i := range out.Data {
		out.Data[i] = round2(out.Data[i])
	}
	return out
}

func (s *kpiService) topItems(ctx context.Context, limit int) ([]TopItem, error) {
	items := []TopItem{}
	err := s.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.item_id AS item_id, COALESCE(MAX(items.name), '') AS name, SUM(order_items.qty) AS qty").
		Joins("LEFT JOIN items ON items.id = order_items.item_id").
		Group("order_items.item_id").
		Order("qty DESC, item_id ASC").
		Limit(limit).
		Scan(&items).Error
	return items, err
}

func (s *kpiService) TopItems(ctx context.Context, limit int) []TopItem {
	items, err := s.topItems(ctx, bounded(limit, DefaultTopItems, MaxTopItems))
	if err != nil {
		log.WithError(err).Error("Top items query failed")
		return []TopItem{}
	}
	return items
}

func (s *kpiService) Overview(ctx context.Context) KPIOverview {
	var (
		out     = KPIOverview{TopItems: []TopItem{}}
		revenue revenueStats
		top     []TopItem
	)
	today := s.startOfDay(s.opts.now()).UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenue, err = s.revenueStats(gctx, today, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		out.QueueLength, err = s.queueLength(gctx)
		return err
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Model(&models.InventoryRecord{}).
			Where("quantity <= reorder_level").
			Count(&out.LowStockCount).Error
	})
	g.Go(func() error {
		var err error
		top, err = s.topItems(gctx, DefaultTopItems)
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("KPI overview query failed")
		return KPIOverview{TopItems: []TopItem{}}
	}

	out.RevenueToday = round2(revenue.revenue)
	out.TopItems = top
	return out
}

func (s *kpiService) Rollup(ctx context.Context, day time.Time) (*models.DailyMetric, error) {
	from := s.startOfDay(day)
	to := from.AddDate(0, 0, 1)
	fromUTC, toUTC := from.UTC(), to.UTC()

	rev, err := s.revenueStats(ctx, fromUTC, toUTC)
	if err != nil {
		return nil, fmt.Errorf("rollup revenue: %w", err)
	}
	kitchen, err := s.kitchenStats(ctx, fromUTC, toUTC)
	if err != nil {
		return nil, fmt.Errorf("rollup kitchen: %w", err)
	}
	cancelled, err := s.countOrders(ctx, fromUTC, toUTC, models.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("rollup cancellations: %w", err)
	}
	breakdown, err := json.Marshal(rev.categories)
	if err != nil {
		return nil, fmt.Errorf("rollup breakdown: %w", err)
	}

	metric := &models.DailyMetric{
		MetricDate:         from.Format(dayLayout),
		TotalRevenue:       round2(rev.revenue),
		TotalOrders:        rev.orders,
		AvgPrepTimeMinutes: kitchen.avgMinutes,
		OrdersCompleted:    kitchen.completed,
		DelayedOrders:      kitchen.delayed,
		CancelledOrders:    cancelled,
		CategoryBreakdown:  datatypes.JSON(breakdown),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "metric_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_revenue", "total_orders", "avg_prep_time_minutes", "orders_completed",
			"delayed_orders", "cancelled_orders", "category_breakdown", "updated_at",
		}),
	}).Create(metric).Error
	if err != nil {
		return nil, fmt.Errorf("store rollup: %w", err)
	}

	log.WithFields(logrus.Fields{
		"metric_date": metric.MetricDate,
		"orders":      metric.TotalOrders,
		"revenue":     metric.TotalRevenue,
	}).Info("Daily metrics rolled up")

	var stored models.DailyMetric
	if err := s.db.WithContext(ctx).Where("metric_date = ?", metric.MetricDate).First(&stored).Error; err != nil {
		return metric, nil
	}
	return &stored, nil
}

func (s *kpiService) DailyMetrics(ctx context.Context, days int) ([]models.DailyMetric, error) {
	days = bounded(days, DefaultManagerRangeDays, MaxRangeDays)
	since := s.startOfDay(s.opts.now()).AddDate(0, 0, -(days - 1)).Format(dayLayout)

	metrics := []models.DailyMetric{}
	err := s.db.WithContext(ctx).
		Where("metric_date >= ?", since).
		Order("metric_date").
		Find(&metrics).Error
	return metrics, err
}
