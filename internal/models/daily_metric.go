package models

import (
	"time"

	"gorm.io/datatypes"
)

// DailyMetric is the nightly rollup of one calendar day.
type DailyMetric struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	MetricDate         string         `gorm:"size:10;uniqueIndex;not null" json:"metric_date"`
	TotalRevenue       float64        `json:"total_revenue"`
	TotalOrders        int64          `json:"total_orders"`
	AvgPrepTimeMinutes float64        `json:"avg_prep_time_minutes"`
	OrdersCompleted    int64          `json:"orders_completed"`
	DelayedOrders      int64          `json:"delayed_orders"`
	CancelledOrders    int64          `json:"cancelled_orders"`
	CategoryBreakdown  datatypes.JSON `json:"category_breakdown" swaggertype:"object"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
