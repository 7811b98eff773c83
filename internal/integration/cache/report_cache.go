// Package cache provides caching of aggregated report views.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
)

const defaultKeyPrefix = "report"

// RedisReportCache stores report views in Redis keyed by date.
type RedisReportCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisReportCache creates a new Redis-backed report cache.
func NewRedisReportCache(rdb *redis.Client, ttl time.Duration) *RedisReportCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisReportCache{
		rdb:    rdb,
		ttl:    ttl,
		prefix: defaultKeyPrefix,
	}
}

func (c *RedisReportCache) key(date time.Time) string {
	return c.prefix + ":" + entity.NormalizeDate(date).Format(entity.ReportDateLayout)
}

// Get returns the cached view of a date.
func (c *RedisReportCache) Get(ctx context.Context, date time.Time) (*entity.ReportView, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cached cachedReportView
	if err := json.Unmarshal(raw, &cached); err != nil {
		// A corrupt entry is treated as a miss and overwritten by the next Set.
		return nil, false, nil
	}
	return cached.toEntity(), true, nil
}

// Set stores a report view.
func (c *RedisReportCache) Set(ctx context.Context, view *entity.ReportView) error {
	raw, err := json.Marshal(cachedFromEntity(view))
	if err != nil {
		return fmt.Errorf("failed to encode report view: %w", err)
	}
	return c.rdb.Set(ctx, c.key(view.Report.Date), raw, c.ttl).Err()
}

// Invalidate evicts the cached view of a date.
func (c *RedisReportCache) Invalidate(ctx context.Context, date time.Time) error {
	return c.rdb.Del(ctx, c.key(date)).Err()
}

// NoopReportCache is used when Redis is not configured.
type NoopReportCache struct{}

// NewNoopReportCache creates a cache that never stores anything.
func NewNoopReportCache() *NoopReportCache {
	return &NoopReportCache{}
}

// Get always misses.
func (NoopReportCache) Get(context.Context, time.Time) (*entity.ReportView, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (NoopReportCache) Set(context.Context, *entity.ReportView) error { return nil }

// Invalidate does nothing.
func (NoopReportCache) Invalidate(context.Context, time.Time) error { return nil }

// Wire format of a cached view. Decimals are encoded as strings.
type cachedReportView struct {
	ReportID         uint                 `json:"report_id"`
	Date             time.Time            `json:"date"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	TotalProfit      decimal.Decimal      `json:"total_profit"`
	TotalConsumption decimal.Decimal      `json:"total_consumption"`
	NetProfit        decimal.Decimal      `json:"net_profit"`
	Profits          []cachedProfit       `json:"profits"`
	Consumptions     []entity.Consumption `json:"consumptions"`
}

type cachedProfit struct {
	Profit      entity.Profit       `json:"profit"`
	Appointment *entity.Appointment `json:"appointment,omitempty"`
}

func cachedFromEntity(view *entity.ReportView) cachedReportView {
	c := cachedReportView{
		ReportID:         view.Report.ID,
		Date:             view.Report.Date,
		CreatedAt:        view.Report.CreatedAt,
		UpdatedAt:        view.Report.UpdatedAt,
		TotalProfit:      view.Totals.TotalProfit,
		TotalConsumption: view.Totals.TotalConsumption,
		NetProfit:        view.Totals.NetProfit,
		Profits:          make([]cachedProfit, len(view.Profits)),
		Consumptions:     make([]entity.Consumption, len(view.Consumptions)),
	}
	for i, p := range view.Profits {
		c.Profits[i] = cachedProfit{Profit: *p.Profit, Appointment: p.Appointment}
	}
	for i, cons := range view.Consumptions {
		c.Consumptions[i] = *cons
	}
	return c
}

func (c cachedReportView) toEntity() *entity.ReportView {
	view := &entity.ReportView{
		Report: &entity.Report{
			ID:        c.ReportID,
			Date:      entity.NormalizeDate(c.Date),
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		Totals: entity.ReportTotals{
			TotalProfit:      c.TotalProfit,
			TotalConsumption: c.TotalConsumption,
			NetProfit:        c.NetProfit,
		},
		Profits:      make([]*entity.ProfitWithAppointment, len(c.Profits)),
		Consumptions: make([]*entity.Consumption, len(c.Consumptions)),
	}
	for i := range c.Profits {
		profit := c.Profits[i].Profit
		view.Profits[i] = &entity.ProfitWithAppointment{Profit: &profit, Appointment: c.Profits[i].Appointment}
	}
	for i := range c.Consumptions {
		consumption := c.Consumptions[i]
		view.Consumptions[i] = &consumption
	}
	return view
}

// Ensure implementations satisfy interfaces.
var (
	_ adapter.ReportCache = (*RedisReportCache)(nil)
	_ adapter.ReportCache = NoopReportCache{}
)
