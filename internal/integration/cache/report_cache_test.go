package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

func newTestCache(t *testing.T) (*RedisReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisReportCache(rdb, time.Minute), mr
}

func sampleView() *entity.ReportView {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &entity.ReportView{
		Report: &entity.Report{ID: 9, Date: date},
		Totals: entity.ReportTotals{
			TotalProfit:      decimal.RequireFromString("150.00"),
			TotalConsumption: decimal.RequireFromString("30.00"),
			NetProfit:        decimal.RequireFromString("120.00"),
		},
		Profits: []*entity.ProfitWithAppointment{
			{
				Profit:      &entity.Profit{ID: 1, ReportID: 9, AppointmentID: 3, Amount: decimal.RequireFromString("150.00")},
				Appointment: &entity.Appointment{ID: 3, Price: decimal.RequireFromString("150.00"), Status: entity.AppointmentStatusFullyPaid},
			},
		},
		Consumptions: []*entity.Consumption{
			{ID: 1, ReportID: 9, Title: "Gloves", Amount: decimal.RequireFromString("30.00")},
		},
	}
}

func TestRedisReportCache(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	view := sampleView()

	t.Run("miss before set", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, view.Report.Date)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected cache miss")
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := cache.Set(ctx, view); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !mr.Exists("report:2024-03-01") {
			t.Fatal("expected key report:2024-03-01 to exist")
		}
		if ttl := mr.TTL("report:2024-03-01"); ttl != time.Minute {
			t.Errorf("expected ttl 1m, got %s", ttl)
		}

		// Any time on the same day hits the same entry.
		got, ok, err := cache.Get(ctx, view.Report.Date.Add(10*time.Hour))
		if err != nil || !ok {
			t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
		}
		if !got.Totals.NetProfit.Equal(view.Totals.NetProfit) {
			t.Errorf("expected net %s, got %s", view.Totals.NetProfit, got.Totals.NetProfit)
		}
		if len(got.Profits) != 1 || got.Profits[0].Appointment == nil || got.Profits[0].Appointment.ID != 3 {
			t.Errorf("expected profit with appointment 3, got %+v", got.Profits)
		}
		if len(got.Consumptions) != 1 || got.Consumptions[0].Title != "Gloves" {
			t.Errorf("expected Gloves consumption, got %+v", got.Consumptions)
		}
	})

	t.Run("invalidate evicts", func(t *testing.T) {
		if err := cache.Invalidate(ctx, view.Report.Date); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok, _ := cache.Get(ctx, view.Report.Date); ok {
			t.Error("expected miss after invalidate")
		}
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		if err := mr.Set("report:2024-03-01", "{not json"); err != nil {
			t.Fatalf("failed to seed corrupt entry: %v", err)
		}
		_, ok, err := cache.Get(ctx, view.Report.Date)
		if err != nil || ok {
			t.Errorf("expected silent miss, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		if err := cache.Set(ctx, view); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		mr.FastForward(2 * time.Minute)
		if _, ok, _ := cache.Get(ctx, view.Report.Date); ok {
			t.Error("expected miss after ttl")
		}
	})
}

func TestNoopReportCache(t *testing.T) {
	ctx := context.Background()
	cache := NewNoopReportCache()
	if err := cache.Set(ctx, sampleView()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, time.Now()); ok {
		t.Error("expected noop cache to always miss")
	}
}
