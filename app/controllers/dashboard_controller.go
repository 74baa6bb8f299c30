package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/DevEdward666/study-hub-app/app/repository"
	"github.com/DevEdward666/study-hub-app/internal/pkg/cache"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 30 * time.Second
)

type dashboardStats struct {
	Tables              int64   `json:"tables"`
	TablesOccupied      int64   `json:"tables_occupied"`
	ActiveSessions      int64   `json:"active_sessions"`
	SessionsClosedToday int64   `json:"sessions_closed_today"`
	ActiveSubscriptions int64   `json:"active_subscriptions"`
	Users               int64   `json:"users"`
	TotalRevenue        float64 `json:"total_revenue"`
	GeneratedAt         string  `json:"generated_at"`
}

// HandleDashboard returns aggregate occupancy and revenue numbers (admin).
// The projection is cached in Redis for a short window.
func HandleDashboard(c *fiber.Ctx) error {
	if cached, err := cache.Get(dashboardCacheKey); err == nil && cached != "" {
		var stats dashboardStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return c.JSON(stats)
		}
	}

	stats, err := buildDashboardStats()
	if err != nil {
		return billingErrorResponse(c, err)
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := cache.Set(dashboardCacheKey, string(payload), dashboardCacheTTL); err != nil {
			log.Warnf("[Dashboard] cache write failed: %v", err)
		}
	}

	return c.JSON(stats)
}

func buildDashboardStats() (*dashboardStats, error) {
	factory := repository.GetGlobalFactory()

	tables, err := factory.GetTableRepository().Count()
	if err != nil {
		return nil, err
	}
	occupied, err := factory.GetTableRepository().CountOccupied()
	if err != nil {
		return nil, err
	}
	active, err := factory.GetSessionRepository().CountActive()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	closedToday, err := factory.GetSessionRepository().CountCompletedSince(midnight)
	if err != nil {
		return nil, err
	}
	activeSubs, err := factory.GetSubscriptionRepository().CountActive()
	if err != nil {
		return nil, err
	}
	users, err := factory.GetUserRepository().Count()
	if err != nil {
		return nil, err
	}
	revenue, err := factory.GetWalletRepository().TotalRevenue()
	if err != nil {
		return nil, err
	}

	return &dashboardStats{
		Tables:              tables,
		TablesOccupied:      occupied,
		ActiveSessions:      active,
		SessionsClosedToday: closedToday,
		ActiveSubscriptions: activeSubs,
		Users:               users,
		TotalRevenue:        revenue,
		GeneratedAt:         time.Now().UTC().Format(time.RFC3339),
	}, nil
}
