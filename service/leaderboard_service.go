package service

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"troop-fundraiser/models"
)

// LeaderboardService ranks active scouts by attributed sales
type LeaderboardService struct {
	scouts *ScoutService
	orders *OrderService
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(scouts *ScoutService, orders *OrderService) *LeaderboardService {
	return &LeaderboardService{scouts: scouts, orders: orders}
}

// Standings returns one entry per active scout, highest total first; ties are ordered by name.
// Cancelled orders do not count.
func (s *LeaderboardService) Standings(ctx context.Context) (*models.LeaderboardResponse, error) {
	var scouts []models.Scout
	var orders []models.Order

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scouts, err = s.scouts.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.orders.All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.LeaderboardResponse{Entries: RankScouts(scouts, orders)}, nil
}

// RankScouts computes standings from a roster and an order list
func RankScouts(scouts []models.Scout, orders []models.Order) []models.LeaderboardEntry {
	byScout := make(map[string]*models.LeaderboardEntry, len(scouts))
	entries := make([]*models.LeaderboardEntry, 0, len(scouts))
	for _, scout := range scouts {
		if !scout.Active {
			continue
		}
		entry := &models.LeaderboardEntry{ScoutID: scout.ID, ScoutName: scout.Name, ScoutRank: scout.Rank}
		byScout[scout.ID] = entry
		entries = append(entries, entry)
	}

	for _, order := range orders {
		if order.Status == models.OrderStatusCancelled {
			continue
		}
		if entry, ok := byScout[order.ScoutIDValue()]; ok {
			entry.OrderCount++
			entry.Total += order.Total
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return strings.ToLower(entries[i].ScoutName) < strings.ToLower(entries[j].ScoutName)
	})

	result := make([]models.LeaderboardEntry, len(entries))
	for i, entry := range entries {
		entry.Position = i + 1
		result[i] = *entry
	}
	return result
}
