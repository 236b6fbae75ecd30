package services

import (
	"context"

	"toyWholesale/entities"
	"toyWholesale/models"
	"toyWholesale/repository"
)

type StatsService struct {
	ur repository.UserRepository
	or repository.OrderRepository
}

func NewStatsService(userRepo repository.UserRepository, orderRepo repository.OrderRepository) StatsService {
	return StatsService{
		ur: userRepo,
		or: orderRepo,
	}
}

// Stats summarizes users, orders and revenue for the back-office.
func (ss *StatsService) Stats(ctx context.Context) (stats entities.Stats, err error) {
	stats.TotalUsers, err = ss.ur.CountUsers(ctx)
	if err != nil {
		return
	}
	counts, err := ss.or.CountOrdersByStatus(ctx)
	if err != nil {
		return
	}
	revenue, err := ss.or.TotalRevenue(ctx)
	if err != nil {
		return
	}

	stats.OrdersByStatus = make(map[string]int, len(counts))
	for _, s := range models.AllStatuses() {
		stats.OrdersByStatus[string(s)] = 0
	}
	for s, n := range counts {
		stats.OrdersByStatus[string(s)] = n
		stats.TotalOrders += n
		if !s.IsTerminal() {
			stats.OpenOrders += n
		}
	}
	stats.TotalRevenue = revenue.StringFixed(2)
	return
}
