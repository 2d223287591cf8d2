package service

import (
	"context"

	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"
)

// growthWindowDays is the trailing window served on the growth chart.
const growthWindowDays = 30

type AdminService struct {
	statsRepo repository.StatsRepository
}

func NewAdminService(statsRepo repository.StatsRepository) *AdminService {
	return &AdminService{statsRepo: statsRepo}
}

func (s *AdminService) Dashboard(ctx context.Context) (*model.AdminDashboard, error) {
	return s.statsRepo.AdminDashboard(ctx)
}

func (s *AdminService) Growth(ctx context.Context) (*model.GrowthSeries, error) {
	return s.statsRepo.GrowthSeries(ctx, growthWindowDays)
}
