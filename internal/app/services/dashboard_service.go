package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/app/repositories"
)

// DashboardService computes the headline numbers and chart series
type DashboardService interface {
	GetStats(ctx context.Context, actor models.Identity) (*dto.DashboardStats, error)
	GetCharts(ctx context.Context, actor models.Identity) (*dto.DashboardCharts, error)
}

type dashboardServiceImpl struct {
	repos  *repositories.Repositories
	logger zerolog.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repos *repositories.Repositories, logger zerolog.Logger) DashboardService {
	return &dashboardServiceImpl{repos: repos, logger: logger}
}

// GetStats counts the caller's own cards and folders, and the classes whose members list
// holds them. Admins get store-wide counts.
func (s *dashboardServiceImpl) GetStats(ctx context.Context, actor models.Identity) (*dto.DashboardStats, error) {
	if actor.IsAdmin() {
		cards, err := s.repos.FlashcardRepository.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		folders, err := s.repos.FolderRepository.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		classes, err := s.repos.ClassRepository.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		users, err := s.repos.UserRepository.List(ctx)
		if err != nil {
			return nil, err
		}
		return &dto.DashboardStats{
			Flashcards: len(cards),
			Folders:    len(folders),
			Classes:    len(classes),
			Users:      len(users),
		}, nil
	}

	cards, err := s.repos.FlashcardRepository.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	folders, err := s.repos.FolderRepository.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	classes, err := s.repos.ClassRepository.ListByMember(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardStats{
		Flashcards: len(cards),
		Folders:    len(folders),
		Classes:    len(classes),
	}, nil
}

// GetCharts returns per-class roster and material counts. Material counts are reference
// counts, not resolved cards.
func (s *dashboardServiceImpl) GetCharts(ctx context.Context, actor models.Identity) (*dto.DashboardCharts, error) {
	var (
		classes []models.Class
		err     error
	)
	if actor.IsAdmin() {
		classes, err = s.repos.ClassRepository.ListAll(ctx)
	} else {
		classes, err = s.repos.ClassRepository.ListByMember(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	charts := &dto.DashboardCharts{Classes: make([]dto.ClassChartEntry, 0, len(classes))}
	for _, c := range classes {
		charts.Classes = append(charts.Classes, dto.ClassChartEntry{
			ClassID:   c.ID,
			Name:      c.Name,
			Members:   c.Roster().Total(),
			Materials: c.MaterialCount(),
		})
	}

	if actor.IsAdmin() {
		users, err := s.repos.UserRepository.List(ctx)
		if err != nil {
			return nil, err
		}
		counts := map[models.RoleType]int{models.RoleUser: 0, models.RoleAdmin: 0}
		for _, u := range users {
			counts[u.Role]++
		}
		charts.Roles = []dto.RoleCount{
			{Role: string(models.RoleUser), Count: counts[models.RoleUser]},
			{Role: string(models.RoleAdmin), Count: counts[models.RoleAdmin]},
		}
	}
	return charts, nil
}
