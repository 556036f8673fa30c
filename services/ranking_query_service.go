package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shuttlenet/racquet-rankings/models"
	"github.com/shuttlenet/racquet-rankings/repositories"
)

// RankingQueryService serves the read side of the rankings API. All data it
// returns was produced by the calculation engine; it never writes.
type RankingQueryService interface {
	// GlobalRankings returns ranking rows grouped by category, optionally
	// restricted to one category. limit caps the rows per category;
	// limit <= 0 means no cap.
	GlobalRankings(ctx context.Context, category *models.Category, limit int) (map[models.Category][]*models.PlayerRanking, error)
	CategoryRankings(ctx context.Context, category models.Category) ([]*models.PlayerRanking, error)
	PlayerRankings(ctx context.Context, playerID int) ([]*models.PlayerRanking, error)
	PlayerHistory(ctx context.Context, playerID int, category *models.Category, limit int) ([]*models.RankingSnapshot, error)
	TournamentResults(ctx context.Context, tournamentID int) ([]*models.TournamentPlayerPoints, error)
	PointTable(ctx context.Context) ([]*models.PointConfig, error)
}

type rankingQueryService struct {
	tournamentRepo  repositories.TournamentRepository
	pointsRepo      repositories.TournamentPointsRepository
	rankingRepo     repositories.PlayerRankingRepository
	historyRepo     repositories.RankingHistoryRepository
	pointConfigRepo repositories.PointConfigRepository
}

func NewRankingQueryService(
	tournamentRepo repositories.TournamentRepository,
	pointsRepo repositories.TournamentPointsRepository,
	rankingRepo repositories.PlayerRankingRepository,
	historyRepo repositories.RankingHistoryRepository,
	pointConfigRepo repositories.PointConfigRepository,
) RankingQueryService {
	return &rankingQueryService{
		tournamentRepo:  tournamentRepo,
		pointsRepo:      pointsRepo,
		rankingRepo:     rankingRepo,
		historyRepo:     historyRepo,
		pointConfigRepo: pointConfigRepo,
	}
}

func (s *rankingQueryService) GlobalRankings(ctx context.Context, category *models.Category, limit int) (map[models.Category][]*models.PlayerRanking, error) {
	categories := models.AllCategories
	if category != nil {
		categories = []models.Category{*category}
	}

	grouped := make(map[models.Category][]*models.PlayerRanking, len(categories))
	for _, cat := range categories {
		rankings, err := s.rankingRepo.ListByCategory(ctx, nil, cat)
		if err != nil {
			return nil, fmt.Errorf("failed to list rankings for category %s: %w", cat, err)
		}
		if limit > 0 && len(rankings) > limit {
			rankings = rankings[:limit]
		}
		if len(rankings) > 0 {
			grouped[cat] = rankings
		}
	}
	return grouped, nil
}

func (s *rankingQueryService) CategoryRankings(ctx context.Context, category models.Category) ([]*models.PlayerRanking, error) {
	return s.rankingRepo.ListByCategory(ctx, nil, category)
}

func (s *rankingQueryService) PlayerRankings(ctx context.Context, playerID int) ([]*models.PlayerRanking, error) {
	rankings, err := s.rankingRepo.ListByPlayer(ctx, nil, playerID)
	if err != nil {
		return nil, err
	}
	if len(rankings) == 0 {
		return nil, ErrPlayerNotFound
	}
	return rankings, nil
}

func (s *rankingQueryService) PlayerHistory(ctx context.Context, playerID int, category *models.Category, limit int) ([]*models.RankingSnapshot, error) {
	return s.historyRepo.ListByPlayer(ctx, nil, playerID, category, limit)
}

func (s *rankingQueryService) TournamentResults(ctx context.Context, tournamentID int) ([]*models.TournamentPlayerPoints, error) {
	if _, err := s.tournamentRepo.GetWithWinners(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.pointsRepo.ListByTournament(ctx, nil, tournamentID)
}

func (s *rankingQueryService) PointTable(ctx context.Context) ([]*models.PointConfig, error) {
	return s.pointConfigRepo.ListActive(ctx, nil)
}
