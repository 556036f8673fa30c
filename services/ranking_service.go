package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shuttlenet/racquet-rankings/models"
	"github.com/shuttlenet/racquet-rankings/repositories"
	"github.com/shuttlenet/racquet-rankings/storage"
	"golang.org/x/sync/errgroup"
)

// TournamentRecalculation reports the outcome of one tournament inside a
// full rebuild.
type TournamentRecalculation struct {
	TournamentID  int    `json:"tournament_id"`
	Name          string `json:"name"`
	Success       bool   `json:"success"`
	PlayersScored int    `json:"players_scored"`
	Error         string `json:"error,omitempty"`
}

// RecalculationSummary is the result of RecalculateAll. A failed tournament
// never aborts the run; callers inspect the per-item results.
type RecalculationSummary struct {
	Processed int                       `json:"tournaments_processed"`
	Succeeded int                       `json:"successful"`
	Failed    int                       `json:"failed"`
	Results   []TournamentRecalculation `json:"results"`
}

// RankingsBroadcaster pushes freshly assigned standings to live subscribers.
// Satisfied by *live.Hub.
type RankingsBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type RankingService interface {
	// CalculateTournamentPoints runs the full engine for one tournament:
	// scoring, breakdown write-back, global aggregation and rank
	// assignment. It returns the computed breakdown.
	CalculateTournamentPoints(ctx context.Context, tournamentID int) (Breakdown, error)
	// RecalculateAll reruns the engine for every non-deleted tournament in
	// start-date order, isolating per-tournament failures.
	RecalculateAll(ctx context.Context) (*RecalculationSummary, error)
}

type rankingService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	matchRepo       repositories.MatchRepository
	pointConfigRepo repositories.PointConfigRepository
	pointsRepo      repositories.TournamentPointsRepository
	rankingRepo     repositories.PlayerRankingRepository
	historyRepo     repositories.RankingHistoryRepository
	uploader        storage.FileUploader
	hub             RankingsBroadcaster
	logger          *slog.Logger
}

// NewRankingService wires the engine. uploader and hub are optional; pass
// nil to disable standings export and live broadcasts.
func NewRankingService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	pointConfigRepo repositories.PointConfigRepository,
	pointsRepo repositories.TournamentPointsRepository,
	rankingRepo repositories.PlayerRankingRepository,
	historyRepo repositories.RankingHistoryRepository,
	uploader storage.FileUploader,
	hub RankingsBroadcaster,
	logger *slog.Logger,
) RankingService {
	return &rankingService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		matchRepo:       matchRepo,
		pointConfigRepo: pointConfigRepo,
		pointsRepo:      pointsRepo,
		rankingRepo:     rankingRepo,
		historyRepo:     historyRepo,
		uploader:        uploader,
		hub:             hub,
		logger:          logger,
	}
}

func (s *rankingService) CalculateTournamentPoints(ctx context.Context, tournamentID int) (Breakdown, error) {
	s.logger.Info("calculating tournament points", slog.Int("tournament_id", tournamentID))

	var (
		tournament *models.Tournament
		matches    []*models.IndividualMatch
		lineup     map[int][]models.Category
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetWithWinners(gCtx, nil, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		m, err := s.matchRepo.ListByTournament(gCtx, nil, tournamentID, false)
		if err != nil {
			return fmt.Errorf("failed to load matches for tournament %d: %w", tournamentID, err)
		}
		matches = m
		return nil
	})
	g.Go(func() error {
		l, err := s.tournamentRepo.LineupCategories(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load lineup for tournament %d: %w", tournamentID, err)
		}
		lineup = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	breakdown := make(Breakdown)
	s.scorePlacements(ctx, tournament, lineup, breakdown)
	s.scoreMatches(ctx, matches, breakdown)
	s.scoreSets(ctx, matches, breakdown)
	breakdown.finalizeTotals()

	if err := s.runInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.saveTournamentPoints(ctx, exec, tournamentID, breakdown)
	}); err != nil {
		return nil, fmt.Errorf("failed to save points for tournament %d: %w", tournamentID, err)
	}

	if err := s.runInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.updateGlobalRankings(ctx, exec, breakdown)
	}); err != nil {
		return nil, fmt.Errorf("failed to update global rankings for tournament %d: %w", tournamentID, err)
	}

	var standings map[models.Category][]*models.PlayerRanking
	if err := s.runInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		standings, err = s.updateRankPositions(ctx, exec)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to update rank positions: %w", err)
	}

	s.publishStandings(ctx, standings)

	s.logger.Info("tournament points calculated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("players", len(breakdown)))
	return breakdown, nil
}

func (s *rankingService) RecalculateAll(ctx context.Context) (*RecalculationSummary, error) {
	tournaments, err := s.tournamentRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	summary := &RecalculationSummary{
		Results: make([]TournamentRecalculation, 0, len(tournaments)),
	}

	for _, t := range tournaments {
		result := TournamentRecalculation{TournamentID: t.ID, Name: t.Name}
		breakdown, calcErr := s.CalculateTournamentPoints(ctx, t.ID)
		if calcErr != nil {
			s.logger.Error("tournament recalculation failed",
				slog.Int("tournament_id", t.ID),
				slog.Any("error", calcErr))
			result.Error = calcErr.Error()
			summary.Failed++
		} else {
			result.Success = true
			result.PlayersScored = len(breakdown)
			summary.Succeeded++
		}
		summary.Processed++
		summary.Results = append(summary.Results, result)
	}

	s.logger.Info("full recalculation finished",
		slog.Int("processed", summary.Processed),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// resolvePoints is the shared point value lookup used by all three scorers.
// A missing or broken configuration must never abort scoring, so every
// failure degrades to zero points.
func (s *rankingService) resolvePoints(ctx context.Context, achievementType models.AchievementType, achievementKey string, category *models.Category) int {
	points, err := s.pointConfigRepo.FindPoints(ctx, nil, achievementType, achievementKey, category)
	if err != nil {
		if !errors.Is(err, repositories.ErrPointConfigNotFound) {
			s.logger.Error("point value lookup failed",
				slog.String("achievement_type", string(achievementType)),
				slog.String("achievement_key", achievementKey),
				slog.Any("error", err))
		}
		return 0
	}
	return points
}

var placementLabels = map[string]string{
	models.PlacementFirst:  "1st Place",
	models.PlacementSecond: "2nd Place",
	models.PlacementThird:  "3rd Place",
}

// scorePlacements credits podium finishers in every category the lineup has
// them competing in. A podium player absent from the lineup gets nothing:
// lineup membership decides which categories to credit.
func (s *rankingService) scorePlacements(ctx context.Context, tournament *models.Tournament, lineup map[int][]models.Category, breakdown Breakdown) {
	if tournament.Winners == nil {
		return
	}

	slots := []struct {
		playerID *int
		key      string
	}{
		{tournament.Winners.FirstPlacePlayerID, models.PlacementFirst},
		{tournament.Winners.SecondPlacePlayerID, models.PlacementSecond},
		{tournament.Winners.ThirdPlacePlayerID, models.PlacementThird},
	}

	for _, slot := range slots {
		if slot.playerID == nil {
			continue
		}
		label := placementLabels[slot.key]
		for _, category := range lineup[*slot.playerID] {
			cat := category
			points := s.resolvePoints(ctx, models.AchievementPlacement, slot.key, &cat)
			t := breakdown.tally(*slot.playerID, category)
			t.PlacementPoints = points
			t.FinalPlacement = &label
		}
	}
}

// scoreMatches awards match-win points to the winning side of every decided
// match and tallies matches_played for every participant.
func (s *rankingService) scoreMatches(ctx context.Context, matches []*models.IndividualMatch, breakdown Breakdown) {
	for _, match := range matches {
		if match.WinnerID == nil {
			continue
		}
		category := match.Category
		points := s.resolvePoints(ctx, models.AchievementMatchWin, string(match.MatchType), &category)

		for _, playerID := range matchWinners(match) {
			t := breakdown.tally(playerID, category)
			t.MatchWinPoints += points
			t.MatchesWon++
		}
		for _, playerID := range matchParticipants(match) {
			breakdown.tally(playerID, category).MatchesPlayed++
		}
	}
}

// scoreSets walks every recorded set of every match, decided or not, and
// awards per-set points to the side with the strictly higher score.
func (s *rankingService) scoreSets(ctx context.Context, matches []*models.IndividualMatch, breakdown Breakdown) {
	for _, match := range matches {
		category := match.Category
		pointsPerSet := s.resolvePoints(ctx, models.AchievementSetWin, string(match.MatchType), &category)

		for _, setScore := range match.SetScores() {
			if setScore == nil || *setScore == models.SetNotPlayed {
				continue
			}
			score1, score2, err := parseSetScore(*setScore)
			if err != nil {
				s.logger.Warn("could not parse set score",
					slog.Int("match_id", match.ID),
					slog.String("score", *setScore))
				continue
			}

			var winnerSide int
			switch {
			case score1 > score2:
				winnerSide = 1
			case score2 > score1:
				winnerSide = 2
			default:
				// Equal scores carry no winner; skipped without points.
				continue
			}

			for _, playerID := range sidePlayers(match, winnerSide) {
				t := breakdown.tally(playerID, category)
				t.SetWinPoints += pointsPerSet
				t.SetsWon++
			}
		}
	}
}

// parseSetScore splits an "A-B" score string into its two integer sides.
func parseSetScore(score string) (int, int, error) {
	left, right, found := strings.Cut(score, "-")
	if !found {
		return 0, 0, fmt.Errorf("set score %q is not in A-B form", score)
	}
	score1, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid first side in set score %q: %w", score, err)
	}
	score2, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid second side in set score %q: %w", score, err)
	}
	return score1, score2, nil
}

// matchWinners resolves the players credited with a decided match: the sole
// winner for singles, the whole winning team side for doubles.
func matchWinners(match *models.IndividualMatch) []int {
	if match.WinnerID == nil {
		return nil
	}
	if match.MatchType == models.MatchTypeSingles {
		return []int{*match.WinnerID}
	}

	winnerSide := 0
	for _, p := range match.DoublesPlayers {
		if p.PlayerID == *match.WinnerID {
			winnerSide = p.TeamSide
			break
		}
	}
	if winnerSide == 0 {
		return nil
	}
	return sidePlayers(match, winnerSide)
}

func matchParticipants(match *models.IndividualMatch) []int {
	if match.MatchType == models.MatchTypeSingles {
		participants := make([]int, 0, 2)
		if match.Player1ID != nil {
			participants = append(participants, *match.Player1ID)
		}
		if match.Player2ID != nil {
			participants = append(participants, *match.Player2ID)
		}
		return participants
	}
	participants := make([]int, 0, len(match.DoublesPlayers))
	for _, p := range match.DoublesPlayers {
		participants = append(participants, p.PlayerID)
	}
	return participants
}

func sidePlayers(match *models.IndividualMatch, side int) []int {
	if match.MatchType == models.MatchTypeSingles {
		switch side {
		case 1:
			if match.Player1ID != nil {
				return []int{*match.Player1ID}
			}
		case 2:
			if match.Player2ID != nil {
				return []int{*match.Player2ID}
			}
		}
		return nil
	}
	players := make([]int, 0, 2)
	for _, p := range match.DoublesPlayers {
		if p.TeamSide == side {
			players = append(players, p.PlayerID)
		}
	}
	return players
}

// saveTournamentPoints upserts the breakdown, fully overwriting any row a
// previous calculation left behind.
func (s *rankingService) saveTournamentPoints(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, breakdown Breakdown) error {
	for playerID, byCategory := range breakdown {
		for category, tally := range byCategory {
			row := models.NewTournamentPlayerPoints(tournamentID, playerID, category)
			row.PlacementPoints = tally.PlacementPoints
			row.MatchWinPoints = tally.MatchWinPoints
			row.SetWinPoints = tally.SetWinPoints
			row.MatchesPlayed = tally.MatchesPlayed
			row.MatchesWon = tally.MatchesWon
			row.SetsWon = tally.SetsWon
			row.SetsLost = tally.SetsLost
			row.FinalPlacement = tally.FinalPlacement
			row.RecomputeTotal()

			if err := s.pointsRepo.Upsert(ctx, exec, row); err != nil {
				return fmt.Errorf("upsert failed for player %d category %s: %w", playerID, category, err)
			}
		}
	}
	return nil
}

// updateGlobalRankings re-sums every touched (player, category) pair across
// all tournaments. Full resummation, not incremental addition, so a rerun
// correcting a tournament's points converges to the right totals.
func (s *rankingService) updateGlobalRankings(ctx context.Context, exec repositories.SQLExecutor, breakdown Breakdown) error {
	for playerID, byCategory := range breakdown {
		for category := range byCategory {
			totals, err := s.pointsRepo.SumForPlayerCategory(ctx, exec, playerID, category)
			if err != nil {
				return err
			}
			if err := s.rankingRepo.UpsertTotals(ctx, exec, playerID, category, totals); err != nil {
				return err
			}
		}
	}
	return nil
}

// updateRankPositions assigns contiguous ranks per category and appends the
// daily history snapshot. It returns the final standings with the new ranks
// applied, for export and live broadcast.
func (s *rankingService) updateRankPositions(ctx context.Context, exec repositories.SQLExecutor) (map[models.Category][]*models.PlayerRanking, error) {
	standings := make(map[models.Category][]*models.PlayerRanking, len(models.AllCategories))

	for _, category := range models.AllCategories {
		rankings, err := s.rankingRepo.ListByCategory(ctx, exec, category)
		if err != nil {
			return nil, err
		}

		for i, ranking := range rankings {
			newRank := i + 1
			previousRank := ranking.CurrentRank
			if err := s.rankingRepo.UpdateRankPosition(ctx, exec, ranking.PlayerID, category, previousRank, newRank); err != nil {
				return nil, err
			}
			if err := s.historyRepo.UpsertSnapshot(ctx, exec, ranking.PlayerID, category, newRank, ranking.TotalPoints); err != nil {
				return nil, err
			}

			rank := newRank
			ranking.PreviousRank = previousRank
			ranking.CurrentRank = &rank
			if ranking.PeakRank == nil || rank < *ranking.PeakRank {
				ranking.PeakRank = &rank
				now := time.Now()
				ranking.PeakRankDate = &now
			}
		}
		standings[category] = rankings
	}
	return standings, nil
}

// publishStandings pushes the final standings to the optional R2 export and
// the live hub. Neither is allowed to fail the calculation.
func (s *rankingService) publishStandings(ctx context.Context, standings map[models.Category][]*models.PlayerRanking) {
	for _, category := range models.AllCategories {
		rankings, ok := standings[category]
		if !ok {
			continue
		}

		if s.hub != nil {
			s.hub.BroadcastToRoom(string(category), map[string]interface{}{
				"type":     "RANKINGS_UPDATED",
				"category": category,
				"rankings": rankings,
			})
		}

		if s.uploader != nil {
			payload := map[string]interface{}{
				"category":     category,
				"generated_at": time.Now().UTC(),
				"rankings":     rankings,
			}
			body, err := json.Marshal(payload)
			if err != nil {
				s.logger.Error("failed to marshal standings export",
					slog.String("category", string(category)),
					slog.Any("error", err))
				continue
			}
			key := fmt.Sprintf("standings/%s.json", category)
			if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body)); err != nil {
				s.logger.Error("failed to export standings",
					slog.String("category", string(category)),
					slog.Any("error", err))
			}
		}
	}
}

// runInTx executes fn inside a transaction committed at the end of the
// phase. With no database handle configured (unit tests with in-memory
// repositories) fn runs directly.
func (s *rankingService) runInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if s.db == nil {
		return fn(nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", slog.Any("error", rbErr))
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
