package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shuttlenet/racquet-rankings/models"
	"github.com/shuttlenet/racquet-rankings/repositories"
	"github.com/shuttlenet/racquet-rankings/storage"
)

// In-memory repository fakes implementing the documented repository
// contracts, including upsert-overwrite and tie-break ordering semantics.

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	lineups     map[int]map[int][]models.Category
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{
		tournaments: make(map[int]*models.Tournament),
		lineups:     make(map[int]map[int][]models.Category),
	}
}

func (f *fakeTournamentRepo) GetWithWinners(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok || t.DeletedAt != nil {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (f *fakeTournamentRepo) ListAll(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Tournament, error) {
	tournaments := make([]*models.Tournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		if t.DeletedAt == nil {
			tournaments = append(tournaments, t)
		}
	}
	sort.Slice(tournaments, func(i, j int) bool {
		if !tournaments[i].StartDate.Equal(tournaments[j].StartDate) {
			return tournaments[i].StartDate.Before(tournaments[j].StartDate)
		}
		return tournaments[i].ID < tournaments[j].ID
	})
	return tournaments, nil
}

func (f *fakeTournamentRepo) LineupCategories(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (map[int][]models.Category, error) {
	lineup, ok := f.lineups[tournamentID]
	if !ok {
		return map[int][]models.Category{}, nil
	}
	return lineup, nil
}

type fakeMatchRepo struct {
	matches map[int][]*models.IndividualMatch
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int][]*models.IndividualMatch)}
}

func (f *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, decidedOnly bool) ([]*models.IndividualMatch, error) {
	matches := make([]*models.IndividualMatch, 0)
	for _, m := range f.matches[tournamentID] {
		if decidedOnly && m.WinnerID == nil {
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

type fakePointConfigRepo struct {
	rows    []*models.PointConfig
	findErr error
}

func (f *fakePointConfigRepo) FindPoints(ctx context.Context, exec repositories.SQLExecutor, achievementType models.AchievementType, achievementKey string, category *models.Category) (int, error) {
	if f.findErr != nil {
		return 0, f.findErr
	}
	if category != nil {
		for _, row := range f.rows {
			if row.Active && row.AchievementType == achievementType && row.AchievementKey == achievementKey &&
				row.Category != nil && *row.Category == *category {
				return row.Points, nil
			}
		}
	}
	for _, row := range f.rows {
		if row.Active && row.AchievementType == achievementType && row.AchievementKey == achievementKey && row.Category == nil {
			return row.Points, nil
		}
	}
	return 0, repositories.ErrPointConfigNotFound
}

func (f *fakePointConfigRepo) ListActive(ctx context.Context, exec repositories.SQLExecutor) ([]*models.PointConfig, error) {
	active := make([]*models.PointConfig, 0)
	for _, row := range f.rows {
		if row.Active {
			active = append(active, row)
		}
	}
	return active, nil
}

type fakePointsRepo struct {
	rows      map[string]*models.TournamentPlayerPoints
	upsertErr func(points *models.TournamentPlayerPoints) error
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{rows: make(map[string]*models.TournamentPlayerPoints)}
}

func pointsKey(tournamentID, playerID int, category models.Category) string {
	return fmt.Sprintf("%d/%d/%s", tournamentID, playerID, category)
}

func (f *fakePointsRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, points *models.TournamentPlayerPoints) error {
	if f.upsertErr != nil {
		if err := f.upsertErr(points); err != nil {
			return err
		}
	}
	stored := *points
	stored.AwardedAt = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	f.rows[pointsKey(points.TournamentID, points.PlayerID, points.Category)] = &stored
	return nil
}

func (f *fakePointsRepo) SumForPlayerCategory(ctx context.Context, exec repositories.SQLExecutor, playerID int, category models.Category) (*models.RankingTotals, error) {
	totals := &models.RankingTotals{}
	for _, row := range f.rows {
		if row.PlayerID != playerID || row.Category != category {
			continue
		}
		totals.TotalPoints += row.TotalPoints
		totals.TournamentPoints += row.PlacementPoints
		totals.MatchPoints += row.MatchWinPoints
		totals.SetPoints += row.SetWinPoints
		totals.TournamentsPlayed++
		totals.MatchesWon += row.MatchesWon
		totals.MatchesLost += row.MatchesPlayed - row.MatchesWon
		totals.SetsWon += row.SetsWon
		totals.SetsLost += row.SetsLost
	}
	return totals, nil
}

func (f *fakePointsRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.TournamentPlayerPoints, error) {
	results := make([]*models.TournamentPlayerPoints, 0)
	for _, row := range f.rows {
		if row.TournamentID == tournamentID {
			results = append(results, row)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Category != results[j].Category {
			return results[i].Category < results[j].Category
		}
		if results[i].TotalPoints != results[j].TotalPoints {
			return results[i].TotalPoints > results[j].TotalPoints
		}
		return results[i].PlayerID < results[j].PlayerID
	})
	return results, nil
}

type fakeRankingRepo struct {
	rows   map[string]*models.PlayerRanking
	nextID int
	seq    int
	order  map[string]int // insertion order, stands in for storage order
	today  time.Time
}

func newFakeRankingRepo() *fakeRankingRepo {
	return &fakeRankingRepo{
		rows:  make(map[string]*models.PlayerRanking),
		order: make(map[string]int),
		today: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}
}

func rankingKey(playerID int, category models.Category) string {
	return fmt.Sprintf("%d/%s", playerID, category)
}

func (f *fakeRankingRepo) UpsertTotals(ctx context.Context, exec repositories.SQLExecutor, playerID int, category models.Category, totals *models.RankingTotals) error {
	key := rankingKey(playerID, category)
	row, ok := f.rows[key]
	if !ok {
		f.nextID++
		f.seq++
		row = &models.PlayerRanking{ID: f.nextID, PlayerID: playerID, Category: category}
		f.rows[key] = row
		f.order[key] = f.seq
	}
	row.TotalPoints = totals.TotalPoints
	row.TournamentPoints = totals.TournamentPoints
	row.MatchPoints = totals.MatchPoints
	row.SetPoints = totals.SetPoints
	row.TournamentsPlayed = totals.TournamentsPlayed
	row.MatchesWon = totals.MatchesWon
	row.MatchesLost = totals.MatchesLost
	row.SetsWon = totals.SetsWon
	row.SetsLost = totals.SetsLost
	row.LastUpdated = f.today
	return nil
}

func (f *fakeRankingRepo) ListByCategory(ctx context.Context, exec repositories.SQLExecutor, category models.Category) ([]*models.PlayerRanking, error) {
	rankings := make([]*models.PlayerRanking, 0)
	for _, row := range f.rows {
		if row.Category == category {
			rankings = append(rankings, row)
		}
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.TournamentsPlayed != b.TournamentsPlayed {
			return a.TournamentsPlayed > b.TournamentsPlayed
		}
		if a.MatchesWon != b.MatchesWon {
			return a.MatchesWon > b.MatchesWon
		}
		return f.order[rankingKey(a.PlayerID, a.Category)] < f.order[rankingKey(b.PlayerID, b.Category)]
	})
	return rankings, nil
}

func (f *fakeRankingRepo) UpdateRankPosition(ctx context.Context, exec repositories.SQLExecutor, playerID int, category models.Category, previousRank *int, newRank int) error {
	row, ok := f.rows[rankingKey(playerID, category)]
	if !ok {
		return repositories.ErrPlayerRankingNotFound
	}
	row.PreviousRank = previousRank
	rank := newRank
	row.CurrentRank = &rank
	if row.PeakRank == nil || rank < *row.PeakRank {
		row.PeakRank = &rank
		peakDate := f.today
		row.PeakRankDate = &peakDate
	}
	return nil
}

func (f *fakeRankingRepo) ListByPlayer(ctx context.Context, exec repositories.SQLExecutor, playerID int) ([]*models.PlayerRanking, error) {
	rankings := make([]*models.PlayerRanking, 0)
	for _, row := range f.rows {
		if row.PlayerID == playerID {
			rankings = append(rankings, row)
		}
	}
	sort.Slice(rankings, func(i, j int) bool { return rankings[i].Category < rankings[j].Category })
	return rankings, nil
}

type fakeHistoryRepo struct {
	rows  map[string]*models.RankingSnapshot
	today time.Time
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{
		rows:  make(map[string]*models.RankingSnapshot),
		today: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeHistoryRepo) UpsertSnapshot(ctx context.Context, exec repositories.SQLExecutor, playerID int, category models.Category, rank int, totalPoints int) error {
	key := fmt.Sprintf("%d/%s/%s", playerID, category, f.today.Format("2006-01-02"))
	f.rows[key] = &models.RankingSnapshot{
		PlayerID:    playerID,
		Category:    category,
		Rank:        rank,
		TotalPoints: totalPoints,
		RecordedAt:  f.today,
	}
	return nil
}

func (f *fakeHistoryRepo) ListByPlayer(ctx context.Context, exec repositories.SQLExecutor, playerID int, category *models.Category, limit int) ([]*models.RankingSnapshot, error) {
	snapshots := make([]*models.RankingSnapshot, 0)
	for _, row := range f.rows {
		if row.PlayerID != playerID {
			continue
		}
		if category != nil && row.Category != *category {
			continue
		}
		snapshots = append(snapshots, row)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].RecordedAt.Equal(snapshots[j].RecordedAt) {
			return snapshots[i].RecordedAt.After(snapshots[j].RecordedAt)
		}
		return snapshots[i].Category < snapshots[j].Category
	})
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string][]byte)}
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[key] = body
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploads, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

type fakeBroadcaster struct {
	messages map[string][]interface{}
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{messages: make(map[string][]interface{})}
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	f.messages[roomID] = append(f.messages[roomID], message)
}
