package services

import (
	"testing"
	"time"

	"bowlingmanager/models"
	"bowlingmanager/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberScore(userID uint, score int, day string, gameType string) models.Score {
	t, _ := time.ParseInLocation("2006-01-02", day, utils.KST)
	id := userID
	return models.Score{UserID: &id, Score: score, GameDate: t, GameType: gameType}
}

func guestScore(name string, score int, day string, gameType string) models.Score {
	t, _ := time.ParseInLocation("2006-01-02", day, utils.KST)
	return models.Score{GuestName: &name, Score: score, GameDate: t, GameType: gameType}
}

func roster(names map[uint]string) []models.TeamMember {
	members := make([]models.TeamMember, 0, len(names))
	for id, name := range names {
		members = append(members, models.TeamMember{
			UserID: id,
			User:   &models.User{ID: id, Name: name},
		})
	}
	return members
}

func rowFor(t *testing.T, rows []StatRow, name string) StatRow {
	t.Helper()
	for _, r := range rows {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no row for %q", name)
	return StatRow{}
}

func TestComputeTeamYearStatsBasics(t *testing.T) {
	records := []models.Score{
		memberScore(1, 200, "2025-01-10", models.GameTypeRegular),
		memberScore(1, 180, "2025-01-10", models.GameTypeRegular),
		memberScore(1, 190, "2025-02-14", models.GameTypeRegular),
		memberScore(2, 150, "2025-01-10", models.GameTypeRegular),
		guestScore("손님", 120, "2025-02-14", models.GameTypePickup),
	}
	team := roster(map[uint]string{1: "Kim", 2: "Lee"})

	rows, rollup := ComputeTeamYearStats(records, team, nil)
	require.Len(t, rows, 3)

	kim := rowFor(t, rows, "Kim")
	assert.Equal(t, 3, kim.Games)
	assert.Equal(t, 570, kim.Total)
	assert.Equal(t, 190.0, kim.Average)
	// 2 of 2 distinct team days
	assert.Equal(t, 1.0, kim.Participation)
	require.NotNil(t, kim.Monthly[0])
	assert.Equal(t, 190, *kim.Monthly[0]) // (200+180)/2
	require.NotNil(t, kim.Monthly[1])
	assert.Equal(t, 190, *kim.Monthly[1])
	assert.Nil(t, kim.Monthly[2])

	lee := rowFor(t, rows, "Lee")
	assert.Equal(t, 0.5, lee.Participation)

	// Guests appear as rows with participation computed the same way
	guest := rowFor(t, rows, "손님")
	assert.True(t, guest.IsGuest)
	assert.Equal(t, 0.5, guest.Participation)

	assert.Equal(t, 5, rollup.TotalGames)
	assert.Equal(t, 840, rollup.TotalScore)
	assert.Equal(t, 168.0, rollup.TeamAverage)
	// mean of 1.0, 0.5, 0.5
	assert.InDelta(t, 2.0/3.0, rollup.TeamParticipation, 1e-9)
	require.NotNil(t, rollup.TeamMonthlyAverage[0])
	assert.Equal(t, 176.7, *rollup.TeamMonthlyAverage[0]) // 530/3
	assert.Nil(t, rollup.TeamMonthlyAverage[5])
}

func TestComputeTeamYearStatsEmptyAndGuards(t *testing.T) {
	rows, rollup := ComputeTeamYearStats(nil, nil, nil)
	assert.Empty(t, rows)
	assert.Equal(t, 0.0, rollup.TeamAverage)
	assert.Equal(t, 0.0, rollup.TeamParticipation)

	// Filtering everything out must not divide by zero either
	records := []models.Score{
		memberScore(1, 200, "2025-01-10", models.GameTypeRegular),
	}
	rows, rollup = ComputeTeamYearStats(records, roster(map[uint]string{1: "Kim"}), []string{models.GameTypePickup})
	assert.Empty(t, rows)
	assert.Equal(t, 0, rollup.TotalGames)
}

func TestComputeTeamYearStatsGameTypeFilter(t *testing.T) {
	records := []models.Score{
		memberScore(1, 200, "2025-01-10", models.GameTypeRegular),
		memberScore(1, 100, "2025-01-11", models.GameTypePickup),
		memberScore(1, 150, "2025-01-12", "이상한값"), // buckets into 기타
	}
	team := roster(map[uint]string{1: "Kim"})

	rows, _ := ComputeTeamYearStats(records, team, []string{models.GameTypeRegular})
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Games)
	assert.Equal(t, 1.0, rows[0].Participation) // one team day under this filter

	rows, _ = ComputeTeamYearStats(records, team, []string{models.GameTypeOther})
	require.Len(t, rows, 1)
	assert.Equal(t, 150, rows[0].Total)
}

func TestParticipationAlwaysInUnitRange(t *testing.T) {
	records := []models.Score{
		memberScore(1, 100, "2025-03-01", models.GameTypeRegular),
		memberScore(1, 110, "2025-03-02", models.GameTypeRegular),
		memberScore(2, 120, "2025-03-02", models.GameTypeRegular),
		guestScore("g", 130, "2025-03-03", models.GameTypeRegular),
	}
	rows, _ := ComputeTeamYearStats(records, roster(map[uint]string{1: "A", 2: "B"}), nil)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Participation, 0.0)
		assert.LessOrEqual(t, r.Participation, 1.0)
	}
}

func TestSortStatRows(t *testing.T) {
	rows := []StatRow{
		{Name: "B", Games: 2, Total: 300, Average: 150, Participation: 0.5},
		{Name: "A", Games: 4, Total: 800, Average: 200, Participation: 0.5},
		{Name: "C", Games: 1, Total: 250, Average: 250, Participation: 1.0},
	}

	SortStatRows(rows, "name", false)
	assert.Equal(t, []string{"A", "B", "C"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})

	SortStatRows(rows, "games", true)
	assert.Equal(t, "A", rows[0].Name)

	// Equal participation breaks ties by average descending
	SortStatRows(rows, "participation", true)
	assert.Equal(t, "C", rows[0].Name)
	assert.Equal(t, "A", rows[1].Name)
	assert.Equal(t, "B", rows[2].Name)
}

func TestComputeAceAttendanceBoundary(t *testing.T) {
	// 4 regular days. Ineligible at 0.74-ish (below 3/4), eligible at exactly 0.75.
	records := []models.Score{
		memberScore(1, 300, "2025-01-01", models.GameTypeRegular), // 2 of 4 days, huge average
		memberScore(1, 300, "2025-01-08", models.GameTypeRegular),
		memberScore(2, 150, "2025-01-01", models.GameTypeRegular), // 3 of 4 days, exactly 0.75
		memberScore(2, 150, "2025-01-08", models.GameTypeRegular),
		memberScore(2, 150, "2025-01-15", models.GameTypeRegular),
		memberScore(3, 100, "2025-01-22", models.GameTypeRegular), // fills out day 4
	}

	ace := ComputeAce(records)
	require.NotNil(t, ace)
	assert.Equal(t, uint(2), *ace)
}

func TestComputeAceEndToEnd(t *testing.T) {
	// 4 regular days; A attends 3 (avg 190), B attends 4 (avg 185),
	// C attends 2 (avg 220). A and B eligible, A has the higher average.
	days := []string{"2025-02-01", "2025-02-08", "2025-02-15", "2025-02-22"}
	var records []models.Score
	for _, d := range days[:3] {
		records = append(records, memberScore(1, 190, d, models.GameTypeRegular))
	}
	for _, d := range days {
		records = append(records, memberScore(2, 185, d, models.GameTypeRegular))
	}
	for _, d := range days[:2] {
		records = append(records, memberScore(3, 220, d, models.GameTypeRegular))
	}

	ace := ComputeAce(records)
	require.NotNil(t, ace)
	assert.Equal(t, uint(1), *ace)
}

func TestComputeAceNoRegularGames(t *testing.T) {
	records := []models.Score{
		memberScore(1, 300, "2025-01-01", models.GameTypePickup),
		guestScore("g", 300, "2025-01-01", models.GameTypeRegular),
	}
	// Guests alone never produce an Ace
	assert.Nil(t, ComputeAce(records))
	assert.Nil(t, ComputeAce(nil))
}

func TestComputeAceTieBreakLowestID(t *testing.T) {
	records := []models.Score{
		memberScore(7, 200, "2025-01-01", models.GameTypeRegular),
		memberScore(3, 200, "2025-01-01", models.GameTypeRegular),
		memberScore(9, 200, "2025-01-01", models.GameTypeRegular),
	}
	ace := ComputeAce(records)
	require.NotNil(t, ace)
	assert.Equal(t, uint(3), *ace)
}

func TestComputeRecentRanking(t *testing.T) {
	records := []models.Score{
		memberScore(1, 180, "2025-04-01", models.GameTypeRegular),
		memberScore(1, 200, "2025-04-08", models.GameTypeRegular),
		memberScore(2, 210, "2025-04-08", models.GameTypeInterleague),
		memberScore(3, 190, "2025-04-08", models.GameTypeRegular),
		memberScore(4, 170, "2025-04-08", models.GameTypeRegular),
		guestScore("g", 300, "2025-04-08", models.GameTypeRegular),
		// Later date, but 기타 must not shift "most recent" or rank
		memberScore(5, 299, "2025-04-15", models.GameTypeOther),
	}

	ranking := ComputeRecentRanking(records)
	require.Len(t, ranking, 3)
	assert.Equal(t, uint(2), ranking[0].MemberID)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, uint(1), ranking[1].MemberID)
	assert.Equal(t, uint(3), ranking[2].MemberID)
}

func TestComputeRecentRankingNoEligibleGames(t *testing.T) {
	records := []models.Score{
		memberScore(1, 200, "2025-04-01", models.GameTypePickup),
	}
	assert.Nil(t, ComputeRecentRanking(records))
}

func TestComputeRecentRankingFewerThanThree(t *testing.T) {
	records := []models.Score{
		memberScore(1, 200, "2025-04-08", models.GameTypeRegular),
		memberScore(2, 180, "2025-04-08", models.GameTypeRegular),
	}
	ranking := ComputeRecentRanking(records)
	require.Len(t, ranking, 2)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, 2, ranking[1].Rank)
}

func TestComputePersonalSummary(t *testing.T) {
	records := []models.Score{
		memberScore(1, 180, "2025-01-10", models.GameTypeRegular),
		memberScore(1, 220, "2025-01-10", models.GameTypeRegular),
		memberScore(1, 205, "2025-06-05", models.GameTypePickup),
	}

	s := ComputePersonalSummary(records)
	assert.Equal(t, 3, s.Games)
	assert.Equal(t, 605, s.Total)
	assert.Equal(t, 201.7, s.Average)
	assert.Equal(t, 220, s.HighGame)
	assert.Equal(t, 2, s.ByType[models.GameTypeRegular])
	assert.Equal(t, 1, s.ByType[models.GameTypePickup])
	require.NotNil(t, s.Monthly[0])
	assert.Equal(t, 200, *s.Monthly[0])

	empty := ComputePersonalSummary(nil)
	assert.Equal(t, 0.0, empty.Average)
	assert.Equal(t, 0, empty.HighGame)
}

func TestGroupScoresByDay(t *testing.T) {
	memo := "league night"
	records := []models.Score{
		memberScore(1, 180, "2025-01-10", models.GameTypeRegular),
		memberScore(2, 200, "2025-01-10", models.GameTypeRegular),
		memberScore(1, 150, "2025-03-05", models.GameTypePickup),
	}
	records[0].Memo = &memo

	groups := GroupScoresByDay(records)
	require.Len(t, groups, 2)

	// Newest first
	assert.Equal(t, "2025-03-05", groups[0].Day)
	assert.Equal(t, 1, groups[0].Games)

	jan := groups[1]
	assert.Equal(t, "2025-01-10", jan.Day)
	assert.Equal(t, 2, jan.Games)
	assert.Equal(t, 190.0, jan.Average)
	require.NotNil(t, jan.Memo)
	assert.Equal(t, "league night", *jan.Memo)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 190.0, round1(190.0))
	assert.Equal(t, 176.7, round1(530.0/3.0))
	assert.Equal(t, 0.1, round1(0.05))
}
