// services/stats.go - yearly team statistics aggregation
//
// Everything in this file is pure: it takes score rows and a roster
// already loaded from the database and computes display statistics.
// Grouping by calendar day always goes through utils.KSTDay so a
// late-night game counts toward the day it was bowled in Korea.
package services

import (
	"math"
	"sort"

	"bowlingmanager/models"
	"bowlingmanager/utils"
)

// StatRow is one identity's line in the yearly stats table. Monthly holds
// the rounded per-month average, nil for months without a game.
type StatRow struct {
	MemberID      *uint    `json:"member_id,omitempty"`
	GuestName     string   `json:"guest_name,omitempty"`
	Name          string   `json:"name"`
	IsGuest       bool     `json:"is_guest"`
	Games         int      `json:"games"`
	Total         int      `json:"total"`
	Average       float64  `json:"average"`
	Monthly       [12]*int `json:"monthly"`
	Participation float64  `json:"participation"`
}

// TeamRollup aggregates the whole table. TeamParticipation is the mean of
// the individual rows' participation rates, not a separate day ratio.
type TeamRollup struct {
	TotalGames         int          `json:"total_games"`
	TotalScore         int          `json:"total_score"`
	TeamAverage        float64      `json:"team_average"`
	TeamParticipation  float64      `json:"team_participation"`
	TeamMonthlyAverage [12]*float64 `json:"team_monthly_average"`
}

// identityKey distinguishes members from guests while grouping.
type identityKey struct {
	userID    uint
	guestName string
	isGuest   bool
}

func keyFor(s *models.Score) identityKey {
	if s.UserID != nil {
		return identityKey{userID: *s.UserID}
	}
	name := ""
	if s.GuestName != nil {
		name = *s.GuestName
	}
	return identityKey{guestName: name, isGuest: true}
}

// round1 rounds to one decimal place for display averages.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// FilterByGameTypes keeps only records whose normalized game type is in
// selected. An empty selection means no filtering.
func FilterByGameTypes(records []models.Score, selected []string) []models.Score {
	if len(selected) == 0 {
		return records
	}
	want := make(map[string]bool, len(selected))
	for _, t := range selected {
		want[models.NormalizeGameType(t)] = true
	}
	out := make([]models.Score, 0, len(records))
	for _, r := range records {
		if want[models.NormalizeGameType(r.GameType)] {
			out = append(out, r)
		}
	}
	return out
}

// ComputeTeamYearStats builds the per-identity rows and team rollup for a
// year's records under the given game-type filter. The roster supplies
// display names for members; guest rows display their raw guest name.
// Identities with no games after filtering are not emitted.
func ComputeTeamYearStats(records []models.Score, roster []models.TeamMember, selectedTypes []string) ([]StatRow, TeamRollup) {
	filtered := FilterByGameTypes(records, selectedTypes)

	names := make(map[uint]string, len(roster))
	for i := range roster {
		names[roster[i].UserID] = roster[i].DisplayName()
	}

	type acc struct {
		games        int
		total        int
		monthlySum   [12]int
		monthlyCount [12]int
		attendedDays map[string]bool
	}
	buckets := make(map[identityKey]*acc)
	teamDays := make(map[string]bool)

	for i := range filtered {
		r := &filtered[i]
		day := utils.KSTDay(r.GameDate)
		teamDays[day] = true

		k := keyFor(r)
		b := buckets[k]
		if b == nil {
			b = &acc{attendedDays: make(map[string]bool)}
			buckets[k] = b
		}
		b.games++
		b.total += r.Score
		m := utils.KSTMonth(r.GameDate)
		b.monthlySum[m] += r.Score
		b.monthlyCount[m]++
		b.attendedDays[day] = true
	}

	denominator := len(teamDays)

	rows := make([]StatRow, 0, len(buckets))
	var rollup TeamRollup
	var monthlySum [12]int
	var monthlyCount [12]int

	for k, b := range buckets {
		row := StatRow{
			Games: b.games,
			Total: b.total,
		}
		if k.isGuest {
			row.IsGuest = true
			row.GuestName = k.guestName
			row.Name = k.guestName
		} else {
			id := k.userID
			row.MemberID = &id
			if name, ok := names[id]; ok {
				row.Name = name
			} else {
				// Departed member whose rows were not yet converted;
				// fall back to whatever name is preloaded on the record.
				row.Name = "Unknown"
			}
		}
		if b.games > 0 {
			row.Average = round1(float64(b.total) / float64(b.games))
		}
		for m := 0; m < 12; m++ {
			if b.monthlyCount[m] > 0 {
				avg := int(math.Round(float64(b.monthlySum[m]) / float64(b.monthlyCount[m])))
				row.Monthly[m] = &avg
			}
			monthlySum[m] += b.monthlySum[m]
			monthlyCount[m] += b.monthlyCount[m]
		}
		if denominator > 0 {
			row.Participation = float64(len(b.attendedDays)) / float64(denominator)
		}

		rows = append(rows, row)
		rollup.TotalGames += b.games
		rollup.TotalScore += b.total
	}

	if rollup.TotalGames > 0 {
		rollup.TeamAverage = round1(float64(rollup.TotalScore) / float64(rollup.TotalGames))
	}
	if len(rows) > 0 {
		var sum float64
		for _, row := range rows {
			sum += row.Participation
		}
		rollup.TeamParticipation = sum / float64(len(rows))
	}
	for m := 0; m < 12; m++ {
		if monthlyCount[m] > 0 {
			avg := round1(float64(monthlySum[m]) / float64(monthlyCount[m]))
			rollup.TeamMonthlyAverage[m] = &avg
		}
	}

	SortStatRows(rows, "name", false)
	return rows, rollup
}

// SortStatRows orders the table by the given key. Participation sorts
// break ties by average descending so near-identical attendees still get
// a stable, meaningful order.
func SortStatRows(rows []StatRow, key string, desc bool) {
	less := func(a, b *StatRow) bool { return a.Name < b.Name }
	switch key {
	case "participation":
		less = func(a, b *StatRow) bool {
			if a.Participation != b.Participation {
				return a.Participation < b.Participation
			}
			if desc {
				return a.Average < b.Average
			}
			return a.Average > b.Average
		}
	case "games":
		less = func(a, b *StatRow) bool { return a.Games < b.Games }
	case "total":
		less = func(a, b *StatRow) bool { return a.Total < b.Total }
	case "avg":
		less = func(a, b *StatRow) bool { return a.Average < b.Average }
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(&rows[j], &rows[i])
		}
		return less(&rows[i], &rows[j])
	})
}

// AceAttendanceThreshold is the minimum share of regular-game days a
// member must have attended to be considered for the yearly Ace badge.
const AceAttendanceThreshold = 0.75

// ComputeAce picks the yearly Ace from the full (unfiltered) record set:
// the member with the highest average over regular games, among members
// who attended at least 75% of the team's regular-game days. Guests are
// never candidates. Returns nil when nobody qualifies.
//
// Ties go to the lowest member id: candidates are visited in ascending id
// order and only a strictly greater average displaces the current best.
func ComputeAce(records []models.Score) *uint {
	regularDays := make(map[string]bool)
	type acc struct {
		games int
		total int
		days  map[string]bool
	}
	byMember := make(map[uint]*acc)

	for i := range records {
		r := &records[i]
		if models.NormalizeGameType(r.GameType) != models.GameTypeRegular {
			continue
		}
		day := utils.KSTDay(r.GameDate)
		regularDays[day] = true
		if r.UserID == nil {
			continue
		}
		b := byMember[*r.UserID]
		if b == nil {
			b = &acc{days: make(map[string]bool)}
			byMember[*r.UserID] = b
		}
		b.games++
		b.total += r.Score
		b.days[day] = true
	}

	if len(regularDays) == 0 || len(byMember) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(byMember))
	for id := range byMember {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var ace *uint
	bestAvg := -1.0
	for _, id := range ids {
		b := byMember[id]
		rate := float64(len(b.days)) / float64(len(regularDays))
		if rate < AceAttendanceThreshold {
			continue
		}
		avg := float64(b.total) / float64(b.games)
		if avg > bestAvg {
			bestAvg = avg
			winner := id
			ace = &winner
		}
	}
	return ace
}

// RankedMember is one entry of the recent-game podium.
type RankedMember struct {
	Rank     int     `json:"rank"`
	MemberID uint    `json:"member_id"`
	Average  float64 `json:"average"`
}

// ComputeRecentRanking ranks the top three members by average score on
// the most recent ranking-eligible day. Only regular and interleague
// games count, both for picking the day and for the averages; guests are
// excluded. "Most recent" is the latest KST calendar day, consistent with
// every other day grouping in this package.
func ComputeRecentRanking(records []models.Score) []RankedMember {
	eligible := func(t string) bool {
		n := models.NormalizeGameType(t)
		return n == models.GameTypeRegular || n == models.GameTypeInterleague
	}

	latestDay := ""
	for i := range records {
		if !eligible(records[i].GameType) {
			continue
		}
		day := utils.KSTDay(records[i].GameDate)
		if day > latestDay {
			latestDay = day
		}
	}
	if latestDay == "" {
		return nil
	}

	type acc struct {
		games int
		total int
	}
	byMember := make(map[uint]*acc)
	for i := range records {
		r := &records[i]
		if !eligible(r.GameType) || r.UserID == nil {
			continue
		}
		if utils.KSTDay(r.GameDate) != latestDay {
			continue
		}
		b := byMember[*r.UserID]
		if b == nil {
			b = &acc{}
			byMember[*r.UserID] = b
		}
		b.games++
		b.total += r.Score
	}

	ranked := make([]RankedMember, 0, len(byMember))
	for id, b := range byMember {
		ranked = append(ranked, RankedMember{
			MemberID: id,
			Average:  round1(float64(b.total) / float64(b.games)),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Average != ranked[j].Average {
			return ranked[i].Average > ranked[j].Average
		}
		return ranked[i].MemberID < ranked[j].MemberID
	})

	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// PersonalSummary is a member's own view of a year: totals plus per
// game-type breakdown and high game.
type PersonalSummary struct {
	Games    int            `json:"games"`
	Total    int            `json:"total"`
	Average  float64        `json:"average"`
	HighGame int            `json:"high_game"`
	ByType   map[string]int `json:"games_by_type"`
	Monthly  [12]*int       `json:"monthly"`
}

// ComputePersonalSummary aggregates one identity's records. Records must
// already be filtered to the identity in question.
func ComputePersonalSummary(records []models.Score) PersonalSummary {
	s := PersonalSummary{ByType: make(map[string]int)}
	var monthlySum, monthlyCount [12]int
	for i := range records {
		r := &records[i]
		s.Games++
		s.Total += r.Score
		if r.Score > s.HighGame {
			s.HighGame = r.Score
		}
		s.ByType[models.NormalizeGameType(r.GameType)]++
		m := utils.KSTMonth(r.GameDate)
		monthlySum[m] += r.Score
		monthlyCount[m]++
	}
	if s.Games > 0 {
		s.Average = round1(float64(s.Total) / float64(s.Games))
	}
	for m := 0; m < 12; m++ {
		if monthlyCount[m] > 0 {
			avg := int(math.Round(float64(monthlySum[m]) / float64(monthlyCount[m])))
			s.Monthly[m] = &avg
		}
	}
	return s
}
