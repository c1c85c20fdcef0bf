// services/score_service.go - Score Entry & Retrieval Business Logic
package services

import (
	"sort"
	"strings"
	"time"

	"bowlingmanager/models"
	"bowlingmanager/utils"

	"gorm.io/gorm"
)

type ScoreService struct {
	db    *gorm.DB
	teams *TeamService
}

func NewScoreService(db *gorm.DB, teams *TeamService) *ScoreService {
	return &ScoreService{db: db, teams: teams}
}

// ScoreEntry is one participant's manual entry for a single day: a raw
// name (member display name or guest) and that day's games.
type ScoreEntry struct {
	Name   string `json:"name"`
	Scores []int  `json:"scores"`
}

// EntryResult reports what a batch insert actually did.
type EntryResult struct {
	Inserted int `json:"inserted"`
	Rejected int `json:"rejected"`
}

// AddScores records a batch of games for one day and game type. Names are
// resolved against the roster; unknown names become guest records. The
// memo is shared by every record in the batch. All-or-nothing.
func (s *ScoreService) AddScores(teamID, actorID uint, entries []ScoreEntry, gameDate time.Time, gameType string, memo string) (*EntryResult, error) {
	team, err := s.teams.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	if !s.teams.CanManage(team, actorID) {
		return nil, ErrUnauthorized
	}

	for _, e := range entries {
		for _, sc := range e.Scores {
			if !models.ValidScore(sc) {
				return nil, ErrInvalidScore
			}
		}
	}

	var memoPtr *string
	if m := strings.TrimSpace(memo); m != "" {
		memoPtr = &m
	}
	normalizedType := models.NormalizeGameType(gameType)

	result := &EntryResult{}
	records := make([]models.Score, 0)
	for _, e := range entries {
		memberID, guestName := ResolveEntryName(team.Members, e.Name)
		if memberID == nil && guestName == nil {
			result.Rejected++
			continue
		}
		for _, sc := range e.Scores {
			records = append(records, models.Score{
				TeamID:    teamID,
				UserID:    memberID,
				GuestName: guestName,
				Score:     sc,
				GameDate:  gameDate,
				GameType:  normalizedType,
				Memo:      memoPtr,
			})
		}
	}

	if len(records) == 0 {
		return result, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, err
	}

	result.Inserted = len(records)
	return result, nil
}

// BulkImport inserts pre-parsed rows from a spreadsheet upload or AI
// extraction. Rows failing validation are counted, not inserted; the rest
// commit atomically. Rows without their own date use defaultDate.
func (s *ScoreService) BulkImport(teamID, actorID uint, rows []BulkRow, defaultDate time.Time, gameType string, memo string) (*EntryResult, error) {
	team, err := s.teams.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	if !s.teams.CanManage(team, actorID) {
		return nil, ErrUnauthorized
	}

	valid, rejected := ValidateBulkRows(rows)
	result := &EntryResult{Rejected: rejected}

	var memoPtr *string
	if m := strings.TrimSpace(memo); m != "" {
		memoPtr = &m
	}
	normalizedType := models.NormalizeGameType(gameType)

	records := make([]models.Score, 0, len(valid))
	for _, row := range valid {
		memberID, guestName := ResolveEntryName(team.Members, row.MemberName)
		if memberID == nil && guestName == nil {
			result.Rejected++
			continue
		}
		date := defaultDate
		if row.GameDate != nil {
			date = *row.GameDate
		}
		rowMemo := memoPtr
		if row.Memo != nil {
			rowMemo = row.Memo
		}
		for _, sc := range row.Scores {
			records = append(records, models.Score{
				TeamID:    teamID,
				UserID:    memberID,
				GuestName: guestName,
				Score:     sc,
				GameDate:  date,
				GameType:  normalizedType,
				Memo:      rowMemo,
			})
		}
	}

	if len(records) == 0 {
		return result, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, err
	}

	result.Inserted = len(records)
	return result, nil
}

// GetTeamYearScores loads every record for a team in a KST calendar year.
func (s *ScoreService) GetTeamYearScores(teamID uint, year int) ([]models.Score, error) {
	start, end := utils.KSTYearBounds(year)
	var scores []models.Score
	err := s.db.Where("team_id = ? AND game_date >= ? AND game_date < ?", teamID, start, end).
		Preload("User").
		Order("game_date ASC, id ASC").
		Find(&scores).Error
	return scores, err
}

// GetMemberYearScores loads one member's records for a year.
func (s *ScoreService) GetMemberYearScores(teamID, userID uint, year int) ([]models.Score, error) {
	start, end := utils.KSTYearBounds(year)
	var scores []models.Score
	err := s.db.Where("team_id = ? AND user_id = ? AND game_date >= ? AND game_date < ?",
		teamID, userID, start, end).
		Order("game_date ASC, id ASC").
		Find(&scores).Error
	return scores, err
}

// GetDayScores loads every record on one KST calendar day.
func (s *ScoreService) GetDayScores(teamID uint, day string) ([]models.Score, error) {
	t, err := utils.ParseKSTDay(day)
	if err != nil {
		return nil, badInput("invalid date, expected YYYY-MM-DD")
	}
	start, end := utils.KSTDayBounds(t)

	var scores []models.Score
	err = s.db.Where("team_id = ? AND game_date >= ? AND game_date < ?", teamID, start, end).
		Preload("User").
		Order("id ASC").
		Find(&scores).Error
	return scores, err
}

// UpdateDayScores replaces a day's record group with a new set of
// entries: the old rows are deleted and the new ones inserted in one
// transaction, so an edit never half-applies.
func (s *ScoreService) UpdateDayScores(teamID, actorID uint, day string, entries []ScoreEntry, gameType string, memo string) (*EntryResult, error) {
	team, err := s.teams.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	if !s.teams.CanManage(team, actorID) {
		return nil, ErrUnauthorized
	}

	t, err := utils.ParseKSTDay(day)
	if err != nil {
		return nil, badInput("invalid date, expected YYYY-MM-DD")
	}
	start, end := utils.KSTDayBounds(t)

	for _, e := range entries {
		for _, sc := range e.Scores {
			if !models.ValidScore(sc) {
				return nil, ErrInvalidScore
			}
		}
	}

	var memoPtr *string
	if m := strings.TrimSpace(memo); m != "" {
		memoPtr = &m
	}
	normalizedType := models.NormalizeGameType(gameType)

	result := &EntryResult{}
	records := make([]models.Score, 0)
	for _, e := range entries {
		memberID, guestName := ResolveEntryName(team.Members, e.Name)
		if memberID == nil && guestName == nil {
			result.Rejected++
			continue
		}
		for _, sc := range e.Scores {
			records = append(records, models.Score{
				TeamID:    teamID,
				UserID:    memberID,
				GuestName: guestName,
				Score:     sc,
				GameDate:  start,
				GameType:  normalizedType,
				Memo:      memoPtr,
			})
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ? AND game_date >= ? AND game_date < ?",
			teamID, start, end).Delete(&models.Score{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, err
	}

	result.Inserted = len(records)
	return result, nil
}

// UpdateDayMeta rewrites the shared fields of a day's record group:
// optionally moving it to a new date and changing game type or memo.
// Applies to every record on the day, atomically.
func (s *ScoreService) UpdateDayMeta(teamID, actorID uint, day string, newDay, gameType, memo *string) (int64, error) {
	team, err := s.teams.GetTeamByID(teamID)
	if err != nil {
		return 0, err
	}
	if !s.teams.CanManage(team, actorID) {
		return 0, ErrUnauthorized
	}

	t, err := utils.ParseKSTDay(day)
	if err != nil {
		return 0, badInput("invalid date, expected YYYY-MM-DD")
	}
	start, end := utils.KSTDayBounds(t)

	updates := map[string]interface{}{}
	if newDay != nil {
		nt, err := utils.ParseKSTDay(*newDay)
		if err != nil {
			return 0, badInput("invalid new date, expected YYYY-MM-DD")
		}
		updates["game_date"] = nt
	}
	if gameType != nil {
		updates["game_type"] = models.NormalizeGameType(*gameType)
	}
	if memo != nil {
		if m := strings.TrimSpace(*memo); m == "" {
			updates["memo"] = nil
		} else {
			updates["memo"] = m
		}
	}
	if len(updates) == 0 {
		return 0, nil
	}

	var affected int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Score{}).
			Where("team_id = ? AND game_date >= ? AND game_date < ?", teamID, start, end).
			Updates(updates)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// SaveMemberDayScores reconciles one identity's games on a day against a
// new score list: existing rows are updated in place, extras deleted,
// additions created, all in one transaction.
func (s *ScoreService) SaveMemberDayScores(teamID, actorID uint, day, name string, scores []int) (*EntryResult, error) {
	team, err := s.teams.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	if !s.teams.CanManage(team, actorID) {
		return nil, ErrUnauthorized
	}

	for _, sc := range scores {
		if !models.ValidScore(sc) {
			return nil, ErrInvalidScore
		}
	}

	t, err := utils.ParseKSTDay(day)
	if err != nil {
		return nil, badInput("invalid date, expected YYYY-MM-DD")
	}
	start, end := utils.KSTDayBounds(t)

	memberID, guestName := ResolveEntryName(team.Members, name)
	if memberID == nil && guestName == nil {
		return nil, ErrUnknownTarget
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Where("team_id = ? AND game_date >= ? AND game_date < ?", teamID, start, end)
		if memberID != nil {
			q = q.Where("user_id = ?", *memberID)
		} else {
			q = q.Where("user_id IS NULL AND guest_name = ?", *guestName)
		}

		var existing []models.Score
		if err := q.Order("id ASC").Find(&existing).Error; err != nil {
			return err
		}

		n := len(scores)
		if len(existing) < n {
			n = len(existing)
		}
		for i := 0; i < n; i++ {
			if err := tx.Model(&existing[i]).Update("score", scores[i]).Error; err != nil {
				return err
			}
		}
		for i := n; i < len(existing); i++ {
			if err := tx.Delete(&models.Score{}, existing[i].ID).Error; err != nil {
				return err
			}
		}
		if len(scores) > len(existing) {
			gameType := models.GameTypeRegular
			var memo *string
			if len(existing) > 0 {
				gameType = existing[0].GameType
				memo = existing[0].Memo
			}
			added := make([]models.Score, 0, len(scores)-len(existing))
			for _, sc := range scores[len(existing):] {
				added = append(added, models.Score{
					TeamID:    teamID,
					UserID:    memberID,
					GuestName: guestName,
					Score:     sc,
					GameDate:  start,
					GameType:  gameType,
					Memo:      memo,
				})
			}
			if err := tx.Create(&added).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &EntryResult{Inserted: len(scores)}, nil
}

// DayGroup is one day of team activity for the log view.
type DayGroup struct {
	Day      string         `json:"day"`
	GameType string         `json:"game_type"`
	Memo     *string        `json:"memo,omitempty"`
	Games    int            `json:"games"`
	Average  float64        `json:"average"`
	Scores   []models.Score `json:"scores"`
}

// GetActivityLog groups a year's records by KST day, newest first, with
// the day's average for display.
func (s *ScoreService) GetActivityLog(teamID uint, year int) ([]DayGroup, error) {
	records, err := s.GetTeamYearScores(teamID, year)
	if err != nil {
		return nil, err
	}
	return GroupScoresByDay(records), nil
}

// GroupScoresByDay partitions records by KST day, newest first. The day
// carries the game type and memo of its first record, which a batch
// entry shares across the group.
func GroupScoresByDay(records []models.Score) []DayGroup {
	byDay := make(map[string]*DayGroup)
	order := make([]string, 0)
	for i := range records {
		r := &records[i]
		day := utils.KSTDay(r.GameDate)
		g := byDay[day]
		if g == nil {
			g = &DayGroup{Day: day, GameType: r.GameType, Memo: r.Memo}
			byDay[day] = g
			order = append(order, day)
		}
		g.Games++
		g.Scores = append(g.Scores, *r)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(order)))

	groups := make([]DayGroup, 0, len(order))
	for _, day := range order {
		g := byDay[day]
		total := 0
		for _, sc := range g.Scores {
			total += sc.Score
		}
		if g.Games > 0 {
			g.Average = round1(float64(total) / float64(g.Games))
		}
		groups = append(groups, *g)
	}
	return groups
}

// GetUserYearScores loads a user's records across every team for a year,
// for the global personal summary.
func (s *ScoreService) GetUserYearScores(userID uint, year int) ([]models.Score, error) {
	start, end := utils.KSTYearBounds(year)
	var scores []models.Score
	err := s.db.Where("user_id = ? AND game_date >= ? AND game_date < ?", userID, start, end).
		Order("game_date ASC, id ASC").
		Find(&scores).Error
	return scores, err
}

// DeleteDayScores removes every record on one KST calendar day. Returns
// the number of rows deleted.
func (s *ScoreService) DeleteDayScores(teamID, actorID uint, day string) (int64, error) {
	team, err := s.teams.GetTeamByID(teamID)
	if err != nil {
		return 0, err
	}
	if !s.teams.CanManage(team, actorID) {
		return 0, ErrUnauthorized
	}

	t, err := utils.ParseKSTDay(day)
	if err != nil {
		return 0, badInput("invalid date, expected YYYY-MM-DD")
	}
	start, end := utils.KSTDayBounds(t)

	res := s.db.Where("team_id = ? AND game_date >= ? AND game_date < ?", teamID, start, end).
		Delete(&models.Score{})
	return res.RowsAffected, res.Error
}

// DeleteScore removes a single record.
func (s *ScoreService) DeleteScore(teamID, actorID, scoreID uint) error {
	team, err := s.teams.GetTeamByID(teamID)
	if err != nil {
		return err
	}
	if !s.teams.CanManage(team, actorID) {
		return ErrUnauthorized
	}

	res := s.db.Where("id = ? AND team_id = ?", scoreID, teamID).Delete(&models.Score{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUnknownTarget
	}
	return nil
}

// GetYears lists the KST calendar years a team has records in, newest
// first, so the client can build its year selector.
func (s *ScoreService) GetYears(teamID uint) ([]int, error) {
	var dates []time.Time
	err := s.db.Model(&models.Score{}).
		Where("team_id = ?", teamID).
		Order("game_date DESC").
		Pluck("game_date", &dates).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	years := make([]int, 0)
	for _, d := range dates {
		y := utils.KSTYear(d)
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	return years, nil
}
