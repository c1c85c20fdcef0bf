// handlers/scores.go - score entry, editing, and spreadsheet import
package handlers

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bowlingmanager/middleware"
	"bowlingmanager/services"
	"bowlingmanager/utils"

	"github.com/gofiber/fiber/v2"
)

type ScoreHandler struct {
	scores *services.ScoreService
}

func NewScoreHandler(scores *services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

type addScoresRequest struct {
	Entries  []services.ScoreEntry `json:"entries"`
	GameDate string                `json:"game_date"` // YYYY-MM-DD
	GameType string                `json:"game_type"`
	Memo     string                `json:"memo"`
}

// AddScores records a batch of games for a day.
func (h *ScoreHandler) AddScores(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	var req addScoresRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.Entries) == 0 {
		return badRequest(c, "No entries provided")
	}

	gameDate := time.Now()
	if req.GameDate != "" {
		gameDate, err = utils.ParseKSTDay(req.GameDate)
		if err != nil {
			return badRequest(c, "Invalid game date, expected YYYY-MM-DD")
		}
	}

	result, err := h.scores.AddScores(teamID, userID, req.Entries, gameDate, req.GameType, req.Memo)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}

// ImportWorkbook parses an uploaded xlsx and bulk-inserts its rows.
func (h *ScoreHandler) ImportWorkbook(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Workbook file required")
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".xlsx" {
		return badRequest(c, "Only .xlsx workbooks are supported")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fail(c, err)
	}
	defer file.Close()

	rows, unreadable, err := services.ParseScoreSheet(file)
	if err != nil {
		return badRequest(c, err.Error())
	}

	gameDate := time.Now()
	if d := c.FormValue("game_date"); d != "" {
		gameDate, err = utils.ParseKSTDay(d)
		if err != nil {
			return badRequest(c, "Invalid game date, expected YYYY-MM-DD")
		}
	}

	result, err := h.scores.BulkImport(teamID, userID, rows,
		gameDate, c.FormValue("game_type"), c.FormValue("memo"))
	if err != nil {
		return fail(c, err)
	}
	result.Rejected += unreadable

	return ok(c, result)
}

// GetDay returns every record on one calendar day.
func (h *ScoreHandler) GetDay(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	scores, err := h.scores.GetDayScores(teamID, c.Params("day"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, scores)
}

// UpdateDay replaces a day's record group.
func (h *ScoreHandler) UpdateDay(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	var req struct {
		Entries  []services.ScoreEntry `json:"entries"`
		GameType string                `json:"game_type"`
		Memo     string                `json:"memo"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.scores.UpdateDayScores(teamID, userID, c.Params("day"),
		req.Entries, req.GameType, req.Memo)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}

// DeleteDay removes every record on one calendar day.
func (h *ScoreHandler) DeleteDay(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	count, err := h.scores.DeleteDayScores(teamID, userID, c.Params("day"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"deleted": count})
}

// DeleteScore removes a single record.
func (h *ScoreHandler) DeleteScore(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}
	scoreID, err := paramUint(c, "scoreId")
	if err != nil {
		return err
	}

	if err := h.scores.DeleteScore(teamID, userID, scoreID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Score deleted"})
}

// GetActivity returns a year's records grouped by day, newest first.
func (h *ScoreHandler) GetActivity(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return badRequest(c, "Invalid year")
	}

	groups, err := h.scores.GetActivityLog(teamID, year)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, groups)
}

// UpdateDayMeta moves or relabels a whole day's record group.
func (h *ScoreHandler) UpdateDayMeta(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	var req struct {
		NewDay   *string `json:"new_day"`
		GameType *string `json:"game_type"`
		Memo     *string `json:"memo"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	count, err := h.scores.UpdateDayMeta(teamID, userID, c.Params("day"),
		req.NewDay, req.GameType, req.Memo)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"updated": count})
}

// SaveMemberDay reconciles one identity's scores on a day.
func (h *ScoreHandler) SaveMemberDay(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	var req struct {
		Name   string `json:"name"`
		Scores []int  `json:"scores"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "Name required")
	}

	result, err := h.scores.SaveMemberDayScores(teamID, userID, c.Params("day"),
		req.Name, req.Scores)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}

// GetYears lists the years a team has records in.
func (h *ScoreHandler) GetYears(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	years, err := h.scores.GetYears(teamID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, years)
}
