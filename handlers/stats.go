// handlers/stats.go - yearly statistics, badges, and export
package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"bowlingmanager/middleware"
	"bowlingmanager/services"

	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	teams  *services.TeamService
	scores *services.ScoreService
}

func NewStatsHandler(teams *services.TeamService, scores *services.ScoreService) *StatsHandler {
	return &StatsHandler{teams: teams, scores: scores}
}

// GetYearStats returns the stats table, rollup, and badges for a year.
// Query parameters: types (comma-separated game types), sort, order.
// Badges always come from the unfiltered year set; the type filter only
// shapes the table.
func (h *StatsHandler) GetYearStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
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

	if !h.teams.IsTeamMember(userID, teamID) {
		return fail(c, services.ErrUnauthorized)
	}

	team, err := h.teams.GetTeamByID(teamID)
	if err != nil {
		return fail(c, err)
	}

	records, err := h.scores.GetTeamYearScores(teamID, year)
	if err != nil {
		return fail(c, err)
	}

	var selectedTypes []string
	if raw := c.Query("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				selectedTypes = append(selectedTypes, t)
			}
		}
	}

	rows, rollup := services.ComputeTeamYearStats(records, team.Members, selectedTypes)

	sortKey := c.Query("sort", "name")
	desc := c.Query("order") == "desc"
	services.SortStatRows(rows, sortKey, desc)

	return ok(c, fiber.Map{
		"rows":    rows,
		"rollup":  rollup,
		"ace":     services.ComputeAce(records),
		"ranking": services.ComputeRecentRanking(records),
	})
}

// GetPersonalStats returns the caller's own summary for a year.
func (h *StatsHandler) GetPersonalStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
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

	if !h.teams.IsTeamMember(userID, teamID) {
		return fail(c, services.ErrUnauthorized)
	}

	records, err := h.scores.GetMemberYearScores(teamID, userID, year)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, services.ComputePersonalSummary(records))
}

// GetMyYearSummary returns the caller's summary for a year across every
// team they belong to.
func (h *StatsHandler) GetMyYearSummary(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return badRequest(c, "Invalid year")
	}

	records, err := h.scores.GetUserYearScores(userID, year)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, services.ComputePersonalSummary(records))
}

// ExportYearStats downloads the stats table as an xlsx workbook.
func (h *StatsHandler) ExportYearStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
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

	if !h.teams.IsTeamMember(userID, teamID) {
		return fail(c, services.ErrUnauthorized)
	}

	team, err := h.teams.GetTeamByID(teamID)
	if err != nil {
		return fail(c, err)
	}
	records, err := h.scores.GetTeamYearScores(teamID, year)
	if err != nil {
		return fail(c, err)
	}

	rows, rollup := services.ComputeTeamYearStats(records, team.Members, nil)
	f, err := services.BuildStatsWorkbook(year, rows, rollup)
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="stats_%d.xlsx"`, year))
	return f.Write(c.Response().BodyWriter())
}
