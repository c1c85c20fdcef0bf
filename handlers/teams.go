// handlers/teams.go - team lifecycle, membership, and guest reconciliation
package handlers

import (
	"strings"

	"bowlingmanager/middleware"
	"bowlingmanager/services"

	"github.com/gofiber/fiber/v2"
)

type TeamHandler struct {
	teams *services.TeamService
}

func NewTeamHandler(teams *services.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// CreateTeam makes a new team owned by the caller.
func (h *TeamHandler) CreateTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	team, err := h.teams.CreateTeam(strings.TrimSpace(req.Name), userID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, team)
}

// GetMyTeams lists the caller's teams.
func (h *TeamHandler) GetMyTeams(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teams, err := h.teams.GetUserTeams(userID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, teams)
}

// GetTeam returns one team with roster and managers. Members only.
func (h *TeamHandler) GetTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	if !h.teams.IsTeamMember(userID, teamID) {
		return fail(c, services.ErrUnauthorized)
	}

	team, err := h.teams.GetTeamByID(teamID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, team)
}

// JoinTeam joins via invite code.
func (h *TeamHandler) JoinTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Code) == "" {
		return badRequest(c, "Invite code required")
	}

	team, err := h.teams.JoinTeam(userID, strings.TrimSpace(req.Code))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, team)
}

// UpdateTeam renames a team.
func (h *TeamHandler) UpdateTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.teams.UpdateTeam(teamID, strings.TrimSpace(req.Name), userID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Team updated"})
}

// DeleteTeam removes a team and all of its data.
func (h *TeamHandler) DeleteTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	if err := h.teams.DeleteTeam(teamID, userID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Team deleted"})
}

// LeaveTeam removes the caller from a team; their scores become guest
// records.
func (h *TeamHandler) LeaveTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	if err := h.teams.LeaveTeam(userID, teamID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Left team"})
}

// RemoveMember kicks a member.
func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}
	targetID, err := paramUint(c, "userId")
	if err != nil {
		return err
	}

	if err := h.teams.RemoveMember(teamID, userID, targetID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Member removed"})
}

// ToggleManager grants or revokes manager rights.
func (h *TeamHandler) ToggleManager(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}
	targetID, err := paramUint(c, "userId")
	if err != nil {
		return err
	}

	isManager, err := h.teams.ToggleManager(teamID, userID, targetID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"is_manager": isManager})
}

// TransferOwnership hands the team to another member.
func (h *TeamHandler) TransferOwnership(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	var req struct {
		NewOwnerID uint `json:"new_owner_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.teams.TransferOwnership(teamID, userID, req.NewOwnerID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Ownership transferred"})
}

// ListGuests lists the team's guest score buckets.
func (h *TeamHandler) ListGuests(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	if !h.teams.IsTeamMember(userID, teamID) {
		return fail(c, services.ErrUnauthorized)
	}

	guests, err := h.teams.ListGuests(teamID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, guests)
}

// DeleteGuest removes all of a guest's score records.
func (h *TeamHandler) DeleteGuest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	var req struct {
		GuestName string `json:"guest_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.GuestName == "" {
		return badRequest(c, "Guest name required")
	}

	count, err := h.teams.DeleteGuestRecords(teamID, userID, req.GuestName)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"deleted": count})
}

// MergeGuest reattributes a guest's scores to a member.
func (h *TeamHandler) MergeGuest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	var req struct {
		GuestName    string `json:"guest_name"`
		TargetUserID uint   `json:"target_user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.GuestName == "" || req.TargetUserID == 0 {
		return badRequest(c, "Guest name and target member required")
	}

	count, err := h.teams.MergeGuestIntoMember(teamID, userID, req.GuestName, req.TargetUserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"merged": count})
}
