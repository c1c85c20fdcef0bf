// handlers/ai.go - AI-assisted score extraction
package handlers

import (
	"io"
	"strings"

	"bowlingmanager/middleware"
	"bowlingmanager/services"

	"github.com/gofiber/fiber/v2"
)

// maxAnalyzeImageBytes caps uploaded scoreboard photos.
const maxAnalyzeImageBytes = 8 << 20

type AIHandler struct {
	gemini *services.GeminiService
	teams  *services.TeamService
}

func NewAIHandler(gemini *services.GeminiService, teams *services.TeamService) *AIHandler {
	return &AIHandler{gemini: gemini, teams: teams}
}

// AnalyzeImage extracts score rows from a photographed scoreboard. The
// rows go back to the client for review; nothing is saved here.
func (h *AIHandler) AnalyzeImage(c *fiber.Ctx) error {
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

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "Image file required")
	}
	if fileHeader.Size > maxAnalyzeImageBytes {
		return badRequest(c, "Image too large")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return badRequest(c, "Only image uploads are allowed")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fail(c, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAnalyzeImageBytes))
	if err != nil {
		return fail(c, err)
	}

	rows, err := h.gemini.AnalyzeImage(c.Context(), userID, data, contentType)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"rows": rows})
}

// AnalyzeText extracts score rows from pasted text.
func (h *AIHandler) AnalyzeText(c *fiber.Ctx) error {
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

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest(c, "Text required")
	}

	rows, err := h.gemini.AnalyzeText(c.Context(), userID, req.Text)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"rows": rows})
}

// Usage reports today's club-wide AI spend.
func (h *AIHandler) Usage(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return err
	}

	usage, err := h.gemini.GetTodayUsage()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, usage)
}
