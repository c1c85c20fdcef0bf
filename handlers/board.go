// handlers/board.go - team discussion board
package handlers

import (
	"strconv"
	"strings"

	"bowlingmanager/middleware"
	"bowlingmanager/models"
	"bowlingmanager/services"

	"github.com/gofiber/fiber/v2"
)

type BoardHandler struct {
	board *services.BoardService
}

func NewBoardHandler(board *services.BoardService) *BoardHandler {
	return &BoardHandler{board: board}
}

// ListPosts pages through a team's posts.
func (h *BoardHandler) ListPosts(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	posts, total, err := h.board.ListPosts(teamID, userID, page, pageSize)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"posts": posts, "total": total, "page": page})
}

// CreatePost adds a post.
func (h *BoardHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.board.CreatePost(teamID, userID, req.Title, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, post)
}

// GetPost loads one post.
func (h *BoardHandler) GetPost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}
	postID, err := paramUint(c, "postId")
	if err != nil {
		return err
	}

	post, err := h.board.GetPost(teamID, userID, postID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, post)
}

// UpdatePost edits a post.
func (h *BoardHandler) UpdatePost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}
	postID, err := paramUint(c, "postId")
	if err != nil {
		return err
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.board.UpdatePost(teamID, userID, postID, req.Title, req.Content); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Post updated"})
}

// DeletePost removes a post and its images.
func (h *BoardHandler) DeletePost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}
	postID, err := paramUint(c, "postId")
	if err != nil {
		return err
	}

	if err := h.board.DeletePost(c.Context(), teamID, userID, postID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Post deleted"})
}

// UploadImage attaches an image to a post, within the team storage budget.
func (h *BoardHandler) UploadImage(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}
	postID, err := paramUint(c, "postId")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "Image file required")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return badRequest(c, "Only image uploads are allowed")
	}

	img, err := h.board.AttachImage(c.Context(), teamID, userID, postID, fileHeader)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, img)
}

// StorageStatus reports the team's image storage usage against the cap.
func (h *BoardHandler) StorageStatus(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return err
	}
	teamID, err := paramUint(c, "teamId")
	if err != nil {
		return err
	}

	used, err := h.board.TeamStorageUsed(teamID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"used": used, "limit": models.TeamStorageLimit})
}
