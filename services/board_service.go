// services/board_service.go - team discussion board
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"bowlingmanager/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardService struct {
	db      *gorm.DB
	teams   *TeamService
	storage *Storage
}

// NewBoardService wires the board. storage may be nil, which disables
// image attachments but keeps text posts working.
func NewBoardService(db *gorm.DB, teams *TeamService, storage *Storage) *BoardService {
	return &BoardService{db: db, teams: teams, storage: storage}
}

// CreatePost adds a post to the team board. Any member can post.
func (s *BoardService) CreatePost(teamID, authorID uint, title, content string) (*models.Post, error) {
	if !s.teams.IsTeamMember(authorID, teamID) {
		return nil, ErrUnauthorized
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, badInput("title is required")
	}

	post := &models.Post{
		TeamID:   teamID,
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if err := s.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts pages through a team's posts, newest first.
func (s *BoardService) ListPosts(teamID, viewerID uint, page, pageSize int) ([]models.Post, int64, error) {
	if !s.teams.IsTeamMember(viewerID, teamID) {
		return nil, 0, ErrUnauthorized
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := s.db.Model(&models.Post{}).Where("team_id = ?", teamID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := s.db.Where("team_id = ?", teamID).
		Preload("Author").
		Preload("Images").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	return posts, total, err
}

// GetPost loads one post with author and images.
func (s *BoardService) GetPost(teamID, viewerID, postID uint) (*models.Post, error) {
	if !s.teams.IsTeamMember(viewerID, teamID) {
		return nil, ErrUnauthorized
	}

	var post models.Post
	err := s.db.Where("id = ? AND team_id = ?", postID, teamID).
		Preload("Author").
		Preload("Images").
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownTarget
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost edits a post. Only the author may edit.
func (s *BoardService) UpdatePost(teamID, actorID, postID uint, title, content string) error {
	post, err := s.GetPost(teamID, actorID, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return ErrUnauthorized
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return badInput("title is required")
	}

	return s.db.Model(post).Updates(map[string]interface{}{
		"title":   title,
		"content": content,
	}).Error
}

// DeletePost removes a post and its images. The author, the team owner,
// and managers may delete.
func (s *BoardService) DeletePost(ctx context.Context, teamID, actorID, postID uint) error {
	post, err := s.GetPost(teamID, actorID, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != actorID {
		team, err := s.teams.GetTeamByID(teamID)
		if err != nil {
			return err
		}
		if !s.teams.CanManage(team, actorID) {
			return ErrUnauthorized
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
	if err != nil {
		return err
	}

	// Object store cleanup is best-effort; orphaned objects cost little
	if s.storage != nil {
		for _, img := range post.Images {
			if key := objectKeyFromURL(img.URL); key != "" {
				_ = s.storage.DeleteObject(ctx, key)
			}
		}
	}
	return nil
}

// AttachImage uploads an image and links it to a post, enforcing the
// per-team storage budget.
func (s *BoardService) AttachImage(ctx context.Context, teamID, actorID, postID uint, fileHeader *multipart.FileHeader) (*models.PostImage, error) {
	if s.storage == nil {
		return nil, badInput("image uploads are not configured")
	}

	post, err := s.GetPost(teamID, actorID, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, ErrUnauthorized
	}

	used, err := s.TeamStorageUsed(teamID)
	if err != nil {
		return nil, err
	}
	if used+fileHeader.Size > models.TeamStorageLimit {
		return nil, badInput("team storage limit exceeded")
	}

	key := fmt.Sprintf("boards/%d/%s_%s", teamID, uuid.New().String(), fileHeader.Filename)
	url, err := s.storage.UploadFile(ctx, fileHeader, key)
	if err != nil {
		return nil, err
	}

	img := &models.PostImage{
		PostID: postID,
		URL:    url,
		Size:   fileHeader.Size,
	}
	if err := s.db.Create(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

// TeamStorageUsed sums the stored image bytes across a team's posts.
func (s *BoardService) TeamStorageUsed(teamID uint) (int64, error) {
	var used int64
	err := s.db.Model(&models.PostImage{}).
		Joins("JOIN posts ON posts.id = post_images.post_id").
		Where("posts.team_id = ?", teamID).
		Select("COALESCE(SUM(post_images.size), 0)").
		Scan(&used).Error
	return used, err
}

// objectKeyFromURL recovers the object key from a stored public URL.
func objectKeyFromURL(url string) string {
	idx := strings.Index(url, "/boards/")
	if idx < 0 {
		return ""
	}
	return url[idx+1:]
}
