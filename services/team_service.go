// services/team_service.go - Team Lifecycle & Membership Business Logic
package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"bowlingmanager/models"

	"gorm.io/gorm"
)

type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

// ================== TEAM CRUD OPERATIONS ==================

// CreateTeam creates a new team with the creator as owner and first member.
func (s *TeamService) CreateTeam(name string, creatorID uint) (*models.Team, error) {
	if name == "" {
		return nil, badInput("team name is required")
	}

	team := &models.Team{
		Name:    name,
		Code:    s.generateUniqueTeamCode(),
		OwnerID: creatorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}

		// Owner auto-joins; first member, so no alias collision possible
		member := &models.TeamMember{
			TeamID:   team.ID,
			UserID:   creatorID,
			JoinedAt: time.Now(),
		}
		return tx.Create(member).Error
	})

	if err != nil {
		return nil, err
	}

	return team, nil
}

// GetTeamByID retrieves a team with members and managers preloaded.
func (s *TeamService) GetTeamByID(teamID uint) (*models.Team, error) {
	var team models.Team
	err := s.db.Where("id = ?", teamID).
		Preload("Members").
		Preload("Members.User").
		Preload("Managers").
		Preload("Owner").
		First(&team).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownTarget
		}
		return nil, err
	}

	return &team, nil
}

// GetTeamByCode retrieves a team by its join code.
func (s *TeamService) GetTeamByCode(code string) (*models.Team, error) {
	var team models.Team
	err := s.db.Where("code = ?", code).
		Preload("Members").
		First(&team).Error

	if err != nil {
		return nil, ErrUnknownTarget
	}

	return &team, nil
}

// GetUserTeams retrieves all teams a user belongs to.
func (s *TeamService) GetUserTeams(userID uint) ([]models.Team, error) {
	var teams []models.Team

	err := s.db.Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Preload("Members").
		Preload("Members.User").
		Find(&teams).Error

	return teams, err
}

// UpdateTeam renames a team (owner or manager).
func (s *TeamService) UpdateTeam(teamID uint, name string, updaterID uint) error {
	if name == "" {
		return badInput("team name is required")
	}

	team, err := s.GetTeamByID(teamID)
	if err != nil {
		return err
	}
	if team.OwnerID != updaterID && !team.IsManager(updaterID) {
		return ErrUnauthorized
	}

	return s.db.Model(&models.Team{}).Where("id = ?", teamID).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now()}).Error
}

// DeleteTeam removes a team and everything under it (owner only).
func (s *TeamService) DeleteTeam(teamID, ownerID uint) error {
	team, err := s.GetTeamByID(teamID)
	if err != nil {
		return err
	}
	if team.OwnerID != ownerID {
		return ErrUnauthorized
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Score{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_images WHERE post_id IN (SELECT id FROM posts WHERE team_id = ?)", teamID).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM team_managers WHERE team_id = ?", teamID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, teamID).Error
	})
}

// ================== TEAM MEMBERSHIP OPERATIONS ==================

// JoinTeam adds a user to a team via invite code. When the joiner's real
// name collides with existing members, the whole colliding set is
// re-aliased ("Kim A", "Kim B", ...) inside the same transaction.
func (s *TeamService) JoinTeam(userID uint, teamCode string) (*models.Team, error) {
	team, err := s.GetTeamByCode(teamCode)
	if err != nil {
		return nil, err
	}

	if s.IsTeamMember(userID, team.ID) {
		return nil, badInput("already a member of this team")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUnknownTarget
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var memberships []models.TeamMember
		if err := tx.Where("team_id = ?", team.ID).
			Preload("User").
			Find(&memberships).Error; err != nil {
			return err
		}

		existing := make([]ExistingMember, 0, len(memberships))
		for _, m := range memberships {
			if m.User == nil {
				continue
			}
			existing = append(existing, ExistingMember{
				MembershipID: m.ID,
				RealName:     m.User.Name,
				JoinedAt:     m.JoinedAt,
			})
		}

		updates, newAlias := ResolveJoinAliases(existing, user.Name)
		for _, u := range updates {
			if err := tx.Model(&models.TeamMember{}).
				Where("id = ?", u.MembershipID).
				Update("alias", u.Alias).Error; err != nil {
				return err
			}
		}

		member := &models.TeamMember{
			TeamID:   team.ID,
			UserID:   userID,
			Alias:    newAlias,
			JoinedAt: time.Now(),
		}
		return tx.Create(member).Error
	})

	if err != nil {
		return nil, err
	}

	return team, nil
}

// LeaveTeam removes the caller from a team. Their score history is kept
// as guest records under their display name at departure.
func (s *TeamService) LeaveTeam(userID, teamID uint) error {
	team, err := s.GetTeamByID(teamID)
	if err != nil {
		return err
	}

	if team.OwnerID == userID {
		return badInput("team owner must transfer ownership before leaving")
	}

	var member models.TeamMember
	if err := s.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Preload("User").
		First(&member).Error; err != nil {
		return badInput("not a member of this team")
	}

	return s.removeMembership(&member)
}

// RemoveMember kicks a member (owner or manager). Managers cannot act on
// the owner or on other managers.
func (s *TeamService) RemoveMember(teamID, actorID, targetUserID uint) error {
	team, err := s.GetTeamByID(teamID)
	if err != nil {
		return err
	}
	if err := s.canActOn(team, actorID, targetUserID); err != nil {
		return err
	}

	var member models.TeamMember
	if err := s.db.Where("team_id = ? AND user_id = ?", teamID, targetUserID).
		Preload("User").
		First(&member).Error; err != nil {
		return ErrUnknownTarget
	}

	return s.removeMembership(&member)
}

// removeMembership converts the member's scores to guest records and
// deletes the membership, atomically.
func (s *TeamService) removeMembership(member *models.TeamMember) error {
	displayName := member.DisplayName()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Score{}).
			Where("team_id = ? AND user_id = ?", member.TeamID, member.UserID).
			Updates(map[string]interface{}{
				"user_id":    nil,
				"guest_name": displayName,
			}).Error; err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM team_managers WHERE team_id = ? AND user_id = ?",
			member.TeamID, member.UserID).Error; err != nil {
			return err
		}

		return tx.Delete(&models.TeamMember{}, member.ID).Error
	})
}

// ToggleManager grants or revokes manager rights (owner only).
func (s *TeamService) ToggleManager(teamID, ownerID, memberUserID uint) (bool, error) {
	team, err := s.GetTeamByID(teamID)
	if err != nil {
		return false, err
	}
	if team.OwnerID != ownerID {
		return false, ErrUnauthorized
	}
	if memberUserID == ownerID {
		return false, badInput("owner cannot be a manager")
	}
	if !s.IsTeamMember(memberUserID, teamID) {
		return false, ErrUnknownTarget
	}

	if team.IsManager(memberUserID) {
		err := s.db.Exec("DELETE FROM team_managers WHERE team_id = ? AND user_id = ?",
			teamID, memberUserID).Error
		return false, err
	}

	err = s.db.Exec("INSERT INTO team_managers (team_id, user_id) VALUES (?, ?)",
		teamID, memberUserID).Error
	return true, err
}

// TransferOwnership hands the team to another current member (owner only).
// The new owner is removed from the manager set if present.
func (s *TeamService) TransferOwnership(teamID, currentOwnerID, newOwnerID uint) error {
	team, err := s.GetTeamByID(teamID)
	if err != nil {
		return err
	}
	if team.OwnerID != currentOwnerID {
		return ErrUnauthorized
	}
	if !s.IsTeamMember(newOwnerID, teamID) {
		return badInput("new owner must be a team member")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM team_managers WHERE team_id = ? AND user_id = ?",
			teamID, newOwnerID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Team{}).Where("id = ?", teamID).
			Update("owner_id", newOwnerID).Error
	})
}

// ================== GUEST RECONCILIATION ==================

// GuestSummary lists one guest bucket with its record count.
type GuestSummary struct {
	GuestName string `json:"guest_name"`
	Games     int    `json:"games"`
}

// ListGuests returns the team's guest buckets, busiest first.
func (s *TeamService) ListGuests(teamID uint) ([]GuestSummary, error) {
	var guests []GuestSummary
	err := s.db.Model(&models.Score{}).
		Select("guest_name, COUNT(*) as games").
		Where("team_id = ? AND user_id IS NULL AND guest_name IS NOT NULL", teamID).
		Group("guest_name").
		Order("games DESC").
		Scan(&guests).Error
	return guests, err
}

// guestScoreIDs returns the ids of scores still attributed to the guest.
func guestScoreIDs(records []models.Score, guestName string) []uint {
	var ids []uint
	for _, r := range records {
		if r.UserID == nil && r.GuestName != nil && *r.GuestName == guestName {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// mergeGuestScores reattributes the guest's rows to the member, in
// place, and returns the ids it changed. Rows already owned by a member
// are untouched, so running the merge again changes nothing.
func mergeGuestScores(records []models.Score, guestName string, memberID uint) []uint {
	ids := guestScoreIDs(records, guestName)
	changed := make(map[uint]bool, len(ids))
	for _, id := range ids {
		changed[id] = true
	}
	for i := range records {
		if !changed[records[i].ID] {
			continue
		}
		id := memberID
		records[i].UserID = &id
		records[i].GuestName = nil
	}
	return ids
}

// DeleteGuestRecords removes every score attributed to the guest name
// (owner only). Returns the number of rows deleted; zero matches is
// success, not an error.
func (s *TeamService) DeleteGuestRecords(teamID, actorID uint, guestName string) (int64, error) {
	team, err := s.GetTeamByID(teamID)
	if err != nil {
		return 0, err
	}
	if team.OwnerID != actorID {
		return 0, ErrUnauthorized
	}

	var affected int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var guestRows []models.Score
		if err := tx.Where("team_id = ? AND user_id IS NULL", teamID).
			Find(&guestRows).Error; err != nil {
			return err
		}

		ids := guestScoreIDs(guestRows, guestName)
		if len(ids) == 0 {
			return nil
		}

		res := tx.Delete(&models.Score{}, ids)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// MergeGuestIntoMember reattributes every matching guest score to the
// target member (owner only). Duplicate games on the same date simply
// coexist after the merge. Returns the number of rows updated.
func (s *TeamService) MergeGuestIntoMember(teamID, actorID uint, guestName string, targetUserID uint) (int64, error) {
	team, err := s.GetTeamByID(teamID)
	if err != nil {
		return 0, err
	}
	if team.OwnerID != actorID {
		return 0, ErrUnauthorized
	}
	if !s.IsTeamMember(targetUserID, teamID) {
		return 0, ErrUnknownTarget
	}

	var affected int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var guestRows []models.Score
		if err := tx.Where("team_id = ? AND user_id IS NULL", teamID).
			Find(&guestRows).Error; err != nil {
			return err
		}

		ids := mergeGuestScores(guestRows, guestName, targetUserID)
		if len(ids) == 0 {
			return nil
		}

		res := tx.Model(&models.Score{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"user_id":    targetUserID,
				"guest_name": nil,
			})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// ================== HELPER FUNCTIONS ==================

// IsTeamMember checks if a user currently belongs to a team.
func (s *TeamService) IsTeamMember(userID, teamID uint) bool {
	var count int64
	s.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count)
	return count > 0
}

// CanManage reports whether the actor may run score mutations for the
// team (owner or manager).
func (s *TeamService) CanManage(team *models.Team, actorID uint) bool {
	return team.OwnerID == actorID || team.IsManager(actorID)
}

// canActOn enforces the elevation ladder for member-targeted actions:
// the owner may act on anyone but themselves; a manager may act only on
// regular members.
func (s *TeamService) canActOn(team *models.Team, actorID, targetUserID uint) error {
	if targetUserID == team.OwnerID {
		return ErrUnauthorized
	}
	if actorID == team.OwnerID {
		return nil
	}
	if !team.IsManager(actorID) {
		return ErrUnauthorized
	}
	if team.IsManager(targetUserID) {
		return ErrUnauthorized
	}
	return nil
}

// generateUniqueTeamCode generates a unique 6-character invite code.
func (s *TeamService) generateUniqueTeamCode() string {
	for {
		bytes := make([]byte, 3)
		rand.Read(bytes)
		code := hex.EncodeToString(bytes)[:6]

		var count int64
		s.db.Model(&models.Team{}).Where("code = ?", code).Count(&count)

		if count == 0 {
			return code
		}
	}
}
