// handlers/auth.go - registration, login, and password reset
package handlers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"bowlingmanager/middleware"
	"bowlingmanager/models"
	"bowlingmanager/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const verificationTokenTTL = 10 * time.Minute

type AuthHandler struct {
	db     *gorm.DB
	mailer *services.Mailer
	teams  *services.TeamService
}

func NewAuthHandler(db *gorm.DB, mailer *services.Mailer, teams *services.TeamService) *AuthHandler {
	return &AuthHandler{db: db, mailer: mailer, teams: teams}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequestVerification sends a registration code to the given email.
func (h *AuthHandler) RequestVerification(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return badRequest(c, "Email required")
	}

	var existing models.User
	if err := h.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return badRequest(c, "Email already registered")
	}

	code, err := h.issueCode(email)
	if err != nil {
		return fail(c, err)
	}
	if err := h.mailer.SendVerificationCode(email, code); err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{"message": "Verification code sent"})
}

// Register creates an account once the emailed code checks out.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "Name, email and password required")
	}
	if len(req.Password) < 6 {
		return badRequest(c, "Password must be at least 6 characters")
	}

	if err := h.consumeCode(req.Email, req.Code); err != nil {
		return badRequest(c, "Invalid or expired verification code")
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return badRequest(c, "Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, err)
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.db.Create(&user).Error; err != nil {
		return fail(c, err)
	}

	token, err := generateToken(user)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{"token": token, "user": user})
}

// Login authenticates by email and password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password required")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid credentials"})
	}

	h.db.Model(&user).Update("last_login", time.Now())

	token, err := generateToken(user)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{"token": token, "user": user})
}

// Me returns the authenticated user's profile with team memberships.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.db.Preload("TeamMemberships").
		Preload("TeamMemberships.Team").
		First(&user, userID).Error; err != nil {
		return fail(c, services.ErrUnknownTarget)
	}

	return ok(c, user)
}

// RequestPasswordReset sends a reset code. Responds the same whether or
// not the address exists, to avoid leaking registered emails.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return badRequest(c, "Email required")
	}

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err == nil {
		code, err := h.issueCode(email)
		if err != nil {
			return fail(c, err)
		}
		if err := h.mailer.SendPasswordResetCode(email, code); err != nil {
			return fail(c, err)
		}
	}

	return ok(c, fiber.Map{"message": "If the email is registered, a reset code was sent"})
}

// ResetPassword sets a new password after verifying the emailed code.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Code == "" {
		return badRequest(c, "Email and code required")
	}
	if len(req.NewPassword) < 6 {
		return badRequest(c, "Password must be at least 6 characters")
	}

	if err := h.consumeCode(email, req.Code); err != nil {
		return badRequest(c, "Invalid or expired verification code")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, err)
	}

	res := h.db.Model(&models.User{}).Where("email = ?", email).
		Update("password", string(hashedPassword))
	if res.Error != nil {
		return fail(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return badRequest(c, "Invalid or expired verification code")
	}

	return ok(c, fiber.Map{"message": "Password updated"})
}

// FindEmail looks up accounts by real name and returns masked emails,
// enough for someone to recognize their own address without exposing it.
func (h *AuthHandler) FindEmail(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "Name required")
	}

	var users []models.User
	if err := h.db.Where("name = ?", name).Find(&users).Error; err != nil {
		return fail(c, err)
	}

	masked := make([]string, 0, len(users))
	for _, u := range users {
		masked = append(masked, maskEmail(u.Email))
	}
	return ok(c, fiber.Map{"emails": masked})
}

// ChangePassword updates the caller's password after checking the old one.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.NewPassword) < 6 {
		return badRequest(c, "Password must be at least 6 characters")
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return fail(c, services.ErrUnknownTarget)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid credentials"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, err)
	}
	if err := h.db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{"message": "Password updated"})
}

// DeleteAccount removes the caller's account. Refused while they own a
// team; other memberships are left first, converting their scores to
// guest records.
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var owned int64
	if err := h.db.Model(&models.Team{}).Where("owner_id = ?", userID).Count(&owned).Error; err != nil {
		return fail(c, err)
	}
	if owned > 0 {
		return badRequest(c, "Transfer or delete your teams before deleting the account")
	}

	var memberships []models.TeamMember
	if err := h.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return fail(c, err)
	}
	for _, m := range memberships {
		if err := h.teams.LeaveTeam(userID, m.TeamID); err != nil {
			return fail(c, err)
		}
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserAPIUsage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{"message": "Account deleted"})
}

// maskEmail keeps the first two characters of the local part.
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local := email[:at]
	if len(local) <= 2 {
		return local[:1] + "***" + email[at:]
	}
	return local[:2] + "***" + email[at:]
}

// issueCode stores a fresh 6-digit code for the email, replacing any
// previous one.
func (h *AuthHandler) issueCode(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.VerificationToken{
			Email:     email,
			Token:     code,
			ExpiresAt: time.Now().Add(verificationTokenTTL),
		}).Error
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// consumeCode validates and deletes a code in one transaction so it
// cannot be replayed.
func (h *AuthHandler) consumeCode(email, code string) error {
	return h.db.Transaction(func(tx *gorm.DB) error {
		var token models.VerificationToken
		if err := tx.Where("email = ? AND token = ?", email, code).First(&token).Error; err != nil {
			return err
		}
		if token.Expired(time.Now()) {
			return fmt.Errorf("verification code expired")
		}
		return tx.Delete(&token).Error
	})
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateToken(user models.User) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "bowlingmanager-secret-change-in-production"
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
