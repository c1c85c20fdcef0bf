// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"bowlingmanager/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.VerificationToken{},
		&models.Team{},
		&models.TeamMember{},
		&models.Score{},
		&models.Post{},
		&models.PostImage{},
		&models.APIUsage{},
		&models.UserAPIUsage{},
	); err != nil {
		return err
	}

	createIndexes(db)

	log.Println("Migrations completed")
	return nil
}

// createIndexes creates the composite indexes AutoMigrate does not cover.
func createIndexes(db *gorm.DB) {
	// Score lookups are almost always team + date range or team + identity
	db.Exec("CREATE INDEX IF NOT EXISTS idx_scores_team_date ON scores(team_id, game_date)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_scores_team_user ON scores(team_id, user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_scores_team_guest ON scores(team_id, guest_name)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_scores_game_type ON scores(game_type)")

	// Board
	db.Exec("CREATE INDEX IF NOT EXISTS idx_posts_team_created ON posts(team_id, created_at DESC)")

	// Token cleanup scans by expiry
	db.Exec("CREATE INDEX IF NOT EXISTS idx_verification_tokens_expires ON verification_tokens(expires_at)")
}
