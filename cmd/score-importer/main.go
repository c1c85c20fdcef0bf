// cmd/score-importer imports a scores workbook straight into the
// database, for backfilling history without going through the API.
//
// Usage:
//
//	score-importer -file scores.xlsx -team a1b2c3 -actor 1 -date 2025-03-02 -type 정기전
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"bowlingmanager/database"
	"bowlingmanager/models"
	"bowlingmanager/services"
	"bowlingmanager/utils"

	"github.com/joho/godotenv"
)

func main() {
	var (
		filePath = flag.String("file", "", "path to the .xlsx workbook")
		teamCode = flag.String("team", "", "team invite code")
		actorID  = flag.Uint("actor", 0, "user id performing the import (must be owner or manager)")
		date     = flag.String("date", "", "game date as YYYY-MM-DD")
		gameType = flag.String("type", models.GameTypeRegular, "game type")
		memo     = flag.String("memo", "", "optional memo for the batch")
	)
	flag.Parse()

	if *filePath == "" || *teamCode == "" || *actorID == 0 || *date == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	gameDate, err := utils.ParseKSTDay(*date)
	if err != nil {
		log.Fatal("Invalid date, expected YYYY-MM-DD:", err)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal("Failed to open workbook:", err)
	}
	defer f.Close()

	rows, unreadable, err := services.ParseScoreSheet(f)
	if err != nil {
		log.Fatal("Failed to parse workbook:", err)
	}
	if unreadable > 0 {
		log.Printf("Skipped %d unreadable rows", unreadable)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	teamService := services.NewTeamService(db)
	scoreService := services.NewScoreService(db, teamService)

	team, err := teamService.GetTeamByCode(*teamCode)
	if err != nil {
		log.Fatal("Team not found:", err)
	}

	result, err := scoreService.BulkImport(team.ID, *actorID, rows, gameDate, *gameType, *memo)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Printf("Imported %d records into %q (%d rows rejected)\n",
		result.Inserted, team.Name, result.Rejected)
}
