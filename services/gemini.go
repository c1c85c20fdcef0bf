// services/gemini.go - AI score extraction via the Gemini REST API
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"bowlingmanager/models"
	"bowlingmanager/utils"

	"gorm.io/gorm"
)

const (
	geminiModel = "gemini-2.5-flash"

	// Token prices in KRW. The daily budget caps club-wide spend; the
	// per-user limit stops one person from draining it.
	inputTokenCostKRW  = 0.00015
	outputTokenCostKRW = 0.0006
	dailyBudgetKRW     = 5000.0
	dailyUserCallLimit = 10
)

const extractionPrompt = `You are reading bowling scores. Extract every participant and their game scores.
Respond with ONLY a JSON array, no prose, in this exact shape:
[{"name": "participant name", "scores": [score1, score2]}]
Scores are integers from 0 to 300. Skip rows you cannot read confidently.`

// GeminiService calls the generative API to turn scoreboard photos and
// pasted spreadsheet text into structured score rows, while enforcing
// the daily cost and per-user call quotas.
type GeminiService struct {
	db      *gorm.DB
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGeminiService(db *gorm.DB) *GeminiService {
	baseURL := os.Getenv("GEMINI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &GeminiService{
		db:      db,
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *GeminiService) Enabled() bool {
	return g.apiKey != ""
}

// ExtractedRow is one participant line the model pulled out of the input.
type ExtractedRow struct {
	Name   string `json:"name"`
	Scores []int  `json:"scores"`
}

// Gemini REST API shapes (request)

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Gemini REST API shapes (response)

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// AnalyzeImage extracts score rows from a photographed scoreboard.
func (g *GeminiService) AnalyzeImage(ctx context.Context, userID uint, imageData []byte, mimeType string) ([]ExtractedRow, error) {
	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
				{Text: extractionPrompt},
			},
		}},
	}
	return g.analyze(ctx, userID, req)
}

// AnalyzeText extracts score rows from pasted free-form text, e.g. a
// spreadsheet region the client could not map to columns on its own.
func (g *GeminiService) AnalyzeText(ctx context.Context, userID uint, text string) ([]ExtractedRow, error) {
	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: extractionPrompt + "\n\nInput:\n" + text},
			},
		}},
	}
	return g.analyze(ctx, userID, req)
}

func (g *GeminiService) analyze(ctx context.Context, userID uint, req geminiRequest) ([]ExtractedRow, error) {
	if !g.Enabled() {
		return nil, badInput("AI analysis is not configured")
	}
	if err := g.checkQuota(userID); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, geminiModel, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("AI request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		// Upstream RESOURCE_EXHAUSTED surfaces the same way as our own quota
		return nil, ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI request failed with status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unexpected AI response: %w", err)
	}

	// Usage is recorded even when the answer turns out unparseable;
	// the tokens were spent either way.
	g.recordUsage(userID, parsed.UsageMetadata.PromptTokenCount, parsed.UsageMetadata.CandidatesTokenCount)

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("AI returned no result")
	}

	return ParseExtractedRows(parsed.Candidates[0].Content.Parts[0].Text)
}

// ParseExtractedRows decodes the model's answer, tolerating the markdown
// code fence Gemini likes to wrap JSON in.
func ParseExtractedRows(raw string) ([]ExtractedRow, error) {
	cleaned := StripCodeFence(raw)
	var rows []ExtractedRow
	if err := json.Unmarshal([]byte(cleaned), &rows); err != nil {
		return nil, fmt.Errorf("could not parse AI result: %w", err)
	}
	return rows, nil
}

// StripCodeFence removes a surrounding ```json ... ``` block if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json")
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// checkQuota rejects the call when today's club-wide budget is spent or
// the user hit their daily call limit. Days follow the KST calendar.
func (g *GeminiService) checkQuota(userID uint) error {
	today := utils.KSTToday()

	var usage models.APIUsage
	if err := g.db.Where("date = ?", today).First(&usage).Error; err == nil {
		if usage.Cost >= dailyBudgetKRW {
			return ErrQuotaExceeded
		}
	}

	var userUsage models.UserAPIUsage
	if err := g.db.Where("user_id = ? AND date = ?", userID, today).First(&userUsage).Error; err == nil {
		if userUsage.Count >= dailyUserCallLimit {
			return ErrQuotaExceeded
		}
	}

	return nil
}

// recordUsage accumulates today's counters. Best-effort; a failed write
// must not fail the user's request.
func (g *GeminiService) recordUsage(userID uint, inputTokens, outputTokens int64) {
	today := utils.KSTToday()
	cost := float64(inputTokens)*inputTokenCostKRW + float64(outputTokens)*outputTokenCostKRW

	_ = g.db.Transaction(func(tx *gorm.DB) error {
		var usage models.APIUsage
		if err := tx.Where(models.APIUsage{Date: today}).FirstOrCreate(&usage).Error; err != nil {
			return err
		}
		if err := tx.Model(&usage).Updates(map[string]interface{}{
			"count":         gorm.Expr("count + 1"),
			"input_tokens":  gorm.Expr("input_tokens + ?", inputTokens),
			"output_tokens": gorm.Expr("output_tokens + ?", outputTokens),
			"cost":          gorm.Expr("cost + ?", cost),
		}).Error; err != nil {
			return err
		}

		var userUsage models.UserAPIUsage
		if err := tx.Where(models.UserAPIUsage{UserID: userID, Date: today}).
			FirstOrCreate(&userUsage).Error; err != nil {
			return err
		}
		return tx.Model(&userUsage).Update("count", gorm.Expr("count + 1")).Error
	})
}

// GetTodayUsage returns today's club-wide usage row for status display.
func (g *GeminiService) GetTodayUsage() (*models.APIUsage, error) {
	var usage models.APIUsage
	err := g.db.Where("date = ?", utils.KSTToday()).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.APIUsage{Date: utils.KSTToday()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}
