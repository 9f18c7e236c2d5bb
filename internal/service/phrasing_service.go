package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"complyflow/internal/cache"
	"complyflow/internal/config"
	"complyflow/internal/model"
)

// DefaultTone is used when a caller does not pick a phrasing tone
const DefaultTone = "friendly"

// PhrasingService rewrites catalog prompts into conversational language via
// the Gemini API. Every method degrades to a deterministic fallback when the
// API is unconfigured or fails, so assessments never block on AI.
type PhrasingService struct {
	config  *config.AIConfig
	client  *http.Client
	phrases cache.PhraseCache
}

// NewPhrasingService creates a new phrasing service
func NewPhrasingService(phrases cache.PhraseCache) *PhrasingService {
	cfg := config.DefaultAIConfig()
	return &PhrasingService{
		config:  cfg,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
		phrases: phrases,
	}
}

// RephraseQuestion returns a conversational rendering of a question prompt.
// It rewrites the prompt only; answer-format hints live outside the phrased
// text and are never touched, so reply validation stays intact.
func (s *PhrasingService) RephraseQuestion(ctx context.Context, standardID string, q *model.QuestionNode, tone string) string {
	if tone == "" {
		tone = DefaultTone
	}

	if s.phrases != nil {
		if cached, err := s.phrases.Get(ctx, standardID, q.ID, tone); err == nil && cached != "" {
			return cached
		}
	}

	if !s.config.IsEnabled() {
		return q.Prompt
	}

	response, err := s.callGemini(ctx, s.config.Models.Phrasing, s.buildPhrasingPrompt(q, tone))
	if err != nil {
		return q.Prompt
	}

	var result struct {
		Phrased string `json:"phrased"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil || result.Phrased == "" {
		return q.Prompt
	}

	if s.phrases != nil {
		_ = s.phrases.Set(ctx, standardID, q.ID, tone, result.Phrased)
	}
	return result.Phrased
}

// RecommendRemediation returns remediation suggestions for a gap, falling
// back to the gap's rule-derived recommendations.
func (s *PhrasingService) RecommendRemediation(ctx context.Context, gap model.Gap) []string {
	if !s.config.IsEnabled() {
		return gap.Recommendations
	}

	response, err := s.callGemini(ctx, s.config.Models.Recommend, s.buildRecommendPrompt(gap))
	if err != nil {
		return gap.Recommendations
	}

	var result struct {
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil || len(result.Recommendations) == 0 {
		return gap.Recommendations
	}
	return result.Recommendations
}

// SummarizeReport produces the narrative summary for a gap report
func (s *PhrasingService) SummarizeReport(ctx context.Context, report *model.GapReport) string {
	if !s.config.IsEnabled() {
		return s.mockSummary(report)
	}

	response, err := s.callGemini(ctx, s.config.Models.Report, s.buildReportPrompt(report))
	if err != nil {
		return s.mockSummary(report)
	}

	var result struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil || result.Summary == "" {
		return s.mockSummary(report)
	}
	return result.Summary
}

// callGemini makes a request to the Gemini API
func (s *PhrasingService) callGemini(ctx context.Context, modelName, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(modelName), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// Prompt builders

func (s *PhrasingService) buildPhrasingPrompt(q *model.QuestionNode, tone string) string {
	return fmt.Sprintf(`You are rewording a compliance assessment question for a chat interface. Return ONLY valid JSON matching this schema:
{
  "phrased": "the reworded question"
}

Original question: %s
Category: %s
Tone: %s

Reword the question in a %s, conversational register. Keep the compliance meaning exact. Do not add answer options or format instructions; those are appended separately.`,
		q.Prompt, q.Category, tone, tone)
}

func (s *PhrasingService) buildRecommendPrompt(gap model.Gap) string {
	return fmt.Sprintf(`You are advising on a compliance gap. Return ONLY valid JSON matching this schema:
{
  "recommendations": ["step 1", "step 2"]
}

Gap category: %s
Severity: %s
Description: %s

Suggest 2-4 concrete remediation steps, most impactful first.`,
		gap.Category, gap.Severity, gap.Description)
}

func (s *PhrasingService) buildReportPrompt(report *model.GapReport) string {
	var stats strings.Builder
	for _, cs := range report.CategoryStats {
		fmt.Fprintf(&stats, "- %s: %d answered, %d negative\n", cs.Category, cs.Answered, cs.Negative)
	}

	return fmt.Sprintf(`You are summarizing a compliance assessment report for an officer. Return ONLY valid JSON matching this schema:
{
  "summary": "3-5 sentence executive summary"
}

Standard: %s
Sessions: %d total, %d completed, average progress %.0f%%
Category stats:
%s
Open gaps: %d

Write the summary. Lead with overall posture, then the weakest categories.`,
		report.StandardID, report.TotalSessions, report.CompletedSessions, report.AvgProgress, stats.String(), len(report.TopGaps))
}

func (s *PhrasingService) mockSummary(report *model.GapReport) string {
	if len(report.TopGaps) == 0 {
		return fmt.Sprintf("%d of %d sessions completed with no open compliance gaps.", report.CompletedSessions, report.TotalSessions)
	}
	worst := report.TopGaps[0]
	return fmt.Sprintf("%d of %d sessions completed; %d gap categories open. Highest severity: %s in %s.",
		report.CompletedSessions, report.TotalSessions, len(report.TopGaps), worst.Severity, worst.Category)
}
