package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultScoreModel = "gemini-2.5-flash"

// TrackRecord is the factual input the model scores. All figures come from
// the database; the model only weighs them.
type TrackRecord struct {
	Name                 string
	Position             string
	Department           string
	ObligationsTotal     int64
	ObligationsCompleted int64
	ObligationsOverdue   int64
	KPIsOnTarget         int64
	KPIsTotal            int64
	AttendanceRate       float64
}

type TransparencyClient struct {
	model string
	log   *zap.Logger
}

func NewTransparencyClient(model string, log *zap.Logger) *TransparencyClient {
	if model == "" {
		model = defaultScoreModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TransparencyClient{model: model, log: log}
}

// Score asks Gemini for a 0-100 public-accountability score for the servant's
// track record and parses the numeric reply.
func (c *TransparencyClient) Score(ctx context.Context, tr TrackRecord) (float64, error) {
	start := time.Now()
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		c.log.Warn("transparency client init failed", zap.Error(err))
		return 0, err
	}

	prompt := `You rate the public accountability of a civil servant from their
tracked record. Consider completed versus overdue obligations, KPI attainment,
and attendance. Reply with exactly one number between 0 and 100 wrapped in
dollar signs, e.g. $72$. No other text.`

	facts := fmt.Sprintf(
		"name: %s\nposition: %s\ndepartment: %s\nobligations: %d total, %d completed, %d overdue\nkpis on target: %d of %d\nattendance rate: %.2f",
		tr.Name, tr.Position, tr.Department,
		tr.ObligationsTotal, tr.ObligationsCompleted, tr.ObligationsOverdue,
		tr.KPIsOnTarget, tr.KPIsTotal, tr.AttendanceRate)

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromText(facts),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		c.log.Warn("transparency generate failed", zap.String("model", c.model), zap.Error(err))
		return 0, fmt.Errorf("gemini generate: %w", err)
	}
	rawText := res.Text()
	val, err := ParseScore(rawText)
	if err != nil {
		text := strings.ReplaceAll(rawText, "\n", " ")
		if len(text) > 80 {
			text = text[:80]
		}
		c.log.Warn("transparency parse failed", zap.String("text", text), zap.Error(err))
		return 0, err
	}
	c.log.Info("transparency score",
		zap.String("servant", tr.Name),
		zap.Float64("score", val),
		zap.Duration("took", time.Since(start)))
	return val, nil
}
