package analyzer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/llm"
	"github.com/brandlens-inc/brandlens-engine/pkg/prompts"
)

// positioningTemperature keeps the positioning judgments near-deterministic.
const positioningTemperature = 0.1

// responsePreviewLimit bounds stored LLM responses.
const responsePreviewLimit = 500

// PositioningRequest is the input for the GEO positioning stage.
type PositioningRequest struct {
	BrandName   string   `json:"brandName"`
	Competitors []string `json:"competitors"`
	Queries     []string `json:"queries"`
	Models      []string `json:"models"`
}

// CompetitorMention records one competitor surfacing in an LLM answer.
type CompetitorMention struct {
	Name      string `json:"name"`
	Position  *int   `json:"position"`
	Sentiment string `json:"sentiment"`
}

// QueryPerformance is the positioning outcome for one query on one model.
type QueryPerformance struct {
	Query                string              `json:"query"`
	Model                string              `json:"model"`
	LLMResponse          string              `json:"llm_response"`
	BrandMentioned       bool                `json:"brand_mentioned"`
	MentionPosition      *int                `json:"mention_position"`
	Sentiment            string              `json:"sentiment"`
	Context              string              `json:"context"`
	CompetitorsMentioned []CompetitorMention `json:"competitors_mentioned"`
	ResponseLength       int                 `json:"response_length"`
}

// SentimentDistribution holds per-sentiment percentages of brand mentions.
type SentimentDistribution struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// ModelPerformance aggregates positioning per tested model.
type ModelPerformance struct {
	QueriesTested         int                   `json:"queries_tested"`
	MentionRate           float64               `json:"mention_rate"`
	AveragePosition       float64               `json:"average_position"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
}

// CompetitorSummary aggregates how often a competitor surfaced.
// SentimentCounts are raw counts, not percentages.
type CompetitorSummary struct {
	Mentions        int            `json:"mentions"`
	AveragePosition float64        `json:"average_position"`
	Positions       []int          `json:"positions"`
	SentimentCounts map[string]int `json:"sentiment_distribution"`
}

// OverallMetrics are the headline numbers of a GEO run. Rates and
// positioning values are percentages.
type OverallMetrics struct {
	MentionRate            float64 `json:"mention_rate"`
	PositivePositioning    float64 `json:"positive_positioning"`
	NeutralPositioning     float64 `json:"neutral_positioning"`
	NegativePositioning    float64 `json:"negative_positioning"`
	AverageMentionPosition float64 `json:"average_mention_position"`
	BrandVisibilityScore   float64 `json:"brand_visibility_score"`
}

// PositioningResult is the full outcome of a GEO positioning run.
type PositioningResult struct {
	BrandName               string                        `json:"brand_name"`
	TotalQueriesTested      int                           `json:"total_queries_tested"`
	LLMModelsTested         []string                      `json:"llm_models_tested"`
	QueryPerformance        []QueryPerformance            `json:"query_performance"`
	ModelPerformance        map[string]*ModelPerformance  `json:"model_performance"`
	CompetitorAnalysis      map[string]*CompetitorSummary `json:"competitor_analysis"`
	OverallMetrics          OverallMetrics                `json:"overall_metrics"`
	OptimizationSuggestions []string                      `json:"optimization_suggestions,omitempty"`
}

// positioningAnalysis is the JSON shape the analysis model must return.
type positioningAnalysis struct {
	BrandMentioned       bool                `json:"brand_mentioned"`
	MentionPosition      *int                `json:"mention_position"`
	Sentiment            string              `json:"sentiment"`
	Context              string              `json:"context"`
	CompetitorsMentioned []CompetitorMention `json:"competitors_mentioned"`
}

// PositioningService runs the GEO positioning tests: every query is put to
// every model, and each answer is judged by the analysis model for brand
// mentions, position, and sentiment.
type PositioningService struct {
	factory       llm.LLMClientFactory
	analysisModel string
	logger        *zap.Logger
}

// NewPositioningService creates a new PositioningService. analysisModel is
// the model that judges the answers, independent of the models under test.
func NewPositioningService(factory llm.LLMClientFactory, analysisModel string, logger *zap.Logger) *PositioningService {
	return &PositioningService{
		factory:       factory,
		analysisModel: analysisModel,
		logger:        logger,
	}
}

// Run executes the positioning tests. A model that cannot answer a query
// does not abort the run; the failure is recorded as a non-mention. Events
// mark init (progress 0), analysis_complete (85), suggestions (95), and
// complete (100, carrying the result).
func (s *PositioningService) Run(ctx context.Context, req *PositioningRequest, emit EmitFunc) (*PositioningResult, error) {
	if req.BrandName == "" || len(req.Queries) == 0 {
		err := fmt.Errorf("brandName and queries are required")
		emit(errorEvent(err.Error()))
		return nil, err
	}

	models := req.Models
	if len(models) == 0 {
		models = []string{"gpt-4o-mini"}
	}

	emit(progressEvent(
		fmt.Sprintf("Starting GEO analysis for %d queries across %d LLM models...", len(req.Queries), len(models)),
		StepInit, 0))

	analysisClient, err := s.factory.CreateForModel(s.analysisModel)
	if err != nil {
		wrapped := fmt.Errorf("failed to create analysis client: %w", err)
		emit(errorEvent(wrapped.Error()))
		return nil, wrapped
	}

	result := &PositioningResult{
		BrandName:          req.BrandName,
		TotalQueriesTested: len(req.Queries),
		LLMModelsTested:    models,
		QueryPerformance:   []QueryPerformance{},
		ModelPerformance:   make(map[string]*ModelPerformance),
		CompetitorAnalysis: make(map[string]*CompetitorSummary),
	}

	totalMentions := 0
	var mentionPositions []int
	sentimentTotals := map[string]int{"positive": 0, "neutral": 0, "negative": 0}

	for _, model := range models {
		perf := &ModelPerformance{QueriesTested: len(req.Queries)}
		result.ModelPerformance[model] = perf

		modelMentions := 0
		var modelPositions []int
		modelSentiments := map[string]int{"positive": 0, "neutral": 0, "negative": 0}

		client, err := s.factory.CreateForModel(model)
		if err != nil {
			s.logger.Warn("Skipping untestable model",
				zap.String("model", model),
				zap.Error(err))
			continue
		}

		for _, query := range req.Queries {
			response := s.askModel(ctx, client, query)
			analysis := s.judgeResponse(ctx, analysisClient, response, req.BrandName, req.Competitors)

			result.QueryPerformance = append(result.QueryPerformance, QueryPerformance{
				Query:                query,
				Model:                model,
				LLMResponse:          truncateResponse(response),
				BrandMentioned:       analysis.BrandMentioned,
				MentionPosition:      analysis.MentionPosition,
				Sentiment:            analysis.Sentiment,
				Context:              analysis.Context,
				CompetitorsMentioned: analysis.CompetitorsMentioned,
				ResponseLength:       len(strings.Fields(response)),
			})

			if analysis.BrandMentioned {
				totalMentions++
				modelMentions++

				if analysis.MentionPosition != nil {
					mentionPositions = append(mentionPositions, *analysis.MentionPosition)
					modelPositions = append(modelPositions, *analysis.MentionPosition)
				}

				sentimentTotals[analysis.Sentiment]++
				modelSentiments[analysis.Sentiment]++
			}
		}

		if len(req.Queries) > 0 {
			perf.MentionRate = float64(modelMentions) / float64(len(req.Queries)) * 100
		}
		if len(modelPositions) > 0 {
			perf.AveragePosition = average(modelPositions)
		}
		if modelMentions > 0 {
			perf.SentimentDistribution = SentimentDistribution{
				Positive: float64(modelSentiments["positive"]) / float64(modelMentions) * 100,
				Neutral:  float64(modelSentiments["neutral"]) / float64(modelMentions) * 100,
				Negative: float64(modelSentiments["negative"]) / float64(modelMentions) * 100,
			}
		}
	}

	totalPossible := len(req.Queries) * len(models)
	if totalPossible > 0 {
		rate := float64(totalMentions) / float64(totalPossible) * 100
		result.OverallMetrics.MentionRate = rate
		result.OverallMetrics.BrandVisibilityScore = rate
	}
	if len(mentionPositions) > 0 {
		result.OverallMetrics.AverageMentionPosition = average(mentionPositions)
	}
	if totalMentions > 0 {
		result.OverallMetrics.PositivePositioning = float64(sentimentTotals["positive"]) / float64(totalMentions) * 100
		result.OverallMetrics.NeutralPositioning = float64(sentimentTotals["neutral"]) / float64(totalMentions) * 100
		result.OverallMetrics.NegativePositioning = float64(sentimentTotals["negative"]) / float64(totalMentions) * 100
	}

	s.summarizeCompetitors(result)

	emit(progressEvent("GEO analysis computation complete!", StepAnalysisComplete, 85))

	emit(progressEvent("Generating optimization suggestions...", StepSuggestions, 95))
	result.OptimizationSuggestions = OptimizationSuggestions(result)

	complete := progressEvent("GEO Analysis complete!", StepComplete, 100)
	complete.Result = result
	emit(complete)

	return result, nil
}

// askModel returns the model's answer, or an error placeholder text when the
// model cannot answer. The placeholder flows through judging as an ordinary
// non-mention.
func (s *PositioningService) askModel(ctx context.Context, client llm.LLMClient, query string) string {
	response, err := generate(ctx, client, query, "", analysisTemperature)
	if err != nil || strings.TrimSpace(response) == "" {
		s.logger.Warn("Model failed to answer query",
			zap.String("model", client.GetModel()),
			zap.Error(err))
		return fmt.Sprintf("Error: could not get response from %s", client.GetModel())
	}
	return response
}

// judgeResponse asks the analysis model how the brand is positioned in the
// answer. When judging fails, a case-insensitive substring check stands in.
func (s *PositioningService) judgeResponse(ctx context.Context, client llm.LLMClient, response, brandName string, competitors []string) positioningAnalysis {
	prompt := prompts.BuildPositioningAnalysisPrompt(response, brandName, competitors)

	raw, err := generate(ctx, client, prompt, "", positioningTemperature)
	if err == nil {
		if analysis, parseErr := llm.ParseJSONResponse[positioningAnalysis](raw); parseErr == nil {
			analysis.Sentiment = normalizeSentiment(analysis.Sentiment)
			if analysis.CompetitorsMentioned == nil {
				analysis.CompetitorsMentioned = []CompetitorMention{}
			}
			return analysis
		}
	}

	s.logger.Warn("Positioning judgment failed, using fallback", zap.Error(err))

	mentioned := strings.Contains(strings.ToLower(response), strings.ToLower(brandName))
	var position *int
	if mentioned {
		first := 1
		position = &first
	}

	return positioningAnalysis{
		BrandMentioned:       mentioned,
		MentionPosition:      position,
		Sentiment:            "neutral",
		Context:              "automatic analysis failed",
		CompetitorsMentioned: []CompetitorMention{},
	}
}

func (s *PositioningService) summarizeCompetitors(result *PositioningResult) {
	for _, perf := range result.QueryPerformance {
		for _, comp := range perf.CompetitorsMentioned {
			summary, ok := result.CompetitorAnalysis[comp.Name]
			if !ok {
				summary = &CompetitorSummary{
					Positions:       []int{},
					SentimentCounts: map[string]int{"positive": 0, "neutral": 0, "negative": 0},
				}
				result.CompetitorAnalysis[comp.Name] = summary
			}

			summary.Mentions++
			if comp.Position != nil {
				summary.Positions = append(summary.Positions, *comp.Position)
			}
			if comp.Sentiment != "" {
				summary.SentimentCounts[normalizeSentiment(comp.Sentiment)]++
			}
		}
	}

	for _, summary := range result.CompetitorAnalysis {
		if len(summary.Positions) > 0 {
			summary.AveragePosition = average(summary.Positions)
		}
	}
}

// normalizeSentiment maps the judge's answer onto the three-way sentiment
// vocabulary. Anything off-vocabulary counts as neutral.
func normalizeSentiment(sentiment string) string {
	switch strings.ToLower(sentiment) {
	case "positive", "negative":
		return strings.ToLower(sentiment)
	default:
		return "neutral"
	}
}

// truncateResponse shortens a stored answer to the preview limit, counted
// in runes so a multi-byte character is never split.
func truncateResponse(response string) string {
	runes := []rune(response)
	if len(runes) > responsePreviewLimit {
		return string(runes[:responsePreviewLimit]) + "..."
	}
	return response
}

func average(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
