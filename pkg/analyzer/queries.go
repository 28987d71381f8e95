package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/jsonutil"
	"github.com/brandlens-inc/brandlens-engine/pkg/llm"
	"github.com/brandlens-inc/brandlens-engine/pkg/prompts"
)

// QueryGenRequest is the input for the query generation stage.
type QueryGenRequest struct {
	BrandName        string `json:"brandName"`
	BrandCountry     string `json:"brandCountry"`
	BrandDescription string `json:"brandDescription"`
	BrandIndustry    string `json:"brandIndustry"`
	TotalQueries     int    `json:"totalQueries"`
}

// GeneratedQuery is one search query with its topic label.
type GeneratedQuery struct {
	Topic string `json:"topic"`
	Query string `json:"query"`
}

// UnmarshalJSON tolerates models that emit numeric or boolean topic values.
func (q *GeneratedQuery) UnmarshalJSON(data []byte) error {
	var raw struct {
		Topic json.RawMessage `json:"topic"`
		Query json.RawMessage `json:"query"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Topic = jsonutil.FlexibleStringValue(raw.Topic)
	q.Query = jsonutil.FlexibleStringValue(raw.Query)
	return nil
}

// QueryGenService generates the search queries a GEO run tests.
type QueryGenService struct {
	client llm.LLMClient
	logger *zap.Logger
}

// NewQueryGenService creates a new QueryGenService.
func NewQueryGenService(client llm.LLMClient, logger *zap.Logger) *QueryGenService {
	return &QueryGenService{
		client: client,
		logger: logger,
	}
}

// Generate produces up to req.TotalQueries queries, deduplicated by
// normalized topic. Events mark init, generating, and complete.
func (s *QueryGenService) Generate(ctx context.Context, req *QueryGenRequest, emit EmitFunc) ([]GeneratedQuery, error) {
	if req.BrandName == "" || req.BrandDescription == "" || req.BrandIndustry == "" {
		err := fmt.Errorf("brandName, brandDescription, and brandIndustry are required")
		emit(errorEvent(err.Error()))
		return nil, err
	}

	total := req.TotalQueries
	if total <= 0 {
		total = 10
	}

	emit(statusEvent("Preparing query generation...", StepInit))
	emit(statusEvent(fmt.Sprintf("Generating %d coherent queries...", total), StepGenerating))

	prompt := prompts.BuildQueryGenerationPrompt(
		req.BrandName, req.BrandCountry, req.BrandDescription, req.BrandIndustry, total)

	response, err := generate(ctx, s.client, prompt, prompts.BrandDescriptionSystem, analysisTemperature)
	if err != nil {
		wrapped := fmt.Errorf("failed to generate queries: %w", err)
		emit(errorEvent(wrapped.Error()))
		return nil, wrapped
	}

	parsed, err := llm.ParseJSONResponse[struct {
		Queries []GeneratedQuery `json:"queries"`
	}](response)
	if err != nil {
		wrapped := fmt.Errorf("failed to parse generated queries: %w", err)
		emit(errorEvent(wrapped.Error()))
		return nil, wrapped
	}

	queries := dedupeByTopic(parsed.Queries, total)
	if len(queries) == 0 {
		wrapped := fmt.Errorf("no usable queries generated")
		emit(errorEvent(wrapped.Error()))
		return nil, wrapped
	}

	s.logger.Info("Generated search queries",
		zap.Int("requested", total),
		zap.Int("returned", len(queries)))

	emit(StreamEvent{
		Status: "Query generation complete!",
		Step:   StepComplete,
		Result: map[string]any{"queries": queries},
	})

	return queries, nil
}

// dedupeByTopic drops queries whose topic reduces to one already seen.
// Topics are lowercased and singularized so "integrations" and "Integration"
// collapse into one slot.
func dedupeByTopic(queries []GeneratedQuery, limit int) []GeneratedQuery {
	seen := make(map[string]bool)
	var out []GeneratedQuery

	for _, q := range queries {
		if strings.TrimSpace(q.Query) == "" {
			continue
		}

		key := normalizeTopic(q.Topic)
		if key != "" && seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, q)
		if len(out) == limit {
			break
		}
	}

	return out
}

func normalizeTopic(topic string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(topic)))
	for i, w := range words {
		words[i] = inflection.Singular(w)
	}
	return strings.Join(words, " ")
}
