package analyzer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/llm"
	"github.com/brandlens-inc/brandlens-engine/pkg/prompts"
)

// analysisTemperature is used for the research prompts.
const analysisTemperature = 0.7

// BrandInfoRequest is the input for the brand profiling stage.
type BrandInfoRequest struct {
	BrandName    string `json:"brandName"`
	BrandWebsite string `json:"brandWebsite"`
	BrandCountry string `json:"brandCountry"`
}

// Competitor is one competitor surfaced by the profiling stage.
type Competitor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BrandInfo is the result payload of the brand profiling stage.
type BrandInfo struct {
	Description string       `json:"description"`
	Industry    string       `json:"industry"`
	Competitors []Competitor `json:"competitors"`
	Name        string       `json:"name"`
}

// BrandInfoService profiles a brand step by step: description, industry,
// competitors, then a canonical name extracted from the description.
type BrandInfoService struct {
	client llm.LLMClient
	logger *zap.Logger
}

// NewBrandInfoService creates a new BrandInfoService.
func NewBrandInfoService(client llm.LLMClient, logger *zap.Logger) *BrandInfoService {
	return &BrandInfoService{
		client: client,
		logger: logger,
	}
}

// Analyze runs the profiling pipeline, emitting a step event before each
// stage and a final complete event carrying the result. On failure it emits
// a single error event and returns the error; partial results are discarded.
func (s *BrandInfoService) Analyze(ctx context.Context, req *BrandInfoRequest, emit EmitFunc) (*BrandInfo, error) {
	if req.BrandName == "" || req.BrandWebsite == "" {
		err := fmt.Errorf("brandName and brandWebsite are required")
		emit(errorEvent(err.Error()))
		return nil, err
	}

	country := req.BrandCountry
	if country == "" {
		country = "world"
	}

	emit(statusEvent("Starting brand analysis...", StepInit))

	emit(statusEvent("Getting brand description...", StepDescription))
	description, err := s.describe(ctx, req.BrandName, req.BrandWebsite, country)
	if err != nil {
		return nil, s.fail(emit, err)
	}

	emit(statusEvent("Analyzing industry...", StepIndustry))
	industry, err := s.classifyIndustry(ctx, req.BrandName, req.BrandWebsite, description, country)
	if err != nil {
		return nil, s.fail(emit, err)
	}

	emit(statusEvent("Finding competitors...", StepCompetitors))
	competitors := s.findCompetitors(ctx, req.BrandName, req.BrandWebsite, description, industry, country)

	emit(statusEvent("Extracting brand name...", StepName))
	name, err := s.extractName(ctx, description)
	if err != nil {
		return nil, s.fail(emit, err)
	}

	result := &BrandInfo{
		Description: description,
		Industry:    industry,
		Competitors: competitors,
		Name:        name,
	}

	emit(StreamEvent{Status: "Analysis complete!", Step: StepComplete, Result: result})

	return result, nil
}

func (s *BrandInfoService) fail(emit EmitFunc, err error) error {
	wrapped := fmt.Errorf("brand analysis error: %w", err)
	s.logger.Error("Brand profiling failed", zap.Error(err))
	emit(errorEvent(wrapped.Error()))
	return wrapped
}

// describe fetches the company description. A response that is not the
// expected JSON is used raw; an empty answer falls back to a generic
// description so the wizard can continue.
func (s *BrandInfoService) describe(ctx context.Context, brandName, brandWebsite, country string) (string, error) {
	prompt := prompts.BuildBrandDescriptionPrompt(brandName, brandWebsite, country)
	response, err := generate(ctx, s.client, prompt, prompts.BrandDescriptionSystem, analysisTemperature)
	if err != nil {
		return "", fmt.Errorf("failed to get brand description: %w", err)
	}

	parsed, parseErr := llm.ParseJSONResponse[struct {
		Description string `json:"description"`
	}](response)
	if parseErr == nil && strings.TrimSpace(parsed.Description) != "" {
		return parsed.Description, nil
	}

	trimmed := strings.TrimSpace(response)
	if trimmed != "" && strings.ToUpper(trimmed) != "NULL" && parseErr != nil {
		return trimmed, nil
	}

	return fmt.Sprintf(
		"%s is a business operating in %s with their website at %s. The company provides digital services and solutions to their customers in the local market.",
		brandName, country, brandWebsite), nil
}

func (s *BrandInfoService) classifyIndustry(ctx context.Context, brandName, brandWebsite, description, country string) (string, error) {
	prompt := prompts.BuildBrandIndustryPrompt(brandName, brandWebsite, description, country)
	response, err := generate(ctx, s.client, prompt, prompts.BrandDescriptionSystem, analysisTemperature)
	if err != nil {
		return "", fmt.Errorf("failed to get brand industry: %w", err)
	}

	industry := strings.TrimSpace(response)
	if industry == "" {
		return "", fmt.Errorf("empty industry response")
	}

	return industry, nil
}

// findCompetitors never fails the pipeline; an unusable answer yields an
// empty competitor list.
func (s *BrandInfoService) findCompetitors(ctx context.Context, brandName, brandWebsite, description, industry, country string) []Competitor {
	prompt := prompts.BuildBrandCompetitorsPrompt(brandName, brandWebsite, description, industry, country)
	response, err := generate(ctx, s.client, prompt, prompts.BrandDescriptionSystem, analysisTemperature)
	if err != nil {
		s.logger.Warn("Competitor lookup failed", zap.Error(err))
		return []Competitor{}
	}

	parsed, err := llm.ParseJSONResponse[struct {
		Competitors []Competitor `json:"competitors"`
	}](response)
	if err != nil {
		s.logger.Warn("Failed to parse competitors response", zap.Error(err))
		return []Competitor{}
	}

	if parsed.Competitors == nil {
		return []Competitor{}
	}
	return parsed.Competitors
}

// extractName pulls the canonical brand name from the description. When the
// model cannot produce one, the first capitalized word of the description
// serves as a stand-in.
func (s *BrandInfoService) extractName(ctx context.Context, description string) (string, error) {
	prompt := prompts.BuildBrandNamePrompt(description)
	response, err := generate(ctx, s.client, prompt, prompts.BrandDescriptionSystem, analysisTemperature)
	if err != nil {
		return "", fmt.Errorf("failed to get brand name: %w", err)
	}

	parsed, parseErr := llm.ParseJSONResponse[struct {
		Name string `json:"name"`
	}](response)
	if parseErr == nil && strings.TrimSpace(parsed.Name) != "" {
		return parsed.Name, nil
	}

	trimmed := strings.TrimSpace(response)
	if trimmed != "" && strings.ToUpper(trimmed) != "NULL" && parseErr != nil {
		return trimmed, nil
	}

	return nameFromDescription(description), nil
}

var nameStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true, "that": true,
}

func nameFromDescription(description string) string {
	for _, word := range strings.Fields(description) {
		if len(word) > 2 && word[0] >= 'A' && word[0] <= 'Z' && !nameStopWords[strings.ToLower(word)] {
			return strings.Trim(word, ".,!?:;")
		}
	}
	return "Business Entity"
}
