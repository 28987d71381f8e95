package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBrandDescriptionPrompt(t *testing.T) {
	prompt := BuildBrandDescriptionPrompt("Acme", "acme.com", "germany")

	assert.Contains(t, prompt, `"Acme"`)
	assert.Contains(t, prompt, `"acme.com"`)
	assert.Contains(t, prompt, "germany")
	assert.Contains(t, prompt, `{"description": "..."}`)
}

func TestBuildBrandDescriptionPrompt_WorldOmitsCountry(t *testing.T) {
	prompt := BuildBrandDescriptionPrompt("Acme", "acme.com", "world")

	assert.NotContains(t, prompt, "world")
}

func TestBuildQueryGenerationPrompt(t *testing.T) {
	prompt := BuildQueryGenerationPrompt("Acme", "world", "A CRM vendor.", "CRM software", 10)

	assert.Contains(t, prompt, "Generate 10 search queries")
	assert.Contains(t, prompt, "CRM software")
	assert.Contains(t, prompt, "A CRM vendor.")
	assert.Contains(t, prompt, `{"queries": [{"topic": "...", "query": "..."}]}`)
	// Queries must not name the brand
	assert.Contains(t, prompt, "must NOT name the brand")
}

func TestBuildPositioningAnalysisPrompt(t *testing.T) {
	prompt := BuildPositioningAnalysisPrompt(
		"Salesforce and HubSpot are popular choices.",
		"Acme",
		[]string{"Salesforce", "HubSpot"},
	)

	assert.Contains(t, prompt, `"Acme"`)
	assert.Contains(t, prompt, "Salesforce, HubSpot")
	assert.Contains(t, prompt, "brand_mentioned")
	assert.Contains(t, prompt, "competitors_mentioned")
	// The response under analysis is embedded verbatim
	assert.True(t, strings.Contains(prompt, "Salesforce and HubSpot are popular choices."))
}
