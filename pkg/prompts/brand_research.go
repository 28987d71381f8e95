// Package prompts builds the LLM prompts used by the analysis pipeline.
// Prompts are assembled in code rather than template files so the inputs
// they require are visible at the call site.
package prompts

import (
	"fmt"
	"strings"
)

// BrandDescriptionSystem is the system message for brand profiling prompts.
const BrandDescriptionSystem = "You are a brand analysis expert. Answer concisely and factually. Always respond with valid JSON when asked for JSON."

// BuildBrandDescriptionPrompt asks for a short company description.
// The model must answer with a JSON object {"description": "..."}.
func BuildBrandDescriptionPrompt(brandName, brandWebsite, brandCountry string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf(
		"Describe the company %q with website %q", brandName, brandWebsite))
	if brandCountry != "" && brandCountry != "world" {
		prompt.WriteString(fmt.Sprintf(", operating in %s", brandCountry))
	}
	prompt.WriteString(".\n\n")
	prompt.WriteString("Write 2-4 sentences covering what the company does, who it serves, and what it is known for.\n\n")
	prompt.WriteString("Respond in JSON format:\n")
	prompt.WriteString(`{"description": "..."}`)

	return prompt.String()
}

// BuildBrandIndustryPrompt asks for the company's industry.
// The model answers with a short plain-text industry label.
func BuildBrandIndustryPrompt(brandName, brandWebsite, brandDescription, brandCountry string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf(
		"What industry does the company %q (website %s) operate in?\n\n", brandName, brandWebsite))
	prompt.WriteString("Company description:\n")
	prompt.WriteString(brandDescription)
	prompt.WriteString("\n\n")
	if brandCountry != "" && brandCountry != "world" {
		prompt.WriteString(fmt.Sprintf("The company is based in %s.\n\n", brandCountry))
	}
	prompt.WriteString("Answer with a short industry label only, for example \"B2B SaaS / CRM software\". No explanations.")

	return prompt.String()
}

// BuildBrandCompetitorsPrompt asks for the company's main competitors.
// The model must answer with {"competitors": [{"name": "...", "description": "..."}]}.
func BuildBrandCompetitorsPrompt(brandName, brandWebsite, brandDescription, brandIndustry, brandCountry string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf(
		"List the main competitors of the company %q (website %s).\n\n", brandName, brandWebsite))
	prompt.WriteString(fmt.Sprintf("Industry: %s\n", brandIndustry))
	if brandCountry != "" && brandCountry != "world" {
		prompt.WriteString(fmt.Sprintf("Market: %s\n", brandCountry))
	}
	prompt.WriteString("Description:\n")
	prompt.WriteString(brandDescription)
	prompt.WriteString("\n\n")
	prompt.WriteString("Return 5-8 direct competitors. Respond in JSON format:\n")
	prompt.WriteString(`{"competitors": [{"name": "...", "description": "one sentence"}]}`)

	return prompt.String()
}

// BuildBrandNamePrompt asks for the canonical brand name given a description.
// The model must answer with {"name": "..."}.
func BuildBrandNamePrompt(brandDescription string) string {
	var prompt strings.Builder

	prompt.WriteString("Extract the canonical brand name from the following company description.\n\n")
	prompt.WriteString(brandDescription)
	prompt.WriteString("\n\nRespond in JSON format:\n")
	prompt.WriteString(`{"name": "..."}`)

	return prompt.String()
}

// BuildQueryGenerationPrompt asks for search queries a potential customer
// would put to an AI assistant. The model must answer with
// {"queries": [{"topic": "...", "query": "..."}]}.
func BuildQueryGenerationPrompt(brandName, brandCountry, brandDescription, brandIndustry string, totalQueries int) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf(
		"Generate %d search queries that a potential customer of a company like %q might ask an AI assistant.\n\n",
		totalQueries, brandName))
	prompt.WriteString(fmt.Sprintf("Industry: %s\n", brandIndustry))
	if brandCountry != "" && brandCountry != "world" {
		prompt.WriteString(fmt.Sprintf("Market: %s\n", brandCountry))
	}
	prompt.WriteString("Company description:\n")
	prompt.WriteString(brandDescription)
	prompt.WriteString("\n\n")
	prompt.WriteString("Rules:\n")
	prompt.WriteString("- Queries must NOT name the brand itself; they express the underlying need.\n")
	prompt.WriteString("- Cover distinct topics: recommendations, comparisons, how-to-choose, pricing, alternatives.\n")
	prompt.WriteString("- Each query gets a short topic label.\n\n")
	prompt.WriteString("Respond in JSON format:\n")
	prompt.WriteString(`{"queries": [{"topic": "...", "query": "..."}]}`)

	return prompt.String()
}

// BuildPositioningAnalysisPrompt asks whether and how a brand is mentioned
// inside an LLM answer. The model must answer with the positioning JSON
// object consumed by the GEO aggregation.
func BuildPositioningAnalysisPrompt(response, brandName string, competitors []string) string {
	var prompt strings.Builder

	prompt.WriteString("Analyze the following text response and determine:\n")
	prompt.WriteString(fmt.Sprintf("1. Is the brand %q mentioned? (yes/no)\n", brandName))
	prompt.WriteString("2. If mentioned, what position in the response (1=first mention, 2=second, etc.)?\n")
	prompt.WriteString(fmt.Sprintf("3. What is the sentiment toward %q? (positive/neutral/negative)\n", brandName))
	prompt.WriteString("4. What is the context of the mention? (recommendation, comparison, criticism, etc.)\n")
	prompt.WriteString(fmt.Sprintf("5. Which of these competitors are mentioned: %s\n\n", strings.Join(competitors, ", ")))
	prompt.WriteString("Text to analyze:\n")
	prompt.WriteString(response)
	prompt.WriteString("\n\nRespond in JSON format:\n")
	prompt.WriteString(`{
  "brand_mentioned": true,
  "mention_position": 1,
  "sentiment": "positive",
  "context": "brief description",
  "competitors_mentioned": [
    {"name": "competitor", "position": 1, "sentiment": "neutral"}
  ]
}`)

	return prompt.String()
}
