// Package openai implements the AI collaborator contracts against any
// OpenAI-compatible chat completion endpoint. Every method returns an error on
// failure; the application layer converts those into its deterministic
// fallbacks, so nothing here needs to be reliable.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/prepline/v1/internal/domain/commitment"
	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/infrastructure/config"
	"github.com/prepline/v1/internal/ports/outbound"
	"github.com/prepline/v1/pkg/errors"
)

// Client talks to an OpenAI-compatible chat completion API. It implements
// IngredientGenerator, QuantityEstimator, ShelfLifeKnowledge and
// BatchSuggester.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

// NewClient creates a collaborator client from configuration
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		apiKey:      cfg.AI.APIKey,
		baseURL:     strings.TrimRight(cfg.AI.BaseURL, "/"),
		model:       cfg.AI.Model,
		maxTokens:   cfg.AI.MaxTokens,
		temperature: cfg.AI.Temperature,
		client: &http.Client{
			Timeout: cfg.AI.RequestTimeout,
		},
		logger: logger.Named("openai"),
	}
}

// Chat completion API structures
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generate produces a full ingredient list for a meal with no structured
// recipe data, quantities pre-scaled for the requested servings.
func (c *Client) Generate(ctx context.Context, mealName, description string, servings int) ([]outbound.GeneratedIngredient, error) {
	systemPrompt := `You are a professional chef's assistant. Given a meal name, produce the full shopping list of ingredients needed to cook it.

CRITICAL: Respond with ONLY a valid JSON object in this exact format, no other text:
{
  "ingredients": [
    {"name": "ingredient name", "quantity": 1.5, "unit": "lb"}
  ]
}
Quantities must be the TOTAL for the requested number of servings, not per serving. Use common grocery units (lb, oz, cup, tbsp, tsp, whole, clove).`

	userPrompt := fmt.Sprintf("Meal: %s\nServings: %d", mealName, servings)
	if description != "" {
		userPrompt += "\nDescription: " + description
	}

	response, err := c.chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, errors.NewCollaboratorUnavailableError("ingredient generation", err)
	}

	var parsed struct {
		Ingredients []struct {
			Name     string  `json:"name"`
			Quantity float64 `json:"quantity"`
			Unit     string  `json:"unit"`
		} `json:"ingredients"`
	}
	if err := unmarshalJSONBlock(response, &parsed); err != nil {
		return nil, errors.NewCollaboratorUnavailableError("ingredient generation", err)
	}

	ingredients := make([]outbound.GeneratedIngredient, 0, len(parsed.Ingredients))
	for _, ing := range parsed.Ingredients {
		if ing.Name == "" || ing.Quantity <= 0 {
			continue
		}
		ingredients = append(ingredients, outbound.GeneratedIngredient{
			Name:     ing.Name,
			Quantity: decimal.NewFromFloat(ing.Quantity),
			Unit:     ing.Unit,
		})
	}
	if len(ingredients) == 0 {
		return nil, errors.NewCollaboratorUnavailableError("ingredient generation",
			fmt.Errorf("response contained no usable ingredients"))
	}
	return ingredients, nil
}

// Estimate fills in amounts for named ingredients that carry no quantity,
// keyed by lower-cased name and pre-scaled for servings.
func (c *Client) Estimate(ctx context.Context, dishName string, ingredientNames []string, servings int) (map[string]outbound.QuantityEstimate, error) {
	systemPrompt := `You are a professional chef's assistant. Estimate how much of each listed ingredient is needed for the dish.

CRITICAL: Respond with ONLY a valid JSON object in this exact format, no other text:
{
  "estimates": [
    {"name": "ingredient name", "quantity": 1.5, "unit": "cup"}
  ]
}
Include one entry per listed ingredient, using exactly the given names. Quantities must be the TOTAL for the requested number of servings.`

	userPrompt := fmt.Sprintf(
		"Dish: %s\nServings: %d\nIngredients: %s",
		dishName, servings, strings.Join(ingredientNames, ", "),
	)

	response, err := c.chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, errors.NewCollaboratorUnavailableError("quantity estimation", err)
	}

	var parsed struct {
		Estimates []struct {
			Name     string  `json:"name"`
			Quantity float64 `json:"quantity"`
			Unit     string  `json:"unit"`
		} `json:"estimates"`
	}
	if err := unmarshalJSONBlock(response, &parsed); err != nil {
		return nil, errors.NewCollaboratorUnavailableError("quantity estimation", err)
	}

	estimates := make(map[string]outbound.QuantityEstimate, len(parsed.Estimates))
	for _, est := range parsed.Estimates {
		if est.Name == "" || est.Quantity <= 0 {
			continue
		}
		estimates[prepplan.NormalizeIngredientKey(est.Name)] = outbound.QuantityEstimate{
			Quantity: decimal.NewFromFloat(est.Quantity),
			Unit:     est.Unit,
		}
	}
	return estimates, nil
}

// Lookup answers a batched shelf-life query. Incomplete answers are allowed;
// the resolver fills the gaps.
func (c *Client) Lookup(ctx context.Context, names []string, storageHint string) ([]outbound.ShelfLifeEntry, error) {
	systemPrompt := `You are a food-safety expert. For each ingredient, state how long it stays usable and how it should be stored.

CRITICAL: Respond with ONLY a valid JSON object in this exact format, no other text:
{
  "entries": [
    {"ingredient_name": "name", "shelf_life_days": 7, "storage_type": "refrigerated", "notes": "optional note"}
  ]
}
storage_type must be one of: refrigerated, frozen, pantry, counter. Use exactly the given ingredient names.`

	userPrompt := "Ingredients: " + strings.Join(names, ", ")
	if storageHint != "" {
		userPrompt += "\nPreferred storage: " + storageHint
	}

	response, err := c.chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, errors.NewCollaboratorUnavailableError("shelf-life lookup", err)
	}

	var parsed struct {
		Entries []struct {
			IngredientName string `json:"ingredient_name"`
			ShelfLifeDays  int    `json:"shelf_life_days"`
			StorageType    string `json:"storage_type"`
			Notes          string `json:"notes"`
		} `json:"entries"`
	}
	if err := unmarshalJSONBlock(response, &parsed); err != nil {
		return nil, errors.NewCollaboratorUnavailableError("shelf-life lookup", err)
	}

	entries := make([]outbound.ShelfLifeEntry, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		entries = append(entries, outbound.ShelfLifeEntry{
			IngredientName: e.IngredientName,
			ShelfLifeDays:  e.ShelfLifeDays,
			StorageType:    e.StorageType,
			Notes:          e.Notes,
		})
	}
	return entries, nil
}

// Suggest produces batch-cooking advice from the aggregated shopping data and
// the commitment calendar.
func (c *Client) Suggest(ctx context.Context, ingredients []*prepplan.AggregatedIngredient, commitments []commitment.Commitment) (*prepplan.BatchSuggestions, error) {
	systemPrompt := `You are a meal-prep efficiency expert advising a personal chef. Given their aggregated shopping list and cooking calendar, suggest how to batch the preparation work.

CRITICAL: Respond with ONLY a valid JSON object in this exact format, no other text:
{
  "suggestions": [
    {"ingredient": "name", "total_quantity": "4", "unit": "lb", "suggestion": "advice text", "prep_day": "2024-01-15", "meals_covered": 2}
  ],
  "general_tips": ["tip 1", "tip 2"]
}
general_tips must never be empty.`

	var b strings.Builder
	b.WriteString("Aggregated ingredients:\n")
	for _, agg := range ingredients {
		fmt.Fprintf(&b, "- %s: %s %s, used by %d meal(s) between %s and %s\n",
			agg.Name(),
			agg.TotalQuantity().String(),
			agg.Unit(),
			len(agg.MealsUsing()),
			agg.EarliestUse().Format("2006-01-02"),
			agg.LatestUse().Format("2006-01-02"),
		)
	}
	b.WriteString("\nCooking calendar:\n")
	for _, cm := range commitments {
		fmt.Fprintf(&b, "- %s: %s, %d servings\n",
			cm.ServiceDate().Format("2006-01-02"), cm.MealLabel(), cm.Servings())
	}

	response, err := c.chat(ctx, systemPrompt, b.String())
	if err != nil {
		return nil, errors.NewCollaboratorUnavailableError("batch suggestion", err)
	}

	var parsed prepplan.BatchSuggestions
	if err := unmarshalJSONBlock(response, &parsed); err != nil {
		return nil, errors.NewCollaboratorUnavailableError("batch suggestion", err)
	}
	return &parsed, nil
}

// chat makes one chat-completion call and returns the raw message content
func (c *Client) chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	c.logger.Debug("Chat completion succeeded",
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
	)
	return chatResp.Choices[0].Message.Content, nil
}

// unmarshalJSONBlock extracts the JSON object between the first "{" and the
// last "}" of a response. Models sometimes wrap the payload in prose or
// markdown fences.
func unmarshalJSONBlock(response string, out interface{}) error {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no valid JSON found in response")
	}
	return json.Unmarshal([]byte(response[start:end+1]), out)
}
