// Package agent builds the Emergency Resource Finder assistant: a Gemini
// backed ADK agent that resolves user locations with the geocoding tools.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/resource-finder-geocode/internal/tools"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model used when Config.Model is empty.
	DefaultModel = "gemini-2.5-flash"
	// AgentName identifies the root agent in sessions and events.
	AgentName = "erfcn_root_agent"

	defaultAppName = "resource-finder"
	defaultUserID  = "user"
)

// ErrMissingGoogleAPIKey is returned when no Gemini API key is configured.
var ErrMissingGoogleAPIKey = errors.New("GOOGLE_API_KEY not provided")

// Instruction is the system prompt for the root agent.
const Instruction = `You are the Root Agent for the Emergency Resource Finder & Crisis Navigator.

Your mission is to guide people to nearby emergency resources such as open shelters,
hospitals with available emergency rooms, and food distribution centers.

## Behavior
1. Work out the user's location and what they need.
   - Location may be a street address, a city and state, or coordinates.
   - Resource type is one of: shelter, hospital, food, or unknown.
   - Note constraints such as pet_friendly, dietary restrictions, capacity_needed,
     and max_miles (default 25 miles).
2. Resolve locations with the geocoding tools.
   - Use maps_geocode to turn an address into latitude and longitude.
   - Use maps_reverse_geocode to turn coordinates into a street address the user will recognise.
   - Each tool returns an "ok" flag. When ok is false, read "error" and tell the user
     plainly; ask them for a more specific location instead of guessing.
3. Respond with a short, friendly answer that names the resolved location and suggests
   practical next steps. Include a phone number or safety guidance when relevant.

## Safety
- If the user mentions panic, injury, danger, or distress, start your reply with:
  "If you're in immediate danger, call 911. For mental health crises, call or text 988."
- Never guess medical diagnoses or give medical instructions.
- Only share public, non-personal data.
- When the location is vague, ask for clarification before proceeding.

Be empathetic, calm, concise, and professional.`

const description = "Root agent for Emergency Resource Finder & Crisis Navigator. Handles user intent and resolves locations."

// Config holds the Gemini settings for the agent.
type Config struct {
	// APIKey authenticates to the Gemini API.
	APIKey string
	// Model defaults to DefaultModel.
	Model string
	// AppName and UserID namespace in-memory sessions for Ask.
	AppName string
	UserID  string
}

func (cfg *Config) applyDefaults() {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.AppName == "" {
		cfg.AppName = defaultAppName
	}
	if cfg.UserID == "" {
		cfg.UserID = defaultUserID
	}
}

// generationConfig keeps answers focused without truncating tool-heavy turns.
func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.6),
		TopP:            genai.Ptr[float32](0.9),
		MaxOutputTokens: 32768,
	}
}

// NewResourceFinder returns the root llmagent with the geocoding tools attached.
func NewResourceFinder(ctx context.Context, cfg Config, geoTools []tools.GeoTool) (agent.Agent, error) {
	cfg.applyDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingGoogleAPIKey
	}

	adkTools, err := tools.AsADKTools(geoTools)
	if err != nil {
		return nil, err
	}

	model, err := gemini.NewModel(ctx, cfg.Model, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini model: %w", err)
	}

	return llmagent.New(llmagent.Config{
		Name:                  AgentName,
		Model:                 model,
		Description:           description,
		Instruction:           Instruction,
		Tools:                 adkTools,
		GenerateContentConfig: generationConfig(),
	})
}
