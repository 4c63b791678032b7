package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/resource-finder-geocode/internal/tools"
	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// Assistant answers one-shot questions with the root agent.
type Assistant struct {
	runner         *runner.Runner
	sessionService session.Service
	appName        string
	userID         string
	agentName      string
	logger         *slog.Logger
}

// NewAssistant builds the root agent and an in-memory runner for it.
func NewAssistant(ctx context.Context, cfg Config, geoTools []tools.GeoTool, logger *slog.Logger) (*Assistant, error) {
	cfg.applyDefaults()
	ag, err := NewResourceFinder(ctx, cfg, geoTools)
	if err != nil {
		return nil, err
	}

	sessionSvc := session.InMemoryService()
	run, err := runner.New(runner.Config{
		AppName:        cfg.AppName,
		Agent:          ag,
		SessionService: sessionSvc,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent runner: %w", err)
	}

	return &Assistant{
		runner:         run,
		sessionService: sessionSvc,
		appName:        cfg.AppName,
		userID:         cfg.UserID,
		agentName:      ag.Name(),
		logger:         logger,
	}, nil
}

// Ask runs message through the agent in a fresh session and returns the
// agent's text reply.
func (a *Assistant) Ask(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("empty message")
	}

	sessionID := uuid.New().String()
	_, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   a.appName,
		UserID:    a.userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	a.logger.Debug("agent session started", "session_id", sessionID)

	stream := a.runner.Run(ctx, a.userID, sessionID, genai.NewContentFromText(message, genai.RoleUser), agent.RunConfig{})
	var builder strings.Builder
	var runErr error
	for event, err := range stream {
		if err != nil {
			runErr = err
			continue
		}
		if event == nil || event.Author != a.agentName {
			continue
		}
		builder.WriteString(eventText(event.LLMResponse.Content))
	}

	if builder.Len() == 0 {
		if runErr != nil {
			return "", fmt.Errorf("agent stream: %w", runErr)
		}
		return "", errors.New("empty agent response")
	}
	if runErr != nil {
		a.logger.Warn("agent stream ended with error", "session_id", sessionID, "error", runErr)
	}
	return strings.TrimSpace(builder.String()), nil
}

func eventText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
