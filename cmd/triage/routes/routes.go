// Package routes assembles the agents served by the triage commands.
package routes

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/triage/pkg/agent"
	"github.com/papercomputeco/triage/pkg/azureopenai"
	"github.com/papercomputeco/triage/pkg/config"
	"github.com/papercomputeco/triage/server"
	"github.com/papercomputeco/triage/triage"
)

const (
	TriageRoute = "triage"
	SampleRoute = "sample"
)

// Build validates cfg and returns the triage and sample routes backed by an
// Azure OpenAI client.
func Build(cfg *config.Config, logger *zap.Logger) ([]server.Route, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	completer, err := azureopenai.NewClient(azureopenai.Config{
		Endpoint:   cfg.AzureOpenAI.Endpoint,
		APIKey:     cfg.AzureOpenAI.Key,
		Deployment: cfg.AzureOpenAI.Deployment,
		APIVersion: cfg.AzureOpenAI.Version,
		Timeout:    cfg.AzureOpenAI.Timeout,
	}, logger.Named("azureopenai"))
	if err != nil {
		return nil, fmt.Errorf("could not create completion client: %w", err)
	}

	return BuildWith(cfg, completer, logger)
}

// BuildWith returns the routes backed by completer.
func BuildWith(cfg *config.Config, completer agent.Completer, logger *zap.Logger) ([]server.Route, error) {
	reducer, err := triage.NewReducer(cfg.Sample.Reducer, cfg.Sample.TargetCount, cfg.Sample.ThresholdCount, completer)
	if err != nil {
		return nil, err
	}

	agentsConfig := triage.Config{MaxAutoInvoke: cfg.Agents.MaxAutoInvoke}

	return []server.Route{
		{
			Name:        TriageRoute,
			Description: "Answers billing and refund questions by delegating to specialist agents.",
			Agent:       triage.NewService(agentsConfig, completer, logger),
		},
		{
			Name:        SampleRoute,
			Description: "Greets users and lists the menu.",
			Agent:       triage.NewSampleService(agentsConfig, completer, reducer, logger),
		},
	}, nil
}
