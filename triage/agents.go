// Package triage routes chat requests through a hierarchy of chat completion
// agents: a triage agent that delegates to billing and refund specialists,
// and a plugin-enabled sample agent.
package triage

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/papercomputeco/triage/pkg/agent"
)

// Agent names and instructions.
const (
	BillingAgentName = "BillingAgent"
	RefundAgentName  = "RefundAgent"
	TriageAgentName  = "TriageAgent"

	billingInstructions = "You handle billing issues like charges, payment methods, cycles, fees, " +
		"discrepancies, and payment failures."
	refundInstructions = "Assist users with refund inquiries, including eligibility, policies, " +
		"processing, and status updates."
	triageInstructions = "Evaluate user requests and forward them to BillingAgent or RefundAgent " +
		"for targeted assistance. Provide the full answer to the user containing any information " +
		"from the agents."
)

// agentCache holds agents built on first use for the life of the process.
// Concurrent first requests share a single build.
type agentCache struct {
	group  singleflight.Group
	mu     sync.RWMutex
	agents map[string]*agent.ChatCompletionAgent
}

func newAgentCache() *agentCache {
	return &agentCache{agents: make(map[string]*agent.ChatCompletionAgent)}
}

func (c *agentCache) get(key string, build func() (*agent.ChatCompletionAgent, error)) (*agent.ChatCompletionAgent, error) {
	c.mu.RLock()
	a, ok := c.agents[key]
	c.mu.RUnlock()
	if ok {
		return a, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.agents[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		built, err := build()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.agents[key] = built
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*agent.ChatCompletionAgent), nil
}

// buildTriageAgent constructs the billing and refund specialists and a
// triage agent that can call either of them.
func buildTriageAgent(service agent.Completer, maxAutoInvoke int, logger *zap.Logger) (*agent.ChatCompletionAgent, error) {
	billing, err := agent.New(agent.Config{
		Name:         BillingAgentName,
		Instructions: billingInstructions,
		Service:      service,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	refund, err := agent.New(agent.Config{
		Name:         RefundAgentName,
		Instructions: refundInstructions,
		Service:      service,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	return agent.New(agent.Config{
		Name:          TriageAgentName,
		Instructions:  triageInstructions,
		Service:       service,
		Functions:     []agent.Function{billing.AsFunction(), refund.AsFunction()},
		MaxAutoInvoke: maxAutoInvoke,
		Logger:        logger,
	})
}
