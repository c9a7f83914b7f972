// ABOUTME: Resource-specific clients layering the backend's sub-resource routes over the generic Client.
// ABOUTME: Set bundles the agent, tool, framework and swarm clients for one backend.
package client

import (
	"context"
	"net/http"
)

// AgentClient manages agents and their tool and relationship sub-resources.
type AgentClient struct {
	*Client
}

// NewAgentClient returns a client for /api/agents.
func NewAgentClient(baseURL string, opts ...Option) *AgentClient {
	return &AgentClient{Client: New(baseURL, Agents, opts...)}
}

// AssignTool attaches a tool to the agent. data usually carries {"id": toolID}.
func (c *AgentClient) AssignTool(ctx context.Context, agentID string, data Record) (Record, error) {
	var out Record
	err := c.do(ctx, http.MethodPost, c.itemURL(agentID, "tools"), data, &out)
	return out, err
}

// RemoveTool detaches a tool from the agent.
func (c *AgentClient) RemoveTool(ctx context.Context, agentID string, data Record) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(agentID, "tools"), data, nil)
}

// Tools lists the tools attached to the agent.
func (c *AgentClient) Tools(ctx context.Context, agentID string) ([]Record, error) {
	var out []Record
	err := c.do(ctx, http.MethodGet, c.itemURL(agentID, "tools"), nil, &out)
	return out, err
}

// AddRelationship records a relationship originating at the agent. data
// carries relationship_type and target_agent_id.
func (c *AgentClient) AddRelationship(ctx context.Context, agentID string, data Record) (Record, error) {
	var out Record
	err := c.do(ctx, http.MethodPost, c.itemURL(agentID, "relationships"), data, &out)
	return out, err
}

// Relationships lists the relationships of the agent.
func (c *AgentClient) Relationships(ctx context.Context, agentID string) ([]Record, error) {
	var out []Record
	err := c.do(ctx, http.MethodGet, c.itemURL(agentID, "relationships"), nil, &out)
	return out, err
}

// RemoveRelationship drops every relationship between the agent and relatedID.
func (c *AgentClient) RemoveRelationship(ctx context.Context, agentID, relatedID string) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(agentID, "relationships", relatedID), nil, nil)
}

// FrameworkClient manages frameworks and the swarms and tools they contain.
type FrameworkClient struct {
	*Client
}

// NewFrameworkClient returns a client for /api/frameworks.
func NewFrameworkClient(baseURL string, opts ...Option) *FrameworkClient {
	return &FrameworkClient{Client: New(baseURL, Frameworks, opts...)}
}

// AddSwarm attaches a swarm to the framework.
func (c *FrameworkClient) AddSwarm(ctx context.Context, frameworkID string, data Record) (Record, error) {
	var out Record
	err := c.do(ctx, http.MethodPost, c.itemURL(frameworkID, "swarms"), data, &out)
	return out, err
}

// RemoveSwarm detaches a swarm from the framework.
func (c *FrameworkClient) RemoveSwarm(ctx context.Context, frameworkID string, data Record) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(frameworkID, "swarms"), data, nil)
}

// AddTool attaches a tool to the framework.
func (c *FrameworkClient) AddTool(ctx context.Context, frameworkID string, data Record) (Record, error) {
	var out Record
	err := c.do(ctx, http.MethodPost, c.itemURL(frameworkID, "tools"), data, &out)
	return out, err
}

// SwarmClient manages swarms and their agent membership.
type SwarmClient struct {
	*Client
}

// NewSwarmClient returns a client for /api/swarms.
func NewSwarmClient(baseURL string, opts ...Option) *SwarmClient {
	return &SwarmClient{Client: New(baseURL, Swarms, opts...)}
}

// AddAgent makes an agent a member of the swarm.
func (c *SwarmClient) AddAgent(ctx context.Context, swarmID string, data Record) (Record, error) {
	var out Record
	err := c.do(ctx, http.MethodPost, c.itemURL(swarmID, "agents"), data, &out)
	return out, err
}

// RemoveAgent removes an agent from the swarm.
func (c *SwarmClient) RemoveAgent(ctx context.Context, swarmID string, data Record) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(swarmID, "agents"), data, nil)
}

// ToolClient manages tools. Tools have no sub-resources.
type ToolClient struct {
	*Client
}

// NewToolClient returns a client for /api/tools.
func NewToolClient(baseURL string, opts ...Option) *ToolClient {
	return &ToolClient{Client: New(baseURL, Tools, opts...)}
}

// Set holds one client per resource kind, all pointed at the same backend.
type Set struct {
	Agents     *AgentClient
	Tools      *ToolClient
	Frameworks *FrameworkClient
	Swarms     *SwarmClient
}

// NewSet builds the four clients with shared options.
func NewSet(baseURL string, opts ...Option) *Set {
	return &Set{
		Agents:     NewAgentClient(baseURL, opts...),
		Tools:      NewToolClient(baseURL, opts...),
		Frameworks: NewFrameworkClient(baseURL, opts...),
		Swarms:     NewSwarmClient(baseURL, opts...),
	}
}
