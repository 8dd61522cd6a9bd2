package mcp

import "context"

// ToolParameter describes one named argument a tool accepts
type ToolParameter struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"` // "string" or "object"
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// Tool represents an MCP tool definition
type Tool struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Parameters  []ToolParameter `json:"parameters" yaml:"parameters"`
}

// InputSchema renders the parameter list as a JSON-Schema object for MCP clients
func (t Tool) InputSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(t.Parameters))
	required := []string{}
	for _, p := range t.Parameters {
		properties[p.Name] = map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// RequiredParameters returns the names of the parameters flagged as required
func (t Tool) RequiredParameters() []string {
	var names []string
	for _, p := range t.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// ToolCall represents a tool invocation request
type ToolCall struct {
	Name      string                 `json:"name" mapstructure:"name"`
	Arguments map[string]interface{} `json:"arguments" mapstructure:"arguments"`
}

// ToolResult represents the result of a tool call on the JSON-RPC surface
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock represents a content block in a tool result
type ContentBlock struct {
	Type string `json:"type"` // "text"
	Text string `json:"text,omitempty"`
}

// Resource is an entry of the resources/list response
type Resource struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Content     []ContentBlock `json:"content"`
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status          string `json:"status"`
	StrapiConnected *bool  `json:"strapi_connected,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Handler executes tool calls and reports backend health
type Handler interface {
	CallTool(ctx context.Context, name string, arguments map[string]interface{}) (interface{}, error)
	Health(ctx context.Context) HealthStatus
}

// StatusCoder is implemented by errors that carry an HTTP status
type StatusCoder interface {
	StatusCode() int
}
