package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterToolKeepsOrder(t *testing.T) {
	s := NewServer()
	require.NoError(t, s.RegisterTool(Tool{Name: "b.tool"}))
	require.NoError(t, s.RegisterTool(Tool{Name: "a.tool"}))

	tools := s.ListTools()
	require.Len(t, tools, 2)
	assert.Equal(t, "b.tool", tools[0].Name)
	assert.Equal(t, "a.tool", tools[1].Name)
	assert.NotNil(t, tools[0].Parameters)

	tools[0].Name = "mutated"
	got, ok := s.Tool("b.tool")
	require.True(t, ok)
	assert.Equal(t, "b.tool", got.Name)
}

func TestRegisterToolRejectsDuplicates(t *testing.T) {
	s := NewServer()
	require.NoError(t, s.RegisterTool(Tool{Name: "content.find"}))
	assert.ErrorContains(t, s.RegisterTool(Tool{Name: "content.find"}), "already registered")
	assert.Error(t, s.RegisterTool(Tool{}))

	_, ok := s.Tool("missing")
	assert.False(t, ok)
}

func TestInputSchema(t *testing.T) {
	tool := Tool{
		Name: "content.find",
		Parameters: []ToolParameter{
			{Name: "contentType", Type: "string", Description: "The content type to query", Required: true},
			{Name: "filters", Type: "object", Description: "Filters to apply to the query"},
		},
	}

	schema := tool.InputSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"contentType"}, schema["required"])
	props := schema["properties"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"type": "object", "description": "Filters to apply to the query"}, props["filters"])
	assert.Equal(t, []string{"contentType"}, tool.RequiredParameters())

	empty := Tool{Name: "content.list"}.InputSchema()
	assert.Equal(t, []string{}, empty["required"])
}
