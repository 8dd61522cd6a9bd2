package mcp

import (
	"fmt"
	"sync"
)

// Server holds the ordered tool catalog shared by every transport
type Server struct {
	mu    sync.RWMutex
	tools []Tool
	index map[string]int
}

// NewServer creates an empty tool registry
func NewServer() *Server {
	return &Server{
		index: make(map[string]int),
	}
}

// RegisterTool appends a tool to the catalog. Names must be unique.
func (s *Server) RegisterTool(tool Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := s.index[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	if tool.Parameters == nil {
		tool.Parameters = []ToolParameter{}
	}
	s.index[tool.Name] = len(s.tools)
	s.tools = append(s.tools, tool)
	return nil
}

// ListTools returns the catalog in registration order
func (s *Server) ListTools() []Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Tool looks up a registered tool by name
func (s *Server) Tool(name string) (Tool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[name]
	if !ok {
		return Tool{}, false
	}
	return s.tools[i], true
}
