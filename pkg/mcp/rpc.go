package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ProtocolVersion is the MCP revision announced in initialize
const ProtocolVersion = "2024-11-05"

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// ServerInfo identifies this server in the initialize response
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type rpcRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id,omitempty"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID     interface{}
	Result interface{}
	Error  *rpcError
}

// MarshalJSON emits exactly one of result or error, even for empty results.
func (r rpcResponse) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      r.ID,
	}
	if r.Error != nil {
		out["error"] = r.Error
	} else {
		out["result"] = r.Result
	}
	return json.Marshal(out)
}

// rpcTool is the tools/list entry shape MCP clients expect
type rpcTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Dispatcher answers MCP JSON-RPC messages. It is shared by the HTTP
// /message endpoint and the stdio transport.
type Dispatcher struct {
	server  *Server
	handler Handler
	info    ServerInfo
}

// NewDispatcher creates a JSON-RPC dispatcher over server's catalog
func NewDispatcher(server *Server, handler Handler, info ServerInfo) *Dispatcher {
	return &Dispatcher{server: server, handler: handler, info: info}
}

// Handle processes one raw JSON-RPC message and returns the encoded
// response. Notifications (no id) produce a nil response.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) []byte {
	var resp rpcResponse
	var req rpcRequest
	if err := decodeJSON(raw, &req); err != nil {
		resp = rpcResponse{Error: &rpcError{Code: codeParseError, Message: err.Error()}}
	} else if req.Method == "" {
		resp = rpcResponse{ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "method is required"}}
	} else {
		result, rerr := d.dispatch(ctx, req)
		if req.ID == nil {
			return nil
		}
		resp = rpcResponse{ID: req.ID, Result: result, Error: rerr}
	}

	encoded, err := json.Marshal(resp)
	if err != nil {
		encoded, _ = json.Marshal(rpcResponse{ID: req.ID, Error: &rpcError{Code: codeInternalError, Message: err.Error()}})
	}
	return encoded
}

func (d *Dispatcher) dispatch(ctx context.Context, req rpcRequest) (interface{}, *rpcError) {
	switch req.Method {
	case "initialize":
		return map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools":     map[string]interface{}{},
				"resources": map[string]interface{}{},
			},
			"serverInfo": d.info,
		}, nil
	case "notifications/initialized", "ping":
		return map[string]interface{}{}, nil
	case "tools/list":
		tools := d.server.ListTools()
		out := make([]rpcTool, 0, len(tools))
		for _, t := range tools {
			out = append(out, rpcTool{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema()})
		}
		return map[string]interface{}{"tools": out}, nil
	case "tools/call":
		return d.callTool(ctx, req.Params)
	case "resources/list":
		return map[string]interface{}{"resources": []Resource{}}, nil
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("Method not found: %s", req.Method)}
	}
}

func (d *Dispatcher) callTool(ctx context.Context, params map[string]interface{}) (interface{}, *rpcError) {
	// json.Number would otherwise decode into a string name
	if name, _ := params["name"].(string); name == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params: name is required"}
	}
	var call ToolCall
	if err := mapstructure.Decode(params, &call); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params: " + err.Error()}
	}

	result, err := d.handler.CallTool(ctx, call.Name, call.Arguments)
	if err != nil {
		return ToolResult{
			Content: []ContentBlock{{Type: "text", Text: "Error: " + err.Error()}},
			IsError: true,
		}, nil
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return ToolResult{
			Content: []ContentBlock{{Type: "text", Text: "Error: " + err.Error()}},
			IsError: true,
		}, nil
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: string(text)}}}, nil
}

// errorStatus picks the HTTP status for err, defaulting to 500
func errorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) && sc.StatusCode() > 0 {
		return sc.StatusCode()
	}
	return 500
}
