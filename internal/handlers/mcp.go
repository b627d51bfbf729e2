package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"patternhub/internal/catalog"
	"patternhub/internal/middleware"
	"patternhub/internal/models"
	"patternhub/internal/services"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request
type JSONRPCRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC 2.0 error codes
const (
	rpcParseError     = -32700
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcInternalError  = -32603
)

// MCPTool represents an MCP tool definition
type MCPTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// MCPHandler serves pattern data to chat-style clients over the
// MCP-flavored JSON-RPC endpoint: tools/list advertises the catalog
// operations, tools/call dispatches them.
type MCPHandler struct {
	catalog *services.CatalogService
}

// NewMCPHandler creates a new MCP handler
func NewMCPHandler(catalogService *services.CatalogService) *MCPHandler {
	return &MCPHandler{catalog: catalogService}
}

// toolDefinitions advertises the catalog operations as MCP tools
func (h *MCPHandler) toolDefinitions() []MCPTool {
	return []MCPTool{
		{
			Name:        "search_patterns",
			Description: "Search the pattern catalog by free-text query, category, and difficulty",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query":      map[string]interface{}{"type": "string", "description": "Free-text query matched against title, tags, and description"},
					"category":   map[string]interface{}{"type": "string", "enum": models.Categories},
					"difficulty": map[string]interface{}{"type": "string", "enum": models.Difficulties},
					"limit":      map[string]interface{}{"type": "number", "description": "Maximum number of results"},
				},
			},
		},
		{
			Name:        "get_pattern",
			Description: "Fetch a single pattern by id, including all examples and use cases",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"patternId": map[string]interface{}{"type": "string"},
				},
				"required": []string{"patternId"},
			},
		},
		{
			Name:        "generate_snippet",
			Description: "Render a code snippet from a pattern, optionally substituting a custom name and input",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"patternId":     map[string]interface{}{"type": "string"},
					"name":          map[string]interface{}{"type": "string"},
					"input":         map[string]interface{}{"type": "string"},
					"moduleType":    map[string]interface{}{"type": "string", "enum": []string{"esm", "commonjs"}},
					"effectVersion": map[string]interface{}{"type": "string"},
				},
				"required": []string{"patternId"},
			},
		},
	}
}

// Handle processes POST /mcp
func (h *MCPHandler) Handle(c *fiber.Ctx) error {
	var req JSONRPCRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.JSON(JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   &JSONRPCError{Code: rpcParseError, Message: "Parse error"},
		})
	}

	switch req.Method {
	case "tools/list":
		return c.JSON(JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  fiber.Map{"tools": h.toolDefinitions()},
		})

	case "tools/call":
		return h.handleToolCall(c, req)

	default:
		return c.JSON(JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: rpcMethodNotFound, Message: fmt.Sprintf("Method %q not found", req.Method)},
		})
	}
}

func (h *MCPHandler) handleToolCall(c *fiber.Ctx, req JSONRPCRequest) error {
	name, _ := req.Params["name"].(string)
	args, _ := req.Params["arguments"].(map[string]interface{})
	traceID := middleware.Trace(c)

	switch name {
	case "search_patterns":
		searchReq := models.SearchRequest{
			Query:      stringArg(args, "query"),
			Category:   stringArg(args, "category"),
			Difficulty: stringArg(args, "difficulty"),
		}
		if raw, ok := args["limit"].(float64); ok {
			limit := int(raw)
			searchReq.Limit = &limit
		}

		results := h.catalog.Search(c.Context(), searchReq, traceID)
		return h.toolResult(c, req.ID, models.SearchResponse{
			Patterns: catalog.Summarize(results),
			Count:    len(results),
		})

	case "get_pattern":
		id := stringArg(args, "patternId")
		if id == "" {
			return h.invalidParams(c, req.ID, "patternId is required")
		}
		p, ok := h.catalog.Get(id)
		if !ok {
			return h.toolError(c, req.ID, fmt.Sprintf("Pattern %q not found", id))
		}
		return h.toolResult(c, req.ID, p)

	case "generate_snippet":
		genReq := models.GenerateRequest{
			PatternID:     stringArg(args, "patternId"),
			Name:          stringArg(args, "name"),
			Input:         stringArg(args, "input"),
			ModuleType:    stringArg(args, "moduleType"),
			EffectVersion: stringArg(args, "effectVersion"),
		}
		if genReq.PatternID == "" {
			return h.invalidParams(c, req.ID, "patternId is required")
		}

		p, snippet, err := h.catalog.Generate(c.Context(), genReq, traceID)
		if err != nil {
			switch {
			case errors.Is(err, catalog.ErrNotFound),
				errors.Is(err, catalog.ErrUnsupportedModuleType),
				errors.Is(err, catalog.ErrInvalidPattern):
				return h.toolError(c, req.ID, err.Error())
			default:
				return c.JSON(JSONRPCResponse{
					JSONRPC: "2.0",
					ID:      req.ID,
					Error:   &JSONRPCError{Code: rpcInternalError, Message: "Snippet generation failed"},
				})
			}
		}

		return h.toolResult(c, req.ID, models.GenerateResponse{
			PatternID:   p.ID,
			Title:       p.Title,
			Snippet:     snippet,
			TraceID:     traceID,
			TemplateURI: fmt.Sprintf("pattern://%s/snippet", p.ID),
		})

	default:
		return h.invalidParams(c, req.ID, fmt.Sprintf("Unknown tool %q", name))
	}
}

// toolResult wraps a payload in the MCP content envelope
func (h *MCPHandler) toolResult(c *fiber.Ctx, id, payload interface{}) error {
	text, err := json.Marshal(payload)
	if err != nil {
		return c.JSON(JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      id,
			Error:   &JSONRPCError{Code: rpcInternalError, Message: "Failed to encode result"},
		})
	}
	return c.JSON(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: fiber.Map{
			"content": []fiber.Map{{"type": "text", "text": string(text)}},
		},
	})
}

// toolError reports a tool-level failure inside a successful RPC envelope,
// the way MCP servers distinguish tool errors from protocol errors
func (h *MCPHandler) toolError(c *fiber.Ctx, id interface{}, message string) error {
	return c.JSON(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: fiber.Map{
			"content": []fiber.Map{{"type": "text", "text": message}},
			"isError": true,
		},
	})
}

func (h *MCPHandler) invalidParams(c *fiber.Ctx, id interface{}, message string) error {
	return c.JSON(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: rpcInvalidParams, Message: message},
	})
}

func stringArg(args map[string]interface{}, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}
