package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/filmvault/filmvault/internal/service"
)

// --------------------------------------------------------------------------
// Parameter extraction helpers
// --------------------------------------------------------------------------

// requireString extracts a required string argument from the tool request.
func requireString(request mcp.CallToolRequest, key string) (string, error) {
	val, err := request.RequireString(key)
	if err != nil || val == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return val, nil
}

// requireID extracts a required positive integer id.
func requireID(request mcp.CallToolRequest, key string) (int64, error) {
	val, err := request.RequireInt(key)
	if err != nil {
		return 0, fmt.Errorf("missing required parameter %q", key)
	}
	if val <= 0 {
		return 0, fmt.Errorf("parameter %q must be a positive integer", key)
	}
	return int64(val), nil
}

// optionalString returns nil when the argument is absent or empty.
func optionalString(request mcp.CallToolRequest, key string) *string {
	v := request.GetString(key, "")
	if v == "" {
		return nil
	}
	return &v
}

// optionalInt extracts an optional integer argument from the tool request.
func optionalInt(request mcp.CallToolRequest, key string, defaultVal int) int {
	return request.GetInt(key, defaultVal)
}

func optionalFloat(request mcp.CallToolRequest, key string) *float64 {
	args := request.GetArguments()
	if _, ok := args[key]; !ok {
		return nil
	}
	v := request.GetFloat(key, 0)
	return &v
}

// page reads limit/offset, clamping limit to [1, 1000].
func page(request mcp.CallToolRequest) (skip, limit int) {
	limit = clamp(optionalInt(request, "limit", 25), 1, 1000)
	skip = optionalInt(request, "offset", 0)
	if skip < 0 {
		skip = 0
	}
	return skip, limit
}

// --------------------------------------------------------------------------
// Response builders
// --------------------------------------------------------------------------

// successJSON marshals data to JSON and returns it as a tool result.
func successJSON(data interface{}) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError returns a tool-level error result. Errors returned this way are
// visible to the LLM so it can self-correct; they do NOT terminate the MCP
// session.
func toolError(format string, args ...interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}

// serviceError renders a service failure with a hint the agent can act on.
func serviceError(err error) (*mcp.CallToolResult, error) {
	var (
		notFound *service.NotFoundError
		invalid  *service.ValidationError
		operator *service.InvalidOperatorError
	)
	switch {
	case errors.As(err, &notFound):
		return toolError("%v. Use the matching list tool to find valid ids.", err)
	case errors.As(err, &invalid):
		b, _ := json.Marshal(invalid.Fields)
		return toolError("Validation failed: %s", b)
	case errors.As(err, &operator):
		return toolError("%v", err)
	case errors.Is(err, service.ErrAlreadyExists):
		return toolError("%v", err)
	default:
		return toolError("Request failed: %v", err)
	}
}

// clamp constrains val to [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
