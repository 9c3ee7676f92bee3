// Package tools implements the external tools a chat turn can use: a
// heuristic web-search pre-fetch and function tools the agent provider calls
// with structured arguments.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Tool identifiers shared with the provider layer and persisted entries.
const (
	WebSearchName      = "tavily_search"
	CreateTaskName     = "create_task"
	FileUploadName     = "file_upload"
	AssistantLinksName = "assistant_links"
)

// ErrToolUnavailable is returned when a tool cannot produce an observation:
// missing credentials, network failure, a bad upstream response or an unknown
// tool. Callers continue the turn without the tool.
var ErrToolUnavailable = errors.New("tool unavailable")

// FunctionTool is a tool the model invokes itself with JSON arguments.
type FunctionTool interface {
	Name() string
	Description() string
	// Parameters is the JSON schema of the arguments object.
	Parameters() *jsonschema.Schema
	// Execute runs the tool on behalf of ownerID and returns the text handed
	// back to the model.
	Execute(ctx context.Context, ownerID string, args json.RawMessage) (string, error)
}

// reflectParameters derives a function tool's argument schema from its input struct.
func reflectParameters(input interface{}) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}
	return &schema, nil
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}
