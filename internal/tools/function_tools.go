package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

type webSearchArgs struct {
	Query string `json:"query" required:"true" description:"Search query for current information on the web"`
}

type webSearchTool struct {
	searcher Searcher
	schema   *jsonschema.Schema
}

// NewWebSearchTool exposes searcher to the agent as the tavily_search function.
func NewWebSearchTool(searcher Searcher) (FunctionTool, error) {
	schema, err := reflectParameters(webSearchArgs{})
	if err != nil {
		return nil, err
	}
	return &webSearchTool{searcher: searcher, schema: schema}, nil
}

func (t *webSearchTool) Name() string { return WebSearchName }

func (t *webSearchTool) Description() string {
	return "Search the web for recent news, market data, statistics and sources. Returns titles, URLs and snippets."
}

func (t *webSearchTool) Parameters() *jsonschema.Schema { return t.schema }

func (t *webSearchTool) Execute(ctx context.Context, ownerID string, args json.RawMessage) (string, error) {
	var in webSearchArgs
	if err := decodeArgs(args, &in); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Query) == "" {
		return "", fmt.Errorf("query is required")
	}
	results, err := t.searcher.Search(ctx, model.Truncate(in.Query, SearchQueryMaxRunes), SearchMaxResults)
	if err != nil {
		return "", err
	}
	return Digest(results), nil
}

// TaskCreator persists tasks created by the agent.
type TaskCreator interface {
	CreateTask(ctx context.Context, task *model.Task) error
}

type createTaskArgs struct {
	Title       string `json:"title" required:"true" minLength:"1" maxLength:"200" description:"Short task title"`
	Description string `json:"description,omitempty" maxLength:"2000" description:"Optional details"`
}

type createTaskTool struct {
	tasks  TaskCreator
	schema *jsonschema.Schema
}

// NewCreateTaskTool exposes task creation to the agent. Tasks are always
// created for the owner of the running turn.
func NewCreateTaskTool(tasks TaskCreator) (FunctionTool, error) {
	schema, err := reflectParameters(createTaskArgs{})
	if err != nil {
		return nil, err
	}
	return &createTaskTool{tasks: tasks, schema: schema}, nil
}

func (t *createTaskTool) Name() string { return CreateTaskName }

func (t *createTaskTool) Description() string {
	return "Create a task with a title and optional description for the current user"
}

func (t *createTaskTool) Parameters() *jsonschema.Schema { return t.schema }

func (t *createTaskTool) Execute(ctx context.Context, ownerID string, args json.RawMessage) (string, error) {
	var in createTaskArgs
	if err := decodeArgs(args, &in); err != nil {
		return "", err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return "", fmt.Errorf("title is required")
	}
	task := &model.Task{
		OwnerID:     ownerID,
		Title:       model.Truncate(in.Title, 200),
		Description: in.Description,
	}
	if err := t.tasks.CreateTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to create task: %w", err)
	}
	return fmt.Sprintf("Task created: %s", task.Title), nil
}
