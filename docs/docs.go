// Package docs holds the Swagger description of the HTTP API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/chat": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs one buffered turn and returns the stored conversation. A missing or unknown conversationId starts a new conversation.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Send a chat message",
                "parameters": [
                    {"description": "Message", "name": "chatRequest", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TurnResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/chat/stream": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs one turn and streams the reply as server-sent events: delta events followed by exactly one done or error event.",
                "consumes": ["application/json"],
                "produces": ["text/event-stream"],
                "tags": ["Chat"],
                "summary": "Stream a chat reply",
                "parameters": [
                    {"description": "Message", "name": "chatRequest", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "Stream of events", "schema": {"$ref": "#/definitions/model.StreamEvent"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/chats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists the caller's chats, most recently updated first.",
                "produces": ["application/json"],
                "tags": ["Chats"],
                "summary": "List chats",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ChatListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/chats/{chatID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns one of the caller's chats with all of its messages.",
                "produces": ["application/json"],
                "tags": ["Chats"],
                "summary": "Get a chat",
                "parameters": [{"type": "string", "description": "Chat ID", "name": "chatID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ChatResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Deletes one of the caller's chats and all of its messages.",
                "produces": ["application/json"],
                "tags": ["Chats"],
                "summary": "Delete a chat",
                "parameters": [{"type": "string", "description": "Chat ID", "name": "chatID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.OKResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chats"],
                "summary": "Rename a chat",
                "parameters": [
                    {"type": "string", "description": "Chat ID", "name": "chatID", "in": "path", "required": true},
                    {"description": "New title", "name": "titleRequest", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.RenameChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.OKResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/providers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists the chat providers in the order they are tried. The local fallback responder is always last.",
                "produces": ["application/json"],
                "tags": ["Providers"],
                "summary": "List providers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ProviderInfo"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists the caller's tasks, newest first.",
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "List tasks",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.TaskListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Create a task",
                "parameters": [
                    {"description": "Task", "name": "taskRequest", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.TaskResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/upload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Extracts text from a PDF, DOCX, text, markdown, CSV, JSON or HTML file and stores it in a chat. Unless analyze is 0, false or no, the assistant also summarizes it.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Upload a document",
                "parameters": [
                    {"type": "file", "description": "Document", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Existing chat ID", "name": "conversationId", "in": "formData"},
                    {"type": "string", "description": "Prompt for the analysis", "name": "message", "in": "formData"},
                    {"type": "string", "description": "0, false or no to skip analysis", "name": "analyze", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.UploadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ChatListResponse": {
            "type": "object",
            "properties": {"chats": {"type": "array", "items": {"$ref": "#/definitions/model.ConversationSummary"}}}
        },
        "api.ChatResponse": {
            "type": "object",
            "properties": {"chat": {"$ref": "#/definitions/model.Conversation"}}
        },
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "api.OKResponse": {
            "type": "object",
            "properties": {"ok": {"type": "boolean"}}
        },
        "api.RenameChatRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {"title": {"type": "string", "maxLength": 100, "minLength": 1, "example": "Q3 planning"}}
        },
        "api.TaskListResponse": {
            "type": "object",
            "properties": {"tasks": {"type": "array", "items": {"$ref": "#/definitions/model.Task"}}}
        },
        "api.TaskResponse": {
            "type": "object",
            "properties": {"task": {"$ref": "#/definitions/model.Task"}}
        },
        "api.UploadResponse": {
            "type": "object",
            "properties": {
                "bytes": {"type": "integer"},
                "chars": {"type": "integer"},
                "conversationId": {"type": "string"},
                "filename": {"type": "string"},
                "ok": {"type": "boolean"}
            }
        },
        "model.Conversation": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "id": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/model.Entry"}},
                "ownerId": {"type": "string"},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.ConversationSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.Entry": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "createdAt": {"type": "string"},
                "role": {"type": "string", "enum": ["system", "user", "assistant", "tool"]},
                "toolName": {"type": "string"}
            }
        },
        "model.StreamEvent": {
            "type": "object",
            "properties": {
                "chunk": {"type": "string"},
                "citations": {"type": "array", "items": {"type": "string"}},
                "conversationId": {"type": "string"},
                "error": {"type": "string"},
                "type": {"type": "string", "enum": ["delta", "done", "error"]}
            }
        },
        "model.Task": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "ownerId": {"type": "string"},
                "status": {"type": "string", "enum": ["open", "in_progress", "done"]},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.ToolObservation": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "toolName": {"type": "string"}
            }
        },
        "model.TurnResult": {
            "type": "object",
            "properties": {
                "citations": {"type": "array", "items": {"type": "string"}},
                "conversationId": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/model.Entry"}},
                "toolResults": {"type": "array", "items": {"$ref": "#/definitions/model.ToolObservation"}}
            }
        },
        "service.ChatRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "conversationId": {"type": "string", "maxLength": 128},
                "message": {"type": "string", "maxLength": 20000, "example": "What are the latest trends in retail?"}
            }
        },
        "service.CreateTaskRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "description": {"type": "string", "maxLength": 2000},
                "title": {"type": "string", "maxLength": 200, "minLength": 2, "example": "Call the supplier"}
            }
        },
        "service.ProviderInfo": {
            "type": "object",
            "properties": {
                "offline": {"type": "boolean"},
                "providers": {"type": "array", "items": {"type": "string"}},
                "webSearch": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "BizPilot API",
	Description:      "Business copilot chat backend: chat turns with tool routing and provider fallback, chat history, uploads and tasks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
