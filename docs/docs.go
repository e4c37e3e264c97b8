// Package docs registers the swagger document served under /swagger.
// Regenerate with `swag init -g cmd/todoboard/main.go` after changing handler annotations.
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
        "/todos": {
            "get": {
                "description": "Filtered, searched and sorted task list with counts over all tasks",
                "produces": ["application/json", "text/html"],
                "tags": ["Todos"],
                "summary": "List tasks",
                "parameters": [
                    {"type": "string", "description": "TODO | DOING | DONE", "name": "status", "in": "query"},
                    {"type": "string", "description": "keyword in title or content", "name": "q", "in": "query"},
                    {"type": "string", "description": "created_desc | created_asc | title_asc | title_desc", "name": "sort", "in": "query"},
                    {"type": "boolean", "description": "show the deletion toast", "name": "deleted", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.listResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "description": "Validates the payload, stores it and any accepted AI suggestions, then redirects to the detail page",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json", "text/html"],
                "tags": ["Todos"],
                "summary": "Create task",
                "parameters": [
                    {"description": "task fields", "name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/validation.RawTask"}}
                ],
                "responses": {
                    "200": {"description": "validation or store error", "schema": {"type": "object", "additionalProperties": true}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.taskResponse"}},
                    "303": {"description": "redirect to /todos/{id}?created=true"}
                }
            }
        },
        "/todos/export.pdf": {
            "get": {
                "produces": ["application/pdf"],
                "tags": ["Todos"],
                "summary": "Export task list as PDF",
                "parameters": [
                    {"type": "string", "description": "TODO | DOING | DONE", "name": "status", "in": "query"},
                    {"type": "string", "description": "keyword", "name": "q", "in": "query"},
                    {"type": "string", "description": "sort key", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/todos/events": {
            "get": {
                "description": "Server-sent events: one \"task\" event per create, update or delete",
                "produces": ["text/event-stream"],
                "tags": ["Todos"],
                "summary": "Task change stream",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/todos/new/suggest-ai": {
            "post": {
                "description": "Asks the AI model for up to three follow-up task titles",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json", "text/html"],
                "tags": ["AI"],
                "summary": "Suggest task titles",
                "parameters": [
                    {"type": "string", "description": "seed title", "name": "title", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.suggestResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/todos/{id}": {
            "get": {
                "produces": ["application/json", "text/html"],
                "tags": ["Todos"],
                "summary": "Get task",
                "parameters": [
                    {"type": "string", "description": "task id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Task"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "description": "Dispatches on intent: UPDATE saves the fields, DELETE removes the task",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json", "text/html"],
                "tags": ["Todos"],
                "summary": "Update or delete task",
                "parameters": [
                    {"type": "string", "description": "task id", "name": "id", "in": "path", "required": true},
                    {"description": "task fields for UPDATE", "name": "task", "in": "body", "schema": {"$ref": "#/definitions/validation.RawTask"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.taskResponse"}},
                    "303": {"description": "redirect"}
                }
            },
            "post": {
                "description": "Dispatches on intent: UPDATE saves the fields, DELETE removes the task",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json", "text/html"],
                "tags": ["Todos"],
                "summary": "Update or delete task",
                "parameters": [
                    {"type": "string", "description": "task id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "UPDATE | DELETE", "name": "intent", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.taskResponse"}},
                    "303": {"description": "redirect"}
                }
            },
            "delete": {
                "produces": ["application/json", "text/html"],
                "tags": ["Todos"],
                "summary": "Delete task",
                "parameters": [
                    {"type": "string", "description": "task id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.taskResponse"}},
                    "303": {"description": "redirect to /todos?deleted=true"}
                }
            }
        },
        "/todos/{id}/suggest-ai": {
            "post": {
                "description": "Asks the AI model for up to three follow-up task titles",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json", "text/html"],
                "tags": ["AI"],
                "summary": "Suggest task titles",
                "parameters": [
                    {"type": "string", "description": "task id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "seed title", "name": "title", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.suggestResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.listQueryResponse": {
            "type": "object",
            "properties": {
                "deleted": {"type": "boolean"},
                "q": {"type": "string"},
                "sort": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handlers.listResponse": {
            "type": "object",
            "properties": {
                "empty": {"type": "boolean"},
                "filteredEmpty": {"type": "boolean"},
                "message": {"type": "string"},
                "query": {"$ref": "#/definitions/handlers.listQueryResponse"},
                "summary": {"$ref": "#/definitions/models.Summary"},
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/models.Task"}}
            }
        },
        "handlers.suggestResponse": {
            "type": "object",
            "properties": {
                "suggestions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handlers.taskResponse": {
            "type": "object",
            "properties": {
                "aiAdded": {"type": "boolean"},
                "deleted": {"type": "boolean"},
                "redirect": {"type": "string"},
                "task": {"$ref": "#/definitions/models.Task"}
            }
        },
        "models.Summary": {
            "type": "object",
            "properties": {
                "doing": {"type": "integer"},
                "done": {"type": "integer"},
                "todo": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "models.Task": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "createdAt": {"type": "string"},
                "id": {"type": "string"},
                "status": {"type": "string", "enum": ["TODO", "DOING", "DONE"]},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "validation.RawTask": {
            "type": "object",
            "properties": {
                "aiSuggestions": {"type": "array", "items": {"type": "string"}},
                "content": {"type": "string"},
                "status": {"type": "string"},
                "title": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "todoboard API",
	Description:      "Todo board with filters, AI suggestions and live updates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
