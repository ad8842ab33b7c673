// Package docs registers the OpenAPI document served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a user",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "409": {"description": "Username or email already taken"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/discussions": {
            "get": {
                "tags": ["discussions"],
                "summary": "List discussions",
                "parameters": [
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "tag", "type": "string"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "sort", "type": "string", "enum": ["recent", "popular", "answered", "unanswered"]},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["discussions"],
                "summary": "Create a discussion",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDiscussionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid input"}
                }
            }
        },
        "/discussions/{id}": {
            "get": {
                "tags": ["discussions"],
                "summary": "Get a discussion with answers and replies",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Discussion not found"}
                }
            }
        },
        "/discussions/{id}/answers": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["discussions"],
                "summary": "Answer a discussion",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ContentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CreatedResponse"}},
                    "404": {"description": "Discussion not found"}
                }
            }
        },
        "/answers/{id}/replies": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["discussions"],
                "summary": "Reply to an answer",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ContentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CreatedResponse"}},
                    "404": {"description": "Answer not found"}
                }
            }
        },
        "/answers/{id}/best": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["discussions"],
                "summary": "Mark the best answer of a discussion",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Only the discussion author may mark the best answer"},
                    "404": {"description": "Answer not found"}
                }
            }
        },
        "/discussions/{id}/vote": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["votes"],
                "summary": "Vote on a discussion",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/VoteResponse"}}
                }
            }
        },
        "/answers/{id}/vote": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["votes"],
                "summary": "Vote on an answer",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/VoteResponse"}}
                }
            }
        },
        "/replies/{id}/vote": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["votes"],
                "summary": "Vote on a reply",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/VoteResponse"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "List notifications, newest first",
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notifications/unread-count": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Count unread notifications",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notifications/{id}/read": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Mark one notification as read",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Notification belongs to another user"},
                    "404": {"description": "Notification not found"}
                }
            }
        },
        "/notifications/read-all": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Mark every notification as read",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/pdfs": {
            "get": {
                "tags": ["library"],
                "summary": "List PDF documents, newest first",
                "parameters": [
                    {"in": "query", "name": "semester", "type": "string"},
                    {"in": "query", "name": "course", "type": "string"},
                    {"in": "query", "name": "department", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pdfs/generate-upload-url": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["library"],
                "summary": "Presign a direct PDF upload",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UploadURLInput"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Only PDF files are allowed"},
                    "503": {"description": "Document storage is not configured"}
                }
            }
        },
        "/pdfs/store-metadata": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["library"],
                "summary": "Record an uploaded PDF",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/StoreMetadataInput"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Missing field or foreign blob_url"}
                }
            }
        },
        "/ebooks": {
            "get": {
                "tags": ["library"],
                "summary": "List e-book documents, newest first",
                "parameters": [
                    {"in": "query", "name": "semester", "type": "string"},
                    {"in": "query", "name": "course", "type": "string"},
                    {"in": "query", "name": "department", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ebooks/generate-upload-url": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["library"],
                "summary": "Presign a direct e-book upload",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UploadURLInput"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Only PDF files are allowed"},
                    "503": {"description": "Document storage is not configured"}
                }
            }
        },
        "/ebooks/store-metadata": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["library"],
                "summary": "Record an uploaded e-book",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/StoreMetadataInput"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Missing field or foreign blob_url"}
                }
            }
        },
        "/upload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["upload"],
                "summary": "Upload an image",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "formData", "name": "file", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Not an image or larger than 5MB"},
                    "503": {"description": "Image storage is not configured"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["upload"],
                "summary": "Delete an image the caller uploaded",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/DeleteImageInput"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Image belongs to another user"}
                }
            }
        },
        "/ws": {
            "get": {
                "tags": ["realtime"],
                "summary": "Open the realtime websocket",
                "parameters": [
                    {"in": "query", "name": "token", "type": "string"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "401": {"description": "Missing or invalid credential"}
                }
            }
        }
    },
    "definitions": {
        "DeleteImageInput": {
            "type": "object",
            "required": ["url"],
            "properties": {"url": {"type": "string"}}
        },
        "UploadURLInput": {
            "type": "object",
            "required": ["filename", "contentType"],
            "properties": {
                "filename": {"type": "string"},
                "contentType": {"type": "string", "enum": ["application/pdf"]}
            }
        },
        "StoreMetadataInput": {
            "type": "object",
            "required": ["title", "description", "semester", "blob_url"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "semester": {"type": "string"},
                "course": {"type": "string"},
                "department": {"type": "string"},
                "year_of_study": {"type": "string"},
                "blob_url": {"type": "string"}
            }
        },
        "RegisterInput": {
            "type": "object",
            "required": ["username", "email", "password"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "LoginInput": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AuthResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "is_admin": {"type": "boolean"}
            }
        },
        "CreateDiscussionRequest": {
            "type": "object",
            "required": ["title", "content", "category"],
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "category": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "images": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ContentRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "content": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreatedResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "VoteRequest": {
            "type": "object",
            "required": ["voteType"],
            "properties": {
                "voteType": {"type": "string", "enum": ["up", "down"]}
            }
        },
        "VoteResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "action": {"type": "string"},
                "vote_count": {"type": "integer"},
                "upvotes": {"type": "integer"},
                "downvotes": {"type": "integer"},
                "user_vote": {"type": "string"}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "AlienVault API",
	Description:      "Discussions, answers, votes, notifications and realtime events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
