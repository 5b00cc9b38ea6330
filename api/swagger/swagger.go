package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Weekly Attendance API",
        "description": "Weekly childcare attendance submissions with a time-restricted editing window",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login and current user"},
        {"name": "Submissions", "description": "Weekly attendance submissions"},
        {"name": "EditWindow", "description": "Time restriction on submission writes"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user claims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List weekly submissions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "week", "in": "query", "type": "integer"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["ACTIVE", "ARCHIVED"]},
                    {"name": "class_label", "in": "query", "type": "string"},
                    {"name": "owner_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Submissions"],
                "summary": "Create the weekly submission for the current ISO week",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already submitted this week", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Editing window closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Get a weekly submission",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Submissions"],
                "summary": "Update a weekly submission",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Archived submission is locked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Editing window closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/export": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Export the overview of one ISO week",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "week", "in": "query", "required": true, "type": "integer"},
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/submissions/archive-sweep": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Archive submissions of past weeks",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/edit-window": {
            "get": {
                "tags": ["EditWindow"],
                "summary": "Current editing window",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/edit-window/policy": {
            "get": {
                "tags": ["EditWindow"],
                "summary": "Get the time restriction policy",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["EditWindow"],
                "summary": "Replace the time restriction policy",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePolicyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed policy", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "FieldEntryRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "string"},
                "note": {"type": "string"}
            },
            "required": ["value"]
        },
        "SubmissionRequest": {
            "type": "object",
            "properties": {
                "child_id": {"type": "string"},
                "class_label": {"type": "string"},
                "monday": {"$ref": "#/definitions/FieldEntryRequest"},
                "tuesday": {"$ref": "#/definitions/FieldEntryRequest"},
                "wednesday": {"$ref": "#/definitions/FieldEntryRequest"},
                "thursday": {"$ref": "#/definitions/FieldEntryRequest"},
                "friday": {"$ref": "#/definitions/FieldEntryRequest"},
                "home_alone": {"$ref": "#/definitions/FieldEntryRequest"}
            },
            "required": ["class_label", "monday", "tuesday", "wednesday", "thursday", "friday", "home_alone"]
        },
        "UpdatePolicyRequest": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "block_start_hour": {"type": "integer", "minimum": 0, "maximum": 23},
                "block_end_hour": {"type": "integer", "minimum": 0, "maximum": 23},
                "block_weekdays_only": {"type": "boolean"}
            },
            "required": ["enabled", "block_start_hour", "block_end_hour", "block_weekdays_only"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
