package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Assignment API",
        "description": "Assignment consistency service for multi-campus school networks",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Assignments", "description": "Person ↔ campus/class/subject assignments"},
        {"name": "Rosters", "description": "Campus roster exports"}
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
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/campuses/{campusId}/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List persons assigned to a campus",
                "parameters": [
                    {"name": "campusId", "in": "path", "required": true, "type": "string"},
                    {"name": "include_inactive", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Missing campus permission"},
                    "404": {"description": "Campus not found"}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign person to campus",
                "parameters": [
                    {"name": "campusId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignCampusRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Missing campus permission"},
                    "404": {"description": "Person or campus not found"},
                    "409": {"description": "Person already assigned"}
                }
            }
        },
        "/campuses/{campusId}/assignments/export": {
            "get": {
                "tags": ["Rosters"],
                "summary": "Export campus roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "campusId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "include_inactive", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Roster file"},
                    "403": {"description": "Missing campus permission"}
                }
            }
        },
        "/campuses/{campusId}/assignments/{personId}/status": {
            "patch": {
                "tags": ["Assignments"],
                "summary": "Update assignment status",
                "parameters": [
                    {"name": "campusId", "in": "path", "required": true, "type": "string"},
                    {"name": "personId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid status transition"}
                }
            }
        },
        "/campuses/{campusId}/assignments/{personId}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Remove person from campus",
                "parameters": [
                    {"name": "campusId", "in": "path", "required": true, "type": "string"},
                    {"name": "personId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Assignment not found"}
                }
            }
        },
        "/me/campuses": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List the caller's own campus assignments",
                "parameters": [
                    {"name": "include_inactive", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No person linked to this account"}
                }
            }
        },
        "/me/permissions": {
            "get": {
                "tags": ["Permissions"],
                "summary": "List the caller's campus permission grants",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/persons": {
            "get": {
                "tags": ["Persons"],
                "summary": "List persons",
                "parameters": [
                    {"name": "kind", "in": "query", "type": "string", "enum": ["TEACHER", "STUDENT"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown person kind"}
                }
            }
        },
        "/persons/{personId}/campuses": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List a person's campus assignments",
                "parameters": [
                    {"name": "personId", "in": "path", "required": true, "type": "string"},
                    {"name": "include_inactive", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/persons/{personId}/primary-campus": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Set a person's primary campus",
                "parameters": [
                    {"name": "personId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetPrimaryCampusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active assignment for person and campus"}
                }
            }
        },
        "/assignments/{id}/classes": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign campus assignment to a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Class belongs to a different campus"},
                    "409": {"description": "Person already assigned to class"}
                }
            }
        },
        "/class-assignments/{id}/subjects": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign subjects to a class assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSubjectsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class assignment or subject not found"},
                    "409": {"description": "Subject already assigned"}
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
        "AssignCampusRequest": {
            "type": "object",
            "properties": {
                "person_id": {"type": "string"},
                "is_primary": {"type": "boolean"}
            },
            "required": ["person_id"]
        },
        "AssignClassRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "is_class_teacher": {"type": "boolean"}
            },
            "required": ["class_id"]
        },
        "AssignSubjectsRequest": {
            "type": "object",
            "properties": {
                "subject_ids": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            },
            "required": ["subject_ids"]
        },
        "SetPrimaryCampusRequest": {
            "type": "object",
            "properties": {
                "campus_id": {"type": "string"}
            },
            "required": ["campus_id"]
        },
        "UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["ACTIVE", "INACTIVE", "ARCHIVED"]}
            },
            "required": ["status"]
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
