package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Weekly lesson scheduling with teacher, group and room conflict detection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Lessons", "description": "Lesson lifecycle and conflict checks"},
        {"name": "Timetable", "description": "Weekly views, exports, audit and availability"},
        {"name": "Settings", "description": "Per-organization scheduling toggles"}
    ],
    "parameters": {
        "orgId": {"name": "orgId", "in": "path", "required": true, "type": "string"},
        "lessonId": {"name": "id", "in": "path", "required": true, "type": "string"}
    },
    "paths": {
        "/organizations/{orgId}/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List lessons",
                "parameters": [
                    {"$ref": "#/parameters/orgId"},
                    {"name": "groupId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "room", "in": "query", "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "type": "string", "enum": ["MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"]},
                    {"name": "status", "in": "query", "type": "string", "enum": ["PLANNED", "CANCELLED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Lessons"],
                "summary": "Create lesson",
                "parameters": [
                    {"$ref": "#/parameters/orgId"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or interval", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Teacher, group or room already booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}/lessons/{id}": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Get lesson",
                "parameters": [{"$ref": "#/parameters/orgId"}, {"$ref": "#/parameters/lessonId"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Lessons"],
                "summary": "Update lesson",
                "parameters": [
                    {"$ref": "#/parameters/orgId"},
                    {"$ref": "#/parameters/lessonId"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLessonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict or stale version", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete lesson",
                "parameters": [{"$ref": "#/parameters/orgId"}, {"$ref": "#/parameters/lessonId"}],
                "responses": {
                    "204": {"description": "Deleted or already absent"}
                }
            }
        },
        "/organizations/{orgId}/lessons/{id}/cancel": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Cancel lesson",
                "parameters": [{"$ref": "#/parameters/orgId"}, {"$ref": "#/parameters/lessonId"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}/lessons/{id}/reactivate": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Reactivate lesson",
                "parameters": [{"$ref": "#/parameters/orgId"}, {"$ref": "#/parameters/lessonId"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot taken while cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Weekly timetable grouped by day",
                "parameters": [
                    {"$ref": "#/parameters/orgId"},
                    {"name": "groupId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "room", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"$ref": "#/parameters/orgId"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/organizations/{orgId}/audit": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Audit stored lessons for overlaps",
                "parameters": [{"$ref": "#/parameters/orgId"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}/availability": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Check whether a teacher, group or room is free",
                "parameters": [
                    {"$ref": "#/parameters/orgId"},
                    {"name": "dimension", "in": "query", "required": true, "type": "string", "enum": ["TEACHER", "GROUP", "ROOM"]},
                    {"name": "resourceId", "in": "query", "required": true, "type": "string"},
                    {"name": "day", "in": "query", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string"},
                    {"name": "end", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get organization settings",
                "parameters": [{"$ref": "#/parameters/orgId"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update organization settings",
                "parameters": [
                    {"$ref": "#/parameters/orgId"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateOrganizationSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateLessonRequest": {
            "type": "object",
            "required": ["groupId", "courseId", "teacherId", "dayOfWeek", "startTime", "endTime"],
            "properties": {
                "groupId": {"type": "string"},
                "groupName": {"type": "string"},
                "courseId": {"type": "string"},
                "courseName": {"type": "string"},
                "teacherId": {"type": "string"},
                "teacherName": {"type": "string"},
                "room": {"type": "string"},
                "dayOfWeek": {"type": "string", "example": "MON"},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "10:30"}
            }
        },
        "UpdateLessonRequest": {
            "type": "object",
            "properties": {
                "groupId": {"type": "string"},
                "courseId": {"type": "string"},
                "teacherId": {"type": "string"},
                "room": {"type": "string"},
                "dayOfWeek": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "status": {"type": "string", "enum": ["PLANNED", "CANCELLED"]}
            }
        },
        "UpdateOrganizationSettingsRequest": {
            "type": "object",
            "required": ["roomTrackingEnabled"],
            "properties": {
                "roomTrackingEnabled": {"type": "boolean"}
            }
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
