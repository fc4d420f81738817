package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Department Portal API",
        "description": "Notices, announcements, class routines and feedback for a university department.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Announcements", "description": "Notices, announcements and class routines"},
        {"name": "Feedback", "description": "Feedback from batches and staff"},
        {"name": "Metrics", "description": "Operational summaries"}
    ],
    "paths": {
        "/announcements/public": {
            "get": {
                "tags": ["Announcements"],
                "summary": "Public notice feed",
                "description": "Newest approved notices, at most ten. No authentication.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AnnouncementListEnvelope"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List announcements visible to the caller",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AnnouncementListEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Announcements"],
                "summary": "Post a notice, announcement or routine",
                "description": "Accepts JSON or multipart/form-data. An optional file part is stored as the attachment.",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateAnnouncementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AnnouncementEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements/{id}": {
            "delete": {
                "tags": ["Announcements"],
                "summary": "Delete an announcement",
                "description": "Allowed for the author and the chairman.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements/{id}/status": {
            "put": {
                "tags": ["Announcements"],
                "summary": "Change an announcement's status",
                "description": "Chairman only. The status must be legal for the item's type.",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AnnouncementEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feedback": {
            "get": {
                "tags": ["Feedback"],
                "summary": "List feedback",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "target_announcement_id", "required": false, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FeedbackListEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Feedback"],
                "summary": "Send feedback",
                "description": "Omit target_announcement for general feedback to administration.",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateFeedbackRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/FeedbackEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feedback/{id}": {
            "delete": {
                "tags": ["Feedback"],
                "summary": "Delete feedback",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Counters snapshot for administration",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "UserSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["CHAIRMAN", "COMPUTER_OPERATOR", "COORDINATOR", "TEACHER", "BATCH"]}
            }
        },
        "BatchSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "session": {"type": "string"}
            }
        },
        "Announcement": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "author_id": {"type": "string"},
                "target_batch_id": {"type": "string"},
                "type": {"type": "string", "enum": ["NOTICE", "ANNOUNCEMENT", "ROUTINE"]},
                "status": {"type": "string", "enum": ["PENDING_APPROVAL", "PENDING_FEEDBACK", "APPROVED"]},
                "file_url": {"type": "string"},
                "feedback": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"},
                "author": {"$ref": "#/definitions/UserSummary"},
                "target_batch": {"$ref": "#/definitions/BatchSummary"}
            }
        },
        "Feedback": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "message_content": {"type": "string"},
                "is_anonymous": {"type": "boolean"},
                "from_batch_id": {"type": "string"},
                "from_user_id": {"type": "string"},
                "target_announcement_id": {"type": "string"},
                "sent_at": {"type": "string", "format": "date-time"},
                "from_user": {"$ref": "#/definitions/UserSummary"},
                "from_batch": {"$ref": "#/definitions/BatchSummary"}
            }
        },
        "CreateAnnouncementRequest": {
            "type": "object",
            "required": ["title", "content", "type"],
            "properties": {
                "title": {"type": "string", "maxLength": 255},
                "content": {"type": "string"},
                "type": {"type": "string", "enum": ["NOTICE", "ANNOUNCEMENT", "ROUTINE"]},
                "target_batch": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["PENDING_APPROVAL", "PENDING_FEEDBACK", "APPROVED"]},
                "feedback": {"type": "string"}
            }
        },
        "CreateFeedbackRequest": {
            "type": "object",
            "required": ["message_content"],
            "properties": {
                "message_content": {"type": "string", "maxLength": 4000},
                "is_anonymous": {"type": "boolean"},
                "target_announcement": {"type": "string"}
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
                "meta": {"type": "object"}
            }
        },
        "AnnouncementEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Announcement"}
            }
        },
        "AnnouncementListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Announcement"}},
                "meta": {"type": "object"}
            }
        },
        "FeedbackEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Feedback"}
            }
        },
        "FeedbackListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Feedback"}}
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
