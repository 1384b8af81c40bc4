package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutor Sessions API",
        "description": "Session scheduling, booking and live-room access for the tutoring marketplace",
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
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Availability", "description": "Tutor weekly availability windows"},
        {"name": "Sessions", "description": "Session scheduling and slot suggestions"},
        {"name": "Bookings", "description": "Student session bookings"},
        {"name": "Requests", "description": "Reschedule and add-session approvals"},
        {"name": "Rooms", "description": "Live-room access tokens"}
    ],
    "paths": {
        "/sessions/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List own availability windows",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Availability"],
                "summary": "Create availability window",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAvailabilityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/availability/{id}": {
            "delete": {
                "tags": ["Availability"],
                "summary": "Delete availability window",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Schedule a session on an unpublished course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlap or published course", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Outside availability", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "delete": {
                "tags": ["Sessions"],
                "summary": "Cancel a session and its bookings",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid state or active enrollment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/duplicate": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Copy a session to a new interval",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DuplicateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/course/{courseId}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List sessions of a course",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/tutor": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List own sessions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/tutor/export": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Export own calendar",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/sessions/suggested-slots": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Suggest free slots inside availability",
                "parameters": [
                    {"name": "courseId", "in": "query", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date-time"},
                    {"name": "duration", "in": "query", "type": "integer"},
                    {"name": "maxResults", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/book": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already booked or full", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List own bookings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/bookings/{id}": {
            "delete": {
                "tags": ["Bookings"],
                "summary": "Cancel own booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/bookings/fan-out": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book every enrolled student into every active session",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/room-token": {
            "post": {
                "tags": ["Rooms"],
                "summary": "Mint a live-room token",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not a participant", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Session ended", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "425": {"description": "Too early", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/reschedule": {
            "post": {
                "tags": ["Requests"],
                "summary": "Submit a reschedule request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRescheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/reschedule/mine": {
            "get": {
                "tags": ["Requests"],
                "summary": "List own reschedule requests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/reschedule/pending": {
            "get": {
                "tags": ["Requests"],
                "summary": "List pending reschedule requests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/reschedule/{id}": {
            "patch": {
                "tags": ["Requests"],
                "summary": "Approve or reject a reschedule request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/add-session": {
            "post": {
                "tags": ["Requests"],
                "summary": "Submit an add-session request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAddSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/add-session/mine": {
            "get": {
                "tags": ["Requests"],
                "summary": "List own add-session requests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/add-session/pending": {
            "get": {
                "tags": ["Requests"],
                "summary": "List pending add-session requests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/add-session/{id}": {
            "patch": {
                "tags": ["Requests"],
                "summary": "Approve or reject an add-session request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateAvailabilityRequest": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "string", "enum": ["MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"]},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "12:00"}
            },
            "required": ["dayOfWeek", "startTime", "endTime"]
        },
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "startTime": {"type": "string", "format": "date-time"},
                "endTime": {"type": "string", "format": "date-time"},
                "title": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["courseId", "startTime", "endTime"]
        },
        "DuplicateSessionRequest": {
            "type": "object",
            "properties": {
                "startTime": {"type": "string", "format": "date-time"},
                "endTime": {"type": "string", "format": "date-time"}
            },
            "required": ["startTime", "endTime"]
        },
        "CreateRescheduleRequest": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "requestedStartTime": {"type": "string", "format": "date-time"},
                "requestedEndTime": {"type": "string", "format": "date-time"},
                "reason": {"type": "string", "minLength": 10}
            },
            "required": ["sessionId", "requestedStartTime", "requestedEndTime", "reason"]
        },
        "CreateAddSessionRequest": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "startTime": {"type": "string", "format": "date-time"},
                "endTime": {"type": "string", "format": "date-time"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "reason": {"type": "string", "minLength": 10}
            },
            "required": ["courseId", "startTime", "endTime", "reason"]
        },
        "ReviewRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["APPROVED", "REJECTED"]},
                "adminNote": {"type": "string"}
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
