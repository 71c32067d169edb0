package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academia API",
        "description": "Back-office API for academy administration",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and user management"},
        {"name": "Programs", "description": "Program catalog"},
        {"name": "Teachers", "description": "Teacher roster"},
        {"name": "Classrooms", "description": "Physical and virtual rooms"},
        {"name": "Students", "description": "Student roster"},
        {"name": "Groups", "description": "Cohorts and schedules"},
        {"name": "Finances", "description": "Enrollment, payments and grades"},
        {"name": "Academic", "description": "Attendance and enrollment lifecycle"},
        {"name": "Reports", "description": "Dashboard, reports and exports"}
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Profile of the authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/finances/enroll": {
            "post": {
                "tags": ["Finances"],
                "summary": "Enroll a student into a group",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Student already enrolled"}
                }
            }
        },
        "/finances/pay": {
            "post": {
                "tags": ["Finances"],
                "summary": "Record a payment against an enrollment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordPaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic/attendance": {
            "post": {
                "tags": ["Academic"],
                "summary": "Record one day of attendance for a group",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/dashboard": {
            "get": {
                "tags": ["Reports"],
                "summary": "Aggregate academy snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "EnrollStudentRequest": {
            "type": "object",
            "required": ["studentId", "groupId"],
            "properties": {
                "studentId": {"type": "string"},
                "groupId": {"type": "string"}
            }
        },
        "RecordPaymentRequest": {
            "type": "object",
            "required": ["enrollmentId", "amount", "method"],
            "properties": {
                "enrollmentId": {"type": "string"},
                "amount": {"type": "number"},
                "method": {"type": "string", "enum": ["CASH", "CARD", "TRANSFER"]}
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
