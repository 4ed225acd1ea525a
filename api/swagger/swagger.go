package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Rota API",
        "description": "Retail workforce scheduling service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Employees", "description": "Roster member management"},
        {"name": "Availability", "description": "Weekly availability grids"},
        {"name": "Absences", "description": "Absence intervals"},
        {"name": "Coverage", "description": "Minimum headcount rules"},
        {"name": "Settings", "description": "Store calendar and shift types"},
        {"name": "Roster", "description": "Schedule generation and retrieval"}
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
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees": {
            "get": {
                "tags": ["Employees"],
                "summary": "List employees",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "group", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "keyholder", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Employees"],
                "summary": "Create employee",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEmployeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/{id}": {
            "get": {
                "tags": ["Employees"],
                "summary": "Get employee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Employees"],
                "summary": "Update employee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEmployeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Employees"],
                "summary": "Deactivate employee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/employees/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Get weekly grid",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Availability"],
                "summary": "Replace weekly grid",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceAvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/absences": {
            "get": {
                "tags": ["Absences"],
                "summary": "List absences",
                "parameters": [
                    {"name": "employeeId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Absences"],
                "summary": "Record absence",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAbsenceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/absences/{id}": {
            "put": {
                "tags": ["Absences"],
                "summary": "Update absence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAbsenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Absences"],
                "summary": "Delete absence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/coverage-rules": {
            "get": {
                "tags": ["Coverage"],
                "summary": "List one-off rules",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Coverage"],
                "summary": "Create one-off rule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCoverageRuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recurring-rules": {
            "get": {
                "tags": ["Coverage"],
                "summary": "List recurring rules",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Coverage"],
                "summary": "Create recurring rule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRecurringRuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get store settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Replace store settings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/generate": {
            "post": {
                "tags": ["Roster"],
                "summary": "Generate a roster",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRosterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Store settings not configured"}
                }
            }
        },
        "/roster/runs": {
            "get": {
                "tags": ["Roster"],
                "summary": "List recent runs",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/runs/{id}": {
            "get": {
                "tags": ["Roster"],
                "summary": "Get run status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/assignments": {
            "get": {
                "tags": ["Roster"],
                "summary": "List stored assignments",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "employeeId", "in": "query", "type": "string"},
                    {"name": "runId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/export": {
            "get": {
                "tags": ["Roster"],
                "summary": "Export assignments as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Rendered document"},
                    "412": {"description": "Exports disabled"}
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
        "RefreshRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "CreateEmployeeRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "group": {"type": "string", "enum": ["TL", "VZ", "TZ", "GFB"]},
                "keyholder": {"type": "boolean"},
                "contractedHours": {"type": "number"},
                "maxHoursPerWeek": {"type": "number"},
                "maxHoursPerDay": {"type": "number"},
                "minRestHours": {"type": "number"}
            },
            "required": ["firstName", "lastName", "group"]
        },
        "ReplaceAvailabilityRequest": {
            "type": "object",
            "properties": {
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AvailabilityEntry"}
                }
            }
        },
        "AvailabilityEntry": {
            "type": "object",
            "properties": {
                "weekday": {"type": "integer", "minimum": 0, "maximum": 6},
                "hour": {"type": "integer", "minimum": 0, "maximum": 23},
                "kind": {"type": "string", "enum": ["FIXED", "PREFERRED", "AVAILABLE", "UNAVAILABLE"]}
            }
        },
        "CreateAbsenceRequest": {
            "type": "object",
            "properties": {
                "employeeId": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "type": {"type": "string", "enum": ["VACATION", "SICK", "UNPAID", "OTHER"]},
                "note": {"type": "string"}
            },
            "required": ["employeeId", "startDate", "endDate", "type"]
        },
        "CreateCoverageRuleRequest": {
            "type": "object",
            "properties": {
                "weekday": {"type": "integer", "minimum": 0, "maximum": 6},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "minEmployees": {"type": "integer"},
                "requiresKeyholder": {"type": "boolean"},
                "requiredGroup": {"type": "string"}
            },
            "required": ["startTime", "endTime", "minEmployees"]
        },
        "CreateRecurringRuleRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "weekdays": {"type": "array", "items": {"type": "integer"}},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "minEmployees": {"type": "integer"},
                "requiresKeyholder": {"type": "boolean"},
                "requiredGroup": {"type": "string"},
                "validFrom": {"type": "string"},
                "validUntil": {"type": "string"},
                "active": {"type": "boolean"}
            },
            "required": ["name", "weekdays", "startTime", "endTime", "minEmployees"]
        },
        "UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "weekdays": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/WeekdayHoursInput"}
                },
                "specialDays": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SpecialDayInput"}
                },
                "shiftTypes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ShiftTypeInput"}
                }
            },
            "required": ["weekdays"]
        },
        "WeekdayHoursInput": {
            "type": "object",
            "properties": {
                "open": {"type": "boolean"},
                "openingTime": {"type": "string"},
                "closingTime": {"type": "string"}
            }
        },
        "SpecialDayInput": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "closed": {"type": "boolean"},
                "openingTime": {"type": "string"},
                "closingTime": {"type": "string"},
                "note": {"type": "string"}
            },
            "required": ["date"]
        },
        "ShiftTypeInput": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            },
            "required": ["name", "startTime", "endTime"]
        },
        "GenerateRosterRequest": {
            "type": "object",
            "properties": {
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "force": {"type": "boolean"}
            },
            "required": ["startDate", "endDate"]
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
