package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Fleetline API",
        "description": "Fleet scheduling backend: routes, recurring templates, daily instances and departure alerts",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Drivers", "description": "Driver roster management"},
        {"name": "Vehicles", "description": "Fleet vehicle management"},
        {"name": "Customers", "description": "Shipping customer management"},
        {"name": "Routes", "description": "Transport corridors and distance profiles"},
        {"name": "Route Schedules", "description": "Recurring schedule templates"},
        {"name": "Schedule Instances", "description": "Materialized daily occurrences"},
        {"name": "Scheduler", "description": "Bulk generation, conflicts and notifier runs"},
        {"name": "Board", "description": "Denormalized schedule board"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/drivers": {
            "get": {
                "tags": ["Drivers"],
                "summary": "List drivers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Drivers"],
                "summary": "Create driver",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDriverRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drivers/{id}": {
            "get": {
                "tags": ["Drivers"],
                "summary": "Get driver",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Drivers"],
                "summary": "Update driver",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDriverRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Drivers"],
                "summary": "Deactivate driver",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/vehicles": {
            "get": {
                "tags": ["Vehicles"],
                "summary": "List vehicles",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Vehicles"],
                "summary": "Create vehicle",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/customers": {
            "get": {
                "tags": ["Customers"],
                "summary": "List customers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Customers"],
                "summary": "Create customer",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routes": {
            "get": {
                "tags": ["Routes"],
                "summary": "List routes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Routes"],
                "summary": "Create route",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routes/{id}/distance": {
            "get": {
                "tags": ["Routes"],
                "summary": "Get route distance profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routes/distances/batch": {
            "post": {
                "tags": ["Routes"],
                "summary": "Compute distances for several routes",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchDistancesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/route-schedules": {
            "get": {
                "tags": ["Route Schedules"],
                "summary": "List route schedules",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Route Schedules"],
                "summary": "Create route schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRouteScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/route-schedules/{id}/resolve": {
            "post": {
                "tags": ["Route Schedules"],
                "summary": "Resolve a schedule instance for one date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveInstanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Template not found"},
                    "422": {"description": "Missing configuration"}
                }
            }
        },
        "/schedule-instances": {
            "get": {
                "tags": ["Schedule Instances"],
                "summary": "List schedule instances",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-instances/{id}/status": {
            "patch": {
                "tags": ["Schedule Instances"],
                "summary": "Update instance lifecycle status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateInstanceStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-instances/{id}/alerts": {
            "get": {
                "tags": ["Schedule Instances"],
                "summary": "List departure alerts for an instance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/generate": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Generate schedule instances for a date range",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateInstancesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/conflicts": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Detect double-booked drivers and vehicles",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/notifications/run": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Run one near-deadline departure scan",
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/NotificationRunRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/board": {
            "get": {
                "tags": ["Board"],
                "summary": "Get the schedule board",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/board/export": {
            "get": {
                "tags": ["Board"],
                "summary": "Export the schedule board",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "CreateDriverRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "license_number": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"}
            },
            "required": ["full_name", "license_number"]
        },
        "CreateRouteScheduleRequest": {
            "type": "object",
            "properties": {
                "route_id": {"type": "string"},
                "weekdays": {"type": "array", "items": {"type": "string"}},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "default_standby_time": {"type": "string"},
                "default_departure_time": {"type": "string"},
                "default_driver_id": {"type": "string"},
                "default_vehicle_id": {"type": "string"},
                "priority": {"type": "integer"},
                "status": {"type": "string"}
            },
            "required": ["route_id", "start_date"]
        },
        "ResolveInstanceRequest": {
            "type": "object",
            "properties": {
                "occurrence_date": {"type": "string"},
                "standby_date": {"type": "string"},
                "standby_time": {"type": "string"},
                "departure_time": {"type": "string"},
                "driver_id": {"type": "string"},
                "vehicle_id": {"type": "string"},
                "reason": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["occurrence_date"]
        },
        "GenerateInstancesRequest": {
            "type": "object",
            "properties": {
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "schedule_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["start_date", "end_date"]
        },
        "UpdateInstanceStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["SCHEDULED", "CONFIRMED", "IN_PROGRESS", "COMPLETED", "CANCELLED"]}
            },
            "required": ["status"]
        },
        "NotificationRunRequest": {
            "type": "object",
            "properties": {
                "lookahead_hours": {"type": "number"},
                "channels": {"type": "array", "items": {"type": "string"}}
            }
        },
        "BatchDistancesRequest": {
            "type": "object",
            "properties": {
                "route_ids": {"type": "array", "items": {"type": "string"}},
                "refresh": {"type": "boolean"}
            },
            "required": ["route_ids"]
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
