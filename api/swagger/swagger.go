package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Admin API",
        "description": "Administrative backend for school management",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Login and session introspection"},
        {"name": "Students", "description": "Student roster with behavioral and tuition records"},
        {"name": "Teachers", "description": "Teacher roster with salary payments"},
        {"name": "Classes", "description": "Class groups and homeroom assignment"},
        {"name": "Subjects", "description": "Subject catalogue"},
        {"name": "Announcements", "description": "Targeted announcements with publication windows"},
        {"name": "Attendance", "description": "Daily attendance and statistics"},
        {"name": "Assignments", "description": "Assignments and graded results"},
        {"name": "Schedules", "description": "Class and exam schedule entries"},
        {"name": "Finance", "description": "Payments, invoices and installment plans"},
        {"name": "Reports", "description": "CSV/PDF exports with signed download links"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "responses": {
                    "200": {"description": "Access token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials or inactive account"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Describe the authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Current user", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Paginated students", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create a student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Referenced class does not exist"}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Student detail"},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Students"],
                "summary": "Update a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Still referenced by other records"}
                }
            }
        },
        "/students/{id}/behavioral-records": {
            "post": {
                "tags": ["Students"],
                "summary": "Append a behavioral record",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"201": {"description": "Recorded"}}
            }
        },
        "/students/{id}/tuition-payments": {
            "post": {
                "tags": ["Students"],
                "summary": "Record a tuition payment against the student balance",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Recorded"},
                    "400": {"description": "Payment exceeds outstanding balance"}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated teachers"}}
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Create a teacher",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/teachers/{id}/salary-payments": {
            "post": {
                "tags": ["Teachers"],
                "summary": "Record a salary payment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"201": {"description": "Recorded"}}
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated classes"}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create a class",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Homeroom teacher does not exist"}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List subjects",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated subjects"}}
            },
            "post": {
                "tags": ["Subjects"],
                "summary": "Create a subject",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/announcements": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List announcements",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated announcements"}}
            },
            "post": {
                "tags": ["Announcements"],
                "summary": "Create an announcement",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance records",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated records"}}
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance for a student and date",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Marked"}}
            }
        },
        "/attendance/statistics": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Aggregate attendance statistics",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Statistics with cache metadata"}}
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated assignments"}}
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create an assignment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Referenced subject, teacher or class does not exist"}
                }
            }
        },
        "/assignments/{id}/results": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List results for an assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Results"}}
            }
        },
        "/assignments/{id}/results/{studentId}": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Record or replace a student's result",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "studentId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "Recorded"}}
            }
        },
        "/assignments/{id}/results/statistics": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Grade statistics over graded results",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Statistics"}}
            }
        },
        "/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List schedule entries",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated entries"}}
            },
            "post": {
                "tags": ["Schedules"],
                "summary": "Create a schedule entry",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/finance/payments": {
            "get": {
                "tags": ["Finance"],
                "summary": "List payments",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated payments"}}
            },
            "post": {
                "tags": ["Finance"],
                "summary": "Create a payment",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/finance/invoices": {
            "get": {
                "tags": ["Finance"],
                "summary": "List invoices",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated invoices"}}
            },
            "post": {
                "tags": ["Finance"],
                "summary": "Create an invoice",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/finance/installment-plans": {
            "get": {
                "tags": ["Finance"],
                "summary": "List installment plans",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Paginated plans"}}
            },
            "post": {
                "tags": ["Finance"],
                "summary": "Create an installment plan",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/finance/items/{id}": {
            "get": {
                "tags": ["Finance"],
                "summary": "Resolve a finance record by its PAY-, INV- or PLAN- prefixed ID",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Resolved record"},
                    "400": {"description": "Unknown prefix"}
                }
            },
            "delete": {
                "tags": ["Finance"],
                "summary": "Delete a finance record by prefixed ID",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Generate a CSV or PDF export",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Export stored, signed download URL returned"}}
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Stream a generated export using a signed token",
                "parameters": [{"name": "token", "in": "query", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Token invalid or expired"}
                }
            }
        }
    },
    "definitions": {
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
                "fields": {"type": "object"}
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
