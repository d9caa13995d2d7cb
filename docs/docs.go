// Package docs holds the OpenAPI description served at /api/v1/swagger.json.
// Regenerate with `swag init -g cmd/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/devices": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["devices"],
                "summary": "Create a new device",
                "parameters": [{"in": "body", "name": "device", "required": true, "schema": {"$ref": "#/definitions/models.DeviceForm"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Device"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/devices/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["devices"],
                "summary": "Get a device by ID",
                "parameters": [{"type": "integer", "in": "path", "name": "id", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Device"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["devices"],
                "summary": "Update a device",
                "parameters": [
                    {"type": "integer", "in": "path", "name": "id", "required": true},
                    {"in": "body", "name": "device", "required": true, "schema": {"$ref": "#/definitions/models.DeviceForm"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Device"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["devices"],
                "summary": "Delete a device",
                "parameters": [
                    {"type": "integer", "in": "path", "name": "id", "required": true},
                    {"in": "body", "name": "confirm", "required": true, "schema": {"$ref": "#/definitions/models.DeleteForm"}}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/devices/{id}/detail": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["devices"],
                "summary": "Get device detail",
                "parameters": [{"type": "integer", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/devices/{id}/delete-stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["devices"],
                "summary": "Get device delete statistics",
                "parameters": [{"type": "integer", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/devices/{id}/config": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["devices"],
                "summary": "Send configuration to a device",
                "parameters": [
                    {"type": "integer", "in": "path", "name": "id", "required": true},
                    {"in": "body", "name": "config", "required": true, "schema": {"$ref": "#/definitions/models.ConfigForm"}}
                ],
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/devices/{id}/blobs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["blobs"],
                "summary": "List device blobs",
                "parameters": [{"type": "integer", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/devices/{id}/blobs/{blobId}/download": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/octet-stream"],
                "tags": ["blobs"],
                "summary": "Download a blob",
                "parameters": [
                    {"type": "integer", "in": "path", "name": "id", "required": true},
                    {"type": "integer", "in": "path", "name": "blobId", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}
            }
        }
    },
    "definitions": {
        "errors.APIError": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "integer"},
                "request_id": {"type": "string"}
            }
        },
        "models.DeviceForm": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "passphrase": {"type": "string"},
                "desc": {"type": "string"},
                "json_token": {"type": "string"},
                "blob_token": {"type": "string"},
                "monitoring": {"type": "boolean"}
            }
        },
        "models.Device": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "passphrase": {"type": "string"},
                "description": {"type": "string"},
                "monitoring": {"type": "boolean"},
                "json_token": {"type": "string"},
                "blob_token": {"type": "string"},
                "config_ver": {"type": "integer"},
                "first_login": {"type": "string"},
                "last_login": {"type": "string"},
                "last_bad_login": {"type": "string"}
            }
        },
        "models.DeleteForm": {
            "type": "object",
            "properties": {"confirm": {"type": "boolean"}}
        },
        "models.ConfigForm": {
            "type": "object",
            "properties": {"config_data": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "RA Hub API",
	Description:      "Device administration for the RA sensor hub.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
