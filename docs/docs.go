// Package docs holds the OpenAPI 2.0 document served at /openapi.json.
// Maintained by hand; the handler annotations are the source of truth,
// so keep both in sync when a route changes.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service banner",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.RootResponse"}}
                }
            }
        },
        "/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PingResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Request a magic-link login",
                "parameters": [
                    {"type": "string", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "name": "return_url", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.LoginChallengeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/auth/token": {
            "get": {
                "tags": ["auth"],
                "summary": "Verify a magic-link secret from an emailed link",
                "parameters": [
                    {"type": "string", "name": "email", "in": "query", "required": true},
                    {"type": "string", "name": "token", "in": "query", "required": true},
                    {"type": "string", "name": "return_url", "in": "query", "required": true}
                ],
                "responses": {
                    "302": {"description": "Found"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "tags": ["auth"],
                "summary": "Verify a magic-link secret",
                "parameters": [
                    {"type": "string", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "name": "token", "in": "formData", "required": true},
                    {"type": "string", "name": "return_url", "in": "formData", "required": true}
                ],
                "responses": {
                    "302": {"description": "Found"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/oauth/{provider}/login": {
            "get": {
                "tags": ["oauth"],
                "summary": "Start a federated login",
                "parameters": [
                    {"type": "string", "name": "provider", "in": "path", "required": true},
                    {"type": "string", "name": "return_url", "in": "query"}
                ],
                "responses": {
                    "302": {"description": "Found"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/oauth/{provider}/callback": {
            "get": {
                "tags": ["oauth"],
                "summary": "Complete a federated login",
                "parameters": [
                    {"type": "string", "name": "provider", "in": "path", "required": true},
                    {"type": "string", "name": "code", "in": "query", "required": true},
                    {"type": "string", "name": "state", "in": "query", "required": true}
                ],
                "responses": {
                    "302": {"description": "Found"},
                    "400": {"description": "HTML error page", "schema": {"type": "string"}}
                }
            }
        },
        "/auth": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["jwt"],
                "summary": "Exchange an API token for a session JWT",
                "parameters": [
                    {"type": "string", "name": "token", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ExchangeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/verify": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jwt"],
                "summary": "Verify a session JWT",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SessionClaims"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/.well-known/jwks.json": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jwt"],
                "summary": "Public signing keys",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/api/tokens": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "List API tokens",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.ApiTokenInfo"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Create an API token",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TokenCreateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokenCreateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/tokens/{uid}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Delete an API token",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"type": "string", "name": "uid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/tokens/{uid}/revoke": {
            "post": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Revoke an API token",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"type": "string", "name": "uid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokenActionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.ApiTokenInfo": {
            "type": "object",
            "properties": {
                "uid": {"type": "string"},
                "user_uid": {"type": "string"},
                "name": {"type": "string"},
                "token_display": {"type": "string"},
                "created": {"type": "string"},
                "expires": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "model.ExchangeResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "model.LoginChallengeResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "email": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "model.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "model.PingResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "model.RootResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "message": {"type": "string"}}
        },
        "model.SessionClaims": {
            "type": "object",
            "properties": {
                "sub": {"type": "string"},
                "user_id": {"type": "string"},
                "name": {"type": "string"},
                "scopes": {"type": "array", "items": {"type": "string"}},
                "iat": {"type": "integer"},
                "exp": {"type": "integer"}
            }
        },
        "model.TokenActionResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "token_info": {"$ref": "#/definitions/model.ApiTokenInfo"}
            }
        },
        "model.TokenCreateRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "expires_days": {"type": "integer"}
            }
        },
        "model.TokenCreateResponse": {
            "type": "object",
            "properties": {
                "new_token": {"type": "string"},
                "token_info": {"$ref": "#/definitions/model.ApiTokenInfo"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Gnosis Auth API",
	Description:      "Identity and token-issuance service for the Gnosis ecosystem.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
