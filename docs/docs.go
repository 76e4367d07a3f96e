// Package docs registers the swagger document for the JSON session API.
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
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Devolve o Authentication Context da sessão atual",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AuthContext"}},
                    "401": {"description": "Sem sessão válida", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Verifica a credencial na coleção da role (ou pela política do login genérico), emite o cookie de sessão e devolve o token e o destino da role.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Autentica um principal e abre uma sessão",
                "parameters": [
                    {
                        "description": "Email, senha e role opcional",
                        "name": "credentials",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/session.LoginRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Sessão criada", "schema": {"$ref": "#/definitions/domain.SessionResponse"}},
                    "400": {"description": "Payload inválido", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "401": {"description": "Credenciais inválidas", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "500": {"description": "Erro interno do servidor", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["session"],
                "summary": "Encerra a sessão atual",
                "responses": {
                    "204": {"description": "Sessão revogada"},
                    "401": {"description": "Sem sessão válida", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.AuthContext": {
            "type": "object",
            "properties": {
                "principal_id": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "example": "HOTEL_OWNER"},
                "enabled": {"type": "boolean"},
                "expires_at": {"type": "string"}
            }
        },
        "domain.ErrorResponse": {
            "description": "Estrutura padronizada para respostas de erro na API.",
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 401},
                "category": {"type": "string", "example": "INVALID_CREDENTIALS"},
                "message": {"type": "string", "example": "Invalid credentials."}
            }
        },
        "domain.SessionResponse": {
            "description": "Token de sessão emitido e destino da role resolvida.",
            "type": "object",
            "properties": {
                "token": {"type": "string", "example": "eyJhbGciOiJIUzI1NiIs..."},
                "role": {"type": "string", "example": "HOTEL_OWNER"},
                "redirect": {"type": "string", "example": "/hotel-owner/dashboard"}
            }
        },
        "session.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "hotel.owner@grandaura.com"},
                "password": {"type": "string", "example": "hotel123"},
                "role": {"type": "string", "example": "HOTEL_OWNER"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Grand Aura Authentication Gateway API",
	Description:      "Sessões do gateway de autenticação multi-role do Grand Aura.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
