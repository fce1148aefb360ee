//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

type apiDoc struct{}

func (apiDoc) ReadDoc() string { return swaggerDoc }

func init() {
	swag.Register(swag.Name, apiDoc{})
}

// MountSwagger serves the API documentation UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

const swaggerDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "glbview API",
    "description": "Browse, upload and preview .glb models.",
    "version": "1.0"
  },
  "basePath": "/",
  "schemes": ["http"],
  "paths": {
    "/api/models": {
      "get": {
        "summary": "List models found in the models directory",
        "produces": ["application/json"],
        "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}}
      }
    },
    "/api/sessions": {
      "post": {
        "summary": "Open a viewer session",
        "produces": ["application/json"],
        "responses": {
          "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.ViewerState"}},
          "503": {"description": "Shutting down", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
        }
      }
    },
    "/api/sessions/{id}": {
      "get": {
        "summary": "Get session state",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ViewerState"}},
          "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
        }
      },
      "delete": {
        "summary": "Close a session and release its uploads",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
      }
    },
    "/api/sessions/{id}/select": {
      "post": {
        "summary": "Select a catalog entry",
        "consumes": ["application/json"],
        "parameters": [
          {"name": "id", "in": "path", "required": true, "type": "string"},
          {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.SelectRequest"}}
        ],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ViewerState"}},
          "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
        }
      }
    },
    "/api/sessions/{id}/upload": {
      "post": {
        "summary": "Upload a .glb file and select it",
        "consumes": ["multipart/form-data"],
        "parameters": [
          {"name": "id", "in": "path", "required": true, "type": "string"},
          {"name": "file", "in": "formData", "required": true, "type": "file"}
        ],
        "responses": {
          "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.ViewerState"}},
          "400": {"description": "Not a .glb file", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
          "413": {"description": "Too large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
        }
      }
    },
    "/api/sessions/{id}/widget": {
      "post": {
        "summary": "Report a widget lifecycle event",
        "consumes": ["application/json"],
        "parameters": [
          {"name": "id", "in": "path", "required": true, "type": "string"},
          {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.WidgetEventRequest"}}
        ],
        "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.WidgetEventResponse"}}}
      }
    },
    "/api/sessions/{id}/refresh": {
      "post": {
        "summary": "Re-run discovery for a session",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ViewerState"}}}
      }
    },
    "/status": {
      "get": {
        "summary": "Server status",
        "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
      }
    }
  },
  "definitions": {
    "types.ModelDescriptor": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "url": {"type": "string"},
        "description": {"type": "string"},
        "isLocal": {"type": "boolean"}
      }
    },
    "types.ModelsResponse": {
      "type": "object",
      "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/types.ModelDescriptor"}}}
    },
    "types.ErrorResponse": {
      "type": "object",
      "properties": {"error": {"type": "string"}, "code": {"type": "integer"}}
    },
    "types.SelectRequest": {
      "type": "object",
      "properties": {"key": {"type": "string"}}
    },
    "types.WidgetEventRequest": {
      "type": "object",
      "properties": {"event": {"type": "string", "enum": ["load", "error"]}, "src": {"type": "string"}}
    },
    "types.ViewerState": {
      "type": "object",
      "properties": {
        "session_id": {"type": "string"},
        "catalog": {"type": "array", "items": {"type": "object"}},
        "selected_key": {"type": "string"},
        "selected_url": {"type": "string"},
        "selected_name": {"type": "string"},
        "status": {"type": "string", "enum": ["idle", "loading", "ready", "error"]},
        "error": {"type": "string"},
        "timed_out": {"type": "boolean"},
        "uploaded_count": {"type": "integer"},
        "widget": {"type": "object"},
        "version": {"type": "integer"}
      }
    },
    "types.WidgetEventResponse": {
      "type": "object",
      "properties": {"delivered": {"type": "boolean"}, "state": {"$ref": "#/definitions/types.ViewerState"}}
    },
    "types.StatusResponse": {
      "type": "object",
      "properties": {
        "sessions": {"type": "integer"},
        "blobs": {"type": "integer"},
        "models_dir": {"type": "string"},
        "models_dir_state": {"type": "string"},
        "uptime_seconds": {"type": "integer"},
        "server_time_unix": {"type": "integer"}
      }
    }
  }
}`
