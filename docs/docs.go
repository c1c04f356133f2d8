// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/catalog": {"get": {"tags": ["Catalog"], "summary": "价目表", "responses": {"200": {"description": "OK"}}}},
        "/api/upload": {"post": {"tags": ["Upload"], "summary": "上传图片", "consumes": ["multipart/form-data"],
            "parameters": [{"type": "file", "name": "image", "in": "formData", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "413": {"description": "Too Large"}}}},
        "/api/uploads/{id}": {"get": {"tags": ["Upload"], "summary": "查询上传记录",
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/checkout": {"post": {"tags": ["Order"], "summary": "发起支付", "consumes": ["application/json"],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Payment processor error"}}}},
        "/api/webhook/stripe": {"post": {"tags": ["Order"], "summary": "Stripe 回调",
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad signature or payload"}}}},
        "/api/orders/session/{sessionId}": {"get": {"tags": ["Order"], "summary": "按支付会话查询订单",
            "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/admin/login": {"post": {"tags": ["Admin"], "summary": "管理员登录",
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/admin/orders": {"get": {"tags": ["Admin"], "summary": "订单列表", "security": [{"BearerAuth": []}],
            "parameters": [{"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/admin/orders/{id}": {"get": {"tags": ["Admin"], "summary": "订单详情", "security": [{"BearerAuth": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/admin/orders/{id}/status": {"patch": {"tags": ["Admin"], "summary": "修改订单状态", "security": [{"BearerAuth": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Unknown status"}, "404": {"description": "Not Found"}}}},
        "/health": {"get": {"tags": ["Common"], "summary": "健康检查", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Poster Shop API",
	Description:      "Custom holiday poster orders: uploads, checkout, payment webhooks and order tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
