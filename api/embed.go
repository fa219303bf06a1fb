package api

import _ "embed"

// OpenAPI is the HTTP API document served at /openapi.yml and used for
// request validation.
//
//go:embed openapi.yml
var OpenAPI []byte
