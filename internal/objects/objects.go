// Package objects contains the wire and domain types shared by the upstream
// clients, the biz services and the HTTP API.
// Request/response types use camel case json tags, upstream directory types
// keep the snake case used by the accounts and projects APIs.
package objects
