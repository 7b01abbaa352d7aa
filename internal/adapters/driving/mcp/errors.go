// Package mcp provides an MCP (Model Context Protocol) server adapter for drafter.
// It lets AI assistants search indexed notes, assemble grounding context and
// run generations through the resilient provider chain.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrServiceUnavailable is returned by tools whose backing service was not provided.
var ErrServiceUnavailable = errors.New("mcp: service not configured")
