// Package mcp exposes pageform projects and form generation to AI assistants
// over the Model Context Protocol.
package mcp

import "errors"

// ErrMissingProjectService is returned when the project service is not provided.
var ErrMissingProjectService = errors.New("mcp: project service is required")

// ErrMissingFormService is returned when the form service is not provided.
var ErrMissingFormService = errors.New("mcp: form service is required")
