package tui

import "errors"

// ErrMissingProjectService is returned when the project service is not provided.
var ErrMissingProjectService = errors.New("tui: project service is required")

// ErrMissingFormService is returned when the form service is not provided.
var ErrMissingFormService = errors.New("tui: form service is required")
