package domain

// SessionOutcome is the result of opening a chat session. Creating a
// session is required for project creation, so failures travel as errors
// alongside a zero outcome.
type SessionOutcome struct {
	SessionID string
}

// UploadOutcome is the result of forwarding a PDF to a chat session.
// Uploads are best effort: a failed upload is reported here and never
// returned as an error.
type UploadOutcome struct {
	SessionID string
	Delivered bool
	Err       error
}

// CreateProjectResult pairs a stored project with the outcome of the
// chat upload that followed it.
type CreateProjectResult struct {
	Project *Project
	Upload  UploadOutcome
}
