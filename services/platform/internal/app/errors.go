package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not
	// match. The message is user-facing and must not enable account enumeration.
	ErrInvalidCredentials = errors.New("Incorrect username or password")

	ErrTopicRequired = errors.New("topic required")

	ErrProjectNotFound = errors.New("Project not found")

	// ErrNotOwner is returned when a caller touches a project owned by someone
	// else. Maps to 403, not 404, matching the original backend.
	ErrNotOwner = errors.New("not authorized for this project")

	ErrTitleRequired = errors.New("title required")
	ErrTypeRequired  = errors.New("type required")
)
