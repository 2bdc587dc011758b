package engine

import "errors"

// Terminal errors: returned to the caller, who maps them to an HTTP status.
// Upstream failures (dialogue generator, grade endpoint) are never surfaced
// through these; they are absorbed with fallback values and logged.
var (
	// ErrSessionNotFound means no session exists for the given token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrScenarioNotFound means the scenario does not exist or is inactive.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrSessionClosed means the session is completed or abandoned. No
	// further mutation is permitted.
	ErrSessionClosed = errors.New("session is closed")
)
