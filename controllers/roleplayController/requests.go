package roleplayController

// StartRequest is the validated body of POST /api/roleplay/start.
type StartRequest struct {
	UserID         uint   `json:"user_id"`
	ScenarioID     uint   `json:"scenario_id"`
	ContextID      string `json:"context_id"`
	ResourceLinkID string `json:"resource_link_id"`
}

// ChatRequest is the validated body of POST /api/roleplay/chat.
type ChatRequest struct {
	SessionToken string `json:"session_token"`
	Message      string `json:"message"`
}
