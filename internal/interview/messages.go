package interview

import "alfredoptarigan/ats-analyzer/internal/models"

// Client to server message types.
const (
	TypeGetQuestion  = "get_question"
	TypeSubmitAnswer = "submit_answer"
	TypeGetFollowUp  = "get_followup"
	TypePing         = "ping"
)

// Server to client message types.
const (
	TypeQuestion           = "question"
	TypeEvaluating         = "evaluating"
	TypeEvaluationProgress = "evaluation_progress"
	TypeEvaluationComplete = "evaluation_complete"
	TypeFollowUp           = "followup"
	TypeError              = "error"
	TypePong               = "pong"
)

type ClientMessage struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
}

type ServerMessage struct {
	Type     string             `json:"type"`
	Question string             `json:"question,omitempty"`
	Category string             `json:"category,omitempty"`
	Message  string             `json:"message,omitempty"`
	Partial  string             `json:"partial,omitempty"`
	Data     *models.Evaluation `json:"data,omitempty"`
}
