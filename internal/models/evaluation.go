package models

// StarComponent is the coach's verdict on one part of a STAR answer.
type StarComponent struct {
	Present  bool   `json:"present"`
	Feedback string `json:"feedback"`
}

type StarAnalysis struct {
	Situation StarComponent `json:"situation"`
	Task      StarComponent `json:"task"`
	Action    StarComponent `json:"action"`
	Result    StarComponent `json:"result"`
}

// Evaluation is the feedback for one interview answer, scored 1-10.
type Evaluation struct {
	StarAnalysis          StarAnalysis `json:"star_analysis"`
	Score                 int          `json:"score"`
	Strengths             []string     `json:"strengths"`
	Improvements          []string     `json:"improvements"`
	ImprovedAnswerSnippet string       `json:"improved_answer_snippet"`
}

// InterviewQuestion is a behavioral question and the category it was drawn from.
type InterviewQuestion struct {
	Category string `json:"category"`
	Question string `json:"question"`
}
