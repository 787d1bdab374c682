package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnswerEvaluationPrompt creates prompt for STAR evaluation of an interview answer
func (pb *PromptBuilder) BuildAnswerEvaluationPrompt(question, answer string) string {
	return fmt.Sprintf(`You are an expert behavioral interview coach. Evaluate this interview response using the STAR method.

QUESTION ASKED:
%s

CANDIDATE'S ANSWER:
%s

Provide constructive feedback in this EXACT JSON format:
{
  "star_analysis": {
    "situation": { "present": true/false, "feedback": "brief feedback" },
    "task": { "present": true/false, "feedback": "brief feedback" },
    "action": { "present": true/false, "feedback": "brief feedback" },
    "result": { "present": true/false, "feedback": "brief feedback" }
  },
  "score": <1-10>,
  "strengths": ["strength1", "strength2"],
  "improvements": ["improvement1", "improvement2"],
  "improved_answer_snippet": "A brief example of how to improve one part of their answer"
}

Be encouraging but honest. Focus on actionable improvements. Respond with ONLY valid JSON.`,
		question, answer)
}

// BuildFollowUpPrompt creates prompt for a single follow-up question
func (pb *PromptBuilder) BuildFollowUpPrompt(question, answer string) string {
	return fmt.Sprintf(`You are conducting a behavioral interview. Based on this exchange, generate ONE brief follow-up question.

ORIGINAL QUESTION:
%s

CANDIDATE'S ANSWER:
%s

Generate a natural follow-up question that:
1. Digs deeper into a specific part of their answer
2. Asks for more details or clarification
3. Is concise (under 20 words)

Respond with ONLY the follow-up question, nothing else.`,
		question, answer)
}
