package interview

import (
	"math/rand/v2"

	"alfredoptarigan/ats-analyzer/internal/models"
)

var defaultCategories = []string{
	"leadership",
	"problem_solving",
	"teamwork",
	"adaptability",
	"communication",
	"pressure",
}

var defaultQuestions = map[string][]string{
	"leadership": {
		"Tell me about a time when you had to lead a team through a difficult project.",
		"Describe a situation where you had to motivate a struggling team member.",
		"Give me an example of when you took initiative without being asked.",
	},
	"problem_solving": {
		"Describe a complex problem you solved at work. Walk me through your approach.",
		"Tell me about a time when you had to make a decision with incomplete information.",
		"Give an example of when you identified a problem before it became urgent.",
	},
	"teamwork": {
		"Tell me about a time you had a conflict with a coworker. How did you handle it?",
		"Describe a situation where you had to work with someone difficult.",
		"Give an example of a successful team project and your contribution to it.",
	},
	"adaptability": {
		"Tell me about a time when you had to adapt to a major change at work.",
		"Describe a situation where you failed. What did you learn from it?",
		"Give an example of when you had to learn something new quickly.",
	},
	"communication": {
		"Tell me about a time you had to explain something complex to a non-technical person.",
		"Describe a situation where miscommunication caused a problem. How did you fix it?",
		"Give an example of when you had to deliver difficult feedback.",
	},
	"pressure": {
		"Tell me about a time you worked under a tight deadline.",
		"Describe a high-pressure situation and how you managed it.",
		"Give an example of when you had to handle multiple priorities at once.",
	},
}

// QuestionBank holds the behavioral questions grouped by category.
type QuestionBank struct {
	categories []string
	questions  map[string][]string
	intn       func(n int) int
}

func NewQuestionBank() *QuestionBank {
	return &QuestionBank{
		categories: defaultCategories,
		questions:  defaultQuestions,
		intn:       rand.IntN,
	}
}

func (b *QuestionBank) Categories() []string {
	return append([]string(nil), b.categories...)
}

func (b *QuestionBank) Questions(category string) ([]string, bool) {
	questions, ok := b.questions[category]
	if !ok {
		return nil, false
	}
	return append([]string(nil), questions...), true
}

// RandomQuestion picks a question from category, or from a random category
// when category is empty or unknown.
func (b *QuestionBank) RandomQuestion(category string) models.InterviewQuestion {
	questions, ok := b.questions[category]
	if !ok {
		category = b.categories[b.intn(len(b.categories))]
		questions = b.questions[category]
	}

	return models.InterviewQuestion{
		Category: category,
		Question: questions[b.intn(len(questions))],
	}
}
