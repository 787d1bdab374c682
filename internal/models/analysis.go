package models

// SimilarityResult is what the AI service returns for a resume/job pair.
type SimilarityResult struct {
	SimilarityScore float64  `json:"similarity_score"`
	SharedKeywords  []string `json:"shared_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// AdviceResult holds LLM advice. Available=false with a nil Advice is the
// degraded state and not an error.
type AdviceResult struct {
	Advice    *Advice `json:"advice"`
	Available bool    `json:"llm_available"`
}

// CompositeAnalysis is the flattened result of /analyze-with-advice.
type CompositeAnalysis struct {
	SimilarityScore float64  `json:"similarityScore"`
	SharedKeywords  []string `json:"sharedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	Advice          *Advice  `json:"advice"`
	LLMAvailable    bool     `json:"llmAvailable"`
}

func NewCompositeAnalysis(similarity *SimilarityResult, advice AdviceResult) *CompositeAnalysis {
	return &CompositeAnalysis{
		SimilarityScore: similarity.SimilarityScore,
		SharedKeywords:  append([]string{}, similarity.SharedKeywords...),
		MissingKeywords: append([]string{}, similarity.MissingKeywords...),
		Advice:          advice.Advice,
		LLMAvailable:    advice.Available,
	}
}

// SimilarityRequest is the body of POST /similarity on the AI service.
type SimilarityRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

// AdviceRequest is the body of POST /advice on the AI service.
type AdviceRequest struct {
	ResumeText      string   `json:"resume_text"`
	JobDescription  string   `json:"job_description"`
	SimilarityScore float64  `json:"similarity_score"`
	SharedKeywords  []string `json:"shared_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}
