package models

// AnalysisRequest is the JSON body of /analyze-text and /analyze-with-advice.
type AnalysisRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

type JobURLRequest struct {
	URL string `json:"url"`
}

// AnalysisResponse is the uniform envelope returned by the analyze endpoints.
type AnalysisResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *SimilarityResult `json:"data"`
}

type JobDescriptionResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	JobDescription *string `json:"jobDescription"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
