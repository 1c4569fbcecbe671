package dto

// OCRRequest is the JSON body for the standalone OCR endpoint. Image is a
// base64 string, optionally wrapped in a data-URL prefix.
type OCRRequest struct {
	Image string `json:"image" validate:"required"`
}

// OCRResponse reports the outcome of a single OCR call.
type OCRResponse struct {
	Success bool    `json:"success"`
	Text    *string `json:"text"`
	Error   *string `json:"error"`
}

// EvaluateRequest carries one typed student step for judgment. StepCount and
// ChatHistory are caller-held session state round-tripped from the previous
// response.
type EvaluateRequest struct {
	Question      string `json:"question" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required"`
	StudentAnswer string `json:"student_answer" validate:"required"`
	StepCount     int    `json:"nextStepCount" validate:"gte=0"`
	ChatHistory   string `json:"chat_history"`
}

// EvaluateResponse is returned by the text-only evaluation path. It carries
// no finished flag; only the full evaluation derives one.
type EvaluateResponse struct {
	Success       bool    `json:"success"`
	Evaluation    *string `json:"evaluation"`
	Hint          *string `json:"hint"`
	Verdict       string  `json:"verdict,omitempty"`
	NextStepCount int     `json:"nextStepCount"`
	Error         *string `json:"error"`
}

// FullEvaluationRequest is the JSON-with-base64 variant of the multipart
// full evaluation form.
type FullEvaluationRequest struct {
	Image         string `json:"image" validate:"required"`
	Question      string `json:"question" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required"`
	StepCount     int    `json:"currentStepCount" validate:"gte=0"`
	ChatHistory   string `json:"chat_history"`
}

// FullEvaluationResponse aggregates the OCR output, the judgment, and the
// advanced session fields the caller must round-trip into its next request.
// Pointer fields are omitted on paths that never reach them: an OCR failure
// carries neither a step counter nor a transcript.
type FullEvaluationResponse struct {
	Success       bool    `json:"success"`
	ExtractedText *string `json:"extracted_text"`
	Evaluation    *string `json:"evaluation"`
	Hint          *string `json:"hint,omitempty"`
	Verdict       string  `json:"verdict,omitempty"`
	NextStepCount *int    `json:"nextStepCount,omitempty"`
	IsFinished    *bool   `json:"is_finished,omitempty"`
	ChatHistory   *string `json:"chat_history,omitempty"`
	Error         *string `json:"error"`
}
