package ai

import (
	"context"
	"strings"
)

// Verdict is the three-way classification of the student's latest step.
type Verdict string

const (
	// VerdictCorrect means the student's work is fully complete and right.
	VerdictCorrect Verdict = "correct"
	// VerdictOnTrack means the step is right but more steps remain.
	VerdictOnTrack Verdict = "on track"
	// VerdictIncorrect means the step contains an error.
	VerdictIncorrect Verdict = "incorrect"
)

// NormalizeVerdict lowercases and trims a raw verdict string so comparisons
// are exact. Substring checks must never be used here: "incorrect" contains
// "correct".
func NormalizeVerdict(raw string) Verdict {
	return Verdict(strings.ToLower(strings.TrimSpace(raw)))
}

// IsFinal reports whether the verdict ends the tutoring session. Only an
// exact match on "correct" counts.
func (v Verdict) IsFinal() bool {
	switch NormalizeVerdict(string(v)) {
	case VerdictIncorrect, VerdictOnTrack:
		return false
	case VerdictCorrect:
		return true
	default:
		return false
	}
}

// ImageInput carries one image for an OCR call, either as a path on local
// disk or as raw bytes. MIMEType may be empty, in which case the type is
// detected from the payload.
type ImageInput struct {
	Path     string
	Data     []byte
	MIMEType string
}

// TextExtractor describes a vision model able to transcribe handwritten
// mathematical content.
type TextExtractor interface {
	ExtractText(ctx context.Context, image ImageInput) (string, error)
}

// EvaluationInput contains everything the evaluator needs to judge a single
// student step. PriorHistory is context only; StudentWork is the one thing
// being judged.
type EvaluationInput struct {
	Question      string
	CorrectAnswer string
	StudentWork   string
	PriorHistory  string
}

// EvaluationVerdict is the structured judgment returned by the evaluator.
type EvaluationVerdict struct {
	Evaluation string  `json:"evaluation"`
	Hint       string  `json:"hint"`
	Verdict    Verdict `json:"verdict"`
}

// SolutionEvaluator describes a reasoning model able to judge a student's
// current step against the question and reference answer.
type SolutionEvaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (EvaluationVerdict, error)
}
