// Package prompts holds the behavioural instructions sent to the external
// models. The texts are configuration assets, not logic: they can be revised
// and versioned without touching the orchestration code that consumes them.
package prompts

import _ "embed"

// TutorPolicy is the system instruction for the evaluation model. It fixes
// the tutoring contract: never reveal the full solution, judge only the
// latest step, answer in a strict JSON envelope, keep an encouraging tone.
//
//go:embed tutor_policy.md
var TutorPolicy string

// OCRInstruction tells the vision model to transcribe handwritten
// mathematical content verbatim, with no commentary.
//
//go:embed ocr_instruction.md
var OCRInstruction string
