package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVerdictPlainJSON(t *testing.T) {
	content := `{"evaluation": "## Current Step Analysis\n\nGood work.", "hint": "Subtract 5 from both sides.", "verdict": "on track"}`

	verdict, err := ParseVerdict(content)
	require.NoError(t, err)
	require.Equal(t, VerdictOnTrack, verdict.Verdict)
	require.Equal(t, "Subtract 5 from both sides.", verdict.Hint)
	require.NotEmpty(t, verdict.Evaluation)
}

func TestParseVerdictFencedMatchesUnfenced(t *testing.T) {
	plain := `{"evaluation": "ok", "hint": "keep going", "verdict": "correct"}`
	fenced := "```json\n" + plain + "\n```"

	fromPlain, err := ParseVerdict(plain)
	require.NoError(t, err)

	fromFenced, err := ParseVerdict(fenced)
	require.NoError(t, err)

	require.Equal(t, fromPlain, fromFenced)
}

func TestParseVerdictProseIsMalformed(t *testing.T) {
	_, err := ParseVerdict("I'm sorry, I cannot evaluate this submission.")
	require.Error(t, err)

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, malformed.Raw, "sorry")
}

func TestParseVerdictMissingFieldIsMalformed(t *testing.T) {
	_, err := ParseVerdict(`{"evaluation": "ok", "hint": "next step"}`)
	require.Error(t, err)

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestParseVerdictNormalizesCase(t *testing.T) {
	verdict, err := ParseVerdict(`{"evaluation": "done", "hint": "Your answer is correct", "verdict": "Correct"}`)
	require.NoError(t, err)
	require.Equal(t, VerdictCorrect, verdict.Verdict)
}

func TestStripCodeFencesNoopWithoutFences(t *testing.T) {
	require.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}

func TestVerdictIsFinal(t *testing.T) {
	cases := []struct {
		verdict  string
		finished bool
	}{
		{"correct", true},
		{"Correct", true},
		{"CORRECT", true},
		{"incorrect", false},
		{"Incorrect", false},
		{"on track", false},
		{"On Track", false},
		{"", false},
		{"unknown", false},
	}

	for _, tc := range cases {
		t.Run(tc.verdict, func(t *testing.T) {
			require.Equal(t, tc.finished, Verdict(tc.verdict).IsFinal())
		})
	}
}

func TestNewOpenAIEvaluatorRequiresKeyAndPrompt(t *testing.T) {
	_, err := NewOpenAIEvaluator(OpenAIConfig{SystemPrompt: "policy"})
	require.Error(t, err)

	_, err = NewOpenAIEvaluator(OpenAIConfig{APIKey: "sk-test"})
	require.Error(t, err)

	evaluator, err := NewOpenAIEvaluator(OpenAIConfig{APIKey: "sk-test", SystemPrompt: "policy"})
	require.NoError(t, err)
	require.NotNil(t, evaluator)
}

func TestBuildUserPromptEmbedsAllParts(t *testing.T) {
	prompt := buildUserPrompt(EvaluationInput{
		Question:      "Solve 2x+5=13",
		CorrectAnswer: "x=4",
		StudentWork:   "2x=8",
		PriorHistory:  "2x+5=13",
	})

	require.Contains(t, prompt, "Question: Solve 2x+5=13")
	require.Contains(t, prompt, "Correct Answer: x=4")
	require.Contains(t, prompt, "Student's Current Answer: 2x=8")
	require.Contains(t, prompt, "Evaluate this step only.")
}

func TestMalformedResponseErrorUnwraps(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &MalformedResponseError{Raw: "...", Cause: cause}
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "Invalid JSON response from evaluation API")
}
