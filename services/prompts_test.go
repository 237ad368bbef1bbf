package services

import (
	"strings"
	"testing"
)

func TestAssembleConsultationPromptContainsInputsVerbatim(t *testing.T) {
	report := "Patient: Jane Doe, Hemoglobin 13.2 g/dL, WBC 6.1 x10^9/L"
	question := "Is the hemoglobin value within the normal range?"
	snippets := []string{
		"Normal hemoglobin for adult women is 12.0 to 15.5 g/dL.",
		"Anemia is diagnosed below 12.0 g/dL in adult women.",
	}

	prompt := AssembleConsultationPrompt(report, question, snippets)

	for _, want := range append([]string{report, question}, snippets...) {
		if !strings.Contains(prompt, want) {
			t.Fatalf("assembled prompt missing %q", want)
		}
	}
}

func TestAssembleConsultationPromptDeterministic(t *testing.T) {
	a := AssembleConsultationPrompt("report", "question", []string{"snippet"})
	b := AssembleConsultationPrompt("report", "question", []string{"snippet"})
	if a != b {
		t.Fatal("same inputs produced different prompts")
	}
}

func TestAssembleConsultationPromptPlaceholders(t *testing.T) {
	prompt := AssembleConsultationPrompt("", "a question", nil)

	if !strings.Contains(prompt, noReportPlaceholder) {
		t.Fatalf("prompt missing report placeholder: %q", prompt)
	}
	if !strings.Contains(prompt, noReferencesPlaceholder) {
		t.Fatalf("prompt missing references placeholder: %q", prompt)
	}
}

func TestAssembleConsultationPromptSectionOrder(t *testing.T) {
	prompt := AssembleConsultationPrompt("the report", "the question", []string{"the snippet"})

	sections := []string{
		"### Patient Report Summary:",
		"### User Question:",
		"### Relevant Medical Knowledge:",
		"### Instructions:",
		"### Response:",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(prompt, section)
		if idx < 0 {
			t.Fatalf("prompt missing section %q", section)
		}
		if idx < last {
			t.Fatalf("section %q out of order", section)
		}
		last = idx
	}
}

func TestBuildRetrievalQuery(t *testing.T) {
	query := BuildRetrievalQuery("ctx text", "question text")
	if !strings.Contains(query, "ctx text") || !strings.Contains(query, "question text") {
		t.Fatalf("retrieval query missing inputs: %q", query)
	}
}
