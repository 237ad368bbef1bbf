package services

import "strings"

// reportExtractionPrompt is the fixed instruction sent with every uploaded
// report image.
const reportExtractionPrompt = `Analyze this clinical report and extract all important medical information like patient details, test results, units, reference ranges, and give a brief summary of abnormalities.`

// Placeholder blocks used when a consultation prompt has nothing to fill in.
const (
	noReportPlaceholder     = "No report provided"
	noReferencesPlaceholder = "No additional references found"
)

// BuildRetrievalQuery combines the confirmed report text and the user's
// question into the text sent to the vector store.
func BuildRetrievalQuery(reportContext, question string) string {
	var sb strings.Builder
	sb.WriteString("Patient medical context: ")
	sb.WriteString(reportContext)
	sb.WriteString("\n\nUser question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nFind relevant medical information:")
	return sb.String()
}

// AssembleConsultationPrompt builds the single combined prompt for the chat
// model. The layout is deterministic: system framing, report block, question
// block, joined reference snippets, then a fixed instruction list. Empty
// sections get explicit placeholder text rather than being omitted.
func AssembleConsultationPrompt(reportContext, question string, snippets []string) string {
	report := reportContext
	if report == "" {
		report = noReportPlaceholder
	}

	references := noReferencesPlaceholder
	if len(snippets) > 0 {
		references = strings.Join(snippets, "\n- ")
	}

	var sb strings.Builder
	sb.WriteString("**Medical Consultation System**\n\n")
	sb.WriteString("### Patient Report Summary:\n")
	sb.WriteString(report)
	sb.WriteString("\n\n### User Question:\n")
	sb.WriteString(question)
	sb.WriteString("\n\n### Relevant Medical Knowledge:\n")
	sb.WriteString(references)
	sb.WriteString("\n\n### Instructions:\n")
	sb.WriteString("1. Analyze the patient report carefully\n")
	sb.WriteString("2. Incorporate ONLY relevant findings from medical knowledge\n")
	sb.WriteString("3. Provide a detailed, clinically accurate response\n")
	sb.WriteString("4. Cite sources when applicable\n")
	sb.WriteString("5. If unsure, state limitations clearly\n")
	sb.WriteString("\n### Response:\n")
	return sb.String()
}
