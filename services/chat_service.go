package services

import (
	"context"
	"log"

	"github.com/QuirkyNerd/medical-rag-assistant/models"
)

// retrievalFailureSnippet stands in for the reference block when the vector
// store cannot be reached. Retrieval is an enhancement, never a dependency.
const retrievalFailureSnippet = "Could not retrieve medical references"

// ChatService answers a consultation request as an incremental text stream.
type ChatService interface {
	StreamAnswer(ctx context.Context, req models.ChatRequest, emit func(chunk string) error) error
}

type chatServiceImpl struct {
	retriever Retriever
	generator TextStreamer
}

// NewChatService wires the retrieval-augmented chat pipeline.
func NewChatService(retriever Retriever, generator TextStreamer) ChatService {
	return &chatServiceImpl{
		retriever: retriever,
		generator: generator,
	}
}

// StreamAnswer takes the last message as the user question, fetches reference
// snippets (best effort), assembles the consultation prompt, and streams the
// model's answer through emit. Validation happens before any external call.
func (s *chatServiceImpl) StreamAnswer(ctx context.Context, req models.ChatRequest, emit func(chunk string) error) error {
	if len(req.Messages) == 0 {
		return ErrEmptyConversation
	}
	question := req.Messages[len(req.Messages)-1].Content
	reportContext := req.ReportContext()

	query := BuildRetrievalQuery(reportContext, question)
	snippets := s.retrieveBestEffort(ctx, query)

	prompt := AssembleConsultationPrompt(reportContext, question, snippets)
	return s.generator.StreamText(ctx, prompt, emit)
}

// retrieveBestEffort queries the vector store and degrades to a sentinel
// snippet on any failure instead of failing the request.
func (s *chatServiceImpl) retrieveBestEffort(ctx context.Context, query string) []string {
	retrieved, err := s.retriever.RetrieveSnippets(ctx, query)
	if err != nil {
		log.Printf("SERVICE WARN: Reference retrieval failed, continuing without references: %v", err)
		return []string{retrievalFailureSnippet}
	}

	snippets := make([]string, 0, len(retrieved))
	for _, snippet := range retrieved {
		snippets = append(snippets, snippet.Text)
	}
	return snippets
}
