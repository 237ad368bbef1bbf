package models

// OllamaEmbedRequest is the body sent to the Ollama embeddings API.
type OllamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// OllamaEmbedResponse carries the embedding vector back from Ollama.
type OllamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}
