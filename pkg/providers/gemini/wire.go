package gemini

import "strings"

// Wire types of the generateContent endpoint. Vertex AI serves the same
// schema, so they are exported for the vertexai adapter.

// GenerateContentRequest is the request body of generateContent.
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is one conversational turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a piece of a turn. Only text parts are used.
type Part struct {
	Text string `json:"text,omitempty"`
}

// GenerationConfig carries the sampling parameters.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
}

// GenerateContentResponse is the response body of generateContent.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// PromptFeedback explains why a prompt produced no candidates.
type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// UsageMetadata is the token accounting of a response.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Text concatenates the text parts of the first candidate.
func (r *GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// NewRequest builds a single-turn request for message with the given
// sampling parameters. Zero max tokens and top_p are left to the backend.
func NewRequest(message string, temperature float64, maxTokens int, topP float64) *GenerateContentRequest {
	gc := &GenerationConfig{Temperature: &temperature}
	if maxTokens > 0 {
		gc.MaxOutputTokens = &maxTokens
	}
	if topP > 0 {
		gc.TopP = &topP
	}
	return &GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: message}}},
		},
		GenerationConfig: gc,
	}
}
