package catalogue

import "github.com/shopspring/decimal"

func usd(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var geminiModels = []ModelSpec{
	{
		ID:                    "gemini-pro",
		Provider:              "gemini",
		DisplayName:           "Gemini Pro",
		ContextWindow:         32_768,
		MaxOutputTokens:       8_192,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, FunctionCalling, JSONMode, Streaming},
		CostPer1KInput:        usd("0.00025"),
		CostPer1KOutput:       usd("0.0005"),
		RecommendedFor:        []string{"General data analysis", "Text summarization", "Code generation", "Question answering"},
		Notes:                 "Free tier available with rate limits. Fast and efficient for most tasks.",
	},
	{
		ID:                    "gemini-pro-vision",
		Provider:              "gemini",
		DisplayName:           "Gemini Pro Vision",
		ContextWindow:         16_384,
		MaxOutputTokens:       8_192,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, Vision, Streaming},
		CostPer1KInput:        usd("0.00025"),
		CostPer1KOutput:       usd("0.0005"),
		RecommendedFor:        []string{"Image analysis", "Chart interpretation", "Visual data extraction"},
		Notes:                 "Can process images and text. Limited to 16 images per request.",
	},
	{
		ID:                    "gemini-1.5-pro",
		Provider:              "gemini",
		DisplayName:           "Gemini 1.5 Pro",
		ContextWindow:         1_048_576,
		MaxOutputTokens:       8_192,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, Vision, FunctionCalling, JSONMode, Streaming},
		CostPer1KInput:        usd("0.0035"),
		CostPer1KOutput:       usd("0.0105"),
		RecommendedFor:        []string{"Large document analysis", "Long conversation context", "Complex reasoning tasks", "Multi-document synthesis"},
		Notes:                 "Extremely large context window. Higher cost but handles massive inputs.",
	},
	{
		ID:                    "gemini-1.5-flash",
		Provider:              "gemini",
		DisplayName:           "Gemini 1.5 Flash",
		ContextWindow:         1_048_576,
		MaxOutputTokens:       8_192,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, Vision, Streaming},
		CostPer1KInput:        usd("0.00035"),
		CostPer1KOutput:       usd("0.00053"),
		RecommendedFor:        []string{"High-volume processing", "Cost-sensitive applications", "Fast responses needed"},
		Notes:                 "Fastest and cheapest with 1M context. Great for production workloads.",
	},
}

var openaiModels = []ModelSpec{
	{
		ID:                    "gpt-4-turbo-preview",
		Provider:              "openai",
		DisplayName:           "GPT-4 Turbo Preview",
		ContextWindow:         128_000,
		MaxOutputTokens:       4_096,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, FunctionCalling, JSONMode, Streaming},
		CostPer1KInput:        usd("0.01"),
		CostPer1KOutput:       usd("0.03"),
		RecommendedFor:        []string{"Complex reasoning", "Code generation", "Long document analysis", "Creative writing"},
		Notes:                 "Latest GPT-4 with 128K context. Best overall reasoning capabilities.",
	},
	{
		ID:                    "gpt-4",
		Provider:              "openai",
		DisplayName:           "GPT-4",
		ContextWindow:         8_192,
		MaxOutputTokens:       4_096,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, FunctionCalling, Streaming},
		CostPer1KInput:        usd("0.03"),
		CostPer1KOutput:       usd("0.06"),
		RecommendedFor:        []string{"High-quality outputs", "Complex problem solving"},
		Notes:                 "Original GPT-4. More expensive and smaller context than Turbo.",
	},
	{
		ID:                    "gpt-4-vision-preview",
		Provider:              "openai",
		DisplayName:           "GPT-4 Vision",
		ContextWindow:         128_000,
		MaxOutputTokens:       4_096,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, Vision, Streaming},
		CostPer1KInput:        usd("0.01"),
		CostPer1KOutput:       usd("0.03"),
		RecommendedFor:        []string{"Image analysis", "Chart interpretation", "Visual reasoning"},
		Notes:                 "GPT-4 with vision capabilities. Can analyze images and charts.",
	},
	{
		ID:                    "gpt-3.5-turbo",
		Provider:              "openai",
		DisplayName:           "GPT-3.5 Turbo",
		ContextWindow:         16_385,
		MaxOutputTokens:       4_096,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, FunctionCalling, JSONMode, Streaming},
		CostPer1KInput:        usd("0.0005"),
		CostPer1KOutput:       usd("0.0015"),
		RecommendedFor:        []string{"Cost-effective processing", "Simple queries", "High-volume tasks"},
		Notes:                 "Much cheaper than GPT-4. Good for simple tasks and high volume.",
	},
}

var claudeModels = []ModelSpec{
	{
		ID:                    "claude-3-opus-20240229",
		Provider:              "claude",
		DisplayName:           "Claude 3 Opus",
		ContextWindow:         200_000,
		MaxOutputTokens:       4_096,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, Vision, Streaming},
		CostPer1KInput:        usd("0.015"),
		CostPer1KOutput:       usd("0.075"),
		RecommendedFor:        []string{"Complex analysis", "Research tasks", "Long document processing", "High-stakes outputs"},
		Notes:                 "Most capable Claude model. Excellent for analysis and reasoning.",
	},
	{
		ID:                    "claude-3-sonnet-20240229",
		Provider:              "claude",
		DisplayName:           "Claude 3 Sonnet",
		ContextWindow:         200_000,
		MaxOutputTokens:       4_096,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, Vision, Streaming},
		CostPer1KInput:        usd("0.003"),
		CostPer1KOutput:       usd("0.015"),
		RecommendedFor:        []string{"Balanced performance/cost", "General purpose tasks", "Data analysis"},
		Notes:                 "Good balance of capability and cost. Recommended for most use cases.",
	},
	{
		ID:                    "claude-3-haiku-20240307",
		Provider:              "claude",
		DisplayName:           "Claude 3 Haiku",
		ContextWindow:         200_000,
		MaxOutputTokens:       4_096,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, Vision, Streaming},
		CostPer1KInput:        usd("0.00025"),
		CostPer1KOutput:       usd("0.00125"),
		RecommendedFor:        []string{"Fast responses", "High-volume processing", "Cost-sensitive applications"},
		Notes:                 "Fastest and cheapest Claude. Great for simple tasks at scale.",
	},
}

var deepseekModels = []ModelSpec{
	{
		ID:                    "deepseek-chat",
		Provider:              "deepseek",
		DisplayName:           "DeepSeek Chat",
		ContextWindow:         32_768,
		MaxOutputTokens:       4_096,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, Streaming},
		CostPer1KInput:        usd("0.00014"),
		CostPer1KOutput:       usd("0.00028"),
		RecommendedFor:        []string{"Cost-effective processing", "General chat", "Simple analysis"},
		Notes:                 "Very affordable. Good for budget-conscious applications.",
	},
	{
		ID:                    "deepseek-coder",
		Provider:              "deepseek",
		DisplayName:           "DeepSeek Coder",
		ContextWindow:         32_768,
		MaxOutputTokens:       4_096,
		SupportsSystemMessage: true,
		Capabilities:          []Capability{TextGeneration, CodeGeneration, Streaming},
		CostPer1KInput:        usd("0.00014"),
		CostPer1KOutput:       usd("0.00028"),
		RecommendedFor:        []string{"Code generation", "Code review", "Technical documentation"},
		Notes:                 "Specialized for coding tasks. Better code quality than chat model.",
	},
}

// vertexMirror derives the Vertex AI variant of a Gemini model.
func vertexMirror(s ModelSpec) ModelSpec {
	m := s
	m.ID = "vertex-" + s.ID
	m.Provider = "vertex_ai"
	m.DisplayName = s.DisplayName + " (Vertex AI)"
	m.RecommendedFor = append(append([]string(nil), s.RecommendedFor...), "Enterprise deployments", "GCP integration")
	m.Notes = "Vertex AI version of " + s.DisplayName + ". " + s.Notes
	return m
}

// Builtin returns the built-in model list in a stable order: Gemini, OpenAI,
// Claude, DeepSeek, then the Vertex AI mirrors of the Gemini models.
func Builtin() []ModelSpec {
	out := make([]ModelSpec, 0, 2*len(geminiModels)+len(openaiModels)+len(claudeModels)+len(deepseekModels))
	out = append(out, geminiModels...)
	out = append(out, openaiModels...)
	out = append(out, claudeModels...)
	out = append(out, deepseekModels...)
	for _, m := range geminiModels {
		out = append(out, vertexMirror(m))
	}
	return out
}

var defaultModels = map[string]string{
	"gemini":    "gemini-pro",
	"openai":    "gpt-4-turbo-preview",
	"claude":    "claude-3-sonnet-20240229",
	"deepseek":  "deepseek-chat",
	"vertex_ai": "vertex-gemini-pro",
}
