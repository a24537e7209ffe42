package constant

import (
	"ai-chatbot-be/pkg/llm/factory"
)

const (
	ChatModelCookie = "chat-model"

	DefaultChatModel = "chat-gemini-2.5-flash-lite"
	TitleModel       = "title-model"
	ReasoningModel   = "chat-model-reasoning"

	DefaultChatTitle = "New Chat"
	MaxTitleLength   = 80

	StreamErrorMessage = "An unexpected error occurred during the chat stream. Please try again."
)

const (
	RegularSystemPrompt = `You are a friendly assistant! Keep your responses concise and helpful.`

	ReasoningSystemPrompt = `You are a friendly assistant! Think the problem through before answering, then keep the final answer concise and helpful.`

	TitleSystemPrompt = `
- you will generate a short title based on the first message a user begins a conversation with
- ensure it is not more than 80 characters long
- the title should be a summary of the user's message
- do not use quotes or colons`
)

// SystemPromptFor picks the system instruction for a chat model.
func SystemPromptFor(modelId string) string {
	if modelId == ReasoningModel {
		return ReasoningSystemPrompt
	}
	return RegularSystemPrompt
}

// ChatModels is the catalogue offered to users, in display order, plus the internal title model.
var ChatModels = []factory.ModelSpec{
	{
		Id:            "chat-gemini-2.5-flash-lite",
		Name:          "Gemini 2.5 Flash-Lite",
		Description:   "Best for high volume, cost efficient tasks. Ultra fast and optimized for cost-efficiency and high throughput",
		Provider:      factory.ProviderGemini,
		ProviderModel: "gemini-2.5-flash-lite",
	},
	{
		Id:            "chat-gemini-2.5-flash",
		Name:          "Gemini 2.5 Flash",
		Description:   "Best for fast performance on everyday tasks. Offers well-rounded capabilities with advanced thinking and native multimodality",
		Provider:      factory.ProviderGemini,
		ProviderModel: "gemini-2.5-flash",
	},
	{
		Id:            "chat-gemini-2.0-flash",
		Name:          "Gemini 2.0 Flash",
		Description:   "Second generation workhorse model with 1 million token context window and multimodal capabilities",
		Provider:      factory.ProviderGemini,
		ProviderModel: "gemini-2.0-flash",
	},
	{
		Id:            "chat-gemini-2.5-flash-search",
		Name:          "Gemini 2.5 Flash + Web Search",
		Description:   "Gemini 2.5 Flash with Google Search grounding for real-time information retrieval and enhanced accuracy",
		Provider:      factory.ProviderGemini,
		ProviderModel: "gemini-2.5-flash-lite",
	},
	{
		Id:               ReasoningModel,
		Name:             "Qwen-3 32b",
		Description:      "Uses advanced reasoning and thinking for complex tasks",
		Provider:         factory.ProviderGroq,
		ProviderModel:    "qwen/qwen3-32b",
		ExtractReasoning: true,
	},
	{
		Id:            "openai/gpt-oss-20b",
		Name:          "GPT-OSS 20b",
		Description:   "Open source model by OpenAI, hosted on Groq",
		Provider:      factory.ProviderGroq,
		ProviderModel: "openai/gpt-oss-20b",
	},
	{
		Id:               "openai/gpt-oss-120b",
		Name:             "GPT-OSS 120b",
		Description:      "Open source model by OpenAI, hosted on Groq",
		Provider:         factory.ProviderGroq,
		ProviderModel:    "openai/gpt-oss-120b",
		ExtractReasoning: true,
	},
	{
		Id:            TitleModel,
		Name:          "Title",
		Provider:      factory.ProviderGemini,
		ProviderModel: "gemini-2.5-flash-lite",
		Internal:      true,
	},
}

// OllamaModel builds the catalogue entry for a locally served model.
func OllamaModel(model string) factory.ModelSpec {
	return factory.ModelSpec{
		Id:            "ollama/" + model,
		Name:          "Ollama " + model,
		Description:   "Local model served by Ollama",
		Provider:      factory.ProviderOllama,
		ProviderModel: model,
	}
}
