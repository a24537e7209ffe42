package factory

import (
	"context"
	"errors"
	"fmt"

	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/gemini"
	"ai-chatbot-be/pkg/llm/ollama"
	"ai-chatbot-be/pkg/llm/openai"
	"ai-chatbot-be/pkg/llm/reasoning"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
)

var ErrUnknownModel = errors.New("unknown chat model")

// ModelSpec binds a public model id to a backend model.
type ModelSpec struct {
	Id               string
	Name             string
	Description      string
	Provider         string
	ProviderModel    string
	ExtractReasoning bool
	// Internal models (title generation) are resolvable but not offered to users.
	Internal bool
}

type Credentials struct {
	GeminiAPIKey  string
	GroqAPIKey    string
	GroqBaseURL   string
	OllamaBaseURL string
	// AttachmentHosts are the only hosts providers may download attachments from.
	AttachmentHosts []string
}

func NewLLMProvider(ctx context.Context, providerType, modelName string, creds Credentials) (llm.LLMProvider, error) {
	switch providerType {
	case ProviderGemini:
		return gemini.NewGeminiProvider(ctx, creds.GeminiAPIKey, modelName, creds.AttachmentHosts)
	case ProviderGroq:
		if creds.GroqAPIKey == "" {
			return nil, fmt.Errorf("groq api key is not set")
		}
		return openai.NewOpenAIProvider(creds.GroqBaseURL, creds.GroqAPIKey, modelName), nil
	case ProviderOllama:
		baseURL := creds.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

type entry struct {
	spec     ModelSpec
	provider llm.LLMProvider
}

// Registry resolves model ids to ready providers.
type Registry struct {
	entries   map[string]entry
	order     []string
	defaultId string
}

func NewRegistry(defaultId string) *Registry {
	return &Registry{
		entries:   make(map[string]entry),
		defaultId: defaultId,
	}
}

// Register adds a model. Reasoning-tag extraction is applied here so callers never see raw tags.
func (r *Registry) Register(spec ModelSpec, provider llm.LLMProvider) {
	if spec.ExtractReasoning {
		provider = reasoning.Wrap(provider, reasoning.DefaultTag)
	}
	if _, exists := r.entries[spec.Id]; !exists {
		r.order = append(r.order, spec.Id)
	}
	r.entries[spec.Id] = entry{spec: spec, provider: provider}
}

func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

func (r *Registry) Default() string {
	return r.defaultId
}

// Resolve returns the provider and the options pinning its backend model.
func (r *Registry) Resolve(id string) (llm.LLMProvider, []llm.Option, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	return e.provider, []llm.Option{llm.WithModel(e.spec.ProviderModel)}, nil
}

// Models lists user-selectable models in registration order.
func (r *Registry) Models() []ModelSpec {
	models := make([]ModelSpec, 0, len(r.order))
	for _, id := range r.order {
		if spec := r.entries[id].spec; !spec.Internal {
			models = append(models, spec)
		}
	}
	return models
}

// Build registers every model of the catalogue whose provider can be constructed.
// Providers are shared per backend. Models whose backend is not configured are
// reported through skipped and left out.
func Build(ctx context.Context, catalogue []ModelSpec, creds Credentials, defaultId string) (reg *Registry, skipped map[string]error) {
	reg = NewRegistry(defaultId)
	skipped = make(map[string]error)
	providers := make(map[string]llm.LLMProvider)
	failed := make(map[string]error)

	for _, spec := range catalogue {
		if err, ok := failed[spec.Provider]; ok {
			skipped[spec.Id] = err
			continue
		}
		p, ok := providers[spec.Provider]
		if !ok {
			var err error
			p, err = NewLLMProvider(ctx, spec.Provider, spec.ProviderModel, creds)
			if err != nil {
				failed[spec.Provider] = err
				skipped[spec.Id] = err
				continue
			}
			providers[spec.Provider] = p
		}
		reg.Register(spec, p)
	}
	return reg, skipped
}
