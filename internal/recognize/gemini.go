package recognize

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel  = "gemini-2.5-flash"
	defaultGeminiRegion = "europe-west1"
	defaultLanguage     = "English"
)

const transcribePrompt = `This image is a single handwritten %s word drawn with a mouse in black ink on white.
Transcribe it exactly as written, in lowercase letters.
If the image holds no legible word, answer with an empty line.
Answer with the word only, no punctuation, quotes or commentary.`

// GeminiConfig selects the GenAI backend. With Project set, Vertex AI is used
// with Application Default Credentials; otherwise APIKey (or GEMINI_API_KEY /
// GOOGLE_API_KEY) selects the Gemini API.
type GeminiConfig struct {
	APIKey   string
	Project  string
	Region   string
	Model    string
	Language string
}

// Gemini recognizes handwriting with a Gemini multimodal model.
type Gemini struct {
	client   *genai.Client
	model    string
	language string
}

// NewGemini creates a Gemini engine.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{}
	if cfg.Project != "" {
		region := cfg.Region
		if region == "" {
			region = defaultGeminiRegion
		}
		clientCfg.Project = cfg.Project
		clientCfg.Location = region
		clientCfg.Backend = genai.BackendVertexAI
	} else {
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		if key == "" {
			key = os.Getenv("GOOGLE_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("gemini: set GEMINI_API_KEY or a Vertex AI project")
		}
		clientCfg.APIKey = key
		clientCfg.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}
	return &Gemini{client: client, model: model, language: language}, nil
}

// Recognize implements Engine.
func (g *Gemini) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: fmt.Sprintf(transcribePrompt, g.language)},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0)),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return strings.Trim(resp.Text(), " \t\r\n\"'.`"), nil
}
