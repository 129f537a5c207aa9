package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Tapananshu17/HCI/config"
	"github.com/Tapananshu17/HCI/internal/model"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// CareerAnalysis is what the scoring collaborator produces from the three
// completed answer sheets. Score blobs and recommendation lists are kept
// opaque; the engine stores them without interpreting them.
type CareerAnalysis struct {
	AptitudeScore      json.RawMessage `json:"aptitude_score"`
	ValuesScore        json.RawMessage `json:"values_score"`
	PersonalScore      json.RawMessage `json:"personal_score"`
	RecommendedStreams json.RawMessage `json:"recommended_streams"`
	Strengths          json.RawMessage `json:"strengths"`
	CareerPaths        json.RawMessage `json:"career_paths"`
}

// GeminiLLMService is the external collaborator boundary: it scores
// completed assessments and generates chatbot replies. The engine only
// assumes AnalyzeAssessment is invoked at most once to start per completed
// assessment and may fail without affecting state transitions.
type GeminiLLMService interface {
	AnalyzeAssessment(ctx context.Context, sheets map[model.SectionKind]json.RawMessage) (*CareerAnalysis, error)
	GenerateChatReply(ctx context.Context, message string, resultsContext bool) (string, error)
}

type geminiLLMService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (GeminiLLMService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiLLMService will be non-functional.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiLLMService{client: client.GenerativeModel("gemini-1.5-flash"), cfg: cfg}, nil
}

func (s *geminiLLMService) AnalyzeAssessment(ctx context.Context, sheets map[model.SectionKind]json.RawMessage) (*CareerAnalysis, error) {
	if s.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	var prompt strings.Builder
	prompt.WriteString("You are a career guidance counsellor for school students in India.\n")
	prompt.WriteString("A student has completed a three-part self-assessment. Their raw answers per section follow as JSON maps of question id to chosen answer value.\n\n")
	for _, kind := range model.SectionOrder {
		sheet, ok := sheets[kind]
		if !ok {
			continue
		}
		prompt.WriteString(fmt.Sprintf("%s section answers:\n%s\n\n", kind, string(sheet)))
	}
	prompt.WriteString(`Analyze the answers and respond with a single JSON object, no prose and no code fences, with exactly these keys:
- "aptitude_score": object with numeric sub-scores per aptitude area and an overall 0-100 score
- "values_score": object with numeric sub-scores per work value and an overall 0-100 score
- "personal_score": object with numeric sub-scores per personality trait and an overall 0-100 score
- "recommended_streams": array of 3-5 academic stream names, most suitable first
- "strengths": array of short strength descriptions
- "career_paths": array of 5-8 career path names, most suitable first
`)

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during assessment analysis")
		return nil, err
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	var analysis CareerAnalysis
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &analysis); err != nil {
		log.Warn().Err(err).Str("rawResponse", text).Msg("Failed to parse analysis JSON from Gemini response")
		return nil, fmt.Errorf("could not parse analysis from AI response: %w", err)
	}
	return &analysis, nil
}

func (s *geminiLLMService) GenerateChatReply(ctx context.Context, message string, resultsContext bool) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	var prompt strings.Builder
	prompt.WriteString("You are a friendly career guidance assistant for school students. Keep answers short, encouraging and concrete.\n")
	if resultsContext {
		prompt.WriteString("The student is asking about their completed assessment results.\n")
	}
	prompt.WriteString("\nStudent: ")
	prompt.WriteString(message)

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during chat reply generation")
		return "", err
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return sb.String(), nil
}

// stripCodeFences tolerates models that wrap JSON in ```json fences despite
// being told not to.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
