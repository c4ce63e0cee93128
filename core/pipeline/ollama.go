package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/ollama/ollama/api"
	"github.com/ragmesh/ragmesh/model"
	"golang.org/x/sync/semaphore"
)

const extractionPromptTemplate = `Extract key entities, concepts, and important terms from this text. Focus on:
- People, places, organizations, events
- Main topics and concepts discussed
- Important locations, products, or services mentioned

Text: %s

Return as a JSON array of objects with format:
[{"entity": "entity_name", "type": "place|organization|person|concept|product|other", "confidence": 0.8}]

Be precise and only extract truly relevant entities.`

const sentimentPromptTemplate = `Analyze the sentiment of this text and return a score between -1 (very negative) and 1 (very positive).
Return only the number.

Text: %s`

const (
	maxExtractionChars = 2000
	maxSentimentChars  = 1000
	maxEmbeddingChars  = 512
	defaultConfidence  = 0.5
)

// OllamaService implements TextUnderstandingService and EmbeddingService
// against a local Ollama server. Requests are bounded by a semaphore to
// respect the server's capacity.
type OllamaService struct {
	extractionModel string
	embeddingModel  string

	reqLock *semaphore.Weighted

	Client *api.Client
}

// OllamaServiceParams configures a new OllamaService.
type OllamaServiceParams struct {
	BaseURL         string // Defaults to http://localhost:11434
	ExtractionModel string
	EmbeddingModel  string

	MaxConcurrentRequests int64
}

// NewOllamaService creates a new Ollama-backed service.
func NewOllamaService(params OllamaServiceParams) (*OllamaService, error) {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &OllamaService{
		extractionModel: params.ExtractionModel,
		embeddingModel:  params.EmbeddingModel,
		reqLock:         semaphore.NewWeighted(maxConcurrent),
		Client:          api.NewClient(u, http.DefaultClient),
	}, nil
}

// Extract runs the structured-output extraction prompt and a sentiment prompt
// against the extraction model. Any failure is returned to the caller, which
// is expected to fall back to HeuristicExtraction.
func (s *OllamaService) Extract(ctx context.Context, text string) (*model.Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return &model.Extraction{}, nil
	}

	entityResponse, err := s.generate(ctx, fmt.Sprintf(extractionPromptTemplate, truncate(text, maxExtractionChars)))
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}

	entities, err := parseEntityResponse(entityResponse)
	if err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	sentiment := 0.0
	sentimentResponse, err := s.generate(ctx, fmt.Sprintf(sentimentPromptTemplate, truncate(text, maxSentimentChars)))
	if err == nil {
		sentiment = parseSentimentResponse(sentimentResponse)
	}

	return &model.Extraction{
		Entities:  entities,
		Sentiment: sentiment,
	}, nil
}

// Embed generates an embedding for the text using the embedding model.
func (s *OllamaService) Embed(ctx context.Context, text string) ([]float32, error) {
	err := s.reqLock.Acquire(ctx, 1)
	if err != nil {
		return nil, err
	}
	defer s.reqLock.Release(1)

	res, err := s.Client.Embed(ctx, &api.EmbedRequest{
		Model: s.embeddingModel,
		Input: truncate(text, maxEmbeddingChars),
	})
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}

	if len(res.Embeddings) == 0 || len(res.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed request: empty embedding in response")
	}

	out := make([]float32, len(res.Embeddings[0]))
	for i, v := range res.Embeddings[0] {
		out[i] = float32(v)
	}
	return out, nil
}

func (s *OllamaService) generate(ctx context.Context, prompt string) (string, error) {
	err := s.reqLock.Acquire(ctx, 1)
	if err != nil {
		return "", err
	}
	defer s.reqLock.Release(1)

	stream := false
	req := &api.GenerateRequest{
		Model:   s.extractionModel,
		Prompt:  prompt,
		Stream:  &stream,
		Options: map[string]any{"temperature": 0.1},
	}

	var response strings.Builder
	err = s.Client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		response.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	return response.String(), nil
}

// rawEntity mirrors the JSON shape the extraction prompt asks for.
// Confidence is a pointer so an omitted field can default instead of
// reading as zero.
type rawEntity struct {
	Entity     string   `json:"entity"`
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence"`
}

// parseEntityResponse pulls the JSON array out of the model reply, repairs it
// when malformed and converts it into extracted entities.
func parseEntityResponse(response string) ([]model.ExtractedEntity, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}
	jsonStr := response[start : end+1]

	var raw []rawEntity
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(jsonStr)
		if repairErr != nil {
			return nil, fmt.Errorf("json repair failed: %w", repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("unmarshal failed after repair: %w", err)
		}
	}

	var entities []model.ExtractedEntity
	for _, r := range raw {
		name := strings.TrimSpace(r.Entity)
		if len(name) <= 1 {
			continue
		}
		confidence := defaultConfidence
		if r.Confidence != nil {
			confidence = clamp(*r.Confidence, 0, 1)
		}
		entities = append(entities, model.ExtractedEntity{
			Name:       name,
			Type:       model.ParseEntityType(r.Type),
			Confidence: confidence,
		})
	}

	return entities, nil
}

var numberRegex = regexp.MustCompile(`-?\d*\.?\d+`)

// parseSentimentResponse extracts the first number from the model reply and
// clamps it to [-1, 1]. Replies without a number read as neutral.
func parseSentimentResponse(response string) float64 {
	match := numberRegex.FindString(response)
	if match == "" {
		return 0.0
	}
	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0.0
	}
	return clamp(score, -1, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func truncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	// Cut on a rune boundary
	runes := []rune(text)
	if len(runes) > maxChars {
		runes = runes[:maxChars]
	}
	return string(runes)
}
