package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"crypto-pulse/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// BatchLLMScorer scores a batch of text items with an LLM. Optional:
// when absent or failing, the lexicon score stands.
type BatchLLMScorer interface {
	ScoreBatch(ctx context.Context, items []domain.TextItem) ([]float64, error)
}

// Scorer turns raw TextItems into ScoredItems. The lexicon provides a
// deterministic baseline for every item; an LLM, when configured,
// overlays its scores batch by batch. LLM failures are swallowed so
// scoring as a whole never fails.
type Scorer struct {
	lexicon   *Lexicon
	llm       BatchLLMScorer
	batchSize int
}

func NewScorer(llm BatchLLMScorer, batchSize int) *Scorer {
	if batchSize <= 0 {
		batchSize = 24
	}
	return &Scorer{lexicon: NewLexicon(), llm: llm, batchSize: batchSize}
}

// ScoreItems scores every item with usable text. Items with empty text
// are dropped; nothing non-numeric or out of range ever comes out.
func (s *Scorer) ScoreItems(ctx context.Context, items []domain.TextItem) []domain.ScoredItem {
	kept := make([]domain.TextItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Title+item.Text) == "" {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		return nil
	}

	out := make([]domain.ScoredItem, len(kept))
	for i, item := range kept {
		out[i] = domain.ScoredItem{
			Source:   item.Source,
			Polarity: s.lexicon.Score(itemText(item)),
		}
	}

	if s.llm == nil {
		return out
	}

	for start := 0; start < len(kept); start += s.batchSize {
		end := start + s.batchSize
		if end > len(kept) {
			end = len(kept)
		}
		scores, err := s.llm.ScoreBatch(ctx, kept[start:end])
		if err != nil || len(scores) != end-start {
			continue
		}
		for i, score := range scores {
			out[start+i].Polarity = clamp(score, -1, 1)
		}
	}
	return out
}

func itemText(item domain.TextItem) string {
	title := strings.TrimSpace(item.Title)
	text := strings.TrimSpace(item.Text)
	if title == "" {
		return text
	}
	if text == "" {
		return title
	}
	return title + " " + text
}

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIScorer scores item batches with a chat completion returning a
// JSON array of {id, score} rows.
type OpenAIScorer struct {
	client openAIChatClient
	model  string
}

func NewOpenAIScorer(apiKey string, model string) *OpenAIScorer {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIScorer{
		client: &openAIClient{client: client},
		model:  model,
	}
}

func (s *OpenAIScorer) ScoreBatch(ctx context.Context, items []domain.TextItem) ([]float64, error) {
	if s == nil || s.client == nil || len(items) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("id=%d\n", i))
		sb.WriteString(fmt.Sprintf("source=%s\n", item.Source))
		sb.WriteString(fmt.Sprintf("text=%s\n\n", itemText(item)))
	}

	systemPrompt := "You score crypto market sentiment. Return ONLY a JSON array. Each object requires: id (int), score (float -1..1, negative=bearish, positive=bullish). No markdown."
	userPrompt := "Items:\n" + sb.String()

	completion, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty scorer completion")
	}

	raw := strings.TrimSpace(completion.Choices[0].Message.Content)
	raw = trimCodeFence(raw)

	var parsed []struct {
		ID    int     `json:"id"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse scorer json: %w", err)
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].ID < parsed[j].ID })

	out := make([]float64, len(items))
	seen := 0
	for i := range out {
		out[i] = 0
	}
	for _, row := range parsed {
		if row.ID < 0 || row.ID >= len(items) {
			continue
		}
		out[row.ID] = clamp(row.Score, -1, 1)
		seen++
	}
	if seen != len(items) {
		return nil, fmt.Errorf("scorer returned %d of %d rows", seen, len(items))
	}
	return out, nil
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
