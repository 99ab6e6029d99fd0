package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured is returned when no completion API key was provided.
var ErrNotConfigured = errors.New("chat api key is not configured")

const (
	DefaultLanguage = "Bahasa Indonesia"

	// EmptyReply is sent when the model answers with no choices.
	EmptyReply = "SYSTEM ERROR: the neural link returned an empty signal."
)

// Message is one turn of the conversation as sent by the UI.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

// MarketContext describes the market card the user is asking about.
type MarketContext struct {
	Title         string      `json:"title" validate:"max=500"`
	Volume        interface{} `json:"volume"`
	OutcomePrices []int       `json:"outcomePrices"`
	EndDate       string      `json:"endDate" validate:"max=64"`
}

// Service answers market questions through a Completer.
type Service struct {
	completer Completer
	model     string
	language  string
}

// NewService creates a new Service. A nil completer makes every Reply fail
// with ErrNotConfigured.
func NewService(completer Completer, cfg Config) *Service {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &Service{
		completer: completer,
		model:     cfg.Model,
		language:  cfg.Language,
	}
}

// Reply sends the conversation, prefixed with the persona prompt, and returns
// the first choice.
func (s *Service) Reply(ctx context.Context, messages []Message, market MarketContext) (string, error) {
	if s.completer == nil {
		return "", ErrNotConfigured
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt(market, s.language),
	})
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	log.Debug().
		Str("model", s.model).
		Int("messages", len(msgs)).
		Str("market", market.Title).
		Msg("sending chat request")

	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return EmptyReply, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// SystemPrompt builds the persona prompt carrying the market under
// discussion.
func SystemPrompt(market MarketContext, language string) string {
	return fmt.Sprintf(`You are CHANI (Cybernetic Heuristic Anomaly Network Intelligence), a sarcastic, analytical and very sharp cyberpunk AI.
You work inside Weath3r_Terminal analysing weather and climate prediction-market odds on Polymarket.
Always answer in %s, seasoned with sci-fi jargon such as "neural link", "probability matrix" and "anomaly".
Never call yourself a generic AI or assistant.

Polymarket event the user is asking about:
- Market title: %s
- Volume (liquidity): $%s
- YES odds (YES share price): %d¢
- NO odds (NO share price): %d¢
- Expires: %s

Give a short, sharp answer that gets straight to the point (2-3 paragraphs at most), based on the context above when the user asks for it.`,
		language,
		market.Title,
		formatVolume(market.Volume),
		priceAt(market.OutcomePrices, 0),
		priceAt(market.OutcomePrices, 1),
		market.EndDate,
	)
}

func formatVolume(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "0"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		if v == "" {
			return "0"
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

func priceAt(prices []int, i int) int {
	if i < len(prices) {
		return prices[i]
	}
	return 0
}
