package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeCompleter struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

func replyWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
		}},
	}
}

func TestReplyPrependsPersonaPrompt(t *testing.T) {
	fc := &fakeCompleter{resp: replyWith("Probability matrix says yes.")}
	svc := NewService(fc, Config{})

	market := MarketContext{
		Title:         "NYC hottest day this week",
		Volume:        float64(1500000),
		OutcomePrices: []int{70, 30},
		EndDate:       "24 Jun",
	}
	reply, err := svc.Reply(context.Background(), []Message{{Role: "user", Content: "Will it happen?"}}, market)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Probability matrix says yes." {
		t.Fatalf("unexpected reply %q", reply)
	}

	if fc.req.Model != DefaultModel {
		t.Errorf("expected model %q, got %q", DefaultModel, fc.req.Model)
	}
	if len(fc.req.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(fc.req.Messages))
	}
	sys := fc.req.Messages[0]
	if sys.Role != openai.ChatMessageRoleSystem {
		t.Fatalf("expected system role first, got %q", sys.Role)
	}
	for _, want := range []string{"CHANI", "NYC hottest day this week", "$1500000", "70¢", "30¢", "24 Jun", DefaultLanguage} {
		if !strings.Contains(sys.Content, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if fc.req.Messages[1].Content != "Will it happen?" {
		t.Errorf("user message not forwarded: %+v", fc.req.Messages[1])
	}
}

func TestReplyEmptyChoices(t *testing.T) {
	svc := NewService(&fakeCompleter{}, Config{})
	reply, err := svc.Reply(context.Background(), []Message{{Role: "user", Content: "hi"}}, MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != EmptyReply {
		t.Fatalf("expected EmptyReply, got %q", reply)
	}
}

func TestReplyErrors(t *testing.T) {
	svc := NewService(nil, Config{})
	if _, err := svc.Reply(context.Background(), nil, MarketContext{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	boom := errors.New("boom")
	svc = NewService(&fakeCompleter{err: boom}, Config{})
	if _, err := svc.Reply(context.Background(), []Message{{Role: "user", Content: "hi"}}, MarketContext{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}

func TestSystemPromptDefaults(t *testing.T) {
	prompt := SystemPrompt(MarketContext{Volume: "42000.5"}, "English")
	for _, want := range []string{"$42000.5", "0¢", "English"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if got := formatVolume(nil); got != "0" {
		t.Errorf("expected nil volume to render 0, got %q", got)
	}
}

func TestNewClientSendsAttributionHeaders(t *testing.T) {
	var gotReferer, gotTitle, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
		Referer: "http://localhost:3000",
	})
	svc := NewService(client, Config{})

	reply, err := svc.Reply(context.Background(), []Message{{Role: "user", Content: "hi"}}, MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "ok" {
		t.Fatalf("expected ok, got %q", reply)
	}
	if gotReferer != "http://localhost:3000" || gotTitle != DefaultTitle {
		t.Fatalf("unexpected attribution headers: %q / %q", gotReferer, gotTitle)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
}
