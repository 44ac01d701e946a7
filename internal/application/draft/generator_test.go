package draft_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"email-draft-ai-api/internal/application/draft"
	"email-draft-ai-api/internal/domain/entity"
	"email-draft-ai-api/internal/infrastructure/llm"
	apperrors "email-draft-ai-api/pkg/errors"
)

type fakeCompleter struct {
	calls int
	msgs  []*schema.Message
	opts  llm.CallOptions
	reply string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []*schema.Message, opts llm.CallOptions) (*llm.Completion, error) {
	f.calls++
	f.msgs = msgs
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.reply, Model: opts.Model, PromptTokens: 10, CompletionTokens: 20}, nil
}

func TestGenerator_RejectsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  *entity.GenerationRequest
	}{
		{"nil request", nil},
		{"empty context", &entity.GenerationRequest{Context: "", Tone: entity.ToneFormal}},
		{"blank context", &entity.GenerationRequest{Context: "   ", Tone: entity.ToneFormal}},
		{"empty tone", &entity.GenerationRequest{Context: "budget review", Tone: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompleter{reply: "VERSION 1: a"}
			gen := draft.NewGenerator(fake, nil, draft.Limits{})

			_, err := gen.Generate(context.Background(), tt.req)
			if got := apperrors.HTTPStatusOf(err); got != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400 (err=%v)", got, err)
			}
			if appErr := apperrors.AsAppError(err); appErr.Message != "Missing required fields" {
				t.Errorf("message: got %q", appErr.Message)
			}
			if fake.calls != 0 {
				t.Errorf("completer called %d times, want 0", fake.calls)
			}
		})
	}
}

func TestGenerator_Limits(t *testing.T) {
	gen := draft.NewGenerator(&fakeCompleter{}, nil, draft.Limits{MaxContextRunes: 5, MaxToneRunes: 4, MaxWordCount: 100})

	tests := []struct {
		name string
		req  entity.GenerationRequest
	}{
		{"context too long", entity.GenerationRequest{Context: "abcdef", Tone: "calm"}},
		{"tone too long", entity.GenerationRequest{Context: "abc", Tone: "formal"}},
		{"word count too large", entity.GenerationRequest{Context: "abc", Tone: "calm", WordCount: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperrors.HTTPStatusOf(gen.Validate(&tt.req)); got != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", got)
			}
		})
	}

	if err := gen.Validate(&entity.GenerationRequest{Context: "héllo", Tone: "calm", WordCount: 100}); err != nil {
		t.Errorf("request within limits rejected: %v", err)
	}
}

func TestGenerator_BuildMessages(t *testing.T) {
	gen := draft.NewGenerator(&fakeCompleter{}, nil, draft.Limits{})

	msgs, err := gen.BuildMessages(context.Background(), &entity.GenerationRequest{
		Context:   "rescheduling Thursday's sync",
		Tone:      entity.ToneProfessional,
		WordCount: 120,
	})
	if err != nil {
		t.Fatalf("BuildMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d, want 2", len(msgs))
	}

	const length = "Each email should be approximately 120 words in length."
	for _, m := range msgs {
		if !strings.Contains(m.Content, length) {
			t.Errorf("%s message missing length instruction: %q", m.Role, m.Content)
		}
	}
	user := msgs[1].Content
	for _, want := range []string{
		"Write exactly 3 different versions of a professional email about the following: rescheduling Thursday's sync.",
		"maintain the exact same professional tone",
		`"VERSION X:" (where X is the version number 1-3)`,
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user message missing %q:\n%s", want, user)
		}
	}

	msgs, err = gen.BuildMessages(context.Background(), &entity.GenerationRequest{Context: "x", Tone: "casual"})
	if err != nil {
		t.Fatalf("BuildMessages: %v", err)
	}
	for _, m := range msgs {
		if strings.Contains(m.Content, "words in length") {
			t.Errorf("unexpected length instruction without word count: %q", m.Content)
		}
	}
}

func TestGenerator_Generate(t *testing.T) {
	fake := &fakeCompleter{reply: "VERSION 1:\nHi,\nA\n\nVERSION 2:\nHello,\nB\n\nVERSION 3:\nDear,\nC"}
	gen := draft.NewGenerator(fake, nil, draft.Limits{})

	out, err := gen.Generate(context.Background(), &entity.GenerationRequest{Context: "team offsite", Tone: entity.ToneFriendly})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := entity.DraftSet{"Hi,\nA", "Hello,\nB", "Dear,\nC"}
	if out.Drafts != want {
		t.Errorf("drafts: got %q, want %q", out.Drafts, want)
	}
	if out.Strategy != draft.StrategyMarkers {
		t.Errorf("strategy: got %s", out.Strategy)
	}
	if fake.calls != 1 {
		t.Errorf("completer calls: got %d, want 1", fake.calls)
	}
	if fake.opts.Model != draft.GenerationModel || fake.opts.Temperature != 0.8 || fake.opts.MaxTokens != 1500 {
		t.Errorf("call options: got %+v", fake.opts)
	}
	if out.Meta.PromptTokens != 10 || out.Meta.CompletionTokens != 20 {
		t.Errorf("meta: got %+v", out.Meta)
	}
}

// upstreamError 模拟带状态码的上游错误
type upstreamError struct{ status int }

func (e *upstreamError) Error() string { return fmt.Sprintf("upstream returned %d", e.status) }

func TestGenerator_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   apperrors.ErrorCode
		wantStatus int
		wantMsg    string
	}{
		{"no choices", llm.ErrNoChoices, apperrors.CodeGenerationFailed, http.StatusInternalServerError, "No response from LLM API"},
		{"empty content", fmt.Errorf("wrapped: %w", llm.ErrEmptyContent), apperrors.CodeGenerationFailed, http.StatusInternalServerError, "Empty response from LLM API"},
		{"transport failure", errors.New("dial tcp: connection refused"), apperrors.CodeLLMProviderError, http.StatusInternalServerError, "dial tcp: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompleter{err: tt.err}
			gen := draft.NewGenerator(fake, nil, draft.Limits{})

			_, err := gen.Generate(context.Background(), &entity.GenerationRequest{Context: "x", Tone: "formal"})
			appErr := apperrors.AsAppError(err)
			if appErr.Code != tt.wantCode {
				t.Errorf("code: got %s, want %s", appErr.Code, tt.wantCode)
			}
			if appErr.HTTPStatus != tt.wantStatus {
				t.Errorf("status: got %d, want %d", appErr.HTTPStatus, tt.wantStatus)
			}
			if appErr.Message != tt.wantMsg {
				t.Errorf("message: got %q, want %q", appErr.Message, tt.wantMsg)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("cause not preserved: %v", err)
			}
			if fake.calls != 1 {
				t.Errorf("completer calls: got %d, want 1", fake.calls)
			}
		})
	}
}

func TestGenerator_PaddedReply(t *testing.T) {
	fake := &fakeCompleter{reply: "VERSION 1: only one"}
	gen := draft.NewGenerator(fake, nil, draft.Limits{})

	out, err := gen.Generate(context.Background(), &entity.GenerationRequest{Context: "x", Tone: "warm"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Drafts != (entity.DraftSet{"only one", "only one", "only one"}) {
		t.Errorf("drafts: got %q", out.Drafts)
	}
	if out.Strategy != draft.StrategyPadded {
		t.Errorf("strategy: got %s, want padded", out.Strategy)
	}
}

func TestGenerator_Probe(t *testing.T) {
	fake := &fakeCompleter{reply: "Hello! I can help you write emails."}
	gen := draft.NewGenerator(fake, nil, draft.Limits{})

	out, err := gen.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if out.Result != fake.reply {
		t.Errorf("result: got %q", out.Result)
	}
	if len(fake.msgs) != 1 || fake.msgs[0].Content != "Say hello and describe how you can help write emails." {
		t.Errorf("probe messages: got %+v", fake.msgs)
	}
	if fake.opts.Temperature != 0.5 || fake.opts.MaxTokens != 500 {
		t.Errorf("probe options: got %+v", fake.opts)
	}

	fake.err = &upstreamError{status: http.StatusUnauthorized}
	_, err = gen.Probe(context.Background())
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("probe status: got %d, want 500", appErr.HTTPStatus)
	}
	if appErr.Message != "Failed to connect to Groq API" || appErr.Detail != "upstream returned 401" {
		t.Errorf("probe error: got %q / %q", appErr.Message, appErr.Detail)
	}
}

func TestGenerator_NotConfigured(t *testing.T) {
	gen := draft.NewGenerator(nil, nil, draft.Limits{})
	_, err := gen.Generate(context.Background(), &entity.GenerationRequest{Context: "x", Tone: "y"})
	if got := apperrors.HTTPStatusOf(err); got != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", got)
	}
}

func TestGenerator_WhitespaceReply(t *testing.T) {
	gen := draft.NewGenerator(&fakeCompleter{reply: " \n\t "}, nil, draft.Limits{})

	out, err := gen.Generate(context.Background(), &entity.GenerationRequest{Context: "x", Tone: "formal"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Drafts != (entity.DraftSet{}) {
		t.Errorf("drafts: got %q, want three empty drafts", out.Drafts)
	}
}
