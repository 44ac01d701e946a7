package prompt_test

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"email-draft-ai-api/internal/workflow/prompt"
)

func TestRegistry_EmailDraftsTemplate(t *testing.T) {
	reg := prompt.NewRegistry()

	tpl, err := reg.ChatTemplate(prompt.PromptEmailDraftsV1)
	if err != nil {
		t.Fatalf("ChatTemplate: %v", err)
	}

	msgs, err := tpl.Format(context.Background(), map[string]any{
		"variations":         "3",
		"tone":               "friendly",
		"context":            "a team lunch on {Friday}",
		"length_instruction": "",
	})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("messages: got %d, want 2", len(msgs))
	}
	if msgs[0].Role != schema.System || msgs[1].Role != schema.User {
		t.Errorf("roles: got %s/%s, want system/user", msgs[0].Role, msgs[1].Role)
	}
	if !strings.Contains(msgs[1].Content, "a friendly email about the following: a team lunch on {Friday}.") {
		t.Errorf("user message missing context: %q", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, `"VERSION X:"`) {
		t.Errorf("user message missing marker instruction: %q", msgs[1].Content)
	}
}

func TestRegistry_ProbeHasNoSystemMessage(t *testing.T) {
	tpl, err := prompt.NewRegistry().ChatTemplate(prompt.PromptLLMProbeV1)
	if err != nil {
		t.Fatalf("ChatTemplate: %v", err)
	}
	msgs, err := tpl.Format(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != schema.User {
		t.Fatalf("messages: got %+v, want one user message", msgs)
	}
}

func TestRegistry_UnknownPrompt(t *testing.T) {
	if _, err := prompt.NewRegistry().ChatTemplate("nope"); err == nil {
		t.Fatal("expected error for unknown prompt id")
	}
}

func TestRegistry_Caches(t *testing.T) {
	reg := prompt.NewRegistry()
	a, err := reg.ChatTemplate(prompt.PromptEmailDraftsV1)
	if err != nil {
		t.Fatalf("ChatTemplate: %v", err)
	}
	b, _ := reg.ChatTemplate(prompt.PromptEmailDraftsV1)
	if a != b {
		t.Error("expected cached template instance")
	}
}
