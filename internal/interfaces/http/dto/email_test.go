package dto_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"email-draft-ai-api/internal/domain/entity"
	"email-draft-ai-api/internal/interfaces/http/dto"
)

func TestGenerateEmailRequest_WordCount(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"number", `{"wordCount": 150}`, 150},
		{"numeric string", `{"wordCount": " 200 "}`, 200},
		{"fractional", `{"wordCount": 99.7}`, 99},
		{"absent", `{}`, 0},
		{"null", `{"wordCount": null}`, 0},
		{"non numeric string", `{"wordCount": "about a hundred"}`, 0},
		{"empty string", `{"wordCount": ""}`, 0},
		{"zero", `{"wordCount": 0}`, 0},
		{"negative", `{"wordCount": -20}`, 0},
		{"boolean", `{"wordCount": true}`, 0},
		{"object", `{"wordCount": {"n": 3}}`, 0},
		{"beyond int32", `{"wordCount": 1e12}`, math.MaxInt32},
		{"overflowing string", `{"wordCount": "1e400"}`, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.GenerateEmailRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got := req.ToEntity().WordCount; got != tt.want {
				t.Errorf("WordCount: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGenerateEmailRequest_NormalizesText(t *testing.T) {
	req := dto.GenerateEmailRequest{Context: "re\u0301sume\u0301 review", Tone: "cafe\u0301"}
	got := req.ToEntity()
	if got.Context != "r\u00e9sum\u00e9 review" {
		t.Errorf("Context: got %q", got.Context)
	}
	if got.Tone != "caf\u00e9" {
		t.Errorf("Tone: got %q", got.Tone)
	}
}

func TestNewGenerateEmailResponse(t *testing.T) {
	resp := dto.NewGenerateEmailResponse(entity.DraftSet{"a", "b", "c"})
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(b), `{"emails":["a","b","c"],"email":"a"}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestGenerateEmailRequest_IgnoresNumVariations(t *testing.T) {
	for _, body := range []string{
		`{"context":"x","tone":"y","numVariations":5}`,
		`{"context":"x","tone":"y","numVariations":"3"}`,
		`{"context":"x","tone":"y","numVariations":[1,2]}`,
		`{"context":"x","tone":"y","numVariations":null}`,
	} {
		var req dto.GenerateEmailRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Errorf("%s: Unmarshal: %v", body, err)
		}
	}
}

func TestNewProbeResponse(t *testing.T) {
	resp := dto.NewProbeResponse("Hello!", `{"id":"chatcmpl-1","choices":[]}`)
	want := "API Key Test Result:\n\nHello!\n\nAPI Response:\n{\n  \"id\": \"chatcmpl-1\",\n  \"choices\": []\n}"
	if resp.Result != want {
		t.Errorf("result:\ngot  %q\nwant %q", resp.Result, want)
	}

	resp = dto.NewProbeResponse("Hi", "not json")
	if !strings.HasSuffix(resp.Result, "API Response:\nnot json") {
		t.Errorf("raw fallback: got %q", resp.Result)
	}
}
