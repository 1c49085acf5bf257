package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/meltforce/vizofit/internal/models"
)

const sampleJSON = `{
  "equipmentName": "Kettlebell",
  "equipmentDescription": "A cast iron kettlebell",
  "targetMuscles": ["glutes", "core"],
  "suggestedIntensity": "Moderate",
  "exercises": [
    {"name": "Swing", "sets": "3", "reps": "15 reps", "rest": "60 sec", "weight": "16kg", "instructions": "Hinge"},
    {"name": "Goblet Squat", "sets": "3", "reps": "10", "rest": "60 sec", "weight": "16kg", "instructions": "Sit back"},
    {"name": "Halo", "sets": "2", "reps": "8", "rest": "45 sec", "weight": "8kg", "instructions": "Circle"},
    {"name": "Carry", "sets": "2", "reps": "30 sec", "rest": "45 sec", "weight": "16kg", "instructions": "Walk tall"}
  ],
  "safetyTips": ["Neutral spine"],
  "estimatedDuration": "25 min"
}`

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func fakeGemini(fn generateFunc) *Gemini {
	return &Gemini{
		model:    DefaultModel,
		generate: fn,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// TestAnalyzeDecodesRoutine verifies the request shape and the stamped fields.
func TestAnalyzeDecodesRoutine(t *testing.T) {
	var gotPrompt string
	var gotMIME string
	g := fakeGemini(func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		if model != DefaultModel {
			t.Errorf("model = %q", model)
		}
		if cfg.ResponseMIMEType != "application/json" || cfg.ResponseSchema == nil {
			t.Error("response schema not requested")
		}
		parts := contents[0].Parts
		gotMIME = parts[0].InlineData.MIMEType
		gotPrompt = parts[1].Text
		return textResponse(sampleJSON), nil
	})

	r, err := g.Analyze(context.Background(), Request{Image: []byte{0xff, 0xd8}, Units: models.Imperial, Language: "de"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.EquipmentName != "Kettlebell" || len(r.Exercises) != 4 {
		t.Errorf("routine = %+v", r)
	}
	if r.GeneratedLanguage != "de" {
		t.Errorf("generatedLanguage = %q", r.GeneratedLanguage)
	}
	if r.DebugRawResponse == "" {
		t.Error("raw response not kept")
	}
	if gotMIME != "image/jpeg" {
		t.Errorf("mime = %q", gotMIME)
	}
	if !strings.Contains(gotPrompt, "OUTPUT LANGUAGE: German") || !strings.Contains(gotPrompt, "Imperial") {
		t.Errorf("prompt missing language or units:\n%s", gotPrompt)
	}
}

// TestAnalyzeFailures converts every failure into a readable *Error.
func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
		want string
	}{
		{"transport", nil, errors.New("quota exceeded"), "Analysis failed: quota exceeded"},
		{"empty", textResponse("  "), nil, "Analysis failed: " + emptyResponse},
		{"no candidates", &genai.GenerateContentResponse{}, nil, "Analysis failed: " + emptyResponse},
		{"bad json", textResponse("{oops"), nil, "Analysis failed: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fakeGemini(func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return tt.resp, tt.err
			})
			_, err := g.Analyze(context.Background(), Request{Image: []byte{1}})
			var ae *Error
			if !errors.As(err, &ae) {
				t.Fatalf("err = %v (%T), want *Error", err, err)
			}
			if !strings.HasPrefix(Message(err), tt.want) {
				t.Errorf("message = %q, want prefix %q", Message(err), tt.want)
			}
		})
	}
}

// TestMessageFallback returns the generic text for foreign errors.
func TestMessageFallback(t *testing.T) {
	if got := Message(errors.New("boom")); got != FallbackMessage {
		t.Errorf("Message = %q", got)
	}
	if got := Message(&Error{}); got != FallbackMessage {
		t.Errorf("empty *Error message = %q", got)
	}
}

// TestNewGeminiRequiresKey fails fast without credentials.
func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", "", 0, nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v", err)
	}
}
