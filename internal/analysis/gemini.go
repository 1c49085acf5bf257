package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/meltforce/vizofit/internal/locale"
	"github.com/meltforce/vizofit/internal/models"
)

// DefaultModel is used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const emptyResponse = "AI returned an empty response. Please try a different photo."

// ErrMissingAPIKey is returned by NewGemini without a key.
var ErrMissingAPIKey = errors.New("analysis api key not configured")

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini is the Analyzer backed by the Gemini API.
type Gemini struct {
	model    string
	timeout  time.Duration
	generate generateFunc
	log      *slog.Logger
}

// NewGemini creates a Gemini analyzer.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration, log *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{
		model:    model,
		timeout:  timeout,
		generate: client.Models.GenerateContent,
		log:      log,
	}, nil
}

// Analyze sends the image and prompt and decodes the JSON routine.
func (g *Gemini) Analyze(ctx context.Context, req Request) (*models.WorkoutRoutine, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	lang := req.Language
	if !locale.IsSupported(lang) {
		lang = locale.Default
	}
	mime := req.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{Data: req.Image, MIMEType: mime}},
			{Text: Prompt(req.Units, lang)},
		},
	}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   routineSchema(),
	}

	start := time.Now()
	resp, err := g.generate(ctx, g.model, contents, config)
	if err != nil {
		g.log.Error("analysis request failed", "model", g.model, "error", err)
		return nil, failed(err.Error(), err)
	}

	var text string
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		g.log.Warn("analysis returned no text", "model", g.model)
		return nil, failed(emptyResponse, nil)
	}

	var routine models.WorkoutRoutine
	if err := json.Unmarshal([]byte(text), &routine); err != nil {
		g.log.Error("analysis response not valid JSON", "error", err, "bytes", len(text))
		return nil, failed(err.Error(), err)
	}
	routine.GeneratedLanguage = lang
	routine.DebugRawResponse = text

	g.log.Info("analysis complete",
		"equipment", routine.EquipmentName,
		"exercises", len(routine.Exercises),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &routine, nil
}

func failed(msg string, err error) *Error {
	if msg == "" {
		msg = "Please try a clearer photo."
	}
	return &Error{Message: "Analysis failed: " + msg, Err: err}
}

// Prompt builds the instruction text for the given units and language.
func Prompt(units models.UnitSystem, lang string) string {
	name := "English"
	if l, ok := locale.Lookup(lang); ok {
		name = l.Name
	}
	unitLine := "Use Metric units (kg, km)."
	if units == models.Imperial {
		unitLine = "Use Imperial units (lbs, miles)."
	}
	return fmt.Sprintf(`Identify gym equipment/training tools in this image and create a workout.
OUTPUT LANGUAGE: %[1]s
UNITS: %[2]s

Look carefully at the image. Even if the photo is blurry or unclear:
- Identify ANY visible equipment, objects, or tools that could be used for exercise.
- If you see dumbbells, barbells, kettlebells, machines, bands, or ANY fitness equipment, use them.
- Make educated guesses about equipment type and weights based on visual cues.
- Use "Bodyweight" ONLY when no equipment is visible at all.

EXERCISE RULES:
- CONCRETE weights (e.g. "10kg", "15lbs"). No "light/medium".
- For adjustable equipment, suggest appropriate starting weights.
- If a person/pet/child is shown WITHOUT any fitness equipment, design "Interactive Play" or "Bodyweight Resistance".
- Generate BETWEEN 4 and 6 exercises.
- Names and instructions must be in %[1]s.

SCHEMA REQUIREMENTS:
- equipmentName: specific common name of the gear ("20kg Dumbbells", not "Dumbbells").
- exercises: 4-6 exercises using ONLY this gear.
- safetyTips: 3-4 critical safety points.
- estimatedDuration: total time (e.g. "25 min").`, name, unitLine)
}

func routineSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	strList := &genai.Schema{Type: genai.TypeArray, Items: str}
	minEx, maxEx := int64(4), int64(6)

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"equipmentName":        str,
			"equipmentDescription": str,
			"targetMuscles":        strList,
			"suggestedIntensity":   str,
			"exercises": {
				Type:     genai.TypeArray,
				MinItems: &minEx,
				MaxItems: &maxEx,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":         str,
						"sets":         str,
						"reps":         str,
						"rest":         str,
						"weight":       str,
						"instructions": str,
					},
					Required: []string{"name", "sets", "reps", "instructions", "weight"},
				},
			},
			"safetyTips":        strList,
			"estimatedDuration": str,
		},
		Required: []string{"equipmentName", "exercises", "targetMuscles", "suggestedIntensity", "safetyTips", "estimatedDuration"},
	}
}
