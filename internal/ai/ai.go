// Package ai wraps the Gemini API for clip suggestions, social copy and
// slide captions. Model output is untrusted: every response is located,
// schema-checked field by field, and dropped on mismatch rather than
// passed through.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
)

// maxClipSuggestions caps how many ranges one video may yield.
const maxClipSuggestions = 3

// Suggester generates clip ranges, social copy and captions. A zero API
// key produces a disabled suggester whose calls return empty results; the
// pipeline treats that the same as a model that returned nothing.
type Suggester struct {
	apiKey string
	model  string
	log    *logger.Logger
}

func NewSuggester(apiKey, model string, log *logger.Logger) *Suggester {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Suggester{apiKey: apiKey, model: model, log: log.WithComponent("ai")}
}

// Enabled reports whether an API key is configured.
func (s *Suggester) Enabled() bool {
	return s.apiKey != ""
}

func (s *Suggester) generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", errors.ExternalService(err, "gemini")
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", errors.ExternalService(err, "gemini")
	}
	return resp.Text(), nil
}

// SuggestClips asks for up to three clip windows for a transcript. Failures
// and malformed output degrade to an empty slice; clip suggestion is an
// enrichment, never a reason to fail ingestion.
func (s *Suggester) SuggestClips(ctx context.Context, transcript string, durationSeconds float64) []models.ClipRange {
	if !s.Enabled() || strings.TrimSpace(transcript) == "" {
		return nil
	}

	prompt := fmt.Sprintf(`You select highlight clips for short-form video.
The source video is %.0f seconds long. Reply with ONLY a JSON array, no prose, of at most %d objects:
[{"start_seconds": <int>, "end_seconds": <int>, "title": "<string>", "description": "<string>", "tags": ["<string>"]}]
Each clip must be 15-60 seconds long and lie inside the video.

Transcript:
%s`, durationSeconds, maxClipSuggestions, truncate(transcript, 24000))

	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.log.Warn("clip suggestion failed", "error", err.Error())
		return nil
	}

	clips := parseClipArray(text, durationSeconds, s.log)
	if len(clips) > maxClipSuggestions {
		clips = clips[:maxClipSuggestions]
	}
	return clips
}

// parseClipArray extracts and validates the suggestion array. The model
// often wraps JSON in markdown fences or prose; locate the array first,
// then verify each element's shape and bounds.
func parseClipArray(text string, duration float64, log *logger.Logger) []models.ClipRange {
	raw := extractJSON(text, '[', ']')
	if raw == "" {
		log.Warn("no JSON array in model output", "output", truncate(text, 200))
		return nil
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		log.Warn("model output is not an array", "output", truncate(raw, 200))
		return nil
	}

	var clips []models.ClipRange
	parsed.ForEach(func(_, item gjson.Result) bool {
		start := item.Get("start_seconds")
		end := item.Get("end_seconds")
		title := item.Get("title")
		if start.Type != gjson.Number || end.Type != gjson.Number || title.Type != gjson.String {
			log.Warn("dropping malformed clip suggestion", "item", truncate(item.Raw, 200))
			return true
		}

		clip := models.ClipRange{
			StartSeconds: int(start.Int()),
			EndSeconds:   int(end.Int()),
			Title:        title.String(),
			Description:  item.Get("description").String(),
		}
		for _, tag := range item.Get("tags").Array() {
			if tag.Type == gjson.String {
				clip.Tags = append(clip.Tags, tag.String())
			}
		}

		if clip.StartSeconds < 0 || clip.EndSeconds <= clip.StartSeconds ||
			(duration > 0 && float64(clip.EndSeconds) > duration) {
			log.Warn("dropping out-of-range clip suggestion",
				"start", clip.StartSeconds, "end", clip.EndSeconds, "duration", duration)
			return true
		}

		clips = append(clips, clip)
		return true
	})
	return clips
}

// SocialCopy is the platform-ready promotion text for one short.
type SocialCopy struct {
	Title       string
	Description string
	Hashtags    []string
}

// SuggestSocialCopy generates promotional copy for a rendered short.
// Returns nil on any failure; callers fall back to the raw title.
func (s *Suggester) SuggestSocialCopy(ctx context.Context, title, description string) *SocialCopy {
	if !s.Enabled() {
		return nil
	}

	prompt := fmt.Sprintf(`You write social media copy for short-form video.
Reply with ONLY a JSON object, no prose:
{"catchy_title": "<string, max 90 chars>", "engaging_description": "<string, max 300 chars>", "hashtags": ["<string without #>"]}

Video title: %s
Video description: %s`, title, description)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.log.Warn("social copy failed", "error", err.Error())
		return nil
	}

	return parseSocialCopy(text, s.log)
}

func parseSocialCopy(text string, log *logger.Logger) *SocialCopy {
	raw := extractJSON(text, '{', '}')
	if raw == "" {
		log.Warn("no JSON object in model output", "output", truncate(text, 200))
		return nil
	}

	parsed := gjson.Parse(raw)
	title := parsed.Get("catchy_title")
	desc := parsed.Get("engaging_description")
	if title.Type != gjson.String || desc.Type != gjson.String || title.String() == "" {
		log.Warn("dropping malformed social copy", "output", truncate(raw, 200))
		return nil
	}

	sc := &SocialCopy{
		Title:       title.String(),
		Description: desc.String(),
	}
	for _, h := range parsed.Get("hashtags").Array() {
		if h.Type == gjson.String && h.String() != "" {
			sc.Hashtags = append(sc.Hashtags, strings.TrimPrefix(h.String(), "#"))
		}
	}
	return sc
}

// SuggestCaptions produces one caption per slide description, in order.
// A short or failed response yields nil.
func (s *Suggester) SuggestCaptions(ctx context.Context, slideTexts []string) []string {
	if !s.Enabled() || len(slideTexts) == 0 {
		return nil
	}

	var list strings.Builder
	for i, t := range slideTexts {
		fmt.Fprintf(&list, "%d. %s\n", i+1, t)
	}

	prompt := fmt.Sprintf(`You caption slideshow images. For each numbered slide below,
write one short caption (max 60 chars). Reply with ONLY a JSON array of %d strings, in order.

Slides:
%s`, len(slideTexts), list.String())

	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.log.Warn("caption suggestion failed", "error", err.Error())
		return nil
	}

	raw := extractJSON(text, '[', ']')
	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		s.log.Warn("caption output is not an array", "output", truncate(text, 200))
		return nil
	}

	var captions []string
	for _, item := range parsed.Array() {
		if item.Type != gjson.String {
			s.log.Warn("dropping non-string caption", "item", truncate(item.Raw, 100))
			return nil
		}
		captions = append(captions, item.String())
	}
	if len(captions) != len(slideTexts) {
		s.log.Warn("caption count mismatch", "want", len(slideTexts), "got", len(captions))
		return nil
	}
	return captions
}

// extractJSON returns the first balanced region delimited by open/close,
// stripping any markdown fences or prose around it.
func extractJSON(text string, openDelim, closeDelim byte) string {
	start := strings.IndexByte(text, openDelim)
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case openDelim:
			if !inString {
				depth++
			}
		case closeDelim:
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
