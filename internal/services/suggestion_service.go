package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"

	"todoboard/internal/utils"
)

var ErrAIQuotaExceeded = errors.New("AI quota exceeded")

const suggestFailedMessage = "Failed to generate suggestions. Please try again."

// TextGenerator is the upstream model (utils.OpenAIClient).
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SuggestionStore caches parsed suggestions per seed title (cache.SuggestionCache).
type SuggestionStore interface {
	Get(ctx context.Context, seed string) ([]string, bool, error)
	Set(ctx context.Context, seed string, suggestions []string) error
}

type SuggestionService interface {
	Suggest(ctx context.Context, title string) ([]string, error)
}

type suggestionService struct {
	gen   TextGenerator
	cache SuggestionStore // optional
	group singleflight.Group
}

// NewSuggestionService: pass a nil store to disable caching.
func NewSuggestionService(gen TextGenerator, store SuggestionStore) SuggestionService {
	return &suggestionService{gen: gen, cache: store}
}

func SuggestionPrompt(title string) string {
	return fmt.Sprintf("Suggest 3 actionable todo task titles based on the following task:\n\"%s\"\nReturn only a bullet list of task titles.", title)
}

// Suggest collapses concurrent calls for the same title into one upstream request.
// The shared request outlives any single caller; each caller stops waiting when
// its own ctx ends, and the generator's client timeout bounds the flight.
func (s *suggestionService) Suggest(ctx context.Context, title string) ([]string, error) {
	seed := strings.TrimSpace(title)
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strings.ToLower(seed), func() (any, error) {
		return s.suggest(flightCtx, seed)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	shared := res.Val.([]string)
	out := make([]string, len(shared))
	copy(out, shared)
	return out, nil
}

func (s *suggestionService) suggest(ctx context.Context, seed string) ([]string, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, seed)
		if err != nil {
			log.Printf("[ai][cache][err] get: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	raw, err := s.gen.Generate(ctx, SuggestionPrompt(seed))
	if err != nil {
		var apiErr *utils.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return nil, ErrAIQuotaExceeded
		}
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}

	suggestions := ParseSuggestions(raw)
	if s.cache != nil {
		if err := s.cache.Set(ctx, seed, suggestions); err != nil {
			log.Printf("[ai][cache][err] set: %v", err)
		}
	}
	return suggestions, nil
}

var bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•]\s*|\d+[.)]\s+)`)

// ParseSuggestions turns a bullet list into titles: one per line, markers
// stripped, blanks dropped, duplicates removed keeping the first.
func ParseSuggestions(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

// SuggestErrorMessage is the client-safe text for a Suggest failure.
func SuggestErrorMessage(err error) string {
	if errors.Is(err, ErrAIQuotaExceeded) {
		return ErrAIQuotaExceeded.Error()
	}
	return suggestFailedMessage
}

// ===== Panel view state

type PanelState string

const (
	PanelHidden   PanelState = "hidden"
	PanelThinking PanelState = "thinking"
	PanelEmpty    PanelState = "empty"
	PanelReady    PanelState = "ready"
	PanelFailed   PanelState = "failed"
)

const (
	panelThinkingMessage = "🤖 AI is thinking..."
	panelEmptyMessage    = "No suggestions found."
	panelReadyMessage    = "Selected items will be added as new tasks when you save."
)

// SuggestionPanel is what the suggestion area of the form shows.
type SuggestionPanel struct {
	State       PanelState
	Suggestions []string
	Message     string
}

func HiddenPanel() SuggestionPanel {
	return SuggestionPanel{State: PanelHidden}
}

func ThinkingPanel() SuggestionPanel {
	return SuggestionPanel{State: PanelThinking, Message: panelThinkingMessage}
}

func PanelFromResult(suggestions []string, err error) SuggestionPanel {
	switch {
	case err != nil:
		return SuggestionPanel{State: PanelFailed, Message: SuggestErrorMessage(err)}
	case len(suggestions) == 0:
		return SuggestionPanel{State: PanelEmpty, Message: panelEmptyMessage}
	}
	return SuggestionPanel{State: PanelReady, Suggestions: suggestions, Message: panelReadyMessage}
}

func (p SuggestionPanel) Visible() bool {
	return p.State != "" && p.State != PanelHidden
}
