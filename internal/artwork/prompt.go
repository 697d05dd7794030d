package artwork

import (
	"fmt"
	"strings"

	"lectio/internal/liturgy"
	"lectio/internal/scripture"
)

const maxPromptText = 1200

// Request describes one artwork to produce.
type Request struct {
	Reference *scripture.Reference
	Text      string
	Context   ContextType
	Season    liturgy.Season
	Saint     *liturgy.Saint
}

// Identity is the content half of the cache key.
func (r Request) Identity() string {
	if r.Reference != nil && !r.Reference.IsZero() {
		return r.Reference.APIFormat()
	}
	return "text:" + strings.Join(strings.Fields(r.Text), " ")
}

// StyleTag is the style half of the cache key.
func (r Request) StyleTag(style string) string {
	tag := fmt.Sprintf("%s|%s|%s", r.Context, r.Season, strings.TrimSpace(style))
	if r.Saint != nil {
		tag += "|" + r.Saint.Name
	}
	return tag
}

// BuildPrompt composes the provider prompt from the scripture text, the
// context's style and guidance, and the season's theme.
func BuildPrompt(req Request, style string) string {
	var b strings.Builder
	b.WriteString("Create a devotional artwork illustrating this scripture passage")
	if req.Reference != nil && !req.Reference.IsZero() {
		fmt.Fprintf(&b, " (%s)", req.Reference.DisplayText())
	}
	b.WriteString(":\n\"")
	b.WriteString(truncate(strings.Join(strings.Fields(req.Text), " "), maxPromptText))
	b.WriteString("\"\n\n")

	fmt.Fprintf(&b, "Visual style (%s): %s\n", req.Context, req.Context.StyleTemplate())
	fmt.Fprintf(&b, "Content guidance: %s\n", req.Context.Guidance())
	fmt.Fprintf(&b, "Liturgical season: %s\n", SeasonTheme(req.Season))
	if req.Saint != nil && strings.TrimSpace(req.Saint.Iconography) != "" {
		fmt.Fprintf(&b, "Include a subtle reference to %s, traditionally shown with %s.\n", req.Saint.Name, req.Saint.Iconography)
	}
	if style = strings.TrimSpace(style); style != "" {
		fmt.Fprintf(&b, "Overall medium: %s.\n", style)
	}
	b.WriteString("No text, letters, captions or watermarks in the image.")
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
