package extract

import (
	"log/slog"
	"unicode/utf8"

	"lectio/internal/logging"
	"lectio/internal/scripture"
)

const (
	// FallbackGospelText is used when no usable Gospel text can be recovered.
	FallbackGospelText = "Today's Gospel could not be loaded. Please refresh to try again."

	descriptionGospelLimit = 200
	minDescriptionLength   = 10

	// minReadingLength is the shortest cleaned body accepted from a labelled
	// match. "Some text" (9) must survive; "Amen." must not.
	minReadingLength = 9
)

// placeholderText stands in for a labelled non-Gospel reading whose body was
// empty or too short to be real text.
func placeholderText(kind Kind) string {
	return kind.Title() + " text is unavailable. Please refresh to try again."
}

// Extractor splits feed descriptions into Mass readings.
type Extractor struct {
	policies Policies
	logger   *slog.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithPolicies replaces the default policy table.
func WithPolicies(p Policies) Option {
	return func(e *Extractor) {
		if len(p) > 0 {
			e.policies = p
		}
	}
}

// New constructs an Extractor with the default policies.
func New(logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		policies: DefaultPolicies(),
		logger:   logging.NewComponentLogger(logger, "extract"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails. Absent non-Gospel readings are nil.
func (e *Extractor) Extract(description string) scripture.MassReadings {
	var out scripture.MassReadings

	for _, kind := range []Kind{KindFirstReading, KindPsalm, KindSecondReading, KindAlleluia} {
		reading, degraded, ok := e.extractKind(kind, description)
		if !ok {
			continue
		}
		out.Degraded = out.Degraded || degraded
		r := reading
		switch kind {
		case KindFirstReading:
			out.FirstReading = &r
		case KindPsalm:
			out.Psalm = &r
		case KindSecondReading:
			out.SecondReading = &r
		case KindAlleluia:
			out.Alleluia = &r
		}
	}

	gospel, degraded := e.extractGospel(description)
	out.Gospel = gospel
	out.Degraded = out.Degraded || degraded
	return out
}

// extractKind tries the policies for kind in order. A match whose cleaned
// body is shorter than minReadingLength is not accepted; the next policy is
// tried. If only short matches were found, non-Gospel kinds get placeholder
// text and the Gospel reports no match so its own fallbacks run.
func (e *Extractor) extractKind(kind Kind, description string) (scripture.Reading, bool, bool) {
	short := ""
	for _, policy := range e.policies[kind] {
		fragment, ok := policy.Match(description)
		if !ok {
			continue
		}
		text, degraded := cleanFragment(fragment)
		if utf8.RuneCountInString(text) < minReadingLength {
			if short == "" {
				short = policy.Name
			}
			continue
		}
		if degraded {
			e.warnDegraded(kind, policy.Name, "markup survived cleaning; kept first prose sentence")
		} else if policy.Fallback {
			degraded = true
			e.warnDegraded(kind, policy.Name, "no labelled section; matched loose fallback pattern")
		}
		return newReading(kind, fragment, text), degraded, true
	}
	if short == "" || kind == KindGospel {
		return scripture.Reading{}, false, false
	}
	e.warnDegraded(kind, short, "labelled section empty or too short; using placeholder text")
	return scripture.NewBlockReading(kind.Title(), placeholderText(kind), nil), true, true
}

func (e *Extractor) extractGospel(description string) (scripture.Reading, bool) {
	if reading, degraded, ok := e.extractKind(KindGospel, description); ok {
		return reading, degraded
	}

	cleaned, _ := CleanHTML(description)
	cleaned = StripLabels(cleaned)
	if utf8.RuneCountInString(cleaned) >= minDescriptionLength {
		e.warnDegraded(KindGospel, "gospel/description", "no Gospel label found; using truncated description")
		return newReading(KindGospel, description, truncateRunes(cleaned, descriptionGospelLimit)), true
	}

	e.warnDegraded(KindGospel, "gospel/fallback", "description empty or unusable; using placeholder text")
	return scripture.NewBlockReading(KindGospel.Title(), FallbackGospelText, nil), true
}

func (e *Extractor) warnDegraded(kind Kind, policy, reason string) {
	logging.WarnWithContext(e.logger, "reading extraction degraded", "extraction_degraded",
		logging.String("reading", string(kind)),
		logging.String("policy", policy),
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, "inspect the feed description markup for label changes"),
		logging.String(logging.FieldImpact, "reading shown with lower fidelity text"),
	)
}

func cleanFragment(fragment string) (string, bool) {
	text, degraded := CleanHTML(fragment)
	return StripLabels(text), degraded
}

func newReading(kind Kind, fragment, text string) scripture.Reading {
	var ref *scripture.Reference
	if found, ok := scripture.FirstReference(fragment); ok {
		ref = &found
	}
	return scripture.NewBlockReading(kind.Title(), text, ref)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
