package artwork

import (
	"fmt"
	"strings"

	"lectio/internal/scripture"
)

// ContextType selects the visual treatment of a passage.
type ContextType int

const (
	Narrative ContextType = iota
	Psalm
	Parable
	Gospel
	Prophecy
	Epistle
	Wisdom
	Apocalyptic
	Law
)

type contextSpec struct {
	tag      string
	style    string
	guidance string
}

var contextSpecs = map[ContextType]contextSpec{
	Narrative: {
		tag:      "narrative",
		style:    "Classical history painting with a clear central scene, figures in period dress of the ancient Near East, natural landscape and warm directional light.",
		guidance: "Depict the moment of the story the text describes. Show the key figures and their actions. Keep the composition readable at a glance.",
	},
	Psalm: {
		tag:      "psalm",
		style:    "Lyrical contemplative landscape, soft atmospheric light, gentle color harmonies in the manner of devotional watercolor.",
		guidance: "Express the emotion of the prayer through landscape, sky and light. Prefer symbolic imagery such as still waters, mountains, shepherds or harps over literal figures.",
	},
	Parable: {
		tag:      "parable",
		style:    "Warm illustrative realism like a storybook plate, everyday rural life in first-century Galilee.",
		guidance: "Show the concrete image of the parable such as the sower, the lost sheep or the mustard seed. Let the ordinary scene carry the spiritual meaning.",
	},
	Gospel: {
		tag:      "gospel",
		style:    "Renaissance sacred art, luminous chiaroscuro, Christ as the compositional and light center.",
		guidance: "Center the person of Christ with reverence. Show disciples or crowds where the text names them. Convey compassion and divine presence.",
	},
	Prophecy: {
		tag:      "prophecy",
		style:    "Dramatic visionary painting, bold contrasts of storm and radiance, sweeping skies.",
		guidance: "Evoke the prophetic vision or oracle with symbolic elements such as fire, light breaking through cloud or a watchman on the walls. Convey urgency and hope.",
	},
	Epistle: {
		tag:      "epistle",
		style:    "Quiet early Christian scene, oil lamp interior, scrolls and parchment, fresco-like muted palette.",
		guidance: "Illustrate the teaching through a symbolic scene of early Christian community life, worship or a single emblem drawn from the text.",
	},
	Wisdom: {
		tag:      "wisdom",
		style:    "Meditative still-life and nature study, balanced composition, golden hour light.",
		guidance: "Render the proverb or reflection as a simple symbolic image from nature or daily life. Favor calm, order and contemplation.",
	},
	Apocalyptic: {
		tag:      "apocalyptic",
		style:    "Majestic cosmic imagery in the manner of medieval illuminated manuscripts, gold leaf accents, deep blues and crimson.",
		guidance: "Use the symbols of the vision such as the Lamb, the throne, the new Jerusalem or the seven lampstands. Emphasize triumph and heavenly glory over terror.",
	},
	Law: {
		tag:      "law",
		style:    "Solemn monumental composition, stone tablets, desert and tabernacle, austere earth tones.",
		guidance: "Show the covenant setting with Sinai, the tabernacle or the assembled people. Convey holiness, order and the gift of the commandments.",
	},
}

var contextByTag = func() map[string]ContextType {
	m := make(map[string]ContextType, len(contextSpecs))
	for ct, spec := range contextSpecs {
		m[spec.tag] = ct
	}
	return m
}()

// ContextTypes lists every context in declaration order.
func ContextTypes() []ContextType {
	return []ContextType{Narrative, Psalm, Parable, Gospel, Prophecy, Epistle, Wisdom, Apocalyptic, Law}
}

func (c ContextType) String() string {
	if spec, ok := contextSpecs[c]; ok {
		return spec.tag
	}
	return fmt.Sprintf("ContextType(%d)", int(c))
}

// StyleTemplate returns the fixed visual-style text for c.
func (c ContextType) StyleTemplate() string {
	return contextSpecs[c].style
}

// Guidance returns the fixed content guidance text for c.
func (c ContextType) Guidance() string {
	return contextSpecs[c].guidance
}

// ParseContextType maps a tag such as "psalm" to its ContextType.
func ParseContextType(tag string) (ContextType, error) {
	ct, ok := contextByTag[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return Narrative, fmt.Errorf("unknown context type %q", tag)
	}
	return ct, nil
}

var bookContexts = func() map[string]ContextType {
	m := map[string]ContextType{}
	assign := func(ct ContextType, codes ...string) {
		for _, code := range codes {
			m[code] = ct
		}
	}
	assign(Law, "LEV", "NUM", "DEU")
	assign(Psalm, "PSA")
	assign(Wisdom, "JOB", "PRO", "ECC", "SNG", "WIS", "SIR")
	assign(Prophecy, "ISA", "JER", "LAM", "BAR", "EZK", "DAN", "HOS", "JOL", "AMO", "OBA",
		"JON", "MIC", "NAM", "HAB", "ZEP", "HAG", "ZEC", "MAL")
	assign(Gospel, "MAT", "MRK", "LUK", "JHN")
	assign(Epistle, "ROM", "1CO", "2CO", "GAL", "EPH", "PHP", "COL", "1TH", "2TH", "1TI",
		"2TI", "TIT", "PHM", "HEB", "JAS", "1PE", "2PE", "1JN", "2JN", "3JN", "JUD")
	assign(Apocalyptic, "REV")
	return m
}()

// ContextForBook returns the default context for a book name. Books without
// a specific treatment are narrative.
func ContextForBook(book string) ContextType {
	if ct, ok := bookContexts[scripture.BookCode(book)]; ok {
		return ct
	}
	return Narrative
}
