package artwork

import "lectio/internal/liturgy"

// SeasonTheme returns the art direction for a liturgical season.
func SeasonTheme(season liturgy.Season) string {
	switch season {
	case liturgy.Advent:
		return "Advent: deep violet and midnight blue, candlelight, a sense of quiet expectation and dawn approaching."
	case liturgy.ChristmasTime:
		return "Christmas: radiant white and gold, starlight, warmth and joy of the Incarnation."
	case liturgy.Lent:
		return "Lent: muted violet and desert ochre, sparse austere settings, penitence and inner stillness."
	case liturgy.EasterTime:
		return "Easter: brilliant white and gold morning light, spring flowers, empty tomb radiance, resurrection joy."
	default:
		return "Ordinary Time: living greens, growth and harvest imagery, steady daylight."
	}
}

// seasonPalette gives each season a base color pair for placeholders.
func seasonPalette(season liturgy.Season) ([3]uint8, [3]uint8) {
	switch season {
	case liturgy.Advent:
		return [3]uint8{58, 32, 92}, [3]uint8{24, 30, 72}
	case liturgy.ChristmasTime:
		return [3]uint8{236, 226, 198}, [3]uint8{196, 156, 64}
	case liturgy.Lent:
		return [3]uint8{88, 58, 104}, [3]uint8{150, 122, 84}
	case liturgy.EasterTime:
		return [3]uint8{246, 240, 220}, [3]uint8{212, 176, 80}
	default:
		return [3]uint8{56, 112, 64}, [3]uint8{150, 186, 110}
	}
}
