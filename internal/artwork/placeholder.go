package artwork

import (
	"bytes"
	"encoding/hex"
	"image"
	"image/color"
	"image/jpeg"

	"lectio/internal/liturgy"
)

const (
	placeholderQuality = 85
	defaultDimension   = 512
)

// Placeholder renders a deterministic gradient JPEG for key. The same key,
// season and size always produce identical bytes.
func Placeholder(key string, season liturgy.Season, width, height int) []byte {
	if width <= 0 {
		width = defaultDimension
	}
	if height <= 0 {
		height = defaultDimension
	}
	top, bottom := seasonPalette(season)
	seed := keySeed(key)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	cx, cy := width/2+int(seed[0])%(width/4+1)-width/8, height/3+int(seed[1])%(height/4+1)
	radius := float64(min(width, height)) / 3
	for y := 0; y < height; y++ {
		t := float64(y) / float64(max(height-1, 1))
		for x := 0; x < width; x++ {
			r := lerp(top[0], bottom[0], t)
			g := lerp(top[1], bottom[1], t)
			b := lerp(top[2], bottom[2], t)

			dx, dy := float64(x-cx), float64(y-cy)
			if d := dx*dx + dy*dy; d < radius*radius {
				glow := 1 - d/(radius*radius)
				glow *= 0.35 + float64(seed[2]%40)/200
				r = blend(r, 255, glow)
				g = blend(g, 244, glow)
				b = blend(b, 214, glow)
			}
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: placeholderQuality})
	return buf.Bytes()
}

func keySeed(key string) [3]uint8 {
	var seed [3]uint8
	raw, err := hex.DecodeString(key)
	if err != nil || len(raw) < 3 {
		raw = []byte(key + "\x00\x00\x00")
	}
	copy(seed[:], raw[:3])
	return seed
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func blend(a, b uint8, t float64) uint8 {
	if t > 1 {
		t = 1
	}
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
