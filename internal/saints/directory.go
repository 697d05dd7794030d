// Package saints loads the saints calendar and answers feast-day lookups.
package saints

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lectio/internal/liturgy"
	"lectio/internal/services"
)

//go:embed saints.yaml
var embeddedSaints []byte

var nameCaser = cases.Title(language.English)

type record struct {
	Name        string   `yaml:"name"`
	FeastDay    string   `yaml:"feast_day"`
	Rank        string   `yaml:"rank"`
	Patronage   []string `yaml:"patronage"`
	Iconography string   `yaml:"iconography"`
	Biography   string   `yaml:"biography"`
}

type document struct {
	Saints []record `yaml:"saints"`
}

// Directory indexes saints by MM-DD. Entries for a day are kept in precedence
// order. It is read-only after load.
type Directory struct {
	byDay map[string][]liturgy.Saint
	count int
}

// Load parses the embedded saints table.
func Load() (*Directory, error) {
	return Parse(embeddedSaints)
}

// LoadFile parses a saints table from disk.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "saints", "load", "read "+path, err)
	}
	return Parse(data)
}

// Parse builds a Directory from YAML.
func Parse(data []byte) (*Directory, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "saints", "parse", "invalid saints table", err)
	}
	dir := &Directory{byDay: make(map[string][]liturgy.Saint)}
	for i, rec := range doc.Saints {
		saint, err := rec.toSaint()
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "saints", "parse", fmt.Sprintf("entry %d", i+1), err)
		}
		dir.byDay[saint.FeastDay] = append(dir.byDay[saint.FeastDay], saint)
		dir.count++
	}
	for day := range dir.byDay {
		liturgy.SortByPrecedence(dir.byDay[day], func(s liturgy.Saint) liturgy.Rank { return s.Rank })
	}
	return dir, nil
}

func (r record) toSaint() (liturgy.Saint, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return liturgy.Saint{}, fmt.Errorf("name is required")
	}
	if name == strings.ToLower(name) {
		name = nameCaser.String(name)
	}
	day := strings.TrimSpace(r.FeastDay)
	if _, err := time.Parse("01-02", day); err != nil {
		return liturgy.Saint{}, fmt.Errorf("%s: feast_day %q must be MM-DD", name, r.FeastDay)
	}
	rank := liturgy.OptionalMemorial
	if strings.TrimSpace(r.Rank) != "" {
		parsed, ok := liturgy.ParseRank(r.Rank)
		if !ok {
			return liturgy.Saint{}, fmt.Errorf("%s: unknown rank %q", name, r.Rank)
		}
		rank = parsed
	}
	patronage := make([]string, 0, len(r.Patronage))
	for _, p := range r.Patronage {
		if p = strings.TrimSpace(p); p != "" {
			patronage = append(patronage, p)
		}
	}
	return liturgy.Saint{
		Name:        name,
		FeastDay:    day,
		Rank:        rank,
		Patronage:   patronage,
		Iconography: strings.TrimSpace(r.Iconography),
		Biography:   strings.TrimSpace(r.Biography),
	}, nil
}

// Len reports the number of saints loaded.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return d.count
}

// Lookup returns the highest-precedence saint for an MM-DD key.
func (d *Directory) Lookup(feastDay string) (liturgy.Saint, bool) {
	all := d.ForFeastDay(feastDay)
	if len(all) == 0 {
		return liturgy.Saint{}, false
	}
	return all[0], true
}

// ForFeastDay returns every saint for an MM-DD key in precedence order.
func (d *Directory) ForFeastDay(feastDay string) []liturgy.Saint {
	if d == nil {
		return nil
	}
	entries := d.byDay[strings.TrimSpace(feastDay)]
	return append([]liturgy.Saint(nil), entries...)
}

// LookupByFeastDay returns the highest-precedence saint celebrated on date.
func (d *Directory) LookupByFeastDay(date time.Time) (liturgy.Saint, bool) {
	return d.Lookup(liturgy.FeastDayKey(date))
}

// OnFeastDay returns all saints celebrated on date.
func (d *Directory) OnFeastDay(date time.Time) []liturgy.Saint {
	return d.ForFeastDay(liturgy.FeastDayKey(date))
}
