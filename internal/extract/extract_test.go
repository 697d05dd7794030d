package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"lectio/internal/logging"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		want         string
		wantDegraded bool
	}{
		{"entities", "Faith &amp; hope &quot;love&quot;&nbsp;now &apos;ok&apos;", `Faith & hope "love" now 'ok'`, false},
		{"nested tags", "<p><em><b>Blessed</b></em> are</p><br/>the meek", "Blessed are the meek", false},
		{"numeric entity", "God&#39;s word", "God's word", false},
		{"residual entity", "mercy &bogus; endures", "mercy endures", false},
		{"whitespace", "  one\n\n two\tthree ", "one two three", false},
		{
			"unclosed markup keeps first prose sentence",
			`<a href="x" class="y". The Lord is my shepherd, there is nothing I lack. More`,
			"The Lord is my shepherd, there is nothing I lack.",
			true,
		},
		{
			"unclosed markup without prose is character stripped",
			`<span class="v"Amen`,
			"span classvAmen",
			true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, degraded := CleanHTML(tc.input)
			if got != tc.want || degraded != tc.wantDegraded {
				t.Fatalf("CleanHTML(%q) = %q (degraded=%v), want %q (degraded=%v)", tc.input, got, degraded, tc.want, tc.wantDegraded)
			}
		})
	}
}

func TestStripLabels(t *testing.T) {
	tests := map[string]string{
		"Gospel Blessed are the poor":                "Blessed are the poor",
		"Responsorial Psalm: The Lord is my shepherd": "The Lord is my shepherd",
		"Holy Gospel - Gospel In the beginning":      "In the beginning",
		"Alleluia, alleluia":                         "Alleluia, alleluia",
		"Gospels tell the story":                     "Gospels tell the story",
		"Reading I Brothers and sisters":             "Brothers and sisters",
	}
	for input, want := range tests {
		if got := StripLabels(input); got != want {
			t.Errorf("StripLabels(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractGospelSomeText(t *testing.T) {
	e := New(logging.NewNop())
	got := e.Extract("<strong>Gospel</strong><br />Some text<strong>Next</strong>")
	if got.Gospel.Text() != "Some text" {
		t.Fatalf("Gospel text = %q, want %q", got.Gospel.Text(), "Some text")
	}
	if got.Degraded {
		t.Fatal("expected clean extraction")
	}
	if got.Gospel.Title != "Gospel" {
		t.Fatalf("Gospel title = %q", got.Gospel.Title)
	}
}

func TestExtractGospelNeverEmpty(t *testing.T) {
	e := New(logging.NewNop())
	for _, input := range []string{"", "<p></p><br/>", "<strong></strong>", "   "} {
		got := e.Extract(input)
		if strings.TrimSpace(got.Gospel.Text()) == "" {
			t.Fatalf("Gospel empty for %q", input)
		}
		if !got.Degraded {
			t.Fatalf("expected degraded flag for %q", input)
		}
		if got.FirstReading != nil || got.Psalm != nil {
			t.Fatalf("expected absent readings for %q", input)
		}
	}
}

func TestExtractEndToEnd(t *testing.T) {
	e := New(logging.NewNop())
	input := "Reading 1</strong><br />In the beginning God created the heavens and the earth.<strong>Gospel</strong><br />Blessed are the poor in spirit."
	got := e.Extract(input)
	if got.FirstReading == nil {
		t.Fatal("expected first reading")
	}
	if got.FirstReading.Text() != "In the beginning God created the heavens and the earth." {
		t.Fatalf("first reading = %q", got.FirstReading.Text())
	}
	if got.Gospel.Text() != "Blessed are the poor in spirit." {
		t.Fatalf("gospel = %q", got.Gospel.Text())
	}
	if got.SecondReading != nil || got.Alleluia != nil {
		t.Fatal("expected no second reading or alleluia")
	}
}

func TestExtractFullFeedDescription(t *testing.T) {
	e := New(logging.NewNop())
	input := `<strong>Reading I</strong><br/>Is 49:1-6<br/>Hear me, O coastlands, listen, O distant peoples.` +
		`<strong>Responsorial Psalm</strong><br/>Ps 71:1-2, 3-4a<br/>R. I will sing of your salvation.` +
		`<strong>Reading II</strong><br/>1 Cor 1:3<br/>Grace to you and peace from God our Father.` +
		`<strong>Verse before the Gospel</strong><br/>Alleluia, alleluia. Hail to you, our King.` +
		`<strong>Gospel</strong><br/>Jn 13:21-33, 36-38<br/>Reclining at table with his disciples, Jesus was deeply troubled.`
	got := e.Extract(input)

	if got.FirstReading == nil || !strings.HasPrefix(got.FirstReading.Text(), "Is 49:1-6 Hear me") {
		t.Fatalf("unexpected first reading %+v", got.FirstReading)
	}
	if got.FirstReading.Reference == nil || got.FirstReading.Reference.APIFormat() != "ISA.49.1-6" {
		t.Fatalf("expected parsed first reading reference, got %+v", got.FirstReading.Reference)
	}
	if got.Psalm == nil || got.Psalm.Reference == nil || got.Psalm.Reference.Book != "Psalms" {
		t.Fatalf("unexpected psalm %+v", got.Psalm)
	}
	if got.SecondReading == nil || !strings.Contains(got.SecondReading.Text(), "Grace to you") {
		t.Fatalf("unexpected second reading %+v", got.SecondReading)
	}
	if got.Alleluia == nil || !strings.HasPrefix(got.Alleluia.Text(), "Alleluia, alleluia") {
		t.Fatalf("unexpected alleluia %+v", got.Alleluia)
	}
	if got.Gospel.Reference == nil || got.Gospel.Reference.APIFormat() != "JHN.13.21-33" {
		t.Fatalf("unexpected gospel reference %+v", got.Gospel.Reference)
	}
	if len(got.All()) != 5 {
		t.Fatalf("expected five readings, got %d", len(got.All()))
	}
}

func TestExtractGospelFallsBackToAfterWord(t *testing.T) {
	e := New(logging.NewNop())
	got := e.Extract("<p>Today's gospel: Jesus went up the mountain and taught them.</p>")
	if got.Gospel.Text() != "Jesus went up the mountain and taught them." {
		t.Fatalf("gospel = %q", got.Gospel.Text())
	}
	if !got.Degraded {
		t.Fatal("expected loose gospel match to be marked degraded")
	}
}

func TestExtractGospelFallsBackToTruncatedDescription(t *testing.T) {
	e := New(logging.NewNop())
	long := "<p>" + strings.Repeat("Peace be with you. ", 30) + "</p>"
	got := e.Extract(long)
	if n := utf8.RuneCountInString(got.Gospel.Text()); n != 200 {
		t.Fatalf("expected 200 character gospel, got %d", n)
	}
	if !got.Degraded {
		t.Fatal("expected degraded result")
	}
}

func TestWithPoliciesOverridesTable(t *testing.T) {
	custom := DefaultPolicies()
	custom[KindFirstReading] = nil
	e := New(logging.NewNop(), WithPolicies(custom))
	got := e.Extract("<strong>Reading 1</strong><br/>Hidden text here<strong>Gospel</strong><br/>Shown text")
	if got.FirstReading != nil {
		t.Fatal("expected first reading disabled by custom policies")
	}
	if got.Gospel.Text() != "Shown text" {
		t.Fatalf("gospel = %q", got.Gospel.Text())
	}
}

func TestExtractShortBodiesAreReplaced(t *testing.T) {
	e := New(logging.NewNop())

	got := e.Extract("<strong>Gospel</strong><br />Amen.")
	if got.Gospel.Text() != FallbackGospelText {
		t.Fatalf("gospel = %q, want fallback text", got.Gospel.Text())
	}
	if !got.Degraded {
		t.Fatal("expected short gospel to be marked degraded")
	}

	got = e.Extract("<strong>Reading 1</strong><br/>Yes.<strong>Gospel</strong><br/>Blessed are the poor in spirit.")
	if got.FirstReading == nil {
		t.Fatal("expected placeholder first reading")
	}
	if got.FirstReading.Text() != placeholderText(KindFirstReading) {
		t.Fatalf("first reading = %q", got.FirstReading.Text())
	}
	if got.Gospel.Text() != "Blessed are the poor in spirit." {
		t.Fatalf("gospel = %q", got.Gospel.Text())
	}
	if !got.Degraded {
		t.Fatal("expected placeholder reading to mark the result degraded")
	}
}

func TestExtractGospelIgnoresAcclamationLabels(t *testing.T) {
	e := New(logging.NewNop())

	got := e.Extract("Verse before the Gospel</strong><br/>Alleluia, alleluia. Speak, Lord.<strong> Gospel</strong><br/>Jesus went up the mountain.")
	if got.Gospel.Text() != "Jesus went up the mountain." {
		t.Fatalf("gospel = %q", got.Gospel.Text())
	}

	got = e.Extract("Verse before the Gospel</strong><br/>Alleluia, alleluia. Speak, Lord, your servant is listening.")
	if !got.Degraded {
		t.Fatalf("acclamation accepted as a labelled gospel: %q", got.Gospel.Text())
	}
	if got.Alleluia == nil || !strings.Contains(got.Alleluia.Text(), "Speak, Lord") {
		t.Fatalf("alleluia = %+v", got.Alleluia)
	}
}

func TestPolicySkipTriesNextMatch(t *testing.T) {
	p := DefaultPolicies()[KindGospel][1]
	fragment, ok := p.Match("before the Gospel</strong>acclaim<strong>x Gospel</strong>body")
	if !ok || fragment != "body" {
		t.Fatalf("Match = %q, %v; want body", fragment, ok)
	}
	if _, ok := p.Match("Verse before the Gospel</strong>acclaim"); ok {
		t.Fatal("expected acclamation-only input to have no match")
	}
}
