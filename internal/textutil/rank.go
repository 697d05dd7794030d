package textutil

import (
	"math"
	"sort"
)

// Match is a scored document index returned by Rank.
type Match struct {
	Index int
	Score float64
}

// Rank scores each document against query using TF-IDF weighted cosine
// similarity and returns matches above minScore, best first. Ties keep the
// original document order.
func Rank(query string, docs []string, minScore float64) []Match {
	q := countTerms(query)
	if q == nil || len(docs) == 0 {
		return nil
	}

	bags := make([]termCounts, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		bags[i] = countTerms(doc)
		for term := range bags[i] {
			df[term]++
		}
	}
	idf := func(term string) float64 {
		// +1 keeps terms present in every document from scoring zero.
		return math.Log(float64(len(docs)+1)/float64(1+df[term])) + 1
	}

	qv, qn := weigh(q, idf)
	matches := make([]Match, 0, len(docs))
	for i, bag := range bags {
		dv, dn := weigh(bag, idf)
		score := cosine(qv, qn, dv, dn)
		if score <= minScore {
			continue
		}
		matches = append(matches, Match{Index: i, Score: score})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches
}

func weigh(bag termCounts, idf func(string) float64) (termCounts, float64) {
	if len(bag) == 0 {
		return nil, 0
	}
	out := make(termCounts, len(bag))
	var sum float64
	for term, count := range bag {
		w := count * idf(term)
		out[term] = w
		sum += w * w
	}
	return out, math.Sqrt(sum)
}

func cosine(a termCounts, an float64, b termCounts, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}
	return dot / (an * bn)
}
