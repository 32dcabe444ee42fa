package rank

import (
	"math"
	"regexp"
	"strings"

	"github.com/mbecher/paperfeed/internal/arxiv"
)

var tokenSplit = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// BuildCorpus returns one scoring text per paper: the title and
// abstract concatenated and whitespace-normalized. Paper order is
// preserved; an empty batch yields an empty corpus.
func BuildCorpus(papers []arxiv.Paper) []string {
	docs := make([]string, 0, len(papers))
	for _, p := range papers {
		docs = append(docs, strings.Join(strings.Fields(p.Title+" "+p.Abstract), " "))
	}
	return docs
}

// IDF holds per-token document frequencies learned from a corpus.
// Rarer tokens receive higher weight.
type IDF struct {
	docs int
	df   map[string]int
}

// TrainIDF counts, for every distinct token, the number of corpus
// documents containing it. Deterministic for a given corpus.
func TrainIDF(corpus []string) *IDF {
	idf := &IDF{docs: len(corpus), df: make(map[string]int)}
	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, tok := range tokenize(doc) {
			if !seen[tok] {
				seen[tok] = true
				idf.df[tok]++
			}
		}
	}
	return idf
}

// Weight returns the inverse-document-frequency weight for a single
// token: log(N/(1+df)) + 1. Tokens outside the learned vocabulary and
// empty corpora get a neutral 1.0.
func (w *IDF) Weight(token string) float64 {
	if w.docs == 0 {
		return 1.0
	}
	df, ok := w.df[strings.ToLower(token)]
	if !ok {
		return 1.0
	}
	return math.Log(float64(w.docs)/float64(1+df)) + 1
}

// PhraseWeight returns the weight for a keyword phrase: the maximum of
// its token weights, so the rarest token carries the phrase.
func (w *IDF) PhraseWeight(phrase string) float64 {
	weight := 1.0
	for _, tok := range tokenize(phrase) {
		if tw := w.Weight(tok); tw > weight {
			weight = tw
		}
	}
	return weight
}

// tokenize lowercases text and splits it on non-alphanumeric runs.
func tokenize(text string) []string {
	var tokens []string
	for _, tok := range tokenSplit.Split(strings.ToLower(text), -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
