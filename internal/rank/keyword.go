package rank

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mbecher/paperfeed/internal/arxiv"
)

// DefaultTitleWeight is the multiplier for keyword matches in titles
// relative to abstracts.
const DefaultTitleWeight = 3.0

// Scored is a paper annotated with a relevance score for display.
// Score is 0-100; in keyword mode the best paper in the batch is
// exactly 100. Matched lists the canonical keywords found in the
// paper. Summary is only set by the LLM path. LLMScored marks papers
// whose score came back from the LLM rather than the keyword scorer.
type Scored struct {
	Paper     arxiv.Paper
	Score     float64
	Rank      int
	Matched   []string
	Summary   string
	LLMScored bool

	raw float64
}

// matcher counts boundary-aware, case-insensitive occurrences of any
// variant of one keyword.
type matcher struct {
	canonical string
	re        *regexp.Regexp
}

func newMatcher(kw Keyword) matcher {
	alts := make([]string, 0, len(kw.Variants))
	for _, v := range kw.Variants {
		alts = append(alts, regexp.QuoteMeta(v))
	}
	// \b keeps "nova" from matching inside "supernova".
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
	return matcher{canonical: kw.Canonical, re: re}
}

func (m matcher) count(text string) int {
	return len(m.re.FindAllStringIndex(text, -1))
}

// ScoreKeywords ranks a paper batch against the expanded keyword list
// using IDF weights learned from the batch itself. Per keyword, title
// and abstract occurrences are scored separately as
// (1+count) * idf * fieldWeight, then summed. Raw scores are
// normalized so the best paper in the batch is exactly 100 (ties all
// get 100); papers with no matches score 0, and a batch where nothing
// matches stays all-zero. The result is sorted by score descending
// with fetch order as the stable tie-break. An empty keyword list
// yields all-zero scores, not an error.
func ScoreKeywords(papers []arxiv.Paper, keywords []Keyword, titleWeight float64) []Scored {
	if titleWeight <= 0 {
		titleWeight = DefaultTitleWeight
	}

	idf := TrainIDF(BuildCorpus(papers))

	matchers := make([]matcher, 0, len(keywords))
	for _, kw := range keywords {
		matchers = append(matchers, newMatcher(kw))
	}

	scored := make([]Scored, 0, len(papers))
	maxRaw := 0.0
	for _, paper := range papers {
		s := Scored{Paper: paper}
		for i, m := range matchers {
			titleCount := m.count(paper.Title)
			absCount := m.count(paper.Abstract)
			if titleCount == 0 && absCount == 0 {
				continue
			}
			weight := idf.PhraseWeight(keywords[i].Canonical)
			if titleCount > 0 {
				s.raw += (1 + float64(titleCount)) * weight * titleWeight
			}
			if absCount > 0 {
				s.raw += (1 + float64(absCount)) * weight
			}
			s.Matched = append(s.Matched, m.canonical)
		}
		if s.raw > maxRaw {
			maxRaw = s.raw
		}
		scored = append(scored, s)
	}

	if maxRaw > 0 {
		for i := range scored {
			scored[i].Score = scored[i].raw / maxRaw * 100
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}
