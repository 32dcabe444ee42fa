package rank

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mbecher/paperfeed/internal/database"
	"github.com/mbecher/paperfeed/internal/llm"
)

const rankPrompt = `You are helping a researcher filter daily arXiv papers.
Rate each paper's relevance from 1-100, list matching keywords, and for
papers scoring 75 or higher write a one-sentence summary.

RESEARCHER'S FOCUS AREAS:
%s

RELEVANT KEYWORDS:
%s

SCORING RUBRIC:
90-100: Directly addresses my research, must read
70-89: Closely related, relevant methodology
50-69: Tangentially related, useful background
30-49: Same broad field but different focus
1-29: Unrelated to my research

PAPERS:
%s

Respond with ONLY valid JSON keyed by arXiv id. Include "summary" only
if score >= 75:
{"2501.01234": {"score": 85, "keywords": ["H0"], "summary": "..."}, ...}`

// summaryThreshold is the minimum LLM score that carries a summary.
const summaryThreshold = 75

// abstractLimit bounds how much of each abstract goes into a prompt.
const abstractLimit = 600

// DefaultPreFilter is the number of top keyword-ranked papers sent to
// the LLM when no size is configured.
const DefaultPreFilter = 100

// DefaultBatchSize is the number of papers per LLM prompt.
const DefaultBatchSize = 25

// Fingerprint hashes the keyword list and research description into a
// short token. Cached LLM scores are only valid while the fingerprint
// they were stored under matches the current one.
func Fingerprint(keywords []string, description string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(keywords, "\n")))
	h.Write([]byte{0})
	h.Write([]byte(description))
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// ScoreCache is the persistence the LLM ranker needs. *database.DB
// implements it.
type ScoreCache interface {
	GetLLMScore(arxivID, fingerprint string) (*database.LLMScore, error)
	PutLLMScore(score database.LLMScore) error
}

// LLMRanker refines a keyword ranking with LLM relevance judgments,
// caching them per paper so repeated runs with unchanged keywords and
// description never pay for the same paper twice.
type LLMRanker struct {
	cache    ScoreCache
	provider llm.Provider

	Keywords    []string
	Description string
	PreFilter   int
	BatchSize   int
	MaxTokens   int
}

// NewLLMRanker creates an LLM ranker over the given cache and provider.
func NewLLMRanker(cache ScoreCache, provider llm.Provider, keywords []string, description string) *LLMRanker {
	return &LLMRanker{
		cache:       cache,
		provider:    provider,
		Keywords:    keywords,
		Description: description,
		PreFilter:   DefaultPreFilter,
		BatchSize:   DefaultBatchSize,
		MaxTokens:   1024,
	}
}

// Result summarizes one LLM ranking pass.
type Result struct {
	Ranked   []Scored
	Hits     int
	Scored   int
	Fallback int
}

// Rank takes the keyword-scored batch (already sorted) and returns the
// merged ranking: every LLM-scored paper first, ordered by LLM score
// descending with keyword order as the stable tie-break, then the
// keyword-only tail (papers beyond the pre-filter and papers whose LLM
// result failed) in keyword order. LLM scores are absolute judgments
// and are used as returned, never re-normalized.
func (r *LLMRanker) Rank(ctx context.Context, kwScored []Scored) (*Result, error) {
	if r.provider == nil {
		return nil, fmt.Errorf("llm ranking requested but no provider is configured")
	}
	if len(kwScored) == 0 {
		return &Result{}, nil
	}

	preFilter := r.PreFilter
	if preFilter <= 0 {
		preFilter = DefaultPreFilter
	}
	candidates := kwScored
	var tail []Scored
	if len(kwScored) > preFilter {
		candidates = kwScored[:preFilter]
		tail = kwScored[preFilter:]
	}

	fingerprint := Fingerprint(r.Keywords, r.Description)

	// Partition candidates into cache hits and misses. A row stored
	// under a stale fingerprint is a miss.
	res := &Result{}
	var llmScored, fallback, misses []Scored
	for _, s := range candidates {
		cached, err := r.cache.GetLLMScore(s.Paper.ArxivID, fingerprint)
		if err != nil {
			log.Printf("Cache read failed for %s: %v", s.Paper.ArxivID, err)
		}
		if cached != nil {
			s.Score = float64(cached.Score)
			s.Matched = cached.Keywords
			s.Summary = cached.Summary
			s.LLMScored = true
			llmScored = append(llmScored, s)
			res.Hits++
			continue
		}
		misses = append(misses, s)
	}

	if len(misses) > 0 {
		log.Printf("Top %d candidates: %d cached, %d to score", len(candidates), res.Hits, len(misses))
	}

	// Score misses in prompt batches. A failed call or a missing or
	// malformed entry degrades the affected papers to their keyword
	// scores; it never aborts the run.
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	for start := 0; start < len(misses); start += batchSize {
		end := start + batchSize
		if end > len(misses) {
			end = len(misses)
		}
		batch := misses[start:end]

		results := r.scoreBatch(ctx, batch)
		for _, s := range batch {
			entry, ok := results[s.Paper.ArxivID]
			if !ok {
				res.Fallback++
				fallback = append(fallback, s)
				continue
			}
			s.Score = float64(entry.Score)
			s.Matched = entry.Keywords
			s.Summary = entry.Summary
			s.LLMScored = true
			llmScored = append(llmScored, s)
			res.Scored++

			if err := r.cache.PutLLMScore(database.LLMScore{
				ArxivID:     s.Paper.ArxivID,
				Fingerprint: fingerprint,
				Score:       entry.Score,
				Keywords:    entry.Keywords,
				Summary:     entry.Summary,
			}); err != nil {
				log.Printf("Cache write failed for %s: %v", s.Paper.ArxivID, err)
			}
		}
	}

	// Merge: LLM-scored papers first. llmScored is in keyword order,
	// so a stable sort keeps that order for ties.
	sort.SliceStable(llmScored, func(i, j int) bool {
		return llmScored[i].Score > llmScored[j].Score
	})
	merged := append(llmScored, fallback...)
	merged = append(merged, tail...)
	for i := range merged {
		merged[i].Rank = i + 1
	}
	res.Ranked = merged
	return res, nil
}

// scoreBatch sends one prompt covering the batch and returns whatever
// per-paper results parse cleanly, keyed by arXiv id.
func (r *LLMRanker) scoreBatch(ctx context.Context, batch []Scored) map[string]database.LLMScore {
	var papers strings.Builder
	for _, s := range batch {
		abstract := s.Paper.Abstract
		if len(abstract) > abstractLimit {
			abstract = abstract[:abstractLimit] + "..."
		}
		fmt.Fprintf(&papers, "\n[%s] %s\n%s\n", s.Paper.ArxivID, s.Paper.Title, abstract)
	}

	prompt := fmt.Sprintf(rankPrompt, r.Description, strings.Join(r.Keywords, ", "), papers.String())

	response, err := r.provider.Generate(ctx, prompt, r.MaxTokens)
	if err != nil {
		log.Printf("LLM scoring failed for batch of %d: %v", len(batch), err)
		return nil
	}

	parsed := llm.ParseJSONResponse(response)
	if parsed == nil {
		log.Printf("LLM response for batch of %d was not valid JSON", len(batch))
		return nil
	}

	results := make(map[string]database.LLMScore, len(batch))
	for id, raw := range parsed {
		entry, ok := parseEntry(raw)
		if !ok {
			log.Printf("Malformed LLM entry for %s, falling back to keyword score", id)
			continue
		}
		results[id] = entry
	}
	return results
}

// parseEntry validates one per-paper result. Anything that is not an
// object with a usable score is rejected so the paper falls back to
// its keyword score.
func parseEntry(raw any) (database.LLMScore, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return database.LLMScore{}, false
	}

	score, ok := asInt(obj["score"])
	if !ok {
		return database.LLMScore{}, false
	}
	if score < 1 {
		score = 1
	} else if score > 100 {
		score = 100
	}

	entry := database.LLMScore{Score: score}
	if kws, ok := obj["keywords"].([]any); ok {
		for _, v := range kws {
			if s, ok := v.(string); ok && s != "" {
				entry.Keywords = append(entry.Keywords, s)
			}
		}
	}
	if summary, ok := obj["summary"].(string); ok && score >= summaryThreshold {
		entry.Summary = strings.TrimSpace(summary)
	}
	return entry, true
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}
