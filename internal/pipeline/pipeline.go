package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/mbecher/paperfeed/internal/arxiv"
	"github.com/mbecher/paperfeed/internal/config"
	"github.com/mbecher/paperfeed/internal/database"
	"github.com/mbecher/paperfeed/internal/digest"
	"github.com/mbecher/paperfeed/internal/llm"
	"github.com/mbecher/paperfeed/internal/rank"
)

// Fetcher is the paper source. *arxiv.Client implements it.
type Fetcher interface {
	FetchRecent(ctx context.Context, categories []string, daysBack, maxResults int) ([]arxiv.Paper, error)
}

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of one digest run.
type Result struct {
	PeriodID string
	Steps    []StepResult
	Digest   string
}

// Pipeline runs fetch, rank, and digest composition for one period.
type Pipeline struct {
	cfg      *config.Config
	db       *database.DB
	fetcher  Fetcher
	provider llm.Provider
}

// New creates a pipeline. The LLM provider is only resolved when the
// configured ranking mode needs one.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	var provider llm.Provider
	if cfg.Ranking.Mode == config.ModeLLM {
		provider = llm.CreateProvider(llm.Options{
			Provider:        cfg.LLM.Provider,
			AnthropicModel:  cfg.LLM.AnthropicModel,
			AnthropicKeyEnv: cfg.LLM.AnthropicKeyEnv,
			OpenAIModel:     cfg.LLM.OpenAIModel,
			OpenAIKeyEnv:    cfg.LLM.OpenAIKeyEnv,
			OllamaModel:     cfg.LLM.OllamaModel,
			OllamaURL:       cfg.LLM.OllamaURL,
		})
	}
	return &Pipeline{cfg: cfg, db: db, fetcher: arxiv.NewClient(), provider: provider}
}

// Run executes the full pipeline for one period. Per-paper failures
// degrade to keyword scores; the only aborting conditions are a failed
// fetch and llm mode without any configured provider.
func (p *Pipeline) Run(ctx context.Context, periodID string, daysBack int) *Result {
	r := &Result{PeriodID: periodID}

	if daysBack <= 0 {
		daysBack = p.cfg.Arxiv.Days
	}

	if p.cfg.Ranking.Mode == config.ModeLLM && p.provider == nil {
		r.Steps = append(r.Steps, StepResult{
			Name: "Rank",
			Err:  fmt.Errorf("llm ranking mode configured but no provider is available"),
		})
		return r
	}

	// Step 1: Fetch
	log.Println("Step 1/3: Fetching papers...")
	papers, err := p.fetcher.FetchRecent(ctx, p.cfg.Arxiv.Categories, daysBack, p.cfg.Arxiv.MaxResults)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Fetch", Err: err})
		return r
	}
	stored := p.storePapers(papers)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Fetched %d papers (last %d days), stored %d", len(papers), daysBack, stored),
	})

	// Step 2: Rank
	log.Println("Step 2/3: Ranking papers...")
	scored, step := p.rankPapers(ctx, papers)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 3: Compose digest
	log.Println("Step 3/3: Composing digest...")
	body := digest.Compose(scored, p.cfg.Arxiv.Categories, periodID, p.cfg.Ranking.Mode)
	llmCount := 0
	for _, s := range scored {
		if s.LLMScored {
			llmCount++
		}
	}
	if _, err := p.db.InsertDigest(periodID, p.cfg.Ranking.Mode, body, len(scored), llmCount); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Digest", Err: fmt.Errorf("storing digest: %w", err)})
		return r
	}
	r.Digest = body
	r.Steps = append(r.Steps, StepResult{
		Name:    "Digest",
		Summary: fmt.Sprintf("Digest stored for %s (%d papers, %d LLM-scored)", periodID, len(scored), llmCount),
	})

	return r
}

// storePapers upserts the fetched batch; storage failures are logged
// and skipped, never fatal.
func (p *Pipeline) storePapers(papers []arxiv.Paper) int {
	stored := 0
	for _, paper := range papers {
		published := ""
		if !paper.Published.IsZero() {
			published = paper.Published.Format("2006-01-02")
		}
		err := p.db.UpsertPaper(database.Paper{
			ArxivID:    paper.ArxivID,
			Title:      paper.Title,
			Abstract:   paper.Abstract,
			Authors:    paper.Authors,
			Categories: paper.Categories,
			Published:  published,
		})
		if err != nil {
			log.Printf("Failed to store paper %s: %v", paper.ArxivID, err)
			continue
		}
		stored++
	}
	return stored
}

func (p *Pipeline) rankPapers(ctx context.Context, papers []arxiv.Paper) ([]rank.Scored, StepResult) {
	keywords := p.cfg.Keywords()
	kwScored := rank.ScoreKeywords(papers, rank.ExpandKeywords(keywords), p.cfg.Ranking.TitleWeight)

	if p.cfg.Ranking.Mode != config.ModeLLM {
		return kwScored, StepResult{
			Name:    "Rank",
			Summary: fmt.Sprintf("Keyword-ranked %d papers against %d keywords", len(kwScored), len(keywords)),
		}
	}

	ranker := rank.NewLLMRanker(p.db, p.provider, keywords, p.cfg.Profile.ResearchDescription)
	if p.cfg.Ranking.TopN > 0 {
		ranker.PreFilter = p.cfg.Ranking.TopN
	}
	if p.cfg.Ranking.BatchSize > 0 {
		ranker.BatchSize = p.cfg.Ranking.BatchSize
	}
	if p.cfg.LLM.MaxTokens > 0 {
		ranker.MaxTokens = p.cfg.LLM.MaxTokens
	}

	res, err := ranker.Rank(ctx, kwScored)
	if err != nil {
		return nil, StepResult{Name: "Rank", Err: err}
	}
	return res.Ranked, StepResult{
		Name: "Rank",
		Summary: fmt.Sprintf("LLM-ranked %d papers (%d cached, %d scored, %d keyword fallback)",
			len(res.Ranked), res.Hits, res.Scored, res.Fallback),
	}
}
