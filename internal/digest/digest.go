package digest

import (
	"fmt"
	"strings"

	"github.com/mbecher/paperfeed/internal/database"
	"github.com/mbecher/paperfeed/internal/rank"
)

const otherCategory = "Other"

// Compose renders the ranked batch as a markdown digest grouped by
// category: each paper goes under the first configured category it
// carries, leftovers under "Other". Within a group papers keep their
// overall ranking order. Pure formatting; no mutation of the input.
func Compose(scored []rank.Scored, categories []string, periodID, mode string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# arXiv digest — %s\n\n", database.FormatPeriodDisplay(periodID))
	fmt.Fprintf(&b, "%d papers, ranked by %s\n", len(scored), modeLabel(mode))

	for _, cat := range append(append([]string{}, categories...), otherCategory) {
		group := groupFor(scored, categories, cat)
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n\n", cat)
		for _, s := range group {
			writeEntry(&b, s)
		}
	}

	return b.String()
}

func writeEntry(b *strings.Builder, s rank.Scored) {
	fmt.Fprintf(b, "%d. **[%s](%s)** — %.0f%%\n", s.Rank, s.Paper.Title, s.Paper.URL(), s.Score)

	var details []string
	if len(s.Paper.Authors) > 0 {
		details = append(details, formatAuthors(s.Paper.Authors))
	}
	details = append(details, s.Paper.ArxivID)
	if !s.Paper.Published.IsZero() {
		details = append(details, s.Paper.Published.Format("2006-01-02"))
	}
	fmt.Fprintf(b, "   %s\n", strings.Join(details, " | "))

	if len(s.Matched) > 0 {
		fmt.Fprintf(b, "   Keywords: %s\n", strings.Join(s.Matched, ", "))
	}
	if s.Summary != "" {
		fmt.Fprintf(b, "   > %s\n", s.Summary)
	}
	fmt.Fprintln(b)
}

// groupFor returns the papers whose primary category is cat, in their
// existing order. A paper's primary category is the first configured
// category it carries; papers matching none fall under "Other".
func groupFor(scored []rank.Scored, categories []string, cat string) []rank.Scored {
	var group []rank.Scored
	for _, s := range scored {
		if primaryCategory(s.Paper.Categories, categories) == cat {
			group = append(group, s)
		}
	}
	return group
}

func primaryCategory(paperCats, configured []string) string {
	for _, c := range configured {
		for _, pc := range paperCats {
			if pc == c {
				return c
			}
		}
	}
	return otherCategory
}

func formatAuthors(authors []string) string {
	if len(authors) > 3 {
		return strings.Join(authors[:3], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

func modeLabel(mode string) string {
	if mode == "llm" {
		return "LLM relevance"
	}
	return "keyword match"
}
