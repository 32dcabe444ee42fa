package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateNewDB(t *testing.T) {
	db := openTestDB(t)

	version, err := getSchemaVersion(db.conn)
	if err != nil {
		t.Fatalf("getSchemaVersion: %v", err)
	}
	if version != latestVersion() {
		t.Errorf("expected version %d, got %d", latestVersion(), version)
	}
}

func TestUpsertPaper(t *testing.T) {
	db := openTestDB(t)

	p := Paper{
		ArxivID:    "2501.01234",
		Title:      "First Title",
		Abstract:   "An abstract.",
		Authors:    []string{"A. Author", "B. Author"},
		Categories: []string{"astro-ph.CO", "astro-ph.GA"},
		Published:  "2026-08-20",
	}
	if err := db.UpsertPaper(p); err != nil {
		t.Fatalf("UpsertPaper: %v", err)
	}

	// Re-fetching the same id updates metadata in place.
	p.Title = "Revised Title"
	if err := db.UpsertPaper(p); err != nil {
		t.Fatalf("UpsertPaper update: %v", err)
	}

	got, err := db.GetPaper("2501.01234")
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if got == nil {
		t.Fatal("expected paper, got nil")
	}
	if got.Title != "Revised Title" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
	if len(got.Authors) != 2 {
		t.Errorf("expected 2 authors, got %v", got.Authors)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "astro-ph.CO" {
		t.Errorf("unexpected categories %v", got.Categories)
	}

	n, _ := db.CountPapers()
	if n != 1 {
		t.Errorf("expected 1 paper, got %d", n)
	}
}

func TestGetPaperUnknown(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetPaper("9999.99999")
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown paper, got %+v", got)
	}
}

func TestLLMScoreRoundTrip(t *testing.T) {
	db := openTestDB(t)

	s := LLMScore{
		ArxivID:     "2501.01234",
		Fingerprint: "abc123def456",
		Score:       85,
		Keywords:    []string{"H0", "BAO"},
		Summary:     "Measures the Hubble constant with supernovae.",
	}
	if err := db.PutLLMScore(s); err != nil {
		t.Fatalf("PutLLMScore: %v", err)
	}

	got, err := db.GetLLMScore("2501.01234", "abc123def456")
	if err != nil {
		t.Fatalf("GetLLMScore: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.Score != 85 || len(got.Keywords) != 2 || got.Summary == "" {
		t.Errorf("unexpected entry %+v", got)
	}
}

func TestLLMScoreFingerprintMismatchIsMiss(t *testing.T) {
	db := openTestDB(t)
	db.PutLLMScore(LLMScore{ArxivID: "2501.01234", Fingerprint: "old-fingerprint", Score: 70})

	got, err := db.GetLLMScore("2501.01234", "new-fingerprint")
	if err != nil {
		t.Fatalf("GetLLMScore: %v", err)
	}
	if got != nil {
		t.Error("expected miss for mismatched fingerprint")
	}

	// The stale row stays until overwritten.
	n, _ := db.CountLLMScores()
	if n != 1 {
		t.Errorf("expected stale row to remain, count = %d", n)
	}

	// Overwriting under the new fingerprint replaces it.
	db.PutLLMScore(LLMScore{ArxivID: "2501.01234", Fingerprint: "new-fingerprint", Score: 90})
	got, _ = db.GetLLMScore("2501.01234", "new-fingerprint")
	if got == nil || got.Score != 90 {
		t.Errorf("expected overwritten entry with score 90, got %+v", got)
	}
	n, _ = db.CountLLMScores()
	if n != 1 {
		t.Errorf("expected single row after overwrite, count = %d", n)
	}
}

func TestLLMScoreCorruptKeywordsIsMiss(t *testing.T) {
	db := openTestDB(t)
	_, err := db.conn.Exec(
		`INSERT INTO llm_scores (arxiv_id, fingerprint, score, keywords, summary)
		VALUES (?, ?, ?, ?, ?)`,
		"2501.01234", "fp", 80, "{not json", "",
	)
	if err != nil {
		t.Fatalf("raw insert: %v", err)
	}

	got, err := db.GetLLMScore("2501.01234", "fp")
	if err != nil {
		t.Fatalf("GetLLMScore: %v", err)
	}
	if got != nil {
		t.Error("expected corrupt row to read as a miss")
	}
}

func TestClearLLMScores(t *testing.T) {
	db := openTestDB(t)
	db.PutLLMScore(LLMScore{ArxivID: "a", Fingerprint: "fp", Score: 10})
	db.PutLLMScore(LLMScore{ArxivID: "b", Fingerprint: "fp", Score: 20})

	n, err := db.ClearLLMScores()
	if err != nil {
		t.Fatalf("ClearLLMScores: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}

	count, _ := db.CountLLMScores()
	if count != 0 {
		t.Errorf("expected empty cache, got %d rows", count)
	}
}

func TestDigestRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.InsertDigest("2026-08-23", "llm", "# Digest\n", 42, 30); err != nil {
		t.Fatalf("InsertDigest: %v", err)
	}
	// Re-running the same period replaces the digest.
	if _, err := db.InsertDigest("2026-08-23", "keyword", "# Digest v2\n", 42, 0); err != nil {
		t.Fatalf("InsertDigest replace: %v", err)
	}
	db.InsertDigest("2026-08-22", "keyword", "# Older\n", 10, 0)

	got, err := db.GetDigest("2026-08-23")
	if err != nil {
		t.Fatalf("GetDigest: %v", err)
	}
	if got == nil || got.RankMode != "keyword" || got.BodyMarkdown != "# Digest v2\n" {
		t.Errorf("unexpected digest %+v", got)
	}

	all, err := db.GetAllDigests()
	if err != nil {
		t.Fatalf("GetAllDigests: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 digests, got %d", len(all))
	}
	if all[0].PeriodID != "2026-08-23" {
		t.Errorf("expected newest first, got %s", all[0].PeriodID)
	}
}

func TestFormatPeriodDisplay(t *testing.T) {
	if got := FormatPeriodDisplay("2026-02-06"); got != "Feb 06, 2026" {
		t.Errorf("FormatPeriodDisplay = %q", got)
	}
	if got := FormatPeriodDisplay("garbage"); got != "garbage" {
		t.Errorf("expected passthrough, got %q", got)
	}
}
