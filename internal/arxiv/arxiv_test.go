package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query Results</title>
  <entry>
    <id>http://arxiv.org/abs/2501.01234v1</id>
    <title>A New Measurement of
      the Hubble Constant</title>
    <summary>We present a measurement of H0 using
      Type Ia supernovae.</summary>
    <published>%s</published>
    <author><name>A. Author</name></author>
    <author><name>B. Author</name></author>
    <category term="astro-ph.CO" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2501.05678v3</id>
    <title>Galaxy Formation in Dwarf Halos</title>
    <summary>Simulations of dwarf galaxies.</summary>
    <published>%s</published>
    <author><name>C. Author</name></author>
    <category term="astro-ph.GA" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2501.01234v2</id>
    <title>A New Measurement of the Hubble Constant</title>
    <summary>Duplicate of the first entry under a new version.</summary>
    <published>%s</published>
    <category term="astro-ph.CO" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1901.00001v1</id>
    <title>An Old Paper Outside the Window</title>
    <summary>Stale.</summary>
    <published>2019-01-01T00:00:00Z</published>
    <category term="astro-ph.CO" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
</feed>`

func serveFeed(t *testing.T, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	old := apiBase
	apiBase = srv.URL
	t.Cleanup(func() { apiBase = old })
}

func TestFetchRecent(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC3339)
	serveFeed(t, fmt.Sprintf(feedTemplate, now, now, now))

	papers, err := NewClient().FetchRecent(context.Background(), []string{"astro-ph.CO", "astro-ph.GA"}, 7, 100)
	if err != nil {
		t.Fatalf("FetchRecent failed: %v", err)
	}

	// Duplicate version and the 2019 entry are both filtered.
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}

	var hubble *Paper
	for i := range papers {
		if papers[i].ArxivID == "2501.01234" {
			hubble = &papers[i]
		}
	}
	if hubble == nil {
		t.Fatal("expected paper 2501.01234 in results")
	}
	if hubble.Title != "A New Measurement of the Hubble Constant" {
		t.Errorf("title not whitespace-normalized: %q", hubble.Title)
	}
	if hubble.Abstract != "We present a measurement of H0 using Type Ia supernovae." {
		t.Errorf("abstract not whitespace-normalized: %q", hubble.Abstract)
	}
	if len(hubble.Authors) != 2 {
		t.Errorf("expected 2 authors, got %v", hubble.Authors)
	}
	if len(hubble.Categories) != 1 || hubble.Categories[0] != "astro-ph.CO" {
		t.Errorf("expected category astro-ph.CO, got %v", hubble.Categories)
	}
	if hubble.URL() != "https://arxiv.org/abs/2501.01234" {
		t.Errorf("unexpected URL %q", hubble.URL())
	}
}

func TestFetchRecentNoCategories(t *testing.T) {
	if _, err := NewClient().FetchRecent(context.Background(), nil, 7, 100); err == nil {
		t.Error("expected error for empty category list")
	}
}

func TestExtractID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"https://arxiv.org/abs/astro-ph/0601123v2", "astro-ph/0601123"},
		{"http://example.com/nothing", ""},
	}
	for _, c := range cases {
		if got := ExtractID(c.in); got != c.want {
			t.Errorf("ExtractID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildCategoryQuery(t *testing.T) {
	got := buildCategoryQuery([]string{"astro-ph.CO", " astro-ph.GA ", ""})
	want := "cat:astro-ph.CO OR cat:astro-ph.GA"
	if got != want {
		t.Errorf("buildCategoryQuery = %q, want %q", got, want)
	}
}
