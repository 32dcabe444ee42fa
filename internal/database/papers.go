package database

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// UpsertPaper inserts a paper or refreshes its metadata if the id is
// already known.
func (db *DB) UpsertPaper(p Paper) error {
	authors, err := json.Marshal(p.Authors)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`INSERT INTO papers (arxiv_id, title, abstract, authors, categories, published)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(arxiv_id) DO UPDATE SET
			title = excluded.title,
			abstract = excluded.abstract,
			authors = excluded.authors,
			categories = excluded.categories,
			published = excluded.published`,
		p.ArxivID, p.Title, p.Abstract, string(authors),
		strings.Join(p.Categories, " "), p.Published,
	)
	return err
}

// GetPaper returns one paper by arXiv id, or nil if unknown.
func (db *DB) GetPaper(arxivID string) (*Paper, error) {
	row := db.conn.QueryRow(
		`SELECT arxiv_id, title, abstract, authors, categories, published, fetched_at
		FROM papers WHERE arxiv_id = ?`, arxivID,
	)

	var p Paper
	var authors, categories string
	if err := row.Scan(&p.ArxivID, &p.Title, &p.Abstract, &authors, &categories, &p.Published, &p.FetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if authors != "" {
		// Undecodable author blobs just leave the list empty.
		json.Unmarshal([]byte(authors), &p.Authors)
	}
	if categories != "" {
		p.Categories = strings.Fields(categories)
	}
	return &p, nil
}

// CountPapers returns the number of stored papers.
func (db *DB) CountPapers() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM papers").Scan(&n)
	return n, err
}
