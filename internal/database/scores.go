package database

import (
	"database/sql"
	"encoding/json"
	"log"
)

// GetLLMScore returns the cached LLM score for a paper, or nil when
// there is no row, the stored fingerprint does not match the current
// one, or the keyword payload fails to decode. All three are misses;
// stale and corrupt rows stay in place until the next PutLLMScore for
// the same id overwrites them.
func (db *DB) GetLLMScore(arxivID, fingerprint string) (*LLMScore, error) {
	row := db.conn.QueryRow(
		`SELECT arxiv_id, fingerprint, score, keywords, summary, scored_at
		FROM llm_scores WHERE arxiv_id = ?`, arxivID,
	)

	var s LLMScore
	var keywords string
	if err := row.Scan(&s.ArxivID, &s.Fingerprint, &s.Score, &keywords, &s.Summary, &s.ScoredAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if s.Fingerprint != fingerprint {
		return nil, nil
	}

	if keywords != "" {
		if err := json.Unmarshal([]byte(keywords), &s.Keywords); err != nil {
			log.Printf("Corrupt cached keywords for %s, treating as miss: %v", arxivID, err)
			return nil, nil
		}
	}
	return &s, nil
}

// PutLLMScore inserts or overwrites the cached score for a paper.
func (db *DB) PutLLMScore(s LLMScore) error {
	keywords, err := json.Marshal(s.Keywords)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO llm_scores (arxiv_id, fingerprint, score, keywords, summary)
		VALUES (?, ?, ?, ?, ?)`,
		s.ArxivID, s.Fingerprint, s.Score, string(keywords), s.Summary,
	)
	return err
}

// ClearLLMScores removes every cached score and returns how many rows
// were dropped.
func (db *DB) ClearLLMScores() (int64, error) {
	result, err := db.conn.Exec("DELETE FROM llm_scores")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountLLMScores returns the number of cached scores.
func (db *DB) CountLLMScores() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM llm_scores").Scan(&n)
	return n, err
}
