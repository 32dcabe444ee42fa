package database

import "database/sql"

// InsertDigest inserts or replaces the digest for a period.
func (db *DB) InsertDigest(periodID, rankMode, bodyMarkdown string, paperCount, llmCount int) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT OR REPLACE INTO digests
		(period_id, rank_mode, body_markdown, paper_count, llm_count)
		VALUES (?, ?, ?, ?, ?)`,
		periodID, rankMode, bodyMarkdown, paperCount, llmCount,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetDigest returns the digest for a period, or nil if none exists.
func (db *DB) GetDigest(periodID string) (*Digest, error) {
	row := db.conn.QueryRow(
		`SELECT id, period_id, rank_mode, body_markdown, paper_count, llm_count, generated_at
		FROM digests WHERE period_id = ?`, periodID,
	)

	var d Digest
	if err := row.Scan(&d.ID, &d.PeriodID, &d.RankMode, &d.BodyMarkdown,
		&d.PaperCount, &d.LLMCount, &d.GeneratedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// CountDigests returns the number of stored digests.
func (db *DB) CountDigests() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM digests`).Scan(&n)
	return n, err
}

// GetAllDigests returns all digests, newest period first.
func (db *DB) GetAllDigests() ([]Digest, error) {
	rows, err := db.conn.Query(
		`SELECT id, period_id, rank_mode, body_markdown, paper_count, llm_count, generated_at
		FROM digests ORDER BY period_id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []Digest
	for rows.Next() {
		var d Digest
		if err := rows.Scan(&d.ID, &d.PeriodID, &d.RankMode, &d.BodyMarkdown,
			&d.PaperCount, &d.LLMCount, &d.GeneratedAt); err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}
