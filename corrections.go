package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CorrectionRecord is one immutable human-correction audit entry. Records are
// append-only; nothing in this system retrains on them, they exist so stale
// cache entries get invalidated and reviewers keep a trail.
type CorrectionRecord struct {
	ID                     string    `json:"id"`
	ActivityText           string    `json:"activity_text"`
	Context                []string  `json:"context,omitempty"`
	WasFireProtection      bool      `json:"was_fire_protection"`
	ShouldBeFireProtection bool      `json:"should_be_fire_protection"`
	Note                   string    `json:"note,omitempty"`
	CorrectedAt            time.Time `json:"corrected_at"`
}

// CorrectionStore appends correction audit rows to sqlite.
type CorrectionStore struct {
	db *sql.DB
}

func NewCorrectionStore(db *sql.DB) *CorrectionStore {
	return &CorrectionStore{db: db}
}

func (s *CorrectionStore) Append(rec CorrectionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO classification_corrections
		 (id, activity_text, context, was_fire_protection, should_be_fire_protection, note, corrected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ActivityText, strings.Join(rec.Context, "|"),
		rec.WasFireProtection, rec.ShouldBeFireProtection, rec.Note, rec.CorrectedAt,
	)
	if err != nil {
		return fmt.Errorf("append correction: %w", err)
	}
	return nil
}

// Recent returns up to limit corrections, newest first.
func (s *CorrectionStore) Recent(limit int) ([]CorrectionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, activity_text, context, was_fire_protection, should_be_fire_protection, note, corrected_at
		 FROM classification_corrections ORDER BY corrected_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	defer rows.Close()

	var out []CorrectionRecord
	for rows.Next() {
		var rec CorrectionRecord
		var joined string
		if err := rows.Scan(&rec.ID, &rec.ActivityText, &joined,
			&rec.WasFireProtection, &rec.ShouldBeFireProtection, &rec.Note, &rec.CorrectedAt); err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		if joined != "" {
			rec.Context = strings.Split(joined, "|")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecordCorrection appends the audit record and invalidates every cache entry
// whose key contains the corrected activity's text, so the next
// classification request recomputes instead of serving the stale verdict.
func RecordCorrection(store *CorrectionStore, cache *ClassificationCache,
	activityText string, contextLines []string, wasFP, shouldBeFP bool, note string) (CorrectionRecord, error) {

	rec := CorrectionRecord{
		ID:                     uuid.NewString(),
		ActivityText:           activityText,
		Context:                contextLines,
		WasFireProtection:      wasFP,
		ShouldBeFireProtection: shouldBeFP,
		Note:                   note,
		CorrectedAt:            time.Now().UTC(),
	}
	if err := store.Append(rec); err != nil {
		return CorrectionRecord{}, err
	}

	invalidated := cache.InvalidateMatching(activityText)
	log.Printf("correction recorded id=%s was=%t should=%t invalidated=%d", rec.ID, wasFP, shouldBeFP, invalidated)
	return rec, nil
}
