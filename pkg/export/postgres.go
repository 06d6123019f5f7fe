package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/qactl/qactl/pkg/score"
)

const (
	createSummaryTableSQL = `CREATE TABLE IF NOT EXISTS study_score_summary (
			study TEXT NOT NULL,
			scope TEXT NOT NULL,
			score_missing_as_present DOUBLE PRECISION NOT NULL,
			score_missing_as_absent DOUBLE PRECISION NOT NULL,
			max_score DOUBLE PRECISION NOT NULL,
			max_score_excluding_missing DOUBLE PRECISION NOT NULL,
			pct_missing_as_present DOUBLE PRECISION NOT NULL,
			pct_missing_excluded DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (study, scope)
		)
	`

	upsertSummarySQL = `INSERT INTO study_score_summary (
			study, scope,
			score_missing_as_present, score_missing_as_absent,
			max_score, max_score_excluding_missing,
			pct_missing_as_present, pct_missing_excluded, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (study, scope) DO UPDATE SET
			score_missing_as_present = EXCLUDED.score_missing_as_present,
			score_missing_as_absent = EXCLUDED.score_missing_as_absent,
			max_score = EXCLUDED.max_score,
			max_score_excluding_missing = EXCLUDED.max_score_excluding_missing,
			pct_missing_as_present = EXCLUDED.pct_missing_as_present,
			pct_missing_excluded = EXCLUDED.pct_missing_excluded,
			updated_at = now()
	`
)

// Publish upserts one scope's summaries into the shared Postgres results
// store, creating the results table on first use.
func Publish(ctx context.Context, dsn string, scope score.Scope, summaries []score.Summary) error {
	if dsn == "" {
		return errors.New("postgres DSN required")
	}
	if len(summaries) == 0 {
		return errors.New("no summaries to publish")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("opening postgres connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, createSummaryTableSQL); err != nil {
		return fmt.Errorf("creating results table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, s := range summaries {
		if _, err := tx.ExecContext(ctx, upsertSummarySQL,
			s.Study, string(scope),
			s.ScoreMissingAsPresent, s.ScoreMissingAsAbsent,
			s.MaxScore, s.MaxScoreExcludingMissing,
			s.PctMissingAsPresent, s.PctMissingExcluded,
		); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("failed to rollback transaction", "error", rbErr)
			}
			return fmt.Errorf("error publishing summary for %s: %w", s.Study, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug("published summaries", "scope", scope, "studies", len(summaries))
	return nil
}
