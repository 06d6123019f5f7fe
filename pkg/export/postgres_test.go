package export

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/qactl/qactl/pkg/score"
)

func TestPublish_ArgValidation(t *testing.T) {
	ctx := context.Background()

	err := Publish(ctx, "", score.ScopeMethods, testSummaries())
	assert.Error(t, err)

	err = Publish(ctx, "postgres://localhost/qa", score.ScopeMethods, nil)
	assert.Error(t, err)
}

func TestPublish_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("qactl"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("could not start postgres container (docker unavailable?): %v", err)
	}
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	summaries := testSummaries()
	require.NoError(t, Publish(ctx, dsn, score.ScopeTotal, summaries))

	// publishing again must upsert, not duplicate
	summaries[0].PctMissingAsPresent = 80
	require.NoError(t, Publish(ctx, dsn, score.ScopeTotal, summaries))

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM study_score_summary WHERE scope = 'total'").Scan(&count))
	assert.Equal(t, len(summaries), count)

	var pct float64
	require.NoError(t, db.QueryRow(
		"SELECT pct_missing_as_present FROM study_score_summary WHERE study = $1 AND scope = 'total'",
		"Alpha 2019").Scan(&pct))
	assert.InDelta(t, 80, pct, 1e-9)
}
