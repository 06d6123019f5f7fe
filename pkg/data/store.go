package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/qactl/qactl/pkg/score"
)

const (
	insertStudySQL = `INSERT INTO study (name, position) VALUES (?, ?)`

	insertItemSQL = `INSERT INTO item (id, category, section, domain, weight, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	insertScoreSQL = `INSERT INTO score (study, item, value) VALUES (?, ?, ?)`

	selectStudiesSQL = `SELECT name FROM study ORDER BY position`

	selectItemsSQL = `SELECT id, category, section, domain, weight
		FROM item
		ORDER BY position
	`

	selectScoresSQL = `SELECT study, item, value FROM score`
)

// ReplaceDataset stores the parsed table and weights, dropping any
// previously imported dataset. The dataset is read-only after import;
// a re-import is a whole new load.
func ReplaceDataset(db *sql.DB, t *score.Table, w score.Weights) error {
	if db == nil {
		return errDBNotInitialized
	}
	if t == nil {
		return errors.New("table is required")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, table := range []string{"score", "item", "study"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}

	for i, name := range t.Studies() {
		if _, err := tx.Exec(insertStudySQL, name, i); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting study %s: %w", name, err)
		}
	}

	for i, it := range t.Items() {
		wt, ok := w[it.ID]
		if !ok {
			rollbackTransaction(tx)
			return &score.MissingWeightError{Item: it.ID}
		}
		if _, err := tx.Exec(insertItemSQL, it.ID, string(it.Category), it.Section, it.Domain, wt, i); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting item %s: %w", it.ID, err)
		}
	}

	for _, study := range t.Studies() {
		for _, it := range t.Items() {
			v, ok := t.Score(study, it.ID)
			if !ok {
				continue
			}
			if _, err := tx.Exec(insertScoreSQL, study, it.ID, v); err != nil {
				rollbackTransaction(tx)
				return fmt.Errorf("error inserting score %s/%s: %w", study, it.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadDataset reconstructs the score table and weights in import order.
func LoadDataset(db *sql.DB) (*score.Table, score.Weights, error) {
	if db == nil {
		return nil, nil, errDBNotInitialized
	}

	t := score.NewTable()
	weights := make(score.Weights)

	rows, err := db.Query(selectStudiesSQL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query studies: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, nil, fmt.Errorf("failed to scan study row: %w", err)
		}
		if err := t.AddStudy(name); err != nil {
			return nil, nil, err
		}
	}

	itemRows, err := db.Query(selectItemsSQL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it score.Item
		var cat string
		var weight float64
		if err := itemRows.Scan(&it.ID, &cat, &it.Section, &it.Domain, &weight); err != nil {
			return nil, nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		it.Category = score.Category(cat)
		if err := t.AddItem(it); err != nil {
			return nil, nil, err
		}
		weights[it.ID] = weight
	}

	scoreRows, err := db.Query(selectScoresSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer scoreRows.Close()
	for scoreRows.Next() {
		var study, item string
		var v float64
		if err := scoreRows.Scan(&study, &item, &v); err != nil {
			return nil, nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		if err := t.SetScore(study, item, v); err != nil {
			return nil, nil, err
		}
	}

	return t, weights, nil
}
