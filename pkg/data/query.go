package data

import (
	"database/sql"
	"errors"
	"fmt"
)

const (
	queryStudiesSQL = `SELECT
			s.name,
			COUNT(sc.value) AS scored,
			(SELECT COUNT(*) FROM item) - COUNT(sc.value) AS missing
		FROM study s
		LEFT JOIN score sc ON s.name = sc.study
		GROUP BY s.name, s.position
		ORDER BY s.position
	`

	queryItemsSQL = `SELECT id, category, section, domain, weight
		FROM item
		ORDER BY position
	`

	queryStudyExistsSQL = `SELECT COUNT(*) FROM study WHERE name = ?`

	queryStudyScoresSQL = `SELECT i.id, sc.value
		FROM item i
		LEFT JOIN score sc ON i.id = sc.item AND sc.study = ?
		ORDER BY i.position
	`
)

type StudyListItem struct {
	Name    string `json:"name" yaml:"name"`
	Scored  int    `json:"scored" yaml:"scored"`
	Missing int    `json:"missing" yaml:"missing"`
}

type ItemListItem struct {
	ID       string  `json:"id" yaml:"id"`
	Category string  `json:"category" yaml:"category"`
	Section  string  `json:"section,omitempty" yaml:"section,omitempty"`
	Domain   string  `json:"domain,omitempty" yaml:"domain,omitempty"`
	Weight   float64 `json:"weight" yaml:"weight"`
}

// StudyScore is one item's value for a study; Value is nil when missing.
type StudyScore struct {
	Item  string   `json:"item" yaml:"item"`
	Value *float64 `json:"value" yaml:"value"`
}

func GetStudies(db *sql.DB) ([]*StudyListItem, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(queryStudiesSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query studies: %w", err)
	}
	defer rows.Close()

	list := make([]*StudyListItem, 0)
	for rows.Next() {
		s := &StudyListItem{}
		if err := rows.Scan(&s.Name, &s.Scored, &s.Missing); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		list = append(list, s)
	}
	return list, nil
}

func GetItems(db *sql.DB) ([]*ItemListItem, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(queryItemsSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	list := make([]*ItemListItem, 0)
	for rows.Next() {
		i := &ItemListItem{}
		if err := rows.Scan(&i.ID, &i.Category, &i.Section, &i.Domain, &i.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		list = append(list, i)
	}
	return list, nil
}

// GetStudyScores returns the per-item values for one study in item order,
// or nil when the study is not in the dataset.
func GetStudyScores(db *sql.DB, study string) ([]*StudyScore, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var count int
	if err := db.QueryRow(queryStudyExistsSQL, study).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check study %s: %w", study, err)
	}
	if count == 0 {
		return nil, nil
	}

	rows, err := db.Query(queryStudyScoresSQL, study)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query scores for %s: %w", study, err)
	}
	defer rows.Close()

	list := make([]*StudyScore, 0)
	for rows.Next() {
		s := &StudyScore{}
		if err := rows.Scan(&s.Item, &s.Value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		list = append(list, s)
	}
	return list, nil
}
