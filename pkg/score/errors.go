package score

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStudySet is returned when the table has no studies to score.
	ErrEmptyStudySet = errors.New("score table has no studies")

	// ErrEmptyItemSet is returned when the table has no items in scope,
	// or when the items in scope carry no scoreable weight.
	ErrEmptyItemSet = errors.New("score table has no items in scope")
)

// InvalidScoreError reports a cell value outside the {0, 0.5, 1} domain.
type InvalidScoreError struct {
	Study string
	Item  string
	Value float64
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid score %v for study %q item %q (allowed: 0, 0.5, 1, or missing)", e.Value, e.Study, e.Item)
}

// MissingWeightError reports an item with no importance weight entry.
type MissingWeightError struct {
	Item string
}

func (e *MissingWeightError) Error() string {
	return fmt.Sprintf("no importance weight for item %q", e.Item)
}

// InvalidWeightError reports a negative or non-finite item weight.
type InvalidWeightError struct {
	Item  string
	Value float64
}

func (e *InvalidWeightError) Error() string {
	return fmt.Sprintf("invalid importance weight %v for item %q (must be a non-negative number)", e.Value, e.Item)
}

// AllMissingError reports a study whose every in-scope item is missing,
// which leaves the missing-adjusted percentage with a zero denominator.
type AllMissingError struct {
	Study string
}

func (e *AllMissingError) Error() string {
	return fmt.Sprintf("study %q has no scored items in scope: missing-adjusted percentage is undefined", e.Study)
}
