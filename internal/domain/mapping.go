package domain

import "time"

// CategoryDivisionMapping is one routing rule: tickets classified under
// NLPCategory are also shown to TargetDivision. Rules are unique per
// (category, division) pair and only active rows participate in routing.
type CategoryDivisionMapping struct {
	ID             int64
	NLPCategory    string
	TargetDivision Division
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
