package domain

import "fmt"

// Aggregation governs how per-event point deltas combine within a category.
type Aggregation string

const (
	AggregationSum   Aggregation = "sum"
	AggregationMax   Aggregation = "max"
	AggregationMin   Aggregation = "min"
	AggregationAvg   Aggregation = "avg"
	AggregationCount Aggregation = "count"
)

// ValidAggregation reports whether a is a recognized aggregation mode.
func ValidAggregation(a Aggregation) bool {
	switch a {
	case AggregationSum, AggregationMax, AggregationMin, AggregationAvg, AggregationCount:
		return true
	}
	return false
}

// PointCategory is a named bucket of points (xp, coins, karma, ...).
type PointCategory struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Aggregation Aggregation `json:"aggregation"`
}

// Validate checks the category invariants.
func (c PointCategory) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: category id is required", ErrInvalidInput)
	}
	if !ValidAggregation(c.Aggregation) {
		return fmt.Errorf("%w: unknown aggregation %q", ErrInvalidInput, c.Aggregation)
	}
	return nil
}

// Badge is a one-time achievement a user can hold.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Visible     bool   `json:"visible"`
}

// Trophy is a display achievement, structurally identical to a badge but
// managed as a separate entity set.
type Trophy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Visible     bool   `json:"visible"`
}

// Level is a point threshold within a category. Within one category the
// MinPoints values of its levels form a strictly increasing sequence; the
// user's current level is the one with the greatest MinPoints not exceeding
// the balance.
type Level struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Visible     bool   `json:"visible"`
	Category    string `json:"category"`
	MinPoints   int64  `json:"minPoints"`
}

// Validate checks the level invariants.
func (l Level) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: level id is required", ErrInvalidInput)
	}
	if l.Category == "" {
		return fmt.Errorf("%w: level category is required", ErrInvalidInput)
	}
	if l.MinPoints < 0 {
		return fmt.Errorf("%w: minPoints must not be negative", ErrInvalidInput)
	}
	return nil
}
