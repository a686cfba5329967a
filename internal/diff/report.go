package diff

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a detected difference.
type Kind string

// The three kinds of difference.
const (
	KindAdded    Kind = "added"
	KindRemoved  Kind = "removed"
	KindModified Kind = "modified"
)

// Object types a diff item can refer to.
const (
	ObjectTable      = "table"
	ObjectColumn     = "column"
	ObjectConstraint = "constraint"
	ObjectIndex      = "index"
	ObjectEnum       = "enum"
)

// Item is a single detected schema difference. It carries pre-rendered
// SQL for both directions: GeneratedUpSQL moves the target toward the
// source, GeneratedDownSQL undoes it. Dangerous marks operations that can
// destroy data or break dependent objects.
type Item struct {
	ID               string `json:"id"`
	Kind             Kind   `json:"kind"`
	ObjectType       string `json:"object_type"`
	ObjectName       string `json:"object_name"`
	Details          string `json:"details"`
	GeneratedUpSQL   string `json:"generated_up_sql"`
	GeneratedDownSQL string `json:"generated_down_sql"`
	Dangerous        bool   `json:"dangerous"`
}

func newItem(kind Kind, objectType, objectName, details, upSQL, downSQL string, dangerous bool) Item {
	return Item{
		ID:               uuid.NewString(),
		Kind:             kind,
		ObjectType:       objectType,
		ObjectName:       objectName,
		Details:          details,
		GeneratedUpSQL:   upSQL,
		GeneratedDownSQL: downSQL,
		Dangerous:        dangerous,
	}
}

// Report is the complete result of one schema comparison. Item order is
// the emission order of the comparison and is significant: the renderer
// derives both script orderings from it. A Report is not mutated after
// rendering.
type Report struct {
	Items            []Item `json:"items"`
	SourceConnection string `json:"source_connection"`
	TargetConnection string `json:"target_connection"`
	GeneratedAt      string `json:"generated_at"`
}

// NewReport returns an empty report stamped with the current time.
func NewReport() *Report {
	return &Report{
		Items:       []Item{},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// HasDangerous reports whether any item in the report is dangerous.
func (r *Report) HasDangerous() bool {
	for i := range r.Items {
		if r.Items[i].Dangerous {
			return true
		}
	}
	return false
}
