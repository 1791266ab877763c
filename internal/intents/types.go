// Package intents defines the intent domain model and the sources that
// supply it.
//
// An intent is a structured specification: a user goal, objectives,
// outcomes, constraints and typed relations to other intents. Intents are
// loaded either from markdown files on disk (FileStore) or from the remote
// intents API (see package cloud). Both sources validate at the boundary,
// so everything downstream works on typed, pre-validated values.
package intents

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by a Source when a workspace or intent does not exist.
var ErrNotFound = errors.New("not found")

// --- Status enum ---

// Status is the lifecycle state of an intent.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusValidated Status = "validated"
	StatusApproved  Status = "approved"
	StatusShipped   Status = "shipped"
	StatusVerified  Status = "verified"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusDraft,
	StatusValidated,
	StatusApproved,
	StatusShipped,
	StatusVerified,
}

// ParseStatus converts a raw string into a Status. Matching ignores case
// and surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid status %q: must be one of: draft, validated, approved, shipped, verified", s)
}

// Unstarted reports whether work on an intent in this status has not begun.
func (s Status) Unstarted() bool {
	return s == StatusDraft || s == StatusValidated
}

// --- Relation types ---

// RelationType names the kind of edge between two intents.
// Only DependsOn takes part in dependency analysis; other types are kept
// for display and orphan detection.
type RelationType string

const (
	DependsOn  RelationType = "depends_on"
	RelatesTo  RelationType = "relates_to"
	Blocks     RelationType = "blocks"
	Implements RelationType = "implements"
	Supersedes RelationType = "supersedes"
)

// --- Core data structures ---

// Relation is a typed, directed reference from one intent to another.
// Relations missing a target or a type are kept as delivered but take no
// part in analysis.
type Relation struct {
	TargetID string       `json:"targetId" yaml:"target"`
	Type     RelationType `json:"type" yaml:"type"`
}

// WellFormed reports whether the relation names both a target and a type.
func (r Relation) WellFormed() bool {
	return strings.TrimSpace(r.TargetID) != "" && strings.TrimSpace(string(r.Type)) != ""
}

// Intent is a single node of the intent graph.
type Intent struct {
	ID          string     `json:"id" validate:"required"`
	WorkspaceID string     `json:"workspaceId,omitempty"`
	Status      Status     `json:"status" validate:"required,oneof=draft validated approved shipped verified"`
	UserGoal    string     `json:"userGoal,omitempty"`
	Objectives  []string   `json:"objectives,omitempty"`
	Outcomes    []string   `json:"outcomes,omitempty"`
	Constraints []string   `json:"constraints,omitempty"`
	Relations   []Relation `json:"relations,omitempty"`
	Source      string     `json:"source,omitempty"`
	CreatedAt   string     `json:"createdAt,omitempty"`
	UpdatedAt   string     `json:"updatedAt,omitempty"`
}

// DisplayGoal returns the user goal, or "Untitled" when it is blank.
func (i Intent) DisplayGoal() string {
	if strings.TrimSpace(i.UserGoal) == "" {
		return "Untitled"
	}
	return i.UserGoal
}

// DependsOnIDs returns the targets of the intent's depends_on relations in
// declaration order.
func (i Intent) DependsOnIDs() []string {
	var ids []string
	for _, r := range i.Relations {
		if r.Type == DependsOn && r.WellFormed() {
			ids = append(ids, r.TargetID)
		}
	}
	return ids
}

// Workspace groups intents. In local mode a workspace is a directory.
type Workspace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IntentCount int    `json:"intentCount"`
}

// FilterByStatus returns the intents whose status equals s, preserving order.
// An empty status returns the input unchanged.
func FilterByStatus(list []Intent, s Status) []Intent {
	if s == "" {
		return list
	}
	out := make([]Intent, 0, len(list))
	for _, in := range list {
		if in.Status == s {
			out = append(out, in)
		}
	}
	return out
}
