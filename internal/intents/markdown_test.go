package intents

import (
	"strings"
	"testing"
)

func TestParseIntent_FrontmatterAndSections(t *testing.T) {
	src := `---
id: checkout-flow
status: approved
userGoal: Let customers pay with saved cards
objectives:
  - Keep PCI scope small
relations:
  - target: payment-api
    type: depends_on
  - target: design-system
    type: relates_to
---
# Checkout

Some prose that is ignored.

## Objectives
- Reuse stored card tokens
- Support ` + "`3DS`" + ` challenges
  - nested detail is ignored

## Outcomes
- Conversion up 5%

## Constraints
1. No new vendors

## Notes
- not collected
`
	in, err := ParseIntent("fallback", []byte(src))
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}

	if in.ID != "checkout-flow" {
		t.Errorf("ID = %q, want checkout-flow", in.ID)
	}
	if in.Status != StatusApproved {
		t.Errorf("Status = %q, want approved", in.Status)
	}
	if in.UserGoal != "Let customers pay with saved cards" {
		t.Errorf("UserGoal = %q", in.UserGoal)
	}

	wantObjectives := []string{"Keep PCI scope small", "Reuse stored card tokens", "Support 3DS challenges"}
	if strings.Join(in.Objectives, "|") != strings.Join(wantObjectives, "|") {
		t.Errorf("Objectives = %q, want %q", in.Objectives, wantObjectives)
	}
	if len(in.Outcomes) != 1 || in.Outcomes[0] != "Conversion up 5%" {
		t.Errorf("Outcomes = %q", in.Outcomes)
	}
	if len(in.Constraints) != 1 || in.Constraints[0] != "No new vendors" {
		t.Errorf("Constraints = %q", in.Constraints)
	}

	if len(in.Relations) != 2 {
		t.Fatalf("Relations = %d, want 2", len(in.Relations))
	}
	if in.Relations[0].TargetID != "payment-api" || in.Relations[0].Type != DependsOn {
		t.Errorf("Relations[0] = %+v", in.Relations[0])
	}
	if in.Relations[1].Type != RelatesTo {
		t.Errorf("Relations[1].Type = %q, want relates_to", in.Relations[1].Type)
	}
}

func TestParseIntent_Defaults(t *testing.T) {
	in, err := ParseIntent("from-filename", []byte("---\n---\n"))
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if in.ID != "from-filename" {
		t.Errorf("ID = %q, want from-filename", in.ID)
	}
	if in.Status != StatusDraft {
		t.Errorf("Status = %q, want draft", in.Status)
	}
	if in.DisplayGoal() != "Untitled" {
		t.Errorf("DisplayGoal = %q, want Untitled", in.DisplayGoal())
	}
}

func TestParseIntent_TitleFallsBackToHeading(t *testing.T) {
	in, err := ParseIntent("x", []byte("# Ship the importer\n\nBody.\n"))
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if in.UserGoal != "Ship the importer" {
		t.Errorf("UserGoal = %q, want heading text", in.UserGoal)
	}
}

func TestParseIntent_InvalidStatus(t *testing.T) {
	_, err := ParseIntent("x", []byte("---\nstatus: done\n---\n"))
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !strings.Contains(err.Error(), "invalid status") {
		t.Errorf("error = %v, want invalid status", err)
	}
}

func TestParseIntent_BadYAML(t *testing.T) {
	_, err := ParseIntent("x", []byte("---\nid: [unclosed\n---\n"))
	if err == nil {
		t.Fatal("expected YAML error")
	}
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFront string
		wantBody  string
		wantErr   bool
	}{
		{"no frontmatter", "# Title\n", "", "# Title\n", false},
		{"frontmatter and body", "---\nid: a\n---\nbody\n", "id: a\n", "body\n", false},
		{"frontmatter only", "---\nid: a\n---", "id: a\n", "", false},
		{"leading blank lines", "\n\n---\nid: a\n---\n", "id: a\n", "", false},
		{"unterminated", "---\nid: a\n", "", "", true},
		{"dashes with text are not a fence", "---title\n", "", "---title\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front, body, err := splitFrontmatter([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if string(front) != tt.wantFront {
				t.Errorf("front = %q, want %q", front, tt.wantFront)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"draft", StatusDraft, false},
		{" Shipped ", StatusShipped, false},
		{"VERIFIED", StatusVerified, false},
		{"", "", true},
		{"done", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStatus_Unstarted(t *testing.T) {
	for _, s := range Statuses {
		want := s == StatusDraft || s == StatusValidated
		if s.Unstarted() != want {
			t.Errorf("%s.Unstarted() = %v, want %v", s, s.Unstarted(), want)
		}
	}
}

func TestValidate(t *testing.T) {
	ok := &Intent{ID: "a", Status: StatusDraft}
	if err := Validate(ok); err != nil {
		t.Errorf("valid intent rejected: %v", err)
	}

	missingID := &Intent{Status: StatusDraft}
	if err := Validate(missingID); err == nil || !strings.Contains(err.Error(), "ID is required") {
		t.Errorf("missing id: err = %v", err)
	}

	badStatus := &Intent{ID: "a", Status: "done"}
	if err := Validate(badStatus); err == nil || !strings.Contains(err.Error(), "Status must be one of") {
		t.Errorf("bad status: err = %v", err)
	}

	looseRelation := &Intent{ID: "a", Status: StatusDraft, Relations: []Relation{{Type: DependsOn}, {TargetID: "b"}}}
	if err := Validate(looseRelation); err != nil {
		t.Errorf("malformed relations must not fail validation: %v", err)
	}
}

func TestRelation_WellFormed(t *testing.T) {
	tests := []struct {
		rel  Relation
		want bool
	}{
		{Relation{TargetID: "b", Type: DependsOn}, true},
		{Relation{TargetID: "b", Type: Supersedes}, true},
		{Relation{TargetID: "b"}, false},
		{Relation{Type: Blocks}, false},
		{Relation{TargetID: "  ", Type: Implements}, false},
	}
	for _, tt := range tests {
		if got := tt.rel.WellFormed(); got != tt.want {
			t.Errorf("%+v.WellFormed() = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestDependsOnIDs(t *testing.T) {
	in := Intent{Relations: []Relation{
		{TargetID: "b", Type: DependsOn},
		{TargetID: "c", Type: RelatesTo},
		{TargetID: "d", Type: DependsOn},
	}}
	got := in.DependsOnIDs()
	if strings.Join(got, ",") != "b,d" {
		t.Errorf("DependsOnIDs = %v, want [b d]", got)
	}
}

func TestFilterByStatus(t *testing.T) {
	list := []Intent{
		{ID: "a", Status: StatusDraft},
		{ID: "b", Status: StatusShipped},
		{ID: "c", Status: StatusDraft},
	}
	if got := FilterByStatus(list, ""); len(got) != 3 {
		t.Errorf("empty filter returned %d, want 3", len(got))
	}
	got := FilterByStatus(list, StatusDraft)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("FilterByStatus(draft) = %+v", got)
	}
}
