package catalog

import (
	"testing"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(c.Traits()) == 0 {
		t.Error("Expected catalog to contain traits")
	}
	if len(c.Tasks()) == 0 {
		t.Error("Expected catalog to contain tasks")
	}
	if len(c.Milestones()) != 5 {
		t.Errorf("Expected 5 milestones, got %d", len(c.Milestones()))
	}
	if len(c.UltraRares()) == 0 {
		t.Error("Expected catalog to contain ultra-rare entries")
	}
}

func TestMilestonesAreOrderedAndNonOverlapping(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	prevIndex := -1
	prevEnd := 0
	for _, m := range c.Milestones() {
		if m.Index <= prevIndex {
			t.Errorf("Milestone indices not strictly ascending: %d after %d", m.Index, prevIndex)
		}
		if m.WindowStartDays < prevEnd {
			t.Errorf("Milestone %d window [%d,%d) overlaps previous end %d",
				m.Index, m.WindowStartDays, m.WindowEndDays, prevEnd)
		}
		prevIndex = m.Index
		prevEnd = m.WindowEndDays
	}
}

func TestConflictsAreSymmetric(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	for _, trait := range c.Traits() {
		for _, other := range trait.ConflictsWith {
			if !c.Conflicts(other, trait.ID) {
				t.Errorf("Conflict %s -> %s is not symmetric", trait.ID, other)
			}
		}
	}
}

func TestTaskEligibleAt(t *testing.T) {
	task := TaskDefinition{ID: "hoof_handling", MinAgeDays: 7, MaxAgeDays: 21}

	tests := []struct {
		name    string
		ageDays int
		want    bool
	}{
		{"below window", 3, false},
		{"window start is inclusive", 7, true},
		{"inside window", 14, true},
		{"window end is exclusive", 21, false},
		{"past window", 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := task.EligibleAt(tt.ageDays); got != tt.want {
				t.Errorf("EligibleAt(%d) = %v, want %v", tt.ageDays, got, tt.want)
			}
		})
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "duplicate trait id",
			doc: `{"traits":[
				{"id":"calm","name":"Calm","category":"genetic","rarity":"common","polarity":"positive"},
				{"id":"calm","name":"Calm","category":"genetic","rarity":"common","polarity":"positive"}]}`,
		},
		{
			name: "unknown rarity",
			doc:  `{"traits":[{"id":"calm","name":"Calm","category":"genetic","rarity":"legendary","polarity":"positive"}]}`,
		},
		{
			name: "asymmetric conflict",
			doc: `{"traits":[
				{"id":"calm","name":"Calm","category":"genetic","rarity":"common","polarity":"positive","conflicts_with":["nervous"]},
				{"id":"nervous","name":"Nervous","category":"epigenetic","rarity":"common","polarity":"negative"}]}`,
		},
		{
			name: "inverted task window",
			doc:  `{"tasks":[{"id":"trust_building","name":"Trust Building","min_age_days":10,"max_age_days":5}]}`,
		},
		{
			name: "overlapping milestone windows",
			doc: `{"milestones":[
				{"index":0,"name":"First","window_start_days":30,"window_end_days":60},
				{"index":1,"name":"Second","window_start_days":40,"window_end_days":100}]}`,
		},
		{
			name: "milestone window starts inside previous window",
			doc: `{"milestones":[
				{"index":0,"name":"First","window_start_days":0,"window_end_days":7},
				{"index":1,"name":"Second","window_start_days":6,"window_end_days":14}]}`,
		},
		{
			name: "milestone requires unknown task",
			doc:  `{"milestones":[{"index":0,"name":"Imprinting","window_start_days":0,"window_end_days":7,"required_task_counts":{"missing_task":1}}]}`,
		},
		{
			name: "ultra-rare references unknown trait",
			doc:  `{"ultra_rares":[{"trait_id":"ghost","base_probability":10}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("Parse() accepted an invalid document")
			}
		})
	}
}
