package medal

import (
	"testing"

	"github.com/clanwarfare/snapshot/internal/domain/snapshot"
)

func TestParse_DeduplicatesByIDAndMergesLabels(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"Id": 7, "Tier": 2, "Name": "Warmonger", "Description": "Most kills", "AwardedTo": "Alpha"},
		{"Id": 9, "Tier": 1, "Name": "Scout", "AwardedTo": "Bravo"},
		{"Id": 7, "Tier": 2, "Name": "Warmonger", "Description": "Most kills", "AwardedTo": "Charlie"}
	]`)

	result, err := Parse(raw, snapshot.MedalTypeMember, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(result.Medals) != 2 {
		t.Fatalf("medal count mismatch: got=%d want=2", len(result.Medals))
	}
	first := result.Medals[0]
	if first.ID != 7 || len(first.Label) != 2 {
		t.Fatalf("duplicate not merged: id=%d labels=%v", first.ID, first.Label)
	}
	if first.Label[0] != "Alpha" || first.Label[1] != "Charlie" {
		t.Fatalf("label order mismatch: %v", first.Label)
	}
	if result.Medals[1].ID != 9 {
		t.Fatalf("first-occurrence order broken: got id=%d", result.Medals[1].ID)
	}
	if result.Totals[2] != 2 || result.Totals[1] != 1 {
		t.Fatalf("totals mismatch: %v", result.Totals)
	}
}

func TestParse_FiltersByMinimumTier(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"Id": 1, "Tier": 1, "Name": "Bronze", "AwardedTo": "Alpha"},
		{"Id": 2, "Tier": 2, "Name": "Silver", "AwardedTo": "Bravo"},
		{"Id": 3, "Tier": 3, "Name": "Gold", "AwardedTo": "Charlie"}
	]`)

	result, err := Parse(raw, snapshot.MedalTypeClan, 1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(result.Medals) != 2 {
		t.Fatalf("medal count mismatch: got=%d want=2", len(result.Medals))
	}
	for _, m := range result.Medals {
		if m.Tier <= 1 {
			t.Fatalf("tier %d leaked past minimum", m.Tier)
		}
	}
}

func TestParse_FieldSpellingFallbacks(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"MedalId": 11, "MedalTier": 3, "Name": "Champion", "AwardedTo": "Stormbringers &amp; Co"},
		{"UnlockId": 12, "Name": "Untiered"}
	]`)

	result, err := Parse(raw, snapshot.MedalTypeClan, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if result.Medals[0].ID != 11 || result.Medals[0].Tier != 3 {
		t.Fatalf("alternate spellings not honored: %+v", result.Medals[0])
	}
	if result.Medals[0].Label[0] != "Stormbringers & Co" {
		t.Fatalf("recipient not entity-decoded: %q", result.Medals[0].Label[0])
	}
	if result.Medals[1].ID != 12 || result.Medals[1].Tier != 1 {
		t.Fatalf("tier default not applied: %+v", result.Medals[1])
	}
}

func TestParse_EmptyAndNilInput(t *testing.T) {
	t.Parallel()

	result, err := Parse(nil, snapshot.MedalTypeMember, 0)
	if err != nil {
		t.Fatalf("parse nil: %v", err)
	}
	if len(result.Medals) != 0 {
		t.Fatalf("expected no medals, got %d", len(result.Medals))
	}

	if _, err := Parse([]byte(`{"not":"a list"}`), snapshot.MedalTypeMember, 0); err == nil {
		t.Fatal("malformed payload should error")
	}
}
