package warfare

import (
	"testing"

	"github.com/clanwarfare/snapshot/internal/domain/snapshot"
)

func TestParseEventsTenseOverride(t *testing.T) {
	t.Parallel()

	// One declared-current event that already ended, one declared-future
	// event that already started, one genuinely future event.
	raw := []byte(`[
		{"eventId": 1, "name": "Ended", "eventTense": "current",
		 "startTime": "2026-01-01T00:00:00", "scoringEndTime": "2026-01-08T00:00:00"},
		{"eventId": 2, "name": "Started", "eventTense": "future",
		 "startTime": "2026-02-01T00:00:00", "scoringEndTime": "2026-02-08T00:00:00"},
		{"eventId": 3, "name": "Upcoming", "eventTense": "future",
		 "startTime": "2026-03-01T00:00:00", "scoringEndTime": "2026-03-08T00:00:00"}
	]`)

	result, err := ParseEvents(raw, "2026-02-02T00:00:00Z")
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}
	if len(result.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(result.Events))
	}

	ended := result.Events[0]
	if !ended.IsPast || ended.IsCurrent || ended.IsFuture {
		t.Fatalf("ended event not reclassified past: %+v", ended)
	}
	if ended.Path != "/events/1/" {
		t.Fatalf("ended event path = %q", ended.Path)
	}

	started := result.Events[1]
	if !started.IsCurrent || started.IsPast || started.IsFuture {
		t.Fatalf("started event not reclassified current: %+v", started)
	}
	if started.Path != "/current/" {
		t.Fatalf("current event path = %q", started.Path)
	}

	upcoming := result.Events[2]
	if !upcoming.IsFuture || upcoming.IsCurrent || upcoming.IsPast {
		t.Fatalf("upcoming event reclassified: %+v", upcoming)
	}

	if result.CurrentEventID == nil || *result.CurrentEventID != 2 {
		t.Fatalf("current event id = %v", result.CurrentEventID)
	}
	if result.CurrentEventStatsGamesThreshold != defaultStatsGamesThreshold {
		t.Fatalf("threshold = %d", result.CurrentEventStatsGamesThreshold)
	}
}

func TestParseEventsExcludesNonQualifyingType(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"eventId": 130, "name": "Excluded", "eventTense": "past",
		 "startTime": "2026-01-01T00:00:00", "scoringEndTime": "2026-01-08T00:00:00"},
		{"eventId": 7, "name": "Kept", "eventTense": "past",
		 "startTime": "2026-01-01T00:00:00", "scoringEndTime": "2026-01-08T00:00:00"}
	]`)

	result, err := ParseEvents(raw, "2026-08-01T00:00:00Z")
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}
	if len(result.Events) != 1 || result.Events[0].ID != 7 {
		t.Fatalf("exclusion failed: %+v", result.Events)
	}
}

func TestParseEventsDivisionLeaderboards(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"eventId": 9, "name": "Done", "eventTense": "past",
		 "startTime": "2026-01-01T00:00:00", "scoringEndTime": "2026-01-08T00:00:00",
		 "result": {
			"small": [{"idStr": "m1", "clanId": 42, "gamesPlayed": 4, "gamesWon": 3,
			           "kills": 40, "assists": 10, "deaths": 20, "totalScore": 12345}],
			"medium": [],
			"large": [{"idStr": "m2", "clanId": 43, "gamesPlayed": 0}]
		 }}
	]`)

	result, err := ParseEvents(raw, "2026-08-01T00:00:00Z")
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}

	boards := result.Leaderboards[9]
	if len(boards) != 2 {
		t.Fatalf("expected small and large boards, got %d", len(boards))
	}
	if boards[0].Division.Name != "Small" || boards[0].Division.Size != 10 {
		t.Fatalf("unexpected first division: %+v", boards[0].Division)
	}
	if len(boards[0].Leaderboard) != 1 {
		t.Fatalf("small board rows = %d", len(boards[0].Leaderboard))
	}
	row := boards[0].Leaderboard[0]
	if row.ID != "m1" || row.ClanID != "42" {
		t.Fatalf("row identity = %q/%q", row.ID, row.ClanID)
	}
	if row.Score != 123 || row.KD != 2 || row.KDA != 2.25 {
		t.Fatalf("row stats = score %d kd %v kda %v", row.Score, row.KD, row.KDA)
	}
	// The large division only had a zero-games row.
	if len(boards[1].Leaderboard) != 0 {
		t.Fatalf("large board rows = %d", len(boards[1].Leaderboard))
	}
}

func TestParseBonuses(t *testing.T) {
	t.Parallel()

	named := rawBonus{ShortName: "ABC", Points: 17}
	bare := rawBonus{Points: 9}
	placeholder := rawBonus{ShortName: "N/A", Points: 3}
	pending := rawBonus{ShortName: "TBC"}

	bonuses := parseBonuses(named, bare, true)
	if len(bonuses) != 2 {
		t.Fatalf("expected 2 bonuses, got %d", len(bonuses))
	}
	if bonuses[0].ShortName != "ABC" || bonuses[0].Count != 17 {
		t.Fatalf("first bonus = %+v", bonuses[0])
	}
	if bonuses[1].ShortName != "Bonus 2" || bonuses[1].Count != 9 {
		t.Fatalf("second bonus = %+v", bonuses[1])
	}

	if got := parseBonuses(placeholder, pending, true); len(got) != 0 {
		t.Fatalf("placeholder slots kept: %+v", got)
	}

	unplayed := parseBonuses(named, bare, false)
	for _, bonus := range unplayed {
		if bonus.Count != -1 {
			t.Fatalf("unplayed bonus count = %d", bonus.Count)
		}
	}
}

func TestParseMembers(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"profileIdStr": "100", "groupId": 5, "name": "Alice",
		 "icon": "https://www.bungie.net/img/profile/avatars/custom.png",
		 "membershipType": 4,
		 "bonusUnlocks": [{"name": "Founder"}],
		 "currentScore": {"lastSeen": "2026-08-20T10:00:00", "gamesPlayed": 10,
		                  "gamesWon": 6, "kills": 120, "assists": 30, "deaths": 60,
		                  "totalScore": 98765}},
		{"profileIdStr": "101", "groupId": 5, "name": "",
		 "icon": "https://www.bungie.net/img/profile/avatars/default_avatar.gif",
		 "currentScore": {"lastSeen": "2026-08-01T10:00:00", "gamesPlayed": 0}}
	]`)

	members, err := ParseMembers(raw)
	if err != nil {
		t.Fatalf("ParseMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	alice := members[0]
	if alice.Path != "/clans/5/members/100/" {
		t.Fatalf("path = %q", alice.Path)
	}
	if alice.Avatar.Icon != "custom.png" {
		t.Fatalf("icon = %q", alice.Avatar.Icon)
	}
	if len(alice.Platforms) != 1 || alice.Platforms[0].ID != 4 {
		t.Fatalf("platforms = %+v", alice.Platforms)
	}
	if len(alice.Tags) != 1 || alice.Tags[0].Name != "Founder" {
		t.Fatalf("tags = %+v", alice.Tags)
	}
	if alice.Totals.Games != 10 || alice.Totals.Score != 988 || alice.Totals.PPG != 99 {
		t.Fatalf("totals = %+v", alice.Totals)
	}
	if alice.Totals.LastPlayed != "2026-08-20" {
		t.Fatalf("lastPlayed = %q", alice.Totals.LastPlayed)
	}
	if !alice.Totals.Rank {
		t.Fatal("expected ranked totals")
	}

	idle := members[1]
	if idle.Name != snapshot.Blank {
		t.Fatalf("blank name = %q", idle.Name)
	}
	if idle.Avatar.Icon != "" {
		t.Fatalf("default icon not suppressed: %q", idle.Avatar.Icon)
	}
	if len(idle.Platforms) != 1 || idle.Platforms[0].ID != platformDefault {
		t.Fatalf("default platform = %+v", idle.Platforms)
	}
	// Zero games leaves the gameplay block untouched.
	if idle.Totals.Games != 0 || idle.Totals.Rank || idle.Totals.Path != "" {
		t.Fatalf("idle totals = %+v", idle.Totals)
	}
	if idle.Totals.LastPlayed != "2026-08-01" {
		t.Fatalf("idle lastPlayed = %q", idle.Totals.LastPlayed)
	}
}

func TestParseClans(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"groupId": 42, "name": "Warlocks &amp; Co", "tag": "WLC",
		 "motto": "Onward", "description": "<p>We  fight</p>",
		 "backgroundColor": "#101010", "emblemColor1": "#ff0000", "emblemColor2": "#00ff00",
		 "foregroundIcon": "/common/icon_cross.png", "backgroundIcon": "/common/icon_shield.png",
		 "medalUnlocks": [{"Id": 3, "Tier": 2, "Name": "Champs", "AwardedTo": "Warlocks &amp; Co"}]}
	]`)

	clans, err := ParseClans(raw)
	if err != nil {
		t.Fatalf("ParseClans: %v", err)
	}
	if len(clans) != 1 {
		t.Fatalf("expected 1 clan, got %d", len(clans))
	}

	clan := clans[0]
	if clan.ID != "42" || clan.Path != "/clans/42/" {
		t.Fatalf("identity = %q %q", clan.ID, clan.Path)
	}
	if clan.Name != "Warlocks & Co" {
		t.Fatalf("name = %q", clan.Name)
	}
	if clan.Description != "We fight." {
		t.Fatalf("description = %q", clan.Description)
	}
	if clan.Avatar.Foreground.Icon != "cross" || clan.Avatar.Background.Icon != "shield" {
		t.Fatalf("icons = %q %q", clan.Avatar.Foreground.Icon, clan.Avatar.Background.Icon)
	}
	if len(clan.Medals) != 1 || clan.Medals[0].Label[0] != "Warlocks & Co" {
		t.Fatalf("medals = %+v", clan.Medals)
	}
	if clan.MedalTotals[2] != 1 {
		t.Fatalf("medal totals = %+v", clan.MedalTotals)
	}
}

func TestParseClanLeaderboardLastChecked(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"idStr": "m1", "clanId": 7, "lastChecked": "2026-08-10T09:00:00",
		 "gamesPlayed": 3, "gamesWon": 2, "kills": 30, "assists": 6, "deaths": 10,
		 "totalScore": 4200},
		{"idStr": "m2", "clanId": 7, "lastChecked": "2026-08-12T09:00:00",
		 "gamesPlayed": 0}
	]`)

	eventID := int64(55)
	result, err := ParseClanLeaderboard(raw, &eventID)
	if err != nil {
		t.Fatalf("ParseClanLeaderboard: %v", err)
	}

	// m2 played nothing, so only m1 carries an entry.
	if len(result.Entries) != 1 {
		t.Fatalf("entries = %+v", result.Entries)
	}
	entry := result.Entries["m1"]
	if entry.Path != "/events/55/clans/7/members/m1/" {
		t.Fatalf("entry path = %q", entry.Path)
	}
	if entry.EventID == nil || *entry.EventID != 55 {
		t.Fatalf("entry event id = %v", entry.EventID)
	}
	if entry.Score != 42 {
		t.Fatalf("entry score = %d", entry.Score)
	}

	// Both rows report lastChecked; the clan keeps the latest.
	if result.LastChecked["m1"] != "2026-08-10T09:00:00Z" {
		t.Fatalf("m1 lastChecked = %q", result.LastChecked["m1"])
	}
	if result.LastChecked["m2"] != "2026-08-12T09:00:00Z" {
		t.Fatalf("m2 lastChecked = %q", result.LastChecked["m2"])
	}
	if result.LastChecked["7"] != "2026-08-12T09:00:00Z" {
		t.Fatalf("clan lastChecked = %q", result.LastChecked["7"])
	}
}

func TestParseClanLeaderboardCurrentPath(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"idStr": "m1", "clanId": 7, "gamesPlayed": 1, "totalScore": 100}
	]`)

	result, err := ParseClanLeaderboard(raw, nil)
	if err != nil {
		t.Fatalf("ParseClanLeaderboard: %v", err)
	}
	if got := result.Entries["m1"].Path; got != "/current/clans/7/members/m1/" {
		t.Fatalf("current path = %q", got)
	}
}

func TestParsePreviousClanLeaderboard(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"eventId": 88, "leaderboardList": [
			{"idStr": "m9", "clanId": 3, "gamesPlayed": 2, "totalScore": 600}
		]}
	]`)

	eventID, result, err := ParsePreviousClanLeaderboard(raw)
	if err != nil {
		t.Fatalf("ParsePreviousClanLeaderboard: %v", err)
	}
	if eventID != 88 {
		t.Fatalf("event id = %d", eventID)
	}
	entry, ok := result.Entries["m9"]
	if !ok {
		t.Fatalf("missing entry: %+v", result.Entries)
	}
	if entry.EventID == nil || *entry.EventID != 88 {
		t.Fatalf("entry event id = %v", entry.EventID)
	}

	if _, _, err := ParsePreviousClanLeaderboard([]byte(`[]`)); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestParseMatchHistory(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"matchHistorySize": 10,
		"history": [
			{"memberShipIdStr": "m1", "pgcrId": 111, "gameWon": true,
			 "gameType": "Clash", "map": "Rusted Lands",
			 "datePlayed": "2026-08-20T18:00:00", "kills": 12, "assists": 4,
			 "deaths": 6, "totalScore": 2500},
			{"memberShipIdStr": "m1", "pgcrId": 112, "gameWon": false,
			 "gameType": "Control", "map": "Midtown",
			 "datePlayed": "2026-08-20T19:00:00", "kills": 8, "assists": 2,
			 "deaths": 9, "totalScore": 1400},
			{"memberShipIdStr": "m2", "pgcrId": 113,
			 "gameType": "Control", "map": "Midtown",
			 "datePlayed": "2026-08-20T19:00:00"}
		]
	}`)

	result, err := ParseMatchHistory(raw)
	if err != nil {
		t.Fatalf("ParseMatchHistory: %v", err)
	}
	if result.Limit != 10 {
		t.Fatalf("limit = %d", result.Limit)
	}

	m1 := result.History["m1"]
	if len(m1) != 2 {
		t.Fatalf("m1 entries = %d", len(m1))
	}
	// Emission order is preserved.
	if m1[0].Game.Path != "https://www.bungie.net/en/PGCR/111" {
		t.Fatalf("first path = %q", m1[0].Game.Path)
	}
	if m1[0].Game.Result != snapshot.ResultWin || m1[1].Game.Result != snapshot.ResultLoss {
		t.Fatalf("results = %v %v", m1[0].Game.Result, m1[1].Game.Result)
	}
	if !m1[0].Game.IsExternal {
		t.Fatal("expected external link")
	}
	if m1[0].Score != 25 {
		t.Fatalf("score = %d", m1[0].Score)
	}

	m2 := result.History["m2"]
	if len(m2) != 1 || m2[0].Game.Result != "" {
		t.Fatalf("undecided result = %+v", m2)
	}
}

func TestParseModifiers(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"id": 1, "name": "Double Down", "shortName": "DD",
		 "description": "Kills count twice", "scoringModifier": true,
		 "scoringBonus": 2, "createdBy": "4611686018467345678"},
		{"id": 2, "name": "Sparrow Racing League",
		 "multiplierBonus": 1.5}
	]`)

	modifiers, err := ParseModifiers(raw)
	if err != nil {
		t.Fatalf("ParseModifiers: %v", err)
	}
	if len(modifiers) != 2 {
		t.Fatalf("expected 2 modifiers, got %d", len(modifiers))
	}
	if modifiers[0].ShortName != "DD" || modifiers[0].Bonus != 2 {
		t.Fatalf("first modifier = %+v", modifiers[0])
	}
	if modifiers[0].CreatorID != "4611686018467345678" {
		t.Fatalf("creator = %q", modifiers[0].CreatorID)
	}
	// Missing short name falls back to the first word of the name.
	if modifiers[1].ShortName != "Sparrow" || modifiers[1].Bonus != 1.5 {
		t.Fatalf("second modifier = %+v", modifiers[1])
	}
}

func TestParseLastUpdated(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"endpoints": {"Clan": {"GetAllClans": "2026-08-20T10:00:00"}}}`)
	updated, err := ParseLastUpdated(raw)
	if err != nil {
		t.Fatalf("ParseLastUpdated: %v", err)
	}
	if updated["Clan"]["GetAllClans"] != "2026-08-20T10:00:00" {
		t.Fatalf("unexpected map: %+v", updated)
	}

	empty, err := ParseLastUpdated([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParseLastUpdated empty: %v", err)
	}
	if empty == nil {
		t.Fatal("expected allocated map")
	}
}

func TestMachineFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2026-08-20T10:00:00":  "2026-08-20T10:00:00Z",
		"2026-08-20T10:00:00Z": "2026-08-20T10:00:00Z",
		"2026-08-20 10:00:00":  "2026-08-20T10:00:00Z",
		"not a timestamp":      "not a timestamp",
	}
	for input, want := range cases {
		if got := machineFormat(input); got != want {
			t.Fatalf("machineFormat(%q) = %q, want %q", input, got, want)
		}
	}
}
