package snapshot

import "time"

// Timestamp formats used throughout the snapshot. Machine-readable
// values sort lexicographically, which the tense reconciliation and
// lastChecked aggregation rely on.
const (
	FormatMachineReadable = "2006-01-02T15:04:05Z"
	FormatDate            = "2006-01-02"
)

// MedalType identifies which kind of entity a medal belongs to.
type MedalType string

const (
	MedalTypeClan   MedalType = "clan"
	MedalTypeMember MedalType = "member"
)

// Game result labels surfaced in match history entries.
const (
	ResultWin  = "W"
	ResultLoss = "L"
)

// Blank is the display placeholder for missing member names.
const Blank = "-"

// Snapshot is the complete normalized output of one fetch run. It is
// built exactly once per run and handed to the static-site build as
// one JSON document.
type Snapshot struct {
	APIStatus                       APIStatus                       `json:"apiStatus"`
	Clans                           []Clan                          `json:"clans"`
	Members                         []Member                        `json:"members"`
	Events                          []Event                         `json:"events"`
	Modifiers                       []Modifier                      `json:"modifiers"`
	Medals                          []Medal                         `json:"medals"`
	CurrentEventID                  *int64                          `json:"currentEventId"`
	CurrentEventStatsGamesThreshold int                             `json:"currentEventStatsGamesThreshold,omitempty"`
	CurrentLeaderboards             []DivisionLeaderboard           `json:"currentLeaderboards"`
	CurrentClanLeaderboard          map[string]Totals               `json:"currentClanLeaderboard"`
	PreviousEventID                 *int64                          `json:"previousEventId"`
	PreviousClanLeaderboard         map[string]Totals               `json:"previousClanLeaderboard"`
	MatchHistory                    map[string][]MatchHistoryEntry  `json:"matchHistory"`
	MatchHistoryLimit               int                             `json:"matchHistoryLimit,omitempty"`
	LastChecked                     map[string]string               `json:"lastChecked"`
	Leaderboards                    map[int64][]DivisionLeaderboard `json:"leaderboards"`
}

// New returns a snapshot with every collection allocated and the
// declared defaults for sections that are statically skipped.
func New(updated time.Time, defaults APIStatus) *Snapshot {
	defaults.UpdatedDate = updated.UTC().Format(FormatMachineReadable)

	return &Snapshot{
		APIStatus:               defaults,
		Clans:                   []Clan{},
		Members:                 []Member{},
		Events:                  []Event{},
		Modifiers:               []Modifier{},
		Medals:                  []Medal{},
		CurrentLeaderboards:     []DivisionLeaderboard{},
		CurrentClanLeaderboard:  map[string]Totals{},
		PreviousClanLeaderboard: map[string]Totals{},
		MatchHistory:            map[string][]MatchHistoryEntry{},
		LastChecked:             map[string]string{},
		Leaderboards:            map[int64][]DivisionLeaderboard{},
	}
}

// APIStatus reports upstream health alongside the run timestamp.
type APIStatus struct {
	Alert          string `json:"alert,omitempty"`
	BungieStatus   int    `json:"bungieStatus"`
	UpdatedDate    string `json:"updatedDate"`
	EnrollmentOpen bool   `json:"enrollmentOpen"`
}

// Clan is one competing clan, fully replaced on every run.
type Clan struct {
	Path        string      `json:"path"`
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Tag         string      `json:"tag"`
	Motto       string      `json:"motto"`
	Description string      `json:"description"`
	Avatar      ClanAvatar  `json:"avatar"`
	Medals      []Medal     `json:"medals"`
	MedalTotals map[int]int `json:"medalTotals"`
}

// ClanAvatar is the layered emblem: a base color plus foreground and
// background icon/color pairs.
type ClanAvatar struct {
	Color      string      `json:"color"`
	Foreground AvatarLayer `json:"foreground"`
	Background AvatarLayer `json:"background"`
}

type AvatarLayer struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Member is one clan member. Avatar.Icon is empty when upstream
// reported the default placeholder icon.
type Member struct {
	Path       string       `json:"path"`
	ID         string       `json:"id"`
	ClanID     string       `json:"clanId"`
	Name       string       `json:"name"`
	Avatar     MemberAvatar `json:"avatar"`
	Platforms  []Platform   `json:"platforms"`
	Tags       []Tag        `json:"tags,omitempty"`
	Medals     []Medal      `json:"medals,omitempty"`
	Totals     Totals       `json:"totals"`
	PastEvents []PastEvent  `json:"pastEvents,omitempty"`
}

type MemberAvatar struct {
	Icon string `json:"icon,omitempty"`
}

type Platform struct {
	ID         int `json:"id"`
	Percentage int `json:"percentage"`
}

type Tag struct {
	Name string `json:"name"`
}

// Event is one scored community event. Exactly one of IsCurrent,
// IsPast, IsFuture is set after tense reconciliation.
type Event struct {
	Path                string       `json:"path"`
	ID                  int64        `json:"id"`
	Name                string       `json:"name"`
	Description         string       `json:"description"`
	Sponsor             string       `json:"sponsor,omitempty"`
	StartDate           string       `json:"startDate"`
	EndDate             string       `json:"endDate"`
	IsCurrent           bool         `json:"isCurrent,omitempty"`
	IsPast              bool         `json:"isPast,omitempty"`
	IsFuture            bool         `json:"isFuture,omitempty"`
	IsCalculated        bool         `json:"isCalculated,omitempty"`
	Modifiers           []int64      `json:"modifiers"`
	Medals              *EventMedals `json:"medals,omitempty"`
	Stats               *EventStats  `json:"stats,omitempty"`
	StatsGamesThreshold int          `json:"statsGamesThreshold"`
}

// EventMedals carries the per-audience medal lists an event awards.
type EventMedals struct {
	Clans   []Medal `json:"clans,omitempty"`
	Members []Medal `json:"members,omitempty"`
}

type EventStats struct {
	TotalClans  int `json:"totalClans"`
	TotalActive int `json:"totalActive"`
	TotalGames  int `json:"totalGames"`
}

// Modifier is an event-wide scoring rule adjustment.
type Modifier struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	ShortName       string  `json:"shortName"`
	Description     string  `json:"description"`
	ScoringModifier bool    `json:"scoringModifier"`
	Bonus           float64 `json:"bonus"`
	CreatorID       string  `json:"creatorId,omitempty"`
}

// Medal is one award. Label holds every recipient merged across
// duplicate (id, type) records in a batch.
type Medal struct {
	ID          int64     `json:"id"`
	Type        MedalType `json:"type"`
	Tier        int       `json:"tier"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Count       *int64    `json:"count"`
	Label       []string  `json:"label"`
}

// BonusKind tags a bonus slot instead of inferring meaning from its
// display name downstream.
type BonusKind int

const (
	BonusNormal BonusKind = iota
	BonusNotApplicable
	BonusToBeConfirmed
)

// Bonus is one supplementary scoring component. Count is -1 when the
// owning record has not played any games.
type Bonus struct {
	ShortName string    `json:"shortName"`
	Count     int64     `json:"count"`
	Kind      BonusKind `json:"-"`
}

// Totals is a member stat block. Gameplay fields are only present when
// Games > 0; their absence means "has not played", which downstream
// code relies on.
type Totals struct {
	ID         string  `json:"id,omitempty"`
	ClanID     string  `json:"clanId,omitempty"`
	EventID    *int64  `json:"eventId,omitempty"`
	LastPlayed string  `json:"lastPlayed,omitempty"`
	Path       string  `json:"path,omitempty"`
	Rank       bool    `json:"rank,omitempty"`
	Games      int     `json:"games,omitempty"`
	Wins       int     `json:"wins,omitempty"`
	Kills      int     `json:"kills,omitempty"`
	Assists    int     `json:"assists,omitempty"`
	Deaths     int     `json:"deaths,omitempty"`
	KD         float64 `json:"kd,omitempty"`
	KDA        float64 `json:"kda,omitempty"`
	PPG        int64   `json:"ppg,omitempty"`
	Score      int64   `json:"score,omitempty"`
	Bonuses    []Bonus `json:"bonuses,omitempty"`
}

// PastEvent is one historical event a member took part in.
type PastEvent struct {
	ID           int64    `json:"id"`
	Game         GameLink `json:"game"`
	Rank         string   `json:"rank"`
	Overall      string   `json:"overall"`
	Games        int      `json:"games"`
	Wins         int      `json:"wins"`
	KD           float64  `json:"kd"`
	KDA          float64  `json:"kda"`
	Bonuses      []Bonus  `json:"bonuses"`
	BonusColumns []string `json:"bonusColumns"`
	PPG          int64    `json:"ppg"`
	Score        int64    `json:"score"`
}

// GameLink points either at an event page or an external match report.
type GameLink struct {
	Path       string  `json:"path"`
	IsExternal bool    `json:"isExternal,omitempty"`
	Result     any     `json:"result,omitempty"`
	Name       string  `json:"name"`
	Label      string  `json:"label,omitempty"`
	EndDate    string  `json:"endDate"`
	Medals     []Medal `json:"medals,omitempty"`
}

// MatchHistoryEntry is one match stat line, kept in upstream emission
// order under the owning member id.
type MatchHistoryEntry struct {
	Game    GameLink `json:"game"`
	Kills   int      `json:"kills"`
	Assists int      `json:"assists"`
	Deaths  int      `json:"deaths"`
	Bonuses []Bonus  `json:"bonuses"`
	Score   int64    `json:"score"`
}

// DivisionLeaderboard pairs a raw member leaderboard with the division
// it was scored under.
type DivisionLeaderboard struct {
	Leaderboard []Totals `json:"leaderboard"`
	Division    Division `json:"division"`
}

type Division struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}
