package warfare

import (
	"bytes"
	"encoding/json"

	sonic "github.com/bytedance/sonic"
)

// Endpoint names, also used as cache keys. Slashes map to cache
// subdirectories.
const (
	EndpointLastUpdated             = "Component/GetLastUpdatedTimes"
	EndpointEnrollmentOpen          = "Clan/AcceptingNewClans"
	EndpointCurrentAlert            = "Event/GetCurrentAlert"
	EndpointClans                   = "Clan/GetAllClans"
	EndpointMembers                 = "Clan/GetAllMembers"
	EndpointEvents                  = "Event/GetAllEvents"
	EndpointModifiers               = "Component/GetAllModifiers"
	EndpointMemberMedals            = "Component/GetAllMedals"
	EndpointClanMedals              = "Component/GetAllClanMedals"
	EndpointLeaderboard             = "Leaderboard/GetLeaderboard"
	EndpointClanLeaderboard         = "Leaderboard/GetClanLeaderboard"
	EndpointMatchHistory            = "Leaderboard/GetAllPlayersHistory"
	EndpointPreviousClanLeaderboard = "Leaderboard/GetPreviousClanLeaderboard"
)

// Endpoint groups as reported by the last-updated-times map.
const (
	GroupClan        = "Clan"
	GroupTournament  = "Tournament"
	GroupComponent   = "Component"
	GroupLeaderboard = "Leaderboard"
)

// Operation names within a last-updated group.
const (
	OpGetAllClans                = "GetAllClans"
	OpGetAllMembers              = "GetAllMembers"
	OpGetAllEvents               = "GetAllEvents"
	OpGetAllModifiers            = "GetAllModifiers"
	OpGetAllMedals               = "GetAllMedals"
	OpGetAllClanMedals           = "GetAllClanMedals"
	OpGetLeaderboard             = "GetLeaderboard"
	OpGetClanLeaderboard         = "GetClanLeaderboard"
	OpGetAllPlayersHistory       = "GetAllPlayersHistory"
	OpGetPreviousClanLeaderboard = "GetPreviousClanLeaderboard"
)

// Declared event tenses as upstream spells them. The orchestrator
// overrides these against the run timestamp.
const (
	tenseCurrent = "current"
	tensePast    = "past"
	tenseFuture  = "future"
)

type lastUpdatedEnvelope struct {
	Endpoints map[string]map[string]string `json:"endpoints"`
}

type rawClan struct {
	GroupID         int64           `json:"groupId"`
	Name            string          `json:"name"`
	Tag             string          `json:"tag"`
	Motto           string          `json:"motto"`
	Description     string          `json:"description"`
	BackgroundColor string          `json:"backgroundColor"`
	EmblemColor1    string          `json:"emblemColor1"`
	EmblemColor2    string          `json:"emblemColor2"`
	ForegroundIcon  string          `json:"foregroundIcon"`
	BackgroundIcon  string          `json:"backgroundIcon"`
	MedalUnlocks    json.RawMessage `json:"medalUnlocks"`
}

type rawMember struct {
	ProfileIDStr   string            `json:"profileIdStr"`
	GroupID        int64             `json:"groupId"`
	Name           string            `json:"name"`
	Icon           string            `json:"icon"`
	MembershipType int               `json:"membershipType"`
	BonusUnlocks   []rawBonusUnlock  `json:"bonusUnlocks"`
	CurrentScore   *rawMemberScore   `json:"currentScore"`
	History        []rawEventHistory `json:"history"`
	MedalUnlocks   json.RawMessage   `json:"medalUnlocks"`
}

type rawBonusUnlock struct {
	Name string `json:"name"`
}

type rawMemberScore struct {
	LastSeen    string `json:"lastSeen"`
	GamesPlayed int    `json:"gamesPlayed"`
	GamesWon    int    `json:"gamesWon"`
	Kills       int    `json:"kills"`
	Assists     int    `json:"assists"`
	Deaths      int    `json:"deaths"`
	TotalScore  int64  `json:"totalScore"`
}

type rawEventHistory struct {
	EventID int64             `json:"eventId"`
	Results rawHistoryResults `json:"results"`
	Medals  json.RawMessage   `json:"medals"`
}

type rawHistoryResults struct {
	GamesPlayed  int          `json:"gamesPlayed"`
	GamesWon     int          `json:"gamesWon"`
	TotalKills   int          `json:"totalKills"`
	TotalAssists int          `json:"totalAssists"`
	TotalDeaths  int          `json:"totalDeaths"`
	TotalScore   int64        `json:"totalScore"`
	RankInClan   int          `json:"rankInClan"`
	OverallRank  int          `json:"overallRank"`
	EventData    rawEventData `json:"eventData"`
	BonusPoints1 rawBonus     `json:"bonusPoints1"`
	BonusPoints2 rawBonus     `json:"bonusPoints2"`
}

type rawEventData struct {
	Name           string `json:"name"`
	ScoringEndDate string `json:"scoringEndDate"`
}

type rawEvent struct {
	EventID             int64            `json:"eventId"`
	Name                string           `json:"name"`
	Description         string           `json:"description"`
	SponsoredBy         string           `json:"sponsoredBy"`
	StartTime           string           `json:"startTime"`
	ScoringEndTime      string           `json:"scoringEndTime"`
	EventTense          string           `json:"eventTense"`
	StatsGamesThreshold int              `json:"statsGamesThreshold"`
	Calculated          bool             `json:"calculated"`
	Modifiers           []rawModifierRef `json:"modifiers"`
	Result              *rawEventResult  `json:"result"`
	Stats               *rawEventStats   `json:"stats"`
	ClanMedals          json.RawMessage  `json:"clanMedals"`
	ClanMemberMedals    json.RawMessage  `json:"clanMemberMedals"`
}

type rawModifierRef struct {
	ID int64 `json:"id"`
}

type rawEventResult struct {
	Small  []rawLeaderboardRow `json:"small"`
	Medium []rawLeaderboardRow `json:"medium"`
	Large  []rawLeaderboardRow `json:"large"`
}

type rawEventStats struct {
	TotalClans   int `json:"totalClans"`
	TotalPlayers int `json:"totalPlayers"`
	TotalGames   int `json:"totalGames"`
}

type rawModifier struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	ShortName       string  `json:"shortName"`
	Description     string  `json:"description"`
	ScoringModifier bool    `json:"scoringModifier"`
	ScoringBonus    float64 `json:"scoringBonus"`
	MultiplierBonus float64 `json:"multiplierBonus"`
	CreatedBy       string  `json:"createdBy"`
}

type rawLeaderboardRow struct {
	IDStr        string   `json:"idStr"`
	ClanID       int64    `json:"clanId"`
	LastChecked  string   `json:"lastChecked"`
	GamesPlayed  int      `json:"gamesPlayed"`
	GamesWon     int      `json:"gamesWon"`
	Kills        int      `json:"kills"`
	Assists      int      `json:"assists"`
	Deaths       int      `json:"deaths"`
	TotalScore   int64    `json:"totalScore"`
	BonusPoints1 rawBonus `json:"bonusPoints1"`
	BonusPoints2 rawBonus `json:"bonusPoints2"`
}

type rawDivisionLeaderboards struct {
	SmallLeaderboard  []rawLeaderboardRow `json:"smallLeaderboard"`
	MediumLeaderboard []rawLeaderboardRow `json:"mediumLeaderboard"`
	LargeLeaderboard  []rawLeaderboardRow `json:"largeLeaderboard"`
}

type rawMatchHistory struct {
	History          []rawMatch `json:"history"`
	MatchHistorySize int        `json:"matchHistorySize"`
}

type rawMatch struct {
	MemberShipIDStr string   `json:"memberShipIdStr"`
	PgcrID          int64    `json:"pgcrId"`
	GameWon         *bool    `json:"gameWon"`
	GameType        string   `json:"gameType"`
	Map             string   `json:"map"`
	DatePlayed      string   `json:"datePlayed"`
	Kills           int      `json:"kills"`
	Assists         int      `json:"assists"`
	Deaths          int      `json:"deaths"`
	TotalScore      int64    `json:"totalScore"`
	BonusPoints1    rawBonus `json:"bonusPoints1"`
	BonusPoints2    rawBonus `json:"bonusPoints2"`
}

type rawPreviousLeaderboard struct {
	EventID         int64               `json:"eventId"`
	LeaderboardList []rawLeaderboardRow `json:"leaderboardList"`
}

// rawBonus accepts both upstream shapes for a bonus slot: a bare
// number, or an object carrying a short name beside the value.
type rawBonus struct {
	ShortName string
	Points    int64
}

func (b *rawBonus) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '{' {
		var obj struct {
			ShortName   string `json:"shortName"`
			BonusPoints int64  `json:"bonusPoints"`
		}
		if err := sonic.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		b.ShortName = obj.ShortName
		b.Points = obj.BonusPoints
		return nil
	}

	return sonic.Unmarshal(trimmed, &b.Points)
}
