package warfare

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/clanwarfare/snapshot/internal/domain/medal"
	"github.com/clanwarfare/snapshot/internal/domain/snapshot"
	"github.com/clanwarfare/snapshot/internal/domain/stats"
	"github.com/clanwarfare/snapshot/internal/platform/text"
	"github.com/clanwarfare/snapshot/internal/platform/urlbuilder"
)

// Bungie-hosted member avatars. The default placeholder icon is
// suppressed so the site can substitute its own.
const (
	bungieBaseURL     = "https://www.bungie.net"
	avatarPath        = "/img/profile/avatars/"
	defaultAvatarIcon = "default_avatar.gif"

	// platformDefault stands in when a member record omits its
	// membership type.
	platformDefault = 2

	// defaultStatsGamesThreshold applies when an event does not
	// declare its own qualification threshold.
	defaultStatsGamesThreshold = 5

	// excludedEventID marks a non-qualifying event type that never
	// enters the snapshot.
	excludedEventID = 130
)

// Bonus slot sentinel names upstream uses for placeholder slots.
const (
	bonusNotApplicable = "N/A"
	bonusToBeConfirmed = "TBC"
)

// Clan size divisions events are scored under.
var divisions = []struct {
	key  string
	name string
	size int
}{
	{"small", "Small", 10},
	{"medium", "Medium", 50},
	{"large", "Large", 100},
}

var clanIconRegex = regexp.MustCompile(`^.*_(\w*).*$`)

// ParseLastUpdated decodes the per-group operation timestamp map.
func ParseLastUpdated(raw []byte) (map[string]map[string]string, error) {
	var envelope lastUpdatedEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, crerr.Wrap(err, "decode last-updated payload")
	}
	if envelope.Endpoints == nil {
		envelope.Endpoints = map[string]map[string]string{}
	}
	return envelope.Endpoints, nil
}

func ParseEnrollmentOpen(raw []byte) (bool, error) {
	var open bool
	if err := sonic.Unmarshal(raw, &open); err != nil {
		return false, crerr.Wrap(err, "decode enrollment payload")
	}
	return open, nil
}

func ParseAlert(raw []byte) (string, error) {
	var alert string
	if err := sonic.Unmarshal(raw, &alert); err != nil {
		return "", crerr.Wrap(err, "decode alert payload")
	}
	return alert, nil
}

// ParseClans normalizes the clan listing, including layered emblem
// colors and per-clan medals.
func ParseClans(raw []byte) ([]snapshot.Clan, error) {
	var records []rawClan
	if err := sonic.Unmarshal(raw, &records); err != nil {
		return nil, crerr.Wrap(err, "decode clan payload")
	}

	clans := make([]snapshot.Clan, 0, len(records))
	for _, record := range records {
		id := strconv.FormatInt(record.GroupID, 10)

		parsed, err := medal.Parse(record.MedalUnlocks, snapshot.MedalTypeClan, 0)
		if err != nil {
			return nil, crerr.Wrapf(err, "clan=%s medals", id)
		}

		clans = append(clans, snapshot.Clan{
			Path:        urlbuilder.ClanURL(id),
			ID:          id,
			Name:        text.Decode(record.Name),
			Tag:         text.Decode(record.Tag),
			Motto:       text.Decode(record.Motto),
			Description: text.Description(record.Description),
			Avatar: snapshot.ClanAvatar{
				Color: record.BackgroundColor,
				Foreground: snapshot.AvatarLayer{
					Color: record.EmblemColor1,
					Icon:  parseClanIcon(record.ForegroundIcon),
				},
				Background: snapshot.AvatarLayer{
					Color: record.EmblemColor2,
					Icon:  parseClanIcon(record.BackgroundIcon),
				},
			},
			Medals:      parsed.Medals,
			MedalTotals: parsed.Totals,
		})
	}

	return clans, nil
}

// ParseMembers normalizes the member listing: totals from the current
// score, past events from match history, medals and tags.
func ParseMembers(raw []byte) ([]snapshot.Member, error) {
	var records []rawMember
	if err := sonic.Unmarshal(raw, &records); err != nil {
		return nil, crerr.Wrap(err, "decode member payload")
	}

	members := make([]snapshot.Member, 0, len(records))
	for _, record := range records {
		id := record.ProfileIDStr
		clanID := strconv.FormatInt(record.GroupID, 10)
		path := urlbuilder.ProfileURL(clanID, id)

		totals := snapshot.Totals{LastPlayed: "-1"}
		if score := record.CurrentScore; score != nil && score.LastSeen != "" {
			if seen, ok := parseTimestamp(score.LastSeen); ok {
				totals.LastPlayed = seen.Format(snapshot.FormatDate)
			}
			if score.GamesPlayed > 0 {
				totals.Path = path
				totals.Rank = true
				totals.Games = score.GamesPlayed
				totals.Wins = score.GamesWon
				totals.Kills = score.Kills
				totals.Assists = score.Assists
				totals.Deaths = score.Deaths
				totals.KD = stats.KD(score.Kills, score.Deaths)
				totals.KDA = stats.KDA(score.Kills, score.Deaths, score.Assists)
				totals.Score = stats.Total(score.TotalScore)
				totals.PPG = stats.PPG(score.GamesPlayed, totals.Score)
			}
		}

		pastEvents := make([]snapshot.PastEvent, 0, len(record.History))
		for _, match := range record.History {
			past, err := parsePastEvent(match)
			if err != nil {
				return nil, crerr.Wrapf(err, "member=%s history", id)
			}
			pastEvents = append(pastEvents, past)
		}

		parsed, err := medal.Parse(record.MedalUnlocks, snapshot.MedalTypeMember, 0)
		if err != nil {
			return nil, crerr.Wrapf(err, "member=%s medals", id)
		}

		name := record.Name
		if name == "" {
			name = snapshot.Blank
		}

		member := snapshot.Member{
			Path:   path,
			ID:     id,
			ClanID: clanID,
			Name:   name,
			Avatar: snapshot.MemberAvatar{Icon: parseMemberIcon(record.Icon)},
			Platforms: []snapshot.Platform{
				{ID: memberPlatform(record.MembershipType), Percentage: 100},
			},
			Totals: totals,
		}
		for _, unlock := range record.BonusUnlocks {
			member.Tags = append(member.Tags, snapshot.Tag{Name: unlock.Name})
		}
		if len(parsed.Medals) > 0 {
			member.Medals = parsed.Medals
		}
		if len(pastEvents) > 0 {
			member.PastEvents = pastEvents
		}

		members = append(members, member)
	}

	return members, nil
}

func parsePastEvent(match rawEventHistory) (snapshot.PastEvent, error) {
	results := match.Results
	score := stats.Total(results.TotalScore)
	bonuses := parseBonuses(results.BonusPoints1, results.BonusPoints2, true)

	parsed, err := medal.Parse(match.Medals, snapshot.MedalTypeMember, 0)
	if err != nil {
		return snapshot.PastEvent{}, err
	}

	endDate := results.EventData.ScoringEndDate
	if parsedEnd, ok := parseTimestamp(endDate); ok {
		endDate = parsedEnd.Format(snapshot.FormatMachineReadable)
	}

	columns := make([]string, 0, len(bonuses))
	for _, bonus := range bonuses {
		columns = append(columns, bonus.ShortName)
	}

	past := snapshot.PastEvent{
		ID: match.EventID,
		Game: snapshot.GameLink{
			Path:    urlbuilder.EventURL(match.EventID),
			Result:  true,
			Name:    results.EventData.Name,
			EndDate: endDate,
			Medals:  parsed.Medals,
		},
		Rank:         stats.Ranking(results.RankInClan),
		Overall:      stats.Ranking(results.OverallRank),
		Games:        results.GamesPlayed,
		Wins:         results.GamesWon,
		KD:           stats.KD(results.TotalKills, results.TotalDeaths),
		KDA:          stats.KDA(results.TotalKills, results.TotalDeaths, results.TotalAssists),
		Bonuses:      bonuses,
		BonusColumns: columns,
		Score:        score,
	}
	if results.GamesPlayed > 0 {
		past.PPG = stats.PPG(results.GamesPlayed, score)
	}

	return past, nil
}

// EventsResult is the immutable partial the events section yields.
type EventsResult struct {
	Events                          []snapshot.Event
	CurrentEventID                  *int64
	CurrentEventStatsGamesThreshold int
	Leaderboards                    map[int64][]snapshot.DivisionLeaderboard
}

// ParseEvents normalizes the event listing, overriding each declared
// tense against updatedDate: a current event whose end has passed
// becomes past, a future event whose start has passed becomes
// current. The event holding the current designation last takes the
// canonical current-event path and id.
func ParseEvents(raw []byte, updatedDate string) (EventsResult, error) {
	var records []rawEvent
	if err := sonic.Unmarshal(raw, &records); err != nil {
		return EventsResult{}, crerr.Wrap(err, "decode event payload")
	}

	result := EventsResult{
		Events:       []snapshot.Event{},
		Leaderboards: map[int64][]snapshot.DivisionLeaderboard{},
	}

	for _, record := range records {
		id := record.EventID
		if id == excludedEventID {
			continue
		}

		startDate := machineFormat(record.StartTime)
		endDate := machineFormat(record.ScoringEndTime)
		isCurrent := record.EventTense == tenseCurrent
		isPast := record.EventTense == tensePast
		isFuture := record.EventTense == tenseFuture
		path := urlbuilder.EventURL(id)

		if isCurrent && endDate < updatedDate {
			isCurrent = false
			isPast = true
		}
		if isFuture && startDate < updatedDate {
			isCurrent = true
			isFuture = false
		}

		threshold := record.StatsGamesThreshold
		if threshold == 0 {
			threshold = defaultStatsGamesThreshold
		}

		if isCurrent {
			path = urlbuilder.CurrentEventRootURL
			current := id
			result.CurrentEventID = &current
			result.CurrentEventStatsGamesThreshold = threshold
		}

		if record.Result != nil {
			boards := parseEventLeaderboards(record.Result, id)
			if len(boards) > 0 {
				result.Leaderboards[id] = boards
			}
		}

		var eventStats *snapshot.EventStats
		if record.Stats != nil {
			eventStats = &snapshot.EventStats{
				TotalClans:  record.Stats.TotalClans,
				TotalActive: record.Stats.TotalPlayers,
				TotalGames:  record.Stats.TotalGames,
			}
		}

		clanMedals, err := medal.Parse(record.ClanMedals, snapshot.MedalTypeClan, 1)
		if err != nil {
			return EventsResult{}, crerr.Wrapf(err, "event=%d clan medals", id)
		}
		memberMedals, err := medal.Parse(record.ClanMemberMedals, snapshot.MedalTypeMember, 1)
		if err != nil {
			return EventsResult{}, crerr.Wrapf(err, "event=%d member medals", id)
		}

		var medals *snapshot.EventMedals
		if len(clanMedals.Medals) > 0 || len(memberMedals.Medals) > 0 {
			medals = &snapshot.EventMedals{
				Clans:   clanMedals.Medals,
				Members: memberMedals.Medals,
			}
		}

		modifierIDs := make([]int64, 0, len(record.Modifiers))
		for _, ref := range record.Modifiers {
			modifierIDs = append(modifierIDs, ref.ID)
		}

		result.Events = append(result.Events, snapshot.Event{
			Path:                path,
			ID:                  id,
			Name:                record.Name,
			Description:         text.Description(record.Description),
			Sponsor:             record.SponsoredBy,
			StartDate:           startDate,
			EndDate:             endDate,
			IsCurrent:           isCurrent,
			IsPast:              isPast,
			IsFuture:            isFuture,
			IsCalculated:        record.Calculated,
			Modifiers:           modifierIDs,
			Medals:              medals,
			Stats:               eventStats,
			StatsGamesThreshold: threshold,
		})
	}

	return result, nil
}

func parseEventLeaderboards(result *rawEventResult, eventID int64) []snapshot.DivisionLeaderboard {
	byKey := map[string][]rawLeaderboardRow{
		"small":  result.Small,
		"medium": result.Medium,
		"large":  result.Large,
	}

	boards := make([]snapshot.DivisionLeaderboard, 0, len(divisions))
	for _, division := range divisions {
		rows := byKey[division.key]
		if len(rows) == 0 {
			continue
		}
		boards = append(boards, snapshot.DivisionLeaderboard{
			Leaderboard: parseLeaderboardRows(rows, &eventID),
			Division:    snapshot.Division{Name: division.name, Size: division.size},
		})
	}

	return boards
}

func ParseModifiers(raw []byte) ([]snapshot.Modifier, error) {
	var records []rawModifier
	if err := sonic.Unmarshal(raw, &records); err != nil {
		return nil, crerr.Wrap(err, "decode modifier payload")
	}

	modifiers := make([]snapshot.Modifier, 0, len(records))
	for _, record := range records {
		shortName := record.ShortName
		if shortName == "" {
			shortName = strings.SplitN(record.Name, " ", 2)[0]
		}

		bonus := record.ScoringBonus
		if bonus == 0 {
			bonus = record.MultiplierBonus
		}

		modifiers = append(modifiers, snapshot.Modifier{
			ID:              record.ID,
			Name:            record.Name,
			ShortName:       shortName,
			Description:     record.Description,
			ScoringModifier: record.ScoringModifier,
			Bonus:           bonus,
			CreatorID:       record.CreatedBy,
		})
	}

	return modifiers, nil
}

// ParseDivisionLeaderboards decodes the current event's per-division
// leaderboards, dropping empty divisions.
func ParseDivisionLeaderboards(raw []byte) ([]snapshot.DivisionLeaderboard, error) {
	var envelope rawDivisionLeaderboards
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, crerr.Wrap(err, "decode leaderboard payload")
	}

	byKey := map[string][]rawLeaderboardRow{
		"small":  envelope.SmallLeaderboard,
		"medium": envelope.MediumLeaderboard,
		"large":  envelope.LargeLeaderboard,
	}

	boards := make([]snapshot.DivisionLeaderboard, 0, len(divisions))
	for _, division := range divisions {
		rows := byKey[division.key]
		if len(rows) == 0 {
			continue
		}
		boards = append(boards, snapshot.DivisionLeaderboard{
			Leaderboard: parseLeaderboardRows(rows, nil),
			Division:    snapshot.Division{Name: division.name, Size: division.size},
		})
	}

	return boards, nil
}

// ClanLeaderboardResult carries per-member stat blocks keyed by
// member id plus the lastChecked timestamps observed on the rows.
type ClanLeaderboardResult struct {
	Entries map[string]snapshot.Totals
	// LastChecked holds machine-readable timestamps per member id and
	// per clan id; a clan's value is its members' latest.
	LastChecked map[string]string
}

// ParseClanLeaderboard reshapes a clan leaderboard payload. Members
// with no games played are omitted from Entries but still contribute
// their lastChecked timestamps.
func ParseClanLeaderboard(raw []byte, eventID *int64) (ClanLeaderboardResult, error) {
	var rows []rawLeaderboardRow
	if err := sonic.Unmarshal(raw, &rows); err != nil {
		return ClanLeaderboardResult{}, crerr.Wrap(err, "decode clan leaderboard payload")
	}
	return buildClanLeaderboard(rows, eventID), nil
}

// ParsePreviousClanLeaderboard unwraps the previous event's clan
// leaderboard, reporting which event it belongs to.
func ParsePreviousClanLeaderboard(raw []byte) (int64, ClanLeaderboardResult, error) {
	var envelopes []rawPreviousLeaderboard
	if err := sonic.Unmarshal(raw, &envelopes); err != nil {
		return 0, ClanLeaderboardResult{}, crerr.Wrap(err, "decode previous clan leaderboard payload")
	}
	if len(envelopes) == 0 {
		return 0, ClanLeaderboardResult{}, crerr.New("previous clan leaderboard payload is empty")
	}

	first := envelopes[0]
	return first.EventID, buildClanLeaderboard(first.LeaderboardList, &first.EventID), nil
}

func buildClanLeaderboard(rows []rawLeaderboardRow, eventID *int64) ClanLeaderboardResult {
	result := ClanLeaderboardResult{
		Entries:     map[string]snapshot.Totals{},
		LastChecked: map[string]string{},
	}

	for _, row := range rows {
		id := row.IDStr
		clanID := strconv.FormatInt(row.ClanID, 10)

		if row.GamesPlayed > 0 {
			totals := rowTotals(row, eventID)
			if eventID != nil {
				totals.Path = urlbuilder.EventProfileURL(clanID, id, *eventID)
			} else {
				totals.Path = urlbuilder.CurrentProfileURL(clanID, id)
			}
			result.Entries[id] = totals
		}

		if row.LastChecked == "" {
			continue
		}
		checked, ok := parseTimestamp(row.LastChecked)
		if !ok {
			continue
		}
		stamp := checked.Format(snapshot.FormatMachineReadable)
		result.LastChecked[id] = stamp
		if existing, ok := result.LastChecked[clanID]; !ok || stamp > existing {
			result.LastChecked[clanID] = stamp
		}
	}

	return result
}

// parseLeaderboardRows converts division rows, keeping member and
// clan ids inline since a slice has no key to carry them.
func parseLeaderboardRows(rows []rawLeaderboardRow, eventID *int64) []snapshot.Totals {
	out := make([]snapshot.Totals, 0, len(rows))
	for _, row := range rows {
		if row.GamesPlayed == 0 {
			continue
		}
		totals := rowTotals(row, eventID)
		totals.ID = row.IDStr
		totals.ClanID = strconv.FormatInt(row.ClanID, 10)
		out = append(out, totals)
	}
	return out
}

func rowTotals(row rawLeaderboardRow, eventID *int64) snapshot.Totals {
	score := stats.Total(row.TotalScore)
	return snapshot.Totals{
		EventID: eventID,
		Rank:    true,
		Games:   row.GamesPlayed,
		Wins:    row.GamesWon,
		Kills:   row.Kills,
		Assists: row.Assists,
		Deaths:  row.Deaths,
		KD:      stats.KD(row.Kills, row.Deaths),
		KDA:     stats.KDA(row.Kills, row.Deaths, row.Assists),
		PPG:     stats.PPG(row.GamesPlayed, score),
		Score:   score,
		Bonuses: parseBonuses(row.BonusPoints1, row.BonusPoints2, true),
	}
}

// MatchHistoryResult is the immutable partial the match-history
// section yields. History preserves upstream emission order per
// member.
type MatchHistoryResult struct {
	History map[string][]snapshot.MatchHistoryEntry
	Limit   int
}

func ParseMatchHistory(raw []byte) (MatchHistoryResult, error) {
	var envelope rawMatchHistory
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return MatchHistoryResult{}, crerr.Wrap(err, "decode match history payload")
	}

	result := MatchHistoryResult{
		History: map[string][]snapshot.MatchHistoryEntry{},
		Limit:   envelope.MatchHistorySize,
	}

	for _, match := range envelope.History {
		var outcome any
		switch {
		case match.GameWon == nil:
			outcome = ""
		case *match.GameWon:
			outcome = snapshot.ResultWin
		default:
			outcome = snapshot.ResultLoss
		}

		entry := snapshot.MatchHistoryEntry{
			Game: snapshot.GameLink{
				Path:       urlbuilder.PGCRURL(match.PgcrID),
				IsExternal: true,
				Result:     outcome,
				Name:       match.GameType,
				Label:      match.Map,
				EndDate:    machineFormat(match.DatePlayed),
			},
			Kills:   match.Kills,
			Assists: match.Assists,
			Deaths:  match.Deaths,
			Bonuses: parseBonuses(match.BonusPoints1, match.BonusPoints2, true),
			Score:   stats.Total(match.TotalScore),
		}

		id := match.MemberShipIDStr
		result.History[id] = append(result.History[id], entry)
	}

	return result, nil
}

// parseBonuses maps the two fixed bonus slots into tagged bonuses,
// dropping placeholder slots. A record with no games played reports
// -1 for each slot.
func parseBonuses(first, second rawBonus, hasPlayed bool) []snapshot.Bonus {
	slots := []rawBonus{first, second}
	out := make([]snapshot.Bonus, 0, len(slots))

	for i, slot := range slots {
		shortName := slot.ShortName
		if shortName == "" {
			shortName = fmt.Sprintf("Bonus %d", i+1)
		}

		kind := snapshot.BonusNormal
		switch shortName {
		case bonusNotApplicable:
			kind = snapshot.BonusNotApplicable
		case bonusToBeConfirmed:
			kind = snapshot.BonusToBeConfirmed
		}
		if kind != snapshot.BonusNormal {
			continue
		}

		count := int64(-1)
		if hasPlayed {
			count = slot.Points
		}

		out = append(out, snapshot.Bonus{
			ShortName: shortName,
			Count:     count,
			Kind:      kind,
		})
	}

	return out
}

func parseMemberIcon(icon string) string {
	avatarBase := bungieBaseURL + avatarPath
	if icon == "" || icon == avatarBase+defaultAvatarIcon {
		return ""
	}
	return strings.TrimPrefix(icon, avatarBase)
}

func memberPlatform(membershipType int) int {
	if membershipType == 0 {
		return platformDefault
	}
	return membershipType
}

func parseClanIcon(path string) string {
	return clanIconRegex.ReplaceAllString(path, "$1")
}

// timestampLayouts covers the formats upstream mixes across
// endpoints.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	snapshot.FormatDate,
}

func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// machineFormat renders an upstream timestamp in the snapshot's
// machine-readable format, passing unparseable values through.
func machineFormat(value string) string {
	parsed, ok := parseTimestamp(value)
	if !ok {
		return value
	}
	return parsed.Format(snapshot.FormatMachineReadable)
}
