package usecase

import (
	"fmt"
	"strconv"

	"github.com/valyala/bytebufferpool"

	"github.com/clanwarfare/snapshot/internal/domain/snapshot"
)

// summarize renders the post-run report block: per-section record
// counts, with flag-gated sections marked disabled when they were
// skipped.
func (s *FetchService) summarize(snap *snapshot.Snapshot) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	memberMedals, clanMedals := 0, 0
	for _, m := range snap.Medals {
		switch m.Type {
		case snapshot.MedalTypeClan:
			clanMedals++
		case snapshot.MedalTypeMember:
			memberMedals++
		}
	}

	line := func(label, value string) {
		_, _ = buf.WriteString(label)
		_, _ = buf.WriteString(": ")
		_, _ = buf.WriteString(value)
		_ = buf.WriteByte('\n')
	}

	currentEvent := "none"
	if snap.CurrentEventID != nil {
		currentEvent = strconv.FormatInt(*snap.CurrentEventID, 10)
	}

	matchHistory := "disabled"
	if s.cfg.EnableMatchHistory {
		matchHistory = fmt.Sprintf("%d [limit: %d]", len(snap.MatchHistory), snap.MatchHistoryLimit)
	}

	previousEvent, previousBoards := "disabled", "disabled"
	if s.cfg.EnablePreviousLeaderboards {
		previousEvent = "none"
		if snap.PreviousEventID != nil {
			previousEvent = strconv.FormatInt(*snap.PreviousEventID, 10)
		}
		previousBoards = strconv.Itoa(len(snap.PreviousClanLeaderboard))
	}

	line("Platform API status", strconv.Itoa(snap.APIStatus.BungieStatus))
	line("Enrollment open", strconv.FormatBool(snap.APIStatus.EnrollmentOpen))
	line("Alert", snap.APIStatus.Alert)
	line("Clans", strconv.Itoa(len(snap.Clans)))
	line("Members", strconv.Itoa(len(snap.Members)))
	line("Members - Last checked", strconv.Itoa(len(snap.LastChecked)))
	line("Events", strconv.Itoa(len(snap.Events)))
	line("Events - Leaderboards", strconv.Itoa(len(snap.Leaderboards)))
	line("Modifiers", strconv.Itoa(len(snap.Modifiers)))
	line("Medals - Member", strconv.Itoa(memberMedals))
	line("Medals - Clan", strconv.Itoa(clanMedals))
	line("Current event", currentEvent)
	line("Current event - Leaderboard", strconv.Itoa(len(snap.CurrentLeaderboards)))
	line("Current event - Clan leaderboards", strconv.Itoa(len(snap.CurrentClanLeaderboard)))
	line("Current event - Match history", matchHistory)
	line("Previous event", previousEvent)
	line("Previous event - Clan leaderboards", previousBoards)

	return buf.String()
}
