// Package urlbuilder maps domain entities to the canonical site paths
// the static-site generator publishes them under.
package urlbuilder

import "fmt"

const (
	// EventRootURL lists every event.
	EventRootURL = "/events/"
	// CurrentEventRootURL is the distinguished path of the event that
	// holds the current designation after tense reconciliation.
	CurrentEventRootURL = "/current/"

	pgcrBaseURL = "https://www.bungie.net/en/PGCR/"
)

func ClanURL(clanID string) string {
	return fmt.Sprintf("/clans/%s/", clanID)
}

func ProfileURL(clanID, memberID string) string {
	return fmt.Sprintf("/clans/%s/members/%s/", clanID, memberID)
}

// EventProfileURL is a member profile scoped to one historical event.
func EventProfileURL(clanID, memberID string, eventID int64) string {
	return fmt.Sprintf("/events/%d/clans/%s/members/%s/", eventID, clanID, memberID)
}

// CurrentProfileURL is a member profile scoped to the current event.
func CurrentProfileURL(clanID, memberID string) string {
	return fmt.Sprintf("%sclans/%s/members/%s/", CurrentEventRootURL, clanID, memberID)
}

func EventURL(eventID int64) string {
	return fmt.Sprintf("/events/%d/", eventID)
}

// PGCRURL is the external post-game report permalink for a match.
func PGCRURL(pgcrID int64) string {
	return fmt.Sprintf("%s%d", pgcrBaseURL, pgcrID)
}
