package urlbuilder

import "testing"

func TestBuilders(t *testing.T) {
	t.Parallel()

	cases := []struct {
		got  string
		want string
	}{
		{ClanURL("123"), "/clans/123/"},
		{ProfileURL("123", "456"), "/clans/123/members/456/"},
		{EventProfileURL("123", "456", 99), "/events/99/clans/123/members/456/"},
		{CurrentProfileURL("123", "456"), "/current/clans/123/members/456/"},
		{EventURL(99), "/events/99/"},
		{PGCRURL(8675309), "https://www.bungie.net/en/PGCR/8675309"},
	}

	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("url mismatch: got=%q want=%q", c.got, c.want)
		}
	}
}
