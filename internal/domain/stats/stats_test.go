package stats

import "testing"

func TestTotal_AppliesUpstreamScaling(t *testing.T) {
	t.Parallel()

	if got := Total(125000); got != 1250 {
		t.Fatalf("total mismatch: got=%d want=1250", got)
	}
	if got := Total(149); got != 1 {
		t.Fatalf("total should round to nearest: got=%d want=1", got)
	}
	if got := Total(150); got != 2 {
		t.Fatalf("total should round half up: got=%d want=2", got)
	}
	if got := Total(0); got != 0 {
		t.Fatalf("zero score mismatch: got=%d want=0", got)
	}
}

func TestKD_ZeroDeathsReturnsKills(t *testing.T) {
	t.Parallel()

	if got := KD(5, 0); got != 5 {
		t.Fatalf("zero-deaths guard failed: got=%v want=5", got)
	}
	if got := KD(7, 2); got != 3.5 {
		t.Fatalf("kd mismatch: got=%v want=3.5", got)
	}
	if got := KD(10, 3); got != 3.33 {
		t.Fatalf("kd rounding mismatch: got=%v want=3.33", got)
	}
}

func TestKDA_ZeroDeathsGuard(t *testing.T) {
	t.Parallel()

	// (5 + 3/2) with no deaths must not divide by zero.
	if got := KDA(5, 0, 3); got != 6.5 {
		t.Fatalf("zero-deaths guard failed: got=%v want=6.5", got)
	}
	if got := KDA(6, 4, 4); got != 2 {
		t.Fatalf("kda mismatch: got=%v want=2", got)
	}
}

func TestPPG_RoundsToNearestPoint(t *testing.T) {
	t.Parallel()

	if got := PPG(3, 100); got != 33 {
		t.Fatalf("ppg mismatch: got=%d want=33", got)
	}
	if got := PPG(2, 25); got != 13 {
		t.Fatalf("ppg rounding mismatch: got=%d want=13", got)
	}
}

func TestRanking_OrdinalsAndSentinels(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		-1:  "-",
		0:   "-",
		1:   "1st",
		2:   "2nd",
		3:   "3rd",
		4:   "4th",
		11:  "11th",
		12:  "12th",
		13:  "13th",
		21:  "21st",
		102: "102nd",
		111: "111th",
	}

	for rank, want := range cases {
		if got := Ranking(rank); got != want {
			t.Fatalf("ranking(%d) mismatch: got=%q want=%q", rank, got, want)
		}
	}
}
