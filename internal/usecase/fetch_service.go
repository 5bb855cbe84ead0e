package usecase

import (
	"context"
	"fmt"
	"os"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/clanwarfare/snapshot/external/warfare"
	"github.com/clanwarfare/snapshot/internal/domain/medal"
	"github.com/clanwarfare/snapshot/internal/domain/snapshot"
	"github.com/clanwarfare/snapshot/internal/platform/cache"
	"github.com/clanwarfare/snapshot/internal/platform/logging"
)

// Permanent skip reasons for sections kept in the graph after the
// hosted service wound down.
const (
	skipPlatformStatus = "platform status probe permanently disabled"
	skipEnrollment     = "enrollment permanently closed"
	skipAlert          = "alert permanently set"
)

// farewellAlert is the standing status banner shown since the final
// hosted event.
const farewellAlert = `It's with a heavy heart we announce that we have hosted our last event. <a href="/farewell">For more information please read our farewell statement</a>. Thanks for the memories Guardians.`

// PlatformProber reports the game platform's self-declared API status
// code.
type PlatformProber interface {
	Status(ctx context.Context) (int, error)
}

type FetchConfig struct {
	MaxWorkers                 int
	EnableMatchHistory         bool
	EnablePreviousLeaderboards bool
	// ArtifactDirs are removed wholesale when a run fails, so no
	// partial build output survives.
	ArtifactDirs []string
	// Defaults seeds apiStatus for the permanently skipped sections.
	Defaults snapshot.APIStatus
}

// DefaultAPIStatus returns the standing apiStatus values: the
// farewell alert, a disabled platform code and closed enrollment.
func DefaultAPIStatus(disabledStatusCode int) snapshot.APIStatus {
	return snapshot.APIStatus{
		Alert:          farewellAlert,
		BungieStatus:   disabledStatusCode,
		EnrollmentOpen: false,
	}
}

// FetchService drives one snapshot run: phases in order, sections
// within a phase concurrent, partials applied in declaration order.
type FetchService struct {
	cfg    FetchConfig
	store  *cache.Store
	prober PlatformProber
	logger *logging.Logger

	now func() time.Time
}

func NewFetchService(cfg FetchConfig, store *cache.Store, prober PlatformProber, logger *logging.Logger) (*FetchService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: cache store is required", ErrDependencyUnavailable)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FetchService{
		cfg:    cfg,
		store:  store,
		prober: prober,
		logger: logger,
		now:    time.Now,
	}, nil
}

// runState carries the last-updated maps between phases. cached holds
// the copy from before this run, current the live one; a section
// refetches its endpoint when the two disagree for its operation.
type runState struct {
	cached  map[string]map[string]string
	current map[string]map[string]string
}

// needsRefresh reports whether group/op changed since the cached
// last-updated copy. An absent cached group forces a refresh.
func (st *runState) needsRefresh(group, op string) bool {
	cached, ok := st.cached[group]
	if !ok {
		return true
	}
	return cached[op] != st.current[group][op]
}

// Run performs one full fetch. On any section failure the artifact
// directories are removed and no snapshot is returned.
func (s *FetchService) Run(ctx context.Context) (*snapshot.Snapshot, error) {
	ctx, span := startFetchSpan(ctx, "usecase.FetchService.Run")
	defer span.End()

	snap := snapshot.New(s.now(), s.cfg.Defaults)
	state := &runState{}

	phases := []phase{
		{name: "last-updated", sections: []section{s.lastUpdatedSection(state)}},
		{name: "platform-status", sections: []section{s.platformStatusSection()}},
		{name: "api-sections", sections: s.apiSections(state, snap.APIStatus.UpdatedDate)},
	}

	for _, ph := range phases {
		if err := s.runPhase(ctx, ph, snap); err != nil {
			s.removeArtifacts(ctx)
			return nil, crerr.Wrapf(err, "phase %s", ph.name)
		}
	}

	s.logger.InfoContext(ctx, "data retrieved", "summary", s.summarize(snap))
	return snap, nil
}

func (s *FetchService) removeArtifacts(ctx context.Context) {
	for _, dir := range s.cfg.ArtifactDirs {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			s.logger.WarnContext(ctx, "failed to remove artifact directory", "dir", dir, "error", err)
		}
	}
}

// lastUpdatedSection loads the cached copy of the timestamp map (any
// read failure degrades to an empty map, forcing full refresh) and
// fetches the live copy, which must succeed.
func (s *FetchService) lastUpdatedSection(state *runState) section {
	return section{
		name: "last updated",
		run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
			state.cached = map[string]map[string]string{}
			if raw, err := s.store.Read(ctx, warfare.EndpointLastUpdated); err == nil {
				if cached, parseErr := warfare.ParseLastUpdated(raw); parseErr == nil {
					state.cached = cached
				}
			} else if !crerr.Is(err, cache.ErrNotCached) {
				s.logger.WarnContext(ctx, "discarding unreadable last-updated cache", "error", err)
			}

			raw, err := s.store.Refresh(ctx, warfare.EndpointLastUpdated)
			if err != nil {
				return nil, err
			}
			current, err := warfare.ParseLastUpdated(raw)
			if err != nil {
				return nil, err
			}
			state.current = current
			return nil, nil
		},
	}
}

func (s *FetchService) platformStatusSection() section {
	return section{
		name: "platform status",
		skip: func() string { return skipPlatformStatus },
		run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
			if s.prober == nil {
				return nil, fmt.Errorf("%w: platform prober is not configured", ErrDependencyUnavailable)
			}
			code, err := s.prober.Status(ctx)
			if err != nil {
				return nil, err
			}
			return func(snap *snapshot.Snapshot) {
				snap.APIStatus.BungieStatus = code
			}, nil
		},
	}
}

func (s *FetchService) apiSections(state *runState, updatedDate string) []section {
	return []section{
		{
			name: "enrollment open",
			skip: func() string { return skipEnrollment },
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.Refresh(ctx, warfare.EndpointEnrollmentOpen)
				if err != nil {
					return nil, err
				}
				open, err := warfare.ParseEnrollmentOpen(raw)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.APIStatus.EnrollmentOpen = open
				}, nil
			},
		},
		{
			name: "alert",
			skip: func() string { return skipAlert },
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.Refresh(ctx, warfare.EndpointCurrentAlert)
				if err != nil {
					return nil, err
				}
				alert, err := warfare.ParseAlert(raw)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.APIStatus.Alert = alert
				}, nil
			},
		},
		{
			name: "clans",
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointClans,
					state.needsRefresh(warfare.GroupClan, warfare.OpGetAllClans))
				if err != nil {
					return nil, err
				}
				clans, err := warfare.ParseClans(raw)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.Clans = append(snap.Clans, clans...)
				}, nil
			},
		},
		{
			name: "members",
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointMembers,
					state.needsRefresh(warfare.GroupClan, warfare.OpGetAllMembers))
				if err != nil {
					return nil, err
				}
				members, err := warfare.ParseMembers(raw)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.Members = append(snap.Members, members...)
				}, nil
			},
		},
		{
			name: "events",
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointEvents,
					state.needsRefresh(warfare.GroupTournament, warfare.OpGetAllEvents))
				if err != nil {
					return nil, err
				}
				result, err := warfare.ParseEvents(raw, updatedDate)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.Events = append(snap.Events, result.Events...)
					if result.CurrentEventID != nil {
						snap.CurrentEventID = result.CurrentEventID
						snap.CurrentEventStatsGamesThreshold = result.CurrentEventStatsGamesThreshold
					}
					for eventID, boards := range result.Leaderboards {
						snap.Leaderboards[eventID] = boards
					}
				}, nil
			},
		},
		{
			name: "modifiers",
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointModifiers,
					state.needsRefresh(warfare.GroupComponent, warfare.OpGetAllModifiers))
				if err != nil {
					return nil, err
				}
				modifiers, err := warfare.ParseModifiers(raw)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.Modifiers = append(snap.Modifiers, modifiers...)
				}, nil
			},
		},
		{
			name: "member medals",
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointMemberMedals,
					state.needsRefresh(warfare.GroupComponent, warfare.OpGetAllMedals))
				if err != nil {
					return nil, err
				}
				parsed, err := medal.Parse(raw, snapshot.MedalTypeMember, 0)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.Medals = append(snap.Medals, parsed.Medals...)
				}, nil
			},
		},
		{
			name: "clan medals",
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointClanMedals,
					state.needsRefresh(warfare.GroupComponent, warfare.OpGetAllClanMedals))
				if err != nil {
					return nil, err
				}
				parsed, err := medal.Parse(raw, snapshot.MedalTypeClan, 0)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.Medals = append(snap.Medals, parsed.Medals...)
				}, nil
			},
		},
		{
			name: "current event leaderboard",
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointLeaderboard,
					state.needsRefresh(warfare.GroupLeaderboard, warfare.OpGetLeaderboard))
				if err != nil {
					return nil, err
				}
				boards, err := warfare.ParseDivisionLeaderboards(raw)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.CurrentLeaderboards = append(snap.CurrentLeaderboards, boards...)
				}, nil
			},
		},
		{
			name: "current event clan leaderboards",
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointClanLeaderboard,
					state.needsRefresh(warfare.GroupLeaderboard, warfare.OpGetClanLeaderboard))
				if err != nil {
					return nil, err
				}
				result, err := warfare.ParseClanLeaderboard(raw, nil)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.CurrentClanLeaderboard = result.Entries
					mergeLastChecked(snap, result.LastChecked)
				}, nil
			},
		},
		{
			name: "current event match history",
			skip: func() string {
				if !s.cfg.EnableMatchHistory {
					return "ENABLE_MATCH_HISTORY=false"
				}
				return ""
			},
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointMatchHistory,
					state.needsRefresh(warfare.GroupLeaderboard, warfare.OpGetAllPlayersHistory))
				if err != nil {
					return nil, err
				}
				result, err := warfare.ParseMatchHistory(raw)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.MatchHistory = result.History
					snap.MatchHistoryLimit = result.Limit
				}, nil
			},
		},
		{
			name: "previous event clan leaderboards",
			skip: func() string {
				if !s.cfg.EnablePreviousLeaderboards {
					return "ENABLE_PREVIOUS_LEADERBOARDS=false"
				}
				return ""
			},
			run: func(ctx context.Context) (func(*snapshot.Snapshot), error) {
				raw, err := s.store.LoadOrRefresh(ctx, warfare.EndpointPreviousClanLeaderboard,
					state.needsRefresh(warfare.GroupLeaderboard, warfare.OpGetPreviousClanLeaderboard))
				if err != nil {
					return nil, err
				}
				eventID, result, err := warfare.ParsePreviousClanLeaderboard(raw)
				if err != nil {
					return nil, err
				}
				return func(snap *snapshot.Snapshot) {
					snap.PreviousEventID = &eventID
					snap.PreviousClanLeaderboard = result.Entries
					mergeLastChecked(snap, result.LastChecked)
				}, nil
			},
		},
	}
}

// mergeLastChecked folds one section's timestamps into the snapshot,
// keeping the latest value per key. Timestamps are in the
// machine-readable format, so string comparison orders them.
func mergeLastChecked(snap *snapshot.Snapshot, checked map[string]string) {
	for id, stamp := range checked {
		if existing, ok := snap.LastChecked[id]; !ok || stamp > existing {
			snap.LastChecked[id] = stamp
		}
	}
}
