// Package insight composes the credential, discovery, and aggregation layers
// into the two user-facing operations: the full report and check-new.
package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/asleep-ai/skills/internal/auth"
	"github.com/asleep-ai/skills/internal/config"
	"github.com/asleep-ai/skills/internal/discover"
	"github.com/asleep-ai/skills/internal/history"
	"github.com/asleep-ai/skills/internal/ledger"
	"github.com/asleep-ai/skills/internal/log"
	"github.com/asleep-ai/skills/internal/sleephub"
	"github.com/asleep-ai/skills/internal/ui"
)

// Options selects what one invocation should do.
type Options struct {
	// Days is the lookback window (default 7). It also bounds the
	// first-run flood: with an empty ledger every session in the window
	// is reported, and nothing older.
	Days int
	// CheckNew suppresses output entirely unless the window contains a
	// session the ledger has not recorded yet.
	CheckNew bool
	// Force emits and records a report even when nothing is new.
	Force bool
}

// App is the per-invocation context object: every collaborator is
// constructed once in New and threaded explicitly, so there is no
// process-wide mutable state.
type App struct {
	cfg      *config.Config
	loc      *time.Location
	creds    *auth.Store
	client   *sleephub.Client
	refresh  *auth.Refresher
	ledger   *ledger.Store
	history  *history.Store
	logger   *log.Logger
	runID    string

	// Out receives the machine-readable report; stdout in production.
	Out io.Writer
	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// New constructs the App for one invocation against the given state
// directory.
func New(cfg *config.Config, stateDir string) (*App, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	logger, err := log.NewLogger(stateDir)
	if err != nil {
		return nil, err
	}

	hist, err := history.Open(stateDir)
	if err != nil {
		return nil, err
	}

	client := sleephub.NewClient(cfg.APIBase, time.Duration(cfg.HTTPTimeoutSeconds)*time.Second)
	creds := auth.NewStore(stateDir)

	app := &App{
		cfg:     cfg,
		loc:     loc,
		creds:   creds,
		client:  client,
		refresh: auth.NewRefresher(creds, client),
		ledger:  ledger.NewStore(stateDir),
		history: hist,
		logger:  logger,
		runID:   uuid.New().String(),
		Out:     os.Stdout,
		Now:     time.Now,
	}
	app.refresh.OnRefresh = func(*auth.Credentials) {
		ui.Statusf("Token refreshed")
		_ = logger.Append(log.LogEvent{Event: log.EventTokenRefreshed, RunID: app.runID})
	}
	return app, nil
}

// Close releases the history store.
func (a *App) Close() error {
	return a.history.Close()
}

// Credentials exposes the credential store for the setup command.
func (a *App) Credentials() *auth.Store {
	return a.creds
}

// Run executes one report or check-new invocation.
func (a *App) Run(ctx context.Context, opts Options) error {
	if opts.Days <= 0 {
		opts.Days = 7
	}
	now := a.Now().In(a.loc)

	ui.Statusf("Fetching %d days of sleep data...", opts.Days)
	sessions, err := a.fetchWindow(ctx, now, opts.Days)
	if err != nil {
		return err
	}

	if !opts.CheckNew && !opts.Force {
		// Plain report: emit and leave all state untouched.
		return a.emit(BuildReport(sessions, a.loc, now))
	}

	led := a.ledger.Load()
	res := discover.Discover(sessions, led, now.UTC())

	if len(res.New) == 0 && !opts.Force {
		ui.Statusf("No new sessions, skipping.")
		_ = a.logger.Append(log.LogEvent{
			Event: log.EventCheckSkipped,
			RunID: a.runID,
			Days:  opts.Days,
		})
		// Still commit the absorbed ids and check timestamp; the id set
		// is unchanged, so this cannot suppress a future report.
		if len(sessions) > 0 {
			if err := a.ledger.Save(res.Updated); err != nil {
				return err
			}
		}
		return nil
	}

	newIDs := make([]string, 0, len(res.New))
	for _, s := range res.New {
		newIDs = append(newIDs, s.ID)
	}
	if len(newIDs) > 0 {
		ui.Statusf("New sessions detected: %d", len(newIDs))
	}

	// Report first, commit last: a crash between the two re-reports these
	// sessions next run instead of dropping them.
	if err := a.emit(BuildReport(sessions, a.loc, now)); err != nil {
		return err
	}

	if err := a.ledger.Save(res.Updated); err != nil {
		return fmt.Errorf("committing ledger: %w", err)
	}
	if len(newIDs) > 0 {
		if err := a.history.Record(a.runID, newIDs, opts.Days, now.UTC()); err != nil {
			ui.Errorf("Warning: recording history: %v", err)
		}
	}

	_ = a.logger.Append(log.LogEvent{
		Event:      log.EventSessionsDiscovered,
		RunID:      a.runID,
		SessionIDs: newIDs,
		Sessions:   len(sessions),
		Days:       opts.Days,
	})
	return nil
}

// fetchWindow lists the sessions of the trailing window and backfills
// metrics for any session the service has listed but not yet analyzed. The
// whole fetch counts as one logical operation for the refresh bound.
func (a *App) fetchWindow(ctx context.Context, now time.Time, days int) ([]sleephub.Session, error) {
	since := now.AddDate(0, 0, -(days - 1))

	var sessions []sleephub.Session
	err := a.refresh.Do(ctx, func(creds *auth.Credentials) error {
		list, err := a.client.ListSessions(ctx, creds.AccessToken, creds.UserID, since, now, a.cfg.Timezone)
		if err != nil {
			return err
		}

		for i := range list.Sessions {
			s := &list.Sessions[i]
			if s.ID == "" || s.HasMetrics() {
				continue
			}
			detail, err := a.client.SessionDetail(ctx, creds.AccessToken, creds.UserID, s.ID)
			if err != nil {
				if errors.Is(err, sleephub.ErrTokenInvalid) {
					return err
				}
				// Analysis may simply not exist yet; keep the bare
				// session and move on.
				continue
			}
			detail.ID = s.ID
			*s = *detail
		}

		sessions = list.Sessions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// emit marshals the report fully before writing, so the stdout contract
// holds: either one complete JSON document or nothing.
func (a *App) emit(rep *Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}
	if _, err := fmt.Fprintln(a.Out, string(data)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	_ = a.logger.Append(log.LogEvent{Event: log.EventReportGenerated, RunID: a.runID})
	return nil
}

// HistoryView is the --history document: the ledger's reported ids plus the
// recent generation log. Reading it never mutates state.
type HistoryView struct {
	ProcessedSessions []string             `json:"processed_sessions"`
	History           []history.Generation `json:"history"`
	LastCheckedAt     time.Time            `json:"last_checked_at,omitzero"`
}

// PrintHistory writes the history document to Out.
func (a *App) PrintHistory() error {
	led := a.ledger.Load()

	gens, err := a.history.Recent(a.cfg.HistoryLimit)
	if err != nil {
		return err
	}
	if gens == nil {
		gens = []history.Generation{}
	}
	ids := led.SeenSessionIDs
	if ids == nil {
		ids = []string{}
	}

	view := HistoryView{
		ProcessedSessions: ids,
		History:           gens,
		LastCheckedAt:     led.LastCheckedAt,
	}
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling history: %w", err)
	}
	_, err = fmt.Fprintln(a.Out, string(data))
	return err
}
