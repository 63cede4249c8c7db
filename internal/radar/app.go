// Package radar wires the detection pipeline together: gateway ingress,
// mention recording, the trending loop, alerting, and retention.
package radar

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"alpha-radar/internal/cooldown"
	"alpha-radar/internal/detector"
	"alpha-radar/internal/domain"
	"alpha-radar/internal/observability"
	"alpha-radar/internal/storage"
	"alpha-radar/internal/trending"
)

// retentionTick is how often the retention loop wakes up. The retention
// cutoff itself is configured separately.
const retentionTick = time.Hour

// recordTimeout bounds one ingress write so a stalled database cannot
// wedge the gateway read loop forever.
const recordTimeout = 5 * time.Second

// Notifier delivers one formatted alert.
type Notifier interface {
	Send(ctx context.Context, t *domain.TrendingToken) error
}

// Transport reports the gateway stream state for health checks.
type Transport interface {
	Connected() bool
}

// Config holds the orchestrator's loop settings.
type Config struct {
	CheckInterval   time.Duration
	RetentionAge    time.Duration
	MinMsgLength    int
	IgnoreForwarded bool
}

// Deps are the collaborators the orchestrator drives. Archive may be nil.
type Deps struct {
	Registry  *detector.Registry
	Mentions  storage.MentionStore
	Alerts    storage.AlertStore
	Archive   storage.ArchiveStore
	Engine    *trending.Engine
	Gate      *cooldown.Gate
	Notifier  Notifier
	Transport Transport
	Metrics   *observability.Metrics
	Logger    *slog.Logger
}

// App is the radar orchestrator.
type App struct {
	cfg  Config
	deps Deps

	logger    *slog.Logger
	startedAt time.Time
	now       func() time.Time

	messagesProcessed atomic.Int64
	mentionsRecorded  atomic.Int64
	alertsSent        atomic.Int64

	stop    chan struct{}
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// NewApp builds the orchestrator. Call Start to launch the loops and
// register HandleMessage as the gateway message handler.
func NewApp(cfg Config, deps Deps) *App {
	return &App{
		cfg:       cfg,
		deps:      deps,
		logger:    deps.Logger.With("component", "radar"),
		startedAt: time.Now().UTC(),
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

// Start launches the trending and retention loops.
func (a *App) Start(ctx context.Context) {
	a.wg.Add(2)
	go a.trendingLoop(ctx)
	go a.retentionLoop(ctx)
	a.logger.Info("radar started",
		"check_interval", a.cfg.CheckInterval,
		"retention_age", a.cfg.RetentionAge,
		"detectors", a.deps.Registry.ChainNames())
}

// HandleMessage is the gateway ingress path. Each message passes the
// pre-filters, runs through every detector, and has its matches recorded.
// Storage failures drop the affected mention; the stream keeps flowing.
func (a *App) HandleMessage(ev domain.MessageEvent) {
	if len(ev.Text) < a.cfg.MinMsgLength {
		return
	}
	if a.cfg.IgnoreForwarded && ev.Forwarded {
		return
	}

	a.messagesProcessed.Add(1)
	a.deps.Metrics.MessagesProcessed.Inc()

	matches := a.deps.Registry.Extract(ev.Text, ev.ChatID, ev.MessageID)
	if len(matches) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	for _, m := range matches {
		inserted, err := a.deps.Mentions.Record(ctx, &m)
		if err != nil {
			a.logger.Warn("mention record failed",
				"contract", m.Contract, "chain", m.Chain, "error", err)
			a.deps.Metrics.MentionsRecorded.WithLabelValues(m.Chain, "failed").Inc()
			continue
		}
		if inserted {
			a.mentionsRecorded.Add(1)
			a.deps.Metrics.MentionsRecorded.WithLabelValues(m.Chain, "inserted").Inc()
			a.logger.Debug("mention recorded",
				"contract", m.Contract, "chain", m.Chain, "chat_id", m.ChatID)
		} else {
			a.deps.Metrics.MentionsRecorded.WithLabelValues(m.Chain, "duplicate").Inc()
		}
	}
}

func (a *App) trendingLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.scanOnce(ctx)
		case <-a.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// scanOnce runs one trending cycle: scan, cooldown gate, notify, audit.
func (a *App) scanOnce(ctx context.Context) {
	start := a.now()

	tokens, err := a.deps.Engine.Scan(ctx)
	a.deps.Metrics.ScanDuration.Observe(a.now().Sub(start).Seconds())
	if err != nil {
		// Transient storage errors surface here; the next tick retries.
		a.logger.Warn("trending scan failed", "error", err)
		return
	}

	a.publishCandidateGauges(tokens)

	for _, t := range tokens {
		if !a.deps.Gate.Admit(t.Contract) {
			a.deps.Metrics.AlertsSuppressed.Inc()
			a.logger.Debug("alert suppressed by cooldown", "contract", t.Contract)
			continue
		}

		if err := a.deps.Notifier.Send(ctx, t); err != nil {
			// No history row for an alert that never went out.
			a.logger.Warn("alert not delivered", "contract", t.Contract, "error", err)
			continue
		}
		a.alertsSent.Add(1)
		a.deps.Metrics.AlertsSent.Inc()

		a.recordAlert(ctx, t)
	}

	a.deps.Gate.Prune()
	a.deps.Metrics.CooldownEntries.Set(float64(a.deps.Gate.Size()))
}

// recordAlert writes the audit row and, when configured, the analytics
// archive. Neither failure affects the already-delivered alert.
func (a *App) recordAlert(ctx context.Context, t *domain.TrendingToken) {
	rec := &domain.AlertRecord{
		Contract:    t.Contract,
		Chain:       t.Chain,
		Score:       t.Score,
		Mentions:    t.Mentions,
		UniqueChats: t.UniqueChats,
		Velocity:    t.Velocity,
		AlertedAt:   a.now().UTC(),
	}

	if err := a.deps.Alerts.Append(ctx, rec); err != nil {
		a.logger.Warn("alert history write failed", "contract", t.Contract, "error", err)
	}
	if a.deps.Archive != nil {
		if err := a.deps.Archive.Append(ctx, rec); err != nil {
			a.logger.Warn("alert archive write failed", "contract", t.Contract, "error", err)
		}
	}
}

// publishCandidateGauges resets every chain gauge, then sets the counts
// from this cycle so a chain that cooled off reads zero.
func (a *App) publishCandidateGauges(tokens []*domain.TrendingToken) {
	counts := make(map[string]int)
	for _, chain := range a.deps.Registry.ChainNames() {
		counts[chain] = 0
	}
	for _, t := range tokens {
		counts[t.Chain]++
	}
	for chain, n := range counts {
		a.deps.Metrics.TrendingTokens.WithLabelValues(chain).Set(float64(n))
	}
}

func (a *App) retentionLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(retentionTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.purgeOnce(ctx)
		case <-a.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// purgeOnce deletes mentions older than the retention cutoff.
func (a *App) purgeOnce(ctx context.Context) {
	cutoff := a.now().UTC().Add(-a.cfg.RetentionAge)

	deleted, err := a.deps.Mentions.Purge(ctx, cutoff)
	if err != nil {
		a.logger.Warn("retention purge failed", "error", err)
		return
	}
	if deleted > 0 {
		a.deps.Metrics.MentionsPurged.Add(float64(deleted))
		a.logger.Info("old mentions purged", "deleted", deleted, "cutoff", cutoff)
	}
}

// Status builds the health snapshot served by the health endpoint.
func (a *App) Status(ctx context.Context) domain.HealthStatus {
	return domain.HealthStatus{
		UptimeSeconds:      time.Since(a.startedAt).Seconds(),
		MessagesProcessed:  a.messagesProcessed.Load(),
		MentionsRecorded:   a.mentionsRecorded.Load(),
		AlertsSent:         a.alertsSent.Load(),
		DBConnected:        a.deps.Mentions.Healthy(ctx),
		TransportConnected: a.deps.Transport.Connected(),
		Detectors:          a.deps.Registry.ChainNames(),
	}
}

// Shutdown stops the loops and waits for them. Idempotent.
func (a *App) Shutdown() {
	if !a.stopped.CompareAndSwap(false, true) {
		return
	}
	close(a.stop)
	a.wg.Wait()
	a.logger.Info("radar stopped",
		"messages_processed", a.messagesProcessed.Load(),
		"mentions_recorded", a.mentionsRecorded.Load(),
		"alerts_sent", a.alertsSent.Load())
}
