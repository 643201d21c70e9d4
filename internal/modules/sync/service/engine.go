package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	banlogDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/banlog/domain"
	banlogRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/banlog/repository"
	botDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/bot/domain"
	botRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/bot/repository"
	enforcementDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/enforcement/domain"
	statsRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/stats/repository"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/samber/oops"
)

type BotFeed interface {
	FetchBotNames(ctx context.Context) ([]string, error)
}

type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

type BotSweeper interface {
	SweepBot(ctx context.Context, name string) (enforcementDomain.SweepResult, error)
}

// Announcer tells subscribed channels about a freshly banned bot.
type Announcer interface {
	Announce(ctx context.Context, name string) error
}

// IngestResult tells what happened to one candidate name.
type IngestResult struct {
	Name      string
	AccountID string
	Dead      bool
	Known     bool // already in the alive registry
	Sweep     enforcementDomain.SweepResult
}

// Engine keeps the bot registry in sync with the public bot feed and bans every
// newly discovered bot in all joined channels.
type Engine struct {
	cfg      *config.Config
	feed     BotFeed
	resolver Resolver
	bots     botRepo.Repository
	sweeper  BotSweeper
	stats    statsRepo.Repository
	banlog   banlogRepo.Repository
	announce Announcer

	running atomic.Bool
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(
	cfg *config.Config,
	feed BotFeed,
	resolver Resolver,
	bots botRepo.Repository,
	sweeper BotSweeper,
	stats statsRepo.Repository,
	banlog banlogRepo.Repository,
) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:      cfg,
		feed:     feed,
		resolver: resolver,
		bots:     bots,
		sweeper:  sweeper,
		stats:    stats,
		banlog:   banlog,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetAnnouncer attaches the alert sender. It is optional.
func (e *Engine) SetAnnouncer(a Announcer) {
	e.announce = a
}

// Start runs a sync immediately and then on every interval until Stop.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.loop()
}

func (e *Engine) Stop() {
	e.cancel()
	e.wg.Wait()
}

func (e *Engine) loop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.SyncPeriod())
	defer ticker.Stop()

	e.runLogged()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.runLogged()
		}
	}
}

func (e *Engine) runLogged() {
	if err := e.RunOnce(e.ctx); err != nil {
		slog.Error("Bot sync failed", "error", err)
	}
}

// RunOnce performs one sync cycle. A feed failure skips the cycle entirely;
// per-bot failures are logged and never abort it.
func (e *Engine) RunOnce(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.ErrSyncInProgress
	}
	defer e.running.Store(false)

	started := e.now()
	names, err := e.feed.FetchBotNames(ctx)
	if err != nil {
		syncRuns.WithLabelValues("feed_error").Inc()
		return oops.With("context", "failed to fetch bot feed").Wrap(err)
	}

	fresh, err := e.bots.Unseen(names)
	if err != nil {
		syncRuns.WithLabelValues("storage_error").Inc()
		return oops.With("context", "failed to read bot ledger").Wrap(err)
	}
	slog.Info("Bot feed fetched", "candidates", len(names), "new", len(fresh))

	for _, name := range fresh {
		if ctx.Err() != nil {
			break
		}
		if _, err := e.Ingest(ctx, name); err != nil {
			slog.Error("Failed to ingest bot", "bot", name, "error", err)
		}
	}

	if err := e.stats.SetLastSync(e.now()); err != nil {
		slog.Error("Failed to record sync time", "error", err)
	}
	syncRuns.WithLabelValues("ok").Inc()
	slog.Info("Bot sync finished", "new", len(fresh), "duration", e.now().Sub(started))
	return nil
}

// Ingest registers one bot and bans it everywhere. An unresolvable name goes to the
// dead registry; a transient resolve error leaves the name unseen so the next cycle
// retries it.
func (e *Engine) Ingest(ctx context.Context, name string) (*IngestResult, error) {
	name = botDomain.NormalizeName(name)
	result := &IngestResult{Name: name}

	id, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		if !stderrors.Is(err, errors.ErrAccountNotFound) {
			return nil, oops.With("bot", name, "context", "failed to resolve bot").Wrap(err)
		}

		result.Dead = true
		if err := e.bots.MarkDead(name, ""); err != nil {
			return nil, oops.With("bot", name).Wrap(err)
		}
		botsIngested.WithLabelValues("dead").Inc()
		slog.Info("Bot account not found, recorded as dead", "bot", name)
		return result, e.bots.MarkSeen(name)
	}

	result.AccountID = id
	known, err := e.bots.GetBot(name)
	if err != nil && !stderrors.Is(err, errors.ErrBotNotFound) {
		return nil, oops.With("bot", name).Wrap(err)
	}
	result.Known = known != nil && known.Status == botDomain.StatusAlive

	if err := e.bots.AddAlive(name, id); err != nil {
		return nil, oops.With("bot", name).Wrap(err)
	}
	if err := e.bots.MarkSeen(name); err != nil {
		return nil, oops.With("bot", name).Wrap(err)
	}
	botsIngested.WithLabelValues("alive").Inc()

	sweep, err := e.sweeper.SweepBot(ctx, name)
	result.Sweep = sweep
	if err != nil {
		return result, oops.With("bot", name, "context", "bot sweep interrupted").Wrap(err)
	}
	if sweep.TargetGone {
		result.Dead = true
		return result, nil
	}
	// a deep-ban of a registered bot re-applies bans but is not a new ban
	if result.Known {
		slog.Info("Known bot re-banned", "bot", name, "channels", sweep.Attempted, "banned", sweep.Succeeded)
		return result, nil
	}

	if _, err := e.stats.RecordBan(name); err != nil {
		slog.Error("Failed to update ban counters", "bot", name, "error", err)
	}
	entry := &banlogDomain.Entry{
		Name:      name,
		AccountID: id,
		BannedAt:  e.now(),
		Channels:  sweep.Attempted,
		Banned:    sweep.Succeeded,
		Evicted:   sweep.Evicted,
	}
	if err := e.banlog.Append(entry); err != nil {
		slog.Error("Failed to append ban log", "bot", name, "error", err)
	}
	slog.Info("New bot banned", "bot", name, "channels", sweep.Attempted, "banned", sweep.Succeeded, "evicted", len(sweep.Evicted))

	if e.announce != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := e.announce.Announce(e.ctx, name); err != nil {
				slog.Warn("Limerick alert failed", "bot", name, "error", err)
			}
		}()
	}

	return result, nil
}

// Wait blocks until background alerts started by Ingest are done.
func (e *Engine) Wait() {
	e.wg.Wait()
}
