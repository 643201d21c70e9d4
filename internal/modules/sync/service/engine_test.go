package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	accountService "github.com/reshetovitsme/binary-bouncer/internal/modules/account/service"
	banlogRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/banlog/repository"
	botRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/bot/repository"
	channelDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/repository"
	enforcementService "github.com/reshetovitsme/binary-bouncer/internal/modules/enforcement/service"
	statsRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/stats/repository"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/reshetovitsme/binary-bouncer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFeed struct {
	names []string
	err   error
	block chan struct{}
}

func (f *staticFeed) FetchBotNames(ctx context.Context) ([]string, error) {
	if f.block != nil {
		<-f.block
	}
	return f.names, f.err
}

type evictorStub struct{}

func (evictorStub) EvictByID(context.Context, string) (string, bool, error) { return "", false, nil }

type recordingAnnouncer struct {
	mu    sync.Mutex
	names []string
}

func (a *recordingAnnouncer) Announce(_ context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.names = append(a.names, name)
	return nil
}

type fixture struct {
	dir      string
	api      *testutil.FakeAPI
	bots     *botRepo.FileStorage
	channels *channelRepo.FileStorage
	stats    *statsRepo.FileStorage
	banlog   *banlogRepo.FileStorage
	engine   *Engine
}

func newFixture(t *testing.T, feed BotFeed, users map[string]string) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{BotID: "7", BotName: "binarybouncer", SyncInterval: 3600}

	bots, err := botRepo.NewFileStorage(dir)
	require.NoError(t, err)
	channels, err := channelRepo.NewFileStorage(dir)
	require.NoError(t, err)
	stats, err := statsRepo.NewFileStorage(dir)
	require.NoError(t, err)
	banlog, err := banlogRepo.NewFileStorage(dir)
	require.NoError(t, err)

	api := testutil.NewFakeAPI(users)
	resolver := accountService.New(api, 0)
	enforcer := enforcementService.NewEnforcer(cfg, resolver, api, bots, evictorStub{})
	sweeper := enforcementService.NewSweeper(cfg, enforcer, channels, bots, &testutil.Notifier{})

	return &fixture{
		dir:      dir,
		api:      api,
		bots:     bots,
		channels: channels,
		stats:    stats,
		banlog:   banlog,
		engine:   New(cfg, feed, resolver, bots, sweeper, stats, banlog),
	}
}

func TestRunOnceSplitsAliveAndDead(t *testing.T) {
	f := newFixture(t, &staticFeed{names: []string{"alpha", "beta"}}, map[string]string{"alpha": "1"})

	require.NoError(t, f.engine.RunOnce(context.Background()))

	alive, err := os.ReadFile(filepath.Join(f.dir, "alivebots.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"alpha": "1"}`, string(alive))

	dead, err := os.ReadFile(filepath.Join(f.dir, "deadbots.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"beta": null}`, string(dead))

	ledger, err := os.ReadFile(filepath.Join(f.dir, "banlist.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", string(ledger))

	snap, err := f.stats.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalBanned)
	assert.Equal(t, "alpha", snap.LastBanned)
	assert.NotEmpty(t, snap.LastSync)
}

func TestRunOnceIsIdempotent(t *testing.T) {
	f := newFixture(t, &staticFeed{names: []string{"alpha", "beta"}}, map[string]string{"alpha": "1", "beta": "2"})
	_, err := f.channels.AddChannel(&channelDomain.Channel{Name: "foo", AccountID: "99"})
	require.NoError(t, err)

	require.NoError(t, f.engine.RunOnce(context.Background()))
	require.NoError(t, f.engine.RunOnce(context.Background()))

	alive, err := f.bots.GetAlive()
	require.NoError(t, err)
	assert.Len(t, alive, 2)

	ledger, err := os.ReadFile(filepath.Join(f.dir, "banlist.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", string(ledger))
	assert.Len(t, f.api.CallsFor("ban"), 2, "known bots are not swept again")

	entries, err := f.banlog.Recent(0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunOnceBansNewBotInEveryChannel(t *testing.T) {
	f := newFixture(t, &staticFeed{names: []string{"alpha"}}, map[string]string{"alpha": "1"})
	for _, ch := range []*channelDomain.Channel{{Name: "a", AccountID: "10"}, {Name: "b", AccountID: "20"}} {
		_, err := f.channels.AddChannel(ch)
		require.NoError(t, err)
	}

	require.NoError(t, f.engine.RunOnce(context.Background()))

	calls := f.api.CallsFor("ban")
	require.Len(t, calls, 2)
	assert.Equal(t, "10", calls[0].Broadcaster)
	assert.Equal(t, "20", calls[1].Broadcaster)
	assert.Equal(t, "1", calls[1].User)
}

func TestRunOnceFeedFailureChangesNothing(t *testing.T) {
	f := newFixture(t, &staticFeed{err: fmt.Errorf("boom")}, nil)

	assert.Error(t, f.engine.RunOnce(context.Background()))

	snap, err := f.stats.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.LastSync)
}

func TestTransientResolveIsRetriedNextCycle(t *testing.T) {
	f := newFixture(t, &staticFeed{names: []string{"alpha"}}, map[string]string{"alpha": "1"})
	f.api.LookupErrors["alpha"] = fmt.Errorf("timeout")

	require.NoError(t, f.engine.RunOnce(context.Background()))
	fresh, err := f.bots.Unseen([]string{"alpha"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, fresh)

	delete(f.api.LookupErrors, "alpha")
	require.NoError(t, f.engine.RunOnce(context.Background()))

	bot, err := f.bots.GetBot("alpha")
	require.NoError(t, err)
	assert.Equal(t, "1", bot.AccountID)
}

func TestConcurrentRunOnceIsRejected(t *testing.T) {
	feed := &staticFeed{block: make(chan struct{})}
	f := newFixture(t, feed, nil)

	done := make(chan error)
	go func() { done <- f.engine.RunOnce(context.Background()) }()

	require.Eventually(t, func() bool { return f.engine.running.Load() }, time.Second, time.Millisecond)
	assert.ErrorIs(t, f.engine.RunOnce(context.Background()), errors.ErrSyncInProgress)

	close(feed.block)
	assert.NoError(t, <-done)
}

func TestIngestAnnouncesBannedBot(t *testing.T) {
	f := newFixture(t, &staticFeed{}, map[string]string{"alpha": "1"})
	announcer := &recordingAnnouncer{}
	f.engine.SetAnnouncer(announcer)

	result, err := f.engine.Ingest(context.Background(), "@Alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", result.Name)
	assert.False(t, result.Dead)

	_, err = f.engine.Ingest(context.Background(), "ghost")
	require.NoError(t, err)

	f.engine.Wait()
	assert.Equal(t, []string{"alpha"}, announcer.names)
}

func TestDeepBanOfKnownBotCountsOnce(t *testing.T) {
	f := newFixture(t, &staticFeed{}, map[string]string{"alpha": "1"})
	_, err := f.channels.AddChannel(&channelDomain.Channel{Name: "foo", AccountID: "99"})
	require.NoError(t, err)
	announcer := &recordingAnnouncer{}
	f.engine.SetAnnouncer(announcer)

	first, err := f.engine.Ingest(context.Background(), "alpha")
	require.NoError(t, err)
	assert.False(t, first.Known)

	again, err := f.engine.Ingest(context.Background(), "alpha")
	require.NoError(t, err)
	assert.True(t, again.Known)
	assert.Equal(t, 1, again.Sweep.Succeeded, "bans are still re-applied")
	f.engine.Wait()

	assert.Len(t, f.api.CallsFor("ban"), 2)
	snap, err := f.stats.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalBanned)
	entries, err := f.banlog.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, []string{"alpha"}, announcer.names)
}
