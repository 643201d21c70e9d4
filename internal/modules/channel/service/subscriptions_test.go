package service

import (
	"context"
	"testing"

	accountService "github.com/reshetovitsme/binary-bouncer/internal/modules/account/service"
	botRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/bot/repository"
	"github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/repository"
	enforcementService "github.com/reshetovitsme/binary-bouncer/internal/modules/enforcement/service"
	statsRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/stats/repository"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/reshetovitsme/binary-bouncer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api      *testutil.FakeAPI
	notifier *testutil.Notifier
	bots     *botRepo.FileStorage
	channels *channelRepo.FileStorage
	alerts   *channelRepo.AlertStorage
	stats    *statsRepo.FileStorage
	subs     *Subscriptions
}

func newHarness(t *testing.T, users map[string]string) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{BotID: "7", BotName: "binarybouncer"}

	bots, err := botRepo.NewFileStorage(dir)
	require.NoError(t, err)
	channels, err := channelRepo.NewFileStorage(dir)
	require.NoError(t, err)
	alerts, err := channelRepo.NewAlertStorage(dir)
	require.NoError(t, err)
	stats, err := statsRepo.NewFileStorage(dir)
	require.NoError(t, err)

	api := testutil.NewFakeAPI(users)
	notifier := &testutil.Notifier{}
	resolver := accountService.New(api, 0)
	membership := NewMembership(channels, alerts, stats)
	enforcer := enforcementService.NewEnforcer(cfg, resolver, api, bots, membership)
	sweeper := enforcementService.NewSweeper(cfg, enforcer, channels, bots, notifier)

	return &harness{
		api:      api,
		notifier: notifier,
		bots:     bots,
		channels: channels,
		alerts:   alerts,
		stats:    stats,
		subs:     NewSubscriptions(cfg, membership, alerts, resolver, sweeper, api, notifier),
	}
}

func (h *harness) joined(t *testing.T) int {
	t.Helper()
	snap, err := h.stats.Snapshot()
	require.NoError(t, err)
	return snap.TotalJoined
}

func TestOptInBansAliveBotsInRegistryOrder(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99", "alpha": "1", "beta": "2"})
	require.NoError(t, h.bots.AddAlive("alpha", "1"))
	require.NoError(t, h.bots.AddAlive("beta", "2"))

	result, sweep, err := h.subs.OptIn(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.OptInResultJoined, result)
	assert.True(t, sweep.Completed)

	assert.Equal(t, []testutil.Call{
		{Method: "ban", Broadcaster: "99", Moderator: "7", User: "1", Reason: "Bot"},
		{Method: "ban", Broadcaster: "99", Moderator: "7", User: "2", Reason: "Bot"},
	}, h.api.CallsFor("ban"))
	assert.Equal(t, 1, h.joined(t))

	ch, err := h.channels.GetChannel("foo")
	require.NoError(t, err)
	assert.Equal(t, "99", ch.AccountID)
}

func TestOptInAlreadyJoinedIsNoop(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99", "alpha": "1"})
	require.NoError(t, h.bots.AddAlive("alpha", "1"))
	_, _, err := h.subs.OptIn(context.Background(), "foo")
	require.NoError(t, err)
	calls := len(h.api.Calls)

	result, _, err := h.subs.OptIn(context.Background(), "FOO")
	require.NoError(t, err)
	assert.Equal(t, domain.OptInResultAlreadyJoined, result)
	assert.Len(t, h.api.Calls, calls)
	assert.Equal(t, 1, h.joined(t))
}

func TestOptInUnknownChannel(t *testing.T) {
	h := newHarness(t, nil)

	result, _, err := h.subs.OptIn(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, domain.OptInResultChannelNotFound, result)

	all, err := h.channels.GetAllChannels()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOptInWithoutModeratorRights(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99", "alpha": "1"})
	require.NoError(t, h.bots.AddAlive("alpha", "1"))
	h.api.BanErrors["99"] = errors.ErrMissingData

	result, sweep, err := h.subs.OptIn(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.OptInResultNeedsModerator, result)
	assert.Equal(t, []string{"foo"}, sweep.Evicted)

	_, err = h.channels.GetChannel("foo")
	assert.ErrorIs(t, err, errors.ErrChannelNotFound)
	assert.Equal(t, 0, h.joined(t))
}

func TestOptOut(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99"})
	_, _, err := h.subs.OptIn(context.Background(), "foo")
	require.NoError(t, err)
	_, err = h.subs.Subscribe(context.Background(), "foo")
	require.NoError(t, err)

	result, err := h.subs.OptOut(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.OptOutResultLeft, result)
	assert.Equal(t, 0, h.joined(t))

	subscribed, err := h.alerts.IsSubscribed("foo")
	require.NoError(t, err)
	assert.False(t, subscribed)
	assert.Len(t, h.api.CallsFor("unmod"), 1)

	result, err = h.subs.OptOut(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.OptOutResultNotJoined, result)
}

func TestOptOutAndUnbanLeavesDespiteFailures(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99", "alpha": "1", "beta": "2", "gamma": "3"})
	for _, b := range []struct{ name, id string }{{"alpha", "1"}, {"beta", "2"}, {"gamma", "3"}} {
		require.NoError(t, h.bots.AddAlive(b.name, b.id))
	}
	_, _, err := h.subs.OptIn(context.Background(), "foo")
	require.NoError(t, err)
	_, err = h.subs.Subscribe(context.Background(), "foo")
	require.NoError(t, err)

	h.api.FailAfter["99"] = 4
	h.api.FailWith["99"] = errors.ErrNotBanned

	result, sweep, err := h.subs.OptOutAndUnban(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.OptOutResultLeft, result)
	assert.Equal(t, 3, sweep.Attempted)
	assert.Equal(t, 1, sweep.Succeeded)

	_, err = h.channels.GetChannel("foo")
	assert.ErrorIs(t, err, errors.ErrChannelNotFound)
	subscribed, err := h.alerts.IsSubscribed("foo")
	require.NoError(t, err)
	assert.False(t, subscribed)
	assert.Equal(t, 0, h.joined(t))
}

func TestOptOutAndUnbanEvictedDuringUnban(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99", "alpha": "1"})
	require.NoError(t, h.bots.AddAlive("alpha", "1"))
	_, _, err := h.subs.OptIn(context.Background(), "foo")
	require.NoError(t, err)
	h.api.BanErrors["99"] = errors.ErrNotModerator

	result, sweep, err := h.subs.OptOutAndUnban(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.OptOutResultLeft, result)
	assert.False(t, sweep.Completed)
	assert.Equal(t, 0, h.joined(t), "eviction and leave must not both decrement")
}

func TestAlertsRequireJoin(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99"})
	ctx := context.Background()

	result, err := h.subs.Subscribe(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResultNotJoined, result)

	_, _, err = h.subs.OptIn(ctx, "foo")
	require.NoError(t, err)

	result, err = h.subs.Subscribe(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResultSubscribed, result)

	result, err = h.subs.Subscribe(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResultAlreadySubscribed, result)

	result, err = h.subs.Unsubscribe(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResultUnsubscribed, result)

	result, err = h.subs.Unsubscribe(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResultNotSubscribed, result)
}

func TestJoinCommandMessages(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99"})
	ctx := context.Background()

	require.NoError(t, h.subs.JoinCommand(ctx, "Foo"))
	require.NoError(t, h.subs.JoinCommand(ctx, "foo"))

	assert.Equal(t, []string{
		"Starting mass exodus of bots on foo's channel. This can take around ~1hr, please be patient...",
		"Finished banning all bots on foo's channel.",
		"foo, you are now protected.",
		"foo, You are already protected.",
	}, h.notifier.Texts())
	for _, m := range h.notifier.Messages {
		assert.Equal(t, "binarybouncer", m.Channel)
	}
}

func TestJoinCommandNeedsModerator(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99", "alpha": "1"})
	require.NoError(t, h.bots.AddAlive("alpha", "1"))
	h.api.BanErrors["99"] = errors.ErrMissingData

	require.NoError(t, h.subs.JoinCommand(context.Background(), "foo"))
	assert.Contains(t, h.notifier.Texts(), "@foo, Please add binarybouncer as a moderator and try again (sometimes it takes a minute or two to register the new mod).")
}

func TestLeaveAndLoveBotsCommandsWhenNotJoined(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	require.NoError(t, h.subs.LeaveCommand(ctx, "foo"))
	require.NoError(t, h.subs.LoveBotsCommand(ctx, "foo"))
	require.NoError(t, h.subs.NoAlertCommand(ctx, "foo"))

	assert.Equal(t, []string{
		"foo, you were not on my protected list.",
		"foo, you are not currently my protected list, unable to mass-unban.",
		"foo, you need to join first before managing limerick alerts.",
	}, h.notifier.Texts())
}

func TestForceLeave(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99"})
	ctx := context.Background()

	result, _, err := h.subs.ForceJoin(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.OptInResultJoined, result)

	left, err := h.subs.ForceLeave(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, domain.OptOutResultLeft, left)
	assert.Empty(t, h.notifier.Messages, "operator actions do not talk in chat")
}

func TestJoinCommandUnknownChannel(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.subs.JoinCommand(context.Background(), "foo"))
	assert.Equal(t, []string{"foo, I could not find your channel."}, h.notifier.Texts())
}

func TestLoveBotsCommandLosesModerator(t *testing.T) {
	h := newHarness(t, map[string]string{"foo": "99", "alpha": "1", "beta": "2"})
	require.NoError(t, h.bots.AddAlive("alpha", "1"))
	require.NoError(t, h.bots.AddAlive("beta", "2"))
	_, _, err := h.subs.OptIn(context.Background(), "foo")
	require.NoError(t, err)
	h.api.BanErrors["99"] = errors.ErrNotModerator

	require.NoError(t, h.subs.LoveBotsCommand(context.Background(), "foo"))

	assert.Len(t, h.api.CallsFor("unban"), 1, "unbanning stops at the first lost permission")
	assert.Equal(t, []string{
		"Starting mass unbanning of bots on foo's channel. This can take around ~1hr, please be patient and do not unmod binarybouncer until it is over...",
		"@foo, Please add binarybouncer as a moderator and try again (sometimes it takes a minute or two to register the new mod).",
	}, h.notifier.Texts())

	_, err = h.channels.GetChannel("foo")
	assert.ErrorIs(t, err, errors.ErrChannelNotFound)
}
