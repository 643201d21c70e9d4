package repository

import (
	"testing"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelLifecycle(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	added, err := s.AddChannel(&domain.Channel{Name: "foo", AccountID: "99"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddChannel(&domain.Channel{Name: "foo", AccountID: "100"})
	require.NoError(t, err)
	assert.False(t, added, "a joined channel is not added twice")

	_, err = s.AddChannel(&domain.Channel{Name: "bar", AccountID: "7"})
	require.NoError(t, err)

	ch, err := s.GetChannel("foo")
	require.NoError(t, err)
	assert.Equal(t, "99", ch.AccountID)

	all, err := s.GetAllChannels()
	require.NoError(t, err)
	assert.Equal(t, []*domain.Channel{{Name: "foo", AccountID: "99"}, {Name: "bar", AccountID: "7"}}, all)

	name, removed, err := s.DeleteChannelByID("99")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "foo", name)

	_, removed, err = s.DeleteChannelByID("99")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.GetChannel("foo")
	assert.ErrorIs(t, err, errors.ErrChannelNotFound)

	removed, err = s.DeleteChannel("bar")
	require.NoError(t, err)
	assert.True(t, removed)

	all, err = s.GetAllChannels()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAlertSubscriptions(t *testing.T) {
	s, err := NewAlertStorage(t.TempDir())
	require.NoError(t, err)

	changed, err := s.Subscribe("foo")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Subscribe("foo")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.Subscribe("foobar")
	require.NoError(t, err)

	changed, err = s.Unsubscribe("foo")
	require.NoError(t, err)
	assert.True(t, changed)

	subscribed, err := s.IsSubscribed("foo")
	require.NoError(t, err)
	assert.False(t, subscribed)

	subscribers, err := s.GetSubscribers()
	require.NoError(t, err)
	assert.Equal(t, []string{"foobar"}, subscribers, "removing foo leaves names that merely contain it")

	changed, err = s.Unsubscribe("foo")
	require.NoError(t, err)
	assert.False(t, changed)
}
