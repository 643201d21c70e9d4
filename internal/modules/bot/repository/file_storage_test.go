package repository

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/bot/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func names(bots []*domain.Bot) []string {
	return lo.Map(bots, func(b *domain.Bot, _ int) string { return b.Name })
}

func TestAliveKeepsInsertionOrder(t *testing.T) {
	s := newStorage(t)

	require.NoError(t, s.AddAlive("zeta", "3"))
	require.NoError(t, s.AddAlive("alpha", "1"))
	require.NoError(t, s.AddAlive("mid", "2"))

	alive, err := s.GetAlive()
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names(alive))
	assert.Equal(t, "1", alive[1].AccountID)
	assert.Equal(t, domain.StatusAlive, alive[1].Status)
}

func TestMarkDeadMovesBot(t *testing.T) {
	s := newStorage(t)

	require.NoError(t, s.AddAlive("alpha", "1"))
	require.NoError(t, s.MarkDead("alpha", ""))
	require.NoError(t, s.MarkDead("beta", ""))

	alive, err := s.GetAlive()
	require.NoError(t, err)
	assert.Empty(t, alive)

	dead, err := s.GetDead()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names(dead))
	assert.Equal(t, "1", dead[0].AccountID, "known id is kept when the bot dies")
	assert.Equal(t, "", dead[1].AccountID)

	data, err := os.ReadFile(filepath.Join(s.basePath, deadFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"beta": null`)
}

func TestAliveXorDead(t *testing.T) {
	s := newStorage(t)

	require.NoError(t, s.MarkDead("alpha", ""))
	require.NoError(t, s.AddAlive("alpha", "1"))

	bot, err := s.GetBot("alpha")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAlive, bot.Status)

	dead, err := s.GetDead()
	require.NoError(t, err)
	assert.Empty(t, dead)

	require.NoError(t, s.MarkDead("alpha", ""))
	bot, err = s.GetBot("alpha")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDead, bot.Status)

	alive, err := s.GetAlive()
	require.NoError(t, err)
	assert.Empty(t, alive)
}

func TestNameInBothFilesIsDead(t *testing.T) {
	s := newStorage(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.basePath, aliveFile), []byte(`{"alpha": "1", "beta": "2"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(s.basePath, deadFile), []byte(`{"alpha": "1"}`), 0644))

	alive, err := s.GetAlive()
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, names(alive))
}

func TestGetBotNotFound(t *testing.T) {
	s := newStorage(t)

	_, err := s.GetBot("ghost")
	assert.ErrorIs(t, err, errors.ErrBotNotFound)
}

func TestLedgerIsIdempotent(t *testing.T) {
	s := newStorage(t)

	fresh, err := s.Unseen([]string{"alpha", "beta", "alpha", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, fresh)

	require.NoError(t, s.MarkSeen(fresh...))
	require.NoError(t, s.MarkSeen("alpha"))

	fresh, err = s.Unseen([]string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma"}, fresh)

	lines, err := os.ReadFile(filepath.Join(s.basePath, ledgerFile))
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", string(lines))
}

func TestLedgerExactMatch(t *testing.T) {
	s := newStorage(t)
	require.NoError(t, s.MarkSeen("botterino"))

	fresh, err := s.Unseen([]string{"bot"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bot"}, fresh, "a prefix of a seen name is still new")
}

func TestConcurrentAddAlive(t *testing.T) {
	s := newStorage(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			assert.NoError(t, s.AddAlive(name, name))
		}(i)
	}
	wg.Wait()

	alive, err := s.GetAlive()
	require.NoError(t, err)
	assert.Len(t, alive, 20, "no update may be lost")
}
