package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/ebudget/internal/models"
)

func TestOpen_MissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	assert.Equal(t, models.EmptySession, s.Load())
	assert.Equal(t, int64(-1), s.Load().UserID)
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	_, err := Open(path)
	require.ErrorContains(t, err, "decode session")
}

func TestSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := Open(path)
	require.NoError(t, err)

	want := models.Session{Token: "tok", UserID: 12}
	require.NoError(t, s.Save(context.Background(), want))
	assert.Equal(t, want, s.Load())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"api_token":"tok","user_id":12}`, string(raw))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, want, reopened.Load())

	require.NoError(t, s.Clear(context.Background()))
	assert.Equal(t, models.EmptySession, s.Load())
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"api_token":"","user_id":-1}`, string(raw))
}

func TestSave_CanceledContext(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Save(ctx, models.Session{Token: "x", UserID: 1}), context.Canceled)
	assert.Equal(t, models.EmptySession, s.Load())
}

func TestSubscribe(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)

	assert.Equal(t, models.EmptySession, recv(t, ch))

	want := models.Session{Token: "a", UserID: 3}
	require.NoError(t, s.Save(context.Background(), want))
	assert.Equal(t, want, recv(t, ch))

	require.NoError(t, s.Clear(context.Background()))
	assert.Equal(t, models.EmptySession, recv(t, ch))

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestHolder(t *testing.T) {
	h := NewHolder()
	assert.Equal(t, models.EmptySession, h.Current())
	assert.Empty(t, h.Token())

	h.Set(models.Session{Token: "t1", UserID: 1})
	assert.Equal(t, "t1", h.Token())

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Set(models.Session{Token: "t", UserID: int64(i + 1)})
			got := h.Current()
			assert.Equal(t, "t", got.Token)
		}(i)
	}
	wg.Wait()

	h.Clear()
	assert.False(t, h.Current().Valid())
}

func recv(t *testing.T, ch <-chan models.Session) models.Session {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for session")
	}
	return models.Session{}
}
