package history

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedrock-chatter/internal/config"
)

func TestStoreAppendGetReset(t *testing.T) {
	s := NewStore(nil)
	s.Append("a", Turn{Role: RoleUser, Content: "hello"})
	s.Append("a", Turn{Role: RoleAssistant, Content: "hi"})
	s.Append("b", Turn{Role: RoleUser, Content: "foo"})

	require.Equal(t, 2, s.Len("a"))
	require.Equal(t, 1, s.Len("b"))
	assert.Equal(t, []string{"a", "b"}, s.Users())

	got := s.Get("a")
	assert.Equal(t, []Turn{{RoleUser, "hello"}, {RoleAssistant, "hi"}}, got)

	// copy semantics
	got[0].Content = "mutated"
	assert.Equal(t, "hello", s.Get("a")[0].Content)

	assert.True(t, s.Reset("a"))
	assert.False(t, s.Has("a"))
	assert.Nil(t, s.Get("a"))
	assert.Equal(t, 1, s.Len("b"), "reset must not affect other users")
}

func TestStoreReset_UnknownUserIsNoop(t *testing.T) {
	s := NewStore(nil)
	s.Append("a", Turn{Role: RoleUser, Content: "x"})

	assert.False(t, s.Reset("ghost"))
	assert.Equal(t, []string{"a"}, s.Users())
}

func TestFormatTurns(t *testing.T) {
	assert.Equal(t, "", FormatTurns(nil))
	assert.Equal(t, "user: 2+2?\nassistant: 4", FormatTurns([]Turn{
		{Role: RoleUser, Content: "2+2?"},
		{Role: RoleAssistant, Content: "4"},
	}))
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, name := range []string{"memory.json", "memory.yaml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), name)

			s := NewStore(NewSnapshot(p, false))
			require.NoError(t, s.Init())
			s.Append("u1", Turn{Role: RoleUser, Content: "2+2?"})
			s.Append("u1", Turn{Role: RoleAssistant, Content: "4"})
			s.Append("u2", Turn{Role: RoleUser, Content: "line one\nline two: with colon"})
			require.NoError(t, s.Save())

			restarted := NewStore(NewSnapshot(p, false))
			require.NoError(t, restarted.Init())
			assert.Equal(t, s.Get("u1"), restarted.Get("u1"))
			assert.Equal(t, s.Get("u2"), restarted.Get("u2"))
			assert.Equal(t, []string{"u1", "u2"}, restarted.Users())
		})
	}
}

func TestSnapshotLoad_MissingFileIsEmpty(t *testing.T) {
	s := NewStore(NewSnapshot(filepath.Join(t.TempDir(), "none.json"), false))
	require.NoError(t, s.Init())
	assert.Empty(t, s.Users())
}

func TestSnapshotLoad_CorruptIsFatalByDefault(t *testing.T) {
	p := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))

	err := NewStore(NewSnapshot(p, false)).Init()
	require.ErrorIs(t, err, ErrCorruptSnapshot)

	// file left untouched
	data, rerr := os.ReadFile(p)
	require.NoError(t, rerr)
	assert.Equal(t, "{not json", string(data))
}

func TestSnapshotLoad_UnknownRoleIsCorrupt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"u":[{"role":"robot","content":"x"}]}`), 0o644))

	_, err := NewSnapshot(p, false).Load()
	require.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestSnapshotLoad_RecoverMovesFileAside(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "memory.json")
	require.NoError(t, os.WriteFile(p, []byte(""), 0o644))

	snap := NewSnapshot(p, true)
	snap.now = func() time.Time { return time.Unix(1700000000, 0) }
	s := NewStore(snap)
	require.NoError(t, s.Init())
	assert.Empty(t, s.Users())

	_, err := os.Stat(p + ".corrupt-1700000000")
	require.NoError(t, err)
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
}

func TestStoreSave_ConcurrentWritersLeaveValidSnapshot(t *testing.T) {
	p := filepath.Join(t.TempDir(), "memory.json")
	s := NewStore(NewSnapshot(p, false))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			s.Append(id, Turn{Role: RoleUser, Content: "q"})
			s.Append(id, Turn{Role: RoleAssistant, Content: "a"})
			assert.NoError(t, s.Save())
		}(i)
	}
	wg.Wait()
	require.NoError(t, s.Shutdown())

	restarted := NewStore(NewSnapshot(p, false))
	require.NoError(t, restarted.Init())
	assert.Len(t, restarted.Users(), 8)
}

func TestLocker_GlobalSerializesAcrossUsers(t *testing.T) {
	l := NewLocker(config.LockGlobal)
	unlock := l.Lock("a")

	acquired := make(chan struct{})
	go func() {
		u := l.Lock("b")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("global lock let a second user in")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second user never acquired the lock")
	}
}

func TestLocker_PerUserAllowsOtherUsers(t *testing.T) {
	l := NewLocker(config.LockPerUser)
	unlockA := l.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		u := l.Lock("b")
		u()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("per-user lock blocked another user")
	}

	sameUser := make(chan struct{})
	go func() {
		u := l.Lock("a")
		close(sameUser)
		u()
	}()
	select {
	case <-sameUser:
		t.Fatal("per-user lock let the same user in twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUserLocker_ReleasesEntries(t *testing.T) {
	l := NewUserLocker()
	unlockA := l.Lock("a")

	waiting := make(chan struct{})
	go func() {
		u := l.Lock("a")
		u()
		close(waiting)
	}()
	unlockB := l.Lock("b")
	unlockB()

	unlockA()
	<-waiting
	assert.Equal(t, 0, l.Len())
}

func TestSnapshotLoad_DropsUsersWithoutTurns(t *testing.T) {
	for name, body := range map[string]string{
		"empty list": `{"u": [], "v": [{"role": "user", "content": "hi"}]}`,
		"null":       `{"u": null, "v": [{"role": "user", "content": "hi"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "memory.json")
			require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

			s := NewStore(NewSnapshot(p, false))
			require.NoError(t, s.Init())
			assert.Equal(t, []string{"v"}, s.Users())
			assert.False(t, s.Reset("u"))
		})
	}
}
