package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sigmair/internal/sigma"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T) *BlockStore {
	t.Helper()
	s, err := NewBlockStore(filepath.Join(t.TempDir(), "blocks.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func outputs(t *testing.T, s *BlockStore) []string {
	t.Helper()
	out, err := s.Outputs(context.Background())
	require.NoError(t, err)
	return out
}

func TestBlockStore_AddList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Add(ctx, "  Design a language specification  ")
	require.NoError(t, err)
	assert.Equal(t, "Design a language specification", a.Input)
	assert.Equal(t, "[[I2 O4|specification|_]]", a.Output)
	assert.False(t, a.IsError)
	assert.Len(t, a.ID, 36)

	b, err := s.Add(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, b.IsError)

	blocks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, a, blocks[0])
	assert.Equal(t, b.ID, blocks[1].ID)
	assert.Less(t, blocks[0].Position, blocks[1].Position)

	got, err := s.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestBlockStore_AddRejectsBlank(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(context.Background(), " \t\n")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, outputs(t, s))
}

func TestBlockStore_Move(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.Add(ctx, "Execute the script")
	require.NoError(t, err)
	second, err := s.Add(ctx, "Design a language specification")
	require.NoError(t, err)
	third, err := s.Add(ctx, "Analyze the code and preserve state")
	require.NoError(t, err)

	require.NoError(t, s.MoveUp(ctx, third.ID))
	want := []string{first.Output, third.Output, second.Output}
	if diff := cmp.Diff(want, outputs(t, s)); diff != "" {
		t.Errorf("after MoveUp (-want +got):\n%s", diff)
	}

	// Edges are no-ops.
	require.NoError(t, s.MoveUp(ctx, first.ID))
	require.NoError(t, s.MoveDown(ctx, second.ID))
	if diff := cmp.Diff(want, outputs(t, s)); diff != "" {
		t.Errorf("after edge moves (-want +got):\n%s", diff)
	}

	require.NoError(t, s.MoveDown(ctx, first.ID))
	want = []string{third.Output, first.Output, second.Output}
	if diff := cmp.Diff(want, outputs(t, s)); diff != "" {
		t.Errorf("after MoveDown (-want +got):\n%s", diff)
	}

	assert.ErrorIs(t, s.MoveUp(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, s.MoveDown(ctx, "missing"), ErrNotFound)
}

func TestBlockStore_RemoveClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Add(ctx, "Execute the script")
	require.NoError(t, err)
	b, err := s.Add(ctx, "Design a language specification")
	require.NoError(t, err)
	_, err = s.Add(ctx, "Analyze the code")
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, a.ID))
	assert.ErrorIs(t, s.Remove(ctx, a.ID), ErrNotFound)

	_, err = s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Positions keep their gaps; moves still find the neighbor.
	blocks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.NoError(t, s.MoveUp(ctx, blocks[1].ID))
	assert.Equal(t, b.Output, outputs(t, s)[1])

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, outputs(t, s))

	next, err := s.Add(ctx, "Execute the script")
	require.NoError(t, err)
	assert.Equal(t, 0, next.Position)
}

func TestBlockStore_Resolve(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Add(ctx, "Execute the script")
	require.NoError(t, err)

	id, err := s.Resolve(ctx, a.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	_, err = s.Resolve(ctx, "zzzz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Add(ctx, "Design a protocol in code")
	require.NoError(t, err)
	_, err = s.Resolve(ctx, "%")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlockStore_ResolveLiteralPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i, id := range []string{"a_c-1", "abc-2", `a\c-3`} {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO blocks (id, position, input, output, is_error, created_at) VALUES (?, ?, ?, ?, 0, 0)",
			id, i, "Execute the script", "[[I1 O1|execute,script|_]]")
		require.NoError(t, err)
	}

	tests := []struct {
		prefix  string
		want    string
		wantErr error
	}{
		{"a_c", "a_c-1", nil},
		{"abc", "abc-2", nil},
		{`a\`, `a\c-3`, nil},
		{"a", "", ErrAmbiguousID},
		{"a%", "", ErrNotFound},
		{"_", "", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			id, err := s.Resolve(ctx, tt.prefix)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestBlockStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "blocks.db")

	s, err := NewBlockStore(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	_, err = s.Add(ctx, "Design a language specification")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewBlockStore(path, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, []string{"[[I2 O4|specification|_]]"}, outputs(t, s))
}

func TestBlockStore_FeedsFrame(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, in := range []string{"Design a language specification", "Execute the script", "Design a language specification"} {
		_, err := s.Add(ctx, in)
		require.NoError(t, err)
	}

	frame := sigma.BuildFrame(outputs(t, s))
	assert.Equal(t, sigma.FrameOpen+"\n[[I1 O1|execute,script|_]]\n[[I2 O4|specification|_]]\n"+sigma.FrameClose, frame)
}

func TestBlockStore_CustomTranslator(t *testing.T) {
	lex := sigma.DefaultLexicon()
	lex.Output[4].Phrases = append(lex.Output[4].Phrases, "dsl")

	s, err := NewBlockStore(":memory:", sigma.NewTranslator(lex))
	require.NoError(t, err)
	defer s.Close()

	b, err := s.Add(context.Background(), "Design a tiny routing dsl")
	require.NoError(t, err)
	assert.Equal(t, "[[I2 O4|dsl,routing,tiny|_]]", b.Output)
}

func TestRunMigrations_AddsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE blocks (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO blocks (id, position, input, output, created_at) VALUES ('old', 0, 'x', '[[E1|_|!error]]', 0)")
	require.NoError(t, err)
	assert.False(t, columnExists(db, "blocks", "is_error"))
	require.NoError(t, db.Close())

	s, err := NewBlockStore(path, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, columnExists(s.db, "blocks", "is_error"))
	blocks, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.False(t, blocks[0].IsError)
}
