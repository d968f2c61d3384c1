package entity

import (
	"context"
	"fmt"
	"testing"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectHandling(t *testing.T) {
	ctx := context.Background()
	candidate := Subproject{Path: ":lib", ProjectDir: "/ws/app/lib"}

	ok, err := ImportAndMerge().ShouldImport(ctx, "/ws/app", candidate)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = SkipNewProjects().ShouldImport(ctx, "/ws/app", candidate)
	require.NoError(t, err)
	assert.False(t, ok)

	var asked []string
	prompt := PromptForNewProjects(func(_ context.Context, root string, c Subproject) (bool, error) {
		asked = append(asked, root+c.Path)
		return c.Path == ":lib", nil
	})
	ok, err = prompt.ShouldImport(ctx, "/ws/app", candidate)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = prompt.ShouldImport(ctx, "/ws/app", Subproject{Path: ":other"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"/ws/app:lib", "/ws/app:other"}, asked)
}

func TestParseNewProjectHandling(t *testing.T) {
	prompt := func(context.Context, string, Subproject) (bool, error) { return true, nil }

	tests := []struct {
		name    string
		prompt  PromptFunc
		want    string
		wantErr bool
	}{
		{name: "", want: "import"},
		{name: "import", want: "import"},
		{name: "skip", want: "skip"},
		{name: "prompt", prompt: prompt, want: "prompt"},
		{name: "prompt", wantErr: true},
		{name: "always", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseNewProjectHandling(tt.name, tt.prompt)
			if tt.wantErr {
				assert.True(t, errors.IsBadRequest(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}
}

func TestSyncStateTransitions(t *testing.T) {
	legal := []SyncState{SyncPending, SyncConnecting, SyncQuerying, SyncReconciling, SyncCommitted}
	for i := 0; i < len(legal)-1; i++ {
		assert.True(t, legal[i].CanTransition(legal[i+1]), "%s -> %s", legal[i], legal[i+1])
		assert.False(t, legal[i].Terminal())
		assert.True(t, legal[i].CanTransition(SyncFailed))
		assert.True(t, legal[i].CanTransition(SyncCancelled))
	}

	for _, terminal := range []SyncState{SyncCommitted, SyncFailed, SyncCancelled} {
		assert.True(t, terminal.Terminal())
		for _, next := range legal {
			assert.False(t, terminal.CanTransition(next))
		}
	}
	assert.False(t, SyncPending.CanTransition(SyncCommitted))
	assert.False(t, SyncQuerying.CanTransition(SyncConnecting))

	text, err := SyncCancelled.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", string(text))
}

func TestSyncResult(t *testing.T) {
	cause := fmt.Errorf("connect: %w", &errors.ConnectionError{RootDir: "/b", Err: errors.New("refused")})
	result := SyncResult{Outcomes: []RootOutcome{
		{RootDir: "/a", State: SyncCommitted},
		{RootDir: "/b", State: SyncFailed, Err: cause},
		{RootDir: "/c", State: SyncCancelled, Err: errors.ErrCancelled},
	}}

	err := result.Err()
	require.Error(t, err)
	var connErr *errors.ConnectionError
	assert.ErrorAs(t, err, &connErr)
	assert.False(t, errors.IsCancelled(err))
	assert.True(t, result.Cancelled())

	o, ok := result.Outcome("/b")
	require.True(t, ok)
	assert.Equal(t, SyncFailed, o.State)
	_, ok = result.Outcome("/missing")
	assert.False(t, ok)

	assert.NoError(t, SyncResult{Outcomes: []RootOutcome{{RootDir: "/a", State: SyncCommitted}}}.Err())
}

func TestConfiguratorContribution(t *testing.T) {
	c := ConfiguratorContribution{ID: "natures", Source: "buildsync"}
	assert.Equal(t, "buildsync.natures", c.FullyQualifiedID())
	assert.True(t, Project{Location: "/r", RootDir: "/r"}.IsRoot())
	assert.False(t, Project{Location: "/r/a", RootDir: "/r"}.IsRoot())
}

func TestCombineListeners(t *testing.T) {
	var got []string
	record := func(prefix string) ProgressListener {
		return ProgressListenerFunc(func(e ProgressEvent) { got = append(got, prefix+e.Description) })
	}
	CombineListeners(record("a:"), nil, record("b:")).ProgressChanged(ProgressEvent{Description: "x"})
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}
