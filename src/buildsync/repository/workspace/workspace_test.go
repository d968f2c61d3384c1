package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	buildsyncerrors "github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

func newTestRepository(fsys fs.BuildsyncFS) Repository {
	return New(Params{
		Logger: zap.NewNop().Sugar(),
		Stats:  tally.NewTestScope("testing", make(map[string]string)),
		FS:     fsys,
	})
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(fs.NewInMemory())

	root, created, err := r.CreateProject(ctx, "/work/app", entity.Subproject{Path: ":", ProjectDir: "/work/app"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.Project{ID: "app", Location: "/work/app", RootDir: "/work/app", Path: ":"}, root)
	assert.True(t, root.IsRoot())

	t.Run("free name", func(t *testing.T) {
		p, created, err := r.CreateProject(ctx, "/other/app", entity.Subproject{Path: ":", ProjectDir: "/other/app"})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, entity.ProjectID("app_"), p.ID)

		p, _, err = r.CreateProject(ctx, "/third/app", entity.Subproject{Path: ":", ProjectDir: "/third/app/"})
		require.NoError(t, err)
		assert.Equal(t, entity.ProjectID("app__"), p.ID)
		assert.Equal(t, "/third/app", p.Location)
	})

	t.Run("merge with the project at the same location", func(t *testing.T) {
		require.NoError(t, r.SetNatures(ctx, "app", []string{"nature"}))

		p, created, err := r.CreateProject(ctx, "/work", entity.Subproject{Path: ":app", ProjectDir: "/work/app"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, entity.Project{ID: "app", Location: "/work/app", RootDir: "/work", Path: ":app", Natures: []string{"nature"}}, p)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, _, err := r.CreateProject(ctx, "/work", entity.Subproject{Path: ":x"})
		assert.True(t, buildsyncerrors.IsBadRequest(err))
	})
}

func TestProjectsMappedToRoot(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(fs.NewInMemory())

	for _, sub := range []entity.Subproject{
		{Path: ":", ProjectDir: "/work/app"},
		{Path: ":lib", ProjectDir: "/work/app/lib"},
		{Path: ":api", ProjectDir: "/work/app/api"},
	} {
		_, _, err := r.CreateProject(ctx, "/work/app", sub)
		require.NoError(t, err)
	}
	_, _, err := r.CreateProject(ctx, "/work/other", entity.Subproject{Path: ":", ProjectDir: "/work/other"})
	require.NoError(t, err)

	projects, err := r.ProjectsMappedToRoot(ctx, "/work/app/")
	require.NoError(t, err)
	var ids []entity.ProjectID
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []entity.ProjectID{"api", "app", "lib"}, ids)

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRegistryIsPersisted(t *testing.T) {
	ctx := context.Background()
	fsys := fs.NewInMemory()
	r := newTestRepository(fsys)

	_, _, err := r.CreateProject(ctx, "/work/app", entity.Subproject{Path: ":", ProjectDir: "/work/app"})
	require.NoError(t, err)
	require.NoError(t, r.SetNatures(ctx, "app", []string{"org.eclipse.jdt.core.javanature"}))

	reopened := newTestRepository(fsys)
	p, err := reopened.Get(ctx, "app")
	require.NoError(t, err)
	assert.Equal(t, []string{"org.eclipse.jdt.core.javanature"}, p.Natures)

	found, ok, err := reopened.FindByLocation(ctx, "/work/app")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, p, found)

	require.NoError(t, reopened.RemoveProject(ctx, "app"))
	require.NoError(t, reopened.RemoveProject(ctx, "app"))

	_, err = newTestRepository(fsys).Get(ctx, "app")
	assert.True(t, buildsyncerrors.IsNotFound(err))
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(fs.NewInMemory())

	p, _, err := r.CreateProject(ctx, "/work/app", entity.Subproject{Path: ":lib", ProjectDir: "/work/app/lib"})
	require.NoError(t, err)
	require.NoError(t, r.SetNatures(ctx, p.ID, []string{"n"}))

	p.Path = ":libs:lib"
	p.Natures = nil
	require.NoError(t, r.UpdateProject(ctx, p))

	got, err := r.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, ":libs:lib", got.Path)
	assert.Equal(t, []string{"n"}, got.Natures)

	err = r.UpdateProject(ctx, entity.Project{ID: "missing"})
	assert.True(t, buildsyncerrors.IsNotFound(err))
}

type readOnlyFS struct {
	fs.BuildsyncFS
}

func (readOnlyFS) WriteFile(string, []byte) error { return errors.New("read-only file system") }

func TestFailedPersistLeavesRegistryUnchanged(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(readOnlyFS{fs.NewInMemory()})

	_, _, err := r.CreateProject(ctx, "/work/app", entity.Subproject{Path: ":", ProjectDir: "/work/app"})
	var wsErr *buildsyncerrors.WorkspaceError
	require.ErrorAs(t, err, &wsErr)

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
