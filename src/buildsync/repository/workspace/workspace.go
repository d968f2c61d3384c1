// Package workspace is the registry of the projects managed in the workspace.
package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/mapper"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Module provides the workspace Repository.
var Module = fx.Provide(New)

const (
	_nameKey      = "workspace"
	_registryDir  = "workspace"
	_registryFile = "projects.yaml"
	_nameSuffix   = "_"
)

// Repository manages the workspace projects and their mapping to build roots.
type Repository interface {
	// All returns every workspace project ordered by id.
	All(ctx context.Context) ([]entity.Project, error)
	// ProjectsMappedToRoot returns the projects whose build root is rootDir.
	ProjectsMappedToRoot(ctx context.Context, rootDir string) ([]entity.Project, error)
	// CreateProject adds a project for the subproject, or attaches the existing project at the same location.
	// The returned flag is true when a new project was created.
	CreateProject(ctx context.Context, rootDir string, subproject entity.Subproject) (entity.Project, bool, error)
	// UpdateProject stores the mapping of an existing project.
	UpdateProject(ctx context.Context, project entity.Project) error
	// RemoveProject removes the project. Removing an unknown project is not an error.
	RemoveProject(ctx context.Context, id entity.ProjectID) error
	Get(ctx context.Context, id entity.ProjectID) (entity.Project, error)
	FindByLocation(ctx context.Context, location string) (entity.Project, bool, error)
	SetNatures(ctx context.Context, id entity.ProjectID, natures []string) error
}

// Params are the dependencies of the Repository.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
	Stats  tally.Scope
	FS     fs.MetadataFS
}

type repository struct {
	mu     sync.Mutex
	fs     fs.BuildsyncFS
	logger *zap.SugaredLogger
	stats  tally.Scope

	loaded   bool
	memstore map[entity.ProjectID]model.WorkspaceProject
}

// New returns a Repository persisted in the metadata region.
func New(p Params) Repository {
	return &repository{
		fs:     p.FS,
		logger: p.Logger.With("plugin", _nameKey),
		stats:  p.Stats.SubScope(_nameKey),
	}
}

func (r *repository) registryPath() string {
	return r.fs.Join(_registryDir, _registryFile)
}

// load reads the registry on first use. Callers hold r.mu.
func (r *repository) load() error {
	if r.loaded {
		return nil
	}
	r.memstore = make(map[entity.ProjectID]model.WorkspaceProject)

	exists, err := r.fs.FileExists(r.registryPath())
	if err != nil {
		return &errors.WorkspaceError{Op: "load", Err: err}
	}
	if exists {
		data, err := r.fs.ReadFile(r.registryPath())
		if err != nil {
			return &errors.WorkspaceError{Op: "load", Err: err}
		}
		var registry model.WorkspaceRegistry
		if err := yaml.Unmarshal(data, &registry); err != nil {
			return &errors.WorkspaceError{Op: "load", Err: fmt.Errorf("parsing %s: %w", r.registryPath(), err)}
		}
		for _, p := range registry.Projects {
			r.memstore[entity.ProjectID(p.Name)] = p
		}
	}
	r.loaded = true
	r.updateGauge()
	return nil
}

// persist writes the registry. Callers hold r.mu.
func (r *repository) persist(op string) error {
	registry := model.WorkspaceRegistry{Projects: make([]model.WorkspaceProject, 0, len(r.memstore))}
	for _, p := range r.memstore {
		registry.Projects = append(registry.Projects, p)
	}
	sort.Slice(registry.Projects, func(i, j int) bool {
		return registry.Projects[i].Name < registry.Projects[j].Name
	})

	data, err := yaml.Marshal(&registry)
	if err != nil {
		return &errors.WorkspaceError{Op: op, Err: err}
	}
	if err := r.fs.WriteFile(r.registryPath(), data); err != nil {
		return &errors.WorkspaceError{Op: op, Err: err}
	}
	r.updateGauge()
	return nil
}

func (r *repository) updateGauge() {
	r.stats.Gauge("projects").Update(float64(len(r.memstore)))
}

// snapshot copies the registry so a failed persist can be undone. Callers hold r.mu.
func (r *repository) snapshot() map[entity.ProjectID]model.WorkspaceProject {
	c := make(map[entity.ProjectID]model.WorkspaceProject, len(r.memstore))
	for k, v := range r.memstore {
		c[k] = v
	}
	return c
}

func (r *repository) All(ctx context.Context) ([]entity.Project, error) {
	return r.filter(func(model.WorkspaceProject) bool { return true })
}

func (r *repository) ProjectsMappedToRoot(ctx context.Context, rootDir string) ([]entity.Project, error) {
	rootDir = filepath.Clean(rootDir)
	return r.filter(func(p model.WorkspaceProject) bool { return p.RootDir == rootDir })
}

func (r *repository) filter(keep func(model.WorkspaceProject) bool) ([]entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return nil, err
	}
	found := make([]entity.Project, 0)
	for _, p := range r.memstore {
		if keep(p) {
			found = append(found, mapper.ModelToProject(p))
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

func (r *repository) CreateProject(ctx context.Context, rootDir string, subproject entity.Subproject) (entity.Project, bool, error) {
	if subproject.ProjectDir == "" {
		return entity.Project{}, false, &errors.ConfigurationError{Field: "projectDir", Reason: "must not be empty"}
	}
	rootDir = filepath.Clean(rootDir)
	location := filepath.Clean(subproject.ProjectDir)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return entity.Project{}, false, err
	}
	previous := r.snapshot()

	created := false
	stored, ok := r.findByLocation(location)
	if ok {
		stored.RootDir = rootDir
		stored.Path = subproject.Path
	} else {
		stored = model.WorkspaceProject{
			Name:     string(r.freeName(filepath.Base(location))),
			Location: location,
			RootDir:  rootDir,
			Path:     subproject.Path,
		}
		created = true
	}
	r.memstore[entity.ProjectID(stored.Name)] = stored

	if err := r.persist("create project"); err != nil {
		r.memstore = previous
		return entity.Project{}, false, err
	}
	if created {
		r.stats.Counter("created").Inc(1)
		r.logger.Infow("Created workspace project", "project", stored.Name, "location", location)
	}
	return mapper.ModelToProject(stored), created, nil
}

// freeName appends "_" to base until no project uses the name. Callers hold r.mu.
func (r *repository) freeName(base string) entity.ProjectID {
	name := entity.ProjectID(base)
	for {
		if _, taken := r.memstore[name]; !taken {
			return name
		}
		name += _nameSuffix
	}
}

func (r *repository) findByLocation(location string) (model.WorkspaceProject, bool) {
	for _, p := range r.memstore {
		if p.Location == location {
			return p, true
		}
	}
	return model.WorkspaceProject{}, false
}

func (r *repository) UpdateProject(ctx context.Context, project entity.Project) error {
	return r.update("update project", project.ID, func(p *model.WorkspaceProject) {
		natures := p.Natures
		*p = mapper.ProjectToModel(project)
		if project.Natures == nil {
			p.Natures = natures
		}
	})
}

func (r *repository) SetNatures(ctx context.Context, id entity.ProjectID, natures []string) error {
	return r.update("set natures", id, func(p *model.WorkspaceProject) {
		p.Natures = slices.Clone(natures)
	})
}

func (r *repository) update(op string, id entity.ProjectID, mutate func(*model.WorkspaceProject)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return err
	}
	p, ok := r.memstore[id]
	if !ok {
		return &errors.ProjectNotFoundError{ID: string(id)}
	}
	previous := r.snapshot()
	mutate(&p)
	r.memstore[id] = p
	if err := r.persist(op); err != nil {
		r.memstore = previous
		return err
	}
	return nil
}

func (r *repository) RemoveProject(ctx context.Context, id entity.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return err
	}
	if _, ok := r.memstore[id]; !ok {
		return nil
	}
	previous := r.snapshot()
	delete(r.memstore, id)
	if err := r.persist("remove project"); err != nil {
		r.memstore = previous
		return err
	}
	r.logger.Infow("Removed workspace project", "project", id)
	return nil
}

func (r *repository) Get(ctx context.Context, id entity.ProjectID) (entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return entity.Project{}, err
	}
	p, ok := r.memstore[id]
	if !ok {
		return entity.Project{}, &errors.ProjectNotFoundError{ID: string(id)}
	}
	return mapper.ModelToProject(p), nil
}

func (r *repository) FindByLocation(ctx context.Context, location string) (entity.Project, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return entity.Project{}, false, err
	}
	p, ok := r.findByLocation(filepath.Clean(location))
	if !ok {
		return entity.Project{}, false, nil
	}
	return mapper.ModelToProject(p), true, nil
}
