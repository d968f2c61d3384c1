// Package persistentmodel stores the per-project PersistentModel records in the metadata region.
package persistentmodel

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/codec"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/mapper"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Module provides the persistent model Store.
var Module = fx.Provide(New)

const (
	_nameKey     = "persistent_model"
	_projectsDir = "projects"
	_recordName  = "model"
)

var _magic = []byte("BSPM")

// Store is a durable key-value store from project identity to PersistentModel.
type Store interface {
	// LoadModel returns the stored model, or an absent model when there is none or the record cannot be read.
	LoadModel(ctx context.Context, project entity.ProjectID) (entity.PersistentModel, error)
	// SaveModel replaces the whole record of the model's project.
	SaveModel(ctx context.Context, m entity.PersistentModel) error
	// DeleteModel removes the record of the project. Deleting an absent model is not an error.
	DeleteModel(ctx context.Context, project entity.ProjectID) error
	// Apply writes and deletes the records of a batch together: either all changes are visible afterwards or none are.
	Apply(ctx context.Context, batch Batch) error
}

// Batch is a set of record changes committed together.
type Batch struct {
	Save   []entity.PersistentModel
	Delete []entity.ProjectID
}

// Empty reports whether the batch has no changes.
func (b Batch) Empty() bool {
	return len(b.Save) == 0 && len(b.Delete) == 0
}

// Params are the dependencies of the Store.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
	Stats  tally.Scope
	FS     fs.MetadataFS
}

type store struct {
	// mu serializes writers. Readers rely on atomic renames.
	mu     sync.Mutex
	fs     fs.BuildsyncFS
	logger *zap.SugaredLogger
	stats  tally.Scope
}

// New returns a Store over the metadata region.
func New(p Params) Store {
	return &store{
		fs:     p.FS,
		logger: p.Logger.With("plugin", _nameKey),
		stats:  p.Stats.SubScope(_nameKey),
	}
}

func (s *store) recordPath(project entity.ProjectID) string {
	return s.fs.Join(_projectsDir, url.PathEscape(string(project)), _recordName)
}

func (s *store) LoadModel(ctx context.Context, project entity.ProjectID) (entity.PersistentModel, error) {
	if project == "" {
		return entity.AbsentModel(project), &errors.ConfigurationError{Field: "project", Reason: "must not be empty"}
	}
	if err := ctx.Err(); err != nil {
		return entity.AbsentModel(project), err
	}

	path := s.recordPath(project)
	exists, err := s.fs.FileExists(path)
	if err != nil || !exists {
		if err != nil {
			s.logger.Warnw("Cannot stat persistent model", "project", project, "error", err)
		}
		return entity.AbsentModel(project), nil
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		s.logger.Warnw("Cannot read persistent model", "project", project, "error", err)
		return entity.AbsentModel(project), nil
	}
	m, err := decodeRecord(data)
	if err == nil && m.Project() != project {
		err = fmt.Errorf("record belongs to project %q", m.Project())
	}
	if err != nil {
		s.stats.Counter("corrupt_records").Inc(1)
		s.logger.Warnw("Ignoring corrupt persistent model", "project", project, "error", err)
		return entity.AbsentModel(project), nil
	}
	return m, nil
}

func (s *store) SaveModel(ctx context.Context, m entity.PersistentModel) error {
	return s.Apply(ctx, Batch{Save: []entity.PersistentModel{m}})
}

func (s *store) DeleteModel(ctx context.Context, project entity.ProjectID) error {
	return s.Apply(ctx, Batch{Delete: []entity.ProjectID{project}})
}

type pendingWrite struct {
	target string
	temp   string
	// previous is the record replaced or removed by the batch, nil when there was none.
	previous []byte
	// applied is set once target has been replaced or removed.
	applied bool
}

func (s *store) Apply(ctx context.Context, batch Batch) (err error) {
	if batch.Empty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writes := make([]*pendingWrite, 0, len(batch.Save)+len(batch.Delete))
	seen := make(map[string]struct{}, cap(writes))
	defer func() {
		if err != nil {
			err = multierr.Append(err, s.rollback(writes))
		}
	}()

	for _, m := range batch.Save {
		if !m.Present() {
			return &errors.IllegalStateError{Reason: fmt.Sprintf("cannot save absent model of project %q", m.Project())}
		}
		data, err := encodeRecord(m)
		if err != nil {
			return fmt.Errorf("encoding persistent model of %q: %w", m.Project(), err)
		}
		w := &pendingWrite{target: s.recordPath(m.Project())}
		if _, ok := seen[w.target]; ok {
			return fmt.Errorf("project %q appears twice in the batch", m.Project())
		}
		seen[w.target] = struct{}{}
		writes = append(writes, w)

		dir := s.fs.Join(_projectsDir, url.PathEscape(string(m.Project())))
		if w.temp, err = s.fs.WriteTemp(dir, "."+_recordName+".tmp-", data); err != nil {
			return err
		}
	}
	for _, project := range batch.Delete {
		if project == "" {
			return &errors.ConfigurationError{Field: "project", Reason: "must not be empty"}
		}
		w := &pendingWrite{target: s.recordPath(project)}
		if _, ok := seen[w.target]; ok {
			return fmt.Errorf("project %q appears twice in the batch", project)
		}
		seen[w.target] = struct{}{}
		writes = append(writes, w)
	}

	// Keep the current records for rollback. The live files stay in place so readers never miss a record.
	for _, w := range writes {
		exists, err := s.fs.FileExists(w.target)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if w.previous, err = s.fs.ReadFile(w.target); err != nil {
			return fmt.Errorf("reading %q: %w", w.target, err)
		}
	}

	// Saves replace their record with a single rename, then deletes run.
	for _, w := range writes {
		if w.temp == "" {
			continue
		}
		if err := s.fs.Rename(w.temp, w.target); err != nil {
			return fmt.Errorf("installing %q: %w", w.target, err)
		}
		w.applied = true
	}
	for _, w := range writes {
		if w.temp != "" || w.previous == nil {
			continue
		}
		if err := s.fs.Remove(w.target); err != nil {
			return fmt.Errorf("removing %q: %w", w.target, err)
		}
		w.applied = true
	}
	return nil
}

// rollback restores the records that were in place before a failed Apply.
func (s *store) rollback(writes []*pendingWrite) error {
	var errs error
	for _, w := range writes {
		switch {
		case w.temp != "" && !w.applied:
			errs = multierr.Append(errs, s.fs.Remove(w.temp))
		case !w.applied:
		case w.previous != nil:
			errs = multierr.Append(errs, s.fs.WriteFile(w.target, w.previous))
		default:
			errs = multierr.Append(errs, s.fs.Remove(w.target))
		}
	}
	return errs
}

// A record is the magic, the checksum of the payload and the zstd compressed CBOR payload.
func encodeRecord(m entity.PersistentModel) ([]byte, error) {
	record, err := mapper.PersistentModelToModel(m)
	if err != nil {
		return nil, err
	}
	raw, err := codec.Marshal(record)
	if err != nil {
		return nil, err
	}
	payload := codec.Compress(raw)
	sum := codec.Sum(payload)

	var buf bytes.Buffer
	buf.Grow(len(_magic) + codec.DigestSize + len(payload))
	buf.Write(_magic)
	buf.Write(sum[:])
	buf.Write(payload)
	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (entity.PersistentModel, error) {
	header := len(_magic) + codec.DigestSize
	if len(data) < header || !bytes.Equal(data[:len(_magic)], _magic) {
		return entity.PersistentModel{}, errors.New("not a persistent model record")
	}
	payload := data[header:]
	if sum := codec.Sum(payload); !bytes.Equal(sum[:], data[len(_magic):header]) {
		return entity.PersistentModel{}, errors.New("checksum mismatch")
	}
	raw, err := codec.Decompress(payload)
	if err != nil {
		return entity.PersistentModel{}, err
	}
	var record model.PersistentModel
	if err := codec.Unmarshal(raw, &record); err != nil {
		return entity.PersistentModel{}, fmt.Errorf("decoding record: %w", err)
	}
	return mapper.ModelToPersistentModel(&record)
}
