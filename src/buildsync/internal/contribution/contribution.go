// Package contribution assembles the invocation customizers and project configurators registered at startup.
package contribution

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the contribution Facade.
var Module = fx.Provide(New)

const (
	_nameKey                = "contributions"
	_configuratorKindNature = "natures"
)

// Facade exposes the contributions as two read-only lists.
type Facade interface {
	// ExtraArguments returns the arguments contributed by all invocation customizers, in order.
	ExtraArguments() []string
	// Configurators returns the valid configurator contributions, in order.
	Configurators() []entity.ConfiguratorContribution
}

// NatureStore updates the natures of a workspace project.
type NatureStore interface {
	SetNatures(ctx context.Context, id entity.ProjectID, natures []string) error
}

// Params defines the dependencies of the Facade.
type Params struct {
	fx.In

	Config        config.Provider
	Logger        *zap.SugaredLogger
	Natures       NatureStore
	Customizers   []entity.InvocationCustomizer     `group:"customizers"`
	Configurators []entity.ConfiguratorContribution `group:"configurators"`
}

// Config is the contributions section of the configuration.
type Config struct {
	Customizers   []CustomizerConfig   `yaml:"customizers"`
	Configurators []ConfiguratorConfig `yaml:"configurators"`
}

// CustomizerConfig declares a static list of extra arguments.
type CustomizerConfig struct {
	Source    string   `yaml:"source"`
	Arguments []string `yaml:"arguments"`
}

// ConfiguratorConfig declares a configurator implemented by this service.
type ConfiguratorConfig struct {
	ID     string `yaml:"id"`
	Source string `yaml:"source"`
	Kind   string `yaml:"kind"`
	// Natures maps a build plugin id to the project nature it implies. Used by the natures kind.
	Natures map[string]string `yaml:"natures"`
}

type facade struct {
	arguments     []string
	configurators []entity.ConfiguratorContribution
}

// New loads the configured contributions followed by those registered in the fx groups.
// Invalid contributions are logged and skipped.
func New(p Params) (Facade, error) {
	var cfg Config
	if err := p.Config.Get(_nameKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", _nameKey, err)
	}
	logger := p.Logger.With("plugin", _nameKey)

	customizers := make([]entity.InvocationCustomizer, 0, len(cfg.Customizers)+len(p.Customizers))
	for _, c := range cfg.Customizers {
		customizers = append(customizers, StaticArguments(c.Arguments))
	}
	customizers = append(customizers, p.Customizers...)

	var contributions []entity.ConfiguratorContribution
	for _, c := range cfg.Configurators {
		contribution, err := fromConfig(c, p.Natures)
		if err != nil {
			logger.Warnw("Cannot load project configurator", "id", c.ID, "source", c.Source, "error", err)
			continue
		}
		contributions = append(contributions, contribution)
	}

	// Group order is not defined by fx.
	grouped := slices.Clone(p.Configurators)
	sort.SliceStable(grouped, func(i, j int) bool {
		return grouped[i].FullyQualifiedID() < grouped[j].FullyQualifiedID()
	})
	contributions = append(contributions, grouped...)

	return newFacade(logger, customizers, contributions), nil
}

func newFacade(logger *zap.SugaredLogger, customizers []entity.InvocationCustomizer, contributions []entity.ConfiguratorContribution) *facade {
	f := &facade{}
	for _, c := range customizers {
		if c == nil {
			continue
		}
		f.arguments = append(f.arguments, c.ExtraArguments()...)
	}

	seen := make(map[string]struct{}, len(contributions))
	for _, c := range contributions {
		if err := validate(c, seen); err != nil {
			logger.Warnw("Cannot load project configurator", "id", c.FullyQualifiedID(), "error", err)
			continue
		}
		seen[c.FullyQualifiedID()] = struct{}{}
		f.configurators = append(f.configurators, c)
	}
	return f
}

func validate(c entity.ConfiguratorContribution, seen map[string]struct{}) error {
	if c.ID == "" {
		return fmt.Errorf("required 'id' field not declared in project configurator from %q", c.Source)
	}
	if c.Configurator == nil {
		return fmt.Errorf("project configurator %q has no implementation", c.FullyQualifiedID())
	}
	if _, ok := seen[c.FullyQualifiedID()]; ok {
		return fmt.Errorf("project configurator %q is already declared", c.FullyQualifiedID())
	}
	return nil
}

func fromConfig(c ConfiguratorConfig, natures NatureStore) (entity.ConfiguratorContribution, error) {
	switch c.Kind {
	case _configuratorKindNature:
		return entity.ConfiguratorContribution{
			ID:           c.ID,
			Source:       c.Source,
			Configurator: NewNatureConfigurator(natures, c.Natures),
		}, nil
	default:
		return entity.ConfiguratorContribution{}, fmt.Errorf("unknown configurator kind %q", c.Kind)
	}
}

func (f *facade) ExtraArguments() []string {
	return slices.Clone(f.arguments)
}

func (f *facade) Configurators() []entity.ConfiguratorContribution {
	return slices.Clone(f.configurators)
}

// StaticArguments is an InvocationCustomizer contributing a fixed list of arguments.
type StaticArguments []string

// ExtraArguments implements entity.InvocationCustomizer.
func (s StaticArguments) ExtraArguments() []string {
	return slices.Clone(s)
}
