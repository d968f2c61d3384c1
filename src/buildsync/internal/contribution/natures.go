package contribution

import (
	"context"
	"sort"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
)

// NatureConfigurator assigns project natures derived from the build plugins a project applies.
type NatureConfigurator struct {
	store   NatureStore
	natures map[string]string
}

var _ entity.Configurator = (*NatureConfigurator)(nil)

// NewNatureConfigurator maps plugin ids to natures using pluginNatures.
func NewNatureConfigurator(store NatureStore, pluginNatures map[string]string) *NatureConfigurator {
	return &NatureConfigurator{store: store, natures: pluginNatures}
}

// Configure replaces the project's natures with the ones implied by its plugins.
func (c *NatureConfigurator) Configure(ctx context.Context, req entity.ConfigureRequest) error {
	return c.store.SetNatures(ctx, req.Project.ID, c.naturesFor(req.Subproject.Plugins))
}

// Unconfigure removes all natures from the project.
func (c *NatureConfigurator) Unconfigure(ctx context.Context, project entity.Project) error {
	return c.store.SetNatures(ctx, project.ID, nil)
}

func (c *NatureConfigurator) naturesFor(plugins []string) []string {
	set := make(map[string]struct{})
	for _, plugin := range plugins {
		if nature, ok := c.natures[plugin]; ok {
			set[nature] = struct{}{}
		}
	}
	natures := make([]string, 0, len(set))
	for nature := range set {
		natures = append(natures, nature)
	}
	sort.Strings(natures)
	return natures
}
