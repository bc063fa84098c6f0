package jenkins

import (
	"context"

	"github.com/jenkinsapi/jenkins-workbench/internal/configxml"
	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// Nodes lists the built-in node and all agents.
func (f *Facade) Nodes(ctx context.Context) ([]models.Node, error) {
	items, err := f.List(ctx, models.Descriptor{Kind: models.KindNode}, DefaultScope)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Node](items)
}

// Node returns one node.
func (f *Facade) Node(ctx context.Context, name string) (*models.Node, error) {
	return fetchAs[models.Node](ctx, f, models.ForNode(name))
}

// NodeConfig returns an agent's config.xml.
func (f *Facade) NodeConfig(ctx context.Context, name string) (string, error) {
	return f.Document(ctx, models.ForNode(name))
}

// CreateNode creates an agent from a config.xml.
func (f *Facade) CreateNode(ctx context.Context, name, config string) error {
	if _, err := configxml.Parse(config); err != nil {
		return err
	}
	return f.Create(ctx, models.ForNode(name), Payload{Document: config})
}

// UpdateNodeConfig replaces an agent's config.xml.
func (f *Facade) UpdateNodeConfig(ctx context.Context, name, config string) error {
	if _, err := configxml.Parse(config); err != nil {
		return err
	}
	return f.Mutate(ctx, models.ForNode(name), Payload{Document: config})
}

// DeleteNode deletes an agent.
func (f *Facade) DeleteNode(ctx context.Context, name string) error {
	return f.Remove(ctx, models.ForNode(name))
}

// EnableNode brings a node back online.
func (f *Facade) EnableNode(ctx context.Context, name string) error {
	_, err := f.Invoke(ctx, models.ForNode(name), ActionEnable, Payload{})
	return err
}

// DisableNode marks a node temporarily offline.
func (f *Facade) DisableNode(ctx context.Context, name string) error {
	_, err := f.Invoke(ctx, models.ForNode(name), ActionDisable, Payload{})
	return err
}
