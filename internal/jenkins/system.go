package jenkins

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jenkinsapi/jenkins-workbench/internal/configxml"
	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// ServerInfo returns the controller's root API object.
func (f *Facade) ServerInfo(ctx context.Context) (*models.ServerInfo, error) {
	return fetchAs[models.ServerInfo](ctx, f, models.ForGlobalConfig())
}

// GlobalConfig returns the controller's config.xml.
func (f *Facade) GlobalConfig(ctx context.Context) (string, error) {
	return f.Document(ctx, models.ForGlobalConfig())
}

// UpdateGlobalConfig replaces the controller's config.xml.
func (f *Facade) UpdateGlobalConfig(ctx context.Context, config string) error {
	if _, err := configxml.Parse(config); err != nil {
		return err
	}
	return f.Mutate(ctx, models.ForGlobalConfig(), Payload{Document: config})
}

// Restart restarts the controller. A safe restart waits for running builds.
func (f *Facade) Restart(ctx context.Context, safe bool) error {
	action := ActionRestart
	if safe {
		action = ActionSafeRestart
	}
	_, err := f.Invoke(ctx, models.ForGlobalConfig(), action, Payload{})
	return err
}

// Statistics reads executor and queue load. Both requests run concurrently;
// the first failure cancels the other.
func (f *Facade) Statistics(ctx context.Context) (stats models.Statistics, err error) {
	defer func() { observeOperation("statistics", "fetch", err) }()

	var computers struct {
		BusyExecutors  int `json:"busyExecutors"`
		TotalExecutors int `json:"totalExecutors"`
	}
	var queue struct {
		Items []json.RawMessage `json:"items"`
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.getJSON(gctx, computerPath, &computers)
	})
	g.Go(func() error {
		return f.getJSON(gctx, queuePath, &queue)
	})
	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats = models.Statistics{
		BusyExecutors:  computers.BusyExecutors,
		TotalExecutors: computers.TotalExecutors,
		IdleExecutors:  computers.TotalExecutors - computers.BusyExecutors,
		QueueLength:    len(queue.Items),
	}
	return stats, nil
}

func (f *Facade) getJSON(ctx context.Context, path string, dest interface{}) error {
	body, err := f.transport.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
