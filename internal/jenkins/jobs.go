package jenkins

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// Jobs lists the top-level jobs.
func (f *Facade) Jobs(ctx context.Context) ([]models.JobSummary, error) {
	items, err := f.List(ctx, models.Descriptor{Kind: models.KindJob}, DefaultScope)
	if err != nil {
		return nil, err
	}
	return decodeList[models.JobSummary](items)
}

// Job returns a job's full attributes.
func (f *Facade) Job(ctx context.Context, name string) (models.Attributes, error) {
	return f.Fetch(ctx, models.ForJob(name))
}

// JobConfig returns a job's config.xml.
func (f *Facade) JobConfig(ctx context.Context, name string) (string, error) {
	return f.Document(ctx, models.ForJob(name))
}

// UpdateJobConfig replaces a job's config.xml.
func (f *Facade) UpdateJobConfig(ctx context.Context, name, config string) error {
	return f.Mutate(ctx, models.ForJob(name), Payload{Document: config})
}

// BuildJob schedules a build. With params the job is built through
// buildWithParameters.
func (f *Facade) BuildJob(ctx context.Context, name string, params map[string]string) error {
	if len(params) == 0 {
		_, err := f.Invoke(ctx, models.ForJob(name), ActionBuild, Payload{})
		return err
	}
	fields := url.Values{}
	for k, v := range params {
		fields.Set(k, v)
	}
	_, err := f.Invoke(ctx, models.ForJob(name), ActionBuildParameters, Payload{Fields: fields})
	return err
}

// StopBuild aborts a running build.
func (f *Facade) StopBuild(ctx context.Context, job string, number int) error {
	_, err := f.Invoke(ctx, models.ForBuild(job, number), ActionStop, Payload{})
	return err
}

// Builds lists a job's builds, newest first as Jenkins returns them.
func (f *Facade) Builds(ctx context.Context, job string) ([]models.Build, error) {
	items, err := f.List(ctx, models.ForBuild(job, 0), DefaultScope)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Build](items)
}

// BuildInfo returns one build's attributes.
func (f *Facade) BuildInfo(ctx context.Context, job string, number int) (models.Attributes, error) {
	return f.Fetch(ctx, models.ForBuild(job, number))
}

// ConsoleOutput returns a build's console log as plain text.
func (f *Facade) ConsoleOutput(ctx context.Context, job string, number int) (string, error) {
	return f.Text(ctx, models.ForBuild(job, number))
}

// CreateJob creates a job from a config.xml. Folder names create the job
// inside an existing folder.
func (f *Facade) CreateJob(ctx context.Context, name, config string) error {
	return f.Create(ctx, models.ForJob(name), Payload{Document: config})
}

// CopyJob creates newName as a copy of source.
func (f *Facade) CopyJob(ctx context.Context, source, newName string) error {
	_, err := f.Invoke(ctx, models.ForJob(newName), ActionCopy, Payload{
		Vars: map[string]interface{}{"from": source},
	})
	return err
}

// RenameJob renames a job in place. The new name is a short name; the job
// stays in its folder.
func (f *Facade) RenameJob(ctx context.Context, name, newName string) error {
	_, err := f.Invoke(ctx, models.ForJob(name), ActionRename, Payload{
		Vars: map[string]interface{}{"newName": newName},
	})
	return err
}

// DeleteJob deletes a job.
func (f *Facade) DeleteJob(ctx context.Context, name string) error {
	return f.Remove(ctx, models.ForJob(name))
}

// MoveResult reports how far a move got. Created without Deleted means both
// the original and the copy exist.
type MoveResult struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Created bool   `json:"created"`
	Deleted bool   `json:"deleted"`
}

// MoveJob copies a job's config into folder and then deletes the original.
// The steps are not atomic: if the delete fails the error is returned with
// Created set, and nothing is rolled back.
func (f *Facade) MoveJob(ctx context.Context, name, folder string) (MoveResult, error) {
	res := MoveResult{Source: name, Target: joinJob(folder, models.ShortName(name))}
	log := f.log.WithFields(logrus.Fields{"source": res.Source, "target": res.Target})

	config, err := f.JobConfig(ctx, name)
	if err != nil {
		return res, fmt.Errorf("move %s: fetching config: %w", name, err)
	}
	if err := f.CreateJob(ctx, res.Target, config); err != nil {
		return res, fmt.Errorf("move %s: creating %s: %w", name, res.Target, err)
	}
	res.Created = true
	log.Info("Created job at target")

	if err := f.DeleteJob(ctx, name); err != nil {
		log.WithError(err).Warn("Deleting original failed, both jobs now exist")
		return res, fmt.Errorf("move %s: deleting original: %w", name, err)
	}
	res.Deleted = true
	log.Info("Deleted original job")
	return res, nil
}
