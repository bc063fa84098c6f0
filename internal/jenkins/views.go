package jenkins

import (
	"context"

	"github.com/jenkinsapi/jenkins-workbench/internal/configxml"
	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// Views lists the controller's views.
func (f *Facade) Views(ctx context.Context) ([]models.ViewSummary, error) {
	items, err := f.List(ctx, models.Descriptor{Kind: models.KindView}, DefaultScope)
	if err != nil {
		return nil, err
	}
	return decodeList[models.ViewSummary](items)
}

// View returns a view's attributes, including its jobs.
func (f *Facade) View(ctx context.Context, name string) (models.Attributes, error) {
	return f.Fetch(ctx, models.ForView(name))
}

// ViewConfig returns a view's config.xml.
func (f *Facade) ViewConfig(ctx context.Context, name string) (string, error) {
	return f.Document(ctx, models.ForView(name))
}

// CreateView generates a view config for the given type and jobs and creates
// the view. Unsupported types fail before anything is sent.
func (f *Facade) CreateView(ctx context.Context, name, viewType string, jobs []string) error {
	config, err := configxml.GenerateView(name, viewType, jobs)
	if err != nil {
		return err
	}
	return f.Create(ctx, models.ForView(name), Payload{Document: config})
}

// UpdateView replaces a view's config.xml as given.
func (f *Facade) UpdateView(ctx context.Context, name, config string) error {
	if _, err := configxml.Parse(config); err != nil {
		return err
	}
	return f.Mutate(ctx, models.ForView(name), Payload{Document: config})
}

// UpdateViewJobs regenerates a view's config with a new job list.
func (f *Facade) UpdateViewJobs(ctx context.Context, name, viewType string, jobs []string) error {
	config, err := configxml.GenerateView(name, viewType, jobs)
	if err != nil {
		return err
	}
	return f.Mutate(ctx, models.ForView(name), Payload{Document: config})
}

// ViewJobs lists the job names a view's config declares.
func (f *Facade) ViewJobs(ctx context.Context, name string) ([]string, error) {
	raw, err := f.ViewConfig(ctx, name)
	if err != nil {
		return nil, err
	}
	doc, err := configxml.Parse(raw)
	if err != nil {
		return nil, err
	}
	return configxml.ViewJobNames(doc)
}

// DeleteView deletes a view.
func (f *Facade) DeleteView(ctx context.Context, name string) error {
	return f.Remove(ctx, models.ForView(name))
}
