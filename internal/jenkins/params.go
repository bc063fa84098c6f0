package jenkins

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jenkinsapi/jenkins-workbench/internal/configxml"
)

// Parameter edits fetch config.xml, edit it and push the whole document back.
// Two concurrent edits of one job race and the last push wins.

// ParameterUpdate tells whether SetJobParameter found the parameter. A missing
// parameter leaves the job untouched and is not an error.
type ParameterUpdate struct {
	Job   string `json:"job"`
	Name  string `json:"name"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

func (f *Facade) jobDocument(ctx context.Context, job string) (*configxml.Document, error) {
	raw, err := f.JobConfig(ctx, job)
	if err != nil {
		return nil, err
	}
	doc, err := configxml.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job, err)
	}
	return doc, nil
}

func (f *Facade) pushJobDocument(ctx context.Context, job string, doc *configxml.Document) error {
	out, err := doc.String()
	if err != nil {
		return err
	}
	return f.UpdateJobConfig(ctx, job, out)
}

// JobParameters returns every string parameter's default value by name.
func (f *Facade) JobParameters(ctx context.Context, job string) (map[string]string, error) {
	doc, err := f.jobDocument(ctx, job)
	if err != nil {
		return nil, err
	}
	return doc.ParameterValues()
}

// JobParameterDefinitions returns the parameter definitions in declaration
// order, with descriptions.
func (f *Facade) JobParameterDefinitions(ctx context.Context, job string) ([]configxml.Parameter, error) {
	doc, err := f.jobDocument(ctx, job)
	if err != nil {
		return nil, err
	}
	return doc.Parameters()
}

// JobParameter returns one parameter, or configxml.ErrParameterNotFound.
func (f *Facade) JobParameter(ctx context.Context, job, name string) (configxml.Parameter, error) {
	doc, err := f.jobDocument(ctx, job)
	if err != nil {
		return configxml.Parameter{}, err
	}
	p, ok, err := doc.FindParameter(name)
	if err != nil {
		return configxml.Parameter{}, err
	}
	if !ok {
		return configxml.Parameter{}, fmt.Errorf("job %s: parameter %q: %w", job, name, configxml.ErrParameterNotFound)
	}
	return p, nil
}

// SetJobParameter overwrites a parameter's default value. When the job has no
// such parameter nothing is pushed and Found is false.
func (f *Facade) SetJobParameter(ctx context.Context, job, name, value string) (ParameterUpdate, error) {
	res := ParameterUpdate{Job: job, Name: name, Value: value}
	doc, err := f.jobDocument(ctx, job)
	if err != nil {
		return res, err
	}
	res.Found, err = doc.UpdateParameter(name, value)
	if err != nil {
		return res, fmt.Errorf("job %s: %w", job, err)
	}
	if !res.Found {
		f.log.WithFields(logrus.Fields{"job": job, "parameter": name}).Info("Parameter not defined, job left unchanged")
		return res, nil
	}
	return res, f.pushJobDocument(ctx, job, doc)
}

// CreateJobParameter adds a string parameter. Duplicate names are appended
// unless the facade was built WithStrictParameters.
func (f *Facade) CreateJobParameter(ctx context.Context, job, name, defaultValue string) error {
	doc, err := f.jobDocument(ctx, job)
	if err != nil {
		return err
	}
	add := doc.AddParameter
	if f.strict {
		add = doc.AddParameterStrict
	}
	if err := add(name, defaultValue); err != nil {
		return fmt.Errorf("job %s: %w", job, err)
	}
	return f.pushJobDocument(ctx, job, doc)
}

// DeleteJobParameter removes a parameter definition. Deleting a missing
// parameter is a no-op and pushes nothing.
func (f *Facade) DeleteJobParameter(ctx context.Context, job, name string) (found bool, err error) {
	doc, err := f.jobDocument(ctx, job)
	if err != nil {
		return false, err
	}
	found, err = doc.DeleteParameter(name)
	if err != nil {
		return false, fmt.Errorf("job %s: %w", job, err)
	}
	if !found {
		return false, nil
	}
	return true, f.pushJobDocument(ctx, job, doc)
}
