package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// Payload carries the data of a write. Document is sent to XML endpoints,
// Fields to form endpoints; Vars fill extra template variables such as a new
// name or a permission id.
type Payload struct {
	Document string
	Fields   url.Values
	Vars     map[string]interface{}
}

// Facade is the single entry point over a controller's resources. Every
// per-kind path and payload rule lives in the route table; callers only deal
// in descriptors.
type Facade struct {
	transport Transport
	log       *logrus.Entry
	strict    bool
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger used for composite operations.
func WithLogger(log *logrus.Entry) Option {
	return func(f *Facade) { f.log = log }
}

// WithStrictParameters makes CreateJobParameter reject names that already
// exist instead of appending a second definition.
func WithStrictParameters() Option {
	return func(f *Facade) { f.strict = true }
}

// NewFacade returns a facade over t.
func NewFacade(t Transport, opts ...Option) *Facade {
	f := &Facade{transport: t}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return f
}

// Open builds a Client for conn and returns a facade over it.
func Open(conn *models.Connection, opts ...Option) (*Facade, error) {
	f := NewFacade(nil, opts...)
	client, err := NewClient(conn, f.log)
	if err != nil {
		return nil, err
	}
	f.transport = client
	return f, nil
}

// Version pings the controller when the transport supports it.
func (f *Facade) Version(ctx context.Context) (string, error) {
	p, ok := f.transport.(interface {
		Ping(ctx context.Context) (string, error)
	})
	if !ok {
		return "", nil
	}
	return p.Ping(ctx)
}

func (f *Facade) route(d models.Descriptor, op string) (route, error) {
	r, ok := routes[d.Kind]
	if !ok {
		return route{}, &UnsupportedOperationError{Kind: d.Kind, Op: op}
	}
	if r.named && d.Name == "" {
		return route{}, fmt.Errorf("%s: missing name: %w", d.Kind, ErrInvalidDescriptor)
	}
	return r, nil
}

func (f *Facade) path(template string, d models.Descriptor, layers ...map[string]interface{}) (string, error) {
	all := append([]map[string]interface{}{descriptorVars(d)}, layers...)
	return expand(template, mergeVars(all...))
}

// Fetch returns a single resource's attributes.
func (f *Facade) Fetch(ctx context.Context, d models.Descriptor) (attrs models.Attributes, err error) {
	defer func() { observeOperation(string(d.Kind), "fetch", err) }()
	r, err := f.route(d, "fetch")
	if err != nil {
		return nil, err
	}
	if r.fetch == "" {
		return nil, &UnsupportedOperationError{Kind: d.Kind, Op: "fetch"}
	}
	if r.numbered && d.Number <= 0 {
		return nil, fmt.Errorf("%s: missing build number: %w", d, ErrInvalidDescriptor)
	}
	path, err := f.path(r.fetch, d, r.fetchVar)
	if err != nil {
		return nil, err
	}
	body, err := f.transport.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &attrs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", d, err)
	}
	return attrs, nil
}

// List returns the elements of one of a kind's collections. Scoped listings
// (builds of a job, permissions of a group) read the descriptor name.
func (f *Facade) List(ctx context.Context, d models.Descriptor, scope string) (items []models.Attributes, err error) {
	defer func() { observeOperation(string(d.Kind), "list", err) }()
	r, ok := routes[d.Kind]
	if !ok {
		return nil, &UnsupportedOperationError{Kind: d.Kind, Op: "list"}
	}
	l, ok := r.lists[scope]
	if !ok {
		return nil, &UnsupportedOperationError{Kind: d.Kind, Op: "list " + scope}
	}
	if l.scoped && d.Name == "" {
		return nil, fmt.Errorf("%s: missing name: %w", d.Kind, ErrInvalidDescriptor)
	}
	path, err := f.path(l.path, d, l.vars)
	if err != nil {
		return nil, err
	}
	body, err := f.transport.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing %s list: %w", d.Kind, err)
	}
	raw, ok := envelope[l.key]
	if !ok {
		return []models.Attributes{}, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parsing %s list: %w", d.Kind, err)
	}
	if l.item != "" {
		for i, it := range items {
			if inner, ok := it[l.item].(map[string]interface{}); ok {
				items[i] = models.Attributes(inner)
			}
		}
	}
	if items == nil {
		items = []models.Attributes{}
	}
	return items, nil
}

// Document returns a resource's raw config.xml.
func (f *Facade) Document(ctx context.Context, d models.Descriptor) (doc string, err error) {
	defer func() { observeOperation(string(d.Kind), "document", err) }()
	r, err := f.route(d, "document")
	if err != nil {
		return "", err
	}
	if r.document == "" {
		return "", &UnsupportedOperationError{Kind: d.Kind, Op: "document"}
	}
	path, err := f.path(r.document, d)
	if err != nil {
		return "", err
	}
	body, err := f.transport.Get(ctx, path)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Text returns a plain text resource such as a build's console log.
func (f *Facade) Text(ctx context.Context, d models.Descriptor) (text string, err error) {
	defer func() { observeOperation(string(d.Kind), "text", err) }()
	r, err := f.route(d, "text")
	if err != nil {
		return "", err
	}
	if r.text == "" {
		return "", &UnsupportedOperationError{Kind: d.Kind, Op: "text"}
	}
	path, err := f.path(r.text, d)
	if err != nil {
		return "", err
	}
	body, err := f.transport.Get(ctx, path)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Create makes a new resource.
func (f *Facade) Create(ctx context.Context, d models.Descriptor, p Payload) (err error) {
	defer func() { observeOperation(string(d.Kind), "create", err) }()
	r, err := f.route(d, "create")
	if err != nil {
		return err
	}
	_, err = f.send(ctx, d, r.create, "create", p)
	return err
}

// Mutate replaces a resource's configuration.
func (f *Facade) Mutate(ctx context.Context, d models.Descriptor, p Payload) (err error) {
	defer func() { observeOperation(string(d.Kind), "mutate", err) }()
	r, err := f.route(d, "mutate")
	if err != nil {
		return err
	}
	_, err = f.send(ctx, d, r.update, "mutate", p)
	return err
}

// Remove deletes a resource.
func (f *Facade) Remove(ctx context.Context, d models.Descriptor) (err error) {
	defer func() { observeOperation(string(d.Kind), "remove", err) }()
	r, err := f.route(d, "remove")
	if err != nil {
		return err
	}
	_, err = f.send(ctx, d, r.remove, "remove", Payload{})
	return err
}

// Invoke runs a named action on a resource.
func (f *Facade) Invoke(ctx context.Context, d models.Descriptor, action string, p Payload) (body []byte, err error) {
	defer func() { observeOperation(string(d.Kind), action, err) }()
	r, err := f.route(d, action)
	if err != nil {
		return nil, err
	}
	var ep *endpoint
	if e, ok := r.actions[action]; ok {
		ep = &e
	}
	return f.send(ctx, d, ep, action, p)
}

func (f *Facade) send(ctx context.Context, d models.Descriptor, ep *endpoint, op string, p Payload) ([]byte, error) {
	if ep == nil {
		return nil, &UnsupportedOperationError{Kind: d.Kind, Op: op}
	}
	if routes[d.Kind].numbered && d.Number <= 0 {
		return nil, fmt.Errorf("%s: missing build number: %w", d, ErrInvalidDescriptor)
	}
	path, err := f.path(ep.path, d, ep.vars, p.Vars)
	if err != nil {
		return nil, err
	}
	switch ep.body {
	case encodeXML:
		return f.transport.Post(ctx, path, []byte(p.Document), "application/xml")
	case encodeForm:
		fields := p.Fields
		if fields == nil {
			fields = url.Values{}
		}
		return f.transport.PostForm(ctx, path, fields, false)
	default:
		return f.transport.Post(ctx, path, nil, "")
	}
}

// decodeList converts listing attributes into typed values.
func decodeList[T any](items []models.Attributes) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		var v T
		if err := it.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// fetchAs fetches a resource and decodes it into a typed value.
func fetchAs[T any](ctx context.Context, f *Facade, d models.Descriptor) (*T, error) {
	attrs, err := f.Fetch(ctx, d)
	if err != nil {
		return nil, err
	}
	var v T
	if err := attrs.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
