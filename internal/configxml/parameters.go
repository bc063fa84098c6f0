package configxml

import (
	"errors"
	"fmt"
)

// Element names of the parameter section in a job config.xml.
const (
	PropertiesTag            = "properties"
	ParametersPropertyTag    = "hudson.model.ParametersDefinitionProperty"
	ParameterDefinitionsTag  = "parameterDefinitions"
	StringParameterTag       = "hudson.model.StringParameterDefinition"
	parameterNameTag         = "name"
	parameterDescriptionTag  = "description"
	parameterDefaultValueTag = "defaultValue"
	parameterTrimTag         = "trim"
)

var (
	// ErrParameterNotFound is returned when a lookup names a parameter the
	// document does not define.
	ErrParameterNotFound = errors.New("parameter not found")

	// ErrDuplicateParameter is returned by AddParameterStrict when the name
	// is already defined.
	ErrDuplicateParameter = errors.New("parameter already defined")
)

// Parameter is a string parameter definition.
type Parameter struct {
	Name         string `json:"name"`
	DefaultValue string `json:"defaultValue"`
	Description  string `json:"description,omitempty"`
}

func (d *Document) parameterNodes() []int {
	return d.elements(0, StringParameterTag)
}

func (d *Document) parameterName(idx int) string {
	if n := d.firstElement(idx, parameterNameTag); n >= 0 {
		return d.text(n)
	}
	return ""
}

func (d *Document) parameter(idx int) Parameter {
	p := Parameter{Name: d.parameterName(idx)}
	if n := d.firstElement(idx, parameterDefaultValueTag); n >= 0 {
		p.DefaultValue = d.text(n)
	}
	if n := d.firstElement(idx, parameterDescriptionTag); n >= 0 {
		p.Description = d.text(n)
	}
	return p
}

func (d *Document) findParameterNode(name string) int {
	for _, idx := range d.parameterNodes() {
		if d.parameterName(idx) == name {
			return idx
		}
	}
	return -1
}

// FindParameter returns the first definition named name in declaration order.
func (d *Document) FindParameter(name string) (Parameter, bool, error) {
	if err := d.valid(); err != nil {
		return Parameter{}, false, err
	}
	idx := d.findParameterNode(name)
	if idx < 0 {
		return Parameter{}, false, nil
	}
	return d.parameter(idx), true, nil
}

// Parameters returns every string parameter definition in declaration order.
func (d *Document) Parameters() ([]Parameter, error) {
	if err := d.valid(); err != nil {
		return nil, err
	}
	var out []Parameter
	for _, idx := range d.parameterNodes() {
		out = append(out, d.parameter(idx))
	}
	return out, nil
}

// ParameterValues maps each parameter name to its default value. If a name is
// declared more than once the last declaration wins.
func (d *Document) ParameterValues() (map[string]string, error) {
	params, err := d.Parameters()
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(params))
	for _, p := range params {
		values[p.Name] = p.DefaultValue
	}
	return values, nil
}

// propertiesSection returns the root element's own properties section, or
// failing that the first properties element anywhere.
func (d *Document) propertiesSection() (int, error) {
	if root := d.firstChildElement(0, ""); root >= 0 {
		if idx := d.firstChildElement(root, PropertiesTag); idx >= 0 {
			return idx, nil
		}
	}
	idx := d.firstElement(0, PropertiesTag)
	if idx < 0 {
		return -1, ErrMissingSection
	}
	return idx, nil
}

// definitionsContainer finds or creates the parameterDefinitions element
// inside the properties section.
func (d *Document) definitionsContainer() (int, error) {
	props, err := d.propertiesSection()
	if err != nil {
		return -1, err
	}
	prop := d.firstChildElement(props, ParametersPropertyTag)
	if prop < 0 {
		prop = d.newElement(props, ParametersPropertyTag, "")
	}
	defs := d.firstChildElement(prop, ParameterDefinitionsTag)
	if defs < 0 {
		defs = d.newElement(prop, ParameterDefinitionsTag, "")
	}
	return defs, nil
}

// AddParameter appends a string parameter definition. It does not check for an
// existing definition of the same name; see AddParameterStrict.
func (d *Document) AddParameter(name, defaultValue string) error {
	if err := d.valid(); err != nil {
		return err
	}
	defs, err := d.definitionsContainer()
	if err != nil {
		return err
	}
	param := d.newElement(defs, StringParameterTag, "")
	d.newElement(param, parameterNameTag, name)
	d.newElement(param, parameterDefaultValueTag, defaultValue)
	d.newElement(param, parameterTrimTag, "false")
	return nil
}

// AddParameterStrict is AddParameter but refuses duplicate names.
func (d *Document) AddParameterStrict(name, defaultValue string) error {
	if err := d.valid(); err != nil {
		return err
	}
	if d.findParameterNode(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateParameter, name)
	}
	return d.AddParameter(name, defaultValue)
}

// UpdateParameter overwrites the default value of the first definition named
// name. A missing name leaves the document untouched and reports found=false
// without an error.
func (d *Document) UpdateParameter(name, value string) (found bool, err error) {
	if err := d.valid(); err != nil {
		return false, err
	}
	if _, err := d.propertiesSection(); err != nil {
		return false, err
	}
	idx := d.findParameterNode(name)
	if idx < 0 {
		return false, nil
	}
	dv := d.firstElement(idx, parameterDefaultValueTag)
	if dv < 0 {
		dv = d.newElement(idx, parameterDefaultValueTag, "")
	}
	d.setText(dv, value)
	return true, nil
}

// DeleteParameter removes the first definition named name. Deleting a name
// that is not defined is a no-op.
func (d *Document) DeleteParameter(name string) (found bool, err error) {
	if err := d.valid(); err != nil {
		return false, err
	}
	if _, err := d.propertiesSection(); err != nil {
		return false, err
	}
	idx := d.findParameterNode(name)
	if idx < 0 {
		return false, nil
	}
	d.detach(idx)
	return true, nil
}
