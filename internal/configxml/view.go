package configxml

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedViewType is matched by errors from GenerateView for view
// types outside the supported set.
var ErrUnsupportedViewType = errors.New("unsupported view type")

// UnsupportedViewTypeError names the rejected view type.
type UnsupportedViewTypeError struct {
	Type string
}

func (e *UnsupportedViewTypeError) Error() string {
	return fmt.Sprintf("unsupported view type %q", e.Type)
}

func (e *UnsupportedViewTypeError) Is(target error) bool {
	return target == ErrUnsupportedViewType
}

type viewTemplate struct {
	class   string
	columns []string
}

// viewTypes is the closed set of view types GenerateView can emit. New types
// have to be added here explicitly.
var viewTypes = map[string]viewTemplate{
	"listview": {
		class: "hudson.model.ListView",
		columns: []string{
			"hudson.views.StatusColumn",
			"hudson.views.WeatherColumn",
			"hudson.views.JobColumn",
			"hudson.views.LastSuccessColumn",
			"hudson.views.LastFailureColumn",
			"hudson.views.LastDurationColumn",
			"hudson.views.BuildButtonColumn",
		},
	},
}

// SupportedViewTypes returns the view types GenerateView accepts.
func SupportedViewTypes() []string {
	types := make([]string, 0, len(viewTypes))
	for t := range viewTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// GenerateView produces the config.xml of a new view. Job names are written in
// the order given; Jenkins sorts them with the declared comparator.
func GenerateView(name, viewType string, jobNames []string) (string, error) {
	tmpl, ok := viewTypes[strings.ToLower(viewType)]
	if !ok {
		return "", &UnsupportedViewTypeError{Type: viewType}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<%s>\n", tmpl.class)
	b.WriteString("  <name>")
	textEscaper.WriteString(&b, name)
	b.WriteString("</name>\n")
	b.WriteString("  <filterExecutors>false</filterExecutors>\n")
	b.WriteString("  <filterQueue>false</filterQueue>\n")
	b.WriteString("  <properties class=\"hudson.model.View$PropertyList\"/>\n")
	b.WriteString("  <jobNames>\n")
	b.WriteString("    <comparator class=\"hudson.util.CaseInsensitiveComparator\"/>\n")
	for _, job := range jobNames {
		b.WriteString("    <string>")
		textEscaper.WriteString(&b, job)
		b.WriteString("</string>\n")
	}
	b.WriteString("  </jobNames>\n")
	b.WriteString("  <jobFilters/>\n")
	b.WriteString("  <columns>\n")
	for _, col := range tmpl.columns {
		fmt.Fprintf(&b, "    <%s/>\n", col)
	}
	b.WriteString("  </columns>\n")
	b.WriteString("  <recurse>false</recurse>\n")
	fmt.Fprintf(&b, "</%s>\n", tmpl.class)
	return b.String(), nil
}

// ViewJobNames lists the job names declared in a view config.xml.
func ViewJobNames(doc *Document) ([]string, error) {
	if err := doc.valid(); err != nil {
		return nil, err
	}
	jobs := doc.firstElement(0, "jobNames")
	if jobs < 0 {
		return nil, nil
	}
	var names []string
	for _, c := range doc.nodes[jobs].children {
		if doc.nodes[c].kind == ElementNode && doc.nodes[c].name == "string" {
			names = append(names, doc.text(c))
		}
	}
	return names, nil
}
