package jenkins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jtacoma/uritemplates"
)

// expand fills a path template. Empty strings and empty lists are left
// undefined so optional query parameters and folder prefixes drop out.
func expand(template string, vars map[string]interface{}) (string, error) {
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return "", fmt.Errorf("parsing path template %q: %w", template, err)
	}
	values := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		switch tv := v.(type) {
		case string:
			if tv != "" {
				values[k] = tv
			}
		case int:
			values[k] = strconv.Itoa(tv)
		case bool:
			values[k] = strconv.FormatBool(tv)
		case []string:
			if len(tv) == 0 {
				continue
			}
			items := make([]interface{}, len(tv))
			for i, s := range tv {
				items[i] = s
			}
			values[k] = items
		default:
			values[k] = v
		}
	}
	path, err := tmpl.Expand(values)
	if err != nil {
		return "", fmt.Errorf("expanding path template %q: %w", template, err)
	}
	return path, nil
}

// splitJob splits a folder job name ("team/app/build") into its elements.
func splitJob(name string) []string {
	var parts []string
	for _, p := range strings.Split(name, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// jobPath interleaves the "job" marker Jenkins expects before every folder
// level, so {/job*} expands to /job/team/job/app.
func jobPath(parts []string) []string {
	out := make([]string, 0, 2*len(parts))
	for _, p := range parts {
		out = append(out, "job", p)
	}
	return out
}

// joinJob is the inverse of splitJob.
func joinJob(folder, name string) string {
	return strings.Join(append(splitJob(folder), splitJob(name)...), "/")
}
