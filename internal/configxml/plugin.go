package configxml

import (
	"strings"
)

// PluginInstallRequest builds the document posted to the plugin manager's
// installNecessaryPlugins endpoint to install id at version.
func PluginInstallRequest(id, version string) string {
	var b strings.Builder
	b.WriteString(`<jenkins><install plugin="`)
	attrEscaper.WriteString(&b, id+"@"+version)
	b.WriteString(`"/></jenkins>`)
	return b.String()
}
