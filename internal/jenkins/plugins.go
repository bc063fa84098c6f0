package jenkins

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jenkinsapi/jenkins-workbench/internal/configxml"
	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// AvailablePlugins lists plugins offered by the update center.
func (f *Facade) AvailablePlugins(ctx context.Context) ([]models.Plugin, error) {
	items, err := f.List(ctx, models.Descriptor{Kind: models.KindPlugin}, ScopeAvailable)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Plugin](items)
}

// InstalledPlugins lists installed plugins.
func (f *Facade) InstalledPlugins(ctx context.Context) ([]models.Plugin, error) {
	items, err := f.List(ctx, models.Descriptor{Kind: models.KindPlugin}, DefaultScope)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Plugin](items)
}

// Plugin returns an installed plugin.
func (f *Facade) Plugin(ctx context.Context, id string) (*models.Plugin, error) {
	return fetchAs[models.Plugin](ctx, f, models.ForPlugin(id))
}

// InstallPlugin asks the update center to install id. An empty version means
// the latest release. Installation continues on the controller after the
// call returns.
func (f *Facade) InstallPlugin(ctx context.Context, id, version string) error {
	if version == "" {
		version = "latest"
	}
	return f.Create(ctx, models.ForPlugin(id), Payload{Document: configxml.PluginInstallRequest(id, version)})
}

// InstallPluginFromURL installs a plugin archive from a URL.
func (f *Facade) InstallPluginFromURL(ctx context.Context, pluginURL string) error {
	u, err := url.Parse(pluginURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid plugin url %q", pluginURL)
	}
	_, err = f.Invoke(ctx, models.ForPlugin(pluginFileName(u)), ActionInstallURL, Payload{
		Fields: url.Values{"url": {pluginURL}},
	})
	return err
}

// EnablePlugin enables an installed plugin. It takes effect after a restart.
func (f *Facade) EnablePlugin(ctx context.Context, id string) error {
	_, err := f.Invoke(ctx, models.ForPlugin(id), ActionEnable, Payload{})
	return err
}

// DisablePlugin disables an installed plugin. It takes effect after a restart.
func (f *Facade) DisablePlugin(ctx context.Context, id string) error {
	_, err := f.Invoke(ctx, models.ForPlugin(id), ActionDisable, Payload{})
	return err
}

// pluginFileName names the descriptor of a URL install after the archive.
func pluginFileName(u *url.URL) string {
	name := u.Path[strings.LastIndex(u.Path, "/")+1:]
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".hpi"), ".jpi")
	if name == "" {
		return u.Host
	}
	return name
}
