package models

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Kind tags the resource a Descriptor refers to.
type Kind string

const (
	KindJob          Kind = "job"
	KindBuild        Kind = "build"
	KindView         Kind = "view"
	KindPlugin       Kind = "plugin"
	KindNode         Kind = "node"
	KindGroup        Kind = "group"
	KindUser         Kind = "user"
	KindGlobalConfig Kind = "config"
)

// Kinds lists every resource kind.
func Kinds() []Kind {
	return []Kind{KindJob, KindBuild, KindView, KindPlugin, KindNode, KindGroup, KindUser, KindGlobalConfig}
}

// Descriptor identifies one remote resource. Name holds the job, view, plugin
// id, node, group or user name; for builds it is the job and Number the build.
// Folder jobs use slash separated names ("folder/job").
type Descriptor struct {
	Kind   Kind   `json:"kind"`
	Name   string `json:"name,omitempty"`
	Number int    `json:"number,omitempty"`
}

func (d Descriptor) String() string {
	switch d.Kind {
	case KindBuild:
		return fmt.Sprintf("%s %s#%d", d.Kind, d.Name, d.Number)
	case KindGlobalConfig:
		return string(d.Kind)
	}
	return fmt.Sprintf("%s %s", d.Kind, d.Name)
}

// ForJob and the other For* helpers build descriptors of one kind.
func ForJob(name string) Descriptor { return Descriptor{Kind: KindJob, Name: name} }
func ForBuild(job string, number int) Descriptor { return Descriptor{Kind: KindBuild, Name: job, Number: number} }
func ForView(name string) Descriptor { return Descriptor{Kind: KindView, Name: name} }
func ForPlugin(id string) Descriptor { return Descriptor{Kind: KindPlugin, Name: id} }
func ForNode(name string) Descriptor { return Descriptor{Kind: KindNode, Name: name} }
func ForGroup(name string) Descriptor { return Descriptor{Kind: KindGroup, Name: name} }
func ForUser(id string) Descriptor { return Descriptor{Kind: KindUser, Name: id} }
func ForGlobalConfig() Descriptor { return Descriptor{Kind: KindGlobalConfig} }

// Attributes is a resource as returned by the Jenkins JSON API.
type Attributes map[string]interface{}

// StringField returns a string field, or "" when absent or not a string.
func (a Attributes) StringField(field string) string {
	if v, ok := a[field].(string); ok {
		return v
	}
	return ""
}

// Decode copies the attributes into out, a pointer to one of the typed views
// below. Fields are matched by their json tag.
func (a Attributes) Decode(out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]interface{}(a)); err != nil {
		return fmt.Errorf("decoding attributes: %w", err)
	}
	return nil
}

// ShortName returns the last path element of a folder job name.
func ShortName(job string) string {
	job = strings.Trim(job, "/")
	if i := strings.LastIndex(job, "/"); i >= 0 {
		return job[i+1:]
	}
	return job
}

// ServerInfo is the controller's root API object.
type ServerInfo struct {
	Mode            string        `json:"mode"`
	NodeName        string        `json:"nodeName"`
	NodeDescription string        `json:"nodeDescription"`
	NumExecutors    int           `json:"numExecutors"`
	Description     string        `json:"description"`
	Jobs            []JobSummary  `json:"jobs"`
	Views           []ViewSummary `json:"views"`
	QuietingDown    bool          `json:"quietingDown"`
	UseCrumbs       bool          `json:"useCrumbs"`
	UseSecurity     bool          `json:"useSecurity"`
	SlaveAgentPort  int           `json:"slaveAgentPort"`
	Version         string        `json:"version,omitempty"`
}

// JobSummary is a job entry in a listing.
type JobSummary struct {
	Class string `json:"_class"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Color string `json:"color"`
}

// ViewSummary is a view entry in a listing.
type ViewSummary struct {
	Class string `json:"_class"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

// Build is one run of a job.
type Build struct {
	Number    int    `json:"number"`
	URL       string `json:"url"`
	Result    string `json:"result"`
	Building  bool   `json:"building"`
	Timestamp int64  `json:"timestamp"`
	Duration  int64  `json:"duration"`
}

// Plugin is a plugin as reported by the plugin manager.
type Plugin struct {
	ShortName           string `json:"shortName"`
	LongName            string `json:"longName"`
	DisplayName         string `json:"displayName"`
	URL                 string `json:"url"`
	Version             string `json:"version"`
	Enabled             bool   `json:"enabled"`
	Active              bool   `json:"active"`
	Bundled             bool   `json:"bundled"`
	Pinned              bool   `json:"pinned"`
	SupportsDynamicLoad string `json:"supportsDynamicLoad"`
	Author              string `json:"author"`
	Description         string `json:"description"`
}

// Group is a security realm group.
type Group struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// User is a Jenkins user.
type User struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	Description  string `json:"description"`
	EmailAddress string `json:"emailAddress,omitempty"`
	AbsoluteURL  string `json:"absoluteUrl,omitempty"`
}

// Node is a build agent or the built-in node.
type Node struct {
	DisplayName           string                 `json:"displayName"`
	Idle                  bool                   `json:"idle"`
	Offline               bool                   `json:"offline"`
	TemporarilyOffline    bool                   `json:"temporarilyOffline"`
	TemporaryOfflineCause map[string]interface{} `json:"temporaryOfflineCause,omitempty"`
	NumExecutors          int                    `json:"numExecutors"`
}

// Statistics summarizes controller load.
type Statistics struct {
	BusyExecutors  int `json:"busyExecutors"`
	TotalExecutors int `json:"totalExecutors"`
	IdleExecutors  int `json:"idleExecutors"`
	QueueLength    int `json:"queueLength"`
}
