package jenkins

import (
	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// encoding is how an endpoint carries its payload.
type encoding int

const (
	encodeNone encoding = iota
	encodeXML
	encodeForm
)

// endpoint is a POST target. Vars are fixed template values merged under the
// caller's.
type endpoint struct {
	path string
	body encoding
	vars map[string]interface{}
}

// listing is a collection read. Key names the array in the response; when
// item is set every element is unwrapped from that sub-object.
type listing struct {
	path   string
	key    string
	item   string
	scoped bool // needs the descriptor name
	vars   map[string]interface{}
}

// route holds everything the facade knows about one resource kind. A nil or
// empty field means the kind does not support that operation.
type route struct {
	named    bool // descriptors of this kind must carry a name
	numbered bool // and a build number
	lists    map[string]listing
	fetch    string
	text     string
	document string
	create   *endpoint
	update   *endpoint
	remove   *endpoint
	actions  map[string]endpoint
	fetchVar map[string]interface{}
}

const (
	// DefaultScope selects a kind's main listing.
	DefaultScope = ""

	ScopeAvailable   = "available"
	ScopePermissions = "permissions"
)

// Named actions.
const (
	ActionBuild           = "build"
	ActionBuildParameters = "buildWithParameters"
	ActionStop            = "stop"
	ActionCopy            = "copy"
	ActionRename          = "rename"
	ActionInstallURL      = "installFromURL"
	ActionEnable          = "enable"
	ActionDisable         = "disable"
	ActionAddMember       = "addMember"
	ActionRemoveMember    = "removeMember"
	ActionAddPermission   = "addPermission"
	ActionRemovePerm      = "removePermission"
	ActionRestart         = "restart"
	ActionSafeRestart     = "safeRestart"
)

// Paths read by Statistics.
const (
	computerPath = "/computer/api/json"
	queuePath    = "/queue/api/json"
)

var routes = map[models.Kind]route{
	models.KindJob: {
		named: true,
		lists: map[string]listing{
			DefaultScope: {path: "/api/json{?tree}", key: "jobs", vars: map[string]interface{}{"tree": "jobs[name,url,color,_class]"}},
		},
		fetch:    "{/job*}/api/json",
		document: "{/job*}/config.xml",
		create:   &endpoint{path: "{/parent*}/createItem?name={base}", body: encodeXML},
		update:   &endpoint{path: "{/job*}/config.xml", body: encodeXML},
		remove:   &endpoint{path: "{/job*}/doDelete"},
		actions: map[string]endpoint{
			ActionBuild:           {path: "{/job*}/build"},
			ActionBuildParameters: {path: "{/job*}/buildWithParameters", body: encodeForm},
			ActionCopy:            {path: "{/parent*}/createItem?name={base}&mode=copy{&from}"},
			ActionRename:          {path: "{/job*}/doRename{?newName}"},
		},
	},
	models.KindBuild: {
		named:    true,
		numbered: true,
		lists: map[string]listing{
			DefaultScope: {path: "{/job*}/api/json{?tree}", key: "builds", scoped: true,
				vars: map[string]interface{}{"tree": "builds[number,url,result,building,timestamp,duration]"}},
		},
		fetch: "{/job*}/{number}/api/json",
		text:  "{/job*}/{number}/consoleText",
		actions: map[string]endpoint{
			ActionStop: {path: "{/job*}/{number}/stop"},
		},
	},
	models.KindView: {
		named: true,
		lists: map[string]listing{
			DefaultScope: {path: "/api/json{?tree}", key: "views", vars: map[string]interface{}{"tree": "views[name,url,_class]"}},
		},
		fetch:    "/view/{name}/api/json",
		document: "/view/{name}/config.xml",
		create:   &endpoint{path: "/createView{?name}", body: encodeXML},
		update:   &endpoint{path: "/view/{name}/config.xml", body: encodeXML},
		remove:   &endpoint{path: "/view/{name}/doDelete"},
	},
	models.KindPlugin: {
		named: true,
		lists: map[string]listing{
			DefaultScope:   {path: "/pluginManager/api/json{?depth}", key: "plugins", vars: map[string]interface{}{"depth": 1}},
			ScopeAvailable: {path: "/pluginManager/available/api/json", key: "plugins"},
		},
		fetch:  "/pluginManager/plugin/{name}/api/json",
		create: &endpoint{path: "/pluginManager/installNecessaryPlugins", body: encodeXML},
		actions: map[string]endpoint{
			ActionInstallURL: {path: "/pluginManager/installNecessaryPlugins", body: encodeForm},
			ActionEnable:     {path: "/pluginManager/plugin/{name}/makeEnabled"},
			ActionDisable:    {path: "/pluginManager/plugin/{name}/makeDisabled"},
		},
	},
	models.KindNode: {
		named: true,
		lists: map[string]listing{
			DefaultScope: {path: "/computer/api/json{?depth}", key: "computer", vars: map[string]interface{}{"depth": 1}},
		},
		fetch:    "/computer/{name}/api/json{?depth}",
		fetchVar: map[string]interface{}{"depth": 1},
		document: "/computer/{name}/config.xml",
		create:   &endpoint{path: "/computer/doCreateItem{?name}", body: encodeXML},
		update:   &endpoint{path: "/computer/{name}/config.xml", body: encodeXML},
		remove:   &endpoint{path: "/computer/{name}/doDelete"},
		actions: map[string]endpoint{
			ActionEnable:  {path: "/computer/{name}/toggleOffline{?offline}", vars: map[string]interface{}{"offline": false}},
			ActionDisable: {path: "/computer/{name}/toggleOffline{?offline}", vars: map[string]interface{}{"offline": true}},
		},
	},
	models.KindGroup: {
		named: true,
		lists: map[string]listing{
			DefaultScope:     {path: "/securityRealm/groups/api/json", key: "groups"},
			ScopePermissions: {path: "/securityRealm/group/{name}/permissions/api/json", key: "permissions", scoped: true},
		},
		fetch:  "/securityRealm/group/{name}/api/json",
		create: &endpoint{path: "/securityRealm/group/createGroup{?name}"},
		remove: &endpoint{path: "/securityRealm/group/deleteGroup{?name}"},
		actions: map[string]endpoint{
			ActionAddMember:     {path: "/securityRealm/user/{user}/addToGroup/{name}", body: encodeForm},
			ActionRemoveMember:  {path: "/securityRealm/user/{user}/removeFromGroup/{name}", body: encodeForm},
			ActionAddPermission: {path: "/securityRealm/group/{name}/permissions/add", body: encodeForm},
			ActionRemovePerm:    {path: "/securityRealm/group/{name}/permissions/remove{?permissionId,impliedBy}"},
		},
	},
	models.KindUser: {
		named: true,
		lists: map[string]listing{
			DefaultScope: {path: "/asynchPeople/api/json{?depth}", key: "users", item: "user", vars: map[string]interface{}{"depth": 1}},
		},
		fetch:    "/user/{name}/api/json{?depth}",
		fetchVar: map[string]interface{}{"depth": 1},
	},
	models.KindGlobalConfig: {
		fetch:    "/api/json",
		document: "/config.xml",
		update:   &endpoint{path: "/config.xml", body: encodeXML},
		actions: map[string]endpoint{
			ActionRestart:     {path: "/restart"},
			ActionSafeRestart: {path: "/safeRestart"},
		},
	},
}

// descriptorVars derives the template variables every route may use.
func descriptorVars(d models.Descriptor) map[string]interface{} {
	parts := splitJob(d.Name)
	vars := map[string]interface{}{
		"name":   d.Name,
		"job":    jobPath(parts),
		"number": d.Number,
	}
	if len(parts) > 0 {
		vars["parent"] = jobPath(parts[:len(parts)-1])
		vars["base"] = parts[len(parts)-1]
	}
	return vars
}

func mergeVars(layers ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}
