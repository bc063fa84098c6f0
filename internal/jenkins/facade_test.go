package jenkins

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenkinsapi/jenkins-workbench/internal/configxml"
	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// stubTransport answers GETs from a map and records POST paths.
type stubTransport struct {
	mu    sync.Mutex
	gets  map[string]string
	posts []string
	err   error
}

func (s *stubTransport) Get(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if body, ok := s.gets[path]; ok {
		return []byte(body), nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, &TransportError{Method: "GET", Path: path, StatusCode: 404}
}

func (s *stubTransport) Post(ctx context.Context, path string, body []byte, contentType string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, path)
	return nil, nil
}

func (s *stubTransport) PostForm(ctx context.Context, path string, fields url.Values, expectResult bool) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, path+" "+fields.Encode())
	return nil, nil
}

func TestFacade_UnsupportedOperations(t *testing.T) {
	f := NewFacade(&stubTransport{})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		op   string
	}{
		{"remove build", func() error { return f.Remove(ctx, models.ForBuild("app", 1)) }, "remove"},
		{"create user", func() error { return f.Create(ctx, models.ForUser("bob"), Payload{}) }, "create"},
		{"user document", func() error { _, err := f.Document(ctx, models.ForUser("bob")); return err }, "document"},
		{"remove plugin", func() error { return f.Remove(ctx, models.ForPlugin("git")) }, "remove"},
		{"unknown action", func() error { _, err := f.Invoke(ctx, models.ForJob("app"), "explode", Payload{}); return err }, "explode"},
		{"unknown kind", func() error { _, err := f.Fetch(ctx, models.Descriptor{Kind: "printer", Name: "x"}); return err }, "fetch"},
		{"unknown scope", func() error { _, err := f.List(ctx, models.Descriptor{Kind: models.KindJob}, "archived"); return err }, "list archived"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			var uo *UnsupportedOperationError
			require.True(t, errors.As(err, &uo), "got %v", err)
			assert.Equal(t, tc.op, uo.Op)
		})
	}
}

func TestFacade_InvalidDescriptor(t *testing.T) {
	f := NewFacade(&stubTransport{})
	ctx := context.Background()

	_, err := f.Fetch(ctx, models.ForJob(""))
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	_, err = f.Fetch(ctx, models.ForBuild("app", 0))
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	assert.ErrorIs(t, f.StopBuild(ctx, "app", 0), ErrInvalidDescriptor)
	_, err = f.List(ctx, models.Descriptor{Kind: models.KindBuild}, DefaultScope)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestFacade_UsersAreUnwrapped(t *testing.T) {
	st := &stubTransport{gets: map[string]string{
		"/asynchPeople/api/json?depth=1": `{"users":[{"lastChange":null,"user":{"id":"alice","fullName":"Alice A"}},{"user":{"id":"bob","fullName":"Bob"}}]}`,
		"/user/alice/api/json?depth=1":   `{"id":"alice","fullName":"Alice A","description":"ops","property":[]}`,
	}}
	f := NewFacade(st)
	ctx := context.Background()

	users, err := f.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.User{ID: "alice", FullName: "Alice A"}, users[0])

	u, err := f.User(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "ops", u.Description)
}

func TestFacade_ListMissingKey(t *testing.T) {
	st := &stubTransport{gets: map[string]string{"/securityRealm/groups/api/json": `{}`}}
	groups, err := NewFacade(st).Groups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFacade_Groups(t *testing.T) {
	st := &stubTransport{gets: map[string]string{
		"/securityRealm/group/devs/api/json":             `{"name":"devs","description":"developers","members":["alice","bob"]}`,
		"/securityRealm/group/devs/permissions/api/json": `{"permissions":[{"permission":"hudson.model.Item.Build"},{"permission":"hudson.model.Item.Read"}]}`,
	}}
	f := NewFacade(st)
	ctx := context.Background()

	g, err := f.Group(ctx, "devs")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, g.Members)

	perms, err := f.GroupPermissions(ctx, "devs")
	require.NoError(t, err)
	assert.Equal(t, []string{"hudson.model.Item.Build", "hudson.model.Item.Read"}, perms)

	require.NoError(t, f.CreateGroup(ctx, "ops"))
	require.NoError(t, f.DeleteGroup(ctx, "ops"))
	require.NoError(t, f.AddUserToGroup(ctx, "alice", "ops"))
	require.NoError(t, f.RemoveUserFromGroup(ctx, "alice", "ops"))
	require.NoError(t, f.AddGroupPermission(ctx, "ops", "hudson.model.Item.Build", ""))
	require.NoError(t, f.AddGroupPermission(ctx, "ops", "hudson.model.Item.Read", "hudson.model.Hudson.Read"))
	require.NoError(t, f.RemoveGroupPermission(ctx, "ops", "hudson.model.Item.Build", ""))

	assert.Equal(t, []string{
		"/securityRealm/group/createGroup?name=ops",
		"/securityRealm/group/deleteGroup?name=ops",
		"/securityRealm/user/alice/addToGroup/ops groupname=ops&username=alice",
		"/securityRealm/user/alice/removeFromGroup/ops groupname=ops&username=alice",
		"/securityRealm/group/ops/permissions/add permissionId=hudson.model.Item.Build",
		"/securityRealm/group/ops/permissions/add impliedBy=hudson.model.Hudson.Read&permissionId=hudson.model.Item.Read",
		"/securityRealm/group/ops/permissions/remove?permissionId=hudson.model.Item.Build",
	}, st.posts)
}

func TestFacade_Plugins(t *testing.T) {
	fake := newFakeJenkins()
	fake.static["/pluginManager/api/json"] = `{"plugins":[{"shortName":"git","version":"5.2.1","enabled":true,"active":true}]}`
	fake.static["/pluginManager/available/api/json"] = `{"plugins":[{"shortName":"matrix-auth","version":"3.2"}]}`
	fake.static["/pluginManager/plugin/git/api/json"] = `{"shortName":"git","longName":"Git plugin","version":"5.2.1","enabled":true}`
	f := newTestFacade(t, fake)
	ctx := context.Background()

	installed, err := f.InstalledPlugins(ctx)
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.True(t, installed[0].Enabled)

	available, err := f.AvailablePlugins(ctx)
	require.NoError(t, err)
	assert.Equal(t, "matrix-auth", available[0].ShortName)

	p, err := f.Plugin(ctx, "git")
	require.NoError(t, err)
	assert.Equal(t, "Git plugin", p.LongName)

	require.NoError(t, f.InstallPlugin(ctx, "git", "5.2.1"))
	install := fake.lastPost(t)
	assert.Equal(t, "/pluginManager/installNecessaryPlugins", install.Path)
	assert.Equal(t, `<jenkins><install plugin="git@5.2.1"/></jenkins>`, install.Body)

	require.NoError(t, f.InstallPlugin(ctx, "ws-cleanup", ""))
	assert.Contains(t, fake.lastPost(t).Body, `plugin="ws-cleanup@latest"`)

	require.NoError(t, f.InstallPluginFromURL(ctx, "https://updates.example.com/download/plugins/git/5.2.1/git.hpi"))
	assert.Equal(t, "url=https%3A%2F%2Fupdates.example.com%2Fdownload%2Fplugins%2Fgit%2F5.2.1%2Fgit.hpi", fake.lastPost(t).Body)
	assert.Error(t, f.InstallPluginFromURL(ctx, "not a url"))

	require.NoError(t, f.EnablePlugin(ctx, "git"))
	assert.Equal(t, "/pluginManager/plugin/git/makeEnabled", fake.lastPost(t).Path)
	require.NoError(t, f.DisablePlugin(ctx, "git"))
	assert.Equal(t, "/pluginManager/plugin/git/makeDisabled", fake.lastPost(t).Path)
}

func TestFacade_Nodes(t *testing.T) {
	fake := newFakeJenkins()
	fake.static["/computer/api/json"] = `{"busyExecutors":1,"totalExecutors":4,"computer":[{"displayName":"Built-In Node","idle":true,"numExecutors":2},{"displayName":"agent-1","offline":true,"temporarilyOffline":true,"numExecutors":2}]}`
	fake.static["/computer/agent-1/api/json"] = `{"displayName":"agent-1","offline":true,"temporaryOfflineCause":{"description":"maintenance"}}`
	fake.static["/computer/agent-1/config.xml"] = `<slave><name>agent-1</name></slave>`
	f := newTestFacade(t, fake)
	ctx := context.Background()

	nodes, err := f.Nodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.True(t, nodes[1].TemporarilyOffline)

	n, err := f.Node(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, "maintenance", n.TemporaryOfflineCause["description"])

	config, err := f.NodeConfig(ctx, "agent-1")
	require.NoError(t, err)
	assert.Contains(t, config, "<name>agent-1</name>")

	require.NoError(t, f.CreateNode(ctx, "agent-2", `<slave><name>agent-2</name></slave>`))
	create := fake.lastPost(t)
	assert.Equal(t, "/computer/doCreateItem", create.Path)
	assert.Equal(t, "agent-2", create.Query.Get("name"))
	assert.ErrorIs(t, f.CreateNode(ctx, "agent-3", "<slave>"), configxml.ErrMalformedDocument)

	require.NoError(t, f.DisableNode(ctx, "agent-2"))
	assert.Equal(t, "true", fake.lastPost(t).Query.Get("offline"))
	require.NoError(t, f.EnableNode(ctx, "agent-2"))
	assert.Equal(t, "false", fake.lastPost(t).Query.Get("offline"))
	require.NoError(t, f.DeleteNode(ctx, "agent-2"))
	assert.Equal(t, "/computer/agent-2/doDelete", fake.lastPost(t).Path)
}

func TestFacade_Views(t *testing.T) {
	fake := newFakeJenkins()
	fake.static["/api/json"] = `{"views":[{"_class":"hudson.model.AllView","name":"all","url":"http://ci/"}]}`
	fake.static["/view/nightly/config.xml"] = `<hudson.model.ListView><name>nightly</name><jobNames><string>a</string><string>b</string></jobNames></hudson.model.ListView>`
	f := newTestFacade(t, fake)
	ctx := context.Background()

	views, err := f.Views(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "all", views[0].Name)

	jobs, err := f.ViewJobs(ctx, "nightly")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, jobs)

	require.NoError(t, f.CreateView(ctx, "nightly-2", "listview", []string{"b", "a"}))
	create := fake.lastPost(t)
	assert.Equal(t, "/createView", create.Path)
	assert.Equal(t, "nightly-2", create.Query.Get("name"))
	assert.Contains(t, create.Body, "<string>b</string>")

	n := len(fake.posts())
	err = f.CreateView(ctx, "x", "myview", nil)
	assert.ErrorIs(t, err, configxml.ErrUnsupportedViewType)
	assert.Len(t, fake.posts(), n)

	require.NoError(t, f.UpdateViewJobs(ctx, "nightly", "listview", []string{"c"}))
	assert.Equal(t, "/view/nightly/config.xml", fake.lastPost(t).Path)
	require.NoError(t, f.DeleteView(ctx, "nightly"))
	assert.Equal(t, "/view/nightly/doDelete", fake.lastPost(t).Path)
}

func TestFacade_ServerAndStatistics(t *testing.T) {
	fake := newFakeJenkins()
	fake.static["/api/json"] = `{"mode":"NORMAL","nodeDescription":"the built-in node","numExecutors":2,"useCrumbs":true,"jobs":[{"name":"app"}]}`
	fake.static["/computer/api/json"] = `{"busyExecutors":3,"totalExecutors":8,"computer":[]}`
	fake.static["/queue/api/json"] = `{"items":[{"id":1},{"id":2}]}`
	fake.static["/config.xml"] = `<?xml version='1.1' encoding='UTF-8'?><hudson><numExecutors>2</numExecutors></hudson>`
	f := newTestFacade(t, fake)
	ctx := context.Background()

	info, err := f.ServerInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NORMAL", info.Mode)
	assert.True(t, info.UseCrumbs)
	assert.Equal(t, "app", info.Jobs[0].Name)

	stats, err := f.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Statistics{BusyExecutors: 3, TotalExecutors: 8, IdleExecutors: 5, QueueLength: 2}, stats)

	config, err := f.GlobalConfig(ctx)
	require.NoError(t, err)
	assert.Contains(t, config, "<numExecutors>2</numExecutors>")
	require.NoError(t, f.UpdateGlobalConfig(ctx, config))
	assert.Equal(t, "/config.xml", fake.lastPost(t).Path)
	assert.ErrorIs(t, f.UpdateGlobalConfig(ctx, "not xml"), configxml.ErrMalformedDocument)

	require.NoError(t, f.Restart(ctx, true))
	assert.Equal(t, "/safeRestart", fake.lastPost(t).Path)
	require.NoError(t, f.Restart(ctx, false))
	assert.Equal(t, "/restart", fake.lastPost(t).Path)

	version, err := f.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.440.3", version)
}

func TestFacade_StatisticsFailure(t *testing.T) {
	st := &stubTransport{gets: map[string]string{computerPath: `{"busyExecutors":1,"totalExecutors":2}`}}
	_, err := NewFacade(st).Statistics(context.Background())
	assert.True(t, IsNotFound(err))
}
