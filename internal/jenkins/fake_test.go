package jenkins

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

const testCrumb = "c0ffee"

type request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        string
	ContentType string
	Crumb       string
}

// fakeJenkins keeps job configs in memory and records every request. Paths
// it does not model answer from static (GET) or 200 (POST).
type fakeJenkins struct {
	mu         sync.Mutex
	jobs       map[string]string
	static     map[string]string
	requests   []request
	crumbs     bool
	failDelete bool
}

func newFakeJenkins() *fakeJenkins {
	return &fakeJenkins{
		jobs:   map[string]string{},
		static: map[string]string{},
		crumbs: true,
	}
}

func (j *fakeJenkins) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	j.mu.Lock()
	defer j.mu.Unlock()
	j.requests = append(j.requests, request{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		Body:        string(body),
		ContentType: r.Header.Get("Content-Type"),
		Crumb:       r.Header.Get("Jenkins-Crumb"),
	})

	if r.URL.Path == crumbIssuerPath {
		if !j.crumbs {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"crumb": testCrumb, "crumbRequestField": "Jenkins-Crumb"})
		return
	}
	if r.Method == http.MethodPost && j.crumbs && r.Header.Get("Jenkins-Crumb") != testCrumb {
		http.Error(w, "No valid crumb was included in the request", http.StatusForbidden)
		return
	}

	job, rest := splitJobURL(r.URL.Path)
	switch {
	case r.Method == http.MethodGet && j.static[r.URL.Path] != "":
		w.Header().Set("X-Jenkins", "2.440.3")
		io.WriteString(w, j.static[r.URL.Path])
	case job != "" && rest == "/config.xml" && r.Method == http.MethodGet:
		config, ok := j.jobs[job]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, config)
	case job != "" && rest == "/config.xml" && r.Method == http.MethodPost:
		if _, ok := j.jobs[job]; !ok {
			http.NotFound(w, r)
			return
		}
		j.jobs[job] = string(body)
	case rest == "/createItem" && r.Method == http.MethodPost:
		name := joinJob(job, r.URL.Query().Get("name"))
		if _, ok := j.jobs[name]; ok {
			http.Error(w, "A job already exists with the name", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("mode") == "copy" {
			src, ok := j.jobs[r.URL.Query().Get("from")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			j.jobs[name] = src
			return
		}
		j.jobs[name] = string(body)
	case job != "" && rest == "/doDelete":
		if j.failDelete {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if _, ok := j.jobs[job]; !ok {
			http.NotFound(w, r)
			return
		}
		delete(j.jobs, job)
	case job != "" && rest == "/api/json":
		if _, ok := j.jobs[job]; !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"name": models.ShortName(job), "fullName": job})
	default:
		if r.Method == http.MethodPost {
			return
		}
		http.NotFound(w, r)
	}
}

// splitJobURL turns /job/a/job/b/config.xml into ("a/b", "/config.xml").
func splitJobURL(path string) (string, string) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	var job []string
	i := 0
	for i+1 < len(segs) && segs[i] == "job" {
		job = append(job, segs[i+1])
		i += 2
	}
	return strings.Join(job, "/"), "/" + strings.Join(segs[i:], "/")
}

func (j *fakeJenkins) has(job string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.jobs[job]
	return ok
}

func (j *fakeJenkins) config(job string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jobs[job]
}

// posts returns recorded POSTs, skipping crumb fetches.
func (j *fakeJenkins) posts() []request {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []request
	for _, r := range j.requests {
		if r.Method == http.MethodPost {
			out = append(out, r)
		}
	}
	return out
}

func (j *fakeJenkins) lastPost(t *testing.T) request {
	t.Helper()
	posts := j.posts()
	require.NotEmpty(t, posts, "no POST recorded")
	return posts[len(posts)-1]
}

func (j *fakeJenkins) count(method, path string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, r := range j.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func newTestFacade(t *testing.T, fake *fakeJenkins, opts ...Option) *Facade {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	opts = append([]Option{WithLogger(logrus.NewEntry(log))}, opts...)
	f, err := Open(&models.Connection{URL: ts.URL + "/", Username: "admin", Token: "11aa"}, opts...)
	require.NoError(t, err)
	return f
}
