/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package resmgr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"

	"github.com/stefanprodan/mldeploy/pkg/client"
	"github.com/stefanprodan/mldeploy/pkg/settings"
)

// idFields are the properties used by the fake cluster to name created resources.
var idFields = []string{
	"database-name", "forest-name", "pipeline-name", "domain-name",
	"partition-name", "partition-number", "name",
}

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]interface{}
	// Keys holds the body properties in the order they were sent.
	Keys []string
}

// fakeCluster is an in-memory management API.
type fakeCluster struct {
	mu        sync.Mutex
	resources map[string]map[string]interface{}
	requests  []recordedRequest
	failures  map[string]int
	hosts     []string
	version   string
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{
		resources: map[string]map[string]interface{}{},
		failures:  map[string]int{},
		hosts:     []string{"node1.local"},
		version:   "10.0-9.1",
	}
}

func resourceKey(path string, query url.Values) string {
	if uri := query.Get("uri"); uri != "" {
		return path + "?uri=" + uri
	}
	return path
}

// put stores a resource as if it had been created before the test.
func (c *fakeCluster) put(key string, props map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources[key] = props
}

func (c *fakeCluster) get(key string) (map[string]interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.resources[key]
	return r, ok
}

// fail makes every request matching 'METHOD path' return the given status code.
func (c *fakeCluster) fail(method, path string, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[method+" "+path] = status
}

func (c *fakeCluster) recorded() []recordedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]recordedRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// count returns the number of requests with the given method whose path has the given prefix.
func (c *fakeCluster) count(method, pathPrefix string) int {
	n := 0
	for _, r := range c.recorded() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"errorResponse":{"statusCode":%d,"message":%q}}`, status, msg)
}

func (c *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
	if r.Body != nil {
		var s settings.Settings
		if err := json.NewDecoder(r.Body).Decode(&s); err == nil {
			rec.Body = s.Map()
			rec.Keys = s.Keys()
		}
	}

	c.mu.Lock()
	c.requests = append(c.requests, rec)
	status, failing := c.failures[r.Method+" "+r.URL.Path]
	c.mu.Unlock()

	if failing {
		writeError(w, status, "injected failure")
		return
	}

	path := r.URL.Path
	query := r.URL.Query()

	switch {
	case r.Method == http.MethodGet && path == DefaultAPIPath:
		fmt.Fprintf(w, `{"local-cluster-default":{"name":"local","version":%q}}`, c.version)
		return
	case r.Method == http.MethodGet && path == DefaultAPIPath+"/hosts":
		var items []string
		for _, h := range c.hosts {
			items = append(items, fmt.Sprintf(`{"nameref":%q}`, h))
		}
		fmt.Fprintf(w, `{"host-default-list":{"list-items":{"list-item":[%s]}}}`, strings.Join(items, ","))
		return
	}

	switch r.Method {
	case http.MethodGet:
		key := resourceKey(strings.TrimSuffix(path, "/properties"), query)
		props, ok := c.get(key)
		if !ok {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		_ = json.NewEncoder(w).Encode(props)
	case http.MethodPost:
		if op, ok := rec.Body["operation"]; ok {
			if strings.HasSuffix(path, "/pipelines") {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			if _, exists := c.get(path); !exists {
				writeError(w, http.StatusNotFound, fmt.Sprintf("%v: database not found", op))
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		item := path
		// alert configs are addressed by the uri query parameter only
		if !strings.HasSuffix(path, "/alert/configs") {
			for _, f := range idFields {
				if v, ok := rec.Body[f]; ok {
					item = path + "/" + fmt.Sprintf("%v", v)
					break
				}
			}
		}
		key := resourceKey(item, query)
		if _, exists := c.get(key); exists {
			writeError(w, http.StatusBadRequest, "resource already exists")
			return
		}
		c.put(key, rec.Body)
		w.WriteHeader(http.StatusCreated)
	case http.MethodPut:
		if !strings.HasSuffix(path, "/properties") {
			writeError(w, http.StatusMethodNotAllowed, "properties endpoint expected")
			return
		}
		key := resourceKey(strings.TrimSuffix(path, "/properties"), query)
		props, ok := c.get(key)
		if !ok {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		merged := map[string]interface{}{}
		for k, v := range props {
			merged[k] = v
		}
		for k, v := range rec.Body {
			merged[k] = v
		}
		c.put(key, merged)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		key := resourceKey(path, query)
		if _, ok := c.get(key); !ok {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		c.mu.Lock()
		delete(c.resources, key)
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type testEnv struct {
	cluster *fakeCluster
	manager *ResourceManager
	root    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cluster := newFakeCluster()
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	c := client.New(client.Connection{Host: u.Hostname(), Port: port}, logr.Discard())
	resolver := settings.NewResolver(root, settings.Environment{}, nil)

	return &testEnv{
		cluster: cluster,
		manager: NewResourceManager(c, resolver, logr.Discard()),
		root:    root,
	}
}

// define writes a settings definition under the given namespace.
func (e *testEnv) define(t *testing.T, namespace, body string) {
	t.Helper()
	p := filepath.Join(e.root, filepath.FromSlash(namespace)+".yaml")
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func dbPath(db string, segments ...string) string {
	p := DefaultAPIPath + "/databases/" + db
	for _, s := range segments {
		p += "/" + s
	}
	return p
}

func indexOf(reqs []recordedRequest, match func(r recordedRequest) bool) int {
	for i, r := range reqs {
		if match(r) {
			return i
		}
	}
	return -1
}

func lastIndexOf(reqs []recordedRequest, match func(r recordedRequest) bool) int {
	for i := len(reqs) - 1; i >= 0; i-- {
		if match(reqs[i]) {
			return i
		}
	}
	return -1
}

func pathPrefix(prefix string) func(r recordedRequest) bool {
	return func(r recordedRequest) bool {
		return strings.HasPrefix(r.Path, prefix)
	}
}
