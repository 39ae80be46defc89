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
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/gomega"

	"github.com/stefanprodan/mldeploy/pkg/client"
	"github.com/stefanprodan/mldeploy/pkg/settings"
)

func TestInitializeDatabase_ExplicitForests(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.define(t, "databases/content", `
database-name: app-content
forest:
  - app-content-1
  - app-content-2
triggers-database: app-triggers
`)

	entry, err := env.manager.InitializeDatabase(context.Background(), "content")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(entry.String()).To(Equal("databases/app-content created"))

	reqs := env.cluster.recorded()
	g.Expect(reqs).To(HaveLen(2))
	g.Expect(reqs[1].Method).To(Equal(http.MethodPost))
	g.Expect(reqs[1].Path).To(Equal(DefaultAPIPath + "/databases"))
	g.Expect(reqs[1].Body["forest"]).To(Equal([]interface{}{"app-content-1", "app-content-2"}))
	g.Expect(env.cluster.count(http.MethodGet, DefaultAPIPath+"/hosts")).To(Equal(0))
}

func TestInitializeDatabase_SingleForest(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.define(t, "databases/content", "database-name: app-content\nforest: app-content-1\n")

	_, err := env.manager.InitializeDatabase(context.Background(), "content")
	g.Expect(err).NotTo(HaveOccurred())

	props, ok := env.cluster.get(dbPath("app-content"))
	g.Expect(ok).To(BeTrue())
	g.Expect(props["forest"]).To(Equal([]interface{}{"app-content-1"}))
}

func TestInitializeDatabase_UpdatesWithFullSettings(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.define(t, "databases/content", `
database-name: app-content
language: en
stemmed-searches: basic
`)
	env.cluster.put(dbPath("app-content"), map[string]interface{}{"database-name": "app-content"})

	entry, err := env.manager.InitializeDatabase(context.Background(), "content")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(entry.Action).To(Equal(string(ConfiguredAction)))

	reqs := env.cluster.recorded()
	g.Expect(reqs).To(HaveLen(2))
	g.Expect(reqs[1].Method).To(Equal(http.MethodPut))
	g.Expect(reqs[1].Path).To(Equal(dbPath("app-content", "properties")))
	g.Expect(reqs[1].Keys).To(Equal([]string{"database-name", "language", "stemmed-searches"}))
}

func TestInitializeDatabase_ForestsPerHost(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		hosts     []string
		expected  []string
	}{
		{
			name:      "one forest",
			directive: "per-host: 1",
			hosts:     []string{"node2.acme.com", "node1.acme.com"},
			expected:  []string{"app-content-node1-1"},
		},
		{
			name:      "two forests on two hosts",
			directive: "per-host: 2",
			hosts:     []string{"node2.acme.com", "node1.acme.com"},
			expected:  []string{"app-content-node1-1", "app-content-node2-1"},
		},
		{
			name:      "three forests on two hosts",
			directive: "forests-per-host: 3",
			hosts:     []string{"node1.acme.com", "node2.acme.com"},
			expected: []string{
				"app-content-node1-1", "app-content-node2-1", "app-content-node1-2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			env := newTestEnv(t)
			env.cluster.hosts = tt.hosts

			env.define(t, "databases/content", "database-name: app-content\nforest:\n  "+tt.directive+"\n  data-directory: /data\n")

			_, err := env.manager.InitializeDatabase(context.Background(), "content")
			g.Expect(err).NotTo(HaveOccurred())

			props, ok := env.cluster.get(dbPath("app-content"))
			g.Expect(ok).To(BeTrue())

			var got []string
			for _, f := range props["forest"].([]interface{}) {
				got = append(got, f.(string))
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
			}

			g.Expect(env.cluster.count(http.MethodPost, DefaultAPIPath+"/forests")).To(Equal(len(tt.expected)))
			forest, ok := env.cluster.get(DefaultAPIPath + "/forests/" + tt.expected[0])
			g.Expect(ok).To(BeTrue())
			g.Expect(forest).To(HaveKeyWithValue("host", "node1.acme.com"))
			g.Expect(forest).To(HaveKeyWithValue("data-directory", "/data"))

			// forests are created before the database
			reqs := env.cluster.recorded()
			g.Expect(lastIndexOf(reqs, pathPrefix(DefaultAPIPath+"/forests"))).
				To(BeNumerically("<", indexOf(reqs, pathPrefix(DefaultAPIPath+"/databases"))))
		})
	}
}

func TestInitializeDatabase_SendsExpandedForests(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)
	env.cluster.hosts = []string{"node1.acme.com", "node2.acme.com"}

	env.define(t, "databases/content", "database-name: app-content\nforest:\n  per-host: 2\n")

	_, err := env.manager.InitializeDatabase(context.Background(), "content")
	g.Expect(err).NotTo(HaveOccurred())

	reqs := env.cluster.recorded()
	i := indexOf(reqs, func(r recordedRequest) bool {
		return r.Method == http.MethodPost && r.Path == DefaultAPIPath+"/databases"
	})
	g.Expect(i).To(BeNumerically(">=", 0))
	g.Expect(reqs[i].Body["forest"]).To(Equal([]interface{}{"app-content-node1-1", "app-content-node2-1"}))
}

func TestInitializeDatabase_KeepsExistingForests(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.cluster.put(DefaultAPIPath+"/forests/app-content-node1-1", map[string]interface{}{
		"forest-name": "app-content-node1-1",
		"host":        "node1.local",
	})
	env.define(t, "databases/content", "database-name: app-content\nforest:\n  per-host: 1\n")

	_, err := env.manager.InitializeDatabase(context.Background(), "content")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(env.cluster.count(http.MethodPost, DefaultAPIPath+"/forests")).To(Equal(0))
	g.Expect(env.cluster.count(http.MethodPut, DefaultAPIPath+"/forests")).To(Equal(0))
}

func TestInitializeDatabase_Validation(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.define(t, "databases/content", "forest: app-content-1\n")
	env.define(t, "databases/schema", "database-name: app-schema\nforest:\n  per-host: none\n")

	var validationErr *ValidationError
	_, err := env.manager.InitializeDatabase(context.Background(), "content")
	g.Expect(errors.As(err, &validationErr)).To(BeTrue())

	_, err = env.manager.InitializeDatabase(context.Background(), "schema")
	g.Expect(errors.As(err, &validationErr)).To(BeTrue())
	g.Expect(err.Error()).To(ContainSubstring("per-host"))

	_, err = env.manager.InitializeDatabase(context.Background(), "modules")
	g.Expect(errors.Is(err, settings.ErrNotFound)).To(BeTrue())

	g.Expect(env.cluster.recorded()).To(BeEmpty())
}

func TestRemoveDatabase(t *testing.T) {
	tests := []struct {
		name          string
		mode          string
		expectedParam string
	}{
		{name: "default", mode: "", expectedParam: ""},
		{name: "configuration", mode: "configuration", expectedParam: "configuration"},
		{name: "data", mode: "data", expectedParam: "data"},
		{name: "mixed case", mode: "DATA", expectedParam: "data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			env := newTestEnv(t)

			env.define(t, "databases/content", "database-name: app-content\n")
			env.cluster.put(dbPath("app-content"), map[string]interface{}{"database-name": "app-content"})

			entry, err := env.manager.RemoveDatabase(context.Background(), "content", tt.mode)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(entry.String()).To(Equal("databases/app-content deleted"))

			reqs := env.cluster.recorded()
			g.Expect(reqs).To(HaveLen(2))
			g.Expect(reqs[1].Method).To(Equal(http.MethodDelete))
			g.Expect(reqs[1].Path).To(Equal(dbPath("app-content")))
			g.Expect(reqs[1].Query.Get("forest-delete")).To(Equal(tt.expectedParam))
			if tt.expectedParam == "" {
				g.Expect(reqs[1].Query).NotTo(HaveKey("forest-delete"))
			}

			_, ok := env.cluster.get(dbPath("app-content"))
			g.Expect(ok).To(BeFalse())
		})
	}
}

func TestRemoveDatabase_InvalidMode(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.define(t, "databases/content", "database-name: app-content\n")

	_, err := env.manager.RemoveDatabase(context.Background(), "content", "invalid")
	var validationErr *ValidationError
	g.Expect(errors.As(err, &validationErr)).To(BeTrue())
	g.Expect(err.Error()).To(ContainSubstring("'invalid' is not allowed"))
	g.Expect(env.cluster.recorded()).To(BeEmpty())
}

func TestRemoveDatabase_NotFound(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.define(t, "databases/content", "database-name: app-content\n")

	entry, err := env.manager.RemoveDatabase(context.Background(), "content", ForestDeleteData)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(entry.Action).To(Equal(string(AbsentAction)))
	g.Expect(env.cluster.count(http.MethodDelete, DefaultAPIPath)).To(Equal(0))
}

func TestRemoveDatabase_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unexpected check status", func(t *testing.T) {
		g := NewWithT(t)
		env := newTestEnv(t)
		env.define(t, "databases/content", "database-name: app-content\n")
		env.cluster.fail(http.MethodGet, dbPath("app-content"), http.StatusInternalServerError)

		_, err := env.manager.RemoveDatabase(ctx, "content", "")
		g.Expect(err).To(MatchError(ContainSubstring("check failed")))
		g.Expect(client.StatusCode(err)).To(Equal(http.StatusInternalServerError))
		g.Expect(err.Error()).To(ContainSubstring("injected failure"))
		g.Expect(env.cluster.count(http.MethodDelete, dbPath("app-content"))).To(Equal(0))
	})

	t.Run("unexpected delete status", func(t *testing.T) {
		g := NewWithT(t)
		env := newTestEnv(t)
		env.define(t, "databases/content", "database-name: app-content\n")
		env.cluster.put(dbPath("app-content"), map[string]interface{}{"database-name": "app-content"})
		env.cluster.fail(http.MethodDelete, dbPath("app-content"), http.StatusInternalServerError)

		_, err := env.manager.RemoveDatabase(ctx, "content", ForestDeleteData)
		g.Expect(err).To(MatchError(ContainSubstring("delete failed")))
		g.Expect(client.StatusCode(err)).To(Equal(http.StatusInternalServerError))
		g.Expect(err.Error()).To(ContainSubstring("injected failure"))
	})
}

func TestDatabaseProperties_Failure(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)
	env.cluster.put(dbPath("app-content"), map[string]interface{}{"database-name": "app-content"})
	env.cluster.fail(http.MethodGet, dbPath("app-content", "properties"), http.StatusInternalServerError)

	props, err := env.manager.DatabaseProperties(context.Background(), "app-content")
	g.Expect(props).To(BeNil())
	g.Expect(err).To(MatchError(ContainSubstring("properties fetch failed")))
	g.Expect(client.StatusCode(err)).To(Equal(http.StatusInternalServerError))
	g.Expect(err.Error()).To(ContainSubstring("injected failure"))
}

func TestDatabaseProperties(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.cluster.put(dbPath("app-content"), map[string]interface{}{
		"database-name":     "app-content",
		"triggers-database": "app-triggers",
	})

	props, err := env.manager.DatabaseProperties(context.Background(), "app-content")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(props.String("triggers-database")).To(Equal("app-triggers"))

	reqs := env.cluster.recorded()
	g.Expect(reqs[0].Path).To(Equal(dbPath("app-content", "properties")))
	g.Expect(reqs[0].Query.Get("format")).To(Equal("json"))

	props, err = env.manager.DatabaseProperties(context.Background(), "missing")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(props).To(BeNil())
}

func TestDatabaseOperation(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.cluster.put(dbPath("app-content"), map[string]interface{}{"database-name": "app-content"})

	err := env.manager.DatabaseOperation(context.Background(), "app-content", "clear-database")
	g.Expect(err).NotTo(HaveOccurred())

	reqs := env.cluster.recorded()
	g.Expect(reqs).To(HaveLen(1))
	g.Expect(reqs[0].Method).To(Equal(http.MethodPost))
	g.Expect(reqs[0].Body).To(HaveKeyWithValue("operation", "clear-database"))

	err = env.manager.DatabaseOperation(context.Background(), "missing", "clear-database")
	g.Expect(err).To(MatchError(ContainSubstring("database not found")))

	err = env.manager.DatabaseOperation(context.Background(), "app-content", "")
	var validationErr *ValidationError
	g.Expect(errors.As(err, &validationErr)).To(BeTrue())
}

func TestInitializeRebalancer(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.define(t, "databases/content", "database-name: app-content\nschema-database: app-schema\n")
	env.define(t, "database-rebalancer/partitions/2021", "partition-name: p2021\n")
	env.define(t, "database-rebalancer/partitions/2022", "partition-name: p2022\n")
	env.define(t, "database-rebalancer/rebalancer/default", "enabled: true\n")
	env.define(t, "database-rebalancer/partition-queries/first", "partition-number: 1\n")
	env.define(t, "database-rebalancer/partition-queries/second", "partition-number: 2\n")

	changeSet, err := env.manager.InitializeRebalancer(context.Background(), "content")
	g.Expect(err).NotTo(HaveOccurred())

	expected := []ChangeSetEntry{
		{Subject: "partitions/app-schema/p2021", Action: string(CreatedAction)},
		{Subject: "partitions/app-schema/p2022", Action: string(CreatedAction)},
		{Subject: "rebalancer/app-schema", Action: string(CreatedAction)},
		{Subject: "partition-queries/app-schema/1", Action: string(CreatedAction)},
		{Subject: "partition-queries/app-schema/2", Action: string(CreatedAction)},
	}
	if diff := cmp.Diff(expected, changeSet.Entries); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	// each stage settles before the next one starts
	reqs := env.cluster.recorded()
	partitions := lastIndexOf(reqs, pathPrefix(dbPath("app-schema", "partitions")))
	rebalancer := indexOf(reqs, pathPrefix(dbPath("app-schema", "rebalancer")))
	queries := indexOf(reqs, pathPrefix(dbPath("app-schema", "partition-queries")))
	g.Expect(partitions).To(BeNumerically("<", rebalancer))
	g.Expect(lastIndexOf(reqs, pathPrefix(dbPath("app-schema", "rebalancer")))).To(BeNumerically("<", queries))
}

func TestInitializeRebalancer_StopsOnFailure(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(t)

	env.define(t, "databases/content", "database-name: app-content\nschema-database: app-schema\n")
	env.define(t, "database-rebalancer/partitions/2021", "partition-name: p2021\n")
	env.define(t, "database-rebalancer/rebalancer/default", "enabled: true\n")
	env.cluster.fail(http.MethodPost, dbPath("app-schema", "partitions"), http.StatusBadRequest)

	_, err := env.manager.InitializeRebalancer(context.Background(), "content")
	var stageErr *StageError
	g.Expect(errors.As(err, &stageErr)).To(BeTrue())
	g.Expect(stageErr.Stage).To(Equal("database-rebalancer/partitions"))
	g.Expect(env.cluster.count(http.MethodGet, dbPath("app-schema", "rebalancer"))).To(Equal(0))
}
