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
	"fmt"
	"net/http"
	"strings"

	"github.com/stefanprodan/mldeploy/pkg/client"
	"github.com/stefanprodan/mldeploy/pkg/settings"
)

const (
	// ForestDeleteConfiguration removes the forests configuration and keeps their data.
	ForestDeleteConfiguration = "configuration"
	// ForestDeleteData removes the forests configuration and data.
	ForestDeleteData = "data"
)

type deleteParams struct {
	ForestDelete string `url:"forest-delete,omitempty"`
}

func databaseNamespace(dbType string) string {
	return "databases/" + dbType
}

func (m *ResourceManager) databaseResource(name string) Resource {
	return Resource{
		Kind:       "databases",
		Collection: m.databasesEndpoint(),
		Name:       name,
	}
}

// InitializeDatabase creates or updates the database defined for the given type.
// A forests-per-host directive is expanded to a list of forests before the upsert.
// Databases have no update allow-list, the full settings are sent on both paths.
func (m *ResourceManager) InitializeDatabase(ctx context.Context, dbType string) (*ChangeSetEntry, error) {
	ns := databaseNamespace(dbType)
	s, err := m.resolver.Resolve(ns)
	if err != nil {
		return nil, fmt.Errorf("loading %s failed, error: %w", ns, err)
	}

	name := s.String("database-name")
	if name == "" {
		return nil, &ValidationError{Subject: ns, Message: "database-name is missing"}
	}

	s, err = m.expandForests(ctx, name, s)
	if err != nil {
		return nil, err
	}

	m.logger.Info("initializing database", "type", dbType, "database", name)
	return m.Upsert(ctx, m.databaseResource(name), s, UpsertOptions{})
}

// RemoveDatabase deletes the database defined for the given type.
// The forestDelete mode must be empty, 'configuration' or 'data'.
// A database that does not exist is reported as already removed.
func (m *ResourceManager) RemoveDatabase(ctx context.Context, dbType, forestDelete string) (*ChangeSetEntry, error) {
	mode, err := parseForestDelete(forestDelete)
	if err != nil {
		return nil, err
	}

	ns := databaseNamespace(dbType)
	s, err := m.resolver.Resolve(ns)
	if err != nil {
		return nil, fmt.Errorf("loading %s failed, error: %w", ns, err)
	}

	name := s.String("database-name")
	if name == "" {
		return nil, &ValidationError{Subject: ns, Message: "database-name is missing"}
	}

	r := m.databaseResource(name)
	subject := m.fmt.Resource(r)

	resp, err := m.client.Get(ctx, client.Request{Endpoint: r.Endpoint()})
	if err != nil {
		return nil, fmt.Errorf("%s check failed, error: %w", subject, err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return m.changeSetEntry(r, AbsentAction), nil
	case http.StatusOK:
	default:
		return nil, m.failed(subject, "check", resp)
	}

	m.logger.Info("removing database", "type", dbType, "database", name, "forestDelete", mode)
	resp, err = m.client.Delete(ctx, client.Request{
		Endpoint: r.Endpoint(),
		Params:   deleteParams{ForestDelete: mode},
	})
	if err != nil {
		return nil, fmt.Errorf("%s delete failed, error: %w", subject, err)
	}
	if resp.StatusCode != http.StatusNoContent {
		return nil, m.failed(subject, "delete", resp)
	}

	return m.changeSetEntry(r, DeletedAction), nil
}

func parseForestDelete(mode string) (string, error) {
	switch {
	case mode == "":
		return "", nil
	case strings.EqualFold(mode, ForestDeleteConfiguration):
		return ForestDeleteConfiguration, nil
	case strings.EqualFold(mode, ForestDeleteData):
		return ForestDeleteData, nil
	default:
		return "", &ValidationError{
			Subject: "forest-delete",
			Message: fmt.Sprintf("'%s' is not allowed, only %s and %s are supported",
				mode, ForestDeleteConfiguration, ForestDeleteData),
		}
	}
}

// DatabaseProperties returns the properties of the given database.
// It returns nil without error if the database does not exist.
func (m *ResourceManager) DatabaseProperties(ctx context.Context, database string) (*settings.Settings, error) {
	r := m.databaseResource(database)
	subject := m.fmt.Resource(r)

	resp, err := m.client.Get(ctx, client.Request{
		Endpoint: r.PropertiesEndpoint(),
		Params:   jsonFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("%s properties fetch failed, error: %w", subject, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		s, err := settings.Parse(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%s properties decoding failed, error: %w", subject, err)
		}
		return s, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, m.failed(subject, "properties fetch", resp)
	}
}

// DatabaseOperation issues an operation such as 'clear-database' or 'reindex-database'.
func (m *ResourceManager) DatabaseOperation(ctx context.Context, database, operation string) error {
	if operation == "" {
		return &ValidationError{Subject: database, Message: "operation not specified"}
	}

	r := m.databaseResource(database)
	subject := m.fmt.Resource(r)

	resp, err := m.client.Post(ctx, client.Request{
		Endpoint: r.Endpoint(),
		Body:     map[string]string{"operation": operation},
	})
	if err != nil {
		return fmt.Errorf("%s %s failed, error: %w", subject, operation, err)
	}
	if resp.StatusCode != http.StatusOK {
		return m.failed(subject, operation, resp)
	}
	return nil
}

// InitializeRebalancer deploys the partitions, the rebalancer and the partition queries
// of the schema database associated with the given type, one stage after the other.
func (m *ResourceManager) InitializeRebalancer(ctx context.Context, dbType string) (*ChangeSet, error) {
	ns := databaseNamespace(dbType)
	s, err := m.resolver.Resolve(ns)
	if err != nil {
		return nil, fmt.Errorf("loading %s failed, error: %w", ns, err)
	}

	database := s.String("schema-database")
	if database == "" {
		return nil, &ValidationError{Subject: ns, Message: "schema-database is missing"}
	}

	stages := []Stage{
		{
			Namespace: "database-rebalancer/partitions",
			Kind:      "partitions",
			IDField:   "partition-name",
			Database:  database,
		},
		{
			Namespace: "database-rebalancer/rebalancer",
			Kind:      "rebalancer",
			Database:  database,
		},
		{
			Namespace: "database-rebalancer/partition-queries",
			Kind:      "partition-queries",
			IDField:   "partition-number",
			Database:  database,
		},
	}

	return m.applyStages(ctx, stages)
}

// applyStages runs the stages in order, each one starting after the previous one settled.
func (m *ResourceManager) applyStages(ctx context.Context, stages []Stage) (*ChangeSet, error) {
	changeSet := NewChangeSet()
	for _, stage := range stages {
		cs, err := m.ApplyStage(ctx, stage)
		if err != nil {
			return nil, err
		}
		changeSet.AddAll(cs.Entries)
	}
	return changeSet, nil
}
