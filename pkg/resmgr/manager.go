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
	"net/url"
	"strings"

	"github.com/go-logr/logr"

	"github.com/stefanprodan/mldeploy/pkg/client"
	"github.com/stefanprodan/mldeploy/pkg/settings"
)

// DefaultAPIPath is the base path of the management API.
const DefaultAPIPath = "/manage/LATEST"

// Transport performs authenticated requests against the management API.
type Transport interface {
	Get(ctx context.Context, req client.Request) (*client.Response, error)
	Post(ctx context.Context, req client.Request) (*client.Response, error)
	Put(ctx context.Context, req client.Request) (*client.Response, error)
	Delete(ctx context.Context, req client.Request) (*client.Response, error)
}

// SettingsResolver loads resource definitions.
type SettingsResolver interface {
	// Resolve returns the definition registered under namespace.
	Resolve(namespace string) (*settings.Settings, error)

	// List returns the names of the definitions registered under namespace.
	List(namespace string) ([]string, error)
}

// ResourceManager deploys resources onto the target cluster.
type ResourceManager struct {
	client   Transport
	resolver SettingsResolver
	logger   logr.Logger
	fmt      *ResourceFormatter
	apiPath  string
}

// NewResourceManager creates a ResourceManager for the given management client and settings.
func NewResourceManager(client Transport, resolver SettingsResolver, logger logr.Logger) *ResourceManager {
	return &ResourceManager{
		client:   client,
		resolver: resolver,
		logger:   logger,
		fmt:      &ResourceFormatter{},
		apiPath:  DefaultAPIPath,
	}
}

// SetAPIPath overrides the management API base path.
func (m *ResourceManager) SetAPIPath(p string) {
	if p != "" {
		m.apiPath = "/" + strings.Trim(p, "/")
	}
}

// Client returns the underlying management client.
func (m *ResourceManager) Client() Transport {
	return m.client
}

type formatParams struct {
	Format string `url:"format,omitempty"`
}

var jsonFormat = formatParams{Format: "json"}

func (m *ResourceManager) databasesEndpoint() string {
	return m.apiPath + "/databases"
}

func (m *ResourceManager) databaseEndpoint(database string) string {
	return m.databasesEndpoint() + "/" + url.PathEscape(database)
}

// collection returns the endpoint of a sub-resource collection owned by database.
func (m *ResourceManager) collection(database, kind string) string {
	return m.databaseEndpoint(database) + "/" + kind
}

func (m *ResourceManager) changeSetEntry(r Resource, action Action) *ChangeSetEntry {
	return &ChangeSetEntry{Subject: m.fmt.Resource(r), Action: string(action)}
}

// failed logs the server message and returns the error for an unexpected status code.
func (m *ResourceManager) failed(subject, op string, resp *client.Response) error {
	err := client.NewStatusError(resp)
	m.logger.Error(err, "management API request failed",
		"subject", subject, "operation", op, "status", resp.StatusCode)
	return fmt.Errorf("%s %s failed, error: %w", subject, op, err)
}
