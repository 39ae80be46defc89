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

	"github.com/stefanprodan/mldeploy/pkg/client"
)

// DeployTriggers upserts the trigger definitions into the triggers database of the given database.
func (m *ResourceManager) DeployTriggers(ctx context.Context, database string) (*ChangeSet, error) {
	m.logger.Info("deploying triggers", "database", database)

	triggersDB, err := m.triggersDatabase(ctx, database)
	if err != nil {
		return nil, err
	}

	return m.ApplyStage(ctx, Stage{
		Namespace: "triggers",
		Kind:      "triggers",
		IDField:   "name",
		Database:  triggersDB,
	})
}

// DeployCPF loads the default pipelines into the triggers database of the given database,
// then upserts the pipeline definitions and after them the domain definitions.
func (m *ResourceManager) DeployCPF(ctx context.Context, database string) (*ChangeSet, error) {
	m.logger.Info("deploying CPF", "database", database)

	triggersDB, err := m.triggersDatabase(ctx, database)
	if err != nil {
		return nil, err
	}

	if err := m.loadDefaultPipelines(ctx, triggersDB); err != nil {
		return nil, err
	}

	// cpf-configs are not deployed, domains are the last stage
	return m.applyStages(ctx, []Stage{
		{
			Namespace: "cpf/pipelines",
			Kind:      "pipelines",
			IDField:   "pipeline-name",
			Database:  triggersDB,
		},
		{
			Namespace: "cpf/domains",
			Kind:      "domains",
			IDField:   "domain-name",
			Database:  triggersDB,
		},
	})
}

func (m *ResourceManager) loadDefaultPipelines(ctx context.Context, database string) error {
	subject := "pipelines/" + database
	resp, err := m.client.Post(ctx, client.Request{
		Endpoint: m.collection(database, "pipelines"),
		Body:     map[string]string{"operation": "load-default-cpf-pipelines"},
		Params:   jsonFormat,
	})
	if err != nil {
		return fmt.Errorf("%s load default pipelines failed, error: %w", subject, err)
	}
	if !resp.Is(http.StatusOK, http.StatusCreated, http.StatusNoContent) {
		return m.failed(subject, "load default pipelines", resp)
	}
	return nil
}

// triggersDatabase resolves the triggers database from the database properties.
func (m *ResourceManager) triggersDatabase(ctx context.Context, database string) (string, error) {
	props, err := m.DatabaseProperties(ctx, database)
	if err != nil {
		return "", err
	}
	if props == nil {
		return "", fmt.Errorf("database '%s' not found", database)
	}

	triggersDB := props.String("triggers-database")
	if triggersDB == "" {
		return "", &ValidationError{
			Subject: "databases/" + database,
			Message: "no triggers database is associated",
		}
	}
	return triggersDB, nil
}
