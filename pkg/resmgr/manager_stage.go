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
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/stefanprodan/mldeploy/pkg/settings"
)

// Stage describes the deployment of all the definitions registered under a settings namespace.
type Stage struct {
	// Namespace holds the definitions of the stage, e.g. 'cpf/pipelines'.
	Namespace string

	// Kind is the collection path under the owning database, e.g. 'pipelines'.
	Kind string

	// IDField names the identifying property. Empty for singleton stages.
	IDField string

	// Skip lists the identifying values that are already deployed.
	Skip []string

	// Database is the owning database.
	Database string

	// QueryParam, when set, addresses each item with '?<QueryParam>=<id>'
	// instead of appending the identifying value to the collection path.
	QueryParam string

	// Options are passed to every upsert of the stage.
	Options UpsertOptions
}

// stageItem is one upsert of a stage.
type stageItem struct {
	resource Resource
	settings *settings.Settings
	options  UpsertOptions
}

// ApplyStage upserts every definition of the stage concurrently.
// It returns once all the upserts have settled; the first failure fails the stage.
// A stage without definitions returns an empty change set.
func (m *ResourceManager) ApplyStage(ctx context.Context, stage Stage) (*ChangeSet, error) {
	if stage.Database == "" {
		return nil, &ValidationError{Subject: stage.Namespace, Message: "owning database not specified"}
	}

	defs, err := m.resolveAll(stage.Namespace)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(stage.Skip))
	for _, id := range stage.Skip {
		skip[id] = struct{}{}
	}

	collection := m.collection(stage.Database, stage.Kind)
	var items []stageItem
	for _, def := range defs {
		r := Resource{
			Kind:       stage.Kind,
			Database:   stage.Database,
			Collection: collection,
		}

		if stage.IDField != "" {
			id := def.settings.String(stage.IDField)
			if id == "" {
				return nil, &ValidationError{
					Subject: def.namespace,
					Message: fmt.Sprintf("identifying property '%s' is missing", stage.IDField),
				}
			}
			if _, ok := skip[id]; ok {
				continue
			}
			if stage.QueryParam != "" {
				r.Params = url.Values{stage.QueryParam: []string{id}}
			} else {
				r.Name = id
			}
		}

		items = append(items, stageItem{resource: r, settings: def.settings, options: stage.Options})
	}

	return m.applyAll(ctx, stage.Namespace, items)
}

// applyAll runs the upserts concurrently and joins them into one change set.
// Operations are not cancelled when a sibling fails.
func (m *ResourceManager) applyAll(ctx context.Context, name string, items []stageItem) (*ChangeSet, error) {
	changeSet := NewChangeSet()
	if len(items) == 0 {
		m.logger.Info("nothing to do", "stage", name)
		return changeSet, nil
	}

	var mu sync.Mutex
	var g errgroup.Group
	for _, item := range items {
		item := item
		g.Go(func() error {
			entry, err := m.Upsert(ctx, item.resource, item.settings, item.options)
			if err != nil {
				return err
			}
			mu.Lock()
			changeSet.Add(*entry)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &StageError{Stage: name, Err: err}
	}

	changeSet.Sort()
	m.logger.V(1).Info("stage applied", "stage", name, "entries", len(changeSet.Entries))
	return changeSet, nil
}

type definition struct {
	namespace string
	settings  *settings.Settings
}

func (m *ResourceManager) resolveAll(namespace string) ([]definition, error) {
	names, err := m.resolver.List(namespace)
	if err != nil {
		return nil, fmt.Errorf("listing %s definitions failed, error: %w", namespace, err)
	}

	defs := make([]definition, 0, len(names))
	for _, name := range names {
		ns := path.Join(namespace, name)
		s, err := m.resolver.Resolve(ns)
		if err != nil {
			return nil, fmt.Errorf("loading %s failed, error: %w", ns, err)
		}
		defs = append(defs, definition{namespace: ns, settings: s})
	}
	return defs, nil
}
