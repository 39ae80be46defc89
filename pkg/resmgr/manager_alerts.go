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

	"github.com/stefanprodan/mldeploy/pkg/settings"
)

var (
	// alertActionProperties are the action properties accepted on create and update.
	alertActionProperties = []string{
		"name", "description", "module-db",
		"module-root", "module", "options",
	}

	// alertRuleProperties are the rule properties accepted on update.
	alertRuleProperties = []string{
		"name", "description", "user-id",
		"query", "action-name", "external-security-id",
		"user-name", "options",
	}
)

// DeployAlerts upserts the alert configs, then the alert actions, then the alert rules
// of the given database.
func (m *ResourceManager) DeployAlerts(ctx context.Context, database string) (*ChangeSet, error) {
	m.logger.Info("deploying alerts", "database", database)

	changeSet, err := m.ApplyStage(ctx, Stage{
		Namespace:  "alerts/configs",
		Kind:       "alert/configs",
		IDField:    "uri",
		Database:   database,
		QueryParam: "uri",
	})
	if err != nil {
		return nil, err
	}

	actions, err := m.applyAlertStage(ctx, "alerts/actions", database, m.alertActionResource,
		UpsertOptions{UpdateAllowList: alertActionProperties, FilterOnCreate: true})
	if err != nil {
		return nil, err
	}
	changeSet.AddAll(actions.Entries)

	// rules are created with the full settings and updated with the allowed ones
	rules, err := m.applyAlertStage(ctx, "alerts/rules", database, m.alertRuleResource,
		UpsertOptions{UpdateAllowList: alertRuleProperties})
	if err != nil {
		return nil, err
	}
	changeSet.AddAll(rules.Entries)

	return changeSet, nil
}

type resourceFunc func(database string, s *settings.Settings) (Resource, error)

func (m *ResourceManager) applyAlertStage(ctx context.Context, namespace, database string, fn resourceFunc, opts UpsertOptions) (*ChangeSet, error) {
	defs, err := m.resolveAll(namespace)
	if err != nil {
		return nil, err
	}

	items := make([]stageItem, 0, len(defs))
	for _, def := range defs {
		r, err := fn(database, def.settings)
		if err != nil {
			return nil, &ValidationError{Subject: def.namespace, Message: err.Error()}
		}
		items = append(items, stageItem{resource: r, settings: def.settings, options: opts})
	}

	return m.applyAll(ctx, namespace, items)
}

func (m *ResourceManager) alertActionResource(database string, s *settings.Settings) (Resource, error) {
	if err := requireProperties(s, "name", "alert-uri"); err != nil {
		return Resource{}, err
	}
	return Resource{
		Kind:       "alert/actions",
		Database:   database,
		Collection: m.collection(database, "alert/actions"),
		Name:       s.String("name"),
		Params:     url.Values{"uri": []string{s.String("alert-uri")}},
	}, nil
}

func (m *ResourceManager) alertRuleResource(database string, s *settings.Settings) (Resource, error) {
	if err := requireProperties(s, "name", "action-name", "alert-uri"); err != nil {
		return Resource{}, err
	}
	return Resource{
		Kind:       "alert/rules",
		Database:   database,
		Collection: m.collection(database, "alert/actions/"+url.PathEscape(s.String("action-name"))+"/rules"),
		Name:       s.String("name"),
		Params:     url.Values{"uri": []string{s.String("alert-uri")}},
	}, nil
}

func requireProperties(s *settings.Settings, keys ...string) error {
	for _, k := range keys {
		if s.String(k) == "" {
			return fmt.Errorf("property '%s' is missing", k)
		}
	}
	return nil
}
