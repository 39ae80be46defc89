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
	"github.com/stefanprodan/mldeploy/pkg/settings"
)

// UpsertOptions contains options for Upsert requests.
type UpsertOptions struct {
	// UpdateAllowList restricts the properties sent on update.
	// When nil, the settings are sent unchanged.
	UpdateAllowList []string

	// FilterOnCreate applies UpdateAllowList to the create payload too.
	FilterOnCreate bool
}

// Upsert checks if the resource exists and creates or updates it.
//
// A missing resource is created by posting the settings to its collection.
// An existing resource is updated by putting the allowed settings to its
// properties endpoint; when no property is allowed the update is skipped.
func (m *ResourceManager) Upsert(ctx context.Context, r Resource, s *settings.Settings, opts UpsertOptions) (*ChangeSetEntry, error) {
	subject := m.fmt.Resource(r)

	resp, err := m.client.Get(ctx, client.Request{
		Endpoint: r.Endpoint(),
		Params:   r.Params,
	})
	if err != nil {
		return nil, fmt.Errorf("%s check failed, error: %w", subject, err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		payload := s
		if opts.FilterOnCreate {
			payload = s.Filter(opts.UpdateAllowList)
		}
		return m.create(ctx, r, payload)
	case http.StatusOK:
		payload := s.Filter(opts.UpdateAllowList)
		if payload.Len() == 0 {
			m.logger.V(1).Info("nothing to update", "subject", subject)
			return m.changeSetEntry(r, UnchangedAction), nil
		}
		return m.update(ctx, r, payload)
	default:
		return nil, m.failed(subject, "check", resp)
	}
}

func (m *ResourceManager) create(ctx context.Context, r Resource, payload *settings.Settings) (*ChangeSetEntry, error) {
	subject := m.fmt.Resource(r)
	m.logger.V(1).Info("creating", "subject", subject)

	resp, err := m.client.Post(ctx, client.Request{
		Endpoint: r.Collection,
		Body:     payload,
		Params:   r.Params,
	})
	if err != nil {
		return nil, fmt.Errorf("%s create failed, error: %w", subject, err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, m.failed(subject, "create", resp)
	}

	return m.changeSetEntry(r, CreatedAction), nil
}

func (m *ResourceManager) update(ctx context.Context, r Resource, payload *settings.Settings) (*ChangeSetEntry, error) {
	subject := m.fmt.Resource(r)
	m.logger.V(1).Info("updating", "subject", subject)

	resp, err := m.client.Put(ctx, client.Request{
		Endpoint: r.PropertiesEndpoint(),
		Body:     payload,
		Params:   r.Params,
	})
	if err != nil {
		return nil, fmt.Errorf("%s update failed, error: %w", subject, err)
	}
	if resp.StatusCode != http.StatusNoContent {
		return nil, m.failed(subject, "update", resp)
	}

	return m.changeSetEntry(r, ConfiguredAction), nil
}
