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
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/stefanprodan/mldeploy/pkg/settings"
)

// forestProperties are copied from the forest directive to each forest definition.
var forestProperties = []string{"data-directory", "large-data-directory", "fast-data-directory"}

// expandForests replaces a forests-per-host directive with the list of forest names,
// creating the forests that do not exist yet. Explicit lists are returned unchanged
// and a single forest name becomes a one item list.
func (m *ResourceManager) expandForests(ctx context.Context, database string, s *settings.Settings) (*settings.Settings, error) {
	v, ok := s.Get("forest")
	if !ok || v == nil {
		return s, nil
	}

	switch f := v.(type) {
	case []interface{}, []string:
		return s, nil
	case string:
		return s.With("forest", []string{f}), nil
	case map[string]interface{}:
		names, err := m.planForests(ctx, database, f)
		if err != nil {
			return nil, err
		}
		return s.With("forest", names), nil
	default:
		return nil, &ValidationError{
			Subject: "databases/" + database,
			Message: fmt.Sprintf("unsupported forest setting of type %T", v),
		}
	}
}

// planForests upserts the forests named by the directive and returns their names.
// The directive count is the size of the forest list; forests are spread over the
// hosts in turn, so forest i lands on host i mod len(hosts).
func (m *ResourceManager) planForests(ctx context.Context, database string, directive map[string]interface{}) ([]string, error) {
	count, err := forestsPerHost(directive)
	if err != nil {
		return nil, &ValidationError{Subject: "databases/" + database, Message: err.Error()}
	}

	hosts, err := m.Hosts(ctx)
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no hosts found, can't plan forests for %s", database)
	}

	collection := m.apiPath + "/forests"
	names := make([]string, 0, count)
	var g errgroup.Group
	for i := 0; i < count; i++ {
		host := hosts[i%len(hosts)]
		name := fmt.Sprintf("%s-%s-%d", database, shortHostName(host), i/len(hosts)+1)
		names = append(names, name)

		def := settings.New().
			With("forest-name", name).
			With("host", host)
		for _, p := range forestProperties {
			if v, ok := directive[p]; ok {
				def = def.With(p, v)
			}
		}

		r := Resource{Kind: "forests", Collection: collection, Name: name}
		g.Go(func() error {
			// existing forests are never reassigned
			_, err := m.Upsert(ctx, r, def, UpsertOptions{UpdateAllowList: []string{}})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &StageError{Stage: "forests", Err: err}
	}

	m.logger.V(1).Info("forests planned", "database", database, "forests", names)
	return names, nil
}

func forestsPerHost(directive map[string]interface{}) (int, error) {
	for _, key := range []string{"per-host", "forests-per-host"} {
		v, ok := directive[key]
		if !ok {
			continue
		}
		n, err := toInt(v)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%s must be a positive number, got '%v'", key, v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("forest must be a list or contain a per-host count")
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("%v is not a number", v)
	}
}

func shortHostName(host string) string {
	if i := strings.Index(host, "."); i > 0 {
		return host[:i]
	}
	return host
}
