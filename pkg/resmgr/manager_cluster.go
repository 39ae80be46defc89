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
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/stefanprodan/mldeploy/pkg/client"
)

type hostList struct {
	HostDefaultList struct {
		ListItems struct {
			ListItem []struct {
				NameRef string `json:"nameref"`
			} `json:"list-item"`
		} `json:"list-items"`
	} `json:"host-default-list"`
}

// Hosts returns the sorted names of the cluster hosts.
func (m *ResourceManager) Hosts(ctx context.Context) ([]string, error) {
	resp, err := m.client.Get(ctx, client.Request{
		Endpoint: m.apiPath + "/hosts",
		Params:   jsonFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("hosts list failed, error: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, m.failed("hosts", "list", resp)
	}

	var list hostList
	if err := resp.Decode(&list); err != nil {
		return nil, err
	}

	hosts := make([]string, 0, len(list.HostDefaultList.ListItems.ListItem))
	for _, item := range list.HostDefaultList.ListItems.ListItem {
		hosts = append(hosts, item.NameRef)
	}
	sort.Strings(hosts)
	return hosts, nil
}

type clusterDefault struct {
	LocalClusterDefault struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"local-cluster-default"`
}

// versionExp matches server versions in the format '<major>.<minor>-<patch>[.<build>]'.
var versionExp = regexp.MustCompile(`^(\d+)\.(\d+)(?:[-.](\d+))?`)

// ServerVersion returns the cluster version as a semantic version.
func (m *ResourceManager) ServerVersion(ctx context.Context) (*semver.Version, error) {
	resp, err := m.client.Get(ctx, client.Request{
		Endpoint: m.apiPath,
		Params:   jsonFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("cluster version fetch failed, error: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, m.failed("cluster", "version fetch", resp)
	}

	var cluster clusterDefault
	if err := resp.Decode(&cluster); err != nil {
		return nil, err
	}

	return parseServerVersion(cluster.LocalClusterDefault.Version)
}

func parseServerVersion(v string) (*semver.Version, error) {
	parts := versionExp.FindStringSubmatch(v)
	if parts == nil {
		return nil, fmt.Errorf("unsupported server version '%s'", v)
	}
	patch := parts[3]
	if patch == "" {
		patch = "0"
	}
	return semver.NewVersion(fmt.Sprintf("%s.%s.%s", parts[1], parts[2], patch))
}

// CheckServerVersion returns an error if the cluster version does not satisfy the constraint.
func (m *ResourceManager) CheckServerVersion(ctx context.Context, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("semver '%s' parse error: %w", constraint, err)
	}

	v, err := m.ServerVersion(ctx)
	if err != nil {
		return err
	}

	if !c.Check(v) {
		return fmt.Errorf("server version %s does not match '%s'", v.String(), constraint)
	}
	return nil
}
