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
	"net/url"
)

// Resource is the stable identity of one resource instance on the cluster.
// The same identity addresses the existence check, the create and the update calls.
type Resource struct {
	// Kind is the collection name, e.g. 'databases', 'triggers' or 'alert/actions'.
	Kind string

	// Database is the owning database, empty for cluster level kinds.
	Database string

	// Collection is the endpoint that lists and creates resources of this kind.
	Collection string

	// Name is the identifying value appended to the collection path.
	// It is empty for singletons and for resources addressed by Params.
	Name string

	// Params is the optional query discriminator, e.g. 'uri=...'.
	Params url.Values
}

// Endpoint returns the path of the resource.
func (r Resource) Endpoint() string {
	if r.Name == "" {
		return r.Collection
	}
	return r.Collection + "/" + url.PathEscape(r.Name)
}

// PropertiesEndpoint returns the path used to update the resource.
func (r Resource) PropertiesEndpoint() string {
	return r.Endpoint() + "/properties"
}
