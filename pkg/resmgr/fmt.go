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
	"sort"
	"strings"
)

const fmtSeparator = "/"

type ResourceFormatter struct {
	Separator string
}

// Resource returns the resource ID in the format 'kind/database/name'.
// Resources addressed by query parameters use the parameter values as name,
// singletons are formatted as 'kind/database'.
func (rf *ResourceFormatter) Resource(r Resource) string {
	var builder strings.Builder
	builder.WriteString(r.Kind)
	if r.Database != "" {
		builder.WriteString(rf.getSeparator() + r.Database)
	}
	if r.Name != "" {
		builder.WriteString(rf.getSeparator() + r.Name)
		return builder.String()
	}

	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range r.Params[k] {
			builder.WriteString(rf.getSeparator() + v)
		}
	}
	return builder.String()
}

func (rf *ResourceFormatter) getSeparator() string {
	if rf.Separator == "" {
		return fmtSeparator
	}

	return rf.Separator
}
