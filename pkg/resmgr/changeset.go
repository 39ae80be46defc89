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
	"fmt"
	"sort"
	"strings"
)

// Action represents the action type performed by the deployment process.
type Action string

const (
	CreatedAction    Action = "created"
	ConfiguredAction Action = "configured"
	UnchangedAction  Action = "unchanged"
	DeletedAction    Action = "deleted"
	AbsentAction     Action = "already removed"
)

// ChangeSet holds the result of the deployment of a resource collection.
type ChangeSet struct {
	Entries []ChangeSetEntry
}

func NewChangeSet() *ChangeSet {
	return &ChangeSet{Entries: []ChangeSetEntry{}}
}

func (c *ChangeSet) Add(e ChangeSetEntry) {
	c.Entries = append(c.Entries, e)
}

func (c *ChangeSet) AddAll(e []ChangeSetEntry) {
	c.Entries = append(c.Entries, e...)
}

// Sort orders the entries by kind rank and subject.
func (c *ChangeSet) Sort() {
	sort.Stable(EntryOrder(c.Entries))
}

// IsEmpty returns true if the stage had nothing to do.
func (c *ChangeSet) IsEmpty() bool {
	return c == nil || len(c.Entries) == 0
}

func (c *ChangeSet) String() string {
	if c.IsEmpty() {
		return "nothing to do"
	}
	var b strings.Builder
	for i, e := range c.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.String())
	}
	return b.String()
}

// ChangeSetEntry defines the result of an action performed on a resource.
type ChangeSetEntry struct {
	// Subject represents the resource ID in the format 'kind/database/name'.
	Subject string
	// Action represents the action type taken for this resource.
	Action string
}

func (e ChangeSetEntry) String() string {
	return fmt.Sprintf("%s %s", e.Subject, e.Action)
}
