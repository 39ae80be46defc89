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
	"strings"
)

// EntryOrder implements the Sort interface for change set entries.
type EntryOrder []ChangeSetEntry

func (entries EntryOrder) Len() int {
	return len(entries)
}

func (entries EntryOrder) Swap(i, j int) {
	entries[i], entries[j] = entries[j], entries[i]
}

func (entries EntryOrder) Less(i, j int) bool {
	si := entries[i].Subject
	sj := entries[j].Subject
	ranki, rankj := rankOfKind(kindOf(si)), rankOfKind(kindOf(sj))
	if ranki == rankj {
		return si < sj
	}
	return ranki < rankj
}

func kindOf(subject string) string {
	if i := strings.Index(subject, "/"); i > 0 {
		kind := subject[:i]
		// alert kinds span two path segments
		if kind == "alert" {
			if j := strings.Index(subject[i+1:], "/"); j > 0 {
				return subject[:i+1+j]
			}
		}
		return kind
	}
	return subject
}

// rankOfKind returns an int denoting the position of the given kind
// in the deployment order, according to which kinds depend on which.
func rankOfKind(kind string) int {
	switch strings.ToLower(kind) {
	// Storage
	case "forests":
		return 0
	case "databases":
		return 1
	// Rebalancing
	case "partitions", "rebalancer", "partition-queries":
		return 2
	// Event processing
	case "triggers", "pipelines", "domains":
		return 3
	// Alerting
	case "alert/configs":
		return 4
	case "alert/actions":
		return 5
	case "alert/rules":
		return 6
	default:
		return 7
	}
}
