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

// Package settings loads the declarative definitions of cluster resources.
//
// Definitions are YAML or JSON documents stored under a root directory, one
// file per resource instance, optionally overlaid per environment and
// optionally encrypted with age. The key order of each document is kept so
// that request payloads mirror the files they were read from.
package settings
