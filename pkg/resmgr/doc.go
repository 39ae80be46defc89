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

// Package resmgr contains utilities for deploying resources to a document-database cluster
// through its HTTP management API.
//
// The ResourceManager performs the following actions:
// - checks whether a resource exists and creates or updates it (upsert)
// - restricts update payloads to the properties the management API accepts
// - deploys every definition of a settings namespace concurrently as one stage
// - creates, updates and removes databases, expanding forests per host
// - sequences the triggers, CPF and alerting stages of a database
package resmgr
