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
)

// ValidationError is returned when the caller input is rejected before any request is made.
type ValidationError struct {
	Subject string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Subject, e.Message)
}

// StageError holds the first failure of a stage.
// The other operations of the stage ran to completion, their results are discarded.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed, error: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
