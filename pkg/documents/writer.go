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

package documents

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/stefanprodan/mldeploy/pkg/client"
)

// DocumentsEndpoint is the REST API endpoint used to write documents.
const DocumentsEndpoint = "/v1/documents"

// Writer stores documents into one database.
type Writer interface {
	Write(ctx context.Context, uri string, content []byte) error
}

// Dialer opens data-layer connections scoped to a database.
type Dialer interface {
	Open(database string) (Writer, error)
}

// RESTDialer opens connections to the cluster REST API.
type RESTDialer struct {
	Connection client.Connection
	Logger     logr.Logger
}

// NewRESTDialer returns a Dialer for the REST API served at conn.
func NewRESTDialer(conn client.Connection, logger logr.Logger) *RESTDialer {
	return &RESTDialer{Connection: conn, Logger: logger}
}

// Open returns a Writer scoped to database.
func (d *RESTDialer) Open(database string) (Writer, error) {
	if database == "" {
		return nil, fmt.Errorf("database not specified")
	}
	return &restWriter{
		client:   client.New(d.Connection, d.Logger),
		database: database,
	}, nil
}

type writeParams struct {
	URI      string `url:"uri"`
	Database string `url:"database,omitempty"`
}

type restWriter struct {
	client   *client.Client
	database string
}

func (w *restWriter) Write(ctx context.Context, uri string, content []byte) error {
	resp, err := w.client.Put(ctx, client.Request{
		Endpoint: DocumentsEndpoint,
		Body:     content,
		Params:   writeParams{URI: uri, Database: w.database},
	})
	if err != nil {
		return fmt.Errorf("%s write failed, error: %w", uri, err)
	}
	if !resp.Is(http.StatusCreated, http.StatusNoContent) {
		return fmt.Errorf("%s write failed, error: %w", uri, client.NewStatusError(resp))
	}
	return nil
}
