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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// ErrFolderNotFound is returned when the source folder can't be read.
var ErrFolderNotFound = errors.New("folder not found")

// Loader writes the files of a folder into a database.
type Loader struct {
	dialer Dialer
	logger logr.Logger
}

// NewLoader returns a Loader that writes through connections opened by dialer.
func NewLoader(dialer Dialer, logger logr.Logger) *Loader {
	return &Loader{dialer: dialer, logger: logger}
}

// Load writes every file found under folder to database, using the file path
// relative to root as the document URI. All writes run concurrently and Load
// returns once every write has settled; the first failure is returned.
func (l *Loader) Load(ctx context.Context, root, folder, database string) (int, error) {
	w, err := l.dialer.Open(database)
	if err != nil {
		return 0, fmt.Errorf("connecting to %s failed, error: %w", database, err)
	}

	files, err := scan(folder)
	if err != nil {
		return 0, err
	}

	if len(files) == 0 {
		l.logger.Info("nothing to do", "folder", folder)
		return 0, nil
	}

	l.logger.Info("loading documents", "folder", folder, "database", database, "count", len(files))

	var g errgroup.Group
	for _, file := range files {
		file := file
		g.Go(func() error {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s failed, error: %w", file, err)
			}
			uri := documentURI(root, file)
			if err := w.Write(ctx, uri, content); err != nil {
				return err
			}
			l.logger.V(1).Info("document written", "uri", uri)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(files), nil
}

func scan(folder string) ([]string, error) {
	fi, err := os.Stat(folder)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%s: %w", folder, ErrFolderNotFound)
	}
	return scanRec(folder)
}

func scanRec(dir string) ([]string, error) {
	var files []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, ErrFolderNotFound)
	}
	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			f, err := scanRec(p)
			if err != nil {
				return nil, err
			}
			files = append(files, f...)
			continue
		}
		if entry.Type().IsRegular() {
			files = append(files, p)
		}
	}
	return files, nil
}

// documentURI strips the root prefix from the file path.
func documentURI(root, file string) string {
	uri := filepath.ToSlash(file)
	if root != "" {
		uri = strings.TrimPrefix(uri, strings.TrimSuffix(filepath.ToSlash(filepath.Clean(root)), "/"))
	}
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}
	return uri
}
