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

package main

import (
	"context"
	"fmt"

	"github.com/stefanprodan/mldeploy/pkg/client"
	"github.com/stefanprodan/mldeploy/pkg/documents"
	"github.com/stefanprodan/mldeploy/pkg/resmgr"
	"github.com/stefanprodan/mldeploy/pkg/settings"
)

func newConnection(port int) client.Connection {
	return client.Connection{
		Scheme:             cfg.Connection.Scheme,
		Host:               cfg.Connection.Host,
		Port:               port,
		Username:           cfg.Connection.Username,
		Password:           cfg.Connection.Password,
		InsecureSkipVerify: cfg.Connection.InsecureSkipVerify,
	}
}

func newSettingsResolver() (*settings.Resolver, error) {
	identities, err := settings.ParseAgeIdentities(cfg.Settings.AgeIdentity)
	if err != nil {
		return nil, fmt.Errorf("loading the age identities failed, error: %w", err)
	}

	env := settings.Environment{
		Name: cfg.Settings.Environment,
		Vars: map[string]string{"ENVIRONMENT": cfg.Settings.Environment},
	}
	return settings.NewResolver(cfg.Settings.Path, env, identities), nil
}

func newResourceManager(ctx context.Context) (*resmgr.ResourceManager, error) {
	resolver, err := newSettingsResolver()
	if err != nil {
		return nil, err
	}

	log := newLogger()
	c := client.New(newConnection(cfg.Connection.ManagePort), log)

	resMgr := resmgr.NewResourceManager(c, resolver, log)
	resMgr.SetAPIPath(cfg.ManagementPath)

	if cfg.ServerVersion != "" {
		if err := resMgr.CheckServerVersion(ctx, cfg.ServerVersion); err != nil {
			return nil, err
		}
	}

	return resMgr, nil
}

func newDocumentLoader() *documents.Loader {
	log := newLogger()
	dialer := documents.NewRESTDialer(newConnection(cfg.Connection.RESTPort), log)
	return documents.NewLoader(dialer, log)
}
