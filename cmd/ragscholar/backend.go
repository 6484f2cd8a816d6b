// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/pdiddy/ragscholar/internal/paperclient"
	"github.com/pdiddy/ragscholar/pkg/types"
)

// newClient builds the backend client from the loaded config.
func newClient(cfg types.Config) (*paperclient.Client, error) {
	c, err := paperclient.New(cfg.Backend, logger)
	if err != nil {
		return nil, fmt.Errorf("configuring backend client: %w", err)
	}
	return c, nil
}
