// ABOUTME: Resolves the swarm a command works on, from a swarm.yaml manifest or from the backend by id.
// ABOUTME: Backend swarms are rehydrated through builder.SwarmBuilder over the resource client.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/2389-research/swarmbase/builder"
	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/export"
	"github.com/2389-research/swarmbase/product"
)

var errNoSource = errors.New("one of --manifest or --swarm-id is required")

// SwarmSource is embedded by commands that read a swarm.
type SwarmSource struct {
	Manifest string `short:"m" help:"Read the swarm from a swarm.yaml manifest." type:"existingfile"`
	SwarmID  string `name:"swarm-id" short:"s" help:"Fetch the swarm from the backend."`
}

func (src SwarmSource) load(a *app) (*product.Swarm, error) {
	switch {
	case src.Manifest != "" && src.SwarmID != "":
		return nil, errors.New("--manifest and --swarm-id are mutually exclusive")
	case src.Manifest != "":
		data, err := os.ReadFile(src.Manifest)
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		s, err := export.ImportYAML(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Manifest, err)
		}
		return s, nil
	case src.SwarmID != "":
		sb := builder.NewSwarmBuilderForSet(a.clients())
		if err := sb.FromID(a.ctx, src.SwarmID); err != nil {
			return nil, err
		}
		return sb.Product()
	}
	return nil, errNoSource
}

func (a *app) clients() *client.Set {
	var opts []client.Option
	if a.cfg.AuthToken != "" {
		opts = append(opts, client.WithToken(a.cfg.AuthToken))
	}
	return client.NewSet(a.cfg.APIURL, opts...)
}
