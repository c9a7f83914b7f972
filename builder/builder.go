// ABOUTME: Shared plumbing for product builders: the backend interface, options and record helpers.
// ABOUTME: Builders hold a sticky validation error raised at the mutating call and surfaced by Err/Build/Product.
package builder

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/naming"
	"github.com/2389-research/swarmbase/product"
)

// ResourceClient is the part of client.Client the builders need.
type ResourceClient interface {
	Create(ctx context.Context, rec client.Record) (client.Record, error)
	Get(ctx context.Context, id string) (client.Record, error)
}

// Option configures a builder.
type Option func(*settings)

type settings struct {
	counter *naming.Counter
}

// WithCounter shares a fallback-name counter between builders. Without it
// each builder numbers its own products.
func WithCounter(c *naming.Counter) Option {
	return func(s *settings) { s.counter = c }
}

func applyOptions(opts []Option) settings {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.counter == nil {
		s.counter = naming.NewCounter()
	}
	return s
}

// fetch gets a record and treats an empty answer as missing.
func fetch(ctx context.Context, c ResourceClient, kind product.Kind, id string) (client.Record, error) {
	noun := strings.ToLower(string(kind))
	rec, err := c.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", noun, id, err)
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("get %s %s: %w", noun, id, client.ErrNotFound)
	}
	return rec, nil
}

// loadBase copies the shared product fields out of a record. A record
// without a name leaves the product on its fallback name.
func loadBase(b *product.Base, rec client.Record) error {
	b.ID = rec.ID()
	if name := rec.String("name"); name != "" {
		if err := b.SetName(name); err != nil {
			return fmt.Errorf("%s %s name: %w", b.Kind(), b.ID, err)
		}
	} else {
		b.ClearName()
	}
	b.ExtraAttributes = make(map[string]any)
	maps.Copy(b.ExtraAttributes, rec.Map("extra_attributes"))
	return nil
}

func baseRecord(b *product.Base) client.Record {
	extra := b.ExtraAttributes
	if extra == nil {
		extra = map[string]any{}
	}
	rec := client.Record{
		"name":             b.Name(),
		"extra_attributes": extra,
	}
	if b.ID != "" {
		rec["id"] = b.ID
	}
	return rec
}
