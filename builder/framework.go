// ABOUTME: FrameworkBuilder assembles Framework products; frameworks carry only the shared fields.
// ABOUTME: Swarm and tool membership is managed through client.FrameworkClient.
package builder

import (
	"context"
	"fmt"

	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/naming"
	"github.com/2389-research/swarmbase/product"
)

// FrameworkBuilder builds product.Framework values.
type FrameworkBuilder struct {
	client    ResourceClient
	counter   *naming.Counter
	framework *product.Framework
	err       error
}

func NewFrameworkBuilder(c ResourceClient, opts ...Option) *FrameworkBuilder {
	s := applyOptions(opts)
	b := &FrameworkBuilder{client: c, counter: s.counter}
	b.Reset()
	return b
}

func (b *FrameworkBuilder) Reset() {
	b.framework = product.NewFramework(b.counter.Next(string(product.KindFramework)))
	b.err = nil
}

func (b *FrameworkBuilder) Err() error { return b.err }

func (b *FrameworkBuilder) SetID(id string) *FrameworkBuilder {
	if b.err == nil {
		b.framework.ID = id
	}
	return b
}

func (b *FrameworkBuilder) SetName(name string) *FrameworkBuilder {
	if b.err == nil {
		b.err = b.framework.SetName(name)
	}
	return b
}

func (b *FrameworkBuilder) SetExtraAttributes(attrs map[string]any) *FrameworkBuilder {
	if b.err == nil {
		b.framework.ExtraAttributes = attrs
	}
	return b
}

func (b *FrameworkBuilder) Build(ctx context.Context) (client.Record, error) {
	if b.err != nil {
		return nil, b.err
	}
	rec, err := b.client.Create(ctx, baseRecord(&b.framework.Base))
	if err != nil {
		return nil, fmt.Errorf("create framework: %w", err)
	}
	return rec, nil
}

func (b *FrameworkBuilder) Product() (*product.Framework, error) {
	f, err := b.framework, b.err
	b.Reset()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (b *FrameworkBuilder) FromID(ctx context.Context, id string) error {
	rec, err := fetch(ctx, b.client, product.KindFramework, id)
	if err != nil {
		return err
	}
	b.Reset()
	if err := loadBase(&b.framework.Base, rec); err != nil {
		b.err = err
		return err
	}
	return nil
}
