// ABOUTME: ToolBuilder assembles Tool products, persists them and rehydrates them from the backend.
// ABOUTME: Rehydration picks the newest code version by created_at.
package builder

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/naming"
	"github.com/2389-research/swarmbase/product"
)

// CodeVersionLayout is the created_at format of code version entries.
const CodeVersionLayout = "2006-01-02T15:04:05.999999"

// ToolBuilder builds product.Tool values.
type ToolBuilder struct {
	client  ResourceClient
	counter *naming.Counter
	tool    *product.Tool
	err     error
}

// NewToolBuilder returns a builder persisting through c.
func NewToolBuilder(c ResourceClient, opts ...Option) *ToolBuilder {
	s := applyOptions(opts)
	b := &ToolBuilder{client: c, counter: s.counter}
	b.Reset()
	return b
}

// Reset discards the work in progress and starts a fresh tool.
func (b *ToolBuilder) Reset() {
	b.tool = product.NewTool(b.counter.Next(string(product.KindTool)))
	b.err = nil
}

// Err returns the first validation error seen since the last reset.
func (b *ToolBuilder) Err() error { return b.err }

func (b *ToolBuilder) SetID(id string) *ToolBuilder {
	if b.err == nil {
		b.tool.ID = id
	}
	return b
}

func (b *ToolBuilder) SetName(name string) *ToolBuilder {
	if b.err == nil {
		b.err = b.tool.SetName(name)
	}
	return b
}

func (b *ToolBuilder) SetExtraAttributes(attrs map[string]any) *ToolBuilder {
	if b.err == nil {
		b.tool.ExtraAttributes = attrs
	}
	return b
}

func (b *ToolBuilder) SetDescription(d string) *ToolBuilder {
	if b.err == nil {
		b.tool.Description = d
	}
	return b
}

func (b *ToolBuilder) SetVersion(v string) *ToolBuilder {
	if b.err == nil {
		b.tool.Version = v
	}
	return b
}

func (b *ToolBuilder) SetCode(code string) *ToolBuilder {
	if b.err == nil {
		b.tool.Code = code
	}
	return b
}

// Build persists the tool and returns the stored record.
func (b *ToolBuilder) Build(ctx context.Context) (client.Record, error) {
	if b.err != nil {
		return nil, b.err
	}
	rec, err := b.client.Create(ctx, ToolRecord(b.tool))
	if err != nil {
		return nil, fmt.Errorf("create tool: %w", err)
	}
	return rec, nil
}

// Product hands out the tool and resets the builder.
func (b *ToolBuilder) Product() (*product.Tool, error) {
	t, err := b.tool, b.err
	b.Reset()
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FromID replaces the work in progress with the stored tool.
func (b *ToolBuilder) FromID(ctx context.Context, id string) error {
	rec, err := fetch(ctx, b.client, product.KindTool, id)
	if err != nil {
		return err
	}
	b.Reset()
	if err := loadBase(&b.tool.Base, rec); err != nil {
		b.err = err
		return err
	}
	b.tool.Description = rec.String("description")

	newest, err := newestCodeVersion(rec.Records("code_versions"))
	if err != nil {
		b.err = fmt.Errorf("tool %s: %w", id, err)
		return b.err
	}
	if newest != nil {
		b.tool.Version = newest.String("version")
		b.tool.Code = newest.String("code")
	}
	return nil
}

func newestCodeVersion(versions []client.Record) (client.Record, error) {
	if len(versions) == 0 {
		return nil, nil
	}
	type stamped struct {
		at  time.Time
		rec client.Record
	}
	all := make([]stamped, 0, len(versions))
	for _, v := range versions {
		at, err := time.Parse(CodeVersionLayout, v.String("created_at"))
		if err != nil {
			return nil, fmt.Errorf("code version created_at: %w", err)
		}
		all = append(all, stamped{at: at, rec: v})
	}
	newest := slices.MaxFunc(all, func(a, b stamped) int { return a.at.Compare(b.at) })
	return newest.rec, nil
}

// ToolRecord is the create payload for a tool.
func ToolRecord(t *product.Tool) client.Record {
	rec := baseRecord(&t.Base)
	rec["description"] = t.Description
	rec["version"] = t.Version
	rec["code"] = t.Code
	return rec
}
