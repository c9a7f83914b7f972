// ABOUTME: Run implementations for every swarmbase subcommand.
// ABOUTME: Generation lints first and refuses swarms with errors unless --force is given.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/2389-research/swarmbase/builder"
	"github.com/2389-research/swarmbase/creator"
	"github.com/2389-research/swarmbase/export"
	"github.com/2389-research/swarmbase/lint"
	"github.com/2389-research/swarmbase/render"
	"github.com/2389-research/swarmbase/scaffold"
	"github.com/2389-research/swarmbase/server"
	"github.com/2389-research/swarmbase/store"
)

type ExportCmd struct {
	SwarmSource `embed:""`

	Target       string `short:"t" help:"Generator target (swarmbasecore, langchain). Defaults to the configured target."`
	Out          string `short:"o" help:"Directory the swarm folder is created in." default:"." type:"path"`
	Force        bool   `help:"Generate even when lint reports errors."`
	Venv         bool   `help:"Create a virtualenv inside the generated project."`
	Requirements string `help:"requirements.txt to install into the virtualenv." type:"existingfile"`
}

func (c *ExportCmd) Run(a *app) error {
	name := c.Target
	if name == "" {
		name = a.cfg.Target
	}
	target, err := creator.ParseTarget(name)
	if err != nil {
		return err
	}

	s, err := c.load(a)
	if err != nil {
		return err
	}

	diags := lint.Lint(s)
	if lint.HasErrors(diags) && !c.Force {
		printDiagnostics(a.out, diags)
		return fmt.Errorf("swarm %s has %d lint error(s); use --force to export anyway",
			s.InstanceName(), lint.Count(diags, lint.SeverityError))
	}

	cr, err := creator.New(target)
	if err != nil {
		return err
	}
	if err := cr.CreateSwarmFiles(s, c.Out); err != nil {
		return err
	}

	if c.Venv {
		opts := scaffold.VenvOptions{Python: a.cfg.Python, Requirements: c.Requirements}
		if err := scaffold.SetupVirtualenv(a.ctx, c.Out, s.InstanceName(), opts); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.out, SuccessStyle.Render(fmt.Sprintf("generated %s swarm %s in %s", target, s.InstanceName(), c.Out)))
	return nil
}

type ValidateCmd struct {
	SwarmSource `embed:""`

	Strict bool `help:"Treat warnings as failures."`
}

func (c *ValidateCmd) Run(a *app) error {
	s, err := c.load(a)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, TitleStyle.Render(fmt.Sprintf("%s: %d agents, %d tools, %d relationships",
		s.ClassName(), len(s.Agents()), len(s.Tools()), len(s.Chart.Edges()))))

	diags := lint.Lint(s)
	printDiagnostics(a.out, diags)

	errs, warns := lint.Count(diags, lint.SeverityError), lint.Count(diags, lint.SeverityWarning)
	switch {
	case errs > 0:
		return fmt.Errorf("%d error(s), %d warning(s)", errs, warns)
	case warns > 0 && c.Strict:
		return fmt.Errorf("%d warning(s) in strict mode", warns)
	}
	fmt.Fprintln(a.out, SuccessStyle.Render(fmt.Sprintf("ok: %d warning(s)", warns)))
	return nil
}

func printDiagnostics(w io.Writer, diags []lint.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s %s %s\n",
			StyleForSeverity(d.Severity).Render(d.Severity),
			RuleStyle.Render("["+d.Rule+"]"),
			d.Message)
	}
}

type ChartCmd struct {
	SwarmSource `embed:""`

	Format string `short:"f" help:"Output format: dot, svg and png render the agency chart, yaml writes the manifest." enum:"dot,svg,png,yaml" default:"dot"`
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ChartCmd) Run(a *app) error {
	s, err := c.load(a)
	if err != nil {
		return err
	}

	var data []byte
	if c.Format == "yaml" {
		text, err := export.ExportYAML(s)
		if err != nil {
			return err
		}
		data = []byte(text)
	} else {
		text, err := export.ExportDOT(s)
		if err != nil {
			return err
		}
		if data, err = render.Render(a.ctx, text, c.Format); err != nil {
			return err
		}
	}

	if c.Output == "" {
		_, err = a.out.Write(data)
		return err
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.Output, err)
	}
	log.Info().Str("path", c.Output).Str("format", c.Format).Int("bytes", len(data)).Msg("chart written")
	return nil
}

type PushCmd struct {
	Manifest string `arg:"" help:"swarm.yaml manifest to upload." type:"existingfile"`
}

// Run creates tools first, then agents, then the swarm, so every reference
// resolves on the backend.
func (c *PushCmd) Run(a *app) error {
	s, err := SwarmSource{Manifest: c.Manifest}.load(a)
	if err != nil {
		return err
	}
	set := a.clients()

	for _, t := range s.Tools() {
		if _, err := set.Tools.Create(a.ctx, builder.ToolRecord(t)); err != nil {
			return fmt.Errorf("create tool %s: %w", t.ID, err)
		}
	}
	for _, ag := range s.Agents() {
		if _, err := set.Agents.Create(a.ctx, builder.AgentRecord(ag)); err != nil {
			return fmt.Errorf("create agent %s: %w", ag.ID, err)
		}
	}
	rec, err := set.Swarms.Create(a.ctx, builder.SwarmRecord(s))
	if err != nil {
		return fmt.Errorf("create swarm: %w", err)
	}

	fmt.Fprintln(a.out, rec.ID())
	return nil
}

type ServeCmd struct {
	Bind        string `help:"Listen address. Defaults to the configured bind."`
	AllowRemote bool   `name:"allow-remote" help:"Allow non-loopback binds (requires a token)."`
}

func (c *ServeCmd) Run(a *app) error {
	cfg := *a.cfg
	if c.Bind != "" {
		cfg.Bind = c.Bind
	}
	if c.AllowRemote {
		cfg.AllowRemote = true
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	log.Info().Str("db", cfg.DBPath()).Msg("store opened")
	return server.New(st, server.Config{Addr: cfg.Bind, AuthToken: cfg.AuthToken}).ListenAndServe(a.ctx)
}

type ModelsCmd struct{}

func (c *ModelsCmd) Run(a *app) error {
	for _, name := range creator.Models() {
		m, err := creator.LookupModel(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%-12s %s\n", name, m.Expression())
	}
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	v := version
	if info, ok := debug.ReadBuildInfo(); ok && v == "dev" {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	fmt.Fprintf(a.out, "swarmbase %s\n", v)
	return nil
}
