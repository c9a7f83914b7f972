// ABOUTME: Shared project layout for generated swarms: __main__.py, the swarm module, agents/ and tools/.
// ABOUTME: Targets differ only in file contents and in how agent packages are named.
package creator

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/2389-research/swarmbase/product"
	"github.com/2389-research/swarmbase/scaffold"
)

// layout is what a target contributes to the common file tree.
type layout interface {
	Creator
	mainSource(s *product.Swarm) string
	agentPackage(a *product.Agent) string
}

// writeTree renders every source first, then writes
//
//	<base>/<swarm>/__main__.py
//	<base>/<swarm>/<swarm>.py
//	<base>/<swarm>/agents/<pkg>/{__init__.py,<pkg>.py}
//	<base>/<swarm>/tools/<tool>/{__init__.py,<tool>.py}
//
// so that generation errors never leave a half-written project behind.
func writeTree(c layout, w scaffold.Writer, s *product.Swarm, base string) error {
	type file struct{ path, content string }

	root := filepath.Join(base, s.InstanceName())
	var dirs []string
	var files []file

	swarmSrc, err := c.SwarmSource(s)
	if err != nil {
		return err
	}
	files = append(files,
		file{filepath.Join(root, "__main__.py"), c.mainSource(s)},
		file{filepath.Join(root, s.InstanceName()+".py"), swarmSrc},
	)

	for _, a := range s.Agents() {
		pkg := c.agentPackage(a)
		dir := filepath.Join(root, "agents", pkg)
		src, err := c.AgentSource(a)
		if err != nil {
			return err
		}
		dirs = append(dirs, dir)
		files = append(files,
			file{filepath.Join(dir, "__init__.py"), fmt.Sprintf("from agents.%s import %s", pkg, pkg)},
			file{filepath.Join(dir, pkg+".py"), src},
		)
	}

	for _, t := range s.Tools() {
		inst := t.InstanceName()
		dir := filepath.Join(root, "tools", inst)
		src, err := c.ToolSource(t)
		if err != nil {
			return err
		}
		dirs = append(dirs, dir)
		files = append(files,
			file{filepath.Join(dir, "__init__.py"), fmt.Sprintf("from .%s import %s", inst, t.ClassName())},
			file{filepath.Join(dir, inst+".py"), src},
		)
	}

	if err := w.CreateRoot(root); err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.CreateDirectory(d); err != nil {
			return err
		}
	}
	for _, f := range files {
		if err := w.WriteFile(f.path, f.content); err != nil {
			return err
		}
	}

	log.Info().
		Str("target", string(c.Target())).
		Str("swarm", s.InstanceName()).
		Int("agents", len(s.Agents())).
		Int("tools", len(s.Tools())).
		Str("path", root).
		Msg("swarm files created")
	return nil
}
