// ABOUTME: Renders DOT text to SVG or PNG by piping it through the graphviz dot command.
// ABOUTME: "dot" output is a passthrough so callers can treat every format the same way.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrGraphvizMissing   = errors.New("graphviz dot command not found")
)

// Formats lists the accepted output formats.
var Formats = []string{"dot", "svg", "png"}

// Command is the graphviz executable. Tests may point it at a stub.
var Command = "dot"

// ContentType returns the HTTP media type for a format.
func ContentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// GraphvizAvailable reports whether Command is on PATH.
func GraphvizAvailable() bool {
	_, err := exec.LookPath(Command)
	return err == nil
}

// Render converts dotText to format.
func Render(ctx context.Context, dotText, format string) ([]byte, error) {
	if dotText == "" {
		return nil, errors.New("cannot render empty DOT text")
	}
	if !slices.Contains(Formats, format) {
		return nil, fmt.Errorf("%w %q: supported formats are %s", ErrUnsupportedFormat, format, strings.Join(Formats, ", "))
	}
	if format == "dot" {
		return []byte(dotText), nil
	}
	if !GraphvizAvailable() {
		return nil, fmt.Errorf("%w: install graphviz to render %s output", ErrGraphvizMissing, format)
	}

	cmd := exec.CommandContext(ctx, Command, "-T"+format)
	cmd.Stdin = strings.NewReader(dotText)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("graphviz dot command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
