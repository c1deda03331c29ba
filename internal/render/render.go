// Package render turns a derived completion registry into the shell assets
// that ship with geodex.
package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/syntax"

	"github.com/geodex-io/geodex/internal/completion"
	"github.com/geodex-io/geodex/internal/filesystem"
)

const (
	// ZshAssetName follows the zsh convention of naming completion files
	// after the command with a leading underscore.
	ZshAssetName = "_geodex"
	// BashAssetName is the file sourced from bash_completion.d.
	BashAssetName = "geodex.bash"
)

// Asset is a rendered completion file ready to be written to disk.
type Asset struct {
	Name    string
	Content string
}

// Renderer renders and writes completion assets.
type Renderer struct {
	logger *zap.Logger
	fs     filesystem.FileSystem
}

func NewRenderer(logger *zap.Logger, fs filesystem.FileSystem) *Renderer {
	return &Renderer{
		logger: logger,
		fs:     fs,
	}
}

// Render produces the zsh and bash assets for the given registry. The bash
// asset is syntax checked so a broken template cannot ship a file that bash
// would refuse to source.
func (r *Renderer) Render(registry *completion.Registry) ([]Asset, error) {
	zshAsset, err := renderTemplate(zshTemplate, ZshAssetName, registry)
	if err != nil {
		return nil, err
	}
	bashAsset, err := renderTemplate(bashTemplate, BashAssetName, registry)
	if err != nil {
		return nil, err
	}
	if err := validateShellSyntax(bashAsset); err != nil {
		return nil, err
	}
	return []Asset{zshAsset, bashAsset}, nil
}

// Write writes the assets under dir, creating it if needed.
func (r *Renderer) Write(dir string, assets []Asset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create completion directory %s: %w", dir, err)
	}
	for _, asset := range assets {
		path := filepath.Join(dir, asset.Name)
		if err := r.fs.WriteFile(path, asset.Content); err != nil {
			return fmt.Errorf("failed to write completion asset %s: %w", path, err)
		}
		r.logger.Info(
			"wrote completion asset",
			zap.String("path", path),
			zap.String("size", humanize.Bytes(uint64(len(asset.Content)))),
		)
	}
	return nil
}

func renderTemplate(tmpl *template.Template, name string, registry *completion.Registry) (Asset, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, registry); err != nil {
		return Asset{}, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return Asset{Name: name, Content: buf.String()}, nil
}

// validateShellSyntax parses an asset as bash. The zsh asset is not checked
// because mvdan's parser covers POSIX dialects, not zsh.
func validateShellSyntax(asset Asset) error {
	parser := syntax.NewParser()
	if _, err := parser.Parse(strings.NewReader(asset.Content), asset.Name); err != nil {
		return fmt.Errorf("rendered %s is not valid shell: %w", asset.Name, err)
	}
	return nil
}
