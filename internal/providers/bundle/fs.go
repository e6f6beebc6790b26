package bundle

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"

	"github.com/pagecraft/backend/internal/domain/schema"
	"github.com/pagecraft/backend/internal/infrastructure/logging"
	"github.com/pagecraft/backend/internal/shared/types"
)

const (
	scriptPattern = "**/*.{js,jsx,ts,tsx}"
	stylePattern  = "**/*.{css,scss}"
)

var settingsNames = map[string]bool{
	"settings.yaml": true,
	"settings.yml":  true,
	"settings.toml": true,
}

// FSProvider serves bundles from a directory tree: one subdirectory per
// widget name. Settings files found in a bundle are parsed and
// registered as the widget's configuration schema.
type FSProvider struct {
	root    string
	schemas *schema.Registry
	logger  *logging.Logger
}

// NewFSProvider creates a filesystem-backed bundle provider
func NewFSProvider(root string, schemas *schema.Registry, logger *logging.Logger) *FSProvider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FSProvider{
		root:    root,
		schemas: schemas,
		logger:  logger.Named("bundle.fs"),
	}
}

// FetchBundle reads every artifact of a widget's directory
func (p *FSProvider) FetchBundle(ctx context.Context, widget string) ([]types.SourceArtifact, error) {
	dir, err := p.widgetDir(widget)
	if err != nil {
		return nil, err
	}

	var files []string
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk bundle %q: %w", widget, err)
	}

	var artifacts []types.SourceArtifact
	for _, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if settingsNames[filepath.Base(rel)] {
			p.loadSettings(widget, path)
			continue
		}

		kind, ok := p.classify(rel, path)
		if !ok {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read artifact %q: %w", rel, err)
		}
		if kind == types.KindScript && !p.utf8Text(data) {
			p.logger.Warn("skipping non-UTF8 script artifact",
				zap.String("widget", widget),
				zap.String("file", rel),
			)
			continue
		}

		artifacts = append(artifacts, types.SourceArtifact{
			FileName:    rel,
			Kind:        kind,
			Content:     string(data),
			GroupPrefix: widget,
		})
	}

	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: %q has no artifacts", ErrWidgetNotFound, widget)
	}
	return artifacts, nil
}

// CheckExists reports what a widget's directory contains
func (p *FSProvider) CheckExists(ctx context.Context, widget string) (*types.Existence, error) {
	dir, err := p.widgetDir(widget)
	if err != nil {
		return &types.Existence{Exists: false}, nil
	}

	out := &types.Existence{Exists: true}
	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		switch {
		case settingsNames[filepath.Base(rel)]:
			out.HasSettings = true
		case matches(scriptPattern, rel):
			out.HasScript = true
		case matches(stylePattern, rel):
			out.HasStyle = true
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("inspect bundle %q: %w", widget, walkErr)
	}
	return out, nil
}

func (p *FSProvider) widgetDir(widget string) (string, error) {
	// Widget names are single path elements; anything else escapes root
	if widget == "" || widget != filepath.Base(widget) || strings.ContainsAny(widget, "./\\") {
		return "", fmt.Errorf("%w: invalid widget name %q", ErrWidgetNotFound, widget)
	}
	dir := filepath.Join(p.root, widget)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrWidgetNotFound, widget)
	}
	return dir, nil
}

// classify maps a file to its artifact kind: extension first, content
// sniffing for extensionless files
func (p *FSProvider) classify(rel, path string) (types.ArtifactKind, bool) {
	if matches(scriptPattern, rel) {
		return types.KindScript, true
	}
	if matches(stylePattern, rel) {
		return types.KindStyle, true
	}
	if filepath.Ext(rel) != "" {
		return "", false
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", false
	}
	if mtype.Is("text/javascript") || mtype.Is("application/javascript") {
		return types.KindScript, true
	}
	return "", false
}

// utf8Text verifies script bytes are UTF-8 compatible before handing
// them to the evaluator
func (p *FSProvider) utf8Text(data []byte) bool {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		// Detection failure on tiny inputs; let the evaluator decide
		return true
	}
	switch result.Charset {
	case "UTF-8", "ISO-8859-1", "US-ASCII":
		return true
	}
	return false
}

func (p *FSProvider) loadSettings(widget, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("unreadable settings file", zap.String("widget", widget), zap.Error(err))
		return
	}

	var def schema.Definition
	if strings.HasSuffix(path, ".toml") {
		err = toml.Unmarshal(data, &def)
	} else {
		err = yaml.Unmarshal(data, &def)
	}
	if err != nil {
		p.logger.Warn("malformed settings file",
			zap.String("widget", widget),
			zap.Error(err),
		)
		return
	}

	if p.schemas != nil {
		p.schemas.Register(widget, &def)
	}
}

func matches(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}
