package bundle

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"

	"github.com/pagecraft/backend/internal/shared/types"
)

// DownloadOptions annotates an archived bundle set
type DownloadOptions struct {
	PropsByName    map[string]map[string]interface{} `json:"props_by_name,omitempty"`
	LanguageByName map[string]string                 `json:"language_by_name,omitempty"`
	Canvas         types.Canvas                      `json:"canvas,omitempty"`
}

// manifest is the archive's index entry
type manifest struct {
	Widgets     []string         `json:"widgets"`
	Options     *DownloadOptions `json:"options,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// WriteArchive streams a gzip tarball of the named widget bundles. Each
// artifact lands under <widget>/<fileName>; a manifest.json records the
// widget list and per-widget annotations.
func WriteArchive(ctx context.Context, w io.Writer, provider Provider, widgets []string, opts *DownloadOptions) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	man := manifest{Widgets: widgets, Options: opts, GeneratedAt: time.Now()}
	manData, err := sonic.Marshal(man)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := writeEntry(tw, "manifest.json", manData); err != nil {
		return err
	}

	for _, widget := range widgets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		artifacts, err := provider.FetchBundle(ctx, widget)
		if err != nil {
			return fmt.Errorf("archive widget %q: %w", widget, err)
		}
		for _, art := range artifacts {
			name := widget + "/" + art.FileName
			if err := writeEntry(tw, name, []byte(art.Content)); err != nil {
				return err
			}
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %q: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write entry %q: %w", name, err)
	}
	return nil
}

// decodeJSON decodes a response body with sonic
func decodeJSON(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, v)
}
