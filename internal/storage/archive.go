package storage

import (
	"fmt"

	"postgen/internal/domain"
	"postgen/pkg/zip"
)

// PostArchive packs a generation into hook, caption, cta and post text files.
func PostArchive(g *domain.Generation) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("storage: generation is required")
	}
	modified := g.CreatedAt
	return zip.ArchiveAssets([]zip.Asset{
		{Filename: "hook.txt", MIME: "text/plain", Data: []byte(g.Hook), Modified: modified},
		{Filename: "caption.txt", MIME: "text/plain", Data: []byte(g.Caption), Modified: modified},
		{Filename: "cta.txt", MIME: "text/plain", Data: []byte(g.Cta), Modified: modified},
		{Filename: "post.txt", MIME: "text/plain", Data: []byte(g.FinalOutput), Modified: modified},
	})
}

// ArchiveName is the download and export file name for a generation.
func ArchiveName(g *domain.Generation) string {
	if g.ID != "" {
		return "generation-" + g.ID + ".zip"
	}
	return "generation-" + g.CreatedAt.UTC().Format("20060102T150405Z") + ".zip"
}
