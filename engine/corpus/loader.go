// Package corpus loads podcast transcripts from disk and splits them into
// embeddable chunks. Layout: one directory per episode, each holding a
// transcript.md with YAML front matter followed by the transcript body.
package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/podsage/podsage/engine/domain"
)

// TranscriptFile is the expected filename inside every episode directory.
const TranscriptFile = "transcript.md"

const frontMatterSep = "---"

// LoadDocuments walks root, parsing every episode transcript it finds.
// Documents come back in lexical directory order, which fixes the
// document-ordinal used for chunk ids. A transcript that fails parsing is
// logged and skipped; the returned count says how many were dropped.
func LoadDocuments(root string, log *slog.Logger) ([]domain.Document, int, error) {
	if log == nil {
		log = slog.Default()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, 0, fmt.Errorf("corpus: read root %s: %w", root, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	var docs []domain.Document
	skipped := 0
	for _, dir := range dirs {
		path := filepath.Join(root, dir, TranscriptFile)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		doc, err := ParseTranscript(path)
		if err != nil {
			log.Warn("corpus: skipping document", "path", path, "error", err)
			skipped++
			continue
		}
		docs = append(docs, doc)
	}
	return docs, skipped, nil
}

// ParseTranscript reads one transcript file: a YAML front-matter block
// delimited by "---" lines, then the free-text body. A missing separator or
// unparseable metadata block yields a ParseError wrapping ErrCorpusParse.
func ParseTranscript(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("corpus: read %s: %w", path, err)
	}

	parts := strings.Split(string(data), frontMatterSep)
	if len(parts) < 3 {
		return domain.Document{}, domain.NewParseError(path, "front-matter separator not found")
	}

	var meta domain.DocumentMeta
	if err := yaml.Unmarshal([]byte(parts[1]), &meta); err != nil {
		return domain.Document{}, domain.NewParseError(path, "front matter not parseable: "+err.Error())
	}
	domain.ApplyMetaDefaults(&meta)
	meta.Folder = filepath.Base(filepath.Dir(path))

	// The body may itself contain "---" lines; rejoin everything after the
	// closing separator.
	body := strings.TrimSpace(strings.Join(parts[2:], frontMatterSep))

	return domain.Document{Meta: meta, Body: body, Path: path}, nil
}
