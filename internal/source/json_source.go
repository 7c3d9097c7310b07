package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"casepipe/internal/domain"
	"casepipe/internal/port"
)

// jsonDocument is the on-disk shape produced by the document-conversion
// collaborator: one file per report, pages with raw lines and grids.
type jsonDocument struct {
	Pages []struct {
		Index int          `json:"index"`
		Lines []string     `json:"lines"`
		Grids [][][]string `json:"grids"`
	} `json:"pages"`
}

type jsonSource struct {
	dir string
}

// NewJSONSource creates a PageSource reading converted documents from a
// directory of .json files, one document per file.
func NewJSONSource(dir string) port.PageSource {
	return &jsonSource{dir: dir}
}

// List loads every document in the directory in file-name order.
func (s *jsonSource) List(ctx context.Context) ([]port.SourceDocument, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("jsonSource.List: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]port.SourceDocument, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.load(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (s *jsonSource) load(name string) (*port.SourceDocument, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("jsonSource.load %s: %w", name, err)
	}
	return decodeDocument(name, data)
}

// decodeDocument parses one converted document. The document ID is derived
// from the file name, so the same feed yields the same IDs no matter where
// it is read from.
func decodeDocument(name string, data []byte) (*port.SourceDocument, error) {
	var jd jsonDocument
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, fmt.Errorf("source.decodeDocument %s: %w", name, err)
	}

	doc := port.SourceDocument{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte("doc:"+name)),
		SourceFile: name,
	}
	for _, p := range jd.Pages {
		doc.Pages = append(doc.Pages, domain.PageInput{Index: p.Index, Lines: p.Lines, Grids: p.Grids})
	}
	return &doc, nil
}
