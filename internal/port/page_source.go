package port

import (
	"context"

	"github.com/google/uuid"

	"casepipe/internal/domain"
)

// SourceDocument is one report document as delivered by the external
// document-conversion collaborator: per page, the ordered raw text lines
// and zero or more candidate table grids.
type SourceDocument struct {
	ID         uuid.UUID
	SourceFile string
	Pages      []domain.PageInput
}

// PageSource abstracts the document-conversion collaborator.
type PageSource interface {
	List(ctx context.Context) ([]SourceDocument, error)
}
