// Package sink persists confirmed transactions: the record is uploaded to
// the provider file store and indexed into the vector store the assistant
// searches; an optional copy goes to long-term object storage.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"finbot/internal/extract"
)

// FileStore is the slice of the OpenAI client the sink uses.
type FileStore interface {
	CreateFileBytes(ctx context.Context, request openai.FileBytesRequest) (openai.File, error)
	CreateVectorStoreFile(ctx context.Context, vectorStoreID string, request openai.VectorStoreFileRequest) (openai.VectorStoreFile, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// Archiver mirrors stored records to object storage.
type Archiver interface {
	Archive(ctx context.Context, data []byte) (string, error)
}

type Sink struct {
	files         FileStore
	vectorStoreID string
	archive       Archiver // nil when no archive bucket is configured
	now           func() time.Time
	log           zerolog.Logger
}

func New(files FileStore, vectorStoreID string, archive Archiver, log zerolog.Logger) *Sink {
	return &Sink{
		files:         files,
		vectorStoreID: vectorStoreID,
		archive:       archive,
		now:           time.Now,
		log:           log,
	}
}

// Store uploads rec as a pretty-printed JSON file and attaches it to the
// vector store. When the attach fails the uploaded file is deleted again
// so the file store and the index cannot drift apart.
func (s *Sink) Store(ctx context.Context, rec *extract.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("sink: marshal record: %w", err)
	}

	name := fmt.Sprintf("transaction-%s.json", s.now().UTC().Format(time.RFC3339))
	file, err := s.files.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    name,
		Bytes:   data,
		Purpose: openai.PurposeAssistants,
	})
	if err != nil {
		return fmt.Errorf("sink: upload %s: %w", name, err)
	}

	if _, err := s.files.CreateVectorStoreFile(ctx, s.vectorStoreID, openai.VectorStoreFileRequest{FileID: file.ID}); err != nil {
		if delErr := s.files.DeleteFile(ctx, file.ID); delErr != nil {
			s.log.Warn().Err(delErr).Str("file_id", file.ID).Msg("Compensating delete failed")
		}
		return fmt.Errorf("sink: attach %s to vector store: %w", file.ID, err)
	}

	s.log.Info().
		Str("file_id", file.ID).
		Str("file_name", name).
		Str("bank", rec.BankName).
		Msg("Transaction stored")

	if s.archive != nil {
		// The archive is a convenience mirror; a failed copy must not fail
		// a transaction that is already stored and indexed.
		if uri, err := s.archive.Archive(ctx, data); err != nil {
			s.log.Warn().Err(err).Msg("Archive copy failed")
		} else {
			s.log.Info().Str("uri", uri).Msg("Transaction archived")
		}
	}
	return nil
}
