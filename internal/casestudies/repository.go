package casestudies

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/gavelhq/gavel/pkg/embedding"
	"github.com/gavelhq/gavel/pkg/repository"
)

const chunkColumns = "id, doc_ref, chunk_id, law, company, link, text"

type repo struct {
	db       *sql.DB
	embedder embedding.Embedder
	logger   *slog.Logger
}

// New creates a case-study repository implementing the System interface.
func New(db *sql.DB, embedder embedding.Embedder, logger *slog.Logger) System {
	return &repo{
		db:       db,
		embedder: embedder,
		logger:   logger.With("system", "casestudies"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Chunk, error) {
	if cmd.DocRef == "" {
		return nil, fmt.Errorf("%w: doc_ref required", ErrInvalid)
	}
	if cmd.Text == "" {
		return nil, fmt.Errorf("%w: text required", ErrInvalid)
	}

	vecs, err := r.embedder.Embed(ctx, []string{cmd.Text})
	if err != nil {
		return nil, fmt.Errorf("embed case study: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO case_studies(id, doc_ref, chunk_id, law, company, link, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, chunkColumns)

	args := []any{
		uuid.New(),
		cmd.DocRef,
		cmd.ChunkID,
		cmd.Law,
		cmd.Company,
		cmd.Link,
		cmd.Text,
		pgvector.NewHalfVector(vecs[0]),
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Chunk, error) {
		return repository.QueryOne(ctx, tx, q, args, scanChunk)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("case study chunk created", "id", c.ID, "doc_ref", c.DocRef, "chunk_id", c.ChunkID)
	return &c, nil
}

func (r *repo) DenseSearch(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	q := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $1) AS score
		FROM case_studies
		ORDER BY embedding <=> $1
		LIMIT %d`, chunkColumns, k)

	hits, err := repository.QueryMany(ctx, r.db, q, []any{pgvector.NewHalfVector(vec)}, scanHit)
	if err != nil {
		return nil, fmt.Errorf("dense search: %w", err)
	}
	return hits, nil
}

func (r *repo) LexicalSearch(ctx context.Context, query string, k int) ([]Hit, error) {
	q := fmt.Sprintf(`
		SELECT %s, ts_rank(search, q) AS score
		FROM case_studies, websearch_to_tsquery('english', $1) q
		WHERE search @@ q
		ORDER BY score DESC
		LIMIT %d`, chunkColumns, k)

	hits, err := repository.QueryMany(ctx, r.db, q, []any{query}, scanHit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	return hits, nil
}

func scanChunk(s repository.Scanner) (Chunk, error) {
	var c Chunk
	err := s.Scan(
		&c.ID,
		&c.DocRef,
		&c.ChunkID,
		&c.Law,
		&c.Company,
		&c.Link,
		&c.Text,
	)
	return c, err
}

func scanHit(s repository.Scanner) (Hit, error) {
	var h Hit
	err := s.Scan(
		&h.Chunk.ID,
		&h.Chunk.DocRef,
		&h.Chunk.ChunkID,
		&h.Chunk.Law,
		&h.Chunk.Company,
		&h.Chunk.Link,
		&h.Chunk.Text,
		&h.Score,
	)
	return h, err
}
