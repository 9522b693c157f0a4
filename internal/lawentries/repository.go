package lawentries

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/gavelhq/gavel/pkg/embedding"
	"github.com/gavelhq/gavel/pkg/repository"
	"github.com/gavelhq/gavel/pkg/retrieval"
)

const entryColumns = "ent_id, belongs_to, art_num, type, contents, word"

type repo struct {
	db       *sql.DB
	embedder embedding.Embedder
	logger   *slog.Logger
}

// New creates a law corpus repository implementing the System interface.
func New(db *sql.DB, embedder embedding.Embedder, logger *slog.Logger) System {
	return &repo{
		db:       db,
		embedder: embedder,
		logger:   logger.With("system", "lawentries"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, entID int64) (*Entry, error) {
	q := fmt.Sprintf("SELECT %s FROM law_entries WHERE ent_id = $1", entryColumns)

	e, err := repository.QueryOne(ctx, r.db, q, []any{entID}, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

// Create validates the command, embeds the contents once, and inserts the
// entry with its fixed-width vector.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Entry, error) {
	if err := validateCreate(cmd); err != nil {
		return nil, err
	}

	vecs, err := r.embedder.Embed(ctx, []string{cmd.Contents})
	if err != nil {
		return nil, fmt.Errorf("embed law entry: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO law_entries(belongs_to, art_num, type, contents, word, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, entryColumns)

	args := []any{
		cmd.BelongsTo,
		cmd.ArtNum,
		cmd.Type,
		cmd.Contents,
		cmd.Word,
		pgvector.NewHalfVector(vecs[0]),
	}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Entry, error) {
		return repository.QueryOne(ctx, tx, q, args, scanEntry)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("law entry created", "ent_id", e.EntID, "law", e.BelongsTo, "article", e.ArtNum)
	return &e, nil
}

func (r *repo) DenseSearch(ctx context.Context, vec []float32, k int, filters SearchFilters) ([]Hit, error) {
	where, args := filterClauses(filters, 2)

	q := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $1) AS score
		FROM law_entries%s
		ORDER BY embedding <=> $1
		LIMIT %d`, entryColumns, where, k)

	args = append([]any{pgvector.NewHalfVector(vec)}, args...)

	hits, err := repository.QueryMany(ctx, r.db, q, args, scanHit)
	if err != nil {
		return nil, fmt.Errorf("dense search: %w", err)
	}
	return hits, nil
}

func (r *repo) LexicalSearch(ctx context.Context, query string, k int, filters SearchFilters) ([]Hit, error) {
	where, args := filterClauses(filters, 2)
	if where == "" {
		where = " WHERE search @@ q"
	} else {
		where += " AND search @@ q"
	}

	q := fmt.Sprintf(`
		SELECT %s, ts_rank(search, q) AS score
		FROM law_entries, websearch_to_tsquery('english', $1) q%s
		ORDER BY score DESC
		LIMIT %d`, entryColumns, where, k)

	args = append([]any{query}, args...)

	hits, err := repository.QueryMany(ctx, r.db, q, args, scanHit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	return hits, nil
}

// Search runs the hybrid query: the embedded query drives dense search, the
// raw text drives lexical search, and reciprocal rank fusion combines both.
func (r *repo) Search(ctx context.Context, query string, k int, filters SearchFilters) ([]Hit, error) {
	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	dense, err := r.DenseSearch(ctx, vecs[0], k, filters)
	if err != nil {
		return nil, err
	}

	lexical, err := r.LexicalSearch(ctx, query, k, filters)
	if err != nil {
		return nil, err
	}

	fused := retrieval.FuseRRF(
		[][]retrieval.Candidate{candidates(dense), candidates(lexical)},
		retrieval.DefaultKRRF,
		k,
	)

	hits := make([]Hit, len(fused))
	for i, c := range fused {
		hits[i] = Hit{Entry: c.Payload.(Entry), Score: c.Score}
	}
	return hits, nil
}

func (r *repo) Sample(ctx context.Context, n int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT ent_id FROM law_entries ORDER BY ent_id LIMIT $1", n)
	if err != nil {
		return nil, fmt.Errorf("sample entries: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, n)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repo) Fetch(ctx context.Context, entIDs []int64) ([]Entry, error) {
	if len(entIDs) == 0 {
		return nil, nil
	}

	unique := dedupe(entIDs)
	q := fmt.Sprintf("SELECT %s FROM law_entries WHERE ent_id = ANY($1) ORDER BY ent_id", entryColumns)

	entries, err := repository.QueryMany(ctx, r.db, q, []any{unique}, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}

	if len(entries) != len(unique) {
		return nil, fmt.Errorf("%w: requested %d, found %d", ErrMissingEntries, len(unique), len(entries))
	}
	return entries, nil
}

func (r *repo) Context(ctx context.Context, entIDs []int64) (string, error) {
	entries, err := r.Fetch(ctx, entIDs)
	if err != nil {
		return "", err
	}

	bullets := make([]string, len(entries))
	for i, e := range entries {
		bullets[i] = e.Bullet()
	}
	return strings.Join(bullets, "\n"), nil
}

func candidates(hits []Hit) []retrieval.Candidate {
	out := make([]retrieval.Candidate, len(hits))
	for i, h := range hits {
		out[i] = retrieval.Candidate{
			Key:     fmt.Sprintf("%d", h.Entry.EntID),
			Score:   h.Score,
			Payload: h.Entry,
		}
	}
	return out
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func filterClauses(filters SearchFilters, startParam int) (string, []any) {
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 2)
	param := startParam

	if filters.BelongsTo != "" && filters.BelongsTo != "All" {
		clauses = append(clauses, fmt.Sprintf("belongs_to = $%d", param))
		args = append(args, filters.BelongsTo)
		param++
	}
	if filters.Type != "" {
		clauses = append(clauses, fmt.Sprintf("type = $%d", param))
		args = append(args, filters.Type)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func validateCreate(cmd CreateCommand) error {
	if cmd.BelongsTo == "" {
		return fmt.Errorf("%w: belongs_to required", ErrInvalid)
	}
	if cmd.ArtNum == "" {
		return fmt.Errorf("%w: art_num required", ErrInvalid)
	}
	if cmd.Type != TypeLaw && cmd.Type != TypeDefinition {
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, cmd.Type)
	}
	if cmd.Contents == "" {
		return fmt.Errorf("%w: contents required", ErrInvalid)
	}
	if cmd.Type == TypeDefinition && (cmd.Word == nil || *cmd.Word == "") {
		return fmt.Errorf("%w: word required for definitions", ErrInvalid)
	}
	if cmd.Type == TypeLaw && cmd.Word != nil {
		return fmt.Errorf("%w: word only valid for definitions", ErrInvalid)
	}
	return nil
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	err := s.Scan(
		&e.EntID,
		&e.BelongsTo,
		&e.ArtNum,
		&e.Type,
		&e.Contents,
		&e.Word,
	)
	return e, err
}

func scanHit(s repository.Scanner) (Hit, error) {
	var h Hit
	err := s.Scan(
		&h.Entry.EntID,
		&h.Entry.BelongsTo,
		&h.Entry.ArtNum,
		&h.Entry.Type,
		&h.Entry.Contents,
		&h.Entry.Word,
		&h.Score,
	)
	return h, err
}
