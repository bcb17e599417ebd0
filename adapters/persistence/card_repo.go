package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nhattran/cardfolio/internal/domain/card"
	"github.com/nhattran/cardfolio/pkg/apperror"
	"github.com/nhattran/cardfolio/pkg/logger"
)

type postgresCardRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresCardRepo(db *pgxpool.Pool, logger logger.Logger) card.Repository {
	return &postgresCardRepo{db: db, logger: logger}
}

var psqlCard = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// cardColumns is the fixed scan order; field columns follow card.FieldNames.
var cardColumns = append(
	[]string{"id", "owner_id", "is_primary", "avatar_url"},
	append(append([]string{}, card.FieldNames...), "field_visibility", "updated_at")...,
)

func scanCard(row pgx.Row) (*card.Card, error) {
	c := &card.Card{Fields: make(map[string]string, len(card.FieldNames))}
	var avatarURL sql.NullString
	var visibilityBytes []byte

	fieldValues := make([]sql.NullString, len(card.FieldNames))
	dest := []any{&c.ID, &c.OwnerID, &c.IsPrimary, &avatarURL}
	for i := range fieldValues {
		dest = append(dest, &fieldValues[i])
	}
	dest = append(dest, &visibilityBytes, &c.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("card", "")
		}
		return nil, apperror.NewInternal("failed to scan card row", err)
	}

	if avatarURL.Valid {
		c.AvatarURL = &avatarURL.String
	}
	for i, name := range card.FieldNames {
		if fieldValues[i].Valid && fieldValues[i].String != "" {
			c.Fields[name] = fieldValues[i].String
		}
	}
	if len(visibilityBytes) > 0 {
		if err := json.Unmarshal(visibilityBytes, &c.FieldVisibility); err != nil {
			c.FieldVisibility = map[string]bool{}
		}
	} else {
		c.FieldVisibility = map[string]bool{}
	}
	return c, nil
}

func (r *postgresCardRepo) FindByID(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	query, args, err := psqlCard.Select(cardColumns...).
		From("cards").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build card query", err)
	}

	c, err := scanCard(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewNotFound("card", id.String())
		}
		return nil, err
	}
	return c, nil
}

// FindPrimaryByOwner must resolve exactly one row. The partial unique index
// makes duplicates impossible under normal operation; if the store returns
// two anyway that is a consistency fault and the lookup reports not found
// instead of picking one.
func (r *postgresCardRepo) FindPrimaryByOwner(ctx context.Context, ownerID uuid.UUID) (*card.Card, error) {
	query, args, err := psqlCard.Select(cardColumns...).
		From("cards").
		Where(sq.Eq{"owner_id": ownerID, "is_primary": true}).
		Limit(2).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build primary card query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query primary card", err)
	}
	defer rows.Close()

	var cards []*card.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating card rows", err)
	}

	switch len(cards) {
	case 1:
		return cards[0], nil
	case 0:
		return nil, apperror.NewNotFound("primary card", ownerID.String())
	default:
		r.logger.Warn("duplicate primary cards for owner", zap.String("owner_id", ownerID.String()))
		return nil, apperror.NewNotFound("primary card", ownerID.String())
	}
}

func (r *postgresCardRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*card.Card, error) {
	query, args, err := psqlCard.Select(cardColumns...).
		From("cards").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("is_primary DESC", "updated_at DESC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list cards query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query cards by owner", err)
	}
	defer rows.Close()

	cards := make([]*card.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating card rows", err)
	}
	return cards, nil
}

// UpdateFields writes only the named field columns in a single UPDATE.
// Unnamed fields keep their stored values, so the merge is atomic at the
// row level.
func (r *postgresCardRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]string) error {
	builder := psqlCard.Update("cards").Where(sq.Eq{"id": id})
	for _, name := range card.FieldNames {
		if value, ok := updates[name]; ok {
			builder = builder.Set(name, value)
		}
	}
	builder = builder.Set("updated_at", sq.Expr("NOW()"))

	query, args, err := builder.ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build card update query", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperror.NewInternal("failed to update card fields", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("card", id.String())
	}
	return nil
}

func (r *postgresCardRepo) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	query := `UPDATE cards SET avatar_url = $2, updated_at = NOW() WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return apperror.NewInternal("failed to set avatar url", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("card", id.String())
	}
	return nil
}
