package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/nhattran/cardfolio/internal/domain/card"
	"github.com/nhattran/cardfolio/pkg/apperror"
	"github.com/nhattran/cardfolio/pkg/logger"
)

type CardRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	cardRepo    card.Repository
	ownerID     uuid.UUID
}

func (s *CardRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.cardRepo = NewPostgresCardRepo(s.dbPool, logger.NewNopLogger())

	s.ownerID = uuid.New()
	query := `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`
	_, err = s.dbPool.Exec(ctx, query, s.ownerID, "cardowner@example.com", "hashedpassword")
	if err != nil {
		s.T().Fatalf("Failed to seed owner: %s", err)
	}
}

func (s *CardRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestCardRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(CardRepoIntegrationTestSuite))
}

func (s *CardRepoIntegrationTestSuite) seedCard(ownerID uuid.UUID, isPrimary bool) uuid.UUID {
	id := uuid.New()
	query := `
		INSERT INTO cards (id, owner_id, is_primary, name, email, field_visibility)
		VALUES ($1, $2, $3, 'Seed Owner', 'seed@example.com', '{"name": true}')
	`
	_, err := s.dbPool.Exec(context.Background(), query, id, ownerID, isPrimary)
	s.NoError(err)
	return id
}

func (s *CardRepoIntegrationTestSuite) Test_FindByID() {
	ctx := context.Background()
	id := s.seedCard(s.ownerID, false)

	found, err := s.cardRepo.FindByID(ctx, id)

	s.NoError(err)
	s.Equal(s.ownerID, found.OwnerID)
	s.Equal("Seed Owner", found.Field(card.FieldName))
	s.Equal("", found.Field(card.FieldPhone))
	s.True(found.FieldVisibility[card.FieldName])
}

func (s *CardRepoIntegrationTestSuite) Test_FindByID_Missing() {
	_, err := s.cardRepo.FindByID(context.Background(), uuid.New())
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *CardRepoIntegrationTestSuite) Test_FindPrimaryByOwner() {
	ctx := context.Background()
	ownerID := uuid.New()
	_, err := s.dbPool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		ownerID, "primary@example.com", "hashedpassword")
	s.NoError(err)

	s.seedCard(ownerID, false)
	primaryID := s.seedCard(ownerID, true)

	found, err := s.cardRepo.FindPrimaryByOwner(ctx, ownerID)

	s.NoError(err)
	s.Equal(primaryID, found.ID)
	s.True(found.IsPrimary)
}

func (s *CardRepoIntegrationTestSuite) Test_SecondPrimaryRejectedByStore() {
	ctx := context.Background()
	ownerID := uuid.New()
	_, err := s.dbPool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		ownerID, "duplicate@example.com", "hashedpassword")
	s.NoError(err)

	s.seedCard(ownerID, true)

	_, err = s.dbPool.Exec(ctx,
		`INSERT INTO cards (id, owner_id, is_primary) VALUES ($1, $2, TRUE)`,
		uuid.New(), ownerID)
	s.Error(err)
}

func (s *CardRepoIntegrationTestSuite) Test_UpdateFields_MergesOnlyNamedColumns() {
	ctx := context.Background()
	id := s.seedCard(s.ownerID, false)

	err := s.cardRepo.UpdateFields(ctx, id, map[string]string{
		card.FieldPhone: "555-1234",
	})
	s.NoError(err)

	found, err := s.cardRepo.FindByID(ctx, id)
	s.NoError(err)
	s.Equal("555-1234", found.Field(card.FieldPhone))
	s.Equal("seed@example.com", found.Field(card.FieldEmail))
	s.Equal("Seed Owner", found.Field(card.FieldName))
}

func (s *CardRepoIntegrationTestSuite) Test_UpdateFields_MissingCard() {
	err := s.cardRepo.UpdateFields(context.Background(), uuid.New(), map[string]string{
		card.FieldPhone: "555-1234",
	})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *CardRepoIntegrationTestSuite) Test_SetAvatarURL() {
	ctx := context.Background()
	id := s.seedCard(s.ownerID, false)

	err := s.cardRepo.SetAvatarURL(ctx, id, "https://cdn.example.com/a.png")
	s.NoError(err)

	found, err := s.cardRepo.FindByID(ctx, id)
	s.NoError(err)
	s.NotNil(found.AvatarURL)
	s.Equal("https://cdn.example.com/a.png", *found.AvatarURL)
}

func (s *CardRepoIntegrationTestSuite) Test_ListByOwner() {
	ctx := context.Background()
	ownerID := uuid.New()
	_, err := s.dbPool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		ownerID, "list@example.com", "hashedpassword")
	s.NoError(err)

	s.seedCard(ownerID, true)
	s.seedCard(ownerID, false)

	cards, err := s.cardRepo.ListByOwner(ctx, ownerID)

	s.NoError(err)
	s.Len(cards, 2)
	s.True(cards[0].IsPrimary)
}
