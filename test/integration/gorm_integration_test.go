package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/on-par/vemorable-sub000/internal/apperr"
	"github.com/on-par/vemorable-sub000/internal/entity"
	"github.com/on-par/vemorable-sub000/internal/repository/specification"
	"github.com/on-par/vemorable-sub000/internal/repository/unitofwork"
	"github.com/on-par/vemorable-sub000/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())
	assert.NotNil(t, uow.NoteRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	ctx := context.Background()
	userId := uuid.New()

	t.Run("Check Note CRUD Round Trip", func(t *testing.T) {
		repo := uow.NoteRepository()

		note := &entity.Note{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     "Integration Note",
			Content:   "integration test body about kubernetes clusters",
			Tags:      []string{"integration", "infra"},
			Embedding: make([]float32, 1536),
		}
		note.Embedding[0] = 1 // unit vector along the first axis

		err := repo.Create(ctx, note)
		require.NoError(t, err)
		defer repo.HardDelete(ctx, note.Id, userId)

		found, err := repo.FindOne(ctx,
			specification.ByID{ID: note.Id},
			specification.OwnedBy{UserID: userId},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Integration Note", found.Title)
		assert.Equal(t, []string{"integration", "infra"}, found.Tags)
		assert.Len(t, found.Embedding, 1536)

		tags, err := repo.ListTags(ctx, userId)
		require.NoError(t, err)
		assert.Equal(t, []string{"infra", "integration"}, tags)

		count, err := repo.Count(ctx,
			specification.OwnedBy{UserID: userId},
			specification.KeywordQuery{Query: "kubernetes"},
		)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Check Vector Similarity Search", func(t *testing.T) {
		repo := uow.NoteRepository()

		note := &entity.Note{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     "Vector Note",
			Content:   "vector search target",
			Embedding: make([]float32, 1536),
		}
		note.Embedding[0] = 1

		err := repo.Create(ctx, note)
		require.NoError(t, err)
		defer repo.HardDelete(ctx, note.Id, userId)

		// The same unit vector has cosine similarity 1 with itself.
		query := make([]float32, 1536)
		query[0] = 1

		scored, err := repo.SearchSimilarWithScore(ctx, query, 5, userId, 0.9)
		require.NoError(t, err)
		require.NotEmpty(t, scored)
		assert.Equal(t, note.Id, scored[0].Note.Id)
		assert.InDelta(t, 1.0, scored[0].Similarity, 1e-6)

		// An orthogonal query falls below the threshold.
		orthogonal := make([]float32, 1536)
		orthogonal[1] = 1
		scored, err = repo.SearchSimilarWithScore(ctx, orthogonal, 5, userId, 0.9)
		require.NoError(t, err)
		assert.Empty(t, scored)
	})

	t.Run("Check Hybrid Search Procedure", func(t *testing.T) {
		repo := uow.NoteRepository()

		note := &entity.Note{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     "Hybrid Note",
			Content:   "postgres hybrid retrieval test",
			Embedding: make([]float32, 1536),
		}
		note.Embedding[0] = 1

		err := repo.Create(ctx, note)
		require.NoError(t, err)
		defer repo.HardDelete(ctx, note.Id, userId)

		query := make([]float32, 1536)
		query[0] = 1

		scored, err := repo.SearchHybrid(ctx, "postgres hybrid retrieval", query, 5, userId, 0.5)
		require.NoError(t, err, "hybrid_search_notes should exist after cmd/migrate")
		require.NotEmpty(t, scored)
		assert.Equal(t, note.Id, scored[0].Note.Id)
	})

	t.Run("Check Update Never Resurrects A Deleted Row", func(t *testing.T) {
		repo := uow.NoteRepository()

		note := &entity.Note{
			Id:      uuid.New(),
			UserId:  userId,
			Title:   "Doomed",
			Content: "hard deleted before the update lands",
		}

		err := repo.Create(ctx, note)
		require.NoError(t, err)

		affected, err := repo.HardDelete(ctx, note.Id, userId)
		require.NoError(t, err)
		require.Equal(t, int64(1), affected)

		note.Title = "Raced"
		err = repo.Update(ctx, note)

		var nfErr *apperr.NotFoundError
		assert.ErrorAs(t, err, &nfErr)

		// The losing update must not have re-inserted the row.
		found, err := repo.FindOne(ctx,
			specification.ByID{ID: note.Id},
			specification.WithDeleted{},
		)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Check Soft Delete Visibility", func(t *testing.T) {
		repo := uow.NoteRepository()

		note := &entity.Note{
			Id:      uuid.New(),
			UserId:  userId,
			Title:   "Ephemeral",
			Content: "to be soft deleted",
		}

		err := repo.Create(ctx, note)
		require.NoError(t, err)
		defer repo.HardDelete(ctx, note.Id, userId)

		affected, err := repo.SoftDelete(ctx, note.Id, userId)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		found, err := repo.FindOne(ctx,
			specification.ByID{ID: note.Id},
			specification.OwnedBy{UserID: userId},
		)
		require.NoError(t, err)
		assert.Nil(t, found)

		// Visible again once the soft-delete filter is lifted.
		found, err = repo.FindOne(ctx,
			specification.ByID{ID: note.Id},
			specification.WithDeleted{},
		)
		require.NoError(t, err)
		assert.NotNil(t, found)
	})

	t.Run("Check Transactional Unit Of Work", func(t *testing.T) {
		txUow := uowFactory.NewUnitOfWork(ctx)
		err := txUow.Begin(ctx)
		require.NoError(t, err)

		note := &entity.Note{
			Id:      uuid.New(),
			UserId:  userId,
			Title:   "Rolled Back",
			Content: "never committed",
		}
		err = txUow.NoteRepository().Create(ctx, note)
		require.NoError(t, err)

		err = txUow.Rollback()
		require.NoError(t, err)

		found, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: note.Id})
		require.NoError(t, err)
		assert.Nil(t, found, "rolled back note must not persist")
	})
}
