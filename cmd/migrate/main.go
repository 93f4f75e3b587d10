package main

import (
	"log"
	"os"

	"github.com/on-par/vemorable-sub000/internal/model"
	"github.com/on-par/vemorable-sub000/pkg/database"

	"github.com/joho/godotenv"
)

// hybridSearchFunction combines cosine similarity with normalized
// ts_rank keyword relevance. The weights live in SQL so retrieval can be
// tuned without redeploying the app.
const hybridSearchFunction = `
CREATE OR REPLACE FUNCTION hybrid_search_notes(
    query_text text,
    query_embedding vector(1536),
    match_threshold double precision,
    match_count integer,
    owner_id uuid,
    vector_weight double precision DEFAULT 0.7,
    keyword_weight double precision DEFAULT 0.3
) RETURNS TABLE (
    id uuid,
    user_id uuid,
    title varchar,
    raw_text text,
    content text,
    summary text,
    tags jsonb,
    embedding vector(1536),
    file_url text,
    file_name varchar,
    file_type varchar,
    file_size bigint,
    created_at timestamptz,
    updated_at timestamptz,
    deleted_at timestamptz,
    similarity double precision
) LANGUAGE sql STABLE AS $$
    SELECT n.id, n.user_id, n.title, n.raw_text, n.content, n.summary,
           n.tags, n.embedding, n.file_url, n.file_name, n.file_type,
           n.file_size, n.created_at, n.updated_at, n.deleted_at,
           vector_weight * (1 - (n.embedding <=> query_embedding))
         + keyword_weight * LEAST(
               ts_rank(
                   to_tsvector('english', coalesce(n.title, '') || ' ' || coalesce(n.content, '') || ' ' || coalesce(n.summary, '')),
                   plainto_tsquery('english', query_text)
               ) * 4,
               1.0
           ) AS similarity
    FROM notes n
    WHERE n.user_id = owner_id
      AND n.deleted_at IS NULL
      AND n.embedding IS NOT NULL
      AND vector_weight * (1 - (n.embedding <=> query_embedding))
        + keyword_weight * LEAST(
              ts_rank(
                  to_tsvector('english', coalesce(n.title, '') || ' ' || coalesce(n.content, '') || ' ' || coalesce(n.summary, '')),
                  plainto_tsquery('english', query_text)
              ) * 4,
              1.0
          ) >= match_threshold
    ORDER BY similarity DESC
    LIMIT match_count;
$$;`

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions (things AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate Models
	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(&model.Note{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: vector index + search procedures
	log.Println("Step 3: Creating vector index and search procedures...")

	postSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_notes_embedding
		 ON notes USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_tags ON notes USING gin (tags);`,
		hybridSearchFunction,
	}
	for _, sql := range postSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v. Continuing...", err)
		}
	}

	log.Println("Migration completed.")
}
