// Command migrate applies the SQL files under migrations/ in name order.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var (
		dsn = flag.String("dsn", envDefault("DATABASE_URL", os.Getenv("PG_DSN")), "postgres dsn")
		dir = flag.String("dir", "migrations", "directory with .sql files")
	)
	flag.Parse()
	if *dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	files, err := filepath.Glob(filepath.Join(*dir, "*.sql"))
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no .sql files in %s", *dir)
	}
	sort.Strings(files)

	for _, file := range files {
		body, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("read %s: %v", file, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			log.Fatalf("apply %s: %v", file, err)
		}
		log.Printf("applied %s", filepath.Base(file))
	}
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
