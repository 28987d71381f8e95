// prune-stale-sessions removes anonymous session rows that have been
// inactive for longer than the retention window. Sessions linked to an
// account are kept, as are all analysis and report records; those key on
// the raw session id and survive the row.
//
// Usage: go run ./scripts/prune-stale-sessions [-days=90] [-dry-run=false]
//
// Database connection: uses standard PG* environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
)

func main() {
	days := flag.Int("days", 90, "Retention window in days")
	dryRun := flag.Bool("dry-run", true, "Show what would be deleted without actually deleting")
	flag.Parse()

	if *days < 1 {
		fmt.Fprintf(os.Stderr, "Retention window must be at least 1 day\n")
		os.Exit(1)
	}

	ctx := context.Background()

	conn, err := pgx.Connect(ctx, buildConnString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	if *dryRun {
		fmt.Println("DRY RUN - no changes will be made")
		fmt.Println("Run with -dry-run=false to actually delete sessions")
		fmt.Println()

		rows, err := conn.Query(ctx, `
			SELECT session_id, email, last_active_at
			FROM sessions
			WHERE account_id IS NULL
			  AND last_active_at < now() - make_interval(days => $1)
			ORDER BY last_active_at
		`, *days)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var sessionID, email string
			var lastActive any
			if err := rows.Scan(&sessionID, &email, &lastActive); err != nil {
				fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
				os.Exit(1)
			}
			count++
			fmt.Printf("  %s email=%q last_active=%v\n", sessionID, email, lastActive)
		}
		if err := rows.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Rows iteration failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\nSessions that would be deleted: %d\n", count)
		return
	}

	result, err := conn.Exec(ctx, `
		DELETE FROM sessions
		WHERE account_id IS NULL
		  AND last_active_at < now() - make_interval(days => $1)
	`, *days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted %d stale sessions older than %d days\n", result.RowsAffected(), *days)
}

func buildConnString() string {
	host := getEnvOrDefault("PGHOST", "localhost")
	port := getEnvOrDefault("PGPORT", "5432")
	user := getEnvOrDefault("PGUSER", "postgres")
	password := os.Getenv("PGPASSWORD")
	dbname := getEnvOrDefault("PGDATABASE", "brandlens")

	connStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
		host, port, user, dbname)
	if password != "" {
		connStr += fmt.Sprintf(" password=%s", password)
	}
	return connStr
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
