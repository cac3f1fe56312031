package db

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestMigrationNamesSorted(t *testing.T) {
	source := fstest.MapFS{
		"migrations/0002_b.sql":   {Data: []byte("SELECT 2;")},
		"migrations/0001_a.sql":   {Data: []byte("SELECT 1;")},
		"migrations/README.md":    {Data: []byte("notes")},
		"migrations/nested/x.sql": {Data: []byte("SELECT 3;")},
	}

	names, err := migrationNames(source)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 migrations, got %v", names)
	}
	if names[0] != "0001_a.sql" || names[1] != "0002_b.sql" {
		t.Fatalf("expected sorted names, got %v", names)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	names, err := migrationNames(migrationFiles)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("expected embedded migrations")
	}

	var all strings.Builder
	for _, name := range names {
		data, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		all.Write(data)
	}

	for _, want := range []string{
		"ux_club_books_club_book_active",
		"ux_club_books_one_next",
		"ux_votes_round_user",
		"ux_rsvps_meeting_user",
		"ux_voting_rounds_one_open",
	} {
		if !strings.Contains(all.String(), want) {
			t.Fatalf("expected migrations to define %s", want)
		}
	}
}
