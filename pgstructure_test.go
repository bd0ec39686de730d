package pgstructure_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pgstructure/pgstructure"
	"github.com/pgstructure/pgstructure/ir"
	"github.com/pgstructure/pgstructure/testutil"
)

func TestInspectDatabase(t *testing.T) {
	ctx := context.Background()
	container := testutil.SetupPostgresContainer(ctx, t)
	defer container.Terminate(ctx, t)

	container.Exec(ctx, t, `
CREATE TABLE member (id int PRIMARY KEY, name text NOT NULL);
CREATE TABLE friendship (
    member_id int NOT NULL REFERENCES member (id),
    friend_id int NOT NULL REFERENCES member (id),
    PRIMARY KEY (member_id, friend_id)
);
CREATE SCHEMA archive;
CREATE TABLE archive.member (id int PRIMARY KEY);
`)

	dbConfig := pgstructure.DatabaseConfig{DSN: container.DSN}
	db, err := pgstructure.InspectSchemas(ctx, dbConfig, "public")
	if err != nil {
		t.Fatalf("InspectSchemas() error: %v", err)
	}
	if db.Schema("archive") != nil {
		t.Error("archive schema passed the include filter")
	}

	member := db.Get("public.member").(*ir.Entity)
	var names []string
	for _, r := range member.M2MRelations().Items() {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"friends", "members"}, names, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("self-referencing many-to-many names mismatch (-want +got):\n%s", diff)
	}

	rows, err := pgstructure.LoadRows(ctx, container.Conn)
	if err != nil {
		t.Fatalf("LoadRows() error: %v", err)
	}
	opts, err := pgstructure.OptionsWithStrategy("descriptive")
	if err != nil {
		t.Fatalf("OptionsWithStrategy() error: %v", err)
	}
	descriptive, err := pgstructure.Build(rows, opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := len(descriptive.Schemas().Items()); got != 2 {
		t.Errorf("unfiltered build has %d schemas; want 2", got)
	}
}

func TestOptionsWithStrategy(t *testing.T) {
	if _, err := pgstructure.OptionsWithStrategy("optimal"); err != nil {
		t.Errorf("OptionsWithStrategy(optimal) error: %v", err)
	}
	if _, err := pgstructure.OptionsWithStrategy("nicknames"); !errors.Is(err, ir.ErrUnknownStrategy) {
		t.Errorf("OptionsWithStrategy(nicknames) error = %v; want ErrUnknownStrategy", err)
	}
}
