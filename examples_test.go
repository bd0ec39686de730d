package pgstructure_test

import (
	"context"
	"fmt"
	"log"

	"github.com/pgstructure/pgstructure"
)

// ExampleInspectDatabase prints every relation of every table.
func ExampleInspectDatabase() {
	ctx := context.Background()

	dbConfig := pgstructure.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "myapp",
		User:     "postgres",
		Password: "password",
	}

	db, err := pgstructure.InspectDatabase(ctx, dbConfig, pgstructure.Options{})
	if err != nil {
		log.Fatal(err)
	}

	for _, table := range db.Tables() {
		for _, r := range table.Relations().Items() {
			fmt.Printf("%s.%s: %s %s\n", table.FullName(), r.Name, r.Kind, r.TargetTable().FullName())
		}
	}
}

// ExampleOptionsWithStrategy builds a graph with descriptive relation names.
func ExampleOptionsWithStrategy() {
	ctx := context.Background()

	opts, err := pgstructure.OptionsWithStrategy("descriptive")
	if err != nil {
		log.Fatal(err)
	}
	opts.IncludeSchemas = []string{"app_*"}

	db, err := pgstructure.InspectDatabase(ctx, pgstructure.DatabaseConfig{DSN: "postgres://postgres@localhost/myapp"}, opts)
	if err != nil {
		log.Fatal(err)
	}

	if col, ok := db.Get("app_core.account.email").(*pgstructure.Column); ok {
		fmt.Println(col.SQLType, col.NotNull)
	}
}

// ExampleInspectWithConfigFile reads options from .pgstructure.toml.
func ExampleInspectWithConfigFile() {
	ctx := context.Background()

	db, err := pgstructure.InspectWithConfigFile(ctx, pgstructure.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "myapp",
		User:     "postgres",
	}, ".pgstructure.toml")
	if err != nil {
		log.Fatal(err)
	}

	for _, c := range db.NameCollisions() {
		fmt.Println("rename needed:", c)
	}
}
