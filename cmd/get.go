package cmd

import (
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/pgstructure/pgstructure/ir"
)

var (
	getFlags  graphFlags
	getFormat string
)

var GetCmd = &cobra.Command{
	Use:   "get <schema[.object[.member]]>",
	Short: "Print one object of a database",
	Long: `Resolve a dotted path such as shop.product, shop.product.price or
shop.product.categories and print the object it names. Quote parts that
contain dots or capitals: 'public."My Table".id'.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getFlags.register(GetCmd)
	GetCmd.Flags().StringVar(&getFormat, "format", "text", "Output format: text or json")
}

func runGet(cmd *cobra.Command, args []string) error {
	if getFormat != "text" && getFormat != "json" {
		return fmt.Errorf("unsupported format %q (want text or json)", getFormat)
	}

	db, err := getFlags.build(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	obj := db.Get(args[0])
	if obj == nil {
		return notFound(db, args[0])
	}

	view := describeObject(obj)
	if getFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), view)
	}
	w := &textWriter{w: cmd.OutOrStdout(), c: outputColor(cmd)}
	switch v := view.(type) {
	case schemaView:
		w.schema(v)
	case entityView:
		w.entity(v)
	case columnView:
		w.column(v)
	case constraintView:
		w.constraint(v)
	case indexView:
		w.index(v)
	case relationView:
		w.relation(v)
	case typeView:
		w.typ(v)
	case functionView:
		w.function(v)
	}
	return nil
}

func describeObject(obj ir.Object) any {
	switch o := obj.(type) {
	case *ir.Schema:
		return describeSchema(o)
	case *ir.Entity:
		return describeEntity(o)
	case *ir.Column:
		return describeColumn(o)
	case *ir.Constraint:
		return describeConstraint(o)
	case *ir.Index:
		return describeIndex(o)
	case *ir.Relation:
		return describeRelation(o)
	case *ir.Type:
		return describeType(o)
	case *ir.Function:
		return describeFunction(o)
	}
	return obj.FullName()
}

// notFound reports a missing path with the closest known paths.
func notFound(db *ir.DB, path string) error {
	matches := fuzzy.Find(path, objectPaths(db))
	var suggestions []string
	for _, m := range matches {
		suggestions = append(suggestions, m.Str)
		if len(suggestions) == 3 {
			break
		}
	}
	return &ir.NotFoundError{Key: path, Suggestions: suggestions}
}

// objectPaths lists the path of every object reachable through DB.Get.
func objectPaths(db *ir.DB) []string {
	var paths []string
	schemas := append(db.Schemas().Items(), db.SystemSchemas().Items()...)
	for _, s := range schemas {
		paths = append(paths, s.Name)
		for _, e := range s.Entities().Items() {
			prefix := s.Name + "." + e.Name
			paths = append(paths, prefix)
			for _, keys := range [][]string{e.Columns().Keys(), e.Constraints().Keys(), e.Indexes().Keys(), e.Relations().Keys()} {
				for _, k := range keys {
					paths = append(paths, prefix+"."+k)
				}
			}
		}
		for _, t := range s.Types().Items() {
			paths = append(paths, s.Name+"."+t.Name)
		}
		for _, f := range s.Functions().Items() {
			paths = append(paths, s.Name+"."+f.Name)
		}
	}
	return paths
}
