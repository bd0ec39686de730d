package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestForeignKeyRelationsMirror(t *testing.T) {
	db := contactAccountFixture().build(t, Options{})
	contact := mustTable(t, db, "public.contact")
	account := mustTable(t, db, "public.account")

	for _, m2o := range contact.M2ORelations().Items() {
		if m2o.Kind != RelationM2O || m2o.SourceTable() != contact || m2o.TargetTable() != account {
			t.Errorf("unexpected many-to-one relation %s", m2o)
		}
		var mirror *Relation
		for _, o2m := range account.O2MRelations().Items() {
			if o2m.ForeignKey() == m2o.ForeignKey() {
				mirror = o2m
			}
		}
		if mirror == nil {
			t.Fatalf("no one-to-many mirror for %s", m2o)
		}
		if mirror.SourceTable() != m2o.TargetTable() || mirror.TargetTable() != m2o.SourceTable() {
			t.Errorf("mirror %s does not swap the ends of %s", mirror, m2o)
		}
	}
	if got := contact.M2ORelations().Len(); got != 2 {
		t.Errorf("M2ORelations().Len() = %d; want 2", got)
	}
	if contact.O2MRelations().Len() != 0 || account.M2ORelations().Len() != 0 {
		t.Errorf("relations attached to the wrong side")
	}
	if contact.M2MRelations().Len() != 0 || contact.IsJoinTable() {
		t.Errorf("contact must not be a join table")
	}
}

func TestJoinTableRelations(t *testing.T) {
	db := productCategoryFixture().build(t, Options{})
	product := mustTable(t, db, "public.product")
	category := mustTable(t, db, "public.category")
	join := mustTable(t, db, "public.product_category")

	if !join.IsJoinTable() {
		t.Fatalf("product_category is not detected as a join table")
	}
	if product.M2MRelations().Len() != 1 || category.M2MRelations().Len() != 1 {
		t.Fatalf("want exactly one many-to-many relation per side, got %d and %d",
			product.M2MRelations().Len(), category.M2MRelations().Len())
	}

	forward := product.M2MRelations().At(0)
	backward := category.M2MRelations().At(0)
	if forward.TargetTable() != category || forward.JoinTable() != join {
		t.Errorf("forward relation = %s", forward)
	}
	if backward.TargetTable() != product || backward.JoinTable() != join {
		t.Errorf("backward relation = %s", backward)
	}
	if forward.ForeignKey() != backward.TargetForeignKey() || forward.TargetForeignKey() != backward.ForeignKey() {
		t.Errorf("foreign key roles are not swapped between the two ends")
	}

	// The join table keeps its ordinary relations.
	if join.M2ORelations().Len() != 2 {
		t.Errorf("join table M2ORelations().Len() = %d; want 2", join.M2ORelations().Len())
	}
	if product.O2MRelations().Len() != 1 || category.O2MRelations().Len() != 1 {
		t.Errorf("join table children missing on product or category")
	}

	if diff := cmp.Diff([]string{"product_categories", "categories"}, relationNames(product.Relations())); diff != "" {
		t.Errorf("Relations() order mismatch (-want +got):\n%s", diff)
	}
}

func TestJoinTableDetection(t *testing.T) {
	tests := []struct {
		name  string
		build func() *fixture
		want  bool
	}{
		{
			name:  "composite primary key of two foreign keys",
			build: productCategoryFixture,
			want:  true,
		},
		{
			name: "surrogate primary key",
			build: func() *fixture {
				f := newFixture()
				f.table("a", col{"id", "integer", true})
				f.pk("a", "id")
				f.table("b", col{"id", "integer", true})
				f.pk("b", "id")
				f.table("a_b", col{"id", "integer", true}, col{"a_id", "integer", true}, col{"b_id", "integer", true})
				f.pk("a_b", "id")
				f.fk("a_b", []string{"a_id"}, "a")
				f.fk("a_b", []string{"b_id"}, "b")
				return f
			},
			want: false,
		},
		{
			name: "primary key with an extra column",
			build: func() *fixture {
				f := newFixture()
				f.table("a", col{"id", "integer", true})
				f.pk("a", "id")
				f.table("b", col{"id", "integer", true})
				f.pk("b", "id")
				f.table("a_b", col{"a_id", "integer", true}, col{"b_id", "integer", true}, col{"since", "integer", true})
				f.pk("a_b", "a_id", "b_id", "since")
				f.fk("a_b", []string{"a_id"}, "a")
				f.fk("a_b", []string{"b_id"}, "b")
				return f
			},
			want: false,
		},
		{
			name: "three foreign keys inside the primary key",
			build: func() *fixture {
				f := newFixture()
				f.table("a", col{"id", "integer", true})
				f.pk("a", "id")
				f.table("b", col{"id", "integer", true})
				f.pk("b", "id")
				f.table("c", col{"id", "integer", true})
				f.pk("c", "id")
				f.table("abc", col{"a_id", "integer", true}, col{"b_id", "integer", true}, col{"c_id", "integer", true})
				f.pk("abc", "a_id", "b_id", "c_id")
				f.fk("abc", []string{"a_id"}, "a")
				f.fk("abc", []string{"b_id"}, "b")
				f.fk("abc", []string{"c_id"}, "c")
				return f
			},
			want: false,
		},
		{
			name: "extra foreign key outside the primary key",
			build: func() *fixture {
				f := productCategoryFixture()
				f.rows.Columns = append(f.rows.Columns, ColumnRow{ParentOID: f.tableOID("product_category"), Position: 3, Name: "added_by_id", TypeOID: 23, SQLType: "integer"})
				f.columns[f.tableOID("product_category")] = append(f.columns[f.tableOID("product_category")], "added_by_id")
				f.fk("product_category", []string{"added_by_id"}, "product")
				return f
			},
			want: true,
		},
		{
			name:  "self reference",
			build: friendshipFixture,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := tt.build().build(t, Options{})
			var joins []string
			for _, table := range db.Tables() {
				if table.IsJoinTable() {
					joins = append(joins, table.Name)
				}
			}
			if got := len(joins) == 1; got != tt.want {
				t.Errorf("join tables = %v; want detected %v", joins, tt.want)
			}
		})
	}
}

func TestSelfReferencingJoinTable(t *testing.T) {
	db := friendshipFixture().build(t, Options{})
	member := mustTable(t, db, "public.member")

	m2m := member.M2MRelations()
	if m2m.Len() != 2 {
		t.Fatalf("M2MRelations().Len() = %d; want 2", m2m.Len())
	}
	for _, r := range m2m.Items() {
		if r.SourceTable() != member || r.TargetTable() != member {
			t.Errorf("relation %s leaves the member table", r)
		}
		if got := r.CorrespondingForeignKeys(); len(got) != 1 {
			t.Errorf("%s has %d corresponding keys; want 1", r, len(got))
		}
	}
	if diff := cmp.Diff([]string{"friends", "members"}, relationNames(m2m)); diff != "" {
		t.Errorf("self reference names mismatch (-want +got):\n%s", diff)
	}
	if got := len(m2m.At(0).JoinTables()); got != 1 {
		t.Errorf("JoinTables() = %d; want 1", got)
	}
}
