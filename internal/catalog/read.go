package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/mdxbridge/internal/schema"
)

// Entry summarizes one stored schema.
type Entry struct {
	Name    string `json:"name"`
	Cubes   int    `json:"cubes"`
	Members int    `json:"members"`
}

// List returns every stored schema ordered by name.
//
// Returns an empty slice (not nil) when the catalog is empty.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT s.name, COUNT(c.id), s.member_count
		FROM schemas s LEFT JOIN cubes c ON c.schema_id = s.id
		GROUP BY s.id
		ORDER BY s.name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Cubes, &e.Members); err != nil {
			return nil, fmt.Errorf("scan schema: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemas: %w", err)
	}
	return entries, nil
}

// Load rebuilds the named spec. Returns an error wrapping ErrNotFound when
// no schema has that name.
func (c *Catalog) Load(ctx context.Context, name string) (*schema.Spec, error) {
	var schemaID int64
	err := c.db.QueryRowContext(ctx, `SELECT id FROM schemas WHERE name = ?`, name).Scan(&schemaID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load schema %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load schema %q: %w", name, err)
	}

	spec := &schema.Spec{Name: name}
	cubes, err := c.namedRows(ctx, `SELECT id, name FROM cubes WHERE schema_id = ? ORDER BY ordinal, id`, schemaID)
	if err != nil {
		return nil, fmt.Errorf("load schema %q: cubes: %w", name, err)
	}
	for _, cr := range cubes {
		cs := schema.CubeSpec{Name: cr.name}
		dims, err := c.namedRows(ctx, `SELECT id, name FROM dimensions WHERE cube_id = ? ORDER BY ordinal, id`, cr.id)
		if err != nil {
			return nil, fmt.Errorf("load schema %q: dimensions: %w", name, err)
		}
		for _, dr := range dims {
			ds := schema.DimensionSpec{Name: dr.name}
			if ds.Hierarchies, err = c.loadHierarchies(ctx, dr.id); err != nil {
				return nil, fmt.Errorf("load schema %q: dimension %s: %w", name, dr.name, err)
			}
			cs.Dimensions = append(cs.Dimensions, ds)
		}
		spec.Cubes = append(spec.Cubes, cs)
	}
	return spec, nil
}

type namedRow struct {
	id   int64
	name string
}

func (c *Catalog) namedRows(ctx context.Context, query string, parentID int64) ([]namedRow, error) {
	rows, err := c.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []namedRow
	for rows.Next() {
		var r namedRow
		if err := rows.Scan(&r.id, &r.name); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (c *Catalog) loadHierarchies(ctx context.Context, dimID int64) ([]schema.HierarchySpec, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, default_path FROM hierarchies
		WHERE dimension_id = ?
		ORDER BY ordinal, id
	`, dimID)
	if err != nil {
		return nil, err
	}

	type hierRow struct {
		namedRow
		defaultPath string
	}
	var hrs []hierRow
	for rows.Next() {
		var r hierRow
		if err := rows.Scan(&r.id, &r.name, &r.defaultPath); err != nil {
			rows.Close()
			return nil, err
		}
		hrs = append(hrs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]schema.HierarchySpec, 0, len(hrs))
	for _, hr := range hrs {
		hs := schema.HierarchySpec{Name: hr.name}
		if err := json.Unmarshal([]byte(hr.defaultPath), &hs.Default); err != nil {
			return nil, fmt.Errorf("hierarchy %s: default path: %w", hr.name, err)
		}
		if len(hs.Default) == 0 {
			hs.Default = nil
		}
		if hs.Levels, err = c.loadLevels(ctx, hr.id); err != nil {
			return nil, fmt.Errorf("hierarchy %s: levels: %w", hr.name, err)
		}
		if hs.Members, err = c.loadMembers(ctx, hr.id); err != nil {
			return nil, fmt.Errorf("hierarchy %s: members: %w", hr.name, err)
		}
		out = append(out, hs)
	}
	return out, nil
}

func (c *Catalog) loadLevels(ctx context.Context, hierID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM levels WHERE hierarchy_id = ? ORDER BY depth`, hierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		levels = append(levels, name)
	}
	return levels, rows.Err()
}

// loadMembers reads a hierarchy's whole member table in one query and
// reassembles the tree from parent_id.
func (c *Catalog) loadMembers(ctx context.Context, hierID int64) ([]schema.MemberSpec, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, parent_id, name FROM members
		WHERE hierarchy_id = ?
		ORDER BY ordinal, id
	`, hierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Keyed by parent id; 0 holds the roots since SQLite ids start at 1.
	children := make(map[int64][]namedRow)
	for rows.Next() {
		var (
			r      namedRow
			parent sql.NullInt64
		)
		if err := rows.Scan(&r.id, &parent, &r.name); err != nil {
			return nil, err
		}
		children[parent.Int64] = append(children[parent.Int64], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buildMembers(children, 0), nil
}

func buildMembers(children map[int64][]namedRow, parent int64) []schema.MemberSpec {
	rows := children[parent]
	if len(rows) == 0 {
		return nil
	}
	out := make([]schema.MemberSpec, len(rows))
	for i, r := range rows {
		out[i] = schema.MemberSpec{Name: r.name, Children: buildMembers(children, r.id)}
	}
	return out
}
