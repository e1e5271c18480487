package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roach88/mdxbridge/internal/schema"
)

// Save validates spec and stores it, replacing any schema with the same
// name. The write is a single transaction.
func (c *Catalog) Save(ctx context.Context, spec *schema.Spec) error {
	if err := schema.Validate(spec); err != nil {
		return fmt.Errorf("save schema: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save schema: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Cascades to every cube, dimension, hierarchy, level and member.
	if _, err := tx.ExecContext(ctx, `DELETE FROM schemas WHERE name = ?`, spec.Name); err != nil {
		return fmt.Errorf("save schema %s: replace: %w", spec.Name, err)
	}

	count := 0
	for _, cs := range spec.Cubes {
		for _, ds := range cs.Dimensions {
			for _, hs := range ds.Hierarchies {
				count += schema.CountMembers(hs.Members)
			}
		}
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO schemas (name, member_count) VALUES (?, ?)`, spec.Name, count)
	if err != nil {
		return fmt.Errorf("save schema %s: %w", spec.Name, err)
	}
	schemaID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("save schema %s: %w", spec.Name, err)
	}

	w := &writer{ctx: ctx, tx: tx}
	for i, cs := range spec.Cubes {
		if err := w.cube(schemaID, i, cs); err != nil {
			return fmt.Errorf("save schema %s: %w", spec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save schema %s: commit: %w", spec.Name, err)
	}
	slog.Debug("schema saved", "schema", spec.Name, "cubes", len(spec.Cubes), "members", count)
	return nil
}

type writer struct {
	ctx context.Context
	tx  *sql.Tx
}

func (w *writer) insert(query string, args ...any) (int64, error) {
	res, err := w.tx.ExecContext(w.ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (w *writer) cube(schemaID int64, ordinal int, cs schema.CubeSpec) error {
	cubeID, err := w.insert(`INSERT INTO cubes (schema_id, name, ordinal) VALUES (?, ?, ?)`,
		schemaID, cs.Name, ordinal)
	if err != nil {
		return fmt.Errorf("cube %s: %w", cs.Name, err)
	}

	for i, ds := range cs.Dimensions {
		dimID, err := w.insert(`INSERT INTO dimensions (cube_id, name, ordinal) VALUES (?, ?, ?)`,
			cubeID, ds.Name, i)
		if err != nil {
			return fmt.Errorf("dimension %s: %w", ds.Name, err)
		}
		for j, hs := range ds.Hierarchies {
			if err := w.hierarchy(dimID, j, hs); err != nil {
				return fmt.Errorf("dimension %s: %w", ds.Name, err)
			}
		}
	}
	return nil
}

func (w *writer) hierarchy(dimID int64, ordinal int, hs schema.HierarchySpec) error {
	path := hs.Default
	if path == nil {
		path = []string{}
	}
	defaultJSON, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("hierarchy %s: marshal default: %w", hs.Name, err)
	}

	hierID, err := w.insert(`INSERT INTO hierarchies (dimension_id, name, ordinal, default_path) VALUES (?, ?, ?, ?)`,
		dimID, hs.Name, ordinal, string(defaultJSON))
	if err != nil {
		return fmt.Errorf("hierarchy %s: %w", hs.Name, err)
	}

	for depth, name := range hs.Levels {
		if _, err := w.tx.ExecContext(w.ctx, `INSERT INTO levels (hierarchy_id, depth, name) VALUES (?, ?, ?)`,
			hierID, depth, name); err != nil {
			return fmt.Errorf("hierarchy %s: level %s: %w", hs.Name, name, err)
		}
	}

	if err := w.members(hierID, nil, hs.Members); err != nil {
		return fmt.Errorf("hierarchy %s: %w", hs.Name, err)
	}
	return nil
}

func (w *writer) members(hierID int64, parentID *int64, members []schema.MemberSpec) error {
	for i, ms := range members {
		id, err := w.insert(`INSERT INTO members (hierarchy_id, parent_id, name, ordinal) VALUES (?, ?, ?, ?)`,
			hierID, parentID, ms.Name, i)
		if err != nil {
			return fmt.Errorf("member %s: %w", ms.Name, err)
		}
		if err := w.members(hierID, &id, ms.Children); err != nil {
			return err
		}
	}
	return nil
}
