package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/mdxbridge/internal/catalog"
	"github.com/roach88/mdxbridge/internal/fault"
	"github.com/roach88/mdxbridge/internal/memengine"
	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/schema"
)

// LoadError represents an error that occurred while loading a schema or
// query, with a CLI error code.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// SchemaSource names where a command reads its schema from: a spec file
// (.yaml, .yml, .cue) or a catalog database (.db) plus a schema name.
type SchemaSource struct {
	Path string
	Name string
}

func (s *SchemaSource) isCatalog() bool {
	return strings.EqualFold(filepath.Ext(s.Path), ".db")
}

// LoadSpec reads the schema spec the source points at.
func (s *SchemaSource) LoadSpec(ctx context.Context) (*schema.Spec, error) {
	if s.Path == "" {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "no schema given (use --schema)"}
	}
	if _, err := os.Stat(s.Path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema not found: %s", s.Path)}
	}

	if !s.isCatalog() {
		spec, err := schema.LoadFile(s.Path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidSchema, Message: err.Error()}
		}
		return spec, nil
	}

	cat, err := catalog.Open(s.Path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	defer cat.Close()

	name := s.Name
	if name == "" {
		entries, err := cat.List(ctx)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		}
		if len(entries) != 1 {
			return nil, &LoadError{
				Code:    ErrCodeInvalidArgs,
				Message: fmt.Sprintf("catalog %s holds %d schemas; pick one with --name", s.Path, len(entries)),
			}
		}
		name = entries[0].Name
	}

	spec, err := cat.Load(ctx, name)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	return spec, nil
}

// LoadEngine builds the reference engine for the source.
func (s *SchemaSource) LoadEngine(ctx context.Context) (*memengine.Engine, error) {
	spec, err := s.LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	e, err := memengine.New(spec)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidSchema, Message: err.Error()}
	}
	return e, nil
}

// loadQuery decodes a query fixture against e.
func loadQuery(e *memengine.Engine, path string) (*memengine.Fixture, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query not found: %s", path)}
	}
	fx, err := e.LoadQuery(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidQuery, Message: err.Error()}
	}
	return fx, nil
}

// pickCube returns the named cube, or the only cube when name is empty.
func pickCube(e *memengine.Engine, name string) (*native.Cube, error) {
	if name == "" {
		if cubes := e.Cubes(); len(cubes) == 1 {
			return cubes[0], nil
		}
		return nil, &LoadError{
			Code:    ErrCodeInvalidArgs,
			Message: fmt.Sprintf("schema %s has %d cubes; pick one with --cube", e.Name(), len(e.Cubes())),
		}
	}
	c, ok := e.Cube(name)
	if !ok {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("cube not found: %s", name)}
	}
	return c, nil
}

// outputError reports err through formatter and turns it into an ExitError.
// Load errors are command errors; anything else is a failure of the
// operation itself.
func outputError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
	}
	code := ErrCodeGeneric
	var details interface{}
	if fc := fault.CodeOf(err); fc != "" {
		code = ErrCodeMaterialize
		if fault.IsDefect(err) {
			code = ErrCodeDefect
		}
		details = map[string]string{"fault": string(fc)}
	}
	_ = formatter.Error(code, err.Error(), details)
	return WrapExitError(ExitFailure, code, err)
}
