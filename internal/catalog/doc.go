// Package catalog stores schema specs in SQLite so the CLI can serve
// schemas without re-reading their source files.
//
// A saved spec is flattened into one table per schema object kind. Member
// trees keep their shape through parent_id and their sibling order through
// ordinal. Saving a spec under an existing name replaces it.
//
// # Database Configuration
//
// Open applies DefaultConfig: WAL journaling, synchronous=NORMAL and a
// five second busy timeout. Foreign keys are always enabled since a
// replacing Save depends on cascading deletes.
package catalog
