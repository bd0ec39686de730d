// Package config loads build options from a .pgstructure.toml or YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/pgstructure/pgstructure/ir"
)

const (
	// FileName is the default name of the config file
	FileName = ".pgstructure.toml"
)

// File is the on-disk shape of the config file. TOML and YAML share the keys.
type File struct {
	// RelationNames is "short", "descriptive" or "optimal".
	RelationNames              string   `toml:"relation_names" yaml:"relation_names"`
	ForeignKeyAliasTargetFirst bool     `toml:"foreign_key_alias_target_first" yaml:"foreign_key_alias_target_first"`
	IncludeSchemas             []string `toml:"include_schemas" yaml:"include_schemas"`
	ExcludeSchemas             []string `toml:"exclude_schemas" yaml:"exclude_schemas"`
	CommentDataToken           string   `toml:"comment_data_token" yaml:"comment_data_token"`
}

// Load reads FileName from the current directory.
// Returns nil if the file doesn't exist (the config file is optional)
func Load() (*File, error) {
	return LoadFromPath(FileName)
}

// LoadFromPath reads a config file; the extension picks the format
// (.yaml/.yml for YAML, anything else TOML).
// Returns nil if the file doesn't exist.
func LoadFromPath(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse %s: unknown key %q", path, undecoded[0].String())
		}
	}
	return &f, nil
}

// Options converts the file into build options. A nil file yields the
// defaults.
func (f *File) Options() (ir.Options, error) {
	if f == nil {
		return ir.Options{}, nil
	}
	names, err := ir.RelationNameFunctionsByName(f.RelationNames)
	if err != nil {
		return ir.Options{}, err
	}
	return ir.Options{
		RelationNameFunctions:      names,
		ForeignKeyAliasTargetFirst: f.ForeignKeyAliasTargetFirst,
		IncludeSchemas:             f.IncludeSchemas,
		ExcludeSchemas:             f.ExcludeSchemas,
		CommentDataToken:           f.CommentDataToken,
	}, nil
}
