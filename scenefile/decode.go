// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Errors returned while loading fixtures. Decoding and build failures wrap
// them with the offending layer or key.
var (
	// ErrUnknownFormat is returned for file extensions and format names
	// other than TOML and YAML.
	ErrUnknownFormat = errors.New("scenefile: unknown format")

	// ErrDuplicateID is returned when two layers share a name.
	ErrDuplicateID = errors.New("scenefile: duplicate layer name")

	// ErrUnknownParent is returned when a layer refers to a name no layer
	// declares.
	ErrUnknownParent = errors.New("scenefile: unknown layer reference")

	// ErrNoRoot is returned when no layer, or more than one, is left
	// without a parent.
	ErrNoRoot = errors.New("scenefile: fixture needs exactly one root layer")

	// ErrInvalidValue is returned for malformed values and unknown keys.
	ErrInvalidValue = errors.New("scenefile: invalid value")
)

// Format is a fixture encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name or a file extension, with or without
// the leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Load reads and builds the fixture at path. The format follows the file
// extension.
func Load(path string) (*Scene, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Decode reads a fixture in the given format and builds its layer tree.
func Decode(r io.Reader, format Format) (*Scene, error) {
	file, err := DecodeFile(r, format)
	if err != nil {
		return nil, err
	}
	return Build(file)
}

// DecodeFile reads a fixture without building it. Unknown keys are
// rejected.
func DecodeFile(r io.Reader, format Format) (*File, error) {
	var file File
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&file)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidValue, undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err := dec.Decode(&file)
		var typeErr *yaml.TypeError
		switch {
		case err == nil, errors.Is(err, io.EOF):
		case errors.As(err, &typeErr):
			return nil, fmt.Errorf("%w: %s", ErrInvalidValue, strings.Join(typeErr.Errors, "; "))
		default:
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
	return &file, nil
}
