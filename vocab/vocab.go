//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The SolrFeed Authors
//
// This file is part of SolrFeed.
//
// SolrFeed is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SolrFeed is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SolrFeed. If not, see https://www.gnu.org/licenses/.

package vocab

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package vocab loads controlled-vocabulary tables from a directory of YAML
// files. Each file describes one metadata field; the file name (without
// extension) is the field's base name, i.e. the output field name stripped of
// its trailing type suffix. A vocabulary file looks like:
//
//	terms:
//	  - id: "1"
//	    term: Photograph
//	  - id: "2"
//	    term: Manuscript

// Config maps a field base name to its vocabulary: term id to display term.
type Config map[string]map[string]string

// Terms returns the vocabulary for a field base name, or nil when the field
// is uncontrolled.
func (c Config) Terms(base string) map[string]string {
	if c == nil {
		return nil
	}
	return c[base]
}

// file is the on-disk shape of one vocabulary.
type file struct {
	Terms []struct {
		ID   string `yaml:"id"`
		Term string `yaml:"term"`
	} `yaml:"terms"`
}

// LoadDir walks dir and loads every .yml/.yaml file found into a Config.
// Subdirectories are walked too, so vocabularies may be grouped freely.
func LoadDir(dir string) (Config, error) {
	config := make(Config)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading vocabulary %s: %w", path, err)
		}

		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("parsing vocabulary %s: %w", path, err)
		}

		base := strings.TrimSuffix(filepath.Base(path), ext)
		terms := make(map[string]string, len(f.Terms))
		for _, t := range f.Terms {
			terms[t.ID] = t.Term
		}
		config[base] = terms
		return nil
	})
	if err != nil {
		return nil, err
	}

	return config, nil
}
