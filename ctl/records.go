// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Record is one decoded input document.
type Record = map[string]interface{}

// LoadRecords reads the records in path. Files ending in .json or .ndjson
// hold one JSON object per line; files ending in .yaml or .yml hold a YAML
// sequence of mappings.
func LoadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening records")
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".ndjson":
		return decodeNDJSON(f)
	case ".yaml", ".yml":
		return decodeYAML(f)
	default:
		return nil, errors.Errorf("unsupported record file extension %q", ext)
	}
}

func decodeNDJSON(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, errors.Wrapf(err, "decoding line %d", line)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading records")
	}
	return records, nil
}

func decodeYAML(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading records")
	}
	var docs []map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding yaml")
	}
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, normalize(doc).(Record))
	}
	return records, nil
}

// normalize converts the interface-keyed maps produced by yaml.v2 into
// string-keyed maps so that paths and expressions see the same shapes as
// for JSON input.
func normalize(v interface{}) interface{} {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		out := make(Record, len(v))
		for k, e := range v {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []interface{}:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	default:
		return v
	}
}
