package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/academia/core/academy"
)

// decodeDraft reads a JSON or YAML draft: inline, from @file, or from stdin with "-".
// Keys are the JSON field names of the draft.
func decodeDraft[D any](stdin io.Reader, data string) (D, error) {
	var draft D

	raw, err := readData(stdin, data)
	if err != nil {
		return draft, err
	}
	var doc interface{}
	if err = yaml.Unmarshal(raw, &doc); err != nil { // JSON is YAML too
		return draft, errors.Wrap(err, "parsing draft")
	}
	if doc == nil {
		return draft, errors.New("empty draft")
	}

	buf, err := json.Marshal(jsonable(doc))
	if err != nil {
		return draft, errors.Wrap(err, "encoding draft")
	}
	if err = json.Unmarshal(buf, &draft); err != nil {
		return draft, errors.Wrap(err, "decoding draft")
	}
	return draft, nil
}

func readData(stdin io.Reader, data string) ([]byte, error) {
	switch {
	case data == "-":
		buf, err := io.ReadAll(stdin)
		return buf, errors.Wrap(err, "reading draft from stdin")
	case strings.HasPrefix(data, "@"):
		buf, err := os.ReadFile(strings.TrimPrefix(data, "@"))
		return buf, errors.Wrap(err, "reading draft file")
	default:
		return []byte(data), nil
	}
}

// jsonable converts YAML values to their JSON counterparts. Unquoted YAML dates become
// calendar dates, and timestamps RFC 3339 strings.
func jsonable(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		for k, val := range v {
			v[k] = jsonable(val)
		}
		return v
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, val := range v {
			m[toString(k)] = jsonable(val)
		}
		return m
	case []interface{}:
		for i, val := range v {
			v[i] = jsonable(val)
		}
		return v
	case time.Time:
		if v.Equal(v.Truncate(24*time.Hour)) && v.Location() == time.UTC {
			return v.Format(academy.DateLayout)
		}
		return v.Format(time.RFC3339)
	default:
		return v
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	buf, _ := json.Marshal(v)
	return strings.Trim(string(buf), `"`)
}
