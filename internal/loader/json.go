package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"datapulse/internal/errors"
	"datapulse/internal/table"
)

// loadJSON reads an array of flat objects. Columns are the union of keys in
// first-seen order; absent or null fields are Missing.
func loadJSON(path string) (*table.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	var records []map[string]any
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	// Union of keys, ordered by first appearance. Object key order inside a
	// record is lost to the decoder, so re-scan the raw text for the first
	// record's ordering and append later-seen keys after it.
	names := keyOrder(content, records)
	if len(names) == 0 {
		return nil, errors.ErrEmptyTable
	}

	cols := make([]table.Column, len(names))
	for j, name := range names {
		cells := make([]table.Value, len(records))
		for i, rec := range records {
			raw, ok := rec[name]
			if !ok {
				cells[i] = table.Missing
				continue
			}
			cells[i] = jsonCell(raw)
		}
		cols[j] = table.Column{Name: name, Kind: table.InferKind(cells), Cells: cells}
	}

	return table.New(cols)
}

func jsonCell(raw any) table.Value {
	switch v := raw.(type) {
	case nil:
		return table.Missing
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return table.Number(f)
		}
		return table.Text(v.String())
	case string:
		return inferCell(v)
	case bool:
		if v {
			return table.Text("true")
		}
		return table.Text("false")
	default:
		// Nested arrays/objects are out of contract; keep their text form.
		b, _ := json.Marshal(v)
		return table.Text(string(b))
	}
}

// keyOrder recovers a stable column ordering by re-walking the document:
// keys in the order they first appear across the row objects. The decoded
// maps lose ordering, so this second pass is what keeps column order
// deterministic.
func keyOrder(content []byte, records []map[string]any) []string {
	var names []string
	seen := make(map[string]struct{})

	decoder := json.NewDecoder(bytes.NewReader(content))
	if tok, err := decoder.Token(); err != nil || tok != json.Delim('[') {
		return mapKeys(records, names, seen)
	}

	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if tok != json.Delim('{') {
			skipValue(decoder)
			continue
		}
		for {
			keyTok, err := decoder.Token()
			if err != nil || keyTok == json.Delim('}') {
				break
			}
			key, ok := keyTok.(string)
			if !ok {
				break
			}
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				names = append(names, key)
			}
			if err := skipValue(decoder); err != nil {
				break
			}
		}
	}

	return mapKeys(records, names, seen)
}

// skipValue consumes one JSON value, descending through nesting.
func skipValue(decoder *json.Decoder) error {
	tok, err := decoder.Token()
	if err != nil {
		return err
	}
	if tok == json.Delim('{') || tok == json.Delim('[') {
		depth := 1
		for depth > 0 {
			tok, err = decoder.Token()
			if err != nil {
				return err
			}
			switch tok {
			case json.Delim('{'), json.Delim('['):
				depth++
			case json.Delim('}'), json.Delim(']'):
				depth--
			}
		}
	}
	return nil
}

// mapKeys appends any keys the document walk missed, guarded by seen.
func mapKeys(records []map[string]any, names []string, seen map[string]struct{}) []string {
	for _, rec := range records {
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				names = append(names, k)
			}
		}
	}
	return names
}
