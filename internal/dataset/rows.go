package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lanternhealth/sdohscope/internal/member"
)

// ReadCSV parses delimited text with a header row into raw rows. Quoted
// fields and embedded newlines follow RFC 4180. Rows whose cells are all
// blank are dropped; short rows are padded with empty cells.
func ReadCSV(r io.Reader) ([]member.Raw, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	rows := make([]member.Raw, 0, len(records)-1)
	for _, rec := range records[1:] {
		blank := true
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		row := make(member.Raw, len(headers))
		for i, header := range headers {
			if i < len(rec) {
				row[header] = rec[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadJSONRows parses the remote-query row shape: either a bare JSON array
// of objects or an envelope {"rows": [...]}. Cell values are stringified
// without losing numeric precision so that the same tolerant parse applies
// to both origins.
func ReadJSONRows(data []byte) ([]member.Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse json rows: %w", err)
	}

	var list []any
	switch v := payload.(type) {
	case []any:
		list = v
	case map[string]any:
		inner, ok := v["rows"].([]any)
		if !ok {
			return nil, fmt.Errorf("json payload has no rows array")
		}
		list = inner
	default:
		return nil, fmt.Errorf("json payload is neither an array nor an object")
	}

	rows := make([]member.Raw, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d is not an object", i)
		}
		row := make(member.Raw, len(obj))
		for key, val := range obj {
			row[key] = stringifyCell(val)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stringifyCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		// Nested structures have no column semantics; keep their JSON text.
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
