package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// ParsePrompts reads a prompt table, one prompt per row. Only the first column
// is used; rows that are empty after trimming are dropped.
func ParsePrompts(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var prompts []string
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("batch: parse prompt table: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		field := record[0]
		if first {
			field = strings.TrimPrefix(field, utf8BOM)
			first = false
		}
		if prompt := strings.TrimSpace(field); prompt != "" {
			prompts = append(prompts, prompt)
		}
	}
	return prompts, nil
}
