package rdp

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Setting is one "key:type:value" line of a profile.
type Setting struct {
	Key   string
	Type  string
	Value string
}

type Document struct {
	Settings []Setting
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func Parse(data []byte) (Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var doc Document
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return Document{}, fmt.Errorf("parse profile line %d: expected key:type:value", lineNo)
		}

		doc.Settings = append(doc.Settings, Setting{Key: strings.ToLower(parts[0]), Type: parts[1], Value: parts[2]})
	}
	if err := scanner.Err(); err != nil {
		return Document{}, fmt.Errorf("scan profile: %w", err)
	}

	return doc, nil
}

// Value returns the last value set for key.
func (d Document) Value(key string) (string, bool) {
	key = strings.ToLower(key)
	for i := len(d.Settings) - 1; i >= 0; i-- {
		if d.Settings[i].Key == key {
			return d.Settings[i].Value, true
		}
	}

	return "", false
}
