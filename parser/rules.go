// Package parser reads bounding-box artifacts back into memory: either the
// structured rules JSON document or the plain one-rule-per-line text form.
package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/poorboy44/bounding-boxes/internal/geo"
)

const (
	rulePrefix = "bounding_box:["
	ruleSuffix = "]"
)

// ParseRuleLine parses one rule value of the form
// "bounding_box:[west south east north]".
func ParseRuleLine(line string) (geo.BoundingBox, error) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, rulePrefix) || !strings.HasSuffix(s, ruleSuffix) {
		return geo.BoundingBox{}, fmt.Errorf("malformed rule %q: expected %sW S E N%s", line, rulePrefix, ruleSuffix)
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(s, rulePrefix), ruleSuffix)
	fields := strings.Fields(inner)
	if len(fields) != 4 {
		return geo.BoundingBox{}, fmt.Errorf("malformed rule %q: expected 4 coordinates, got %d", line, len(fields))
	}

	coords := make([]float64, 4)
	for i, f := range fields {
		val, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geo.BoundingBox{}, fmt.Errorf("malformed rule %q: invalid coordinate %q", line, f)
		}
		coords[i] = val
	}

	return geo.NewBoundingBox(coords[0], coords[1], coords[2], coords[3])
}

// ParseRules parses a structured rules document.
func ParseRules(data []byte) ([]geo.BoundingBox, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid rules document: not valid JSON")
	}

	rules := gjson.GetBytes(data, "rules")
	if !rules.Exists() || !rules.IsArray() {
		return nil, fmt.Errorf("invalid rules document: missing rules array")
	}

	var boxes []geo.BoundingBox
	var parseErr error
	rules.ForEach(func(_, rule gjson.Result) bool {
		value := rule.Get("value")
		if !value.Exists() {
			parseErr = fmt.Errorf("invalid rules document: rule without value")
			return false
		}
		box, err := ParseRuleLine(value.String())
		if err != nil {
			parseErr = err
			return false
		}
		boxes = append(boxes, box)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return boxes, nil
}

// ParseText parses the plain-text form, one rule per line. Blank lines are
// skipped.
func ParseText(data []byte) ([]geo.BoundingBox, error) {
	var boxes []geo.BoundingBox
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		box, err := ParseRuleLine(line)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, box)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return boxes, nil
}

// ParseFile reads an artifact from disk, sniffing the format: documents
// starting with '{' are parsed as structured rules, anything else as text.
func ParseFile(path string) ([]geo.BoundingBox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseRules(data)
	}
	return ParseText(data)
}
