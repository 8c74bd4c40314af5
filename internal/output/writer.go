package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/poorboy44/bounding-boxes/internal/geo"
)

// Rule is one entry of the structured rules document. Tag is omitted from
// the JSON when empty.
type Rule struct {
	Value string `json:"value"`
	Tag   string `json:"tag,omitempty"`
}

// RulesDocument is the structured output artifact.
type RulesDocument struct {
	Rules []Rule `json:"rules"`
}

// FormatRule renders a box as a rule value. All four coordinates carry
// exactly five decimal places regardless of internal precision.
func FormatRule(b geo.BoundingBox) string {
	return fmt.Sprintf("bounding_box:[%3.5f %3.5f %3.5f %3.5f]", b.West, b.South, b.East, b.North)
}

// BuildRules converts a box sequence into a rules document, attaching the
// tag to every rule when one was supplied.
func BuildRules(boxes []geo.BoundingBox, tag string) RulesDocument {
	doc := RulesDocument{Rules: make([]Rule, 0, len(boxes))}
	for _, b := range boxes {
		doc.Rules = append(doc.Rules, Rule{Value: FormatRule(b), Tag: tag})
	}
	return doc
}

// WriteJSON writes the box sequence as one structured rules document.
func WriteJSON(path string, boxes []geo.BoundingBox, tag string) error {
	data, err := json.MarshalIndent(BuildRules(boxes, tag), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rules document: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", path, err)
	}
	return nil
}

// WriteText writes one rule value per line, no surrounding structure.
func WriteText(path string, boxes []geo.BoundingBox) error {
	var buf bytes.Buffer
	for _, b := range boxes {
		buf.WriteString(FormatRule(b))
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", path, err)
	}
	return nil
}
