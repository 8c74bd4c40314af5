package output_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poorboy44/bounding-boxes/internal/geo"
	"github.com/poorboy44/bounding-boxes/internal/output"
)

func TestFormatRule(t *testing.T) {
	tests := []struct {
		name string
		box  geo.BoundingBox
		want string
	}{
		{
			name: "whole degrees",
			box:  geo.BoundingBox{West: -109, South: 37, East: -108, North: 38},
			want: "bounding_box:[-109.00000 37.00000 -108.00000 38.00000]",
		},
		{
			name: "long fractions truncate to five places",
			box:  geo.BoundingBox{West: -108.549999999, South: 37.35, East: -108.1, North: 37.7},
			want: "bounding_box:[-108.55000 37.35000 -108.10000 37.70000]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, output.FormatRule(tt.box))
		})
	}
}

func TestWriteJSONTagHandling(t *testing.T) {
	boxes := []geo.BoundingBox{
		{West: -109, South: 37, East: -108.55, North: 37.35},
		{West: -108.55, South: 37, East: -108.1, North: 37.35},
	}

	dir := t.TempDir()

	tagged := filepath.Join(dir, "tagged.json")
	require.NoError(t, output.WriteJSON(tagged, boxes, "colorado"))

	data, err := os.ReadFile(tagged)
	require.NoError(t, err)

	var doc output.RulesDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Rules, 2)
	for _, rule := range doc.Rules {
		require.Equal(t, "colorado", rule.Tag)
		require.True(t, strings.HasPrefix(rule.Value, "bounding_box:["))
	}

	// Without a tag the key must be absent from the document entirely.
	untagged := filepath.Join(dir, "untagged.json")
	require.NoError(t, output.WriteJSON(untagged, boxes, ""))

	data, err = os.ReadFile(untagged)
	require.NoError(t, err)
	require.NotContains(t, string(data), `"tag"`)
}

func TestWriteText(t *testing.T) {
	boxes := []geo.BoundingBox{
		{West: -109, South: 37, East: -108.55, North: 37.35},
		{West: -108.55, South: 37, East: -108.1, North: 37.35},
	}

	path := filepath.Join(t.TempDir(), "boxes.txt")
	require.NoError(t, output.WriteText(path, boxes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "bounding_box:[-109.00000 37.00000 -108.55000 37.35000]", lines[0])
	require.True(t, strings.HasSuffix(string(data), "\n"), "text output must end with a newline")
}
