package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"polygon-measure/pkg/geometry"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func testPolygons() []geometry.Polygon {
	return []geometry.Polygon{
		geometry.NewPolygon([]geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}),
		geometry.NewPolygon([]geometry.Point2D{{X: 5, Y: 5}, {X: 20, Y: 5}, {X: 20, Y: 25}, {X: 5, Y: 25}}),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := New(testPolygons(), 2.54, 96)

	data, err := f.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, f.Polygons, got.Polygons)
	require.Equal(t, f.Scale, got.Scale)
	require.Equal(t, f.DPI, got.DPI)
}

func TestEncodeEmptyPolygonList(t *testing.T) {
	f := New(nil, 1, 1)
	data, err := f.Encode()
	require.NoError(t, err)
	require.Contains(t, string(data), `"polygons": []`,
		"all three fields are written even with no polygons")
}

func TestDecodeMissingFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing dpi", `{"polygons": [], "scale": 1}`},
		{"missing scale", `{"polygons": [], "dpi": 96}`},
		{"missing polygons", `{"scale": 1, "dpi": 96}`},
		{"empty document", `{}`},
		{"zero dpi", `{"polygons": [], "scale": 1, "dpi": 0}`},
		{"negative scale", `{"polygons": [], "scale": -2, "dpi": 96}`},
		{"polygon without points", `{"polygons": [{"isCompleted": true}], "scale": 1, "dpi": 96}`},
		{"not json", `scale=1 dpi=96`},
		{"wrong types", `{"polygons": "none", "scale": 1, "dpi": 96}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrParse), "want ErrParse, got %v", err)
		})
	}
}

func TestLoadRejectsWrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shapes.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{"polygons": [], "scale": 1, "dpi": 96}`), 0644))

	_, err := Load(path)
	require.True(t, errors.Is(err, ErrFileType), "want ErrFileType, got %v", err)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shapes"+Ext)

	f := New(testPolygons(), 1.5, 72)
	require.NoError(t, f.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, f.Polygons, got.Polygons)
	require.Equal(t, 1.5, got.Scale)
	require.Equal(t, float64(72), got.DPI)
}

func TestLoadExtensionCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SHAPES.POLYSNAP")

	f := New(testPolygons(), 1, 96)
	require.NoError(t, f.Save(path))

	_, err := Load(path)
	require.NoError(t, err)
}
