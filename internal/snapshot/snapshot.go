// Package snapshot provides snapshot file handling and persistence.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"polygon-measure/pkg/geometry"

	"github.com/cockroachdb/errors"
)

// Ext is the file extension for snapshot files. The content is plain JSON.
const Ext = ".polysnap"

var (
	// ErrParse marks structural or schema failures while decoding a snapshot.
	ErrParse = errors.New("malformed snapshot")

	// ErrFileType marks files rejected before parsing because of their extension.
	ErrFileType = errors.New("unsupported file type")
)

// File represents a serialized drawing snapshot (.polysnap). A snapshot has
// exactly three top-level fields: the completed polygons and the two
// calibration scalars.
type File struct {
	Polygons []geometry.Polygon `json:"polygons"`
	Scale    float64            `json:"scale"`
	DPI      float64            `json:"dpi"`
}

// New creates a snapshot from the given polygons and calibration.
func New(polygons []geometry.Polygon, scale, dpi float64) *File {
	return &File{Polygons: polygons, Scale: scale, DPI: dpi}
}

// Decode parses data as a snapshot document. Every top-level field must be
// present: a document that parses but omits polygons, scale, or dpi is
// rejected, as are non-positive calibration scalars (area and distance
// conversion divide by dpi). All failures are marked with ErrParse.
func Decode(data []byte) (*File, error) {
	var raw struct {
		Polygons *[]geometry.Polygon `json:"polygons"`
		Scale    *float64            `json:"scale"`
		DPI      *float64            `json:"dpi"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding snapshot"), ErrParse)
	}

	if raw.Polygons == nil {
		return nil, errors.Mark(errors.New("snapshot missing field: polygons"), ErrParse)
	}
	if raw.Scale == nil {
		return nil, errors.Mark(errors.New("snapshot missing field: scale"), ErrParse)
	}
	if raw.DPI == nil {
		return nil, errors.Mark(errors.New("snapshot missing field: dpi"), ErrParse)
	}
	if *raw.Scale <= 0 {
		return nil, errors.Mark(errors.Newf("snapshot scale must be positive, got %v", *raw.Scale), ErrParse)
	}
	if *raw.DPI <= 0 {
		return nil, errors.Mark(errors.Newf("snapshot dpi must be positive, got %v", *raw.DPI), ErrParse)
	}
	for i, pg := range *raw.Polygons {
		if len(pg.Points) == 0 {
			return nil, errors.Mark(errors.Newf("snapshot polygon %d has no points", i), ErrParse)
		}
	}

	return &File{Polygons: *raw.Polygons, Scale: *raw.Scale, DPI: *raw.DPI}, nil
}

// Encode serializes the snapshot. All three fields are always written, even
// when the polygon list is empty.
func (f *File) Encode() ([]byte, error) {
	out := *f
	if out.Polygons == nil {
		out.Polygons = []geometry.Polygon{}
	}
	return json.MarshalIndent(&out, "", "  ")
}

// Load reads a snapshot from a .polysnap file. Files with any other
// extension are rejected before their content is read.
func Load(path string) (*File, error) {
	if !strings.EqualFold(filepath.Ext(path), Ext) {
		return nil, errors.Mark(
			errors.Newf("%q: want a %s file", filepath.Base(path), Ext), ErrFileType)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}

// Save writes the snapshot to a file.
func (f *File) Save(path string) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
