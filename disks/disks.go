// Package disks provides named volume geometries.
package disks

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
	"github.com/gocarina/gocsv"
)

// DiskGeometry is one row of the preset table.
type DiskGeometry struct {
	Slug          string `csv:"slug"`
	Name          string `csv:"name"`
	BytesPerBlock uint   `csv:"bytes_per_block"`
	TotalBlocks   uint   `csv:"total_blocks"`
	Notes         string `csv:"notes"`
}

func (g DiskGeometry) Geometry() common.Geometry {
	return common.Geometry{BytesPerBlock: g.BytesPerBlock, TotalBlocks: g.TotalBlocks}
}

// TotalSizeBytes gives the minimum size of an image file for this geometry.
func (g DiskGeometry) TotalSizeBytes() int64 {
	return g.Geometry().Size()
}

//go:embed geometries.csv
var diskGeometriesRawCSV string
var diskGeometries map[string]DiskGeometry

// DefaultSlug names the geometry used when none is given.
const DefaultSlug = "default"

func GetPredefinedDiskGeometry(slug string) (DiskGeometry, error) {
	geometry, ok := diskGeometries[slug]
	if ok {
		return geometry, nil
	}

	return DiskGeometry{}, osfs.ErrNotFound.WithMessage(
		fmt.Sprintf(
			"no predefined disk geometry exists with slug %q; valid choices are %s",
			slug,
			strings.Join(Slugs(), ", ")))
}

// Slugs returns the names of all predefined geometries in sorted order.
func Slugs() []string {
	slugs := make([]string, 0, len(diskGeometries))
	for slug := range diskGeometries {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

func init() {
	csvReader := csv.NewReader(strings.NewReader(diskGeometriesRawCSV))
	csvReader.Comma = '|'

	var rows []DiskGeometry
	err := gocsv.UnmarshalCSV(csvReader, &rows)
	if err != nil {
		panic(fmt.Errorf("failed to decode disk geometries: %w", err))
	}

	diskGeometries = make(map[string]DiskGeometry, len(rows))
	for i, row := range rows {
		_, exists := diskGeometries[row.Slug]
		if exists {
			panic(
				fmt.Errorf("duplicate definition for disk %q found on row %d", row.Slug, i+1))
		}
		diskGeometries[row.Slug] = row
	}
}
