package disks_test

import (
	"testing"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/disks"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
	"github.com/Mouaz7/Os-filesystem/drivers/fatfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPredefinedDiskGeometry__Default(t *testing.T) {
	geometry, err := disks.GetPredefinedDiskGeometry(disks.DefaultSlug)
	require.NoError(t, err)
	assert.Equal(t, common.DefaultGeometry, geometry.Geometry())
	assert.EqualValues(t, 8*1024*1024, geometry.TotalSizeBytes())
}

func TestGetPredefinedDiskGeometry__Unknown(t *testing.T) {
	_, err := disks.GetPredefinedDiskGeometry("floppy")
	assert.ErrorIs(t, err, osfs.ErrNotFound)
}

func TestPresetsAreFormattable(t *testing.T) {
	slugs := disks.Slugs()
	require.NotEmpty(t, slugs)

	for _, slug := range slugs {
		t.Run(slug, func(t *testing.T) {
			geometry, err := disks.GetPredefinedDiskGeometry(slug)
			require.NoError(t, err)
			assert.Equal(t, slug, geometry.Slug)
			assert.NoError(t, fatfs.ValidateGeometry(geometry.Geometry()))
		})
	}
}
