package serviceImp

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskdata/database/dbtest"
	"taskdata/pkg/export"
	"taskdata/pkg/field/repositoryImp"
	"taskdata/pkg/merge/mergetest"
)

func TestSaveAndRead(t *testing.T) {
	svc := NewFieldService(repositoryImp.New(dbtest.Open(t)))
	run := uuid.New()

	n, err := svc.Save(mergetest.Index(t), run)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	fields, err := svc.ListFields()
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "A/PFD1", fields[0].CompositeID)
	assert.Equal(t, "Hedegaard", fields[0].FarmName)
	assert.Equal(t, []int{2022, 2023}, fields[0].Years)
	assert.Equal(t, 2, fields[0].TotalTasks)
	assert.Equal(t, run, fields[0].ImportRunID)
	assert.True(t, fields[0].HasGeometry())
	assert.False(t, fields[1].HasGeometry())

	f, err := svc.GetField("B/PFD7")
	require.NoError(t, err)
	assert.Equal(t, "No Boundary", f.Name)

	_, err = svc.GetField("B/PFD1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSaveIsIdempotent(t *testing.T) {
	svc := NewFieldService(repositoryImp.New(dbtest.Open(t)))
	ix := mergetest.Index(t)
	_, err := svc.Save(ix, uuid.New())
	require.NoError(t, err)
	second := uuid.New()
	_, err = svc.Save(ix, second)
	require.NoError(t, err)

	fields, err := svc.ListFields()
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, second, fields[0].ImportRunID)
}

func TestFeatureCollectionSkipsFieldsWithoutBoundary(t *testing.T) {
	svc := NewFieldService(repositoryImp.New(dbtest.Open(t)))
	_, err := svc.Save(mergetest.Index(t), uuid.New())
	require.NoError(t, err)

	fc, err := svc.FeatureCollection()
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	var props export.FieldProperties
	require.NoError(t, json.Unmarshal(fc.Features[0].Properties, &props))
	assert.Equal(t, "A/PFD1", props.CompositeID)
	assert.Equal(t, []int{2022, 2023}, props.YearList)
	require.NotNil(t, props.Years)
	assert.Equal(t, "2022, 2023", *props.Years)

	var geom struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(fc.Features[0].Geometry, &geom))
	assert.Equal(t, "Polygon", geom.Type)

	f, err := svc.Feature("B/PFD7")
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(f.Geometry))
}
