package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"plans", "plots", "roles", "role_permissions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestBeforeCreateAssignsUUID(t *testing.T) {
	db := setupTestDB(t)

	plan := &Plan{Name: "Broadbalk 2024", Status: StatusActive}
	require.NoError(t, db.Create(plan).Error)
	assert.NotZero(t, plan.EntityID())
	assert.NotEmpty(t, plan.UUID.String())

	plot := &Plot{PlanID: plan.ID, Name: "ID: 001 Serial: A1", Geometry: "POINT(1 2)", Status: StatusActive}
	require.NoError(t, db.Create(plot).Error)
	assert.NotZero(t, plot.EntityID())
	assert.NotEqual(t, plan.UUID, plot.UUID)

	var loaded Plan
	require.NoError(t, db.Preload("Plots").First(&loaded, plan.ID).Error)
	require.Len(t, loaded.Plots, 1)
	assert.Equal(t, "ID: 001 Serial: A1", loaded.Plots[0].Name)
}

func TestEnsureRolesIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	roles := []Role{
		{ID: "rothamsted_farm_viewer", Label: "Farm viewer"},
		{ID: "rothamsted_researcher", Label: "Researcher"},
	}

	require.NoError(t, EnsureRoles(db, roles))
	require.NoError(t, db.Model(&Role{}).Where("id = ?", "rothamsted_researcher").Update("label", "Renamed").Error)
	require.NoError(t, EnsureRoles(db, roles))

	var count int64
	require.NoError(t, db.Model(&Role{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var researcher Role
	require.NoError(t, db.First(&researcher, "id = ?", "rothamsted_researcher").Error)
	assert.Equal(t, "Renamed", researcher.Label)
}
