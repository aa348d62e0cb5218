package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"respostas/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestSeedAdmin(t *testing.T) {
	db := setupTestDB(t)

	t.Setenv("ADMIN_USERNAME", "chefe")
	t.Setenv("ADMIN_EMAIL", "chefe@x.com")
	t.Setenv("ADMIN_PASSWORD", "secret1")

	assert.NoError(t, SeedAdmin(db))

	var admin models.User
	assert.NoError(t, db.Where("username = ?", "chefe").First(&admin).Error)
	assert.Equal(t, "admin", admin.Role)
	assert.False(t, admin.Blocked)
	assert.NotEmpty(t, admin.PasswordHash)
}

func TestSeedAdmin_SkipsWhenUsersExist(t *testing.T) {
	db := setupTestDB(t)

	db.Create(&models.User{Username: "ana", Email: "ana@x.com", Role: "user"})

	t.Setenv("ADMIN_USERNAME", "chefe")
	t.Setenv("ADMIN_PASSWORD", "secret1")

	assert.NoError(t, SeedAdmin(db))

	var count int64
	db.Model(&models.User{}).Where("username = ?", "chefe").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSeedAdmin_SkipsWithoutPassword(t *testing.T) {
	db := setupTestDB(t)

	t.Setenv("ADMIN_PASSWORD", "")

	assert.NoError(t, SeedAdmin(db))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
