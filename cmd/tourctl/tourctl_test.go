package main

import (
	"bytes"
	"strings"
	"testing"

	"museum-tour-server/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(entity.AllModels()...))
	return db
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeed_Idempotent(t *testing.T) {
	db := openTestDB(t)
	var out bytes.Buffer

	require.NoError(t, seed(db, &out))
	assert.Contains(t, out.String(), "English")
	assert.Equal(t, int64(len(defaultLanguages)), count(t, db, &entity.Language{}))
	assert.Equal(t, int64(1), count(t, db, &entity.Tour{}))
	assert.Equal(t, int64(1), count(t, db, &entity.Location{}))
	assert.Equal(t, int64(1), count(t, db, &entity.Dome{}))

	// 再执行一次不重复写入，也没有输出
	out.Reset()
	require.NoError(t, seed(db, &out))
	assert.Empty(t, out.String())
	assert.Equal(t, int64(len(defaultLanguages)), count(t, db, &entity.Language{}))
	assert.Equal(t, int64(1), count(t, db, &entity.Tour{}))
}

func TestTableNames_DependentsFirst(t *testing.T) {
	db := openTestDB(t)

	names, err := tableNames(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"blocks", "contents", "plants", "locations", "tours", "domes", "languages"}, names)
}

func TestClearTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, seed(db, &bytes.Buffer{}))

	names, err := tableNames(db)
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Equal(t, 0, clearTables(db, names, false, &out))
	assert.Equal(t, int64(0), count(t, db, &entity.Language{}))
	assert.Equal(t, int64(0), count(t, db, &entity.Location{}))

	// 不存在的表计为失败
	out.Reset()
	assert.Equal(t, 1, clearTables(db, []string{"nope"}, false, &out))
	assert.Contains(t, out.String(), "nope")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"Y\n", true},
		{"no\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out, []string{"blocks"}), tt.input)
		assert.Contains(t, out.String(), "- blocks")
	}
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, []string{"blocks", "contents"}, parseTableNames(" blocks, ,contents "))

	kind, err := parseKind("plant")
	require.NoError(t, err)
	assert.Equal(t, entity.ParentPlant, kind)

	_, err = parseKind("tree")
	assert.Error(t, err)
}
