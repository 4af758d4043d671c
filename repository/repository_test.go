package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"museum-tour-server/domain/capability"
	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	domainRepo "museum-tour-server/domain/repository"

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

type fixture struct {
	db       *gorm.DB
	contents domainRepo.ContentRepository
	english  entity.Language
	spanish  entity.Language
	plant    entity.Plant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	f := &fixture{db: db, contents: NewContentRepository(db)}
	f.english = entity.Language{Code: "en", Name: "English", NativeName: "English"}
	f.spanish = entity.Language{Code: "es", Name: "Spanish", NativeName: "Español"}
	f.plant = entity.Plant{Name: "Monstera", ScientificName: "Monstera deliciosa"}
	require.NoError(t, db.Create(&f.english).Error)
	require.NoError(t, db.Create(&f.spanish).Error)
	require.NoError(t, db.Create(&f.plant).Error)
	return f
}

func (f *fixture) parent() entity.ParentRef {
	return entity.ParentRef{Kind: entity.ParentPlant, ID: f.plant.ID}
}

func (f *fixture) content(t *testing.T, body string, languageID uint) uint {
	t.Helper()
	c := &entity.Content{Body: body, LanguageID: languageID}
	require.NoError(t, f.contents.CreateContent(context.Background(), c))
	return c.ID
}

func (f *fixture) block(t *testing.T, languageID uint, left, right *uint, position *int) *entity.Block {
	t.Helper()
	b := &entity.Block{
		ParentKind: entity.ParentPlant, ParentID: f.plant.ID, LanguageID: languageID,
		LeftContentID: left, RightContentID: right, Position: position,
	}
	require.NoError(t, f.contents.CreateBlock(context.Background(), b))
	return b
}

// ========== contents / blocks ==========

func TestContentRepository_PageQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	en := f.english.ID

	first := f.block(t, en, entity.UintPtr(f.content(t, "Monstera", en)), entity.UintPtr(f.content(t, "", en)), nil)
	f.block(t, en, entity.UintPtr(f.content(t, "Duplicate", en)), entity.UintPtr(f.content(t, "", en)), nil)
	f.block(t, en, entity.UintPtr(f.content(t, "second", en)), nil, entity.IntPtr(2))
	f.block(t, en, entity.UintPtr(f.content(t, "first", en)), nil, entity.IntPtr(1))
	f.block(t, en, entity.UintPtr(f.content(t, "https://cdn/a.mp3", en)), nil, entity.IntPtr(entity.AudioPosition))
	f.block(t, f.spanish.ID, entity.UintPtr(f.content(t, "primero", f.spanish.ID)), nil, entity.IntPtr(1))

	// 多个标题块时取最早的
	title, err := f.contents.FindTitleBlock(ctx, f.parent(), en)
	require.NoError(t, err)
	require.NotNil(t, title)
	assert.Equal(t, first.ID, title.ID)
	require.NotNil(t, title.LeftContent)
	assert.Equal(t, "Monstera", title.LeftContent.Body)

	// 正文按位置排序，不含标题与语音块，不含其他语言
	blocks, err := f.contents.ListPageBlocks(ctx, f.parent(), en)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "first", blocks[0].LeftContent.Body)
	assert.Equal(t, "second", blocks[1].LeftContent.Body)
	assert.Nil(t, blocks[0].RightContent)

	audio, err := f.contents.ListBlocksAt(ctx, f.parent(), en, entity.AudioPosition)
	require.NoError(t, err)
	require.Len(t, audio, 1)
	assert.True(t, audio[0].IsAudio())

	all, err := f.contents.ListLanguageBlocks(ctx, f.parent(), en)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	n, err := f.contents.CountParentBlocks(ctx, f.parent())
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	// 没有标题块
	title, err = f.contents.FindTitleBlock(ctx, entity.ParentRef{Kind: entity.ParentLocation, ID: 1}, en)
	require.NoError(t, err)
	assert.Nil(t, title)
}

func TestContentRepository_BlockInvariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	left := entity.UintPtr(f.content(t, "x", f.english.ID))

	tests := []struct {
		name  string
		block entity.Block
	}{
		{"标题块缺右侧", entity.Block{LeftContentID: left}},
		{"正文块两侧都为空", entity.Block{Position: entity.IntPtr(1)}},
		{"位置越界", entity.Block{LeftContentID: left, Position: entity.IntPtr(entity.MaxPosition + 1)}},
		{"负数位置", entity.Block{LeftContentID: left, Position: entity.IntPtr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.block
			b.ParentKind, b.ParentID, b.LanguageID = entity.ParentPlant, f.plant.ID, f.english.ID
			err := f.contents.CreateBlock(ctx, &b)
			assert.ErrorIs(t, err, domainErrors.ErrConstraintViolation)
		})
	}

	n, err := f.contents.CountParentBlocks(ctx, f.parent())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestContentRepository_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	en := f.english.ID

	leftID := f.content(t, "left", en)
	rightID := f.content(t, "right", en)
	b := f.block(t, en, entity.UintPtr(leftID), entity.UintPtr(rightID), entity.IntPtr(1))

	// nil 指针写成 NULL
	b.LeftContentID = nil
	require.NoError(t, f.contents.UpdateBlock(ctx, b))
	got, err := f.contents.GetBlock(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LeftContentID)
	assert.Equal(t, rightID, *got.RightContentID)

	referenced, err := f.contents.ContentReferenced(ctx, leftID)
	require.NoError(t, err)
	assert.False(t, referenced)
	referenced, err = f.contents.ContentReferenced(ctx, rightID)
	require.NoError(t, err)
	assert.True(t, referenced)

	// false / 空字符串也要写入
	require.NoError(t, f.contents.UpdateContent(ctx, &entity.Content{ID: rightID, Body: "", IsURL: false, LanguageID: f.spanish.ID}))
	c, err := f.contents.GetContent(ctx, rightID)
	require.NoError(t, err)
	assert.Empty(t, c.Body)
	assert.Equal(t, f.spanish.ID, c.LanguageID)

	inUse, err := f.contents.LanguageInUse(ctx, f.spanish.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	require.NoError(t, f.contents.DeleteBlocks(ctx, b.ID))
	require.NoError(t, f.contents.DeleteContents(ctx, leftID, rightID))
	require.NoError(t, f.contents.DeleteContents(ctx))

	_, err = f.contents.GetBlock(ctx, b.ID)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
	_, err = f.contents.GetContent(ctx, leftID)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	b.ID = 9999
	b.LeftContentID = entity.UintPtr(1)
	assert.ErrorIs(t, f.contents.UpdateBlock(ctx, b), domainErrors.ErrNotFound)
}

func TestContentRepository_TransactionRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.contents.Transaction(ctx, func(repo domainRepo.ContentRepository) error {
		c := &entity.Content{Body: "temp", LanguageID: f.english.ID}
		if err := repo.CreateContent(ctx, c); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	inUse, err := f.contents.LanguageInUse(ctx, f.english.ID)
	require.NoError(t, err)
	assert.False(t, inUse)
}

// ========== 父实体 ==========

func TestParentRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parents := NewParentRepository(f.db)

	tour := entity.Tour{Name: "Highlights"}
	require.NoError(t, f.db.Create(&tour).Error)
	location := entity.Location{TourID: tour.ID, Name: "Cloud Forest", Label: "A1"}
	require.NoError(t, f.db.Create(&location).Error)
	locRef := entity.ParentRef{Kind: entity.ParentLocation, ID: location.ID}

	exists, err := parents.Exists(ctx, f.parent())
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = parents.Exists(ctx, entity.ParentRef{Kind: entity.ParentPlant, ID: 999})
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = parents.Exists(ctx, entity.ParentRef{Kind: "tree", ID: 1})
	assert.ErrorIs(t, err, domainErrors.ErrConstraintViolation)

	subject, err := parents.Subject(ctx, f.parent())
	require.NoError(t, err)
	assert.Equal(t, capability.Subject{Kind: entity.ParentPlant, Name: "Monstera", ScientificName: "Monstera deliciosa"}, *subject)

	subject, err = parents.Subject(ctx, locRef)
	require.NoError(t, err)
	assert.Equal(t, "A1", subject.Label)

	_, err = parents.Subject(ctx, entity.ParentRef{Kind: entity.ParentLocation, ID: 999})
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	ids, err := parents.IDs(ctx, entity.ParentPlant)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.plant.ID}, ids)

	require.NoError(t, parents.SaveFactSheet(ctx, f.parent(), &capability.FactSheet{Origin: "Mexico"}))
	var plant entity.Plant
	require.NoError(t, f.db.First(&plant, f.plant.ID).Error)
	var facts capability.FactSheet
	require.NoError(t, json.Unmarshal(plant.FactSheet, &facts))
	assert.Equal(t, "Mexico", facts.Origin)
}

// ========== 单表资源 ==========

func TestCrudRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tours := NewTourRepository(db)

	tour := &entity.Tour{Name: "Highlights", Description: "Best of"}
	require.NoError(t, tours.Create(ctx, tour))
	require.NotZero(t, tour.ID)

	// 空字符串也会写入
	updated, err := tours.Update(ctx, tour.ID, map[string]interface{}{"description": ""})
	require.NoError(t, err)
	assert.Empty(t, updated.Description)
	assert.Equal(t, "Highlights", updated.Name)

	unchanged, err := tours.Update(ctx, tour.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Highlights", unchanged.Name)

	_, err = tours.Update(ctx, 999, map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	locations := NewLocationRepository(db)
	require.NoError(t, locations.Create(ctx, &entity.Location{TourID: tour.ID, Name: "A"}))
	require.NoError(t, locations.Create(ctx, &entity.Location{TourID: tour.ID, Name: "B"}))
	n, err := locations.Count(ctx, "tour_id = ?", tour.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := locations.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Name)

	assert.ErrorIs(t, tours.Delete(ctx, 999), domainErrors.ErrNotFound)
	require.NoError(t, NewDomeRepository(db).Create(ctx, &entity.Dome{Name: "Desert"}))
}

func TestLanguageRepository_GetByCode(t *testing.T) {
	f := newFixture(t)
	languages := NewLanguageRepository(f.db)

	lang, err := languages.GetByCode(context.Background(), "ES")
	require.NoError(t, err)
	assert.Equal(t, f.spanish.ID, lang.ID)

	_, err = languages.GetByCode(context.Background(), "fr")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestPlantRepository_Search(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	plants := NewPlantRepository(db)

	for _, p := range []entity.Plant{
		{Name: "Swiss Cheese Plant", ScientificName: "Monstera deliciosa"},
		{Name: "Monstera", ScientificName: "Monstera deliciosa"},
		{Name: "Monstera Adansonii", ScientificName: "Monstera adansonii"},
		{Name: "Fern", ScientificName: "Polypodiopsida"},
	} {
		p := p
		require.NoError(t, plants.Create(ctx, &p))
	}

	names := func(list []entity.Plant) []string {
		out := make([]string, 0, len(list))
		for _, p := range list {
			out = append(out, p.Name)
		}
		return out
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"monstera", []string{"Monstera", "Monstera Adansonii", "Swiss Cheese Plant"}},
		{"  FERN ", []string{"Fern"}},
		{"polypod", []string{"Fern"}},
		{"%", []string{"Fern", "Monstera", "Monstera Adansonii", "Swiss Cheese Plant"}},
		{"", []string{"Fern", "Monstera", "Monstera Adansonii", "Swiss Cheese Plant"}},
		{"cactus", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := plants.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}
