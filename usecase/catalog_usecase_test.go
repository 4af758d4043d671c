package usecase

import (
	"context"
	"testing"

	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	"museum-tour-server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== 目录资源 / 块管理 测试 ==========

func TestCatalog_LanguageDeleteConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contents := repository.NewContentRepository(f.db)
	languages := NewLanguageCatalog(repository.NewLanguageRepository(f.db), contents)

	require.NoError(t, f.contentUseCase(nil).UpsertPage(ctx, f.plant, f.spanish.ID, "T", nil))

	err := languages.Delete(ctx, f.spanish.ID)
	assert.ErrorIs(t, err, domainErrors.ErrConflict)

	// 未使用的语言可以删除
	fr := &entity.Language{Code: "fr", Name: "French", NativeName: "Français"}
	require.NoError(t, languages.Create(ctx, fr))
	assert.NoError(t, languages.Delete(ctx, fr.ID))

	_, err = languages.Get(ctx, fr.ID)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestCatalog_TourAndLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contents := repository.NewContentRepository(f.db)
	tourRepo := repository.NewTourRepository(f.db)
	locationRepo := repository.NewLocationRepository(f.db)
	tours := NewTourCatalog(tourRepo, locationRepo)
	locations := NewLocationCatalog(locationRepo, tourRepo, contents)

	// 路线不存在
	err := locations.Create(ctx, &entity.Location{TourID: 404, Name: "Nowhere"})
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	_, err = locations.Update(ctx, f.location.ID, map[string]interface{}{"tour_id": uint(404)})
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	updated, err := locations.Update(ctx, f.location.ID, map[string]interface{}{"label": "B2"})
	require.NoError(t, err)
	assert.Equal(t, "B2", updated.Label)

	// 路线仍有地点
	loc, err := locations.Get(ctx, f.location.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, tours.Delete(ctx, loc.TourID), domainErrors.ErrConflict)

	// 地点有内容块时不能删除
	require.NoError(t, f.contentUseCase(nil).UpsertPage(ctx, f.location, f.english.ID, "T", nil))
	assert.ErrorIs(t, locations.Delete(ctx, f.location.ID), domainErrors.ErrConflict)

	assert.ErrorIs(t, locations.Delete(ctx, 404), domainErrors.ErrNotFound)
}

func TestCatalog_PlantDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plants := NewPlantCatalog(repository.NewPlantRepository(f.db), repository.NewContentRepository(f.db))

	fern := &entity.Plant{Name: "Fern"}
	require.NoError(t, plants.Create(ctx, fern))
	assert.NoError(t, plants.Delete(ctx, fern.ID))

	require.NoError(t, f.contentUseCase(nil).UpsertPage(ctx, f.plant, f.english.ID, "T", nil))
	assert.ErrorIs(t, plants.Delete(ctx, f.plant.ID), domainErrors.ErrConflict)

	list, err := plants.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBlockUseCase_Contents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewBlockUseCase(repository.NewContentRepository(f.db), repository.NewParentRepository(f.db), repository.NewLanguageRepository(f.db))

	err := uc.CreateContent(ctx, &entity.Content{Body: "x", LanguageID: 404})
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	c := &entity.Content{Body: "hello", LanguageID: f.english.ID}
	require.NoError(t, uc.CreateContent(ctx, c))

	updated, err := uc.UpdateContent(ctx, c.ID, &entity.Content{Body: "/img.png", IsURL: true, LanguageID: f.spanish.ID})
	require.NoError(t, err)
	assert.Equal(t, "/img.png", updated.Body)
	assert.True(t, updated.IsURL)
	assert.Equal(t, f.spanish.ID, updated.LanguageID)

	block := &entity.Block{
		ParentKind: entity.ParentPlant, ParentID: f.plant.ID, LanguageID: f.spanish.ID,
		LeftContentID: entity.UintPtr(c.ID), Position: entity.IntPtr(1),
	}
	require.NoError(t, uc.CreateBlock(ctx, block))

	// 仍被引用
	assert.ErrorIs(t, uc.DeleteContent(ctx, c.ID), domainErrors.ErrConflict)

	require.NoError(t, uc.DeleteBlock(ctx, block.ID))
	assert.NoError(t, uc.DeleteContent(ctx, c.ID))
	assert.ErrorIs(t, uc.DeleteContent(ctx, c.ID), domainErrors.ErrNotFound)
}

func TestBlockUseCase_Invariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewBlockUseCase(repository.NewContentRepository(f.db), repository.NewParentRepository(f.db), repository.NewLanguageRepository(f.db))

	c := &entity.Content{Body: "hello", LanguageID: f.english.ID}
	require.NoError(t, uc.CreateContent(ctx, c))

	tests := []struct {
		name    string
		block   entity.Block
		wantErr error
	}{
		{
			name:    "A: 标题块缺右侧",
			block:   entity.Block{ParentKind: entity.ParentPlant, ParentID: f.plant.ID, LanguageID: f.english.ID, LeftContentID: entity.UintPtr(c.ID)},
			wantErr: domainErrors.ErrConstraintViolation,
		},
		{
			name:    "B: 正文块两侧都为空",
			block:   entity.Block{ParentKind: entity.ParentPlant, ParentID: f.plant.ID, LanguageID: f.english.ID, Position: entity.IntPtr(1)},
			wantErr: domainErrors.ErrConstraintViolation,
		},
		{
			name:    "C: position 越界",
			block:   entity.Block{ParentKind: entity.ParentPlant, ParentID: f.plant.ID, LanguageID: f.english.ID, LeftContentID: entity.UintPtr(c.ID), Position: entity.IntPtr(100)},
			wantErr: domainErrors.ErrConstraintViolation,
		},
		{
			name:    "父实体不存在",
			block:   entity.Block{ParentKind: entity.ParentLocation, ParentID: 404, LanguageID: f.english.ID, LeftContentID: entity.UintPtr(c.ID), Position: entity.IntPtr(1)},
			wantErr: domainErrors.ErrNotFound,
		},
		{
			name:    "引用的内容不存在",
			block:   entity.Block{ParentKind: entity.ParentPlant, ParentID: f.plant.ID, LanguageID: f.english.ID, LeftContentID: entity.UintPtr(404), Position: entity.IntPtr(1)},
			wantErr: domainErrors.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := tt.block
			assert.ErrorIs(t, uc.CreateBlock(ctx, &block), tt.wantErr)
		})
	}
}

func TestPlantSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, p := range []*entity.Plant{
		{Name: "Swiss Cheese Plant", ScientificName: "Monstera adansonii"},
		{Name: "Fern", ScientificName: "Polypodiopsida"},
	} {
		require.NoError(t, f.db.Create(p).Error)
	}
	uc := NewPlantSearchUseCase(repository.NewPlantRepository(f.db))

	all, err := uc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	hits, err := uc.Search(ctx, "monstera")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	// 名称完全匹配排在学名匹配之前
	assert.Equal(t, "Monstera", hits[0].Name)
	assert.Equal(t, "Swiss Cheese Plant", hits[1].Name)

	none, err := uc.Search(ctx, "cactus")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
