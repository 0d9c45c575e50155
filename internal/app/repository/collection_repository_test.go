package repository

import (
	"testing"

	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCollectionTest(t *testing.T) (*gorm.DB, CollectionRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCollectionRepository(testDB)
	return testDB, repo
}

func createCollectionFixtures(t *testing.T, testDB *gorm.DB) (*model.User, *model.Fragrance) {
	user := &model.User{
		Email:        "collector@example.com",
		Username:     "collector",
		PasswordHash: "hashed",
	}
	require.NoError(t, testDB.Create(user).Error)

	fragrance := &model.Fragrance{Name: "Aventus", Brand: "Creed"}
	require.NoError(t, testDB.Create(fragrance).Error)

	return user, fragrance
}

func TestCollectionRepository_CreateAndFindByUser(t *testing.T) {
	testDB, repo := setupCollectionTest(t)
	defer db.CleanupTestDB(testDB)

	user, _ := createCollectionFixtures(t, testDB)

	collection := &model.Collection{
		UserID: user.ID,
		Name:   "Signature scents",
	}
	err := repo.Create(collection)
	assert.NoError(t, err)
	assert.NotZero(t, collection.ID)

	collections, err := repo.FindByUser(user.ID)
	assert.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "Signature scents", collections[0].Name)
}

func TestCollectionRepository_AddItem_RejectsDuplicate(t *testing.T) {
	testDB, repo := setupCollectionTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrance := createCollectionFixtures(t, testDB)

	collection := &model.Collection{UserID: user.ID, Name: "Favorites"}
	require.NoError(t, repo.Create(collection))

	rating := 8
	item := &model.CollectionItem{
		CollectionID:   collection.ID,
		FragranceID:    fragrance.ID,
		PersonalRating: &rating,
		Notes:          "Blind buy, no regrets",
	}
	err := repo.AddItem(item)
	assert.NoError(t, err)

	// Same fragrance twice in one collection hits the unique index.
	duplicate := &model.CollectionItem{
		CollectionID: collection.ID,
		FragranceID:  fragrance.ID,
	}
	err = repo.AddItem(duplicate)
	assert.Error(t, err)
}

func TestCollectionRepository_FindByIDWithItems(t *testing.T) {
	testDB, repo := setupCollectionTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrance := createCollectionFixtures(t, testDB)

	collection := &model.Collection{UserID: user.ID, Name: "Favorites"}
	require.NoError(t, repo.Create(collection))
	require.NoError(t, repo.AddItem(&model.CollectionItem{
		CollectionID: collection.ID,
		FragranceID:  fragrance.ID,
	}))

	found, err := repo.FindByIDWithItems(collection.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	require.NotNil(t, found.Items[0].Fragrance)
	assert.Equal(t, "Aventus", found.Items[0].Fragrance.Name)
}

func TestCollectionRepository_UpdateAndRemoveItem(t *testing.T) {
	testDB, repo := setupCollectionTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrance := createCollectionFixtures(t, testDB)

	collection := &model.Collection{UserID: user.ID, Name: "Favorites"}
	require.NoError(t, repo.Create(collection))
	require.NoError(t, repo.AddItem(&model.CollectionItem{
		CollectionID: collection.ID,
		FragranceID:  fragrance.ID,
	}))

	item, err := repo.FindItem(collection.ID, fragrance.ID)
	require.NoError(t, err)

	rating := 9
	item.PersonalRating = &rating
	item.BottleSize = "100ml"
	err = repo.UpdateItem(item)
	assert.NoError(t, err)

	updated, err := repo.FindItem(collection.ID, fragrance.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.PersonalRating)
	assert.Equal(t, 9, *updated.PersonalRating)
	assert.Equal(t, "100ml", updated.BottleSize)

	err = repo.RemoveItem(collection.ID, fragrance.ID)
	assert.NoError(t, err)

	_, err = repo.FindItem(collection.ID, fragrance.ID)
	assert.Error(t, err)
}

func TestCollectionRepository_Delete_RemovesItems(t *testing.T) {
	testDB, repo := setupCollectionTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrance := createCollectionFixtures(t, testDB)

	collection := &model.Collection{UserID: user.ID, Name: "Favorites"}
	require.NoError(t, repo.Create(collection))
	require.NoError(t, repo.AddItem(&model.CollectionItem{
		CollectionID: collection.ID,
		FragranceID:  fragrance.ID,
	}))

	err := repo.Delete(collection.ID)
	assert.NoError(t, err)

	_, err = repo.FindByID(collection.ID)
	assert.Error(t, err)

	var itemCount int64
	require.NoError(t, testDB.Model(&model.CollectionItem{}).
		Where("collection_id = ?", collection.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestCollectionRepository_CountSaves(t *testing.T) {
	testDB, repo := setupCollectionTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrance := createCollectionFixtures(t, testDB)

	first := &model.Collection{UserID: user.ID, Name: "Favorites"}
	second := &model.Collection{UserID: user.ID, Name: "Wishlist"}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	require.NoError(t, repo.AddItem(&model.CollectionItem{
		CollectionID: first.ID, FragranceID: fragrance.ID,
	}))
	require.NoError(t, repo.AddItem(&model.CollectionItem{
		CollectionID: second.ID, FragranceID: fragrance.ID,
	}))

	count, err := repo.CountSaves(fragrance.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
