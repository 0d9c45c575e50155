package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupBattleTest(t *testing.T) (*gorm.DB, BattleRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewBattleRepository(testDB)
	return testDB, repo
}

func createBattleFixtures(t *testing.T, testDB *gorm.DB) (*model.User, []model.Fragrance) {
	user := &model.User{
		Email:        "voter@example.com",
		Username:     "voter",
		PasswordHash: "hashed",
	}
	require.NoError(t, testDB.Create(user).Error)

	fragrances := []model.Fragrance{
		{Name: "Aventus", Brand: "Creed"},
		{Name: "Eros", Brand: "Versace"},
		{Name: "Sauvage", Brand: "Dior"},
	}
	for i := range fragrances {
		require.NoError(t, testDB.Create(&fragrances[i]).Error)
	}
	return user, fragrances
}

func newTestBattle(user *model.User, fragrances []model.Fragrance) *model.Battle {
	battle := &model.Battle{
		UserID:     user.ID,
		Title:      "Summer showdown",
		ShareToken: uuid.NewString(),
	}
	for i, f := range fragrances {
		battle.Items = append(battle.Items, model.BattleItem{
			FragranceID: f.ID,
			Position:    i,
		})
	}
	return battle
}

func TestBattleRepository_Create(t *testing.T) {
	testDB, repo := setupBattleTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleFixtures(t, testDB)
	battle := newTestBattle(user, fragrances[:2])

	err := repo.Create(battle)
	assert.NoError(t, err)
	assert.NotZero(t, battle.ID)

	// Items are persisted with the battle in the same transaction.
	found, err := repo.FindByIDWithItems(battle.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, model.BattleStatusActive, found.Status)
	require.NotNil(t, found.Items[0].Fragrance)
	assert.Equal(t, "Aventus", found.Items[0].Fragrance.Name)
}

func TestBattleRepository_FindByIDWithItems_OrdersByPosition(t *testing.T) {
	testDB, repo := setupBattleTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleFixtures(t, testDB)
	battle := &model.Battle{
		UserID:     user.ID,
		Title:      "Out of order",
		ShareToken: uuid.NewString(),
		Items: []model.BattleItem{
			{FragranceID: fragrances[0].ID, Position: 2},
			{FragranceID: fragrances[1].ID, Position: 0},
			{FragranceID: fragrances[2].ID, Position: 1},
		},
	}
	require.NoError(t, repo.Create(battle))

	found, err := repo.FindByIDWithItems(battle.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 3)
	assert.Equal(t, fragrances[1].ID, found.Items[0].FragranceID)
	assert.Equal(t, fragrances[2].ID, found.Items[1].FragranceID)
	assert.Equal(t, fragrances[0].ID, found.Items[2].FragranceID)
}

func TestBattleRepository_FindByShareToken(t *testing.T) {
	testDB, repo := setupBattleTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleFixtures(t, testDB)
	battle := newTestBattle(user, fragrances[:2])
	require.NoError(t, repo.Create(battle))

	found, err := repo.FindByShareToken(battle.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, battle.ID, found.ID)
	assert.Len(t, found.Items, 2)

	_, err = repo.FindByShareToken("no-such-token")
	assert.Error(t, err)
}

func TestBattleRepository_FindByUser_FiltersByStatus(t *testing.T) {
	testDB, repo := setupBattleTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleFixtures(t, testDB)

	active := newTestBattle(user, fragrances[:2])
	require.NoError(t, repo.Create(active))

	completed := newTestBattle(user, fragrances[1:])
	completed.Status = model.BattleStatusCompleted
	require.NoError(t, repo.Create(completed))

	all, err := repo.FindByUser(user.ID, nil)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	status := model.BattleStatusCompleted
	onlyCompleted, err := repo.FindByUser(user.ID, &status)
	assert.NoError(t, err)
	require.Len(t, onlyCompleted, 1)
	assert.Equal(t, completed.ID, onlyCompleted[0].ID)
}

func TestBattleRepository_Votes(t *testing.T) {
	testDB, repo := setupBattleTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleFixtures(t, testDB)
	battle := newTestBattle(user, fragrances[:2])
	require.NoError(t, repo.Create(battle))

	vote := &model.Vote{
		BattleID:    battle.ID,
		UserID:      user.ID,
		FragranceID: fragrances[0].ID,
	}
	err := repo.CreateVote(vote)
	assert.NoError(t, err)

	// Second vote from the same user hits the unique index.
	duplicate := &model.Vote{
		BattleID:    battle.ID,
		UserID:      user.ID,
		FragranceID: fragrances[1].ID,
	}
	err = repo.CreateVote(duplicate)
	assert.Error(t, err)

	found, err := repo.FindVote(battle.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, fragrances[0].ID, found.FragranceID)

	err = repo.IncrementVoteCount(battle.ID, fragrances[0].ID)
	assert.NoError(t, err)

	withItems, err := repo.FindByIDWithItems(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, withItems.Items[0].VoteCount)
	assert.Equal(t, 0, withItems.Items[1].VoteCount)
}

func TestBattleRepository_WinsByFragrance(t *testing.T) {
	testDB, repo := setupBattleTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleFixtures(t, testDB)

	completed := newTestBattle(user, fragrances[:2])
	completed.Status = model.BattleStatusCompleted
	require.NoError(t, repo.Create(completed))

	// Winner flag on an ACTIVE battle must not count.
	active := newTestBattle(user, fragrances[1:])
	require.NoError(t, repo.Create(active))

	winner := completed.Items[0]
	winner.IsWinner = true
	require.NoError(t, repo.UpdateItem(&winner))

	activeWinner := active.Items[0]
	activeWinner.IsWinner = true
	require.NoError(t, repo.UpdateItem(&activeWinner))

	wins, err := repo.WinsByFragrance()
	require.NoError(t, err)
	assert.Equal(t, int64(1), wins[fragrances[0].ID])
	assert.Zero(t, wins[fragrances[1].ID])
}

func TestBattleRepository_VotesByFragrance(t *testing.T) {
	testDB, repo := setupBattleTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleFixtures(t, testDB)

	other := &model.User{
		Email:        "second@example.com",
		Username:     "second",
		PasswordHash: "hashed",
	}
	require.NoError(t, testDB.Create(other).Error)

	battle := newTestBattle(user, fragrances[:2])
	require.NoError(t, repo.Create(battle))

	require.NoError(t, repo.CreateVote(&model.Vote{
		BattleID: battle.ID, UserID: user.ID, FragranceID: fragrances[0].ID,
	}))
	require.NoError(t, repo.CreateVote(&model.Vote{
		BattleID: battle.ID, UserID: other.ID, FragranceID: fragrances[0].ID,
	}))

	votes, err := repo.VotesByFragrance()
	require.NoError(t, err)
	assert.Equal(t, int64(2), votes[fragrances[0].ID])
	assert.Zero(t, votes[fragrances[1].ID])
}

func TestBattleRepository_Delete(t *testing.T) {
	testDB, repo := setupBattleTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleFixtures(t, testDB)
	battle := newTestBattle(user, fragrances[:2])
	require.NoError(t, repo.Create(battle))

	require.NoError(t, repo.CreateVote(&model.Vote{
		BattleID: battle.ID, UserID: user.ID, FragranceID: fragrances[0].ID,
	}))

	err := repo.Delete(battle.ID)
	assert.NoError(t, err)

	_, err = repo.FindByID(battle.ID)
	assert.Error(t, err)

	var voteCount int64
	require.NoError(t, testDB.Model(&model.Vote{}).Where("battle_id = ?", battle.ID).Count(&voteCount).Error)
	assert.Zero(t, voteCount)
}
