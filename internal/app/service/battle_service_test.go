package service

import (
	"testing"

	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/internal/db"
	apperrors "github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupBattleServiceTest(t *testing.T) (*gorm.DB, BattleService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	battleRepo := repository.NewBattleRepository(testDB)
	fragranceRepo := repository.NewFragranceRepository(testDB)
	return testDB, NewBattleService(battleRepo, fragranceRepo)
}

func createBattleServiceFixtures(t *testing.T, testDB *gorm.DB) (*model.User, []model.Fragrance) {
	user := &model.User{
		Email:        "owner@example.com",
		Username:     "owner",
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

func createVoter(t *testing.T, testDB *gorm.DB, username string) *model.User {
	voter := &model.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hashed",
	}
	require.NoError(t, testDB.Create(voter).Error)
	return voter
}

func TestBattleService_CreateBattle(t *testing.T) {
	testDB, battleService := setupBattleServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleServiceFixtures(t, testDB)

	t.Run("Valid battle", func(t *testing.T) {
		battle, err := battleService.CreateBattle(user.ID, "Summer showdown", "Best warm weather pick", []uint{
			fragrances[0].ID, fragrances[1].ID,
		})
		require.NoError(t, err)
		require.NotNil(t, battle)
		assert.Equal(t, model.BattleStatusActive, battle.Status)
		assert.NotEmpty(t, battle.ShareToken)
		require.Len(t, battle.Items, 2)
		assert.Equal(t, 0, battle.Items[0].Position)
		assert.Equal(t, 1, battle.Items[1].Position)
	})

	t.Run("Too few items", func(t *testing.T) {
		_, err := battleService.CreateBattle(user.ID, "Solo", "", []uint{fragrances[0].ID})
		assert.ErrorIs(t, err, ErrInvalidBattleSize)
	})

	t.Run("Too many items", func(t *testing.T) {
		ids := make([]uint, 11)
		for i := range ids {
			ids[i] = uint(i + 1)
		}
		_, err := battleService.CreateBattle(user.ID, "Crowd", "", ids)
		assert.ErrorIs(t, err, ErrInvalidBattleSize)
	})

	t.Run("Duplicate fragrance", func(t *testing.T) {
		_, err := battleService.CreateBattle(user.ID, "Mirror match", "", []uint{
			fragrances[0].ID, fragrances[0].ID,
		})
		assert.ErrorIs(t, err, ErrDuplicateBattleItem)
	})

	t.Run("Unknown fragrance", func(t *testing.T) {
		_, err := battleService.CreateBattle(user.ID, "Ghost entry", "", []uint{
			fragrances[0].ID, 9999,
		})
		assert.ErrorIs(t, err, ErrFragranceNotFound)
	})
}

func TestBattleService_Vote(t *testing.T) {
	testDB, battleService := setupBattleServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleServiceFixtures(t, testDB)
	voter := createVoter(t, testDB, "voter")

	battle, err := battleService.CreateBattle(user.ID, "Showdown", "", []uint{
		fragrances[0].ID, fragrances[1].ID,
	})
	require.NoError(t, err)

	t.Run("First vote counts", func(t *testing.T) {
		updated, err := battleService.Vote(voter.ID, battle.ID, fragrances[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.Items[0].VoteCount)
		assert.Equal(t, 0, updated.Items[1].VoteCount)
	})

	t.Run("Second vote from same user is rejected", func(t *testing.T) {
		_, err := battleService.Vote(voter.ID, battle.ID, fragrances[1].ID)
		assert.ErrorIs(t, err, ErrAlreadyVoted)
	})

	t.Run("Vote for fragrance outside the battle", func(t *testing.T) {
		other := createVoter(t, testDB, "other")
		_, err := battleService.Vote(other.ID, battle.ID, fragrances[2].ID)
		assert.ErrorIs(t, err, ErrFragranceNotInBattle)
	})

	t.Run("Vote on unknown battle", func(t *testing.T) {
		_, err := battleService.Vote(voter.ID, 9999, fragrances[0].ID)
		assert.ErrorIs(t, err, ErrBattleNotFound)
	})

	t.Run("Duplicate insert is a unique violation", func(t *testing.T) {
		// The service pre-checks FindVote, but concurrent requests reach
		// the insert; the duplicate must classify as a unique violation
		// while other errors must not.
		err := testDB.Create(&model.Vote{
			BattleID:    battle.ID,
			UserID:      voter.ID,
			FragranceID: fragrances[0].ID,
		}).Error
		require.Error(t, err)
		assert.True(t, apperrors.IsUniqueViolation(err))
	})
}

func TestBattleService_Vote_StorageFailureIsNotAlreadyVoted(t *testing.T) {
	testDB, battleService := setupBattleServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleServiceFixtures(t, testDB)
	voter := createVoter(t, testDB, "voter")

	battle, err := battleService.CreateBattle(user.ID, "Showdown", "", []uint{
		fragrances[0].ID, fragrances[1].ID,
	})
	require.NoError(t, err)

	require.NoError(t, testDB.Migrator().DropTable(&model.Vote{}))

	_, err = battleService.Vote(voter.ID, battle.ID, fragrances[0].ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyVoted)
}

func TestBattleService_CompleteBattle(t *testing.T) {
	testDB, battleService := setupBattleServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleServiceFixtures(t, testDB)

	t.Run("Single winner", func(t *testing.T) {
		battle, err := battleService.CreateBattle(user.ID, "Showdown", "", []uint{
			fragrances[0].ID, fragrances[1].ID,
		})
		require.NoError(t, err)

		voter := createVoter(t, testDB, "first")
		_, err = battleService.Vote(voter.ID, battle.ID, fragrances[0].ID)
		require.NoError(t, err)

		completed, err := battleService.CompleteBattle(user.ID, battle.ID)
		require.NoError(t, err)
		assert.Equal(t, model.BattleStatusCompleted, completed.Status)
		require.NotNil(t, completed.CompletedAt)
		assert.True(t, completed.Items[0].IsWinner)
		assert.False(t, completed.Items[1].IsWinner)
	})

	t.Run("Tie crowns every top item", func(t *testing.T) {
		battle, err := battleService.CreateBattle(user.ID, "Dead heat", "", []uint{
			fragrances[0].ID, fragrances[1].ID, fragrances[2].ID,
		})
		require.NoError(t, err)

		a := createVoter(t, testDB, "tie-a")
		b := createVoter(t, testDB, "tie-b")
		_, err = battleService.Vote(a.ID, battle.ID, fragrances[0].ID)
		require.NoError(t, err)
		_, err = battleService.Vote(b.ID, battle.ID, fragrances[1].ID)
		require.NoError(t, err)

		completed, err := battleService.CompleteBattle(user.ID, battle.ID)
		require.NoError(t, err)
		assert.True(t, completed.Items[0].IsWinner)
		assert.True(t, completed.Items[1].IsWinner)
		assert.False(t, completed.Items[2].IsWinner)
	})

	t.Run("No votes means no winners", func(t *testing.T) {
		battle, err := battleService.CreateBattle(user.ID, "Crickets", "", []uint{
			fragrances[0].ID, fragrances[1].ID,
		})
		require.NoError(t, err)

		completed, err := battleService.CompleteBattle(user.ID, battle.ID)
		require.NoError(t, err)
		assert.Equal(t, model.BattleStatusCompleted, completed.Status)
		assert.False(t, completed.Items[0].IsWinner)
		assert.False(t, completed.Items[1].IsWinner)
	})

	t.Run("Only the owner completes", func(t *testing.T) {
		battle, err := battleService.CreateBattle(user.ID, "Owner only", "", []uint{
			fragrances[0].ID, fragrances[1].ID,
		})
		require.NoError(t, err)

		stranger := createVoter(t, testDB, "stranger")
		_, err = battleService.CompleteBattle(stranger.ID, battle.ID)
		assert.ErrorIs(t, err, ErrBattleAccessDenied)
	})

	t.Run("Completed battle is immutable", func(t *testing.T) {
		battle, err := battleService.CreateBattle(user.ID, "Done deal", "", []uint{
			fragrances[0].ID, fragrances[1].ID,
		})
		require.NoError(t, err)

		_, err = battleService.CompleteBattle(user.ID, battle.ID)
		require.NoError(t, err)

		// No new votes, no second completion, no cancellation.
		late := createVoter(t, testDB, "latecomer")
		_, err = battleService.Vote(late.ID, battle.ID, fragrances[0].ID)
		assert.ErrorIs(t, err, ErrBattleNotActive)

		_, err = battleService.CompleteBattle(user.ID, battle.ID)
		assert.ErrorIs(t, err, ErrBattleNotActive)

		_, err = battleService.CancelBattle(user.ID, battle.ID)
		assert.ErrorIs(t, err, ErrBattleNotActive)
	})
}

func TestBattleService_CancelBattle(t *testing.T) {
	testDB, battleService := setupBattleServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleServiceFixtures(t, testDB)

	battle, err := battleService.CreateBattle(user.ID, "Changed my mind", "", []uint{
		fragrances[0].ID, fragrances[1].ID,
	})
	require.NoError(t, err)

	cancelled, err := battleService.CancelBattle(user.ID, battle.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BattleStatusCancelled, cancelled.Status)

	voter := createVoter(t, testDB, "voter")
	_, err = battleService.Vote(voter.ID, battle.ID, fragrances[0].ID)
	assert.ErrorIs(t, err, ErrBattleNotActive)
}

func TestBattleService_GetBattleByShareToken(t *testing.T) {
	testDB, battleService := setupBattleServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleServiceFixtures(t, testDB)

	battle, err := battleService.CreateBattle(user.ID, "Shared", "", []uint{
		fragrances[0].ID, fragrances[1].ID,
	})
	require.NoError(t, err)

	found, err := battleService.GetBattleByShareToken(battle.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, battle.ID, found.ID)
	assert.Len(t, found.Items, 2)

	_, err = battleService.GetBattleByShareToken("missing-token")
	assert.ErrorIs(t, err, ErrBattleNotFound)
}

func TestBattleService_DeleteBattle(t *testing.T) {
	testDB, battleService := setupBattleServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, fragrances := createBattleServiceFixtures(t, testDB)

	battle, err := battleService.CreateBattle(user.ID, "Short lived", "", []uint{
		fragrances[0].ID, fragrances[1].ID,
	})
	require.NoError(t, err)

	stranger := createVoter(t, testDB, "stranger")
	err = battleService.DeleteBattle(stranger.ID, battle.ID)
	assert.ErrorIs(t, err, ErrBattleAccessDenied)

	err = battleService.DeleteBattle(user.ID, battle.ID)
	require.NoError(t, err)

	_, err = battleService.GetBattle(battle.ID)
	assert.ErrorIs(t, err, ErrBattleNotFound)
}
