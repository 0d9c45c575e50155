package service

import (
	"errors"

	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCollectionNotFound      = errors.New("collection not found")
	ErrCollectionAccessDenied  = errors.New("collection access denied")
	ErrCollectionItemNotFound  = errors.New("collection item not found")
	ErrDuplicateCollectionItem = errors.New("fragrance already in collection")
	ErrInvalidPersonalRating   = errors.New("personal rating must be between 1 and 10")
)

// CollectionItemInput carries the per-item fields a user can set.
type CollectionItemInput struct {
	PersonalRating *int
	Notes          string
	BottleSize     string
}

type CollectionService interface {
	ListCollections(userID uint) ([]model.Collection, error)
	GetCollection(userID, collectionID uint) (*model.Collection, error)
	CreateCollection(userID uint, name, description string) (*model.Collection, error)
	UpdateCollection(userID, collectionID uint, name, description string) (*model.Collection, error)
	DeleteCollection(userID, collectionID uint) error

	AddItem(userID, collectionID, fragranceID uint, input CollectionItemInput) (*model.CollectionItem, error)
	UpdateItem(userID, collectionID, fragranceID uint, input CollectionItemInput) (*model.CollectionItem, error)
	RemoveItem(userID, collectionID, fragranceID uint) error
}

type collectionService struct {
	collectionRepo repository.CollectionRepository
	fragranceRepo  repository.FragranceRepository
}

func NewCollectionService(
	collectionRepo repository.CollectionRepository,
	fragranceRepo repository.FragranceRepository,
) CollectionService {
	return &collectionService{
		collectionRepo: collectionRepo,
		fragranceRepo:  fragranceRepo,
	}
}

// ownedCollection loads a collection and verifies the caller owns it.
func (s *collectionService) ownedCollection(userID, collectionID uint) (*model.Collection, error) {
	collection, err := s.collectionRepo.FindByID(collectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Collection not found", map[string]interface{}{
				"collection_id": collectionID,
			})
			return nil, ErrCollectionNotFound
		}
		logger.Error("Failed to fetch collection", err, map[string]interface{}{
			"collection_id": collectionID,
		})
		return nil, err
	}

	if collection.UserID != userID {
		logger.Warn("Collection access denied", map[string]interface{}{
			"collection_id": collectionID,
			"owner_id":      collection.UserID,
			"user_id":       userID,
		})
		return nil, ErrCollectionAccessDenied
	}

	return collection, nil
}

func (s *collectionService) ListCollections(userID uint) ([]model.Collection, error) {
	logger.Debug("Listing collections", map[string]interface{}{
		"user_id": userID,
	})

	collections, err := s.collectionRepo.FindByUser(userID)
	if err != nil {
		logger.Error("Failed to list collections", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return collections, nil
}

func (s *collectionService) GetCollection(userID, collectionID uint) (*model.Collection, error) {
	if _, err := s.ownedCollection(userID, collectionID); err != nil {
		return nil, err
	}

	collection, err := s.collectionRepo.FindByIDWithItems(collectionID)
	if err != nil {
		logger.Error("Failed to fetch collection with items", err, map[string]interface{}{
			"collection_id": collectionID,
		})
		return nil, err
	}
	return collection, nil
}

func (s *collectionService) CreateCollection(userID uint, name, description string) (*model.Collection, error) {
	logger.Info("Creating collection", map[string]interface{}{
		"user_id": userID,
		"name":    name,
	})

	collection := &model.Collection{
		UserID:      userID,
		Name:        name,
		Description: description,
	}

	if err := s.collectionRepo.Create(collection); err != nil {
		logger.Error("Failed to create collection", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Collection created successfully", map[string]interface{}{
		"collection_id": collection.ID,
		"user_id":       userID,
	})

	return collection, nil
}

func (s *collectionService) UpdateCollection(userID, collectionID uint, name, description string) (*model.Collection, error) {
	collection, err := s.ownedCollection(userID, collectionID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		collection.Name = name
	}
	if description != "" {
		collection.Description = description
	}

	if err := s.collectionRepo.Update(collection); err != nil {
		logger.Error("Failed to update collection", err, map[string]interface{}{
			"collection_id": collectionID,
		})
		return nil, err
	}

	logger.Info("Collection updated successfully", map[string]interface{}{
		"collection_id": collectionID,
	})

	return collection, nil
}

func (s *collectionService) DeleteCollection(userID, collectionID uint) error {
	if _, err := s.ownedCollection(userID, collectionID); err != nil {
		return err
	}

	if err := s.collectionRepo.Delete(collectionID); err != nil {
		logger.Error("Failed to delete collection", err, map[string]interface{}{
			"collection_id": collectionID,
		})
		return err
	}

	logger.Info("Collection deleted successfully", map[string]interface{}{
		"collection_id": collectionID,
		"user_id":       userID,
	})
	return nil
}

func (s *collectionService) AddItem(userID, collectionID, fragranceID uint, input CollectionItemInput) (*model.CollectionItem, error) {
	logger.Info("Adding item to collection", map[string]interface{}{
		"collection_id": collectionID,
		"fragrance_id":  fragranceID,
		"user_id":       userID,
	})

	if err := validatePersonalRating(input.PersonalRating); err != nil {
		return nil, err
	}

	if _, err := s.ownedCollection(userID, collectionID); err != nil {
		return nil, err
	}

	if _, err := s.fragranceRepo.FindByID(fragranceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Fragrance not found for collection item", map[string]interface{}{
				"fragrance_id": fragranceID,
			})
			return nil, ErrFragranceNotFound
		}
		return nil, err
	}

	if _, err := s.collectionRepo.FindItem(collectionID, fragranceID); err == nil {
		logger.Warn("Fragrance already in collection", map[string]interface{}{
			"collection_id": collectionID,
			"fragrance_id":  fragranceID,
		})
		return nil, ErrDuplicateCollectionItem
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.CollectionItem{
		CollectionID:   collectionID,
		FragranceID:    fragranceID,
		PersonalRating: input.PersonalRating,
		Notes:          input.Notes,
		BottleSize:     input.BottleSize,
	}

	if err := s.collectionRepo.AddItem(item); err != nil {
		logger.Error("Failed to add item to collection", err, map[string]interface{}{
			"collection_id": collectionID,
			"fragrance_id":  fragranceID,
		})
		return nil, err
	}

	logger.Info("Item added to collection", map[string]interface{}{
		"collection_id": collectionID,
		"fragrance_id":  fragranceID,
	})

	return item, nil
}

func (s *collectionService) UpdateItem(userID, collectionID, fragranceID uint, input CollectionItemInput) (*model.CollectionItem, error) {
	if err := validatePersonalRating(input.PersonalRating); err != nil {
		return nil, err
	}

	if _, err := s.ownedCollection(userID, collectionID); err != nil {
		return nil, err
	}

	item, err := s.collectionRepo.FindItem(collectionID, fragranceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Collection item not found", map[string]interface{}{
				"collection_id": collectionID,
				"fragrance_id":  fragranceID,
			})
			return nil, ErrCollectionItemNotFound
		}
		return nil, err
	}

	if input.PersonalRating != nil {
		item.PersonalRating = input.PersonalRating
	}
	if input.Notes != "" {
		item.Notes = input.Notes
	}
	if input.BottleSize != "" {
		item.BottleSize = input.BottleSize
	}

	if err := s.collectionRepo.UpdateItem(item); err != nil {
		logger.Error("Failed to update collection item", err, map[string]interface{}{
			"collection_id": collectionID,
			"fragrance_id":  fragranceID,
		})
		return nil, err
	}

	logger.Info("Collection item updated", map[string]interface{}{
		"collection_id": collectionID,
		"fragrance_id":  fragranceID,
	})

	return item, nil
}

func (s *collectionService) RemoveItem(userID, collectionID, fragranceID uint) error {
	if _, err := s.ownedCollection(userID, collectionID); err != nil {
		return err
	}

	if _, err := s.collectionRepo.FindItem(collectionID, fragranceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollectionItemNotFound
		}
		return err
	}

	if err := s.collectionRepo.RemoveItem(collectionID, fragranceID); err != nil {
		logger.Error("Failed to remove item from collection", err, map[string]interface{}{
			"collection_id": collectionID,
			"fragrance_id":  fragranceID,
		})
		return err
	}

	logger.Info("Item removed from collection", map[string]interface{}{
		"collection_id": collectionID,
		"fragrance_id":  fragranceID,
	})
	return nil
}

func validatePersonalRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < 1 || *rating > 10 {
		return ErrInvalidPersonalRating
	}
	return nil
}
