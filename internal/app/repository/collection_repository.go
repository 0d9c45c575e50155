package repository

import (
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"gorm.io/gorm"
)

type CollectionRepository interface {
	Create(collection *model.Collection) error
	FindByUser(userID uint) ([]model.Collection, error)
	FindByID(id uint) (*model.Collection, error)
	FindByIDWithItems(id uint) (*model.Collection, error)
	Update(collection *model.Collection) error
	Delete(id uint) error
	CountByUser(userID uint) (int64, error)

	AddItem(item *model.CollectionItem) error
	FindItem(collectionID, fragranceID uint) (*model.CollectionItem, error)
	UpdateItem(item *model.CollectionItem) error
	RemoveItem(collectionID, fragranceID uint) error
	CountSaves(fragranceID uint) (int64, error)
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(collection *model.Collection) error {
	logger.Debug("Creating collection in database", map[string]interface{}{
		"user_id": collection.UserID,
		"name":    collection.Name,
	})

	if err := r.db.Create(collection).Error; err != nil {
		logger.Error("Failed to create collection in database", err, map[string]interface{}{
			"user_id": collection.UserID,
		})
		return err
	}
	return nil
}

func (r *collectionRepository) FindByUser(userID uint) ([]model.Collection, error) {
	var collections []model.Collection
	err := r.db.Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at DESC").
		Find(&collections).Error
	if err != nil {
		logger.Error("Failed to find collections by user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return collections, nil
}

func (r *collectionRepository) FindByID(id uint) (*model.Collection, error) {
	var collection model.Collection
	if err := r.db.First(&collection, id).Error; err != nil {
		logger.Error("Failed to find collection by ID in database", err, map[string]interface{}{
			"collection_id": id,
		})
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepository) FindByIDWithItems(id uint) (*model.Collection, error) {
	var collection model.Collection
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("collection_items.created_at ASC")
	}).Preload("Items.Fragrance").First(&collection, id).Error
	if err != nil {
		logger.Error("Failed to find collection with items in database", err, map[string]interface{}{
			"collection_id": id,
		})
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepository) Update(collection *model.Collection) error {
	if err := r.db.Save(collection).Error; err != nil {
		logger.Error("Failed to update collection in database", err, map[string]interface{}{
			"collection_id": collection.ID,
		})
		return err
	}
	return nil
}

func (r *collectionRepository) Delete(id uint) error {
	// Items go first; SQLite in tests does not enforce the cascade that
	// Postgres handles through the FK constraint.
	if err := r.db.Where("collection_id = ?", id).Delete(&model.CollectionItem{}).Error; err != nil {
		logger.Error("Failed to delete collection items from database", err, map[string]interface{}{
			"collection_id": id,
		})
		return err
	}
	if err := r.db.Delete(&model.Collection{}, id).Error; err != nil {
		logger.Error("Failed to delete collection from database", err, map[string]interface{}{
			"collection_id": id,
		})
		return err
	}
	return nil
}

func (r *collectionRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Collection{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count collections by user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return count, nil
}

func (r *collectionRepository) AddItem(item *model.CollectionItem) error {
	logger.Debug("Adding item to collection in database", map[string]interface{}{
		"collection_id": item.CollectionID,
		"fragrance_id":  item.FragranceID,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to add item to collection in database", err, map[string]interface{}{
			"collection_id": item.CollectionID,
			"fragrance_id":  item.FragranceID,
		})
		return err
	}
	return nil
}

func (r *collectionRepository) FindItem(collectionID, fragranceID uint) (*model.CollectionItem, error) {
	var item model.CollectionItem
	err := r.db.Where("collection_id = ? AND fragrance_id = ?", collectionID, fragranceID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *collectionRepository) UpdateItem(item *model.CollectionItem) error {
	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update collection item in database", err, map[string]interface{}{
			"collection_id": item.CollectionID,
			"fragrance_id":  item.FragranceID,
		})
		return err
	}
	return nil
}

func (r *collectionRepository) RemoveItem(collectionID, fragranceID uint) error {
	err := r.db.Where("collection_id = ? AND fragrance_id = ?", collectionID, fragranceID).
		Delete(&model.CollectionItem{}).Error
	if err != nil {
		logger.Error("Failed to remove item from collection in database", err, map[string]interface{}{
			"collection_id": collectionID,
			"fragrance_id":  fragranceID,
		})
		return err
	}
	return nil
}

func (r *collectionRepository) CountSaves(fragranceID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.CollectionItem{}).
		Where("fragrance_id = ?", fragranceID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count collection saves in database", err, map[string]interface{}{
			"fragrance_id": fragranceID,
		})
		return 0, err
	}
	return count, nil
}
