package main

import (
	"errors"

	"gorm.io/gorm"
)

// Capabilities mirror the question-bank permission model: viewing and
// exporting are read capabilities, editing and importing can destroy data.
const (
	CapView   = "dataseteditor:view"
	CapEdit   = "dataseteditor:edit"
	CapExport = "dataseteditor:export"
	CapImport = "dataseteditor:import"
)

var roleCapabilities = map[string]map[string]bool{
	"editingteacher": {CapView: true, CapEdit: true, CapExport: true, CapImport: true},
	"teacher":        {CapView: true, CapExport: true},
	"student":        {},
}

// HasCapability reports whether the user holds the capability in the given
// course. Unknown roles grant nothing.
func HasCapability(db *gorm.DB, userID, courseID uint, capability string) (bool, error) {
	var enr Enrolment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return roleCapabilities[enr.Role][capability], nil
}

// CategoryContext resolves a category to its owning context, or
// ErrCategoryNotFound for an unknown category id.
func CategoryContext(db *gorm.DB, categoryID uint) (*Category, *Context, error) {
	var cat Category
	if err := db.First(&cat, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}
	var ctx Context
	if err := db.First(&ctx, cat.ContextID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}
	return &cat, &ctx, nil
}

// Entity kinds accepted by AssertOwnedByCategory.
const (
	KindWildcard = "wildcard"
	KindItem     = "item"
)

// AssertOwnedByCategory verifies that every id resolves to the claimed
// category: wildcards directly, items via their definition. Ids arrive from
// client-controlled form input, so a missing id is treated the same as one
// owned by another category.
func AssertOwnedByCategory(tx *gorm.DB, kind string, ids []uint, categoryID uint) error {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	owner := make(map[uint]uint, len(unique)) // entity id -> category id

	switch kind {
	case KindWildcard:
		var defs []DatasetDefinition
		if err := tx.Where("id IN ?", unique).Find(&defs).Error; err != nil {
			return err
		}
		for _, d := range defs {
			owner[d.ID] = d.CategoryID
		}

	case KindItem:
		var items []DatasetItem
		if err := tx.Where("id IN ?", unique).Find(&items).Error; err != nil {
			return err
		}
		defIDs := make([]uint, 0, len(items))
		for _, it := range items {
			defIDs = append(defIDs, it.DefinitionID)
		}
		var defs []DatasetDefinition
		if len(defIDs) > 0 {
			if err := tx.Where("id IN ?", defIDs).Find(&defs).Error; err != nil {
				return err
			}
		}
		defCat := make(map[uint]uint, len(defs))
		for _, d := range defs {
			defCat[d.ID] = d.CategoryID
		}
		for _, it := range items {
			owner[it.ID] = defCat[it.DefinitionID]
		}

	default:
		return errors.New("unknown entity kind: " + kind)
	}

	for _, id := range unique {
		if owner[id] != categoryID {
			return &OwnershipError{Kind: kind, ID: id, CategoryID: categoryID}
		}
	}
	return nil
}
