package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pantry/internal/models"

	"gorm.io/gorm"
)

// labelTable describes an owned lookup table (tags, ingredients) and its recipe junction.
type labelTable struct {
	table        string
	junction     string
	junctionFK   string
	resourceName string
	field        string
}

var (
	tagTable = labelTable{
		table:        "tags",
		junction:     "recipe_tags",
		junctionFK:   "tag_id",
		resourceName: "Tag",
		field:        "tags",
	}
	ingredientTable = labelTable{
		table:        "ingredients",
		junction:     "recipe_ingredients",
		junctionFK:   "ingredient_id",
		resourceName: "Ingredient",
		field:        "ingredients",
	}
)

// listScope restricts a label query to ownerID and, when assignedOnly, to rows
// linked to at least one of the owner's recipes. The IN subquery keeps each row once.
func (t labelTable) listScope(db *gorm.DB, ownerID uint, assignedOnly bool) *gorm.DB {
	q := db.Table(t.table).Where(t.table+".user_id = ?", ownerID)
	if assignedOnly {
		assigned := db.Session(&gorm.Session{NewDB: true}).
			Table(t.junction).
			Select(t.junction+"."+t.junctionFK).
			Joins("JOIN recipes ON recipes.id = "+t.junction+".recipe_id").
			Where("recipes.user_id = ?", ownerID)
		q = q.Where(t.table+".id IN (?)", assigned)
	}
	return q.Order(t.table + ".name DESC").Order(t.table + ".id DESC")
}

// checkOwned returns a validation error naming any ids not owned by ownerID.
func (t labelTable) checkOwned(ctx context.Context, db *gorm.DB, ownerID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := db.WithContext(ctx).Table(t.table).
		Where("user_id = ? AND id IN ?", ownerID, ids).
		Pluck("id", &found).Error; err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}

	owned := make(map[uint]struct{}, len(found))
	for _, id := range found {
		owned[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })

	parts := make([]string, 0, len(missing))
	for _, id := range missing {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	msg := fmt.Sprintf("Invalid pk(s) %s - object does not exist.", strings.Join(parts, ", "))
	return models.NewValidationError("Invalid " + t.field).WithField(t.field, msg)
}

// deleteJunctionRows removes every recipe link to label id.
func (t labelTable) deleteJunctionRows(tx *gorm.DB, id uint) error {
	return tx.Exec("DELETE FROM "+t.junction+" WHERE "+t.junctionFK+" = ?", id).Error
}
