package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/errs"
	"github.com/hearthhub/household_backend/models"
	"github.com/hearthhub/household_backend/services"
	"github.com/hearthhub/household_backend/websocket"
)

type CreateShoppingItemInput struct {
	FamilyID string   `json:"family_id"`
	Name     string   `json:"name" binding:"required" example:"Milk"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Category *string  `json:"category"`
	RecipeID *string  `json:"recipe_id"`
}

type UpdateShoppingItemInput struct {
	Name      *string  `json:"name"`
	Quantity  *float64 `json:"quantity"`
	Unit      *string  `json:"unit"`
	Category  *string  `json:"category"`
	Purchased *bool    `json:"purchased"`
}

func loadShoppingItem(userID, itemID string) (*models.ShoppingItem, error) {
	var item models.ShoppingItem
	if err := database.DB.Preload("CreatedBy").Preload("Recipe").
		First(&item, "id = ?", itemID).Error; err != nil {
		return nil, errs.New(errs.ErrNotFound, "shopping item not found")
	}
	if err := services.EnsureMember(userID, item.FamilyID); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetShoppingItems godoc
// @Summary List shopping items of a family
// @Description Lists items for the given family, or the caller's first family when family_id is omitted
// @Tags shopping
// @Produce json
// @Security BearerAuth
// @Param family_id query string false "Family ID"
// @Success 200 {object} map[string]interface{} "List of shopping items"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/shopping [get]
func GetShoppingItems(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	familyID := c.Query("family_id")
	if familyID == "" {
		var err error
		familyID, err = defaultFamilyID(userID)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"items": []models.ShoppingItem{}})
			return
		}
	}

	if err := services.EnsureMember(userID, familyID); err != nil {
		respondError(c, err)
		return
	}

	var items []models.ShoppingItem
	if err := database.DB.Preload("CreatedBy").Preload("Recipe").
		Where("family_id = ?", familyID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shopping items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateShoppingItem godoc
// @Summary Add a shopping item
// @Tags shopping
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body CreateShoppingItemInput true "Item creation"
// @Success 201 {object} map[string]interface{} "Item created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/shopping [post]
func CreateShoppingItem(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input CreateShoppingItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	familyID := input.FamilyID
	if familyID == "" {
		var err error
		familyID, err = defaultFamilyID(userID)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	if err := services.EnsureMember(userID, familyID); err != nil {
		respondError(c, err)
		return
	}

	item := models.ShoppingItem{
		FamilyID:    familyID,
		Name:        input.Name,
		Quantity:    input.Quantity,
		Unit:        input.Unit,
		Category:    input.Category,
		RecipeID:    input.RecipeID,
		CreatedByID: userID,
	}

	if err := database.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shopping item"})
		return
	}

	database.DB.Preload("CreatedBy").Preload("Recipe").First(&item, "id = ?", item.ID)

	websocket.BroadcastToFamily(familyID, "shopping:created", item)

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// UpdateShoppingItem godoc
// @Summary Update a shopping item
// @Tags shopping
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param item body UpdateShoppingItemInput true "Item update"
// @Success 200 {object} map[string]interface{} "Updated item"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Item not found"
// @Router /api/shopping/{id} [patch]
func UpdateShoppingItem(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	item, err := loadShoppingItem(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input UpdateShoppingItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Quantity != nil {
		updates["quantity"] = *input.Quantity
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Purchased != nil {
		updates["purchased"] = *input.Purchased
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&models.ShoppingItem{}).Where("id = ?", item.ID).
			Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shopping item"})
			return
		}
	}

	database.DB.Preload("CreatedBy").Preload("Recipe").First(item, "id = ?", item.ID)

	websocket.BroadcastToFamily(item.FamilyID, "shopping:updated", item)

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeleteShoppingItem godoc
// @Summary Delete a shopping item
// @Tags shopping
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 204 "Item deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Item not found"
// @Router /api/shopping/{id} [delete]
func DeleteShoppingItem(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	item, err := loadShoppingItem(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := database.DB.Delete(&models.ShoppingItem{}, "id = ?", item.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete shopping item"})
		return
	}

	websocket.BroadcastToFamily(item.FamilyID, "shopping:deleted", gin.H{"id": item.ID, "family_id": item.FamilyID})

	c.Status(http.StatusNoContent)
}
