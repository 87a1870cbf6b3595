package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/errs"
	"github.com/hearthhub/household_backend/models"
	"github.com/hearthhub/household_backend/services"
	"gorm.io/gorm"
)

type RecipeIngredientInput struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity"`
	Unit     *string `json:"unit"`
	Notes    *string `json:"notes"`
	Order    *int    `json:"order"`
}

type CreateRecipeInput struct {
	FamilyID     *string                 `json:"family_id"`
	Name         string                  `json:"name" binding:"required" example:"Pancakes"`
	ImageURL     *string                 `json:"image_url"`
	Category     *string                 `json:"category"`
	Servings     *int                    `json:"servings"`
	Emoji        *string                 `json:"emoji"`
	Instructions *string                 `json:"instructions"`
	IsPublic     bool                    `json:"is_public"`
	Ingredients  []RecipeIngredientInput `json:"ingredients"`
}

type UpdateRecipeInput struct {
	Name         *string                  `json:"name"`
	ImageURL     *string                  `json:"image_url"`
	Category     *string                  `json:"category"`
	Servings     *int                     `json:"servings"`
	Emoji        *string                  `json:"emoji"`
	Instructions *string                  `json:"instructions"`
	IsPublic     *bool                    `json:"is_public"`
	Ingredients  *[]RecipeIngredientInput `json:"ingredients"`
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.Preload("CreatedBy").
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC")
		})
}

// loadRecipe fetches a recipe and verifies the caller may see it: family
// recipes need membership, public catalog recipes are open to everyone.
func loadRecipe(userID, recipeID string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(database.DB).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, errs.New(errs.ErrNotFound, "recipe not found")
	}
	if recipe.FamilyID != nil {
		if err := services.EnsureMember(userID, *recipe.FamilyID); err != nil {
			return nil, err
		}
	} else if !recipe.IsPublic {
		return nil, errs.New(errs.ErrNotFound, "recipe not found")
	}
	return &recipe, nil
}

// canEditRecipe: family recipes are editable by any member (already checked by
// loadRecipe); public catalog recipes only by their author.
func canEditRecipe(userID string, recipe *models.Recipe) error {
	if recipe.FamilyID == nil && recipe.CreatedByID != userID {
		return errs.New(errs.ErrNotFound, "recipe not found")
	}
	return nil
}

// GetRecipes godoc
// @Summary List recipes visible to the authenticated user
// @Description Returns the family's own recipes plus the public catalog, with optional category and name filters
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param family_id query string false "Family ID"
// @Param category query string false "Category filter"
// @Param search query string false "Name substring filter"
// @Success 200 {object} map[string]interface{} "List of recipes"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/recipes [get]
func GetRecipes(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	familyID := c.Query("family_id")
	if familyID == "" {
		familyID, _ = defaultFamilyID(userID)
	}

	query := preloadRecipe(database.DB)
	if familyID != "" {
		if err := services.EnsureMember(userID, familyID); err != nil {
			respondError(c, err)
			return
		}
		query = query.Where("(family_id = ? AND is_public = ?) OR (family_id IS NULL AND is_public = ?)",
			familyID, false, true)
	} else {
		query = query.Where("family_id IS NULL AND is_public = ?", true)
	}

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var recipes []models.Recipe
	if err := query.Order("created_at DESC").Find(&recipes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe godoc
// @Summary Get a recipe by ID
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Success 200 {object} map[string]interface{} "Recipe details"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Recipe not found"
// @Router /api/recipes/{id} [get]
func GetRecipe(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	recipe, err := loadRecipe(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipe body CreateRecipeInput true "Recipe creation"
// @Success 201 {object} map[string]interface{} "Recipe created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/recipes [post]
func CreateRecipe(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input CreateRecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	familyID := input.FamilyID
	if familyID == nil {
		if id, err := defaultFamilyID(userID); err == nil {
			familyID = &id
		}
	}
	if familyID != nil {
		if err := services.EnsureMember(userID, *familyID); err != nil {
			respondError(c, err)
			return
		}
	}

	servings := 4
	if input.Servings != nil {
		servings = *input.Servings
	}

	recipe := models.Recipe{
		FamilyID:     familyID,
		Name:         input.Name,
		ImageURL:     input.ImageURL,
		Category:     input.Category,
		Servings:     servings,
		Emoji:        input.Emoji,
		Instructions: input.Instructions,
		IsPublic:     input.IsPublic,
		CreatedByID:  userID,
	}
	for i, ing := range input.Ingredients {
		order := i
		if ing.Order != nil {
			order = *ing.Order
		}
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Notes:    ing.Notes,
			Order:    order,
		})
	}

	if err := database.DB.Create(&recipe).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	preloadRecipe(database.DB).First(&recipe, "id = ?", recipe.ID)

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Scalar fields are patched; when ingredients are sent the whole list is replaced
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Param recipe body UpdateRecipeInput true "Recipe update"
// @Success 200 {object} map[string]interface{} "Updated recipe"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Recipe not found"
// @Router /api/recipes/{id} [patch]
func UpdateRecipe(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	recipe, err := loadRecipe(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := canEditRecipe(userID, recipe); err != nil {
		respondError(c, err)
		return
	}

	var input UpdateRecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Servings != nil {
		updates["servings"] = *input.Servings
	}
	if input.Emoji != nil {
		updates["emoji"] = *input.Emoji
	}
	if input.Instructions != nil {
		updates["instructions"] = *input.Instructions
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		if input.Ingredients != nil {
			// Ingredient lists are replaced wholesale
			if err := tx.Delete(&models.RecipeIngredient{}, "recipe_id = ?", recipe.ID).Error; err != nil {
				return err
			}
			for i, ing := range *input.Ingredients {
				order := i
				if ing.Order != nil {
					order = *ing.Order
				}
				ingredient := models.RecipeIngredient{
					RecipeID: recipe.ID,
					Name:     ing.Name,
					Quantity: ing.Quantity,
					Unit:     ing.Unit,
					Notes:    ing.Notes,
					Order:    order,
				}
				if err := tx.Create(&ingredient).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
		return
	}

	preloadRecipe(database.DB).First(recipe, "id = ?", recipe.ID)

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Success 204 "Recipe deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Recipe not found"
// @Router /api/recipes/{id} [delete]
func DeleteRecipe(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	recipe, err := loadRecipe(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := canEditRecipe(userID, recipe); err != nil {
		respondError(c, err)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.RecipeIngredient{}, "recipe_id = ?", recipe.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipe.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	c.Status(http.StatusNoContent)
}
