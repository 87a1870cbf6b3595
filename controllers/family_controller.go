package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthhub/household_backend/services"
)

type CreateFamilyInput struct {
	Name string `json:"name" binding:"required" example:"The Smiths"`
}

type UpdateFamilyInput struct {
	Name string `json:"name" binding:"required" example:"Smith-Jones"`
}

// GetFamilies godoc
// @Summary List families of the authenticated user
// @Tags families
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of families"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/families [get]
func GetFamilies(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	families, err := services.FindFamilies(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"families": families})
}

// CreateFamily godoc
// @Summary Create a new family
// @Description Creates a family with the authenticated user as its first admin member
// @Tags families
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param family body CreateFamilyInput true "Family creation"
// @Success 201 {object} map[string]interface{} "Family created successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/families [post]
func CreateFamily(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input CreateFamilyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	family, err := services.CreateFamily(userID, input.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"family": family})
}

// GetFamily godoc
// @Summary Get a family by ID
// @Tags families
// @Produce json
// @Security BearerAuth
// @Param id path string true "Family ID"
// @Success 200 {object} map[string]interface{} "Family details"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Family not found"
// @Router /api/families/{id} [get]
func GetFamily(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	familyID := c.Param("id")

	family, err := services.FindFamilyForUser(userID, familyID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"family": family})
}

// UpdateFamily godoc
// @Summary Rename a family
// @Tags families
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Family ID"
// @Param family body UpdateFamilyInput true "Family update"
// @Success 200 {object} map[string]interface{} "Updated family"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Family not found"
// @Router /api/families/{id} [patch]
func UpdateFamily(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	familyID := c.Param("id")

	var input UpdateFamilyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	family, err := services.UpdateFamily(userID, familyID, input.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"family": family})
}

// RemoveMember godoc
// @Summary Remove a member from a family
// @Description Admins may remove anyone; a member may remove themself. The last admin cannot be removed.
// @Tags families
// @Produce json
// @Security BearerAuth
// @Param id path string true "Family ID"
// @Param memberId path string true "Member ID"
// @Success 204 "Member removed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Member not found"
// @Failure 409 {object} map[string]string "Cannot remove the last admin"
// @Router /api/families/{id}/members/{memberId} [delete]
func RemoveMember(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	familyID := c.Param("id")
	memberID := c.Param("memberId")

	if err := services.RemoveMember(userID, familyID, memberID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
