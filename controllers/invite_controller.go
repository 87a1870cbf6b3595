package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/mail"
	"github.com/hearthhub/household_backend/models"
	"github.com/hearthhub/household_backend/services"
)

// Mail delivers invite emails when SMTP is configured; nil disables delivery.
var Mail *mail.MailService

type CreateEmailInviteInput struct {
	Email string `json:"email" binding:"required,email" example:"bob@example.com"`
	Role  string `json:"role" binding:"omitempty,oneof=admin member" example:"member"`
}

type CreateQRInviteInput struct {
	Role string `json:"role" binding:"omitempty,oneof=admin member" example:"member"`
}

type AcceptInviteInput struct {
	Name string `json:"name" example:"Alice"`
}

// CreateEmailInvite godoc
// @Summary Invite a user to a family by email
// @Description Creates a pending invite with a 7-day TTL and mails the invite link
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Family ID"
// @Param invite body CreateEmailInviteInput true "Invite creation"
// @Success 201 {object} map[string]interface{} "Invite created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 404 {object} map[string]string "Family not found"
// @Failure 409 {object} map[string]string "Duplicate member or pending invite"
// @Router /api/families/{id}/invites [post]
func CreateEmailInvite(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	familyID := c.Param("id")

	var input CreateEmailInviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invite, err := services.InviteByEmail(userID, familyID, input.Email, input.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	var family models.Family
	database.DB.First(&family, "id = ?", invite.FamilyID)
	Mail.SendInviteAsync(input.Email, family.Name, inviteLink(invite.Token))

	c.JSON(http.StatusCreated, gin.H{"invite": invite})
}

// CreateQRInvite godoc
// @Summary Create a QR invite for a family
// @Description Creates a pending invite not bound to an email address
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Family ID"
// @Param invite body CreateQRInviteInput false "Invite options"
// @Success 201 {object} map[string]interface{} "QR invite created"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Admin role required"
// @Router /api/families/{id}/invites/qr [post]
func CreateQRInvite(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	familyID := c.Param("id")

	var input CreateQRInviteInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	invite, err := services.CreateQRInvite(userID, familyID, input.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invite": invite})
}

// ResolveInvite godoc
// @Summary Resolve an invite token (public)
// @Description Returns the family name, expiry and inviter for a pending invite. Missing, accepted and expired tokens are indistinguishable.
// @Tags invites
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} map[string]interface{} "Invite info"
// @Failure 404 {object} map[string]string "Invite not found or expired"
// @Router /api/invites/{token} [get]
func ResolveInvite(c *gin.Context) {
	info, err := services.GetInviteByToken(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invite": info})
}

// AcceptInvite godoc
// @Summary Accept an invite token
// @Description Authenticated users join the invite's family. Guests must supply a name and are refused: passwordless registration is not implemented.
// @Tags invites
// @Accept json
// @Produce json
// @Param token path string true "Invite token"
// @Param body body AcceptInviteInput false "Guest name"
// @Success 201 {object} map[string]interface{} "Membership created"
// @Failure 400 {object} map[string]string "Guest flow rejected"
// @Failure 404 {object} map[string]string "Invite not found or expired"
// @Failure 409 {object} map[string]string "Already a member"
// @Router /api/invites/{token}/accept [post]
func AcceptInvite(c *gin.Context) {
	userID := ""
	if v, ok := c.Get("userID"); ok {
		userID = v.(string)
	}

	var input AcceptInviteInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	member, err := services.AcceptInvite(c.Param("token"), userID, input.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// GetPendingInvites godoc
// @Summary List pending invites addressed to the authenticated user
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of pending invites"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/me/invites [get]
func GetPendingInvites(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	invites, err := services.GetPendingInvites(user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

func inviteLink(token string) string {
	base := os.Getenv("CLIENT_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	return base + "/invite/" + token
}
