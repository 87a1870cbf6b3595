package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/middleware"
	"github.com/hearthhub/household_backend/models"
	"github.com/hearthhub/household_backend/services"
	"github.com/hearthhub/household_backend/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	database.DB = db
	database.Migrate()
}

// newTestRouter wires the same routes as main, minus swagger and websocket.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/api/register", Register)
	router.POST("/api/login", Login)

	router.GET("/api/invites/:token", ResolveInvite)
	router.POST("/api/invites/:token/accept", middleware.OptionalJWTAuth(), AcceptInvite)

	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		api.GET("/me", GetMe)
		api.PATCH("/me", UpdateMe)
		api.GET("/me/invites", GetPendingInvites)

		api.GET("/families", GetFamilies)
		api.POST("/families", CreateFamily)
		api.GET("/families/:id", GetFamily)
		api.PATCH("/families/:id", UpdateFamily)
		api.DELETE("/families/:id/members/:memberId", RemoveMember)
		api.POST("/families/:id/invites", CreateEmailInvite)
		api.POST("/families/:id/invites/qr", CreateQRInvite)

		api.GET("/todos", GetTodos)
		api.POST("/todos", CreateTodo)
		api.GET("/todos/:id", GetTodo)
		api.PATCH("/todos/:id", UpdateTodo)
		api.PATCH("/todos/:id/toggle", ToggleTodo)
		api.DELETE("/todos/:id", DeleteTodo)

		api.GET("/shopping", GetShoppingItems)
		api.POST("/shopping", CreateShoppingItem)
		api.PATCH("/shopping/:id", UpdateShoppingItem)
		api.DELETE("/shopping/:id", DeleteShoppingItem)

		api.GET("/recipes", GetRecipes)
		api.POST("/recipes", CreateRecipe)
		api.GET("/recipes/:id", GetRecipe)
		api.PATCH("/recipes/:id", UpdateRecipe)
		api.DELETE("/recipes/:id", DeleteRecipe)
	}

	return router
}

func createUser(t *testing.T, email, name string) *models.User {
	t.Helper()
	user := models.User{Email: email, Name: name, Password: "secret123"}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return &user
}

func createFamilyWithAdmin(t *testing.T, name string, admin *models.User) *models.Family {
	t.Helper()
	family, err := services.CreateFamily(admin.ID, name)
	if err != nil {
		t.Fatalf("failed to create family %s: %v", name, err)
	}
	return family
}

func addMember(t *testing.T, family *models.Family, user *models.User, role string) *models.FamilyMember {
	t.Helper()
	member := models.FamilyMember{FamilyID: family.ID, UserID: user.ID, Role: role}
	if err := database.DB.Create(&member).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
	return &member
}

func authToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// doRequest performs an HTTP request against the router. A non-nil body is
// JSON-encoded; a non-empty token becomes a bearer header.
func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}
