package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/errs"
	"github.com/hearthhub/household_backend/models"
	"github.com/hearthhub/household_backend/services"
	"github.com/hearthhub/household_backend/websocket"
)

type CreateTodoInput struct {
	FamilyID     string     `json:"family_id"`
	Title        string     `json:"title" binding:"required" example:"Take out the trash"`
	Description  *string    `json:"description"`
	IsImportant  bool       `json:"is_important"`
	AssignedToID *string    `json:"assigned_to_id"`
	DueDate      *time.Time `json:"due_date"`
}

type UpdateTodoInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	IsImportant  *bool      `json:"is_important"`
	Completed    *bool      `json:"completed"`
	AssignedToID *string    `json:"assigned_to_id"`
	DueDate      *time.Time `json:"due_date"`
}

type ToggleTodoInput struct {
	Completed bool `json:"completed"`
}

// defaultFamilyID resolves the family to operate on when the request does not
// name one: the caller's first family.
func defaultFamilyID(userID string) (string, error) {
	families, err := services.FindFamilies(userID)
	if err != nil {
		return "", err
	}
	if len(families) == 0 {
		return "", errs.New(errs.ErrNotFound, "user has no families")
	}
	return families[0].ID, nil
}

// loadTodo fetches a todo and verifies the caller's membership in its family.
func loadTodo(userID, todoID string) (*models.Todo, error) {
	var todo models.Todo
	if err := database.DB.Preload("CreatedBy").Preload("AssignedTo").
		First(&todo, "id = ?", todoID).Error; err != nil {
		return nil, errs.New(errs.ErrNotFound, "todo not found")
	}
	if err := services.EnsureMember(userID, todo.FamilyID); err != nil {
		return nil, err
	}
	return &todo, nil
}

// GetTodos godoc
// @Summary List todos of a family
// @Description Lists todos for the given family, or the caller's first family when family_id is omitted
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param family_id query string false "Family ID"
// @Success 200 {object} map[string]interface{} "List of todos"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/todos [get]
func GetTodos(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	familyID := c.Query("family_id")
	if familyID == "" {
		var err error
		familyID, err = defaultFamilyID(userID)
		if err != nil {
			// Mirror the empty result instead of failing when the user has
			// no family yet
			c.JSON(http.StatusOK, gin.H{"todos": []models.Todo{}})
			return
		}
	}

	if err := services.EnsureMember(userID, familyID); err != nil {
		respondError(c, err)
		return
	}

	var todos []models.Todo
	if err := database.DB.Preload("CreatedBy").Preload("AssignedTo").
		Where("family_id = ?", familyID).
		Order("created_at DESC").
		Find(&todos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"todos": todos})
}

// GetTodo godoc
// @Summary Get a todo by ID
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Success 200 {object} map[string]interface{} "Todo details"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Todo not found"
// @Router /api/todos/{id} [get]
func GetTodo(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	todo, err := loadTodo(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"todo": todo})
}

// CreateTodo godoc
// @Summary Create a todo
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param todo body CreateTodoInput true "Todo creation"
// @Success 201 {object} map[string]interface{} "Todo created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User has no families"
// @Router /api/todos [post]
func CreateTodo(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input CreateTodoInput
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

	todo := models.Todo{
		FamilyID:     familyID,
		Title:        input.Title,
		Description:  input.Description,
		IsImportant:  input.IsImportant,
		AssignedToID: input.AssignedToID,
		DueDate:      input.DueDate,
		CreatedByID:  userID,
	}

	if err := database.DB.Create(&todo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create todo"})
		return
	}

	database.DB.Preload("CreatedBy").Preload("AssignedTo").First(&todo, "id = ?", todo.ID)

	websocket.BroadcastToFamily(familyID, "todo:created", todo)

	c.JSON(http.StatusCreated, gin.H{"todo": todo})
}

// UpdateTodo godoc
// @Summary Update a todo
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Param todo body UpdateTodoInput true "Todo update"
// @Success 200 {object} map[string]interface{} "Updated todo"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Todo not found"
// @Router /api/todos/{id} [patch]
func UpdateTodo(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	todo, err := loadTodo(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input UpdateTodoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.IsImportant != nil {
		updates["is_important"] = *input.IsImportant
	}
	if input.AssignedToID != nil {
		updates["assigned_to_id"] = *input.AssignedToID
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.Completed != nil {
		updates["completed"] = *input.Completed
		if *input.Completed {
			updates["completed_at"] = time.Now()
		} else {
			updates["completed_at"] = nil
		}
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&models.Todo{}).Where("id = ?", todo.ID).
			Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
			return
		}
	}

	// Reload into a fresh struct: scanning into the already-populated one
	// would keep stale values for columns that were just set to NULL
	var updated models.Todo
	database.DB.Preload("CreatedBy").Preload("AssignedTo").First(&updated, "id = ?", todo.ID)

	websocket.BroadcastToFamily(updated.FamilyID, "todo:updated", updated)

	c.JSON(http.StatusOK, gin.H{"todo": updated})
}

// ToggleTodo godoc
// @Summary Toggle a todo's completion state
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Param state body ToggleTodoInput true "Completion state"
// @Success 200 {object} map[string]interface{} "Updated todo"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Todo not found"
// @Router /api/todos/{id}/toggle [patch]
func ToggleTodo(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	todo, err := loadTodo(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input ToggleTodoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{"completed": input.Completed}
	if input.Completed {
		updates["completed_at"] = time.Now()
	} else {
		updates["completed_at"] = nil
	}
	if err := database.DB.Model(&models.Todo{}).Where("id = ?", todo.ID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
		return
	}

	// Reload into a fresh struct: scanning into the already-populated one
	// would keep stale values for columns that were just set to NULL
	var updated models.Todo
	database.DB.Preload("CreatedBy").Preload("AssignedTo").First(&updated, "id = ?", todo.ID)

	websocket.BroadcastToFamily(updated.FamilyID, "todo:updated", updated)

	c.JSON(http.StatusOK, gin.H{"todo": updated})
}

// DeleteTodo godoc
// @Summary Delete a todo
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Success 204 "Todo deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Todo not found"
// @Router /api/todos/{id} [delete]
func DeleteTodo(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	todo, err := loadTodo(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := database.DB.Delete(&models.Todo{}, "id = ?", todo.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}

	websocket.BroadcastToFamily(todo.FamilyID, "todo:deleted", gin.H{"id": todo.ID, "family_id": todo.FamilyID})

	c.Status(http.StatusNoContent)
}
