// Package recurring materializes todos from recurring rules on a fixed
// schedule.
package recurring

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/models"
	"github.com/hearthhub/household_backend/websocket"
	"github.com/robfig/cron/v3"
)

// todoTemplate is the shape stored in RecurringRule.TemplateData.
type todoTemplate struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	IsImportant  bool    `json:"is_important"`
	CreatedByID  string  `json:"created_by_id"`
	AssignedToID *string `json:"assigned_to_id,omitempty"`
}

// Start schedules the sweep every 5 minutes and returns the running cron so
// the caller can stop it on shutdown.
func Start() *cron.Cron {
	c := cron.New()
	c.AddFunc("*/5 * * * *", func() { Sweep(time.Now()) })
	c.Start()
	slog.Info("recurring todo sweep scheduled", "interval", "5m")
	return c
}

// Sweep creates a todo for every rule whose next occurrence has passed, then
// advances the rule. Failures are logged per rule; the sweep keeps going.
func Sweep(now time.Time) {
	var rules []models.RecurringRule
	if err := database.DB.Where("next_occurrence <= ?", now).Find(&rules).Error; err != nil {
		slog.Error("failed to load recurring rules", "error", err)
		return
	}

	for _, rule := range rules {
		if err := apply(rule); err != nil {
			slog.Error("failed to process recurring rule", "rule_id", rule.ID, "error", err)
		}
	}
}

func apply(rule models.RecurringRule) error {
	var tmpl todoTemplate
	if err := json.Unmarshal([]byte(rule.TemplateData), &tmpl); err != nil {
		return err
	}

	todo := models.Todo{
		FamilyID:        rule.FamilyID,
		Title:           tmpl.Title,
		Description:     tmpl.Description,
		IsImportant:     tmpl.IsImportant,
		CreatedByID:     tmpl.CreatedByID,
		AssignedToID:    tmpl.AssignedToID,
		RecurringRuleID: &rule.ID,
	}
	if err := database.DB.Create(&todo).Error; err != nil {
		return err
	}

	next := NextOccurrence(rule.NextOccurrence, rule.Frequency, rule.Interval)
	if err := database.DB.Model(&models.RecurringRule{}).Where("id = ?", rule.ID).
		Update("next_occurrence", next).Error; err != nil {
		return err
	}

	websocket.BroadcastToFamily(rule.FamilyID, "todo:created", todo)
	slog.Info("created recurring todo", "rule_id", rule.ID, "todo_id", todo.ID, "next", next)
	return nil
}

// NextOccurrence advances the given occurrence by interval units of frequency.
// Unknown frequencies leave the time unchanged.
func NextOccurrence(current time.Time, frequency string, interval int) time.Time {
	if interval <= 0 {
		interval = 1
	}
	switch frequency {
	case "daily":
		return current.AddDate(0, 0, interval)
	case "weekly":
		return current.AddDate(0, 0, interval*7)
	case "monthly":
		return current.AddDate(0, interval, 0)
	case "yearly":
		return current.AddDate(interval, 0, 0)
	default:
		return current
	}
}
