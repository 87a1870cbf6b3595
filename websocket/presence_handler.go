package websocket

import (
	"encoding/json"
	"log/slog"

	"github.com/hearthhub/household_backend/services"
)

type familyPayload struct {
	FamilyID string `json:"family_id"`
}

// HandleIncomingMessage routes a client message. Clients join or leave family
// channels; membership is verified against the database before a join.
func HandleIncomingMessage(c *Client, msg Message) {
	switch msg.Type {
	case "join":
		familyID := extractFamilyID(msg)
		if familyID == "" {
			return
		}
		if err := services.EnsureMember(c.userID, familyID); err != nil {
			slog.Warn("refusing channel join", "user_id", c.userID, "family_id", familyID, "error", err)
			return
		}
		if !c.inFamily(familyID) {
			c.joinFamily(familyID)
		}
	case "leave":
		familyID := extractFamilyID(msg)
		if familyID == "" {
			return
		}
		if c.inFamily(familyID) {
			c.leaveFamily(familyID)
		}
	default:
		slog.Debug("ignoring websocket message", "type", msg.Type, "user_id", c.userID)
	}
}

func extractFamilyID(msg Message) string {
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return ""
	}
	var payload familyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.FamilyID
}
