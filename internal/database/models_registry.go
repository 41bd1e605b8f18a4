package database

import "rehire/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Message{},
		&models.MessageDeletion{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.HiringPost{},
		&models.Referral{},
	}
}
