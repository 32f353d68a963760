package db

import (
	"doc-collab-server/internal/domain"
	"log"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&domain.Author{},
		&domain.Doc{},
		&domain.Access{},
		&domain.Token{},
		&domain.InviteToken{},
		&domain.DocTree{},
		&domain.Chat{},
		&domain.Message{},
	)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}
