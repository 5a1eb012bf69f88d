package main

import (
	"log"
	"os"

	"wellmate-be/internal/model"
	"wellmate-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	driver := os.Getenv("DB_DRIVER")

	// 2. Connect
	db, err := database.NewGormDB(driver, dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. AutoMigrate
	log.Println("Step 1: Running AutoMigrate...")
	models := []interface{}{
		&model.User{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.HealthRecord{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 4. Optional: reproduce the pre-conversation_id layout for compatibility testing
	if os.Getenv("MIGRATE_LEGACY_SCHEMA") == "true" {
		log.Println("Step 2: Dropping chat_sessions.conversation_id (legacy layout)...")
		if db.Migrator().HasColumn(&model.ChatSession{}, "ConversationId") {
			if err := db.Migrator().DropColumn(&model.ChatSession{}, "ConversationId"); err != nil {
				log.Fatalf("Error: Failed to drop column: %v", err)
			}
		}
	}

	log.Println("✅ Success: Database migration completed.")
}
