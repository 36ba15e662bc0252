package db

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wildbutton/button"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to DB:", err)
	}

	if err := DB.AutoMigrate(&button.Installation{}, &button.WinRecord{}); err != nil {
		log.Fatal("❌ Failed to migrate schema:", err)
	}

	log.Println("✅ Connected to DB")
}
