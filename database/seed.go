package database

import (
	"log"
	"os"

	"respostas/auth"
	"respostas/models"

	"gorm.io/gorm"
)

// SeedAdmin cria a conta de administrador inicial quando o banco está vazio,
// para o painel não nascer trancado. Usuário e senha vêm do ambiente.
func SeedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@localhost"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     username,
		Email:        adminEmail,
		PasswordHash: hashed,
		Role:         "admin",
		Provider:     "senha",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Admin user %q created", username)
	return nil
}
