package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"respostas/admin"
	"respostas/auth"
	"respostas/common"
	"respostas/database"
	"respostas/email"
	"respostas/links"
	"respostas/messages"
	"respostas/panel"
	"respostas/prefs"
	"respostas/problems"
	"respostas/search"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if err := database.SeedAdmin(db); err != nil {
		log.Fatal("Failed to seed admin user:", err)
	}

	// Recolhe subdocumentos órfãos de exclusões de conta interrompidas
	if err := admin.SweepOrphans(db); err != nil {
		log.Printf("SweepOrphans failed: %v", err)
	}

	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})

	router.Use(sessions.Sessions("respostas-session", store))

	router.LoadHTMLGlob("*/views/*.html")

	router.Static("/public", "./public")

	authModule := auth.NewAuthModule(db)
	authModule.RegisterRoutes(router)

	messagesModule := messages.NewMessagesModule(db)
	problemsModule := problems.NewProblemsModule(db)
	linksModule := links.NewLinksModule(db)
	prefsModule := prefs.NewPrefsModule(db)

	app := router.Group("/app")
	app.Use(auth.RequireAuth)
	{
		panel.NewPanelModule(messagesModule, problemsModule, linksModule, prefsModule).RegisterRoutes(app)
		messagesModule.RegisterRoutes(app)
		problemsModule.RegisterRoutes(app)
		linksModule.RegisterRoutes(app)
		search.NewSearchModule(db).RegisterRoutes(app)
		prefsModule.RegisterRoutes(app)
	}

	adminGroup := router.Group("/admin")
	adminGroup.Use(auth.RequireAdmin)
	admin.NewAdminModule(db, email.NewEmailService()).RegisterRoutes(adminGroup)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
