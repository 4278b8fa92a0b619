package main

import (
	"time"

	"github.com/hadealahmad/anonymous-messages/config"
	"github.com/hadealahmad/anonymous-messages/models"
	"github.com/hadealahmad/anonymous-messages/routes"
	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Category{},
		&models.Post{},
		&models.Message{},
		&models.Response{},
		&models.Attachment{},
	)

	// First boot: seed the reviewer account so the triage API is reachable.
	if err := services.NewUserStore(db).EnsureSeedAdmin(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
		utils.Sugar.Fatalf("seed admin failed: %v", err)
	}

	r := routes.SetupRouter(db)

	// Background sweep for upload files whose message never persisted
	utils.StartOrphanSweeper(time.Hour)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
