package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	"github.com/itsatony/rahub/internal/config"
	"github.com/itsatony/rahub/internal/server"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting RA Hub Server v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	events := "log only"
	if cfg.Redis.Host != "" {
		events = "redis stream " + cfg.Redis.Stream
	}
	nuts.L.Infof("[Main] Admin API on %s:%d (keycloak realm %s, role %q), app db %s/%s, blobs under %s, events: %s",
		cfg.Server.Host, cfg.Server.Port,
		cfg.Keycloak.Realm, cfg.Keycloak.RequiredRole,
		cfg.Database.AppDB.Host, cfg.Database.AppDB.DBName,
		cfg.FileStore.BasePath, events)

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"    ____  ___       __  __      __  ",
		"   / __ \\/   |     / / / /_  __/ /_ ",
		"  / /_/ / /| |    / /_/ / / / / __ \\",
		" / _, _/ ___ |   / __  / /_/ / /_/ /",
		"/_/ |_/_/  |_|  /_/ /_/\\__,_/_.___/ ",
		"....................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
