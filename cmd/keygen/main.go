package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/shift-roster-go/pkg/auth"
	"github.com/arnavshah/shift-roster-go/pkg/config"
	"github.com/arnavshah/shift-roster-go/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <userID>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	a, err := auth.New(cfg.JWTSecret, cfg.APIMasterSecret)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if cfg.UsesDefaultMasterSecret() {
		fmt.Fprintln(os.Stderr, "Warning: API_MASTER_SECRET not set, key is signed with the development secret")
	}

	userID := os.Args[1]
	apiKey, err := a.GenerateHMACKey(userID)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	// The API only accepts keys it has a record for.
	db, err := database.InitDB(database.Options{DatabaseURL: cfg.DatabaseURL, DataPath: cfg.DataPath})
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	rec, err := database.CreateKey(db, apiKey, userID, 0)
	_ = database.Close(db)
	if err != nil {
		fmt.Println("Error registering key:", err)
		os.Exit(1)
	}
	fmt.Printf("Generated Key for %s (id %d, %d requests/day):\n%s\n", userID, rec.ID, rec.RateLimit, apiKey)
}
