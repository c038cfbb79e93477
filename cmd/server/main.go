package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/secureapp/internal/server"
	"github.com/dmitrijs2005/secureapp/internal/server/config"
)

func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Overload(p)
			return
		}
	}
}

func main() {

	loadDotenv()

	ctx := context.Background()
	cfg := config.LoadConfig()

	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseDSN = v
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
