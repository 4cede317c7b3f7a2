package main

import (
	"log"

	"github.com/joho/godotenv"

	"timekeep/internal/app/server"
)

func main() {
	_ = godotenv.Load()

	if err := server.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
