package main

import (
	"github.com/joho/godotenv"

	"voice-coach-go/internal/cli"
)

func main() {
	_ = godotenv.Load() // loads .env
	cli.Execute()
}
