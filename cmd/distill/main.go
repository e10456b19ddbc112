package main

import (
	"distill/cmd/handlers"
	"distill/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
