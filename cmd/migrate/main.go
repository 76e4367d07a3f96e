package main

import (
	"os"

	"github.com/joho/godotenv"

	"grandaura/internal/pkg/logger"
)

func main() {
	// .env é opcional; as variáveis podem vir do ambiente do sistema.
	_ = godotenv.Load()

	log := logger.NewLogger(envOr("LOG_LEVEL", "info"))
	if err := newRootCmd(log).Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
