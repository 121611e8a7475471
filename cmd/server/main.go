package main

import (
	"github.com/eleven-am/voice-relay/internal/bootstrap"
)

// @title Voice Relay API
// @version 1.0.0
// @description API server for the dual-path realtime voice relay

// @host api.relay.example.com
// @BasePath /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	bootstrap.Run()
}
