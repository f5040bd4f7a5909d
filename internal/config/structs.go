package config

import (
	"github.com/GoUserGroups/GoUserGroups/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Engine    Engine
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string // domain name for the webserver
	Port         int    // listening port for the webserver
	ShutDownTime int    // wait time for shutdown
	URL          string // base url for the webserver
}

// Engine holds the membership evaluation engine settings.
type Engine struct {
	Workers   int // number of event workers; 0 uses the default
	QueueSize int // inbound event queue buffer size; 0 uses the default
}
