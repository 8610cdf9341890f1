package server

import "errors"

var (
	ErrInvalidServerName = errors.New("invalid server name")
	ErrInvalidConfigName = errors.New("invalid config name")
	ErrServerExists      = errors.New("server already exists")
	ErrServerNotFound    = errors.New("server not found")

	// ErrServerNotInstalled is returned when an operation needs the
	// server's etmain directory and it is missing (the server was
	// created but never updated/installed).
	ErrServerNotInstalled = errors.New("server is missing etmain directory, run a server update first")

	ErrConfigNotFound   = errors.New("config file not found")
	ErrConfigExists     = errors.New("config file already exists")
	ErrConfigNotActive  = errors.New("config is not activated")
	ErrTemplateNotFound = errors.New("config template not found")

	ErrMapNotFound     = errors.New("map archive not found")
	ErrModNotFound     = errors.New("mod archive not found")
	ErrArchiveNotFound = errors.New("server archive not found")

	// ErrPaksMissing is returned when the shared base-game paks are
	// absent from the sources store.
	ErrPaksMissing = errors.New("source etmain paks are missing, try updating sources")
)
