// Package config is responsible for loading, normalizing, and
// validating the blocking policy from the config file and command-line
// arguments.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

const Version = "v0.4.0"

var (
	configDir      = "barricade"
	configFileName = "config.yml"
	dbFileName     = "barricade.db"
	logFileName    = "barricade.log"
	dbFilePath     string
	configFilePath string
	logFilePath    string
)

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// DefaultHardAllowlist names the product's own hosts. They are merged
// into every configuration so the extension can never block its own
// API, webapp, or CDN.
var DefaultHardAllowlist = []string{
	"barricade.app",
	"api.barricade.app",
	"cdn.barricade.app",
}

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// InitializePaths resolves the XDG locations for the config file, the
// database, and the log file. A BARRICADE_ENV value suffixes the file
// names so that development and testing never touch real data.
func InitializePaths() {
	env := strings.TrimSpace(os.Getenv("BARRICADE_ENV"))
	if env != "" {
		configFileName = fmt.Sprintf("config_%s.yml", env)
		dbFileName = fmt.Sprintf("barricade_%s.db", env)
		logFileName = fmt.Sprintf("barricade_%s.log", env)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}
