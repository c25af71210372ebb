package commands

import (
	"io"
	"time"

	"pilotdeck/modules/core/catalog"
	"pilotdeck/modules/core/projects"
	"pilotdeck/modules/platform/config"
	"pilotdeck/modules/platform/conn"
	"pilotdeck/modules/platform/eventbus"
	"pilotdeck/modules/platform/logger"
)

// AppContext holds application-wide context
type AppContext struct {
	Config     *config.Config
	ConfigPath string
	Log        *logger.Logger
	Bus        *eventbus.Bus
	Conn       *conn.Manager
	Selection  *catalog.Selection
	Projects   *projects.Service
}

var (
	globalContext *AppContext
	verboseMode   bool
)

// SetVerbose forces debug-level logging regardless of the configured
// level. Must be called before the first InitContext.
func SetVerbose(enabled bool) {
	verboseMode = enabled
}

// InitContext initializes the application context. It is safe to call
// more than once; later calls reuse the context built on the first.
// The connection manager is created but not started; commands that
// talk to the backend start it themselves.
func InitContext() error {
	if globalContext != nil {
		return nil
	}

	cfg := config.GetGlobal()
	configPath := config.GetGlobalPath()

	// Logs go to the log file and onto the event bus. Stdout stays
	// clean: the TUI owns the terminal, and plain commands print
	// their own output.
	logCfg := cfg.Settings.GetLoggerConfig()
	logPath := logCfg.FilePath
	if logPath == "" {
		logPath = config.DefaultLogFilePath()
	}

	var outputs []io.Writer
	if logFile, err := logger.CreateLogFile(logPath, logCfg.MaxSizeMB); err == nil {
		outputs = append(outputs, logFile)
	}

	level := logger.ParseLevel(logCfg.Level)
	if verboseMode {
		level = logger.DEBUG
	}

	log := logger.NewLogger(level, outputs, "app")
	logger.SetGlobalLogger(log)

	bus := eventbus.NewBus()
	log.SetBroadcaster(eventbus.NewLogBridge(bus))

	mgr := conn.NewManager(cfg.Settings.ServerURL(), log.WithSource("conn"), bus)

	selection := catalog.NewSelection(
		cfg.Settings.DefaultProvider,
		cfg.Settings.DefaultModel,
		func(provider, model string) {
			if err := mgr.SendModelChange(provider, model); err != nil {
				log.Warn("model change not sent: %v", err)
			}
		},
	)

	fetchDelay := time.Duration(cfg.Settings.FetchDelayMS) * time.Millisecond
	projectService := projects.NewService(projects.NewStore(), cfg.Workspaces, fetchDelay)

	globalContext = &AppContext{
		Config:     cfg,
		ConfigPath: configPath,
		Log:        log,
		Bus:        bus,
		Conn:       mgr,
		Selection:  selection,
		Projects:   projectService,
	}

	return nil
}

// GetContext returns the global application context
func GetContext() *AppContext {
	return globalContext
}

// registerProjectCommands registers project listing commands
func registerProjectCommands() {
	RegisterCommand(&Command{
		Name:        "projects",
		Aliases:     []string{"ls"},
		Category:    "Projects",
		Description: "List projects known to the backend",
		Usage:       "pilotdeck projects [--json]",
		Examples: []string{
			"pilotdeck projects",
			"pilotdeck ls --json",
		},
		Handler: projectsCommand,
		Order:   10,
	})
}

// registerModelCommands registers model selection commands
func registerModelCommands() {
	RegisterCommand(&Command{
		Name:        "models",
		Aliases:     []string{"m"},
		Category:    "Models",
		Description: "List or set the default LLM provider and model",
		Usage:       "pilotdeck models [list|set <provider> <model>]",
		SubCommands: []SubCommand{
			{Name: "list", Description: "List available providers and models", Handler: modelsListCommand},
			{Name: "set", Description: "Set the default provider and model", Handler: modelsSetCommand},
		},
		Examples: []string{
			"pilotdeck models",
			"pilotdeck models set anthropic claude-3-7-sonnet-20250219",
		},
		Handler: modelsCommand,
		Order:   20,
	})
}

// registerConfigCommands registers configuration commands
func registerConfigCommands() {
	RegisterCommand(&Command{
		Name:        "config",
		Aliases:     []string{"cfg"},
		Category:    "Configuration",
		Description: "Configuration management",
		Usage:       "pilotdeck config <show|path|init>",
		SubCommands: []SubCommand{
			{Name: "show", Description: "Show current configuration", Handler: configShowCommand},
			{Name: "path", Description: "Show config file path", Handler: configPathCommand},
			{Name: "init", Description: "Write a default config file", Handler: configInitCommand},
		},
		Examples: []string{
			"pilotdeck config show",
			"pilotdeck cfg path",
			"pilotdeck config init",
		},
		Handler: configCommand,
		Order:   50,
	})
}

// registerInterfaceCommands registers UI-related commands
func registerInterfaceCommands() {
	RegisterCommand(&Command{
		Name:        "ui",
		Category:    "Interface",
		Description: "Launch the TUI (default command)",
		Usage:       "pilotdeck ui [--project <id>] [--view <dashboard|project|logs>]",
		Examples: []string{
			"pilotdeck ui",
			"pilotdeck ui --project 3fa85f64",
			"pilotdeck ui --view logs",
		},
		Handler: uiCommand,
		Order:   60,
	})

	RegisterCommand(&Command{
		Name:        "console",
		Aliases:     []string{"sh"},
		Category:    "Interface",
		Description: "Line-mode client for dumb terminals",
		Usage:       "pilotdeck console",
		Examples: []string{
			"pilotdeck console",
			"pilotdeck sh",
		},
		Handler: consoleCommand,
		Order:   61,
	})

	RegisterCommand(&Command{
		Name:        "demo",
		Category:    "Interface",
		Description: "Run the scripted demo backend",
		Usage:       "pilotdeck demo [--port <port>]",
		Examples: []string{
			"pilotdeck demo",
			"pilotdeck demo --port 9099",
		},
		Handler: demoCommand,
		Order:   62,
	})
}
