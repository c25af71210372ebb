package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pilotdeck/modules/core/catalog"
	"pilotdeck/modules/platform/config"
	"pilotdeck/modules/platform/demoserver"
	"pilotdeck/modules/platform/logger"
	"pilotdeck/modules/platform/system"
	uicore "pilotdeck/modules/ui/core"
	"pilotdeck/modules/ui/tui"

	"gopkg.in/yaml.v3"
)

// projectsCommand handles the 'projects' command
func projectsCommand(args []string) error {
	if err := InitContext(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	appCtx := GetContext()

	fetchCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	list, err := appCtx.Projects.FetchProjects(fetchCtx)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal projects: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(list) == 0 {
		fmt.Println("No projects yet.")
		fmt.Println("Create one from the TUI with 'pilotdeck ui' and the 'n' key.")
		return nil
	}

	fmt.Printf("Projects (%d):\n\n", len(list))
	for _, p := range list {
		fmt.Printf("  %s\n", p.Name)
		fmt.Printf("    ID:       %s\n", p.ID)
		fmt.Printf("    Updated:  %s\n", p.UpdatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("    Branches: %d   Steps: %d\n", len(p.Branches), p.TotalSteps())
		if p.GitBranch != "" {
			dirty := ""
			if p.GitDirty {
				dirty = " (dirty)"
			}
			fmt.Printf("    Git:      %s%s\n", p.GitBranch, dirty)
		}
		fmt.Println()
	}

	return nil
}

// modelsCommand handles the 'models' command
func modelsCommand(args []string) error {
	if len(args) == 0 {
		return modelsListCommand(nil)
	}

	if sub := findSubCommand(GetCommand("models"), args[0]); sub != nil && sub.Handler != nil {
		return sub.Handler(args[1:])
	}

	return fmt.Errorf("unknown models subcommand: %s\nUsage: pilotdeck models [list|set <provider> <model>]", args[0])
}

func modelsListCommand(args []string) error {
	if err := InitContext(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	appCtx := GetContext()
	curProvider, curModel := appCtx.Selection.Selected()

	fmt.Println("Available models:")
	fmt.Println()

	for _, p := range catalog.Providers() {
		fmt.Printf("  %s (%s)\n", p.Name, p.ID)
		for _, m := range p.Models {
			marker := " "
			if p.ID == curProvider && m == curModel {
				marker = "*"
			}
			fmt.Printf("    %s %s\n", marker, m)
		}
		fmt.Println()
	}

	fmt.Printf("Active: %s / %s\n", curProvider, curModel)
	return nil
}

func modelsSetCommand(args []string) error {
	if err := InitContext(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if len(args) < 2 {
		return fmt.Errorf("provider and model are required\nUsage: pilotdeck models set <provider> <model>")
	}

	providerID, modelID := args[0], args[1]

	provider, ok := catalog.FindProvider(providerID)
	if !ok {
		return fmt.Errorf("unknown provider: %s", providerID)
	}

	found := false
	for _, m := range provider.Models {
		if m == modelID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown model for %s: %s", provider.Name, modelID)
	}

	appCtx := GetContext()
	appCtx.Config.Settings.DefaultProvider = providerID
	appCtx.Config.Settings.DefaultModel = modelID

	if err := config.SaveGlobal(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Default model set to %s / %s\n", provider.Name, modelID)
	return nil
}

// configCommand handles the 'config' command
func configCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand is required\nUsage: pilotdeck config <show|path|init>")
	}

	if sub := findSubCommand(GetCommand("config"), args[0]); sub != nil && sub.Handler != nil {
		return sub.Handler(args[1:])
	}

	return fmt.Errorf("unknown config subcommand: %s", args[0])
}

func configShowCommand(args []string) error {
	if err := InitContext(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	appCtx := GetContext()

	data, err := yaml.Marshal(appCtx.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if appCtx.ConfigPath != "" {
		fmt.Printf("# %s\n", appCtx.ConfigPath)
	}
	fmt.Print(string(data))
	return nil
}

func configPathCommand(args []string) error {
	path := config.GetGlobalPath()
	if path == "" {
		path = config.FindConfigFile()
	}

	fmt.Println(path)
	return nil
}

func configInitCommand(args []string) error {
	path := config.GetGlobalPath()
	if path == "" {
		path = config.FindConfigFile()
	}

	loader := config.NewLoader(path)
	if loader.Exists() {
		fmt.Printf("Config file already exists: %s\n", path)
		return nil
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created config file: %s\n", path)
	return nil
}

// uiCommand handles the 'ui' command
func uiCommand(args []string) error {
	if err := InitContext(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	projectID := ""
	startView := ""

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--project" && i+1 < len(args):
			projectID = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--project="):
			projectID = strings.TrimPrefix(args[i], "--project=")
		case args[i] == "--view" && i+1 < len(args):
			startView = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--view="):
			startView = strings.TrimPrefix(args[i], "--view=")
		}
	}

	appCtx := GetContext()

	if err := appCtx.Conn.Start(); err != nil {
		return fmt.Errorf("failed to start connection: %w", err)
	}
	defer appCtx.Conn.Stop()

	// Create the presenter with services
	presenter := uicore.NewPresenter(
		appCtx.Conn,
		appCtx.Selection,
		appCtx.Projects,
		appCtx.Config,
		appCtx.Bus,
		appCtx.Log.WithSource("ui"),
	)

	ctx := context.Background()
	if err := presenter.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize presenter: %w", err)
	}
	defer presenter.Shutdown()

	refresh := time.Duration(appCtx.Config.Settings.RefreshRate) * time.Millisecond
	metrics := system.NewMetricsCollector(refresh)

	tuiView := tui.NewTUIView(metrics)
	if err := tuiView.Initialize(presenter); err != nil {
		return fmt.Errorf("failed to initialize TUI: %w", err)
	}

	switch startView {
	case "", "dashboard":
	case "project":
		tuiView.SetStartView(uicore.VMSession)
	case "logs":
		tuiView.SetStartView(uicore.VMLogs)
	default:
		return fmt.Errorf("unknown view: %s (want dashboard, project or logs)", startView)
	}

	// Deep link straight into a project
	if projectID != "" {
		if err := presenter.HandleEvent(uicore.OpenProjectEvent(projectID)); err != nil {
			return fmt.Errorf("failed to open project %s: %w", projectID, err)
		}
		tuiView.SetStartView(uicore.VMSession)
	}

	// Run the TUI (blocking)
	if err := tuiView.Run(ctx); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// consoleCommand handles the 'console' command
func consoleCommand(args []string) error {
	if err := InitContext(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	appCtx := GetContext()

	if err := appCtx.Conn.Start(); err != nil {
		return fmt.Errorf("failed to start connection: %w", err)
	}
	defer appCtx.Conn.Stop()

	return StartConsole(appCtx)
}

// demoCommand handles the 'demo' command
func demoCommand(args []string) error {
	if err := InitContext(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	appCtx := GetContext()

	port := appCtx.Config.Settings.DemoPort
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--port" && i+1 < len(args):
			fmt.Sscanf(args[i+1], "%d", &port)
			i++
		case strings.HasPrefix(args[i], "--port="):
			fmt.Sscanf(strings.TrimPrefix(args[i], "--port="), "%d", &port)
		}
	}

	// The demo backend is a foreground process; its logs go to stdout.
	demoLog := logger.NewLogger(logger.INFO, []io.Writer{os.Stdout}, "demo")

	srv := demoserver.NewServer(port, demoserver.DefaultScenario(), demoLog)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start demo backend: %w", err)
	}

	fmt.Printf("Demo backend running on ws://localhost:%d/ws\n", port)
	fmt.Printf("Health check: http://localhost:%d/healthz\n", port)
	fmt.Println("Point 'pilotdeck ui' at it, or just press Ctrl+C to stop.")

	// Wait forever (Ctrl+C will terminate the process)
	select {}
}
