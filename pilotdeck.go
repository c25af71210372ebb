package main

import (
	"fmt"
	"os"
	"strings"

	"pilotdeck/modules"
	"pilotdeck/modules/commands"
	"pilotdeck/modules/platform/config"
)

func main() {
	// Parse global flags
	args := os.Args[1:]
	configPath := ""
	verbose := false

	// Extract global flags
	var cmdArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--verbose" || arg == "-v":
			verbose = true
		case arg == "--version" || arg == "-V":
			printVersion()
			return
		case arg == "--help" || arg == "-h":
			printHelp()
			return
		default:
			cmdArgs = append(cmdArgs, arg)
		}
	}

	// Load configuration
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	if err := config.LoadGlobal(configPath); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		}
	}

	commands.SetVerbose(verbose)

	// Initialize command registry
	commands.InitRegistry()

	// No command means the TUI
	if len(cmdArgs) == 0 {
		cmdArgs = []string{"ui"}
	}

	cmdName := cmdArgs[0]
	cmdRemainingArgs := cmdArgs[1:]

	// Handle special commands
	switch cmdName {
	case "version":
		printVersion()
		return
	case "help":
		if len(cmdRemainingArgs) > 0 {
			commands.PrintCommandHelp(cmdRemainingArgs[0])
		} else {
			printHelp()
		}
		return
	}

	// Look up command in registry
	cmd := commands.GetCommand(cmdName)
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmdName)
		fmt.Fprintf(os.Stderr, "Run 'pilotdeck help' for usage.\n")
		os.Exit(1)
	}

	// Execute command
	if err := cmd.Handler(cmdRemainingArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("%s version %s\n", modules.AppName, modules.AppVersion)
	fmt.Printf("Build: %s\n", modules.BuildHash())
}

func printHelp() {
	fmt.Printf("%s - %s\n", modules.AppName, modules.AppDescription)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pilotdeck [flags] [command] [arguments]")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  -c, --config <path>    Path to config file")
	fmt.Println("  -v, --verbose          Debug-level logging")
	fmt.Println("  -V, --version          Print version")
	fmt.Println("  -h, --help             Print help")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println()

	// Print commands by category
	commands.PrintCommands()

	fmt.Println("Running with no command starts the TUI.")
	fmt.Println("Use 'pilotdeck help <command>' for more information about a command.")
}
