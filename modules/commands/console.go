package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"sync"

	"pilotdeck/modules"
	"pilotdeck/modules/core/catalog"
	"pilotdeck/modules/platform/conn"
	"pilotdeck/modules/platform/protocol"
	uicore "pilotdeck/modules/ui/core"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

const (
	historyFile     = ".pilotdeck_history"
	maxHistoryLines = 1000
)

// streamBuf accumulates stream chunks for one source until the end
// marker arrives
type streamBuf struct {
	name string
	text strings.Builder
}

// Console is the line-mode client for terminals that cannot run the
// TUI. Inbound traffic prints above the prompt as it arrives; pending
// questions are answered with plain commands.
type Console struct {
	appCtx  *AppContext
	rl      *readline.Instance
	isTTY   bool
	running bool

	mu      sync.Mutex
	out     io.Writer
	streams map[string]*streamBuf
	done    chan struct{}
}

// StartConsole runs the console until the user quits. The caller owns
// the connection manager and must have started it.
func StartConsole(appCtx *AppContext) error {
	c := &Console{
		appCtx:  appCtx,
		isTTY:   term.IsTerminal(int(os.Stdin.Fd())),
		out:     os.Stdout,
		streams: make(map[string]*streamBuf),
		done:    make(chan struct{}),
	}

	return c.Run()
}

// Run starts the console main loop
func (c *Console) Run() error {
	c.running = true

	go c.pumpFrames()
	defer close(c.done)

	if c.isTTY {
		return c.runInteractive()
	}
	return c.runNonInteractive()
}

// runInteractive runs the console with readline support
func (c *Console) runInteractive() error {
	completer := c.buildCompleter()
	historyPath := c.getHistoryPath()

	config := &readline.Config{
		Prompt:          c.getPrompt(),
		HistoryFile:     historyPath,
		HistoryLimit:    maxHistoryLines,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	c.rl = rl

	// Route async frame output through readline so the prompt redraws
	c.mu.Lock()
	c.out = rl.Stdout()
	c.mu.Unlock()

	c.printWelcome()

	for c.running {
		rl.SetPrompt(c.getPrompt())

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					fmt.Println("Use 'exit' or 'quit' to leave the console.")
					continue
				}
				continue
			}
			if err == io.EOF {
				fmt.Println()
				break
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if c.handleSpecialCommand(line) {
			continue
		}

		c.executeLine(line)
	}

	return nil
}

// runNonInteractive runs the console without readline (for pipes)
func (c *Console) runNonInteractive() error {
	scanner := bufio.NewScanner(os.Stdin)

	for c.running && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if c.handleSpecialCommand(line) {
			continue
		}

		c.executeLine(line)
	}

	return scanner.Err()
}

// ============================================
// Inbound traffic
// ============================================

// pumpFrames prints connection events above the prompt as they
// arrive. Stream chunks buffer until their end marker; the console
// prints whole messages only.
func (c *Console) pumpFrames() {
	events := c.appCtx.Conn.Events()

	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.printEvent(ev)
		}
	}
}

func (c *Console) printEvent(ev conn.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case conn.EventConnected:
		fmt.Fprintln(c.out, c.dim("· connected"))
	case conn.EventDisconnected:
		fmt.Fprintln(c.out, c.dim("· disconnected, retrying"))
	case conn.EventFrame:
		c.printFrame(ev.Frame)
	}
}

// printFrame is called with c.mu held
func (c *Console) printFrame(f *protocol.Frame) {
	switch f.Type {
	case protocol.MsgStream:
		sb, ok := c.streams[f.Source]
		if !ok {
			sb = &streamBuf{name: f.DisplaySource()}
			c.streams[f.Source] = sb
		}
		if f.Chunk == "" {
			// end marker
			c.flushStream(f.Source)
		} else {
			sb.text.WriteString(f.Chunk)
		}

	case protocol.MsgMessage:
		c.flushStream(f.Source)
		c.printLine(f.DisplaySource(), f.Message)

	case protocol.MsgQuestion:
		c.flushStream(f.Source)
		c.printQuestion(f)

	case protocol.MsgTaskProgress:
		if f.NTasks > 0 {
			fmt.Fprintln(c.out, c.dim(fmt.Sprintf("· task %d/%d: %s", f.Index, f.NTasks, f.Description)))
		}

	case protocol.MsgEpicsAndTasks, protocol.MsgStepProgress,
		protocol.MsgModifiedFiles, protocol.MsgFileStatus:
		// Tab data in the TUI; noise in a line client

	default:
		if line := uicore.SystemLine(f); line != "" {
			fmt.Fprintln(c.out, c.dim("· "+line))
		}
	}
}

// flushStream prints and discards the buffered stream text for a
// source. Called with c.mu held.
func (c *Console) flushStream(source string) {
	sb, ok := c.streams[source]
	if !ok {
		return
	}
	delete(c.streams, source)

	c.printLine(sb.name, sb.text.String())
}

func (c *Console) printLine(name, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}

	if name != "" {
		fmt.Fprintf(c.out, "%s %s\n", c.cyan("‹"+name+"›"), text)
	} else {
		fmt.Fprintln(c.out, text)
	}
}

func (c *Console) printQuestion(q *protocol.Frame) {
	fmt.Fprintf(c.out, "\n%s %s\n", c.yellow("? ‹"+q.DisplaySource()+"›"), q.Question)

	if len(q.Buttons) > 0 {
		keys := buttonKeys(q)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			label := fmt.Sprintf("[%s] %s", k, q.Buttons[k])
			if k == q.Default {
				label += " (default)"
			}
			parts = append(parts, label)
		}
		fmt.Fprintf(c.out, "  %s\n", strings.Join(parts, "  "))
	}

	if q.Hint != "" {
		fmt.Fprintf(c.out, "  %s\n", c.dim(q.Hint))
	}

	var usage []string
	if len(q.Buttons) > 0 {
		usage = append(usage, "button <key>")
	}
	if !q.ButtonsOnly {
		usage = append(usage, "answer <text>")
	}
	usage = append(usage, "cancel")
	fmt.Fprintf(c.out, "  %s\n\n", c.dim("respond with: "+strings.Join(usage, " | ")))
}

// buttonKeys returns button keys in display order, default first
func buttonKeys(q *protocol.Frame) []string {
	keys := make([]string, 0, len(q.Buttons))
	for k := range q.Buttons {
		if k != q.Default {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	if _, ok := q.Buttons[q.Default]; ok {
		keys = append([]string{q.Default}, keys...)
	}
	return keys
}

// ============================================
// Commands
// ============================================

// executeLine dispatches a console command
func (c *Console) executeLine(line string) {
	parts := parseCommandLine(line)
	if len(parts) == 0 {
		return
	}

	verb := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch verb {
	case "help", "?":
		c.printHelp()

	case "status", "st":
		c.printStatus()

	case "answer", "a":
		// The raw remainder is the answer; quotes are not stripped
		text := ""
		if idx := strings.IndexAny(line, " \t"); idx >= 0 {
			text = strings.TrimSpace(line[idx:])
		}
		err = c.answer(text)

	case "button", "b":
		if len(args) == 0 {
			err = fmt.Errorf("button key is required (see the question's [key] labels)")
		} else {
			err = c.pressButton(args[0])
		}

	case "cancel":
		err = c.cancel()

	case "model":
		err = c.setModel(args)

	default:
		fmt.Printf("Unknown command: %s\n", verb)
		fmt.Println("Type 'help' for available commands.")
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func (c *Console) activeQuestion() *protocol.Frame {
	return c.appCtx.Conn.Questions().Active()
}

func (c *Console) answer(text string) error {
	q := c.activeQuestion()
	if q == nil {
		return fmt.Errorf("no question is waiting for an answer")
	}
	if q.ButtonsOnly {
		return fmt.Errorf("this question accepts button answers only")
	}
	if text == "" && !q.AllowEmpty {
		return fmt.Errorf("this question does not accept an empty answer")
	}

	if err := c.appCtx.Conn.SendResponse(protocol.NewTextResponse(q.QuestionID, text)); err != nil {
		return err
	}

	fmt.Println("Sent.")
	return nil
}

func (c *Console) pressButton(key string) error {
	q := c.activeQuestion()
	if q == nil {
		return fmt.Errorf("no question is waiting for an answer")
	}
	if _, ok := q.Buttons[key]; !ok {
		return fmt.Errorf("no button %q on this question (have: %s)", key, strings.Join(buttonKeys(q), ", "))
	}

	if err := c.appCtx.Conn.SendResponse(protocol.NewButtonResponse(q.QuestionID, key)); err != nil {
		return err
	}

	fmt.Println("Sent.")
	return nil
}

func (c *Console) cancel() error {
	q := c.activeQuestion()
	if q == nil {
		return fmt.Errorf("no question is waiting for an answer")
	}

	if err := c.appCtx.Conn.SendResponse(protocol.NewCancelResponse(q.QuestionID)); err != nil {
		return err
	}

	fmt.Println("Cancelled.")
	return nil
}

func (c *Console) setModel(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("provider and model are required\nUsage: model <provider> <model>")
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

	c.appCtx.Selection.SetProvider(providerID)
	c.appCtx.Selection.SetModel(modelID)

	fmt.Printf("Model set to %s / %s\n", provider.Name, modelID)
	return nil
}

func (c *Console) printStatus() {
	mgr := c.appCtx.Conn

	state := "disconnected"
	if mgr.Connected() {
		state = "connected"
	}
	fmt.Printf("Backend:  %s (%s)\n", c.appCtx.Config.Settings.ServerURL(), state)

	provider, model := c.appCtx.Selection.Selected()
	fmt.Printf("Model:    %s / %s\n", provider, model)
	fmt.Printf("Frames:   %d received\n", len(mgr.Frames()))

	if q := mgr.Questions().Active(); q != nil {
		fmt.Printf("Question: ‹%s› %s\n", q.DisplaySource(), q.Question)
		if pending := len(mgr.Questions().Pending()); pending > 1 {
			fmt.Printf("          (%d more queued)\n", pending-1)
		}
	} else {
		fmt.Println("Question: none pending")
	}

	if recent := c.appCtx.Bus.GetHistory(5); len(recent) > 0 {
		fmt.Println("Activity:")
		for _, ev := range recent {
			fmt.Printf("  %s  %s (%s)\n", ev.Timestamp.Format("15:04:05"), ev.Type, ev.Source)
		}
	}
}

// ============================================
// Shell plumbing
// ============================================

// getPrompt returns the current prompt, reflecting connection state
// and whether a question is waiting
func (c *Console) getPrompt() string {
	state := "○"
	color := "\033[31m"
	if c.appCtx.Conn.Connected() {
		state = "●"
		color = "\033[32m"
	}

	marker := ""
	if c.activeQuestion() != nil {
		marker = " ?"
	}

	if c.isTTY {
		return fmt.Sprintf("%s%s\033[0m \033[36mpilot%s>\033[0m ", color, state, marker)
	}
	return fmt.Sprintf("%s pilot%s> ", state, marker)
}

func (c *Console) printWelcome() {
	fmt.Println()
	fmt.Printf("  %s %s console\n", modules.AppName, modules.AppVersion)
	fmt.Printf("  Backend: %s\n", c.appCtx.Config.Settings.ServerURL())
	fmt.Println()
	fmt.Println("  The backend speaks first; its messages print as they arrive.")
	fmt.Println("  Type 'help' for commands, 'exit' to quit.")
	fmt.Println()
}

func (c *Console) printHelp() {
	fmt.Println("Console commands:")
	fmt.Println("  answer <text>             Answer the pending question with text")
	fmt.Println("  button <key>              Answer the pending question with a button")
	fmt.Println("  cancel                    Dismiss the pending question")
	fmt.Println("  model <provider> <model>  Switch the backend LLM")
	fmt.Println("  status                    Show connection, model and question state")
	fmt.Println("  history [term]            Show command history")
	fmt.Println("  clear                     Clear the screen")
	fmt.Println("  exit                      Leave the console")
	fmt.Println()
	fmt.Println("  !<cmd> runs a shell command.")
}

// handleSpecialCommand handles console-level commands
func (c *Console) handleSpecialCommand(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "exit", "quit", "q":
		fmt.Println("Goodbye!")
		c.running = false
		return true

	case "clear", "cls":
		c.clearScreen()
		return true

	case "history":
		c.showHistory(parts[1:])
		return true
	}

	// Handle shell escape (!)
	if strings.HasPrefix(line, "!") {
		c.executeShellCommand(strings.TrimPrefix(line, "!"))
		return true
	}

	return false
}

// executeShellCommand executes an OS shell command
func (c *Console) executeShellCommand(cmdLine string) {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		return
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", cmdLine)
	} else {
		cmd = exec.Command("sh", "-c", cmdLine)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Printf("Shell error: %v\n", err)
	}
}

// clearScreen clears the terminal screen
func (c *Console) clearScreen() {
	if runtime.GOOS == "windows" {
		cmd := exec.Command("cmd", "/c", "cls")
		cmd.Stdout = os.Stdout
		cmd.Run()
	} else {
		fmt.Print("\033[2J\033[H")
	}
}

// showHistory shows command history
func (c *Console) showHistory(args []string) {
	if c.rl == nil {
		fmt.Println("History not available in non-interactive mode.")
		return
	}

	historyPath := c.getHistoryPath()
	data, err := os.ReadFile(historyPath)
	if err != nil {
		fmt.Println("No history available.")
		return
	}

	lines := strings.Split(string(data), "\n")

	searchTerm := ""
	if len(args) > 0 {
		searchTerm = strings.ToLower(args[0])
	}

	count := 0
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if searchTerm != "" && !strings.Contains(strings.ToLower(line), searchTerm) {
			continue
		}

		fmt.Printf("%4d  %s\n", i+1, line)
		count++

		if count >= 50 {
			fmt.Println("... (showing last 50 entries)")
			break
		}
	}
}

// getHistoryPath returns the path to the history file
func (c *Console) getHistoryPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return homeDir + "/" + historyFile
}

// buildCompleter builds the readline completer
func (c *Console) buildCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("answer"),
		readline.PcItem("button",
			readline.PcItemDynamic(func(string) []string {
				if q := c.activeQuestion(); q != nil {
					return buttonKeys(q)
				}
				return nil
			}),
		),
		readline.PcItem("cancel"),
		readline.PcItem("model",
			readline.PcItemDynamic(func(string) []string {
				providers := catalog.Providers()
				ids := make([]string, 0, len(providers))
				for _, p := range providers {
					ids = append(ids, p.ID)
				}
				return ids
			},
				readline.PcItemDynamic(func(line string) []string {
					fields := strings.Fields(line)
					if len(fields) < 2 {
						return nil
					}
					p, ok := catalog.FindProvider(fields[1])
					if !ok {
						return nil
					}
					return p.Models
				}),
			),
		),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("history"),
		readline.PcItem("clear"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// ANSI helpers, no-ops when stdin is not a terminal

func (c *Console) dim(s string) string {
	if !c.isTTY {
		return s
	}
	return "\033[90m" + s + "\033[0m"
}

func (c *Console) cyan(s string) string {
	if !c.isTTY {
		return s
	}
	return "\033[36m" + s + "\033[0m"
}

func (c *Console) yellow(s string) string {
	if !c.isTTY {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

// parseCommandLine parses a command line into parts
func parseCommandLine(line string) []string {
	var parts []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for _, ch := range line {
		switch {
		case ch == '"' || ch == '\'':
			if inQuote {
				if ch == quoteChar {
					inQuote = false
				} else {
					current.WriteRune(ch)
				}
			} else {
				inQuote = true
				quoteChar = ch
			}
		case ch == ' ' || ch == '\t':
			if inQuote {
				current.WriteRune(ch)
			} else if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// filterInput filters special input characters
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
