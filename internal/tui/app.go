// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package tui

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/teradata-labs/bobbin/pkg/agent"
	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/conversation"
	"github.com/teradata-labs/bobbin/pkg/team"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	infoStyle  = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Options configure a new App.
type Options struct {
	Manager    conversation.Manager
	Cwd        string
	ProjectDir string
	BaseConfig *config.Config
	ProjectMCP map[string]config.MCPServer
}

// App is the application event dispatcher. Its Update method is the single
// consumer of UI events: terminal input, conversation events, and internal
// orchestration messages all arrive here, totally ordered, and every piece
// of UI state is mutated here and nowhere else. Background workers (frame
// scheduler, commit ticker, session readers, selector tasks) feed events
// back through Send.
type App struct {
	ctx        context.Context
	mgr        conversation.Manager
	cwd        string
	projectDir string
	baseConfig *config.Config
	projectMCP map[string]config.MCPServer

	events    chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
	scheduler *frameScheduler
	commit    *commitTicker

	team     *TeamContext
	workflow *WorkflowContext
	view     *SessionView

	history   []string
	keys      KeyMap
	width     int
	height    int
	animFrame int
}

// New creates the dispatcher. Background workers start immediately; the
// caller runs the bubbletea program and pumps Subscribe into it.
func New(ctx context.Context, opts Options) *App {
	a := &App{
		ctx:        ctx,
		mgr:        opts.Manager,
		cwd:        opts.Cwd,
		projectDir: opts.ProjectDir,
		baseConfig: opts.BaseConfig,
		projectMCP: opts.ProjectMCP,
		events:     make(chan tea.Msg, 128),
		done:       make(chan struct{}),
		keys:       DefaultKeyMap(),
	}
	if a.cwd == "" {
		a.cwd, _ = os.Getwd()
	}
	if a.baseConfig == nil {
		a.baseConfig = (&config.ProjectFile{}).BaseConfig()
	}
	a.scheduler = newFrameScheduler(a.Send)
	a.commit = newCommitTicker(a.Send)
	return a
}

// Send posts an event into the dispatcher queue. Safe from any goroutine;
// a no-op after Shutdown.
func (a *App) Send(msg tea.Msg) {
	select {
	case <-a.done:
	case a.events <- msg:
	}
}

// Subscribe pumps queued events into the running program.
func (a *App) Subscribe(p *tea.Program) {
	for {
		select {
		case <-a.done:
			return
		case msg := <-a.events:
			p.Send(msg)
		}
	}
}

// Shutdown stops the background workers and the active session.
func (a *App) Shutdown() {
	a.closeOnce.Do(func() {
		close(a.done)
		a.scheduler.Stop()
		a.commit.Stop()
		if a.view != nil {
			a.view.Close()
		}
	})
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model: the single-consumer event loop.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case InsertHistoryMsg:
		a.history = append(a.history, msg.Lines...)
		a.scheduler.RequestRedraw()

	case RequestRedrawMsg:
		a.scheduler.RequestRedraw()

	case ScheduleFrameMsg:
		a.scheduler.ScheduleFrameIn(msg.After)

	case RedrawMsg:
		// The runtime repaints after every Update; nothing to track.

	case StartCommitAnimationMsg:
		a.commit.Start()

	case StopCommitAnimationMsg:
		a.commit.Stop()

	case CommitTickMsg:
		a.animFrame++

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case tea.KeyPressMsg:
		return a, a.handleKey(msg)

	case tea.PasteMsg:
		if a.view != nil {
			a.view.HandlePaste(msg)
			a.scheduler.RequestRedraw()
		}

	case ConversationEventMsg:
		return a, a.handleConversationEvent(msg)

	case ConversationOpMsg:
		return a, a.handleOp(msg)

	case selectorResultMsg:
		return a, a.handleSelectorResult(msg)

	case SwitchToAgentMsg:
		return a, a.switchToAgent(msg)

	case RunWorkflowMsg:
		return a, a.startWorkflow(msg.Name)

	case DispatchCommandMsg:
		return a, a.handleCommand(msg)

	case DiffResultMsg:
		if msg.Err != nil {
			return a, a.info(fmt.Sprintf("diff failed: %v", msg.Err))
		}
		a.history = append(a.history, strings.Split(msg.Diff, "\n")...)
		a.scheduler.RequestRedraw()

	case StartFileSearchMsg:
		go a.searchFiles(msg.Query)

	case FileSearchResultMsg:
		a.history = append(a.history, msg.Matches...)
		a.scheduler.RequestRedraw()

	case OnboardingCompleteMsg:
		a.scheduler.RequestRedraw()

	case ExitRequestMsg:
		return a, tea.Quit
	}
	return a, nil
}

// handleKey routes key presses: dispatcher-level chords first, everything
// else to the composer.
func (a *App) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Interrupt):
		if a.view != nil {
			a.view.InterruptTask()
		}
		return nil
	case key.Matches(msg, a.keys.Quit):
		if a.view == nil || a.view.ComposerEmpty() {
			return tea.Quit
		}
		return nil
	case key.Matches(msg, a.keys.Suspend):
		return tea.Suspend
	default:
		if a.view == nil {
			return nil
		}
		cmd := a.view.HandleKey(msg)
		a.scheduler.RequestRedraw()
		return cmd
	}
}

// handleConversationEvent lets the workflow supervisor inspect the event,
// then forwards it to the active view. Events from replaced sessions are
// dropped.
func (a *App) handleConversationEvent(msg ConversationEventMsg) tea.Cmd {
	if a.view == nil || msg.ViewID != a.view.ID() {
		return nil
	}
	var cmd tea.Cmd
	if _, ok := msg.Event.Msg.(conversation.TaskComplete); ok && a.workflow != nil {
		cmd = a.advanceWorkflow()
	}
	a.view.HandleEvent(msg.Event)
	a.scheduler.RequestRedraw()
	return cmd
}

// handleOp gives the team router first refusal on user input ops. Slash
// commands never reach a conversation; @-tagged text bypasses routing.
func (a *App) handleOp(msg ConversationOpMsg) tea.Cmd {
	if in, ok := msg.Op.(conversation.UserInput); ok {
		if text, isText := conversation.FirstText(in); isText {
			trimmed := strings.TrimSpace(text)
			if strings.HasPrefix(trimmed, "/") {
				return a.dispatchSlash(trimmed)
			}
			if a.team != nil && !strings.HasPrefix(trimmed, "@") {
				return a.routeUserInput(text)
			}
		}
	}
	if a.view != nil {
		a.view.Submit(msg.Op)
		a.scheduler.RequestRedraw()
	}
	return nil
}

// dispatchSlash parses "/name args" into a DispatchCommandMsg.
func (a *App) dispatchSlash(text string) tea.Cmd {
	name, args, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	return cmdHandler(DispatchCommandMsg{Name: name, Args: strings.TrimSpace(args)})
}

// handleCommand executes a slash command.
func (a *App) handleCommand(msg DispatchCommandMsg) tea.Cmd {
	switch msg.Name {
	case "init":
		return a.initProject()
	case "agent":
		if msg.Args == "" {
			return a.info("usage: /agent <name>")
		}
		return cmdHandler(SwitchToAgentMsg{Name: msg.Args})
	case "team":
		if msg.Args == "" {
			return a.info("usage: /team <name>")
		}
		return a.switchToTeam(msg.Args)
	case "workflow":
		if msg.Args == "" {
			return a.info("usage: /workflow <name>")
		}
		return cmdHandler(RunWorkflowMsg{Name: msg.Args})
	case "quit":
		return tea.Quit
	default:
		return a.info("unknown command: /" + msg.Name)
	}
}

// initProject scaffolds a fresh configuration tree and adopts it.
func (a *App) initProject() tea.Cmd {
	if a.projectDir != "" {
		return a.info("project already initialized: " + a.projectDir)
	}
	root, err := config.InitProject(a.cwd)
	if err != nil {
		return a.errorLine(fmt.Sprintf("init failed: %v", err))
	}
	a.projectDir = root
	pf, err := config.LoadProjectFile(root)
	if err != nil {
		return a.errorLine(fmt.Sprintf("init succeeded but config failed to load: %v", err))
	}
	a.baseConfig = pf.BaseConfig()
	a.projectMCP = pf.MCPServers
	return a.info("initialized " + root)
}

// switchToTeam replaces the team context. The context survives until the
// next switch or app exit.
func (a *App) switchToTeam(name string) tea.Cmd {
	if a.projectDir == "" {
		return a.info("no project config directory discovered")
	}
	def, err := team.Load(a.projectDir, name)
	if err != nil {
		return a.errorLine(fmt.Sprintf("team %s failed to load: %v", name, err))
	}
	a.team = NewTeamContext(def)
	return a.info(fmt.Sprintf("switched to team %s (%s, %d members)", def.Name, def.Mode, len(def.Members)))
}

// switchToAgent spawns a fresh session widget for the named agent. A name
// that resolves to a team file performs the team switch instead, routing
// the initial prompt through the team router.
func (a *App) switchToAgent(msg SwitchToAgentMsg) tea.Cmd {
	if a.projectDir == "" {
		return a.info("no project config directory discovered")
	}
	if _, err := os.Stat(filepath.Join(a.projectDir, "teams", msg.Name+".toml")); err == nil {
		cmd := a.switchToTeam(msg.Name)
		if msg.InitialPrompt != "" {
			return tea.Batch(cmd, cmdHandler(ConversationOpMsg{Op: conversation.TextInput(msg.InitialPrompt)}))
		}
		return cmd
	}

	def, err := agent.Load(a.projectDir, msg.Name, a.projectMCP)
	if err != nil {
		return a.errorLine(fmt.Sprintf("agent %s failed to load: %v", msg.Name, err))
	}
	teamPrompt := ""
	if a.team != nil {
		teamPrompt = a.team.Prompt
	}
	cfg := def.ComposeConfig(a.baseConfig, teamPrompt, "")

	view, err := newSessionView(a.ctx, a.mgr, cfg, def.Name, msg.InitialPrompt, a.Send)
	if err != nil {
		return a.errorLine(fmt.Sprintf("agent %s session failed: %v", msg.Name, err))
	}
	if a.view != nil {
		a.view.Close()
	}
	a.view = view
	return a.info("switched to agent " + def.Name)
}

// searchFiles walks the working tree for names containing the query and
// posts up to 20 matches. Entries that cannot be read are skipped silently.
func (a *App) searchFiles(query string) {
	var matches []string
	root := a.cwd
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.Contains(d.Name(), query) {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil {
				matches = append(matches, rel)
			}
			if len(matches) >= 20 {
				return filepath.SkipAll
			}
		}
		return nil
	})
	a.Send(FileSearchResultMsg{Query: query, Matches: matches})
}

// info appends a dimmed status line to history.
func (a *App) info(text string) tea.Cmd {
	a.history = append(a.history, infoStyle.Render(text))
	a.scheduler.RequestRedraw()
	return nil
}

// errorLine appends a diagnostic line to history. Task failures never
// abort the dispatcher.
func (a *App) errorLine(text string) tea.Cmd {
	a.history = append(a.history, errStyle.Render(text))
	a.scheduler.RequestRedraw()
	return nil
}

// View implements tea.Model.
func (a *App) View() tea.View {
	view := tea.NewView(a.render())
	view.AltScreen = true
	return view
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧"}

func (a *App) render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("bobbin"))
	if a.team != nil {
		b.WriteString(infoStyle.Render("  team:" + a.team.Name))
	}
	if a.workflow != nil {
		b.WriteString(infoStyle.Render(fmt.Sprintf("  workflow:%s %d/%d", a.workflow.Name, a.workflow.Index+1, len(a.workflow.Steps))))
	}
	b.WriteString("\n")
	for _, line := range a.history {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if a.view != nil {
		b.WriteString(titleStyle.Render("@" + a.view.AgentName()))
		b.WriteString("\n")
		for _, line := range a.view.Transcript() {
			b.WriteString(line)
			b.WriteString("\n")
		}
		if a.view.Working() {
			b.WriteString(spinnerFrames[a.animFrame%len(spinnerFrames)] + " working\n")
		}
		b.WriteString(a.view.ComposerView())
	}
	return b.String()
}

// cmdHandler wraps a message in a command that returns it, re-entering the
// dispatcher in order.
func cmdHandler(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
