package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/inkwell-games/novel-engine/pkg/content"
	"github.com/inkwell-games/novel-engine/pkg/engine"
	"github.com/inkwell-games/novel-engine/pkg/state"
	"github.com/inkwell-games/novel-engine/pkg/storage"
)

const (
	PlaceHolderName = "Your name..."

	typewriterInterval = 30 * time.Millisecond
	toastDuration      = 3 * time.Second
)

var titleCaser = cases.Title(language.English)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	eng   *engine.Engine
	store storage.Store
	index *content.Index

	sceneViewport viewport.Model
	metaViewport  viewport.Model
	nameInput     textinput.Model
	ready         bool
	width         int
	height        int
	err           error

	// Transcript of everything spoken so far, already token-expanded.
	transcript []transcriptLine

	// Save selection state
	showSaveModal bool
	saves         []*state.GameSave
	selectedSave  int
	loadingSaves  bool

	// Name entry state
	showNameModal bool

	// Quit confirmation state
	showQuitModal bool

	// Typewriter state
	revealed int

	// Choice selection state
	selectedChoice int

	// lastNodeID guards the transcript against double-appending when an
	// advance does not actually move (await-choice, typewriter completion).
	lastNodeID string

	// Transient notification line (achievements, sounds, save confirms)
	toast      string
	toastUntil time.Time

	events       chan engine.Event
	unsubscribe  func()
	shakeUntil   time.Time
	statusNotice string
}

type transcriptLine struct {
	speaker string
	text    string
}

type savesLoadedMsg struct {
	saves []*state.GameSave
	err   error
}

type engineEventMsg struct {
	event engine.Event
}

type typewriterTickMsg struct{}

type toastExpiredMsg struct{}

var (
	scenePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	choiceSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(eng *engine.Engine, store storage.Store, index *content.Index) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderName
	ti.CharLimit = 40
	ti.Width = 30

	sceneVp := viewport.New(50, 20)
	sceneVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	ch := make(chan engine.Event, 64)
	unsubscribe := eng.Subscribe(func(ev engine.Event) {
		select {
		case ch <- ev:
		default: // drop rather than block the dispatcher
		}
	},
		engine.EventAchievementUnlocked,
		engine.EventPlaySound,
		engine.EventShakeScreen,
		engine.EventSaveCreated,
		engine.EventSaveUpdated,
		engine.EventError,
	)

	return ConsoleUI{
		eng:           eng,
		store:         store,
		index:         index,
		nameInput:     ti,
		sceneViewport: sceneVp,
		metaViewport:  metaVp,
		showSaveModal: true,
		loadingSaves:  true,
		events:        ch,
		unsubscribe:   unsubscribe,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.loadSaves(), m.waitForEvent())
}

func (m ConsoleUI) loadSaves() tea.Cmd {
	return func() tea.Msg {
		saves, err := m.store.ListSaves(context.Background())
		return savesLoadedMsg{saves, err}
	}
}

// waitForEvent bridges the engine's listener callbacks into the tea loop.
func (m ConsoleUI) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return engineEventMsg{<-m.events}
	}
}

func typewriterTick() tea.Cmd {
	return tea.Tick(typewriterInterval, func(time.Time) tea.Msg {
		return typewriterTickMsg{}
	})
}

func toastTimer() tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{}
	})
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Engine events and timers apply in every mode.
	switch msg := msg.(type) {
	case engineEventMsg:
		m.applyEvent(msg.event)
		return m, tea.Batch(m.waitForEvent(), toastTimer())

	case toastExpiredMsg:
		if time.Now().After(m.toastUntil) {
			m.toast = ""
		}
		return m, nil
	}

	if m.showSaveModal {
		return m.updateSaveModal(msg)
	}
	if m.showNameModal {
		return m.updateNameModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd, mvCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.sceneViewport, vpCmd = m.sceneViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeSceneContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case typewriterTickMsg:
		gs := m.eng.State()
		if gs.TypewriterComplete || gs.CurrentDialogNode == nil {
			return m, nil
		}
		m.revealed += 2
		if m.revealed >= len(m.currentText()) {
			_ = m.eng.Dispatch(context.Background(), engine.CompleteTypewriter{})
			m.writeSceneContent()
			return m, nil
		}
		m.writeSceneContent()
		return m, typewriterTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	m.sceneViewport, vpCmd = m.sceneViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	gs := m.eng.State()

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil

	case tea.KeyUp:
		if m.listOpen(gs) && m.selectedChoice > 0 {
			m.selectedChoice--
			m.writeSceneContent()
		}
		return m, nil

	case tea.KeyDown:
		if m.listOpen(gs) {
			if m.selectedChoice < m.listLen(gs)-1 {
				m.selectedChoice++
				m.writeSceneContent()
			}
		}
		return m, nil

	case tea.KeyEnter, tea.KeySpace:
		return m.advance(gs)
	}

	switch msg.String() {
	case "i":
		_ = m.eng.Dispatch(context.Background(), engine.ToggleInventory{})
		m.metaViewport.SetContent(m.writeMetadata())
	case "m":
		_ = m.eng.Dispatch(context.Background(), engine.ToggleMemories{})
		m.metaViewport.SetContent(m.writeMetadata())
	case "tab":
		_ = m.eng.Dispatch(context.Background(), engine.ToggleMenu{})
		m.metaViewport.SetContent(m.writeMetadata())
	case "q":
		m.showQuitModal = true
	case "ctrl+s":
		_ = m.eng.Dispatch(context.Background(), engine.SaveGame{})
	case "ctrl+y":
		if err := clipboard.WriteAll(m.transcriptText()); err == nil {
			m.setToast("Transcript copied to clipboard")
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		// Digits pick a list entry directly.
		n := int(msg.String()[0] - '0')
		if m.listOpen(gs) && n <= m.listLen(gs) {
			m.selectedChoice = n - 1
			return m.advance(gs)
		}
	}
	return m, nil
}

// advance is the single "continue" interaction: it completes the typewriter,
// commits the selected choice, or steps the dialog, in that order.
func (m ConsoleUI) advance(gs state.GameState) (tea.Model, tea.Cmd) {
	if gs.CurrentDialogNode != nil && !gs.TypewriterComplete {
		_ = m.eng.Dispatch(context.Background(), engine.CompleteTypewriter{})
		m.writeSceneContent()
		return m, nil
	}

	if m.choicesOpen(gs) {
		choices := m.eng.AvailableChoices()
		if m.selectedChoice < len(choices) {
			chosen := choices[m.selectedChoice]
			m.appendLine(content.SpeakerPlayer, chosen.Text)
			_ = m.eng.Dispatch(context.Background(), engine.MakeChoice{ChoiceID: chosen.ID})
			m.selectedChoice = 0
			return m.afterTransition()
		}
		return m, nil
	}

	if m.hotspotsOpen(gs) {
		hotspots := gs.CurrentScene.Hotspots
		if m.selectedChoice < len(hotspots) {
			h := hotspots[m.selectedChoice]
			m.selectedChoice = 0
			switch {
			case h.SceneID != "":
				_ = m.eng.Dispatch(context.Background(), engine.ChangeScene{SceneID: h.SceneID})
			case h.ScriptID != "":
				_ = m.eng.Dispatch(context.Background(), engine.StartDialog{ScriptID: h.ScriptID})
			}
			return m.afterTransition()
		}
		return m, nil
	}

	_ = m.eng.Dispatch(context.Background(), engine.AdvanceDialog{})
	res := m.eng.State()
	if res.CurrentDialogNode == nil {
		// Dialog ended; the scene's hotspots take over.
		m.selectedChoice = 0
	}
	return m.afterTransition()
}

// afterTransition refreshes the view for whatever node the engine landed on
// and restarts the typewriter.
func (m ConsoleUI) afterTransition() (tea.Model, tea.Cmd) {
	gs := m.eng.State()
	if gs.CurrentDialogNode != nil {
		if gs.CurrentDialogNode.ID != m.lastNodeID {
			m.appendLine(gs.CurrentDialogNode.Speaker, gs.CurrentDialogNode.Text)
			m.lastNodeID = gs.CurrentDialogNode.ID
			m.revealed = 0
			m.writeSceneContent()
			m.metaViewport.SetContent(m.writeMetadata())
			return m, typewriterTick()
		}
		m.writeSceneContent()
		m.metaViewport.SetContent(m.writeMetadata())
		return m, nil
	}
	m.lastNodeID = ""
	m.writeSceneContent()
	m.metaViewport.SetContent(m.writeMetadata())
	return m, nil
}

func (m *ConsoleUI) choicesOpen(gs state.GameState) bool {
	return gs.ShowChoices && gs.TypewriterComplete && gs.CurrentDialogNode != nil
}

// hotspotsOpen reports whether the scene's hotspot list is the active
// interaction, which happens whenever no dialog is running.
func (m *ConsoleUI) hotspotsOpen(gs state.GameState) bool {
	return gs.CurrentDialogNode == nil && gs.CurrentScene != nil && len(gs.CurrentScene.Hotspots) > 0
}

func (m *ConsoleUI) listOpen(gs state.GameState) bool {
	return m.choicesOpen(gs) || m.hotspotsOpen(gs)
}

func (m *ConsoleUI) listLen(gs state.GameState) int {
	if m.choicesOpen(gs) {
		return len(m.eng.AvailableChoices())
	}
	if m.hotspotsOpen(gs) {
		return len(gs.CurrentScene.Hotspots)
	}
	return 0
}

func (m *ConsoleUI) appendLine(speaker, text string) {
	if save := m.eng.Save(); save != nil {
		text = save.ExpandText(text)
	}
	m.transcript = append(m.transcript, transcriptLine{speaker: speaker, text: text})
}

func (m *ConsoleUI) currentText() string {
	if len(m.transcript) == 0 {
		return ""
	}
	return m.transcript[len(m.transcript)-1].text
}

func (m *ConsoleUI) setToast(text string) {
	m.toast = text
	m.toastUntil = time.Now().Add(toastDuration)
}

func (m *ConsoleUI) applyEvent(ev engine.Event) {
	switch ev.Type {
	case engine.EventAchievementUnlocked:
		m.setToast("Achievement unlocked: " + ev.AchievementID)
	case engine.EventPlaySound:
		m.setToast("♪ " + ev.SoundID)
	case engine.EventShakeScreen:
		m.shakeUntil = time.Now().Add(time.Duration(ev.DurationMS) * time.Millisecond)
	case engine.EventSaveCreated, engine.EventSaveUpdated:
		m.statusNotice = "Saved " + time.Now().Format("15:04:05")
		m.metaViewport.SetContent(m.writeMetadata())
	case engine.EventError:
		m.setToast("Error: " + ev.Message)
	}
	m.writeSceneContent()
}

func (m *ConsoleUI) resize() {
	sceneWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - sceneWidth - 6

	m.sceneViewport.Width = sceneWidth - 2
	m.sceneViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.ready = true
}

// writeSceneContent rebuilds the scene viewport: transcript, the current
// line under typewriter reveal, and the open choice list.
func (m *ConsoleUI) writeSceneContent() {
	sceneWidth := m.sceneViewport.Width - 6
	if sceneWidth < 10 {
		sceneWidth = 10
	}

	gs := m.eng.State()

	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(m.index.Title())) + "\n\n")

	if gs.CurrentScene != nil {
		location := gs.CurrentBackground
		if location == "" {
			location = gs.CurrentScene.ID
		}
		content.WriteString(promptStyle.Render("["+location+"]") + "\n")
		if gs.CurrentCharacterSprite != "" {
			content.WriteString(promptStyle.Render("("+gs.CurrentCharacterSprite+")") + "\n")
		}
		content.WriteString("\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", sceneWidth)) + "\n\n")

	for i, line := range m.transcript {
		text := line.text
		if i == len(m.transcript)-1 && !gs.TypewriterComplete && gs.CurrentDialogNode != nil {
			if m.revealed < len(text) {
				text = text[:m.revealed]
			}
		}
		content.WriteString(formatDialogLine(line.speaker, text, sceneWidth) + "\n\n")
	}

	if m.choicesOpen(gs) {
		for i, choice := range m.eng.AvailableChoices() {
			text := choice.Text
			if save := m.eng.Save(); save != nil {
				text = save.ExpandText(text)
			}
			label := fmt.Sprintf("%d. %s", i+1, text)
			if i == m.selectedChoice {
				content.WriteString(choiceSelectedStyle.Render("▶ "+label) + "\n")
			} else {
				content.WriteString(choiceStyle.Render("  "+label) + "\n")
			}
		}
		content.WriteString("\n")
	} else if m.hotspotsOpen(gs) {
		for i, h := range gs.CurrentScene.Hotspots {
			label := fmt.Sprintf("%d. %s", i+1, h.Label)
			if i == m.selectedChoice {
				content.WriteString(choiceSelectedStyle.Render("▶ "+label) + "\n")
			} else {
				content.WriteString(choiceStyle.Render("  "+label) + "\n")
			}
		}
		content.WriteString("\n")
	} else if gs.CurrentDialogNode != nil && gs.TypewriterComplete {
		content.WriteString(promptStyle.Render("Press Enter to continue...") + "\n")
	}

	if m.toast != "" {
		content.WriteString("\n" + toastStyle.Render(m.toast) + "\n")
	}

	m.sceneViewport.SetContent(content.String())
	m.sceneViewport.GotoBottom()
}

func formatDialogLine(speaker, text string, width int) string {
	switch speaker {
	case content.SpeakerNarrator, "":
		return narratorStyle.Render(wordwrap.String(text, width))
	case content.SpeakerPlayer:
		return playerStyle.Render("You: ") + wordwrap.String(text, width-5)
	default:
		name := titleCaser.String(speaker)
		return speakerStyle.Render(name+": ") + wordwrap.String(text, width-len(name)-2)
	}
}

func (m *ConsoleUI) writeMetadata() string {
	save := m.eng.Save()
	gs := m.eng.State()

	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME") + "\n\n")

	if save == nil {
		content.WriteString("No active game\n")
		return content.String()
	}

	content.WriteString("Player:\n")
	content.WriteString(save.PlayerName + "\n\n")

	content.WriteString("Phase:\n")
	content.WriteString(string(save.CurrentPhase) + "\n\n")

	content.WriteString("Scene:\n")
	content.WriteString(save.CurrentSceneID + "\n\n")

	if m.statusNotice != "" {
		content.WriteString(m.statusNotice + "\n\n")
	}

	if gs.ShowInventory {
		content.WriteString(titleStyle.Render("INVENTORY") + "\n")
		if len(save.Inventory) == 0 {
			content.WriteString("Empty\n")
		}
		for _, item := range save.Inventory {
			content.WriteString(fmt.Sprintf("• %s x%d\n", item.Name, item.Quantity))
		}
		content.WriteString("\n")
	}

	if gs.ShowMemories {
		content.WriteString(titleStyle.Render("MEMORIES") + "\n")
		if len(save.Memories) == 0 {
			content.WriteString("None yet\n")
		}
		for _, mem := range save.Memories {
			content.WriteString("• " + mem.Title + "\n")
		}
		content.WriteString("\n")
	}

	if len(save.Achievements) > 0 {
		content.WriteString("Achievements:\n")
		content.WriteString(fmt.Sprintf("%d unlocked\n\n", len(save.Achievements)))
	}

	if gs.ShowMenu {
		content.WriteString("Commands:\n")
		content.WriteString("• Enter: Advance\n")
		content.WriteString("• ↑/↓ or 1-9: Choose\n")
		content.WriteString("• i: Inventory\n")
		content.WriteString("• m: Memories\n")
		content.WriteString("• Ctrl+S: Save\n")
		content.WriteString("• Ctrl+Y: Copy log\n")
		content.WriteString("• q: Quit\n")
	} else {
		content.WriteString("Tab: Commands\n")
	}

	return content.String()
}

func (m *ConsoleUI) transcriptText() string {
	var sb strings.Builder
	for _, line := range m.transcript {
		switch line.speaker {
		case content.SpeakerNarrator, "":
			sb.WriteString(line.text)
		case content.SpeakerPlayer:
			sb.WriteString("You: " + line.text)
		default:
			sb.WriteString(titleCaser.String(line.speaker) + ": " + line.text)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m ConsoleUI) updateSaveModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case savesLoadedMsg:
		m.loadingSaves = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.saves = msg.saves
		}

	case tea.KeyMsg:
		if m.loadingSaves {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedSave > 0 {
				m.selectedSave--
			}
		case tea.KeyDown:
			if m.selectedSave < len(m.saves) {
				m.selectedSave++
			}
		case tea.KeyEnter:
			if m.selectedSave == 0 {
				// New game: ask for the player's name first.
				m.showSaveModal = false
				m.showNameModal = true
				m.nameInput.Focus()
				return m, textinput.Blink
			}
			save := m.saves[m.selectedSave-1]
			if err := m.eng.Dispatch(context.Background(), engine.LoadSave{SaveID: save.ID}); err != nil {
				m.err = err
				return m, nil
			}
			m.showSaveModal = false
			return m.beginPlay()
		}
	}

	return m, nil
}

func (m ConsoleUI) updateNameModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			name := strings.TrimSpace(m.nameInput.Value())
			if name == "" {
				name = "Player"
			}
			if err := m.eng.Dispatch(context.Background(), engine.StartNewGame{PlayerName: name}); err != nil {
				m.err = err
				return m, nil
			}
			m.showNameModal = false
			return m.beginPlay()
		}
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// beginPlay seeds the transcript from the node the engine resumed or
// started on and kicks off the typewriter.
func (m ConsoleUI) beginPlay() (tea.Model, tea.Cmd) {
	if m.width > 0 && m.height > 0 {
		m.resize()
	}
	gs := m.eng.State()
	if gs.CurrentDialogNode != nil {
		m.appendLine(gs.CurrentDialogNode.Speaker, gs.CurrentDialogNode.Text)
		m.lastNodeID = gs.CurrentDialogNode.ID
		m.revealed = 0
	}
	m.writeSceneContent()
	m.metaViewport.SetContent(m.writeMetadata())
	return m, typewriterTick()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m.quit()
		default:
			switch msg.String() {
			case "y", "Y":
				return m.quit()
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) quit() (tea.Model, tea.Cmd) {
	// Best effort final save; in-memory stores lose it anyway.
	_ = m.eng.Dispatch(context.Background(), engine.SaveGame{})
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return m, tea.Quit
}

func (m ConsoleUI) renderSaveModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingSaves {
		content.WriteString(modalTitleStyle.Render("Loading Saves..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else {
		content.WriteString(modalTitleStyle.Render(m.index.Title()))
		content.WriteString("\n\n")

		entries := append([]string{"New Game"}, saveLabels(m.saves)...)
		for i, entry := range entries {
			if i == m.selectedSave {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + entry))
			} else {
				content.WriteString(modalItemStyle.Render("  " + entry))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func saveLabels(saves []*state.GameSave) []string {
	labels := make([]string, 0, len(saves))
	for _, save := range saves {
		labels = append(labels, fmt.Sprintf("%s - %s (%s)",
			save.PlayerName,
			save.CurrentSceneID,
			save.UpdatedAt.Format("Jan 2 15:04")))
	}
	return labels
}

func (m ConsoleUI) renderNameModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("New Game"))
	content.WriteString("\n\n")
	content.WriteString("What is your name?")
	content.WriteString("\n\n")
	content.WriteString(m.nameInput.View())
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Enter to begin"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress will be saved before exiting.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showSaveModal {
		return m.renderSaveModal()
	}
	if m.showNameModal {
		return m.renderNameModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	sceneWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - sceneWidth - 6

	// A crude shake: offset the panel while the effect is live.
	leftPad := scenePanelStyle
	if time.Now().Before(m.shakeUntil) {
		leftPad = leftPad.PaddingLeft(4)
	}

	scenePanel := leftPad.Width(sceneWidth).Height(m.height - 3).Render(
		m.sceneViewport.View(),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, scenePanel, metaPanel)
}
