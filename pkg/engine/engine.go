package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inkwell-games/novel-engine/pkg/conditions"
	"github.com/inkwell-games/novel-engine/pkg/content"
	"github.com/inkwell-games/novel-engine/pkg/state"
	"github.com/inkwell-games/novel-engine/pkg/storage"
)

const defaultAutosaveInterval = 60 * time.Second

// maxEffectDepth caps recursive control-effect chains (phase change → scene
// entry dialog → more effects). Authored content never legitimately nests
// this deep; hitting the cap indicates a content cycle.
const maxEffectDepth = 16

// Option configures an Engine.
type Option func(*Engine)

// WithAutosaveInterval sets how often the live save is persisted in the
// background. An interval <= 0 disables autosave.
func WithAutosaveInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.autosaveEvery = d
	}
}

// Engine is the orchestration façade: it translates dispatched actions into
// manager transitions, drains effects to a fixed point, emits typed events
// and coordinates persistence. Engines are constructed explicitly and
// injected by the caller; there is no package-level default instance.
//
// Dispatch is serialized by an internal mutex, so concurrent callers are
// safe, but the design intent is a single cooperative caller per engine.
type Engine struct {
	mu    sync.Mutex
	mgr   *Manager
	index *content.Index
	store storage.Store
	bus   *Bus
	log   *slog.Logger

	autosaveEvery time.Duration
	autosaveStop  chan struct{}

	// created tracks whether the active save has been persisted before,
	// deciding save_created vs save_updated.
	created  bool
	lastMark time.Time
}

// New constructs an engine over a content index and a persistence store.
func New(index *content.Index, store storage.Store, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		mgr:           NewManager(index, log),
		index:         index,
		store:         store,
		bus:           NewBus(log),
		log:           log,
		autosaveEvery: defaultAutosaveInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers a listener for the given event types (or all events
// when none are given) and returns its unsubscribe handle.
func (e *Engine) Subscribe(fn Listener, types ...EventType) func() {
	return e.bus.Subscribe(fn, types...)
}

// State returns a snapshot of the current game state. The snapshot's
// pointer fields reference live content records and the live save; callers
// treat them as read-only.
func (e *Engine) State() state.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.mgr.State()
}

// Save returns the active save, or nil before a game starts.
func (e *Engine) Save() *state.GameSave {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mgr.Save()
}

// AvailableChoices returns the current node's condition-filtered choices.
func (e *Engine) AvailableChoices() []content.Choice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mgr.AvailableChoices()
}

// CheckCondition evaluates a condition expression against the live save's
// flags. With no active save the expression sees no flags.
func (e *Engine) CheckCondition(expr string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if save := e.mgr.Save(); save != nil {
		return conditions.Evaluate(expr, save.Flags)
	}
	return conditions.Evaluate(expr, nil)
}

// ExecuteEffects applies an arbitrary effect list against the live save,
// draining any control effects it triggers.
func (e *Engine) ExecuteEffects(ctx context.Context, effects []content.Effect) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mgr.Save() == nil {
		return fmt.Errorf("no active game")
	}
	e.drainEffects(effects, 0)
	return nil
}

// Dispatch is the single entry point for every state-changing intent. It
// returns an error only for persistence failures and missing saves;
// content-resolution misses inside the state machine degrade silently.
func (e *Engine) Dispatch(ctx context.Context, action Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch a := action.(type) {
	case StartNewGame:
		return e.startNewGame(ctx, a)
	case LoadSave:
		return e.loadSave(ctx, a)
	case ChangePhase:
		e.requireSave()
		e.transitionPhase(a.Phase, 0)
		return nil
	case ChangeScene:
		e.transitionScene(a.SceneID, 0)
		return nil
	case StartDialog:
		e.afterEnterDialog(e.mgr.StartDialog(a.ScriptID), 0)
		return nil
	case AdvanceDialog:
		e.advanceDialog()
		return nil
	case MakeChoice:
		e.makeChoice(a.ChoiceID)
		return nil
	case CompleteTypewriter:
		e.mgr.CompleteTypewriter()
		return nil
	case AddItem:
		return e.applyDataEffect(content.Effect{Type: content.EffectAddItem, AddItem: &content.AddItemPayload{
			ID:       a.Item.ID,
			Name:     a.Item.Name,
			Quantity: a.Item.Quantity,
		}})
	case RemoveItem:
		return e.applyDataEffect(content.Effect{Type: content.EffectRemoveItem, RemoveItem: &content.RemoveItemPayload{
			ItemID:   a.ItemID,
			Quantity: a.Quantity,
		}})
	case AddMemory:
		return e.applyDataEffect(content.Effect{Type: content.EffectAddMemory, AddMemory: &content.AddMemoryPayload{
			ID:      a.Memory.ID,
			Title:   a.Memory.Title,
			Text:    a.Memory.Text,
			SceneID: a.Memory.SceneID,
		}})
	case SetFlag:
		return e.applyDataEffect(content.Effect{Type: content.EffectSetFlag, SetFlag: &content.SetFlagPayload{
			Key:   a.Key,
			Value: a.Value,
		}})
	case UnlockAchievement:
		return e.applyDataEffect(content.Effect{Type: content.EffectUnlockAchievement, UnlockAchievement: &content.UnlockAchievementPayload{
			AchievementID: a.AchievementID,
		}})
	case SaveGame:
		return e.persist(ctx)
	case ToggleMenu:
		e.mgr.ToggleMenu()
		return nil
	case ToggleInventory:
		e.mgr.ToggleInventory()
		return nil
	case ToggleMemories:
		e.mgr.ToggleMemories()
		return nil
	default:
		return fmt.Errorf("unknown action type %T", action)
	}
}

// Close stops the autosave timer and drops every listener. In-flight
// dispatches finish naturally.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAutosave()
	e.bus.Clear()
	return nil
}

func (e *Engine) startNewGame(ctx context.Context, a StartNewGame) error {
	_, node := e.mgr.StartNewGame(a.PlayerName, a.PlayerAvatar)
	e.created = false
	e.lastMark = time.Now()
	if err := e.persist(ctx); err != nil {
		return err
	}
	e.afterEnterDialog(node, 0)
	e.armAutosave()
	return nil
}

func (e *Engine) loadSave(ctx context.Context, a LoadSave) error {
	e.mgr.SetLoading(true)
	gs, err := e.store.GetSave(ctx, a.SaveID)
	if err != nil {
		e.mgr.SetLoading(false)
		err = fmt.Errorf("failed to load save: %w", err)
		e.emitError(err)
		return err
	}
	if gs == nil {
		e.mgr.SetLoading(false)
		err := fmt.Errorf("save %s not found", a.SaveID)
		e.emitError(err)
		return err
	}
	e.mgr.LoadSave(gs)
	e.created = true
	e.lastMark = time.Now()
	e.emit(Event{Type: EventSaveLoaded})
	e.armAutosave()
	return nil
}

func (e *Engine) advanceDialog() {
	res := e.mgr.AdvanceDialog()
	switch res.Outcome {
	case AdvanceMoved:
		e.emit(Event{Type: EventDialogAdvanced, FromNodeID: res.FromNodeID, ToNodeID: res.Node.ID})
		e.drainEffects(res.Node.Effects, 0)
	case AdvanceEnded:
		e.emit(Event{Type: EventDialogEnded, LastNodeID: res.FromNodeID})
	}
}

func (e *Engine) makeChoice(choiceID string) {
	choice, node := e.mgr.MakeChoice(choiceID)
	if choice == nil {
		return
	}
	e.emit(Event{Type: EventChoiceMade, ChoiceID: choice.ID, ToNodeID: node.ID})
	// Choice effects apply before the target node's own effects.
	e.drainEffects(choice.Effects, 0)
	e.drainEffects(node.Effects, 0)
}

func (e *Engine) applyDataEffect(eff content.Effect) error {
	if e.mgr.Save() == nil {
		return fmt.Errorf("no active game")
	}
	e.drainEffects([]content.Effect{eff}, 0)
	return nil
}

func (e *Engine) requireSave() {
	if e.mgr.Save() == nil && e.log != nil {
		e.log.Warn("Transition dispatched without an active save")
	}
}

// drainEffects applies effects and resolves any control effects they carry,
// recursively, until no transition is pending.
func (e *Engine) drainEffects(effects []content.Effect, depth int) {
	if len(effects) == 0 {
		return
	}
	if depth > maxEffectDepth {
		e.emitError(fmt.Errorf("effect chain exceeded depth %d; content likely cycles", maxEffectDepth))
		return
	}
	for _, note := range e.mgr.ApplyEffects(effects) {
		switch note.Type {
		case state.NoteChangeScene:
			e.transitionScene(note.SceneID, depth+1)
		case state.NoteChangePhase:
			e.transitionPhase(note.Phase, depth+1)
		default:
			e.emit(eventFromNotification(note))
		}
	}
}

func (e *Engine) transitionScene(sceneID string, depth int) {
	save := e.mgr.Save()
	if save == nil {
		return
	}
	from := save.CurrentSceneID
	node := e.mgr.ChangeScene(sceneID)
	if save.CurrentSceneID != from {
		e.emit(Event{Type: EventSceneChanged, FromSceneID: from, ToSceneID: save.CurrentSceneID})
	}
	e.afterEnterDialog(node, depth)
}

func (e *Engine) transitionPhase(phase content.Phase, depth int) {
	save := e.mgr.Save()
	if save == nil {
		return
	}
	fromPhase := save.CurrentPhase
	fromScene := save.CurrentSceneID
	node := e.mgr.ChangePhase(phase)
	e.emit(Event{Type: EventPhaseChanged, FromPhase: fromPhase, ToPhase: save.CurrentPhase})
	if save.CurrentSceneID != fromScene {
		e.emit(Event{Type: EventSceneChanged, FromSceneID: fromScene, ToSceneID: save.CurrentSceneID})
	}
	e.afterEnterDialog(node, depth)
}

// afterEnterDialog announces a freshly entered dialog node and drains its
// effects. A nil node means the transition ended outside any dialog.
func (e *Engine) afterEnterDialog(node *content.DialogNode, depth int) {
	if node == nil {
		return
	}
	e.emit(Event{Type: EventDialogStarted, ScriptID: node.ScriptID, ToNodeID: node.ID})
	e.drainEffects(node.Effects, depth)
}

// persist writes the live save, accruing play time since the last persist.
// Failures are surfaced both as the returned error and as an error event so
// passive observers learn of them.
func (e *Engine) persist(ctx context.Context) error {
	save := e.mgr.Save()
	if save == nil {
		return fmt.Errorf("no active game to save")
	}

	now := time.Now()
	if !e.lastMark.IsZero() {
		save.PlayTime += int64(now.Sub(e.lastMark).Seconds())
	}
	e.lastMark = now

	if err := e.store.PutSave(ctx, save); err != nil {
		err = fmt.Errorf("failed to persist save: %w", err)
		e.emitError(err)
		return err
	}

	if e.created {
		e.emit(Event{Type: EventSaveUpdated})
	} else {
		e.created = true
		e.emit(Event{Type: EventSaveCreated})
	}
	return nil
}

func (e *Engine) armAutosave() {
	if e.autosaveEvery <= 0 || e.autosaveStop != nil {
		return
	}
	stop := make(chan struct{})
	e.autosaveStop = stop

	go func() {
		ticker := time.NewTicker(e.autosaveEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.mu.Lock()
				if e.mgr.Save() != nil {
					// Autosave failures are reported via the error event
					// inside persist; there is no caller to return to.
					_ = e.persist(context.Background())
				}
				e.mu.Unlock()
			}
		}
	}()
}

func (e *Engine) stopAutosave() {
	if e.autosaveStop != nil {
		close(e.autosaveStop)
		e.autosaveStop = nil
	}
}

func (e *Engine) emit(ev Event) {
	ev.At = time.Now()
	if save := e.mgr.Save(); save != nil {
		ev.SaveID = save.ID
	}
	e.bus.Publish(ev)
}

func (e *Engine) emitError(err error) {
	if e.log != nil {
		e.log.Error("Engine error", "error", err)
	}
	e.emit(Event{Type: EventError, Message: err.Error()})
}

func eventFromNotification(n state.Notification) Event {
	ev := Event{
		FlagKey:       n.FlagKey,
		FlagValue:     n.FlagValue,
		Item:          n.Item,
		ItemID:        n.ItemID,
		Quantity:      n.Quantity,
		Memory:        n.Memory,
		AchievementID: n.AchievementID,
		SoundID:       n.SoundID,
		DurationMS:    n.DurationMS,
	}
	switch n.Type {
	case state.NoteFlagChanged:
		ev.Type = EventFlagChanged
	case state.NoteItemAdded:
		ev.Type = EventItemAdded
	case state.NoteItemRemoved:
		ev.Type = EventItemRemoved
	case state.NoteMemoryAdded:
		ev.Type = EventMemoryAdded
	case state.NoteAchievementUnlocked:
		ev.Type = EventAchievementUnlocked
	case state.NotePlaySound:
		ev.Type = EventPlaySound
	case state.NoteShakeScreen:
		ev.Type = EventShakeScreen
	}
	return ev
}
