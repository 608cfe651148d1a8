package extensions

import (
	"math"
	"sync"
	"time"

	"fortio.org/log"
	"github.com/jonboulle/clockwork"
	"github.com/tevino/abool/v2"
	"zds.io/zds/eval"
	"zds.io/zds/object"
)

// Timer calls a script function after Interval milliseconds, once or
// repeatedly. Ticks are posted to the state's event queue and only run
// from State.RunEvents.
type Timer struct {
	state   *eval.State
	fn      object.Object
	repeat  bool
	running *abool.AtomicBool

	mu       sync.Mutex
	interval time.Duration
	t        clockwork.Timer
	gen      int // incremented on Stop, ticks from an older generation are dropped.
	disposed bool
}

func NewTimer(s *eval.State, fn object.Object, interval time.Duration, repeat bool) *Timer {
	return &Timer{
		state:    s,
		fn:       fn,
		repeat:   repeat,
		interval: interval,
		running:  abool.NewBool(false),
	}
}

var timerMembers = []string{"Interval", "Running", "Start", "Stop", "Dispose"}

func (t *Timer) Type() object.Type { return object.HOST }
func (t *Timer) Inspect() string   { return "[Timer Object]" }
func (t *Timer) Kind() string      { return "timer" }
func (t *Timer) Members() []string { return timerMembers }

func (t *Timer) Running() bool {
	return t.running.IsSet()
}

func (t *Timer) GetProperty(name string) object.Object {
	switch name {
	case "Interval":
		t.mu.Lock()
		defer t.mu.Unlock()
		return object.Number{Value: float64(t.interval.Milliseconds())}
	case "Running":
		return object.NativeBoolToBooleanObject(t.Running())
	default:
		return nil
	}
}

func (t *Timer) SetProperty(name string, value object.Object) object.Object {
	if name != "Interval" {
		return nil
	}
	d, oerr := milliseconds(value)
	if oerr != nil {
		return *oerr
	}
	t.mu.Lock()
	t.interval = d
	t.mu.Unlock()
	return value
}

func (t *Timer) CallMethod(_ any, name string, args []object.Object) object.Object {
	switch name {
	case "Start", "Stop", "Dispose":
	default:
		return nil
	}
	if oerr := checkArgs("timer", name, args, 0); oerr != nil {
		return *oerr
	}
	switch name {
	case "Start":
		if !t.Start() {
			return object.Errorf("timer.Start: timer was disposed")
		}
	case "Stop":
		t.Stop()
	case "Dispose":
		t.Dispose()
	}
	return object.NULL
}

// Start arms the timer, no-op when already running. Returns false once
// disposed.
func (t *Timer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed {
		return false
	}
	if !t.running.SetToIf(false, true) {
		return true
	}
	t.state.TimerStarted()
	t.arm()
	return true
}

// arm must be called with mu held.
func (t *Timer) arm() {
	gen := t.gen
	t.t = t.state.Clock.AfterFunc(t.interval, func() {
		t.state.Post(func() { t.tick(gen) })
	})
}

// tick runs on the interpreter goroutine.
func (t *Timer) tick(gen int) {
	t.mu.Lock()
	if gen != t.gen || !t.running.IsSet() {
		t.mu.Unlock()
		log.Debugf("dropping stale timer tick")
		return
	}
	if !t.repeat {
		t.running.UnSet()
		t.gen++
		t.state.TimerDone()
	}
	t.mu.Unlock()
	res := t.state.CallFunction(t.fn, nil)
	if err, ok := res.(object.Error); ok {
		log.Errf("Error in timer callback: %v", err)
		if t.repeat {
			t.Stop()
		}
		return
	}
	if !t.repeat {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	// The callback may have stopped (and even restarted) the timer.
	if gen == t.gen && t.running.IsSet() {
		t.arm()
	}
}

// Stop disarms the timer, no-op when not running.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running.SetToIf(true, false) {
		return
	}
	t.gen++
	if t.t != nil {
		t.t.Stop()
	}
	t.state.TimerDone()
}

// Dispose stops the timer for good.
func (t *Timer) Dispose() {
	t.Stop()
	t.mu.Lock()
	t.disposed = true
	t.fn = nil
	t.mu.Unlock()
}

func milliseconds(o object.Object) (time.Duration, *object.Error) {
	n, ok := o.(object.Number)
	if !ok {
		err := object.Errorf("interval must be a number of milliseconds, got %s", object.TypeName(o))
		return 0, &err
	}
	if n.Value < 0 || math.IsNaN(n.Value) {
		err := object.Errorf("invalid interval %s ms", o.Inspect())
		return 0, &err
	}
	ms, oerr := toInt(n)
	if oerr != nil {
		return 0, oerr
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func createTimerFunctions() {
	timerFn := object.Extension{
		MinArgs:  2,
		MaxArgs:  2,
		ArgTypes: []object.Type{object.ANY, object.NUMBER},
		Category: object.CategoryTime,
	}
	for _, repeat := range []bool{false, true} {
		timerFn.Name = "setTimeout"
		timerFn.Help = "setTimeout(fn, ms) calls fn once after ms milliseconds, returns the timer"
		if repeat {
			timerFn.Name = "setInterval"
			timerFn.Help = "setInterval(fn, ms) calls fn every ms milliseconds until cleared, returns the timer"
		}
		timerFn.Callback = func(env any, _ string, args []object.Object) object.Object {
			if !callable(args[0]) {
				return object.Errorf("argument #1 must be a function, got %s", object.TypeName(args[0]))
			}
			d, oerr := milliseconds(args[1])
			if oerr != nil {
				return *oerr
			}
			t := NewTimer(env.(*eval.State), args[0], d, repeat)
			t.Start()
			return t
		}
		MustCreate(timerFn)
	}
	MustCreate(object.Extension{
		Name:     "clearTimeout",
		MinArgs:  1,
		MaxArgs:  1,
		ArgTypes: []object.Type{object.ANY},
		Help:     "clearTimeout(timer) stops a timer from setTimeout or setInterval",
		Category: object.CategoryTime,
		Callback: func(_ any, _ string, args []object.Object) object.Object {
			if t, ok := args[0].(*Timer); ok {
				t.Stop()
			}
			return object.NULL
		},
	})
	object.AddIdentifier("clearInterval", object.ExtraFunctions()["clearTimeout"])
}
