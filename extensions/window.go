package extensions

import (
	"fmt"
	"strings"
	"sync"

	"fortio.org/log"
	"fortio.org/safecast"
	"zds.io/zds/eval"
	"zds.io/zds/object"
)

const DefaultWindowTitle = "zds Window"

// checkArgs validates host method arguments: count in [minArgs, len(types)]
// and per position type (ANY skips).
func checkArgs(kind, method string, args []object.Object, minArgs int, types ...object.Type) *object.Error {
	if len(args) < minArgs || len(args) > len(types) {
		want := fmt.Sprintf("%d", minArgs)
		if len(types) != minArgs {
			want = fmt.Sprintf("%d to %d", minArgs, len(types))
		}
		err := object.Errorf("%s.%s: wrong number of arguments. got=%d, want=%s", kind, method, len(args), want)
		return &err
	}
	for i, a := range args {
		if types[i] != object.ANY && a.Type() != types[i] {
			err := object.Errorf("%s.%s: argument #%d must be %s, got %s",
				kind, method, i+1, object.Article(types[i]), object.TypeName(a))
			return &err
		}
	}
	return nil
}

func num(o object.Object) float64 {
	return o.(object.Number).Value
}

func toInt(o object.Object) (int, *object.Error) {
	i, err := safecast.Truncate[int](num(o))
	if err != nil {
		oerr := object.Errorf("invalid integer %s: %v", o.Inspect(), err)
		return 0, &oerr
	}
	return i, nil
}

type Label struct {
	Text string
	X, Y int
}

// Window is a headless window: it keeps its properties, labels and key
// handlers. Key presses are injected with KeyDown/KeyUp.
type Window struct {
	state *eval.State

	mu              sync.Mutex
	width, height   int
	fullScreen      bool
	maxRefreshRate  int
	backgroundColor string
	title           string
	visible         bool
	labels          []Label
	keyDown         map[string]object.Object
	keyUp           map[string]object.Object
}

func NewWindow(s *eval.State, width, height int) *Window {
	return &Window{
		state:           s,
		width:           width,
		height:          height,
		maxRefreshRate:  60,
		backgroundColor: "White",
		title:           DefaultWindowTitle,
		keyDown:         make(map[string]object.Object),
		keyUp:           make(map[string]object.Object),
	}
}

var windowMembers = []string{
	"Width", "Height", "FullScreen", "MaxRefreshRate", "BackgroundColor", "Title",
	"Show", "Close", "SetTitle", "AddLabel",
}

func (w *Window) Type() object.Type { return object.HOST }
func (w *Window) Inspect() string   { return "[Window Object]" }
func (w *Window) Kind() string      { return "window" }
func (w *Window) Members() []string { return windowMembers }

func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *Window) Labels() []Label {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Label(nil), w.labels...)
}

func (w *Window) GetProperty(name string) object.Object {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch name {
	case "Width":
		return object.Number{Value: float64(w.width)}
	case "Height":
		return object.Number{Value: float64(w.height)}
	case "FullScreen":
		return object.NativeBoolToBooleanObject(w.fullScreen)
	case "MaxRefreshRate":
		return object.Number{Value: float64(w.maxRefreshRate)}
	case "BackgroundColor":
		return object.String{Value: w.backgroundColor}
	case "Title":
		return object.String{Value: w.title}
	default:
		return nil
	}
}

func (w *Window) SetProperty(name string, value object.Object) object.Object {
	want := object.NUMBER
	switch name {
	case "Width", "Height", "MaxRefreshRate":
	case "FullScreen":
		want = object.BOOLEAN
	case "BackgroundColor", "Title":
		want = object.STRING
	default:
		return nil
	}
	if value.Type() != want {
		return object.Errorf("window.%s must be %s, got %s", name, object.Article(want), object.TypeName(value))
	}
	var i int
	if want == object.NUMBER {
		var oerr *object.Error
		if i, oerr = toInt(value); oerr != nil {
			return *oerr
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch name {
	case "Width":
		w.width = i
	case "Height":
		w.height = i
	case "MaxRefreshRate":
		w.maxRefreshRate = i
	case "FullScreen":
		w.fullScreen = value.(object.Boolean).Value
	case "BackgroundColor":
		w.backgroundColor = value.(object.String).Value
		if _, ok := lookupColor(w.backgroundColor); !ok {
			log.Warnf("Unknown color %q for window background, using white", w.backgroundColor)
		}
	case "Title":
		w.title = value.(object.String).Value
	}
	return value
}

func (w *Window) CallMethod(_ any, name string, args []object.Object) object.Object {
	switch name {
	case "Show", "Close":
		if oerr := checkArgs("window", name, args, 0); oerr != nil {
			return *oerr
		}
		w.mu.Lock()
		w.visible = name == "Show"
		w.mu.Unlock()
		log.LogVf("window %q visible=%t", w.title, name == "Show")
		return object.NULL
	case "SetTitle":
		if oerr := checkArgs("window", name, args, 1, object.STRING); oerr != nil {
			return *oerr
		}
		w.mu.Lock()
		w.title = args[0].(object.String).Value
		w.mu.Unlock()
		return object.NULL
	case "AddLabel":
		if oerr := checkArgs("window", name, args, 3, object.STRING, object.NUMBER, object.NUMBER); oerr != nil {
			return *oerr
		}
		x, oerr := toInt(args[1])
		if oerr != nil {
			return *oerr
		}
		y, oerr := toInt(args[2])
		if oerr != nil {
			return *oerr
		}
		w.mu.Lock()
		w.labels = append(w.labels, Label{Text: args[0].(object.String).Value, X: x, Y: y})
		w.mu.Unlock()
		return object.NULL
	default:
		return nil
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(key)
}

func (w *Window) setHandler(down bool, key string, fn object.Object) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if down {
		w.keyDown[normalizeKey(key)] = fn
	} else {
		w.keyUp[normalizeKey(key)] = fn
	}
}

func (w *Window) key(down bool, key string) bool {
	w.mu.Lock()
	handlers := w.keyUp
	what := "key up"
	if down {
		handlers = w.keyDown
		what = "key down"
	}
	fn, ok := handlers[normalizeKey(key)]
	w.mu.Unlock()
	if !ok {
		log.Debugf("no %s handler for %q", what, key)
		return false
	}
	w.state.PostCall(what, fn, object.String{Value: key})
	return true
}

// KeyDown queues the handler registered with onKeyDown for key (case
// insensitive), with the key name as argument. Safe to call from any goroutine.
// Returns false when there is no handler.
func (w *Window) KeyDown(key string) bool {
	return w.key(true, key)
}

// KeyUp is KeyDown for onKeyUp handlers.
func (w *Window) KeyUp(key string) bool {
	return w.key(false, key)
}

func createWindowFunctions() {
	MustCreate(object.Extension{
		Name:     "window",
		MinArgs:  2,
		MaxArgs:  2,
		ArgTypes: []object.Type{object.NUMBER, object.NUMBER},
		Help:     "window(width, height) creates and shows a window",
		Category: object.CategoryGUI,
		Callback: func(env any, _ string, args []object.Object) object.Object {
			width, oerr := toInt(args[0])
			if oerr != nil {
				return *oerr
			}
			height, oerr := toInt(args[1])
			if oerr != nil {
				return *oerr
			}
			if width <= 0 || height <= 0 || width > MaxImageSize || height > MaxImageSize {
				return object.Errorf("window size must be between 1 and %d, got %dx%d", MaxImageSize, width, height)
			}
			w := NewWindow(env.(*eval.State), width, height)
			w.visible = true
			log.LogVf("created window %dx%d", width, height)
			return w
		},
	})
	MustCreate(object.Extension{
		Name:     "createPanel",
		MinArgs:  1,
		MaxArgs:  1,
		ArgTypes: []object.Type{object.HOST},
		Help:     "createPanel(window) drawing surface the size of the window",
		Category: object.CategoryGUI,
		Callback: func(_ any, _ string, args []object.Object) object.Object {
			w, ok := args[0].(*Window)
			if !ok {
				return object.Errorf("argument #1 must be a window, got %s", object.TypeName(args[0]))
			}
			width, height := w.Size()
			return NewPanel(width, height)
		},
	})
	keyFn := object.Extension{
		MinArgs:  3,
		MaxArgs:  3,
		ArgTypes: []object.Type{object.HOST, object.ANY, object.ANY},
		Category: object.CategoryGUI,
	}
	for _, down := range []bool{true, false} {
		keyFn.Name = "onKeyUp"
		if down {
			keyFn.Name = "onKeyDown"
		}
		keyFn.Help = keyFn.Name + "(window, key, fn) calls fn(key) when key is pressed in window"
		keyFn.Callback = func(_ any, _ string, args []object.Object) object.Object {
			w, ok := args[0].(*Window)
			if !ok {
				return object.Errorf("argument #1 must be a window, got %s", object.TypeName(args[0]))
			}
			key := text(args[1])
			if key == "" {
				return object.Errorf("argument #2 (key) must be a non empty string")
			}
			if !callable(args[2]) {
				return object.Errorf("argument #3 must be a function, got %s", object.TypeName(args[2]))
			}
			w.setHandler(down, key, args[2])
			return object.NULL
		}
		MustCreate(keyFn)
	}
}
