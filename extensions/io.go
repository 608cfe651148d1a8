package extensions

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"fortio.org/log"
	"golang.org/x/term"
	"zds.io/zds/eval"
	"zds.io/zds/object"
)

func createIOFunctions() {
	ioFn := object.Extension{
		Name:     "print",
		MinArgs:  0,
		MaxArgs:  -1,
		Help:     "prints the concatenation of its arguments and a newline, returns the printed string",
		Category: object.CategoryIO,
		ArgTypes: []object.Type{object.ANY},
		Callback: func(env any, _ string, args []object.Object) object.Object {
			s := env.(*eval.State)
			str := object.Concat(args)
			_, err := fmt.Fprintln(s.Out, str)
			if err != nil {
				return object.Errorf("%v", err)
			}
			return object.String{Value: str}
		},
	}
	MustCreate(ioFn)
	ioFn.Name = "input"
	ioFn.Help = "prints the optional prompt and reads one line, null at end of input"
	ioFn.MaxArgs = 1
	ioFn.Callback = func(env any, _ string, args []object.Object) object.Object {
		s := env.(*eval.State)
		if len(args) == 1 {
			_, _ = io.WriteString(s.Out, args[0].Inspect())
		}
		line, err := s.In.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			return object.NULL
		}
		if err != nil && !errors.Is(err, io.EOF) {
			log.Errf("Error reading input: %v", err)
			return object.Errorf("%v", err)
		}
		return object.String{Value: strings.TrimRight(line, "\r\n")}
	}
	MustCreate(ioFn)
	ioFn.Name = "clear"
	ioFn.Help = "clears the screen"
	ioFn.MaxArgs = 0
	ioFn.ArgTypes = nil
	ioFn.Callback = func(env any, _ string, _ []object.Object) object.Object {
		s := env.(*eval.State)
		_, _ = io.WriteString(s.Out, "\033[H\033[2J")
		return object.NULL
	}
	MustCreate(ioFn)
	ioFn.Name = "waitKey"
	ioFn.Help = "waits for a key press and returns its name (\"A\", \"1\", \"Enter\", \"UpArrow\"...)"
	ioFn.Callback = func(env any, _ string, _ []object.Object) object.Object {
		s := env.(*eval.State)
		key, err := readKey(s)
		if err != nil {
			return object.Errorf("%v", err)
		}
		return object.String{Value: key}
	}
	MustCreate(ioFn)

	timeFn := object.Extension{
		Name:     "epoch",
		MinArgs:  0,
		MaxArgs:  0,
		Help:     "seconds since the unix epoch, with fractional part",
		Category: object.CategoryTime,
		Callback: func(env any, _ string, _ []object.Object) object.Object {
			s := env.(*eval.State)
			return object.Number{Value: float64(s.Clock.Now().UnixNano()) / float64(time.Second)}
		},
	}
	MustCreate(timeFn)
	timeFn.Name = "wait"
	timeFn.Help = "sleeps for the given number of seconds"
	timeFn.MinArgs = 1
	timeFn.MaxArgs = 1
	timeFn.ArgTypes = []object.Type{object.NUMBER}
	timeFn.Callback = func(env any, _ string, args []object.Object) object.Object {
		s := env.(*eval.State)
		secs := math.Max(args[0].(object.Number).Value, 0)
		d := time.Duration(secs * float64(time.Second))
		log.Debugf("wait %v", d)
		s.Clock.Sleep(d)
		return object.NULL
	}
	MustCreate(timeFn)
}

// readKey reads one key press, in raw mode when stdin is a terminal.
func readKey(s *eval.State) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // fd fits in int.
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return "", err
		}
		defer func() {
			_ = term.Restore(fd, oldState)
		}()
		buf := make([]byte, 8)
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return "", err
		}
		return KeyName(buf[:n]), nil
	}
	r, _, err := s.In.ReadRune()
	if err != nil {
		return "", err
	}
	return KeyName([]byte(string(r))), nil
}

var escapeKeys = map[string]string{
	"\x1b[A": "UpArrow",
	"\x1b[B": "DownArrow",
	"\x1b[C": "RightArrow",
	"\x1b[D": "LeftArrow",
	"\x1b[H": "Home",
	"\x1b[F": "End",
	"\x1b":   "Escape",
}

// KeyName normalizes the bytes of a key press: letters upper case, digits
// as is, named keys for the rest.
func KeyName(b []byte) string {
	if name, ok := escapeKeys[string(b)]; ok {
		return name
	}
	if len(b) != 1 {
		return string(b)
	}
	c := b[0]
	switch {
	case c == '\r' || c == '\n':
		return "Enter"
	case c == ' ':
		return "Spacebar"
	case c == '\t':
		return "Tab"
	case c == 127 || c == 8:
		return "Backspace"
	case c >= 'a' && c <= 'z':
		return string(c - 'a' + 'A')
	default:
		return string(c)
	}
}
