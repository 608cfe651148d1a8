// Package repl is the glue between source text and the interpreter: run a
// string, a stream or a file, and the interactive prompt.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"fortio.org/log"
	"fortio.org/terminal"
	"github.com/fatih/color"
	"zds.io/zds/ast"
	"zds.io/zds/eval"
	"zds.io/zds/object"
	"zds.io/zds/parser"
)

const (
	PROMPT        = "zds> "
	FileExtension = ".zds"
)

type Options struct {
	ShowParse bool // print the parsed program instead of running it.
	MaxDepth  int
	// How long to keep delivering timer and key events once the script
	// itself is done, 0 waits until no timer is left.
	EventTimeout time.Duration
	HistoryFile  string
	MaxHistory   int
}

var (
	errColor    = color.New(color.FgRed)
	resultColor = color.New(color.FgGreen)
)

// NewState creates an interpreter state with the options applied.
func NewState(options Options) *eval.State {
	s := eval.NewState()
	if options.MaxDepth > 0 {
		s.MaxDepth = options.MaxDepth
	}
	return s
}

// PrintError writes "Error: <message> (line N)" in red.
func PrintError(w io.Writer, err error) {
	_, _ = errColor.Fprintf(w, "Error: %v\n", err)
}

// EvalString runs what on a fresh state and returns what it printed.
func EvalString(what string) (string, error) {
	return EvalStringWithOption(Options{}, what)
}

func EvalStringWithOption(o Options, what string) (string, error) {
	s := NewState(o)
	out := &strings.Builder{}
	s.In = bufio.NewReader(strings.NewReader(""))
	err := EvalOne(s, what, out, o)
	return out.String(), err
}

// EvalAll reads all of in and runs it.
func EvalAll(s *eval.State, in io.Reader, out io.Writer, options Options) error {
	b, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	return EvalOne(s, string(b), out, options)
}

// EvalOne parses and runs what, then delivers the pending events. Errors
// are *lexer.Error, *parser.Error or object.Error.
func EvalOne(s *eval.State, what string, out io.Writer, options Options) error {
	program, err := parser.ParseString(what)
	if err != nil {
		log.LogVf("parse error: %v", err)
		return err
	}
	if options.ShowParse {
		fmt.Fprintln(out, program.String())
		return nil
	}
	s.Out = out
	if err = s.Run(program); err != nil {
		return err
	}
	return RunEvents(s, options)
}

// RunEvents delivers timer and key callbacks until no timer is left, the
// event timeout expires or the user hits ^C.
func RunEvents(s *eval.State, options Options) error {
	if s.PendingTimers() == 0 && s.PendingEvents() == 0 {
		return nil
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if options.EventTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.EventTimeout)
		defer cancel()
	}
	log.LogVf("Running events, timeout %v", options.EventTimeout)
	err := s.RunEvents(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		log.Infof("Event timeout %v reached, %d timer(s) still running", options.EventTimeout, s.PendingTimers())
		return nil
	case errors.Is(err, context.Canceled):
		log.Infof("Interrupted, %d timer(s) still running", s.PendingTimers())
		return nil
	}
	return err
}

// RunFile runs the script in file.
func RunFile(s *eval.State, file string, out io.Writer, options Options) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	log.Infof("Running %s", file)
	return EvalAll(s, f, out, options)
}

// Help lists the prompt commands and natives, or describes the given natives.
func Help(out io.Writer, names ...string) {
	natives := object.ExtraFunctions()
	if len(names) == 0 {
		fmt.Fprintf(out, "Type a path to a %s file to run it, a line of code, %s.\n",
			FileExtension, strings.Join(promptCommands, ", "))
		byCategory := make(map[object.Category][]string)
		for name, ext := range natives {
			byCategory[ext.Category] = append(byCategory[ext.Category], name)
		}
		for c := object.CategoryOther; c <= object.CategoryGUI; c++ {
			list := byCategory[c]
			if len(list) == 0 {
				continue
			}
			slices.Sort(list)
			fmt.Fprintf(out, "%s: %s\n", c, strings.Join(list, ", "))
		}
		return
	}
	for _, name := range names {
		ext, ok := natives[name]
		if !ok {
			fmt.Fprintf(out, "No native function %q\n", name)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", ext.Usage(), ext.Help)
	}
}

func isScript(word string) bool {
	if strings.HasSuffix(word, FileExtension) {
		return true
	}
	st, err := os.Stat(word)
	return err == nil && st.Mode().IsRegular()
}

// HandleLine processes one line of the interactive prompt, returns true on exit.
// Files run on a fresh state, code lines share s.
func HandleLine(s *eval.State, line string, out io.Writer, options Options) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	words, err := SplitLine(line)
	if err == nil && len(words) > 0 {
		switch words[0] {
		case "exit", "quit":
			if len(words) == 1 {
				return true
			}
		case "help":
			Help(out, words[1:]...)
			return false
		}
		if len(words) == 1 && isScript(words[0]) {
			fs := NewState(options)
			fs.In = s.In
			if err = RunFile(fs, words[0], out, options); err != nil {
				PrintError(out, err)
			}
			return false
		}
	}
	evalLine(s, line, out, options)
	return false
}

// evalLine runs code and shows the resulting value, if any.
func evalLine(s *eval.State, line string, out io.Writer, options Options) {
	program, err := parser.ParseString(line)
	if err != nil {
		PrintError(out, err)
		return
	}
	s.Out = out
	res := s.Eval(program)
	if oerr, ok := res.(object.Error); ok {
		PrintError(out, oerr)
		return
	}
	if err = RunEvents(s, options); err != nil {
		PrintError(out, err)
		return
	}
	if res == object.NULL || len(program.Statements) == 0 || !showResult(program.Statements[len(program.Statements)-1]) {
		return
	}
	_, _ = resultColor.Fprintln(out, res.Inspect())
}

// showResult is false for statements whose value is not interesting at the
// prompt: declarations, assignments and print (already shown).
func showResult(stmt ast.Statement) bool {
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	switch e := es.Val.(type) {
	case *ast.Assignment, *ast.IndexAssignment, *ast.PropertySet:
		return false
	case *ast.Call:
		return e.Name != "print"
	default:
		return true
	}
}

// Interactive is the prompt used when no file is given.
func Interactive(options Options) int {
	t, err := terminal.Open(context.Background())
	if err != nil {
		return log.FErrf("Error creating terminal: %v", err)
	}
	defer t.Close()
	t.SetPrompt(PROMPT)
	t.LoggerSetup()
	t.SetAutoCompleteCallback(NewCompletion().AutoComplete())
	if options.MaxHistory > 0 {
		t.NewHistory(options.MaxHistory)
	}
	if options.HistoryFile != "" {
		if err = t.SetHistoryFile(options.HistoryFile); err != nil {
			log.Warnf("Unable to use history file %q: %v", options.HistoryFile, err)
		}
	}
	fmt.Fprintf(t.Out, "Type a %s file path to run it, help or exit.\n", FileExtension)
	s := NewState(options)
	for {
		line, err := t.ReadLine()
		switch {
		case errors.Is(err, io.EOF):
			log.Infof("Bye!")
			return 0
		case errors.Is(err, terminal.ErrUserInterrupt):
			log.Infof("^C from user, exiting")
			return 0
		case err != nil:
			return log.FErrf("Error reading line: %v", err)
		}
		log.Debugf("Read %q", line)
		if HandleLine(s, line, t.Out, options) {
			return 0
		}
	}
}
