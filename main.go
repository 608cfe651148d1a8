// Zds runs small scripts: numbers, strings, arrays, functions, timers and
// in-memory drawing panels.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fortio.org/cli"
	"fortio.org/duration"
	"fortio.org/log"
	"fortio.org/struct2env"
	"fortio.org/terminal"
	"zds.io/zds/eval"
	"zds.io/zds/extensions"
	"zds.io/zds/repl"
)

func main() {
	os.Exit(Main())
}

type Config struct {
	HistoryFile  string
	MaxDepth     int
	EventTimeout time.Duration
}

var config = Config{}

func EnvHelp(w io.Writer) {
	res, _ := struct2env.StructToEnvVars(config)
	str := struct2env.ToShellWithPrefix("ZDS_", res, true)
	fmt.Fprintln(w, "# Zds environment variables:")
	fmt.Fprint(w, str)
}

var hookBefore, hookAfter func() int

func Main() int {
	commandFlag := flag.String("c", "", "command/inline script to run instead of interactive mode")
	showParse := flag.Bool("parse", false, "show the parsed program instead of running it")
	const historyDefault = "~/.zds_history" // replaced by the actual home dir if not changed.
	cli.EnvHelpFuncs = append(cli.EnvHelpFuncs, EnvHelp)
	defaultHistoryFile := historyDefault
	config.MaxDepth = eval.DefaultMaxDepth
	errs := struct2env.SetFromEnv("ZDS_", &config)
	if len(errs) > 0 {
		log.Errf("Error setting config from env: %v", errs)
	}
	if config.HistoryFile != "" {
		defaultHistoryFile = config.HistoryFile
	}
	historyFile := flag.String("history", defaultHistoryFile, "history `file` to use")
	maxHistory := flag.Int("max-history", terminal.DefaultHistoryCapacity, "max history `size`, use 0 to disable.")
	unrestrictedIOs := flag.Bool("unrestricted-io", false, "allow panel.Save() to write any path (dangerous)")
	maxDepth := flag.Int("max-depth", config.MaxDepth, "Maximum nesting of function calls")
	eventTimeout := duration.Flag("event-timeout", config.EventTimeout,
		"stop delivering timer and key events after this `duration` once the script is done, 0 to wait for all timers")

	cli.ArgsHelp = "*.zds files to run or `-` for stdin without prompt or no arguments for the interactive prompt..."
	cli.MaxArgs = -1
	cli.Main()
	histFile := *historyFile
	if histFile == historyDefault {
		homeDir, err := os.UserHomeDir()
		histFile = filepath.Join(homeDir, ".zds_history")
		if err != nil {
			log.Warnf("Couldn't get user home dir: %v", err)
			histFile = ""
		}
	}
	log.Infof("zds %s - welcome!", cli.LongVersion)
	options := repl.Options{
		ShowParse:    *showParse,
		MaxDepth:     *maxDepth,
		EventTimeout: *eventTimeout,
		HistoryFile:  histFile,
		MaxHistory:   *maxHistory,
	}
	if hookBefore != nil {
		ret := hookBefore()
		if ret != 0 {
			return ret
		}
	}
	err := extensions.Init(&extensions.Config{UnrestrictedIOs: *unrestrictedIOs})
	if err != nil {
		return log.FErrf("Error initializing extensions: %v", err)
	}
	if *commandFlag != "" {
		return report(repl.EvalOne(repl.NewState(options), *commandFlag, os.Stdout, options))
	}
	if len(flag.Args()) == 0 {
		return repl.Interactive(options)
	}
	for _, file := range flag.Args() {
		ret := processOneFile(file, options)
		if ret != 0 {
			return ret
		}
	}
	log.Infof("All done")
	if hookAfter != nil {
		return hookAfter()
	}
	return 0
}

func report(err error) int {
	if err == nil {
		return 0
	}
	repl.PrintError(os.Stderr, err)
	return 1
}

// processOneFile runs file (or stdin for "-") on a fresh state.
func processOneFile(file string, options repl.Options) int {
	s := repl.NewState(options)
	if file == "-" {
		log.Infof("Running on stdin")
		return report(repl.EvalAll(s, os.Stdin, os.Stdout, options))
	}
	return report(repl.RunFile(s, file, os.Stdout, options))
}
