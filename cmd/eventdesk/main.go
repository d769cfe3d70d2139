// Command eventdesk manages events on a remote events API from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/xraph/eventdesk/internal/config"
)

const usage = `usage: eventdesk [flags] <command> [args]

commands:
  list      list events (-search, -type, -order-by, -direction, -page, -per-page)
  get       show one event: get <id>
  create    create an event (-title, -description, -type, -priority)
  update    update an event: update [fields] <id>
  delete    delete an event: delete <id>
  whoami    show the resolved client IP and ad authorization
  history   show the mutation journal (-action, -offset, -limit, -id)
  browse    read search text and :commands from stdin

flags:
`

var errUsage = errors.New("usage")

// stdio is the process environment a command runs in.
type stdio struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	lookup func(string) (string, bool)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sio := stdio{in: os.Stdin, out: os.Stdout, errOut: os.Stderr, lookup: os.LookupEnv}
	if err := run(ctx, os.Args[1:], sio); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "eventdesk:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, sio stdio) error {
	fs := flag.NewFlagSet("eventdesk", flag.ContinueOnError)
	fs.SetOutput(sio.errOut)
	fs.Usage = func() {
		fmt.Fprint(sio.errOut, usage)
		fs.PrintDefaults()
	}

	configPathFlag := fs.String("config", "", "config file path")
	apiFlag := fs.String("api", "", "events API base URL")
	journalFlag := fs.String("journal", "", "journal driver: none, memory, sqlite, redis, mongo")
	journalDSNFlag := fs.String("journal-dsn", "", "journal file path, redis URL or mongo URI")
	logLevelFlag := fs.String("log-level", "", "log level: debug, info, warn, error")
	jsonFlag := fs.Bool("json", false, "print JSON instead of tables")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(sio.lookup); err != nil {
		return err
	}

	if *apiFlag != "" {
		cfg.API.BaseURL = *apiFlag
	}
	if *journalFlag != "" {
		cfg.Journal.Driver = *journalFlag
	}
	if *journalDSNFlag != "" {
		cfg.Journal.DSN = *journalDSNFlag
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}
	if cfg.Journal.Driver == config.DriverSQLite && cfg.Journal.DSN == "" {
		cfg.Journal.DSN = config.DefaultJournalPath(cfgPath)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(sio.errOut, "eventdesk: unknown command %q\n", name)
		fs.Usage()
		return errUsage
	}

	a, err := openApp(ctx, cfg, sio, *jsonFlag)
	if err != nil {
		return err
	}
	defer a.close()

	return cmd(ctx, a, rest)
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultPath()
}
