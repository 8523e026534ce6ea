package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"

	"github.com/NamanBalaji/ravenmagnet/internal/config"
	"github.com/NamanBalaji/ravenmagnet/internal/errors"
	"github.com/NamanBalaji/ravenmagnet/internal/links"
	"github.com/NamanBalaji/ravenmagnet/internal/logger"
	"github.com/NamanBalaji/ravenmagnet/internal/repository"
	"github.com/NamanBalaji/ravenmagnet/pkg/magnet"
)

// OpenFunc opens the link ledger.
type OpenFunc func(path string, timeout time.Duration) (repository.Repository, error)

// App runs ravenmagnet commands.
type App struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	Config *config.Config
	Open   OpenFunc

	in  *bufio.Reader
	cfg *config.Config
}

type command struct {
	args    string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"types":   {"", "list supported hash types", (*App).types},
	"encode":  {"HASH TYPE", "encode a hash into a record", (*App).encode},
	"decode":  {"RECORD", "decode a record into type and hash", (*App).decode},
	"parse":   {"URI", "show the hash and filename of a magnet link", (*App).parse},
	"render":  {"TYPE HASH [NAME]", "build a magnet link", (*App).render},
	"pack":    {"URI", "encode the hash of a magnet link into a record", (*App).pack},
	"uri":     {"ASSET RECORD", "rebuild the magnet link stored on an asset", (*App).uri},
	"issue":   {"MAIN SUB URI [--name NAME]", "publish a magnet link under MAIN/SUB", (*App).issue},
	"recover": {"MAIN/SUB", "list the magnet links published under MAIN/SUB", (*App).recoverLinks},
}

// New returns an App wired to the process's standard streams.
func New(cfg *config.Config) *App {
	return &App{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		Config: cfg,
		Open:   openBbolt,
	}
}

func openBbolt(path string, timeout time.Duration) (repository.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return repository.NewBboltRepository(path, timeout)
}

// Run parses global flags and dispatches to a command.
func (a *App) Run(ctx context.Context, args []string) error {
	var debug, testnet, yes, help bool
	var dbPath string

	flagSet := pflag.NewFlagSet("ravenmagnet", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(false)
	flagSet.BoolVar(&debug, "debug", false, "write a debug log to the data directory")
	flagSet.BoolVar(&testnet, "testnet", false, "use the testnet ledger")
	flagSet.BoolVarP(&yes, "yes", "y", false, "publish without asking for confirmation")
	flagSet.StringVar(&dbPath, "db", "", "path to the ledger database")
	flagSet.BoolVarP(&help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			a.printHelp(flagSet)
			return nil
		}
		return errors.Usage("%v", err)
	}

	rest := flagSet.Args()
	if help || len(rest) == 0 || rest[0] == "help" {
		a.printHelp(flagSet)
		return nil
	}

	cfg := *a.Config
	if cfg.Ledger != nil {
		ledger := *cfg.Ledger
		cfg.Ledger = &ledger
	} else {
		cfg.Ledger = &config.LedgerConfig{}
	}
	if testnet {
		cfg.Network = config.NetworkTestnet
	}
	if yes {
		cfg.AssumeYes = true
	}
	if dbPath != "" {
		cfg.Ledger.Path = dbPath
	}
	a.cfg = &cfg

	if debug {
		if err := logger.InitLogging(true, cfg.LogPath()); err != nil {
			return errors.NewConfigError(err, cfg.LogPath())
		}
		defer logger.Close()
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return errors.Usage("unknown command %q", rest[0])
	}

	if a.in == nil {
		a.in = bufio.NewReader(a.In)
	}

	logger.Debugf("Running %s %v", rest[0], rest[1:])

	return cmd.run(a, ctx, rest[1:])
}

func (a *App) printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(a.Out, "Usage: ravenmagnet [flags] COMMAND [ARGS]\n\nCommands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(w, "  %s %s\t%s\n", name, c.args, c.summary)
	}
	w.Flush()

	fmt.Fprintf(a.Out, "\nFlags:\n%s", flagSet.FlagUsages())
}

func wantArgs(args []string, least, most int, usage string) error {
	if len(args) < least || len(args) > most {
		return errors.Usage("expected %s", usage)
	}
	return nil
}

func (a *App) types(_ context.Context, args []string) error {
	if err := wantArgs(args, 0, 0, "no arguments"); err != nil {
		return err
	}

	hashTypes := magnet.HashTypes()
	rows := make([][]string, 0, len(hashTypes))
	for _, ht := range hashTypes {
		rows = append(rows, []string{ht.Name, strconv.Itoa(int(ht.Code)), strconv.Itoa(ht.Length), ht.Encoding.String()})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("NAME", "CODE", "BYTES", "ENCODING").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(a.Out, t.Render())
	return err
}

func (a *App) encode(_ context.Context, args []string) error {
	if err := wantArgs(args, 2, 2, "HASH TYPE"); err != nil {
		return err
	}

	out, err := magnet.EncodeHex(args[0], args[1])
	if err != nil {
		return errors.NewInputError(err, "encode", args[0])
	}

	fmt.Fprintln(a.Out, out)
	return nil
}

func (a *App) decode(_ context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "RECORD"); err != nil {
		return err
	}

	hashType, hash, err := magnet.Decode(strings.TrimSpace(args[0]))
	if err != nil {
		return errors.NewInputError(err, "decode", args[0])
	}

	fmt.Fprintln(a.Out, hashType, hash)
	return nil
}

func (a *App) parse(_ context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "URI"); err != nil {
		return err
	}

	u, err := magnet.ParseURI(args[0])
	if err != nil {
		return errors.NewInputError(err, "parse", args[0])
	}

	fmt.Fprintf(a.Out, "type: %s\nhash: %s\nfilename: %s\n", u.HashType, u.Hash, u.Filename)
	return nil
}

func (a *App) render(_ context.Context, args []string) error {
	if err := wantArgs(args, 2, 3, "TYPE HASH [NAME]"); err != nil {
		return err
	}

	hashType := magnet.NormalizeHashType(args[0])
	if _, ok := magnet.LookupName(hashType); !ok {
		return errors.NewInputError(fmt.Errorf("%w: %q", magnet.ErrInvalidHashType, args[0]), "render", args[1])
	}

	var name string
	if len(args) == 3 {
		name = args[2]
	}

	fmt.Fprintln(a.Out, magnet.RenderURI(hashType, args[1], name))
	return nil
}

func (a *App) pack(_ context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "URI"); err != nil {
		return err
	}

	u, err := magnet.ParseURI(args[0])
	if err != nil {
		return errors.NewInputError(err, "parse", args[0])
	}

	rec, err := u.Record()
	if err != nil {
		return errors.NewInputError(err, "encode", u.Hash)
	}

	fmt.Fprintln(a.Out, rec.Hex())
	return nil
}

func (a *App) uri(_ context.Context, args []string) error {
	if err := wantArgs(args, 2, 2, "ASSET RECORD"); err != nil {
		return err
	}

	out, err := links.DecodeAsset(args[0], strings.TrimSpace(args[1]))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Out, out)
	return nil
}

func (a *App) issue(ctx context.Context, args []string) error {
	var name string

	flagSet := pflag.NewFlagSet("issue", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&name, "name", "", "asset tag to publish under (default: the link's dn)")
	if err := flagSet.Parse(args); err != nil {
		return errors.Usage("%v", err)
	}

	args = flagSet.Args()
	if err := wantArgs(args, 3, 3, "MAIN SUB URI [--name NAME]"); err != nil {
		return err
	}

	req := links.IssueRequest{Main: args[0], Sub: args[1], URI: args[2], Name: name}

	repo, err := a.openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	svc := links.NewService(repo, a.cfg.RecoverWorkers)

	p, err := svc.Preview(req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "Asset:   %s\nHash:    %s %s\nRecord:  %s\nNetwork: %s\n",
		p.Asset, p.HashType, p.Hash, p.Record.Hex(), a.cfg.Network)

	if !a.cfg.AssumeYes {
		ok, err := Confirm(a.in, a.Out, fmt.Sprintf("Publish %s?", p.Asset))
		if err != nil {
			return errors.NewInputError(err, "issue", p.Asset.String())
		}
		if !ok {
			return errors.NewAbortedError("issue", p.Asset.String())
		}
	}

	link, err := svc.Issue(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Out, successStyle.Render(fmt.Sprintf("Issued %s (%s)", link.Asset, link.ID)))
	return nil
}

func (a *App) recoverLinks(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "MAIN/SUB"); err != nil {
		return err
	}

	parent := strings.ToUpper(args[0])

	repo, err := a.openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	fmt.Fprintf(a.ErrOut, "Recovering links with parent asset name %s, network: %s\n", parent, a.cfg.Network)

	found, err := links.NewService(repo, a.cfg.RecoverWorkers).Recover(ctx, parent)
	if err != nil {
		return err
	}

	for _, r := range found {
		fmt.Fprintln(a.Out, r.URI)
	}

	return nil
}

func (a *App) openRepo() (repository.Repository, error) {
	path := a.cfg.DatabasePath()

	var timeout time.Duration
	if a.cfg.Ledger != nil {
		timeout = a.cfg.Ledger.Timeout
	}

	repo, err := a.Open(path, timeout)
	if err != nil {
		return nil, errors.NewStorageError(err, "open", path)
	}

	return repo, nil
}
