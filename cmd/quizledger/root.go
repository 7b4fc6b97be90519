package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/quizledger/account"
	"github.com/bitfsorg/quizledger/config"
	"github.com/bitfsorg/quizledger/ledger"
	"github.com/bitfsorg/quizledger/logging"
	"github.com/bitfsorg/quizledger/storage"
	"github.com/bitfsorg/quizledger/token"
	"github.com/bitfsorg/quizledger/units"
)

// Environment variables that supply flag defaults.
const (
	envDataDir = "QUIZLEDGER_DATADIR"
	envFrom    = "QUIZLEDGER_FROM"
)

var errNoCaller = errors.New("no caller: pass --from or set " + envFrom)

var clog = logging.New("module", "cli")

// RootCmd builds the quizledger command tree.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quizledger",
		Short:         "Pay-to-enter quiz escrow ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			switch level {
			case "":
			case logging.LevelOff:
				logging.Discard()
			default:
				if _, err := log15.LvlFromString(level); err != nil {
					return fmt.Errorf("invalid --log-level %q", level)
				}
				logging.SetLogLevel(level)
			}
			return nil
		},
	}

	dataDir := os.Getenv(envDataDir)
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	cmd.PersistentFlags().String("datadir", dataDir, "data directory holding config.toml and the ledger database")
	cmd.PersistentFlags().String("from", os.Getenv(envFrom), "caller account address")
	cmd.PersistentFlags().String("log-level", "", "console log level (debug, info, warn, error, crit, off)")
	cmd.PersistentFlags().Bool("raw", false, "read and print amounts in smallest token units")

	cmd.AddCommand(
		InitCmd(),
		KeygenCmd(),
		TokenCmd(),
		QuizCmd(),
		OwnerCmd(),
		WalletCmd(),
	)
	return cmd
}

// env is an opened installation: configuration, store, tokens and ledger.
type env struct {
	cfg    config.Config
	net    account.Network
	store  storage.Store
	tokens map[string]*token.StoreToken
	reg    *token.Registry
	raw    bool
	ledger *ledger.Ledger
	logs   io.Closer
	out    io.Writer
}

func openEnv(cmd *cobra.Command) (*env, error) {
	dataDir, _ := cmd.Flags().GetString("datadir")
	cfg, err := config.LoadConfig(config.ConfigPath(dataDir))
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w (run `quizledger init` first)", err)
		}
		return nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Owner == "" || cfg.Escrow == "" {
		return nil, errors.New("config: owner and escrow must be set (run `quizledger init`)")
	}
	owner, err := account.Parse(cfg.Owner)
	if err != nil {
		return nil, err
	}
	escrow, err := account.Parse(cfg.Escrow)
	if err != nil {
		return nil, err
	}
	net, err := account.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	console, _ := cmd.Flags().GetString("log-level")
	logs := logging.SetFileLog(logging.Config{
		Level:        cfg.LogLevel,
		ConsoleLevel: console,
		File:         cfg.LogFile,
	})

	s, err := storage.Open(cfg.Backend, cfg.DataDir, cfg.DSN)
	if err != nil {
		logs.Close()
		return nil, err
	}

	e := &env{cfg: cfg, net: net, store: s, tokens: make(map[string]*token.StoreToken), logs: logs, out: cmd.OutOrStdout()}
	e.raw, _ = cmd.Flags().GetBool("raw")
	reg, err := token.NewRegistry()
	if err != nil {
		e.Close()
		return nil, err
	}
	e.reg = reg
	for _, name := range cfg.Tokens {
		t, err := token.NewStoreToken(s, name)
		if err != nil {
			e.Close()
			return nil, err
		}
		if err := reg.Register(t); err != nil {
			e.Close()
			return nil, err
		}
		e.tokens[name] = t
	}

	e.ledger, err = ledger.New(s, ledger.Options{
		Owner:      owner,
		Escrow:     escrow,
		FeePercent: cfg.FeePercent,
		Tokens:     reg,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	clog.Debug("ledger opened", "datadir", cfg.DataDir, "backend", cfg.Backend, "tokens", len(cfg.Tokens))
	return e, nil
}

func (e *env) Close() error {
	err := e.store.Close()
	e.logs.Close()
	return err
}

// token returns the named token, or the first configured token for "".
func (e *env) token(name string) (*token.StoreToken, error) {
	if name == "" {
		if len(e.cfg.Tokens) == 0 {
			return nil, token.ErrUnknownToken
		}
		name = e.cfg.Tokens[0]
	}
	t, ok := e.tokens[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", token.ErrUnknownToken, name)
	}
	return t, nil
}

func (e *env) caller(cmd *cobra.Command) (account.Address, error) {
	from, _ := cmd.Flags().GetString("from")
	if from == "" {
		return account.Zero, errNoCaller
	}
	return account.Parse(from)
}

func (e *env) amount(s string) (*uint256.Int, error) {
	if e.raw {
		return units.ParseRaw(s)
	}
	return units.Parse(s, e.cfg.Decimals)
}

func (e *env) format(v *uint256.Int) string {
	if e.raw {
		if v == nil {
			return "0"
		}
		return v.Dec()
	}
	return units.Format(v, e.cfg.Decimals)
}

func (e *env) addr(a account.Address) string {
	return a.Encode(e.net)
}

func (e *env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}

// withEnv opens the installation around fn.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

func parseQuizID(s string) (ledger.QuizID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quiz id %q: %w", s, err)
	}
	return ledger.QuizID(id), nil
}
