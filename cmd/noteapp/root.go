package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"noteapp/internal/client"
	"noteapp/internal/config"
	"noteapp/internal/domain"
	"noteapp/internal/logger"
	"noteapp/internal/remote"
	"noteapp/internal/remote/rest"
	"noteapp/internal/remote/rpc"
	"noteapp/internal/storage"
)

var errNotLoggedIn = errors.New("not logged in, run `noteapp login` first")

type globalFlags struct {
	transport string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "noteapp",
		Short:         "Take short notes stored by the note service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.transport, "transport", "", "Transport to the note service: rest or rpc (default from NOTEAPP_TRANSPORT)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newLoginCmd(flags),
		newLogoutCmd(flags),
		newWhoamiCmd(flags),
		newListCmd(flags),
		newAddCmd(flags),
		newShowCmd(flags),
		newEditCmd(flags),
		newRmCmd(flags),
	)
	return root
}

type runFunc func(ctx context.Context, app *client.App) error

// withApp builds the client, optionally restores the persisted session, runs
// fn and flushes pending saves before returning.
func withApp(cmd *cobra.Command, flags *globalFlags, restore bool, fn runFunc) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flags.transport != "" {
		cfg.Client.Transport = flags.transport
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	} else if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logging.Level = "warn"
	}
	log := logger.New(cfg.Logging)

	keyCfg := storage.DefaultConfig(cfg.Client.SessionDir)
	keyCfg.Logger = log
	keys, err := storage.Open(keyCfg)
	if err != nil {
		return err
	}
	defer keys.Close()

	rc, closeRemote, err := openRemote(cfg.Client, log)
	if err != nil {
		return err
	}
	defer closeRemote()

	saveErrs := &saveErrors{}
	app := client.New(rc, keys, log, client.Options{
		IdentitySecret:   cfg.Client.IdentitySecret,
		DebounceInterval: cfg.Client.DebounceInterval,
		RequestTimeout:   cfg.Client.RequestTimeout,
		OnSaveError:      saveErrs.add,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.RequestTimeout*3)
	defer cancel()

	if restore {
		if _, _, err := app.Restore(ctx); err != nil {
			return err
		}
	}

	runErr := fn(ctx, app)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Client.RequestTimeout+time.Second)
	defer closeCancel()
	if err := app.Close(closeCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("pending saves did not finish: %w", err))
	}
	return errors.Join(runErr, saveErrs.err())
}

func openRemote(cfg config.ClientConfig, log *slog.Logger) (remote.Client, func(), error) {
	switch cfg.Transport {
	case "rest":
		return rest.NewClient(cfg.APIURL, cfg.RequestTimeout, log), func() {}, nil
	case "rpc":
		c, err := rpc.Dial(cfg.RPCAddr, log)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { c.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func requireUser(app *client.App) (domain.User, error) {
	user, ok := app.User()
	if !ok {
		return domain.User{}, errNotLoggedIn
	}
	return user, nil
}

type saveErrors struct {
	mu   sync.Mutex
	errs []error
}

func (s *saveErrors) add(noteID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *saveErrors) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.errs...)
}
