package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/session/filestore"
	"github.com/jrsteele09/go-auth-client/session/sqlitestore"
	"github.com/jrsteele09/go-auth-client/view"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running portal: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c := config.New()
	displayAppname(c.GetAppName())
	logger := newLogger(c.GetEnv())

	store, closeStore, err := openStore(c)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	sessions, err := session.NewManager(store)
	if err != nil {
		return err
	}

	gw, err := gateway.New(c.GetBaseURL(), c.GetAuthScheme(), sessions,
		gateway.WithLoginPath(c.GetLoginPath()),
		gateway.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	renderer := newTerminalRenderer(os.Stdout)
	controller, err := view.NewController(sessions, gw, renderer,
		view.WithProfileFetcher(profileFetcher(gw, c.GetProfilePath())),
		view.WithLoginDelay(time.Duration(c.GetLoginDelayMS())*time.Millisecond),
		view.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := controller.Bootstrap(ctx); err != nil {
		return err
	}

	return eventLoop(ctx, controller, sessions)
}

func newLogger(env string) zerolog.Logger {
	level := zerolog.InfoLevel
	if env == "DEV" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// openStore selects the credential store backend from configuration.
func openStore(c config.Config) (session.Store, func() error, error) {
	noop := func() error { return nil }

	switch c.GetSessionStore() {
	case "sqlite":
		store, err := sqlitestore.Open(filepath.Join(c.GetDataFolder(), "credentials.db"))
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil

	case "file":
		var options []filestore.Option
		if keyHex := c.GetSessionKeyHex(); keyHex != "" {
			key, err := hex.DecodeString(keyHex)
			if err != nil {
				return nil, noop, fmt.Errorf("SESSION_KEY_HEX is not valid hex: %w", err)
			}
			options = append(options, filestore.WithSealingKey(key))
		}
		store, err := filestore.New(c.GetDataFolder(), options...)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown SESSION_STORE %q (want file or sqlite)", c.GetSessionStore())
	}
}

// profileFetcher loads the employee profile through the authenticated
// request pipeline. The gateway hands back the raw response; interpreting it
// is this caller's job.
func profileFetcher(gw *gateway.Client, path string) view.ProfileFetcher {
	return func(ctx context.Context) (map[string]any, error) {
		resp, err := gw.Do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode)
		}

		var profile map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		return profile, nil
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
