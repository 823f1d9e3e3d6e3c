package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/view"
)

// eventLoop binds terminal input to the controller's action entry points.
// The controller never sees the terminal; it only sees submit and logout
// actions, the way any presentation layer would drive it.
func eventLoop(ctx context.Context, controller *view.Controller, sessions *session.Manager) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		switch controller.State() {
		case view.StateLoggedOut:
			username, password, err := promptCredentials(reader)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if username == "" {
				return nil
			}
			if err := controller.SubmitCredentials(ctx, username, password); err != nil {
				return err
			}

		case view.StateLoggedIn, view.StateError:
			command, err := promptLine(reader, "> ")
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if done, err := dispatch(ctx, command, controller, sessions); done || err != nil {
				return err
			}

		default:
			// Transient states resolve synchronously; nothing to read.
			return fmt.Errorf("event loop reached transient state %q", controller.State())
		}
	}
}

func dispatch(ctx context.Context, command string, controller *view.Controller, sessions *session.Manager) (done bool, err error) {
	switch strings.TrimSpace(command) {
	case "profile":
		return false, controller.LoadProfile(ctx)

	case "whoami":
		current, err := sessions.Current()
		if err != nil {
			return false, controller.Logout()
		}
		if current == nil {
			fmt.Println(Yellow + "Not signed in" + ResetColor)
			return false, nil
		}
		printJSON(current.User)
		return false, nil

	case "token":
		printTokenClaims(sessions)
		return false, nil

	case "logout":
		return false, controller.Logout()

	case "quit", "exit":
		return true, nil

	case "":
		return false, nil

	default:
		fmt.Println(Yellow + "Unknown command" + ResetColor)
		return false, nil
	}
}

func printTokenClaims(sessions *session.Manager) {
	accessToken, ok := sessions.AccessToken()
	if !ok {
		fmt.Println(Yellow + "No access token stored" + ResetColor)
		return
	}

	claims, err := token.Inspect(accessToken)
	if err != nil {
		fmt.Println(Yellow + "Access token is opaque (not a JWT)" + ResetColor)
		return
	}

	if claims.Sub != nil {
		fmt.Printf("  subject: %s\n", *claims.Sub)
	}
	if claims.Expiry != nil {
		fmt.Printf("  expires: %s", claims.Expiry.Format(time.RFC3339))
		if claims.Expired(time.Now()) {
			fmt.Print(Red + " (expired)" + ResetColor)
		}
		fmt.Println()
	}
	if len(claims.Aud) > 0 {
		fmt.Printf("  audience: %s\n", strings.Join(claims.Aud, ", "))
	}
}

func printJSON(v any) {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(Yellow + "nothing to show" + ResetColor)
		return
	}
	fmt.Println(string(blob))
}

func promptCredentials(reader *bufio.Reader) (username, password string, err error) {
	username, err = promptLine(reader, "Username (blank to quit): ")
	if err != nil || username == "" {
		return username, "", err
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		// Not a terminal (piped input): fall back to a plain line read.
		password, err = promptLine(reader, "")
		return username, password, err
	}
	return username, string(raw), nil
}

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	if prompt != "" {
		fmt.Print(prompt)
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
