package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jrsteele09/go-auth-client/view"
)

// terminalRenderer is the presentation layer: it replaces the whole terminal
// view on every render, one block per state.
type terminalRenderer struct {
	out io.Writer
}

func newTerminalRenderer(out io.Writer) *terminalRenderer {
	return &terminalRenderer{out: out}
}

func (r *terminalRenderer) Render(snapshot view.Snapshot) {
	fmt.Fprintln(r.out)

	switch snapshot.State {
	case view.StateLoggedOut:
		fmt.Fprintln(r.out, Cyan+"== Sign in =="+ResetColor)
		if snapshot.Message != "" {
			fmt.Fprintln(r.out, Red+snapshot.Message+ResetColor)
		}

	case view.StateLoggingIn:
		fmt.Fprintln(r.out, Gray+"Authenticating..."+ResetColor)

	case view.StateLoggedIn:
		username := "there"
		if name, ok := snapshot.User["username"].(string); ok && name != "" {
			username = name
		}
		fmt.Fprintf(r.out, Green+"Welcome back, %s!"+ResetColor+"\n", username)
		if len(snapshot.Profile) > 0 {
			r.renderProfile(snapshot.Profile)
		}
		fmt.Fprintln(r.out, Gray+"Commands: profile, whoami, token, logout, quit"+ResetColor)

	case view.StateProfileLoading:
		fmt.Fprintln(r.out, Gray+"Loading profile..."+ResetColor)

	case view.StateError:
		fmt.Fprintln(r.out, Red+snapshot.Message+ResetColor)
		fmt.Fprintln(r.out, Gray+"Commands: logout, quit"+ResetColor)
	}
}

func (r *terminalRenderer) renderProfile(profile map[string]any) {
	fmt.Fprintln(r.out, Blue+"-- Profile --"+ResetColor)

	keys := make([]string, 0, len(profile))
	for k := range profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(r.out, "  %-20s %v\n", k, profile[k])
	}
}
