package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/fbellini/daybook-server/internal/client/api"
	"github.com/fbellini/daybook-server/internal/client/session"
)

// App wires the REPL commands to the API client and the session
// manager.
type App struct {
	client  *api.Client
	session *session.Manager
	reader  *bufio.Reader
}

// NewApp creates the CLI application against the server at serverURL.
func NewApp(serverURL string) *App {
	client := api.NewClient(serverURL)
	return &App{
		client:  client,
		session: session.NewManager(client),
		reader:  bufio.NewReader(os.Stdin),
	}
}

// Run resolves the session, then hands control to the REPL until the
// user exits.
func (a *App) Run(ctx context.Context) {
	a.session.Subscribe(func(state session.State, account api.Account) {
		if state == session.StateAuthenticated {
			fmt.Printf("Signed in as %s\n", account.Handle)
		}
	})
	a.session.Start(ctx)

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) status() string {
	state, account := a.session.Current()
	if state == session.StateAuthenticated {
		return account.Handle
	}
	return state.String()
}

func (a *App) isLoggedIn() bool {
	state, _ := a.session.Current()
	return state == session.StateAuthenticated
}

// reportError prints a failure and expels a dead session.
func (a *App) reportError(err error) {
	if a.session.Expire(err) {
		printlnFn("Your session has ended, please sign in again.")
		return
	}
	printlnFn("Error:", err.Error())
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	handle, err := GetSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, handle, string(password)); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	return nil
}

// Logout signs out and revokes the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printlnFn("Signed out.")
	return nil
}

// Whoami prints the signed-in profile.
func (a *App) Whoami(ctx context.Context) error {
	account, err := a.client.Me(ctx)
	if err != nil {
		a.reportError(err)
		return err
	}
	printlnFn(fmt.Sprintf("%s <%s> (%s)", account.Handle, account.Email, account.Status))
	return nil
}
