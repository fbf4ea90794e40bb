// Package auth contains the account commands: login, logout, whoami and
// register.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/internal/models"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	username string
	password string
	email    string
	fullName string

	// LoginCmd logs into the backend and saves the session
	LoginCmd = &cobra.Command{
		Use:   "login",
		Short: "Log in to the finance backend",
		Long: `Log in to the finance backend and save the session token.
The password is read from --password, or prompted for on stdin.`,
		Args: cobra.NoArgs,
		RunE: loginFunc,
	}

	// LogoutCmd forgets the saved session
	LogoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE:  logoutFunc,
	}

	// WhoamiCmd checks the saved session against the backend
	WhoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Long:  `Check the saved session against the backend and show who it belongs to.`,
		Args:  cobra.NoArgs,
		RunE:  whoamiFunc,
	}

	// RegisterCmd creates an account and logs into it
	RegisterCmd = &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE:  registerFunc,
	}
)

func init() {
	LoginCmd.Flags().StringVarP(&username, "username", "u", "", "Email or username")
	LoginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	_ = LoginCmd.MarkFlagRequired("username")

	RegisterCmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	RegisterCmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	RegisterCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	RegisterCmd.Flags().StringVar(&fullName, "full-name", "", "Full name")
	_ = RegisterCmd.MarkFlagRequired("email")
}

func loginFunc(cmd *cobra.Command, args []string) error {
	c := root.Container()
	auth, err := c.GetAuthenticator()
	if err != nil {
		return err
	}
	pw, err := resolvePassword(cmd)
	if err != nil {
		return err
	}
	user, err := c.GetSession().Login(cmd.Context(), auth, username, pw)
	if err != nil {
		return err
	}
	return root.Renderer().User(user)
}

func logoutFunc(cmd *cobra.Command, args []string) error {
	if err := root.Container().GetSession().Logout(); err != nil {
		return err
	}
	return root.Renderer().Message("Logged out")
}

func whoamiFunc(cmd *cobra.Command, args []string) error {
	c := root.Container()
	auth, err := c.GetAuthenticator()
	if err != nil {
		return err
	}
	user, err := c.GetSession().Restore(cmd.Context(), auth)
	if err != nil {
		return err
	}
	return root.Renderer().User(user)
}

func registerFunc(cmd *cobra.Command, args []string) error {
	c := root.Container()
	auth, err := c.GetAuthenticator()
	if err != nil {
		return err
	}
	pw, err := resolvePassword(cmd)
	if err != nil {
		return err
	}
	user, err := c.GetSession().Register(cmd.Context(), auth, models.Registration{
		Email:    strings.TrimSpace(email),
		Password: pw,
		Username: strings.TrimSpace(username),
		FullName: strings.TrimSpace(fullName),
	})
	if err != nil {
		return err
	}
	return root.Renderer().User(user)
}

func resolvePassword(cmd *cobra.Command) (string, error) {
	if password != "" {
		return password, nil
	}
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pw, err := readPassword(cmd.InOrStdin())
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}

// readPassword reads without echo from a terminal and falls back to a
// plain line for piped input.
func readPassword(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("error reading password: %w", err)
		}
		return string(b), nil
	}
	return readLine(r)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
