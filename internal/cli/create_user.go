package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Neutralizer/BookManipulator/internal/entities"
	"github.com/Neutralizer/BookManipulator/internal/entrypoint"
)

// CreateUserCommand creates an account from the command line, typically the
// first administrator.
type CreateUserCommand struct {
	Username     string
	Password     string
	Admin        bool
	DatabasePath string

	// ReadPassword prompts for the password when none was given.
	ReadPassword func(prompt string) (string, error)
	out          io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{ReadPassword: promptPassword}
}

func (c *CreateUserCommand) Cobra() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user <username>",
		Short: "Create a user account",
		Long: "Create a user account. The password is prompted for without echo\n" +
			"unless --password is given.",
		Example: "  book-manipulator create-user admin --admin",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Username = args[0]
			c.out = cmd.OutOrStdout()
			return c.Run()
		},
	}
	cmd.Flags().StringVar(&c.Password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&c.Admin, "admin", false, "Grant the ADMIN role")
	addDBFlag(cmd, &c.DatabasePath)
	return cmd
}

func (c *CreateUserCommand) Run() error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	password := c.Password
	if password == "" {
		var err error
		password, err = c.ReadPassword("Password for " + c.Username + ": ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	roles := []string{entities.RoleUser}
	if c.Admin {
		roles = append(roles, entities.RoleAdmin)
	}

	cfg := loadConfig(c.DatabasePath)
	db, err := entrypoint.OpenDatabase(cfg, nopLogger())
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := entrypoint.NewUserService(db, cfg.Auth).Save(&entities.User{
		Username: c.Username,
		Password: password,
		Roles:    roles,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created user %q (id %d, roles %s)\n", user.Username, user.ID, strings.Join(user.Roles, ", "))
	return nil
}

// promptPassword reads without echo from a terminal, or one line from a
// pipe.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	bytePassword, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}
