package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"pocketledger/internal/core"
)

var identityCommands = []subcommands.Command{
	&registerCmd{},
	&signinCmd{},
	&signoutCmd{},
	&whoamiCmd{},
}

type registerCmd struct {
	name     string
	email    string
	password string
	confirm  string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account and sign in" }
func (*registerCmd) Usage() string {
	return `pocketledger register -name <name> -email <email> [-password <password> [-confirm <password>]]

  Creates an account and signs it in. Without -password both the password and
  its confirmation are prompted for.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Display name")
	f.StringVar(&c.email, "email", "", "Email address, used to sign in")
	f.StringVar(&c.password, "password", "", "Password (prompted when omitted)")
	f.StringVar(&c.confirm, "confirm", "", "Password confirmation (defaults to -password)")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if a == nil {
		return subcommands.ExitFailure
	}

	in := core.RegisterInput{
		UserName:        c.name,
		Email:           c.email,
		Password:        c.password,
		ConfirmPassword: c.confirm,
	}
	if in.Password == "" {
		var err error
		if in.Password, err = a.prompt("Password: "); err != nil {
			return a.fail(fmt.Errorf("read password: %w", err))
		}
		if in.ConfirmPassword, err = a.prompt("Confirm password: "); err != nil {
			return a.fail(fmt.Errorf("read password: %w", err))
		}
	} else if in.ConfirmPassword == "" {
		in.ConfirmPassword = in.Password
	}

	user, err := a.tracker.Register(ctx, in)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.stdout, "Welcome, %s. Signed in as %s.\n", user.UserName, user.Email)
	return subcommands.ExitSuccess
}

type signinCmd struct {
	email    string
	password string
}

func (*signinCmd) Name() string     { return "signin" }
func (*signinCmd) Synopsis() string { return "sign in with email and password" }
func (*signinCmd) Usage() string {
	return `pocketledger signin -email <email> [-password <password>]

  Signs in and remembers the session for later commands.
`
}

func (c *signinCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email address")
	f.StringVar(&c.password, "password", "", "Password (prompted when omitted)")
}

func (c *signinCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if a == nil {
		return subcommands.ExitFailure
	}

	password := c.password
	if password == "" {
		var err error
		if password, err = a.prompt("Password: "); err != nil {
			return a.fail(fmt.Errorf("read password: %w", err))
		}
	}

	session, err := a.tracker.SignIn(ctx, c.email, password)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.stdout, "Signed in as %s (%s).\n", session.UserName, session.Email)
	return subcommands.ExitSuccess
}

type signoutCmd struct{}

func (*signoutCmd) Name() string           { return "signout" }
func (*signoutCmd) Synopsis() string       { return "forget the current session" }
func (*signoutCmd) Usage() string          { return "pocketledger signout\n" }
func (*signoutCmd) SetFlags(*flag.FlagSet) {}

func (*signoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if a == nil {
		return subcommands.ExitFailure
	}
	if err := a.tracker.SignOut(ctx); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.stdout, "Signed out.")
	return subcommands.ExitSuccess
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string           { return "whoami" }
func (*whoamiCmd) Synopsis() string       { return "show the signed-in user" }
func (*whoamiCmd) Usage() string          { return "pocketledger whoami\n" }
func (*whoamiCmd) SetFlags(*flag.FlagSet) {}

func (*whoamiCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if a == nil {
		return subcommands.ExitFailure
	}
	session, ok := a.tracker.Current()
	if !ok {
		return a.fail(core.ErrNotSignedIn)
	}
	fmt.Fprintf(a.stdout, "%s <%s>, signed in %s\n",
		session.UserName, session.Email, session.Timestamp.In(a.loc).Format("2006-01-02 15:04"))
	return subcommands.ExitSuccess
}
