package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"

	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/engine"
	"github.com/kymoh/darasa/core/session"
	inmemstate "github.com/kymoh/darasa/storage/state/inmem"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	eng   *engine.Engine
	sess  session.Manager
	state *inmemstate.State
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME -role admin|teacher|student - authenticate and run the bulk fetch")
	fmt.Fprintln(cli.out, "  fetch                                                - re-run the bulk fetch")
	fmt.Fprintln(cli.out, "  status                                               - show session and mirror state")
	fmt.Fprintln(cli.out, "  list -kind KIND                                      - list the records of one entity kind")
	fmt.Fprintln(cli.out, "  reset                                                - reset server data and re-fetch")
	fmt.Fprintln(cli.out, "  logout                                               - drop the session")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginUname := loginCmd.String("username", "", "The username to authenticate as. The password will be prompted next.")
	loginRole := loginCmd.String("role", "", "One of admin, teacher or student.")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listKind := listCmd.String("kind", "", "The entity kind to list, e.g. classes or students.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginUname == "" || *loginRole == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginUname, string(pwd), catalog.Role(*loginRole))
	case "fetch":
		return cli.fetch(ctx)
	case "status":
		return cli.status()
	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *listKind == "" {
			listCmd.Usage()
			return errHelp
		}
		return cli.list(*listKind)
	case "reset":
		return cli.reset(ctx)
	case "logout":
		return cli.eng.Logout()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, uname, pwd string, role catalog.Role) error {
	usr, err := cli.eng.Login(ctx, uname, pwd, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "logged in as %s (%s)\n", usr.Username, usr.Role)
	return cli.status()
}

func (cli *commandLine) fetch(ctx context.Context) error {
	if err := cli.eng.FetchAll(ctx); err != nil {
		return err
	}
	return cli.status()
}

func (cli *commandLine) reset(ctx context.Context) error {
	fmt.Fprintln(cli.out, "resetting server data...")
	if err := cli.eng.ResetAllData(ctx); err != nil {
		return err
	}
	return cli.status()
}

func (cli *commandLine) status() error {
	if usr, ok := cli.sess.User(); ok {
		fmt.Fprintf(cli.out, "session: %s (%s)\n", usr.Username, usr.Role)
	} else {
		fmt.Fprintln(cli.out, "session: unauthenticated")
	}
	fmt.Fprintf(cli.out, "state: %s\n", cli.eng.State())
	fmt.Fprintf(cli.out, "classes=%d faculty=%d subjects=%d rooms=%d students=%d institutions=%d users=%d\n",
		cli.state.Classes.Len(), cli.state.Faculty.Len(), cli.state.Subjects.Len(), cli.state.Rooms.Len(),
		cli.state.Students.Len(), cli.state.Institutions.Len(), cli.state.Users.Len())
	return nil
}

func (cli *commandLine) list(kindArg string) error {
	kind, err := catalog.ParseKind(kindArg)
	if err != nil {
		if hint := suggestKind(kindArg); hint != "" {
			return fmt.Errorf("unknown entity kind %q, did you mean %q?", kindArg, hint)
		}
		return err
	}
	switch kind {
	case catalog.KindClass:
		for _, c := range cli.state.Classes.Snapshot() {
			fmt.Fprintf(cli.out, "%s\t%s\n", c.ID, c.Name)
		}
	case catalog.KindFaculty:
		for _, f := range cli.state.Faculty.Snapshot() {
			fmt.Fprintf(cli.out, "%s\t%s\n", f.ID, f.Name)
		}
	case catalog.KindSubject:
		for _, s := range cli.state.Subjects.Snapshot() {
			fmt.Fprintf(cli.out, "%s\t%s (%s)\n", s.ID, s.Name, s.Code)
		}
	case catalog.KindRoom:
		for _, r := range cli.state.Rooms.Snapshot() {
			fmt.Fprintf(cli.out, "%s\t%s\n", r.ID, r.Name)
		}
	case catalog.KindStudent:
		for _, s := range cli.state.Students.Snapshot() {
			fmt.Fprintf(cli.out, "%s\t%s\t%s\n", s.ID, s.RollNo, s.Name)
		}
	case catalog.KindInstitution:
		for _, i := range cli.state.Institutions.Snapshot() {
			fmt.Fprintf(cli.out, "%s\t%s\n", i.ID, i.Name)
		}
	case catalog.KindUser:
		for _, u := range cli.state.Users.Snapshot() {
			fmt.Fprintf(cli.out, "%s\t%s\t%s\n", u.ID, u.Username, u.Role)
		}
	}
	return nil
}

// suggestKind finds the closest known kind name for a typo'd argument.
func suggestKind(arg string) string {
	var best string
	var bestRatio float64
	for _, k := range catalog.Kinds {
		for _, name := range []string{k.String(), k.Path()} {
			ratio := difflib.NewMatcher(split(arg), split(name)).QuickRatio()
			if ratio > bestRatio {
				bestRatio, best = ratio, name
			}
		}
	}
	if bestRatio < 0.5 {
		return ""
	}
	return best
}

func split(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
