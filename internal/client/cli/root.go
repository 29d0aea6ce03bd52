package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	if a.wallet == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.wallet.Address())
}

// Root runs the interactive command loop.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to FileVault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(a.reader)

	for {
		fmt.Fprintf(a.out, "fvault %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		if err := a.dispatch(ctx, cmd, args); err != nil {
			if err == errQuit {
				fmt.Fprintln(a.out, "Bye!")
				return
			}
			fmt.Fprintln(a.out, err.Error())
		}
	}
}

var errQuit = fmt.Errorf("quit")

func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Fprintln(a.out, "Available commands: upload <path>, download <id> [dir], ls, share <id> <address>, revoke <id> <address>, rm <id>, grants <id>, register, logout, exit")
		} else {
			fmt.Fprintln(a.out, "Available commands: keygen, login, exit")
		}
		return nil
	case "keygen":
		return a.Keygen(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		a.Logout(ctx)
		return nil
	case "exit", "quit":
		return errQuit
	}

	if !a.isLoggedIn() {
		return fmt.Errorf("not logged in, use 'login' first")
	}

	switch cmd {
	case "upload":
		if len(args) != 1 {
			return fmt.Errorf("usage: upload <path>")
		}
		return a.upload(ctx, args[0])
	case "download":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: download <id> [dir]")
		}
		dir := "."
		if len(args) == 2 {
			dir = args[1]
		}
		return a.download(ctx, args[0], dir)
	case "ls", "list":
		return a.list(ctx)
	case "share":
		if len(args) != 2 {
			return fmt.Errorf("usage: share <id> <address>")
		}
		return a.share(ctx, args[0], args[1])
	case "revoke":
		if len(args) != 2 {
			return fmt.Errorf("usage: revoke <id> <address>")
		}
		return a.revoke(ctx, args[0], args[1])
	case "rm", "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: rm <id>")
		}
		return a.remove(ctx, args[0])
	case "grants":
		if len(args) != 1 {
			return fmt.Errorf("usage: grants <id>")
		}
		return a.grants(ctx, args[0])
	case "register":
		if err := a.coord.RegisterWrapKey(ctx); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Wrap key registered for %s\n", a.wallet.Address())
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}
