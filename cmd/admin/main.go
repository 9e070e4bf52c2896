// Package main provides back-office account management for newsdesk.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"newsdesk/internal/config"
	"newsdesk/internal/database"
	"newsdesk/internal/repository"
	"newsdesk/internal/service"
)

const usage = `Usage:
  admin promote <user_id>                       - Promote user to admin
  admin demote <user_id>                        - Demote user from admin
  admin list-admins                             - List all admins
  admin set-password <user_id> <password>       - Replace a user's password
  admin create-admin <username> <email> <password> - Create an admin account`

var errUsage = errors.New(usage)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	users := service.NewUserManager(repository.NewUserRepository(db))
	if err := run(context.Background(), users, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usage)
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, users *service.UserManager, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "promote", "demote":
		if len(args) < 2 {
			return errUsage
		}
		id, err := parseUserID(args[1])
		if err != nil {
			return err
		}
		promote := args[0] == "promote"
		if err := users.SetAdmin(ctx, id, promote); err != nil {
			return fmt.Errorf("failed to %s user %d: %w", args[0], id, err)
		}
		if promote {
			fmt.Fprintf(out, "Promoted user %d to admin\n", id)
		} else {
			fmt.Fprintf(out, "Demoted user %d from admin\n", id)
		}

	case "list-admins":
		admins, err := users.ListAdmins(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch admins: %w", err)
		}
		if len(admins) == 0 {
			fmt.Fprintln(out, "No admins found in the system")
			return nil
		}
		fmt.Fprintln(out, "Current Admins:")
		for _, admin := range admins {
			fmt.Fprintf(out, "ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
		}

	case "set-password":
		if len(args) < 3 {
			return errUsage
		}
		id, err := parseUserID(args[1])
		if err != nil {
			return err
		}
		if err := users.SetPassword(ctx, id, args[2]); err != nil {
			return fmt.Errorf("failed to set password: %w", err)
		}
		fmt.Fprintf(out, "Password updated for user %d\n", id)

	case "create-admin":
		if len(args) < 4 {
			return errUsage
		}
		user, err := users.CreateUser(ctx, args[1], args[2], args[3], true)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		fmt.Fprintf(out, "Created admin %s (ID: %d)\n", user.Username, user.ID)

	default:
		return fmt.Errorf("unknown command: %s\n%w", args[0], errUsage)
	}
	return nil
}

func parseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(id), nil
}
