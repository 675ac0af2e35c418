// storefront-cli browses the ChicStar catalog and acts on a customer
// account from the terminal. The session token is kept in a small local
// file, the same way the browser keeps it in local storage.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"storefront/internal/client"
	"storefront/internal/users"
)

type options struct {
	server      string
	storage     string
	email       string
	password    string
	confirm     string
	name        string
	phone       string
	newsletter  bool
	acceptTerms bool
	remember    bool
	quantity    int
	timeout     time.Duration
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string, out io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("storefront-cli", pflag.ContinueOnError)
	flagSet.StringVar(&opts.server, "server", envOr("STOREFRONT_URL", "http://localhost:3000"), "storefront base URL")
	flagSet.StringVar(&opts.storage, "storage", defaultStoragePath(), "file the session token is kept in")
	flagSet.StringVarP(&opts.email, "email", "e", "", "account email")
	flagSet.StringVarP(&opts.password, "password", "p", "", "account password")
	flagSet.StringVar(&opts.confirm, "confirm-password", "", "password confirmation (signup)")
	flagSet.StringVar(&opts.name, "name", "", "customer name (signup, profile)")
	flagSet.StringVar(&opts.phone, "phone", "", "phone number (signup, profile)")
	flagSet.BoolVar(&opts.newsletter, "newsletter", false, "subscribe to the newsletter (signup, profile)")
	flagSet.BoolVar(&opts.acceptTerms, "accept-terms", false, "accept the terms of use (signup)")
	flagSet.BoolVar(&opts.remember, "remember", false, "keep the session after login")
	flagSet.IntVarP(&opts.quantity, "quantity", "q", 1, "units to buy")
	flagSet.DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(out, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(out, flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(out, flagSet)
		return errors.New("missing command")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	c := client.NewController(client.NewAPI(opts.server, nil), client.NewFileStorage(opts.storage))
	if err := c.Start(ctx); err != nil {
		return err
	}

	cmdErr := dispatch(ctx, c, args[0], args[1:], opts, flagSet, out)
	fmt.Fprintln(out, client.Render(c.State()))
	return cmdErr
}

func dispatch(ctx context.Context, c *client.Controller, cmd string, args []string, opts options, flagSet *pflag.FlagSet, out io.Writer) error {
	switch cmd {
	case "products", "status":
		return nil
	case "login":
		if err := c.Login(ctx, opts.email, opts.password, opts.remember); err != nil {
			return err
		}
		if !opts.remember {
			fmt.Fprintln(out, "session not kept; pass --remember to stay signed in")
		}
		return nil
	case "signup":
		return c.Signup(ctx, users.NewCustomer{
			Name:              opts.name,
			Email:             opts.email,
			Phone:             opts.phone,
			Password:          opts.password,
			ConfirmPassword:   opts.confirm,
			AcceptsTerms:      opts.acceptTerms,
			AcceptsNewsletter: opts.newsletter,
		})
	case "logout":
		c.Logout()
		return nil
	case "profile":
		if flagSet.Changed("name") || flagSet.Changed("phone") || flagSet.Changed("newsletter") {
			if err := c.UpdateProfile(ctx, profileUpdate(opts, flagSet)); err != nil {
				return err
			}
		}
		return c.OpenModal(ctx, client.ModalProfile)
	case "favorite", "unfavorite", "buy":
		id, err := productArg(args)
		if err != nil {
			return err
		}
		switch cmd {
		case "favorite":
			return c.AddFavorite(ctx, id)
		case "unfavorite":
			return c.RemoveFavorite(ctx, id)
		}
		_, err = c.Buy(ctx, id, opts.quantity)
		return err
	case "orders":
		if err := c.LoadOrders(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, client.RenderOrders(c.State()))
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func profileUpdate(opts options, flagSet *pflag.FlagSet) users.ProfileUpdate {
	var upd users.ProfileUpdate
	if flagSet.Changed("name") {
		upd.Name = &opts.name
	}
	if flagSet.Changed("phone") {
		upd.Phone = &opts.phone
	}
	if flagSet.Changed("newsletter") {
		upd.AcceptsNewsletter = &opts.newsletter
	}
	return upd
}

func productArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one product id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", args[0])
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront-cli.json"
	}
	return filepath.Join(dir, "storefront", "cli.json")
}

func printHelp(out io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(out, `storefront-cli talks to a ChicStar storefront.

Usage:
  storefront-cli [flags] <command> [args]

Commands:
  products                 list the catalog
  status                   show the session and catalog
  signup                   create an account (--name --email --phone --password --confirm-password --accept-terms)
  login                    sign in (--email --password [--remember])
  logout                   forget the stored session
  profile                  show the profile, updating --name/--phone/--newsletter when given
  favorite <id>            add a product to favorites
  unfavorite <id>          remove a product from favorites
  buy <id>                 order one product (--quantity)
  orders                   list placed orders

Flags:
%s`, flagSet.FlagUsages())
}
