package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-pos-console/bootstrap"
	"github.com/jrsteele09/go-pos-console/console"
	"github.com/jrsteele09/go-pos-console/features"
	"github.com/jrsteele09/go-pos-console/guard"
	"github.com/jrsteele09/go-pos-console/internal/config"
	"github.com/jrsteele09/go-pos-console/internal/logger"
)

const usage = `usage: console [-config file] <command> [args]

commands:
  status                      restore the session and show the dashboard
  login -u <user> [-p <pw>]   sign in (password also read from POS_PASSWORD)
  logout                      sign out and forget the session
  whoami                      show the signed in user's profile
  view <route>                render a route (e.g. /brands, /admin/brands)
  brands list [-page n]       list brands
  brands create -name <name>  create a brand
  origin show|set <url>|clear manage the backend origin override
`

var errUsage = errors.New("invalid usage")

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	quiet := flag.Bool("q", false, "skip the banner")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *quiet, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, quiet bool, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(c)
	if !quiet {
		displayAppname(c.GetAppName())
	}

	app, err := console.New(ctx, c, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn().Err(err).Msg("closing console")
		}
	}()

	cmd, rest := args[0], args[1:]
	if cmd == "origin" {
		// Origin management never talks to the backend.
		return originCommand(ctx, app, rest)
	}

	st, err := app.Start(ctx)
	if err != nil {
		return err
	}
	if st.Phase == bootstrap.FatalError {
		printView(app.Render(console.RouteDashboard))
		return errors.New("backend unavailable")
	}

	switch cmd {
	case "status":
		fmt.Printf("session: %s\n", st.Phase)
		awaitProfile(app)
		printView(app.Render(console.RouteDashboard))
	case "login":
		return loginCommand(ctx, app, rest)
	case "logout":
		if err := app.Session().Logout(ctx); err != nil {
			log.Info().Err(err).Msg("backend sign out failed")
		}
		fmt.Println("Signed out.")
	case "whoami":
		awaitProfile(app)
		printView(app.Render(console.RouteProfile))
	case "view":
		if len(rest) != 1 {
			return errUsage
		}
		awaitProfile(app)
		switch rest[0] {
		case console.RouteBrands, console.RouteAdminBrands:
			if app.Session().AccessToken() != "" {
				app.LoadBrands(ctx, 1, 20)
			}
		}
		printView(app.Render(rest[0]))
	case "brands":
		return brandsCommand(ctx, app, rest)
	default:
		return errUsage
	}
	return showModal(app)
}

func loginCommand(ctx context.Context, app *console.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", os.Getenv("POS_PASSWORD"), "password")
	if err := fs.Parse(args); err != nil || *username == "" {
		return errUsage
	}

	res := app.Login(ctx, *username, *password)
	if !res.OK() {
		if res.Error.Unauthorized() {
			return errors.New(res.Error.Text())
		}
		return showModal(app)
	}
	awaitProfile(app)
	printView(app.Render(console.RouteDashboard))
	return nil
}

func brandsCommand(ctx context.Context, app *console.App, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("brands list", flag.ContinueOnError)
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 20, "page size")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		if app.Session().AccessToken() == "" {
			printView(app.Render(console.RouteBrands))
			return nil
		}
		res := app.LoadBrands(ctx, *page, *size)
		if res.OK() {
			for _, b := range res.Response.Brands {
				fmt.Printf("%-36s  %s\n", b.ID, b.Name)
			}
			p := res.Response.Pagination
			fmt.Printf("page %d, %d per page, %d total\n", p.Page, p.PageSize, p.Total)
		}
	case "create":
		fs := flag.NewFlagSet("brands create", flag.ContinueOnError)
		name := fs.String("name", "", "brand name")
		description := fs.String("description", "", "brand description")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		res := app.Brands().Create(ctx, features.CreateBrandRequest{Name: *name, Description: *description})
		if res.OK() {
			fmt.Printf("Created %s (%s)\n", res.Response.Name, res.Response.ID)
		} else if res.Error.Unauthorized() {
			printView(app.Render(console.RouteBrands))
		}
	default:
		return errUsage
	}
	return showModal(app)
}

func originCommand(ctx context.Context, app *console.App, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "show":
		fmt.Printf("origin:  %s\ndefault: %s\n", app.Origin().Resolve(ctx), app.Origin().Default())
	case "set":
		if len(args) != 2 {
			return errUsage
		}
		if err := app.Origin().SetOverride(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("origin set to %s\n", app.Origin().Resolve(ctx))
	case "clear":
		if err := app.Origin().ClearOverride(ctx); err != nil {
			return err
		}
		fmt.Printf("origin reset to %s\n", app.Origin().Default())
	default:
		return errUsage
	}
	return nil
}

// awaitProfile lets the profile fetch land before a one-shot render.
func awaitProfile(app *console.App) {
	if f := app.Bootstrap().ProfileFetch(); f != nil {
		_ = f.Await()
	}
}

// showModal prints the held error the way the error surface would and dismisses it.
func showModal(app *console.App) error {
	modal, open := app.Surface().Render()
	if !open {
		return nil
	}
	fmt.Fprintln(os.Stderr, modal.String())
	app.Surface().Dismiss()
	return errors.New(modal.Title)
}

func printView(v guard.View) {
	switch v.Kind {
	case guard.ViewContent:
		fmt.Println(v.Body)
	default:
		fmt.Printf("[%s] %s\n", v.Kind, v.String())
	}
	if v.Kind == guard.ViewLogin {
		fmt.Println("Run: console login -u <username>")
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
