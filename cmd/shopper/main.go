// Command shopper drives the storefront stores from a terminal: browse the
// catalog, fill the cart and check the signed-in account.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"click-collect/internal/dto/request"
	"click-collect/internal/store/catalog"
	"click-collect/internal/storefront"
	"click-collect/pkg/client"
	"click-collect/pkg/retry"
	"click-collect/pkg/sigctx"
	"click-collect/pkg/utils"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `usage: shopper [-c config] [-v] <command> [flags]

commands:
  products  list products, filtered by --category --gender --store --q --min-price --max-price
  add       add <product-id> to the cart with --qty --color --size
  cart      show the cart grouped by store
  qty       set <line-id> to <quantity>, zero removes the line
  remove    remove <line-id> from the cart
  clear     empty the cart, or only --store
  whoami    sign in with --email --password and print the account
`

func main() {
	configPath := pflag.StringP("config", "c", ".env", "path to the env config file")
	verbose := pflag.BoolP("verbose", "v", false, "log to stderr")
	pflag.CommandLine.SetInterspersed(false)
	pflag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	pflag.Parse()

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("Failed to init logger: %v", err)
		}
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := sigctx.NotifyContext(context.Background())
	defer stop()

	storage, closeStorage, err := storefront.OpenStorage(ctx, config, logger)
	if err != nil {
		log.Fatalf("Failed to open cart storage: %v", err)
	}
	defer closeStorage()

	api := client.New(config.Client.BaseURL, logger,
		client.WithRetry(config.Client.RetryAttempts, retry.ExponentialBackoff(200*time.Millisecond)),
	)

	app, err := storefront.New(ctx, api, storage, config.Cart.RecordName, logger)
	if err != nil {
		log.Fatalf("Failed to start storefront: %v", err)
	}

	if err := run(ctx, app, pflag.Arg(0), pflag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, app *storefront.App, command string, args []string) error {
	switch command {
	case "products":
		return listProducts(ctx, app, args)
	case "add":
		return addItem(ctx, app, args)
	case "cart":
		printCart(app)
		return nil
	case "qty":
		if len(args) != 2 {
			return errors.New("qty needs <line-id> <quantity>")
		}
		q, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity %q: %w", args[1], err)
		}
		return app.Cart.UpdateQuantity(ctx, args[0], q)
	case "remove":
		if len(args) != 1 {
			return errors.New("remove needs <line-id>")
		}
		return app.Cart.RemoveItem(ctx, args[0])
	case "clear":
		fs := pflag.NewFlagSet("clear", pflag.ContinueOnError)
		storeID := fs.String("store", "", "only clear lines of this store")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *storeID != "" {
			return app.Cart.ClearStore(ctx, *storeID)
		}
		return app.Cart.ClearCart(ctx)
	case "whoami":
		return whoami(ctx, app, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func listProducts(ctx context.Context, app *storefront.App, args []string) error {
	fs := pflag.NewFlagSet("products", pflag.ContinueOnError)
	category := fs.String("category", "", "category")
	gender := fs.String("gender", "", "gender")
	storeID := fs.String("store", "", "store id")
	search := fs.String("q", "", "search text")
	minPrice := fs.Float64("min-price", 0, "lower price bound")
	maxPrice := fs.Float64("max-price", 0, "upper price bound")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.SyncCatalog(ctx); err != nil {
		return err
	}

	patch := catalog.Filters{}
	if fs.Changed("category") {
		patch.Category = category
	}
	if fs.Changed("gender") {
		patch.Gender = gender
	}
	if fs.Changed("store") {
		patch.StoreID = storeID
	}
	if fs.Changed("min-price") {
		patch.MinPrice = minPrice
	}
	if fs.Changed("max-price") {
		patch.MaxPrice = maxPrice
	}
	if err := app.Catalog.SetFilters(patch); err != nil {
		return err
	}
	if *search != "" {
		app.Catalog.SearchProducts(*search)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTORE\tCATEGORY\tPRICE")
	for _, p := range app.Catalog.Filtered() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n", p.ID, p.Name, p.StoreName, p.Category, p.Price)
	}
	return w.Flush()
}

func addItem(ctx context.Context, app *storefront.App, args []string) error {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	qty := fs.IntP("qty", "n", 1, "quantity")
	color := fs.String("color", "", "color option")
	size := fs.String("size", "", "size option")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("add needs <product-id>")
	}

	if err := app.SyncCatalog(ctx); err != nil {
		return err
	}
	line, err := app.AddToCart(ctx, fs.Arg(0), *color, *size, *qty)
	if err != nil {
		return err
	}
	fmt.Printf("%s x%d in cart as %s\n", line.Name, line.Quantity, line.ID)
	return nil
}

func printCart(app *storefront.App) {
	groups := app.Cart.Groups()
	if len(groups) == 0 {
		fmt.Println("cart is empty")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(w, "%s (%s)\t\t\t\n", g.StoreName, g.StoreID)
		for _, l := range g.Lines {
			fmt.Fprintf(w, "  %s\t%s %s %s\tx%d\t%.2f\n", l.ID, l.Name, l.Color, l.Size, l.Quantity, l.Subtotal())
		}
		fmt.Fprintf(w, "  subtotal\t\t\t%.2f\n", g.Subtotal())
	}
	fmt.Fprintf(w, "total (%d items)\t\t\t%.2f\n", app.Cart.TotalItems(), app.Cart.TotalAmount())
	_ = w.Flush()
}

func whoami(ctx context.Context, app *storefront.App, args []string) error {
	fs := pflag.NewFlagSet("whoami", pflag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("SHOPPER_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.Auth.Login(ctx, &request.LoginRequest{Email: *email, Password: *password}); err != nil {
		return err
	}
	defer func() { _ = app.Auth.Logout(ctx) }()

	state := app.Auth.Snapshot()
	fmt.Printf("id:      %s\nemail:   %s\n", state.User.ID, state.User.Email)
	if state.User.FullName != nil {
		fmt.Printf("name:    %s\n", *state.User.FullName)
	}
	fmt.Printf("expires: %s\n", state.Session.ExpiresAt.Format(time.RFC3339))
	return nil
}
