// catalogctl is a command line front end for the catalog admin APIs. It keeps
// its session and display preferences in a local state file (or Redis when
// configured) so commands compose across invocations.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/hpcatalog/catalogadmin/pkg/apiclient"
	"github.com/hpcatalog/catalogadmin/pkg/catalog"
	"github.com/hpcatalog/catalogadmin/pkg/kvstore"
	"github.com/hpcatalog/catalogadmin/pkg/logger"
	"github.com/hpcatalog/catalogadmin/pkg/session"
	"github.com/hpcatalog/catalogadmin/pkg/ui"
)

const usage = `usage: catalogctl <command> [flags]

session:
  login -email <e> -password <p>        sign in
  register -email <e> -password <p> -name <n>
  me                                    show the signed-in profile
  logout                                clear the stored session

categories:
  categories list [-search <s>] [-include-inactive=<bool>]
  categories create -name <n> [-desc <d>]
  categories update -id <id> -name <n> [-desc <d>]
  categories delete -id <id> [-yes]

products:
  products list [-page <n>] [-size <n>] [-search <s>] [-category <id>]
                [-price-min <f>] [-price-max <f>] [-active=<bool>]
                [-sort-by <k>] [-sort-dir asc|desc]
  products create -sku <s> -name <n> -price <f> -stock <n> -category <id> [-desc <d>]
  products update -id <id> -sku <s> -name <n> -price <f> -stock <n> -category <id> [-desc <d>]
  products delete -id <id> [-yes]
  products import -file <path.csv|path.xlsx>

preferences:
  prefs show | prefs lang | prefs theme

environment:
  AUTH_API_BASE_URL, CATALOG_API_BASE_URL   upstream base URLs (required)
  CATALOGCTL_REDIS_HOST[, _PORT, _PASSWORD] use Redis instead of the state file
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "catalogctl:", err)
		os.Exit(1)
	}
}

// cli bundles the wired SDK components a command needs.
type cli struct {
	sessions   *session.Manager
	categories *catalog.CategoryStore
	products   *catalog.ProductStore
	prefs      *ui.Prefs
	log        *slog.Logger
	closeStore func() error
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logger.New("catalogctl", envOr("LOG_LEVEL", "warn"))

	c, err := wire(ctx, log)
	if err != nil {
		return err
	}
	defer func() { _ = c.closeStore() }()

	switch args[0] {
	case "login", "register", "me", "logout":
		return c.runSession(ctx, args[0], args[1:])
	case "categories":
		return c.runCategories(ctx, args[1:])
	case "products":
		return c.runProducts(ctx, args[1:])
	case "prefs":
		return c.runPrefs(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// wire builds the SDK stack: durable store, auth client, and a catalog client
// protected by a circuit breaker.
func wire(ctx context.Context, log *slog.Logger) (*cli, error) {
	authBase := os.Getenv("AUTH_API_BASE_URL")
	catalogBase := os.Getenv("CATALOG_API_BASE_URL")
	if authBase == "" || catalogBase == "" {
		return nil, fmt.Errorf("AUTH_API_BASE_URL and CATALOG_API_BASE_URL must be set")
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	authClient := apiclient.New(authBase)

	catalogClient := apiclient.New(strings.TrimRight(catalogBase, "/") + "/api")
	catalogClient.HTTPClient = &http.Client{
		Transport: apiclient.NewBreakerTransport(nil, apiclient.DefaultBreakerConfig("catalog"), log),
	}

	sessions := session.NewManager(authClient, store, log)

	return &cli{
		sessions:   sessions,
		categories: catalog.NewCategoryStore(catalogClient, sessions),
		products:   catalog.NewProductStore(catalogClient, sessions),
		prefs:      ui.NewPrefs(ctx, store),
		log:        log,
		closeStore: closeStore,
	}, nil
}

// openStore picks Redis when CATALOGCTL_REDIS_HOST is set, otherwise a JSON
// state file under the user config directory.
func openStore(ctx context.Context) (kvstore.Store, func() error, error) {
	if host := os.Getenv("CATALOGCTL_REDIS_HOST"); host != "" {
		port := 6379
		if p, err := strconv.Atoi(os.Getenv("CATALOGCTL_REDIS_PORT")); err == nil {
			port = p
		}
		r, err := kvstore.NewRedis(ctx, kvstore.RedisConfig{
			Host:     host,
			Port:     port,
			Password: os.Getenv("CATALOGCTL_REDIS_PASSWORD"),
		}, "catalogctl:")
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	f := kvstore.NewFile(filepath.Join(dir, "catalogctl", "state.json"))
	return f, func() error { return nil }, nil
}

func (c *cli) runSession(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name (register)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd {
	case "login":
		if err := c.sessions.Login(ctx, *email, *password); err != nil {
			return err
		}
		fmt.Println("signed in")
		return nil
	case "register":
		if err := c.sessions.Register(ctx, *email, *password, *name); err != nil {
			return err
		}
		fmt.Println("account created and signed in")
		return nil
	case "me":
		user, err := c.sessions.Me(ctx)
		if err != nil {
			return err
		}
		return printJSON(user)
	case "logout":
		c.sessions.Logout(ctx)
		fmt.Println("signed out")
		return nil
	}
	return fmt.Errorf("unknown session command %q", cmd)
}

func (c *cli) runCategories(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("categories: missing subcommand")
	}
	sub, args := args[0], args[1:]
	fs := flag.NewFlagSet("categories "+sub, flag.ExitOnError)

	switch sub {
	case "list":
		search := fs.String("search", "", "filter by name")
		includeInactive := fs.Bool("include-inactive", true, "include deactivated categories")
		if err := fs.Parse(args); err != nil {
			return err
		}
		c.categories.SetQuery(catalog.CategoryQuery{Search: *search, IncludeInactive: *includeInactive})
		if err := c.categories.Fetch(ctx); err != nil {
			return err
		}
		return printJSON(c.categories.Items())

	case "create", "update":
		id := fs.Int64("id", 0, "category id (update)")
		name := fs.String("name", "", "category name")
		desc := fs.String("desc", "", "category description")
		if err := fs.Parse(args); err != nil {
			return err
		}
		input := catalog.CategoryInput{Name: *name}
		if *desc != "" {
			input.Description = desc
		}
		var err error
		if sub == "create" {
			err = c.categories.Create(ctx, input)
		} else {
			err = c.categories.Update(ctx, *id, input)
		}
		if err != nil {
			return err
		}
		return printJSON(c.categories.Items())

	case "delete":
		id := fs.Int64("id", 0, "category id")
		yes := fs.Bool("yes", false, "skip the confirmation prompt")
		if err := fs.Parse(args); err != nil {
			return err
		}
		done, err := c.categories.Delete(ctx, *id, confirmer(*yes))
		if err != nil {
			return err
		}
		if !done {
			fmt.Println("canceled")
			return nil
		}
		return printJSON(c.categories.Items())
	}
	return fmt.Errorf("unknown categories subcommand %q", sub)
}

func (c *cli) runProducts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("products: missing subcommand")
	}
	sub, args := args[0], args[1:]
	fs := flag.NewFlagSet("products "+sub, flag.ExitOnError)

	switch sub {
	case "list":
		q := catalog.DefaultProductQuery()
		fs.IntVar(&q.Page, "page", q.Page, "page number")
		fs.IntVar(&q.PageSize, "size", q.PageSize, "page size")
		fs.StringVar(&q.Search, "search", "", "search text")
		category := fs.Int64("category", 0, "filter by category id")
		priceMin := fs.Float64("price-min", -1, "minimum price")
		priceMax := fs.Float64("price-max", -1, "maximum price")
		active := fs.String("active", "", "filter by active state (true|false)")
		fs.StringVar(&q.SortBy, "sort-by", q.SortBy, "sort key")
		sortDir := fs.String("sort-dir", string(q.SortDir), "sort direction (asc|desc)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *category > 0 {
			q.Category = category
		}
		if *priceMin >= 0 {
			q.PriceMin = priceMin
		}
		if *priceMax >= 0 {
			q.PriceMax = priceMax
		}
		if *active != "" {
			b := *active == "true"
			q.Active = &b
		}
		q.SortDir = catalog.SortDir(*sortDir)
		c.products.SetQuery(q)
		if err := c.products.Fetch(ctx); err != nil {
			return err
		}
		return printJSON(c.products.PageData())

	case "create", "update":
		id := fs.Int64("id", 0, "product id (update)")
		input := catalog.ProductInput{}
		fs.StringVar(&input.SKU, "sku", "", "product SKU")
		fs.StringVar(&input.Name, "name", "", "product name")
		desc := fs.String("desc", "", "product description")
		fs.Float64Var(&input.Price, "price", 0, "unit price")
		fs.IntVar(&input.Stock, "stock", 0, "stock units")
		fs.Int64Var(&input.CategoryID, "category", 0, "category id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *desc != "" {
			input.Description = desc
		}
		var err error
		if sub == "create" {
			err = c.products.Create(ctx, input)
		} else {
			err = c.products.Update(ctx, *id, input)
		}
		if err != nil {
			return err
		}
		return printJSON(c.products.PageData())

	case "delete":
		id := fs.Int64("id", 0, "product id")
		yes := fs.Bool("yes", false, "skip the confirmation prompt")
		if err := fs.Parse(args); err != nil {
			return err
		}
		done, err := c.products.Delete(ctx, *id, confirmer(*yes))
		if err != nil {
			return err
		}
		if !done {
			fmt.Println("canceled")
			return nil
		}
		return printJSON(c.products.PageData())

	case "import":
		path := fs.String("file", "", "CSV or XLSX file to upload")
		if err := fs.Parse(args); err != nil {
			return err
		}
		f, err := os.Open(*path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		summary, err := c.products.BulkImport(ctx, filepath.Base(*path), f)
		if err != nil {
			return err
		}
		return printJSON(summary)
	}
	return fmt.Errorf("unknown products subcommand %q", sub)
}

func (c *cli) runPrefs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("prefs: missing subcommand (show|lang|theme)")
	}
	switch args[0] {
	case "show":
	case "lang":
		c.prefs.ToggleLang(ctx)
	case "theme":
		c.prefs.ToggleTheme(ctx)
	default:
		return fmt.Errorf("unknown prefs subcommand %q", args[0])
	}
	fmt.Printf("lang=%s theme=%s\n", c.prefs.Lang(), c.prefs.Theme())
	return nil
}

// confirmer returns a Confirmer that prompts on stdin, or always accepts when
// yes is set.
func confirmer(yes bool) catalog.Confirmer {
	return func(title, message string) bool {
		if yes {
			return true
		}
		fmt.Printf("%s\n%s [y/N]: ", title, message)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
