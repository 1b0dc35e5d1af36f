// Command shopctl is the shopper and admin client for the storefront API.
// The cart and login session live in a local bbolt file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Skotchmaster/storefront/pkg/clientstore"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/storeclient"
)

const usage = `usage: shopctl [-api URL] [-store FILE] <command> [flags]

shopper:
  login -email E -password P      sign in and remember the session
  logout
  products [-category C]          list the catalog
  cart [show|add|update|remove|clear] [-id ID] [-qty N]
  checkout -street S -city C -state S -zip Z -country C
  orders [-period P]              your orders
  feedback show|like|dislike|comment -id ID [-text T]

admin:
  admin orders [-period P]        all orders with totals
  admin status -id ID -status S   set pending, shipped or cancelled
  admin console [-period P]       interactive order console
`

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "shopctl", "store.db")
	}
	return ".shopctl.db"
}

func main() {
	fs := flag.NewFlagSet("shopctl", flag.ExitOnError)
	apiURL := fs.String("api", config.EnvDefault("SHOPCTL_API", "http://localhost:8080"), "storefront base URL")
	storePath := fs.String("store", config.EnvDefault("SHOPCTL_STORE", defaultStorePath()), "local cart and session file")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(*storePath), 0o700); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	store, err := clientstore.OpenBolt(*storePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer store.Close()

	a := &app{out: os.Stdout, store: store, api: storeclient.New(*apiURL)}
	if err := a.run(ctx, fs.Args()); err != nil {
		var apiErr *storeclient.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "error: %s (HTTP %d)\n", apiErr.Message, apiErr.Status)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

type kv interface {
	Get(namespace string) ([]byte, error)
	Put(namespace string, value []byte) error
	Delete(namespace string) error
}

type app struct {
	out   io.Writer
	store kv
	api   *storeclient.Client
}

func (a *app) run(ctx context.Context, args []string) error {
	sess, err := loadSession(a.store)
	if err != nil {
		return err
	}
	a.api.SetSession(sess)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		err = a.login(ctx, rest)
	case "logout":
		err = a.logout(ctx)
	case "products":
		err = a.products(ctx, rest)
	case "cart":
		err = a.cart(ctx, rest)
	case "checkout":
		err = a.checkout(ctx, rest)
	case "orders":
		err = a.orders(ctx, rest)
	case "feedback":
		err = a.feedback(ctx, rest)
	case "admin":
		err = a.admin(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, strings.TrimSpace(usage))
	}

	// Tokens may have been rotated by an automatic refresh.
	if after := a.api.Session(); after != sess {
		if sErr := saveSession(a.store, after); sErr != nil && err == nil {
			err = sErr
		}
	}
	return err
}
