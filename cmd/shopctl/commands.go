package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Skotchmaster/storefront/pkg/cart"
	"github.com/Skotchmaster/storefront/pkg/checkout"
	"github.com/Skotchmaster/storefront/pkg/console"
	"github.com/Skotchmaster/storefront/pkg/contracts"
)

var errNotLoggedIn = errors.New("not logged in; run shopctl login first")

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) requireSession() error {
	if !a.api.Session().LoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login needs -email and -password")
	}
	s, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", s.UserID, s.Role)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	fmt.Fprintln(a.out, "logged out")
	return err
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := newFlags("products")
	category := fs.String("category", "", "filter by category")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	items, err := a.api.Products(ctx, *category, *page, 0)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", p.ID, p.Title, p.Category, p.Price)
	}
	return tw.Flush()
}

func (a *app) cart(ctx context.Context, args []string) error {
	action := "show"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action, args = args[0], args[1:]
	}
	fs := newFlags("cart")
	id := fs.String("id", "", "product id")
	qty := fs.Int("qty", 1, "quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := cart.Load(a.store)
	if err != nil {
		return err
	}
	switch action {
	case "show":
		a.printCart(c)
		return nil
	case "add":
		if *id == "" {
			return errors.New("cart add needs -id")
		}
		p, err := a.api.Product(ctx, *id)
		if err != nil {
			return err
		}
		if err := c.Add(cart.Product{ID: p.ID, Title: p.Title, Price: p.Price, Image: p.Image}, *qty); err != nil {
			return err
		}
	case "update":
		if *id == "" {
			return errors.New("cart update needs -id")
		}
		c.UpdateQuantity(*id, *qty)
	case "remove":
		c.Remove(*id)
	case "clear":
		c.Clear()
	default:
		return fmt.Errorf("unknown cart action %q", action)
	}
	if err := cart.Save(a.store, c); err != nil {
		return err
	}
	a.printCart(c)
	return nil
}

func (a *app) printCart(c *cart.Store) {
	if c.Empty() {
		fmt.Fprintln(a.out, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE")
	for _, it := range c.Items() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", it.ID, it.Title, it.Quantity, it.Price)
	}
	_ = tw.Flush()
	fmt.Fprintf(a.out, "%d item(s), total %s\n", c.ItemCount(), c.Total().StringFixed(2))
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := newFlags("checkout")
	var addr contracts.Address
	fs.StringVar(&addr.Street, "street", "", "street")
	fs.StringVar(&addr.City, "city", "", "city")
	fs.StringVar(&addr.State, "state", "", "state")
	fs.StringVar(&addr.ZipCode, "zip", "", "zip code")
	fs.StringVar(&addr.Country, "country", "", "country")
	delay := fs.Duration("delay", checkout.DefaultPaymentDelay, "simulated payment time")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := cart.Load(a.store)
	if err != nil {
		return err
	}
	w := checkout.New(c, a.store, a.api)
	w.PaymentDelay = *delay

	fmt.Fprintln(a.out, "processing payment...")
	order, err := w.PlaceOrder(ctx, a.api.Session().UserID, addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "order %s placed (%s, %.2f)\n\n", order.ID, order.Status, order.TotalPrice)
	return a.orders(ctx, nil)
}

func (a *app) orders(ctx context.Context, args []string) error {
	fs := newFlags("orders")
	period := fs.String("period", "", "today, yesterday, week or month")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	orders, err := a.api.ListOrders(ctx, "", *period)
	if err != nil {
		return err
	}
	printOrders(a.out, orders)
	return nil
}

func printOrders(out io.Writer, orders []contracts.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(out, "no orders")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tITEMS\tTOTAL")
	for _, o := range orders {
		n := 0
		for _, l := range o.Products {
			n += l.Quantity
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\n", o.ID, o.CreatedAt.Local().Format(time.DateTime), o.Status, n, o.TotalPrice)
	}
	_ = tw.Flush()
}

func (a *app) feedback(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("feedback needs an action: show, like, dislike or comment")
	}
	action := args[0]
	fs := newFlags("feedback")
	id := fs.String("id", "", "product id")
	text := fs.String("text", "", "comment text")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("feedback needs -id")
	}

	var (
		fb  *contracts.Feedback
		err error
	)
	switch action {
	case "show":
		fb, err = a.api.Feedback(ctx, *id)
	case "like":
		fb, err = a.api.Vote(ctx, *id, contracts.VoteLike)
	case "dislike":
		fb, err = a.api.Vote(ctx, *id, contracts.VoteDislike)
	case "comment":
		fb, err = a.api.Comment(ctx, *id, *text)
	default:
		return fmt.Errorf("unknown feedback action %q", action)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "likes %d  dislikes %d\n", fb.Likes, fb.Dislikes)
	for _, c := range fb.Comments {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", c.Date.Local().Format(time.DateOnly), c.Name, c.Text)
	}
	return nil
}

func (a *app) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("admin needs an action: orders, status or console")
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	action := args[0]
	fs := newFlags("admin")
	period := fs.String("period", "", "today, yesterday, week or month")
	id := fs.String("id", "", "order id")
	status := fs.String("status", "", "pending, shipped or cancelled")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	con := console.New(a.api)
	switch action {
	case "orders":
		if err := con.Load(ctx, *period); err != nil {
			return err
		}
		printOrders(a.out, con.Orders())
		sales, n := con.Totals()
		fmt.Fprintf(a.out, "\n%d order(s), sales %.2f\n", n, sales)
		return nil
	case "status":
		if *id == "" || *status == "" {
			return errors.New("admin status needs -id and -status")
		}
		if err := con.SetStatus(ctx, *id, contracts.OrderStatus(*status)); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "order %s is now %s\n", *id, *status)
		return nil
	case "console":
		return runConsole(ctx, con, *period)
	default:
		return fmt.Errorf("unknown admin action %q", action)
	}
}
