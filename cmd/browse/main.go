package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/storefront-backend/internal/browse"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	browseCfg, err := config.LoadBrowse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "browse",
		Usage: "walk a storefront collection the way the collection page does",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Value: browseCfg.BaseURL},
			&cli.DurationFlag{Name: "timeout", Value: browseCfg.Timeout},
			&cli.StringFlag{Name: "slug", Value: string(catalog.SlugAll), Usage: "collection slug"},
			&cli.StringFlag{Name: "sort", Usage: "newest, price-asc or price-desc"},
			&cli.StringSliceFlag{Name: "color"},
			&cli.StringSliceFlag{Name: "size"},
			&cli.StringSliceFlag{Name: "type"},
			&cli.StringSliceFlag{Name: "price", Usage: "price bucket key"},
			&cli.IntFlag{Name: "pages", Value: 1, Usage: "pages to load by scrolling"},
			&cli.IntFlag{Name: "page-size", Value: 0},
			&cli.StringFlag{Name: "log-level", Value: "warn"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	logg := logger.New(logger.Options{
		ServiceName: "browse",
		Level:       c.String("log-level"),
		Output:      os.Stderr,
	})

	sortSpec, err := catalog.ParseSort(c.String("sort"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	remote, err := browse.NewHTTPCollection(c.String("base-url"), c.Duration("timeout"))
	if err != nil {
		return err
	}

	var redirectedTo string
	opts := []browse.Option{
		browse.WithLogger(logg),
		browse.WithRedirector(func(to string) { redirectedTo = to }),
	}
	if size := c.Int("page-size"); size > 0 {
		opts = append(opts, browse.WithPageSize(size))
	}

	container := browse.NewContainer(ctx, remote, func(v browse.View) {
		logg.Debug(ctx, fmt.Sprintf("view: slug=%s items=%d loading=%t", v.Slug, len(v.Items), v.IsLoading))
	}, opts...)
	defer container.Close()

	container.Mount(c.String("slug"))
	container.Wait()
	if redirectedTo != "" {
		return cli.Exit("redirected to "+redirectedTo, 3)
	}

	if !sortSpec.IsZero() && sortSpec != catalog.DefaultSort {
		container.OnSortChange(sortSpec)
		container.Wait()
	}

	for page := 1; page < c.Int("pages") && container.View().HasMore; page++ {
		container.OnScrollSentinelVisible()
		container.Wait()
	}

	conditions := catalog.FilterConditions{
		catalog.FacetColor: c.StringSlice("color"),
		catalog.FacetSize:  c.StringSlice("size"),
		catalog.FacetType:  c.StringSlice("type"),
		catalog.FacetPrice: c.StringSlice("price"),
	}
	if !conditions.IsEmpty() {
		container.OnFilterChange(conditions)
		container.Wait()
	}

	view := container.View()
	if view.Err != nil {
		return cli.Exit(view.Err.Error(), 1)
	}
	return render(c.App.Writer, view)
}

func render(w io.Writer, view browse.View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "collection %s, sorted by %s\n", view.Slug, view.Sort)
	if view.Empty {
		fmt.Fprintln(tw, "no products match the selected filters")
		return tw.Flush()
	}
	fmt.Fprintln(tw, "MODEL\tCOLOR\tTYPE\tPRICE\tSIZES\tSTATUS")
	for _, item := range view.Items {
		status := ""
		switch {
		case item.SoldOut:
			status = "sold out"
		case item.Discounted():
			status = fmt.Sprintf("-%d%%", item.DiscountPercent)
		}
		sizes := make([]string, 0, len(item.SKUs))
		for _, s := range item.Sizes() {
			sizes = append(sizes, string(s))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.Model, item.Color, item.Type,
			catalog.FormatPrice(item.CurrentPriceCents),
			strings.Join(sizes, ","), status)
	}
	if view.HasMore {
		fmt.Fprintln(tw, "more items available")
	}
	return tw.Flush()
}
