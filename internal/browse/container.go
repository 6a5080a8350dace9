package browse

import (
	"context"
	"errors"
	"sync"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Renderer receives the view after every transition. It is called with the
// container lock held and must not call back into the container.
type Renderer func(View)

// Redirector is invoked when navigation lands on an unknown collection. It
// runs after the container lock is released and may call Navigate.
type Redirector func(to string)

type Option func(*Container)

func WithPageSize(size int) Option {
	return func(c *Container) { c.state.PageSize = size }
}

func WithRedirector(fn Redirector) Option {
	return func(c *Container) { c.redirect = fn }
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Container) { c.logg = logg }
}

// Container owns the view state of one collection page and runs the fetches
// the reducer asks for.
type Container struct {
	mu       sync.Mutex
	state    State
	pager    Pager
	remote   RemoteCollection
	render   Renderer
	redirect Redirector
	logg     *logger.Logger

	ctx       context.Context
	cancelGen context.CancelFunc
	genCtx    context.Context
	inflight  sync.WaitGroup
}

// NewContainer builds an idle container. Fetches run under ctx.
func NewContainer(ctx context.Context, remote RemoteCollection, render Renderer, opts ...Option) *Container {
	c := &Container{
		state:  State{Phase: PhaseIdle, Sort: catalog.DefaultSort},
		remote: remote,
		render: render,
		logg:   logger.Nop(),
		ctx:    ctx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount loads the first page of slug with the default sort.
func (c *Container) Mount(slug string) {
	c.dispatch(Mounted{Slug: slug})
}

// Navigate switches to another collection, discarding all page state.
func (c *Container) Navigate(slug string) {
	c.dispatch(SlugChanged{Slug: slug})
}

func (c *Container) OnFilterChange(conditions catalog.FilterConditions) {
	c.dispatch(FilterChanged{Conditions: conditions})
}

func (c *Container) OnSortChange(spec catalog.SortSpec) {
	c.dispatch(SortChanged{Sort: spec})
}

// OnScrollSentinelVisible reports that the observed sentinel scrolled into
// view. Triggers while no observer is attached are ignored.
func (c *Container) OnScrollSentinelVisible() {
	c.mu.Lock()
	if !c.pager.Fire("") {
		c.mu.Unlock()
		return
	}
	redirects := c.apply(SentinelVisible{})
	c.mu.Unlock()
	c.followRedirects(redirects)
}

// View returns the current view.
func (c *Container) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.View()
}

// State returns a copy of the current state.
func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pager exposes sentinel attach and detach counts.
func (c *Container) Pager() (attaches, detaches int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Attaches(), c.pager.Detaches()
}

// Wait blocks until no fetch is in flight.
func (c *Container) Wait() {
	c.inflight.Wait()
}

// Close cancels any in-flight fetch and detaches the sentinel.
func (c *Container) Close() {
	c.mu.Lock()
	if c.cancelGen != nil {
		c.cancelGen()
		c.cancelGen = nil
	}
	c.pager.Detach()
	c.mu.Unlock()
	c.inflight.Wait()
}

func (c *Container) dispatch(a Action) {
	c.mu.Lock()
	redirects := c.apply(a)
	c.mu.Unlock()
	c.followRedirects(redirects)
}

// apply runs one transition under c.mu and returns the redirect targets for
// the caller to follow once the lock is released.
func (c *Container) apply(a Action) []string {
	next, cmds := Reduce(c.state, a)
	c.state = next
	c.pager.Sync(next.lastVisibleID(), next.Loading(), next.HasMore && next.Err == nil)
	var redirects []string
	for _, cmd := range cmds {
		if to, ok := c.run(cmd); ok {
			redirects = append(redirects, to)
		}
	}
	if c.render != nil {
		c.render(next.View())
	}
	return redirects
}

func (c *Container) followRedirects(targets []string) {
	if c.redirect == nil {
		return
	}
	for _, to := range targets {
		c.redirect(to)
	}
}

func (c *Container) run(cmd Command) (redirect string, ok bool) {
	switch cmd := cmd.(type) {
	case RedirectCommand:
		if c.cancelGen != nil {
			c.cancelGen()
			c.cancelGen = nil
		}
		return cmd.To, true
	case FetchCommand:
		if !cmd.Append || c.genCtx == nil {
			if c.cancelGen != nil {
				c.cancelGen()
			}
			c.genCtx, c.cancelGen = context.WithCancel(c.ctx)
		}
		ctx := c.logg.WithFields(c.genCtx, map[string]any{
			"slug":       cmd.Query.Slug.String(),
			"sort":       cmd.Query.Sort.Key,
			"generation": cmd.Generation,
		})
		c.inflight.Add(1)
		go c.fetch(ctx, cmd)
	}
	return "", false
}

func (c *Container) fetch(ctx context.Context, cmd FetchCommand) {
	defer c.inflight.Done()
	page, err := c.remote.Fetch(ctx, cmd.Query)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logg.Debug(ctx, "browse.fetch_cancelled")
		} else {
			c.logg.Warn(ctx, "browse.fetch_failed")
		}
		c.dispatch(FetchFailed{Generation: cmd.Generation, Err: err})
		return
	}
	c.dispatch(FetchSucceeded{Generation: cmd.Generation, Append: cmd.Append, Page: page})
}
