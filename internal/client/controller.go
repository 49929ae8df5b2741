package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Page string

const (
	PageHome        Page = "home"
	PageLogin       Page = "login"
	PageRegister    Page = "register"
	PageDashboard   Page = "dashboard"
	PageReviews     Page = "reviews"
	PageWriteReview Page = "write-review"

	// AnyPage registers a command that works on every page. Page-specific
	// handlers take precedence.
	AnyPage Page = "*"
)

var pages = []Page{PageHome, PageLogin, PageRegister, PageDashboard, PageReviews, PageWriteReview}

func parsePage(s string) (Page, bool) {
	for _, p := range pages {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// requiresLogin lists pages that redirect to login without a session.
var requiresLogin = map[Page]bool{
	PageDashboard:   true,
	PageWriteReview: true,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrLoginRequired  = errors.New("login required")
	ErrNoRating       = errors.New("no rating selected")
)

// userMessages are the notices shown for client-side failures.
var userMessages = map[error]string{
	ErrLoginRequired: "Please log in first.",
	ErrNoRating:      "Please select a rating.",
}

const noticeTTL = 5 * time.Second

type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
)

type Notice struct {
	Kind NoticeKind
	Text string
	At   time.Time
}

type Backend interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	Profile(ctx context.Context, token string) (User, error)
	Reviews(ctx context.Context) ([]Review, error)
	MyReviews(ctx context.Context, token string) ([]Review, error)
	CreateReview(ctx context.Context, token string, req ReviewRequest) error
	Stats(ctx context.Context) (Stats, error)
}

// Prompter collects form input for the active view.
type Prompter interface {
	Ask(label string) (string, error)
	Secret(label string) (string, error)
}

type CommandFunc func(ctx context.Context, args []string) error

// Controller is the client's page-state machine. Exactly one page is active;
// views register their commands with Handle and render from the controller's
// state.
type Controller struct {
	api     Backend
	session *Session
	store   SessionStore
	prompt  Prompter
	out     io.Writer
	log     zerolog.Logger
	now     func() time.Time

	page     Page
	handlers map[Page]map[string]CommandFunc
	views    map[Page]func(w io.Writer)
	notices  []Notice

	rating    StarRating
	reviews   []Review
	myReviews []Review
	stats     *Stats
}

func NewController(api Backend, session *Session, store SessionStore, prompt Prompter, out io.Writer, log zerolog.Logger) *Controller {
	c := &Controller{
		api:      api,
		session:  session,
		store:    store,
		prompt:   prompt,
		out:      out,
		log:      log,
		now:      time.Now,
		page:     PageHome,
		handlers: make(map[Page]map[string]CommandFunc),
		views:    make(map[Page]func(w io.Writer)),
	}
	registerViews(c)
	return c
}

func (c *Controller) Page() Page {
	return c.page
}

// Handle registers fn for command while page is active. A later
// registration for the same pair replaces the earlier one.
func (c *Controller) Handle(page Page, command string, fn CommandFunc) {
	if c.handlers[page] == nil {
		c.handlers[page] = make(map[string]CommandFunc)
	}
	c.handlers[page][command] = fn
}

func (c *Controller) lookup(command string) (CommandFunc, bool) {
	if fn, ok := c.handlers[c.page][command]; ok {
		return fn, true
	}
	fn, ok := c.handlers[AnyPage][command]
	return fn, ok
}

// Dispatch runs one input line against the active page. Failures become
// notices; the returned error is for callers that want to inspect it.
func (c *Controller) Dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	fn, ok := c.lookup(fields[0])
	if !ok {
		c.notify(NoticeError, fmt.Sprintf("Unknown command: %s (try help)", fields[0]))
		return ErrUnknownCommand
	}

	if err := fn(ctx, fields[1:]); err != nil {
		c.fail(err)
		return err
	}
	return nil
}

// Navigate activates page and loads its data. Pages that need a session
// send the user to login instead.
func (c *Controller) Navigate(ctx context.Context, page Page) error {
	if requiresLogin[page] && !c.session.LoggedIn() {
		c.page = PageLogin
		return ErrLoginRequired
	}
	c.page = page
	return c.load(ctx)
}

// load refreshes the active page's data. On failure the previously loaded
// data is kept.
func (c *Controller) load(ctx context.Context) error {
	switch c.page {
	case PageHome:
		reviews, err := c.api.Reviews(ctx)
		if err != nil {
			return err
		}
		c.reviews = reviews
	case PageReviews:
		reviews, err := c.api.Reviews(ctx)
		if err != nil {
			return err
		}
		c.reviews = reviews
		stats, err := c.api.Stats(ctx)
		if err != nil {
			c.log.Debug().Err(err).Msg("load stats failed")
			return nil
		}
		c.stats = &stats
	case PageDashboard:
		reviews, err := c.api.MyReviews(ctx, c.session.Token)
		if err != nil {
			return err
		}
		c.myReviews = reviews
	}
	return nil
}

// Rehydrate restores a saved token by fetching its profile. Any failure
// clears the session and leaves the user logged out on the home page.
func (c *Controller) Rehydrate(ctx context.Context) {
	token, err := c.store.Load()
	if err != nil {
		c.log.Warn().Err(err).Msg("load saved session failed")
	}

	if token != "" {
		c.session.Token = token
		user, err := c.api.Profile(ctx, token)
		if err != nil {
			c.log.Debug().Err(err).Msg("saved session rejected")
			c.signOut()
			c.fail(err)
		} else {
			c.session.User = &user
		}
	}

	if err := c.Navigate(ctx, PageHome); err != nil {
		c.fail(err)
	}
}

func (c *Controller) signIn(resp AuthResponse) {
	user := resp.User
	c.session.Token = resp.Token
	c.session.User = &user
	if err := c.store.Save(resp.Token); err != nil {
		c.log.Warn().Err(err).Msg("save session failed")
	}
}

func (c *Controller) signOut() {
	c.session.Clear()
	c.myReviews = nil
	if err := c.store.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("clear session failed")
	}
}

func (c *Controller) notify(kind NoticeKind, text string) {
	c.notices = append(c.notices, Notice{Kind: kind, Text: text, At: c.now()})
}

func (c *Controller) fail(err error) {
	for target, msg := range userMessages {
		if errors.Is(err, target) {
			c.notify(NoticeError, msg)
			return
		}
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		c.notify(NoticeError, apiErr.Message)
	case errors.Is(err, ErrUnavailable):
		c.notify(NoticeError, "Server unavailable, please try again later.")
	default:
		c.notify(NoticeError, err.Error())
	}
}

// Notices returns the notices that are still visible.
func (c *Controller) Notices() []Notice {
	now := c.now()
	visible := make([]Notice, 0, len(c.notices))
	for _, n := range c.notices {
		if now.Sub(n.At) < noticeTTL {
			visible = append(visible, n)
		}
	}
	return visible
}

// Render writes the navigation bar, pending notices and the active view.
// Notices are dismissed once shown.
func (c *Controller) Render() {
	renderNav(c.out, c.page, c.session)
	for _, n := range c.Notices() {
		mark := "✓"
		if n.Kind == NoticeError {
			mark = "!"
		}
		fmt.Fprintf(c.out, "%s %s\n", mark, n.Text)
	}
	c.notices = nil

	if view, ok := c.views[c.page]; ok {
		view(c.out)
	}
}
