package client

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const homeReviewCount = 3

func registerViews(c *Controller) {
	c.Handle(AnyPage, "help", c.help)
	c.Handle(AnyPage, "go", c.goTo)
	c.Handle(AnyPage, "logout", c.logout)

	c.Handle(PageHome, "refresh", c.refresh)
	c.Handle(PageReviews, "refresh", c.refresh)
	c.Handle(PageDashboard, "refresh", c.refresh)

	c.Handle(PageLogin, "submit", c.submitLogin)
	c.Handle(PageRegister, "submit", c.submitRegister)

	c.Handle(PageWriteReview, "stars", c.setStars)
	c.Handle(PageWriteReview, "submit", c.submitReview)

	c.views[PageHome] = c.renderHome
	c.views[PageLogin] = renderForm("Log in", "submit  enter email and password")
	c.views[PageRegister] = renderForm("Create an account", "submit  enter your details")
	c.views[PageDashboard] = c.renderDashboard
	c.views[PageReviews] = c.renderReviews
	c.views[PageWriteReview] = c.renderWriteReview
}

func (c *Controller) help(ctx context.Context, args []string) error {
	commands := make([]string, 0)
	for name := range c.handlers[c.page] {
		commands = append(commands, name)
	}
	for name := range c.handlers[AnyPage] {
		if _, ok := c.handlers[c.page][name]; !ok {
			commands = append(commands, name)
		}
	}
	sort.Strings(commands)

	fmt.Fprintf(c.out, "Commands: %s, exit\n", strings.Join(commands, ", "))
	fmt.Fprintf(c.out, "Pages: %s\n", joinPages())
	return nil
}

func joinPages() string {
	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func (c *Controller) goTo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: go <%s>", strings.ReplaceAll(joinPages(), ", ", "|"))
	}
	page, ok := parsePage(args[0])
	if !ok {
		return fmt.Errorf("unknown page %q", args[0])
	}
	return c.Navigate(ctx, page)
}

func (c *Controller) refresh(ctx context.Context, args []string) error {
	return c.load(ctx)
}

func (c *Controller) logout(ctx context.Context, args []string) error {
	if c.session.Token == "" {
		return fmt.Errorf("you are not logged in")
	}
	c.signOut()
	c.notify(NoticeSuccess, "Logged out successfully")
	return c.Navigate(ctx, PageHome)
}

func (c *Controller) submitLogin(ctx context.Context, args []string) error {
	email, err := c.prompt.Ask("Email")
	if err != nil {
		return err
	}
	password, err := c.prompt.Secret("Password")
	if err != nil {
		return err
	}

	resp, err := c.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.signIn(resp)
	c.notify(NoticeSuccess, "Login successful!")
	return c.Navigate(ctx, PageDashboard)
}

func (c *Controller) submitRegister(ctx context.Context, args []string) error {
	var req RegisterRequest
	fields := []struct {
		label  string
		secret bool
		dst    *string
	}{
		{"First name", false, &req.FirstName},
		{"Last name", false, &req.LastName},
		{"Email", false, &req.Email},
		{"Password", true, &req.Password},
		{"Phone (optional)", false, &req.Phone},
	}
	for _, f := range fields {
		ask := c.prompt.Ask
		if f.secret {
			ask = c.prompt.Secret
		}
		value, err := ask(f.label)
		if err != nil {
			return err
		}
		*f.dst = strings.TrimSpace(value)
	}

	resp, err := c.api.Register(ctx, req)
	if err != nil {
		return err
	}

	c.signIn(resp)
	c.notify(NoticeSuccess, "Account created successfully!")
	return c.Navigate(ctx, PageDashboard)
}

func (c *Controller) setStars(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: stars <1-%d>", maxStars)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("rating must be a number")
	}
	return c.rating.Set(n)
}

// submitReview sends the form with the star widget's value as its rating.
func (c *Controller) submitReview(ctx context.Context, args []string) error {
	if c.rating.Value() == 0 {
		return ErrNoRating
	}
	title, err := c.prompt.Ask("Title")
	if err != nil {
		return err
	}
	content, err := c.prompt.Ask("Review")
	if err != nil {
		return err
	}

	err = c.api.CreateReview(ctx, c.session.Token, ReviewRequest{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
		Rating:  c.rating.Value(),
	})
	if err != nil {
		return err
	}

	c.rating.Reset()
	c.notify(NoticeSuccess, "Review submitted successfully!")
	return c.Navigate(ctx, PageReviews)
}

func renderNav(w io.Writer, active Page, session *Session) {
	var b strings.Builder
	b.WriteString("== Company Reviews ==")
	for _, p := range pages {
		if requiresLogin[p] && !session.LoggedIn() {
			continue
		}
		if session.LoggedIn() && (p == PageLogin || p == PageRegister) {
			continue
		}
		if p == active {
			fmt.Fprintf(&b, " [%s]", p)
		} else {
			fmt.Fprintf(&b, " %s", p)
		}
	}
	if session.LoggedIn() {
		fmt.Fprintf(&b, " | logout (%s)", session.User.FirstName)
	}
	fmt.Fprintln(w, b.String())
}

func renderForm(title, hint string) func(w io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, "-- %s --\n  %s\n", title, hint)
	}
}

func (c *Controller) renderHome(w io.Writer) {
	fmt.Fprintln(w, "-- Home --")
	if c.session.LoggedIn() {
		fmt.Fprintf(w, "Welcome back, %s.\n", c.session.User.FirstName)
	} else {
		fmt.Fprintln(w, "Read what people say, or log in to share your own experience.")
	}

	latest := c.reviews
	if len(latest) > homeReviewCount {
		latest = latest[:homeReviewCount]
	}
	if len(latest) == 0 {
		return
	}
	fmt.Fprintln(w, "Latest reviews:")
	for _, r := range latest {
		writeReview(w, r, true)
	}
}

func (c *Controller) renderDashboard(w io.Writer) {
	fmt.Fprintln(w, "-- Dashboard --")
	if c.session.User != nil {
		u := c.session.User
		fmt.Fprintf(w, "%s %s <%s>\n", u.FirstName, u.LastName, u.Email)
	}
	if len(c.myReviews) == 0 {
		fmt.Fprintln(w, "You haven't submitted any reviews yet.")
		return
	}
	fmt.Fprintln(w, "Your reviews:")
	for _, r := range c.myReviews {
		writeReview(w, r, false)
	}
}

func (c *Controller) renderReviews(w io.Writer) {
	fmt.Fprintln(w, "-- Reviews --")
	if c.stats != nil && c.stats.Count > 0 {
		fmt.Fprintf(w, "%d reviews, average %.1f/5\n", c.stats.Count, c.stats.Average)
	}
	if len(c.reviews) == 0 {
		fmt.Fprintln(w, "No reviews yet.")
		return
	}
	for _, r := range c.reviews {
		writeReview(w, r, true)
	}
}

func (c *Controller) renderWriteReview(w io.Writer) {
	fmt.Fprintln(w, "-- Write a review --")
	fmt.Fprintf(w, "Rating: %s\n", c.rating)
	fmt.Fprintf(w, "  stars <1-%d>  pick a rating\n  submit       enter title and review\n", maxStars)
}

func writeReview(w io.Writer, r Review, withAuthor bool) {
	header := fmt.Sprintf("⭐ %d/5", r.Rating)
	if withAuthor {
		header = fmt.Sprintf("%s %s  %s", r.FirstName, r.LastName, header)
	}
	fmt.Fprintf(w, "  %s\n  %s\n  %s\n  %s\n\n", header, r.Title, r.Content, r.CreatedAt.Local().Format("2006-01-02"))
}
