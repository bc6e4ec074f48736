package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/geoposts/internal/client/client"
	"github.com/dmitrijs2005/geoposts/internal/client/models"
	"github.com/dmitrijs2005/geoposts/internal/client/services"
	"github.com/dmitrijs2005/geoposts/internal/filex"
	"golang.org/x/text/unicode/norm"
)

var errNoDraft = errors.New("no draft, run 'new' first")

func (a *App) commands() map[string]command {
	return map[string]command{
		"login":     {usage: "login [yandex|google|vk|apple]", run: a.login},
		"logout":    {usage: "logout", run: a.logout},
		"whoami":    {usage: "whoami", run: a.whoami},
		"region":    {usage: "region <lat> <lng>", run: a.region},
		"toggle":    {usage: "toggle <category>", run: a.toggle},
		"markers":   {usage: "markers", run: a.markers},
		"preview":   {usage: "preview <post id>", run: a.preview},
		"url":       {usage: "url <content id> [small|medium|large]", run: a.contentURL},
		"new":       {usage: "new", run: a.newDraft},
		"draft":     {usage: "draft", run: a.draft},
		"text":      {usage: "text <words...>", run: a.text},
		"category":  {usage: "category <fact|question|event|warning>", run: a.category},
		"addimage":  {usage: "addimage <path>", run: a.addImage},
		"rmimage":   {usage: "rmimage <n>", run: a.removeImage},
		"rmcontent": {usage: "rmcontent <content id>", run: a.removeContent},
		"publish":   {usage: "publish", run: a.publish},
		"cancel":    {usage: "cancel", run: a.cancel},
		"stats":     {usage: "stats", run: a.stats},
	}
}

func (a *App) login(ctx context.Context, args []string) error {
	provider := services.ProviderYandex
	switch len(args) {
	case 0:
	case 1:
		provider = services.Provider(strings.ToLower(args[0]))
	default:
		return errUsage
	}
	return a.auth.BeginLogin(ctx, provider)
}

func (a *App) logout(ctx context.Context, args []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) whoami(_ context.Context, _ []string) error {
	claims, err := a.session.Claims()
	switch {
	case errors.Is(err, client.ErrNoSession):
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	case errors.Is(err, client.ErrNoClaims):
		fmt.Fprintln(a.out, "Signed in.")
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s", claims.Subject)
	if !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, ", session expires %s", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *App) region(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %q: must be a number between -90 and 90", args[0])
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil || lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %q: must be a number between -180 and 180", args[1])
	}

	r := models.Region{Latitude: lat, Longitude: lng}
	a.mapView.MoveRegion(ctx, r)
	if a.post != nil {
		_ = a.post.SetRegion(r)
	}
	return nil
}

func (a *App) toggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c, err := models.ParseCategory(args[0])
	if err != nil {
		return err
	}
	a.mapView.ToggleCategory(ctx, c)
	printFilter(a.out, a.mapView.State().Categories)
	return nil
}

func (a *App) markers(ctx context.Context, _ []string) error {
	a.mapView.Wait()
	if err := a.mapView.RefreshMarkers(ctx); err != nil {
		return err
	}
	printMarkers(a.out, a.mapView.State())
	return nil
}

func (a *App) preview(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.mapView.LoadPreview(ctx, id); err != nil {
		return err
	}
	printPreview(a.out, a.mapView.State().Preview)
	return nil
}

func (a *App) contentURL(_ context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	id, err := parseID(args[:1])
	if err != nil {
		return err
	}
	size := models.SizeLarge
	if len(args) == 2 {
		if size, err = models.ParseContentSize(args[1]); err != nil {
			return err
		}
	}

	u, err := a.api.ContentURL(id, size)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, u)
	return nil
}

func (a *App) newDraft(ctx context.Context, _ []string) error {
	if a.post != nil && a.post.State().Status != services.PostPublished {
		fmt.Fprintln(a.out, "Discarding the current draft.")
	}

	f := services.NewPostCreationFlow(a.api, a.mapView.State().Region, models.SizeMedium, a.log)
	a.post = f
	if err := f.Initialize(ctx); err != nil {
		return err
	}
	printDraft(a.out, f.State())
	return nil
}

func (a *App) draft(ctx context.Context, _ []string) error {
	if a.post == nil {
		return errNoDraft
	}
	st := a.post.State()
	if st.Status == services.PostInitializing {
		if err := a.post.Initialize(ctx); err != nil {
			return err
		}
		st = a.post.State()
	}
	printDraft(a.out, st)
	return nil
}

func (a *App) text(_ context.Context, args []string) error {
	if a.post == nil {
		return errNoDraft
	}
	text := strings.Join(args, " ")
	if err := a.post.SetText(text); err != nil {
		return err
	}
	if got := a.post.State().Text; got != norm.NFC.String(text) {
		fmt.Fprintf(a.out, "Text shortened to %d characters.\n", services.MaxTextLength)
	}
	return nil
}

func (a *App) category(_ context.Context, args []string) error {
	if a.post == nil {
		return errNoDraft
	}
	if len(args) != 1 {
		return errUsage
	}
	c, err := models.ParseCategory(args[0])
	if err != nil {
		return err
	}
	return a.post.SetCategory(c)
}

func (a *App) addImage(_ context.Context, args []string) error {
	if a.post == nil {
		return errNoDraft
	}
	if len(args) != 1 {
		return errUsage
	}
	data, err := filex.ReadLimited(args[0], maxImageBytes)
	if err != nil {
		return err
	}
	if _, err := a.post.AddPendingImage(data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Queued %s (%d bytes).\n", args[0], len(data))
	return nil
}

func (a *App) removeImage(_ context.Context, args []string) error {
	if a.post == nil {
		return errNoDraft
	}
	if len(args) != 1 {
		return errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	return a.post.RemovePendingImage(n - 1)
}

func (a *App) removeContent(ctx context.Context, args []string) error {
	if a.post == nil {
		return errNoDraft
	}
	id, err := parseID(args)
	if err != nil {
		return err
	}
	return a.post.DeleteExistingContent(ctx, id)
}

func (a *App) publish(ctx context.Context, _ []string) error {
	if a.post == nil {
		return errNoDraft
	}
	if err := a.post.Publish(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Published.")
	a.post = nil
	return nil
}

func (a *App) cancel(_ context.Context, _ []string) error {
	if a.post == nil {
		return errNoDraft
	}
	a.post = nil
	fmt.Fprintln(a.out, "Draft discarded.")
	return nil
}

func (a *App) stats(_ context.Context, _ []string) error {
	mfs, err := a.registry.Gather()
	if err != nil {
		return err
	}
	printStats(a.out, mfs)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %q: %w", args[0], errUsage)
	}
	return id, nil
}
