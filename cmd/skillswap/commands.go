package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/oggyb/skillswap/internal/app"
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/service/exchange"
	"github.com/oggyb/skillswap/internal/service/identity"
)

// env is what every command runs against.
type env struct {
	identity *identity.Service
	exchange *exchange.Service
	out      io.Writer
}

func newEnv(appCtx *app.AppContext, out io.Writer) *env {
	return &env{
		identity: identity.NewIdentityService(appCtx),
		exchange: exchange.NewExchangeService(appCtx),
		out:      out,
	}
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{"signup", "-name N -email E -password P [-location L] [-offered a,b] [-wanted a,b] [-availability a,b] [-photo file] [-private]", cmdSignup},
	{"login", "-email E -password P", cmdLogin},
	{"logout", "", cmdLogout},
	{"whoami", "", cmdWhoami},
	{"profile", "[-name N] [-email E] [-location L] [-offered a,b] [-wanted a,b] [-availability a,b] [-photo file] [-public true|false]", cmdProfile},
	{"passwd", "-current P -new P", cmdPasswd},
	{"search", "[-q text] [-page token] [-limit n]", cmdSearch},
	{"request", "-to ID -offered S -wanted S [-message M] [-as ID]", cmdRequest},
	{"update", "-id ID [-status S] [-offered S] [-wanted S] [-message M]", cmdUpdate},
	{"accept", "-id ID [-as ID]", cmdAccept},
	{"reject", "-id ID [-as ID]", cmdReject},
	{"complete", "-id ID [-as ID]", cmdComplete},
	{"cancel", "-id ID [-as ID]", cmdCancel},
	{"delete", "-id ID", cmdDelete},
	{"requests", "[-box all|sent|received] [-as ID]", cmdRequests},
	{"rate", "-swap ID -score 1..5 [-feedback F] [-as ID]", cmdRate},
	{"ratings", "[-given] [-as ID]", cmdRatings},
	{"ban", "-user ID", cmdBan},
	{"broadcast", "-title T -content C [-type info|warning|update]", cmdBroadcast},
	{"messages", "", cmdMessages},
	{"users", "", cmdUsers},
	{"report", "-type users|swaps|ratings", cmdReport},
	{"stats", "[-user ID]", cmdStats},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "usage: skillswap <command> [flags]")
	fmt.Fprintln(out)
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.usage)
	}
}

//
// Identity
//

func cmdSignup(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("signup", e.out)
	var d model.SignupDraft
	var offered, wanted, availability, photo string
	var private bool
	fs.StringVar(&d.Name, "name", "", "display name")
	fs.StringVar(&d.Email, "email", "", "email address")
	fs.StringVar(&d.Password, "password", "", "password")
	fs.StringVar(&d.Location, "location", "", "location")
	fs.StringVar(&offered, "offered", "", "comma separated skills offered")
	fs.StringVar(&wanted, "wanted", "", "comma separated skills wanted")
	fs.StringVar(&availability, "availability", "", "comma separated availability")
	fs.StringVar(&photo, "photo", "", "path to a profile image")
	fs.BoolVar(&private, "private", false, "hide the profile from search")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	d.SkillsOffered = splitList(offered)
	d.SkillsWanted = splitList(wanted)
	d.Availability = splitList(availability)
	public := !private
	d.IsProfilePublic = &public

	if photo != "" {
		url, err := photoDataURL(photo)
		if err != nil {
			return err
		}
		d.ProfilePhoto = url
	}

	user, err := e.identity.Signup(ctx, d)
	if err != nil {
		return err
	}
	return printJSON(e.out, user)
}

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("login", e.out)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	user, err := e.identity.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	return printJSON(e.out, user)
}

func cmdLogout(ctx context.Context, e *env, _ []string) error {
	return e.identity.Logout(ctx)
}

func cmdWhoami(_ context.Context, e *env, _ []string) error {
	user, ok := e.identity.CurrentUser()
	if !ok {
		return svcErr.Unauthorized("not logged in")
	}
	return printJSON(e.out, user)
}

func cmdProfile(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("profile", e.out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	location := fs.String("location", "", "location")
	offered := fs.String("offered", "", "comma separated skills offered")
	wanted := fs.String("wanted", "", "comma separated skills wanted")
	availability := fs.String("availability", "", "comma separated availability")
	photo := fs.String("photo", "", "path to a profile image, empty to clear")
	public := fs.Bool("public", true, "show the profile in search")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}

	var p model.ProfilePatch
	if set["name"] {
		p.Name = name
	}
	if set["email"] {
		p.Email = email
	}
	if set["location"] {
		p.Location = location
	}
	if set["offered"] {
		p.SkillsOffered = ptr(splitList(*offered))
	}
	if set["wanted"] {
		p.SkillsWanted = ptr(splitList(*wanted))
	}
	if set["availability"] {
		p.Availability = ptr(splitList(*availability))
	}
	if set["public"] {
		p.IsProfilePublic = public
	}
	if set["photo"] {
		url := ""
		if *photo != "" {
			if url, err = photoDataURL(*photo); err != nil {
				return err
			}
		}
		p.ProfilePhoto = &url
	}

	user, err := e.identity.UpdateProfile(ctx, p)
	if err != nil {
		return err
	}
	return printJSON(e.out, user)
}

func cmdPasswd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("passwd", e.out)
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	return e.identity.ChangePassword(ctx, *current, *next)
}

//
// Directory
//

func cmdSearch(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("search", e.out)
	q := fs.String("q", "", "name or skill to look for")
	page := fs.String("page", "", "token of the page to fetch")
	limit := fs.Int("limit", 0, "page size; 0 lists every match")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	if *limit == 0 && *page == "" {
		return printJSON(e.out, e.exchange.SearchUsers(*q))
	}

	users, next, err := e.exchange.SearchUsersPage(*q, *page, *limit)
	if err != nil {
		return err
	}
	return printJSON(e.out, struct {
		Users []model.User `json:"users"`
		Next  string       `json:"next,omitempty"`
	}{users, next})
}

//
// Swap requests
//

func cmdRequest(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("request", e.out)
	to := fs.String("to", "", "id of the user to ask")
	offered := fs.String("offered", "", "skill you offer")
	wanted := fs.String("wanted", "", "skill you want")
	message := fs.String("message", "", "optional note")
	as := fs.String("as", "", "act as this user id instead of the session user")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	from, err := e.actor(*as)
	if err != nil {
		return err
	}
	req, err := e.exchange.CreateSwapRequest(ctx, model.SwapDraft{
		FromUserID:   from,
		ToUserID:     *to,
		OfferedSkill: *offered,
		WantedSkill:  *wanted,
		Message:      *message,
	})
	if err != nil {
		return err
	}
	return printJSON(e.out, req)
}

func cmdUpdate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("update", e.out)
	id := fs.String("id", "", "swap request id")
	status := fs.String("status", "", "new status")
	offered := fs.String("offered", "", "skill offered")
	wanted := fs.String("wanted", "", "skill wanted")
	message := fs.String("message", "", "note")
	set, err := parse(fs, args)
	if err != nil {
		return err
	}

	var p model.SwapPatch
	if set["status"] {
		p.Status = ptr(model.SwapStatus(*status))
	}
	if set["offered"] {
		p.OfferedSkill = offered
	}
	if set["wanted"] {
		p.WantedSkill = wanted
	}
	if set["message"] {
		p.Message = message
	}

	req, err := e.exchange.UpdateSwapRequest(ctx, *id, p)
	if err != nil {
		return err
	}
	return printJSON(e.out, req)
}

func cmdAccept(ctx context.Context, e *env, args []string) error {
	return e.transition(ctx, "accept", args, e.exchange.Accept)
}

func cmdReject(ctx context.Context, e *env, args []string) error {
	return e.transition(ctx, "reject", args, e.exchange.Reject)
}

func cmdComplete(ctx context.Context, e *env, args []string) error {
	return e.transition(ctx, "complete", args, e.exchange.Complete)
}

func cmdCancel(ctx context.Context, e *env, args []string) error {
	return e.transition(ctx, "cancel", args, func(ctx context.Context, id, actor string) (model.SwapRequest, error) {
		return model.SwapRequest{}, e.exchange.Cancel(ctx, id, actor)
	})
}

func cmdDelete(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("delete", e.out)
	id := fs.String("id", "", "swap request id")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	return e.exchange.DeleteSwapRequest(ctx, *id)
}

func cmdRequests(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("requests", e.out)
	box := fs.String("box", string(model.BoxAll), "all, sent or received")
	as := fs.String("as", "", "list for this user id instead of the session user")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	switch model.Box(*box) {
	case model.BoxAll, model.BoxSent, model.BoxReceived:
	default:
		return svcErr.InvalidArgument(fmt.Sprintf("unknown box %q", *box))
	}

	userID, err := e.actor(*as)
	if err != nil {
		return err
	}
	return printJSON(e.out, e.exchange.ListSwapRequests(userID, model.Box(*box)))
}

//
// Ratings
//

func cmdRate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("rate", e.out)
	swapID := fs.String("swap", "", "completed swap request id")
	score := fs.Int("score", 0, "score from 1 to 5")
	feedback := fs.String("feedback", "", "optional feedback")
	as := fs.String("as", "", "rate as this user id instead of the session user")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	from, err := e.actor(*as)
	if err != nil {
		return err
	}
	swap, err := e.exchange.GetSwapRequest(*swapID)
	if err != nil {
		return err
	}

	rating, err := e.exchange.AddRating(ctx, model.RatingDraft{
		SwapRequestID: swap.ID,
		FromUserID:    from,
		ToUserID:      swap.Counterpart(from),
		Rating:        *score,
		Feedback:      *feedback,
	})
	if err != nil {
		return err
	}
	return printJSON(e.out, rating)
}

func cmdRatings(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("ratings", e.out)
	given := fs.Bool("given", false, "list ratings written instead of received")
	as := fs.String("as", "", "list for this user id instead of the session user")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	userID, err := e.actor(*as)
	if err != nil {
		return err
	}
	if *given {
		return printJSON(e.out, e.exchange.RatingsGiven(userID))
	}
	return printJSON(e.out, e.exchange.RatingsReceived(userID))
}

//
// Administration
//

func cmdBan(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("ban", e.out)
	userID := fs.String("user", "", "id of the user to ban")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if err := e.requireAdmin(); err != nil {
		return err
	}
	return e.exchange.BanUser(ctx, *userID)
}

func cmdBroadcast(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("broadcast", e.out)
	title := fs.String("title", "", "message title")
	content := fs.String("content", "", "message body")
	kind := fs.String("type", string(model.MessageInfo), "info, warning or update")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if err := e.requireAdmin(); err != nil {
		return err
	}

	msg, err := e.exchange.AddAdminMessage(ctx, model.MessageDraft{
		Title:   *title,
		Content: *content,
		Type:    model.MessageType(*kind),
	})
	if err != nil {
		return err
	}
	return printJSON(e.out, msg)
}

func cmdMessages(_ context.Context, e *env, _ []string) error {
	return printJSON(e.out, e.exchange.ListAdminMessages())
}

func cmdUsers(_ context.Context, e *env, _ []string) error {
	if err := e.requireAdmin(); err != nil {
		return err
	}
	return printJSON(e.out, e.exchange.ListUsers())
}

func cmdReport(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("report", e.out)
	kind := fs.String("type", "", "users, swaps or ratings")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if err := e.requireAdmin(); err != nil {
		return err
	}

	report, err := e.exchange.Report(exchange.ReportKind(*kind))
	if err != nil {
		return err
	}
	return printJSON(e.out, report)
}

func cmdStats(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("stats", e.out)
	userID := fs.String("user", "", "summarize one user instead of the platform")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	if *userID != "" {
		stats, err := e.exchange.UserStats(*userID)
		if err != nil {
			return err
		}
		return printJSON(e.out, stats)
	}
	if err := e.requireAdmin(); err != nil {
		return err
	}
	return printJSON(e.out, e.exchange.PlatformStats())
}

//
// helpers
//

// actor resolves who a command acts for: the -as flag, else the session user.
func (e *env) actor(as string) (string, error) {
	if as != "" {
		return as, nil
	}
	user, ok := e.identity.CurrentUser()
	if !ok {
		return "", svcErr.Unauthorized("not logged in; log in or pass -as")
	}
	return user.ID, nil
}

func (e *env) requireAdmin() error {
	user, ok := e.identity.CurrentUser()
	if !ok || !user.IsAdmin {
		return svcErr.Unauthorized("administrator session required")
	}
	return nil
}

func (e *env) transition(ctx context.Context, name string, args []string, do func(ctx context.Context, id, actor string) (model.SwapRequest, error)) error {
	fs := newFlagSet(name, e.out)
	id := fs.String("id", "", "swap request id")
	as := fs.String("as", "", "act as this user id instead of the session user")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	actor, err := e.actor(*as)
	if err != nil {
		return err
	}
	req, err := do(ctx, *id, actor)
	if err != nil {
		return err
	}
	if req.ID == "" {
		return nil
	}
	return printJSON(e.out, req)
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// parse parses args and reports which flags were given explicitly.
func parse(fs *flag.FlagSet, args []string) (map[string]bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, fmt.Errorf("%w: %s", errUsage, fs.Name())
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set, nil
}

// splitList turns "React, Go,,Figma" into ["React" "Go" "Figma"].
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// photoDataURL reads an image file into an inline data URL.
func photoDataURL(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	if len(raw) > model.MaxPhotoBytes {
		return "", svcErr.InvalidArgument(fmt.Sprintf("photo exceeds %d bytes", model.MaxPhotoBytes))
	}
	// non-images get their real type and are refused by the store's check
	mtype := mimetype.Detect(raw)
	return fmt.Sprintf("data:%s;base64,%s", mtype.String(), base64.StdEncoding.EncodeToString(raw)), nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ptr[T any](v T) *T { return &v }
