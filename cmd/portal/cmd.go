package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"incubator/portal/client/api"
	"incubator/portal/client/chat"
	"incubator/portal/client/dashboard"
	"incubator/portal/client/landing"
	"incubator/portal/client/progress"
	"incubator/portal/client/session"
	"incubator/portal/logger"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	api      *api.Client
	sessions *session.Manager
	chat     *chat.Client
	log      logger.Logger
	in       io.Reader
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL                     - sign in; the password is prompted next")
	fmt.Fprintln(cli.out, "  logout                                 - forget the stored session")
	fmt.Fprintln(cli.out, "  whoami                                 - show the signed-in user")
	fmt.Fprintln(cli.out, "  rooms [-q TERM] [-type GROUP|INDIVIDUAL] - list chat rooms")
	fmt.Fprintln(cli.out, "  chat -room ID                          - open a room; type to send, /quit to leave")
	fmt.Fprintln(cli.out, "  progress -template ID [-rule accepted|closed] - show a template's progress by phase")
	fmt.Fprintln(cli.out, "  dashboard                              - show the dashboard for your role")
	fmt.Fprintln(cli.out, "  landing [-add TYPE] [-theme COLOR]     - preview the landing page, optionally editing and saving it")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginEmail := loginCmd.String("email", "", "The user's email. The password will be prompted next.")

	roomsCmd := flag.NewFlagSet("rooms", flag.ContinueOnError)
	roomsTerm := roomsCmd.String("q", "", "Filter by room or participant name")
	roomsType := roomsCmd.String("type", "all", "GROUP, INDIVIDUAL or all")

	chatCmd := flag.NewFlagSet("chat", flag.ContinueOnError)
	chatRoom := chatCmd.Int("room", 0, "The room id")

	progressCmd := flag.NewFlagSet("progress", flag.ContinueOnError)
	progressTemplate := progressCmd.Int("template", 0, "The template id")
	progressRule := progressCmd.String("rule", "accepted", "accepted counts APPROVED submissions, closed counts COMPLETED ones")

	landingCmd := flag.NewFlagSet("landing", flag.ContinueOnError)
	landingAdd := landingCmd.String("add", "", "Append a section of this type and save")
	landingTheme := landingCmd.String("theme", "", "Set the primary theme color and save")

	ctx := context.Background()

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail, string(pwd))
	case "logout":
		return cli.sessions.Logout()
	case "whoami":
		return cli.whoami()
	case "rooms":
		if err := roomsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.rooms(ctx, *roomsTerm, *roomsType)
	case "chat":
		if err := chatCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *chatRoom <= 0 {
			chatCmd.Usage()
			return errHelp
		}
		return cli.chatRoom(ctx, *chatRoom)
	case "progress":
		if err := progressCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *progressTemplate <= 0 {
			progressCmd.Usage()
			return errHelp
		}
		rule := progress.SubmissionAccepted
		switch *progressRule {
		case "accepted":
		case "closed":
			rule = progress.TaskFullyClosed
		default:
			progressCmd.Usage()
			return errHelp
		}
		return cli.progress(ctx, *progressTemplate, rule)
	case "dashboard":
		return cli.dashboard(ctx)
	case "landing":
		if err := landingCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.landing(ctx, *landingAdd, *landingTheme)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) requireSession() (session.Session, error) {
	sess, err := cli.sessions.Current()
	if err != nil {
		if cli.sessions.SessionExpired() {
			return sess, errors.New("session expired, please log in again")
		}
		return sess, errors.New("not logged in")
	}
	return sess, nil
}

func (cli *commandLine) login(ctx context.Context, email, password string) error {
	sess, err := cli.sessions.LoginUser(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s (%s)\n", sess.User.Email, sess.User.Role)
	return nil
}

func (cli *commandLine) whoami() error {
	sess, err := cli.requireSession()
	if err != nil {
		return err
	}
	tenant := "-"
	if sess.User.TenantID != nil {
		tenant = strconv.Itoa(*sess.User.TenantID)
	}
	fmt.Fprintf(cli.out, "%s\nid: %d\nrole: %s\ntenant: %s\n", sess.User.Email, sess.User.UserID, sess.User.Role, tenant)
	return nil
}

func (cli *commandLine) rooms(ctx context.Context, q, typeFilter string) error {
	if _, err := cli.requireSession(); err != nil {
		return err
	}
	list := chat.NewRoomList(cli.api, cli.log)
	if err := list.Load(ctx); err != nil {
		return err
	}
	rooms := list.Filter(q, typeFilter)
	if len(rooms) == 0 {
		fmt.Fprintln(cli.out, "No rooms.")
		return nil
	}
	for _, room := range rooms {
		last := ""
		if room.LastMessage != nil {
			last = *room.LastMessage
		}
		fmt.Fprintf(cli.out, "%4d  %-10s %-30s %s\n", room.ID, room.ChatType, room.ChatName, last)
	}
	return nil
}

func (cli *commandLine) chatRoom(ctx context.Context, roomID int) error {
	sess, err := cli.requireSession()
	if err != nil {
		return err
	}
	rooms, err := cli.api.ListRooms(ctx)
	if err != nil {
		return err
	}
	var room *api.ChatRoom
	for i := range rooms {
		if rooms[i].ID == roomID {
			room = &rooms[i]
		}
	}
	if room == nil {
		return fmt.Errorf("room %d not found", roomID)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	view, err := cli.chat.Open(ctx, *room, chat.ViewOptions{
		OnMessage: func(msg chat.Message) {
			who := msg.Sender.Username
			if chat.IsOwnMessage(sess.User, msg) {
				who = "you"
			}
			at := ""
			if msg.Timestamp != nil {
				at = msg.Timestamp.Local().Format(time.Kitchen) + " "
			}
			fmt.Fprintf(cli.out, "%s%s: %s\n", at, who, msg.Content)
		},
		OnNotify: func(n chat.Notification) {
			if n.RoomID != roomID {
				fmt.Fprintf(cli.out, "* new message in %s\n", n.ChatName)
			}
		},
	})
	if err != nil {
		return err
	}
	defer cli.chat.Close()
	fmt.Fprintf(cli.out, "Joined %s. Type /quit to leave.\n", room.ChatName)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cli.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "/quit" {
				return nil
			}
			if err := view.Send(line); err != nil {
				if errors.Is(err, chat.ErrEmptyMessage) {
					continue
				}
				fmt.Fprintf(cli.out, "! %v\n", err)
			}
		}
	}
}

func (cli *commandLine) progress(ctx context.Context, templateID int, rule progress.CompletionRule) error {
	if _, err := cli.requireSession(); err != nil {
		return err
	}
	tracker := progress.NewTracker(cli.api, cli.log)
	if err := tracker.Select(ctx, templateID); err != nil {
		return err
	}

	p := tracker.Progress(rule)
	fmt.Fprintf(cli.out, "Overall: %d/%d tasks (%d%%)\n", p.Done, p.Total, p.Percent)
	for _, g := range tracker.Groups(rule) {
		name := g.Phase.Name
		if name == "" {
			name = "Unassigned"
		}
		fmt.Fprintf(cli.out, "\n%s  %d/%d (%d%%)\n", name, g.Progress.Done, g.Progress.Total, g.Progress.Percent)
		for _, task := range g.Tasks {
			status := ""
			for _, s := range g.Submissions {
				if s.TaskID == task.ID {
					status = string(s.Status)
				}
			}
			style := progress.StyleFor(status)
			fmt.Fprintf(cli.out, "  %s %-32s %s\n", style.Icon, task.TaskName, style.Label)
		}
	}
	return nil
}

func (cli *commandLine) dashboard(ctx context.Context) error {
	sess, err := cli.requireSession()
	if err != nil {
		return err
	}

	var errs map[string]error
	switch sess.User.Role {
	case session.RoleAlumni:
		d := dashboard.LoadAlumni(ctx, cli.api, cli.log)
		if d.Profile != nil {
			fmt.Fprintf(cli.out, "%s, %s\n", d.Profile.FullName, orDash(d.Profile.StartupName))
		}
		cli.printNews(d.News)
		fmt.Fprintf(cli.out, "Rooms: %d\n", len(d.Rooms))
		errs = d.Errors
	case session.RoleInvestor:
		d := dashboard.LoadInvestor(ctx, cli.api, cli.log)
		if d.Profile != nil {
			fmt.Fprintf(cli.out, "%s, %s\n", d.Profile.FullName, orDash(d.Profile.FirmName))
		}
		cli.printNews(d.News)
		fmt.Fprintf(cli.out, "Rooms: %d\n", len(d.Rooms))
		errs = d.Errors
	case session.RoleTenantAdmin:
		d := dashboard.LoadTenantAdmin(ctx, cli.api, cli.log)
		fmt.Fprintf(cli.out, "Templates: %d  Assignments: %d\n", len(d.Templates), len(d.Assignments))
		if d.Landing != nil {
			fmt.Fprintf(cli.out, "Landing page sections: %d\n", len(d.Landing.Sections))
		}
		cli.printNews(d.News)
		errs = d.Errors
	case session.RoleSuperAdmin:
		d := dashboard.LoadSuperAdmin(ctx, cli.api, cli.log)
		fmt.Fprintln(cli.out, "Requests:")
		for _, r := range d.Requests {
			fmt.Fprintf(cli.out, "  %4d  %-24s %-30s %s\n", r.ID, r.TenantName, r.RequesterEmail, r.Status)
		}
		cli.printNews(d.News)
		errs = d.Errors
	default:
		d := dashboard.LoadMentor(ctx, cli.api, cli.log)
		for _, row := range d.Rows {
			fmt.Fprintf(cli.out, "%-32s %d/%d (%d%%)\n", row.Template.Name, row.Progress.Done, row.Progress.Total, row.Progress.Percent)
		}
		fmt.Fprintf(cli.out, "Rooms: %d\n", len(d.Rooms))
		errs = d.Errors
	}

	for slice, err := range errs {
		fmt.Fprintf(cli.out, "! could not load %s: %v\n", slice, err)
	}
	return nil
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func (cli *commandLine) printNews(news []api.News) {
	fmt.Fprintf(cli.out, "News (%d):\n", len(news))
	for _, n := range news {
		fmt.Fprintf(cli.out, "  - %s\n", n.Title)
	}
}

func (cli *commandLine) landing(ctx context.Context, add, theme string) error {
	if _, err := cli.requireSession(); err != nil {
		return err
	}
	b := landing.NewBuilder(cli.api, cli.log)
	if err := b.Load(ctx); err != nil {
		return err
	}

	if add != "" || theme != "" {
		err := b.Edit(func(d *landing.Draft) error {
			if add != "" {
				t, err := landing.ParseSectionType(add)
				if err != nil {
					return err
				}
				d.Add(t)
			}
			d.SetTheme(theme, "", "")
			return nil
		})
		if err != nil {
			return err
		}
		if _, err := b.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Saved.")
	}

	fmt.Fprint(cli.out, landing.Render(b.Page()))
	return nil
}
