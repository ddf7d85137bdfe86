package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/starford/scrawl/internal"
	"github.com/starford/scrawl/internal/apperr"
	"github.com/starford/scrawl/internal/drafts"
	"github.com/starford/scrawl/internal/mcpserver"
	"github.com/starford/scrawl/internal/models"
	"github.com/starford/scrawl/internal/validate"
	pkgconfig "github.com/starford/scrawl/pkg/config"
)

func buildApp(cmd *cli.Command, opts ...internal.Option) (*internal.App, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	opts = append([]internal.Option{internal.WithConfig(cfg)}, opts...)
	return internal.New(opts...)
}

func postIDArg(cmd *cli.Command) (int, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("post id is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid post id: %s", raw)
	}
	return id, nil
}

// confirm asks for an explicit yes before destructive actions.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printPost(p models.Post) {
	marks := ""
	if p.IsLiked {
		marks += " ♥"
	}
	if p.IsFavorited {
		marks += " ★"
	}
	fmt.Printf("#%d %s%s\n", p.ID, p.Title, marks)
	fmt.Printf("    by @%s on %s | %d likes, %d comments\n",
		p.AuthorUsername, p.CreatedAt.Format("2006-01-02"), p.LikesCount, p.CommentsCount)
	if p.Excerpt != "" {
		fmt.Printf("    %s\n", p.Excerpt)
	}
}

func printPosts(posts []models.Post) {
	if len(posts) == 0 {
		fmt.Println("No posts found.")
		return
	}
	for _, p := range posts {
		printPost(p)
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and persist the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Account username"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Sources: cli.EnvVars("SCRAWL_PASSWORD")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			username, password := cmd.String("username"), cmd.String("password")
			if err := validate.Credentials(username, password); err != nil {
				return err
			}
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Sessions.Login(ctx, username, password); err != nil {
				return errors.New(apperr.Detail(err, "Login failed"))
			}
			fmt.Printf("Logged in as @%s\n", app.Sessions.User().Username)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Clear the persisted session",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.Sessions.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account (log in separately afterwards)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Account email"},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Account username"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Sources: cli.EnvVars("SCRAWL_PASSWORD")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			email, username, password := cmd.String("email"), cmd.String("username"), cmd.String("password")
			if err := validate.Registration(email, username, password); err != nil {
				return err
			}
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.Sessions.Register(ctx, email, username, password)
			if err != nil {
				return errors.New(apperr.Detail(err, "Registration failed"))
			}
			fmt.Printf("Registered @%s (id %d). Run `scrawl login` to start a session.\n", user.Username, user.ID)
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the current session",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()
			u := app.Sessions.User()
			if u == nil {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("@%s <%s>\n", u.Username, u.Email)
			return nil
		},
	}
}

func feedCommand() *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Browse the post feed",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1, Usage: "Page number"},
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Search term"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()

			app.Feed.Load(ctx, int(cmd.Int("page")), cmd.String("search"))
			if ferr := app.Feed.Err(); ferr != nil {
				return errors.New(apperr.Detail(ferr, "Failed to load posts"))
			}
			page := app.Feed.Snapshot()
			printPosts(page.Items)
			fmt.Printf("Page %d of %d\n", page.CurrentPage, page.TotalPages)
			return nil
		},
	}
}

func postCommand() *cli.Command {
	return &cli.Command{
		Name:  "post",
		Usage: "Read and author posts",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a post with its comments",
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := postIDArg(cmd)
					if err != nil {
						return err
					}
					app, err := buildApp(cmd, internal.WithoutDrafts())
					if err != nil {
						return err
					}
					defer app.Close()

					app.Detail.Load(ctx, id)
					if derr := app.Detail.Err(); derr != nil {
						return errors.New(apperr.Detail(derr, "Failed to load post"))
					}
					p := app.Detail.Current()
					printPost(*p)
					fmt.Println()
					fmt.Println(p.Content)
					fmt.Println()
					comments := app.Detail.Comments()
					fmt.Printf("Comments (%d):\n", len(comments))
					for _, c := range comments {
						fmt.Printf("  @%s: %s\n", c.AuthorUsername, c.Content)
					}
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Publish a new post",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Post title"},
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Post body"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					title, content := cmd.String("title"), cmd.String("content")
					if err := validate.PostDraft(title, content); err != nil {
						return err
					}
					app, err := buildApp(cmd, internal.WithoutDrafts())
					if err != nil {
						return err
					}
					defer app.Close()
					if !app.Sessions.IsAuthenticated() {
						return apperr.ErrAuthRequired
					}
					p, err := app.API.CreatePost(ctx, title, content)
					if err != nil {
						return errors.New(apperr.Detail(err, "Failed to create post"))
					}
					fmt.Printf("Created post #%d\n", p.ID)
					return nil
				},
			},
			{
				Name:      "edit",
				Usage:     "Update a post's title and content",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "New body"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := postIDArg(cmd)
					if err != nil {
						return err
					}
					title, content := cmd.String("title"), cmd.String("content")
					if err := validate.PostDraft(title, content); err != nil {
						return err
					}
					app, err := buildApp(cmd, internal.WithoutDrafts())
					if err != nil {
						return err
					}
					defer app.Close()
					if !app.Sessions.IsAuthenticated() {
						return apperr.ErrAuthRequired
					}
					p, err := app.API.UpdatePost(ctx, id, title, content)
					if err != nil {
						return errors.New(apperr.Detail(err, "Failed to update post"))
					}
					fmt.Printf("Updated post #%d\n", p.ID)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a post",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := postIDArg(cmd)
					if err != nil {
						return err
					}
					app, err := buildApp(cmd, internal.WithoutDrafts())
					if err != nil {
						return err
					}
					defer app.Close()
					if !app.Sessions.IsAuthenticated() {
						return apperr.ErrAuthRequired
					}

					app.Detail.Load(ctx, id)
					if derr := app.Detail.Err(); derr != nil {
						return errors.New(apperr.Detail(derr, "Failed to load post"))
					}
					if !app.Detail.Current().CanEdit(app.Sessions.User()) {
						return fmt.Errorf("post #%d is not yours to delete", id)
					}
					if !cmd.Bool("yes") && !confirm(fmt.Sprintf("Delete post #%d?", id)) {
						fmt.Println("Aborted.")
						return nil
					}
					if err := app.Detail.Delete(ctx); err != nil {
						return errors.New(apperr.Detail(err, "Failed to delete post"))
					}
					fmt.Printf("Deleted post #%d\n", id)
					return nil
				},
			},
		},
	}
}

// toggleCommand builds the like and favorite commands; both load the post
// detail and run the toggle protocol against it.
func toggleCommand(name, usage string, like bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := postIDArg(cmd)
			if err != nil {
				return err
			}
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()

			app.Detail.Load(ctx, id)
			if derr := app.Detail.Err(); derr != nil {
				return errors.New(apperr.Detail(derr, "Failed to load post"))
			}
			if like {
				err = app.Toggles.ToggleLike(ctx, app.Detail, id)
			} else {
				err = app.Toggles.ToggleFavorite(ctx, app.Detail, id)
			}
			if errors.Is(err, apperr.ErrAuthRequired) {
				return fmt.Errorf("please log in to %s posts", name)
			}
			if err != nil {
				return errors.New(apperr.Detail(err, "Failed to update "+name))
			}
			p := app.Detail.Current()
			if like {
				fmt.Printf("Post #%d: liked=%t (%d likes)\n", p.ID, p.IsLiked, p.LikesCount)
			} else {
				fmt.Printf("Post #%d: favorited=%t\n", p.ID, p.IsFavorited)
			}
			return nil
		},
	}
}

func commentCommand() *cli.Command {
	return &cli.Command{
		Name:      "comment",
		Usage:     "Comment on a post",
		ArgsUsage: "ID TEXT",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := postIDArg(cmd)
			if err != nil {
				return err
			}
			text := strings.Join(cmd.Args().Slice()[1:], " ")
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()

			app.Detail.Load(ctx, id)
			if derr := app.Detail.Err(); derr != nil {
				return errors.New(apperr.Detail(derr, "Failed to load post"))
			}
			if err := app.Detail.SubmitComment(ctx, text); err != nil {
				if errors.Is(err, apperr.ErrAuthRequired) {
					return errors.New("please log in to comment")
				}
				return err
			}
			fmt.Printf("Comment added (%d total).\n", len(app.Detail.Comments()))
			return nil
		},
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View and edit your profile",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show your profile and posts",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := buildApp(cmd, internal.WithoutDrafts())
					if err != nil {
						return err
					}
					defer app.Close()

					if err := app.Account.LoadProfile(ctx); err != nil {
						if errors.Is(err, apperr.ErrAuthRequired) {
							return errors.New("please log in first")
						}
						return errors.New(apperr.Detail(err, "Failed to load profile"))
					}
					u := app.Account.Profile()
					fmt.Printf("@%s <%s>\n", u.Username, u.Email)
					if u.Bio != "" {
						fmt.Println(u.Bio)
					}
					fmt.Printf("Member since %s\n", u.CreatedAt.Format("2006-01-02"))
					fmt.Println()
					printPosts(app.Account.Posts())
					return nil
				},
			},
			{
				Name:  "edit",
				Usage: "Update your profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "New username"},
					&cli.StringFlag{Name: "email", Usage: "New email"},
					&cli.StringFlag{Name: "bio", Usage: "New bio"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := buildApp(cmd, internal.WithoutDrafts())
					if err != nil {
						return err
					}
					defer app.Close()

					// Start from the current profile so unset flags keep their value.
					if err := app.Account.LoadProfile(ctx); err != nil {
						if errors.Is(err, apperr.ErrAuthRequired) {
							return errors.New("please log in first")
						}
						return errors.New(apperr.Detail(err, "Failed to load profile"))
					}
					cur := app.Account.Profile()
					username, email, bio := cur.Username, cur.Email, cur.Bio
					if cmd.IsSet("username") {
						username = cmd.String("username")
					}
					if cmd.IsSet("email") {
						email = cmd.String("email")
					}
					if cmd.IsSet("bio") {
						bio = cmd.String("bio")
					}
					u, err := app.Account.UpdateProfile(ctx, username, email, bio)
					if err != nil {
						return errors.New(apperr.Detail(err, "Failed to update profile"))
					}
					fmt.Printf("Profile updated: @%s <%s>\n", u.Username, u.Email)
					return nil
				},
			},
		},
	}
}

func favoritesCommand() *cli.Command {
	return &cli.Command{
		Name:  "favorites",
		Usage: "List your favorited posts",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()
			if !app.Sessions.IsAuthenticated() {
				return errors.New("please log in first")
			}
			if err := app.Favorites.Load(ctx); err != nil {
				return errors.New(apperr.Detail(err, "Failed to load favorites"))
			}
			printPosts(app.Favorites.Items())
			return nil
		},
	}
}

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:      "users",
		Usage:     "Search accounts by username or email",
		ArgsUsage: "QUERY",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()

			users, err := app.Account.SearchUsers(ctx, cmd.Args().First())
			if err != nil {
				return errors.New(apperr.Detail(err, "Failed to search users"))
			}
			if len(users) == 0 {
				fmt.Println("No users found.")
				return nil
			}
			for _, u := range users {
				fmt.Printf("@%s <%s>\n", u.Username, u.Email)
			}
			return nil
		},
	}
}

func draftCommand() *cli.Command {
	return &cli.Command{
		Name:  "draft",
		Usage: "Manage local post drafts",
		Commands: []*cli.Command{
			{
				Name:  "new",
				Usage: "Create a draft",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Draft title"},
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Draft body"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := buildApp(cmd)
					if err != nil {
						return err
					}
					defer app.Close()
					d, err := app.Drafts.Save(drafts.Draft{
						Title:   cmd.String("title"),
						Content: cmd.String("content"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("Draft %s saved.\n", d.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List drafts",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := buildApp(cmd)
					if err != nil {
						return err
					}
					defer app.Close()
					list, err := app.Drafts.List()
					if err != nil {
						return err
					}
					if len(list) == 0 {
						fmt.Println("No drafts.")
						return nil
					}
					for _, d := range list {
						fmt.Printf("%s  %s  (updated %s)\n", d.ID, d.Title, d.UpdatedAt.Format("2006-01-02 15:04"))
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "Show a draft",
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := buildApp(cmd)
					if err != nil {
						return err
					}
					defer app.Close()
					d, err := app.Drafts.Get(cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Printf("%s\n\n%s\n", d.Title, d.Content)
					return nil
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a draft",
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := buildApp(cmd)
					if err != nil {
						return err
					}
					defer app.Close()
					if err := app.Drafts.Delete(cmd.Args().First()); err != nil {
						return err
					}
					fmt.Println("Draft deleted.")
					return nil
				},
			},
			{
				Name:      "publish",
				Usage:     "Validate, publish, and remove a draft",
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := buildApp(cmd)
					if err != nil {
						return err
					}
					defer app.Close()
					if !app.Sessions.IsAuthenticated() {
						return errors.New("please log in first")
					}
					d, err := app.Drafts.Get(cmd.Args().First())
					if err != nil {
						return err
					}
					if err := validate.PostDraft(d.Title, d.Content); err != nil {
						return err
					}
					p, err := app.API.CreatePost(ctx, d.Title, d.Content)
					if err != nil {
						return errors.New(apperr.Detail(err, "Failed to publish draft"))
					}
					if err := app.Drafts.Delete(d.ID); err != nil {
						return err
					}
					fmt.Printf("Published draft as post #%d\n", p.ID)
					return nil
				},
			},
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the client as MCP tools over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := buildApp(cmd, internal.WithoutDrafts())
			if err != nil {
				return err
			}
			defer app.Close()

			srv := mcpserver.New(app.API, app.Feed, app.Detail, app.Toggles)

			// ServeStdio returns nil when the client closes stdin, which is
			// the ordinary end of a stdio session. The watcher only stops on
			// context cancellation, so the serve goroutine must cancel the
			// group itself or Wait would block forever.
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			g, gCtx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return app.WatchSession(gCtx)
			})
			g.Go(func() error {
				defer cancel()
				return srv.ServeStdio()
			})
			return g.Wait()
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "scrawl",
		Usage: "Terminal client for a social blogging platform",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("SCRAWL_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			registerCommand(),
			whoamiCommand(),
			feedCommand(),
			postCommand(),
			toggleCommand("like", "Toggle your like on a post", true),
			toggleCommand("favorite", "Toggle a post in your favorites", false),
			commentCommand(),
			profileCommand(),
			favoritesCommand(),
			usersCommand(),
			draftCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
