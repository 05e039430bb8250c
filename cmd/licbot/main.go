// Command licbot scans the LinkedIn feed, generates comments, and posts them.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/browser"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/auth"
	browseropts "github.com/vneseyoungster/linkedin-automatic-comment/internal/browser"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/comment"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/config"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/extract"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/feed"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/generate"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/orchestrator"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/scheduler"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/session"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/store"
)

const (
	feedURL = "https://www.linkedin.com/feed/"
	// runTimeout bounds a full scan-and-comment pass. Typing is deliberately
	// slow, so this is generous.
	runTimeout = 30 * time.Minute
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runPipeline(false)
	case "scan":
		runPipeline(true)
	case "comment":
		if len(os.Args) < 4 {
			fmt.Println("Usage: licbot comment <ember-id> <text>")
			os.Exit(1)
		}
		runComment(os.Args[2], os.Args[3])
	case "login":
		runLogin()
	case "logout":
		runLogout()
	case "schedule":
		runSchedule()
	case "bot-test":
		runBotTest()
	case "open":
		if len(os.Args) < 3 {
			fmt.Println("Usage: licbot open <config|data>")
			os.Exit(1)
		}
		runOpen(os.Args[2])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: licbot <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run                       Scan the feed, then extract and comment")
	fmt.Println("  scan                      Scan the feed only, save results")
	fmt.Println("  comment <ember-id> <text> Post one comment on a specific post")
	fmt.Println("  login                     Open a browser window to log in")
	fmt.Println("  logout                    Clear stored credentials")
	fmt.Println("  schedule                  Run on the configured cron schedule")
	fmt.Println("  bot-test                  Open bot.sannysoft.com to audit browser fingerprint")
	fmt.Println("  open config               Open config file in default editor")
	fmt.Println("  open data                 Open results directory in file explorer")
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: could not load config: %v (using defaults)", err)
		cfg = config.Default()
	}

	for _, warning := range cfg.Validate() {
		log.Printf("Config warning: %s", warning)
	}

	return cfg
}

func newAuthManager() *auth.Manager {
	cookieStorePath, err := auth.DefaultCookieStorePath()
	if err != nil {
		log.Fatalf("Failed to get cookie store path: %v", err)
	}
	return auth.NewManager(auth.NewCookieStore(cookieStorePath))
}

// pipeline holds everything a run needs, plus its cleanup.
type pipeline struct {
	orch *orchestrator.Orchestrator
	sess *session.Session
	db   *store.Store
}

func (p *pipeline) close() {
	p.sess.Close()
	if p.db != nil {
		p.db.Close()
	}
}

func buildPipeline(ctx context.Context, cfg *config.Config, mgr *auth.Manager) (*pipeline, error) {
	cookies, err := mgr.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("no stored credentials, run 'licbot login' first: %w", err)
	}

	sess, err := session.New(ctx, cfg.Browser.Headless, cookies, runTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		sess.Close()
		return nil, err
	}
	// JSON snapshots and the history database live in the same place.
	cfg.Output.Dir = dataDir
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		sess.Close()
		return nil, err
	}

	// History is optional; a broken database should not stop a run.
	var history orchestrator.History
	db, err := store.New(filepath.Join(dataDir, "history.db"))
	if err != nil {
		log.Printf("Warning: history database unavailable: %v", err)
	} else {
		history = db
	}

	generator, err := generate.New(cfg.Generation)
	if err != nil {
		sess.Close()
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("failed to create comment generator: %w", err)
	}

	scanner := feed.NewScanner(sess, cfg.Scan.ScrollPasses, cfg.Scan.MaxPosts, cfg.Scan.MaxPostAgeDays)
	extractor := extract.New(sess, cfg.Content.AutoExpand,
		secondsToDuration(cfg.Content.DelayAfterExpand),
		extract.LengthPolicy{
			SkipShort: cfg.Content.SkipShort,
			MinLength: cfg.Content.MinLength,
			MaxLength: cfg.Content.MaxLength,
		})
	submitter := comment.NewSubmitter(sess, secondsToDuration(cfg.Content.ScrollDelay))

	orch := orchestrator.New(cfg, sess, scanner, extractor, submitter, generator, history)

	return &pipeline{orch: orch, sess: sess, db: db}, nil
}

func runPipeline(scanOnly bool) {
	cfg := loadConfig()
	mgr := newAuthManager()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg, mgr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer p.close()

	if scanOnly {
		if _, err := p.orch.RunScan(ctx); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		return
	}

	// Invoking "run" is the stage 2 confirmation; "scan" is the way to
	// stop after stage 1.
	cfg.Output.AutoStartStage2 = true

	if err := p.orch.Run(ctx); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}

func runComment(emberID, text string) {
	cfg := loadConfig()
	mgr := newAuthManager()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cookies, err := mgr.GetCookies()
	if err != nil {
		log.Fatalf("No stored credentials, run 'licbot login' first: %v", err)
	}

	sess, err := session.New(ctx, cfg.Browser.Headless, cookies, runTimeout)
	if err != nil {
		log.Fatalf("Failed to start browser session: %v", err)
	}
	defer sess.Close()

	if err := sess.Navigate(feedURL); err != nil {
		log.Fatalf("Failed to navigate to feed: %v", err)
	}
	if err := sess.WaitVisible("main", 30*time.Second); err != nil {
		log.Fatalf("Feed did not load: %v", err)
	}

	submitter := comment.NewSubmitter(sess, secondsToDuration(cfg.Content.ScrollDelay))
	rec := submitter.Post(emberID, text)
	if !rec.Success {
		log.Fatalf("Comment failed at %v: %s", rec.StepsCompleted, rec.Error)
	}
	log.Printf("Comment posted on %s in %.1fs", emberID, rec.DurationSeconds)
}

func runLogin() {
	mgr := newAuthManager()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Opening browser for LinkedIn login...")
	if err := mgr.Login(ctx); err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Println("Login successful, credentials saved.")
}

func runLogout() {
	mgr := newAuthManager()
	if err := mgr.Logout(); err != nil {
		log.Fatalf("Logout failed: %v", err)
	}
	log.Println("Credentials cleared.")
}

func runSchedule() {
	cfg := loadConfig()
	mgr := newAuthManager()

	if !mgr.IsAuthenticated() {
		log.Fatal("No stored credentials, run 'licbot login' first")
	}

	sched, err := scheduler.New(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Each scheduled run gets a fresh browser session so a crashed or
	// logged-out browser does not poison later runs.
	err = sched.AddJob("feed-run", cfg.Schedule.Spec, func(ctx context.Context) error {
		p, err := buildPipeline(ctx, cfg, mgr)
		if err != nil {
			return err
		}
		defer p.close()
		return p.orch.Run(ctx)
	})
	if err != nil {
		log.Fatalf("Failed to schedule run: %v", err)
	}

	sched.Start()
	for _, info := range sched.ListJobs() {
		log.Printf("Next run of %s: %s", info.Name, info.NextRun.Format(time.RFC1123))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down...")
	<-sched.Stop().Done()
}

func runBotTest() {
	log.Println("Opening bot.sannysoft.com with stealth browser options...")

	opts := browseropts.Options(false) // non-headless so you can see it

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	go func() {
		err := chromedp.Run(ctx,
			chromedp.Navigate("https://bot.sannysoft.com"),
		)
		if err != nil {
			log.Printf("Failed to navigate: %v", err)
		}
	}()

	fmt.Println("Press Enter to end program...")
	fmt.Scanln()

	log.Println("Done.")
}

func runOpen(target string) {
	var path string
	var err error

	switch target {
	case "config":
		path, err = config.ConfigPath()
	case "data":
		cfg := loadConfig()
		path, err = cfg.DataDir()
	default:
		fmt.Printf("Unknown target: %s\n", target)
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Failed to get path: %v", err)
	}

	if err := browser.OpenFile(path); err != nil {
		log.Fatalf("Failed to open: %v", err)
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
