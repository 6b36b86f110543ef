// Command quizclient is a terminal front end for the QuizMaster backend. It
// wires the configuration, logger, event bus, REST client, and view services,
// and exposes the admin and student views as subcommands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quizmaster-app/quiz-client/internal/client"
	"github.com/quizmaster-app/quiz-client/internal/config"
	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/services"
	"github.com/quizmaster-app/quiz-client/internal/session"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

const usage = `usage: quizclient <command> [flags]

commands:
  catalog      list the quiz catalog
  results      admin results dashboard
  my-results   results of the logged-in student
  accounts     list student accounts
  email-stats  email notification counters
  export       write the results dashboard to an .xlsx file
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "quizclient:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	bus := events.NewBus(utils.ToSlogLogger(logger))
	defer bus.Close()

	api := client.New(cfg.APIBaseURL, logger)
	store := session.NewStore(cfg.SessionFile)

	results := services.NewResultsService(api, logger)
	catalog := services.NewCatalogService(api, bus, logger)
	accounts := services.NewAccountsService(api, logger)
	emails := services.NewEmailService(api, bus, cfg.EmailLogFile, logger)
	auth := services.NewAuthService(api, store, bus, cfg.AdminUsername, cfg.AdminPassword, logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	switch os.Args[1] {
	case "catalog":
		return runCatalog(ctx, catalog, auth)
	case "results":
		return runResults(ctx, results, os.Args[2:])
	case "my-results":
		return runMyResults(ctx, results, auth)
	case "accounts":
		return runAccounts(ctx, accounts)
	case "email-stats":
		return runEmailStats(ctx, emails)
	case "export":
		return runExport(ctx, results, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func runCatalog(ctx context.Context, catalog *services.CatalogService, auth *services.AuthService) error {
	student := ""
	if current, err := auth.CurrentSession(); err == nil && current != nil {
		student = current.Username
	}

	summaries, err := catalog.Refresh(ctx, student)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No quizzes available.")
		return nil
	}

	for _, summary := range summaries {
		status := "available"
		if summary.Taken {
			status = "taken"
		}
		fmt.Printf("%4d  %-40s  %3d questions  %3d min  %s\n",
			summary.ID, summary.Title, summary.QuestionCount, summary.TimeLimit, status)
	}
	return nil
}

func runResults(ctx context.Context, results *services.ResultsService, args []string) error {
	fs := flag.NewFlagSet("results", flag.ContinueOnError)
	sortBy := fs.String("sort", string(services.SortByDate), "sort key: date, score, student, quiz")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, err := results.AllResults(ctx, services.SortKey(*sortBy))
	if err != nil {
		return err
	}
	printRows(rows)
	return nil
}

func runMyResults(ctx context.Context, results *services.ResultsService, auth *services.AuthService) error {
	current, err := auth.CurrentSession()
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("not logged in")
	}

	rows, err := results.StudentResults(ctx, current.Username)
	if err != nil {
		return err
	}
	printRows(rows)
	return nil
}

func runAccounts(ctx context.Context, accounts *services.AccountsService) error {
	rows, err := accounts.List(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		status := "active"
		if !row.Active {
			status = "deactivated"
		}
		fmt.Printf("%4d  %-20s  %-30s  %-10s  %s  %s\n",
			row.ID, row.Name, row.Email, row.Role, row.JoinedDate, status)
	}
	return nil
}

func runEmailStats(ctx context.Context, emails *services.EmailService) error {
	stats := emails.Stats(ctx)
	fmt.Printf("Reminders sent:  %d\n", stats.RemindersSent)
	fmt.Printf("Results sent:    %d\n", stats.ResultsSent)
	fmt.Printf("Active students: %d\n", stats.ActiveStudents)
	fmt.Printf("Total emails:    %d\n", stats.TotalEmails)
	return nil
}

func runExport(ctx context.Context, results *services.ResultsService, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "results.xlsx", "output file")
	sortBy := fs.String("sort", string(services.SortByDate), "sort key: date, score, student, quiz")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, err := results.AllResults(ctx, services.SortKey(*sortBy))
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *out, err)
	}
	defer f.Close()

	if err := services.ExportResultsXLSX(f, rows); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(rows), *out)
	return nil
}

func printRows(rows []services.ResultRow) {
	if len(rows) == 0 {
		fmt.Println("No results yet.")
		return
	}
	for _, row := range rows {
		fmt.Printf("%-20s  %-30s  %3d/%-3d  %5.1f%%  %-2s  %-6s  %s\n",
			row.StudentName, row.QuizTitle,
			row.CorrectAnswers, row.TotalQuestions,
			row.Percentage, services.Grade(row.Percentage),
			row.TimeTaken, row.CompletedAt.Format("2006-01-02 15:04"))
	}
}
