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
	"strings"
	"syscall"

	"github.com/fatih/color"

	"healthmate-backend/internal/config"
	"healthmate-backend/internal/middleware"
	"healthmate-backend/internal/services"
	"healthmate-backend/internal/session"
)

const footer = "Disclaimer: HealthMate AI is for informational purposes only. Always consult with a qualified healthcare provider for medical advice."

var (
	feature      = flag.String("feature", "chat", "Feature: chat, symptoms, meditation, nutrition, image, chart, tip")
	symptoms     = flag.String("symptoms", "", "Comma-separated symptoms for the symptom checker")
	medType      = flag.String("type", "mindfulness", "Meditation type: mindfulness, stress_relief, sleep_aid")
	minutes      = flag.Int("minutes", 10, "Meditation length in minutes (5-30)")
	goal         = flag.String("goal", "balanced_diet", "Nutrition goal: weight_loss, muscle_gain, balanced_diet")
	restrictions = flag.String("restrictions", "", "Comma-separated dietary restrictions")
	imagePath    = flag.String("image", "", "Path to a PNG or JPEG image to analyze")
	chartType    = flag.String("chart", "bmi_distribution", "Chart: bmi_distribution, common_health_issues")
	verbose      = flag.Bool("v", false, "Log gateway activity to stderr")
)

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
	errColor  = color.New(color.FgRed).SprintFunc()
)

func main() {
	flag.Parse()

	level := "disabled"
	if *verbose {
		level = "debug"
	}
	middleware.SetupLogger(level, true)

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway := services.NewGateway(cfg.Gemini())
	defer gateway.Close()
	svc := services.NewHealthService(gateway, session.NewMemoryStore(1, cfg.SessionTTL))

	fmt.Println(boldGreen("HealthMate AI"))
	fmt.Println()

	switch *feature {
	case "chat":
		err = runChat(ctx, svc, os.Stdin, os.Stdout)
	case "symptoms":
		err = printText(svc.CheckSymptoms(ctx, splitList(*symptoms)))
	case "meditation":
		err = printText(svc.GuideMeditation(ctx, *medType, *minutes))
	case "nutrition":
		err = printText(svc.PlanNutrition(ctx, *goal, splitList(*restrictions)))
	case "image":
		err = runImage(ctx, svc, *imagePath)
	case "chart":
		err = runChart(svc, *chartType)
	case "tip":
		fmt.Println(boldCyan("Daily health tip: ") + svc.DailyTip())
	default:
		err = fmt.Errorf("unknown feature %q", *feature)
	}
	if err != nil {
		fail(err)
	}

	if *feature != "chat" {
		fmt.Println()
		fmt.Println(faint(footer))
	}
}

// runChat reads one question per line until EOF or "exit". The footer is
// printed once, on entry.
func runChat(ctx context.Context, svc *services.HealthService, in io.Reader, out io.Writer) error {
	sess, err := svc.StartSession(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, faint(footer))
	fmt.Fprintln(out, "Ask a health question and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, boldGreen("You: "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if strings.ToLower(input) == "exit" {
			return nil
		}
		if input == "" {
			continue
		}

		fmt.Fprint(out, boldCyan("HealthMate: "))
		reply, _, err := svc.Chat(ctx, sess.ID, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(out, errColor(describe(err)))
			fmt.Fprintln(out)
			continue
		}

		fmt.Fprintln(out, reply)
		fmt.Fprintln(out)
	}
}

func runImage(ctx context.Context, svc *services.HealthService, path string) error {
	if path == "" {
		return fmt.Errorf("-image is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	return printText(svc.AnalyzeImage(ctx, data))
}

// runChart prints the chart as a text bar chart scaled to the largest value.
func runChart(svc *services.HealthService, chartType string) error {
	spec, err := svc.Chart(chartType, nil)
	if err != nil {
		return err
	}

	fmt.Println(boldCyan(spec.Title))
	fmt.Println(faint(fmt.Sprintf("%s / %s", spec.CategoryLabel, spec.ValueLabel)))

	width := 0
	maxVal := 0.0
	for i, c := range spec.Categories {
		width = max(width, len(c))
		maxVal = max(maxVal, spec.Values[i])
	}
	for i, c := range spec.Categories {
		bar := 0
		if maxVal > 0 {
			bar = int(spec.Values[i] / maxVal * 40)
		}
		fmt.Printf("%-*s %s %g\n", width, c, strings.Repeat("█", bar), spec.Values[i])
	}
	return nil
}

func printText(text string, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// describe turns a service error into the one-line message shown to the user.
func describe(err error) string {
	var msg string
	switch services.KindOf(err) {
	case services.InvalidInput:
		msg = "Invalid input"
	case services.BackendUnavailable:
		msg = "The AI service is unavailable. Set GEMINI_API_KEY and try again."
	case services.RequestFailed:
		msg = "The AI request failed. Please try again."
	case services.EmptyResponse:
		msg = "The AI returned no answer. Try rephrasing."
	default:
		return "Error: " + err.Error()
	}

	var e *services.Error
	if errors.As(err, &e) && len(e.Fields) > 0 {
		for field, reason := range e.Fields {
			msg += fmt.Sprintf(" (%s: %s)", field, reason)
		}
	}
	return msg
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errColor(describe(err)))
	os.Exit(1)
}
