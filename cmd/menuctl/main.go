package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"menukiosk/internal/comments"
	"menukiosk/internal/gateway"
	"menukiosk/internal/stats"
	"menukiosk/pkg/dates"
	"menukiosk/pkg/models"
)

const defaultBaseURL = "https://back-menu.fly.dev"

func main() {
	_ = godotenv.Load()

	global := flag.NewFlagSet("menuctl", flag.ExitOnError)
	baseURL := global.String("api", envOr("MENUKIOSK_API_URL", defaultBaseURL), "backend base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	gw := gateway.New(*baseURL, nil)

	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	switch cmd {
	case "menu":
		handleMenu(ctx, gw, sub, args[2:])
	case "vote":
		handleVote(ctx, gw, sub, args[2:])
	case "comment":
		handleComment(ctx, gw, args[1:])
	case "stats":
		handleStats(ctx, gw, args[1:])
	case "notify":
		handleNotify(ctx, gw, sub, args[2:])
	case "health":
		if err := gw.Health(ctx); err != nil {
			log.Fatalf("backend unhealthy: %v", err)
		}
		fmt.Println("backend ok")
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleMenu(ctx context.Context, gw *gateway.Client, sub string, args []string) {
	switch sub {
	case "today":
		m, err := gw.MenuByDate(ctx, dates.TodayAPI(time.Now()))
		if err != nil {
			log.Fatalf("lookup failed: %v", err)
		}
		if m == nil {
			fmt.Println("no menu configured for today")
			return
		}
		printJSON(m)
	case "get":
		fs := flag.NewFlagSet("menu get", flag.ExitOnError)
		date := fs.String("date", "", "date (YYYY-MM-DD)")
		_ = fs.Parse(args)
		if *date == "" {
			log.Fatal("date is required")
		}
		fecha, err := dates.ISOToAPI(*date)
		if err != nil {
			log.Fatalf("bad date: %v", err)
		}
		m, err := gw.MenuByDate(ctx, fecha)
		if err != nil {
			log.Fatalf("lookup failed: %v", err)
		}
		if m == nil {
			fmt.Println("no menu configured for", *date)
			return
		}
		printJSON(m)
	case "set":
		fs := flag.NewFlagSet("menu set", flag.ExitOnError)
		date := fs.String("date", "", "date (YYYY-MM-DD)")
		main := fs.String("main", "", "main dish")
		side := fs.String("side", "", "side dish")
		beverage := fs.String("beverage", "", "beverage")
		_ = fs.Parse(args)
		if *date == "" || *main == "" || *side == "" || *beverage == "" {
			log.Fatal("date, main, side and beverage are all required")
		}
		fecha, err := dates.ISOToAPI(*date)
		if err != nil {
			log.Fatalf("bad date: %v", err)
		}
		m, err := gw.CreateOrUpdateMenu(ctx, models.CreateMenuRequest{
			Fecha:    fecha,
			MainDish: *main,
			Side:     *side,
			Beverage: *beverage,
		})
		if err != nil {
			log.Fatalf("save failed: %v", err)
		}
		fmt.Println("menu saved")
		printJSON(m)
	default:
		log.Fatal("usage: menuctl menu today|get|set")
	}
}

func handleVote(ctx context.Context, gw *gateway.Client, sub string, args []string) {
	if sub != "like" && sub != "dislike" {
		log.Fatal("usage: menuctl vote like|dislike [-date YYYY-MM-DD]")
	}
	fs := flag.NewFlagSet("vote", flag.ExitOnError)
	date := fs.String("date", "", "date (YYYY-MM-DD), default today")
	_ = fs.Parse(args)

	fecha := dates.TodayAPI(time.Now())
	if *date != "" {
		converted, err := dates.ISOToAPI(*date)
		if err != nil {
			log.Fatalf("bad date: %v", err)
		}
		fecha = converted
	}

	m, err := gw.SubmitVote(ctx, models.VoteRequest{Fecha: fecha, Like: sub == "like"})
	if err != nil {
		log.Fatalf("vote failed: %v", err)
	}
	fmt.Printf("vote recorded for %s: %d likes / %d dislikes\n", m.Fecha, m.Likes, m.Dislikes)
}

func handleComment(ctx context.Context, gw *gateway.Client, args []string) {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	date := fs.String("date", "", "date (YYYY-MM-DD), default today")
	dish := fs.String("dish", "", "main dish the comment refers to")
	text := fs.String("text", "", "comment body")
	_ = fs.Parse(args)

	target := *date
	if target == "" {
		target = dates.TodayAPI(time.Now())
	}

	svc := comments.NewService(gw, log.Default())
	if err := svc.Submit(ctx, target, *dish, *text); err != nil {
		log.Fatalf("comment failed: %v", err)
	}
	fmt.Println("comment sent")
}

func handleStats(ctx context.Context, gw *gateway.Client, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	period := fs.String("period", "all", "all|last30|last90|last180|last365|year-N|current-month|last-month|current-year|last-year|custom")
	start := fs.String("start", "", "custom range start (YYYY-MM-DD)")
	end := fs.String("end", "", "custom range end (YYYY-MM-DD)")
	_ = fs.Parse(args)

	p, err := stats.ParsePeriod(*period, *start, *end)
	if err != nil {
		log.Fatalf("bad period: %v", err)
	}

	menus, err := gw.AllMenus(ctx)
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}
	printJSON(stats.Aggregate(menus, p, time.Now()))
}

func handleNotify(ctx context.Context, gw *gateway.Client, sub string, args []string) {
	switch sub {
	case "test":
		fs := flag.NewFlagSet("notify test", flag.ExitOnError)
		date := fs.String("date", "", "date (YYYY-MM-DD)")
		_ = fs.Parse(args)
		if *date == "" {
			log.Fatal("date is required")
		}
		fecha, err := dates.ISOToAPI(*date)
		if err != nil {
			log.Fatalf("bad date: %v", err)
		}
		r, err := gw.NotifyTest(ctx, fecha)
		if err != nil {
			log.Fatalf("notify failed: %v", err)
		}
		printJSON(r)
	case "yesterday":
		r, err := gw.NotifyYesterday(ctx)
		if err != nil {
			log.Fatalf("notify failed: %v", err)
		}
		printJSON(r)
	default:
		log.Fatal("usage: menuctl notify test|yesterday")
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printUsage() {
	fmt.Println(`menuctl - cafeteria backend tooling

usage:
  menuctl [-api URL] menu today
  menuctl [-api URL] menu get -date YYYY-MM-DD
  menuctl [-api URL] menu set -date YYYY-MM-DD -main ... -side ... -beverage ...
  menuctl [-api URL] vote like|dislike [-date YYYY-MM-DD]
  menuctl [-api URL] comment [-date YYYY-MM-DD] [-dish ...] -text ...
  menuctl [-api URL] stats [-period all|last30|...|custom] [-start ...] [-end ...]
  menuctl [-api URL] notify test -date YYYY-MM-DD
  menuctl [-api URL] notify yesterday
  menuctl [-api URL] health`)
}
