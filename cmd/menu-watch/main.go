package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"menukiosk/pkg/models"
	"menukiosk/pkg/texts"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func main() {
	_ = godotenv.Load()

	url := flag.String("url", "wss://back-menu.fly.dev/ws", "real-time channel URL")
	pretty := flag.Bool("pretty", true, "pretty print menu events")
	flag.Parse()

	for {
		if err := run(*url, *pretty); err != nil {
			log.Printf("[menu-watch] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func run(url string, pretty bool) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	log.Printf("[menu-watch] connected to %s", url)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if !pretty {
			fmt.Println(string(msg))
			continue
		}

		var f frame
		if err := json.Unmarshal(msg, &f); err != nil {
			// not a known frame? print raw
			fmt.Println(string(msg))
			continue
		}

		var m models.Menu
		if err := json.Unmarshal(f.Data, &m); err != nil {
			fmt.Println(string(msg))
			continue
		}
		fmt.Printf("%s %s: %s / %s / %s (%d likes, %d dislikes)\n",
			f.Event, m.Fecha, texts.Upper(m.MainDish), m.Side, m.Beverage, m.Likes, m.Dislikes)
	}
}
