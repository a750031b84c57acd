package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"

	"jewelbots.ai/internal/observerproto"
	"jewelbots.ai/internal/render"
)

func main() {
	var (
		url      = flag.String("url", "ws://127.0.0.1:8080/v1/observer/ws", "observer ws url")
		every    = flag.Int("every", 1, "render one TICK every N world ticks")
		validate = flag.Bool("validate", false, "validate every TICK against the protocol schema")
		quiet    = flag.Bool("quiet", false, "log tick summaries without drawing the grid")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[watch] ", log.LstdFlags|log.Lmicroseconds)

	if boot, err := fetchBootstrap(*url); err != nil {
		logger.Printf("bootstrap: %v", err)
	} else {
		p := boot.WorldParams
		logger.Printf("run=%s tick=%d grid=%dx%d seed=%d knowledge=%s jewels=%v",
			boot.RunID, boot.Tick, p.Width, p.Height, p.Seed, p.Knowledge, p.Jewels)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		EveryTicks:      *every,
	}
	if err := conn.WriteJSON(sub); err != nil {
		logger.Fatalf("send SUBSCRIBE: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	var out io.Writer = os.Stdout
	if *quiet {
		out = io.Discard
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.Printf("run finished")
			}
			return
		}
		tick, err := handleTick(out, msg, *validate)
		if err != nil {
			logger.Printf("tick: %v", err)
			continue
		}
		logger.Printf("tick=%d moves=%d complete=%v", tick.Tick, tick.TotalMoves, tick.Complete)
		if tick.Complete {
			logger.Printf("total moves: %d", tick.TotalMoves)
		}
	}
}

// handleTick decodes one TICK message and renders its grid to out.
func handleTick(out io.Writer, msg []byte, validate bool) (observerproto.TickMsg, error) {
	var tick observerproto.TickMsg
	if validate {
		if err := observerproto.ValidateTick(msg); err != nil {
			return tick, err
		}
	}
	if err := json.Unmarshal(msg, &tick); err != nil {
		return tick, fmt.Errorf("decode: %w", err)
	}
	if tick.Type != observerproto.TypeTick {
		return tick, fmt.Errorf("unexpected message type %q", tick.Type)
	}
	if err := render.Tick(out, tick); err != nil {
		return tick, err
	}
	return tick, nil
}

func fetchBootstrap(wsURL string) (observerproto.BootstrapResponse, error) {
	var boot observerproto.BootstrapResponse
	httpURL := strings.Replace(wsURL, "ws://", "http://", 1)
	httpURL = strings.Replace(httpURL, "wss://", "https://", 1)
	httpURL = strings.TrimSuffix(httpURL, "/ws") + "/bootstrap"

	resp, err := http.Get(httpURL)
	if err != nil {
		return boot, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return boot, fmt.Errorf("%s: %s", httpURL, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&boot); err != nil {
		return boot, fmt.Errorf("decode bootstrap: %w", err)
	}
	return boot, nil
}
