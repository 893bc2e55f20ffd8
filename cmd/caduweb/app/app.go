// The caduweb command serves the trainer to a browser over a websocket.
// Every connection gets its own device; the client sends key presses and
// tail text, the server answers each input with the resulting frame.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rotorlab/cadu-sim/internal/acquire"
	"github.com/rotorlab/cadu-sim/internal/cadu"
	"github.com/rotorlab/cadu-sim/internal/diag"
	"github.com/rotorlab/cadu-sim/internal/display"
	"github.com/rotorlab/cadu-sim/internal/rotorcraft"
)

const shutdownTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// inputMessage is one client action: a key press or tail number text.
type inputMessage struct {
	Action string `json:"action"` // "key" or "tail"
	Key    string `json:"key,omitempty"`
	Text   string `json:"text,omitempty"`
}

// frameMessage carries both the structured frame and the rendered LCD
// lines, so thin clients can print the lines verbatim.
type frameMessage struct {
	Frame cadu.Frame `json:"frame"`
	Lines []string   `json:"lines"`
}

type server struct {
	catalog    *rotorcraft.Catalog
	diagWindow int
	logger     *slog.Logger
}

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	catalog, err := loadCatalog(config)
	if err != nil {
		return err
	}

	srv := &server{catalog: catalog, diagWindow: config.DiagWindow, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWS)

	httpServer := &http.Server{Addr: config.Addr, Handler: mux}

	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", config.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("http server: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func loadCatalog(config *Config) (*rotorcraft.Catalog, error) {
	if config.CatalogPath == "" {
		return rotorcraft.DefaultCatalog(), nil
	}
	catalog, err := rotorcraft.LoadCatalog(config.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return catalog, nil
}

// handleWS upgrades the connection and runs one trainer device for its
// lifetime. Inputs arrive one at a time on the read loop, so the device
// never sees concurrent dispatches.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	logger := s.logger.With(slog.String("remote", conn.RemoteAddr().String()))
	logger.Debug("client connected")

	device := cadu.NewDevice(
		s.catalog,
		acquire.New(s.catalog),
		diag.New(s.catalog, diag.WithWindow(s.diagWindow)),
	)

	if err := writeFrame(conn, device); err != nil {
		logger.Debug("client gone", slog.String("error", err.Error()))
		return
	}

	for {
		var msg inputMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("websocket read", slog.String("error", err.Error()))
			} else {
				logger.Debug("client disconnected")
			}
			return
		}

		switch msg.Action {
		case "key":
			if key, ok := cadu.ParseKey(msg.Key); ok {
				device.Dispatch(key)
			}
		case "tail":
			device.SetTailEntry(msg.Text)
		default:
			logger.Debug("ignoring unknown action", slog.String("action", msg.Action))
		}

		if err := writeFrame(conn, device); err != nil {
			logger.Debug("client gone", slog.String("error", err.Error()))
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, device *cadu.Device) error {
	frame := device.Frame()
	return conn.WriteJSON(frameMessage{
		Frame: frame,
		Lines: display.Render(frame),
	})
}
