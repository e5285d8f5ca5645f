// virthid-server is a debugging aid: it creates the virtual HID device and
// accepts line-oriented commands over TCP.
//
//	ALT_TAB          press alt+tab
//	M <dx> <dy> [b]  relative mouse motion with an optional button mask
//	anything else    typed as literal text
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/openkvm/virthid"
	"github.com/openkvm/virthid/internal/hid"
)

const maxClients = 4

func main() {
	configPath := flag.String("config", "virthid.toml", "path to the TOML config file")
	flag.Parse()

	log := virthid.Logger("server")

	cfg, err := virthid.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	watcher, err := virthid.WatchConfig(*configPath, log, func(*virthid.Config) {
		log.Info().Msg("config changed on disk, restart to apply")
	})
	if err != nil {
		log.Warn().Err(err).Msg("config watcher unavailable")
	} else {
		defer watcher.Close()
	}

	backend := virthid.NewBackend(cfg, &logScreen{log: log}, &log)
	defer backend.Close()

	if cfg.MetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddress, mux); err != nil {
				log.Warn().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Fatal().Err(err).Str("address", cfg.ListenAddress).Msg("listen failed")
	}
	log.Info().Str("address", cfg.ListenAddress).Msg("listening for input clients")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutting down")
		listener.Close()
		backend.Close()
		os.Exit(0)
	}()

	srv := &server{backend: backend, log: log}
	slots := make(chan struct{}, maxClients)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Warn().Err(err).Msg("accept failed")
			return
		}

		select {
		case slots <- struct{}{}:
			go func() {
				defer func() { <-slots }()
				srv.serveConn(conn)
			}()
		default:
			conn.Close()
		}
	}
}

// server funnels every client line into the backend. Backend operations must
// stay serial, so a single mutex covers all connections.
type server struct {
	mu      sync.Mutex
	backend virthid.Backend
	log     zerolog.Logger
}

func (s *server) serveConn(conn net.Conn) {
	defer conn.Close()

	scoped := s.log.With().Str("client", conn.RemoteAddr().String()).Logger()
	scoped.Info().Msg("client connected")
	defer scoped.Info().Msg("client disconnected")

	var buttons byte

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		s.mu.Lock()
		err := s.processLine(line, &buttons)
		s.mu.Unlock()
		if err != nil {
			scoped.Debug().Err(err).Str("line", line).Msg("command failed")
		}
	}
}

func (s *server) processLine(line string, buttons *byte) error {
	if line == "ALT_TAB" {
		if err := s.backend.KeyDown(hid.KeyTab, hid.ModAlt, 0); err != nil {
			return err
		}
		return s.backend.KeyUp(hid.KeyTab, 0, 0)
	}

	if strings.HasPrefix(line, "M ") {
		var dx, dy int32
		mask := int32(*buttons)
		if n, _ := fmt.Sscanf(line[2:], "%d %d %d", &dx, &dy, &mask); n < 2 {
			return fmt.Errorf("malformed motion command %q", line)
		}
		if err := s.applyButtons(byte(mask), buttons); err != nil {
			return err
		}
		return s.backend.MouseRelativeMove(dx, dy)
	}

	return s.typeText(line)
}

// demo protocol button mask bits, per bit: left, right, middle, extra.
var maskButtons = []struct {
	bit byte
	id  hid.ButtonID
}{
	{0x01, hid.ButtonLeft},
	{0x02, hid.ButtonRight},
	{0x04, hid.ButtonMiddle},
	{0x08, hid.ButtonExtra0},
	{0x10, hid.ButtonExtra1},
}

func (s *server) applyButtons(mask byte, buttons *byte) error {
	changed := mask ^ *buttons
	for _, mb := range maskButtons {
		if changed&mb.bit == 0 {
			continue
		}
		var err error
		if mask&mb.bit != 0 {
			err = s.backend.MouseDown(mb.id)
		} else {
			err = s.backend.MouseUp(mb.id)
		}
		if err != nil {
			return err
		}
	}
	*buttons = mask
	return nil
}

func (s *server) typeText(text string) error {
	for _, r := range text {
		if r > 0x7f {
			continue
		}
		id := hid.KeyID(r)
		if err := s.backend.KeyDown(id, 0, 0); err != nil {
			return err
		}
		if err := s.backend.KeyUp(id, 0, 0); err != nil {
			return err
		}
	}
	return nil
}

// logScreen is the fallback collaborator for hosts without uhid: it only
// logs what the screen synthesizer would have done.
type logScreen struct {
	log zerolog.Logger
}

func (l *logScreen) MouseMove(x, y int32) error {
	l.log.Info().Int32("x", x).Int32("y", y).Msg("screen: mouse move")
	return nil
}

func (l *logScreen) MouseRelativeMove(dx, dy int32) error {
	l.log.Info().Int32("dx", dx).Int32("dy", dy).Msg("screen: mouse relative move")
	return nil
}

func (l *logScreen) MouseDown(id hid.ButtonID) error {
	l.log.Info().Uint8("button", uint8(id)).Msg("screen: mouse down")
	return nil
}

func (l *logScreen) MouseUp(id hid.ButtonID) error {
	l.log.Info().Uint8("button", uint8(id)).Msg("screen: mouse up")
	return nil
}

func (l *logScreen) MouseWheel(xDelta, yDelta int32) error {
	l.log.Info().Int32("x", xDelta).Int32("y", yDelta).Msg("screen: mouse wheel")
	return nil
}

func (l *logScreen) KeyDown(id hid.KeyID, mask hid.ModifierMask, _ hid.KeyButton) error {
	l.log.Info().Uint32("key", uint32(id)).Uint32("mask", uint32(mask)).Msg("screen: key down")
	return nil
}

func (l *logScreen) KeyRepeat(id hid.KeyID, mask hid.ModifierMask, count int32, _ hid.KeyButton) error {
	l.log.Info().Uint32("key", uint32(id)).Int32("count", count).Msg("screen: key repeat")
	return nil
}

func (l *logScreen) KeyUp(id hid.KeyID, mask hid.ModifierMask, _ hid.KeyButton) error {
	l.log.Info().Uint32("key", uint32(id)).Uint32("mask", uint32(mask)).Msg("screen: key up")
	return nil
}
