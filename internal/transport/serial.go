package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/types/config"
	"go.bug.st/serial"
)

// Fallback patterns probed when the configured device node is missing.
var devicePatterns = []string{"/dev/ttyUSB*", "/dev/ttyACM*"}

// SerialTransport drives the actuator over a USB serial port.
type SerialTransport struct {
	cfg  config.SerialConfig
	port serial.Port
	buf  []byte
	mu   sync.Mutex

	// overridable in tests
	openPort func(name string, mode *serial.Mode) (serial.Port, error)
	exists   func(name string) bool
	glob     func(pattern string) ([]string, error)
}

func NewSerialTransport(cfg config.SerialConfig) *SerialTransport {
	return &SerialTransport{
		cfg:      cfg,
		openPort: serial.Open,
		exists: func(name string) bool {
			_, err := os.Stat(name)
			return err == nil
		},
		glob: filepath.Glob,
	}
}

// Open fails when no device is configured, none can be found, or the port
// rejects the mode. The board resets on open, so Open waits ResetDelay.
func (t *SerialTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		return nil
	}
	device, err := t.resolveDevice()
	if err != nil {
		return err
	}

	port, err := t.openPort(device, &serial.Mode{
		BaudRate: t.cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", device, err)
	}
	log.Printf("[serial] opened %s at %d baud", device, t.cfg.BaudRate)

	if t.cfg.ResetDelay > 0 {
		timer := time.NewTimer(t.cfg.ResetDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			_ = port.Close()
			return ctx.Err()
		case <-timer.C:
		}
	}
	if err := port.ResetInputBuffer(); err != nil {
		log.Printf("[serial] reset input buffer: %v", err)
	}

	t.port = port
	t.buf = t.buf[:0]
	return nil
}

func (t *SerialTransport) resolveDevice() (string, error) {
	if strings.TrimSpace(t.cfg.Device) == "" {
		return "", errors.New("serial: device not configured")
	}
	if t.exists(t.cfg.Device) {
		return t.cfg.Device, nil
	}
	for _, pattern := range devicePatterns {
		matches, err := t.glob(pattern)
		if err != nil {
			continue
		}
		if len(matches) > 0 {
			log.Printf("[serial] %s missing, using %s", t.cfg.Device, matches[0])
			return matches[0], nil
		}
	}
	return "", fmt.Errorf("serial: device %s not found and no port detected", t.cfg.Device)
}

func (t *SerialTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return ErrNotOpen
	}
	for len(data) > 0 {
		n, err := t.port.Write(data)
		if err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
		data = data[n:]
	}
	return nil
}

// ReadLine returns the next line without its terminator. Partial lines stay
// buffered across calls.
func (t *SerialTransport) ReadLine(timeout time.Duration) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return "", ErrNotOpen
	}
	if line, ok := t.nextLine(); ok {
		return line, nil
	}
	if err := t.port.SetReadTimeout(timeout); err != nil {
		return "", fmt.Errorf("serial read timeout: %w", err)
	}

	deadline := time.Now().Add(timeout)
	chunk := make([]byte, 256)
	for time.Now().Before(deadline) {
		n, err := t.port.Read(chunk)
		if err != nil {
			return "", fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			break
		}
		t.buf = append(t.buf, chunk[:n]...)
		if line, ok := t.nextLine(); ok {
			return line, nil
		}
	}
	return "", ErrNoData
}

func (t *SerialTransport) nextLine() (string, bool) {
	idx := bytes.IndexByte(t.buf, '\n')
	if idx < 0 {
		return "", false
	}
	line := strings.TrimSpace(string(t.buf[:idx]))
	t.buf = append(t.buf[:0], t.buf[idx+1:]...)
	return line, true
}

func (t *SerialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	t.buf = t.buf[:0]
	return err
}

var _ Transport = (*SerialTransport)(nil)
