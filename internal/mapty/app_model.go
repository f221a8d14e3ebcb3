package mapty

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/lowaak/mapty/internal/events"
	"github.com/lowaak/mapty/internal/go_func_utils"
)

const maxLogLines = 1000

// AppModel buffers log lines for the log pane and notifies the view of new ones
type AppModel struct {
	logEvent *events.ChannelEvent[string]
	logLines []string
	logMu    sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *log.Logger
}

func NewAppModel(logger *log.Logger, uiLogChan <-chan string) *AppModel {
	if logger == nil {
		panic("AppModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("AppModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &AppModel{
		logEvent: events.NewChannelEvent[string](false),
		logLines: make([]string, 0, maxLogLines),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
	}

	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, "AppModel log reader", func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops the log reader and waits for it to finish
func (m *AppModel) Shutdown() {
	m.logger.Println("AppModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("AppModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *AppModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

func (m *AppModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *AppModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n >= len(m.logLines) {
		result := make([]string, len(m.logLines))
		copy(result, m.logLines)
		return result
	}

	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}

// LogChannelWriter is an io.Writer that forwards each written line to a
// channel. Lines are dropped while the channel is full so logging never
// waits on the UI.
type LogChannelWriter struct {
	ch chan<- string
}

func NewLogChannelWriter(ch chan<- string) *LogChannelWriter {
	if ch == nil {
		panic("LogChannelWriter: channel cannot be nil")
	}
	return &LogChannelWriter{ch: ch}
}

func (w *LogChannelWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		select {
		case w.ch <- line:
		default:
		}
	}
	return len(p), nil
}
