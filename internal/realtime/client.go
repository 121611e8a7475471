package realtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client is a websocket client for a streaming speech endpoint. Audio
// and text are pushed through Send* calls while Run pumps server events
// into the callbacks until the stream ends or the context is cancelled.
type Client struct {
	cfg  Config
	opts SessionOptions
	cb   Callbacks
	log  *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn

	closeOnce sync.Once
}

func NewClient(cfg Config, opts SessionOptions, cb Callbacks, log *slog.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		opts: opts,
		cb:   cb,
		log:  log.With("component", "realtime"),
	}
}

// Connect dials the endpoint and configures the session. It must be
// called before Run or any Send.
func (c *Client) Connect(ctx context.Context) error {
	u := c.cfg.URL + "?model=" + c.cfg.Model

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial model endpoint: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("dial model endpoint: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.sendSessionUpdate(); err != nil {
		conn.Close()
		return fmt.Errorf("configure session: %w", err)
	}

	c.log.Info("model session configured", "model", c.cfg.Model, "voice", c.opts.Voice)
	return nil
}

func (c *Client) sendSessionUpdate() error {
	cfg := sessionConfig{
		Modalities:        c.opts.Modalities,
		Voice:             c.opts.Voice,
		Instructions:      c.opts.Instructions,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
	}
	if c.opts.TranscriptionModel != "" {
		cfg.InputAudioTranscription = &transcriptionCfg{Model: c.opts.TranscriptionModel}
	}
	cfg.TurnDetection = &turnDetectionCfg{
		Type:              "server_vad",
		Threshold:         c.opts.VADThreshold,
		PrefixPaddingMs:   c.opts.PrefixPaddingMs,
		SilenceDurationMs: c.opts.SilenceDurationMs,
	}

	return c.sendEvent(sessionUpdateEvent{Type: eventSessionUpdate, Session: cfg})
}

func (c *Client) sendEvent(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// SendAudio forwards a base64 PCM16 chunk to the model's input buffer.
func (c *Client) SendAudio(b64 string) error {
	return c.sendEvent(audioAppendEvent{Type: eventInputAudioAppend, Audio: b64})
}

// SendText injects a typed user message and asks the model to respond.
func (c *Client) SendText(text string) error {
	err := c.sendEvent(itemCreateEvent{
		Type: eventItemCreate,
		Item: conversationItem{
			Type: "message",
			Role: "user",
			Content: []contentPart{
				{Type: "input_text", Text: text},
			},
		},
	})
	if err != nil {
		return err
	}
	return c.sendEvent(responseCreateEvent{Type: eventResponseCreate})
}

// Run reads server events until the stream closes. Cancellation and a
// normal remote close both return nil; transport failures return the
// underlying error.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read model event: %w", err)
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	evt, err := decodeServerEvent(data)
	if err != nil {
		c.log.Warn("dropping malformed model event", "error", err)
		return
	}

	switch evt.Type {
	case eventAudioDelta:
		pcm, err := base64.StdEncoding.DecodeString(evt.Delta)
		if err != nil {
			c.log.Warn("dropping undecodable audio delta", "error", err)
			return
		}
		if c.cb.OnAudioDelta != nil {
			c.cb.OnAudioDelta(pcm)
		}
	case eventTextDelta:
		if evt.Delta != "" && c.cb.OnTextDelta != nil {
			c.cb.OnTextDelta(evt.Delta)
		}
	case eventInputTranscriptionDone:
		if evt.Transcript != "" && c.cb.OnUserTranscription != nil {
			c.cb.OnUserTranscription(evt.Transcript)
		}
	case eventOutputItemDone:
		if text, ok := evt.itemTranscript(); ok && c.cb.OnAgentResponse != nil {
			c.cb.OnAgentResponse(text)
		}
	case eventServerError:
		err := fmt.Errorf("model error")
		if evt.Error != nil {
			err = fmt.Errorf("model error: %s (%s)", evt.Error.Message, evt.Error.Code)
		}
		c.log.Error("model reported error", "error", err)
		if c.cb.OnError != nil {
			c.cb.OnError(err)
		}
	default:
		// Unknown event types are expected as the protocol grows.
	}
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}
		deadline := time.Now().Add(writeWait)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = conn.Close()
	})
	return err
}
