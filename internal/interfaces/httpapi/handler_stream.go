package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantaqb/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const streamHeartbeat = 15 * time.Second

// frameSlot holds the newest unsent frame. Live views only care about the
// latest derivation, so a slow client skips intermediate ones.
type frameSlot chan []byte

func newFrameSlot() frameSlot { return make(frameSlot, 1) }

func (s frameSlot) put(frame []byte) {
	for {
		select {
		case s <- frame:
			return
		default:
		}
		select {
		case <-s:
		default:
		}
	}
}

// encodeEvent frames payload as one server-sent event.
func encodeEvent(event string, payload any) ([]byte, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event, err)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("event: ")
	_, _ = buf.WriteString(event)
	_, _ = buf.WriteString("\ndata: ")
	_, _ = buf.Write(body)
	_, _ = buf.WriteString("\n\n")

	return append([]byte(nil), buf.B...), nil
}

func (h *Handler) errorEvent(ctx context.Context, err error) []byte {
	body := errorBody(mapError(ctx, err), err.Error(), nil)
	frame, encErr := encodeEvent("error", googleResponseEnvelope{APIVersion: googleAPIVersion, Error: &body})
	if encErr != nil {
		h.logger.ErrorContext(ctx, "encode stream error event failed", "error", encErr)
		return nil
	}
	return frame
}

type watchFunc func(ctx context.Context, slot frameSlot) (*usecase.Watch, error)

// serveStream runs a live view for the lifetime of the request and writes each
// derivation as an event.
func (h *Handler) serveStream(w http.ResponseWriter, r *http.Request, view string, start watchFunc) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeInternalError(ctx, w)
		return
	}

	slot := newFrameSlot()
	watch, err := start(ctx, slot)
	if err != nil {
		h.handleFailure(ctx, w, "start "+view+" stream", err)
		return
	}
	defer watch.Close()

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.logger.DebugContext(ctx, "stream opened", "view", view)
	defer h.logger.DebugContext(ctx, "stream closed", "view", view)

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-watch.Done():
			return
		case frame := <-slot:
			if len(frame) == 0 {
				continue
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// emitter adapts a live view callback into stream frames.
func emitter[T any, D any](ctx context.Context, h *Handler, slot frameSlot, event string, convert func(T) D) func(T, error) {
	return func(value T, err error) {
		if err != nil {
			slot.put(h.errorEvent(ctx, err))
			return
		}
		frame, encErr := encodeEvent(event, googleResponseEnvelope{APIVersion: googleAPIVersion, Data: convert(value)})
		if encErr != nil {
			h.logger.ErrorContext(ctx, "encode stream event failed", "event", event, "error", encErr)
			return
		}
		slot.put(frame)
	}
}

func (h *Handler) StreamLeagueTable(w http.ResponseWriter, r *http.Request) {
	h.serveStream(w, r, "league_table", func(ctx context.Context, slot frameSlot) (*usecase.Watch, error) {
		return h.liveViews.WatchLeagueTable(ctx, emitter(ctx, h, slot, "league_table", toLeagueRowDTOs))
	})
}

func (h *Handler) StreamQuarterbackTable(w http.ResponseWriter, r *http.Request) {
	h.serveStream(w, r, "quarterback_table", func(ctx context.Context, slot frameSlot) (*usecase.Watch, error) {
		return h.liveViews.WatchQuarterbackTable(ctx, emitter(ctx, h, slot, "quarterback_table", toQuarterbackRowDTOs))
	})
}

func (h *Handler) StreamUserFormation(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	userID, err := pathValue(r, "userID")
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	h.serveStream(w, r, "formation", func(ctx context.Context, slot frameSlot) (*usecase.Watch, error) {
		return h.liveViews.WatchFormation(ctx, principal, userID, week, emitter(ctx, h, slot, "formation", toFormationViewDTO))
	})
}
