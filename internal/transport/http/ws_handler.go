package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"prelims-drill-service/internal/analysis"
	"prelims-drill-service/internal/app"
	"prelims-drill-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.DrillService
	defaults app.StartOptions
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.DrillService, defaults app.StartOptions) *WSHandler {
	return &WSHandler{
		service:  service,
		defaults: defaults,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type keyEntry struct {
	ID     int    `json:"id"`
	Option string `json:"option"`
}

type answerKeyPayload struct {
	Answers []keyEntry `json:"answers"`
}

type selectionEntry struct {
	ID     int    `json:"id"`
	Round  int    `json:"round"`
	Option string `json:"option"`
}

type analyzePayload struct {
	Total      int              `json:"total"`
	Selections []selectionEntry `json:"selections"`
	Answers    []keyEntry       `json:"answers"`
}

type startedPayload struct {
	Snapshot     domain.Snapshot `json:"snapshot"`
	DroppedCount int             `json:"droppedCount"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the drill
// use cases. Each connection drives one session; extra viewers may attach to
// the same sessionId and receive the same snapshot stream.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	setID := r.URL.Query().Get("setId")
	if sessionID == "" || setID == "" {
		http.Error(w, "missing sessionId or setId", http.StatusBadRequest)
		return
	}

	opts := h.defaults
	if v, err := strconv.Atoi(r.URL.Query().Get("durationSec")); err == nil && v > 0 {
		opts.DurationSeconds = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("maxQuestions")); err == nil && v > 0 {
		opts.MaxQuestions = v
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	snapshot, dropped, err := h.service.Start(r.Context(), sessionID, setID, opts)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Queue the started frame before snapshot forwarding begins so clients
	// always observe it first.
	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{Snapshot: snapshot, DroppedCount: dropped}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answer payload")
				continue
			}
			if _, err := h.service.Answer(sessionID, payload.Option); err != nil {
				send <- errMsg(err.Error())
			}
		case "skip":
			if _, err := h.service.Skip(sessionID); err != nil {
				send <- errMsg(err.Error())
			}
		case "results":
			results, err := h.service.Results(sessionID)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "results", Payload: results}
		case "answerKey":
			var payload answerKeyPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answerKey payload")
				continue
			}
			results, err := h.service.SetAnswerKey(sessionID, keyTable(payload.Answers))
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "results", Payload: results}
		case "report":
			report, err := h.service.Report(sessionID)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "report", Payload: report}
		case "analyze":
			var payload analyzePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid analyze payload")
				continue
			}
			selections := make(map[int]analysis.Selection, len(payload.Selections))
			for _, sel := range payload.Selections {
				selections[sel.ID] = analysis.Selection{Round: sel.Round, Option: sel.Option}
			}
			report := analysis.BuildReport(payload.Total, selections, keyTable(payload.Answers))
			send <- outboundMessage[any]{Type: "report", Payload: report}
		default:
			send <- errMsg("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}

func keyTable(entries []keyEntry) map[int]string {
	key := make(map[int]string, len(entries))
	for _, e := range entries {
		key[e.ID] = e.Option
	}
	return key
}
