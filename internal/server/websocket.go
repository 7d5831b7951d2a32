package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/internal/worker"
	"github.com/standardbeagle/dctlforge/pkg/events"
)

// wsRequest asks for one generation; ID is echoed back on the reply
type wsRequest struct {
	ID         string          `json:"id"`
	Parameters json.RawMessage `json:"parameters"`
}

type wsReply struct {
	ID    string `json:"id"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

type pendingReply struct {
	id    string
	reply <-chan worker.Reply
}

// handleWebSocket gives each connection its own generation worker. Replies are
// written in request order, one per request.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.conns.Add(1)
	defer s.conns.Add(-1)

	gen := worker.New(s.Generate, s.queueSize)
	pending := make(chan pendingReply, 64)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		broken := false
		for p := range pending {
			rep := <-p.reply
			if broken {
				continue
			}
			out := wsReply{ID: p.id, Code: rep.Code}
			if rep.Err != nil {
				out.Error = rep.Err.Error()
			} else {
				s.publish(events.CodeGenerated, r.RemoteAddr, map[string]interface{}{
					"request": p.id,
					"bytes":   len(rep.Code),
				})
			}
			if err := conn.WriteJSON(out); err != nil {
				broken = true
			}
		}
	}()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			break
		}

		params, err := param.DecodeParameters(req.Parameters)
		if err != nil {
			failed := make(chan worker.Reply, 1)
			failed <- worker.Reply{Err: err}
			pending <- pendingReply{id: req.ID, reply: failed}
			continue
		}
		pending <- pendingReply{id: req.ID, reply: gen.Submit(params)}
	}

	close(pending)
	gen.Close()
	<-writerDone
}
