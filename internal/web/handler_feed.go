package web

import (
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vbonduro/konsinyasi/internal/catalog"
	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/feed"
)

const feedWriteTimeout = 10 * time.Second

// feedMessage is one frame on a live feed: the complete record set of the
// collection, or the error that prevented loading it.
type feedMessage struct {
	Collection domain.Collection `json:"collection"`
	Data       any               `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}
}

// checkOrigin accepts same-host pages and the configured CORS origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// handleFeed streams snapshots of one collection over a WebSocket: the
// current set right away, then a new set after every change. The client
// never sends anything; reading only detects the close.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	c := domain.Collection(r.PathValue("collection"))
	if !c.Valid() {
		s.writeError(w, r, domain.ErrNotFound)
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		s.logger.Warn("websocket upgrade failed", "collection", c, "error", err)
		return
	}
	defer closeWithLog(conn, "websocket", s.logger)

	var writeMu sync.Mutex
	closed := make(chan struct{})
	send := func(snap feed.Snapshot) {
		writeMu.Lock()
		defer writeMu.Unlock()
		select {
		case <-closed:
			return
		default:
		}
		_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := conn.WriteJSON(feedPayload(snap)); err != nil {
			s.logger.Debug("feed write failed", "collection", c, "error", err)
		}
	}

	unsubscribe, err := s.svc.Feed.Subscribe(r.Context(), c, send)
	if err != nil {
		s.logger.Error("feed subscribe failed", "collection", c, "error", err)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"))
		return
	}
	defer unsubscribe()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	writeMu.Lock()
	close(closed)
	writeMu.Unlock()
}

// feedPayload shapes a snapshot for clients. Catalog collections are sent
// merged with their seed lists, the same way the API lists them.
func feedPayload(snap feed.Snapshot) feedMessage {
	msg := feedMessage{Collection: snap.Collection}
	if snap.Err != nil {
		msg.Error = snap.Err.Error()
		return msg
	}

	switch data := snap.Data.(type) {
	case []domain.Product:
		msg.Data = catalog.MergeProducts(data)
	case []domain.Entry:
		seed := catalog.SeedEmployees
		if snap.Collection == domain.CollectionPartners {
			seed = catalog.SeedPartners
		}
		msg.Data = catalog.MergeNames(seed, data)
	default:
		msg.Data = data
	}
	return msg
}
