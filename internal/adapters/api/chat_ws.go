package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const sessionTitleMaxLen = 80

// HandleChatWebSocket handles the chat message loop. Requests only reach it
// through the gate, so a valid cookie is expected; identity is re-derived
// from it rather than injected by the gate.
func (h *Handler) HandleChatWebSocket(c *gin.Context) {
	raw, err := c.Cookie(h.authCfg.CookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	claims, err := h.tokenCodec.Verify(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}
	defer conn.Close()

	log.Info().Str("oid", claims.ObjectID).Msg("Chat connection established")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("Welcome to chatgate 👋")); err != nil {
		log.Error().Err(err).Msg("Failed to send greeting")
		return
	}

	recorded := false
	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			log.Info().Str("oid", claims.ObjectID).Msg("Chat connection closed")
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		// First turn of a connection starts a session record
		if !recorded {
			title := string(message)
			if len(title) > sessionTitleMaxLen {
				title = title[:sessionTitleMaxLen]
			}
			if _, err := h.chatService.CreateSession(c.Request.Context(), claims.ObjectID, title); err != nil {
				log.Error().Err(err).Str("oid", claims.ObjectID).Msg("Failed to record chat session")
			}
			recorded = true
		}

		if err := conn.WriteMessage(websocket.TextMessage, append([]byte("You said: "), message...)); err != nil {
			log.Error().Err(err).Msg("Failed to send reply")
			return
		}
	}
}

// ChatPage godoc
//
//	@Summary		Chat page
//	@Description	Minimal chat client connecting to the websocket loop
//	@Tags			chat
//	@Produce		html
//	@Success		200	{string}	string
//	@Router			/chat [get]
func (h *Handler) ChatPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(chatPageHTML))
}

const chatPageHTML = `<!DOCTYPE html>
<html>
<head><title>chatgate</title></head>
<body>
<ul id="messages"></ul>
<form id="form"><input id="input" autocomplete="off"/><button>Send</button></form>
<script>
const proto = location.protocol === "https:" ? "wss" : "ws";
const ws = new WebSocket(proto + "://" + location.host + "/ws/chat");
const messages = document.getElementById("messages");
ws.onmessage = (ev) => {
  const li = document.createElement("li");
  li.textContent = ev.data;
  messages.appendChild(li);
};
ws.onclose = (ev) => {
  if (ev.code === 4401) { location.href = "/login?next=/chat"; }
};
document.getElementById("form").onsubmit = (ev) => {
  ev.preventDefault();
  const input = document.getElementById("input");
  if (input.value) { ws.send(input.value); input.value = ""; }
};
</script>
</body>
</html>`
