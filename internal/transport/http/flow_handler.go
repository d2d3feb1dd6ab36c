package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/app"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/auth"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// FlowHandler drives one survey session per websocket connection: inbound
// action messages move the state machine, every accepted action is answered
// with a fresh state snapshot.
type FlowHandler struct {
	service  *app.SurveyService
	auth     *auth.Manager
	upgrader websocket.Upgrader
}

func NewFlowHandler(service *app.SurveyService, authManager *auth.Manager) *FlowHandler {
	return &FlowHandler{
		service: service,
		auth:    authManager,
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

type selectRolePayload struct {
	Role domain.Role `json:"role"`
}

type selectTeamPayload struct {
	Team domain.TeamInfo `json:"team"`
}

type setAnswerPayload struct {
	QuestionID string        `json:"questionId"`
	Answer     domain.Answer `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message            string   `json:"message"`
	InvalidQuestionIDs []string `json:"invalidQuestionIds,omitempty"`
}

// ServeWS upgrades the request and runs the session loop until the client
// disconnects. Identity comes from the optional token query parameter; an
// invalid token degrades to an anonymous session.
func (h *FlowHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	respondent := h.auth.Respondent(r.URL.Query().Get("token"))
	session := h.service.NewSession(respondent)

	writeState := func() {
		if err := conn.WriteJSON(outboundMessage[app.State]{Type: "state", Payload: session.Snapshot()}); err != nil {
			log.Printf("ws write error: %v", err)
		}
	}
	writeError := func(msg string, invalid []string) {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg, InvalidQuestionIDs: invalid}})
	}

	writeState()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		ctx := r.Context()
		switch inbound.Type {
		case "start":
			h.apply(session.Start(ctx), writeState, writeError)
		case "select_role":
			var payload selectRolePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeError("invalid select_role payload", nil)
				continue
			}
			h.apply(session.SelectRole(ctx, payload.Role), writeState, writeError)
		case "select_team":
			var payload selectTeamPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeError("invalid select_team payload", nil)
				continue
			}
			h.apply(session.SelectTeam(ctx, payload.Team), writeState, writeError)
		case "set_answer":
			var payload setAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeError("invalid set_answer payload", nil)
				continue
			}
			h.apply(session.SetAnswer(ctx, payload.QuestionID, payload.Answer), writeState, writeError)
		case "submit":
			h.apply(session.Submit(ctx), writeState, writeError)
		case "back":
			h.apply(session.Back(), writeState, writeError)
		case "restart":
			h.apply(session.Restart(), writeState, writeError)
		case "list_teams":
			teams, err := h.service.Teams(ctx)
			if err != nil {
				writeError("could not load teams", nil)
				continue
			}
			_ = conn.WriteJSON(outboundMessage[[]domain.TeamInfo]{Type: "teams", Payload: teams})
		case "list_questions":
			state := session.Snapshot()
			questions, err := h.service.Questions(ctx, state.Role)
			if err != nil {
				writeError("could not load questions", nil)
				continue
			}
			_ = conn.WriteJSON(outboundMessage[[]domain.Question]{Type: "questions", Payload: questions})
		default:
			writeError("unsupported message type", nil)
		}
	}
}

// apply maps a transition result onto the wire: duplicate submits are dropped
// silently (logged in the session), validation failures carry every invalid
// question ID, and every outcome ends with a state snapshot so the client can
// re-render.
func (h *FlowHandler) apply(err error, writeState func(), writeError func(string, []string)) {
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSubmitInFlight):
		// Dropped, not an error the respondent should see.
	default:
		var verr *app.ValidationError
		if errors.As(err, &verr) {
			writeError(verr.Error(), verr.QuestionIDs)
		} else {
			writeError(err.Error(), nil)
		}
	}
	writeState()
}
