package ws

import (
	"code-lab/domain"
	"code-lab/domain/event"
	"encoding/json"
	"fmt"
)

// Wire format: every frame is {"event": <name>, "data": <payload>}.

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type roomUserPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type codeChangePayload struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

type languagePayload struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

type compilePayload struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

// decodeCommand maps one inbound frame to its command. Unknown event
// names are an error the caller logs and drops.
func decodeCommand(connID string, raw []byte) (domain.Command, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch frame.Event {
	case "join":
		var p roomUserPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, err
		}
		return domain.JoinCommand{Conn: connID, Room: domain.RoomID(p.RoomID), UserName: p.UserName}, nil
	case "codeChange":
		var p codeChangePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, err
		}
		return domain.CodeChangeCommand{Conn: connID, Room: domain.RoomID(p.RoomID), Code: p.Code}, nil
	case "typing":
		var p roomUserPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, err
		}
		return domain.TypingCommand{Conn: connID, Room: domain.RoomID(p.RoomID), UserName: p.UserName}, nil
	case "languageChange":
		var p languagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, err
		}
		return domain.LanguageChangeCommand{Conn: connID, Room: domain.RoomID(p.RoomID), Language: p.Language}, nil
	case "compileCode":
		var p compilePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, err
		}
		return domain.CompileCommand{Conn: connID, Room: domain.RoomID(p.RoomID), Code: p.Code, Language: p.Language}, nil
	case "leaveRoom":
		return domain.LeaveCommand{Conn: connID}, nil
	default:
		return nil, fmt.Errorf("unknown event %q", frame.Event)
	}
}

// encodeEvent maps an outbound event to its frame.
func encodeEvent(e event.Event) ([]byte, error) {
	var data any
	switch evt := e.(type) {
	case event.CodeUpdate:
		data = map[string]any{"code": evt.Code}
	case event.UserJoined:
		data = map[string]any{"members": evt.Members}
	case event.UserTyping:
		data = map[string]any{"userName": evt.UserName}
	case event.TypingCleared:
		data = map[string]any{"userName": evt.UserName}
	case event.LanguageUpdate:
		data = map[string]any{"language": evt.Language}
	case event.CodeResponse:
		data = map[string]any{"output": evt.Output}
	case event.Toast:
		data = map[string]any{"message": evt.Message, "durationMs": evt.DurationMs}
	default:
		return nil, fmt.Errorf("unknown outbound event %T", e)
	}
	return json.Marshal(outboundFrame{Event: e.Kind(), Data: data})
}
