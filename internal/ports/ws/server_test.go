package ws

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"typerace/internal/app"
	"typerace/internal/config"
	"typerace/internal/protocol"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.Directory) {
	t.Helper()
	dir := app.NewDirectory(app.Options{Rng: rand.New(rand.NewSource(5))})
	srv := NewServer(dir, noopLogger{}, config.ServerConfig{SendBuffer: 64})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, dir
}

func createRoom(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(ts.URL+"/rooms", "application/json", nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body["room_id"]
}

func dial(t *testing.T, ts *httptest.Server, roomID string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?room=" + url.QueryEscape(roomID) + "&name=tester"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until one of type want arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want protocol.Type) protocol.Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.T == want {
			return env
		}
	}
}

func write(t *testing.T, conn *websocket.Conn, typ protocol.Type, payload any) {
	t.Helper()
	if payload == nil {
		payload = struct{}{}
	}
	b, err := protocol.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestListRooms(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createRoom(t, ts)

	resp, err := http.Get(ts.URL + "/rooms")
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	defer resp.Body.Close()
	var rooms []app.RoomSummary
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].RoomID != id {
		t.Fatalf("rooms = %+v, want [%s]", rooms, id)
	}
}

func TestDialUnknownRoom(t *testing.T) {
	ts, _ := newTestServer(t)
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?room=nope"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %v, want 404", resp)
	}
}

func TestRaceOverWebsocket(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createRoom(t, ts)

	c1 := dial(t, ts, id)
	env := readUntil(t, c1, protocol.MsgRoomState)
	w1, err := protocol.DecodePayload[protocol.Welcome](env)
	if err != nil || w1.PlayerID == "" {
		t.Fatalf("welcome = %+v, %v", w1, err)
	}
	if len(w1.Room.Players) != 1 || w1.Room.Players[0].Name != "tester" {
		t.Fatalf("room players = %+v, want tester", w1.Room.Players)
	}

	c2 := dial(t, ts, id)
	readUntil(t, c2, protocol.MsgRoomState)
	readUntil(t, c1, protocol.MsgPlayerJoined)

	write(t, c1, protocol.MsgPing, protocol.Ping{Nonce: "n1"})
	pong, err := protocol.DecodePayload[protocol.Pong](readUntil(t, c1, protocol.MsgPong))
	if err != nil || pong.Nonce != "n1" {
		t.Fatalf("pong = %+v, %v", pong, err)
	}

	write(t, c1, protocol.MsgReady, nil)
	write(t, c2, protocol.MsgReady, nil)
	readUntil(t, c1, protocol.MsgGameStarted)
	readUntil(t, c2, protocol.MsgGameStarted)

	write(t, c1, protocol.MsgNextSentence, nil)
	a, err := protocol.DecodePayload[app.Assignment](readUntil(t, c1, protocol.MsgSentenceAssigned))
	if err != nil || a.Sentence == "" {
		t.Fatalf("assignment = %+v, %v", a, err)
	}

	write(t, c1, protocol.MsgSubmit, protocol.Submit{Text: a.Sentence})
	res, err := protocol.DecodePayload[app.SubmitResult](readUntil(t, c1, protocol.MsgSubmitResult))
	if err != nil || !res.Correct || !res.Completed {
		t.Fatalf("result = %+v, %v", res, err)
	}
	done, err := protocol.DecodePayload[app.SentenceCompletePayload](readUntil(t, c2, protocol.MsgSentenceComplete))
	if err != nil || done.PlayerID != w1.PlayerID {
		t.Fatalf("sentence complete = %+v, %v", done, err)
	}
}

func TestBadFrameGetsErrorEvent(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createRoom(t, ts)
	c := dial(t, ts, id)
	readUntil(t, c, protocol.MsgRoomState)

	if err := c.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := protocol.DecodePayload[protocol.Error](readUntil(t, c, protocol.MsgError))
	if err != nil || p.Code != 400 {
		t.Fatalf("error = %+v, %v", p, err)
	}

	write(t, c, protocol.MsgStart, nil)
	p, err = protocol.DecodePayload[protocol.Error](readUntil(t, c, protocol.MsgError))
	if err != nil || p.Code != 409 {
		t.Fatalf("error = %+v, %v", p, err)
	}
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	ts, dir := newTestServer(t)
	id := createRoom(t, ts)
	c := dial(t, ts, id)
	readUntil(t, c, protocol.MsgRoomState)

	write(t, c, protocol.MsgLeave, nil)
	readUntil(t, c, protocol.MsgPlayerLeft)

	deadline := time.Now().Add(time.Second)
	for {
		if _, err := dir.Session(id); err != nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("room still exists after its last player left")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
