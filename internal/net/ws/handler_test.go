package ws

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"mini-mc-server/internal/command"
	"mini-mc-server/internal/command/builtin"
	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/item"
	"mini-mc-server/internal/session"
	"mini-mc-server/internal/stats"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	sessions *session.Manager
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := session.NewManager(session.WithOperators(func(name string) bool { return name == "op" }))
	r := command.NewRegistry(command.WithPlayers(m.PlayerNames))
	require.NoError(t, builtin.Register(r, m))

	srv := httptest.NewServer(NewHandler(m, r, HandlerConfig{}))
	t.Cleanup(srv.Close)
	return &fixture{sessions: m, server: srv}
}

func (f *fixture) dial(t *testing.T, player string) *websocket.Conn {
	t.Helper()
	return f.dialWindow(t, player, "")
}

func (f *fixture) dialWindow(t *testing.T, player, window string) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(f.server.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	q := url.Values{"player": []string{player}}
	if window != "" {
		q.Set("window", window)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestConnectSendsContents(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "steve")

	msg := read(t, conn)
	assert.Equal(t, TypeContents, msg.Type)
	assert.Equal(t, "Brewing Stand", msg.Title)
	assert.Len(t, msg.Items, inventory.BrewingStandSize+inventory.MainInventorySize)

	s, err := f.sessions.ByPlayer("steve")
	require.NoError(t, err)
	assert.Equal(t, s.ID.String(), msg.Window)
}

func TestServerWritesArePushed(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "steve")
	read(t, conn)

	s, err := f.sessions.ByPlayer("steve")
	require.NoError(t, err)
	require.NoError(t, s.Do(func(s *session.Session) error {
		wart := item.NewItemStack(item.NetherWart, 2)
		return s.Window.SetSlotContents(inventory.BrewingSlotIngredient, &wart)
	}))

	msg := read(t, conn)
	assert.Equal(t, TypeSlot, msg.Type)
	require.NotNil(t, msg.Slot)
	assert.Equal(t, inventory.BrewingSlotIngredient, *msg.Slot)
	assert.Equal(t, &Stack{Item: "nether_wart", Count: 2}, msg.Stack)
}

func TestQuickMoveSendsOneBatch(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "steve")
	read(t, conn)

	s, err := f.sessions.ByPlayer("steve")
	require.NoError(t, err)
	hotbar := s.Window.PlayerSlotsStart + 27
	require.NoError(t, s.Do(func(s *session.Session) error {
		wart := item.NewItemStack(item.NetherWart, 5)
		s.Player.Inventory.MainInventory[0] = &wart
		_, err := s.Window.DetectChanges()
		return err
	}))
	msg := read(t, conn)
	assert.Equal(t, TypeSlots, msg.Type)
	assert.Equal(t, []SlotStack{{Slot: hotbar, Stack: &Stack{Item: "nether_wart", Count: 5}}}, msg.Slots)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeQuickMove, Slot: hotbar}))
	msg = read(t, conn)
	assert.Equal(t, TypeSlots, msg.Type)
	assert.ElementsMatch(t, []SlotStack{
		{Slot: inventory.BrewingSlotIngredient, Stack: &Stack{Item: "nether_wart", Count: 5}},
		{Slot: hotbar},
	}, msg.Slots)
}

func TestRejectedClickAndBadFrames(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "steve")
	read(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeClick, Slot: 500}))
	msg := read(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Error, "out of range")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = read(t, conn)
	assert.Equal(t, TypeError, msg.Type)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "dance"}))
	msg = read(t, conn)
	assert.Contains(t, msg.Error, "dance")
}

func TestCommands(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "op")
	read(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeCommand, Line: "/list"}))
	msg := read(t, conn)
	assert.Equal(t, TypeChat, msg.Type)
	assert.Equal(t, "There are 1 players online: op", msg.Plain)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeCommand, Line: "/give op stone 3"}))
	// the inventory change reaches the window before the reply
	msg = read(t, conn)
	assert.Equal(t, TypeSlots, msg.Type)
	msg = read(t, conn)
	assert.Equal(t, "Gave 3 stone to op", msg.Plain)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeCommand, Line: "/fly"}))
	msg = read(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Error, "unknown command")

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeTab, Line: "/li"}))
	msg = read(t, conn)
	assert.Equal(t, TypeComplete, msg.Type)
	assert.Equal(t, []string{"list"}, msg.Suggestions)

	s, err := f.sessions.ByPlayer("op")
	require.NoError(t, err)
	assert.Positive(t, s.Player.Stats.Get(stats.StatCommandsDispatched))
}

func TestMissingPlayer(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "?player=steve&window=chest")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInventoryWindow(t *testing.T) {
	f := newFixture(t)
	conn := f.dialWindow(t, "steve", "inventory")

	msg := read(t, conn)
	assert.Equal(t, TypeContents, msg.Type)
	assert.Equal(t, "Inventory", msg.Title)
	assert.Len(t, msg.Items, inventory.ArmorInventorySize+inventory.MainInventorySize)
}

func TestSecondConnectionRejected(t *testing.T) {
	f := newFixture(t)
	first := f.dial(t, "steve")
	read(t, first)

	second := f.dial(t, "STEVE")
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := second.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestDisconnectClosesSession(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "steve")
	read(t, conn)
	s, err := f.sessions.ByPlayer("steve")
	require.NoError(t, err)

	conn.Close()
	assert.Eventually(t, func() bool {
		_, err := f.sessions.ByPlayer("steve")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, s.Window.Closed())
}

func TestClickByPoint(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "steve")
	read(t, conn)

	s, err := f.sessions.ByPlayer("steve")
	require.NoError(t, err)
	require.NoError(t, s.Do(func(s *session.Session) error {
		sugar := item.NewItemStack(item.Sugar, 2)
		return s.Window.SetSlotContents(inventory.BrewingSlotIngredient, &sugar)
	}))
	read(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeClick, Point: &[2]float32{80, 20}}))
	msg := read(t, conn)
	assert.Equal(t, TypeSlot, msg.Type)
	require.NotNil(t, msg.Slot)
	assert.Equal(t, inventory.BrewingSlotIngredient, *msg.Slot)
	assert.Nil(t, msg.Stack)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeClick, Point: &[2]float32{1, 1}}))
	msg = read(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Error, "no slot")
}
