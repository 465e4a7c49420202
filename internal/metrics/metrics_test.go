package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"mini-mc-server/internal/events"
	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/item"
	"mini-mc-server/internal/net/ws"
	"mini-mc-server/internal/session"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ inventory.DispatchObserver = (*Metrics)(nil)
	_ session.Observer           = (*Metrics)(nil)
	_ ws.Observer                = (*Metrics)(nil)
	_ events.Observer            = (*Metrics)(nil)
)

type nopListener struct{ id int }

func (*nopListener) SendContainerContents(*inventory.Container, []*item.ItemStack) {}
func (*nopListener) SendSlotUpdate(*inventory.Container, int, *item.ItemStack)      {}
func (*nopListener) SendWindowProperty(*inventory.Container, int, int)              {}

func TestObserveDispatch(t *testing.T) {
	m := New()
	c := inventory.NewContainer(inventory.WithObserver(m))
	c.AddSlot(inventory.NewSlot(inventory.NewBasic(1), 0, 0, 0))
	require.NoError(t, c.AddListener(&nopListener{id: 1}))
	require.NoError(t, c.AddListener(&nopListener{id: 2}))

	stone := item.NewItemStack(item.Stone, 1)
	require.NoError(t, c.SetSlotContents(0, &stone))
	require.NoError(t, c.SetWindowProperty(0, 1))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Notifications.WithLabelValues(inventory.DispatchSlot)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Notifications.WithLabelValues(inventory.DispatchProperty)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.DispatchDuration))
}

func TestSessionGauge(t *testing.T) {
	m := New()
	mgr := session.NewManager(session.WithObserver(m))
	s, err := mgr.Open("steve")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	require.NoError(t, mgr.Close(s.ID))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionsActive))
}

func TestAuditAndTransportCounters(t *testing.T) {
	m := New()
	m.AuditPublished(3)
	m.AuditDropped()
	m.AuditFailed(2)
	m.FrameQueued(ws.TypeSlots)
	m.ClientDropped()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.AuditEvents.WithLabelValues("published")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditEvents.WithLabelValues("dropped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuditEvents.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesQueued.WithLabelValues(ws.TypeSlots)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClientsDropped))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveDispatch(inventory.DispatchBulk, 4, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `minimc_container_notifications_total{kind="bulk"} 4`)
	assert.Contains(t, string(body), "go_goroutines")
}
