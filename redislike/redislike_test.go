package redislike

import (
	"bytes"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/anna-kv/client/internal/kvstest"
	"github.com/anna-kv/client/serializer"
)

func newTestConnection(t *testing.T) *Connection {
	t.Helper()

	s := serializer.NewJSONSerializer()
	cluster, err := kvstest.NewCluster(1, s)
	if err != nil {
		t.Fatalf("failed to start test cluster: %v", err)
	}
	t.Cleanup(cluster.Close)

	c, err := Open(cluster.ClientConfig(5*time.Second), s)
	if err != nil {
		t.Fatalf("failed to open client: %v", err)
	}
	conn, err := c.GetConnection()
	if err != nil {
		t.Fatalf("failed to get connection: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestSetGet(t *testing.T) {
	conn := newTestConnection(t)

	if err := conn.Set("greeting", "hello"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := conn.Get("greeting")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestSetNX(t *testing.T) {
	conn := newTestConnection(t)

	ok, err := conn.SetNX("k", "first")
	if err != nil || !ok {
		t.Fatalf("first SetNX: got %v, %v; want a write", ok, err)
	}
	ok, err = conn.SetNX("k", "second")
	if err != nil || ok {
		t.Fatalf("second SetNX: got %v, %v; want no write", ok, err)
	}

	got, err := conn.Get("k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "first" {
		t.Errorf("got %q, want the original value", got)
	}
}

func TestSAddSMembers(t *testing.T) {
	conn := newTestConnection(t)

	if err := conn.SAdd("s", "a", "b"); err != nil {
		t.Fatalf("first SAdd failed: %v", err)
	}
	if err := conn.SAdd("s", "b", "c"); err != nil {
		t.Fatalf("second SAdd failed: %v", err)
	}

	members, err := conn.SMembers("s")
	if err != nil {
		t.Fatalf("SMembers failed: %v", err)
	}
	sort.Slice(members, func(i, j int) bool { return bytes.Compare(members[i], members[j]) < 0 })
	want := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	if !reflect.DeepEqual(members, want) {
		t.Errorf("got %q, want %q", members, want)
	}
}

func TestHashFields(t *testing.T) {
	conn := newTestConnection(t)

	err := conn.HMSet("h", map[string]any{
		"name": "anna",
		"role": "store",
	})
	if err != nil {
		t.Fatalf("HMSet failed: %v", err)
	}
	if err := conn.HSet("h", "role", "kvs"); err != nil {
		t.Fatalf("HSet failed: %v", err)
	}

	fields, err := conn.HGetAll("h")
	if err != nil {
		t.Fatalf("HGetAll failed: %v", err)
	}
	want := map[string][]byte{
		"name": []byte("anna"),
		"role": []byte("kvs"),
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("got %q, want %q", fields, want)
	}
}

func TestIncr(t *testing.T) {
	conn := newTestConnection(t)

	if got, err := conn.Incr("n"); err != nil || got != 1 {
		t.Fatalf("Incr: got %d, %v; want 1", got, err)
	}
	if got, err := conn.IncrBy("n", 9); err != nil || got != 10 {
		t.Fatalf("IncrBy 9: got %d, %v; want 10", got, err)
	}
	if got, err := conn.IncrBy("n", -15); err != nil || got != -5 {
		t.Fatalf("IncrBy -15: got %d, %v; want -5", got, err)
	}
}

func TestConvertRejectsUnsupportedType(t *testing.T) {
	conn := newTestConnection(t)

	if err := conn.Set("k", struct{ X int }{1}); err == nil {
		t.Fatal("expected conversion error for struct value")
	}
}

func TestConvertIntegerWidths(t *testing.T) {
	tests := []struct {
		value any
		want  []byte
	}{
		{uint8(0xab), []byte{0xab}},
		{int8(-1), []byte{0xff}},
		{uint16(0x0102), []byte{0x01, 0x02}},
		{uint32(0x01020304), []byte{0x01, 0x02, 0x03, 0x04}},
		{int64(-2), []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe}},
		{"str", []byte("str")},
		{[]byte{1, 2}, []byte{1, 2}},
	}
	for _, tt := range tests {
		got, err := toValue(tt.value)
		if err != nil {
			t.Errorf("toValue(%v): %v", tt.value, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("toValue(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
