package protocol

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/pingwin/model"
)

func allKinds() []Message {
	return []Message{
		&Welcome{PlayerId: "4a7f", LevelName: "default"},
		&StartGame{
			Penguins: []model.Penguin{
				{Id: "a", Number: 1, X: 3, Y: 4, Facing: model.Down, Color: "white"},
				{Id: "b", Number: 2, X: 7, Y: 1, FishCount: 2, Facing: model.Left, Color: "red"},
			},
			Fishes:       []model.Fish{{Type: 0, X: 1, Y: 1}, {Type: 3, X: 14, Y: 8}},
			GameDuration: 60,
		},
		&MoveOtherTo{PenguinId: "a", Direction: model.Right},
		&TurnOtherTo{PenguinId: "b", Direction: model.Up},
		&ScoreUpdate{PenguinId: "a", FishCount: 12},
		&NewFish{Fish: model.Fish{Type: 2, X: 5, Y: 6}},
		&RiseGameDuration{Seconds: 10},
		&EndGame{},
		&MoveMeTo{Direction: model.Left},
		&TurnMeTo{Direction: model.Down},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, m := range allKinds() {
		t.Run(string(m.Kind()), func(t *testing.T) {
			data, err := Encode(m)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "\x00")

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, m, decoded)
		})
	}
}

func TestEveryKindIsRegistered(t *testing.T) {
	assert.Len(t, kinds, len(allKinds()))
	for _, m := range allKinds() {
		assert.Contains(t, kinds, m.Kind())
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]struct {
		record string
		err    error
	}{
		"empty":        {``, ErrMalformed},
		"garbage":      {`pickle`, ErrMalformed},
		"truncated":    {`{"v":1,"kind":"welcome"`, ErrMalformed},
		"version":      {`{"v":2,"kind":"end_game"}`, ErrUnsupportedVersion},
		"no version":   {`{"kind":"end_game"}`, ErrUnsupportedVersion},
		"unknown kind": {`{"v":1,"kind":"teleport"}`, ErrUnknownKind},
		"bad payload":  {`{"v":1,"kind":"score_update","data":{"fish_count":"many"}}`, ErrMalformed},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(c.record))
			assert.ErrorIs(t, err, c.err)
		})
	}
}

func TestDecodeWithoutData(t *testing.T) {
	m, err := Decode([]byte(`{"v":1,"kind":"end_game"}`))
	require.NoError(t, err)
	assert.IsType(t, &EndGame{}, m)
}

func TestEncodeNil(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func records(t *testing.T, r io.Reader) []string {
	t.Helper()
	var out []string
	scanner := NewScanner(r)
	for scanner.Scan() {
		out = append(out, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestScanner(t *testing.T) {
	stream := "one\x00two\x00\x00\x00three\x00tail"
	assert.Equal(t, []string{"one", "two", "three"}, records(t, strings.NewReader(stream)))
	assert.Equal(t, []string{"one", "two", "three"}, records(t, iotest.OneByteReader(strings.NewReader(stream))))
	assert.Empty(t, records(t, strings.NewReader("")))
	assert.Empty(t, records(t, strings.NewReader("\x00\x00")))
}

func TestScannerOversizedRecord(t *testing.T) {
	huge := strings.Repeat("x", MaxRecordSize+10)
	stream := "one\x00" + huge + "\x00two\x00"
	assert.Equal(t, []string{"one", "", "two"}, records(t, strings.NewReader(stream)))
	assert.Equal(t, []string{"one", "", "two"}, records(t, iotest.OneByteReader(strings.NewReader(stream))))

	// oversized and never terminated
	assert.Equal(t, []string{"one", ""}, records(t, strings.NewReader("one\x00"+huge)))

	scanner := NewScanner(strings.NewReader(huge + "\x00" + huge + "\x00"))
	n := 0
	for scanner.Scan() {
		_, err := Decode(scanner.Bytes())
		assert.ErrorIs(t, err, ErrMalformed)
		n++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, n)
}

func TestWriteThenScan(t *testing.T) {
	var buf bytes.Buffer
	for _, m := range allKinds() {
		require.NoError(t, Write(&buf, m))
	}

	scanner := NewScanner(&buf)
	var got []Message
	for scanner.Scan() {
		m, err := Decode(scanner.Bytes())
		require.NoError(t, err)
		got = append(got, m)
	}
	assert.Equal(t, allKinds(), got)
}

func TestWebsocketStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		stream := NewWebsocketStream(conn)
		defer stream.Close()
		scanner := NewScanner(stream)
		for scanner.Scan() {
			m, err := Decode(scanner.Bytes())
			if err != nil {
				return
			}
			if err := Write(stream, m); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	stream := NewWebsocketStream(conn)
	defer stream.Close()
	assert.NotNil(t, stream.RemoteAddr())

	// two records in one websocket message, one record split over two
	first, err := Frame(&MoveMeTo{Direction: model.Up})
	require.NoError(t, err)
	second, err := Frame(&TurnMeTo{Direction: model.Left})
	require.NoError(t, err)
	third, err := Frame(&EndGame{})
	require.NoError(t, err)
	_, err = stream.Write(append(first, second...))
	require.NoError(t, err)
	_, err = stream.Write(third[:3])
	require.NoError(t, err)
	_, err = stream.Write(third[3:])
	require.NoError(t, err)

	scanner := NewScanner(stream)
	var got []Message
	for len(got) < 3 && scanner.Scan() {
		m, err := Decode(scanner.Bytes())
		require.NoError(t, err)
		got = append(got, m)
	}
	assert.Equal(t, []Message{&MoveMeTo{Direction: model.Up}, &TurnMeTo{Direction: model.Left}, &EndGame{}}, got)
}
