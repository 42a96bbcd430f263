package event

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Event
	}{
		{
			name: "join",
			data: `{"type":"join","room":"r1","userId":"u1"}`,
			want: Event{Kind: KindJoin, Room: "r1", UserID: "u1"},
		},
		{
			name: "begin",
			data: `{"type":"begin","room":"r1","userId":"u1","color":"#000","strokeWidth":2,"point":[10,10]}`,
			want: Event{Kind: KindBegin, Room: "r1", UserID: "u1", Color: "#000", StrokeWidth: 2, Point: Point{10, 10}},
		},
		{
			name: "move",
			data: `{"type":"move","room":"r1","userId":"u1","points":[[12,12],[14,14]]}`,
			want: Event{Kind: KindMove, Room: "r1", UserID: "u1", Points: []Point{{12, 12}, {14, 14}}},
		},
		{
			name: "end",
			data: `{"type":"end","room":"r1","userId":"u1"}`,
			want: Event{Kind: KindEnd, Room: "r1", UserID: "u1"},
		},
		{
			name: "clear",
			data: `{"type":"clear","room":"r1","userId":"u1"}`,
			want: Event{Kind: KindClear, Room: "r1", UserID: "u1"},
		},
		{
			name: "history with nested events",
			data: `{"type":"history","room":"r1","events":[{"type":"begin","room":"r1","userId":"u1","color":"#000","strokeWidth":2,"point":[10,10]}]}`,
			want: Event{Kind: KindHistory, Room: "r1", Events: []Event{
				{Kind: KindBegin, Room: "r1", UserID: "u1", Color: "#000", StrokeWidth: 2, Point: Point{10, 10}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "unknown kind",
			data:    `{"type":"teleport","room":"r1"}`,
			wantErr: ErrUnknownKind,
		},
		{
			name:    "begin without point",
			data:    `{"type":"begin","room":"r1","userId":"u1"}`,
			wantErr: ErrBadPoint,
		},
		{
			name:    "point with three coordinates",
			data:    `{"type":"begin","room":"r1","point":[1,2,3]}`,
			wantErr: ErrBadPoint,
		},
		{
			name:    "point that is not an array",
			data:    `{"type":"begin","room":"r1","point":"nope"}`,
			wantErr: ErrBadPoint,
		},
		{
			name:    "bad point inside move",
			data:    `{"type":"move","room":"r1","points":[[1]]}`,
			wantErr: ErrBadPoint,
		},
		{
			name:    "unknown kind nested in history",
			data:    `{"type":"history","room":"r1","events":[{"type":"warp"}]}`,
			wantErr: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDecode_NotJSON(t *testing.T) {
	_, err := Decode([]byte("not json"))
	require.Error(t, err)
}

func TestEncode_EmptyHistoryKeepsEventsArray(t *testing.T) {
	data, err := (Event{Kind: KindHistory, Room: "r1"}).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"events":[]`)
}

func TestEncode_UnknownKind(t *testing.T) {
	_, err := (Event{Kind: "teleport"}).Encode()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestEncode_BeginRoundTrip(t *testing.T) {
	begin := Event{Kind: KindBegin, Room: "r1", UserID: "u1", Color: "#000", StrokeWidth: 2, Point: Point{10, 10}}

	data, err := begin.Encode()
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "\n"), "frames must be newline-free")

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, begin, got)
}
