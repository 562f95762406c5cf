package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cotuongonline/backend/internal/xiangqi"
)

func testHandlers() *handlers {
	return newHandlers(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPingHandler(t *testing.T) {
	recorder := httptest.NewRecorder()

	pingHandler(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}

func TestBoardHandler(t *testing.T) {
	t.Run("serves the standard starting position", func(t *testing.T) {
		recorder := httptest.NewRecorder()

		testHandlers().boardHandler(recorder, httptest.NewRequest(http.MethodGet, "/api/chess/board", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

		var body struct {
			Pieces []xiangqi.Piece `json:"pieces"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Len(t, body.Pieces, 32)
	})
}

func TestComputerMoveHandler(t *testing.T) {
	post := func(t *testing.T, body string) *httptest.ResponseRecorder {
		t.Helper()

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/chess/computer-move", strings.NewReader(body))

		testHandlers().computerMoveHandler(recorder, request)

		return recorder
	}

	t.Run("returns a legal move for the posted snapshot", func(t *testing.T) {
		// Given: a snapshot where red's only capture is chariot takes soldier
		req := computerMoveRequest{
			Side: xiangqi.SideRed,
			Pieces: []xiangqi.Piece{
				{ID: "red-general", Kind: xiangqi.KindGeneral, Side: xiangqi.SideRed, Pos: xiangqi.Position{Row: 0, Col: 3}},
				{ID: "black-general", Kind: xiangqi.KindGeneral, Side: xiangqi.SideBlack, Pos: xiangqi.Position{Row: 9, Col: 5}},
				{ID: "r1", Kind: xiangqi.KindChariot, Side: xiangqi.SideRed, Pos: xiangqi.Position{Row: 4, Col: 0}},
				{ID: "b1", Kind: xiangqi.KindSoldier, Side: xiangqi.SideBlack, Pos: xiangqi.Position{Row: 4, Col: 8}},
			},
		}
		body, err := json.Marshal(req)
		require.NoError(t, err)

		// When: the snapshot is posted
		recorder := post(t, string(body))

		// Then: the capture comes back with its validation result
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp computerMoveResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, "r1", resp.Move.PieceID)
		assert.True(t, resp.Result.Legal)
		assert.Equal(t, "b1", resp.Result.CapturedID)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		recorder := post(t, "{not json")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects an unknown side", func(t *testing.T) {
		recorder := post(t, `{"side":"green","pieces":[]}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects an inconsistent snapshot", func(t *testing.T) {
		recorder := post(t, `{"side":"red","pieces":[
			{"id":"a","kind":"soldier","side":"red","pos":{"row":3,"col":0}},
			{"id":"b","kind":"soldier","side":"black","pos":{"row":3,"col":0}}
		]}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("reports when no move exists", func(t *testing.T) {
		recorder := post(t, `{"side":"red","pieces":[
			{"id":"black-general","kind":"general","side":"black","pos":{"row":9,"col":4}}
		]}`)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})
}
